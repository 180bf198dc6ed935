package repository

import (
	"context"
	"strings"

	"github.com/iliyamo/canteen-preorder/internal/model"
)

// MealInfo resolves which meal the user holding isicID ordered for day.
// It joins users, orders and meals and keeps meals dated day.  Active
// orders are preferred over withdrawn ones; among equals the oldest order
// wins.  An unknown card yields ErrUserNotFound, a known user without an
// order for day yields ErrNoMealToday.
func (r *UserRepo) MealInfo(ctx context.Context, isicID string, day model.Date) (*model.MealInfo, error) {
	isicID = strings.TrimSpace(isicID)
	var rows []model.MealInfo
	err := r.db.WithContext(ctx).
		Table("users").
		Select(`users.name AS name, users.surname AS surname, users.user_number AS user_number,
		        orders.id AS order_id, orders.status AS status, orders.withdrawn_at AS withdrawn_at,
		        meals.id AS meal_id, meals.meal_number AS meal_number, meals.name AS meal_name,
		        meals.date AS date`).
		Joins("JOIN orders ON orders.user_id = users.id").
		Joins("JOIN meals ON meals.id = orders.meal_id").
		Where("users.isic_id = ? AND meals.date >= ? AND meals.date < ?", isicID, day, day.Next()).
		Order("orders.status DESC").Order("orders.id").
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 1 {
		return &rows[0], nil
	}
	// distinguish an unknown card from a user with nothing ordered today
	if _, err := r.GetByISIC(ctx, isicID); err != nil {
		return nil, err
	}
	return nil, ErrNoMealToday
}
