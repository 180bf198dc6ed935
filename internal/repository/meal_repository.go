package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/iliyamo/canteen-preorder/internal/model"
)

// MealRepo encapsulates all queries on the meals table.
type MealRepo struct {
	db *gorm.DB
}

func NewMealRepo(db *gorm.DB) *MealRepo { return &MealRepo{db: db} }

// Create inserts m and populates its ID.
func (r *MealRepo) Create(ctx context.Context, m *model.Meal) error {
	m.Name = strings.TrimSpace(m.Name)
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error
	return classify(err, ErrMealNotFound)
}

// GetByID fetches a meal by id.  It returns ErrMealNotFound if no row is found.
func (r *MealRepo) GetByID(ctx context.Context, id uint64) (*model.Meal, error) {
	var m model.Meal
	if err := r.db.WithContext(ctx).Take(&m, id).Error; err != nil {
		return nil, classify(err, ErrMealNotFound)
	}
	return &m, nil
}

// GetByNumberAndDate returns the meal served in slot number on day.  When
// the canteen published several meals for the same slot the oldest one
// wins.
func (r *MealRepo) GetByNumberAndDate(ctx context.Context, number int, day model.Date) (*model.Meal, error) {
	var m model.Meal
	err := r.db.WithContext(ctx).
		Where("meal_number = ? AND date >= ? AND date < ?", number, day, day.Next()).
		Order("id").Take(&m).Error
	if err != nil {
		return nil, classify(err, ErrMealNotFound)
	}
	return &m, nil
}

// ListAll returns all meals ordered by date, slot and id.  A non-nil day
// restricts the result to meals served on that day.
func (r *MealRepo) ListAll(ctx context.Context, day *model.Date) ([]model.Meal, error) {
	q := r.db.WithContext(ctx).Order("date").Order("meal_number").Order("id")
	if day != nil {
		q = q.Where("date >= ? AND date < ?", *day, day.Next())
	}
	meals := []model.Meal{}
	if err := q.Find(&meals).Error; err != nil {
		return nil, err
	}
	return meals, nil
}

// Update overwrites name, meal number and date of the meal and returns
// the stored row.
func (r *MealRepo) Update(ctx context.Context, id uint64, m *model.Meal) (*model.Meal, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	err := r.db.WithContext(ctx).Model(&model.Meal{}).Where("id = ?", id).Updates(map[string]any{
		"name":        strings.TrimSpace(m.Name),
		"meal_number": m.MealNumber,
		"date":        m.Date,
	}).Error
	if err != nil {
		return nil, classify(err, ErrMealNotFound)
	}
	return r.GetByID(ctx, id)
}

// DeleteByID removes a meal.  A meal that still has orders cannot be
// deleted and yields ErrConflict.
func (r *MealRepo) DeleteByID(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&model.Meal{}, id)
	if res.Error != nil {
		return classify(res.Error, ErrMealNotFound)
	}
	if res.RowsAffected == 0 {
		return ErrMealNotFound
	}
	return nil
}
