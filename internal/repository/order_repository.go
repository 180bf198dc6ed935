package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/iliyamo/canteen-preorder/internal/model"
)

// OrderRepo provides CRUD operations for orders.  Existence of the
// referenced user and meal is guaranteed by foreign keys; callers that
// want a precise not-found message check them first.
type OrderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) *OrderRepo { return &OrderRepo{db: db} }

// OrderFilter narrows ListAll.  Zero values mean "any".
type OrderFilter struct {
	UserID uint64
	MealID uint64
	Status *bool
}

// Create inserts o and populates its ID.
func (r *OrderRepo) Create(ctx context.Context, o *model.Order) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(o).Error
	return classify(err, ErrOrderNotFound)
}

// GetByID fetches an order by id.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (*model.Order, error) {
	var o model.Order
	if err := r.db.WithContext(ctx).Take(&o, id).Error; err != nil {
		return nil, classify(err, ErrOrderNotFound)
	}
	return &o, nil
}

// ListAll returns orders ordered by id, optionally filtered.
func (r *OrderRepo) ListAll(ctx context.Context, f OrderFilter) ([]model.Order, error) {
	q := r.db.WithContext(ctx).Order("id")
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.MealID != 0 {
		q = q.Where("meal_id = ?", f.MealID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	orders := []model.Order{}
	if err := q.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Update overwrites user, meal, status and withdrawal time of the order
// and returns the stored row.
func (r *OrderRepo) Update(ctx context.Context, id uint64, o *model.Order) (*model.Order, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	err := r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Updates(map[string]any{
		"user_id":      o.UserID,
		"meal_id":      o.MealID,
		"status":       o.Status,
		"withdrawn_at": o.WithdrawnAt,
	}).Error
	if err != nil {
		return nil, classify(err, ErrOrderNotFound)
	}
	return r.GetByID(ctx, id)
}

// Withdraw marks an active order as collected at the given time.  The
// status guard makes a second withdrawal a no-op that reports
// ErrConflict, so concurrent pickups cannot both succeed.
func (r *OrderRepo) Withdraw(ctx context.Context, id uint64, at time.Time) (*model.Order, error) {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ?", id, true).
		Updates(map[string]any{"status": false, "withdrawn_at": at})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrConflict
	}
	return r.GetByID(ctx, id)
}

// DeleteByID removes an order.
func (r *OrderRepo) DeleteByID(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&model.Order{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}
