package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/iliyamo/canteen-preorder/internal/model"
)

// UserRepo encapsulates all queries on the users table.  It is bound to
// whatever handle it is given, normally the transaction of the current
// unit of work.
type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts u and populates its ID.  Names and identifiers are
// trimmed; uniqueness is enforced by the schema and reported as
// ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	normalizeUser(u)
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(u).Error
	return classify(err, ErrUserNotFound)
}

// GetByISIC fetches a user by ISIC card identifier.
func (r *UserRepo) GetByISIC(ctx context.Context, isicID string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Where("isic_id = ?", strings.TrimSpace(isicID)).Take(&u).Error
	if err != nil {
		return nil, classify(err, ErrUserNotFound)
	}
	return &u, nil
}

// GetByNumber fetches a user by the four digit user number.
func (r *UserRepo) GetByNumber(ctx context.Context, number string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Where("user_number = ?", strings.TrimSpace(number)).Take(&u).Error
	if err != nil {
		return nil, classify(err, ErrUserNotFound)
	}
	return &u, nil
}

// GetByID fetches a user by surrogate id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Take(&u, id).Error; err != nil {
		return nil, classify(err, ErrUserNotFound)
	}
	return &u, nil
}

// FindByName returns the single user whose name and surname match
// exactly.  Names are not unique, so more than one match yields
// ErrAmbiguousUser instead of an arbitrary pick.
func (r *UserRepo) FindByName(ctx context.Context, name, surname string) (*model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("name = ? AND surname = ?", strings.TrimSpace(name), strings.TrimSpace(surname)).
		Order("id").Limit(2).Find(&users).Error
	if err != nil {
		return nil, err
	}
	switch len(users) {
	case 0:
		return nil, ErrUserNotFound
	case 1:
		return &users[0], nil
	}
	return nil, ErrAmbiguousUser
}

// ListAll returns every user ordered by id.
func (r *UserRepo) ListAll(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	if err := r.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Update replaces every mutable column of the user identified by isicID
// with the values in u, including the ISIC id itself, and returns the
// stored row.  An unknown isicID yields ErrUserNotFound.
func (r *UserRepo) Update(ctx context.Context, isicID string, u *model.User) (*model.User, error) {
	current, err := r.GetByISIC(ctx, isicID)
	if err != nil {
		return nil, err
	}
	normalizeUser(u)
	err = r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", current.ID).Updates(map[string]any{
		"name":          u.Name,
		"surname":       u.Surname,
		"isic_id":       u.ISICID,
		"user_number":   u.UserNumber,
		"password_hash": u.PasswordHash,
	}).Error
	if err != nil {
		return nil, classify(err, ErrUserNotFound)
	}
	return r.GetByID(ctx, current.ID)
}

// DeleteByISIC removes the user and, through the foreign key, all of
// their orders.  ErrUserNotFound is returned when nothing was deleted.
func (r *UserRepo) DeleteByISIC(ctx context.Context, isicID string) error {
	res := r.db.WithContext(ctx).Where("isic_id = ?", strings.TrimSpace(isicID)).Delete(&model.User{})
	if res.Error != nil {
		return classify(res.Error, ErrUserNotFound)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func normalizeUser(u *model.User) {
	u.Name = strings.TrimSpace(u.Name)
	u.Surname = strings.TrimSpace(u.Surname)
	u.ISICID = strings.TrimSpace(u.ISICID)
	u.UserNumber = strings.TrimSpace(u.UserNumber)
}
