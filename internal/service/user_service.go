package service

import (
	"context"

	"github.com/labstack/gommon/log"
	"gorm.io/gorm"

	"github.com/iliyamo/canteen-preorder/internal/database"
	"github.com/iliyamo/canteen-preorder/internal/model"
	"github.com/iliyamo/canteen-preorder/internal/repository"
	"github.com/iliyamo/canteen-preorder/internal/utils"
)

// UserInput carries the fields of a user as submitted by a client.  The
// password is plain text here and hashed before it reaches the store.
type UserInput struct {
	Name       string
	Surname    string
	ISICID     string
	UserNumber string
	Password   string
}

type UserService struct {
	db         *gorm.DB
	bcryptCost int
	clock      Clock
}

func NewUserService(db *gorm.DB, bcryptCost int, clock Clock) *UserService {
	return &UserService{db: db, bcryptCost: bcryptCost, clock: clock}
}

func (s *UserService) toModel(in UserInput) (*model.User, error) {
	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	return &model.User{
		Name:         in.Name,
		Surname:      in.Surname,
		ISICID:       in.ISICID,
		UserNumber:   in.UserNumber,
		PasswordHash: hash,
	}, nil
}

// Create registers a new user.
func (s *UserService) Create(ctx context.Context, in UserInput) (*model.User, error) {
	u, err := s.toModel(in)
	if err != nil {
		return nil, err
	}
	err = database.UnitOfWork(ctx, s.db, func(tx *gorm.DB) error {
		return repository.NewUserRepo(tx).Create(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	log.Infof("user %s %s created (id=%d)", u.Name, u.Surname, u.ID)
	return u, nil
}

// Get fetches a user by ISIC id.
func (s *UserService) Get(ctx context.Context, isicID string) (*model.User, error) {
	var u *model.User
	err := database.UnitOfWork(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		u, err = repository.NewUserRepo(tx).GetByISIC(ctx, isicID)
		return err
	})
	return u, err
}

// List returns all users.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := database.UnitOfWork(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		users, err = repository.NewUserRepo(tx).ListAll(ctx)
		return err
	})
	return users, err
}

// Update replaces all fields of the user identified by isicID.
func (s *UserService) Update(ctx context.Context, isicID string, in UserInput) (*model.User, error) {
	u, err := s.toModel(in)
	if err != nil {
		return nil, err
	}
	var updated *model.User
	err = database.UnitOfWork(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		updated, err = repository.NewUserRepo(tx).Update(ctx, isicID, u)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Infof("user %s %s has been changed", updated.Name, updated.Surname)
	return updated, nil
}

// Delete removes the user and their orders.
func (s *UserService) Delete(ctx context.Context, isicID string) error {
	err := database.UnitOfWork(ctx, s.db, func(tx *gorm.DB) error {
		return repository.NewUserRepo(tx).DeleteByISIC(ctx, isicID)
	})
	if err == nil {
		log.Infof("user with ISIC %s deleted", isicID)
	}
	return err
}

// MealInfo answers "what did this card holder order for today".
func (s *UserService) MealInfo(ctx context.Context, isicID string) (*model.MealInfo, error) {
	var info *model.MealInfo
	err := database.UnitOfWork(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		info, err = repository.NewUserRepo(tx).MealInfo(ctx, isicID, s.clock.Today())
		return err
	})
	return info, err
}
