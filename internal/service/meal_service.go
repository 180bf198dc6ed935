package service

import (
	"context"

	"github.com/labstack/gommon/log"
	"gorm.io/gorm"

	"github.com/iliyamo/canteen-preorder/internal/database"
	"github.com/iliyamo/canteen-preorder/internal/model"
	"github.com/iliyamo/canteen-preorder/internal/repository"
)

// MealInput carries the mutable fields of a meal.
type MealInput struct {
	MealNumber int
	Name       string
	Date       model.Date
}

type MealService struct {
	db *gorm.DB
}

func NewMealService(db *gorm.DB) *MealService { return &MealService{db: db} }

func (s *MealService) Create(ctx context.Context, in MealInput) (*model.Meal, error) {
	m := &model.Meal{MealNumber: in.MealNumber, Name: in.Name, Date: in.Date}
	err := database.UnitOfWork(ctx, s.db, func(tx *gorm.DB) error {
		return repository.NewMealRepo(tx).Create(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	log.Infof("meal %d (%s, slot %d) created for %s", m.ID, m.Name, m.MealNumber, m.Date)
	return m, nil
}

func (s *MealService) Get(ctx context.Context, id uint64) (*model.Meal, error) {
	var m *model.Meal
	err := database.UnitOfWork(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		m, err = repository.NewMealRepo(tx).GetByID(ctx, id)
		return err
	})
	return m, err
}

// List returns all meals, or only those served on day when it is set.
func (s *MealService) List(ctx context.Context, day *model.Date) ([]model.Meal, error) {
	var meals []model.Meal
	err := database.UnitOfWork(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		meals, err = repository.NewMealRepo(tx).ListAll(ctx, day)
		return err
	})
	return meals, err
}

func (s *MealService) Update(ctx context.Context, id uint64, in MealInput) (*model.Meal, error) {
	var m *model.Meal
	err := database.UnitOfWork(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		m, err = repository.NewMealRepo(tx).Update(ctx, id, &model.Meal{MealNumber: in.MealNumber, Name: in.Name, Date: in.Date})
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Infof("meal with ID %d has been updated", id)
	return m, nil
}

func (s *MealService) Delete(ctx context.Context, id uint64) error {
	err := database.UnitOfWork(ctx, s.db, func(tx *gorm.DB) error {
		return repository.NewMealRepo(tx).DeleteByID(ctx, id)
	})
	if err == nil {
		log.Infof("meal with ID %d deleted", id)
	}
	return err
}
