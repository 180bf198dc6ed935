package service

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/gommon/log"
	"gorm.io/gorm"

	"github.com/iliyamo/canteen-preorder/internal/database"
	"github.com/iliyamo/canteen-preorder/internal/model"
	"github.com/iliyamo/canteen-preorder/internal/queue"
	"github.com/iliyamo/canteen-preorder/internal/repository"
)

// OrderInput carries the fields of an order.  A nil Status means active.
type OrderInput struct {
	UserID      uint64
	MealID      uint64
	Status      *bool
	WithdrawnAt *time.Time
}

// OrderByNameInput places an order for today's meal in the given slot on
// behalf of the user with that exact name and surname.  Names are not
// unique, so this is a convenience for the counter, not an identity check.
type OrderByNameInput struct {
	Name       string
	Surname    string
	MealNumber int
}

type OrderService struct {
	db     *gorm.DB
	clock  Clock
	events EventPublisher
}

func NewOrderService(db *gorm.DB, clock Clock, events EventPublisher) *OrderService {
	if events == nil {
		events = NopPublisher{}
	}
	return &OrderService{db: db, clock: clock, events: events}
}

// toModel applies the status rules: active orders carry no withdrawal
// time, collected orders always carry one.
func (s *OrderService) toModel(in OrderInput) *model.Order {
	o := &model.Order{UserID: in.UserID, MealID: in.MealID, Status: true}
	if in.Status != nil {
		o.Status = *in.Status
	}
	if !o.Status {
		at := s.clock.Now().UTC()
		if in.WithdrawnAt != nil {
			at = in.WithdrawnAt.UTC()
		}
		o.WithdrawnAt = &at
	}
	return o
}

// checkRefs resolves both sides of the order so that a missing user or
// meal is reported by name rather than as a foreign key failure.
func checkRefs(ctx context.Context, tx *gorm.DB, userID, mealID uint64) error {
	if _, err := repository.NewUserRepo(tx).GetByID(ctx, userID); err != nil {
		return err
	}
	if _, err := repository.NewMealRepo(tx).GetByID(ctx, mealID); err != nil {
		return err
	}
	return nil
}

// Create places an order by surrogate ids.
func (s *OrderService) Create(ctx context.Context, in OrderInput) (*model.Order, error) {
	o := s.toModel(in)
	err := database.UnitOfWork(ctx, s.db, func(tx *gorm.DB) error {
		if err := checkRefs(ctx, tx, o.UserID, o.MealID); err != nil {
			return err
		}
		return repository.NewOrderRepo(tx).Create(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, queue.OrderPlaced, o)
	return o, nil
}

// CreateByName resolves the user by name and surname and the meal by slot
// number on today's menu, then places an active order.
func (s *OrderService) CreateByName(ctx context.Context, in OrderByNameInput) (*model.Order, error) {
	today := s.clock.Today()
	var o *model.Order
	err := database.UnitOfWork(ctx, s.db, func(tx *gorm.DB) error {
		u, err := repository.NewUserRepo(tx).FindByName(ctx, in.Name, in.Surname)
		if err != nil {
			return err
		}
		m, err := repository.NewMealRepo(tx).GetByNumberAndDate(ctx, in.MealNumber, today)
		if err != nil {
			return err
		}
		o = &model.Order{UserID: u.ID, MealID: m.ID, Status: true}
		return repository.NewOrderRepo(tx).Create(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	log.Infof("order %d placed by name for %s", o.ID, in)
	s.publish(ctx, queue.OrderPlaced, o)
	return o, nil
}

func (s *OrderService) Get(ctx context.Context, id uint64) (*model.Order, error) {
	var o *model.Order
	err := database.UnitOfWork(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		o, err = repository.NewOrderRepo(tx).GetByID(ctx, id)
		return err
	})
	return o, err
}

func (s *OrderService) List(ctx context.Context, f repository.OrderFilter) ([]model.Order, error) {
	var orders []model.Order
	err := database.UnitOfWork(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		orders, err = repository.NewOrderRepo(tx).ListAll(ctx, f)
		return err
	})
	return orders, err
}

// Update replaces all fields of the order.
func (s *OrderService) Update(ctx context.Context, id uint64, in OrderInput) (*model.Order, error) {
	o := s.toModel(in)
	var updated *model.Order
	err := database.UnitOfWork(ctx, s.db, func(tx *gorm.DB) error {
		orders := repository.NewOrderRepo(tx)
		if _, err := orders.GetByID(ctx, id); err != nil {
			return err
		}
		if err := checkRefs(ctx, tx, o.UserID, o.MealID); err != nil {
			return err
		}
		var err error
		updated, err = orders.Update(ctx, id, o)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Infof("order with ID %d has been updated", id)
	s.publish(ctx, queue.OrderUpdated, updated)
	return updated, nil
}

// Withdraw marks the order as collected now.  Withdrawing an order that
// is already collected fails with repository.ErrConflict.
func (s *OrderService) Withdraw(ctx context.Context, id uint64) (*model.Order, error) {
	var o *model.Order
	err := database.UnitOfWork(ctx, s.db, func(tx *gorm.DB) error {
		var err error
		o, err = repository.NewOrderRepo(tx).Withdraw(ctx, id, s.clock.Now().UTC())
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, queue.OrderWithdrawn, o)
	return o, nil
}

func (s *OrderService) Delete(ctx context.Context, id uint64) error {
	var o *model.Order
	err := database.UnitOfWork(ctx, s.db, func(tx *gorm.DB) error {
		orders := repository.NewOrderRepo(tx)
		var err error
		if o, err = orders.GetByID(ctx, id); err != nil {
			return err
		}
		return orders.DeleteByID(ctx, id)
	})
	if err != nil {
		return err
	}
	log.Infof("order with ID %d has been deleted", id)
	s.publish(ctx, queue.OrderCancelled, o)
	return nil
}

// publish never fails the request; the order is already committed.
func (s *OrderService) publish(ctx context.Context, typ string, o *model.Order) {
	ev := queue.OrderEvent{
		Type:        typ,
		OrderID:     o.ID,
		UserID:      o.UserID,
		MealID:      o.MealID,
		Status:      o.Status,
		WithdrawnAt: o.WithdrawnAt,
		OccurredAt:  s.clock.Now().UTC().Format(time.RFC3339),
	}
	if err := s.events.PublishOrderEvent(ctx, ev); err != nil {
		log.Warnf("order event %s for order %d not published: %v", typ, o.ID, err)
	}
}

// String is used in log lines.
func (in OrderByNameInput) String() string {
	return fmt.Sprintf("%s %s (meal %d)", in.Name, in.Surname, in.MealNumber)
}
