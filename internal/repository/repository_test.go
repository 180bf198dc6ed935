package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/iliyamo/canteen-preorder/internal/config"
	"github.com/iliyamo/canteen-preorder/internal/database"
	"github.com/iliyamo/canteen-preorder/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.Config{DBDriver: "sqlite", DBPath: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func mustDate(t *testing.T, s string) model.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func seedUser(t *testing.T, db *gorm.DB, isic, number string) *model.User {
	t.Helper()
	u := &model.User{Name: "Jana", Surname: "Novakova", ISICID: isic, UserNumber: number, PasswordHash: "x"}
	if err := NewUserRepo(db).Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func seedMeal(t *testing.T, db *gorm.DB, number int, day string) *model.Meal {
	t.Helper()
	m := &model.Meal{MealNumber: number, Name: "Svickova", Date: mustDate(t, day)}
	if err := NewMealRepo(db).Create(context.Background(), m); err != nil {
		t.Fatalf("create meal: %v", err)
	}
	return m
}

func seedOrder(t *testing.T, db *gorm.DB, userID, mealID uint64, active bool) *model.Order {
	t.Helper()
	o := &model.Order{UserID: userID, MealID: mealID, Status: active}
	if !active {
		at := time.Date(2026, 10, 18, 11, 0, 0, 0, time.UTC)
		o.WithdrawnAt = &at
	}
	if err := NewOrderRepo(db).Create(context.Background(), o); err != nil {
		t.Fatalf("create order: %v", err)
	}
	return o
}

func TestUserRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "S123456789", "0042")
	if u.ID == 0 {
		t.Fatalf("expected id to be set")
	}
	got, err := NewUserRepo(db).GetByISIC(ctx, "S123456789")
	if err != nil {
		t.Fatalf("GetByISIC: %v", err)
	}
	if got.UserNumber != "0042" || got.Name != "Jana" {
		t.Fatalf("unexpected user %+v", got)
	}
	if _, err := NewUserRepo(db).GetByISIC(ctx, "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("GetByISIC(missing) err = %v, want ErrUserNotFound", err)
	}
}

func TestUserDuplicate(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "A1", "1000")
	err := NewUserRepo(db).Create(context.Background(), &model.User{Name: "X", Surname: "Y", ISICID: "A1", UserNumber: "2000"})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate isic err = %v", err)
	}
	err = NewUserRepo(db).Create(context.Background(), &model.User{Name: "X", Surname: "Y", ISICID: "A2", UserNumber: "1000"})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate number err = %v", err)
	}
}

func TestUserUpdateReplacesAllFields(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedUser(t, db, "A1", "1000")
	updated, err := NewUserRepo(db).Update(ctx, "A1", &model.User{Name: "Petr", Surname: "Svoboda", ISICID: "B2", UserNumber: "2000", PasswordHash: "y"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ISICID != "B2" || updated.Name != "Petr" || updated.UserNumber != "2000" {
		t.Fatalf("update not applied: %+v", updated)
	}
	if _, err := NewUserRepo(db).Update(ctx, "A1", updated); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("update old isic err = %v", err)
	}
}

func TestUserDeleteTwiceAndCascade(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "A1", "1000")
	other := seedUser(t, db, "A2", "1001")
	m := seedMeal(t, db, 1, "2026-10-18")
	seedOrder(t, db, u.ID, m.ID, true)
	keep := seedOrder(t, db, other.ID, m.ID, true)

	users := NewUserRepo(db)
	if err := users.DeleteByISIC(ctx, "A1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := users.DeleteByISIC(ctx, "A1"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
	orders, err := NewOrderRepo(db).ListAll(ctx, OrderFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 1 || orders[0].ID != keep.ID {
		t.Fatalf("cascade removed wrong orders: %+v", orders)
	}
}

func TestFindByName(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedUser(t, db, "A1", "1000")
	if _, err := NewUserRepo(db).FindByName(ctx, "Jana", "Novakova"); err != nil {
		t.Fatalf("FindByName: %v", err)
	}
	seedUser(t, db, "A2", "1001")
	if _, err := NewUserRepo(db).FindByName(ctx, "Jana", "Novakova"); !errors.Is(err, ErrAmbiguousUser) {
		t.Fatalf("ambiguous err = %v", err)
	}
	if _, err := NewUserRepo(db).FindByName(ctx, "Nobody", "Here"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("missing err = %v", err)
	}
}

func TestMealUpdateAndList(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	meals := NewMealRepo(db)
	m := seedMeal(t, db, 1, "2026-10-18")
	seedMeal(t, db, 2, "2026-10-19")

	updated, err := meals.Update(ctx, m.ID, &model.Meal{MealNumber: 3, Name: "Risotto", Date: mustDate(t, "2026-10-20")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.MealNumber != 3 || updated.Name != "Risotto" || updated.Date.String() != "2026-10-20" {
		t.Fatalf("update not applied: %+v", updated)
	}
	if _, err := meals.Update(ctx, 999, updated); !errors.Is(err, ErrMealNotFound) {
		t.Fatalf("update missing err = %v", err)
	}

	day := mustDate(t, "2026-10-19")
	list, err := meals.ListAll(ctx, &day)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].MealNumber != 2 {
		t.Fatalf("ListAll(day) = %+v", list)
	}
	all, err := meals.ListAll(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].Date.String() != "2026-10-19" {
		t.Fatalf("ListAll order = %+v", all)
	}

	got, err := meals.GetByNumberAndDate(ctx, 3, mustDate(t, "2026-10-20"))
	if err != nil || got.ID != m.ID {
		t.Fatalf("GetByNumberAndDate = %+v, %v", got, err)
	}
}

func TestMealDeleteWithOrdersConflicts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "A1", "1000")
	m := seedMeal(t, db, 1, "2026-10-18")
	free := seedMeal(t, db, 2, "2026-10-18")
	seedOrder(t, db, u.ID, m.ID, true)

	meals := NewMealRepo(db)
	if err := meals.DeleteByID(ctx, m.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("delete ordered meal err = %v, want ErrConflict", err)
	}
	if err := meals.DeleteByID(ctx, free.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := meals.DeleteByID(ctx, free.ID); !errors.Is(err, ErrMealNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
}

func TestOrderWithdraw(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "A1", "1000")
	m := seedMeal(t, db, 1, "2026-10-18")
	o := seedOrder(t, db, u.ID, m.ID, true)
	orders := NewOrderRepo(db)

	at := time.Date(2026, 10, 18, 12, 15, 0, 0, time.UTC)
	got, err := orders.Withdraw(ctx, o.ID, at)
	if err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	if got.Status || got.WithdrawnAt == nil || !got.WithdrawnAt.Equal(at) {
		t.Fatalf("withdraw not applied: %+v", got)
	}
	if _, err := orders.Withdraw(ctx, o.ID, at); !errors.Is(err, ErrConflict) {
		t.Fatalf("second withdraw err = %v", err)
	}
	if _, err := orders.Withdraw(ctx, 999, at); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("withdraw missing err = %v", err)
	}
}

func TestOrderListFilter(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	a := seedUser(t, db, "A1", "1000")
	b := seedUser(t, db, "A2", "1001")
	m := seedMeal(t, db, 1, "2026-10-18")
	seedOrder(t, db, a.ID, m.ID, true)
	seedOrder(t, db, b.ID, m.ID, false)

	list, err := NewOrderRepo(db).ListAll(ctx, OrderFilter{UserID: b.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].UserID != b.ID {
		t.Fatalf("filter by user = %+v", list)
	}
	active := true
	list, err = NewOrderRepo(db).ListAll(ctx, OrderFilter{Status: &active})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].UserID != a.ID {
		t.Fatalf("filter by status = %+v", list)
	}
}

func TestOrderRequiresExistingRefs(t *testing.T) {
	db := newTestDB(t)
	err := NewOrderRepo(db).Create(context.Background(), &model.Order{UserID: 41, MealID: 42, Status: true})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("dangling order err = %v, want ErrConflict", err)
	}
}

func TestMealInfo(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	today := mustDate(t, "2026-10-18")

	u := seedUser(t, db, "123456789", "0007")
	lonely := seedUser(t, db, "987654321", "0008")
	yesterday := seedMeal(t, db, 1, "2026-10-17")
	lunch := seedMeal(t, db, 2, "2026-10-18")
	dinner := seedMeal(t, db, 3, "2026-10-18")
	seedOrder(t, db, u.ID, yesterday.ID, true)
	seedOrder(t, db, u.ID, dinner.ID, false)
	want := seedOrder(t, db, u.ID, lunch.ID, true)
	seedOrder(t, db, lonely.ID, yesterday.ID, true)

	users := NewUserRepo(db)
	info, err := users.MealInfo(ctx, "123456789", today)
	if err != nil {
		t.Fatalf("MealInfo: %v", err)
	}
	if info.OrderID != want.ID || info.MealNumber != 2 || info.MealName != "Svickova" {
		t.Fatalf("active order should win: %+v", info)
	}
	if info.Name != "Jana" || info.UserNumber != "0007" || info.Date.String() != "2026-10-18" {
		t.Fatalf("unexpected payload: %+v", info)
	}

	if _, err := users.MealInfo(ctx, "987654321", today); !errors.Is(err, ErrNoMealToday) {
		t.Fatalf("no meal today err = %v", err)
	}
	if _, err := users.MealInfo(ctx, "000", today); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("unknown card err = %v", err)
	}
}
