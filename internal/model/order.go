package model

import "time"

// Order links one user to one meal.  It is not a pure join table: the
// status flag tells whether the meal is still reserved (true) or has
// already been collected (false), and WithdrawnAt records when the
// status flipped.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – user who placed the order.
//  MealID      – meal that was ordered.
//  Status      – true while active, false once withdrawn.
//  WithdrawnAt – time of withdrawal (null while active).
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Order struct {
	ID          uint64     `gorm:"primaryKey" json:"id"`
	UserID      uint64     `gorm:"not null;index" json:"user_id"`
	MealID      uint64     `gorm:"not null;index" json:"meal_id"`
	Status      bool       `gorm:"not null" json:"status"`
	WithdrawnAt *time.Time `json:"withdrawn_at"`
	CreatedAt   time.Time  `json:"-"`
	UpdatedAt   time.Time  `json:"-"`

	// Deleting a user removes their orders; a meal with orders cannot be deleted.
	User *User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Meal *Meal `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
}

// MealInfo is the read model returned by the "today's meal" lookup.  It
// flattens the user, the order and the meal that were joined together.
type MealInfo struct {
	Name        string     `json:"name"`
	Surname     string     `json:"surname"`
	UserNumber  string     `json:"user_number"`
	OrderID     uint64     `json:"order_id"`
	Status      bool       `json:"status"`
	WithdrawnAt *time.Time `json:"withdrawn_at"`
	MealID      uint64     `json:"meal_id"`
	MealNumber  int        `json:"meal_number"`
	MealName    string     `json:"meal_name"`
	Date        Date       `json:"date"`
}
