package model

import "time"

// Meal is an offering available on a specific calendar day.  Several
// meals may share a date; the meal number tells them apart (1 breakfast,
// 2 lunch, 3 dinner).  This struct corresponds to a row in the `meals`
// table.
//
// Fields:
//  ID         – primary key identifier.
//  MealNumber – slot of the day, 1 to 3.
//  Name       – human readable name of the dish.
//  Date       – day on which the meal is served.
type Meal struct {
	ID         uint64    `gorm:"primaryKey" json:"id"`
	MealNumber int       `gorm:"not null;index:idx_meals_date_number,priority:2" json:"meal_number"`
	Name       string    `gorm:"not null" json:"name"`
	Date       Date      `gorm:"type:date;not null;index:idx_meals_date_number,priority:1" json:"date"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"-"`
}

// Meal numbers accepted by the canteen.
const (
	MealBreakfast = 1
	MealLunch     = 2
	MealDinner    = 3
)
