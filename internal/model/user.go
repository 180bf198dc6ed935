package model

import "time"

// User represents a canteen customer as stored in the `users` table.
// A user is identified externally by the ISIC card number printed on
// the campus card; the four digit user number is the business-facing
// identifier used at the counter and for logging in.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – first name.
//  Surname      – last name.
//  ISICID       – unique ISIC card identifier.
//  UserNumber   – unique four digit user number (leading zeros kept).
//  PasswordHash – bcrypt hash of the password; never serialized.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    `gorm:"primaryKey" json:"id"`                                       // users.id
	Name         string    `gorm:"size:30;not null" json:"name"`                               // users.name
	Surname      string    `gorm:"size:30;not null" json:"surname"`                            // users.surname
	ISICID       string    `gorm:"column:isic_id;size:32;not null;uniqueIndex" json:"isic_id"` // users.isic_id
	UserNumber   string    `gorm:"size:4;not null;uniqueIndex" json:"user_number"`             // users.user_number
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`                     // users.password_hash
	CreatedAt    time.Time `json:"-"`                                                          // users.created_at
	UpdatedAt    time.Time `json:"-"`                                                          // users.updated_at
}
