package database

import (
	"context"

	"gorm.io/gorm"
)

// UnitOfWork runs fn against a transaction-scoped handle bound to ctx.
// The handle is committed when fn returns nil and rolled back when fn
// returns an error or panics, so it is released on every exit path.
// Callers must not keep tx after fn returns.
func UnitOfWork(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}
