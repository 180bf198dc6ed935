// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios without inspecting driver errors.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrMealNotFound  = errors.New("meal not found")
	ErrOrderNotFound = errors.New("order not found")

	// ErrNoMealToday is returned by the today's meal lookup when the user
	// exists but has no order for a meal dated today.
	ErrNoMealToday = errors.New("no meal ordered for today")

	// ErrAmbiguousUser is returned when a name+surname lookup matches more
	// than one user.
	ErrAmbiguousUser = errors.New("more than one user matches")
)

// ErrDuplicate is returned when an insert or update violates a unique
// index (ISIC id or user number).  Handlers should translate this into
// an HTTP 409 response.
var ErrDuplicate = errors.New("duplicate key")

// ErrConflict is returned when a write cannot proceed because of related
// rows, such as deleting a meal that still has orders or referencing a
// user that does not exist.  Handlers should translate this into an HTTP
// 409 response.
var ErrConflict = errors.New("conflict")

// MySQL server error numbers handled by classify.
const (
	mysqlDupEntry        = 1062
	mysqlRowIsReferenced = 1451
	mysqlNoReferencedRow = 1452
)

// classify maps driver level failures onto the sentinels above.  notFound
// is the sentinel to use for gorm.ErrRecordNotFound.  Errors that match
// nothing are returned unchanged.
func classify(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return ErrConflict
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlDupEntry:
			return ErrDuplicate
		case mysqlRowIsReferenced, mysqlNoReferencedRow:
			return ErrConflict
		}
	}
	// sqlite reports constraint failures only through the message text
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return ErrDuplicate
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return ErrConflict
	}
	return err
}
