package repository

import (
	"errors"

	"merocare/internal/database"
)

// ErrDuplicate is returned when an insert violates a unique constraint
var ErrDuplicate = errors.New("duplicate record")

func wrapUnique(db database.DBTX, err error) error {
	if err != nil && db.GetDialect().IsUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}
