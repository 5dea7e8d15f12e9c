package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	pkgerrors "github.com/angelmondragon/ecom-backend/pkg/errors"
)

// IsUniqueViolation reports whether err is a unique constraint failure.
// Postgres errors match on SQLSTATE and, when constraint is set, on its name.
// sqlite reports columns rather than constraint names, so any sqlite
// uniqueness failure matches.
func IsUniqueViolation(err error, constraint string) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return true
	case pkgerrors.Postgres(err) != nil:
		return pkgerrors.IsUniqueViolation(err, constraint)
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsNotFound reports whether err is gorm's record-not-found sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
