package db

import (
	"errors"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

const (
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgSerializationFailure = "40001"
)

// IsUniqueViolation reports whether the provided error references a Postgres
// unique violation constraint. When constraintName is provided, the helper looks
// for the constraint text in the error message.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "UNIQUE constraint failed")
}

// IsLockContention reports whether err was raised because concurrent writers
// collided on row locks, returning the SQLSTATE that triggered it.
func IsLockContention(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	switch code := pkgerrors.PGCode(err); code {
	case pgDeadlockDetected, pgLockNotAvailable, pgSerializationFailure:
		return code, true
	case "":
		return sqliteLockCode(err)
	}
	return "", false
}

// sqliteLockCode walks the chain because typed errors keep the driver
// message out of Error().
func sqliteLockCode(err error) (string, bool) {
	for ; err != nil; err = errors.Unwrap(err) {
		msg := err.Error()
		switch {
		case strings.Contains(msg, "database is locked"):
			return "SQLITE_BUSY", true
		case strings.Contains(msg, "database table is locked"):
			return "SQLITE_LOCKED", true
		}
	}
	return "", false
}
