package database

import (
	"errors"

	sqlite3 "github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound означает, что запись (рейс, пакет, бронирование) не найдена.
	ErrNotFound = errors.New("record not found")

	// ErrQuotaExceeded means the conditional seat increment matched no rows:
	// the departure cannot hold the requested passengers.
	ErrQuotaExceeded = errors.New("departure quota exceeded")

	// ErrDuplicateCode means the generated booking code collided with an
	// existing one; the caller regenerates and retries.
	ErrDuplicateCode = errors.New("booking code already exists")

	// ErrConcurrentModification means a versioned update lost the race.
	ErrConcurrentModification = errors.New("booking was modified concurrently")
)

// isUniqueViolation reports whether err is a sqlite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
