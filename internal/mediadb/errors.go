package mediadb

import (
	"errors"
	"fmt"
)

var (
	// ErrDb marks failures reported by the cache database.
	ErrDb = errors.New("database error")

	// ErrReadOnly is returned by mutating operations on a cache opened
	// without write access. It wraps ErrDb.
	ErrReadOnly = fmt.Errorf("%w: database is read-only", ErrDb)
)

func dbError(message string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrDb, message)
	}
	return fmt.Errorf("%w: %s: %w", ErrDb, message, err)
}

func dbErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDb, fmt.Sprintf(format, args...))
}
