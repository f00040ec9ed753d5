// internal/domain/common/errors.go
package common

import "errors"

// Error taxonomy shared by every domain package.
//
// Domain packages wrap these sentinels so callers can classify with errors.Is.
// Anything that matches none of them is an upstream failure (storage, object
// storage, broker) and is passed through untouched.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
)

// IsUpstream reports whether err is outside the domain taxonomy.
func IsUpstream(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrNotFound) &&
		!errors.Is(err, ErrInvalidInput) &&
		!errors.Is(err, ErrConflict)
}
