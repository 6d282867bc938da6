// internal/util/errors.go
package util

import "errors"

// Common application-specific errors.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input provided")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("permission denied")
	ErrUserNotFound       = errors.New("user not found")
	ErrSnapshotNotFound   = errors.New("asset snapshot not found")
	ErrDuplicateEntry     = errors.New("duplicate entry") // e.g. creating a user with an existing username
	ErrProtectedAccount   = errors.New("the admin account cannot be disabled, deleted or renamed")
	ErrAccountDisabled    = errors.New("your account has been disabled, please contact the administrator")
)

// IsError reports whether any error in err's chain matches target.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}

// IsNotFound reports whether err is one of the not-found errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrSnapshotNotFound)
}
