// internal/repository/user_repo.go
package repository

import (
	"context"

	"networth-ledger/internal/domain"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	// CreateUser adds a new user and sets its ID. A taken username yields util.ErrDuplicateEntry.
	CreateUser(ctx context.Context, q DBExecutor, user *domain.User) error
	// GetUserByID retrieves a user by ID, or util.ErrUserNotFound.
	GetUserByID(ctx context.Context, q DBExecutor, id int64) (*domain.User, error)
	// GetUserByUsername retrieves a user by exact username, or util.ErrUserNotFound.
	GetUserByUsername(ctx context.Context, q DBExecutor, username string) (*domain.User, error)
	// GetUserByRole retrieves the first user holding role, or util.ErrUserNotFound.
	GetUserByRole(ctx context.Context, q DBExecutor, role domain.Role) (*domain.User, error)
	// SearchUsers lists users whose username contains keyword, case-insensitively, ordered by ID.
	SearchUsers(ctx context.Context, q DBExecutor, keyword string) ([]domain.User, error)
	// UpdateCredentials sets username and password hash of an existing user. An empty
	// argument keeps the stored value; status is never written.
	UpdateCredentials(ctx context.Context, q DBExecutor, id int64, username, passwordHash string) error
	// UpdateStatus sets only the status of an existing user.
	UpdateStatus(ctx context.Context, q DBExecutor, id int64, status domain.UserStatus) error
	// DeleteUser removes a user row. Owned snapshots must be removed first.
	DeleteUser(ctx context.Context, q DBExecutor, id int64) error
}
