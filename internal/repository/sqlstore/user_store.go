// internal/repository/sqlstore/user_store.go
package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"networth-ledger/internal/domain"
	"networth-ledger/internal/repository"
	"networth-ledger/internal/util"
)

const userColumns = `id, username, password_hash, status, role, created_at, updated_at`

// UserRepository implements repository.UserRepository for PostgreSQL and SQLite.
type UserRepository struct{}

// NewUserRepository creates a new UserRepository.
// Methods receive the DBExecutor they run on, so the repository holds no connection.
func NewUserRepository() repository.UserRepository {
	return &UserRepository{}
}

// CreateUser inserts a new user using the provided DBExecutor.
func (r *UserRepository) CreateUser(ctx context.Context, q repository.DBExecutor, user *domain.User) error {
	query := q.Rebind(`INSERT INTO users (username, password_hash, status, role, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?) RETURNING id`)
	err := q.QueryRowContext(ctx, query,
		user.Username, user.PasswordHash, user.Status, user.Role, user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("username '%s' already exists: %w", user.Username, util.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by their ID.
func (r *UserRepository) GetUserByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.User, error) {
	var user domain.User
	query := q.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)
	if err := q.GetContext(ctx, &user, query, id); err != nil {
		if isNoRows(err) {
			return nil, util.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID %d: %w", id, err)
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by their username.
func (r *UserRepository) GetUserByUsername(ctx context.Context, q repository.DBExecutor, username string) (*domain.User, error) {
	var user domain.User
	query := q.Rebind(`SELECT ` + userColumns + ` FROM users WHERE username = ?`)
	if err := q.GetContext(ctx, &user, query, username); err != nil {
		if isNoRows(err) {
			return nil, util.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by username '%s': %w", username, err)
	}
	return &user, nil
}

// GetUserByRole retrieves the oldest user holding the given role.
func (r *UserRepository) GetUserByRole(ctx context.Context, q repository.DBExecutor, role domain.Role) (*domain.User, error) {
	var user domain.User
	query := q.Rebind(`SELECT ` + userColumns + ` FROM users WHERE role = ? ORDER BY id LIMIT 1`)
	if err := q.GetContext(ctx, &user, query, role); err != nil {
		if isNoRows(err) {
			return nil, util.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by role '%s': %w", role, err)
	}
	return &user, nil
}

// SearchUsers lists users whose username contains keyword. LIKE wildcards in keyword match literally.
func (r *UserRepository) SearchUsers(ctx context.Context, q repository.DBExecutor, keyword string) ([]domain.User, error) {
	users := []domain.User{}
	query := `SELECT ` + userColumns + ` FROM users`
	var args []interface{}
	if keyword != "" {
		query += ` WHERE LOWER(username) LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(strings.ToLower(keyword))+"%")
	}
	query += ` ORDER BY id`

	if err := q.SelectContext(ctx, &users, q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to search users by keyword '%s': %w", keyword, err)
	}
	return users, nil
}

// UpdateCredentials writes username and password hash, keeping whichever is empty.
func (r *UserRepository) UpdateCredentials(ctx context.Context, q repository.DBExecutor, id int64, username, passwordHash string) error {
	query := q.Rebind(`UPDATE users
		SET username = COALESCE(NULLIF(?, ''), username),
		    password_hash = COALESCE(NULLIF(?, ''), password_hash),
		    updated_at = ?
		WHERE id = ?`)
	result, err := q.ExecContext(ctx, query, username, passwordHash, time.Now().UTC(), id)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("username '%s' already exists: %w", username, util.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to update credentials of user %d: %w", id, err)
	}
	return checkAffected(result, util.ErrUserNotFound)
}

// UpdateStatus writes the status column only.
func (r *UserRepository) UpdateStatus(ctx context.Context, q repository.DBExecutor, id int64, status domain.UserStatus) error {
	query := q.Rebind(`UPDATE users SET status = ?, updated_at = ? WHERE id = ?`)
	result, err := q.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update status of user %d: %w", id, err)
	}
	return checkAffected(result, util.ErrUserNotFound)
}

// DeleteUser removes a user row.
func (r *UserRepository) DeleteUser(ctx context.Context, q repository.DBExecutor, id int64) error {
	result, err := q.ExecContext(ctx, q.Rebind(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	return checkAffected(result, util.ErrUserNotFound)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
