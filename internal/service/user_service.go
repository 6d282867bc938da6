// internal/service/user_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"networth-ledger/internal/domain"
	"networth-ledger/internal/repository"
	"networth-ledger/internal/util"
	"networth-ledger/pkg/db"
)

// TokenIssuer signs identity tokens for authenticated users.
type TokenIssuer interface {
	Issue(user *domain.User) (string, error)
}

// LoginResult is returned by a successful Authenticate.
type LoginResult struct {
	ID       int64             `json:"id"`
	Username string            `json:"username"`
	Status   domain.UserStatus `json:"status"`
	Role     domain.Role       `json:"role"`
	Token    string            `json:"token"`
}

// CreateUserInput holds the fields of a new account. Status defaults to active.
type CreateUserInput struct {
	Username string
	Password string
	Status   domain.UserStatus
}

// UpdateUserInput holds the fields to change. Empty fields are left untouched.
type UpdateUserInput struct {
	Username string
	Password string
}

// UserService defines the interface for account management and login.
type UserService interface {
	Authenticate(ctx context.Context, username, password string) (*LoginResult, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Search(ctx context.Context, keyword string) ([]domain.User, error)
	Create(ctx context.Context, input CreateUserInput) (*domain.User, error)
	Update(ctx context.Context, id int64, input UpdateUserInput) error
	ChangeStatus(ctx context.Context, id int64, status domain.UserStatus) error
	Delete(ctx context.Context, id int64) error
	EnsureAdmin(ctx context.Context, defaultPassword string) error
}

// userService implements the UserService interface.
type userService struct {
	dbBeginner   db.DBTxBeginner
	dbExecutor   repository.DBExecutor
	userRepo     repository.UserRepository
	snapshotRepo repository.SnapshotRepository
	tokens       TokenIssuer
	bcryptCost   int
	beginTx      db.BeginTxFunc
	commitTx     db.CommitTxFunc
	rollbackTx   db.RollbackTxFunc
}

// NewUserService creates a new instance of UserService.
func NewUserService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	snapshotRepo repository.SnapshotRepository,
	tokens TokenIssuer,
	bcryptCost int,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) UserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &userService{
		dbBeginner:   dbBeginner,
		dbExecutor:   dbExecutor,
		userRepo:     userRepo,
		snapshotRepo: snapshotRepo,
		tokens:       tokens,
		bcryptCost:   bcryptCost,
		beginTx:      beginTx,
		commitTx:     commitTx,
		rollbackTx:   rollbackTx,
	}
}

// Authenticate checks credentials and issues a token. A disabled account is reported
// only after the password matched.
func (s *userService) Authenticate(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("authenticate: username and password are required: %w", util.ErrInvalidInput)
	}

	user, err := s.userRepo.GetUserByUsername(ctx, s.dbExecutor, username)
	if err != nil {
		if errors.Is(err, util.ErrUserNotFound) {
			return nil, util.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, util.ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, util.ErrAccountDisabled
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	return &LoginResult{
		ID:       user.ID,
		Username: user.Username,
		Status:   user.Status,
		Role:     user.Role,
		Token:    token,
	}, nil
}

// FindByID returns the user with the given ID.
func (s *userService) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, s.dbExecutor, id)
	if err != nil {
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	return user, nil
}

// FindByUsername returns the user with the given username.
func (s *userService) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, s.dbExecutor, username)
	if err != nil {
		return nil, fmt.Errorf("find user '%s': %w", username, err)
	}
	return user, nil
}

// Search lists users whose username contains keyword. An empty keyword lists everyone.
func (s *userService) Search(ctx context.Context, keyword string) ([]domain.User, error) {
	users, err := s.userRepo.SearchUsers(ctx, s.dbExecutor, strings.TrimSpace(keyword))
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return users, nil
}

// Create registers a new member account.
func (s *userService) Create(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, fmt.Errorf("create user: username and password are required: %w", util.ErrInvalidInput)
	}
	status := input.Status
	if status == "" {
		status = domain.UserStatusActive
	}
	if !status.Valid() {
		return nil, fmt.Errorf("create user: unknown status '%s': %w", status, util.ErrInvalidInput)
	}

	hash, err := s.hashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	user := domain.NewUser(username, hash)
	user.Status = status
	if err := s.userRepo.CreateUser(ctx, s.dbExecutor, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Update changes the username and/or password of an account. The admin cannot be renamed.
// Status is never written here.
func (s *userService) Update(ctx context.Context, id int64, input UpdateUserInput) error {
	user, err := s.userRepo.GetUserByID(ctx, s.dbExecutor, id)
	if err != nil {
		return fmt.Errorf("update user %d: %w", id, err)
	}

	var username, hash string
	if name := strings.TrimSpace(input.Username); name != "" && name != user.Username {
		if user.IsAdmin() {
			return fmt.Errorf("update user %d: %w", id, util.ErrProtectedAccount)
		}
		username = name
	}
	if input.Password != "" {
		hash, err = s.hashPassword(input.Password)
		if err != nil {
			return fmt.Errorf("update user %d: %w", id, err)
		}
	}
	if username == "" && hash == "" {
		return nil
	}

	if err := s.userRepo.UpdateCredentials(ctx, s.dbExecutor, id, username, hash); err != nil {
		return fmt.Errorf("update user %d: %w", id, err)
	}
	return nil
}

// ChangeStatus enables or disables an account. The admin cannot be disabled.
func (s *userService) ChangeStatus(ctx context.Context, id int64, status domain.UserStatus) error {
	if !status.Valid() {
		return fmt.Errorf("change status: unknown status '%s': %w", status, util.ErrInvalidInput)
	}

	user, err := s.userRepo.GetUserByID(ctx, s.dbExecutor, id)
	if err != nil {
		return fmt.Errorf("change status of user %d: %w", id, err)
	}
	if user.IsAdmin() {
		return fmt.Errorf("change status of user %d: %w", id, util.ErrProtectedAccount)
	}

	if err := s.userRepo.UpdateStatus(ctx, s.dbExecutor, id, status); err != nil {
		return fmt.Errorf("change status of user %d: %w", id, err)
	}
	return nil
}

// Delete removes an account together with its snapshots and items. The admin cannot be deleted.
func (s *userService) Delete(ctx context.Context, id int64) error {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return fmt.Errorf("delete user: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return fmt.Errorf("delete user: transaction controller does not implement DBExecutor")
	}

	user, err := s.userRepo.GetUserByID(ctx, txExecutor, id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	if user.IsAdmin() {
		return fmt.Errorf("delete user %d: %w", id, util.ErrProtectedAccount)
	}

	if err := s.snapshotRepo.DeleteSnapshotsByUserID(ctx, txExecutor, id); err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	if err := s.userRepo.DeleteUser(ctx, txExecutor, id); err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}

	if err := s.commitTx(txController); err != nil {
		return fmt.Errorf("delete user: failed to commit transaction: %w", err)
	}
	return nil
}

// EnsureAdmin creates the administrator account on first start. It is a no-op once one exists.
func (s *userService) EnsureAdmin(ctx context.Context, defaultPassword string) error {
	_, err := s.userRepo.GetUserByRole(ctx, s.dbExecutor, domain.RoleAdmin)
	if err == nil {
		return nil
	}
	if !errors.Is(err, util.ErrUserNotFound) {
		return fmt.Errorf("ensure admin: %w", err)
	}

	hash, err := s.hashPassword(defaultPassword)
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	admin := domain.NewUser(domain.AdminUsername, hash)
	admin.Role = domain.RoleAdmin
	if err := s.userRepo.CreateUser(ctx, s.dbExecutor, admin); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}

	log.Warn().Int64("user_id", admin.ID).Str("username", admin.Username).
		Msg("created default admin account, change its password")
	return nil
}

func (s *userService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
