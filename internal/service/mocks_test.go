// internal/service/mocks_test.go
package service

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"

	"networth-ledger/internal/domain"
	"networth-ledger/internal/repository"
	"networth-ledger/pkg/db"
)

// MockDBExecutor is a mock implementation of repository.DBExecutor.
type MockDBExecutor struct {
	mock.Mock
}

func (m *MockDBExecutor) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	argsCalled := m.Called(ctx, query, args)
	return argsCalled.Get(0).(sql.Result), argsCalled.Error(1)
}

func (m *MockDBExecutor) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	m.Called(ctx, query, args)
	return &sql.Row{}
}

func (m *MockDBExecutor) NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error) {
	argsCalled := m.Called(ctx, query, arg)
	return argsCalled.Get(0).(sql.Result), argsCalled.Error(1)
}

func (m *MockDBExecutor) Rebind(query string) string {
	return query
}

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, q repository.DBExecutor, user *domain.User) error {
	args := m.Called(ctx, q, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.User, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByUsername(ctx context.Context, q repository.DBExecutor, username string) (*domain.User, error) {
	args := m.Called(ctx, q, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByRole(ctx context.Context, q repository.DBExecutor, role domain.Role) (*domain.User, error) {
	args := m.Called(ctx, q, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) SearchUsers(ctx context.Context, q repository.DBExecutor, keyword string) ([]domain.User, error) {
	args := m.Called(ctx, q, keyword)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdateCredentials(ctx context.Context, q repository.DBExecutor, id int64, username, passwordHash string) error {
	args := m.Called(ctx, q, id, username, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateStatus(ctx context.Context, q repository.DBExecutor, id int64, status domain.UserStatus) error {
	args := m.Called(ctx, q, id, status)
	return args.Error(0)
}

func (m *MockUserRepository) DeleteUser(ctx context.Context, q repository.DBExecutor, id int64) error {
	args := m.Called(ctx, q, id)
	return args.Error(0)
}

// MockSnapshotRepository is a mock implementation of repository.SnapshotRepository.
type MockSnapshotRepository struct {
	mock.Mock
}

func (m *MockSnapshotRepository) CreateSnapshot(ctx context.Context, q repository.DBExecutor, snapshot *domain.Snapshot) error {
	args := m.Called(ctx, q, snapshot)
	return args.Error(0)
}

func (m *MockSnapshotRepository) GetSnapshotByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Snapshot, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Snapshot), args.Error(1)
}

func (m *MockSnapshotRepository) UpdateSnapshotDate(ctx context.Context, q repository.DBExecutor, id int64, date domain.Date) error {
	args := m.Called(ctx, q, id, date)
	return args.Error(0)
}

func (m *MockSnapshotRepository) DeleteSnapshot(ctx context.Context, q repository.DBExecutor, id int64) error {
	args := m.Called(ctx, q, id)
	return args.Error(0)
}

func (m *MockSnapshotRepository) DeleteSnapshotsByUserID(ctx context.Context, q repository.DBExecutor, userID int64) error {
	args := m.Called(ctx, q, userID)
	return args.Error(0)
}

func (m *MockSnapshotRepository) ListSnapshotsByUserID(ctx context.Context, q repository.DBExecutor, userID int64, limit, offset int) ([]domain.Snapshot, int64, error) {
	args := m.Called(ctx, q, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Snapshot), args.Get(1).(int64), args.Error(2)
}

func (m *MockSnapshotRepository) GetLatestSnapshotByUserID(ctx context.Context, q repository.DBExecutor, userID int64) (*domain.Snapshot, error) {
	args := m.Called(ctx, q, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Snapshot), args.Error(1)
}

func (m *MockSnapshotRepository) CreateLineItems(ctx context.Context, q repository.DBExecutor, items []domain.LineItem) error {
	args := m.Called(ctx, q, items)
	return args.Error(0)
}

func (m *MockSnapshotRepository) GetLineItemsBySnapshotIDs(ctx context.Context, q repository.DBExecutor, snapshotIDs []int64) ([]domain.LineItem, error) {
	args := m.Called(ctx, q, snapshotIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LineItem), args.Error(1)
}

func (m *MockSnapshotRepository) DeleteLineItemsBySnapshotID(ctx context.Context, q repository.DBExecutor, snapshotID int64) error {
	args := m.Called(ctx, q, snapshotID)
	return args.Error(0)
}

// MockTokenIssuer is a mock implementation of TokenIssuer.
type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Issue(user *domain.User) (string, error) {
	args := m.Called(user)
	return args.String(0), args.Error(1)
}

// MockDBBeginner is a mock implementation of db.DBTxBeginner.
type MockDBBeginner struct {
	mock.Mock
}

func (m *MockDBBeginner) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	args := m.Called(ctx, opts)
	return &sqlx.Tx{}, args.Error(1)
}

// MockTxController is a mock implementation of db.TxController.
// It also implements repository.DBExecutor by embedding MockDBExecutor.
type MockTxController struct {
	mock.Mock
	MockDBExecutor
}

func (m *MockTxController) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTxController) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// txFuncs wires the injected transaction lifecycle to tx. beginErr, when set, fails BeginTx.
func txFuncs(tx *MockTxController, beginErr error) (db.BeginTxFunc, db.CommitTxFunc, db.RollbackTxFunc) {
	begin := func(ctx context.Context, dbConn db.DBTxBeginner) (db.TxController, error) {
		if beginErr != nil {
			return nil, beginErr
		}
		return tx, nil
	}
	commit := func(db.TxController) error {
		return tx.Commit()
	}
	rollback := func(db.TxController) {
		_ = tx.Rollback()
	}
	return begin, commit, rollback
}
