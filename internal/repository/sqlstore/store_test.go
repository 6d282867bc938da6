// internal/repository/sqlstore/store_test.go
package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"networth-ledger/internal/domain"
	"networth-ledger/internal/util"
	"networth-ledger/pkg/db"
)

// newTestDB opens a private in-memory SQLite database with the schema applied.
func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, err := db.NewSQLiteDB(db.Config{Path: "file:" + name + "?mode=memory&cache=shared"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, db.Migrate(context.Background(), conn, db.DriverSQLite))
	return conn
}

func createUser(t *testing.T, conn *sqlx.DB, username string) *domain.User {
	t.Helper()
	user := domain.NewUser(username, "hash-"+username)
	require.NoError(t, NewUserRepository().CreateUser(context.Background(), conn, user))
	return user
}

func createSnapshot(t *testing.T, conn *sqlx.DB, userID int64, date domain.Date, items map[string]int64, order ...string) *domain.Snapshot {
	t.Helper()
	ctx := context.Background()
	repo := NewSnapshotRepository()
	snapshot := domain.NewSnapshot(userID, date)
	require.NoError(t, repo.CreateSnapshot(ctx, conn, snapshot))
	var lineItems []domain.LineItem
	for _, name := range order {
		lineItems = append(lineItems, domain.NewLineItem(snapshot.ID, name, decimal.NewFromInt(items[name])))
	}
	require.NoError(t, repo.CreateLineItems(ctx, conn, lineItems))
	return snapshot
}

func TestUserRepository_CRUD(t *testing.T) {
	conn := newTestDB(t)
	ctx := context.Background()
	repo := NewUserRepository()

	alice := createUser(t, conn, "alice")
	assert.NotZero(t, alice.ID)

	got, err := repo.GetUserByID(ctx, conn, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "hash-alice", got.PasswordHash)
	assert.Equal(t, domain.UserStatusActive, got.Status)
	assert.Equal(t, domain.RoleMember, got.Role)

	got, err = repo.GetUserByUsername(ctx, conn, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	_, err = repo.GetUserByUsername(ctx, conn, "nobody")
	assert.ErrorIs(t, err, util.ErrUserNotFound)
	_, err = repo.GetUserByID(ctx, conn, 9999)
	assert.ErrorIs(t, err, util.ErrUserNotFound)

	err = repo.CreateUser(ctx, conn, domain.NewUser("alice", "other"))
	assert.ErrorIs(t, err, util.ErrDuplicateEntry)

	require.NoError(t, repo.UpdateCredentials(ctx, conn, alice.ID, "alice2", ""))
	require.NoError(t, repo.UpdateStatus(ctx, conn, alice.ID, domain.UserStatusDisabled))
	reloaded, err := repo.GetUserByID(ctx, conn, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice2", reloaded.Username)
	assert.Equal(t, "hash-alice", reloaded.PasswordHash)
	assert.Equal(t, domain.UserStatusDisabled, reloaded.Status)

	bob := createUser(t, conn, "bob")
	assert.ErrorIs(t, repo.UpdateCredentials(ctx, conn, bob.ID, "alice2", ""), util.ErrDuplicateEntry)
	assert.ErrorIs(t, repo.UpdateStatus(ctx, conn, 9999, domain.UserStatusActive), util.ErrUserNotFound)

	require.NoError(t, repo.DeleteUser(ctx, conn, alice.ID))
	assert.ErrorIs(t, repo.DeleteUser(ctx, conn, alice.ID), util.ErrUserNotFound)
}

func TestUserRepository_CredentialUpdateKeepsConcurrentStatus(t *testing.T) {
	conn := newTestDB(t)
	ctx := context.Background()
	repo := NewUserRepository()
	carol := createUser(t, conn, "carol")

	// A password change that loaded carol while active must not re-enable her.
	stale, err := repo.GetUserByID(ctx, conn, carol.ID)
	require.NoError(t, err)
	require.Equal(t, domain.UserStatusActive, stale.Status)
	require.NoError(t, repo.UpdateStatus(ctx, conn, carol.ID, domain.UserStatusDisabled))
	require.NoError(t, repo.UpdateCredentials(ctx, conn, stale.ID, "", "new-hash"))

	reloaded, err := repo.GetUserByID(ctx, conn, carol.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusDisabled, reloaded.Status)
	assert.Equal(t, "carol", reloaded.Username)
	assert.Equal(t, "new-hash", reloaded.PasswordHash)
}

func TestUserRepository_GetUserByRole(t *testing.T) {
	conn := newTestDB(t)
	ctx := context.Background()
	repo := NewUserRepository()

	_, err := repo.GetUserByRole(ctx, conn, domain.RoleAdmin)
	assert.ErrorIs(t, err, util.ErrUserNotFound)

	admin := domain.NewUser(domain.AdminUsername, "hash")
	admin.Role = domain.RoleAdmin
	require.NoError(t, repo.CreateUser(ctx, conn, admin))
	createUser(t, conn, "member")

	got, err := repo.GetUserByRole(ctx, conn, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, got.ID)
	assert.True(t, got.IsAdmin())
}

func TestUserRepository_SearchUsers(t *testing.T) {
	conn := newTestDB(t)
	ctx := context.Background()
	repo := NewUserRepository()

	for _, name := range []string{"Alice", "bob", "malice", "a_b", "axb"} {
		createUser(t, conn, name)
	}

	names := func(users []domain.User) []string {
		out := make([]string, len(users))
		for i, u := range users {
			out[i] = u.Username
		}
		return out
	}

	all, err := repo.SearchUsers(ctx, conn, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice", "bob", "malice", "a_b", "axb"}, names(all))

	matched, err := repo.SearchUsers(ctx, conn, "ALI")
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice", "malice"}, names(matched))

	matched, err = repo.SearchUsers(ctx, conn, "a_b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a_b"}, names(matched))

	matched, err = repo.SearchUsers(ctx, conn, "%")
	require.NoError(t, err)
	assert.Empty(t, matched)
}

func TestSnapshotRepository_CreateAndList(t *testing.T) {
	conn := newTestDB(t)
	ctx := context.Background()
	repo := NewSnapshotRepository()
	alice := createUser(t, conn, "alice")
	bob := createUser(t, conn, "bob")

	older := createSnapshot(t, conn, alice.ID, domain.NewDate(2025, time.January, 1),
		map[string]int64{"Stock": 100, "Cash": 200}, "Stock", "Cash")
	newer := createSnapshot(t, conn, alice.ID, domain.NewDate(2025, time.February, 1),
		map[string]int64{"Cash": 50}, "Cash")
	sameDay := createSnapshot(t, conn, alice.ID, domain.NewDate(2025, time.February, 1), nil)
	createSnapshot(t, conn, bob.ID, domain.NewDate(2025, time.March, 1), map[string]int64{"Gold": 1}, "Gold")

	snapshots, total, err := repo.ListSnapshotsByUserID(ctx, conn, alice.ID, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, snapshots, 3)

	assert.Equal(t, newer.ID, snapshots[0].ID)
	assert.Equal(t, sameDay.ID, snapshots[1].ID)
	assert.Equal(t, older.ID, snapshots[2].ID)

	first := snapshots[2]
	assert.Equal(t, "alice", first.Username)
	assert.Equal(t, "2025-01-01", first.Date.String())
	require.Len(t, first.Items, 2)
	assert.Equal(t, "Stock", first.Items[0].Name)
	assert.Equal(t, "Cash", first.Items[1].Name)
	assert.True(t, decimal.NewFromInt(300).Equal(first.Total()))

	assert.NotNil(t, snapshots[1].Items)
	assert.Empty(t, snapshots[1].Items)

	page, total, err := repo.ListSnapshotsByUserID(ctx, conn, alice.ID, 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, page, 1)
	assert.Equal(t, older.ID, page[0].ID)
}

func TestSnapshotRepository_DecimalValues(t *testing.T) {
	conn := newTestDB(t)
	ctx := context.Background()
	repo := NewSnapshotRepository()
	alice := createUser(t, conn, "alice")

	snapshot := domain.NewSnapshot(alice.ID, domain.NewDate(2025, time.January, 1))
	require.NoError(t, repo.CreateSnapshot(ctx, conn, snapshot))
	require.NoError(t, repo.CreateLineItems(ctx, conn, []domain.LineItem{
		domain.NewLineItem(snapshot.ID, "Fund", decimal.RequireFromString("1234.5")),
		domain.NewLineItem(snapshot.ID, "Loan", decimal.RequireFromString("-200.25")),
	}))

	latest, err := repo.GetLatestSnapshotByUserID(ctx, conn, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "1034.25", latest.Total().String())
}

func TestSnapshotRepository_WideDecimalsRoundTripExactly(t *testing.T) {
	conn := newTestDB(t)
	ctx := context.Background()
	repo := NewSnapshotRepository()
	alice := createUser(t, conn, "alice")

	values := []string{"9999999999999999.9999", "1234567890123.4567", "0.0001"}
	snapshot := domain.NewSnapshot(alice.ID, domain.NewDate(2025, time.February, 1))
	require.NoError(t, repo.CreateSnapshot(ctx, conn, snapshot))
	var lineItems []domain.LineItem
	for i, v := range values {
		lineItems = append(lineItems, domain.NewLineItem(snapshot.ID, fmt.Sprintf("item-%d", i), decimal.RequireFromString(v)))
	}
	require.NoError(t, repo.CreateLineItems(ctx, conn, lineItems))

	got, err := repo.GetSnapshotByID(ctx, conn, snapshot.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, len(values))
	for i, v := range values {
		assert.Equal(t, v, got.Items[i].Value.String())
	}
	assert.Equal(t, "10001234567890123.4567", got.Total().String())
}

func TestSnapshotRepository_UpdateAndDelete(t *testing.T) {
	conn := newTestDB(t)
	ctx := context.Background()
	repo := NewSnapshotRepository()
	alice := createUser(t, conn, "alice")

	snapshot := createSnapshot(t, conn, alice.ID, domain.NewDate(2025, time.January, 1),
		map[string]int64{"Stock": 100}, "Stock")

	require.NoError(t, repo.UpdateSnapshotDate(ctx, conn, snapshot.ID, domain.NewDate(2025, time.January, 2)))
	got, err := repo.GetSnapshotByID(ctx, conn, snapshot.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-02", got.Date.String())
	assert.Equal(t, alice.ID, got.UserID)

	require.NoError(t, repo.DeleteLineItemsBySnapshotID(ctx, conn, snapshot.ID))
	items, err := repo.GetLineItemsBySnapshotIDs(ctx, conn, []int64{snapshot.ID})
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, repo.DeleteSnapshot(ctx, conn, snapshot.ID))
	_, err = repo.GetSnapshotByID(ctx, conn, snapshot.ID)
	assert.ErrorIs(t, err, util.ErrSnapshotNotFound)
	assert.ErrorIs(t, repo.DeleteSnapshot(ctx, conn, snapshot.ID), util.ErrSnapshotNotFound)
	assert.ErrorIs(t, repo.UpdateSnapshotDate(ctx, conn, snapshot.ID, domain.NewDate(2025, 1, 3)), util.ErrSnapshotNotFound)
}

func TestSnapshotRepository_LatestAndUserCleanup(t *testing.T) {
	conn := newTestDB(t)
	ctx := context.Background()
	repo := NewSnapshotRepository()
	alice := createUser(t, conn, "alice")

	_, err := repo.GetLatestSnapshotByUserID(ctx, conn, alice.ID)
	assert.ErrorIs(t, err, util.ErrSnapshotNotFound)

	createSnapshot(t, conn, alice.ID, domain.NewDate(2025, time.March, 1), map[string]int64{"Old": 1}, "Old")
	createSnapshot(t, conn, alice.ID, domain.NewDate(2025, time.January, 1), map[string]int64{"Older": 1}, "Older")
	tieA := createSnapshot(t, conn, alice.ID, domain.NewDate(2025, time.April, 1), map[string]int64{"A": 1}, "A")
	tieB := createSnapshot(t, conn, alice.ID, domain.NewDate(2025, time.April, 1), map[string]int64{"B": 1}, "B")
	require.NotEqual(t, tieA.ID, tieB.ID)

	latest, err := repo.GetLatestSnapshotByUserID(ctx, conn, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, tieB.ID, latest.ID)
	require.Len(t, latest.Items, 1)
	assert.Equal(t, "B", latest.Items[0].Name)

	require.NoError(t, repo.DeleteSnapshotsByUserID(ctx, conn, alice.ID))
	_, total, err := repo.ListSnapshotsByUserID(ctx, conn, alice.ID, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)

	var remaining int
	require.NoError(t, conn.Get(&remaining, `SELECT COUNT(*) FROM line_items`))
	assert.Zero(t, remaining)
}
