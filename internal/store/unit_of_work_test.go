package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/coffee-store-api/internal/model"
	"github.com/iliyamo/coffee-store-api/internal/store"
)

func testUser(id, username, email string) *model.User {
	return &model.User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: "x",
		Role:         model.RoleUser,
		CreatedAt:    time.Now().UTC(),
	}
}

func TestSaveChangesRollsBackWholeBatchOnConflict(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	uow := store.New(db)
	uow.Users.Add(testUser("u-1", "alice", "alice@example.com"))
	_, err := uow.SaveChanges(ctx)
	require.NoError(t, err)
	uow.Close()

	// The second batch stages a clean insert followed by a duplicate
	// username. Neither row may survive.
	uow = store.New(db)
	defer uow.Close()
	uow.Users.Add(testUser("u-2", "bob", "bob@example.com"))
	uow.Users.Add(testUser("u-3", "alice", "other@example.com"))
	_, err = uow.SaveChanges(ctx)
	require.ErrorIs(t, err, store.ErrConflict)

	n, err := uow.Users.Count(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestUpdateEntityWithClientAssignedID(t *testing.T) {
	db := newTestDB(t)
	uow := store.New(db)
	defer uow.Close()
	ctx := context.Background()

	u := testUser("u-1", "alice", "alice@example.com")
	uow.Users.Add(u)
	_, err := uow.SaveChanges(ctx)
	require.NoError(t, err)

	u.Email = "alice@coffee.example"
	uow.Users.Update(u)
	n, err := uow.SaveChanges(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	got, err := uow.Users.GetByID(ctx, "u-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "alice@coffee.example", got.Email)
}

func TestSaveChangesWithNothingStaged(t *testing.T) {
	db := newTestDB(t)
	uow := store.New(db)
	defer uow.Close()

	n, err := uow.SaveChanges(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestBeginTransactionTwice(t *testing.T) {
	db := newTestDB(t)
	uow := store.New(db)
	defer uow.Close()
	ctx := context.Background()

	require.NoError(t, uow.BeginTransaction(ctx))
	require.ErrorIs(t, uow.BeginTransaction(ctx), store.ErrTxOpen)
	require.NoError(t, uow.RollbackTransaction())
}

func TestTransactionScopesWritesUntilCommit(t *testing.T) {
	db := newTestDB(t)
	uow := store.New(db)
	defer uow.Close()
	ctx := context.Background()

	require.NoError(t, uow.BeginTransaction(ctx))
	uow.Categories.Add(&model.Category{Name: "Seasonal", CreatedAt: time.Now().UTC()})
	_, err := uow.SaveChanges(ctx)
	require.NoError(t, err)

	// Reads on the same unit of work run on the open transaction, so
	// the uncommitted row is visible here.
	n, err := uow.Categories.Count(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	require.NoError(t, uow.RollbackTransaction())

	n, err = uow.Categories.Count(ctx, nil)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestRollbackDiscardsStagedWritesAndIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	uow := store.New(db)
	defer uow.Close()
	ctx := context.Background()

	require.NoError(t, uow.BeginTransaction(ctx))
	uow.Categories.Add(&model.Category{Name: "Never", CreatedAt: time.Now().UTC()})
	require.NoError(t, uow.RollbackTransaction())
	require.NoError(t, uow.RollbackTransaction())

	// The staged add was dropped with the rollback; a later flush must
	// not resurrect it.
	_, err := uow.SaveChanges(ctx)
	require.NoError(t, err)
	n, err := uow.Categories.Count(ctx, nil)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestCommitWithoutOpenTransactionFlushes(t *testing.T) {
	db := newTestDB(t)
	uow := store.New(db)
	defer uow.Close()
	ctx := context.Background()

	uow.Categories.Add(&model.Category{Name: "Direct", CreatedAt: time.Now().UTC()})
	require.NoError(t, uow.CommitTransaction(ctx))

	n, err := uow.Categories.Count(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestCommitRollsBackOnFlushFailure(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	uow := store.New(db)
	uow.Users.Add(testUser("u-1", "alice", "alice@example.com"))
	_, err := uow.SaveChanges(ctx)
	require.NoError(t, err)
	uow.Close()

	uow = store.New(db)
	defer uow.Close()
	require.NoError(t, uow.BeginTransaction(ctx))
	uow.Categories.Add(&model.Category{Name: "Doomed", CreatedAt: time.Now().UTC()})
	uow.Users.Add(testUser("u-9", "alice", "dupe@example.com"))
	require.ErrorIs(t, uow.CommitTransaction(ctx), store.ErrConflict)

	n, err := uow.Categories.Count(ctx, nil)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestClosedUnitOfWorkRefusesWork(t *testing.T) {
	db := newTestDB(t)
	uow := store.New(db)
	require.NoError(t, uow.Close())
	require.NoError(t, uow.Close())

	uow.Categories.Add(&model.Category{Name: "Late", CreatedAt: time.Now().UTC()})
	_, err := uow.SaveChanges(context.Background())
	require.ErrorIs(t, err, store.ErrClosed)
	require.ErrorIs(t, uow.BeginTransaction(context.Background()), store.ErrClosed)
}
