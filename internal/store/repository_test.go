package store_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/coffee-store-api/internal/database"
	"github.com/iliyamo/coffee-store-api/internal/model"
	"github.com/iliyamo/coffee-store-api/internal/store"
)

// newTestDB opens an in-memory SQLite database with the full schema.
// The pool is pinned to one connection so every query sees the same
// in-memory instance.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenSQLite("file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.CreateSchema(context.Background(), db, "sqlite"))
	return db
}

func seedCategories(t *testing.T, db *sql.DB, names ...string) {
	t.Helper()
	uow := store.New(db)
	defer uow.Close()
	for _, name := range names {
		uow.Categories.Add(&model.Category{Name: name, CreatedAt: time.Now().UTC()})
	}
	n, err := uow.SaveChanges(context.Background())
	require.NoError(t, err)
	require.Equal(t, len(names), n)
}

func TestGetByIDMissingReturnsNil(t *testing.T) {
	db := newTestDB(t)
	uow := store.New(db)
	defer uow.Close()

	c, err := uow.Categories.GetByID(context.Background(), int64(42))
	require.NoError(t, err)
	require.Nil(t, c)
}

func TestAddAssignsGeneratedID(t *testing.T) {
	db := newTestDB(t)
	uow := store.New(db)
	defer uow.Close()

	c := &model.Category{Name: "Espresso", CreatedAt: time.Now().UTC()}
	uow.Categories.Add(c)
	_, err := uow.SaveChanges(context.Background())
	require.NoError(t, err)
	require.NotZero(t, c.ID)

	got, err := uow.Categories.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "Espresso", got.Name)
}

func TestUpdateAndDeleteRoundTrip(t *testing.T) {
	db := newTestDB(t)
	seedCategories(t, db, "Teas")

	uow := store.New(db)
	defer uow.Close()
	ctx := context.Background()

	all, err := uow.Categories.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	all[0].Description = "loose leaf"
	uow.Categories.Update(all[0])
	_, err = uow.SaveChanges(ctx)
	require.NoError(t, err)

	got, err := uow.Categories.GetByID(ctx, all[0].ID)
	require.NoError(t, err)
	require.Equal(t, "loose leaf", got.Description)

	uow.Categories.Delete(got)
	_, err = uow.SaveChanges(ctx)
	require.NoError(t, err)

	gone, err := uow.Categories.GetByID(ctx, got.ID)
	require.NoError(t, err)
	require.Nil(t, gone)
}

func TestFindTextContainsIsCaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	seedCategories(t, db, "Espresso Drinks", "Teas", "Cold Brew")

	uow := store.New(db)
	defer uow.Close()

	found, err := uow.Categories.Find(context.Background(),
		store.TextContains{Field: "name", Value: "ESPRESSO"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "Espresso Drinks", found[0].Name)
}

func TestFindTextContainsMatchesWildcardCharsLiterally(t *testing.T) {
	db := newTestDB(t)
	seedCategories(t, db, "100% Arabica", "100x Natural", "Half_Caf", "HalfXCaf")

	uow := store.New(db)
	defer uow.Close()
	ctx := context.Background()

	// "%" in the search is a literal percent sign, not a wildcard.
	found, err := uow.Categories.Find(ctx, store.TextContains{Field: "name", Value: "100%"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "100% Arabica", found[0].Name)

	// Same for "_", which LIKE would otherwise treat as any-one-char.
	found, err = uow.Categories.Find(ctx, store.TextContains{Field: "name", Value: "half_"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "Half_Caf", found[0].Name)
}

func TestFindUnknownFieldFailsValidation(t *testing.T) {
	db := newTestDB(t)
	uow := store.New(db)
	defer uow.Close()

	_, err := uow.Categories.Find(context.Background(),
		store.EqualsValue{Field: "nonsense", Value: 1})
	require.ErrorIs(t, err, store.ErrValidation)
}

func TestGetPagedSortsAndWindows(t *testing.T) {
	db := newTestDB(t)
	seedCategories(t, db, "Cold Brew", "Au Lait", "Brewed")

	uow := store.New(db)
	defer uow.Close()
	ctx := context.Background()

	sort := &store.Sort{Key: "name", Order: "asc"}
	skip, take := 0, 2
	page, err := uow.Categories.GetPaged(ctx, nil, sort, &skip, &take)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, "Au Lait", page[0].Name)
	require.Equal(t, "Brewed", page[1].Name)

	skip = 2
	rest, err := uow.Categories.GetPaged(ctx, nil, sort, &skip, &take)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	require.Equal(t, "Cold Brew", rest[0].Name)
}

func TestGetPagedPagesAreDisjointAndComplete(t *testing.T) {
	db := newTestDB(t)
	names := []string{"a", "b", "c", "d", "e", "f", "g"}
	seedCategories(t, db, names...)

	uow := store.New(db)
	defer uow.Close()
	ctx := context.Background()

	total, err := uow.Categories.Count(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, len(names), total)

	seen := map[int64]bool{}
	take := 3
	for skip := 0; skip < total; skip += take {
		s := skip
		page, err := uow.Categories.GetPaged(ctx, nil, &store.Sort{Key: "name", Order: "asc"}, &s, &take)
		require.NoError(t, err)
		for _, c := range page {
			require.False(t, seen[c.ID], "row %d served twice", c.ID)
			seen[c.ID] = true
		}
	}
	require.Len(t, seen, total)
}

func TestGetPagedSkipWithoutTake(t *testing.T) {
	db := newTestDB(t)
	seedCategories(t, db, "a", "b", "c", "d", "e")

	uow := store.New(db)
	defer uow.Close()

	skip := 2
	rows, err := uow.Categories.GetPaged(context.Background(), nil, nil, &skip, nil)
	require.NoError(t, err)
	require.Len(t, rows, 3)
}

func TestGetPagedUnknownSortFallsBackToIdentity(t *testing.T) {
	db := newTestDB(t)
	seedCategories(t, db, "b", "a")

	uow := store.New(db)
	defer uow.Close()

	rows, err := uow.Categories.GetPaged(context.Background(), nil,
		&store.Sort{Key: "bogus", Order: "desc"}, nil, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Less(t, rows[0].ID, rows[1].ID)
}

func TestGetPagedUnknownRelation(t *testing.T) {
	db := newTestDB(t)
	seedCategories(t, db, "a")

	uow := store.New(db)
	defer uow.Close()

	_, err := uow.Categories.GetPaged(context.Background(), nil, nil, nil, nil, "Nope")
	require.ErrorIs(t, err, store.ErrValidation)
}

func TestCountMatchesFilter(t *testing.T) {
	db := newTestDB(t)
	seedCategories(t, db, "Espresso Drinks", "Espresso Beans", "Teas")

	uow := store.New(db)
	defer uow.Close()

	n, err := uow.Categories.Count(context.Background(),
		store.TextContains{Field: "name", Value: "espresso"})
	require.NoError(t, err)
	require.Equal(t, 2, n)
}
