package service_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/coffee-store-api/internal/config"
	"github.com/iliyamo/coffee-store-api/internal/database"
	"github.com/iliyamo/coffee-store-api/internal/model"
	"github.com/iliyamo/coffee-store-api/internal/service"
	"github.com/iliyamo/coffee-store-api/internal/store"
	"github.com/iliyamo/coffee-store-api/internal/utils"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenSQLite("file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.CreateSchema(context.Background(), db, "sqlite"))
	return db
}

func testConfig() config.Config {
	return config.Config{
		JWTSecret:      "test-secret",
		JWTIssuer:      "coffee-store",
		JWTAudience:    "coffee-store-clients",
		AccessTTLMin:   60,
		RefreshTTLDays: 7,
		BcryptCost:     4, // keep hashing fast in tests
	}
}

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	auth := service.NewAuthService(db, testConfig())
	ctx := context.Background()

	res, err := auth.Register(ctx, "alice", "Alice@Example.com", "pw123")
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)
	require.NotEmpty(t, res.RefreshToken)
	require.Equal(t, model.RoleUser, res.User.Role)
	require.Equal(t, "alice@example.com", res.User.Email)
	require.True(t, auth.ValidateToken(res.AccessToken))

	logged, err := auth.Login(ctx, "alice", "pw123")
	require.NoError(t, err)
	require.Equal(t, res.User.ID, logged.User.ID)
	require.NotEqual(t, res.RefreshToken, logged.RefreshToken)
}

func TestRegisterDuplicate(t *testing.T) {
	db := newTestDB(t)
	auth := service.NewAuthService(db, testConfig())
	ctx := context.Background()

	_, err := auth.Register(ctx, "alice", "alice@example.com", "pw123")
	require.NoError(t, err)

	_, err = auth.Register(ctx, "alice", "fresh@example.com", "pw123")
	require.ErrorIs(t, err, store.ErrConflict)

	_, err = auth.Register(ctx, "someone", "alice@example.com", "pw123")
	require.ErrorIs(t, err, store.ErrConflict)
}

func TestRegisterRejectsBlankFields(t *testing.T) {
	db := newTestDB(t)
	auth := service.NewAuthService(db, testConfig())

	_, err := auth.Register(context.Background(), "", "a@b.c", "pw")
	require.ErrorIs(t, err, store.ErrValidation)
	_, err = auth.Register(context.Background(), "a", "a@b.c", "")
	require.ErrorIs(t, err, store.ErrValidation)
}

func TestLoginBadCredentials(t *testing.T) {
	db := newTestDB(t)
	auth := service.NewAuthService(db, testConfig())
	ctx := context.Background()

	_, err := auth.Register(ctx, "alice", "alice@example.com", "pw123")
	require.NoError(t, err)

	_, err = auth.Login(ctx, "alice", "wrong")
	require.ErrorIs(t, err, store.ErrUnauthorized)

	_, err = auth.Login(ctx, "nobody", "pw123")
	require.ErrorIs(t, err, store.ErrUnauthorized)
}

func TestRefreshRotatesAndIsSingleUse(t *testing.T) {
	db := newTestDB(t)
	auth := service.NewAuthService(db, testConfig())
	ctx := context.Background()

	res, err := auth.Register(ctx, "alice", "alice@example.com", "pw123")
	require.NoError(t, err)

	next, err := auth.Refresh(ctx, res.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, res.RefreshToken, next.RefreshToken)
	require.True(t, auth.ValidateToken(next.AccessToken))

	// The spent token was revoked by the rotation.
	_, err = auth.Refresh(ctx, res.RefreshToken)
	require.ErrorIs(t, err, store.ErrUnauthorized)

	// The successor still works.
	_, err = auth.Refresh(ctx, next.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshFailedRotationLeavesTokenSpendable(t *testing.T) {
	db := newTestDB(t)
	auth := service.NewAuthService(db, testConfig())
	ctx := context.Background()

	res, err := auth.Register(ctx, "alice", "alice@example.com", "pw123")
	require.NoError(t, err)

	// Block successor inserts so the rotation flush fails after the
	// revoke was staged. Revoke and insert share one transaction, so
	// the presented token must survive the failure untouched.
	_, err = db.ExecContext(ctx, `CREATE TRIGGER refresh_insert_guard
		BEFORE INSERT ON refresh_tokens
		BEGIN SELECT RAISE(ABORT, 'insert blocked'); END`)
	require.NoError(t, err)

	_, err = auth.Refresh(ctx, res.RefreshToken)
	require.Error(t, err)
	require.NotErrorIs(t, err, store.ErrUnauthorized)

	_, err = db.ExecContext(ctx, `DROP TRIGGER refresh_insert_guard`)
	require.NoError(t, err)

	next, err := auth.Refresh(ctx, res.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, res.RefreshToken, next.RefreshToken)
}

func TestRefreshUnknownToken(t *testing.T) {
	db := newTestDB(t)
	auth := service.NewAuthService(db, testConfig())

	_, err := auth.Refresh(context.Background(), "no-such-token")
	require.ErrorIs(t, err, store.ErrUnauthorized)
}

func TestLogoutIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	auth := service.NewAuthService(db, testConfig())
	ctx := context.Background()

	res, err := auth.Register(ctx, "alice", "alice@example.com", "pw123")
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx, res.RefreshToken))
	require.NoError(t, auth.Logout(ctx, res.RefreshToken))
	require.NoError(t, auth.Logout(ctx, "never-issued"))

	_, err = auth.Refresh(ctx, res.RefreshToken)
	require.ErrorIs(t, err, store.ErrUnauthorized)
}

func TestValidateTokenRejectsForeignIssuer(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()
	auth := service.NewAuthService(db, cfg)

	require.False(t, auth.ValidateToken("not-a-jwt"))

	user := &model.User{ID: "u-1", Username: "alice", Email: "a@b.c", Role: model.RoleUser}
	foreign, err := utils.NewAccessToken(cfg.JWTSecret, "someone-else", cfg.JWTAudience, user, 60)
	require.NoError(t, err)
	require.False(t, auth.ValidateToken(foreign.Token))

	badKey, err := utils.NewAccessToken("other-secret", cfg.JWTIssuer, cfg.JWTAudience, user, 60)
	require.NoError(t, err)
	require.False(t, auth.ValidateToken(badKey.Token))
}
