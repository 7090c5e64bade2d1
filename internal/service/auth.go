// Package service implements the business operations over the store
// layer. Each method builds a fresh unit of work scoped to that one
// call, closes it on every exit path, and tags failures with the
// store error taxonomy.
package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/coffee-store-api/internal/config"
	"github.com/iliyamo/coffee-store-api/internal/model"
	"github.com/iliyamo/coffee-store-api/internal/store"
	"github.com/iliyamo/coffee-store-api/internal/utils"
)

// AuthResult is the tuple every successful auth operation returns: a
// signed access token, the raw refresh token, the access expiry and
// the user it identifies.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         *model.User
}

// AuthService owns credential verification and the refresh-token
// lifecycle. Access tokens are stateless; refresh tokens are
// persisted rows so they can be revoked, and each one can mint
// exactly one successor.
type AuthService struct {
	db  *sql.DB
	cfg config.Config
}

func NewAuthService(db *sql.DB, cfg config.Config) *AuthService {
	return &AuthService{db: db, cfg: cfg}
}

// Login verifies the username/password pair and issues a fresh token
// pair. Unknown usernames and wrong passwords are indistinguishable
// to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	uow := store.New(s.db)
	defer uow.Close()

	users, err := uow.Users.Find(ctx, store.EqualsValue{Field: "username", Value: username})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 || !utils.VerifyPassword(users[0].PasswordHash, password) {
		return nil, fmt.Errorf("invalid username or password: %w", store.ErrUnauthorized)
	}
	return s.issueTokens(ctx, uow, users[0])
}

// Register creates a user with role User and logs them in
// immediately. Duplicate usernames or emails yield a conflict.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("username, email and password are required: %w", store.ErrValidation)
	}

	uow := store.New(s.db)
	defer uow.Close()

	existing, err := uow.Users.Find(ctx, store.Or{
		store.EqualsValue{Field: "username", Value: username},
		store.EqualsValue{Field: "email", Value: email},
	})
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("username or email already exists: %w", store.ErrConflict)
	}

	hash, err := utils.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		CreatedAt:    time.Now().UTC(),
	}
	uow.Users.Add(user)
	if _, err := uow.SaveChanges(ctx); err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, uow, user)
}

// Refresh rotates a refresh token: the presented token is revoked
// and a new pair is issued for its owner. A missing, revoked or
// expired token is unauthorized, so a token can be spent only once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	uow := store.New(s.db)
	defer uow.Close()

	tokens, err := uow.RefreshTokens.Find(ctx, store.EqualsValue{Field: "token", Value: refreshToken})
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("invalid refresh token: %w", store.ErrUnauthorized)
	}
	token := tokens[0]
	if token.IsRevoked || time.Now().UTC().After(token.ExpiresAt) {
		return nil, fmt.Errorf("expired or revoked refresh token: %w", store.ErrUnauthorized)
	}

	user, err := uow.Users.GetByID(ctx, token.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("token owner no longer exists: %w", store.ErrUnauthorized)
	}

	// Single-use rotation. The staged revoke commits in the same
	// flush as the successor insert, so a failed rotation leaves the
	// presented token spendable.
	token.IsRevoked = true
	uow.RefreshTokens.Update(token)
	return s.issueTokens(ctx, uow, user)
}

// Logout revokes the given refresh token. An unknown token is not an
// error, so repeated logouts are harmless.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	uow := store.New(s.db)
	defer uow.Close()

	tokens, err := uow.RefreshTokens.Find(ctx, store.EqualsValue{Field: "token", Value: refreshToken})
	if err != nil {
		return err
	}
	if len(tokens) == 0 || tokens[0].IsRevoked {
		return nil
	}
	tokens[0].IsRevoked = true
	uow.RefreshTokens.Update(tokens[0])
	_, err = uow.SaveChanges(ctx)
	return err
}

// ValidateToken reports whether an access token passes signature,
// issuer, audience and expiry checks. It never returns an error;
// any failure is simply false.
func (s *AuthService) ValidateToken(accessToken string) bool {
	_, err := utils.ParseAccessToken(accessToken, s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.JWTAudience)
	return err == nil
}

// issueTokens signs an access token and persists a new refresh token
// row for the user on the caller's unit of work.
func (s *AuthService) issueTokens(ctx context.Context, uow *store.UnitOfWork, user *model.User) (*AuthResult, error) {
	access, err := utils.NewAccessToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.JWTAudience, user, s.cfg.AccessTTLMin)
	if err != nil {
		return nil, err
	}
	refresh, err := utils.NewRefreshToken(s.cfg.RefreshTTLDays)
	if err != nil {
		return nil, err
	}
	uow.RefreshTokens.Add(&model.RefreshToken{
		UserID:    user.ID,
		Token:     refresh.Raw,
		ExpiresAt: refresh.Exp,
		CreatedAt: time.Now().UTC(),
	})
	if _, err := uow.SaveChanges(ctx); err != nil {
		return nil, err
	}
	return &AuthResult{
		AccessToken:  access.Token,
		RefreshToken: refresh.Raw,
		ExpiresAt:    access.Exp,
		User:         user,
	}, nil
}
