package model

import "time"

// User represents an application user record as stored in the
// `users` table. Identity fields (ID, Username, Email) are fixed at
// registration and never change afterwards; the role is assigned at
// registration too and is not editable through this API.
//
// Fields:
//  ID           – primary key, a UUID string assigned at registration.
//  Username     – unique login name.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – role name ("User" or "Admin").
//  CreatedAt    – timestamp of creation.
type User struct {
	ID           string    // users.id (char(36) UUID)
	Username     string    // users.username
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	CreatedAt    time.Time // users.created_at
}

// Roles a user can hold. New accounts always start as RoleUser.
const (
	RoleUser  = "User"
	RoleAdmin = "Admin"
)

// RefreshToken models an entry in the `refresh_tokens` table. Each
// token belongs to a user and is single-use: refreshing with it
// revokes it and mints a successor. Revoked rows are kept for audit
// and never deleted. The revocation flag only ever flips from false
// to true.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  Token     – opaque base64 token value (unique).
//  ExpiresAt – expiration timestamp of the token.
//  IsRevoked – whether the token has been revoked.
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        int64     // refresh_tokens.id
	UserID    string    // refresh_tokens.user_id
	Token     string    // refresh_tokens.token
	ExpiresAt time.Time // refresh_tokens.expires_at
	IsRevoked bool      // refresh_tokens.is_revoked
	CreatedAt time.Time // refresh_tokens.created_at
}
