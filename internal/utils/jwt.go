package utils // package utils provides helpers for token creation and password hashing

import (
	"crypto/rand"     // secure random number generation
	"encoding/base64" // refresh tokens travel as base64 strings
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iliyamo/coffee-store-api/internal/model"
)

// AccessToken is a signed HS256 JWT plus its expiry. Access tokens
// are short-lived and verified statelessly: signature, issuer,
// audience and expiry, no server-side lookup.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// RefreshToken is a long-lived opaque credential. Raw is the value
// handed to the client; the server persists it so it can be revoked.
type RefreshToken struct {
	Raw string
	Exp time.Time
}

// NewAccessToken signs an HS256 JWT for the user carrying the
// identity claims verifiers rely on: sub (user id), name, email and
// role, plus iss/aud/exp/iat.
func NewAccessToken(secret, issuer, audience string, u *model.User, ttlMin int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":   u.ID,
		"name":  u.Username,
		"email": u.Email,
		"role":  u.Role,
		"iss":   issuer,
		"aud":   audience,
		"exp":   exp.Unix(),
		"iat":   now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies signature, issuer, audience and expiry
// and returns the claims. Expiry is checked with zero leeway.
func ParseAccessToken(raw, secret, issuer, audience string) (jwt.MapClaims, error) {
	tok, err := jwt.Parse(raw,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		},
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !tok.Valid {
		if err == nil {
			err = jwt.ErrTokenUnverifiable
		}
		return nil, err
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// NewRefreshToken returns 32 bytes of secure randomness encoded as
// base64 together with its expiry, ttlDays from now.
func NewRefreshToken(ttlDays int) (RefreshToken, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{
		Raw: base64.StdEncoding.EncodeToString(buf),
		Exp: time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour),
	}, nil
}
