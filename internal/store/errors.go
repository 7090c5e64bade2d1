// Package store implements the generic data-access layer: a typed
// repository per entity, a unit of work owning the shared session and
// transaction boundary, and a small predicate language compiled to
// SQL. Higher layers tag failures with the sentinel errors defined
// here so handlers can translate them into status codes without
// inspecting driver errors.
package store

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when an entity addressed by id is absent.
var ErrNotFound = errors.New("not found")

// ErrUnauthorized covers bad credentials and invalid, expired or
// revoked tokens.
var ErrUnauthorized = errors.New("unauthorized")

// ErrConflict signals a uniqueness or dependent-row violation, such
// as a duplicate username or deleting a product that order lines
// still reference.
var ErrConflict = errors.New("conflict")

// ErrValidation marks malformed input (unknown filter field, bad
// quantity). The HTTP layer maps it to a 400 response.
var ErrValidation = errors.New("validation failed")

// ErrTxFailed wraps flush or commit failures. The unit of work always
// rolls back before returning it.
var ErrTxFailed = errors.New("transaction failed")

// ErrTxOpen is returned by BeginTransaction when a transaction is
// already open on the unit of work. Nesting is illegal.
var ErrTxOpen = errors.New("transaction already open")

// ErrClosed is returned when a unit of work is used after Close.
var ErrClosed = errors.New("unit of work closed")

// isDuplicate reports whether a driver error is a unique-constraint
// violation. MySQL reports error 1062; the SQLite driver used in
// tests spells it out.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "1062") || strings.Contains(msg, "UNIQUE constraint")
}

// isRestricted reports whether a driver error is a foreign-key
// violation (MySQL 1451/1452, SQLite "FOREIGN KEY constraint").
func isRestricted(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "1451") || strings.Contains(msg, "1452") ||
		strings.Contains(msg, "FOREIGN KEY constraint")
}
