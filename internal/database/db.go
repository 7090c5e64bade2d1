package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// OpenMySQL connects to MySQL and verifies the connection.
func OpenMySQL(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// OpenSQLite opens a SQLite database at the given path ("file::memory:"
// for an in-memory instance, as the tests use). Foreign keys are
// enforced and the pool is pinned to one connection because each
// connection to an in-memory database sees its own copy.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// Open opens the configured adapter. "mysql" is the production
// engine; "sqlite" exists for local runs and tests.
func Open(adapter, user, pass, host, port, name string) (*sql.DB, error) {
	switch adapter {
	case "sqlite":
		return OpenSQLite(name)
	case "", "mysql":
		return OpenMySQL(user, pass, host, port, name)
	default:
		return nil, fmt.Errorf("unsupported DB_ADAPTER: %s (supported: mysql, sqlite)", adapter)
	}
}
