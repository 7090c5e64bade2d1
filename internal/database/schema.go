package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Schema bootstrap. The statements are kept per-adapter because the
// auto-increment spelling differs; everything else (types, keys,
// constraints) is mirrored. migrations/schema.sql carries the same
// MySQL DDL for operators who prefer running it by hand.

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		description VARCHAR(500) NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(200) NOT NULL,
		description VARCHAR(500) NOT NULL DEFAULT '',
		price DECIMAL(18,2) NOT NULL,
		category_id BIGINT NOT NULL,
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id CHAR(36) PRIMARY KEY,
		username VARCHAR(100) NOT NULL UNIQUE,
		email VARCHAR(200) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id CHAR(36) NOT NULL,
		order_date DATETIME NOT NULL,
		status VARCHAR(50) NOT NULL,
		payment_id BIGINT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id)
	)`,
	`CREATE TABLE IF NOT EXISTS order_details (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		order_id BIGINT NOT NULL,
		product_id BIGINT NOT NULL,
		quantity INT NOT NULL,
		unit_price DECIMAL(18,2) NOT NULL,
		FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE,
		FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE RESTRICT
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		order_id BIGINT NOT NULL,
		amount DECIMAL(18,2) NOT NULL,
		payment_date DATETIME NOT NULL,
		payment_method VARCHAR(50) NOT NULL,
		FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		user_id CHAR(36) NOT NULL,
		token VARCHAR(64) NOT NULL UNIQUE,
		expires_at DATETIME NOT NULL,
		is_revoked TINYINT(1) NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id)
	)`,
}

// CreateSchema creates all tables for the given adapter. It is
// idempotent; MySQL deployments normally apply migrations/schema.sql
// instead, while the sqlite adapter and the tests call this on boot.
func CreateSchema(ctx context.Context, db *sql.DB, adapter string) error {
	stmts := mysqlSchema
	if adapter == "sqlite" {
		stmts = sqliteStatements()
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// sqliteStatements rewrites the MySQL DDL into SQLite's dialect.
// Declared column types are preserved where it matters: DATETIME
// decltypes make the driver hand back time.Time on scan.
func sqliteStatements() []string {
	out := make([]string, len(mysqlSchema))
	r := strings.NewReplacer(
		"BIGINT AUTO_INCREMENT PRIMARY KEY", "INTEGER PRIMARY KEY AUTOINCREMENT",
		"TINYINT(1)", "BOOLEAN",
		"DECIMAL(18,2)", "REAL",
	)
	for i, s := range mysqlSchema {
		out[i] = r.Replace(s)
	}
	return out
}
