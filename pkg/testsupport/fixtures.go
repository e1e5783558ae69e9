// Package testsupport provides shared fixtures for package tests: an
// in-memory sqlite store with the commerce schema applied, plus seed
// helpers for the entities tests touch most.
package testsupport

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-commerce-store/store"
	"github.com/google/uuid"
)

// schema is applied statement by statement; the connection manager prepares
// each statement individually.
var schema = []string{
	`CREATE TABLE users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL,
		email TEXT NOT NULL,
		password_hash TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price REAL NOT NULL,
		category TEXT NOT NULL,
		stock INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		total REAL NOT NULL,
		status TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE order_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		order_id INTEGER NOT NULL,
		product_id INTEGER NOT NULL,
		quantity INTEGER NOT NULL,
		unit_price REAL NOT NULL
	)`,
}

// StoreConfig returns a connection config pointing at a fresh in-memory
// sqlite database. Each call gets its own database: the name is unique and
// shared-cache keeps it alive across the pooled connections.
func StoreConfig() store.Config {
	cfg := store.DefaultConfig()
	cfg.Driver = "sqlite3"
	cfg.DSN = "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	cfg.RetryBaseDelay = time.Millisecond
	return cfg
}

// NewStore connects a Manager to a fresh in-memory database with the schema
// applied, and disconnects it when the test finishes.
func NewStore(t *testing.T) *store.Manager {
	t.Helper()

	m, err := store.NewManager(StoreConfig(), nil)
	if err != nil {
		t.Fatalf("failed to build store manager: %v", err)
	}

	ctx := context.Background()
	if err := m.Connect(ctx); err != nil {
		t.Fatalf("failed to connect store: %v", err)
	}
	t.Cleanup(func() { _ = m.Disconnect() })

	ApplySchema(t, m)
	return m
}

// ApplySchema creates the commerce tables on an already connected manager.
func ApplySchema(t *testing.T, m *store.Manager) {
	t.Helper()

	for _, ddl := range schema {
		if _, err := m.Exec(context.Background(), ddl); err != nil {
			t.Fatalf("failed to apply schema: %v", err)
		}
	}
}

// SeedUser inserts an account row directly and returns its id.
func SeedUser(t *testing.T, m *store.Manager, username, email, passwordHash string) int64 {
	t.Helper()

	res, err := m.Exec(context.Background(),
		"INSERT INTO users (username, email, password_hash, created_at, is_active) VALUES (?, ?, ?, ?, ?)",
		username, email, passwordHash, time.Now().UTC(), true)
	if err != nil {
		t.Fatalf("failed to seed user %s: %v", username, err)
	}
	return res.LastInsertID
}

// SeedProduct inserts a catalog row directly and returns its id.
func SeedProduct(t *testing.T, m *store.Manager, name string, price float64, category string, stock int) int64 {
	t.Helper()

	res, err := m.Exec(context.Background(),
		"INSERT INTO products (name, description, price, category, stock) VALUES (?, '', ?, ?, ?)",
		name, price, category, stock)
	if err != nil {
		t.Fatalf("failed to seed product %s: %v", name, err)
	}
	return res.LastInsertID
}
