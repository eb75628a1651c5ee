// Package sqlslot keeps snapshots in a SQL table, one row per slot name.
// The same slot runs on SQLite (modernc.org/sqlite) and Postgres (pgx).
package sqlslot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver

	"github.com/aretw0/htmlrms/pkg/core"
)

// Dialect captures the driver-specific SQL.
type Dialect struct {
	Name        string
	Driver      string
	pragmas     []string
	createTable string
	selectSQL   string
	upsertSQL   string
}

// SQLite stores snapshots in a local database file.
var SQLite = Dialect{
	Name:   "sqlite",
	Driver: "sqlite",
	pragmas: []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	},
	createTable: `CREATE TABLE IF NOT EXISTS htmlrms_slots (
		name TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	selectSQL: `SELECT payload FROM htmlrms_slots WHERE name = ?`,
	upsertSQL: `INSERT INTO htmlrms_slots (name, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
}

// Postgres stores snapshots in a shared database through pgx.
var Postgres = Dialect{
	Name:   "postgres",
	Driver: "pgx",
	createTable: `CREATE TABLE IF NOT EXISTS htmlrms_slots (
		name TEXT PRIMARY KEY,
		payload BYTEA NOT NULL,
		updated_at BIGINT NOT NULL
	)`,
	selectSQL: `SELECT payload FROM htmlrms_slots WHERE name = $1`,
	upsertSQL: `INSERT INTO htmlrms_slots (name, payload, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`,
}

// Slot implements core.Slot over a SQL table.
type Slot struct {
	db      *sql.DB
	name    string
	dialect Dialect
	owned   bool
}

// Open connects to dsn, prepares the table and returns a slot that owns the
// connection. For SQLite the dsn is a file path whose parent directories are
// created on demand.
func Open(ctx context.Context, dialect Dialect, dsn, name string) (*Slot, error) {
	if dialect.Name == SQLite.Name && dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}

	db, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect.Name, err)
	}
	if dialect.Name == SQLite.Name {
		db.SetMaxOpenConns(1)
	}

	s, err := New(ctx, db, dialect, name)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.owned = true
	return s, nil
}

// New wraps an existing connection. The caller keeps ownership of db.
func New(ctx context.Context, db *sql.DB, dialect Dialect, name string) (*Slot, error) {
	if name == "" {
		return nil, fmt.Errorf("slot name required")
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping %s: %w", dialect.Name, err)
	}
	for _, pragma := range dialect.pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return nil, fmt.Errorf("exec %q: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, dialect.createTable); err != nil {
		return nil, fmt.Errorf("create slot table: %w", err)
	}
	return &Slot{db: db, name: name, dialect: dialect}, nil
}

// Read implements core.Slot.
func (s *Slot) Read(ctx context.Context) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, s.dialect.selectSQL, s.name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("select slot %s: %w", s.name, err)
	}
	return payload, nil
}

// Write implements core.Slot.
func (s *Slot) Write(ctx context.Context, data []byte) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.upsertSQL, s.name, data, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("upsert slot %s: %w", s.name, err)
	}
	return nil
}

// Close releases the connection if the slot opened it.
func (s *Slot) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}
