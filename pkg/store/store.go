// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package store persists worker heartbeats and audit lines to the shared
// monitoring database. Every caller treats it as best-effort.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"

	systemTable = "website_system"
	logTable    = "website_log"
)

// ErrUnknownSystem is returned when the status row for the system does not exist
var ErrUnknownSystem = errors.Base("system is not registered")

// 🗄️ Store is the monitoring store contract
type Store interface {
	// UpdateStatus records whether worker is running (on) or stopped
	UpdateStatus(ctx context.Context, on bool, worker string, at time.Time) error
	// AppendLog adds one audit line
	AppendLog(ctx context.Context, entry LogEntry) error
	Close() error
}

// 📝 LogEntry is one audit line
type LogEntry struct {
	Time    time.Time
	Message string
	Error   string
}

// 🔧 Config selects and addresses the database
type Config struct {
	Driver     string // postgres or sqlite3
	DSN        string
	Schema     string // table schema; empty for unqualified names
	SystemName string // row key in the system table
	SystemType string // system_type column of audit lines
}

// 💾 SQLStore implements Store over database/sql
type SQLStore struct {
	db         *sql.DB
	systemName string
	systemType string

	updateStatusQuery string
	appendLogQuery    string
}

var _ Store = (*SQLStore)(nil)

// 🏭 New wraps an open database handle
func New(db *sql.DB, cfg Config) *SQLStore {
	return &SQLStore{
		db:         db,
		systemName: cfg.SystemName,
		systemType: cfg.SystemType,
		updateStatusQuery: `UPDATE ` + qualify(cfg.Schema, systemTable) + `
			SET update_date = $1, status = $2, pc_user = $3
			WHERE system_name = $4`,
		appendLogQuery: `INSERT INTO ` + qualify(cfg.Schema, logTable) + `
			(system_name, system_type, update_date, log, error)
			VALUES ($1, $2, $3, $4, $5)`,
	}
}

// 🔌 Open connects to the configured database.
// SQLite databases are bootstrapped with the tables and the system row.
func Open(ctx context.Context, cfg Config) (*SQLStore, error) {
	switch cfg.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, errors.Errorf("unsupported store driver %q", cfg.Driver)
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, errors.Errorf("opening %s store: %w", cfg.Driver, err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Errorf("connecting to %s store: %w", cfg.Driver, err)
	}

	if cfg.Driver == DriverSQLite {
		// single writer avoids SQLITE_BUSY
		db.SetMaxOpenConns(1)
		if err := bootstrapSQLite(ctx, db, cfg); err != nil {
			db.Close()
			return nil, errors.Errorf("bootstrapping sqlite store: %w", err)
		}
	}

	zerolog.Ctx(ctx).Debug().Str("driver", cfg.Driver).Str("system", cfg.SystemName).Msg("store connected")
	return New(db, cfg), nil
}

// UpdateStatus implements Store.
func (s *SQLStore) UpdateStatus(ctx context.Context, on bool, worker string, at time.Time) error {
	status := 0
	if on {
		status = 1
	}

	res, err := s.db.ExecContext(ctx, s.updateStatusQuery, at, status, worker, s.systemName)
	if err != nil {
		return errors.Errorf("updating system status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return errors.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return errors.Errorf("updating system status: %w: %s", ErrUnknownSystem, s.systemName)
	}
	return nil
}

// AppendLog implements Store.
func (s *SQLStore) AppendLog(ctx context.Context, entry LogEntry) error {
	if _, err := s.db.ExecContext(ctx, s.appendLogQuery,
		s.systemName, s.systemType, entry.Time, entry.Message, entry.Error); err != nil {
		return errors.Errorf("appending audit log: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func qualify(schema, table string) string {
	if schema == "" {
		return pq.QuoteIdentifier(table)
	}
	return pq.QuoteIdentifier(schema) + "." + pq.QuoteIdentifier(table)
}

func bootstrapSQLite(ctx context.Context, db *sql.DB, cfg Config) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ` + qualify(cfg.Schema, systemTable) + ` (
			system_name TEXT PRIMARY KEY,
			status      INTEGER NOT NULL DEFAULT 0,
			pc_user     TEXT,
			update_date TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS ` + qualify(cfg.Schema, logTable) + ` (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			system_name TEXT NOT NULL,
			system_type TEXT NOT NULL,
			update_date TIMESTAMP NOT NULL,
			log         TEXT,
			error       TEXT
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.Errorf("creating table: %w", err)
		}
	}

	if _, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO `+qualify(cfg.Schema, systemTable)+` (system_name) VALUES ($1)`,
		cfg.SystemName); err != nil {
		return errors.Errorf("registering system %s: %w", cfg.SystemName, err)
	}
	return nil
}

// 🕳️ Nop discards everything; used when no store is configured or reachable
type Nop struct{}

var _ Store = Nop{}

func (Nop) UpdateStatus(ctx context.Context, on bool, worker string, at time.Time) error {
	return nil
}

func (Nop) AppendLog(ctx context.Context, entry LogEntry) error { return nil }

func (Nop) Close() error { return nil }
