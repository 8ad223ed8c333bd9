/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "boothplan/internal/log"
	"boothplan/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// HistoryDirName stores per-document disposable data under the document root.
	HistoryDirName  = ".bpl"
	HistoryFileName = "history.sqlite"

	// schemaVersion tracks the local SQLite schema. Bump it together with a
	// new step in runMigrations.
	schemaVersion = 2
)

// HistoryPath returns the full path to the document's history database file.
func HistoryPath(root string) string {
	return filepath.Join(root, HistoryDirName, HistoryFileName)
}

// OpenHistory ensures that the history database exists at .bpl/history.sqlite,
// opens it, enables WAL mode, and brings the schema up to date.
// Callers close the returned *sql.DB.
func OpenHistory(root string) (*sql.DB, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "history_open").With(
		slog.String("root", root),
	)
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("document root is required")
	}
	if err := os.MkdirAll(filepath.Join(root, HistoryDirName), 0o755); err != nil {
		l.Error("create .bpl dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create .bpl dir: %w", err)
	}

	path := HistoryPath(root)
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if err := ensureHistorySchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure history schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}

	l.Debug("history ready", slog.String("path", path))
	return db, nil
}

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		// Keep the stored schema so runMigrations can see it.
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// ensureHistorySchema creates the current tables when missing. Columns added
// after schema 1 are left to runMigrations for existing databases.
func ensureHistorySchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			id         INTEGER PRIMARY KEY,
			ts         TEXT    NOT NULL,
			label      TEXT    NOT NULL DEFAULT '',
			item_count INTEGER NOT NULL DEFAULT 0,
			blob       BLOB    NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_ts ON snapshots(ts);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure history schema: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental schema migrations up to schemaVersion.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if cur > schemaVersion {
		// Written by a newer build; never downgrade.
		return nil
	}
	for cur < schemaVersion {
		next := cur + 1
		var stmts []string
		switch next {
		case 2:
			stmts = []string{
				`ALTER TABLE snapshots ADD COLUMN label TEXT NOT NULL DEFAULT '';`,
				`ALTER TABLE snapshots ADD COLUMN item_count INTEGER NOT NULL DEFAULT 0;`,
			}
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		for _, q := range stmts {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d stmt failed: %w", next, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
		cur = next
	}
	return nil
}

// DetectAndResetHistory checks the history database for corruption. A broken
// file is copied to .bpl/backups and replaced with an empty database.
// It returns true when a reset was performed.
func DetectAndResetHistory(ctx context.Context, root string) (bool, error) {
	path := HistoryPath(root)
	db, err := OpenHistory(root)
	if err == nil {
		defer db.Close()
		var chk string
		qerr := db.QueryRowContext(ctx, `PRAGMA quick_check;`).Scan(&chk)
		if qerr == nil && strings.Contains(strings.ToLower(chk), "ok") {
			if _, perr := db.ExecContext(ctx, `SELECT 1 FROM snapshots LIMIT 1;`); perr == nil {
				return false, nil
			}
		}
		_ = db.Close()
	}
	applog.WithOperation(applog.WithComponent("storage"), "history_reset").Warn("history database unusable, resetting",
		slog.String("path", path), slog.Any("err", err))
	backupHistoryFile(path)
	for _, suffix := range []string{"", "-wal", "-shm"} {
		_ = os.Remove(path + suffix)
	}
	fresh, err := OpenHistory(root)
	if err != nil {
		return false, fmt.Errorf("recreate history: %w", err)
	}
	return true, fresh.Close()
}

// backupHistoryFile copies the current database into a timestamped backup in .bpl/backups.
func backupHistoryFile(path string) {
	bdir := filepath.Join(filepath.Dir(path), "backups")
	_ = os.MkdirAll(bdir, 0o755)
	bak := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", filepath.Base(path), stamp()))
	if data, err := os.ReadFile(path); err == nil {
		_ = os.WriteFile(bak, data, 0o644)
	}
}
