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
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"boothplan/internal/item"
)

// language=SQL
// dialect=SQLite
const insertSnapshotSQL = `INSERT INTO snapshots(ts, label, item_count, blob) VALUES (?, ?, ?, ?)`

// language=SQL
// dialect=SQLite
const selectLatestSnapshotSQL = `SELECT id, ts, label, item_count, blob FROM snapshots ORDER BY ts DESC, id DESC LIMIT 1`

// language=SQL
// dialect=SQLite
const listSnapshotsSQL = `SELECT id, ts, label, item_count, blob FROM snapshots ORDER BY ts DESC, id DESC LIMIT ?`

// language=SQL
// dialect=SQLite
const pruneOldSnapshotsSQL = `DELETE FROM snapshots WHERE id NOT IN (
	SELECT id FROM snapshots ORDER BY ts DESC, id DESC LIMIT ?
)`

// tsLayout has fixed width so text ordering matches time ordering.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Snapshot is one stored memento of the whole layout.
type Snapshot struct {
	ID    int64
	TS    time.Time
	Label string
	Items int
	Blob  []byte
}

// Memento decodes the stored blob.
func (s Snapshot) Memento() (item.Memento, error) {
	var m item.Memento
	if err := json.Unmarshal(s.Blob, &m); err != nil {
		return nil, fmt.Errorf("decode snapshot %d: %w", s.ID, err)
	}
	return m, nil
}

// SaveSnapshot persists a memento with a label and timestamp.
func SaveSnapshot(ctx context.Context, h *Handle, label string, m item.Memento, ts time.Time) error {
	if h == nil {
		return errors.New("nil Handle")
	}
	blob, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	db, err := OpenHistory(h.Root)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	_, err = db.ExecContext(ctx, insertSnapshotSQL, ts.UTC().Format(tsLayout), label, len(m), blob)
	return err
}

// LatestSnapshot returns the newest snapshot; ok is false when there is none.
func LatestSnapshot(ctx context.Context, h *Handle) (s Snapshot, ok bool, err error) {
	if h == nil {
		return Snapshot{}, false, errors.New("nil Handle")
	}
	db, err := OpenHistory(h.Root)
	if err != nil {
		return Snapshot{}, false, err
	}
	defer func() { _ = db.Close() }()
	s, err = scanSnapshot(db.QueryRowContext(ctx, selectLatestSnapshotSQL))
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, err
	}
	return s, true, nil
}

// ListSnapshots returns up to limit most recent snapshots, newest first.
func ListSnapshots(ctx context.Context, h *Handle, limit int) ([]Snapshot, error) {
	if h == nil {
		return nil, errors.New("nil Handle")
	}
	if limit <= 0 {
		limit = 50
	}
	db, err := OpenHistory(h.Root)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()
	rows, err := db.QueryContext(ctx, listSnapshotsSQL, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// PruneOldSnapshots keeps at most keepLast snapshots and deletes older ones.
func PruneOldSnapshots(ctx context.Context, h *Handle, keepLast int) (int64, error) {
	if h == nil {
		return 0, errors.New("nil Handle")
	}
	if keepLast <= 0 {
		return 0, nil
	}
	db, err := OpenHistory(h.Root)
	if err != nil {
		return 0, err
	}
	defer func() { _ = db.Close() }()
	res, err := db.ExecContext(ctx, pruneOldSnapshotsSQL, keepLast)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(sc scanner) (Snapshot, error) {
	var s Snapshot
	var tsStr string
	if err := sc.Scan(&s.ID, &tsStr, &s.Label, &s.Items, &s.Blob); err != nil {
		return Snapshot{}, err
	}
	// A bad timestamp still yields the blob.
	s.TS, _ = time.Parse(tsLayout, tsStr)
	return s, nil
}
