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
	"testing"
	"time"

	"boothplan/internal/item"
	"boothplan/internal/vector"
)

func TestSnapshotsCRUD(t *testing.T) {
	root := t.TempDir()
	h := &Handle{Root: root}
	ctx := context.Background()

	if _, ok, err := LatestSnapshot(ctx, h); err != nil || ok {
		t.Fatalf("expected no snapshot in a fresh history, ok=%v err=%v", ok, err)
	}

	box := item.NewBox(vector.F(0, 0, 40, 40, 0), "first")
	m, err := item.Capture([]*item.Item{box})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := SaveSnapshot(ctx, h, "save", m, t0); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	latest, ok, err := LatestSnapshot(ctx, h)
	if err != nil || !ok {
		t.Fatalf("LatestSnapshot ok=%v err=%v", ok, err)
	}
	if latest.Label != "save" || latest.Items != 1 || !latest.TS.Equal(t0) {
		t.Fatalf("unexpected snapshot: %+v", latest)
	}
	got, err := latest.Memento()
	if err != nil || len(got) != 1 || got[0].Type != "box" {
		t.Fatalf("memento mismatch: %v err=%v", got, err)
	}

	for i := 0; i < 5; i++ {
		if err := SaveSnapshot(ctx, h, "autosave", item.Memento{}, t0.Add(time.Duration(i+1)*time.Millisecond)); err != nil {
			t.Fatalf("SaveSnapshot %d: %v", i, err)
		}
	}
	list, err := ListSnapshots(ctx, h, 10)
	if err != nil || len(list) != 6 {
		t.Fatalf("ListSnapshots got %d err %v", len(list), err)
	}
	if !list[0].TS.After(list[1].TS) || list[5].Label != "save" {
		t.Fatalf("expected newest first, got %v then %v", list[0].TS, list[1].TS)
	}

	n, err := PruneOldSnapshots(ctx, h, 3)
	if err != nil {
		t.Fatalf("PruneOldSnapshots: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 deletions, got %d", n)
	}
	list, err = ListSnapshots(ctx, h, 10)
	if err != nil || len(list) != 3 {
		t.Fatalf("ListSnapshots after prune got %d err %v", len(list), err)
	}
	if n, _ := PruneOldSnapshots(ctx, h, 0); n != 0 {
		t.Fatalf("keepLast 0 must be a no-op, deleted %d", n)
	}
}

func TestSnapshotOrderingAcrossSecondBoundaries(t *testing.T) {
	h := &Handle{Root: t.TempDir()}
	ctx := context.Background()
	t0 := time.Date(2025, 3, 1, 12, 0, 5, 100_000_000, time.UTC)
	t1 := time.Date(2025, 3, 1, 12, 0, 5, 120_000_000, time.UTC)
	if err := SaveSnapshot(ctx, h, "later", item.Memento{}, t1); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	if err := SaveSnapshot(ctx, h, "earlier", item.Memento{}, t0); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	latest, _, err := LatestSnapshot(ctx, h)
	if err != nil || latest.Label != "later" {
		t.Fatalf("expected 'later' snapshot, got %q err=%v", latest.Label, err)
	}
}

func TestSnapshotsRejectNilHandle(t *testing.T) {
	ctx := context.Background()
	if err := SaveSnapshot(ctx, nil, "", nil, time.Now()); err == nil {
		t.Fatalf("expected error for nil handle")
	}
	if _, err := ListSnapshots(ctx, nil, 1); err == nil {
		t.Fatalf("expected error for nil handle")
	}
}
