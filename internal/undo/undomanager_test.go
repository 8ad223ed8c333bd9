/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package undo

import (
	"testing"
	"time"
)

func snap(blob string, ts time.Time) Snapshot {
	return Snapshot{Blob: []byte(blob), TS: ts}
}

func TestUndoRedoBasic(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1024 * 1024, MaxDepth: 10, MinInterval: 10 * time.Millisecond})
	t0 := time.Now()
	m.Push(snap("a", t0))
	m.Push(snap("b", t0.Add(20*time.Millisecond)))
	if _, undo, redo := m.Stats(); undo != 2 || redo != 0 {
		t.Fatalf("expected 2 undo and 0 redo, got undo=%d redo=%d", undo, redo)
	}
	s, ok := m.Undo(snap("c", t0))
	if !ok || string(s.Blob) != "b" {
		t.Fatalf("undo expected 'b', got ok=%v blob=%q", ok, string(s.Blob))
	}
	s, ok = m.Redo(snap("b", t0))
	if !ok || string(s.Blob) != "c" {
		t.Fatalf("redo expected 'c', got ok=%v blob=%q", ok, string(s.Blob))
	}
	if !m.CanUndo() || m.CanRedo() {
		t.Fatalf("expected undo available and redo empty")
	}
}

func TestUndoEmpty(t *testing.T) {
	m := NewManager(Config{})
	if _, ok := m.Undo(snap("x", time.Now())); ok {
		t.Fatalf("expected undo on empty stack to fail")
	}
	if _, ok := m.Redo(snap("x", time.Now())); ok {
		t.Fatalf("expected redo on empty stack to fail")
	}
	if tb, _, _ := m.Stats(); tb != 0 {
		t.Fatalf("expected no bytes accounted, got %d", tb)
	}
}

func TestPushClearsRedo(t *testing.T) {
	m := NewManager(Config{MinInterval: time.Millisecond})
	t0 := time.Now()
	m.Push(snap("a", t0))
	m.Undo(snap("b", t0))
	if !m.CanRedo() {
		t.Fatalf("expected redo after undo")
	}
	m.Push(snap("c", t0.Add(time.Second)))
	if m.CanRedo() {
		t.Fatalf("expected push to clear redo")
	}
	if tb, _, _ := m.Stats(); tb != 1 {
		t.Fatalf("expected 1 byte accounted, got %d", tb)
	}
}

func TestCoalesceKeepsEarliest(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1024 * 1024, MaxDepth: 10, MinInterval: 50 * time.Millisecond})
	t0 := time.Now()
	m.Push(Snapshot{Label: "text", Blob: []byte("1"), TS: t0})
	m.Push(Snapshot{Label: "text", Blob: []byte("2"), TS: t0.Add(10 * time.Millisecond)})
	m.Push(Snapshot{Label: "text", Blob: []byte("3"), TS: t0.Add(40 * time.Millisecond)})
	if _, undo, _ := m.Stats(); undo != 1 {
		t.Fatalf("expected coalesced to 1 snapshot, got %d", undo)
	}
	s, ok := m.Undo(snap("4", t0))
	if !ok || string(s.Blob) != "1" {
		t.Fatalf("expected earliest snapshot '1', got ok=%v blob=%q", ok, string(s.Blob))
	}
}

func TestNoCoalesceAcrossLabels(t *testing.T) {
	m := NewManager(Config{MinInterval: time.Hour})
	t0 := time.Now()
	m.Push(Snapshot{Label: "move", Blob: []byte("1"), TS: t0})
	m.Push(Snapshot{Label: "resize", Blob: []byte("2"), TS: t0})
	m.Push(Snapshot{Blob: []byte("3"), TS: t0})
	m.Push(Snapshot{Blob: []byte("4"), TS: t0})
	if _, undo, _ := m.Stats(); undo != 4 {
		t.Fatalf("expected 4 snapshots, got %d", undo)
	}
}

func TestDepthCap(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1024, MaxDepth: 2, MinInterval: time.Millisecond})
	t0 := time.Now()
	for i := 0; i < 10; i++ {
		m.Push(snap(string(rune('a'+i)), t0.Add(time.Duration(i)*time.Second)))
	}
	tb, undo, _ := m.Stats()
	if undo != 2 || tb != 2 {
		t.Fatalf("expected depth cap to keep 2 entries of 2 bytes, got undo=%d bytes=%d", undo, tb)
	}
	s, _ := m.Undo(snap("z", t0))
	if string(s.Blob) != "j" {
		t.Fatalf("expected newest entry 'j', got %q", string(s.Blob))
	}
}

func TestBytesCapDropsOldest(t *testing.T) {
	m := NewManager(Config{MaxBytes: 8, MinInterval: time.Millisecond})
	t0 := time.Now()
	m.Push(snap("xxxx", t0))
	m.Push(snap("yyyy", t0.Add(time.Second)))
	m.Push(snap("zzzz", t0.Add(2*time.Second)))
	tb, undo, _ := m.Stats()
	if undo != 2 || tb != 8 {
		t.Fatalf("expected 2 entries / 8 bytes, got undo=%d bytes=%d", undo, tb)
	}
	m.Undo(snap("", t0))
	s, ok := m.Undo(snap("", t0))
	if !ok || string(s.Blob) != "yyyy" {
		t.Fatalf("expected oldest surviving entry 'yyyy', got %q", string(s.Blob))
	}
	if _, ok := m.Undo(snap("", t0)); ok {
		t.Fatalf("expected 'xxxx' to have been pruned")
	}
}

func TestClear(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1024, MinInterval: time.Millisecond})
	m.Push(snap("abcdef", time.Now()))
	m.Undo(snap("ghi", time.Now()))
	m.Clear()
	tb, undo, redo := m.Stats()
	if tb != 0 || undo != 0 || redo != 0 {
		t.Fatalf("expected cleared stats to be zero, got tb=%d undo=%d redo=%d", tb, undo, redo)
	}
}

func TestZeroIntervalNeverCoalesces(t *testing.T) {
	m := NewManager(Config{})
	t0 := time.Now()
	m.Push(Snapshot{Label: "draw", Blob: []byte("1"), TS: t0})
	m.Push(Snapshot{Label: "draw", Blob: []byte("2"), TS: t0})
	if _, undo, _ := m.Stats(); undo != 2 {
		t.Fatalf("expected 2 snapshots, got %d", undo)
	}
}
