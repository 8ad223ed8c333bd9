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
	"sync"
	"time"
)

// Snapshot is a serialized layout state (an item memento) captured before a change.
// Blob content is opaque to the manager; size is estimated as len(Blob).
type Snapshot struct {
	Label string
	Blob  []byte
	TS    time.Time
}

// Config controls memory and depth caps and coalescing behavior.
type Config struct {
	// MaxBytes is a soft cap over both stacks; the oldest entries are pruned when exceeded.
	MaxBytes int
	// MaxDepth limits the undo stack depth (0 means unlimited).
	MaxDepth int
	// MinInterval coalesces snapshots with the same non-empty label pushed within the interval
	// (0 disables coalescing). The earlier snapshot is kept so one undo reverts the whole burst.
	MinInterval time.Duration
}

// Manager provides an in-memory undo/redo stack for a single layout document.
// It is safe for concurrent use.
type Manager struct {
	cfg Config
	mu  sync.Mutex

	undo []Snapshot
	redo []Snapshot

	totalBytes int
}

func NewManager(cfg Config) *Manager {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 16 * 1024 * 1024 // 16 MiB
	}
	return &Manager{cfg: cfg}
}

// Push records the state before a change and clears the redo stack.
func (m *Manager) Push(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropRedoLocked()
	if n := len(m.undo); n > 0 && s.Label != "" {
		last := &m.undo[n-1]
		if last.Label == s.Label && s.TS.Sub(last.TS) < m.cfg.MinInterval {
			last.TS = s.TS
			return
		}
	}
	m.undo = append(m.undo, s)
	m.totalBytes += len(s.Blob)
	m.enforceCapsLocked()
}

// Undo pops the most recent snapshot and stores current on the redo stack.
// The caller restores the returned snapshot.
func (m *Manager) Undo(current Snapshot) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.undo) == 0 {
		return Snapshot{}, false
	}
	s := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	m.totalBytes -= len(s.Blob)
	m.redo = append(m.redo, current)
	m.totalBytes += len(current.Blob)
	m.enforceCapsLocked()
	return s, true
}

// Redo pops the most recently undone state and stores current on the undo stack.
func (m *Manager) Redo(current Snapshot) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.redo) == 0 {
		return Snapshot{}, false
	}
	s := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	m.totalBytes -= len(s.Blob)
	m.undo = append(m.undo, current)
	m.totalBytes += len(current.Blob)
	m.enforceCapsLocked()
	return s, true
}

func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo) > 0
}

func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redo) > 0
}

// Clear empties both stacks, e.g. after opening another document.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undo, m.redo = nil, nil
	m.totalBytes = 0
}

// Stats returns current sizes for diagnostics.
func (m *Manager) Stats() (totalBytes int, undoDepth int, redoDepth int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totalBytes, len(m.undo), len(m.redo)
}

func (m *Manager) dropRedoLocked() {
	for _, s := range m.redo {
		m.totalBytes -= len(s.Blob)
	}
	m.redo = nil
}

func (m *Manager) enforceCapsLocked() {
	if m.cfg.MaxDepth > 0 && len(m.undo) > m.cfg.MaxDepth {
		toDrop := len(m.undo) - m.cfg.MaxDepth
		for i := 0; i < toDrop; i++ {
			m.totalBytes -= len(m.undo[i].Blob)
		}
		m.undo = append([]Snapshot{}, m.undo[toDrop:]...)
	}
	// Oldest undo entries go first, then the farthest redo entries.
	for m.cfg.MaxBytes > 0 && m.totalBytes > m.cfg.MaxBytes {
		switch {
		case len(m.undo) > 0:
			m.totalBytes -= len(m.undo[0].Blob)
			m.undo = m.undo[1:]
		case len(m.redo) > 0:
			m.totalBytes -= len(m.redo[0].Blob)
			m.redo = m.redo[1:]
		default:
			return
		}
	}
}
