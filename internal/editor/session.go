/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor glues the interaction engine, the item pool and the undo
// stack into one editing session. Every mutation result coming out of the
// interactor is synced into the pool before the call returns, so queries
// never observe stale geometry.
package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"

	"boothplan/internal/interact"
	"boothplan/internal/item"
	applog "boothplan/internal/log"
	"boothplan/internal/pool"
	"boothplan/internal/storage"
	"boothplan/internal/textlayout"
	"boothplan/internal/undo"
	"boothplan/internal/vector"
)

// ErrNoSelection is returned by operations that need a selection.
var ErrNoSelection = errors.New("editor: nothing selected")

// Options configures a session.
type Options struct {
	Name string
	Pool pool.Options
	Undo undo.Config
	// Source fetches remote composite children. LoadRemote fails without it.
	Source item.Source
	// Styles overrides the builtin text styles of newly drawn items.
	Styles *textlayout.StyleSheet
}

// Session is one open layout. Not safe for concurrent use.
type Session struct {
	name   string
	pool   *pool.Pool
	undo   *undo.Manager
	source item.Source
	styles *textlayout.StyleSheet

	pending  *undo.Snapshot // state before the running gesture
	touched  bool           // the running gesture changed something
	modified bool
	now      func() time.Time
	log      *slog.Logger
}

// New creates an empty session.
func New(opts Options) *Session {
	return &Session{
		name:   opts.Name,
		pool:   pool.New(opts.Pool),
		undo:   undo.NewManager(opts.Undo),
		source: opts.Source,
		styles: opts.Styles,
		now:    time.Now,
		log:    applog.WithComponent("editor"),
	}
}

func (s *Session) Name() string                    { return s.name }
func (s *Session) SetName(name string)             { s.name = name }
func (s *Session) Pool() *pool.Pool                { return s.pool }
func (s *Session) History() *undo.Manager          { return s.undo }
func (s *Session) Modified() bool                  { return s.modified }
func (s *Session) MarkSaved()                      { s.modified = false }
func (s *Session) Selection() *interact.Interactor { return s.pool.Selection() }

// SelectAt selects the topmost item under p.
func (s *Session) SelectAt(p vector.Pt) *interact.Interactor { return s.pool.SelectAt(p) }

// SelectArea selects every item overlapping the rectangle.
func (s *Session) SelectArea(pos vector.Pt, size vector.Size) *interact.Interactor {
	return s.pool.SelectItemByArea(pos, size)
}

// PointerDown starts a gesture. An open text session is closed first so the
// edit keeps its own undo step. A press outside the current selection
// selects the topmost item under the pointer.
func (s *Session) PointerDown(p vector.Pt, doubleClick bool) interact.Handle {
	sel := s.pool.Selection()
	if sel != nil && sel.State() == interact.StateTextEditing {
		s.EndText()
	}
	if sel == nil || sel.CheckInteract(p, doubleClick) == interact.HandleNone {
		if sel = s.pool.SelectAt(p); sel == nil {
			return interact.HandleNone
		}
	}
	h := sel.PointerDown(p, doubleClick)
	if h != interact.HandleNone {
		s.checkpoint(gestureLabel(h))
	}
	return h
}

// PointerMove forwards the movement and syncs whatever changed.
func (s *Session) PointerMove(p vector.Pt) interact.Result {
	sel := s.pool.Selection()
	if sel == nil {
		return interact.Result{}
	}
	return s.apply(sel.PointerMove(p))
}

// PointerUp ends the gesture and records it for undo when it changed anything.
func (s *Session) PointerUp() interact.Result {
	sel := s.pool.Selection()
	if sel == nil {
		return interact.Result{}
	}
	res := s.apply(sel.PointerUp())
	if sel.State() != interact.StateTextEditing {
		s.commit()
	}
	return res
}

// BeginText opens a text session on the single selected item.
func (s *Session) BeginText() (interact.Overlay, error) {
	sel := s.pool.Selection()
	if sel == nil {
		return interact.Overlay{}, ErrNoSelection
	}
	ov, err := sel.BeginText()
	if err != nil {
		return interact.Overlay{}, err
	}
	if s.pending == nil {
		s.checkpoint("text")
	}
	return ov, nil
}

// EditText replaces the text of the item being edited.
func (s *Session) EditText(text string) (interact.Overlay, error) {
	sel := s.pool.Selection()
	if sel == nil {
		return interact.Overlay{}, ErrNoSelection
	}
	res, ov, err := sel.EditText(text)
	if err != nil {
		return interact.Overlay{}, err
	}
	s.apply(res)
	return ov, nil
}

// EndText closes the text session; the whole edit becomes one undo step.
func (s *Session) EndText() {
	if sel := s.pool.Selection(); sel != nil {
		s.apply(sel.EndText())
	}
	s.commit()
}

// Undo restores the state before the last recorded change.
func (s *Session) Undo() (bool, error) {
	return s.step(s.undo.Undo)
}

// Redo re-applies the last undone change.
func (s *Session) Redo() (bool, error) {
	return s.step(s.undo.Redo)
}

func (s *Session) step(pop func(undo.Snapshot) (undo.Snapshot, bool)) (bool, error) {
	s.pending, s.touched = nil, false
	cur, err := s.capture("")
	if err != nil {
		return false, err
	}
	snap, ok := pop(cur)
	if !ok {
		return false, nil
	}
	if err := s.restore(snap); err != nil {
		return false, err
	}
	s.modified = true
	return true, nil
}

// Draw adds a new item of kind with frame f on top and selects it.
func (s *Session) Draw(kind item.Kind, f vector.Frame) (*item.Item, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("draw: %w: %q", item.ErrUnknownType, kind)
	}
	it := item.New(kind, f)
	if st, ok := s.styles.Resolve(kind.Caps().Style); ok {
		it.ApplyStyle(st)
	}
	err := s.record("draw", func() (bool, error) { return true, s.pool.AddItem(it) })
	if err != nil {
		return nil, err
	}
	s.pool.Select(it.ID())
	return it, nil
}

// Add places existing items on top as one undo step.
func (s *Session) Add(items ...*item.Item) error {
	return s.record("add", func() (bool, error) { return len(items) > 0, s.pool.AddItems(items...) })
}

// Delete removes the selected items and returns their ids.
func (s *Session) Delete() ([]string, error) {
	if s.pool.Selection() == nil {
		return nil, ErrNoSelection
	}
	var ids []string
	err := s.record("delete", func() (bool, error) {
		ids = s.pool.DeleteSelectedItem()
		return len(ids) > 0, nil
	})
	return ids, err
}

// SetColor recolors every selected item as one undo step.
func (s *Session) SetColor(c vector.Color) error {
	sel := s.pool.Selection()
	if sel == nil {
		return ErrNoSelection
	}
	return s.record("color", func() (bool, error) {
		changed := lo.FilterMap(sel.Items(), func(it *item.Item, _ int) (string, bool) {
			if it.Color() == c {
				return "", false
			}
			return it.SetColor(c).ID, true
		})
		s.pool.Sync(changed...)
		return len(changed) > 0, nil
	})
}

// LoadRemote fetches a composite from url, places it at pos and selects it.
// On failure nothing is added.
func (s *Session) LoadRemote(ctx context.Context, url string, pos vector.Pt) (*item.Item, error) {
	if s.source == nil {
		return nil, errors.New("editor: no remote source configured")
	}
	it := item.NewRemoteComposite(pos, url)
	err := s.record("remote", func() (bool, error) { return true, s.pool.LoadComposite(ctx, it, s.source) })
	if err != nil {
		return nil, err
	}
	s.pool.Select(it.ID())
	return it, nil
}

// Document captures the session as a storage document.
func (s *Session) Document() (storage.Document, error) {
	m, err := s.pool.Save()
	if err != nil {
		return storage.Document{}, fmt.Errorf("capture items: %w", err)
	}
	doc := storage.Document{Name: s.name, Items: m}
	if pol := s.pool.Policy(); pol.CheckBounds {
		doc.EditableArea = storage.AreaOf(pol.EditableArea)
	}
	return doc, nil
}

// OpenDocument replaces the session content and clears the undo history.
// On a decode error the session is unchanged.
func (s *Session) OpenDocument(doc storage.Document) error {
	if err := s.pool.Restore(doc.Items); err != nil {
		return err
	}
	pol := s.pool.Policy()
	pol.CheckBounds = doc.EditableArea != nil
	if doc.EditableArea != nil {
		pol.EditableArea = doc.EditableArea.Rect()
	}
	s.pool.SetPolicy(pol)
	s.name = doc.Name
	s.undo.Clear()
	s.pending, s.touched, s.modified = nil, false, false
	s.log.Info("document opened", slog.String("name", doc.Name), slog.Int("items", s.pool.Len()))
	return nil
}

// record runs a discrete mutation and pushes the prior state when it
// reports a change.
func (s *Session) record(label string, mutate func() (bool, error)) error {
	before, err := s.capture(label)
	if err != nil {
		return err
	}
	changed, err := mutate()
	if err != nil {
		return err
	}
	if changed {
		s.undo.Push(before)
		s.modified = true
	}
	return nil
}

func (s *Session) apply(res interact.Result) interact.Result {
	if !res.Empty() {
		s.pool.Sync(res.Changed...)
		s.touched = true
	}
	return res
}

func (s *Session) checkpoint(label string) {
	snap, err := s.capture(label)
	if err != nil {
		s.log.Error("capture undo snapshot", slog.Any("err", err))
		return
	}
	s.pending, s.touched = &snap, false
}

func (s *Session) commit() {
	if s.pending != nil && s.touched {
		s.undo.Push(*s.pending)
		s.modified = true
	}
	s.pending, s.touched = nil, false
}

func (s *Session) capture(label string) (undo.Snapshot, error) {
	m, err := s.pool.Save()
	if err != nil {
		return undo.Snapshot{}, fmt.Errorf("capture: %w", err)
	}
	blob, err := json.Marshal(m)
	if err != nil {
		return undo.Snapshot{}, fmt.Errorf("encode memento: %w", err)
	}
	return undo.Snapshot{Label: label, Blob: blob, TS: s.now()}, nil
}

func (s *Session) restore(snap undo.Snapshot) error {
	var m item.Memento
	if err := json.Unmarshal(snap.Blob, &m); err != nil {
		return fmt.Errorf("decode memento: %w", err)
	}
	return s.pool.Restore(m)
}

func gestureLabel(h interact.Handle) string {
	switch {
	case h.IsCorner():
		return "resize"
	case h == interact.HandleRotate:
		return "rotate"
	case h == interact.HandleText:
		return "text"
	}
	return "move"
}
