/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package pool owns the items of one layout and the two spatial indices over
// them: a selectable index filtered by display flags and a collidable index
// holding only collidable kinds. Index objects never leave the pool.
//
// Every geometry change must be followed by Sync before the next query.
package pool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/samber/lo"

	"boothplan/internal/interact"
	"boothplan/internal/item"
	applog "boothplan/internal/log"
	"boothplan/internal/quadtree"
	"boothplan/internal/render"
	"boothplan/internal/vector"
)

// ErrDuplicateItem is returned when adding an id that is already pooled.
var ErrDuplicateItem = errors.New("pool: duplicate item")

// DisplayFlags gate which kinds can be picked with the pointer.
type DisplayFlags struct {
	ShowObstacle bool
	ShowText     bool
	ShowPhoto    bool
}

// AllVisible shows every kind.
func AllVisible() DisplayFlags { return DisplayFlags{ShowObstacle: true, ShowText: true, ShowPhoto: true} }

func (d DisplayFlags) selectable(k item.Kind) bool {
	switch k {
	case item.KindObstacle:
		return d.ShowObstacle
	case item.KindDescription:
		return d.ShowText
	case item.KindPhoto:
		return d.ShowPhoto
	}
	return true
}

// Options configures a pool. A MaxLevels of 0 keeps each index a single
// leaf; a negative one takes the default.
type Options struct {
	// Bounds is the root region of both indices. Items outside it still work
	// but are scanned linearly.
	Bounds     vector.Rect
	MaxObjects int
	MaxLevels  int
	Display    DisplayFlags
	Factory    *item.Factory
	Interact   interact.Config
}

// DefaultOptions covers a 20000x20000 canvas around the origin.
func DefaultOptions() Options {
	return Options{
		Bounds:     vector.R(-10000, -10000, 20000, 20000),
		MaxObjects: 10,
		MaxLevels:  8,
		Display:    AllVisible(),
		Interact:   interact.Config{Policy: interact.DefaultPolicy()},
	}
}

// Pool is the item collection of one document. Not safe for concurrent use.
type Pool struct {
	opts       Options
	items      map[string]*item.Item
	order      []string // z-order, bottom first
	selectable *quadtree.Tree
	collidable *quadtree.Tree
	selection  *interact.Interactor
	log        *slog.Logger
}

// New creates an empty pool.
func New(opts Options) *Pool {
	def := DefaultOptions()
	if opts.Bounds.W <= 0 || opts.Bounds.H <= 0 {
		opts.Bounds = def.Bounds
	}
	if opts.MaxObjects <= 0 {
		opts.MaxObjects = def.MaxObjects
	}
	if opts.MaxLevels < 0 {
		opts.MaxLevels = def.MaxLevels
	}
	if opts.Factory == nil {
		opts.Factory = item.NewFactory()
	}
	if opts.Interact.Policy.HandleSize <= 0 {
		opts.Interact.Policy.HandleSize = def.Interact.Policy.HandleSize
	}
	p := &Pool{
		opts:  opts,
		items: map[string]*item.Item{},
		log:   applog.WithComponent("pool"),
	}
	p.selectable = p.newTree()
	p.collidable = p.newTree()
	return p
}

func (p *Pool) newTree() *quadtree.Tree {
	return quadtree.New(p.opts.Bounds, p.opts.MaxObjects, p.opts.MaxLevels)
}

// Factory returns the factory used by Restore.
func (p *Pool) Factory() *item.Factory { return p.opts.Factory }

func (p *Pool) Len() int { return len(p.items) }

// Item returns the item with id or nil.
func (p *Pool) Item(id string) *item.Item { return p.items[id] }

// Items returns all items in z-order.
func (p *Pool) Items() []*item.Item {
	return lo.Map(p.order, func(id string, _ int) *item.Item { return p.items[id] })
}

// AddItem registers one item on top of the z-order.
func (p *Pool) AddItem(it *item.Item) error { return p.AddItems(it) }

// AddItems registers items atomically: on a duplicate id nothing is added.
func (p *Pool) AddItems(items ...*item.Item) error {
	seen := map[string]bool{}
	for _, it := range items {
		if _, ok := p.items[it.ID()]; ok || seen[it.ID()] {
			return fmt.Errorf("%w: %s", ErrDuplicateItem, it.ID())
		}
		seen[it.ID()] = true
	}
	for _, it := range items {
		p.items[it.ID()] = it
		p.order = append(p.order, it.ID())
	}
	p.Sync(lo.Map(items, func(it *item.Item, _ int) string { return it.ID() })...)
	return nil
}

// RemoveItem drops id from the pool and the selection. It reports whether it existed.
func (p *Pool) RemoveItem(id string) bool {
	if _, ok := p.items[id]; !ok {
		return false
	}
	delete(p.items, id)
	p.order = slices.DeleteFunc(p.order, func(v string) bool { return v == id })
	p.Sync(id)
	if p.selection != nil && slices.Contains(p.selection.IDs(), id) {
		rest := lo.Filter(p.selection.Items(), func(it *item.Item, _ int) bool { return it.ID() != id })
		p.selection = p.interactor(rest)
	}
	return true
}

// Sync re-indexes the given ids and refreshes collision flags of the items
// and of every collidable neighbour they touched before or after. Ids no
// longer in the pool are only removed from the indices. A selection holding
// any of the ids recomputes its envelope.
func (p *Pool) Sync(ids ...string) {
	affected := map[string]bool{}
	if p.selection != nil && lo.Some(p.selection.IDs(), ids) {
		p.selection.Refresh()
	}
	for _, id := range ids {
		if f, ok := p.collidable.Frame(id); ok {
			for _, o := range p.collidable.DetectCollision(f) {
				affected[o.ID] = true
			}
		}
		p.selectable.Remove(id)
		p.collidable.Remove(id)

		it, ok := p.items[id]
		if !ok {
			continue
		}
		p.index(it)
		affected[id] = true
	}
	for id := range affected {
		p.refreshCollision(id)
	}
}

func (p *Pool) index(it *item.Item) {
	if p.opts.Display.selectable(it.Kind()) {
		p.indexSelectable(it)
	}
	if it.Caps().Collidable {
		if err := p.collidable.Insert(it.ID(), it.Frame()); err != nil {
			p.log.Error("index collidable", slog.String("id", it.ID()), slog.Any("err", err))
		}
	}
}

func (p *Pool) indexSelectable(it *item.Item) {
	if err := p.selectable.Insert(it.ID(), it.Frame()); err != nil {
		p.log.Error("index selectable", slog.String("id", it.ID()), slog.Any("err", err))
	}
}

// refreshCollision recomputes the flag of id and of its current neighbours.
func (p *Pool) refreshCollision(id string) {
	it, ok := p.items[id]
	if !ok || !it.Caps().Collidable {
		return
	}
	hits := p.collidable.DetectCollision(it.Frame())
	it.SetColliding(lo.SomeBy(hits, func(o quadtree.Object) bool { return o.ID != id }))
	for _, o := range hits {
		if o.ID == id {
			continue
		}
		if n := p.items[o.ID]; n != nil && !n.Colliding() {
			n.SetColliding(true)
		}
	}
}

// SearchCollide returns collidable items sharing area with f, excluding excludeID.
func (p *Pool) SearchCollide(f vector.Frame, excludeID string) []*item.Item {
	var out []*item.Item
	for _, o := range p.collidable.DetectCollision(f) {
		if o.ID != excludeID {
			out = append(out, p.items[o.ID])
		}
	}
	return out
}

// IsCollide reports whether any collidable item other than excludeID overlaps f.
func (p *Pool) IsCollide(f vector.Frame, excludeID string) bool {
	return lo.SomeBy(p.collidable.DetectCollision(f), func(o quadtree.Object) bool { return o.ID != excludeID })
}

// SelectItemByArea selects every selectable item overlapping the area.
// No hit clears the selection.
func (p *Pool) SelectItemByArea(pos vector.Pt, size vector.Size) *interact.Interactor {
	area := vector.Frame{Pos: pos, Size: size}
	var hits []quadtree.Object
	if size.W <= 0 || size.H <= 0 {
		hits = p.selectable.QueryPoint(pos)
	} else {
		hits = p.selectable.DetectCollision(area)
	}
	return p.selectIDs(lo.Map(hits, func(o quadtree.Object, _ int) string { return o.ID }))
}

// SelectAt selects the topmost selectable item under pt.
func (p *Pool) SelectAt(pt vector.Pt) *interact.Interactor {
	hits := p.selectable.QueryPoint(pt)
	if len(hits) == 0 {
		p.ClearSelect()
		return nil
	}
	hit := map[string]bool{}
	for _, o := range hits {
		hit[o.ID] = true
	}
	for i := len(p.order) - 1; i >= 0; i-- {
		if hit[p.order[i]] {
			return p.selectIDs([]string{p.order[i]})
		}
	}
	return nil
}

// Select selects the given ids, ignoring unknown ones.
func (p *Pool) Select(ids ...string) *interact.Interactor { return p.selectIDs(ids) }

func (p *Pool) selectIDs(ids []string) *interact.Interactor {
	items := lo.FilterMap(ids, func(id string, _ int) (*item.Item, bool) {
		it, ok := p.items[id]
		return it, ok
	})
	p.selection = p.interactor(items)
	return p.selection
}

func (p *Pool) interactor(items []*item.Item) *interact.Interactor {
	if len(items) == 0 {
		return nil
	}
	cfg := p.opts.Interact
	if cfg.Policy.Snap.SnapToEdges || cfg.Policy.Snap.SnapToCenters {
		selected := lo.SliceToMap(items, func(it *item.Item) (string, bool) { return it.ID(), true })
		cfg.Anchors = func() []vector.Anchor { return p.anchors(selected) }
	}
	return interact.New(items, cfg)
}

// anchors are the editable area plus every other visible item near the selection.
func (p *Pool) anchors(exclude map[string]bool) []vector.Anchor {
	var out []vector.Anchor
	if pol := p.opts.Interact.Policy; pol.CheckBounds {
		out = append(out, vector.Anchor{Rect: pol.EditableArea, Weight: 2})
	}
	for _, id := range p.order {
		if exclude[id] || !p.opts.Display.selectable(p.items[id].Kind()) {
			continue
		}
		out = append(out, vector.Anchor{Rect: p.items[id].Bounds(), Weight: 1})
	}
	return out
}

// Selection returns the current interactor or nil.
func (p *Pool) Selection() *interact.Interactor { return p.selection }

// ClearSelect drops the selection.
func (p *Pool) ClearSelect() { p.selection = nil }

// DeleteSelectedItem removes every selected item and returns their ids.
func (p *Pool) DeleteSelectedItem() []string {
	if p.selection == nil {
		return nil
	}
	ids := p.selection.IDs()
	p.selection = nil
	for _, id := range ids {
		p.RemoveItem(id)
	}
	return ids
}

// Policy returns the interaction policy handed to new selections.
func (p *Pool) Policy() interact.Policy { return p.opts.Interact.Policy }

// SetPolicy replaces the interaction policy. The current selection is rebuilt
// so it picks up the new settings.
func (p *Pool) SetPolicy(pol interact.Policy) {
	p.opts.Interact.Policy = pol
	if p.selection != nil {
		p.selection = p.interactor(p.selection.Items())
	}
}

// DisplayFlags returns the current flags.
func (p *Pool) DisplayFlags() DisplayFlags { return p.opts.Display }

// SetDisplayFlags changes the flags and rebuilds only the selectable index.
// Selected items that became hidden are deselected.
func (p *Pool) SetDisplayFlags(d DisplayFlags) {
	if d == p.opts.Display {
		return
	}
	p.opts.Display = d
	p.selectable = p.newTree()
	for _, id := range p.order {
		it := p.items[id]
		if d.selectable(it.Kind()) {
			p.indexSelectable(it)
		}
	}
	if p.selection != nil {
		visible := lo.Filter(p.selection.Items(), func(it *item.Item, _ int) bool { return d.selectable(it.Kind()) })
		p.selection = p.interactor(visible)
	}
	applog.WithOperation(p.log, "display").Debug("selectable index rebuilt", slog.Int("items", p.selectable.Len()))
}

// Rebuild replaces both indices from scratch.
func (p *Pool) Rebuild() {
	p.selectable = p.newTree()
	p.collidable = p.newTree()
	for _, id := range p.order {
		p.index(p.items[id])
	}
	for _, id := range p.order {
		p.refreshCollision(id)
	}
}

// Save captures every item in z-order.
func (p *Pool) Save() (item.Memento, error) { return item.Capture(p.Items()) }

// Restore replaces the whole content. On a decode error the pool is unchanged.
func (p *Pool) Restore(m item.Memento) error {
	items, err := p.opts.Factory.BuildAll(m)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	uniq := lo.UniqBy(items, func(it *item.Item) string { return it.ID() })
	if len(uniq) != len(items) {
		return fmt.Errorf("restore: %w", ErrDuplicateItem)
	}
	p.items = map[string]*item.Item{}
	p.order = nil
	p.selection = nil
	for _, it := range items {
		p.items[it.ID()] = it
		p.order = append(p.order, it.ID())
	}
	p.Rebuild()
	applog.WithOperation(p.log, "restore").Debug("pool restored", slog.Int("items", len(items)))
	return nil
}

// LoadComposite loads a composite's children and adds it only on success.
func (p *Pool) LoadComposite(ctx context.Context, it *item.Item, src item.Source) error {
	if _, ok := p.items[it.ID()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateItem, it.ID())
	}
	if _, err := it.Load(ctx, src, p.opts.Factory); err != nil {
		applog.WithOperation(p.log, "load-composite").Warn("composite load failed", slog.String("url", it.URL()), slog.Any("err", err))
		return err
	}
	return p.AddItem(it)
}

// Drawables renders every item in z-order.
func (p *Pool) Drawables() []render.Drawable { return render.ForItems(p.Items()) }
