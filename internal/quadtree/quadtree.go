/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package quadtree is a region quadtree over possibly rotated rectangles.
//
// Nodes subdivide axis-aligned space; an object is referenced by every leaf
// whose region it overlaps, so an object straddling a split line lives in
// several leaves. Queries deduplicate by id and return objects sorted by id.
// Frames not fully inside the root bounds are kept in an overflow list that
// every query scans linearly. The tree is not safe for concurrent use.
package quadtree

import (
	"errors"
	"sort"

	"boothplan/internal/vector"
)

// ErrDuplicateID is returned by Insert when the id is already indexed.
var ErrDuplicateID = errors.New("quadtree: duplicate id")

// Child quadrant order.
const (
	TopRight = iota
	TopLeft
	BottomLeft
	BottomRight
)

// Object is an indexed entry.
type Object struct {
	ID    string
	Frame vector.Frame
}

// Stats summarizes the tree shape.
type Stats struct {
	Nodes      int
	Leaves     int
	Depth      int
	References int
	Objects    int
	Overflow   int
}

type node struct {
	bounds   vector.Rect
	level    int
	ids      []string
	children *[4]*node
}

func (n *node) leaf() bool { return n.children == nil }

// Tree is the index root.
type Tree struct {
	root       *node
	maxObjects int
	maxLevels  int
	frames     map[string]vector.Frame
	overflow   map[string]struct{}
}

// New creates an empty tree. maxObjects below 1 is treated as 1 and a
// negative maxLevels as 0 (a single leaf).
func New(bounds vector.Rect, maxObjects, maxLevels int) *Tree {
	return &Tree{
		root:       &node{bounds: bounds},
		maxObjects: max(1, maxObjects),
		maxLevels:  max(0, maxLevels),
		frames:     map[string]vector.Frame{},
		overflow:   map[string]struct{}{},
	}
}

// Bounds returns the root region.
func (t *Tree) Bounds() vector.Rect { return t.root.bounds }

// Len returns the number of distinct objects.
func (t *Tree) Len() int { return len(t.frames) }

// Has reports whether id is indexed.
func (t *Tree) Has(id string) bool {
	_, ok := t.frames[id]
	return ok
}

// Frame returns the indexed frame for id.
func (t *Tree) Frame(id string) (vector.Frame, bool) {
	f, ok := t.frames[id]
	return f, ok
}

// Insert adds id with frame f.
func (t *Tree) Insert(id string, f vector.Frame) error {
	if _, ok := t.frames[id]; ok {
		return ErrDuplicateID
	}
	t.frames[id] = f
	if !t.root.bounds.ContainsRect(f.Bounds()) {
		t.overflow[id] = struct{}{}
		return nil
	}
	t.insert(t.root, id, f)
	return nil
}

func (t *Tree) insert(n *node, id string, f vector.Frame) {
	if !n.leaf() {
		for _, c := range t.targets(n, f) {
			t.insert(c, id, f)
		}
		return
	}
	n.ids = append(n.ids, id)
	if len(n.ids) > t.maxObjects && n.level < t.maxLevels {
		t.split(n)
	}
}

// targets picks the children that should reference f: every quadrant with
// shared area, or failing that every quadrant the bounding box touches.
func (t *Tree) targets(n *node, f vector.Frame) []*node {
	var out []*node
	for _, c := range n.children {
		if vector.RectsOverlap(f, vector.FrameOf(c.bounds)) {
			out = append(out, c)
		}
	}
	if len(out) > 0 {
		return out
	}
	b := f.Bounds()
	for _, c := range n.children {
		if c.bounds.Intersects(b) {
			out = append(out, c)
			// zero-size frames on a split line need only one home
			if b.W == 0 && b.H == 0 {
				break
			}
		}
	}
	return out
}

func (t *Tree) split(n *node) {
	hw, hh := n.bounds.W/2, n.bounds.H/2
	x, y, lvl := n.bounds.X, n.bounds.Y, n.level+1
	n.children = &[4]*node{
		TopRight:    {bounds: vector.R(x+hw, y, hw, hh), level: lvl},
		TopLeft:     {bounds: vector.R(x, y, hw, hh), level: lvl},
		BottomLeft:  {bounds: vector.R(x, y+hh, hw, hh), level: lvl},
		BottomRight: {bounds: vector.R(x+hw, y+hh, hw, hh), level: lvl},
	}
	ids := n.ids
	n.ids = nil
	for _, id := range ids {
		t.insert(n, id, t.frames[id])
	}
}

// Remove drops every reference to id. Unknown ids are ignored.
func (t *Tree) Remove(id string) {
	f, ok := t.frames[id]
	if !ok {
		return
	}
	delete(t.frames, id)
	if _, ok := t.overflow[id]; ok {
		delete(t.overflow, id)
		return
	}
	t.remove(t.root, id, f.Bounds())
}

func (t *Tree) remove(n *node, id string, b vector.Rect) {
	if !n.bounds.Intersects(b) {
		return
	}
	if n.leaf() {
		for i, v := range n.ids {
			if v == id {
				n.ids = append(n.ids[:i], n.ids[i+1:]...)
				break
			}
		}
		return
	}
	for _, c := range n.children {
		t.remove(c, id, b)
	}
	t.collapse(n)
}

// collapse turns n back into a leaf when its subtree holds few enough objects.
func (t *Tree) collapse(n *node) {
	seen := map[string]struct{}{}
	if !t.gather(n, seen, t.maxObjects) {
		return
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	n.children = nil
	n.ids = ids
}

// gather collects distinct ids under n and stops early once more than limit are found.
func (t *Tree) gather(n *node, seen map[string]struct{}, limit int) bool {
	if n.leaf() {
		for _, id := range n.ids {
			seen[id] = struct{}{}
		}
		return len(seen) <= limit
	}
	for _, c := range n.children {
		if !t.gather(c, seen, limit) {
			return false
		}
	}
	return true
}

// Clear drops all objects and subdivisions.
func (t *Tree) Clear() {
	t.root = &node{bounds: t.root.bounds}
	t.frames = map[string]vector.Frame{}
	t.overflow = map[string]struct{}{}
}

// DetectCollision returns every object sharing interior area with q.
func (t *Tree) DetectCollision(q vector.Frame) []Object {
	return t.collect(q.Bounds(), func(f vector.Frame) bool { return vector.RectsOverlap(q, f) })
}

// QueryPoint returns every object whose rotated frame contains p.
func (t *Tree) QueryPoint(p vector.Pt) []Object {
	return t.collect(vector.Rect{X: p.X, Y: p.Y}, func(f vector.Frame) bool { return f.Contains(p) })
}

// Search returns every object whose bounding box touches r.
func (t *Tree) Search(r vector.Rect) []Object {
	return t.collect(r, func(f vector.Frame) bool { return f.Bounds().Intersects(r) })
}

func (t *Tree) collect(region vector.Rect, match func(vector.Frame) bool) []Object {
	seen := map[string]struct{}{}
	var out []Object
	consider := func(id string) {
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		if f := t.frames[id]; match(f) {
			out = append(out, Object{ID: id, Frame: f})
		}
	}
	t.walk(t.root, region, consider)
	for id := range t.overflow {
		consider(id)
	}
	sortObjects(out)
	return out
}

func (t *Tree) walk(n *node, region vector.Rect, fn func(string)) {
	if !n.bounds.Intersects(region) {
		return
	}
	if n.leaf() {
		for _, id := range n.ids {
			fn(id)
		}
		return
	}
	for _, c := range n.children {
		t.walk(c, region, fn)
	}
}

// Stats walks the tree and reports its shape.
func (t *Tree) Stats() Stats {
	s := Stats{Objects: len(t.frames), Overflow: len(t.overflow)}
	var visit func(n *node)
	visit = func(n *node) {
		s.Nodes++
		s.Depth = max(s.Depth, n.level)
		if n.leaf() {
			s.Leaves++
			s.References += len(n.ids)
			return
		}
		for _, c := range n.children {
			visit(c)
		}
	}
	visit(t.root)
	return s
}

func sortObjects(objs []Object) {
	sort.Slice(objs, func(i, j int) bool { return objs[i].ID < objs[j].ID })
}
