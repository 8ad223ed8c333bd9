/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package item

import (
	"context"
	"errors"
	"fmt"

	"boothplan/internal/vector"
)

// ErrNotComposite is returned when a composite-only operation targets another kind.
var ErrNotComposite = errors.New("item: not a composite")

// Source fetches the child records of a remote composite.
type Source interface {
	Fetch(ctx context.Context, url string) ([]Record, error)
}

// composite children are stored in local coordinates whose origin is the
// top-left of their natural bounding box.
type composite struct {
	children []*Item
	natural  vector.Size
	loaded   bool
}

func (c *composite) clone() *composite {
	cp := &composite{natural: c.natural, loaded: c.loaded}
	for _, ch := range c.children {
		cp.children = append(cp.children, ch.Clone())
	}
	return cp
}

// Children returns the composite's children in local coordinates.
func (it *Item) Children() []*Item {
	if it.composite == nil {
		return nil
	}
	return it.composite.children
}

// Loaded reports whether the composite has completed a load.
func (it *Item) Loaded() bool { return it.composite != nil && it.composite.loaded }

// Natural is the children's bounding box size at load time.
func (it *Item) Natural() vector.Size {
	if it.composite == nil {
		return vector.Size{}
	}
	return it.composite.natural
}

// Load fetches and builds the children. On any error the item is left untouched.
// The frame keeps its position and rotation and takes the children's bounding
// box size; an empty payload yields a zero-size composite.
func (it *Item) Load(ctx context.Context, src Source, f *Factory) (Change, error) {
	if it.composite == nil {
		return Change{}, ErrNotComposite
	}
	recs, err := src.Fetch(ctx, it.url)
	if err != nil {
		return Change{}, fmt.Errorf("load composite %s: %w", it.id, err)
	}
	children, err := f.BuildAll(recs)
	if err != nil {
		return Change{}, fmt.Errorf("load composite %s: %w", it.id, err)
	}

	var bounds vector.Rect
	for i, ch := range children {
		if i == 0 {
			bounds = ch.Bounds()
			continue
		}
		bounds = bounds.Union(ch.Bounds())
	}
	origin := bounds.Min()
	for _, ch := range children {
		ch.Translate(origin.Mul(-1))
	}
	it.composite = &composite{
		children: children,
		natural:  vector.Size{W: bounds.W, H: bounds.H},
		loaded:   true,
	}
	it.frame.Size = it.composite.natural
	return it.change(), nil
}

// ChildScale is the frame size relative to the natural size; 1 on degenerate axes.
func (it *Item) ChildScale() (sx, sy float64) {
	sx, sy = 1, 1
	n := it.Natural()
	if n.W > 0 {
		sx = it.frame.Size.W / n.W
	}
	if n.H > 0 {
		sy = it.frame.Size.H / n.H
	}
	return sx, sy
}

// ChildTransform maps local child coordinates onto the canvas.
func (it *Item) ChildTransform() vector.Affine2D {
	sx, sy := it.ChildScale()
	return vector.RotateAbout(it.frame.Center(), it.frame.Rotate).
		Mul(vector.Translate(it.frame.Pos.X, it.frame.Pos.Y)).
		Mul(vector.Scale(sx, sy))
}
