/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package item holds the layout item model: a closed set of kinds sharing one
// Item type, a per-kind capability table, snapshot records and the factory
// rebuilding items from them.
//
// Setters never notify anyone. Every geometry mutation returns a Change that
// the caller must hand to the pool so the spatial indices stay in sync.
package item

import (
	"github.com/google/uuid"

	"boothplan/internal/textlayout"
	"boothplan/internal/vector"
)

// Change names an item whose geometry or content was mutated.
type Change struct {
	ID string
}

// Item is one placed element of a layout.
type Item struct {
	id        string
	kind      Kind
	frame     vector.Frame
	colliding bool

	text    string
	font    textlayout.FontSpec
	padding float64
	color   vector.Color
	url     string

	composite *composite
}

// New creates an item of kind k with a fresh id and the kind's default style.
func New(k Kind, f vector.Frame) *Item {
	return newWithID(uuid.NewString(), k, f)
}

func newWithID(id string, k Kind, f vector.Frame) *Item {
	it := &Item{id: id, kind: k}
	it.frame = clampFrame(f)
	if st, ok := textlayout.GetStyle(k.Caps().Style); ok {
		it.font = st.Font
		it.padding = st.Padding
	}
	switch k {
	case KindBox:
		it.color = vector.Accent
	case KindObstacle:
		it.color = vector.Muted
	case KindRemoteComposite:
		it.composite = &composite{}
	}
	return it
}

// NewBox creates a booth box with a label.
func NewBox(f vector.Frame, label string) *Item {
	it := New(KindBox, f)
	it.text = label
	return it
}

// NewDescription creates a free-standing text item.
func NewDescription(pos vector.Pt, text string) *Item {
	it := New(KindDescription, vector.Frame{Pos: pos})
	it.text = text
	return it
}

// NewPhoto creates an image item referencing url.
func NewPhoto(f vector.Frame, url string) *Item {
	it := New(KindPhoto, f)
	it.url = url
	return it
}

// NewObstacle creates a fixed obstacle (pillar, wall, stage).
func NewObstacle(f vector.Frame) *Item { return New(KindObstacle, f) }

// NewRemoteComposite creates an empty composite whose children come from url.
func NewRemoteComposite(pos vector.Pt, url string) *Item {
	it := New(KindRemoteComposite, vector.Frame{Pos: pos})
	it.url = url
	return it
}

func (it *Item) ID() string                { return it.id }
func (it *Item) Kind() Kind                { return it.kind }
func (it *Item) Caps() Capabilities        { return it.kind.Caps() }
func (it *Item) Frame() vector.Frame       { return it.frame }
func (it *Item) Pos() vector.Pt            { return it.frame.Pos }
func (it *Item) Size() vector.Size         { return it.frame.Size }
func (it *Item) Rotate() float64           { return it.frame.Rotate }
func (it *Item) Center() vector.Pt         { return it.frame.Center() }
func (it *Item) Bounds() vector.Rect       { return it.frame.Bounds() }
func (it *Item) Corners() [4]vector.Pt     { return it.frame.Corners() }
func (it *Item) Color() vector.Color       { return it.color }
func (it *Item) URL() string               { return it.url }
func (it *Item) Font() textlayout.FontSpec { return it.font }
func (it *Item) Padding() float64          { return it.padding }
func (it *Item) Text() string              { return it.text }

func (it *Item) SetPos(p vector.Pt) Change {
	it.frame.Pos = p
	return it.change()
}

// SetSize clamps negative dimensions to zero.
func (it *Item) SetSize(s vector.Size) Change {
	it.frame.Size = vector.Size{W: max(0, s.W), H: max(0, s.H)}
	return it.change()
}

func (it *Item) SetRotate(deg float64) Change {
	it.frame.Rotate = vector.NormalizeAngle(deg)
	return it.change()
}

func (it *Item) SetFrame(f vector.Frame) Change {
	it.frame = clampFrame(f)
	return it.change()
}

func (it *Item) Translate(d vector.Pt) Change {
	it.frame.Pos = it.frame.Pos.Add(d)
	return it.change()
}

// SetText replaces the text content. It does not reflow; see interact.
func (it *Item) SetText(s string) Change {
	it.text = s
	return it.change()
}

func (it *Item) SetFont(f textlayout.FontSpec) Change {
	it.font = f
	return it.change()
}

// ApplyStyle takes the font and padding of st.
func (it *Item) ApplyStyle(st textlayout.TextStyle) Change {
	it.padding = st.Padding
	return it.SetFont(st.Font)
}

func (it *Item) SetColor(c vector.Color) Change {
	it.color = c
	return it.change()
}

// Colliding is maintained by the pool for collidable kinds.
func (it *Item) Colliding() bool { return it.colliding }

// SetColliding is reserved for the pool; items never compute it themselves.
func (it *Item) SetColliding(v bool) { it.colliding = v && it.Caps().Collidable }

// Clone returns a deep copy with the same id.
func (it *Item) Clone() *Item {
	cp := *it
	if it.composite != nil {
		cp.composite = it.composite.clone()
	}
	return &cp
}

func (it *Item) change() Change { return Change{ID: it.id} }

func clampFrame(f vector.Frame) vector.Frame {
	f.Size.W = max(0, f.Size.W)
	f.Size.H = max(0, f.Size.H)
	f.Rotate = vector.NormalizeAngle(f.Rotate)
	return f
}
