/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render describes what to draw without drawing it. Items, the
// selection overlay and the pool all reduce to Drawable trees that an
// on-screen canvas or the exporters consume.
package render

import (
	"boothplan/internal/item"
	"boothplan/internal/textlayout"
	"boothplan/internal/vector"
)

// Kind enumerates drawable primitives.
type Kind string

const (
	KindRect   Kind = "rect"
	KindCircle Kind = "circle"
	KindLine   Kind = "line"
	KindText   Kind = "text"
	KindGroup  Kind = "group"
)

// Drawable is one declarative primitive.
//
// Rect and text use Pos/Size/Rotate (rotation about their own center).
// Circle uses Center/Radius, line uses From/To. A group draws Children in
// local coordinates through Transform.
type Drawable struct {
	Kind     Kind
	ID       string
	Pos      vector.Pt
	Size     vector.Size
	Rotate   float64
	Center   vector.Pt
	Radius   float64
	From, To vector.Pt
	Text     string
	Font     textlayout.FontSpec
	Padding  float64
	Image    string
	Fill     vector.Fill
	Stroke   vector.Stroke
	Scale    vector.Pt
	Children []Drawable
}

// Frame returns the rotated frame of a rect, text or group.
func (d Drawable) Frame() vector.Frame {
	return vector.Frame{Pos: d.Pos, Size: d.Size, Rotate: d.Rotate}
}

// Transform maps a group's local coordinates onto its parent.
func (d Drawable) Transform() vector.Affine2D {
	sx, sy := d.Scale.X, d.Scale.Y
	if sx == 0 && sy == 0 {
		sx, sy = 1, 1
	}
	return vector.RotateAbout(d.Frame().Center(), d.Rotate).
		Mul(vector.Translate(d.Pos.X, d.Pos.Y)).
		Mul(vector.Scale(sx, sy))
}

// Bounds is the axis-aligned extent in parent coordinates.
func (d Drawable) Bounds() vector.Rect {
	switch d.Kind {
	case KindCircle:
		return vector.R(d.Center.X-d.Radius, d.Center.Y-d.Radius, 2*d.Radius, 2*d.Radius)
	case KindLine:
		lo := vector.Pt{X: min(d.From.X, d.To.X), Y: min(d.From.Y, d.To.Y)}
		return vector.R(lo.X, lo.Y, max(d.From.X, d.To.X)-lo.X, max(d.From.Y, d.To.Y)-lo.Y)
	default:
		return d.Frame().Bounds()
	}
}

// Extent returns the union of bounds; ok is false for an empty list.
func Extent(ds []Drawable) (r vector.Rect, ok bool) {
	for _, d := range ds {
		if !ok {
			r, ok = d.Bounds(), true
			continue
		}
		r = r.Union(d.Bounds())
	}
	return r, ok
}

const collisionWidth = 2

func outline(c vector.Color) vector.Stroke {
	return vector.Stroke{Color: c, Width: 1, Enabled: true}
}

func tint(c vector.Color, alpha uint8) vector.Fill {
	c.A = alpha
	return vector.Fill{Color: c, Enabled: true}
}

// ForItem builds the drawable of one item. Colliding items get an alert stroke.
func ForItem(it *item.Item) Drawable {
	f := it.Frame()
	d := Drawable{Kind: KindRect, ID: it.ID(), Pos: f.Pos, Size: f.Size, Rotate: f.Rotate}
	switch it.Kind() {
	case item.KindBox:
		d.Fill = tint(it.Color(), 48)
		d.Stroke = outline(it.Color())
		d.Text, d.Font, d.Padding = it.Text(), it.Font(), it.Padding()
	case item.KindDescription:
		d.Kind = KindText
		d.Text, d.Font, d.Padding = it.Text(), it.Font(), it.Padding()
		if !it.Color().IsZero() {
			d.Fill = vector.Fill{Color: it.Color(), Enabled: true}
		}
	case item.KindPhoto:
		d.Image = it.URL()
		d.Stroke = outline(vector.Muted)
	case item.KindObstacle:
		d.Fill = tint(it.Color(), 160)
		d.Stroke = outline(vector.Black)
	case item.KindRemoteComposite:
		d.Kind = KindGroup
		sx, sy := it.ChildScale()
		d.Scale = vector.Pt{X: sx, Y: sy}
		for _, ch := range it.Children() {
			d.Children = append(d.Children, ForItem(ch))
		}
		if !it.Loaded() {
			d.Stroke = vector.Stroke{Color: vector.Muted, Width: 1, Dashed: true, Enabled: true}
		}
	}
	if it.Colliding() {
		d.Stroke = vector.Stroke{Color: vector.Alert, Width: collisionWidth, Enabled: true}
	}
	return d
}

// ForItems maps items in order.
func ForItems(items []*item.Item) []Drawable {
	out := make([]Drawable, 0, len(items))
	for _, it := range items {
		out = append(out, ForItem(it))
	}
	return out
}
