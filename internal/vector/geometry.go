/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Basic 2D geometry and transforms for the layout canvas.
// Coordinates are float64 canvas units; rotations are degrees, clockwise on
// a y-down canvas, applied about a rectangle's own center.

import "math"

// Epsilon is the minimum overlap length that counts as shared area.
const Epsilon = 1e-9

// Pt is a 2D point.
type Pt struct{ X, Y float64 }

func (p Pt) Add(o Pt) Pt      { return Pt{p.X + o.X, p.Y + o.Y} }
func (p Pt) Sub(o Pt) Pt      { return Pt{p.X - o.X, p.Y - o.Y} }
func (p Pt) Mul(s float64) Pt { return Pt{p.X * s, p.Y * s} }
func (p Pt) Dot(o Pt) float64 { return p.X*o.X + p.Y*o.Y }
func (p Pt) Len() float64     { return math.Hypot(p.X, p.Y) }
func (p Pt) Near(o Pt, eps float64) bool {
	return math.Abs(p.X-o.X) <= eps && math.Abs(p.Y-o.Y) <= eps
}

// Size is a width/height pair.
type Size struct{ W, H float64 }

// Rect is an axis-aligned rectangle defined by min corner and size.
type Rect struct {
	X, Y float64
	W, H float64
}

func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, W: w, H: h} }

func (r Rect) Min() Pt    { return Pt{r.X, r.Y} }
func (r Rect) Max() Pt    { return Pt{r.X + r.W, r.Y + r.H} }
func (r Rect) Center() Pt { return Pt{r.X + r.W/2, r.Y + r.H/2} }

func (r Rect) Contains(p Pt) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X <= r.X+r.W && p.Y <= r.Y+r.H
}

// ContainsRect reports whether o lies fully inside r (edges inclusive).
func (r Rect) ContainsRect(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y && o.X+o.W <= r.X+r.W && o.Y+o.H <= r.Y+r.H
}

// Intersects is a closed-interval test: touching rectangles intersect.
func (r Rect) Intersects(o Rect) bool {
	return r.X <= o.X+o.W && o.X <= r.X+r.W && r.Y <= o.Y+o.H && o.Y <= r.Y+r.H
}

// Inset returns a rectangle inset by dx,dy on all sides (negative grows).
func (r Rect) Inset(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W - 2*dx, H: r.H - 2*dy}
}

// Union returns the minimal rect containing both.
func (r Rect) Union(o Rect) Rect {
	minX := min(r.X, o.X)
	minY := min(r.Y, o.Y)
	maxX := max(r.X+r.W, o.X+o.W)
	maxY := max(r.Y+r.H, o.Y+o.H)
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Frame is a possibly rotated rectangle: Pos is the unrotated top-left corner
// and Rotate (degrees) is applied about the center.
type Frame struct {
	Pos    Pt
	Size   Size
	Rotate float64
}

func F(x, y, w, h, rotate float64) Frame {
	return Frame{Pos: Pt{x, y}, Size: Size{w, h}, Rotate: rotate}
}

func (f Frame) Center() Pt { return Pt{f.Pos.X + f.Size.W/2, f.Pos.Y + f.Size.H/2} }

// Corners returns [TL, TR, BR, BL] of the rotated frame.
func (f Frame) Corners() [4]Pt { return Corners(f.Pos, f.Size, f.Rotate) }

// Bounds returns the axis-aligned bounding box of the rotated frame.
func (f Frame) Bounds() Rect {
	lo, hi := BoundingBox(f.Pos, f.Size, f.Rotate)
	return Rect{X: lo.X, Y: lo.Y, W: hi.X - lo.X, H: hi.Y - lo.Y}
}

// Contains reports whether p lies inside the rotated frame (edges inclusive).
func (f Frame) Contains(p Pt) bool {
	q := RotatePoint(p, f.Center(), -f.Rotate)
	return Rect{X: f.Pos.X, Y: f.Pos.Y, W: f.Size.W, H: f.Size.H}.Contains(q)
}

// Overlaps is RectsOverlap(f, o).
func (f Frame) Overlaps(o Frame) bool { return RectsOverlap(f, o) }

// WithCenter moves the frame so that its center lands on c.
func (f Frame) WithCenter(c Pt) Frame {
	f.Pos = Pt{c.X - f.Size.W/2, c.Y - f.Size.H/2}
	return f
}

// FrameOf wraps an axis-aligned rect.
func FrameOf(r Rect) Frame { return Frame{Pos: Pt{r.X, r.Y}, Size: Size{r.W, r.H}} }

// RotatePoint rotates p around anchor by deg degrees. deg == 0 returns p unchanged.
func RotatePoint(p, anchor Pt, deg float64) Pt {
	if deg == 0 {
		return p
	}
	s, c := sincos(deg)
	dx, dy := p.X-anchor.X, p.Y-anchor.Y
	return Pt{
		X: anchor.X + dx*c - dy*s,
		Y: anchor.Y + dx*s + dy*c,
	}
}

// Corners enumerates [TL, TR, BR, BL] of the rectangle pos/size rotated about its center.
func Corners(pos Pt, size Size, deg float64) [4]Pt {
	pts := [4]Pt{
		pos,
		{pos.X + size.W, pos.Y},
		{pos.X + size.W, pos.Y + size.H},
		{pos.X, pos.Y + size.H},
	}
	if deg == 0 {
		return pts
	}
	c := Pt{pos.X + size.W/2, pos.Y + size.H/2}
	for i := range pts {
		pts[i] = RotatePoint(pts[i], c, deg)
	}
	return pts
}

// BoundingBox returns min/max over the four rotated corners.
func BoundingBox(pos Pt, size Size, deg float64) (Pt, Pt) {
	pts := Corners(pos, size, deg)
	lo, hi := pts[0], pts[0]
	for _, p := range pts[1:] {
		lo.X, lo.Y = min(lo.X, p.X), min(lo.Y, p.Y)
		hi.X, hi.Y = max(hi.X, p.X), max(hi.Y, p.Y)
	}
	return lo, hi
}

// RectsOverlap reports whether two rotated rectangles share interior area.
// Touching edges or corners do not count, and zero-size rectangles never overlap.
func RectsOverlap(a, b Frame) bool {
	if a.Size.W <= 0 || a.Size.H <= 0 || b.Size.W <= 0 || b.Size.H <= 0 {
		return false
	}
	if quarterTurn(a.Rotate) && quarterTurn(b.Rotate) {
		ra, rb := a.Bounds(), b.Bounds()
		return spanOverlap(ra.X, ra.X+ra.W, rb.X, rb.X+rb.W) &&
			spanOverlap(ra.Y, ra.Y+ra.H, rb.Y, rb.Y+rb.H)
	}
	ca, cb := a.Corners(), b.Corners()
	axes := [4]Pt{
		unit(ca[1].Sub(ca[0])), unit(ca[3].Sub(ca[0])),
		unit(cb[1].Sub(cb[0])), unit(cb[3].Sub(cb[0])),
	}
	for _, ax := range axes {
		minA, maxA := project(ca, ax)
		minB, maxB := project(cb, ax)
		if !spanOverlap(minA, maxA, minB, maxB) {
			return false
		}
	}
	return true
}

// SegmentsIntersect reports whether segment p1-p2 and q1-q2 share at least one point.
func SegmentsIntersect(p1, p2, q1, q2 Pt) bool {
	d1 := orient(q1, q2, p1)
	d2 := orient(q1, q2, p2)
	d3 := orient(p1, p2, q1)
	d4 := orient(p1, p2, q2)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	switch {
	case d1 == 0 && onSegment(q1, q2, p1):
		return true
	case d2 == 0 && onSegment(q1, q2, p2):
		return true
	case d3 == 0 && onSegment(p1, p2, q1):
		return true
	case d4 == 0 && onSegment(p1, p2, q2):
		return true
	}
	return false
}

// AngleBetween returns the signed angle in degrees from (from-pivot) to (to-pivot),
// normalized to (-180, 180].
func AngleBetween(pivot, from, to Pt) float64 {
	a := math.Atan2(from.Y-pivot.Y, from.X-pivot.X)
	b := math.Atan2(to.Y-pivot.Y, to.X-pivot.X)
	return NormalizeDelta((b - a) * 180 / math.Pi)
}

// NormalizeDelta maps deg into (-180, 180].
func NormalizeDelta(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg <= -180 {
		deg += 360
	} else if deg > 180 {
		deg -= 360
	}
	return deg
}

// NormalizeAngle maps deg into [0, 360).
func NormalizeAngle(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg == 360 {
		return 0
	}
	return deg
}

func spanOverlap(minA, maxA, minB, maxB float64) bool {
	return min(maxA, maxB)-max(minA, minB) > Epsilon
}

func project(pts [4]Pt, axis Pt) (float64, float64) {
	lo := pts[0].Dot(axis)
	hi := lo
	for _, p := range pts[1:] {
		v := p.Dot(axis)
		lo, hi = min(lo, v), max(hi, v)
	}
	return lo, hi
}

func unit(p Pt) Pt {
	l := p.Len()
	if l == 0 {
		return p
	}
	return Pt{p.X / l, p.Y / l}
}

func orient(a, b, c Pt) float64 {
	v := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
	if math.Abs(v) < Epsilon {
		return 0
	}
	return v
}

func onSegment(a, b, p Pt) bool {
	return p.X >= min(a.X, b.X)-Epsilon && p.X <= max(a.X, b.X)+Epsilon &&
		p.Y >= min(a.Y, b.Y)-Epsilon && p.Y <= max(a.Y, b.Y)+Epsilon
}

func quarterTurn(deg float64) bool { return math.Mod(deg, 90) == 0 }

// sincos snaps quarter turns to exact values so axis-aligned results stay exact.
func sincos(deg float64) (float64, float64) {
	if quarterTurn(deg) {
		switch int(NormalizeAngle(deg)) {
		case 0:
			return 0, 1
		case 90:
			return 1, 0
		case 180:
			return 0, -1
		case 270:
			return -1, 0
		}
	}
	return math.Sincos(deg * math.Pi / 180)
}

// Affine2D represents a 2D affine transform as matrix:
// | a c e |
// | b d f |
// | 0 0 1 |
// stored as [a b c d e f].
type Affine2D struct{ A, B, C, D, E, F float64 }

var Identity = Affine2D{A: 1, D: 1}

func (m Affine2D) Mul(n Affine2D) Affine2D {
	return Affine2D{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

func (m Affine2D) Apply(p Pt) Pt {
	return Pt{
		X: m.A*p.X + m.C*p.Y + m.E,
		Y: m.B*p.X + m.D*p.Y + m.F,
	}
}

func Translate(tx, ty float64) Affine2D { return Affine2D{A: 1, D: 1, E: tx, F: ty} }
func Scale(sx, sy float64) Affine2D     { return Affine2D{A: sx, D: sy} }

// RotateDeg returns a rotation about the origin using the canvas convention.
func RotateDeg(deg float64) Affine2D {
	s, c := sincos(deg)
	return Affine2D{A: c, B: s, C: -s, D: c}
}

// RotateAbout rotates by deg around anchor.
func RotateAbout(anchor Pt, deg float64) Affine2D {
	return Translate(anchor.X, anchor.Y).Mul(RotateDeg(deg)).Mul(Translate(-anchor.X, -anchor.Y))
}

// FloatRound rounds v to n decimal places deterministically.
func FloatRound(v float64, places int) float64 {
	if places < 0 {
		return v
	}
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
