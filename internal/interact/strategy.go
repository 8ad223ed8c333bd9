/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interact

import (
	"math"

	"boothplan/internal/item"
	"boothplan/internal/textlayout"
	"boothplan/internal/vector"
)

// Step is the input of one drag step handed to a strategy.
type Step struct {
	Items  []*item.Item
	Info   Info // envelope before the step
	Handle Handle
	// Delta is the pointer movement since the previous event.
	Delta vector.Pt
	// Prev and Pointer are the previous and current pointer positions.
	Prev, Pointer vector.Pt
	// Pivot is the rotation center fixed when the drag started.
	Pivot   vector.Pt
	MinSize float64
}

// Strategy applies one step. ok is false when the step was rejected and
// nothing was mutated.
type Strategy func(s Step) (changes []item.Change, ok bool)

// ReflowFunc resizes a text item after its content changed.
type ReflowFunc func(it *item.Item, l textlayout.Layouter) (item.Change, error)

// Strategies is the behaviour table bound to a selection.
type Strategies struct {
	Move   Strategy
	Resize Strategy
	Rotate Strategy
	Reflow ReflowFunc
}

// Registry selects strategies per item kind, with a separate table for groups.
type Registry struct {
	kinds map[item.Kind]Strategies
	group Strategies
	def   Strategies
}

// DefaultRegistry binds the builtin strategies.
func DefaultRegistry() *Registry {
	single := Strategies{Move: Move, Resize: FreeResize, Rotate: Rotate}
	r := &Registry{
		kinds: map[item.Kind]Strategies{},
		group: Strategies{Move: Move, Resize: DiagonalResize, Rotate: Rotate},
		def:   single,
	}
	for _, k := range item.Kinds() {
		s := single
		caps := k.Caps()
		if caps.Proportional {
			s.Resize = ProportionalResize
		}
		switch caps.TextPolicy {
		case item.TextGrow:
			s.Reflow = ReflowGrow
		case item.TextBounded:
			s.Reflow = ReflowBounded
		}
		r.kinds[k] = s
	}
	return r
}

// Register replaces the strategies of kind k.
func (r *Registry) Register(k item.Kind, s Strategies) { r.kinds[k] = s }

// For returns the strategies for a selection.
func (r *Registry) For(items []*item.Item) Strategies {
	if len(items) > 1 {
		return r.group
	}
	if len(items) == 1 {
		if s, ok := r.kinds[items[0].Kind()]; ok {
			return s
		}
	}
	return r.def
}

// Move translates every item by the step delta.
func Move(s Step) ([]item.Change, bool) {
	if s.Delta == (vector.Pt{}) {
		return nil, true
	}
	out := make([]item.Change, 0, len(s.Items))
	for _, it := range s.Items {
		out = append(out, it.Translate(s.Delta))
	}
	return out, true
}

// FreeResize moves the dragged corner by the delta while the opposite corner
// stays fixed in world space. Width and height follow independently.
func FreeResize(s Step) ([]item.Change, bool) {
	if len(s.Items) != 1 || !s.Handle.IsCorner() {
		return nil, false
	}
	it := s.Items[0]
	i := s.Handle.cornerIndex()
	opp := s.Info.Corner(i + 2)
	moved := s.Info.Corner(i).Add(s.Delta)

	rot := s.Info.Rotate
	diag := vector.RotatePoint(moved.Sub(opp), vector.Pt{}, -rot)
	sign := s.Handle.outward()
	w, h := diag.X*sign.X, diag.Y*sign.Y
	if w < s.MinSize || h < s.MinSize {
		return nil, false
	}
	center := opp.Add(moved).Mul(0.5)
	f := vector.Frame{Size: vector.Size{W: w, H: h}, Rotate: it.Rotate()}.WithCenter(center)
	return []item.Change{it.SetFrame(f)}, true
}

// scaleFactor derives a uniform scale from the outward delta along the dominant axis.
func scaleFactor(size vector.Size, outward vector.Pt) (float64, bool) {
	if size.W <= 0 || size.H <= 0 {
		return 0, false
	}
	if math.Abs(outward.X*size.H/size.W) >= math.Abs(outward.Y) {
		return (size.W + outward.X) / size.W, true
	}
	return (size.H + outward.Y) / size.H, true
}

// ProportionalResize scales a single item uniformly about the opposite corner.
func ProportionalResize(s Step) ([]item.Change, bool) {
	if len(s.Items) != 1 || !s.Handle.IsCorner() {
		return nil, false
	}
	it := s.Items[0]
	rot := s.Info.Rotate
	sign := s.Handle.outward()
	local := vector.RotatePoint(s.Delta, vector.Pt{}, -rot)
	k, ok := scaleFactor(s.Info.Size, vector.Pt{X: local.X * sign.X, Y: local.Y * sign.Y})
	if !ok {
		return nil, false
	}
	w, h := s.Info.Size.W*k, s.Info.Size.H*k
	if w < s.MinSize || h < s.MinSize {
		return nil, false
	}
	opp := s.Info.Corner(s.Handle.cornerIndex() + 2)
	diag := vector.RotatePoint(vector.Pt{X: w * sign.X, Y: h * sign.Y}, vector.Pt{}, rot)
	center := opp.Add(diag.Mul(0.5))
	f := vector.Frame{Size: vector.Size{W: w, H: h}, Rotate: it.Rotate()}.WithCenter(center)
	return []item.Change{it.SetFrame(f)}, true
}

// DiagonalResize scales a group uniformly about the envelope corner opposite
// the dragged handle. Every member keeps its aspect ratio and rotation; the
// whole batch is rejected when the group would drop below the minimum size.
func DiagonalResize(s Step) ([]item.Change, bool) {
	if !s.Handle.IsCorner() {
		return nil, false
	}
	sign := s.Handle.outward()
	k, ok := scaleFactor(s.Info.Size, vector.Pt{X: s.Delta.X * sign.X, Y: s.Delta.Y * sign.Y})
	if !ok || s.Info.Size.W*k < s.MinSize || s.Info.Size.H*k < s.MinSize {
		return nil, false
	}
	opp := s.Info.Corner(s.Handle.cornerIndex() + 2)
	out := make([]item.Change, 0, len(s.Items))
	for _, it := range s.Items {
		f := it.Frame()
		c := opp.Add(f.Center().Sub(opp).Mul(k))
		f.Size = vector.Size{W: f.Size.W * k, H: f.Size.H * k}
		out = append(out, it.SetFrame(f.WithCenter(c)))
	}
	return out, true
}

// Rotate turns every item by the signed angle swept around the pivot and
// orbits each center around it.
func Rotate(s Step) ([]item.Change, bool) {
	delta := vector.AngleBetween(s.Pivot, s.Prev, s.Pointer)
	if delta == 0 || math.IsNaN(delta) {
		return nil, true
	}
	out := make([]item.Change, 0, len(s.Items))
	for _, it := range s.Items {
		f := it.Frame()
		c := vector.RotatePoint(f.Center(), s.Pivot, delta)
		f.Rotate = vector.NormalizeAngle(f.Rotate + delta)
		out = append(out, it.SetFrame(f.WithCenter(c)))
	}
	return out, true
}

// ReflowGrow grows the item to fit its text plus padding and never shrinks it.
// The rotated top-left corner stays where it was.
func ReflowGrow(it *item.Item, l textlayout.Layouter) (item.Change, error) {
	box, err := l.Layout(it.Text(), it.Font(), 0)
	if err != nil {
		return item.Change{}, err
	}
	pad := 2 * it.Padding()
	old := it.Frame()
	size := vector.Size{W: max(old.Size.W, box.Width+pad), H: max(old.Size.H, box.Height+pad)}
	if size == old.Size {
		return item.Change{ID: it.ID()}, nil
	}
	anchor := old.Corners()[0]
	half := vector.RotatePoint(vector.Pt{X: size.W / 2, Y: size.H / 2}, vector.Pt{}, old.Rotate)
	f := vector.Frame{Size: size, Rotate: old.Rotate}.WithCenter(anchor.Add(half))
	return it.SetFrame(f), nil
}

// ReflowBounded wraps text at the item's inner width and grows only the height.
// The position is never touched.
func ReflowBounded(it *item.Item, l textlayout.Layouter) (item.Change, error) {
	pad := 2 * it.Padding()
	size := it.Size()
	inner := max(1, size.W-pad)
	box, err := l.Layout(it.Text(), it.Font(), inner)
	if err != nil {
		return item.Change{}, err
	}
	if need := box.Height + pad; need > size.H {
		return it.SetSize(vector.Size{W: size.W, H: need}), nil
	}
	return item.Change{ID: it.ID()}, nil
}
