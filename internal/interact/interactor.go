/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package interact turns pointer gestures on a selection into item
// mutations. One Interactor serves both single items and groups; the
// differences are policy flags and the strategies bound from the Registry.
//
// The interactor never touches spatial indices. Every call that mutates
// returns a Result naming the changed items, and the caller must sync them
// into the pool before issuing any query.
package interact

import (
	"errors"
	"math"

	"github.com/samber/lo"

	"boothplan/internal/item"
	"boothplan/internal/textlayout"
	"boothplan/internal/vector"
)

// ErrUnsupported is returned for operations the selection shape cannot do,
// such as text editing a group.
var ErrUnsupported = errors.New("interact: unsupported for this selection")

// State of the per-selection state machine.
type State int

const (
	StateIdle State = iota
	StateResizing
	StateMoving
	StateRotating
	StateTextEditing
)

func (s State) String() string {
	return [...]string{"idle", "resizing", "moving", "rotating", "text-editing"}[s]
}

// Policy holds the knobs that distinguish selections.
type Policy struct {
	// HandleSize is the side of the square corner hit region, in canvas units.
	HandleSize float64
	// RotateOffset is the distance of the rotate knob above the top edge.
	RotateOffset float64
	MinSize      float64 // single-item floor
	MinGroupSize float64 // group floor

	// CheckBounds enables the editable-area containment check.
	CheckBounds   bool
	EditableArea  vector.Rect
	ContainGroups bool
	ContainKinds  map[item.Kind]bool

	Snap vector.SnapOptions
}

// DefaultPolicy returns the stock interaction settings.
func DefaultPolicy() Policy {
	return Policy{
		HandleSize:    10,
		RotateOffset:  24,
		MinSize:       1,
		MinGroupSize:  5,
		ContainGroups: true,
		ContainKinds:  map[item.Kind]bool{item.KindObstacle: true},
	}
}

// Result reports what one call changed.
type Result struct {
	Changed  []string
	Rejected bool
}

// Empty reports whether nothing changed.
func (r Result) Empty() bool { return len(r.Changed) == 0 }

// Overlay is what an external text widget needs to position itself.
type Overlay struct {
	ID      string
	Frame   vector.Frame
	Font    textlayout.FontSpec
	Padding float64
	Text    string
}

// Config wires an Interactor.
type Config struct {
	Policy   Policy
	Registry *Registry
	Layouter textlayout.Layouter
	// Anchors, when set together with snapping options, supplies the rects a
	// moving selection snaps to. The selection itself must not be included.
	Anchors func() []vector.Anchor
}

// Interactor drives gestures for a non-empty selection.
type Interactor struct {
	items    []*item.Item
	cfg      Config
	strat    Strategies
	info     Info
	state    State
	handle   Handle
	pivot    vector.Pt
	invalid  bool
	guides   []vector.GuideLine
	moveFrom vector.Rect
	moveRaw  vector.Pt
}

// New creates an interactor for items (at least one).
func New(items []*item.Item, cfg Config) *Interactor {
	if cfg.Registry == nil {
		cfg.Registry = DefaultRegistry()
	}
	if cfg.Layouter == nil {
		cfg.Layouter = textlayout.NewWordWrap(textlayout.BasicProvider{})
	}
	if cfg.Policy.HandleSize <= 0 {
		cfg.Policy.HandleSize = DefaultPolicy().HandleSize
	}
	in := &Interactor{items: items, cfg: cfg, strat: cfg.Registry.For(items)}
	in.refresh(vector.Pt{})
	return in
}

func (in *Interactor) Items() []*item.Item { return in.items }
func (in *Interactor) Info() Info          { return in.info }
func (in *Interactor) State() State        { return in.state }
func (in *Interactor) Handle() Handle      { return in.handle }
func (in *Interactor) Group() bool         { return len(in.items) > 1 }

// IDs lists the selected item ids.
func (in *Interactor) IDs() []string {
	return lo.Map(in.items, func(it *item.Item, _ int) string { return it.ID() })
}

// Invalid reports whether the selection is outside the editable area.
func (in *Interactor) Invalid() bool { return in.invalid }

// Guides returns the snap guides of the current move, if any.
func (in *Interactor) Guides() []vector.GuideLine { return in.guides }

// Refresh recomputes the envelope after external changes such as undo.
func (in *Interactor) Refresh() { in.refresh(in.info.LastPointer) }

func (in *Interactor) refresh(last vector.Pt) {
	in.info = Envelope(in.items, last)
	in.invalid = in.outOfBounds()
}

func (in *Interactor) minSize() float64 {
	if in.Group() {
		return in.cfg.Policy.MinGroupSize
	}
	return in.cfg.Policy.MinSize
}

func (in *Interactor) containmentApplies() bool {
	p := in.cfg.Policy
	if !p.CheckBounds {
		return false
	}
	if in.Group() && p.ContainGroups {
		return true
	}
	return lo.SomeBy(in.items, func(it *item.Item) bool { return p.ContainKinds[it.Kind()] })
}

func (in *Interactor) outOfBounds() bool {
	if !in.containmentApplies() {
		return false
	}
	return !in.cfg.Policy.EditableArea.ContainsRect(in.info.Frame().Bounds())
}

// CheckInteract classifies p against the selection. Corners win over the
// rotate knob, which wins over the body.
func (in *Interactor) CheckInteract(p vector.Pt, doubleClick bool) Handle {
	tol := in.cfg.Policy.HandleSize / 2
	for i := 0; i < 4; i++ {
		c := in.info.Corner(i)
		if math.Abs(p.X-c.X) <= tol && math.Abs(p.Y-c.Y) <= tol {
			return HandleTopLeft + Handle(i)
		}
	}
	if in.cfg.Policy.RotateOffset > 0 {
		knob := in.info.RotateKnob(in.cfg.Policy.RotateOffset)
		if p.Sub(knob).Len() <= tol {
			return HandleRotate
		}
	}
	if in.info.Frame().Contains(p) {
		if doubleClick && !in.Group() && in.items[0].Caps().TextEditable {
			return HandleText
		}
		return HandleBody
	}
	return HandleNone
}

// PointerDown starts a gesture and returns the handle that was hit.
func (in *Interactor) PointerDown(p vector.Pt, doubleClick bool) Handle {
	in.handle = in.CheckInteract(p, doubleClick)
	in.info.LastPointer = p
	in.guides = nil
	switch {
	case in.handle.IsCorner():
		in.state = StateResizing
	case in.handle == HandleRotate:
		in.state = StateRotating
		in.pivot = in.info.Center
	case in.handle == HandleBody:
		in.state = StateMoving
		in.moveFrom = in.info.Frame().Bounds()
		in.moveRaw = vector.Pt{}
	case in.handle == HandleText:
		in.state = StateTextEditing
	default:
		in.state = StateIdle
	}
	return in.handle
}

// PointerMove applies the active strategy for the pointer movement.
func (in *Interactor) PointerMove(p vector.Pt) Result {
	prev := in.info.LastPointer
	step := Step{
		Items:   in.items,
		Info:    in.info,
		Handle:  in.handle,
		Delta:   p.Sub(prev),
		Prev:    prev,
		Pointer: p,
		Pivot:   in.pivot,
		MinSize: in.minSize(),
	}
	var s Strategy
	switch in.state {
	case StateMoving:
		s = in.strat.Move
		step.Delta = in.snapDelta(step.Delta)
	case StateResizing:
		s = in.strat.Resize
	case StateRotating:
		s = in.strat.Rotate
	}
	in.info.LastPointer = p
	if s == nil {
		return Result{}
	}
	changes, ok := s(step)
	if !ok {
		return Result{Rejected: true}
	}
	in.refresh(p)
	return resultOf(changes)
}

// snapDelta turns the raw pointer delta into the delta that lands the
// envelope on the best guide, tracking the unsnapped position across steps.
func (in *Interactor) snapDelta(d vector.Pt) vector.Pt {
	opts := in.cfg.Policy.Snap
	if in.cfg.Anchors == nil || (!opts.SnapToEdges && !opts.SnapToCenters) {
		return d
	}
	in.moveRaw = in.moveRaw.Add(d)
	want := in.moveFrom
	want.X += in.moveRaw.X
	want.Y += in.moveRaw.Y
	snapped, guides := vector.ComputeSmartGuides(want, in.cfg.Anchors(), opts)
	in.guides = guides
	cur := in.info.Frame().Bounds()
	return vector.Pt{X: snapped.X - cur.X, Y: snapped.Y - cur.Y}
}

// PointerUp ends any drag. Text editing survives until EndText.
func (in *Interactor) PointerUp() Result {
	if in.state != StateTextEditing {
		in.state = StateIdle
		in.handle = HandleNone
	}
	in.guides = nil
	return Result{}
}

// BeginText opens a text session on a single text-editable item.
func (in *Interactor) BeginText() (Overlay, error) {
	if in.Group() || !in.items[0].Caps().TextEditable {
		return Overlay{}, ErrUnsupported
	}
	in.state = StateTextEditing
	return in.overlay(), nil
}

// EditText replaces the text and reflows the item.
func (in *Interactor) EditText(s string) (Result, Overlay, error) {
	if in.state != StateTextEditing {
		return Result{}, Overlay{}, ErrUnsupported
	}
	it := in.items[0]
	changes := []item.Change{it.SetText(s)}
	if in.strat.Reflow != nil {
		ch, err := in.strat.Reflow(it, in.cfg.Layouter)
		if err != nil {
			return Result{}, Overlay{}, err
		}
		changes = append(changes, ch)
	}
	in.refresh(in.info.LastPointer)
	return resultOf(changes), in.overlay(), nil
}

// EndText closes the text session.
func (in *Interactor) EndText() Result {
	if in.state == StateTextEditing {
		in.state = StateIdle
		in.handle = HandleNone
	}
	return Result{}
}

func (in *Interactor) overlay() Overlay {
	it := in.items[0]
	return Overlay{ID: it.ID(), Frame: it.Frame(), Font: it.Font(), Padding: it.Padding(), Text: it.Text()}
}

func resultOf(changes []item.Change) Result {
	ids := lo.Map(changes, func(c item.Change, _ int) string { return c.ID })
	return Result{Changed: lo.Uniq(ids)}
}
