/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interact

import (
	"testing"

	"github.com/stretchr/testify/require"

	"boothplan/internal/item"
	"boothplan/internal/textlayout"
	"boothplan/internal/vector"
)

const tol = 1e-6

func pt(x, y float64) vector.Pt { return vector.Pt{X: x, Y: y} }

func newInteractor(items ...*item.Item) *Interactor {
	return New(items, Config{Policy: DefaultPolicy()})
}

func drag(in *Interactor, from vector.Pt, to ...vector.Pt) (Handle, []Result) {
	h := in.PointerDown(from, false)
	var rs []Result
	for _, p := range to {
		rs = append(rs, in.PointerMove(p))
	}
	in.PointerUp()
	return h, rs
}

func requireNear(t *testing.T, want, got vector.Pt) {
	t.Helper()
	require.InDelta(t, want.X, got.X, tol)
	require.InDelta(t, want.Y, got.Y, tol)
}

func TestDragTopLeftCorner(t *testing.T) {
	box := item.NewBox(vector.F(0, 0, 100, 50, 0), "")
	in := newInteractor(box)

	h, rs := drag(in, pt(0, 0), pt(10, 10))
	require.Equal(t, HandleTopLeft, h)
	require.Equal(t, []string{box.ID()}, rs[0].Changed)
	require.Equal(t, pt(10, 10), box.Pos())
	require.Equal(t, vector.Size{W: 90, H: 40}, box.Size())
	require.Equal(t, StateIdle, in.State())
}

func TestFreeResizeFloor(t *testing.T) {
	box := item.NewBox(vector.F(0, 0, 100, 50, 0), "")
	in := newInteractor(box)

	_, rs := drag(in, pt(100, 50), pt(-50, 50))
	require.True(t, rs[0].Rejected)
	require.Empty(t, rs[0].Changed)
	require.Equal(t, vector.Size{W: 100, H: 50}, box.Size())

	// exactly the floor is accepted
	_, rs = drag(in, pt(100, 50), pt(1, 50))
	require.False(t, rs[0].Rejected)
	require.InDelta(t, 1, box.Size().W, tol)
}

func TestFreeResizeRotatedKeepsOppositeCorner(t *testing.T) {
	box := item.NewBox(vector.F(100, 100, 80, 40, 30), "")
	in := newInteractor(box)
	before := box.Corners()

	h, rs := drag(in, before[2], before[2].Add(pt(12, -7)))
	require.Equal(t, HandleBottomRight, h)
	require.False(t, rs[0].Rejected)

	after := box.Corners()
	requireNear(t, before[0], after[0])
	requireNear(t, before[2].Add(pt(12, -7)), after[2])
	require.Equal(t, 30.0, box.Rotate())
}

func TestProportionalResizePhoto(t *testing.T) {
	photo := item.NewPhoto(vector.F(0, 0, 200, 100, 0), "u")
	in := newInteractor(photo)

	_, rs := drag(in, pt(200, 100), pt(300, 110))
	require.False(t, rs[0].Rejected)
	require.InDelta(t, 300, photo.Size().W, tol)
	require.InDelta(t, 150, photo.Size().H, tol)
	requireNear(t, pt(0, 0), photo.Pos())
}

func TestGroupDiagonalResize(t *testing.T) {
	a := item.NewBox(vector.F(0, 0, 40, 20, 0), "")
	b := item.NewBox(vector.F(60, 30, 40, 20, 0), "")
	in := newInteractor(a, b)
	require.True(t, in.Group())
	require.Equal(t, vector.Size{W: 100, H: 50}, in.Info().Size)

	h, rs := drag(in, pt(100, 50), pt(150, 55))
	require.Equal(t, HandleBottomRight, h)
	require.ElementsMatch(t, []string{a.ID(), b.ID()}, rs[0].Changed)

	// dx dominates: s = 150/100
	require.InDelta(t, 60, a.Size().W, tol)
	require.InDelta(t, 30, a.Size().H, tol)
	require.InDelta(t, 2.0, b.Size().W/b.Size().H, tol)
	requireNear(t, pt(0, 0), a.Pos())
	requireNear(t, pt(90, 45), b.Pos())
	requireNear(t, pt(0, 0), in.Info().TopLeft)
}

func TestGroupDiagonalResizeFloor(t *testing.T) {
	a := item.NewBox(vector.F(0, 0, 10, 10, 0), "")
	b := item.NewBox(vector.F(10, 10, 10, 10, 0), "")
	in := newInteractor(a, b)

	_, rs := drag(in, pt(20, 20), pt(4, 4))
	require.True(t, rs[0].Rejected)
	require.Equal(t, vector.Size{W: 10, H: 10}, a.Size())
	require.Equal(t, pt(10, 10), b.Pos())
}

func TestRotateQuarterTurn(t *testing.T) {
	box := item.NewBox(vector.F(0, 0, 100, 50, 0), "")
	in := newInteractor(box)
	knob := in.Info().RotateKnob(DefaultPolicy().RotateOffset)

	h, _ := drag(in, knob, pt(99, 25))
	require.Equal(t, HandleRotate, h)
	require.InDelta(t, 90, box.Rotate(), tol)

	b := box.Bounds()
	require.InDelta(t, 50, b.W, tol)
	require.InDelta(t, 100, b.H, tol)
	requireNear(t, pt(50, 25), b.Center())
}

func TestRotateGroupOrbitsCenter(t *testing.T) {
	a := item.NewBox(vector.F(0, 0, 10, 10, 0), "")
	b := item.NewBox(vector.F(90, 0, 10, 10, 0), "")
	in := newInteractor(a, b)
	knob := in.Info().RotateKnob(DefaultPolicy().RotateOffset)

	drag(in, knob, pt(79, 5))
	requireNear(t, pt(50, -40), a.Center())
	requireNear(t, pt(50, 50), b.Center())
	require.InDelta(t, 90, a.Rotate(), tol)
	require.InDelta(t, 90, b.Rotate(), tol)
}

func TestMoveTranslatesSelection(t *testing.T) {
	a := item.NewBox(vector.F(0, 0, 10, 10, 0), "")
	b := item.NewObstacle(vector.F(20, 0, 10, 10, 0))
	in := newInteractor(a, b)

	h, rs := drag(in, pt(15, 5), pt(20, 8), pt(25, 10))
	require.Equal(t, HandleBody, h)
	require.Len(t, rs, 2)
	require.Equal(t, pt(10, 5), a.Pos())
	require.Equal(t, pt(30, 5), b.Pos())
}

func TestCheckInteractPriority(t *testing.T) {
	box := item.NewBox(vector.F(0, 0, 100, 50, 0), "")
	in := newInteractor(box)

	require.Equal(t, HandleTopLeft, in.CheckInteract(pt(2, 2), false))
	require.Equal(t, HandleBottomLeft, in.CheckInteract(pt(-3, 52), false))
	require.Equal(t, HandleBody, in.CheckInteract(pt(50, 25), false))
	require.Equal(t, HandleText, in.CheckInteract(pt(50, 25), true))
	require.Equal(t, HandleRotate, in.CheckInteract(pt(50, -24), false))
	require.Equal(t, HandleNone, in.CheckInteract(pt(500, 500), false))

	group := newInteractor(box, item.NewBox(vector.F(200, 0, 10, 10, 0), ""))
	require.Equal(t, HandleBody, group.CheckInteract(pt(50, 25), true))

	photo := newInteractor(item.NewPhoto(vector.F(0, 0, 10, 10, 0), "u"))
	require.Equal(t, HandleBody, photo.CheckInteract(pt(5, 5), true))
}

func TestCheckInteractRotatedBody(t *testing.T) {
	box := item.NewBox(vector.F(0, 0, 100, 10, 90), "")
	in := newInteractor(box)
	require.Equal(t, HandleBody, in.CheckInteract(pt(50, 40), false))
	require.Equal(t, HandleNone, in.CheckInteract(pt(90, 5), false))
}

func TestTextEditingGrow(t *testing.T) {
	d := item.NewDescription(pt(10, 10), "")
	in := newInteractor(d)

	ov, err := in.BeginText()
	require.NoError(t, err)
	require.Equal(t, d.ID(), ov.ID)
	require.Equal(t, StateTextEditing, in.State())

	res, ov, err := in.EditText("Hello")
	require.NoError(t, err)
	require.Equal(t, []string{d.ID()}, res.Changed)
	require.Equal(t, vector.Size{W: 43, H: 21}, d.Size())
	require.Equal(t, pt(10, 10), d.Pos())
	require.Equal(t, "Hello", ov.Text)

	// grows only
	_, _, err = in.EditText("Hi")
	require.NoError(t, err)
	require.Equal(t, vector.Size{W: 43, H: 21}, d.Size())

	in.PointerUp()
	require.Equal(t, StateTextEditing, in.State())
	in.EndText()
	require.Equal(t, StateIdle, in.State())
	_, _, err = in.EditText("late")
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestTextEditingGrowRotatedKeepsAnchor(t *testing.T) {
	d := item.NewDescription(pt(100, 100), "")
	d.SetRotate(90)
	in := newInteractor(d)
	_, err := in.BeginText()
	require.NoError(t, err)
	anchor := d.Corners()[0]

	_, _, err = in.EditText("Rotated text")
	require.NoError(t, err)
	requireNear(t, anchor, d.Corners()[0])
	require.Greater(t, d.Size().W, d.Size().H)
}

func TestTextEditingBounded(t *testing.T) {
	box := item.NewBox(vector.F(0, 0, 60, 20, 0), "")
	in := New([]*item.Item{box}, Config{Policy: DefaultPolicy(), Layouter: textlayout.NewWordWrap(nil)})
	_, err := in.BeginText()
	require.NoError(t, err)

	_, _, err = in.EditText("Hall A booth")
	require.NoError(t, err)
	require.Equal(t, 60.0, box.Size().W)
	require.Greater(t, box.Size().H, 20.0)
	require.Equal(t, pt(0, 0), box.Pos())
}

func TestTextUnsupportedForGroupsAndPhotos(t *testing.T) {
	group := newInteractor(item.NewBox(vector.F(0, 0, 1, 1, 0), ""), item.NewBox(vector.F(5, 5, 1, 1, 0), ""))
	_, err := group.BeginText()
	require.ErrorIs(t, err, ErrUnsupported)

	photo := newInteractor(item.NewPhoto(vector.F(0, 0, 1, 1, 0), "u"))
	_, err = photo.BeginText()
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestContainmentPolicy(t *testing.T) {
	p := DefaultPolicy()
	p.CheckBounds = true
	p.EditableArea = vector.R(0, 0, 100, 100)

	outside := vector.F(90, 90, 20, 20, 0)
	single := New([]*item.Item{item.NewBox(outside, "")}, Config{Policy: p})
	require.False(t, single.Invalid(), "single boxes are not contained by default")

	obstacle := New([]*item.Item{item.NewObstacle(outside)}, Config{Policy: p})
	require.True(t, obstacle.Invalid())

	group := New([]*item.Item{item.NewBox(vector.F(10, 10, 10, 10, 0), ""), item.NewBox(vector.F(50, 50, 10, 10, 0), "")}, Config{Policy: p})
	require.False(t, group.Invalid())
	drag(group, pt(30, 30), pt(75, 75))
	require.True(t, group.Invalid())
	require.Equal(t, vector.Alert, group.Drawables()[0].Stroke.Color)

	p.ContainKinds = map[item.Kind]bool{item.KindBox: true}
	boxes := New([]*item.Item{item.NewBox(outside, "")}, Config{Policy: p})
	require.True(t, boxes.Invalid())
}

func TestMoveSnapsToAnchors(t *testing.T) {
	p := DefaultPolicy()
	p.Snap = vector.SnapOptions{Threshold: 6, SnapToEdges: true}
	box := item.NewBox(vector.F(100, 100, 50, 50, 0), "")
	anchors := []vector.Anchor{{Rect: vector.R(0, 0, 400, 300), Weight: 1}}
	in := New([]*item.Item{box}, Config{Policy: p, Anchors: func() []vector.Anchor { return anchors }})

	in.PointerDown(pt(125, 125), false)
	in.PointerMove(pt(28, 125))
	require.Equal(t, pt(0, 100), box.Pos())
	require.Len(t, in.Guides(), 1)

	res := in.PointerMove(pt(27, 125))
	require.True(t, res.Empty())
	require.Equal(t, pt(0, 100), box.Pos())

	in.PointerMove(pt(60, 125))
	require.Equal(t, pt(35, 100), box.Pos())
	in.PointerUp()
	require.Empty(t, in.Guides())
}

func TestRegistryOverride(t *testing.T) {
	reg := DefaultRegistry()
	called := false
	reg.Register(item.KindBox, Strategies{Move: func(s Step) ([]item.Change, bool) {
		called = true
		return nil, false
	}})
	box := item.NewBox(vector.F(0, 0, 10, 10, 0), "")
	in := New([]*item.Item{box}, Config{Policy: DefaultPolicy(), Registry: reg})
	_, rs := drag(in, pt(5, 5), pt(8, 8))
	require.True(t, called)
	require.True(t, rs[0].Rejected)
	require.Equal(t, pt(0, 0), box.Pos())
}

func TestDrawablesOverlay(t *testing.T) {
	in := newInteractor(item.NewBox(vector.F(0, 0, 100, 50, 0), ""))
	ds := in.Drawables()
	// border + 4 corners + stem + knob
	require.Len(t, ds, 7)
	require.Equal(t, vector.Accent, ds[0].Stroke.Color)
}
