/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interact

import (
	"boothplan/internal/item"
	"boothplan/internal/vector"
)

// Handle is the result of hit-testing a pointer against a selection.
type Handle int

// Corner handles share the order of vector.Corners.
const (
	HandleNone Handle = iota
	HandleTopLeft
	HandleTopRight
	HandleBottomRight
	HandleBottomLeft
	HandleRotate
	HandleBody
	HandleText
)

var handleNames = map[Handle]string{
	HandleNone:        "none",
	HandleTopLeft:     "top-left",
	HandleTopRight:    "top-right",
	HandleBottomRight: "bottom-right",
	HandleBottomLeft:  "bottom-left",
	HandleRotate:      "rotate",
	HandleBody:        "body",
	HandleText:        "text",
}

func (h Handle) String() string { return handleNames[h] }

// IsCorner reports whether h is one of the four resize handles.
func (h Handle) IsCorner() bool { return h >= HandleTopLeft && h <= HandleBottomLeft }

func (h Handle) cornerIndex() int { return int(h - HandleTopLeft) }

// outward is the sign of local x/y that grows the frame when h is dragged.
func (h Handle) outward() vector.Pt {
	switch h {
	case HandleTopLeft:
		return vector.Pt{X: -1, Y: -1}
	case HandleTopRight:
		return vector.Pt{X: 1, Y: -1}
	case HandleBottomRight:
		return vector.Pt{X: 1, Y: 1}
	case HandleBottomLeft:
		return vector.Pt{X: -1, Y: 1}
	}
	return vector.Pt{}
}

// Info is the derived envelope of the current selection. It is recomputed
// from live item geometry after every step and never persisted.
type Info struct {
	TopLeft     vector.Pt
	TopRight    vector.Pt
	BottomLeft  vector.Pt
	BottomRight vector.Pt
	TopCenter   vector.Pt
	Center      vector.Pt
	Size        vector.Size
	Rotate      float64
	LastPointer vector.Pt
}

// Corner returns the envelope corner in vector.Corners order (0 = top-left).
func (in Info) Corner(i int) vector.Pt {
	switch i & 3 {
	case 0:
		return in.TopLeft
	case 1:
		return in.TopRight
	case 2:
		return in.BottomRight
	}
	return in.BottomLeft
}

// Frame is the envelope as a rotated frame.
func (in Info) Frame() vector.Frame {
	return vector.Frame{
		Pos:    vector.Pt{X: in.Center.X - in.Size.W/2, Y: in.Center.Y - in.Size.H/2},
		Size:   in.Size,
		Rotate: in.Rotate,
	}
}

// Envelope computes Info for one or more items. A single item uses its own
// rotated frame; a group uses the axis-aligned box around all members.
func Envelope(items []*item.Item, last vector.Pt) Info {
	var f vector.Frame
	switch len(items) {
	case 0:
	case 1:
		f = items[0].Frame()
	default:
		b := items[0].Bounds()
		for _, it := range items[1:] {
			b = b.Union(it.Bounds())
		}
		f = vector.FrameOf(b)
	}
	return infoOf(f, last)
}

func infoOf(f vector.Frame, last vector.Pt) Info {
	c := f.Corners()
	return Info{
		TopLeft:     c[0],
		TopRight:    c[1],
		BottomRight: c[2],
		BottomLeft:  c[3],
		TopCenter:   vector.Pt{X: (c[0].X + c[1].X) / 2, Y: (c[0].Y + c[1].Y) / 2},
		Center:      f.Center(),
		Size:        f.Size,
		Rotate:      f.Rotate,
		LastPointer: last,
	}
}

// up is the envelope's rotated "up" unit vector.
func (in Info) up() vector.Pt {
	return vector.RotatePoint(vector.Pt{Y: -1}, vector.Pt{}, in.Rotate)
}

// RotateKnob is the center of the rotate handle.
func (in Info) RotateKnob(offset float64) vector.Pt {
	return in.TopCenter.Add(in.up().Mul(offset))
}
