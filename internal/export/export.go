/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export writes drawables to SVG, PNG and PDF files.
//
// Every exporter works from the same flattened scene: groups are resolved
// into canvas coordinates, rotated frames become polygons and text is broken
// into positioned lines. The viewport is the union of the drawables unless
// Options.Area pins it.
package export

import (
	"errors"
	"math"

	"boothplan/internal/render"
	"boothplan/internal/textlayout"
	"boothplan/internal/vector"
)

// ErrEmpty is returned when there is nothing to export and no area was given.
var ErrEmpty = errors.New("export: nothing to export")

// Options controls all exporters.
//
// Scale is output units per canvas unit (pixels for PNG and SVG, points for
// PDF). Margin is added around the viewport in canvas units. A zero
// Background is white.
type Options struct {
	Title      string
	Scale      float64
	Margin     float64
	Background vector.Color
	Area       *vector.Rect
	Guide      *vector.Rect
	Layouter   textlayout.Layouter
}

func (o Options) normalized() Options {
	if o.Scale <= 0 {
		o.Scale = 1
	}
	if o.Margin < 0 {
		o.Margin = 0
	}
	if o.Background.IsZero() {
		o.Background = vector.White
	}
	if o.Layouter == nil {
		o.Layouter = textlayout.NewWordWrap(nil)
	}
	return o
}

// viewport resolves the exported canvas region including the margin.
func (o Options) viewport(ds []render.Drawable) (vector.Rect, error) {
	var r vector.Rect
	if o.Area != nil {
		r = *o.Area
	} else {
		ext, ok := render.Extent(ds)
		if o.Guide != nil {
			if ok {
				ext = ext.Union(*o.Guide)
			} else {
				ext, ok = *o.Guide, true
			}
		}
		if !ok {
			return vector.Rect{}, ErrEmpty
		}
		r = ext
	}
	r = r.Inset(-o.Margin, -o.Margin)
	if r.W <= 0 || r.H <= 0 {
		return vector.Rect{}, ErrEmpty
	}
	return r, nil
}

type shapeKind int

const (
	shapePoly shapeKind = iota
	shapeCircle
	shapeLine
)

// shape is one primitive in output coordinates.
type shape struct {
	kind   shapeKind
	id     string
	pts    []vector.Pt
	center vector.Pt
	radius float64
	fill   vector.Fill
	stroke vector.Stroke
	image  string
	text   []textRun
}

// textRun is one laid out line with its baseline origin.
type textRun struct {
	at     vector.Pt
	text   string
	size   float64
	family string
	rotate float64
}

const defaultFontSize = 12

func flatten(ds []render.Drawable, m vector.Affine2D, lay textlayout.Layouter, out []shape) []shape {
	k := math.Sqrt(math.Abs(m.A*m.D - m.B*m.C))
	for _, d := range ds {
		switch d.Kind {
		case render.KindCircle:
			out = append(out, shape{
				kind:   shapeCircle,
				id:     d.ID,
				center: m.Apply(d.Center),
				radius: d.Radius * k,
				fill:   d.Fill,
				stroke: scaleStroke(d.Stroke, k),
			})
		case render.KindLine:
			out = append(out, shape{
				kind:   shapeLine,
				id:     d.ID,
				pts:    []vector.Pt{m.Apply(d.From), m.Apply(d.To)},
				stroke: scaleStroke(d.Stroke, k),
			})
		case render.KindGroup:
			out = flatten(d.Children, m.Mul(d.Transform()), lay, out)
			if d.Fill.Enabled || d.Stroke.Enabled {
				out = append(out, polygon(d, m, k))
			}
		default:
			s := polygon(d, m, k)
			s.text = layoutText(d, m, k, lay)
			out = append(out, s)
		}
	}
	return out
}

func polygon(d render.Drawable, m vector.Affine2D, k float64) shape {
	c := d.Frame().Corners()
	pts := make([]vector.Pt, len(c))
	for i, p := range c {
		pts[i] = m.Apply(p)
	}
	return shape{
		kind:   shapePoly,
		id:     d.ID,
		pts:    pts,
		fill:   d.Fill,
		stroke: scaleStroke(d.Stroke, k),
		image:  d.Image,
	}
}

// layoutText wraps the drawable's text inside its padded frame and maps each
// line origin through the frame rotation and the parent transform.
func layoutText(d render.Drawable, m vector.Affine2D, k float64, lay textlayout.Layouter) []textRun {
	if d.Text == "" {
		return nil
	}
	spec := d.Font
	if spec.SizePt <= 0 {
		spec.SizePt = defaultFontSize
	}
	inner := d.Size.W - 2*d.Padding
	box, err := lay.Layout(d.Text, spec, inner)
	if err != nil {
		return nil
	}
	full := m.Mul(vector.RotateAbout(d.Frame().Center(), d.Rotate))
	angle := math.Atan2(full.B, full.A) * 180 / math.Pi
	lh := box.Metrics.LineHeight()
	runs := make([]textRun, 0, len(box.Lines))
	for i, ln := range box.Lines {
		if ln.Text == "" {
			continue
		}
		local := vector.Pt{
			X: d.Pos.X + d.Padding,
			Y: d.Pos.Y + d.Padding + box.Metrics.Ascent + float64(i)*lh,
		}
		runs = append(runs, textRun{
			at:     full.Apply(local),
			text:   ln.Text,
			size:   spec.SizePt * k,
			family: spec.Family,
			rotate: vector.FloatRound(angle, 6),
		})
	}
	return runs
}

func scaleStroke(s vector.Stroke, k float64) vector.Stroke {
	if s.Width <= 0 {
		s.Width = 1
	}
	s.Width *= k
	return s
}

// scene flattens ds and maps it so the viewport origin lands on (0,0) and
// one canvas unit becomes o.Scale output units.
func scene(ds []render.Drawable, o Options) ([]shape, vector.Rect, error) {
	vp, err := o.viewport(ds)
	if err != nil {
		return nil, vector.Rect{}, err
	}
	m := vector.Scale(o.Scale, o.Scale).Mul(vector.Translate(-vp.X, -vp.Y))
	var shapes []shape
	if o.Guide != nil {
		g := render.Drawable{
			Kind:   render.KindRect,
			Pos:    vector.Pt{X: o.Guide.X, Y: o.Guide.Y},
			Size:   vector.Size{W: o.Guide.W, H: o.Guide.H},
			Stroke: vector.Stroke{Color: vector.Muted, Width: 1, Dashed: true, Enabled: true},
		}
		shapes = flatten([]render.Drawable{g}, m, o.Layouter, shapes)
	}
	shapes = flatten(ds, m, o.Layouter, shapes)
	out := vector.Rect{W: vp.W * o.Scale, H: vp.H * o.Scale}
	return shapes, out, nil
}
