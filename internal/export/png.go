/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	rasterx "golang.org/x/image/vector"

	"boothplan/internal/render"
	"boothplan/internal/textlayout"
	"boothplan/internal/vector"
)

const circleSegments = 48

// PNG rasterizes ds into an anti-aliased image at path. Rotated frames are
// filled as polygons; text is drawn unrotated at each line origin.
func PNG(path string, ds []render.Drawable, opts Options) error {
	img, err := Raster(ds, opts)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}

// Raster renders ds into a new image.
func Raster(ds []render.Drawable, opts Options) (*image.RGBA, error) {
	opts = opts.normalized()
	shapes, page, err := scene(ds, opts)
	if err != nil {
		return nil, err
	}
	w := max(1, int(math.Ceil(page.W)))
	h := max(1, int(math.Ceil(page.H)))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(toNRGBA(opts.Background)), image.Point{}, draw.Src)

	z := rasterx.NewRasterizer(w, h)
	for _, s := range shapes {
		outline := s.pts
		if s.kind == shapeCircle {
			outline = circlePoints(s.center, s.radius)
		}
		if s.fill.Enabled && s.kind != shapeLine {
			fillPolygon(z, img, outline, s.fill.Color)
		}
		if s.stroke.Enabled {
			closed := s.kind != shapeLine
			strokePath(z, img, outline, closed, s.stroke)
		}
		if s.image != "" && len(s.pts) == 4 {
			hair := vector.Stroke{Color: vector.Muted, Width: 0.5, Enabled: true}
			strokePath(z, img, []vector.Pt{s.pts[0], s.pts[2]}, false, hair)
			strokePath(z, img, []vector.Pt{s.pts[1], s.pts[3]}, false, hair)
		}
		for _, t := range s.text {
			drawText(img, t)
		}
	}
	return img, nil
}

func toNRGBA(c vector.Color) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func fillPolygon(z *rasterx.Rasterizer, img *image.RGBA, pts []vector.Pt, c vector.Color) {
	if len(pts) < 3 {
		return
	}
	b := img.Bounds()
	z.Reset(b.Dx(), b.Dy())
	z.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		z.LineTo(float32(p.X), float32(p.Y))
	}
	z.ClosePath()
	z.Draw(img, b, image.NewUniform(toNRGBA(c)), image.Point{})
}

// strokePath draws every segment as a quad of the stroke width. Dashed
// strokes alternate 4w on and 2w off along each segment.
func strokePath(z *rasterx.Rasterizer, img *image.RGBA, pts []vector.Pt, closed bool, s vector.Stroke) {
	n := len(pts)
	if n < 2 {
		return
	}
	segs := n - 1
	if closed {
		segs = n
	}
	for i := 0; i < segs; i++ {
		a, b := pts[i], pts[(i+1)%n]
		if !s.Dashed {
			strokeSegment(z, img, a, b, s)
			continue
		}
		d := b.Sub(a)
		l := d.Len()
		if l == 0 {
			continue
		}
		on, off := 4*s.Width, 2*s.Width
		for t := 0.0; t < l; t += on + off {
			end := math.Min(t+on, l)
			strokeSegment(z, img, a.Add(d.Mul(t/l)), a.Add(d.Mul(end/l)), s)
		}
	}
}

func strokeSegment(z *rasterx.Rasterizer, img *image.RGBA, a, b vector.Pt, s vector.Stroke) {
	d := b.Sub(a)
	l := d.Len()
	if l == 0 {
		return
	}
	nrm := vector.Pt{X: -d.Y / l, Y: d.X / l}.Mul(s.Width / 2)
	fillPolygon(z, img, []vector.Pt{a.Add(nrm), b.Add(nrm), b.Sub(nrm), a.Sub(nrm)}, s.Color)
}

func circlePoints(c vector.Pt, r float64) []vector.Pt {
	pts := make([]vector.Pt, circleSegments)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / circleSegments
		pts[i] = vector.Pt{X: c.X + r*math.Cos(a), Y: c.Y + r*math.Sin(a)}
	}
	return pts
}

func drawText(img *image.RGBA, t textRun) {
	face, _ := textlayout.BasicProvider{}.Resolve(textlayout.FontSpec{SizePt: t.size})
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.P(int(math.Round(t.at.X)), int(math.Round(t.at.Y))),
	}
	d.DrawString(t.text)
}
