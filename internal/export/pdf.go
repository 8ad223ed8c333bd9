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
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"boothplan/internal/render"
	"boothplan/internal/vector"
)

// PDF writes ds as a single page PDF at path. Units are points; with a
// Scale of 1 one canvas unit is one point. Shapes are emitted as vector
// polygons and text uses the built-in Helvetica, rotated with the frame.
func PDF(path string, ds []render.Drawable, opts Options) error {
	opts = opts.normalized()
	shapes, page, err := scene(ds, opts)
	if err != nil {
		return err
	}

	size := gofpdf.SizeType{Wd: page.W, Ht: page.H}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr:        "pt",
		Size:           size,
		OrientationStr: "P",
	})
	if opts.Title != "" {
		pdf.SetTitle(opts.Title, true)
	}
	pdf.SetAuthor("BoothPlan", false)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPageFormat("P", size)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	setFillColor(pdf, opts.Background)
	pdf.Rect(0, 0, page.W, page.H, "F")

	for _, s := range shapes {
		style := pdfStyle(pdf, s)
		switch s.kind {
		case shapeCircle:
			if style != "" {
				pdf.Circle(s.center.X, s.center.Y, s.radius, style)
			}
		case shapeLine:
			if s.stroke.Enabled {
				pdf.Line(s.pts[0].X, s.pts[0].Y, s.pts[1].X, s.pts[1].Y)
			}
		default:
			if style != "" {
				pdf.Polygon(pdfPoints(s.pts), style)
			}
			if s.image != "" && len(s.pts) == 4 {
				setDrawColor(pdf, vector.Muted)
				pdf.SetLineWidth(0.5)
				pdf.Line(s.pts[0].X, s.pts[0].Y, s.pts[2].X, s.pts[2].Y)
				pdf.Line(s.pts[1].X, s.pts[1].Y, s.pts[3].X, s.pts[3].Y)
			}
		}
		pdf.SetAlpha(1, "Normal")
		pdf.SetDashPattern([]float64{}, 0)

		pdf.SetTextColor(0, 0, 0)
		for _, t := range s.text {
			pdf.SetFont("Helvetica", "", t.size)
			if t.rotate != 0 {
				pdf.TransformBegin()
				pdf.TransformRotate(-t.rotate, t.at.X, t.at.Y)
				pdf.Text(t.at.X, t.at.Y, tr(t.text))
				pdf.TransformEnd()
				continue
			}
			pdf.Text(t.at.X, t.at.Y, tr(t.text))
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// pdfStyle applies the shape's paint and returns the gofpdf style string.
func pdfStyle(pdf *gofpdf.Fpdf, s shape) string {
	style := ""
	alpha := 1.0
	if s.fill.Enabled && s.kind != shapeLine {
		setFillColor(pdf, s.fill.Color)
		alpha = float64(s.fill.Color.A) / 255
		style += "F"
	}
	if s.stroke.Enabled {
		setDrawColor(pdf, s.stroke.Color)
		pdf.SetLineWidth(s.stroke.Width)
		if s.stroke.Dashed {
			pdf.SetDashPattern([]float64{4 * s.stroke.Width, 2 * s.stroke.Width}, 0)
		}
		style += "D"
	}
	if alpha < 1 {
		pdf.SetAlpha(alpha, "Normal")
	}
	return style
}

func pdfPoints(pts []vector.Pt) []gofpdf.PointType {
	out := make([]gofpdf.PointType, len(pts))
	for i, p := range pts {
		out[i] = gofpdf.PointType{X: p.X, Y: p.Y}
	}
	return out
}

func setDrawColor(pdf *gofpdf.Fpdf, c vector.Color) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c vector.Color) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}
