/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"boothplan/internal/render"
	"boothplan/internal/vector"
)

// SVG writes ds as a standalone SVG document. Width and height are in
// pixels; the coordinate system is the scaled viewport.
func SVG(w io.Writer, ds []render.Drawable, opts Options) error {
	opts = opts.normalized()
	shapes, page, err := scene(ds, opts)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%gpx\" height=\"%gpx\" viewBox=\"0 0 %g %g\">\n", page.W, page.H, page.W, page.H)
	wf("  <rect x=\"0\" y=\"0\" width=\"%g\" height=\"%g\" fill=\"%s\"/>\n", page.W, page.H, opts.Background.Hex())
	if opts.Title != "" {
		wf("  <title>%s</title>\n", escText(opts.Title))
	}

	for _, s := range shapes {
		paint := svgPaint(s.fill, s.stroke)
		id := ""
		if s.id != "" {
			id = fmt.Sprintf(" id=\"%s\"", escAttr(s.id))
		}
		switch s.kind {
		case shapeCircle:
			wf("  <circle%s cx=\"%g\" cy=\"%g\" r=\"%g\"%s/>\n", id, r4(s.center.X), r4(s.center.Y), r4(s.radius), paint)
		case shapeLine:
			wf("  <line%s x1=\"%g\" y1=\"%g\" x2=\"%g\" y2=\"%g\"%s/>\n", id, r4(s.pts[0].X), r4(s.pts[0].Y), r4(s.pts[1].X), r4(s.pts[1].Y), svgPaint(vector.Fill{}, s.stroke))
		default:
			if s.image != "" {
				wf("  <polygon%s points=\"%s\"%s><title>%s</title></polygon>\n", id, svgPoints(s.pts), paint, escText(s.image))
				wf("  <path d=\"M%g %gL%g %gM%g %gL%g %g\" fill=\"none\" stroke=\"%s\" stroke-width=\"0.5\"/>\n",
					r4(s.pts[0].X), r4(s.pts[0].Y), r4(s.pts[2].X), r4(s.pts[2].Y),
					r4(s.pts[1].X), r4(s.pts[1].Y), r4(s.pts[3].X), r4(s.pts[3].Y), vector.Muted.Hex())
			} else {
				wf("  <polygon%s points=\"%s\"%s/>\n", id, svgPoints(s.pts), paint)
			}
		}
		for _, t := range s.text {
			family := t.family
			if family == "" {
				family = "Helvetica, Arial, sans-serif"
			}
			rot := ""
			if t.rotate != 0 {
				rot = fmt.Sprintf(" transform=\"rotate(%g %g %g)\"", t.rotate, r4(t.at.X), r4(t.at.Y))
			}
			wf("  <text x=\"%g\" y=\"%g\" font-family=\"%s\" font-size=\"%g\" fill=\"#000\"%s>%s</text>\n", r4(t.at.X), r4(t.at.Y), escAttr(family), r4(t.size), rot, escText(t.text))
		}
	}
	wf("</svg>\n")

	if werr != nil {
		return fmt.Errorf("build svg: %w", werr)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

// WriteSVG renders ds into the file at path.
func WriteSVG(path string, ds []render.Drawable, opts Options) error {
	var buf bytes.Buffer
	if err := SVG(&buf, ds, opts); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func svgPaint(f vector.Fill, s vector.Stroke) string {
	var b strings.Builder
	if f.Enabled {
		fmt.Fprintf(&b, " fill=\"%s\"", f.Color.Hex())
		if f.Color.A < 255 {
			fmt.Fprintf(&b, " fill-opacity=\"%g\"", r4(float64(f.Color.A)/255))
		}
	} else {
		b.WriteString(" fill=\"none\"")
	}
	if s.Enabled {
		fmt.Fprintf(&b, " stroke=\"%s\" stroke-width=\"%g\"", s.Color.Hex(), r4(s.Width))
		if s.Dashed {
			fmt.Fprintf(&b, " stroke-dasharray=\"%g %g\"", r4(4*s.Width), r4(2*s.Width))
		}
	}
	return b.String()
}

func svgPoints(pts []vector.Pt) string {
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = fmt.Sprintf("%g,%g", r4(p.X), r4(p.Y))
	}
	return strings.Join(parts, " ")
}

func r4(v float64) float64 { return vector.FloatRound(v, 4) }

func escAttr(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; ch {
		case '"':
			out = append(out, "&quot;"...)
		case '&':
			out = append(out, "&amp;"...)
		case '<':
			out = append(out, "&lt;"...)
		case '\n':
			out = append(out, ' ')
		case '\r':
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}

func escText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
