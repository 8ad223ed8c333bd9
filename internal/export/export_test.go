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
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"boothplan/internal/render"
	"boothplan/internal/vector"
)

func box(x, y, w, h, rot float64) render.Drawable {
	return render.Drawable{
		Kind:   render.KindRect,
		ID:     "b1",
		Pos:    vector.Pt{X: x, Y: y},
		Size:   vector.Size{W: w, H: h},
		Rotate: rot,
		Fill:   vector.Fill{Color: vector.Black, Enabled: true},
	}
}

func TestSVGRectAndEscapedText(t *testing.T) {
	d := box(10, 10, 100, 50, 0)
	d.Text = "A & B"
	d.Padding = 4
	var buf bytes.Buffer
	if err := SVG(&buf, []render.Drawable{d}, Options{Title: "Hall <1>"}); err != nil {
		t.Fatalf("svg: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`width="100px" height="50px"`,
		`points="0,0 100,0 100,50 0,50"`,
		`id="b1"`,
		"A &amp; B",
		"<title>Hall &lt;1&gt;</title>",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("svg missing %q:\n%s", want, out)
		}
	}
}

func TestSVGEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := SVG(&buf, nil, Options{}); !errors.Is(err, ErrEmpty) {
		t.Fatalf("want ErrEmpty, got %v", err)
	}
}

func TestSVGGroupChildrenTransformed(t *testing.T) {
	child := box(0, 0, 10, 10, 0)
	child.ID = "c"
	child.Stroke = vector.Stroke{Color: vector.Black, Width: 1, Enabled: true}
	g := render.Drawable{
		Kind:     render.KindGroup,
		ID:       "g",
		Pos:      vector.Pt{X: 100, Y: 100},
		Size:     vector.Size{W: 20, H: 20},
		Scale:    vector.Pt{X: 2, Y: 2},
		Children: []render.Drawable{child},
	}
	var buf bytes.Buffer
	if err := SVG(&buf, []render.Drawable{g}, Options{}); err != nil {
		t.Fatalf("svg: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `points="0,0 20,0 20,20 0,20"`) {
		t.Fatalf("child not mapped through group transform:\n%s", out)
	}
	if !strings.Contains(out, `stroke-width="2"`) {
		t.Fatalf("stroke not scaled with group:\n%s", out)
	}
	if strings.Contains(out, `id="g"`) {
		t.Fatalf("unpainted group outline emitted:\n%s", out)
	}
}

func TestRasterRotatedFill(t *testing.T) {
	area := vector.R(-30, -30, 160, 160)
	img, err := Raster([]render.Drawable{box(0, 0, 100, 100, 45)}, Options{Area: &area})
	if err != nil {
		t.Fatalf("raster: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 160 || b.Dy() != 160 {
		t.Fatalf("bounds = %v", b)
	}
	if c := img.RGBAAt(80, 80); c.R != 0 || c.A != 255 {
		t.Fatalf("center not filled: %v", c)
	}
	// (31,31) is the unrotated corner (1,1); the diamond leaves it empty.
	if c := img.RGBAAt(31, 31); c.R != 255 {
		t.Fatalf("unrotated corner filled: %v", c)
	}
	if c := img.RGBAAt(80, 15); c.R != 0 {
		t.Fatalf("rotated tip not filled: %v", c)
	}
}

func TestPNGFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	if err := PNG(path, []render.Drawable{box(0, 0, 40, 20, 0)}, Options{Scale: 2, Margin: 5}); err != nil {
		t.Fatalf("png: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 60 {
		t.Fatalf("size = %dx%d", b.Dx(), b.Dy())
	}
}

func TestPDFFile(t *testing.T) {
	d := box(0, 0, 200, 100, 30)
	d.Text = "Stand 12"
	d.Stroke = vector.Stroke{Color: vector.Alert, Width: 2, Dashed: true, Enabled: true}
	circle := render.Drawable{Kind: render.KindCircle, Center: vector.Pt{X: 50, Y: 50}, Radius: 10,
		Stroke: vector.Stroke{Color: vector.Accent, Width: 1, Enabled: true}}
	path := filepath.Join(t.TempDir(), "sub", "out.pdf")
	if err := PDF(path, []render.Drawable{d, circle}, Options{Title: "Hall"}); err != nil {
		t.Fatalf("pdf: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("not a pdf: %q", data[:min(len(data), 16)])
	}
}

func TestFlattenRotatedText(t *testing.T) {
	d := box(0, 0, 100, 40, 90)
	d.Text = "north"
	o := Options{}.normalized()
	shapes := flatten([]render.Drawable{d}, vector.Identity, o.Layouter, nil)
	if len(shapes) != 1 || len(shapes[0].text) != 1 {
		t.Fatalf("shapes = %+v", shapes)
	}
	run := shapes[0].text[0]
	if run.rotate != 90 {
		t.Fatalf("rotate = %v", run.rotate)
	}
	if run.text != "north" || run.size != defaultFontSize {
		t.Fatalf("run = %+v", run)
	}
}

func TestBatchExportPrint(t *testing.T) {
	dir := t.TempDir()
	area := vector.R(0, 0, 300, 200)
	paths, err := BatchExport([]render.Drawable{box(10, 10, 50, 50, 0)}, &area, BatchOptions{
		Preset:   PresetPrint,
		OutDir:   dir,
		BaseName: "hall",
	})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	want := []string{filepath.Join(dir, "hall.pdf"), filepath.Join(dir, "hall.png")}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v", paths)
	}
	for i, p := range want {
		if paths[i] != p {
			t.Fatalf("paths[%d] = %s, want %s", i, paths[i], p)
		}
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("stat %s: %v", p, err)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(" PNG "); err != nil || f != FormatPNG {
		t.Fatalf("got %q, %v", f, err)
	}
	if _, err := ParseFormat("cbz"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("want ErrUnknownFormat, got %v", err)
	}
}
