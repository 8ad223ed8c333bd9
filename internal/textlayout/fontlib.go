/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"fmt"
	"os"
	"sort"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

// FontLibrary holds parsed OpenType fonts keyed by family/weight/italic.
type FontLibrary struct {
	fonts map[fontKey]*opentype.Font
}

type fontKey struct {
	family string
	weight int
	italic bool
}

func NewFontLibrary() *FontLibrary { return &FontLibrary{fonts: make(map[fontKey]*opentype.Font)} }

// LoadFile reads a TTF/OTF file into the library.
func (fl *FontLibrary) LoadFile(family string, weight int, italic bool, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	if err := fl.Load(family, weight, italic, data); err != nil {
		return fmt.Errorf("font %s: %w", path, err)
	}
	return nil
}

// Load parses raw font data into the library.
func (fl *FontLibrary) Load(family string, weight int, italic bool, data []byte) error {
	if fl.fonts == nil {
		fl.fonts = make(map[fontKey]*opentype.Font)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	fl.fonts[fontKey{family: family, weight: weight, italic: italic}] = f
	return nil
}

// Families lists loaded family names in sorted order.
func (fl *FontLibrary) Families() []string {
	seen := map[string]bool{}
	var out []string
	for k := range fl.fonts {
		if !seen[k.family] {
			seen[k.family] = true
			out = append(out, k.family)
		}
	}
	sort.Strings(out)
	return out
}

// find returns the exact match, else the same family and slant with the
// closest weight, else any face of the family.
func (fl *FontLibrary) find(spec FontSpec) *opentype.Font {
	if fl == nil || fl.fonts == nil {
		return nil
	}
	if f, ok := fl.fonts[fontKey{family: spec.Family, weight: spec.Weight, italic: spec.Italic}]; ok {
		return f
	}
	var best *opentype.Font
	bestScore := -1
	for k, f := range fl.fonts {
		if k.family != spec.Family {
			continue
		}
		score := abs(k.weight - spec.Weight)
		if k.italic != spec.Italic {
			score += 1000
		}
		if best == nil || score < bestScore {
			best, bestScore = f, score
		}
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// OTProvider resolves FontSpec through a FontLibrary and falls back to another
// Provider (BasicProvider when nil) for unknown families.
type OTProvider struct {
	Lib      *FontLibrary
	DPI      float64 // default 72 if zero
	Fallback Provider
}

func (p OTProvider) Resolve(spec FontSpec) (font.Face, Metrics) {
	if spec.SizePt <= 0 {
		spec.SizePt = 12
	}
	dpi := p.DPI
	if dpi <= 0 {
		dpi = 72
	}
	if f := p.Lib.find(spec); f != nil {
		face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: spec.SizePt, DPI: dpi, Hinting: font.HintingFull})
		if err == nil {
			m := face.Metrics()
			asc, desc := float64(m.Ascent.Round()), float64(m.Descent.Round())
			return face, Metrics{
				Ascent:  asc,
				Descent: desc,
				LineGap: float64(m.Height.Round()) - asc - desc,
				Scale:   1,
			}
		}
	}
	fb := p.Fallback
	if fb == nil {
		fb = BasicProvider{}
	}
	return fb.Resolve(spec)
}
