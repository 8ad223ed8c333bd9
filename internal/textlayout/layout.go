/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package textlayout measures and wraps item text. Measurement sits behind
// the Provider and Layouter interfaces so the editor core never depends on a
// concrete font engine.
package textlayout

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// FontSpec describes a requested font.
type FontSpec struct {
	Family string  `json:"family,omitempty"`
	SizePt float64 `json:"size,omitempty"`
	Weight int     `json:"weight,omitempty"` // 100..900
	Italic bool    `json:"italic,omitempty"`
}

// Metrics are line metrics in canvas units for the resolved face.
// Scale multiplies raw face advances; it is 1 for faces rendered at the requested size.
type Metrics struct {
	Ascent, Descent, LineGap float64
	Scale                    float64
}

// LineHeight is ascent + descent + gap.
func (m Metrics) LineHeight() float64 { return m.Ascent + m.Descent + m.LineGap }

// Line is one laid out line.
type Line struct {
	Text  string
	Width float64
}

// TextBox is the result of laying out text.
type TextBox struct {
	Lines   []Line
	Width   float64
	Height  float64
	Metrics Metrics
}

// Provider maps FontSpec to a concrete font.Face.
type Provider interface {
	Resolve(FontSpec) (font.Face, Metrics)
}

// Layouter performs line breaking and measurement. maxWidth <= 0 disables wrapping.
type Layouter interface {
	Layout(text string, spec FontSpec, maxWidth float64) (TextBox, error)
}

const basicNominal = 13

// BasicProvider uses basicfont.Face7x13 scaled linearly to the requested size.
// Results are deterministic on every platform.
type BasicProvider struct{}

func (BasicProvider) Resolve(spec FontSpec) (font.Face, Metrics) {
	f := basicfont.Face7x13
	m := f.Metrics()
	scale := 1.0
	if spec.SizePt > 0 {
		scale = spec.SizePt / basicNominal
	}
	asc, desc := float64(m.Ascent.Round()), float64(m.Descent.Round())
	gap := float64(m.Height.Round()) - asc - desc
	return f, Metrics{Ascent: asc * scale, Descent: desc * scale, LineGap: gap * scale, Scale: scale}
}

// WordWrapLayouter breaks on spaces and explicit newlines. Words wider than
// maxWidth are placed on their own line and never split.
type WordWrapLayouter struct{ Provider Provider }

func NewWordWrap(provider Provider) *WordWrapLayouter { return &WordWrapLayouter{Provider: provider} }

func (l *WordWrapLayouter) Layout(text string, spec FontSpec, maxWidth float64) (TextBox, error) {
	p := l.Provider
	if p == nil {
		p = BasicProvider{}
	}
	face, met := p.Resolve(spec)
	d := &font.Drawer{Face: face}
	measure := func(s string) float64 { return advance(d, s) * met.Scale }
	space := measure(" ")

	box := TextBox{Metrics: met}
	emit := func(words []string, w float64) {
		box.Lines = append(box.Lines, Line{Text: strings.Join(words, " "), Width: w})
		box.Width = max(box.Width, w)
		box.Height += met.LineHeight()
	}
	for _, para := range strings.Split(text, "\n") {
		var words []string
		var width float64
		for _, word := range strings.Fields(para) {
			w := measure(word)
			if len(words) > 0 && maxWidth > 0 && width+space+w > maxWidth {
				emit(words, width)
				words, width = nil, 0
			}
			if len(words) > 0 {
				width += space
			}
			words = append(words, word)
			width += w
		}
		emit(words, width)
	}
	return box, nil
}

func advance(d *font.Drawer, s string) float64 {
	return float64(d.MeasureString(s)) / 64 // fixed.Int26_6 to px
}

// Measure returns the single-line width and line height of text.
func Measure(provider Provider, text string, spec FontSpec) (w, h float64) {
	if provider == nil {
		provider = BasicProvider{}
	}
	face, met := provider.Resolve(spec)
	d := &font.Drawer{Face: face}
	return advance(d, text) * met.Scale, met.Ascent + met.Descent
}
