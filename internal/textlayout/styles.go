/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

// TextStyle is a named text preset: a font plus the padding kept between the
// text and the item frame. Leading is extra space added per line.
type TextStyle struct {
	Name    string
	Font    FontSpec
	Leading float64
	Padding float64
}

var builtinStyles = map[string]TextStyle{
	"booth": {
		Name:    "booth",
		Font:    FontSpec{Family: "Inter", SizePt: 14, Weight: 600},
		Padding: 8,
	},
	"description": {
		Name:    "description",
		Font:    FontSpec{Family: "Inter", SizePt: 13, Weight: 400},
		Leading: 2,
		Padding: 4,
	},
}

// GetStyle returns a builtin style by name.
func GetStyle(name string) (TextStyle, bool) { s, ok := builtinStyles[name]; return s, ok }

// ListStyles lists builtin style names in stable order.
func ListStyles() []string { return []string{"booth", "description"} }

// StyleSheet resolves styles with precedence Document > Global > builtin.
// Global is typically seeded from user config; Document from the open layout.
type StyleSheet struct {
	Global   map[string]TextStyle
	Document map[string]TextStyle
}

func NewStyleSheet() *StyleSheet {
	return &StyleSheet{Global: map[string]TextStyle{}, Document: map[string]TextStyle{}}
}

// WithDocument returns a copy with document-level overrides merged.
func (s *StyleSheet) WithDocument(over map[string]TextStyle) *StyleSheet {
	cp := NewStyleSheet()
	for k, v := range s.Global {
		cp.Global[k] = v
	}
	for k, v := range s.Document {
		cp.Document[k] = v
	}
	for k, v := range over {
		cp.Document[k] = v
	}
	return cp
}

func (s *StyleSheet) Resolve(name string) (TextStyle, bool) {
	if s != nil {
		if st, ok := s.Document[name]; ok {
			return st, true
		}
		if st, ok := s.Global[name]; ok {
			return st, true
		}
	}
	return GetStyle(name)
}
