/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Styles and paint definitions.

import "fmt"

type Color struct{ R, G, B, A uint8 }

var (
	Black       = Color{0, 0, 0, 255}
	White       = Color{255, 255, 255, 255}
	Transparent = Color{0, 0, 0, 0}
	Alert       = Color{220, 38, 38, 255}
	Accent      = Color{37, 99, 235, 255}
	Muted       = Color{148, 163, 184, 255}
)

// Hex renders the color as #rrggbb, ignoring alpha.
func (c Color) Hex() string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

// ParseHex accepts #rgb, #rrggbb and #rrggbbaa. Missing alpha is opaque.
func ParseHex(s string) (Color, error) {
	c := Color{A: 255}
	var err error
	switch len(s) {
	case 4:
		_, err = fmt.Sscanf(s, "#%1x%1x%1x", &c.R, &c.G, &c.B)
		c.R, c.G, c.B = c.R*17, c.G*17, c.B*17
	case 7:
		_, err = fmt.Sscanf(s, "#%2x%2x%2x", &c.R, &c.G, &c.B)
	case 9:
		_, err = fmt.Sscanf(s, "#%2x%2x%2x%2x", &c.R, &c.G, &c.B, &c.A)
	default:
		err = fmt.Errorf("bad length %d", len(s))
	}
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return c, nil
}

// IsZero reports whether no channel is set.
func (c Color) IsZero() bool { return c == Color{} }

type Fill struct {
	Color   Color
	Enabled bool
}

type Stroke struct {
	Color   Color
	Width   float64
	Dashed  bool
	Enabled bool
}
