/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interact

import (
	"boothplan/internal/render"
	"boothplan/internal/vector"
)

// Drawables returns the selection overlay: envelope border, corner squares,
// rotate stem and knob, plus any active snap guides.
func (in *Interactor) Drawables() []render.Drawable {
	p := in.cfg.Policy
	color := vector.Accent
	if in.invalid {
		color = vector.Alert
	}
	stroke := vector.Stroke{Color: color, Width: 1, Enabled: true}
	f := in.info.Frame()

	out := []render.Drawable{{Kind: render.KindRect, Pos: f.Pos, Size: f.Size, Rotate: f.Rotate, Stroke: stroke}}
	hs := p.HandleSize
	for i := 0; i < 4; i++ {
		c := in.info.Corner(i)
		out = append(out, render.Drawable{
			Kind:   render.KindRect,
			Pos:    vector.Pt{X: c.X - hs/2, Y: c.Y - hs/2},
			Size:   vector.Size{W: hs, H: hs},
			Rotate: f.Rotate,
			Fill:   vector.Fill{Color: vector.White, Enabled: true},
			Stroke: stroke,
		})
	}
	if p.RotateOffset > 0 {
		knob := in.info.RotateKnob(p.RotateOffset)
		out = append(out,
			render.Drawable{Kind: render.KindLine, From: in.info.TopCenter, To: knob, Stroke: stroke},
			render.Drawable{
				Kind:   render.KindCircle,
				Center: knob,
				Radius: hs / 2,
				Fill:   vector.Fill{Color: vector.White, Enabled: true},
				Stroke: stroke,
			})
	}
	guide := vector.Stroke{Color: vector.Alert, Width: 1, Dashed: true, Enabled: true}
	for _, g := range in.guides {
		out = append(out, render.Drawable{Kind: render.KindLine, From: g.From, To: g.To, Stroke: guide})
	}
	return out
}
