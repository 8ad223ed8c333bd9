/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Smart guides snap a moving selection's bounding box to nearby edges and
// centers (editable area, neighbouring items). UI-agnostic and deterministic.

import "math"

// SnapOptions controls which guide candidates are considered and the threshold.
type SnapOptions struct {
	// Threshold is the maximum distance in canvas units at which snapping occurs.
	Threshold     float64
	SnapToEdges   bool
	SnapToCenters bool
}

// Anchor is a static reference rect. Higher Weight wins ties; use 1 when unsure.
type Anchor struct {
	Rect   Rect
	Weight float64
}

// GuideLine describes a guide produced by a snap. Orientation is "vertical" or
// "horizontal", Kind is "edge" or "center". Positions are rounded to 3 places.
type GuideLine struct {
	Orientation string
	Kind        string
	Position    float64
	From        Pt
	To          Pt
}

type snapCandidate struct {
	delta float64
	score float64
	guide GuideLine
	ok    bool
}

func (c *snapCandidate) offer(delta, threshold, weight float64, g GuideLine) {
	dist := math.Abs(delta)
	if dist > threshold {
		return
	}
	score := dist / max(1, weight)
	if !c.ok || score < c.score {
		*c = snapCandidate{delta: delta, score: score, guide: g, ok: true}
	}
}

// ComputeSmartGuides snaps moving against anchors independently per axis and
// returns the snapped rect plus the guides to draw.
func ComputeSmartGuides(moving Rect, anchors []Anchor, opts SnapOptions) (Rect, []GuideLine) {
	if opts.Threshold <= 0 {
		opts.Threshold = 6
	}
	var bestX, bestY snapCandidate

	mx := [3]float64{moving.X, moving.X + moving.W/2, moving.X + moving.W}
	my := [3]float64{moving.Y, moving.Y + moving.H/2, moving.Y + moving.H}

	for _, a := range anchors {
		ax := [3]float64{a.Rect.X, a.Rect.X + a.Rect.W/2, a.Rect.X + a.Rect.W}
		ay := [3]float64{a.Rect.Y, a.Rect.Y + a.Rect.H/2, a.Rect.Y + a.Rect.H}
		if opts.SnapToEdges {
			// left/right of the moving box against left/right of the anchor, incl. abutting
			for _, i := range [2]int{0, 2} {
				for _, j := range [2]int{0, 2} {
					bestX.offer(mx[i]-ax[j], opts.Threshold, a.Weight, verticalGuide(ax[j], moving, a.Rect, "edge"))
					bestY.offer(my[i]-ay[j], opts.Threshold, a.Weight, horizontalGuide(ay[j], moving, a.Rect, "edge"))
				}
			}
		}
		if opts.SnapToCenters {
			bestX.offer(mx[1]-ax[1], opts.Threshold, a.Weight, verticalGuide(ax[1], moving, a.Rect, "center"))
			bestY.offer(my[1]-ay[1], opts.Threshold, a.Weight, horizontalGuide(ay[1], moving, a.Rect, "center"))
		}
	}

	snapped := moving
	var guides []GuideLine
	if bestX.ok {
		snapped.X = FloatRound(moving.X-bestX.delta, 3)
		guides = append(guides, bestX.guide)
	}
	if bestY.ok {
		snapped.Y = FloatRound(moving.Y-bestY.delta, 3)
		guides = append(guides, bestY.guide)
	}
	return snapped, guides
}

func verticalGuide(x float64, a, b Rect, kind string) GuideLine {
	x = FloatRound(x, 3)
	return GuideLine{
		Orientation: "vertical",
		Kind:        kind,
		Position:    x,
		From:        Pt{x, min(a.Y, b.Y)},
		To:          Pt{x, max(a.Y+a.H, b.Y+b.H)},
	}
}

func horizontalGuide(y float64, a, b Rect, kind string) GuideLine {
	y = FloatRound(y, 3)
	return GuideLine{
		Orientation: "horizontal",
		Kind:        kind,
		Position:    y,
		From:        Pt{min(a.X, b.X), y},
		To:          Pt{max(a.X+a.W, b.X+b.W), y},
	}
}
