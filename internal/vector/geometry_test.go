/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"math"
	"math/rand"
	"testing"
)

const tol = 1e-6

func TestRotatePoint_ZeroIsIdentity(t *testing.T) {
	p := Pt{12.345, -6.789}
	if got := RotatePoint(p, Pt{1000, -3}, 0); got != p {
		t.Fatalf("rotate by 0 changed point: %+v", got)
	}
}

func TestRotatePoint_RoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		p := Pt{r.Float64()*2000 - 1000, r.Float64()*2000 - 1000}
		a := Pt{r.Float64()*200 - 100, r.Float64()*200 - 100}
		deg := r.Float64()*720 - 360
		back := RotatePoint(RotatePoint(p, a, deg), a, -deg)
		if !back.Near(p, tol) {
			t.Fatalf("round trip %v around %v by %v: got %v", p, a, deg, back)
		}
	}
}

func TestRotatePoint_Clockwise(t *testing.T) {
	// y-down canvas: +90 turns +x into +y
	got := RotatePoint(Pt{10, 0}, Pt{}, 90)
	if got != (Pt{0, 10}) {
		t.Fatalf("expected {0 10}, got %+v", got)
	}
}

func TestCorners_OrderAndDistances(t *testing.T) {
	pos, size := Pt{10, 20}, Size{100, 50}
	c0 := Corners(pos, size, 0)
	want := [4]Pt{{10, 20}, {110, 20}, {110, 70}, {10, 70}}
	if c0 != want {
		t.Fatalf("unrotated corners %+v", c0)
	}
	center := Pt{60, 45}
	half := math.Hypot(50, 25)
	for _, deg := range []float64{13, 45, 90, 137.5, 270, -30} {
		cs := Corners(pos, size, deg)
		for i, c := range cs {
			if d := c.Sub(center).Len(); math.Abs(d-half) > tol {
				t.Fatalf("deg %v corner %d distance %v", deg, i, d)
			}
			if exp := RotatePoint(want[i], center, deg); !c.Near(exp, tol) {
				t.Fatalf("deg %v corner %d = %v want %v", deg, i, c, exp)
			}
		}
	}
}

func TestBounds_QuarterTurn(t *testing.T) {
	f := F(0, 0, 100, 50, 90)
	b := f.Bounds()
	if math.Abs(b.W-50) > tol || math.Abs(b.H-100) > tol {
		t.Fatalf("expected 50x100 got %vx%v", b.W, b.H)
	}
	if !b.Center().Near(f.Center(), tol) {
		t.Fatalf("center moved: %v vs %v", b.Center(), f.Center())
	}
}

func TestRectsOverlap_Boundaries(t *testing.T) {
	a := F(1000, 500, 200, 100, 0)
	cases := []struct {
		name string
		b    Frame
		want bool
	}{
		{"touching right edge", F(1200, 500, 350, 190, 0), false},
		{"gap", F(1300, 500, 350, 190, 0), false},
		{"inside", F(1100, 599, 90, 123, 0), true},
		{"touching corner", F(1200, 600, 10, 10, 0), false},
		{"zero width", F(1050, 520, 0, 20, 0), false},
		{"rotated across", F(1150, 480, 100, 20, 45), true},
		{"rotated clear", F(1230, 460, 10, 10, 45), false},
	}
	for _, tc := range cases {
		if got := RectsOverlap(a, tc.b); got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestRectsOverlap_Symmetric(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	for i := 0; i < 1000; i++ {
		a := F(r.Float64()*300, r.Float64()*300, r.Float64()*80, r.Float64()*80, r.Float64()*360)
		b := F(r.Float64()*300, r.Float64()*300, r.Float64()*80, r.Float64()*80, float64(r.Intn(4))*90)
		if RectsOverlap(a, b) != RectsOverlap(b, a) {
			t.Fatalf("asymmetric result for %+v %+v", a, b)
		}
	}
}

func TestFrameContains_Rotated(t *testing.T) {
	f := F(0, 0, 100, 10, 90) // vertical strip centered at 50,5
	if !f.Contains(Pt{50, 40}) {
		t.Fatalf("expected point on rotated strip to be inside")
	}
	if f.Contains(Pt{90, 5}) {
		t.Fatalf("expected point outside rotated strip")
	}
}

func TestSegmentsIntersect(t *testing.T) {
	cases := []struct {
		p1, p2, q1, q2 Pt
		want           bool
	}{
		{Pt{0, 0}, Pt{10, 10}, Pt{0, 10}, Pt{10, 0}, true},
		{Pt{0, 0}, Pt{10, 0}, Pt{0, 1}, Pt{10, 1}, false},
		{Pt{0, 0}, Pt{10, 0}, Pt{5, 0}, Pt{15, 0}, true},
		{Pt{0, 0}, Pt{10, 0}, Pt{11, 0}, Pt{15, 0}, false},
		{Pt{0, 0}, Pt{10, 0}, Pt{10, 0}, Pt{10, 5}, true},
	}
	for i, tc := range cases {
		if got := SegmentsIntersect(tc.p1, tc.p2, tc.q1, tc.q2); got != tc.want {
			t.Fatalf("case %d: got %v want %v", i, got, tc.want)
		}
	}
}

func TestAngleBetween(t *testing.T) {
	if got := AngleBetween(Pt{}, Pt{1, 0}, Pt{0, 1}); math.Abs(got-90) > tol {
		t.Fatalf("expected 90, got %v", got)
	}
	if got := AngleBetween(Pt{}, Pt{0, 1}, Pt{1, 0}); math.Abs(got+90) > tol {
		t.Fatalf("expected -90, got %v", got)
	}
	if got := NormalizeDelta(270); got != -90 {
		t.Fatalf("NormalizeDelta(270) = %v", got)
	}
	if got := NormalizeAngle(-90); got != 270 {
		t.Fatalf("NormalizeAngle(-90) = %v", got)
	}
}

func TestAffine_RotateAboutMatchesRotatePoint(t *testing.T) {
	anchor := Pt{30, 40}
	p := Pt{100, -20}
	m := RotateAbout(anchor, 33)
	if got, want := m.Apply(p), RotatePoint(p, anchor, 33); !got.Near(want, tol) {
		t.Fatalf("affine %v vs rotate %v", got, want)
	}
	if got := Identity.Mul(Translate(3, 4)).Apply(Pt{1, 1}); got != (Pt{4, 5}) {
		t.Fatalf("translate %v", got)
	}
}

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#2563eb")
	if err != nil || c != Accent {
		t.Fatalf("got %+v, %v", c, err)
	}
	if c.Hex() != "#2563eb" {
		t.Fatalf("hex round trip: %s", c.Hex())
	}
	if c, _ := ParseHex("#fff"); c != White {
		t.Fatalf("short form: %+v", c)
	}
	if _, err := ParseHex("blue"); err == nil {
		t.Fatalf("expected error")
	}
}
