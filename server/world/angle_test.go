// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

import (
	"github.com/chewxy/math32"
	"math/rand"
	"testing"
)

func BenchmarkToAngle(b *testing.B) {
	const count = 1024
	radians := make([]float32, count)
	for i := range radians {
		radians[i] = rand.Float32()*100 - 50
	}
	b.ResetTimer()

	var acc Angle
	for i := 0; i < b.N; i++ {
		acc += ToAngle(radians[i&(count-1)])
	}
	_ = acc
}

func TestToAngle(t *testing.T) {
	for i := float32(-20); i < 20; i += 0.1 {
		a := ToAngle(i).Float()
		if a < -math32.Pi || a >= math32.Pi {
			t.Errorf("ToAngle(%f) = %f out of range", i, a)
		}
		// Same direction as the input.
		if d := ToAngle(i).Vec2f().Sub(Angle(i).Vec2f()); !approx(d.LengthSquared(), 0) {
			t.Errorf("ToAngle(%f) = %s changed direction", i, ToAngle(i))
		}
	}

	tests := []struct {
		radians float32
		angle   Angle
	}{
		{0, 0},
		{math32.Pi * 2, 0},
		{math32.Pi / 2, Pi / 2},
		{-math32.Pi / 2, -Pi / 2},
		{math32.Pi * 3 / 2, -Pi / 2},
		{math32.Pi, -Pi},
	}
	for _, test := range tests {
		if a := ToAngle(test.radians); !approx(a.Float(), test.angle.Float()) {
			t.Errorf("ToAngle(%f): expected %s, got %s", test.radians, test.angle, a)
		}
	}
}

func TestAngle_Vec2f(t *testing.T) {
	if v := (Pi / 2).Vec2f(); !approx(v.X, 0) || !approx(v.Y, 1) {
		t.Errorf("expected (0, 1), got %v", v)
	}
	if s := (Pi / 2).String(); s != "90.0 degrees" {
		t.Errorf("unexpected string %q", s)
	}
}
