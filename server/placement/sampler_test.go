// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package placement

import (
	"github.com/SoftbearStudios/tilestream/server/world"
	"github.com/chewxy/math32"
	"testing"
)

// wavyRadius varies smoothly over the domain.
func wavyRadius(p world.Vec2f) float32 {
	return 0.5 + 0.5*math32.Sin(p.X*0.1)*math32.Cos(p.Y*0.07)
}

func TestSamplePoints_InDomain(t *testing.T) {
	domain := world.Vec2f{X: 96, Y: 64}
	points := SamplePoints(domain, 2, 6, wavyRadius, DefaultAttempts, 42)
	if len(points) < 10 {
		t.Fatalf("expected a reasonable number of points, got %d", len(points))
	}
	if points[0] != domain.Mul(0.5) {
		t.Errorf("first point should be the domain centre, got %v", points[0])
	}
	for i, p := range points {
		if p.X < 0 || p.Y < 0 || p.X >= domain.X || p.Y >= domain.Y {
			t.Fatalf("point %d %v outside domain", i, p)
		}
	}
}

func TestSamplePoints_Separation(t *testing.T) {
	const minRadius, maxRadius = 1.5, 5
	domain := world.Vec2f{X: 80, Y: 80}
	points := SamplePoints(domain, minRadius, maxRadius, wavyRadius, DefaultAttempts, 7)

	g := newGrid(domain, maxRadius/math32.Sqrt2)
	for i, p := range points {
		r := world.Clamp(wavyRadius(p), 0, 1)*(maxRadius-minRadius) + minRadius
		px, py := g.cellOf(p)

		// Points are returned in acceptance order, so p was tested against all
		// earlier points with its own radius.
		for j := 0; j < i; j++ {
			q := points[j]
			qx, qy := g.cellOf(q)
			if qx < px-1 || qx > px+1 || qy < py-1 || qy > py+1 {
				continue
			}
			if q.DistanceSquared(p) < r*r {
				t.Fatalf("point %d %v too close to point %d %v (radius %f)", i, p, j, q, r)
			}
		}
	}
}

func TestSamplePoints_Deterministic(t *testing.T) {
	domain := world.Vec2f{X: 50, Y: 50}
	a := SamplePoints(domain, 2, 4, wavyRadius, 0, 3)
	b := SamplePoints(domain, 2, 4, wavyRadius, 0, 3)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("point %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestSamplePoints_Degenerate(t *testing.T) {
	tests := []struct {
		name               string
		domain             world.Vec2f
		minRadius, maxRadius float32
	}{
		{"empty domain", world.Vec2f{}, 1, 2},
		{"zero radius", world.Vec2f{X: 10, Y: 10}, 0, 2},
		{"inverted radius", world.Vec2f{X: 10, Y: 10}, 3, 2},
	}
	for _, test := range tests {
		if points := SamplePoints(test.domain, test.minRadius, test.maxRadius, nil, 5, 1); points != nil {
			t.Errorf("%s: expected no points, got %d", test.name, len(points))
		}
	}

	// Radius larger than the domain leaves only the centre.
	if points := SamplePoints(world.Vec2f{X: 4, Y: 4}, 10, 10, nil, 5, 1); len(points) != 1 {
		t.Errorf("expected only the centre, got %d points", len(points))
	}
}

func BenchmarkSamplePoints(b *testing.B) {
	domain := world.Vec2f{X: 240, Y: 240}
	for i := 0; i < b.N; i++ {
		SamplePoints(domain, 2, 6, wavyRadius, DefaultAttempts, int64(i))
	}
}
