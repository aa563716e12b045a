// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package placement scatters objects over a tile: Poisson disk sampling
// followed by biome, slope, height and road filters.
package placement

import (
	"github.com/SoftbearStudios/tilestream/server/terrain"
	"github.com/SoftbearStudios/tilestream/server/world"
	"github.com/chewxy/math32"
	"math"
	"math/rand"
)

// DefaultAttempts is the number of candidates tried around an active point.
const DefaultAttempts = 20

// RadiusField returns a factor in [0, 1] that picks a radius between the
// minimum and maximum. Values outside are clamped.
type RadiusField func(p world.Vec2f) float32

// NoiseRadiusField samples a normalized field at the nearest cell.
func NoiseRadiusField(field *terrain.HeightField) RadiusField {
	return func(p world.Vec2f) float32 {
		return field.AtClamped(int(math.Round(float64(p.X))), int(math.Round(float64(p.Y))))
	}
}

// SamplePoints returns Poisson disk distributed points in [0, domain.X) x [0, domain.Y).
// Each candidate is only tested against points in the 3x3 neighbouring cells,
// using the radius evaluated at the candidate. The first point is the domain
// centre. The same arguments always produce the same points in the same order.
func SamplePoints(domain world.Vec2f, minRadius, maxRadius float32, radius RadiusField, attempts int, seed int64) []world.Vec2f {
	if domain.X <= 0 || domain.Y <= 0 || minRadius <= 0 || maxRadius < minRadius {
		return nil
	}
	if attempts <= 0 {
		attempts = DefaultAttempts
	}

	radiusAt := func(p world.Vec2f) float32 {
		if radius == nil {
			return minRadius
		}
		return world.Clamp(radius(p), 0, 1)*(maxRadius-minRadius) + minRadius
	}

	rng := rand.New(rand.NewSource(seed))
	g := newGrid(domain, maxRadius/math32.Sqrt2)

	first := domain.Mul(0.5)
	points := []world.Vec2f{first}
	active := []int{0}
	g.insert(first, 0)

	for len(active) > 0 {
		ai := rng.Intn(len(active))
		p := points[active[ai]]
		r := radiusAt(p)

		accepted := false
		for k := 0; k < attempts; k++ {
			angle := world.Angle(rng.Float32() * 2 * math32.Pi)
			distance := r + rng.Float32()*r
			candidate := p.AddScaled(angle.Vec2f(), distance)

			// Out of domain is rejected, never clamped.
			if candidate.X < 0 || candidate.Y < 0 || candidate.X >= domain.X || candidate.Y >= domain.Y {
				continue
			}

			if !g.clear(candidate, radiusAt(candidate), points) {
				continue
			}

			index := len(points)
			points = append(points, candidate)
			active = append(active, index)
			g.insert(candidate, index)
			accepted = true
			break
		}

		if !accepted {
			// Swap remove
			end := len(active) - 1
			active[ai] = active[end]
			active = active[:end]
		}
	}

	return points
}
