// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package placement

import (
	"github.com/SoftbearStudios/tilestream/server/terrain"
	"github.com/SoftbearStudios/tilestream/server/world"
	"math"
	"math/rand"
)

// Every filter returns a new slice holding the surviving points in input order.

// FilterBiome keeps a point with probability strength^3 of biome at its cell.
func FilterBiome(points []world.Vec2f, biomes *terrain.BiomeInfo, biome int, rng *rand.Rand) []world.Vec2f {
	out := make([]world.Vec2f, 0, len(points))
	for _, p := range points {
		s := biomes.StrengthAt(int(p.X), int(p.Y), biome)
		if rng.Float64() < float64(s*s*s) {
			out = append(out, p)
		}
	}
	return out
}

// FilterSlope keeps points whose bilinear gradient magnitude is in [minSlope, maxSlope].
func FilterSlope(points []world.Vec2f, heights *terrain.HeightField, minSlope, maxSlope float32) []world.Vec2f {
	out := make([]world.Vec2f, 0, len(points))
	for _, p := range points {
		if s := heights.Slope(p.X, p.Y); s >= minSlope && s <= maxSlope {
			out = append(out, p)
		}
	}
	return out
}

// FilterHeight keeps points whose nearest cell height is in [minHeight, maxHeight].
func FilterHeight(points []world.Vec2f, heights *terrain.HeightField, minHeight, maxHeight float32) []world.Vec2f {
	out := make([]world.Vec2f, 0, len(points))
	for _, p := range points {
		h := heights.AtClamped(int(math.Round(float64(p.X))), int(math.Round(float64(p.Y))))
		if h >= minHeight && h <= maxHeight {
			out = append(out, p)
		}
	}
	return out
}

// FilterRoads drops points on a road cell or whose diagonal neighbour
// (x+1, y+1) is a road.
func FilterRoads(points []world.Vec2f, roads *terrain.RoadStrengthMap) []world.Vec2f {
	out := make([]world.Vec2f, 0, len(points))
	for _, p := range points {
		x, y := int(p.X), int(p.Y)
		if roads.At(x, y) != 0 || roads.At(x+1, y+1) != 0 {
			continue
		}
		out = append(out, p)
	}
	return out
}
