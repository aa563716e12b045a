// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package road is the reference road generator. Roads follow the zero contour
// of a fractal noise field, so they continue across tile borders.
package road

import (
	"context"
	"github.com/SoftbearStudios/tilestream/server/config"
	"github.com/SoftbearStudios/tilestream/server/terrain"
	"github.com/SoftbearStudios/tilestream/server/terrain/noise"
	"github.com/chewxy/math32"
)

const roadSalt = 0x9b05688c2b3e6c1f

// Generator implements terrain.RoadGenerator.
type Generator struct {
	config config.RoadConfig
	allow  []bool // per biome
}

func New(roads config.RoadConfig, biomes []config.BiomeConfig) *Generator {
	allow := make([]bool, len(biomes))
	for i, b := range biomes {
		allow[i] = b.Roads
	}
	return &Generator{config: roads, allow: allow}
}

// Generate implements terrain.RoadGenerator.Generate. heights must be normalized.
func (g *Generator) Generate(ctx context.Context, heights *terrain.HeightField, biomes *terrain.BiomeInfo, grid terrain.SampleGrid) (*terrain.RoadStrengthMap, error) {
	roads := terrain.NewRoadStrengthMap(heights.Width, heights.Height)
	if !g.config.Enabled {
		return roads, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	contour := noise.NormalizeTheoretical(
		noise.Generate(heights.Width, heights.Height, g.config.Noise, grid.Centre, g.config.Kind, terrain.Mix(grid.Seed, roadSalt)),
		g.config.Noise,
	)

	width := g.config.Width
	for y := 0; y < heights.Height; y++ {
		for x := 0; x < heights.Width; x++ {
			d := math32.Abs(contour.At(x, y))
			if d >= width {
				continue
			}
			if heights.At(x, y) <= terrain.WaterLevel {
				continue
			}
			if g.config.MaxSlope > 0 && heights.Slope(float32(x), float32(y)) > g.config.MaxSlope {
				continue
			}

			allowed := float32(0)
			for b, ok := range g.allow {
				if ok {
					allowed += biomes.StrengthAt(x, y, b)
				}
			}
			if allowed > 1 {
				allowed = 1
			}

			roads.Values[x+y*heights.Width] = (1 - d/width) * allowed
		}
	}

	return roads, nil
}
