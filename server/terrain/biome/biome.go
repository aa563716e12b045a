// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package biome is the reference height composer. A low frequency biome axis
// picks blend weights, and each biome contributes its own curved fractal noise.
package biome

import (
	"context"
	"errors"
	"fmt"
	"github.com/SoftbearStudios/tilestream/server/config"
	"github.com/SoftbearStudios/tilestream/server/terrain"
	"github.com/SoftbearStudios/tilestream/server/terrain/noise"
	"github.com/chewxy/math32"
	"math"
)

const (
	axisSalt  = 0xa54ff53a5f1d36f1
	biomeSalt = 0x1f83d9abfb41bd6b
)

// Composer implements terrain.HeightComposer.
type Composer struct {
	world     config.WorldConfig
	biomes    []config.BiomeConfig
	curves    []terrain.Curve
	maxHeight float32
}

func New(world config.WorldConfig, biomes []config.BiomeConfig) *Composer {
	c := &Composer{
		world:  world,
		biomes: biomes,
		curves: make([]terrain.Curve, len(biomes)),
	}
	for i, b := range biomes {
		c.curves[i] = terrain.Curve(b.HeightCurve)
		if h := c.curves[i].Max() * b.HeightMultiplier; h > c.maxHeight {
			c.maxHeight = h
		}
	}
	return c
}

// MaxHeight is the largest height any biome can produce.
func (c *Composer) MaxHeight() float32 {
	return c.maxHeight
}

// Compose implements terrain.HeightComposer.Compose.
func (c *Composer) Compose(ctx context.Context, grid terrain.SampleGrid) (*terrain.HeightField, *terrain.BiomeInfo, float32, error) {
	if len(c.biomes) == 0 {
		return nil, nil, 0, errors.New("no biomes")
	}
	if len(c.biomes) > 256 {
		return nil, nil, 0, errors.New("too many biomes")
	}
	size := grid.Size
	if size < 2 {
		return nil, nil, 0, fmt.Errorf("grid size %d too small", size)
	}

	axis := unit(noise.NormalizeTheoretical(
		noise.Generate(size, size, c.world.BiomeNoise, grid.Centre, noise.Simplex, terrain.Mix(grid.Seed, axisSalt)),
		c.world.BiomeNoise,
	))
	info := c.strengths(axis, size)

	weighted := make([]float32, size*size)
	totals := make([]float32, size*size)
	for i, b := range c.biomes {
		if err := ctx.Err(); err != nil {
			return nil, nil, 0, err
		}

		field := c.normalize(
			noise.Generate(size, size, b.Noise, grid.Centre, b.Kind, terrain.Mix(grid.Seed, biomeSalt+uint64(i))),
			b.Noise,
		)
		curve := c.curves[i]

		for cell, h := range field.Values {
			s := info.Strength[cell*info.BiomeCount+i]
			if s == 0 {
				continue
			}
			weighted[cell] += curve.Evaluate(h) * b.HeightMultiplier * s
			totals[cell] += s
		}
	}

	for cell := range weighted {
		if totals[cell] > 0 {
			weighted[cell] /= totals[cell]
		}
	}

	if c.world.Falloff {
		applyFalloff(weighted, size)
	}

	return terrain.NewHeightField(size, size, weighted), info, c.maxHeight, nil
}

// strengths weighs each biome by the distance of the axis value to its centre.
// A cell no biome reaches is given fully to the nearest one.
func (c *Composer) strengths(axis *terrain.HeightField, size int) *terrain.BiomeInfo {
	count := len(c.biomes)
	info := terrain.NewBiomeInfo(size, size, count)

	for cell, a := range axis.Values {
		strengths := info.Strength[cell*count : (cell+1)*count]
		best, bestStrength := 0, float32(-1)
		nearest, nearestDistance := 0, float32(math.MaxFloat32)

		for i, b := range c.biomes {
			d := math32.Abs(a - b.Center)
			if d < nearestDistance {
				nearest, nearestDistance = i, d
			}
			s := 1 - d/b.Blend
			if s < 0 {
				s = 0
			}
			strengths[i] = s
			if s > bestStrength {
				best, bestStrength = i, s
			}
		}

		if bestStrength <= 0 {
			strengths[nearest] = 1
			best = nearest
		}
		info.Index[cell] = uint8(best)
	}
	return info
}

// normalize rescales one biome's raw octave sum by the world's mode, using
// that biome's own octave settings. Graph relative normalization needs the
// composed maximum, so it is left to the caller and the biome is mapped by its
// theoretical range like in theoretical mode.
func (c *Composer) normalize(field *terrain.HeightField, settings config.NoiseConfig) *terrain.HeightField {
	switch c.world.NormalizeMode {
	case config.NormalizeTheoretical, config.NormalizeGraph:
		return unit(noise.NormalizeTheoretical(field, settings))
	default:
		return noise.Normalize(field, c.world.NormalizeMode, settings, 0)
	}
}

// unit maps [-1, 1] onto [0, 1], clamped.
func unit(field *terrain.HeightField) *terrain.HeightField {
	return field.Map(func(v float32) float32 {
		v = (v + 1) * 0.5
		if v < 0 {
			return 0
		}
		if v > 1 {
			return 1
		}
		return v
	})
}

// applyFalloff lowers the tile edges so each tile becomes an island.
func applyFalloff(values []float32, size int) {
	const a, b = 3, 2.2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			fx := float32(x)/float32(size-1)*2 - 1
			fy := float32(y)/float32(size-1)*2 - 1
			v := math32.Max(math32.Abs(fx), math32.Abs(fy))
			va := math32.Pow(v, a)
			f := va / (va + math32.Pow(b-b*v, a))
			values[x+y*size] *= 1 - f
		}
	}
}
