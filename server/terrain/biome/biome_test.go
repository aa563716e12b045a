// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package biome

import (
	"context"
	"github.com/SoftbearStudios/tilestream/server/config"
	"github.com/SoftbearStudios/tilestream/server/terrain"
	"github.com/SoftbearStudios/tilestream/server/world"
	"testing"
)

func testGrid() terrain.SampleGrid {
	return terrain.GridFor(config.TileConfig{NumVertsPerLine: 25, MeshScale: 1}, 3, world.TileCoord{X: 1, Y: -1})
}

func TestCompose(t *testing.T) {
	cfg := config.Default()
	c := New(cfg.World, cfg.Biomes)

	heights, info, maxHeight, err := c.Compose(context.Background(), testGrid())
	if err != nil {
		t.Fatal(err)
	}
	if maxHeight != 1 {
		t.Errorf("expected max height 1 from the mountain biome, got %f", maxHeight)
	}
	if heights.Width != 25 || info.Width != 25 || info.BiomeCount != len(cfg.Biomes) {
		t.Fatalf("unexpected sizes %d %d %d", heights.Width, info.Width, info.BiomeCount)
	}
	if heights.Min < 0 || heights.Max > maxHeight {
		t.Errorf("heights [%f, %f] outside [0, %f]", heights.Min, heights.Max, maxHeight)
	}

	for cell := 0; cell < 25*25; cell++ {
		best := int(info.Index[cell])
		owned := false
		for b := 0; b < info.BiomeCount; b++ {
			s := info.Strength[cell*info.BiomeCount+b]
			if s < 0 || s > 1 {
				t.Fatalf("cell %d biome %d strength %f", cell, b, s)
			}
			if s > info.Strength[cell*info.BiomeCount+best] {
				t.Fatalf("cell %d index %d is not the strongest", cell, best)
			}
			owned = owned || s > 0
		}
		if !owned {
			t.Fatalf("cell %d belongs to no biome", cell)
		}
	}

	again, _, _, _ := c.Compose(context.Background(), testGrid())
	for i := range heights.Values {
		if heights.Values[i] != again.Values[i] {
			t.Fatal("compose is not deterministic")
		}
	}
}

func TestCompose_Falloff(t *testing.T) {
	cfg := config.Default()
	cfg.World.Falloff = true
	heights, _, _, err := New(cfg.World, cfg.Biomes).Compose(context.Background(), testGrid())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < heights.Width; i++ {
		if h := heights.At(i, 0); h != 0 {
			t.Fatalf("edge height should be 0 with falloff, got %f", h)
		}
	}
}

func TestCompose_Cancelled(t *testing.T) {
	cfg := config.Default()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, _, err := New(cfg.World, cfg.Biomes).Compose(ctx, testGrid()); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCompose_NoBiomes(t *testing.T) {
	if _, _, _, err := New(config.Default().World, nil).Compose(context.Background(), testGrid()); err == nil {
		t.Fatal("expected error without biomes")
	}
}

func TestCompose_NormalizeModes(t *testing.T) {
	for _, mode := range []config.NormalizeMode{config.NormalizeTheoretical, config.NormalizeGraph, config.NormalizeLocal} {
		cfg := config.Default()
		cfg.World.NormalizeMode = mode
		// Steep octave stacks would exceed a single octave's range.
		for i := range cfg.Biomes {
			cfg.Biomes[i].Noise.Octaves = 6
			cfg.Biomes[i].Noise.Persistence = 0.9
		}

		heights, _, maxHeight, err := New(cfg.World, cfg.Biomes).Compose(context.Background(), testGrid())
		if err != nil {
			t.Fatal(err)
		}
		if heights.Min < 0 || heights.Max > maxHeight {
			t.Errorf("%s: heights [%f, %f] outside [0, %f]", mode, heights.Min, heights.Max, maxHeight)
		}
		if heights.Max == heights.Min {
			t.Errorf("%s: flat heights", mode)
		}
	}
}
