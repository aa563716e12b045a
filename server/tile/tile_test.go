// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package tile

import (
	"context"
	"errors"
	"github.com/SoftbearStudios/tilestream/server/config"
	"github.com/SoftbearStudios/tilestream/server/terrain"
	"github.com/SoftbearStudios/tilestream/server/terrain/biome"
	"github.com/SoftbearStudios/tilestream/server/terrain/road"
	"github.com/SoftbearStudios/tilestream/server/world"
	"sync"
	"testing"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Tile.NumVertsPerLine = 41
	return cfg
}

func newTestPipeline(cfg *config.Config) *Pipeline {
	return NewPipeline(cfg, biome.New(cfg.World, cfg.Biomes), road.New(cfg.Roads, cfg.Biomes))
}

func TestBuild(t *testing.T) {
	cfg := testConfig()
	p := newTestPipeline(cfg)
	coord := world.TileCoord{X: 3, Y: -2}

	data, err := p.Build(context.Background(), coord)
	if err != nil {
		t.Fatal(err)
	}
	if data.Coord != coord || data.Heights.Width != 41 || data.Roads.Width != 41 {
		t.Fatalf("unexpected data %+v", data)
	}
	if data.Bounds.Center() != coord.Center(p.TileSize()) {
		t.Errorf("bounds %v not centred on tile", data.Bounds)
	}
	// Graph normalization keeps heights at or above 0.
	if data.Heights.Min < 0 {
		t.Errorf("normalized min %f", data.Heights.Min)
	}

	again, err := p.Build(context.Background(), coord)
	if err != nil {
		t.Fatal(err)
	}
	if len(again.Spawns) != len(data.Spawns) {
		t.Fatalf("spawns differ: %d vs %d", len(data.Spawns), len(again.Spawns))
	}
	for i := range data.Spawns {
		if data.Spawns[i] != again.Spawns[i] {
			t.Fatalf("spawn %d differs", i)
		}
	}
}

func TestBuild_TheoreticalKeepsComposedRange(t *testing.T) {
	cfg := testConfig()
	cfg.World.NormalizeMode = config.NormalizeTheoretical
	composer := biome.New(cfg.World, cfg.Biomes)
	p := NewPipeline(cfg, composer, road.New(cfg.Roads, cfg.Biomes))
	coord := world.TileCoord{X: -4, Y: 7}

	data, err := p.Build(context.Background(), coord)
	if err != nil {
		t.Fatal(err)
	}
	composed, _, maxHeight, err := composer.Compose(context.Background(), terrain.GridFor(cfg.Tile, cfg.World.Seed, coord))
	if err != nil {
		t.Fatal(err)
	}

	// Each biome's octave sum is normalized inside the composer, not again here.
	for i, v := range data.Heights.Values {
		if v != composed.Values[i] {
			t.Fatalf("cell %d: expected %f, got %f", i, composed.Values[i], v)
		}
	}
	if data.Heights.Min < 0 || data.Heights.Max > maxHeight || data.MaxHeight != maxHeight {
		t.Errorf("heights [%f, %f] outside [0, %f]", data.Heights.Min, data.Heights.Max, maxHeight)
	}
}

func TestBuild_Concurrent(t *testing.T) {
	p := newTestPipeline(testConfig())
	coords := []world.TileCoord{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: -1}}

	serial := make([]*Data, len(coords))
	for i, c := range coords {
		d, err := p.Build(context.Background(), c)
		if err != nil {
			t.Fatal(err)
		}
		serial[i] = d
	}

	parallel := make([]*Data, len(coords))
	var wg sync.WaitGroup
	for i, c := range coords {
		wg.Add(1)
		go func(i int, c world.TileCoord) {
			defer wg.Done()
			parallel[i], _ = p.Build(context.Background(), c)
		}(i, c)
	}
	wg.Wait()

	for i := range coords {
		if parallel[i] == nil {
			t.Fatalf("tile %v failed", coords[i])
		}
		for j := range serial[i].Heights.Values {
			if serial[i].Heights.Values[j] != parallel[i].Heights.Values[j] {
				t.Fatalf("tile %v differs when built concurrently", coords[i])
			}
		}
	}
}

type failingRoads struct{}

var errRoads = errors.New("road network unavailable")

func (failingRoads) Generate(context.Context, *terrain.HeightField, *terrain.BiomeInfo, terrain.SampleGrid) (*terrain.RoadStrengthMap, error) {
	return nil, errRoads
}

func TestBuild_CollaboratorError(t *testing.T) {
	cfg := testConfig()
	p := NewPipeline(cfg, biome.New(cfg.World, cfg.Biomes), failingRoads{})

	_, err := p.Build(context.Background(), world.TileCoord{X: 1, Y: 1})
	if !errors.Is(err, errRoads) {
		t.Fatalf("expected wrapped road error, got %v", err)
	}
	if want := "tile (1, 1): roads: road network unavailable"; err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestBuild_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestPipeline(testConfig()).Build(ctx, world.TileCoord{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}
