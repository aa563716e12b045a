// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tile builds the immutable generated data of one tile.
package tile

import (
	"context"
	"fmt"
	"github.com/SoftbearStudios/tilestream/server/config"
	"github.com/SoftbearStudios/tilestream/server/placement"
	"github.com/SoftbearStudios/tilestream/server/terrain"
	"github.com/SoftbearStudios/tilestream/server/terrain/noise"
	"github.com/SoftbearStudios/tilestream/server/world"
)

// Data is everything generated for one tile. It is never modified after Build
// returns, so it may be shared between goroutines.
type Data struct {
	Coord     world.TileCoord
	Bounds    world.AABB
	Heights   *terrain.HeightField // normalized
	Biomes    *terrain.BiomeInfo
	Roads     *terrain.RoadStrengthMap
	Spawns    []placement.Spawn
	MaxHeight float32 // as reported by the height composer
}

// Pipeline generates tile data. It only holds read only configuration and
// collaborators, so Build may be called concurrently for different tiles.
type Pipeline struct {
	world    config.WorldConfig
	tile     config.TileConfig
	objects  []config.ObjectConfig
	composer terrain.HeightComposer
	roads    terrain.RoadGenerator
}

func NewPipeline(cfg *config.Config, composer terrain.HeightComposer, roads terrain.RoadGenerator) *Pipeline {
	p := &Pipeline{
		world:    cfg.World,
		tile:     cfg.Tile,
		objects:  cfg.Objects,
		composer: composer,
		roads:    roads,
	}
	return p
}

// TileSize is the world size of one tile.
func (p *Pipeline) TileSize() float32 {
	return p.tile.WorldSize()
}

// Build runs every generation step for the tile at coord. Cancellation is
// checked between steps. Errors are wrapped with the step that failed.
func (p *Pipeline) Build(ctx context.Context, coord world.TileCoord) (*Data, error) {
	grid := terrain.GridFor(p.tile, p.world.Seed, coord)
	size := p.tile.WorldSize()

	heights, biomes, maxHeight, err := p.composer.Compose(ctx, grid)
	if err != nil {
		return nil, fmt.Errorf("tile %v: heights: %w", coord, err)
	}
	if heights.Width != grid.Size || heights.Height != grid.Size {
		return nil, fmt.Errorf("tile %v: heights: got %dx%d, want %dx%d", coord, heights.Width, heights.Height, grid.Size, grid.Size)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("tile %v: normalize: %w", coord, err)
	}
	// The composer normalized each octave sum it used. Only graph relative
	// normalization depends on the composed maximum.
	if p.world.NormalizeMode == config.NormalizeGraph {
		heights = noise.NormalizeGraphRelative(heights, maxHeight)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("tile %v: roads: %w", coord, err)
	}
	roads, err := p.roads.Generate(ctx, heights, biomes, grid)
	if err != nil {
		return nil, fmt.Errorf("tile %v: roads: %w", coord, err)
	}

	placeCtx := placement.PlaceContext{
		Grid:        grid,
		Center:      coord.Center(size),
		MeshScale:   p.tile.MeshScale,
		HeightScale: p.world.HeightScale,
		Heights:     heights,
		Biomes:      biomes,
		Roads:       roads,
	}

	var spawns []placement.Spawn
	for i, object := range p.objects {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("tile %v: objects: %w", coord, err)
		}
		spawns = append(spawns, placement.Place(placeCtx, object, i)...)
	}

	return &Data{
		Coord:     coord,
		Bounds:    coord.Bounds(size),
		Heights:   heights,
		Biomes:    biomes,
		Roads:     roads,
		Spawns:    spawns,
		MaxHeight: maxHeight,
	}, nil
}
