// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

import (
	"github.com/SoftbearStudios/tilestream/server/config"
	"github.com/SoftbearStudios/tilestream/server/world"
)

// SampleGrid is where a tile samples its noise. Centre is in noise space, so
// tiles that share a seed line up at their borders.
type SampleGrid struct {
	Coord  world.TileCoord
	Size   int // vertices per line
	Centre world.Vec2f
	Seed   int64
}

// GridFor returns the sample grid of the tile at coord.
func GridFor(tile config.TileConfig, seed int64, coord world.TileCoord) SampleGrid {
	return SampleGrid{
		Coord:  coord,
		Size:   tile.NumVertsPerLine,
		Centre: coord.Vec2f().Mul(tile.WorldSize() / tile.MeshScale),
		Seed:   seed,
	}
}

// Cells is the number of samples in the grid.
func (g SampleGrid) Cells() int {
	return g.Size * g.Size
}

// Mix derives an independent seed from seed and salt with a splitmix64 step.
func Mix(seed int64, salt uint64) int64 {
	h := uint64(seed) + salt + 0x9e3779b97f4a7c15
	h ^= h >> 30
	h *= 0xbf58476d1ce4e5b9
	h ^= h >> 27
	h *= 0x94d049bb133111eb
	h ^= h >> 31
	return int64(h)
}
