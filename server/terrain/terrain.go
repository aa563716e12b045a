// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

import (
	"context"
	"github.com/SoftbearStudios/tilestream/server/world"
	"sync"
)

// HeightComposer turns a sample grid into a height field and biome strengths.
// The returned float is the largest height the composition can produce, used by
// graph relative normalization.
// Implementations must be safe to call concurrently for different grids.
type HeightComposer interface {
	Compose(ctx context.Context, grid SampleGrid) (*HeightField, *BiomeInfo, float32, error)
}

// RoadGenerator carves a road mask from a finished height field.
// Implementations must be safe to call concurrently for different grids.
type RoadGenerator interface {
	Generate(ctx context.Context, heights *HeightField, biomes *BiomeInfo, grid SampleGrid) (*RoadStrengthMap, error)
}

// Mesher builds a renderable mesh of a height field at a level of detail.
// Implementations must be safe to call concurrently.
type Mesher interface {
	Generate(heights *HeightField, lod int) (*Mesh, error)
}

// Data describes part of a heightmap.
// It may be in a compressed format.
type Data struct {
	world.AABB
	Data   []byte `json:"data"`   // Data is a possibly compressed terrain heightmap.
	Stride int    `json:"stride"` // Stride is width of Data.
	Length int    `json:"length"` // Length is uncompressed length of Data for faster reading.
}

var dataPool = sync.Pool{
	New: func() interface{} {
		return &Data{
			Data: make([]byte, 0, 2048),
		}
	},
}

func NewData() *Data {
	return dataPool.Get().(*Data)
}

func (data *Data) Pool() {
	*data = Data{
		Data: data.Data[:0],
	}
	dataPool.Put(data)
}
