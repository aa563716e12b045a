// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"github.com/SoftbearStudios/tilestream/server/terrain"
	"github.com/SoftbearStudios/tilestream/server/tile"
	"github.com/SoftbearStudios/tilestream/server/world"
	"time"
)

// Event is a tile state transition. Events are collected in the order they
// happen and handed out by Streamer.Drain.
type Event interface {
	TileCoord() world.TileCoord
}

type (
	// TileReady is sent once a tile's data is built. Data.Spawns are the
	// objects to instantiate under the tile.
	TileReady struct {
		Coord world.TileCoord
		Data  *tile.Data
	}

	// TileFailed is sent when a build (LOD < 0) or a mesh fails. Failed builds
	// are retried after RetryIn; failed meshes are not.
	TileFailed struct {
		Coord   world.TileCoord
		LOD     int
		Err     error
		RetryIn time.Duration
	}

	// LODChanged is sent when a tile starts using another mesh.
	LODChanged struct {
		Coord world.TileCoord
		LOD   int // index into the LOD table
		Mesh  *terrain.Mesh
	}

	// ColliderSet is sent once per tile when its collision mesh is committed.
	ColliderSet struct {
		Coord world.TileCoord
		Mesh  *terrain.Mesh
	}

	// VisibilityChanged is sent only when visibility differs from the last update.
	VisibilityChanged struct {
		Coord   world.TileCoord
		Visible bool
	}

	// TileEvicted is sent when a tile leaves the candidate set. Its record is gone.
	TileEvicted struct {
		Coord world.TileCoord
	}
)

func (e TileReady) TileCoord() world.TileCoord         { return e.Coord }
func (e TileFailed) TileCoord() world.TileCoord        { return e.Coord }
func (e LODChanged) TileCoord() world.TileCoord        { return e.Coord }
func (e ColliderSet) TileCoord() world.TileCoord       { return e.Coord }
func (e VisibilityChanged) TileCoord() world.TileCoord { return e.Coord }
func (e TileEvicted) TileCoord() world.TileCoord       { return e.Coord }
