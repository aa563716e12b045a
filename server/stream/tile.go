// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"github.com/SoftbearStudios/tilestream/server/terrain"
	"github.com/SoftbearStudios/tilestream/server/tile"
	"github.com/SoftbearStudios/tilestream/server/world"
	"github.com/cenkalti/backoff"
	"time"
)

// State of a tile's data.
type State uint8

const (
	Requested State = iota // build outstanding or waiting to retry
	Ready                  // data received
)

func (s State) String() string {
	if s == Ready {
		return "ready"
	}
	return "requested"
}

// LODMesh is the mesh slot of one level of detail.
type LODMesh struct {
	Mesh      *terrain.Mesh
	Requested bool // stays true once received
	Received  bool
	Failed    bool
}

// Tile is the runtime record of one active tile. It is owned by the Streamer
// and must only be read on the goroutine that drives it.
type Tile struct {
	Coord       world.TileCoord
	Bounds      world.AABB
	Data        *tile.Data // nil until Ready
	LOD         int        // index into the LOD table, -1 for none
	Meshes      []LODMesh
	ColliderSet bool
	Visible     bool
	Err         error // last build error

	building bool // a build is outstanding
	retryAt  time.Time
	backoff  *backoff.ExponentialBackOff
}

func (t *Tile) State() State {
	if t.Data != nil {
		return Ready
	}
	return Requested
}

// Mesh is the mesh currently in use, if any.
func (t *Tile) Mesh() *terrain.Mesh {
	if t.LOD < 0 {
		return nil
	}
	return t.Meshes[t.LOD].Mesh
}
