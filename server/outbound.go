// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"github.com/SoftbearStudios/tilestream/server/placement"
	"github.com/SoftbearStudios/tilestream/server/stream"
	"github.com/SoftbearStudios/tilestream/server/terrain"
	"github.com/SoftbearStudios/tilestream/server/terrain/compressed"
	"github.com/SoftbearStudios/tilestream/server/tile"
	"github.com/SoftbearStudios/tilestream/server/world"
	"sync"
	"time"
)

type (
	// TileEvent is a stream.Event as seen by viewers.
	TileEvent struct {
		Type    string          `json:"type"`
		Coord   world.TileCoord `json:"coord"`
		LOD     int             `json:"lod"`
		Visible bool            `json:"visible,omitempty"`
		Spawns  int             `json:"spawns,omitempty"`
		Error   string          `json:"error,omitempty"`
		RetryIn int64           `json:"retryIn,omitempty"` // milliseconds
	}

	// TileEvents is a batch of events along with the streamer's totals.
	TileEvents struct {
		Events   []TileEvent `json:"events"`
		Observer world.Vec2f `json:"observer"`
		Tiles    int         `json:"tiles"`
		Visible  int         `json:"visible"`
		Objects  int         `json:"objects"`
	}

	// TileSnapshot is the generated data of one tile. Terrain is nil if the tile
	// isn't ready.
	TileSnapshot struct {
		Coord     world.TileCoord   `json:"coord"`
		Terrain   *terrain.Data     `json:"terrain,omitempty"`
		Roads     bool              `json:"roads,omitempty"`
		MaxHeight float32           `json:"maxHeight,omitempty"`
		Spawns    []placement.Spawn `json:"spawns,omitempty"`
	}
)

func init() {
	registerOutbound(
		&TileEvents{},
		&TileSnapshot{},
	)
}

const poolEventsCap = 32

var tileEventsPool = sync.Pool{
	New: func() interface{} {
		return &TileEvents{
			Events: make([]TileEvent, 0, poolEventsCap),
		}
	},
}

func NewTileEvents() *TileEvents {
	return tileEventsPool.Get().(*TileEvents)
}

// Pool Uses pointers for reuse in pool
func (events *TileEvents) Pool() {
	for i := range events.Events {
		events.Events[i] = TileEvent{}
	}
	*events = TileEvents{Events: events.Events[:0]}
	tileEventsPool.Put(events)
}

// NewTileSnapshot encodes data for a viewer.
func NewTileSnapshot(data *tile.Data) *TileSnapshot {
	return &TileSnapshot{
		Coord:     data.Coord,
		Terrain:   compressed.Encode(data.Heights, data.Bounds),
		Roads:     data.Roads.Any(),
		MaxHeight: data.MaxHeight,
		Spawns:    data.Spawns,
	}
}

// Pool returns the encoded terrain. Spawns belong to the tile and are kept.
func (snapshot *TileSnapshot) Pool() {
	if snapshot.Terrain != nil {
		snapshot.Terrain.Pool()
		snapshot.Terrain = nil
	}
}

func tileEvent(event stream.Event) TileEvent {
	out := TileEvent{Coord: event.TileCoord(), LOD: -1}
	switch e := event.(type) {
	case stream.TileReady:
		out.Type = "tileReady"
		out.Spawns = len(e.Data.Spawns)
	case stream.TileFailed:
		out.Type = "tileFailed"
		out.LOD = e.LOD
		out.Error = e.Err.Error()
		out.RetryIn = int64(e.RetryIn / time.Millisecond)
	case stream.LODChanged:
		out.Type = "lodChanged"
		out.LOD = e.LOD
	case stream.ColliderSet:
		out.Type = "colliderSet"
	case stream.VisibilityChanged:
		out.Type = "visibilityChanged"
		out.Visible = e.Visible
	case stream.TileEvicted:
		out.Type = "tileEvicted"
	}
	return out
}
