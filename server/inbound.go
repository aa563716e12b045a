// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"github.com/SoftbearStudios/tilestream/server/world"
	"math"
)

// Make sure to register in init function
type (
	// Observe moves the observer that tiles are streamed around.
	Observe struct {
		Position world.Vec2f `json:"position"`
	}

	// RequestTile asks for a TileSnapshot of one tile.
	RequestTile struct {
		Coord world.TileCoord `json:"coord"`
	}

	// InvalidInbound means invalid message type from client (possibly out of date).
	// NOTE: Do not register, otherwise client could send type "invalidInbound"
	InvalidInbound struct {
		messageType messageType
	}
)

func init() {
	registerInbound(
		Observe{},
		RequestTile{},
	)
}

func (data Observe) Inbound(h *Hub, _ Client) {
	if !finite(data.Position.X) || !finite(data.Position.Y) {
		h.logger.Printf("ignoring observer at %v", data.Position)
		return
	}
	h.observe(data.Position)
}

func (data RequestTile) Inbound(h *Hub, client Client) {
	t := h.streamer.Tile(data.Coord)
	if t == nil || t.Data == nil {
		client.Send(&TileSnapshot{Coord: data.Coord})
		return
	}
	client.Send(NewTileSnapshot(t.Data))
}

func (data InvalidInbound) Inbound(h *Hub, _ Client) {
	h.logger.Printf("invalid message type %q", data.messageType)
}

func finite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}
