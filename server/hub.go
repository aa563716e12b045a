// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"github.com/SoftbearStudios/tilestream/server/config"
	"github.com/SoftbearStudios/tilestream/server/scenery"
	"github.com/SoftbearStudios/tilestream/server/stream"
	"github.com/SoftbearStudios/tilestream/server/terrain/biome"
	"github.com/SoftbearStudios/tilestream/server/terrain/mesh"
	"github.com/SoftbearStudios/tilestream/server/terrain/road"
	"github.com/SoftbearStudios/tilestream/server/tile"
	"github.com/SoftbearStudios/tilestream/server/worker"
	"github.com/SoftbearStudios/tilestream/server/world"
	"log"
	"os"
	"sync/atomic"
	"time"
)

type HubOptions struct {
	Config *config.Config // must be valid
	Cloud  Cloud          // defaults to Offline
	Logger *log.Logger    // defaults to stderr with a "tilestream " prefix
}

// Hub owns the streamer and the scenery and relays tile events to viewers.
// Everything but the worker pool runs on the goroutine calling Run.
type Hub struct {
	config *config.Config
	logger *log.Logger

	// Streaming state
	pool     *worker.Pool
	pipeline *tile.Pipeline
	streamer *stream.Streamer
	scenery  *scenery.World
	observer world.Vec2f
	observed bool // observer was set at least once
	clients  ClientList

	// Cloud (and things that are served atomically by HTTP)
	cloud      Cloud
	statusJSON atomic.Value
	previewPNG atomic.Value

	// funcBenches are benchmarks of core Hub functions.
	funcBenches []funcBench

	// Inbound channels
	inbound    chan SignedInbound
	register   chan Client
	unregister chan Client

	// Timer based events
	updateTicker *time.Ticker
	debugTicker  *time.Ticker
	cloudTicker  *time.Ticker
}

func NewHub(options HubOptions) *Hub {
	cfg := options.Config
	if options.Cloud == nil {
		options.Cloud = Offline{}
	}
	if options.Logger == nil {
		options.Logger = log.New(log.Writer(), "tilestream ", log.LstdFlags|log.Lmicroseconds)
	}

	pool := worker.New(cfg.Server.Workers, 64)
	pipeline := tile.NewPipeline(cfg, biome.New(cfg.World, cfg.Biomes), road.New(cfg.Roads, cfg.Biomes))
	streamer := stream.New(stream.Options{
		Config:   cfg.Stream,
		TileSize: pipeline.TileSize(),
		Builder:  pipeline,
		Mesher:   &mesh.Generator{MeshScale: cfg.Tile.MeshScale, HeightScale: cfg.World.HeightScale},
		Executor: pool,
	})

	return &Hub{
		config:       cfg,
		logger:       options.Logger,
		pool:         pool,
		pipeline:     pipeline,
		streamer:     streamer,
		scenery:      scenery.New(scenery.DefaultSectorSize, cfg.Stream.MaxViewDistance()),
		cloud:        options.Cloud,
		inbound:      make(chan SignedInbound, 64),
		register:     make(chan Client, 8),
		unregister:   make(chan Client, 16),
		updateTicker: time.NewTicker(time.Duration(cfg.Server.UpdatePeriod)),
		debugTicker:  time.NewTicker(time.Duration(cfg.Server.DebugPeriod)),
		cloudTicker:  time.NewTicker(options.Cloud.UpdatePeriod()),
	}
}

// Run is the hub goroutine. It never returns.
func (h *Hub) Run() {
	defer func() {
		if r := recover(); r != nil {
			panic(r)
		}
		h.logger.Println("hub stopped")
		os.Exit(1)
	}()

	h.Cloud()
	completions := h.pool.Completions()

	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case in := <-h.inbound:
			// Read all messages currently in the channel
			n := len(h.inbound)

			for {
				if h.clients.Contains(in.Client) {
					in.Inbound.Inbound(h, in.Client)
				}

				if n--; n <= 0 {
					break
				}

				in = <-h.inbound
			}
		case c := <-completions:
			h.complete(c)
		case <-h.updateTicker.C:
			h.update()
		case <-h.debugTicker.C:
			h.Debug()
			h.PreviewTile()
		case <-h.cloudTicker.C:
			h.Cloud()
		}
	}
}

// Register adds a client. It may be called from any goroutine.
func (h *Hub) Register(client Client) {
	h.register <- client
}

// Unregister removes a client. It may be called from any goroutine.
func (h *Hub) Unregister(client Client) {
	h.unregister <- client
}

// ReceiveSigned queues an inbound message. It may be called from any goroutine.
func (h *Hub) ReceiveSigned(in SignedInbound) {
	h.inbound <- in
}

func (h *Hub) addClient(client Client) {
	h.clients.Add(client)
	client.Data().Hub = h
	client.Init()

	// Catch up on tiles that are already streamed.
	events := h.newTileEvents()
	h.streamer.ForTiles(func(t *stream.Tile) {
		if t.Data == nil {
			return
		}
		events.Events = append(events.Events, tileEvent(stream.TileReady{Coord: t.Coord, Data: t.Data}))
		if t.Visible {
			events.Events = append(events.Events, tileEvent(stream.VisibilityChanged{Coord: t.Coord, Visible: true}))
		}
		if t.LOD >= 0 {
			events.Events = append(events.Events, tileEvent(stream.LODChanged{Coord: t.Coord, LOD: t.LOD}))
		}
	})
	client.Send(events)
}

func (h *Hub) removeClient(client Client) {
	if !h.clients.Contains(client) {
		return
	}
	client.Close()
	h.clients.Remove(client)
}

// observe moves the observer and streams around it.
func (h *Hub) observe(position world.Vec2f) {
	h.observer = position
	h.observed = true
	h.streamer.Observe(position)
	h.flush()
}

// update is the per frame tick. It retries failed tiles even if the observer
// is still.
func (h *Hub) update() {
	if !h.observed {
		return
	}
	h.streamer.Observe(h.observer)
	h.flush()
}

// complete runs c and every other completion that is already available.
func (h *Hub) complete(c worker.Completion) {
	defer h.timeFunction("complete", time.Now())

	completions := h.pool.Completions()
	for n := len(completions); ; n-- {
		c.Run()
		if n <= 0 {
			break
		}
		c = <-completions
	}
	h.flush()
}

// flush applies the streamer's events to the scenery and relays them to every client.
func (h *Hub) flush() {
	events := h.streamer.Drain()
	if len(events) == 0 {
		return
	}

	var ready []*tile.Data
	for _, event := range events {
		switch e := event.(type) {
		case stream.TileReady:
			if _, err := h.scenery.Spawn(e.Coord, e.Data.Spawns); err != nil {
				h.logger.Printf("spawn %v: %v", e.Coord, err)
			}
			ready = append(ready, e.Data)
		case stream.TileEvicted:
			h.scenery.Despawn(e.Coord)
		case stream.TileFailed:
			if e.LOD < 0 {
				h.logger.Printf("%v, retrying in %s", e.Err, e.RetryIn)
			} else {
				h.logger.Printf("mesh %v lod %d: %v", e.Coord, e.LOD, e.Err)
			}
		}
	}

	for client := h.clients.First; client != nil; client = client.Data().Next {
		out := h.newTileEvents()
		for _, event := range events {
			out.Events = append(out.Events, tileEvent(event))
		}
		client.Send(out)

		for _, data := range ready {
			client.Send(NewTileSnapshot(data))
		}
	}
}

func (h *Hub) newTileEvents() *TileEvents {
	out := NewTileEvents()
	out.Observer = h.observer
	out.Tiles = h.streamer.Len()
	out.Visible = h.streamer.VisibleCount()
	out.Objects = h.scenery.Count()
	return out
}
