// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream keeps the set of tiles around a moving observer generated,
// meshed at a distance appropriate level of detail, and collidable up close.
//
// A Streamer is not safe for concurrent use. Builds and meshes run on an
// Executor, whose completion callbacks must be invoked on the goroutine that
// drives the Streamer (see worker.Pool).
package stream

import (
	"context"
	"github.com/SoftbearStudios/tilestream/server/config"
	"github.com/SoftbearStudios/tilestream/server/terrain"
	"github.com/SoftbearStudios/tilestream/server/tile"
	"github.com/SoftbearStudios/tilestream/server/world"
	"github.com/cenkalti/backoff"
	"time"
)

// Builder produces tile data. It is called from executor goroutines.
type Builder interface {
	Build(ctx context.Context, coord world.TileCoord) (*tile.Data, error)
}

// Executor runs job off the calling goroutine and later calls done with its
// result on the goroutine driving the Streamer. Submit must not block.
type Executor interface {
	Submit(job func() (interface{}, error), done func(interface{}, error))
}

type Options struct {
	Config   config.StreamConfig
	TileSize float32
	Builder  Builder
	Mesher   terrain.Mesher
	Executor Executor
	Now      func() time.Time // defaults to time.Now
}

type Streamer struct {
	config     config.StreamConfig
	tileSize   float32
	maxViewDst float32
	radius     int32
	builder    Builder
	mesher     terrain.Mesher
	executor   Executor
	now        func() time.Time

	tiles   map[world.TileCoord]*Tile
	order   []*Tile // creation order, for deterministic event order
	visible int
	events  []Event

	observer   world.Vec2f
	lastUpdate world.Vec2f
	updated    bool
}

func New(opts Options) *Streamer {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	maxViewDst := opts.Config.MaxViewDistance()
	return &Streamer{
		config:     opts.Config,
		tileSize:   opts.TileSize,
		maxViewDst: maxViewDst,
		radius:     candidateRadius(maxViewDst, opts.TileSize),
		builder:    opts.Builder,
		mesher:     opts.Mesher,
		executor:   opts.Executor,
		now:        opts.Now,
		tiles:      make(map[world.TileCoord]*Tile),
	}
}

// Observe is called every frame with the observer's position. Colliders are
// always refreshed, the candidate set only once the observer has moved more
// than the move threshold since the last Update.
func (s *Streamer) Observe(position world.Vec2f) {
	s.UpdateColliders(position)
	s.retryFailed()

	threshold := s.config.MoveThreshold
	if !s.updated || s.lastUpdate.DistanceSquared(position) > threshold*threshold {
		s.Update(position)
	}
}

// Update recomputes the candidate set around position. Tiles outside of it
// are evicted, new ones are requested and existing ones have their LOD and
// visibility refreshed.
func (s *Streamer) Update(position world.Vec2f) {
	s.observer = position
	s.lastUpdate = position
	s.updated = true

	center := world.TileCoordOf(position, s.tileSize)
	r := s.radius

	kept := s.order[:0]
	for _, t := range s.order {
		if abs32(t.Coord.X-center.X) > r || abs32(t.Coord.Y-center.Y) > r {
			s.evict(t)
			continue
		}
		kept = append(kept, t)
	}
	for i := len(kept); i < len(s.order); i++ {
		s.order[i] = nil
	}
	s.order = kept

	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			coord := center.Add(dx, dy)
			t, ok := s.tiles[coord]
			if !ok {
				t = s.newTile(coord)
				s.requestData(t)
				continue
			}
			if t.Data == nil {
				s.retry(t)
				continue
			}
			s.evaluate(t)
		}
	}
}

// UpdateColliders requests collision meshes for tiles within the collider
// LOD's threshold and commits them once the observer is near enough.
func (s *Streamer) UpdateColliders(position world.Vec2f) {
	s.observer = position
	for _, t := range s.order {
		s.updateCollider(t)
	}
}

// Drain returns the events since the last call, in order.
func (s *Streamer) Drain() []Event {
	events := s.events
	s.events = nil
	return events
}

// Tile returns the active tile at coord, or nil.
func (s *Streamer) Tile(coord world.TileCoord) *Tile {
	return s.tiles[coord]
}

// ForTiles calls fn for every active tile in creation order.
func (s *Streamer) ForTiles(fn func(t *Tile)) {
	for _, t := range s.order {
		fn(t)
	}
}

func (s *Streamer) Len() int {
	return len(s.tiles)
}

func (s *Streamer) VisibleCount() int {
	return s.visible
}

func (s *Streamer) Observer() world.Vec2f {
	return s.observer
}

func (s *Streamer) TileSize() float32 {
	return s.tileSize
}

func (s *Streamer) emit(event Event) {
	s.events = append(s.events, event)
}

func (s *Streamer) newTile(coord world.TileCoord) *Tile {
	t := &Tile{
		Coord:  coord,
		Bounds: coord.Bounds(s.tileSize),
		LOD:    -1,
		Meshes: make([]LODMesh, len(s.config.LODs)),
	}
	s.tiles[coord] = t
	s.order = append(s.order, t)
	return t
}

// evict removes t from the map. The caller removes it from order.
func (s *Streamer) evict(t *Tile) {
	delete(s.tiles, t.Coord)
	if t.Visible {
		t.Visible = false
		s.visible--
		s.emit(VisibilityChanged{Coord: t.Coord})
	}
	s.emit(TileEvicted{Coord: t.Coord})
}

// current reports whether t is still the active record for its coord.
// Completions for evicted or replaced records are dropped.
func (s *Streamer) current(t *Tile) bool {
	return s.tiles[t.Coord] == t
}

func (s *Streamer) requestData(t *Tile) {
	t.building = true
	coord := t.Coord
	builder := s.builder
	s.executor.Submit(func() (interface{}, error) {
		return builder.Build(context.Background(), coord)
	}, func(result interface{}, err error) {
		s.onData(t, result, err)
	})
}

func (s *Streamer) onData(t *Tile, result interface{}, err error) {
	if !s.current(t) {
		return
	}
	t.building = false

	if err != nil {
		if t.backoff == nil {
			t.backoff = s.newBackoff()
		}
		delay := t.backoff.NextBackOff()
		t.Err = err
		t.retryAt = s.now().Add(delay)
		s.emit(TileFailed{Coord: t.Coord, LOD: -1, Err: err, RetryIn: delay})
		return
	}

	t.Data = result.(*tile.Data)
	t.Err = nil
	t.backoff = nil
	s.emit(TileReady{Coord: t.Coord, Data: t.Data})
	s.evaluate(t)
	s.updateCollider(t)
}

func (s *Streamer) newBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Duration(s.config.RetryInitial)
	b.MaxInterval = time.Duration(s.config.RetryMax)
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// retry rebuilds a failed tile once its deadline has passed.
func (s *Streamer) retry(t *Tile) {
	if t.Data != nil || t.building || t.Err == nil {
		return
	}
	if s.now().Before(t.retryAt) {
		return
	}
	s.requestData(t)
}

func (s *Streamer) retryFailed() {
	for _, t := range s.order {
		s.retry(t)
	}
}

// evaluate refreshes the LOD and visibility of a ready tile.
func (s *Streamer) evaluate(t *Tile) {
	if t.Data == nil {
		return
	}

	distance := sqrt(t.Bounds.DistanceSquared(s.observer))
	visible := distance <= s.maxViewDst

	if visible {
		lod := lodFor(s.config.LODs, distance)
		if lod != t.LOD {
			slot := &t.Meshes[lod]
			if slot.Received {
				t.LOD = lod
				s.emit(LODChanged{Coord: t.Coord, LOD: lod, Mesh: slot.Mesh})
			} else if !slot.Requested {
				s.requestMesh(t, lod)
			}
		}
	}

	if visible != t.Visible {
		t.Visible = visible
		if visible {
			s.visible++
		} else {
			s.visible--
		}
		s.emit(VisibilityChanged{Coord: t.Coord, Visible: visible})
	}
}

func (s *Streamer) requestMesh(t *Tile, lod int) {
	t.Meshes[lod].Requested = true
	heights := t.Data.Heights
	level := s.config.LODs[lod].LOD
	mesher := s.mesher
	s.executor.Submit(func() (interface{}, error) {
		return mesher.Generate(heights, level)
	}, func(result interface{}, err error) {
		s.onMesh(t, lod, result, err)
	})
}

func (s *Streamer) onMesh(t *Tile, lod int, result interface{}, err error) {
	if !s.current(t) {
		return
	}

	slot := &t.Meshes[lod]
	if err != nil {
		// Meshing is deterministic, so it is not retried.
		slot.Failed = true
		s.emit(TileFailed{Coord: t.Coord, LOD: lod, Err: err})
		return
	}

	slot.Mesh = result.(*terrain.Mesh)
	slot.Received = true
	s.evaluate(t)
	if lod == s.config.ColliderLOD {
		s.updateCollider(t)
	}
}

func (s *Streamer) updateCollider(t *Tile) {
	if t.ColliderSet || t.Data == nil {
		return
	}

	sqrDst := t.Bounds.DistanceSquared(s.observer)
	lod := s.config.ColliderLOD
	slot := &t.Meshes[lod]

	threshold := s.config.LODs[lod].VisibleDstThreshold
	if sqrDst < threshold*threshold && !slot.Requested {
		s.requestMesh(t, lod)
	}

	near := s.config.ColliderNearDistance
	if sqrDst < near*near && slot.Received {
		t.ColliderSet = true
		s.emit(ColliderSet{Coord: t.Coord, Mesh: slot.Mesh})
	}
}
