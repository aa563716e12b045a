// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package scenery stores the objects spawned on streamed tiles, partitioned
// into square sectors so they can be queried by radius.
package scenery

import (
	"errors"
	"fmt"
	"github.com/SoftbearStudios/tilestream/server/placement"
	"github.com/SoftbearStudios/tilestream/server/world"
	"math"
)

const (
	DefaultSectorSize = 500       // Meters
	maxWidth          = 1<<15 - 1 // sectors
	minSectorCap      = 4         // Capacity to start sectors with
)

// ErrOutOfRange is returned when an object lies beyond the addressable sectors.
var ErrOutOfRange = errors.New("scenery: position out of range")

type (
	// ObjectID is unique among live objects. IDs are not reused.
	ObjectID uint32

	// Object is a spawned object and the tile it belongs to.
	Object struct {
		placement.Spawn
		Parent world.TileCoord
	}

	// World holds every live object.
	World struct {
		sectors    []sector                       // sectors stores the objects in spatial partitions
		objectIDs  map[ObjectID]sectorIndex       // objectIDs stores where to find the objects
		byParent   map[world.TileCoord][]ObjectID // objects of each tile
		nextID     ObjectID
		sectorSize float32
		width      uint16 // width is cross section in sector space
		logWidth   uint8  // logWidth is log2(width)
	}

	// sector is one bucket of the World
	sector struct {
		objects []sectorObject
	}

	sectorObject struct {
		Object
		ObjectID
	}
)

// New creates a World with sectors of sectorSize meters, initially covering radius.
func New(sectorSize, radius float32) *World {
	if sectorSize <= 0 {
		sectorSize = DefaultSectorSize
	}
	w := &World{
		objectIDs:  make(map[ObjectID]sectorIndex),
		byParent:   make(map[world.TileCoord][]ObjectID),
		sectorSize: sectorSize,
	}
	if err := w.Resize(radius); err != nil {
		panic(err)
	}
	return w
}

// Count is the number of live objects.
func (w *World) Count() int {
	return len(w.objectIDs)
}

// ParentCount is the number of tiles with live objects.
func (w *World) ParentCount() int {
	return len(w.byParent)
}

// Children returns the ids of the objects spawned under parent.
func (w *World) Children(parent world.TileCoord) []ObjectID {
	return w.byParent[parent]
}

// Spawn adds spawns as children of parent, growing the world as needed.
// Spawning under a parent that already has children replaces them.
func (w *World) Spawn(parent world.TileCoord, spawns []placement.Spawn) ([]ObjectID, error) {
	w.Despawn(parent)
	if len(spawns) == 0 {
		return nil, nil
	}

	var radius float32
	for i := range spawns {
		p := spawns[i].Position.Ground().Abs()
		radius = max(radius, max(p.X, p.Y))
	}
	if err := w.Resize(radius); err != nil {
		return nil, err
	}

	ids := make([]ObjectID, len(spawns))
	for i := range spawns {
		w.nextID++
		o := &sectorObject{Object: Object{Spawn: spawns[i], Parent: parent}, ObjectID: w.nextID}
		w.setObject(o)
		ids[i] = o.ObjectID
	}
	w.byParent[parent] = ids
	return ids, nil
}

// Despawn removes every child of parent and returns how many there were.
func (w *World) Despawn(parent world.TileCoord) int {
	ids, ok := w.byParent[parent]
	if !ok {
		return 0
	}
	delete(w.byParent, parent)

	for _, id := range ids {
		index, ok := w.objectIDs[id]
		if !ok {
			continue
		}
		w.remove(index.sectorID, w.sector(index.sectorID), int(index.index))
	}
	return len(ids)
}

// ObjectByID looks up a live object. The result is a copy.
func (w *World) ObjectByID(id ObjectID) (Object, bool) {
	index, ok := w.objectIDs[id]
	if !ok {
		return Object{}, false
	}
	return w.sector(index.sectorID).objects[index.index].Object, true
}

// Debug output
func (w *World) Debug() string {
	return fmt.Sprintf("scenery: sectors: %d, objects: %d, tiles: %d", len(w.sectors), w.Count(), w.ParentCount())
}

// Resize grows the world to cover radius meters around the origin. It never shrinks.
func (w *World) Resize(radius float32) error {
	intWidth := int(radius/w.sectorSize)*2 + 2
	if radius < 0 || math.IsNaN(float64(radius)) || intWidth > maxWidth/2 {
		return fmt.Errorf("%w: radius %g", ErrOutOfRange, radius)
	}

	width := uint16(intWidth)
	if width <= w.width {
		// No resize necessary
		return nil
	}
	width = nextPowerOf2(width)

	sectors := make([]sector, int(width)*int(width))
	oldWidth := w.width
	oldLogWidth := w.logWidth

	for i, s := range w.sectors {
		if len(s.objects) == 0 {
			continue
		}
		id := sliceIndexSectorID(i, oldWidth, oldLogWidth)
		sectors[id.sliceIndex(width)] = s
	}

	w.sectors = sectors
	w.width = width
	w.logWidth = log2(width)
	return nil
}

func (w *World) sector(id sectorID) *sector {
	index := id.sliceIndex(w.width)
	if index == -1 {
		return nil
	}
	return &w.sectors[index]
}

// remove deletes an object from a sector by swapping in the last one.
func (w *World) remove(id sectorID, s *sector, index int) {
	delete(w.objectIDs, s.objects[index].ObjectID)

	end := len(s.objects) - 1
	// Move other's sectorIndex pointer
	if index != end {
		s.objects[index] = s.objects[end]
		w.objectIDs[s.objects[index].ObjectID] = sectorIndex{sectorID: id, index: int32(index)}
	}

	s.objects[end] = sectorObject{}
	s.objects = s.objects[:end]

	if len(s.objects) == 0 {
		// Delete slice if no more objects
		s.objects = nil
	} else if c := cap(s.objects) / 2; len(s.objects)+minSectorCap/2 < c {
		// Shrink to use less memory
		objects := make([]sectorObject, len(s.objects), c)
		copy(objects, s.objects)
		s.objects = objects
	}
}

// setObject adds an object to its sector and records where it went.
func (w *World) setObject(o *sectorObject) {
	id := w.sectorIDOf(o.Position.Ground())
	s := w.sector(id)

	if s.objects == nil {
		s.objects = make([]sectorObject, 0, minSectorCap)
	}
	i := len(s.objects)
	s.objects = append(s.objects, *o)

	w.objectIDs[o.ObjectID] = sectorIndex{sectorID: id, index: int32(i)}
}

func max(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
