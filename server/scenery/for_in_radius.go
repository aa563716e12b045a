// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package scenery

import (
	"github.com/SoftbearStudios/tilestream/server/world"
)

// forSectorsInRadius iterates the non empty sectors touching a circle and
// returns if stopped early.
func (w *World) forSectorsInRadius(position world.Vec2f, radius float32, callback func(s *sector) (stop bool)) bool {
	if w.width == 0 {
		return false
	}
	width := w.width
	min := -int16(width / 2)
	max := int16(width/2 - 1)

	minSectorID := w.sectorIDOf(position.Sub(world.Vec2f{X: radius, Y: radius})).clampTo(min, max)
	maxSectorID := w.sectorIDOf(position.Add(world.Vec2f{X: radius, Y: radius})).clampTo(min, max)

	width2 := int(width)
	sectors := w.sectors

	// Iterate y in outer for better locality of reference
	for y := minSectorID.y; y <= maxSectorID.y; y++ {
		for x := minSectorID.x; x <= maxSectorID.x; x++ {
			id := sectorID{x: x, y: y}
			if !id.inRadius(position, radius, w.sectorSize) {
				continue
			}

			s := &sectors[int(x-min)+int(y-min)*width2]
			if len(s.objects) == 0 {
				continue
			}

			if callback(s) {
				return true
			}
		}
	}

	return false
}

// ForInRadius calls callback with every object within radius of position on
// the ground plane, along with its squared distance. Returns if stopped early.
// The World must not be modified during iteration.
func (w *World) ForInRadius(position world.Vec2f, radius float32, callback func(r2 float32, id ObjectID, object *Object) (stop bool)) bool {
	radius2 := radius * radius
	return w.forSectorsInRadius(position, radius, func(s *sector) bool {
		// Store objects in local variable so compiler knows it doesn't change
		objects := s.objects
		for i := range objects {
			o := &objects[i]

			r2 := position.DistanceSquared(o.Position.Ground())
			if r2 > radius2 {
				continue
			}

			if callback(r2, o.ObjectID, &o.Object) {
				return true
			}
		}
		return false
	})
}
