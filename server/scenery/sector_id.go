// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package scenery

import (
	"github.com/SoftbearStudios/tilestream/server/world"
	"github.com/chewxy/math32"
	"math/bits"
)

type (
	// sectorID is a unique identifier of a sector by is position in the World
	sectorID struct {
		x, y int16
	}

	// sectorIndex is a pointer to where a sectorObject is stored
	sectorIndex struct {
		sectorID
		index int32 // use int32 so sectorIndex can be 8 bytes instead of 16
	}
)

// clampTo limits both axes to [lo, hi].
func (id sectorID) clampTo(lo, hi int16) sectorID {
	if id.x < lo {
		id.x = lo
	} else if id.x > hi {
		id.x = hi
	}
	if id.y < lo {
		id.y = lo
	} else if id.y > hi {
		id.y = hi
	}
	return id
}

func (id sectorID) inRadius(position world.Vec2f, radius, size float32) bool {
	half := size / 2
	distance := world.Vec2f{
		X: math32.Abs(float32(id.x)*size + half - position.X),
		Y: math32.Abs(float32(id.y)*size + half - position.Y),
	}

	if distance.X > half+radius || distance.Y > half+radius {
		return false
	}

	if distance.X <= half || distance.Y <= half {
		return true
	}

	cornerDistance := world.Vec2f{X: distance.X - half, Y: distance.Y - half}.LengthSquared()
	return cornerDistance < radius*radius
}

func (id sectorID) sliceIndex(width uint16) int {
	min := -int16(width / 2)
	max := int16(width / 2)

	if id.x < min || id.x >= max || id.y < min || id.y >= max {
		return -1
	}

	x := int(id.x - min)
	y := int(id.y - min)

	return x + y*int(width)
}

// sliceIndexSectorID returns a sectorID from a slice index.
// width must be a power of 2.
func sliceIndexSectorID(index int, width uint16, logWidth uint8) sectorID {
	return sectorID{x: int16(int(uint16(index)&(width-1)) - int(width/2)), y: int16((index >> logWidth) - int(width/2))}
}

func (w *World) sectorIDOf(vec world.Vec2f) sectorID {
	s := vec.Mul(1.0 / w.sectorSize).Floor()
	return sectorID{x: int16(s.X), y: int16(s.Y)}
}

// nextPowerOf2 returns the next power of 2 after or equal to n.
func nextPowerOf2(n uint16) uint16 {
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	return n + 1
}

func log2(n uint16) uint8 {
	return uint8(bits.Len16(n - 1))
}
