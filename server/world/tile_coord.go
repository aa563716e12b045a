// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

import (
	"math"
	"strconv"
)

// TileCoord addresses a tile on the infinite tile grid. Tile (0, 0) is
// centered on the world origin.
type TileCoord struct {
	X int32 `json:"x" yaml:"x"`
	Y int32 `json:"y" yaml:"y"`
}

// TileCoordOf returns the tile containing pos for tiles of the given world size.
func TileCoordOf(pos Vec2f, tileSize float32) TileCoord {
	return TileCoord{
		X: int32(math.Round(float64(pos.X / tileSize))),
		Y: int32(math.Round(float64(pos.Y / tileSize))),
	}
}

func (coord TileCoord) Add(x, y int32) TileCoord {
	coord.X += x
	coord.Y += y
	return coord
}

// Vec2f is the coord as floats, without any tile size applied.
func (coord TileCoord) Vec2f() Vec2f {
	return Vec2f{X: float32(coord.X), Y: float32(coord.Y)}
}

// Center of the tile in world space.
func (coord TileCoord) Center(tileSize float32) Vec2f {
	return coord.Vec2f().Mul(tileSize)
}

// Bounds of the tile in world space.
func (coord TileCoord) Bounds(tileSize float32) AABB {
	return AABBAround(coord.Center(tileSize), tileSize, tileSize)
}

// Hash mixes the coord into a 64 bit value. It is stable across runs.
func (coord TileCoord) Hash() uint64 {
	h := uint64(uint32(coord.X))<<32 | uint64(uint32(coord.Y))
	// splitmix64 finalizer
	h ^= h >> 30
	h *= 0xbf58476d1ce4e5b9
	h ^= h >> 27
	h *= 0x94d049bb133111eb
	h ^= h >> 31
	return h
}

func (coord TileCoord) AppendText(buf []byte) []byte {
	buf = append(buf, '(')
	buf = strconv.AppendInt(buf, int64(coord.X), 10)
	buf = append(buf, ',', ' ')
	buf = strconv.AppendInt(buf, int64(coord.Y), 10)
	return append(buf, ')')
}

func (coord TileCoord) String() string {
	return string(coord.AppendText(make([]byte, 0, 16)))
}
