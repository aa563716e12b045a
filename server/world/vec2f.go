// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

import (
	"github.com/chewxy/math32"
	"math"
)

// Vec2f is a point or direction on the ground plane.
// Y is the horizontal axis perpendicular to X, not elevation.
type Vec2f struct {
	X float32 `json:"x" yaml:"x"`
	Y float32 `json:"y" yaml:"y"`
}

func (vec Vec2f) Mul(factor float32) Vec2f {
	vec.X *= factor
	vec.Y *= factor
	return vec
}

func (vec Vec2f) AddScaled(otherVec Vec2f, factor float32) Vec2f {
	vec.X += otherVec.X * factor
	vec.Y += otherVec.Y * factor
	return vec
}

func (vec Vec2f) Add(otherVec Vec2f) Vec2f {
	vec.X += otherVec.X
	vec.Y += otherVec.Y
	return vec
}

func (vec Vec2f) Sub(otherVec Vec2f) Vec2f {
	vec.X -= otherVec.X
	vec.Y -= otherVec.Y
	return vec
}

func (vec Vec2f) DistanceSquared(otherVec Vec2f) float32 {
	return vec.Sub(otherVec).LengthSquared()
}

func (vec Vec2f) LengthSquared() float32 {
	return vec.X*vec.X + vec.Y*vec.Y
}

func (vec Vec2f) Abs() Vec2f {
	vec.X = math32.Abs(vec.X)
	vec.Y = math32.Abs(vec.Y)
	return vec
}

func (vec Vec2f) Floor() Vec2f {
	// math.Floor has an assembly implementation, math32's doesn't
	vec.X = float32(math.Floor(float64(vec.X)))
	vec.Y = float32(math.Floor(float64(vec.Y)))
	return vec
}

// Vec3 lifts a ground plane point to 3D with the given elevation.
func (vec Vec2f) Vec3(elevation float32) Vec3f {
	return Vec3f{X: vec.X, Y: elevation, Z: vec.Y}
}

func Lerp(a, b, factor float32) float32 {
	return a + (b-a)*factor
}

// InverseLerp returns where value lies between a and b, 0 if a == b.
func InverseLerp(a, b, value float32) float32 {
	if a == b {
		return 0
	}
	return (value - a) / (b - a)
}
