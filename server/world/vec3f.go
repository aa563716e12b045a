// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

import "github.com/chewxy/math32"

// Vec3f is a world space position. Y is elevation.
type Vec3f struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

func (vec Vec3f) Add(otherVec Vec3f) Vec3f {
	vec.X += otherVec.X
	vec.Y += otherVec.Y
	vec.Z += otherVec.Z
	return vec
}

func (vec Vec3f) Sub(otherVec Vec3f) Vec3f {
	vec.X -= otherVec.X
	vec.Y -= otherVec.Y
	vec.Z -= otherVec.Z
	return vec
}

func (vec Vec3f) Cross(otherVec Vec3f) Vec3f {
	return Vec3f{
		X: vec.Y*otherVec.Z - vec.Z*otherVec.Y,
		Y: vec.Z*otherVec.X - vec.X*otherVec.Z,
		Z: vec.X*otherVec.Y - vec.Y*otherVec.X,
	}
}

func (vec Vec3f) Length() float32 {
	return math32.Sqrt(vec.X*vec.X + vec.Y*vec.Y + vec.Z*vec.Z)
}

// Ground drops elevation.
func (vec Vec3f) Ground() Vec2f {
	return Vec2f{X: vec.X, Y: vec.Z}
}
