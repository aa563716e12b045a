// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

import (
	"fmt"
	"github.com/chewxy/math32"
)

// Angle is a yaw about the vertical axis in radians, in [-Pi, Pi).
type Angle float32

const Pi = Angle(math32.Pi)

// ToAngle wraps radians into [-Pi, Pi).
func ToAngle(radians float32) Angle {
	const turn = 2 * math32.Pi
	r := math32.Mod(radians+math32.Pi, turn)
	if r < 0 {
		r += turn
	}
	// Rounding may land exactly on the upper bound.
	if r >= turn {
		r = 0
	}
	return Angle(r - math32.Pi)
}

func (angle Angle) Float() float32 {
	return float32(angle)
}

// Vec2f is the unit ground plane direction of angle.
func (angle Angle) Vec2f() Vec2f {
	sin, cos := math32.Sincos(float32(angle))
	return Vec2f{X: cos, Y: sin}
}

func (angle Angle) String() string {
	return fmt.Sprintf("%.01f degrees", float32(angle)*180/math32.Pi)
}
