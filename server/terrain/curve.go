// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

import (
	"github.com/SoftbearStudios/tilestream/server/config"
	"github.com/SoftbearStudios/tilestream/server/world"
)

// Curve is a piecewise linear function through keyframes sorted by time.
// An empty curve is the identity.
type Curve []config.CurveKey

func (c Curve) Evaluate(t float32) float32 {
	switch {
	case len(c) == 0:
		return t
	case t <= c[0].Time:
		return c[0].Value
	case t >= c[len(c)-1].Time:
		return c[len(c)-1].Value
	}
	for i := 1; i < len(c); i++ {
		if t <= c[i].Time {
			a, b := c[i-1], c[i]
			return world.Lerp(a.Value, b.Value, world.InverseLerp(a.Time, b.Time, t))
		}
	}
	return c[len(c)-1].Value
}

// Max is the largest value the curve produces on [0, 1].
func (c Curve) Max() float32 {
	if len(c) == 0 {
		return 1
	}
	m := c.Evaluate(0)
	if v := c.Evaluate(1); v > m {
		m = v
	}
	for _, key := range c {
		if key.Time > 0 && key.Time < 1 && key.Value > m {
			m = key.Value
		}
	}
	return m
}
