// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package noise

import (
	"github.com/SoftbearStudios/tilestream/server/config"
	"github.com/SoftbearStudios/tilestream/server/terrain"
	"github.com/SoftbearStudios/tilestream/server/world"
)

// Normalize rescales field according to mode. Unknown modes and
// config.NormalizeNone return field as is.
func Normalize(field *terrain.HeightField, mode config.NormalizeMode, settings config.NoiseConfig, maxHeight float32) *terrain.HeightField {
	switch mode {
	case config.NormalizeTheoretical:
		return NormalizeTheoretical(field, settings)
	case config.NormalizeGraph:
		return NormalizeGraphRelative(field, maxHeight)
	case config.NormalizeLocal:
		return NormalizeLocal(field)
	default:
		return field
	}
}

// NormalizeTheoretical divides by the largest height the octaves can sum to.
func NormalizeTheoretical(field *terrain.HeightField, settings config.NoiseConfig) *terrain.HeightField {
	inv := 1 / MaxPossibleHeight(settings)
	return field.Map(func(v float32) float32 {
		return v * inv
	})
}

// NormalizeGraphRelative divides by maxHeight and clamps below at 0. There is
// no upper clamp. A non positive maxHeight yields zeros.
func NormalizeGraphRelative(field *terrain.HeightField, maxHeight float32) *terrain.HeightField {
	if maxHeight <= 0 {
		return zeros(field)
	}
	inv := 1 / maxHeight
	return field.Map(func(v float32) float32 {
		v *= inv
		if v < 0 {
			return 0
		}
		return v
	})
}

// NormalizeLocal maps the observed range onto [0, 1]. A flat field yields zeros.
func NormalizeLocal(field *terrain.HeightField) *terrain.HeightField {
	lo, hi := field.Min, field.Max
	if hi <= lo {
		return zeros(field)
	}
	return field.Map(func(v float32) float32 {
		return world.InverseLerp(lo, hi, v)
	})
}

func zeros(field *terrain.HeightField) *terrain.HeightField {
	return terrain.NewHeightField(field.Width, field.Height, make([]float32, len(field.Values)))
}
