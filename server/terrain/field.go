// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

import (
	"github.com/chewxy/math32"
	"math"
)

// HeightField is a row major grid of heights. It is never modified after
// construction; transformations return new fields.
type HeightField struct {
	Width  int
	Height int
	Values []float32
	Min    float32 // observed minimum
	Max    float32 // observed maximum
}

// NewHeightField takes ownership of values, which must have width*height entries.
func NewHeightField(width, height int, values []float32) *HeightField {
	if len(values) != width*height {
		panic("height field size mismatch")
	}
	f := &HeightField{Width: width, Height: height, Values: values}
	if len(values) > 0 {
		f.Min, f.Max = math.MaxFloat32, -math.MaxFloat32
		for _, v := range values {
			if v < f.Min {
				f.Min = v
			}
			if v > f.Max {
				f.Max = v
			}
		}
	}
	return f
}

// Map returns a new field with fn applied to every value.
func (f *HeightField) Map(fn func(v float32) float32) *HeightField {
	values := make([]float32, len(f.Values))
	for i, v := range f.Values {
		values[i] = fn(v)
	}
	return NewHeightField(f.Width, f.Height, values)
}

func (f *HeightField) Index(x, y int) int {
	return x + y*f.Width
}

func (f *HeightField) At(x, y int) float32 {
	return f.Values[x+y*f.Width]
}

// AtClamped clamps x and y into the field.
func (f *HeightField) AtClamped(x, y int) float32 {
	return f.At(clampInt(x, 0, f.Width-1), clampInt(y, 0, f.Height-1))
}

// Bilinear returns the interpolated height and its gradient at fractional
// cell coordinates.
func (f *HeightField) Bilinear(x, y float32) (height, gx, gy float32) {
	cx := int(math32.Floor(x))
	cy := int(math32.Floor(y))
	u := x - float32(cx)
	v := y - float32(cy)

	h00 := f.AtClamped(cx, cy)
	h10 := f.AtClamped(cx+1, cy)
	h01 := f.AtClamped(cx, cy+1)
	h11 := f.AtClamped(cx+1, cy+1)

	gx = (h10-h00)*(1-v) + (h11-h01)*v
	gy = (h01-h00)*(1-u) + (h11-h10)*u
	height = h00*(1-u)*(1-v) + h10*u*(1-v) + h01*(1-u)*v + h11*u*v
	return
}

// Slope is the gradient magnitude at fractional cell coordinates.
func (f *HeightField) Slope(x, y float32) float32 {
	_, gx, gy := f.Bilinear(x, y)
	return math32.Hypot(gx, gy)
}

// BiomeInfo stores per cell biome strengths. Strengths are influence weights
// and do not necessarily sum to one.
type BiomeInfo struct {
	Width      int
	Height     int
	BiomeCount int
	Index      []uint8   // dominant biome per cell
	Strength   []float32 // cell*BiomeCount + biome
}

func NewBiomeInfo(width, height, biomeCount int) *BiomeInfo {
	return &BiomeInfo{
		Width:      width,
		Height:     height,
		BiomeCount: biomeCount,
		Index:      make([]uint8, width*height),
		Strength:   make([]float32, width*height*biomeCount),
	}
}

// StrengthAt returns 0 outside the grid.
func (b *BiomeInfo) StrengthAt(x, y, biome int) float32 {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height || biome < 0 || biome >= b.BiomeCount {
		return 0
	}
	return b.Strength[(x+y*b.Width)*b.BiomeCount+biome]
}

func (b *BiomeInfo) IndexAt(x, y int) int {
	return int(b.Index[x+y*b.Width])
}

// RoadStrengthMap is 0 where there is no road.
type RoadStrengthMap struct {
	Width  int
	Height int
	Values []float32
}

func NewRoadStrengthMap(width, height int) *RoadStrengthMap {
	return &RoadStrengthMap{Width: width, Height: height, Values: make([]float32, width*height)}
}

// At returns 0 outside the map.
func (r *RoadStrengthMap) At(x, y int) float32 {
	if r == nil || x < 0 || y < 0 || x >= r.Width || y >= r.Height {
		return 0
	}
	return r.Values[x+y*r.Width]
}

// Any reports whether at least one cell is a road.
func (r *RoadStrengthMap) Any() bool {
	if r == nil {
		return false
	}
	for _, v := range r.Values {
		if v != 0 {
			return true
		}
	}
	return false
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
