// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

import (
	"fmt"
	"github.com/SoftbearStudios/tilestream/server/world"
	"image"
	"image/color"
)

// Height bands in normalized height, used for previews.
const (
	WaterLevel = 0.05
	SandLevel  = WaterLevel + 0.03
	GrassLevel = SandLevel + 0.37
	RockLevel  = GrassLevel + 0.3
)

type ColorVec [3]float32

var colors = [...]ColorVec{
	RGB(0, 50, 115),
	RGB(0, 75, 130),
	RGB(194, 178, 128),
	RGB(90, 180, 30),
	RGB(105, 110, 115),
	Gray(220),
}

var roadColor = RGB(120, 90, 60)

// Render draws a normalized height field with roads on top. Roads may be nil.
// Row 0 of the field is the bottom of the image.
func Render(heights *HeightField, roads *RoadStrengthMap) image.Image {
	width := heights.Width
	height := heights.Height
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for j := 0; j < height; j++ {
		for i := 0; i < width; i++ {
			var c ColorVec

			h := heights.At(i, j)
			switch {
			case h <= WaterLevel:
				c = colors[0].Lerp(colors[1], clamp(h/WaterLevel))
			case h <= SandLevel:
				c = colors[2]
			case h <= GrassLevel:
				c = colors[2].Lerp(colors[3], clamp((h-SandLevel)*20))
			case h <= RockLevel:
				c = colors[3].Lerp(colors[4], clamp((h-GrassLevel)*10))
			default:
				c = colors[4].Lerp(colors[5], clamp((h-RockLevel)*7))
			}

			if r := roads.At(i, j); r >= 1 {
				c = roadColor
			} else if r > 0 {
				c = c.Lerp(roadColor, r)
			}

			img.Set(i, height-1-j, c.Color())
		}
	}

	return img
}

func Gray(v byte) ColorVec {
	return RGB(v, v, v)
}

func RGB(r, g, b byte) ColorVec {
	const factor = 1.0 / 255
	return ColorVec{float32(r) * factor, float32(g) * factor, float32(b) * factor}
}

func (vec ColorVec) String() string {
	return fmt.Sprintf("vec4(%.3f, %.3f, %.3f, 1.0)", vec[0], vec[1], vec[2])
}

func (vec ColorVec) Lerp(other ColorVec, factor float32) ColorVec {
	for i := range vec {
		vec[i] = world.Lerp(vec[i], other[i], factor)
	}
	return vec
}

func (vec ColorVec) Color() color.RGBA {
	return color.RGBA{R: floatToByte(vec[0]), G: floatToByte(vec[1]), B: floatToByte(vec[2]), A: 255}
}

func clamp(f float32) float32 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func floatToByte(f float32) byte {
	if f < 0 {
		return 0
	}
	if f > 1.0 {
		return 255
	}
	return byte(f * 255)
}
