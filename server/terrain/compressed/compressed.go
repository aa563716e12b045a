// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package compressed encodes tile heights compactly for viewers.
package compressed

import (
	"errors"
	"github.com/SoftbearStudios/tilestream/server/terrain"
	"github.com/SoftbearStudios/tilestream/server/world"
	"io"
)

// Encode quantizes a normalized height field to 4 bits per sample and run
// length encodes it. Heights above 1 saturate.
// The result should be returned with Data.Pool once sent.
func Encode(heights *terrain.HeightField, bounds world.AABB) *terrain.Data {
	data := terrain.NewData()
	buffer := Buffer{
		buf: data.Data,
	}
	buffer.Grow(len(heights.Values))

	for _, h := range heights.Values {
		buffer.writeByte(quantize(h))
	}

	data.AABB = bounds
	data.Data = buffer.Buffer()
	data.Stride = heights.Width
	data.Length = len(heights.Values)
	return data
}

// Decode returns one byte per sample. data is not modified.
func Decode(data *terrain.Data) ([]byte, error) {
	var buffer Buffer
	buffer.Reset(data.Data)

	raw := make([]byte, data.Length)
	n, err := io.ReadFull(&buffer, raw)
	if err != nil {
		return nil, err
	}
	if n != data.Length {
		return nil, errors.New("compressed: short data")
	}
	return raw, nil
}

// Height converts a decoded byte back to normalized height.
func Height(b byte) float32 {
	return float32(b) * (1.0 / 255)
}

// HeightAt interpolates decoded samples at a world position inside data's bounds.
func HeightAt(data *terrain.Data, raw []byte, pos world.Vec2f) float32 {
	width := data.Stride
	height := data.Length / width
	if width < 2 || height < 2 {
		return 0
	}

	local := pos.Sub(data.Vec2f)
	fx := clamp(local.X/data.Width, 0, 1) * float32(width-1)
	fy := clamp(local.Y/data.Height, 0, 1) * float32(height-1)

	x := minInt(int(fx), width-2)
	y := minInt(int(fy), height-2)

	i := x + y*width
	return Height(blerp(raw[i], raw[i+1], raw[i+width], raw[i+width+1], fx-float32(x), fy-float32(y)))
}

func quantize(h float32) byte {
	return roundByte(clampToByte(h * 255))
}
