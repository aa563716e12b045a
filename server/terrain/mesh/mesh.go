// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mesh is the reference mesher. It skips vertices according to the
// level of detail and keeps the outer ring of samples for normals only.
package mesh

import (
	"errors"
	"fmt"
	"github.com/SoftbearStudios/tilestream/server/terrain"
	"github.com/SoftbearStudios/tilestream/server/world"
)

// Generator implements terrain.Mesher.
type Generator struct {
	MeshScale   float32
	HeightScale float32
}

// Stride is the vertex step of a level of detail.
func Stride(lod int) int {
	if lod == 0 {
		return 1
	}
	return lod * 2
}

// Generate implements terrain.Mesher.Generate.
func (g *Generator) Generate(heights *terrain.HeightField, lod int) (*terrain.Mesh, error) {
	if heights.Width != heights.Height {
		return nil, errors.New("mesh: height field must be square")
	}
	if heights.Width < 4 {
		return nil, fmt.Errorf("mesh: %d vertices per line is too few", heights.Width)
	}
	if lod < 0 {
		return nil, fmt.Errorf("mesh: invalid lod %d", lod)
	}

	n := heights.Width
	indices := lineIndices(n, Stride(lod))
	line := len(indices)
	half := float32(n-1) * 0.5
	inner := float32(n - 3)

	m := &terrain.Mesh{
		LOD:             lod,
		VerticesPerLine: line,
		Vertices:        make([]world.Vec3f, 0, line*line),
		Normals:         make([]world.Vec3f, 0, line*line),
		UVs:             make([]world.Vec2f, 0, line*line),
		Triangles:       make([]uint32, 0, (line-1)*(line-1)*6),
	}

	for _, y := range indices {
		for _, x := range indices {
			m.Vertices = append(m.Vertices, world.Vec3f{
				X: (float32(x) - half) * g.MeshScale,
				Y: heights.At(x, y) * g.HeightScale,
				Z: (float32(y) - half) * g.MeshScale,
			})
			m.Normals = append(m.Normals, g.normal(heights, x, y))
			m.UVs = append(m.UVs, world.Vec2f{X: float32(x-1) / inner, Y: float32(y-1) / inner})
		}
	}

	for j := 0; j < line-1; j++ {
		for i := 0; i < line-1; i++ {
			a := uint32(i + j*line)
			b := a + 1
			c := a + uint32(line)
			d := c + 1
			m.Triangles = append(m.Triangles, a, c, d, d, b, a)
		}
	}

	return m, nil
}

// lineIndices returns the sample indices of one line of vertices, always
// including both ends of the inner range.
func lineIndices(n, stride int) []int {
	last := n - 2
	indices := make([]int, 0, (last-1)/stride+2)
	for i := 1; i < last; i += stride {
		indices = append(indices, i)
	}
	return append(indices, last)
}

// normal uses central differences, reaching into the border ring.
func (g *Generator) normal(heights *terrain.HeightField, x, y int) world.Vec3f {
	dx := (heights.AtClamped(x+1, y) - heights.AtClamped(x-1, y)) * g.HeightScale
	dz := (heights.AtClamped(x, y+1) - heights.AtClamped(x, y-1)) * g.HeightScale
	n := world.Vec3f{X: -dx, Y: 2 * g.MeshScale, Z: -dz}
	if l := n.Length(); l > 0 {
		n = world.Vec3f{X: n.X / l, Y: n.Y / l, Z: n.Z / l}
	}
	return n
}
