// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package placement

import (
	"github.com/SoftbearStudios/tilestream/server/world"
	"github.com/chewxy/math32"
)

// grid buckets accepted points for neighbour queries. Radii vary per point, so
// a cell may hold more than one point.
type grid struct {
	cells    [][]int32 // indices into the point slice
	width    int
	height   int
	cellSize float32
}

func newGrid(domain world.Vec2f, cellSize float32) *grid {
	width := int(math32.Ceil(domain.X/cellSize)) + 1
	height := int(math32.Ceil(domain.Y/cellSize)) + 1
	return &grid{
		cells:    make([][]int32, width*height),
		width:    width,
		height:   height,
		cellSize: cellSize,
	}
}

// cellOf returns the cell containing p, clamped into the grid.
func (g *grid) cellOf(p world.Vec2f) (x, y int) {
	x = world.ClampInt(int(p.X/g.cellSize), 0, g.width-1)
	y = world.ClampInt(int(p.Y/g.cellSize), 0, g.height-1)
	return
}

func (g *grid) insert(p world.Vec2f, index int) {
	x, y := g.cellOf(p)
	i := x + y*g.width
	g.cells[i] = append(g.cells[i], int32(index))
}

// clear reports whether no point in the 3x3 cells around p is closer than radius.
func (g *grid) clear(p world.Vec2f, radius float32, points []world.Vec2f) bool {
	cx, cy := g.cellOf(p)
	r2 := radius * radius

	for y := cy - 1; y <= cy+1; y++ {
		if y < 0 || y >= g.height {
			continue
		}
		for x := cx - 1; x <= cx+1; x++ {
			if x < 0 || x >= g.width {
				continue
			}
			for _, index := range g.cells[x+y*g.width] {
				if points[index].DistanceSquared(p) < r2 {
					return false
				}
			}
		}
	}
	return true
}
