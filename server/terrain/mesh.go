// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

import "github.com/SoftbearStudios/tilestream/server/world"

// Mesh is a triangle mesh of one tile at one level of detail. Vertices are
// local to the tile centre.
type Mesh struct {
	LOD             int
	VerticesPerLine int
	Vertices        []world.Vec3f
	Normals         []world.Vec3f
	UVs             []world.Vec2f
	Triangles       []uint32
}

func (m *Mesh) TriangleCount() int {
	return len(m.Triangles) / 3
}
