// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package placement

import (
	"github.com/SoftbearStudios/tilestream/server/config"
	"github.com/SoftbearStudios/tilestream/server/terrain"
	"github.com/SoftbearStudios/tilestream/server/world"
	"github.com/chewxy/math32"
	"testing"
)

func testContext(coord world.TileCoord) PlaceContext {
	tile := config.TileConfig{NumVertsPerLine: fieldSize, MeshScale: 2}
	biomes := terrain.NewBiomeInfo(fieldSize, fieldSize, 1)
	for i := range biomes.Strength {
		biomes.Strength[i] = 1
	}
	values := make([]float32, fieldSize*fieldSize)
	for i := range values {
		values[i] = 0.5
	}
	return PlaceContext{
		Grid:        terrain.GridFor(tile, 99, coord),
		Center:      coord.Center(tile.WorldSize()),
		MeshScale:   tile.MeshScale,
		HeightScale: 10,
		Heights:     terrain.NewHeightField(fieldSize, fieldSize, values),
		Biomes:      biomes,
	}
}

var testObject = config.ObjectConfig{
	PrefabSet: 3,
	MinRadius: 3,
	MaxRadius: 6,
	RadiusNoise: config.NoiseConfig{
		Scale:       20,
		Octaves:     2,
		Persistence: 0.5,
		Lacunarity:  2,
	},
	Attempts:  DefaultAttempts,
	MaxSlope:  1,
	MaxHeight: 1,
	MinScale:  0.5,
	MaxScale:  1.5,
}

func TestPlace(t *testing.T) {
	coord := world.TileCoord{X: -2, Y: 5}
	ctx := testContext(coord)
	spawns := Place(ctx, testObject, 0)
	if len(spawns) == 0 {
		t.Fatal("expected spawns")
	}

	bounds := coord.Bounds(config.TileConfig{NumVertsPerLine: fieldSize, MeshScale: 2}.WorldSize())
	// One extra sample of border on each side.
	bounds = world.AABBAround(bounds.Center(), bounds.Width+4, bounds.Height+4)

	for i, s := range spawns {
		if s.PrefabSet != testObject.PrefabSet {
			t.Errorf("spawn %d: wrong prefab set %d", i, s.PrefabSet)
		}
		if !bounds.ContainsPoint(s.Position.Ground()) {
			t.Errorf("spawn %d: %v outside tile %v", i, s.Position, bounds)
		}
		if math32.Abs(s.Position.Y-5) > 1e-4 {
			t.Errorf("spawn %d: expected elevation 5, got %f", i, s.Position.Y)
		}
		if s.Scale < testObject.MinScale || s.Scale > testObject.MaxScale {
			t.Errorf("spawn %d: scale %f out of range", i, s.Scale)
		}
		if s.Yaw < -world.Pi || s.Yaw >= world.Pi {
			t.Errorf("spawn %d: yaw %s out of range", i, s.Yaw)
		}
	}

	again := Place(testContext(coord), testObject, 0)
	if len(again) != len(spawns) {
		t.Fatalf("not deterministic: %d vs %d spawns", len(spawns), len(again))
	}
	for i := range spawns {
		if spawns[i] != again[i] {
			t.Fatalf("spawn %d differs", i)
		}
	}

	other := Place(ctx, testObject, 1)
	if len(other) == len(spawns) && other[1] == spawns[1] {
		t.Error("object index should change the placement")
	}
}

func TestPlace_RespectsBiome(t *testing.T) {
	ctx := testContext(world.TileCoord{})
	for i := range ctx.Biomes.Strength {
		ctx.Biomes.Strength[i] = 0
	}
	if spawns := Place(ctx, testObject, 0); len(spawns) != 0 {
		t.Errorf("expected no spawns without biome strength, got %d", len(spawns))
	}
}

func TestObjectSeed(t *testing.T) {
	a := ObjectSeed(1, world.TileCoord{X: 1, Y: 2}, 0)
	if a != ObjectSeed(1, world.TileCoord{X: 1, Y: 2}, 0) {
		t.Error("not stable")
	}
	seen := map[int64]bool{a: true}
	for _, s := range []int64{
		ObjectSeed(2, world.TileCoord{X: 1, Y: 2}, 0),
		ObjectSeed(1, world.TileCoord{X: 2, Y: 1}, 0),
		ObjectSeed(1, world.TileCoord{X: 1, Y: 2}, 1),
	} {
		if seen[s] {
			t.Errorf("seed collision %d", s)
		}
		seen[s] = true
	}
}

func TestRadiusField_SharedBorders(t *testing.T) {
	const step = fieldSize - 3
	tests := []struct {
		a, b   world.TileCoord
		dx, dy int
	}{
		{world.TileCoord{X: -1, Y: 0}, world.TileCoord{X: 0, Y: 0}, step, 0},
		{world.TileCoord{X: 4, Y: -3}, world.TileCoord{X: 4, Y: -2}, 0, step},
	}
	for _, test := range tests {
		a := radiusField(testContext(test.a), testObject, 1)
		b := radiusField(testContext(test.b), testObject, 1)
		if a.Min < 0 || a.Max > 1 || b.Min < 0 || b.Max > 1 {
			t.Fatalf("%s/%s: range [%f, %f] / [%f, %f]", test.a, test.b, a.Min, a.Max, b.Min, b.Max)
		}
		for y := 0; y+test.dy < fieldSize; y++ {
			for x := 0; x+test.dx < fieldSize; x++ {
				if va, vb := a.At(x+test.dx, y+test.dy), b.At(x, y); va != vb {
					t.Fatalf("%s/%s: (%d, %d) differs: %f vs %f", test.a, test.b, x, y, va, vb)
				}
			}
		}
	}
}
