// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package placement

import (
	"github.com/SoftbearStudios/tilestream/server/config"
	"github.com/SoftbearStudios/tilestream/server/terrain"
	"github.com/SoftbearStudios/tilestream/server/terrain/noise"
	"github.com/SoftbearStudios/tilestream/server/world"
	"github.com/chewxy/math32"
	"math/rand"
)

// Salts separating the random streams of one object type.
const (
	filterSalt = 0x6a09e667f3bcc908
	yawSalt    = 0x3c6ef372fe94f82b
	radiusSalt = 0x510e527fade682d1
)

// Spawn describes one object to instantiate.
type Spawn struct {
	PrefabSet int         `json:"prefabSet"`
	Position  world.Vec3f `json:"position"`
	Yaw       world.Angle `json:"yaw"`
	Scale     float32     `json:"scale"`
}

// PlaceContext is the finished terrain of one tile.
type PlaceContext struct {
	Grid        terrain.SampleGrid
	Center      world.Vec2f // world position of the tile centre
	MeshScale   float32
	HeightScale float32
	Heights     *terrain.HeightField
	Biomes      *terrain.BiomeInfo
	Roads       *terrain.RoadStrengthMap // may be nil
}

// WorldPosition converts a tile local sample position to world space.
func (ctx *PlaceContext) WorldPosition(local world.Vec2f) world.Vec2f {
	half := float32(ctx.Grid.Size-1) * 0.5
	return ctx.Center.Add(local.Sub(world.Vec2f{X: half, Y: half}).Mul(ctx.MeshScale))
}

// Place scatters one object type over a tile. index is the object's position
// in the configuration and separates its random streams from other types.
func Place(ctx PlaceContext, object config.ObjectConfig, index int) []Spawn {
	heights := ctx.Heights
	seed := ObjectSeed(ctx.Grid.Seed, ctx.Grid.Coord, index)

	radiusNoise := radiusField(ctx, object, index)

	domain := world.Vec2f{X: float32(heights.Width - 1), Y: float32(heights.Height - 1)}
	points := SamplePoints(domain, object.MinRadius/ctx.MeshScale, object.MaxRadius/ctx.MeshScale,
		NoiseRadiusField(radiusNoise), object.Attempts, seed)

	points = FilterBiome(points, ctx.Biomes, object.Biome, rand.New(rand.NewSource(terrain.Mix(seed, filterSalt))))
	points = FilterSlope(points, heights, object.MinSlope, object.MaxSlope)
	points = FilterHeight(points, heights, object.MinHeight, object.MaxHeight)
	if object.AvoidRoads {
		points = FilterRoads(points, ctx.Roads)
	}

	if len(points) == 0 {
		return nil
	}

	yawRng := rand.New(rand.NewSource(terrain.Mix(seed, yawSalt)))
	spawns := make([]Spawn, len(points))
	for i, p := range points {
		h, _, _ := heights.Bilinear(p.X, p.Y)
		spawns[i] = Spawn{
			PrefabSet: object.PrefabSet,
			Position:  ctx.WorldPosition(p).Vec3(h * ctx.HeightScale),
			Yaw:       world.ToAngle(yawRng.Float32() * 2 * math32.Pi),
			Scale:     world.Lerp(object.MinScale, object.MaxScale, yawRng.Float32()),
		}
	}
	return spawns
}

// ObjectSeed derives the seed of one object type on one tile.
func ObjectSeed(worldSeed int64, coord world.TileCoord, index int) int64 {
	return terrain.Mix(worldSeed, coord.Hash()+uint64(index)*0x9e3779b97f4a7c15)
}

// radiusField is the object's density noise over the tile in [0, 1]. Its seed
// ignores the tile and its range is fixed, so adjacent tiles agree on their
// shared border.
func radiusField(ctx PlaceContext, object config.ObjectConfig, index int) *terrain.HeightField {
	field := noise.Generate(ctx.Heights.Width, ctx.Heights.Height, object.RadiusNoise,
		ctx.Grid.Centre, noise.Perlin, terrain.Mix(ctx.Grid.Seed, radiusSalt+uint64(index)))
	return noise.NormalizeTheoretical(field, object.RadiusNoise).Map(func(v float32) float32 {
		return world.Clamp(v*0.5+0.5, 0, 1)
	})
}
