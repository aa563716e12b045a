// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config holds every tunable of tile generation and streaming.
// Files are YAML (.yaml, .yml) or JSON (.json).
package config

import (
	"errors"
	"fmt"
	"github.com/SoftbearStudios/tilestream/server/world"
	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config is the root of the configuration tree.
type Config struct {
	Server  ServerConfig   `json:"server" yaml:"server"`
	World   WorldConfig    `json:"world" yaml:"world"`
	Tile    TileConfig     `json:"tile" yaml:"tile"`
	Stream  StreamConfig   `json:"stream" yaml:"stream"`
	Roads   RoadConfig     `json:"roads" yaml:"roads"`
	Biomes  []BiomeConfig  `json:"biomes" yaml:"biomes"`
	Objects []ObjectConfig `json:"objects" yaml:"objects"`
}

type ServerConfig struct {
	Port           int      `json:"port" yaml:"port"`
	MaxConnections int      `json:"maxConnections" yaml:"maxConnections"`
	Workers        int      `json:"workers" yaml:"workers"`           // 0 means GOMAXPROCS
	UpdatePeriod   Duration `json:"updatePeriod" yaml:"updatePeriod"` // hub tick
	DebugPeriod    Duration `json:"debugPeriod" yaml:"debugPeriod"`
	StatusLog      string   `json:"statusLog" yaml:"statusLog"` // optional csv file
}

type WorldConfig struct {
	Seed          int64         `json:"seed" yaml:"seed"`
	NormalizeMode NormalizeMode `json:"normalizeMode" yaml:"normalizeMode"`
	HeightScale   float32       `json:"heightScale" yaml:"heightScale"`
	Falloff       bool          `json:"falloff" yaml:"falloff"`
	BiomeNoise    NoiseConfig   `json:"biomeNoise" yaml:"biomeNoise"`
}

type TileConfig struct {
	NumVertsPerLine int     `json:"numVertsPerLine" yaml:"numVertsPerLine"`
	MeshScale       float32 `json:"meshScale" yaml:"meshScale"`
}

// WorldSize is the side length of one tile in world units. The outermost
// ring of vertices only feeds normals, so it is excluded.
func (t TileConfig) WorldSize() float32 {
	return float32(t.NumVertsPerLine-3) * t.MeshScale
}

type LODConfig struct {
	LOD                 int     `json:"lod" yaml:"lod"` // mesh simplification level
	VisibleDstThreshold float32 `json:"visibleDstThreshold" yaml:"visibleDstThreshold"`
}

type StreamConfig struct {
	LODs                 []LODConfig `json:"lods" yaml:"lods"`
	ColliderLOD          int         `json:"colliderLod" yaml:"colliderLod"` // index into LODs
	ColliderNearDistance float32     `json:"colliderNearDistance" yaml:"colliderNearDistance"`
	MoveThreshold        float32     `json:"moveThreshold" yaml:"moveThreshold"`
	RetryInitial         Duration    `json:"retryInitial" yaml:"retryInitial"`
	RetryMax             Duration    `json:"retryMax" yaml:"retryMax"`
}

// MaxViewDistance is the threshold of the coarsest LOD.
func (s StreamConfig) MaxViewDistance() float32 {
	if len(s.LODs) == 0 {
		return 0
	}
	return s.LODs[len(s.LODs)-1].VisibleDstThreshold
}

type RoadConfig struct {
	Enabled  bool        `json:"enabled" yaml:"enabled"`
	Noise    NoiseConfig `json:"noise" yaml:"noise"`
	Kind     NoiseKind   `json:"kind" yaml:"kind"`
	Width    float32     `json:"width" yaml:"width"`       // contour half width in normalized noise units
	MaxSlope float32     `json:"maxSlope" yaml:"maxSlope"` // no roads on steeper cells
}

// CurveKey is one keyframe of a piecewise linear height curve.
type CurveKey struct {
	Time  float32 `json:"time" yaml:"time"`
	Value float32 `json:"value" yaml:"value"`
}

type BiomeConfig struct {
	Name             string      `json:"name" yaml:"name"`
	Center           float32     `json:"center" yaml:"center"` // position on the biome noise axis, [0, 1]
	Blend            float32     `json:"blend" yaml:"blend"`
	Noise            NoiseConfig `json:"noise" yaml:"noise"`
	Kind             NoiseKind   `json:"kind" yaml:"kind"`
	HeightMultiplier float32     `json:"heightMultiplier" yaml:"heightMultiplier"`
	HeightCurve      []CurveKey  `json:"heightCurve" yaml:"heightCurve"`
	Roads            bool        `json:"roads" yaml:"roads"`
}

type ObjectConfig struct {
	Name        string      `json:"name" yaml:"name"`
	PrefabSet   int         `json:"prefabSet" yaml:"prefabSet"`
	Biome       int         `json:"biome" yaml:"biome"`
	MinRadius   float32     `json:"minRadius" yaml:"minRadius"`
	MaxRadius   float32     `json:"maxRadius" yaml:"maxRadius"`
	RadiusNoise NoiseConfig `json:"radiusNoise" yaml:"radiusNoise"`
	Attempts    int         `json:"attempts" yaml:"attempts"`
	MinSlope    float32     `json:"minSlope" yaml:"minSlope"`
	MaxSlope    float32     `json:"maxSlope" yaml:"maxSlope"`
	MinHeight   float32     `json:"minHeight" yaml:"minHeight"`
	MaxHeight   float32     `json:"maxHeight" yaml:"maxHeight"`
	MinScale    float32     `json:"minScale" yaml:"minScale"`
	MaxScale    float32     `json:"maxScale" yaml:"maxScale"`
	AvoidRoads  bool        `json:"avoidRoads" yaml:"avoidRoads"`
}

// NoiseConfig are the octave settings of one fractal noise field.
type NoiseConfig struct {
	Scale       float32     `json:"scale" yaml:"scale"`
	Octaves     int         `json:"octaves" yaml:"octaves"`
	Persistence float32     `json:"persistence" yaml:"persistence"`
	Lacunarity  float32     `json:"lacunarity" yaml:"lacunarity"`
	Offset      world.Vec2f `json:"offset" yaml:"offset"`
}

// Sanitized clamps settings into the range the noise generator accepts.
func (n NoiseConfig) Sanitized() NoiseConfig {
	if n.Scale < 0.01 {
		n.Scale = 0.01
	}
	if n.Octaves < 1 {
		n.Octaves = 1
	}
	if n.Lacunarity < 1 {
		n.Lacunarity = 1
	}
	if n.Persistence < 0 {
		n.Persistence = 0
	} else if n.Persistence > 1 {
		n.Persistence = 1
	}
	return n
}

// NoiseKind selects the elementary noise function.
type NoiseKind string

const (
	Perlin  NoiseKind = "perlin"
	Simplex NoiseKind = "simplex"
)

func (k NoiseKind) valid() bool {
	return k == Perlin || k == Simplex
}

// NormalizeMode selects how a fractal noise field is rescaled.
type NormalizeMode string

const (
	NormalizeNone        NormalizeMode = "none"
	NormalizeTheoretical NormalizeMode = "theoretical"
	NormalizeGraph       NormalizeMode = "graph"
	NormalizeLocal       NormalizeMode = "local"
)

func (m NormalizeMode) valid() bool {
	switch m {
	case NormalizeNone, NormalizeTheoretical, NormalizeGraph, NormalizeLocal:
		return true
	}
	return false
}

// Load reads configuration from a file if provided. An empty path returns defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.decode(path, data); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration, choosing the encoding by file extension.
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) decode(path string, data []byte) error {
	if isYAML(path) {
		return yaml.Unmarshal(data, c)
	}
	return json.Unmarshal(data, c)
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func Default() *Config {
	flatCurve := []CurveKey{{Time: 0, Value: 0}, {Time: 1, Value: 1}}
	return &Config{
		Server: ServerConfig{
			Port:           8192,
			MaxConnections: 256,
			UpdatePeriod:   Duration(100 * time.Millisecond),
			DebugPeriod:    Duration(time.Minute),
		},
		World: WorldConfig{
			Seed:          1337,
			NormalizeMode: NormalizeGraph,
			HeightScale:   40,
			BiomeNoise: NoiseConfig{
				Scale:       400,
				Octaves:     2,
				Persistence: 0.5,
				Lacunarity:  2,
			},
		},
		Tile: TileConfig{
			NumVertsPerLine: 101,
			MeshScale:       2,
		},
		Stream: StreamConfig{
			LODs: []LODConfig{
				{LOD: 0, VisibleDstThreshold: 100},
				{LOD: 1, VisibleDstThreshold: 200},
				{LOD: 3, VisibleDstThreshold: 400},
			},
			ColliderLOD:          0,
			ColliderNearDistance: 5,
			MoveThreshold:        25,
			RetryInitial:         Duration(250 * time.Millisecond),
			RetryMax:             Duration(30 * time.Second),
		},
		Roads: RoadConfig{
			Enabled: true,
			Noise: NoiseConfig{
				Scale:       300,
				Octaves:     2,
				Persistence: 0.4,
				Lacunarity:  2,
			},
			Kind:     Simplex,
			Width:    0.03,
			MaxSlope: 0.5,
		},
		Biomes: []BiomeConfig{
			{
				Name:   "plains",
				Center: 0.25,
				Blend:  0.35,
				Noise: NoiseConfig{
					Scale:       120,
					Octaves:     4,
					Persistence: 0.5,
					Lacunarity:  2,
				},
				Kind:             Perlin,
				HeightMultiplier: 0.4,
				HeightCurve:      flatCurve,
				Roads:            true,
			},
			{
				Name:   "mountains",
				Center: 0.75,
				Blend:  0.35,
				Noise: NoiseConfig{
					Scale:       80,
					Octaves:     5,
					Persistence: 0.5,
					Lacunarity:  2.1,
				},
				Kind:             Simplex,
				HeightMultiplier: 1,
				HeightCurve: []CurveKey{
					{Time: 0, Value: 0},
					{Time: 0.4, Value: 0.1},
					{Time: 1, Value: 1},
				},
			},
		},
		Objects: []ObjectConfig{
			{
				Name:      "tree",
				PrefabSet: 0,
				Biome:     0,
				MinRadius: 3,
				MaxRadius: 8,
				RadiusNoise: NoiseConfig{
					Scale:       30,
					Octaves:     2,
					Persistence: 0.5,
					Lacunarity:  2,
				},
				Attempts:   20,
				MinSlope:   0,
				MaxSlope:   0.3,
				MinHeight:  0.05,
				MaxHeight:  0.8,
				MinScale:   0.8,
				MaxScale:   1.3,
				AvoidRoads: true,
			},
			{
				Name:      "rock",
				PrefabSet: 1,
				Biome:     1,
				MinRadius: 6,
				MaxRadius: 12,
				RadiusNoise: NoiseConfig{
					Scale:       50,
					Octaves:     1,
					Persistence: 0.5,
					Lacunarity:  2,
				},
				Attempts:   20,
				MinSlope:   0,
				MaxSlope:   1,
				MinHeight:  0,
				MaxHeight:  1,
				MinScale:   0.5,
				MaxScale:   2,
				AvoidRoads: true,
			},
		},
	}
}

func (c *Config) Validate() error {
	if c.Server.Port > 65535 {
		return errors.New("server.port must be <= 65535")
	}
	if c.Server.MaxConnections <= 0 {
		return errors.New("server.maxConnections must be positive")
	}
	if c.Server.Workers < 0 {
		return errors.New("server.workers cannot be negative")
	}
	if c.Server.UpdatePeriod <= 0 {
		return errors.New("server.updatePeriod must be positive")
	}
	if c.Server.DebugPeriod <= 0 {
		return errors.New("server.debugPeriod must be positive")
	}
	if !c.World.NormalizeMode.valid() {
		return fmt.Errorf("world.normalizeMode %q is unknown", c.World.NormalizeMode)
	}
	if c.World.HeightScale <= 0 {
		return errors.New("world.heightScale must be positive")
	}
	if c.Tile.NumVertsPerLine < 4 {
		return errors.New("tile.numVertsPerLine must be >= 4")
	}
	if c.Tile.MeshScale <= 0 {
		return errors.New("tile.meshScale must be positive")
	}
	if err := c.Stream.validate(); err != nil {
		return err
	}
	if c.Roads.Enabled {
		if !c.Roads.Kind.valid() {
			return fmt.Errorf("roads.kind %q is unknown", c.Roads.Kind)
		}
		if c.Roads.Width <= 0 {
			return errors.New("roads.width must be positive")
		}
	}
	if len(c.Biomes) == 0 {
		return errors.New("biomes must not be empty")
	}
	for i, b := range c.Biomes {
		if !b.Kind.valid() {
			return fmt.Errorf("biomes[%d].kind %q is unknown", i, b.Kind)
		}
		if b.Blend <= 0 {
			return fmt.Errorf("biomes[%d].blend must be positive", i)
		}
		for j := 1; j < len(b.HeightCurve); j++ {
			if b.HeightCurve[j].Time < b.HeightCurve[j-1].Time {
				return fmt.Errorf("biomes[%d].heightCurve must be sorted by time", i)
			}
		}
	}
	for i, o := range c.Objects {
		if o.Biome < 0 || o.Biome >= len(c.Biomes) {
			return fmt.Errorf("objects[%d].biome out of range", i)
		}
		if o.MinRadius <= 0 || o.MaxRadius < o.MinRadius {
			return fmt.Errorf("objects[%d] needs 0 < minRadius <= maxRadius", i)
		}
		if o.Attempts <= 0 {
			return fmt.Errorf("objects[%d].attempts must be positive", i)
		}
		if o.MaxSlope < o.MinSlope {
			return fmt.Errorf("objects[%d].maxSlope must be >= minSlope", i)
		}
		if o.MaxHeight < o.MinHeight {
			return fmt.Errorf("objects[%d].maxHeight must be >= minHeight", i)
		}
		if o.MaxScale < o.MinScale {
			return fmt.Errorf("objects[%d].maxScale must be >= minScale", i)
		}
	}
	return nil
}

func (s *StreamConfig) validate() error {
	if len(s.LODs) == 0 {
		return errors.New("stream.lods must not be empty")
	}
	for i, lod := range s.LODs {
		if lod.LOD < 0 {
			return fmt.Errorf("stream.lods[%d].lod cannot be negative", i)
		}
		if lod.VisibleDstThreshold <= 0 {
			return fmt.Errorf("stream.lods[%d].visibleDstThreshold must be positive", i)
		}
		if i > 0 && lod.VisibleDstThreshold <= s.LODs[i-1].VisibleDstThreshold {
			return errors.New("stream.lods thresholds must be increasing")
		}
	}
	if s.ColliderLOD < 0 || s.ColliderLOD >= len(s.LODs) {
		return errors.New("stream.colliderLod out of range")
	}
	if s.ColliderNearDistance < 0 {
		return errors.New("stream.colliderNearDistance cannot be negative")
	}
	if s.MoveThreshold < 0 {
		return errors.New("stream.moveThreshold cannot be negative")
	}
	if s.RetryInitial <= 0 {
		return errors.New("stream.retryInitial must be positive")
	}
	if s.RetryMax < s.RetryInitial {
		return errors.New("stream.retryMax must be >= retryInitial")
	}
	return nil
}
