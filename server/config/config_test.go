// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestValidateDefaultConfig(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default configuration should be valid: %v", err)
	}
}

func TestValidateDetectsInvalidConfigurations(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "tiny tile",
			mutate:  func(cfg *Config) { cfg.Tile.NumVertsPerLine = 3 },
			wantErr: "tile.numVertsPerLine must be >= 4",
		},
		{
			name:    "zero mesh scale",
			mutate:  func(cfg *Config) { cfg.Tile.MeshScale = 0 },
			wantErr: "tile.meshScale must be positive",
		},
		{
			name:    "no lods",
			mutate:  func(cfg *Config) { cfg.Stream.LODs = nil },
			wantErr: "stream.lods must not be empty",
		},
		{
			name: "unsorted lods",
			mutate: func(cfg *Config) {
				cfg.Stream.LODs[1].VisibleDstThreshold = cfg.Stream.LODs[0].VisibleDstThreshold
			},
			wantErr: "stream.lods thresholds must be increasing",
		},
		{
			name:    "collider lod out of range",
			mutate:  func(cfg *Config) { cfg.Stream.ColliderLOD = len(cfg.Stream.LODs) },
			wantErr: "stream.colliderLod out of range",
		},
		{
			name:    "retry max below initial",
			mutate:  func(cfg *Config) { cfg.Stream.RetryMax = cfg.Stream.RetryInitial - 1 },
			wantErr: "stream.retryMax must be >= retryInitial",
		},
		{
			name:    "unknown normalize mode",
			mutate:  func(cfg *Config) { cfg.World.NormalizeMode = "cubic" },
			wantErr: `world.normalizeMode "cubic" is unknown`,
		},
		{
			name:    "unknown biome noise kind",
			mutate:  func(cfg *Config) { cfg.Biomes[0].Kind = "value" },
			wantErr: `biomes[0].kind "value" is unknown`,
		},
		{
			name:    "object biome out of range",
			mutate:  func(cfg *Config) { cfg.Objects[0].Biome = len(cfg.Biomes) },
			wantErr: "objects[0].biome out of range",
		},
		{
			name:    "object radius inverted",
			mutate:  func(cfg *Config) { cfg.Objects[1].MaxRadius = cfg.Objects[1].MinRadius / 2 },
			wantErr: "objects[1] needs 0 < minRadius <= maxRadius",
		},
		{
			name:    "negative workers",
			mutate:  func(cfg *Config) { cfg.Server.Workers = -1 },
			wantErr: "server.workers cannot be negative",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error %q, got nil", tt.wantErr)
			}
			if err.Error() != tt.wantErr {
				t.Fatalf("expected error %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, name := range []string{"tilestream.yaml", "tilestream.json"} {
		name := name
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			want := Default()
			want.World.Seed = 42
			want.Stream.RetryInitial = Duration(time.Second)

			if err := want.Save(path); err != nil {
				t.Fatalf("save: %v", err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if !reflect.DeepEqual(want, got) {
				t.Fatalf("round trip mismatch:\nwant %+v\ngot  %+v", want, got)
			}
		})
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yml")
	const doc = `
world:
  seed: 7
stream:
  retryInitial: 2s
  retryMax: 1m
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.World.Seed != 7 {
		t.Errorf("expected seed 7, got %d", cfg.World.Seed)
	}
	if cfg.Stream.RetryInitial.Duration() != 2*time.Second {
		t.Errorf("expected 2s retry, got %s", cfg.Stream.RetryInitial)
	}
	if cfg.Tile.NumVertsPerLine != Default().Tile.NumVertsPerLine {
		t.Errorf("unset keys should keep defaults")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"tile":{"numVertsPerLine":2}}`), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil || !strings.HasPrefix(err.Error(), "validate config: ") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDurationJSON(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{`"250ms"`, 250 * time.Millisecond},
		{`""`, 0},
		{`null`, 0},
		{`1000`, time.Microsecond},
	}
	for _, tt := range tests {
		var d Duration
		if err := d.UnmarshalJSON([]byte(tt.in)); err != nil {
			t.Errorf("%s: %v", tt.in, err)
			continue
		}
		if d.Duration() != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.in, tt.want, d)
		}
	}

	var d Duration
	if err := d.UnmarshalJSON([]byte(`"soon"`)); err == nil {
		t.Error("expected parse error")
	}
}

func TestNoiseConfigSanitized(t *testing.T) {
	got := NoiseConfig{Scale: 0, Octaves: 0, Persistence: 2, Lacunarity: 0.5}.Sanitized()
	want := NoiseConfig{Scale: 0.01, Octaves: 1, Persistence: 1, Lacunarity: 1}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestTileWorldSize(t *testing.T) {
	tile := TileConfig{NumVertsPerLine: 101, MeshScale: 2}
	if size := tile.WorldSize(); size != 196 {
		t.Fatalf("expected 196, got %f", size)
	}
}
