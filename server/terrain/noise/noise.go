// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package noise synthesizes seeded fractal noise fields and normalizes them.
// Every function is pure; the only randomness comes from the seed argument.
package noise

import (
	"fmt"
	"github.com/SoftbearStudios/tilestream/server/config"
	"github.com/SoftbearStudios/tilestream/server/terrain"
	"github.com/SoftbearStudios/tilestream/server/world"
	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
	"math"
	"math/rand"
	"runtime"
	"sync"
)

// Kind selects the elementary noise function.
type Kind = config.NoiseKind

const (
	Perlin  = config.Perlin
	Simplex = config.Simplex
)

// Fields smaller than this are generated on the calling goroutine.
const parallelCells = 64 * 64

// source is an elementary 2D noise function. Implementations are read only
// after construction, so rows can share one.
type source interface {
	eval(x, y float64) float64
}

type perlinSource struct {
	p *perlin.Perlin
}

// perlinPeriod is the period of go-perlin's permutation table. It offsets
// inputs by 0x1000 and truncates, so inputs below -0x1000 break its lattice.
const perlinPeriod = 256

func (s perlinSource) eval(x, y float64) float64 {
	return s.p.Noise2D(wrapPerlin(x), wrapPerlin(y))
}

// wrapPerlin maps x into [0, perlinPeriod), where the lattice is the same.
func wrapPerlin(x float64) float64 {
	x -= perlinPeriod * math.Floor(x/perlinPeriod)
	// Rounding of tiny negative x may land on the upper bound.
	if x >= perlinPeriod {
		x = 0
	}
	return x
}

type simplexSource struct {
	n opensimplex.Noise
}

func (s simplexSource) eval(x, y float64) float64 {
	return s.n.Eval2(x, y)
}

func newSource(kind Kind, seed int64) source {
	switch kind {
	case Perlin:
		// One octave, the fractal sum is done by Generate.
		return perlinSource{p: perlin.NewPerlin(2, 2, 1, seed)}
	case Simplex:
		return simplexSource{n: opensimplex.New(seed)}
	default:
		panic(fmt.Sprintf("unknown noise kind %q", kind))
	}
}

type octaveOffset struct {
	x, y float64
}

// Generate returns a width x height fractal noise field centred on centre.
// The same arguments always produce a bit identical field.
func Generate(width, height int, settings config.NoiseConfig, centre world.Vec2f, kind Kind, seed int64) *terrain.HeightField {
	return generate(width, height, settings, centre, kind, seed, runtime.GOMAXPROCS(0))
}

func generate(width, height int, settings config.NoiseConfig, centre world.Vec2f, kind Kind, seed int64, workers int) *terrain.HeightField {
	settings = settings.Sanitized()
	src := newSource(kind, seed)

	prng := rand.New(rand.NewSource(seed))
	offsets := make([]octaveOffset, settings.Octaves)
	for i := range offsets {
		offsets[i].x = float64(prng.Intn(200000)-100000) + float64(settings.Offset.X) + float64(centre.X)
		offsets[i].y = float64(prng.Intn(200000)-100000) + float64(settings.Offset.Y) + float64(centre.Y)
	}

	k := kernel{
		src:         src,
		offsets:     offsets,
		width:       width,
		halfWidth:   float64(width) / 2,
		halfHeight:  float64(height) / 2,
		scale:       float64(settings.Scale),
		persistence: float64(settings.Persistence),
		lacunarity:  float64(settings.Lacunarity),
	}
	values := make([]float32, width*height)

	if workers > height {
		workers = height
	}
	if workers <= 1 || width*height < parallelCells {
		for y := 0; y < height; y++ {
			k.row(values, y)
		}
		return terrain.NewHeightField(width, height, values)
	}

	// Each worker owns the rows congruent to its index, so no two goroutines
	// write the same slice elements.
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(first int) {
			defer wg.Done()
			for y := first; y < height; y += workers {
				k.row(values, y)
			}
		}(w)
	}
	wg.Wait()

	return terrain.NewHeightField(width, height, values)
}

// kernel is the read only state of the inner (x, y, octave) loop.
type kernel struct {
	src                     source
	offsets                 []octaveOffset
	width                   int
	halfWidth, halfHeight   float64
	scale                   float64
	persistence, lacunarity float64
}

func (k *kernel) row(values []float32, y int) {
	row := values[y*k.width : (y+1)*k.width]
	for x := range row {
		amplitude := 1.0
		frequency := 1.0
		noiseHeight := 0.0

		for _, off := range k.offsets {
			sampleX := (float64(x) - k.halfWidth + off.x) / k.scale * frequency
			sampleY := (float64(y) - k.halfHeight + off.y) / k.scale * frequency

			noiseHeight += k.src.eval(sampleX, sampleY) * amplitude

			amplitude *= k.persistence
			frequency *= k.lacunarity
		}

		row[x] = float32(noiseHeight)
	}
}

// MaxPossibleHeight is the sum of all octave amplitudes.
func MaxPossibleHeight(settings config.NoiseConfig) float32 {
	settings = settings.Sanitized()
	sum := 0.0
	for i := 0; i < settings.Octaves; i++ {
		sum += math.Pow(float64(settings.Persistence), float64(i))
	}
	return float32(sum)
}
