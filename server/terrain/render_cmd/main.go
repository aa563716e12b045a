// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"flag"
	"fmt"
	"github.com/SoftbearStudios/tilestream/server/config"
	"github.com/SoftbearStudios/tilestream/server/terrain"
	"github.com/SoftbearStudios/tilestream/server/terrain/biome"
	"github.com/SoftbearStudios/tilestream/server/terrain/road"
	"github.com/SoftbearStudios/tilestream/server/tile"
	"github.com/SoftbearStudios/tilestream/server/worker"
	"github.com/SoftbearStudios/tilestream/server/world"
	"image"
	"image/draw"
	"image/png"
	"log"
	"os"
	"runtime/pprof"
)

func main() {
	var (
		cpuProfile string
		configPath string
		out        string
		x, y       int
		radius     int
	)
	flag.StringVar(&cpuProfile, "cpuprofile", "", "write cpu profile to `file`")
	flag.StringVar(&configPath, "config", "", "yaml or json config file (defaults if empty)")
	flag.StringVar(&out, "out", "out.png", "output png")
	flag.IntVar(&x, "x", 0, "center tile x")
	flag.IntVar(&y, "y", 0, "center tile y")
	flag.IntVar(&radius, "radius", 2, "tiles around the center to render")
	flag.Parse()

	if cpuProfile != "" {
		f, err := os.Create(cpuProfile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close() // error handling omitted for example
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	img, err := run(cfg, world.TileCoord{X: int32(x), Y: int32(y)}, int32(radius))
	if err != nil {
		log.Fatal(err)
	}

	file, err := os.Create(out)
	if err != nil {
		log.Fatal(err)
	}
	defer file.Close()

	if err = png.Encode(file, img); err != nil {
		log.Fatal(err)
	}
}

// run builds every tile within radius of center on a worker pool and
// stitches their previews, +Y up.
func run(cfg *config.Config, center world.TileCoord, radius int32) (image.Image, error) {
	pipeline := tile.NewPipeline(cfg, biome.New(cfg.World, cfg.Biomes), road.New(cfg.Roads, cfg.Biomes))
	pool := worker.New(cfg.Server.Workers, 64)
	defer pool.Close()

	// Border vertices are skipped and the shared edge is drawn once.
	n := cfg.Tile.NumVertsPerLine - 3
	side := int(radius*2+1) * n
	img := image.NewRGBA(image.Rect(0, 0, side, side))

	var firstErr error
	total := 0
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			coord := center.Add(dx, dy)
			total++
			pool.Submit(func() (interface{}, error) {
				return pipeline.Build(context.Background(), coord)
			}, func(result interface{}, err error) {
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
					return
				}
				data := result.(*tile.Data)
				preview := terrain.Render(data.Heights, data.Roads)
				h := preview.Bounds().Dy()
				dst := image.Rect(0, 0, n, n).Add(image.Pt(
					int(coord.X-center.X+radius)*n,
					int(center.Y-coord.Y+radius)*n,
				))
				draw.Draw(img, dst, preview, image.Pt(1, h-1-n), draw.Src)
			})
		}
	}

	for i := 0; i < total; i++ {
		c := <-pool.Completions()
		c.Run()
	}

	if firstErr != nil {
		return nil, firstErr
	}
	fmt.Printf("rendered %d tiles (%dx%d px)\n", total, side, side)
	return img, nil
}
