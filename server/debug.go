// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"bytes"
	"fmt"
	"github.com/SoftbearStudios/tilestream/server/stream"
	"github.com/SoftbearStudios/tilestream/server/terrain"
	"image/png"
	"runtime"
	"strings"
	"time"
)

// Debug logs streaming statistics and appends them to the status log, if any.
func (h *Hub) Debug() {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	status := h.status()

	h.logger.Printf("debug %s memstats: %dM/%dM", status.Cloud, stats.HeapInuse/1e6, stats.NextGC/1e6)
	h.logger.Printf(" - viewers: %d, observer: %v", status.Viewers, status.Observer)
	h.logger.Printf(" - tiles: %d, visible: %d, pending jobs: %d", status.Tiles, status.Visible, status.Pending)
	h.logger.Printf(" - %s", h.scenery.Debug())

	// Function benchmarks
	var totalDuration time.Duration
	var benches strings.Builder
	for i := range h.funcBenches {
		bench := &h.funcBenches[i]

		duration := bench.reset()
		totalDuration += duration

		fmt.Fprint(&benches, bench.name, ": ", duration, ", ")
	}
	h.logger.Printf(" - %stotal: %s", benches.String(), totalDuration)

	if h.config.Server.StatusLog == "" {
		return
	}
	err := AppendLog(h.config.Server.StatusLog, []interface{}{
		unixMillis(),
		status.Viewers,
		status.Tiles,
		status.Visible,
		status.Objects,
		status.Observer.X,
		status.Observer.Y,
	})
	if err != nil {
		h.logger.Println("error appending status log:", err)
	}
}

// PreviewTile uploads a PNG of the ready tile nearest to the observer.
func (h *Hub) PreviewTile() {
	var nearest *stream.Tile
	var nearestDistance float32
	h.streamer.ForTiles(func(t *stream.Tile) {
		if t.Data == nil {
			return
		}
		if d := t.Bounds.DistanceSquared(h.observer); nearest == nil || d < nearestDistance {
			nearest = t
			nearestDistance = d
		}
	})
	if nearest == nil {
		return
	}

	img := terrain.Render(nearest.Data.Heights, nearest.Data.Roads)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		h.logger.Println("error encoding preview:", err)
		return
	}

	preview := buf.Bytes()
	h.previewPNG.Store(preview)

	filename := fmt.Sprintf("preview/%d_%d.png", nearest.Coord.X, nearest.Coord.Y)
	go func() {
		if err := h.cloud.UploadPreview(filename, preview); err != nil {
			h.logger.Println("error uploading preview:", err)
		}
	}()
}

// funcBench is a benchmark of a core function.
type funcBench struct {
	name     string
	duration time.Duration
	runs     int
}

// reset resets the benchmark and returns the average duration
func (bench *funcBench) reset() time.Duration {
	if bench.runs == 0 {
		return 0
	}
	average := bench.duration / time.Duration(bench.runs)
	bench.duration = 0
	bench.runs = 0
	return average
}

// timeFunction times a function.
// defer timeFunction("name", time.Now())
func (h *Hub) timeFunction(name string, start time.Time) {
	end := time.Now()

	var bench *funcBench
	for i := range h.funcBenches {
		b := &h.funcBenches[i]
		if name == b.name {
			bench = b
			break
		}
	}

	if bench == nil {
		h.funcBenches = append(h.funcBenches, funcBench{name: name})
		bench = &h.funcBenches[len(h.funcBenches)-1]
	}

	bench.duration += end.Sub(start)
	bench.runs++
}

func unixMillis() int64 {
	return time.Now().UnixNano() / int64(time.Millisecond/time.Nanosecond)
}
