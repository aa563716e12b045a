// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"github.com/SoftbearStudios/tilestream/server/config"
	"github.com/chewxy/math32"
	"math"
)

// lodFor returns the first LOD, finest to coarsest, whose threshold exceeds
// distance, capped at the coarsest.
func lodFor(lods []config.LODConfig, distance float32) int {
	lod := 0
	for i := 0; i < len(lods)-1; i++ {
		if distance >= lods[i].VisibleDstThreshold {
			lod = i + 1
		} else {
			break
		}
	}
	return lod
}

// candidateRadius is how many tiles around the observer's tile are kept.
func candidateRadius(maxViewDst, tileSize float32) int32 {
	return int32(math.Round(float64(maxViewDst / tileSize)))
}

func abs32(i int32) int32 {
	if i < 0 {
		return -i
	}
	return i
}

func sqrt(f float32) float32 {
	return math32.Sqrt(f)
}
