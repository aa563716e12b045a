// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package scenery

import (
	"math/rand"
	"testing"
)

func TestSectorID_sliceIndex(t *testing.T) {
	const width = 1 << 8

	errors := 0

	for i := 0; i < 10000; i++ {
		x := int16(rand.Intn(width) - width/2)
		y := int16(rand.Intn(width) - width/2)
		id := sectorID{x: x, y: y}

		index := id.sliceIndex(width)
		newID := sliceIndexSectorID(index, width, log2(width))

		if id != newID {
			t.Errorf("sliceIndexSectorID(%#v.sliceIndex(width), width) != %#v", id, newID)
			errors++
			if errors > 10 {
				t.FailNow()
			}
		}
	}
}

func TestNextPowerOf2(t *testing.T) {
	for n, want := range map[uint16]uint16{1: 1, 2: 2, 3: 4, 5: 8, 100: 128, 1024: 1024} {
		if got := nextPowerOf2(n); got != want {
			t.Errorf("nextPowerOf2(%d) = %d, want %d", n, got, want)
		}
	}
}
