// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package fs

import (
	"testing"
)

func TestContentType(t *testing.T) {
	tests := map[string]string{
		"preview/1_-2.png": "image/png",
		"status.json":      "application/json",
		"notes.txt":        "",
	}
	for filename, want := range tests {
		got := ContentType(filename)
		if want == "" {
			if got != nil {
				t.Errorf("%s: got %q, want nil", filename, *got)
			}
			continue
		}
		if got == nil || *got != want {
			t.Errorf("%s: got %v, want %q", filename, got, want)
		}
	}
}
