// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"encoding/csv"
	"fmt"
	"os"
)

// AppendLog appends one CSV row to filename, creating it if needed.
// Floats are written with 2 decimals.
func AppendLog(filename string, fields []interface{}) error {
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	row := make([]string, len(fields))
	for i, field := range fields {
		switch v := field.(type) {
		case float32, float64:
			row[i] = fmt.Sprintf("%.2f", v)
		default:
			row[i] = fmt.Sprint(v)
		}
	}

	w := csv.NewWriter(f)
	if err = w.Write(row); err != nil {
		return err
	}
	// Error from flush
	w.Flush()
	return w.Error()
}
