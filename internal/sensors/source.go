// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package sensors provides batches of raw sensor lines from sources other
// than the competition server: a serial device, a recorded file or a
// synthetic walk.
package sensors

import (
	"context"

	"github.com/relabs-tech/indoor_localizer/internal/record"
)

// BatchSource yields consecutive batches of raw "KIND;..." lines. NextBatch
// returns io.EOF once the source is exhausted.
type BatchSource interface {
	NextBatch(ctx context.Context) ([]string, error)
}

// sensorTimestamp extracts the sensor timestamp of a line, if it has one.
func sensorTimestamp(line string) (float64, bool) {
	rec, ok := record.Normalize(line)
	if !ok {
		return 0, false
	}
	return rec.Float(record.ColSensorTimestamp)
}
