// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package pdr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/relabs-tech/indoor_localizer/internal/record"
)

func acce(ts, x, y, z float64) record.Acce {
	return record.Acce{Header: record.Header{SensorTimestamp: ts}, X: x, Y: y, Z: z}
}

func TestMagnitude(t *testing.T) {
	assert.InDelta(t, 0.0, Magnitude(acce(0, 0, 0, 1)), 1e-12)
	assert.InDelta(t, 1.0, Magnitude(acce(0, 0, 0, 2)), 1e-12)
	assert.InDelta(t, -1.0, Magnitude(acce(0, 0, 0, 0)), 1e-12)
}

func TestRollingRMSSingleSample(t *testing.T) {
	assert.InDelta(t, 0.05, RollingRMS([]record.Acce{acce(3, 0, 0, 1.05)}, 1.0), 1e-12)
	assert.InDelta(t, 0.05, RollingRMS([]record.Acce{acce(3, 0, 0, 0.95)}, 1.0), 1e-12)
	assert.Equal(t, 0.0, RollingRMS(nil, 1.0))
}

func TestRollingRMSIsTimeIndexed(t *testing.T) {
	samples := []record.Acce{
		acce(0.0, 0, 0, 3.0), // outside the 0.5 s half window of t=1.0
		acce(0.6, 0, 0, 1.3),
		acce(1.0, 0, 0, 1.4),
	}
	want := math.Sqrt((0.3*0.3 + 0.4*0.4) / 2)
	assert.InDelta(t, want, RollingRMS(samples, 1.0), 1e-12)
}

func TestEstimatorStandingStill(t *testing.T) {
	e := NewEstimator(DefaultConfig(), 64)

	e.OnAcce(acce(0.00, 0, 0, 1.05))
	est := e.OnAcce(acce(0.02, 0, 0, 0.95))

	assert.Equal(t, 0.0, est.Velocity)
	assert.InDelta(t, 0.05, est.RMS, 1e-12)
	assert.Equal(t, 0.02, est.Timestamp)
	assert.Len(t, e.Estimates(), 2)
}

func TestEstimatorWalking(t *testing.T) {
	e := NewEstimator(DefaultConfig(), 64)

	var est Estimate
	for i := 0; i < 30; i++ {
		z := 1.0 + 0.4*math.Sin(float64(i))
		est = e.OnAcce(acce(float64(i)*0.02, 0, 0, z))
	}

	assert.Equal(t, 0.7, est.Velocity)
	assert.Greater(t, est.RMS, 0.1)
	assert.Len(t, e.EstimatesAfter(0.41), 9)
}

func TestEstimatorWindowIsBounded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WindowSamples = 2
	cfg.WindowSec = 10
	e := NewEstimator(cfg, 8)

	e.OnAcce(acce(0, 0, 0, 5)) // large, but evicted by the next two
	e.OnAcce(acce(1, 0, 0, 1))
	est := e.OnAcce(acce(2, 0, 0, 1))

	assert.Equal(t, 0.0, est.RMS)
	assert.Equal(t, 0.0, est.Velocity)
}
