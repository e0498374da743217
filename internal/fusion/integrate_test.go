// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package fusion

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/indoor_localizer/internal/orientation"
	"github.com/relabs-tech/indoor_localizer/internal/pdr"
)

func TestIntegrateVIORotatesByRunningYaw(t *testing.T) {
	deltas := []orientation.VioDelta{
		{Timestamp: 0.5, DX: 5}, // at the fence, ignored
		{Timestamp: 1, DX: 1, DYaw: math.Pi / 2},
		{Timestamp: 2, DX: 1},
	}
	got := IntegrateVIO(orientation.Pose{}, 0.5, deltas)
	assert.InDelta(t, 1.0, got.X, 1e-9)
	assert.InDelta(t, 1.0, got.Y, 1e-9)
	assert.InDelta(t, math.Pi/2, got.Yaw, 1e-9)
}

func TestIntegrateVIOWrapsYaw(t *testing.T) {
	deltas := []orientation.VioDelta{{Timestamp: 1, DYaw: 0.5}}
	got := IntegrateVIO(orientation.Pose{Yaw: 3.0}, 0, deltas)
	assert.InDelta(t, 3.5-2*math.Pi, got.Yaw, 1e-9)
}

func TestIntegrateVIONothingNewer(t *testing.T) {
	pose := orientation.Pose{X: 1, Y: 2, Yaw: 0.1}
	got := IntegrateVIO(pose, 10, []orientation.VioDelta{{Timestamp: 9, DX: 1}})
	assert.Equal(t, pose, got)
}

func TestIntegratePDRSkipsUnmatchedRows(t *testing.T) {
	estimates := []pdr.Estimate{
		{Timestamp: 0.5, Velocity: 1},
		{Timestamp: 1.0, Velocity: 1}, // no yaw within tolerance
		{Timestamp: 1.5, Velocity: 1},
	}
	yaws := []orientation.YawSample{
		{Timestamp: 0.5},
		{Timestamp: 1.5, DYaw: math.Pi / 2},
	}
	got := IntegratePDR(orientation.Pose{}, 0, estimates, yaws, DefaultYawTolerance)

	// The skipped row still moves the dt reference: 0.5 s + 0.5 s travelled.
	assert.InDelta(t, 1.0, got.X, 1e-9)
	assert.InDelta(t, 0.0, got.Y, 1e-9)
	assert.InDelta(t, math.Pi/2, got.Yaw, 1e-9)
}

func TestIntegratePDRUsesHeadingBeforeIncrement(t *testing.T) {
	estimates := []pdr.Estimate{
		{Timestamp: 2, Velocity: 2},
		{Timestamp: 3, Velocity: 2},
	}
	yaws := []orientation.YawSample{
		{Timestamp: 2, DYaw: math.Pi / 2},
		{Timestamp: 3},
	}
	got := IntegratePDR(orientation.Pose{X: 1, Y: 1}, 1, estimates, yaws, DefaultYawTolerance)
	assert.InDelta(t, 3.0, got.X, 1e-9)
	assert.InDelta(t, 3.0, got.Y, 1e-9)
	assert.InDelta(t, math.Pi/2, got.Yaw, 1e-9)
}

func TestIntegratePDRWithoutYawKeepsPose(t *testing.T) {
	pose := orientation.Pose{X: 4, Y: 5, Yaw: 1}
	got := IntegratePDR(pose, 0, []pdr.Estimate{{Timestamp: 1, Velocity: 1}}, nil, DefaultYawTolerance)
	assert.Equal(t, pose, got)
}

func TestIntegratePDRUnsortedInput(t *testing.T) {
	estimates := []pdr.Estimate{
		{Timestamp: 2, Velocity: 1},
		{Timestamp: 1, Velocity: 1},
	}
	yaws := []orientation.YawSample{{Timestamp: 2}, {Timestamp: 1}}
	got := IntegratePDR(orientation.Pose{}, 0, estimates, yaws, DefaultYawTolerance)
	assert.InDelta(t, 2.0, got.X, 1e-9)
	assert.Equal(t, 2.0, yaws[0].Timestamp, "caller slice is not reordered")
}

func TestNearestYaw(t *testing.T) {
	yaws := []orientation.YawSample{
		{Timestamp: 0.75, Yaw: 1},
		{Timestamp: 1.25, Yaw: 2},
		{Timestamp: 2.0, Yaw: 3},
	}

	tests := []struct {
		name string
		ts   float64
		tol  float64
		want float64
		ok   bool
	}{
		{"tie resolves to earlier", 1.0, 0.5, 1, true},
		{"closer later sample", 1.5, 0.5, 2, true},
		{"exact match", 2.0, 0, 3, true},
		{"before first", 0.5, 0.5, 1, true},
		{"after last", 2.25, 0.5, 3, true},
		{"outside tolerance", 1.0, 0.1, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := nearestYaw(yaws, tt.ts, tt.tol)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got.Yaw)
			}
		})
	}
}
