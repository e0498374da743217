// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package uwb

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/indoor_localizer/internal/orientation"
	"github.com/relabs-tech/indoor_localizer/internal/record"
)

type anchorMap map[string]record.Gpos

func (m anchorMap) Anchor(id string) (record.Gpos, bool) {
	g, ok := m[id]
	return g, ok
}

func TestSphericalToCartesian(t *testing.T) {
	tests := []struct {
		name    string
		d, az   float64
		el      float64
		x, y, z float64
	}{
		{"straight ahead", 2, 0, 0, 0, 2, 0},
		{"clockwise quarter", 2, 90, 0, 2, 0, 0},
		{"counter clockwise quarter", 1, -90, 0, -1, 0, 0},
		{"overhead", 3, 0, 90, 0, 0, 3},
		{"zero range", 0, 45, 30, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := SphericalToCartesian(tt.d, tt.az, tt.el)
			assert.InDelta(t, tt.x, v.X, 1e-9)
			assert.InDelta(t, tt.y, v.Y, 1e-9)
			assert.InDelta(t, tt.z, v.Z, 1e-9)
		})
	}
}

func TestCorrectTranslatesByAnchor(t *testing.T) {
	anchor := record.Gpos{ObjectID: "tag7", X: 10, Y: 5}
	meas := record.Uwbt{TagID: "tag7", Distance: 2, Azimuth: 90}

	got := Correct(orientation.Pose{X: -1, Y: -1, Yaw: 0.3}, meas, anchor)
	assert.InDelta(t, 12.0, got.X, 1e-9)
	assert.InDelta(t, 5.0, got.Y, 1e-9)
}

func TestCorrectRotatesByAnchorOrientation(t *testing.T) {
	// Tag rotated +90° about z: its +y axis points to global -x.
	s := math.Sin(math.Pi / 4)
	anchor := record.Gpos{ObjectID: "tag", X: 1, Y: 1, QZ: s}
	meas := record.Uwbt{TagID: "tag", Distance: 2}

	got := Correct(orientation.Pose{}, meas, anchor)
	assert.InDelta(t, -1.0, got.X, 1e-9)
	assert.InDelta(t, 1.0, got.Y, 1e-9)
}

func TestCorrectKeepsYaw(t *testing.T) {
	anchor := record.Gpos{ObjectID: "tag", X: 3, Y: 4, QZ: 0.5}
	for _, yaw := range []float64{0, 1.25, -2.5, math.Pi} {
		meas := record.Uwbt{TagID: "tag", Distance: 1.5, Azimuth: 33, Elevation: -12}
		got := Correct(orientation.Pose{X: 0, Y: 0, Yaw: yaw}, meas, anchor)
		assert.Equal(t, yaw, got.Yaw)
	}
}

func TestResolveUnknownTagIsNoop(t *testing.T) {
	pose := orientation.Pose{X: 1, Y: 2, Yaw: 0.5}
	got, ok := Resolve(pose, record.Uwbt{TagID: "ghost", Distance: 1}, anchorMap{})
	assert.False(t, ok)
	assert.Equal(t, pose, got)
}

func TestResolveKnownTag(t *testing.T) {
	anchors := anchorMap{"t1": {ObjectID: "t1", X: 4, Y: 4}}
	got, ok := Resolve(orientation.Pose{Yaw: -1}, record.Uwbt{TagID: "t1", Distance: 1}, anchors)
	require.True(t, ok)
	assert.InDelta(t, 4.0, got.X, 1e-9)
	assert.InDelta(t, 5.0, got.Y, 1e-9)
	assert.Equal(t, -1.0, got.Yaw)
}
