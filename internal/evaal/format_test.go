// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package evaal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/indoor_localizer/internal/orientation"
)

func TestParseState(t *testing.T) {
	st, err := ParseState("12.345,60.000,2.000,0.250,12.000,0.500,11.900,1.5,-2.5,0.3")
	require.NoError(t, err)
	assert.Equal(t, TrialState{
		TrialTime: 12.345,
		Remaining: 60,
		V:         2,
		S:         0.25,
		P:         12,
		Horizon:   0.5,
		PosTime:   11.9,
		Position:  "1.5,-2.5,0.3",
	}, st)
}

func TestParseStateMalformed(t *testing.T) {
	for _, line := range []string{"", "1,2,3", "a,0,0,0,0,0,0,pos"} {
		_, err := ParseState(line)
		assert.ErrorIs(t, err, ErrMalformed, line)
	}
}

func TestParseEstimate(t *testing.T) {
	est, err := ParseEstimate("3.000,101.200,0.500,0.000,4.0,5.0,-1.2")
	require.NoError(t, err)
	assert.Equal(t, 3.0, est.PosTime)
	assert.Equal(t, 101.2, est.Clock)
	assert.Equal(t, orientation.Pose{X: 4, Y: 5, Yaw: -1.2}, est.Pose)

	est, err = ParseEstimate("3.000,101.200,0.500,0.000,4.0,5.0")
	require.NoError(t, err)
	assert.Equal(t, 0.0, est.Pose.Yaw)

	_, err = ParseEstimate("3.000,101.200,0.500,0.000,4.0")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestFormatPosition(t *testing.T) {
	assert.Equal(t, "1.2,-3.5,3.1", FormatPosition(orientation.Pose{X: 1.234, Y: -3.45, Yaw: 3.14159}))
}

func TestSplitLines(t *testing.T) {
	got := SplitLines([]byte("a\r\n\n  \nb\n"))
	assert.Equal(t, []string{"a", "b"}, got)
}
