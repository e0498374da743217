// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/relabs-tech/indoor_localizer/internal/config"
	"github.com/relabs-tech/indoor_localizer/internal/evaal"
	"github.com/relabs-tech/indoor_localizer/internal/fusion"
	"github.com/relabs-tech/indoor_localizer/internal/orientation"
)

func TestNewLogger(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		l, err := NewLogger(lvl)
		require.NoError(t, err, lvl)
		assert.NotNil(t, l)
	}
	_, err := NewLogger("chatty")
	assert.Error(t, err)
}

func TestNewPublisherWithoutBroker(t *testing.T) {
	pub, err := NewPublisher("", "id", "pose", "state", zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, pub.PublishReport(fusion.Report{}))
	assert.NoError(t, pub.PublishTrialState(evaal.TrialState{}))
	pub.Close()
}

func TestFusionConfig(t *testing.T) {
	cfg := config.Default()
	cfg.ReferenceObjectID = "robot"
	cfg.PDRWindowSamples = 7
	cfg.YawMatchTolerance = 0.05

	fc := FusionConfig(cfg)
	assert.Equal(t, "robot", fc.ReferenceObjectID)
	assert.Equal(t, 7, fc.PDR.WindowSamples)
	assert.Equal(t, 0.7, fc.PDR.DefaultVelocity)
	assert.Equal(t, 0.05, fc.YawTolerance)
	assert.Equal(t, 4096, fc.HistoryCapacity)
}

func TestWriteEstimatesCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, WriteEstimatesCSV(path, nil))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "timestamp,x,y,yaw\n", string(b))
}

func TestWriteCSVBadPath(t *testing.T) {
	err := WriteReportsCSV(filepath.Join(t.TempDir(), "missing", "out.csv"), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFormatLines(t *testing.T) {
	line := FormatReport(fusion.Report{Timestamp: 1.5, Pose: orientation.Pose{X: 1, Y: -2, Yaw: 0.25}, Source: fusion.SourcePDR, UWBCorrected: true})
	assert.Equal(t, "[POSE]  t=    1.500  X=    1.00  Y=   -2.00  YAW= 0.250  src=pdr +UWB", line)

	line = FormatTrialState(evaal.TrialState{TrialTime: 3, Remaining: 57, Horizon: 0.5, Position: "1.0,2.0,0.0"})
	assert.Equal(t, "[TRIAL] t=    3.000  remaining=  57.000  horizon=0.500  pos=1.0,2.0,0.0", line)
}
