// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/relabs-tech/indoor_localizer/internal/config"
	"github.com/relabs-tech/indoor_localizer/internal/fusion"
	"github.com/relabs-tech/indoor_localizer/internal/sensors"
)

func TestRunReplaySyntheticWalk(t *testing.T) {
	cfg := config.Default()
	cfg.MockDuration = 10
	cfg.ReplayOutputCSV = filepath.Join(t.TempDir(), "replay.csv")

	reports, err := RunReplay(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	require.NotEmpty(t, reports)

	last := reports[len(reports)-1]
	assert.True(t, last.UWBCorrected, "walk ends on a UWB fix")

	w := sensors.DefaultMockWalk(cfg.MockDuration)
	x, y, yaw := w.TruePose(last.Timestamp)
	assert.InDelta(t, x, last.Pose.X, 0.01)
	assert.InDelta(t, y, last.Pose.Y, 0.01)
	assert.InDelta(t, yaw, last.Pose.Yaw, 0.01)

	for i := 1; i < len(reports); i++ {
		assert.GreaterOrEqual(t, reports[i].Timestamp, reports[i-1].Timestamp)
	}

	f, err := os.Open(cfg.ReplayOutputCSV)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, len(reports)+1)
	assert.Equal(t, []string{"timestamp", "x", "y", "yaw", "source", "uwb_corrected"}, rows[0])
}

func TestRunReplayFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trial.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join([]string{
		"GPOS;0.0;0.0;base_link;2.0;3.0;0.0;0;0;0",
		"VISO;0.1;0.1;0;0;0;0;0;0",
		"VISO;1.0;1.0;0;1;0;0;0;0",
	}, "\n")), 0o644))

	cfg := config.Default()
	cfg.ReplayFile = path
	cfg.ReplayOutputCSV = ""

	reports, err := RunReplay(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.InDelta(t, 2.0, reports[1].Pose.X, 1e-9)
	assert.InDelta(t, 4.0, reports[1].Pose.Y, 1e-9)
	assert.Equal(t, fusion.SourceVIO, reports[1].Source)
}

func TestRunReplayMissingFile(t *testing.T) {
	cfg := config.Default()
	cfg.ReplayFile = filepath.Join(t.TempDir(), "absent.txt")
	_, err := RunReplay(context.Background(), cfg, zap.NewNop())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunSourceReportsEveryBatch(t *testing.T) {
	src := sensors.NewFileSource(strings.NewReader("ACCE;0.1;0.1;0;0;1;3\nACCE;0.9;0.9;0;0;1;3\n"), 0.5)
	est := fusion.NewEstimator(fusion.DefaultConfig(), nil)

	var got []fusion.Report
	require.NoError(t, RunSource(context.Background(), src, est, zap.NewNop(), func(r fusion.Report) {
		got = append(got, r)
	}))
	require.Len(t, got, 2)
	assert.Equal(t, fusion.Initializing, got[1].Status)
}

func TestRunMockConsole(t *testing.T) {
	cfg := config.Default()
	cfg.MockDuration = 0.2
	cfg.ReplayHorizon = 0.05

	var out bytes.Buffer
	require.NoError(t, RunMockConsole(context.Background(), cfg, &out, zap.NewNop()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.NotEmpty(t, lines)
	for _, l := range lines {
		assert.True(t, strings.HasPrefix(l, "[POSE]"), l)
	}
}
