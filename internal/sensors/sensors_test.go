// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"context"
	"errors"
	"io"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/indoor_localizer/internal/record"
)

func drain(t *testing.T, src BatchSource) [][]string {
	t.Helper()
	var batches [][]string
	for i := 0; i < 10000; i++ {
		b, err := src.NextBatch(context.Background())
		if errors.Is(err, io.EOF) {
			return batches
		}
		require.NoError(t, err)
		batches = append(batches, b)
	}
	t.Fatal("source never reached EOF")
	return nil
}

func TestFileSourceBatchesByHorizon(t *testing.T) {
	log := strings.Join([]string{
		"GPOS;0.0;0.00;base_link;0;0;0;0;0;0",
		"ACCE;0.1;0.10;0;0;1;3",
		"",
		"FOO;bar",
		"ACCE;0.4;0.49;0;0;1;3",
		"ACCE;0.5;0.50;0;0;1;3",
		"AHRS;0.6;0.60;0;0;0;0;0;0;3",
		"ACCE;1.2;1.20;0;0;1;3",
	}, "\n")

	batches := drain(t, NewFileSource(strings.NewReader(log), 0.5))
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 4, "unknown kinds ride along")
	assert.Equal(t, []string{"ACCE;0.5;0.50;0;0;1;3", "AHRS;0.6;0.60;0;0;0;0;0;0;3"}, batches[1])
	assert.Equal(t, []string{"ACCE;1.2;1.20;0;0;1;3"}, batches[2])
}

func TestFileSourceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewFileSource(strings.NewReader("ACCE;0;0;0;0;1;3"), 1).NextBatch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLineSourceDrainsStream(t *testing.T) {
	rc := io.NopCloser(strings.NewReader("ACCE;0.1;0.1;0;0;1;3\n\n  AHRS;0.1;0.1;0;0;5;0;0;0;3  \nUWBT;1;1;t;2;0;0;0"))
	src := NewLineSource(rc, 20*time.Millisecond, nil)

	var got []string
	for _, b := range drain(t, src) {
		got = append(got, b...)
	}
	assert.Equal(t, []string{
		"ACCE;0.1;0.1;0;0;1;3",
		"AHRS;0.1;0.1;0;0;5;0;0;0;3",
		"UWBT;1;1;t;2;0;0;0",
	}, got)
}

func TestLineSourceIntervalAndClose(t *testing.T) {
	pr, pw := io.Pipe()
	src := NewLineSource(pr, 30*time.Millisecond, nil)

	go func() {
		_, _ = pw.Write([]byte("ACCE;0.1;0.1;0;0;1;3\n"))
	}()

	var got []string
	deadline := time.Now().Add(2 * time.Second)
	for len(got) == 0 && time.Now().Before(deadline) {
		b, err := src.NextBatch(context.Background())
		require.NoError(t, err)
		got = append(got, b...)
	}
	assert.Equal(t, []string{"ACCE;0.1;0.1;0;0;1;3"}, got)

	// Nothing arrives: an empty batch after one interval.
	b, err := src.NextBatch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, b)

	require.NoError(t, pw.Close())
	for {
		_, err = src.NextBatch(context.Background())
		if err != nil {
			break
		}
	}
	assert.ErrorIs(t, err, io.EOF)
}

func TestMockWalkLinesParse(t *testing.T) {
	w := DefaultMockWalk(3)
	lines := w.Lines()
	require.NotEmpty(t, lines)
	assert.True(t, strings.HasPrefix(lines[0], "GPOS;"))

	counts := map[record.Kind]int{}
	last := -1.0
	for _, l := range lines {
		s, ok, err := record.Parse(l)
		require.NoError(t, err, l)
		require.True(t, ok, l)
		counts[s.Kind()]++
		assert.GreaterOrEqual(t, s.Timestamp(), last)
		last = s.Timestamp()
	}
	assert.Equal(t, 150, counts[record.KindAcce])
	assert.Equal(t, 150, counts[record.KindAhrs])
	assert.Equal(t, 3, counts[record.KindUwbt])
	assert.Equal(t, 2, counts[record.KindGpos])
}

func TestMockWalkUWBMatchesTruth(t *testing.T) {
	w := DefaultMockWalk(1)
	var meas record.Uwbt
	for _, l := range w.Lines() {
		if s, ok, _ := record.Parse(l); ok {
			if u, isUWB := s.(record.Uwbt); isUWB {
				meas = u
			}
		}
	}
	require.Equal(t, w.TagID, meas.TagID)

	x, y, _ := w.TruePose(meas.SensorTimestamp)
	az := meas.Azimuth * math.Pi / 180
	assert.InDelta(t, x, w.TagX+meas.Distance*math.Sin(az), 1e-3)
	assert.InDelta(t, y, w.TagY+meas.Distance*math.Cos(az), 1e-3)
}
