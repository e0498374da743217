// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/relabs-tech/indoor_localizer/internal/config"
	"github.com/relabs-tech/indoor_localizer/internal/fusion"
	"github.com/relabs-tech/indoor_localizer/internal/sensors"
)

// RunMockConsole walks the synthetic trial in real time, one batch per
// REPLAY_HORIZON seconds, and prints every estimate to out.
func RunMockConsole(ctx context.Context, cfg *config.Config, out io.Writer, log *zap.Logger) error {
	src := sensors.NewMockSource(sensors.DefaultMockWalk(cfg.MockDuration), cfg.ReplayHorizon)
	est := fusion.NewEstimator(FusionConfig(cfg), log)

	ticker := time.NewTicker(time.Duration(cfg.ReplayHorizon * float64(time.Second)))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		lines, err := src.NextBatch(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		est.IngestBatch(lines)
		est.Estimate()
		fmt.Fprintln(out, FormatReport(est.Report()))
	}
}
