// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/relabs-tech/indoor_localizer/internal/config"
	"github.com/relabs-tech/indoor_localizer/internal/fusion"
	"github.com/relabs-tech/indoor_localizer/internal/sensors"
)

// RunReplay runs the estimator offline over a recorded trial, or over a
// synthetic walk when no file is configured, and writes every estimate to
// REPLAY_OUTPUT_CSV.
func RunReplay(ctx context.Context, cfg *config.Config, log *zap.Logger) ([]fusion.Report, error) {
	var src sensors.BatchSource
	if cfg.ReplayFile != "" {
		f, err := sensors.OpenFile(cfg.ReplayFile, cfg.ReplayHorizon)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		src = f
		log.Info("replay: reading trial log", zap.String("path", cfg.ReplayFile))
	} else {
		src = sensors.NewMockSource(sensors.DefaultMockWalk(cfg.MockDuration), cfg.ReplayHorizon)
		log.Info("replay: synthetic walk", zap.Float64("duration", cfg.MockDuration))
	}

	est := fusion.NewEstimator(FusionConfig(cfg), log)
	var reports []fusion.Report
	err := RunSource(ctx, src, est, log, func(r fusion.Report) {
		if r.Status == fusion.Initialized {
			reports = append(reports, r)
		}
	})
	if err != nil {
		return reports, err
	}

	if cfg.ReplayOutputCSV != "" {
		if err := WriteReportsCSV(cfg.ReplayOutputCSV, reports); err != nil {
			return reports, err
		}
	}
	log.Info("replay: done", zap.Int("estimates", len(reports)), zap.Any("history", est.Counts()))
	return reports, nil
}
