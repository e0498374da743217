// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/relabs-tech/indoor_localizer/internal/fusion"
	"github.com/relabs-tech/indoor_localizer/internal/sensors"
)

// RunSource feeds every batch of src into est, estimating once per
// non-empty batch, and hands each report to onReport. It returns nil when
// src is exhausted.
func RunSource(ctx context.Context, src sensors.BatchSource, est *fusion.Estimator, log *zap.Logger, onReport func(fusion.Report)) error {
	for {
		lines, err := src.NextBatch(ctx)
		if len(lines) > 0 {
			accepted, dropped := est.IngestBatch(lines)
			est.Estimate()
			report := est.Report()
			log.Debug("stream: batch",
				zap.Int("accepted", accepted),
				zap.Int("dropped", dropped),
				zap.String("status", report.Status.String()),
				zap.Stringer("pose", report.Pose))
			if onReport != nil {
				onReport(report)
			}
		}

		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			return nil
		default:
			return fmt.Errorf("sensor source: %w", err)
		}
	}
}
