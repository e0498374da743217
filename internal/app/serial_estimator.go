// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/relabs-tech/indoor_localizer/internal/config"
	"github.com/relabs-tech/indoor_localizer/internal/fusion"
	"github.com/relabs-tech/indoor_localizer/internal/sensors"
)

// RunSerialEstimator reads sensor lines from the configured serial port and
// publishes a fused pose for every batch.
func RunSerialEstimator(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	if cfg.SerialPort == "" {
		return fmt.Errorf("SERIAL_PORT is required")
	}

	pub, err := NewPublisher(cfg.MQTTBroker, cfg.MQTTClientIDSerial, cfg.TopicPoseFused, cfg.TopicTrialState, log)
	if err != nil {
		return err
	}
	defer pub.Close()

	src, err := sensors.OpenSerial(cfg.SerialPort, cfg.SerialBaudRate,
		time.Duration(cfg.SerialBatchInterval)*time.Millisecond, log)
	if err != nil {
		return err
	}
	// Closing the port unblocks the reader goroutine.
	go func() {
		<-ctx.Done()
		src.Close()
	}()

	est := fusion.NewEstimator(FusionConfig(cfg), log)
	err = RunSource(ctx, src, est, log, func(r fusion.Report) {
		if r.Status != fusion.Initialized {
			return
		}
		if err := pub.PublishReport(r); err != nil {
			log.Warn("serial: publish pose", zap.Error(err))
		}
	})
	if ctx.Err() != nil {
		log.Info("serial: shutting down")
		return nil
	}
	return err
}
