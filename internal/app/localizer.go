// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/relabs-tech/indoor_localizer/internal/config"
	"github.com/relabs-tech/indoor_localizer/internal/evaal"
	"github.com/relabs-tech/indoor_localizer/internal/fusion"
	"github.com/relabs-tech/indoor_localizer/internal/orientation"
	"github.com/relabs-tech/indoor_localizer/internal/pdr"
)

// Trial is the competition server API driven by the Localizer.
type Trial interface {
	Reload(ctx context.Context) error
	State(ctx context.Context) (evaal.TrialState, error)
	NextData(ctx context.Context, horizon float64) ([]string, error)
	NextDataWithPosition(ctx context.Context, pose orientation.Pose) ([]string, error)
	Estimates(ctx context.Context) ([]evaal.Estimate, error)
	Log(ctx context.Context) (string, error)
}

// LocalizerOptions controls pacing and output of a trial run.
type LocalizerOptions struct {
	PollInterval   time.Duration
	InitialHorizon float64
	EstimatesCSV   string // empty skips the CSV
	LogOutput      string // empty skips saving the server log
}

// Localizer plays one online trial: it pulls sensor batches, answers each
// with a fused position and collects the results at the end.
type Localizer struct {
	trial Trial
	est   *fusion.Estimator
	pub   Publisher
	opts  LocalizerOptions
	log   *zap.Logger

	batches int
}

func NewLocalizer(trial Trial, est *fusion.Estimator, pub Publisher, opts LocalizerOptions, log *zap.Logger) *Localizer {
	if pub == nil {
		pub = nopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Localizer{trial: trial, est: est, pub: pub, opts: opts, log: log}
}

// Run plays the trial until the server reports it finished.
func (l *Localizer) Run(ctx context.Context) error {
	if err := l.trial.Reload(ctx); err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	if err := l.checkState(ctx); err != nil {
		return err
	}

	if err := sleepCtx(ctx, l.opts.PollInterval); err != nil {
		return err
	}
	lines, err := l.trial.NextData(ctx, l.opts.InitialHorizon)
	if err != nil {
		return fmt.Errorf("first batch: %w", err)
	}
	pose := l.process(lines)

	if err := sleepCtx(ctx, l.opts.PollInterval); err != nil {
		return err
	}
	if err := l.checkState(ctx); err != nil {
		return err
	}

	for {
		if err := sleepCtx(ctx, l.opts.PollInterval); err != nil {
			return err
		}
		lines, err := l.trial.NextDataWithPosition(ctx, pose)
		if errors.Is(err, evaal.ErrTrialFinished) {
			l.log.Info("localizer: trial finished", zap.Int("batches", l.batches))
			break
		}
		if err != nil {
			return fmt.Errorf("nextdata: %w", err)
		}
		pose = l.process(lines)
	}

	return l.collect(ctx)
}

func (l *Localizer) checkState(ctx context.Context) error {
	st, err := l.trial.State(ctx)
	if err != nil {
		return fmt.Errorf("state: %w", err)
	}
	l.log.Info("localizer: trial state",
		zap.Float64("trial_ts", st.TrialTime),
		zap.Float64("remaining", st.Remaining),
		zap.String("position", st.Position))
	if err := l.pub.PublishTrialState(st); err != nil {
		l.log.Warn("localizer: publish trial state", zap.Error(err))
	}
	return nil
}

// process folds one batch into the estimator and returns the new pose.
func (l *Localizer) process(lines []string) orientation.Pose {
	l.batches++
	accepted, dropped := l.est.IngestBatch(lines)
	pose := l.est.Estimate()
	report := l.est.Report()

	l.log.Debug("localizer: batch",
		zap.Int("batch", l.batches),
		zap.Int("accepted", accepted),
		zap.Int("dropped", dropped),
		zap.String("source", string(report.Source)),
		zap.Stringer("pose", pose))

	if err := l.pub.PublishReport(report); err != nil {
		l.log.Warn("localizer: publish pose", zap.Error(err))
	}
	return pose
}

func (l *Localizer) collect(ctx context.Context) error {
	ests, err := l.trial.Estimates(ctx)
	if err != nil {
		return fmt.Errorf("estimates: %w", err)
	}
	if l.opts.EstimatesCSV != "" {
		if err := WriteEstimatesCSV(l.opts.EstimatesCSV, ests); err != nil {
			return err
		}
		l.log.Info("localizer: estimates written", zap.String("path", l.opts.EstimatesCSV), zap.Int("count", max(len(ests)-1, 0)))
	}

	if err := sleepCtx(ctx, l.opts.PollInterval); err != nil {
		return err
	}
	text, err := l.trial.Log(ctx)
	if err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if l.opts.LogOutput != "" {
		if err := os.WriteFile(l.opts.LogOutput, []byte(text), 0o644); err != nil {
			return fmt.Errorf("save trial log: %w", err)
		}
	}
	return nil
}

// RunLocalizer plays the configured trial against the EvAAL server.
func RunLocalizer(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	if cfg.EvaalServer == "" || cfg.EvaalTrial == "" {
		return fmt.Errorf("EVAAL_SERVER and EVAAL_TRIAL are required")
	}

	pub, err := NewPublisher(cfg.MQTTBroker, cfg.MQTTClientIDLocalizer, cfg.TopicPoseFused, cfg.TopicTrialState, log)
	if err != nil {
		return err
	}
	defer pub.Close()

	client := evaal.NewClient(cfg.EvaalServer, cfg.EvaalTrial,
		&http.Client{Timeout: time.Duration(cfg.HTTPTimeout) * time.Millisecond})
	est := fusion.NewEstimator(FusionConfig(cfg), log)

	log.Info("localizer: starting trial", zap.String("server", cfg.EvaalServer), zap.String("trial", cfg.EvaalTrial))
	return NewLocalizer(client, est, pub, LocalizerOptions{
		PollInterval:   time.Duration(cfg.PollInterval) * time.Millisecond,
		InitialHorizon: cfg.InitialHorizon,
		EstimatesCSV:   cfg.EstimatesCSV,
		LogOutput:      cfg.LogOutput,
	}, log).Run(ctx)
}

// FusionConfig maps the configuration file onto estimator settings.
func FusionConfig(cfg *config.Config) fusion.Config {
	return fusion.Config{
		ReferenceObjectID: cfg.ReferenceObjectID,
		PDR: pdr.Config{
			WindowSamples:   cfg.PDRWindowSamples,
			WindowSec:       cfg.PDRWindowSec,
			AccThreshold:    cfg.PDRAccThreshold,
			DefaultVelocity: cfg.PDRDefaultVelocity,
		},
		YawTolerance:    cfg.YawMatchTolerance,
		HistoryCapacity: cfg.HistoryCapacity,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
