// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package pdr implements a threshold-based pedestrian dead reckoning
// speed model: the subject either walks at a constant nominal speed or
// stands still, decided from accelerometer energy.
package pdr

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/relabs-tech/indoor_localizer/internal/record"
	"github.com/relabs-tech/indoor_localizer/internal/series"
)

// Gravity is the accelerometer magnitude at rest, in the sensor's unit (g).
const Gravity = 1.0

// Config tunes the walking detector.
type Config struct {
	WindowSamples   int     // accelerometer samples kept for the RMS
	WindowSec       float64 // width of the centred RMS time window
	AccThreshold    float64 // RMS above which the subject is walking
	DefaultVelocity float64 // walking speed in m/s
}

// DefaultConfig returns the reference tuning.
func DefaultConfig() Config {
	return Config{
		WindowSamples:   20,
		WindowSec:       1.0,
		AccThreshold:    0.1,
		DefaultVelocity: 0.7,
	}
}

// Estimate is the speed decision at one accelerometer timestamp.
type Estimate struct {
	Timestamp float64 `json:"timestamp"`
	Velocity  float64 `json:"velocity"`
	RMS       float64 `json:"rms"`
}

// Estimator keeps the accelerometer window and the estimate history.
type Estimator struct {
	cfg       Config
	window    *series.Ring[record.Acce]
	estimates *series.Ring[Estimate]
}

// NewEstimator keeps at most capacity estimates.
func NewEstimator(cfg Config, capacity int) *Estimator {
	if cfg.WindowSamples <= 0 {
		cfg.WindowSamples = DefaultConfig().WindowSamples
	}
	return &Estimator{
		cfg:       cfg,
		window:    series.NewRing[record.Acce](cfg.WindowSamples),
		estimates: series.NewRing[Estimate](capacity),
	}
}

// OnAcce adds s to the window and appends the resulting estimate.
func (e *Estimator) OnAcce(s record.Acce) Estimate {
	e.window.Push(s)
	samples := e.window.Slice()

	rms := RollingRMS(samples, e.cfg.WindowSec)
	v := 0.0
	if rms > e.cfg.AccThreshold {
		v = e.cfg.DefaultVelocity
	}

	est := Estimate{Timestamp: s.SensorTimestamp, Velocity: v, RMS: rms}
	e.estimates.Push(est)
	return est
}

// Estimates returns the retained estimates, oldest first.
func (e *Estimator) Estimates() []Estimate { return e.estimates.Slice() }

// EstimatesAfter returns the estimates newer than fence, oldest first.
func (e *Estimator) EstimatesAfter(fence float64) []Estimate {
	return e.estimates.Filter(func(est Estimate) bool { return est.Timestamp > fence })
}

// Magnitude is |a| minus gravity.
func Magnitude(s record.Acce) float64 {
	return math.Sqrt(s.X*s.X+s.Y*s.Y+s.Z*s.Z) - Gravity
}

// RollingRMS is the root mean square of the gravity-free magnitude over a
// time window of width windowSec centred on the last sample, i.e. every
// sample with timestamp in (t-w/2, t+w/2]. A lone sample yields its own
// absolute magnitude.
func RollingRMS(samples []record.Acce, windowSec float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	t := samples[len(samples)-1].SensorTimestamp
	lo, hi := t-windowSec/2, t+windowSec/2

	sq := make([]float64, 0, len(samples))
	for _, s := range samples {
		if ts := s.SensorTimestamp; ts > lo && ts <= hi {
			m := Magnitude(s)
			sq = append(sq, m*m)
		}
	}
	if len(sq) == 0 {
		m := Magnitude(samples[len(samples)-1])
		return math.Abs(m)
	}
	return math.Sqrt(stat.Mean(sq, nil))
}
