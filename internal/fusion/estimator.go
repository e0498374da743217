// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package fusion turns a stream of sensor samples into a 2D pose estimate by
// combining PDR, visual odometry and UWB corrections.
package fusion

import (
	"go.uber.org/zap"

	"github.com/relabs-tech/indoor_localizer/internal/orientation"
	"github.com/relabs-tech/indoor_localizer/internal/pdr"
	"github.com/relabs-tech/indoor_localizer/internal/record"
	"github.com/relabs-tech/indoor_localizer/internal/series"
	"github.com/relabs-tech/indoor_localizer/internal/store"
	"github.com/relabs-tech/indoor_localizer/internal/uwb"
)

// DefaultReferenceObjectID is the GPOS object id of the tracked agent.
const DefaultReferenceObjectID = "base_link"

// Config tunes an Estimator.
type Config struct {
	// ReferenceObjectID selects the GPOS samples that seed the pose.
	ReferenceObjectID string
	PDR               pdr.Config
	// YawTolerance bounds the PDR/yaw timestamp association, in seconds.
	YawTolerance float64
	// HistoryCapacity is the number of samples retained per kind.
	HistoryCapacity int
}

func DefaultConfig() Config {
	return Config{
		ReferenceObjectID: DefaultReferenceObjectID,
		PDR:               pdr.DefaultConfig(),
		YawTolerance:      DefaultYawTolerance,
		HistoryCapacity:   series.DefaultCapacity,
	}
}

// Estimator owns every sensor history of one session and the fused pose.
// It is not safe for concurrent use.
type Estimator struct {
	cfg     Config
	log     *zap.Logger
	store   *store.Store
	pdr     *pdr.Estimator
	tracker *orientation.Tracker

	state  State
	report Report
}

// NewEstimator returns an Estimator in the Initializing state with the
// default pose. A nil logger disables logging.
func NewEstimator(cfg Config, log *zap.Logger) *Estimator {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.ReferenceObjectID == "" {
		cfg.ReferenceObjectID = DefaultReferenceObjectID
	}
	if cfg.YawTolerance <= 0 {
		cfg.YawTolerance = DefaultYawTolerance
	}
	return &Estimator{
		cfg:     cfg,
		log:     log,
		store:   store.New(cfg.HistoryCapacity),
		pdr:     pdr.NewEstimator(cfg.PDR, cfg.HistoryCapacity),
		tracker: orientation.NewTracker(cfg.HistoryCapacity),
		report:  Report{Status: Initializing, Source: SourceNone},
	}
}

// Ingest stores s and updates the quantities derived from its kind.
func (e *Estimator) Ingest(s record.Sample) {
	e.store.Add(s)

	switch s := s.(type) {
	case record.Acce:
		e.pdr.OnAcce(s)
	case record.Ahrs:
		e.tracker.OnAHRS(s)
	case record.Viso:
		e.tracker.OnVISO(s)
	case record.Gpos:
		e.onGpos(s)
	case record.Gyro, record.Magn, record.Uwbp, record.Uwbt:
		// history only
	}
}

func (e *Estimator) onGpos(s record.Gpos) {
	if e.state.Status != Initializing || s.ObjectID != e.cfg.ReferenceObjectID {
		return
	}
	yaw := orientation.YawFromQuat(orientation.RecoverQuat(s.QX, s.QY, s.QZ))
	e.state = State{
		Status: Initialized,
		Pose:   orientation.Pose{X: s.X, Y: s.Y, Yaw: orientation.WrapAngle(yaw)},
		Fence:  s.SensorTimestamp,
	}
	e.report = Report{Timestamp: s.SensorTimestamp, Pose: e.state.Pose, Status: Initialized, Source: SourceNone}
	e.log.Info("fusion: initialized from reference pose",
		zap.String("object_id", s.ObjectID),
		zap.Float64("timestamp", s.SensorTimestamp),
		zap.Stringer("pose", e.state.Pose))
}

// IngestLine normalizes, decodes and ingests one raw sensor line. Lines of
// unknown kind or missing required columns return false.
func (e *Estimator) IngestLine(line string) bool {
	s, ok, err := record.Parse(line)
	if err != nil {
		e.log.Debug("fusion: dropping record", zap.String("line", line), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	e.Ingest(s)
	return true
}

// IngestBatch ingests every line in order and reports how many were
// accepted and dropped.
func (e *Estimator) IngestBatch(lines []string) (accepted, dropped int) {
	for _, line := range lines {
		if e.IngestLine(line) {
			accepted++
		} else {
			dropped++
		}
	}
	return accepted, dropped
}

// Estimate runs one fusion step and returns the fused pose. Before the
// reference pose has been seen it returns the current pose untouched.
func (e *Estimator) Estimate() orientation.Pose {
	if e.state.Status != Initialized {
		return e.state.Pose
	}
	next, report := e.step(e.state)
	e.state = next
	e.report = report
	return next.Pose
}

// step computes the state following prev from the current histories.
func (e *Estimator) step(prev State) (State, Report) {
	pose := prev.Pose
	src := SourcePDR
	if last, ok := e.tracker.LastDelta(); ok && last.Timestamp > prev.Fence {
		src = SourceVIO
		pose = IntegrateVIO(pose, prev.Fence, e.tracker.DeltasAfter(prev.Fence))
	} else {
		pose = IntegratePDR(pose, prev.Fence, e.pdr.EstimatesAfter(prev.Fence), e.tracker.Yaws(), e.cfg.YawTolerance)
	}

	corrected := false
	if meas, ok := e.store.LatestUWBT(); ok && meas.SensorTimestamp > prev.Fence {
		pose, corrected = uwb.Resolve(pose, meas, e.store)
		if !corrected {
			e.log.Debug("fusion: no pose for uwb tag", zap.String("tag_id", meas.TagID))
		}
	}

	fence := prev.Fence
	if newest, ok := e.store.Newest(); ok && newest > fence {
		fence = newest
	}

	next := State{Status: Initialized, Pose: pose, Fence: fence}
	return next, Report{
		Timestamp:    fence,
		Pose:         pose,
		Status:       Initialized,
		Source:       src,
		UWBCorrected: corrected,
	}
}

// State returns a copy of the current fusion state.
func (e *Estimator) State() State { return e.state }

// Report describes the latest Estimate call.
func (e *Estimator) Report() Report { return e.report }

// Counts returns the retained history size per sensor kind.
func (e *Estimator) Counts() map[string]int { return e.store.Counts() }
