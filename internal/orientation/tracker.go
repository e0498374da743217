// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"github.com/relabs-tech/indoor_localizer/internal/record"
	"github.com/relabs-tech/indoor_localizer/internal/series"
)

// YawSample is one AHRS heading and its wrapped change from the previous sample.
type YawSample struct {
	Timestamp float64 `json:"timestamp"`
	Yaw       float64 `json:"yaw"`
	DYaw      float64 `json:"dyaw"`
}

// VioDelta is the motion between two consecutive visual odometry poses.
// DX, DY, DZ are expressed in the odometry frame.
type VioDelta struct {
	Timestamp float64 `json:"timestamp"`
	DX        float64 `json:"dx"`
	DY        float64 `json:"dy"`
	DZ        float64 `json:"dz"`
	DYaw      float64 `json:"dyaw"`
	DT        float64 `json:"dt"`
}

type vioPose struct {
	timestamp float64
	x, y, z   float64
	yaw       float64
}

// Tracker turns AHRS and VISO samples into heading increments.
type Tracker struct {
	yaws    *series.Ring[YawSample]
	deltas  *series.Ring[VioDelta]
	lastVIO *vioPose
}

// NewTracker keeps at most capacity yaw samples and VIO deltas.
func NewTracker(capacity int) *Tracker {
	return &Tracker{
		yaws:   series.NewRing[YawSample](capacity),
		deltas: series.NewRing[VioDelta](capacity),
	}
}

// OnAHRS records the heading of s and returns the new YawSample.
func (t *Tracker) OnAHRS(s record.Ahrs) YawSample {
	yaw := DegToRad(s.Yaw)
	dyaw := 0.0
	if prev, ok := t.yaws.Last(); ok {
		dyaw = WrapAngle(yaw - prev.Yaw)
	}
	ys := YawSample{Timestamp: s.SensorTimestamp, Yaw: yaw, DYaw: dyaw}
	t.yaws.Push(ys)
	return ys
}

// OnVISO updates the reference VIO pose. It returns a delta for every
// sample except the first one.
func (t *Tracker) OnVISO(s record.Viso) (VioDelta, bool) {
	cur := vioPose{
		timestamp: s.SensorTimestamp,
		x:         s.X,
		y:         s.Y,
		z:         s.Z,
		yaw:       YawFromQuat(RecoverQuat(s.QX, s.QY, s.QZ)),
	}
	prev := t.lastVIO
	t.lastVIO = &cur
	if prev == nil {
		return VioDelta{}, false
	}

	d := VioDelta{
		Timestamp: cur.timestamp,
		DX:        cur.x - prev.x,
		DY:        cur.y - prev.y,
		DZ:        cur.z - prev.z,
		DYaw:      WrapAngle(cur.yaw - prev.yaw),
		DT:        cur.timestamp - prev.timestamp,
	}
	t.deltas.Push(d)
	return d, true
}

// Yaws returns the retained yaw samples, oldest first.
func (t *Tracker) Yaws() []YawSample { return t.yaws.Slice() }

// Deltas returns the retained VIO deltas, oldest first.
func (t *Tracker) Deltas() []VioDelta { return t.deltas.Slice() }

// DeltasAfter returns the VIO deltas newer than fence, oldest first.
func (t *Tracker) DeltasAfter(fence float64) []VioDelta {
	return t.deltas.Filter(func(d VioDelta) bool { return d.Timestamp > fence })
}

// LastDelta returns the most recently computed VIO delta.
func (t *Tracker) LastDelta() (VioDelta, bool) { return t.deltas.Last() }

// HasVIOReference reports whether a VIO pose has been seen.
func (t *Tracker) HasVIOReference() bool { return t.lastVIO != nil }
