// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"math"
	"strings"
)

// MockWalk describes a synthetic trial: an agent walking at constant speed
// while turning at a constant rate, observed by a single UWB tag.
type MockWalk struct {
	Duration float64 // seconds
	Rate     float64 // ACCE/AHRS samples per second
	StartX   float64
	StartY   float64
	Speed    float64 // m/s
	TurnRate float64 // deg/s, counter clockwise
	TagID    string
	TagX     float64
	TagY     float64
	// UWBPeriod is the time between UWBT samples; 0 disables them.
	UWBPeriod float64
}

// DefaultMockWalk is a slow left turn around a tag at (5, 5).
func DefaultMockWalk(duration float64) MockWalk {
	return MockWalk{
		Duration:  duration,
		Rate:      50,
		Speed:     0.7,
		TurnRate:  6,
		TagID:     "tag_01",
		TagX:      5,
		TagY:      5,
		UWBPeriod: 1,
	}
}

// TruePose returns the agent pose at time t (yaw in radians).
func (w MockWalk) TruePose(t float64) (x, y, yaw float64) {
	x, y = w.StartX, w.StartY
	dt := 1 / w.Rate
	n := int(math.Round(t * w.Rate))
	for i := 1; i <= n; i++ {
		h := w.heading(float64(i-1) * dt)
		x += w.Speed * math.Cos(h) * dt
		y += w.Speed * math.Sin(h) * dt
	}
	return x, y, w.heading(t)
}

func (w MockWalk) heading(t float64) float64 {
	return w.TurnRate * t * math.Pi / 180
}

// Lines renders the walk as sensor lines in timestamp order.
func (w MockWalk) Lines() []string {
	var out []string
	out = append(out,
		gposLine(0, "base_link", w.StartX, w.StartY, 0),
		gposLine(0, w.TagID, w.TagX, w.TagY, 0),
	)

	dt := 1 / w.Rate
	n := int(math.Round(w.Duration * w.Rate))
	x, y := w.StartX, w.StartY
	nextUWB := w.UWBPeriod
	for i := 1; i <= n; i++ {
		t := float64(i) * dt
		h := w.heading(float64(i-1) * dt)
		x += w.Speed * math.Cos(h) * dt
		y += w.Speed * math.Sin(h) * dt

		// 2 Hz steps on top of gravity.
		az := 1 + 0.3*math.Sin(2*math.Pi*2*t)
		out = append(out, fmt.Sprintf("ACCE;%.4f;%.4f;0.0000;0.0000;%.4f;3", t, t, az))

		// AHRS reports the heading the next step will use.
		yawDeg := w.heading(t) * 180 / math.Pi
		out = append(out, fmt.Sprintf("AHRS;%.4f;%.4f;0.0000;0.0000;%.4f;0;0;0;3", t, t, yawDeg))

		if w.UWBPeriod > 0 && t >= nextUWB-dt/2 {
			nextUWB += w.UWBPeriod
			dx, dy := x-w.TagX, y-w.TagY
			dist := math.Hypot(dx, dy)
			azimuth := math.Atan2(dx, dy) * 180 / math.Pi
			out = append(out, fmt.Sprintf("UWBT;%.4f;%.4f;%s;%.4f;%.4f;0.0000;0", t, t, w.TagID, dist, azimuth))
		}
	}
	return out
}

// NewMockSource replays w in horizon sized batches.
func NewMockSource(w MockWalk, horizon float64) *FileSource {
	return NewFileSource(strings.NewReader(strings.Join(w.Lines(), "\n")), horizon)
}

func gposLine(t float64, id string, x, y, yaw float64) string {
	return fmt.Sprintf("GPOS;%.4f;%.4f;%s;%.4f;%.4f;0.0000;0;0;%.6f", t, t, id, x, y, math.Sin(yaw/2))
}
