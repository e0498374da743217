// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package evaal

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/relabs-tech/indoor_localizer/internal/orientation"
)

// ErrMalformed is wrapped by the parsers below.
var ErrMalformed = errors.New("evaal: malformed line")

// TrialState is the reply to /state:
//
//	trialts,rem,V,S,p,h,pts,pos
type TrialState struct {
	TrialTime float64 `json:"trial_ts"`  // trial clock
	Remaining float64 `json:"remaining"` // seconds left
	V         float64 `json:"v"`         // replay speed factor
	S         float64 `json:"s"`         // time slept waiting for data
	P         float64 `json:"p"`         // timestamp of the last request
	Horizon   float64 `json:"horizon"`
	PosTime   float64 `json:"pos_ts"`
	Position  string  `json:"position"`
}

// Estimate is one line of /estimates:
//
//	pts,c,h,s,pos
type Estimate struct {
	PosTime  float64          `json:"pos_ts"`
	Clock    float64          `json:"clock"`
	Horizon  float64          `json:"horizon"`
	Sleep    float64          `json:"sleep"`
	Pose     orientation.Pose `json:"pose"`
	Position string           `json:"position"`
}

// ParseState parses a /state line.
func ParseState(line string) (TrialState, error) {
	nums, pos, err := splitNumbers(line, 7)
	if err != nil {
		return TrialState{}, fmt.Errorf("state %q: %w", line, err)
	}
	return TrialState{
		TrialTime: nums[0],
		Remaining: nums[1],
		V:         nums[2],
		S:         nums[3],
		P:         nums[4],
		Horizon:   nums[5],
		PosTime:   nums[6],
		Position:  pos,
	}, nil
}

// ParseEstimate parses one /estimates line. The position is decoded as
// x,y[,yaw]; a missing yaw is 0.
func ParseEstimate(line string) (Estimate, error) {
	nums, pos, err := splitNumbers(line, 4)
	if err != nil {
		return Estimate{}, fmt.Errorf("estimate %q: %w", line, err)
	}
	pose, err := ParsePosition(pos)
	if err != nil {
		return Estimate{}, fmt.Errorf("estimate %q: %w", line, err)
	}
	return Estimate{
		PosTime:  nums[0],
		Clock:    nums[1],
		Horizon:  nums[2],
		Sleep:    nums[3],
		Pose:     pose,
		Position: pos,
	}, nil
}

// ParsePosition decodes "x,y" or "x,y,yaw". Extra components, such as a
// floor number, are ignored.
func ParsePosition(pos string) (orientation.Pose, error) {
	parts := strings.Split(pos, ",")
	if len(parts) < 2 {
		return orientation.Pose{}, fmt.Errorf("position %q: %w", pos, ErrMalformed)
	}
	var v [3]float64
	for i := 0; i < len(parts) && i < 3; i++ {
		f, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return orientation.Pose{}, fmt.Errorf("position %q: %w", pos, ErrMalformed)
		}
		v[i] = f
	}
	return orientation.Pose{X: v[0], Y: v[1], Yaw: v[2]}, nil
}

// FormatPosition renders pose the way /nextdata expects it.
func FormatPosition(p orientation.Pose) string {
	return formatFloat(p.X, 1) + "," + formatFloat(p.Y, 1) + "," + formatFloat(p.Yaw, 1)
}

func formatFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}

// splitNumbers reads n leading numeric fields and returns the remainder,
// which may itself contain commas.
func splitNumbers(line string, n int) ([]float64, string, error) {
	parts := strings.SplitN(strings.TrimSpace(line), ",", n+1)
	if len(parts) != n+1 {
		return nil, "", ErrMalformed
	}
	nums := make([]float64, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return nil, "", ErrMalformed
		}
		nums[i] = f
	}
	return nums, parts[n], nil
}
