// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package fusion

import (
	"fmt"

	"github.com/relabs-tech/indoor_localizer/internal/orientation"
)

// Status is the initialization state of an Estimator.
type Status int

const (
	Initializing Status = iota
	Initialized
)

func (s Status) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Initialized:
		return "initialized"
	}
	return "unknown"
}

// MarshalText renders the status by name in JSON payloads.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Status) UnmarshalText(b []byte) error {
	switch string(b) {
	case "initializing":
		*s = Initializing
	case "initialized":
		*s = Initialized
	default:
		return fmt.Errorf("fusion: unknown status %q", b)
	}
	return nil
}

// Source names the dead-reckoning input used by a fusion step.
type Source string

const (
	SourceNone Source = "none"
	SourceVIO  Source = "vio"
	SourcePDR  Source = "pdr"
)

// State is everything a fusion step reads and produces. It is replaced as a
// whole, never updated field by field.
type State struct {
	Status Status           `json:"status"`
	Pose   orientation.Pose `json:"pose"`
	// Fence is the newest sensor timestamp already folded into Pose.
	Fence float64 `json:"fence"`
}

// Report describes the outcome of the latest Estimate call.
type Report struct {
	Timestamp    float64          `json:"timestamp"`
	Pose         orientation.Pose `json:"pose"`
	Status       Status           `json:"status"`
	Source       Source           `json:"source"`
	UWBCorrected bool             `json:"uwb_corrected"`
}
