// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"fmt"
	"math"
)

// Pose is the canonical planar pose of the tracked agent.
// X and Y are meters in the trial frame, Yaw is radians in (-π, π].
type Pose struct {
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	Yaw float64 `json:"yaw"`
}

func (p Pose) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", p.X, p.Y, p.Yaw)
}

// WrapAngle maps an angle in radians onto (-π, π].
func WrapAngle(angle float64) float64 {
	if angle > -math.Pi && angle <= math.Pi {
		return angle
	}
	w := math.Mod(angle, 2*math.Pi)
	if w < 0 {
		w += 2 * math.Pi
	}
	if w > math.Pi {
		w -= 2 * math.Pi
	}
	if w <= -math.Pi {
		w += 2 * math.Pi
	}
	return w
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}
