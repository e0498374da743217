// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package fusion

import (
	"cmp"
	"math"

	"golang.org/x/exp/slices"

	"github.com/relabs-tech/indoor_localizer/internal/orientation"
	"github.com/relabs-tech/indoor_localizer/internal/pdr"
)

// DefaultYawTolerance is the largest gap, in seconds, between a PDR
// estimate and the yaw sample associated with it.
const DefaultYawTolerance = 0.02

// IntegrateVIO applies every delta newer than fence to pose. Each local
// (dx, dy) is rotated into the global frame by the yaw accumulated so far.
func IntegrateVIO(pose orientation.Pose, fence float64, deltas []orientation.VioDelta) orientation.Pose {
	x, y, yaw := pose.X, pose.Y, pose.Yaw
	for _, d := range deltas {
		if d.Timestamp <= fence {
			continue
		}
		c, s := math.Cos(yaw), math.Sin(yaw)
		x += c*d.DX - s*d.DY
		y += s*d.DX + c*d.DY
		yaw = orientation.WrapAngle(yaw + d.DYaw)
	}
	return orientation.Pose{X: x, Y: y, Yaw: orientation.WrapAngle(yaw)}
}

// IntegratePDR dead-reckons pose through every PDR estimate newer than
// fence. Each estimate is paired with the yaw sample nearest in time, within
// tol seconds; estimates without a partner are skipped but still serve as
// the time reference for the next step.
func IntegratePDR(pose orientation.Pose, fence float64, estimates []pdr.Estimate, yaws []orientation.YawSample, tol float64) orientation.Pose {
	rows := make([]pdr.Estimate, 0, len(estimates))
	for _, e := range estimates {
		if e.Timestamp > fence {
			rows = append(rows, e)
		}
	}
	if len(rows) == 0 || len(yaws) == 0 {
		return pose
	}
	slices.SortStableFunc(rows, func(a, b pdr.Estimate) int { return cmp.Compare(a.Timestamp, b.Timestamp) })
	yaws = slices.Clone(yaws)
	slices.SortStableFunc(yaws, func(a, b orientation.YawSample) int { return cmp.Compare(a.Timestamp, b.Timestamp) })

	x, y, yaw := pose.X, pose.Y, pose.Yaw
	prev := fence
	for i, r := range rows {
		// Equal timestamps measure dt from the last strictly earlier row.
		if i > 0 && rows[i-1].Timestamp < r.Timestamp {
			prev = rows[i-1].Timestamp
		}
		ys, ok := nearestYaw(yaws, r.Timestamp, tol)
		if !ok || math.IsNaN(r.Velocity) {
			continue
		}
		dt := r.Timestamp - prev
		x += r.Velocity * math.Cos(yaw) * dt
		y += r.Velocity * math.Sin(yaw) * dt
		yaw = orientation.WrapAngle(yaw + ys.DYaw)
	}
	return orientation.Pose{X: x, Y: y, Yaw: orientation.WrapAngle(yaw)}
}

// nearestYaw finds the sample of sorted closest to ts. Ties go to the
// earlier sample.
func nearestYaw(sorted []orientation.YawSample, ts, tol float64) (orientation.YawSample, bool) {
	i, _ := slices.BinarySearchFunc(sorted, ts, func(s orientation.YawSample, t float64) int {
		return cmp.Compare(s.Timestamp, t)
	})
	// sorted[i] is the first sample with Timestamp >= ts. Step over equal
	// timestamps so the backward match is the last one at or before ts.
	for i < len(sorted) && sorted[i].Timestamp == ts {
		i++
	}

	best, found := orientation.YawSample{}, false
	bestGap := math.Inf(1)
	if i > 0 {
		best, bestGap, found = sorted[i-1], ts-sorted[i-1].Timestamp, true
	}
	if i < len(sorted) {
		if gap := sorted[i].Timestamp - ts; gap < bestGap {
			best, bestGap, found = sorted[i], gap, true
		}
	}
	if !found || bestGap > tol {
		return orientation.YawSample{}, false
	}
	return best, true
}
