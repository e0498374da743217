// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package uwb resolves UWB range and angle-of-arrival measurements against
// the known pose of the tag that produced them.
package uwb

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/relabs-tech/indoor_localizer/internal/orientation"
	"github.com/relabs-tech/indoor_localizer/internal/record"
)

// AnchorLookup returns the newest reference pose of an object id.
type AnchorLookup interface {
	Anchor(objectID string) (record.Gpos, bool)
}

// SphericalToCartesian converts a range and angle of arrival into an offset
// in the tag frame. Azimuth is measured clockwise from the tag's +y axis.
func SphericalToCartesian(distance, azimuthDeg, elevationDeg float64) r3.Vec {
	az := orientation.DegToRad(azimuthDeg)
	el := orientation.DegToRad(elevationDeg)
	return r3.Vec{
		X: distance * math.Cos(el) * math.Sin(az),
		Y: distance * math.Cos(el) * math.Cos(az),
		Z: distance * math.Sin(el),
	}
}

// GlobalPoint maps a measurement into the global frame using the pose of
// the tag that reported it.
func GlobalPoint(meas record.Uwbt, anchor record.Gpos) r3.Vec {
	local := SphericalToCartesian(meas.Distance, meas.Azimuth, meas.Elevation)
	q := orientation.RecoverQuat(anchor.QX, anchor.QY, anchor.QZ)
	return r3.Add(orientation.Rotate(q, local), r3.Vec{X: anchor.X, Y: anchor.Y, Z: anchor.Z})
}

// Correct overwrites the planar position of pose with the measured point.
// Yaw is kept as is: the angle of arrival is not used to refine heading.
func Correct(pose orientation.Pose, meas record.Uwbt, anchor record.Gpos) orientation.Pose {
	p := GlobalPoint(meas, anchor)
	return orientation.Pose{X: p.X, Y: p.Y, Yaw: pose.Yaw}
}

// Resolve looks up the tag of meas and applies Correct. When the tag has no
// known pose the input pose is returned with ok == false.
func Resolve(pose orientation.Pose, meas record.Uwbt, anchors AnchorLookup) (orientation.Pose, bool) {
	anchor, ok := anchors.Anchor(meas.TagID)
	if !ok {
		return pose, false
	}
	return Correct(pose, meas, anchor), true
}
