// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// RecoverQuat rebuilds a rotation quaternion from its transmitted vector
// part. The scalar part is sqrt(1 - x² - y² - z²), clamped to 0 when the
// vector part already has norm above one.
func RecoverQuat(x, y, z float64) quat.Number {
	n := x*x + y*y + z*z
	w := 0.0
	if n <= 1 {
		w = math.Sqrt(1 - n)
	}
	return quat.Number{Real: w, Imag: x, Jmag: y, Kmag: z}
}

// Normalize scales q to unit norm. The zero quaternion maps to identity.
func Normalize(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n == 0 {
		return quat.Number{Real: 1}
	}
	return quat.Scale(1/n, q)
}

// YawFromQuat returns the heading (rotation about +z) of q.
//
//	yaw = atan2(2(wz + xy), 1 - 2(y² + z²))
func YawFromQuat(q quat.Number) float64 {
	q = Normalize(q)
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	return math.Atan2(2.0*(w*z+x*y), 1.0-2.0*(y*y+z*z))
}

// Rotate applies the rotation q to v (q is normalized first).
func Rotate(q quat.Number, v r3.Vec) r3.Vec {
	q = Normalize(q)
	p := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	r := quat.Mul(quat.Mul(q, p), quat.Conj(q))
	return r3.Vec{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}
