// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package record

// Kind identifies the sensor stream a line belongs to.
type Kind int

const (
	KindUnknown Kind = iota
	KindAcce         // accelerometer
	KindGyro         // gyroscope
	KindMagn         // magnetometer
	KindAhrs         // attitude (pitch/roll/yaw in degrees)
	KindUwbp         // UWB ranging with direction vector
	KindUwbt         // UWB ranging with angle of arrival
	KindGpos         // reference pose of a tracked object or anchor
	KindViso         // visual odometry pose
)

var kindNames = map[Kind]string{
	KindAcce: "ACCE",
	KindGyro: "GYRO",
	KindMagn: "MAGN",
	KindAhrs: "AHRS",
	KindUwbp: "UWBP",
	KindUwbt: "UWBT",
	KindGpos: "GPOS",
	KindViso: "VISO",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "UNKNOWN"
}

// ParseKind maps a line tag such as "ACCE" to its Kind.
func ParseKind(tag string) (Kind, bool) {
	for k, n := range kindNames {
		if n == tag {
			return k, true
		}
	}
	return KindUnknown, false
}

// Kinds lists every known kind in wire order.
func Kinds() []Kind {
	return []Kind{KindAcce, KindGyro, KindMagn, KindAhrs, KindUwbp, KindUwbt, KindGpos, KindViso}
}
