// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package record

// Column names shared by several kinds.
const (
	ColAppTimestamp    = "app_timestamp"
	ColSensorTimestamp = "sensor_timestamp"
	ColTagID           = "tag_id"
	ColObjectID        = "object_id"
)

// columns is the positional schema of every kind, in the order the
// evaluation server encodes them after the kind tag.
var columns = map[Kind][]string{
	KindAcce: {ColAppTimestamp, ColSensorTimestamp, "acc_x", "acc_y", "acc_z", "accuracy"},
	KindGyro: {ColAppTimestamp, ColSensorTimestamp, "gyr_x", "gyr_y", "gyr_z", "accuracy"},
	KindMagn: {ColAppTimestamp, ColSensorTimestamp, "mag_x", "mag_y", "mag_z", "accuracy"},
	KindAhrs: {ColAppTimestamp, ColSensorTimestamp, "pitch_x", "roll_y", "yaw_z", "quat_2", "quat_3", "quat_4", "accuracy"},
	KindUwbp: {ColAppTimestamp, ColSensorTimestamp, ColTagID, "distance", "direction_vec_x", "direction_vec_y", "direction_vec_z"},
	KindUwbt: {ColAppTimestamp, ColSensorTimestamp, ColTagID, "distance", "aoa_azimuth", "aoa_elevation", "nlos"},
	KindGpos: {ColAppTimestamp, ColSensorTimestamp, ColObjectID, "location_x", "location_y", "location_z", "quat_x", "quat_y", "quat_z"},
	KindViso: {ColAppTimestamp, ColSensorTimestamp, "location_x", "location_y", "location_z", "quat_x", "quat_y", "quat_z"},
}

// Columns returns a copy of the schema for k, or nil for an unknown kind.
func Columns(k Kind) []string {
	cols, ok := columns[k]
	if !ok {
		return nil
	}
	out := make([]string, len(cols))
	copy(out, cols)
	return out
}

// isIdentifier reports whether a column keeps its raw text.
func isIdentifier(col string) bool {
	return col == ColTagID || col == ColObjectID
}
