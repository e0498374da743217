// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package record

import (
	"errors"
	"fmt"
)

// ErrMissingField is returned by Decode when a column the estimator
// consumes is absent or not numeric.
var ErrMissingField = errors.New("missing field")

// Sample is one typed sensor sample. The set of implementations is closed:
// Acce, Gyro, Magn, Ahrs, Uwbp, Uwbt, Gpos and Viso.
type Sample interface {
	Kind() Kind
	Timestamp() float64
	isSample()
}

// Header carries the timestamps every sample has, in seconds.
type Header struct {
	AppTimestamp    float64 `json:"app_timestamp"`
	SensorTimestamp float64 `json:"sensor_timestamp"`
}

// Timestamp returns the sensor timestamp used for all ordering decisions.
func (h Header) Timestamp() float64 { return h.SensorTimestamp }

// Acce is an accelerometer sample in g.
type Acce struct {
	Header
	X, Y, Z  float64
	Accuracy float64
}

type Gyro struct {
	Header
	X, Y, Z  float64
	Accuracy float64
}

type Magn struct {
	Header
	X, Y, Z  float64
	Accuracy float64
}

// Ahrs is an attitude sample; angles are in degrees.
type Ahrs struct {
	Header
	Pitch, Roll, Yaw    float64
	Quat2, Quat3, Quat4 float64
	Accuracy            float64
}

type Uwbp struct {
	Header
	TagID            string
	Distance         float64
	DirX, DirY, DirZ float64
}

// Uwbt is a UWB range plus angle of arrival measured by tag TagID.
// Azimuth and Elevation are in degrees.
type Uwbt struct {
	Header
	TagID              string
	Distance           float64
	Azimuth, Elevation float64
	NLOS               float64
}

// Gpos is the reference pose of ObjectID. Only the vector part of the
// orientation quaternion is transmitted.
type Gpos struct {
	Header
	ObjectID   string
	X, Y, Z    float64
	QX, QY, QZ float64
}

// Viso is a visual odometry pose in the odometry frame.
type Viso struct {
	Header
	X, Y, Z    float64
	QX, QY, QZ float64
}

func (Acce) Kind() Kind { return KindAcce }
func (Gyro) Kind() Kind { return KindGyro }
func (Magn) Kind() Kind { return KindMagn }
func (Ahrs) Kind() Kind { return KindAhrs }
func (Uwbp) Kind() Kind { return KindUwbp }
func (Uwbt) Kind() Kind { return KindUwbt }
func (Gpos) Kind() Kind { return KindGpos }
func (Viso) Kind() Kind { return KindViso }

func (Acce) isSample() {}
func (Gyro) isSample() {}
func (Magn) isSample() {}
func (Ahrs) isSample() {}
func (Uwbp) isSample() {}
func (Uwbt) isSample() {}
func (Gpos) isSample() {}
func (Viso) isSample() {}

// decoder collects the first missing required column.
type decoder struct {
	rec Record
	err error
}

func (d *decoder) num(col string) float64 {
	v, ok := d.rec.Float(col)
	if !ok && d.err == nil {
		d.err = fmt.Errorf("%s %s: %w", d.rec.Kind, col, ErrMissingField)
	}
	return v
}

// opt reads a column the estimator does not depend on; absent values read as zero.
func (d *decoder) opt(col string) float64 {
	v, _ := d.rec.Float(col)
	return v
}

func (d *decoder) text(col string) string {
	v, ok := d.rec.Text(col)
	if !ok && d.err == nil {
		d.err = fmt.Errorf("%s %s: %w", d.rec.Kind, col, ErrMissingField)
	}
	return v
}

func (d *decoder) header() Header {
	return Header{
		AppTimestamp:    d.opt(ColAppTimestamp),
		SensorTimestamp: d.num(ColSensorTimestamp),
	}
}

// Decode converts a normalized record into its typed sample.
func Decode(rec Record) (Sample, error) {
	d := &decoder{rec: rec}
	var s Sample

	switch rec.Kind {
	case KindAcce:
		s = Acce{Header: d.header(), X: d.num("acc_x"), Y: d.num("acc_y"), Z: d.num("acc_z"), Accuracy: d.opt("accuracy")}
	case KindGyro:
		s = Gyro{Header: d.header(), X: d.opt("gyr_x"), Y: d.opt("gyr_y"), Z: d.opt("gyr_z"), Accuracy: d.opt("accuracy")}
	case KindMagn:
		s = Magn{Header: d.header(), X: d.opt("mag_x"), Y: d.opt("mag_y"), Z: d.opt("mag_z"), Accuracy: d.opt("accuracy")}
	case KindAhrs:
		s = Ahrs{
			Header:   d.header(),
			Pitch:    d.opt("pitch_x"),
			Roll:     d.opt("roll_y"),
			Yaw:      d.num("yaw_z"),
			Quat2:    d.opt("quat_2"),
			Quat3:    d.opt("quat_3"),
			Quat4:    d.opt("quat_4"),
			Accuracy: d.opt("accuracy"),
		}
	case KindUwbp:
		s = Uwbp{
			Header:   d.header(),
			TagID:    d.text(ColTagID),
			Distance: d.opt("distance"),
			DirX:     d.opt("direction_vec_x"),
			DirY:     d.opt("direction_vec_y"),
			DirZ:     d.opt("direction_vec_z"),
		}
	case KindUwbt:
		s = Uwbt{
			Header:    d.header(),
			TagID:     d.text(ColTagID),
			Distance:  d.num("distance"),
			Azimuth:   d.num("aoa_azimuth"),
			Elevation: d.num("aoa_elevation"),
			NLOS:      d.opt("nlos"),
		}
	case KindGpos:
		s = Gpos{
			Header:   d.header(),
			ObjectID: d.text(ColObjectID),
			X:        d.num("location_x"),
			Y:        d.num("location_y"),
			Z:        d.num("location_z"),
			QX:       d.num("quat_x"),
			QY:       d.num("quat_y"),
			QZ:       d.num("quat_z"),
		}
	case KindViso:
		s = Viso{
			Header: d.header(),
			X:      d.num("location_x"),
			Y:      d.num("location_y"),
			Z:      d.num("location_z"),
			QX:     d.num("quat_x"),
			QY:     d.num("quat_y"),
			QZ:     d.num("quat_z"),
		}
	default:
		return nil, fmt.Errorf("decode: unknown kind %d", rec.Kind)
	}

	if d.err != nil {
		return nil, d.err
	}
	return s, nil
}

// Parse normalizes and decodes a single line. ok is false when the line
// is blank or of an unknown kind; err is set when a known line cannot be
// decoded.
func Parse(line string) (s Sample, ok bool, err error) {
	rec, ok := Normalize(line)
	if !ok {
		return nil, false, nil
	}
	s, err = Decode(rec)
	if err != nil {
		return nil, true, err
	}
	return s, true, nil
}
