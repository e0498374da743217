// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package store keeps the raw sensor histories of one localization session.
package store

import (
	"github.com/relabs-tech/indoor_localizer/internal/record"
	"github.com/relabs-tech/indoor_localizer/internal/series"
)

// Store owns one append-only history per sensor kind plus the newest
// sensor timestamp seen across all of them.
type Store struct {
	acce *series.Ring[record.Acce]
	gyro *series.Ring[record.Gyro]
	magn *series.Ring[record.Magn]
	ahrs *series.Ring[record.Ahrs]
	uwbp *series.Ring[record.Uwbp]
	uwbt *series.Ring[record.Uwbt]
	gpos *series.Ring[record.Gpos]
	viso *series.Ring[record.Viso]

	// anchors holds the newest GPOS per object id, so lookups survive
	// eviction from the gpos history.
	anchors map[string]record.Gpos

	newest     float64
	haveNewest bool
}

// New returns a store retaining at most capacity samples per kind.
func New(capacity int) *Store {
	return &Store{
		acce:    series.NewRing[record.Acce](capacity),
		gyro:    series.NewRing[record.Gyro](capacity),
		magn:    series.NewRing[record.Magn](capacity),
		ahrs:    series.NewRing[record.Ahrs](capacity),
		uwbp:    series.NewRing[record.Uwbp](capacity),
		uwbt:    series.NewRing[record.Uwbt](capacity),
		gpos:    series.NewRing[record.Gpos](capacity),
		viso:    series.NewRing[record.Viso](capacity),
		anchors: make(map[string]record.Gpos),
	}
}

// Add appends s to the history of its kind and advances the newest timestamp.
func (st *Store) Add(s record.Sample) {
	switch s := s.(type) {
	case record.Acce:
		st.acce.Push(s)
	case record.Gyro:
		st.gyro.Push(s)
	case record.Magn:
		st.magn.Push(s)
	case record.Ahrs:
		st.ahrs.Push(s)
	case record.Uwbp:
		st.uwbp.Push(s)
	case record.Uwbt:
		st.uwbt.Push(s)
	case record.Gpos:
		st.gpos.Push(s)
		st.anchors[s.ObjectID] = s
	case record.Viso:
		st.viso.Push(s)
	default:
		return
	}

	if ts := s.Timestamp(); !st.haveNewest || ts > st.newest {
		st.newest = ts
		st.haveNewest = true
	}
}

// Newest is the largest sensor timestamp added so far.
func (st *Store) Newest() (float64, bool) { return st.newest, st.haveNewest }

// Anchor returns the newest GPOS sample of objectID.
func (st *Store) Anchor(objectID string) (record.Gpos, bool) {
	g, ok := st.anchors[objectID]
	return g, ok
}

// LatestUWBT returns the most recently added UWBT sample.
func (st *Store) LatestUWBT() (record.Uwbt, bool) { return st.uwbt.Last() }

// LatestAcce returns the newest accelerometer samples, oldest first.
func (st *Store) LatestAcce(n int) []record.Acce { return st.acce.Tail(n) }

// Len reports how many samples of kind k are retained.
func (st *Store) Len(k record.Kind) int {
	switch k {
	case record.KindAcce:
		return st.acce.Len()
	case record.KindGyro:
		return st.gyro.Len()
	case record.KindMagn:
		return st.magn.Len()
	case record.KindAhrs:
		return st.ahrs.Len()
	case record.KindUwbp:
		return st.uwbp.Len()
	case record.KindUwbt:
		return st.uwbt.Len()
	case record.KindGpos:
		return st.gpos.Len()
	case record.KindViso:
		return st.viso.Len()
	}
	return 0
}

// Counts returns the retained sample count per kind name, for logging.
func (st *Store) Counts() map[string]int {
	out := make(map[string]int, 8)
	for _, k := range record.Kinds() {
		out[k.String()] = st.Len(k)
	}
	return out
}
