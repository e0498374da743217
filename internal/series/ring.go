// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package series provides the bounded history buffers behind every
// per-sensor sequence kept by the estimator.
package series

// DefaultCapacity is used when a non-positive capacity is requested.
const DefaultCapacity = 4096

// Ring is a fixed-capacity append log. Once full, each Push evicts the
// oldest element. Index 0 is always the oldest retained element.
type Ring[T any] struct {
	buf   []T
	start int
	n     int
	total uint64
}

// NewRing returns an empty ring holding at most capacity elements.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

// Push appends v, evicting the oldest element when the ring is full.
func (r *Ring[T]) Push(v T) {
	r.total++
	if r.n < len(r.buf) {
		r.buf[(r.start+r.n)%len(r.buf)] = v
		r.n++
		return
	}
	r.buf[r.start] = v
	r.start = (r.start + 1) % len(r.buf)
}

// Len is the number of retained elements.
func (r *Ring[T]) Len() int { return r.n }

// Cap is the retention limit.
func (r *Ring[T]) Cap() int { return len(r.buf) }

// Total counts every Push, including evicted elements.
func (r *Ring[T]) Total() uint64 { return r.total }

// At returns the i-th retained element, oldest first. It panics when i is
// out of range, like a slice index.
func (r *Ring[T]) At(i int) T {
	if i < 0 || i >= r.n {
		panic("series: index out of range")
	}
	return r.buf[(r.start+i)%len(r.buf)]
}

// Last returns the newest element.
func (r *Ring[T]) Last() (T, bool) {
	var zero T
	if r.n == 0 {
		return zero, false
	}
	return r.At(r.n - 1), true
}

// Tail copies the newest k elements, oldest first.
func (r *Ring[T]) Tail(k int) []T {
	if k > r.n {
		k = r.n
	}
	if k <= 0 {
		return nil
	}
	out := make([]T, 0, k)
	for i := r.n - k; i < r.n; i++ {
		out = append(out, r.At(i))
	}
	return out
}

// Slice copies every retained element, oldest first.
func (r *Ring[T]) Slice() []T {
	return r.Tail(r.n)
}

// Filter copies the retained elements for which keep returns true, oldest first.
func (r *Ring[T]) Filter(keep func(T) bool) []T {
	var out []T
	for i := 0; i < r.n; i++ {
		if v := r.At(i); keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// Reverse calls fn from newest to oldest until fn returns false.
func (r *Ring[T]) Reverse(fn func(T) bool) {
	for i := r.n - 1; i >= 0; i-- {
		if !fn(r.At(i)) {
			return
		}
	}
}
