// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package rmq implements a static range-minimum-query structure over
// a fixed array of integers, answering argmin queries over any
// sub-range in O(1) after an O(n log n) preprocessing pass.
//
// It trades precomputed-table size for O(1) hot-path queries via a
// classic sparse table (table[k][i] = argmin over the 2^k-wide window
// starting at i). This is O(n log n) words rather than the
// asymptotically optimal O(n) bits a Fischer-Heun/Cartesian-tree
// encoding would achieve; see DESIGN.md for why that tighter bound
// was not implemented in this pass.
package rmq

import "math/bits"

// RMQ answers argmin queries over a fixed array of values, comparing
// by value, breaking ties toward the leftmost (smallest) index, which
// is the convention spec.md's Sadakane C-array listing relies on.
type RMQ struct {
	values []uint64
	// sparse[k] holds, for each valid start i, the index of the
	// minimum value in values[i : i+2^k).
	sparse [][]int32
}

// Build constructs an RMQ over values. values is retained by
// reference for comparisons, not for storage of the table itself, so
// callers must keep it alive (and immutable) for the RMQ's lifetime.
func Build(values []uint64) *RMQ {
	n := len(values)
	r := &RMQ{values: values}
	if n == 0 {
		return r
	}

	levels := bits.Len(uint(n))
	r.sparse = make([][]int32, levels)

	base := make([]int32, n)
	for i := range base {
		base[i] = int32(i)
	}
	r.sparse[0] = base

	for k := 1; k < levels; k++ {
		half := 1 << (k - 1)
		width := n - (1 << k) + 1
		if width <= 0 {
			break
		}
		row := make([]int32, width)
		prev := r.sparse[k-1]
		for i := 0; i < width; i++ {
			left := prev[i]
			right := prev[i+half]
			if values[right] < values[left] {
				row[i] = right
			} else {
				row[i] = left
			}
		}
		r.sparse[k] = row
	}
	return r
}

// Len returns the number of elements in the underlying array.
func (r *RMQ) Len() int { return len(r.values) }

// ValueAt returns the raw value at index i, for callers (e.g.
// rmqlisting) that need to inspect the winning index's value after an
// ArgMin call rather than just its position.
func (r *RMQ) ValueAt(i int) uint64 { return r.values[i] }

// ArgMin returns the index of the smallest value in values[lo:hi]
// (inclusive both ends), breaking ties toward the smaller index. It
// panics if lo > hi or either bound is outside the array.
func (r *RMQ) ArgMin(lo, hi int) int {
	if lo < 0 || hi >= len(r.values) || lo > hi {
		panic("rmq: ArgMin range out of bounds")
	}
	width := hi - lo + 1
	k := bits.Len(uint(width)) - 1
	half := 1 << k

	a := r.sparse[k][lo]
	b := r.sparse[k][hi-half+1]
	if r.values[b] < r.values[a] {
		return int(b)
	}
	return int(a)
}
