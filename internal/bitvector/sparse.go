// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package bitvector

import (
	"fmt"
	"io"

	"github.com/duscob/drl/internal/intvec"
	"github.com/duscob/drl/internal/persist"
)

// SparseBitVector is an Elias–Fano encoding of a non-decreasing
// sequence of m values drawn from [0, u). It is used wherever the
// design calls for a "sparse bitvector": leafStarts, ChunkStore
// offsets, and ILCP run-head positions. Compared to a dense
// BitVector over a universe of size u it uses roughly
// m*(2 + log2(u/m)) bits instead of u bits.
//
// Layout follows the standard two-level Elias–Fano split: the low
// lowBits of every value are stored verbatim in a PackedIntVector: the
// high bits are unary-coded (value i contributes a single set bit at
// position high(i)+i in a dense BitVector of length m + 2^highBits),
// so that Select1 on the high-bit BitVector combined with a direct
// low-bit lookup reconstructs Select on the original sequence, and
// Rank is the mirror computation.
type SparseBitVector struct {
	m, u    uint64
	lowBits uint

	low  *intvec.PackedIntVector // m values, lowBits wide each
	high *BitVector              // unary-coded high bits, length m + 2^highBits
}

// BuildSparse constructs a SparseBitVector from a non-decreasing
// sequence of values, each < universe; repeated values are kept as
// separate entries. Values must be supplied in order; this is a
// one-shot builder, not an incremental structure.
func BuildSparse(universe uint64, values []uint64) *SparseBitVector {
	m := uint64(len(values))

	lowBits := uint(0)
	if m > 0 && universe > m {
		lowBits = WidthFor(universe / m)
	}

	highUniverse := universe>>lowBits + 1
	high := New(m + highUniverse)
	low := intvec.New(int(m), lowBits)

	for i, v := range values {
		hi := v >> lowBits
		var lo uint64
		if lowBits > 0 {
			lo = v & (1<<lowBits - 1)
		}
		low.Set(i, lo)
		// unary code: the i-th value contributes one set bit at hi+i,
		// so consecutive equal highs occupy consecutive positions.
		high.Set(uint64(i) + hi)
	}
	high.Freeze()

	return &SparseBitVector{
		m:       m,
		u:       universe,
		lowBits: lowBits,
		low:     low,
		high:    high,
	}
}

// WidthFor is re-exported for callers that only import bitvector.
func WidthFor(maxValue uint64) uint { return intvec.WidthFor(maxValue) }

// Len returns the number of stored values (m).
func (s *SparseBitVector) Len() uint64 { return s.m }

// Universe returns the declared universe size (u).
func (s *SparseBitVector) Universe() uint64 { return s.u }

// Select1 returns the k-th stored value (0-indexed).
func (s *SparseBitVector) Select1(k uint64) (uint64, bool) {
	if k >= s.m {
		return 0, false
	}
	pos, ok := s.high.Select1(k)
	if !ok {
		return 0, false
	}
	hi := pos - k
	var lo uint64
	if s.lowBits > 0 {
		lo = s.low.Get(int(k))
	}
	return hi<<s.lowBits | lo, true
}

// Test reports whether value v is present in the encoded set.
func (s *SparseBitVector) Test(v uint64) bool {
	rank := s.Rank1(v)
	got, ok := s.Select1(rank)
	return ok && got == v
}

// Rank1 returns the number of stored values strictly less than v.
func (s *SparseBitVector) Rank1(v uint64) uint64 {
	if s.m == 0 {
		return 0
	}

	// binary search the smallest rank k such that Select1(k) >= v
	lo, hiBound := uint64(0), s.m
	for lo < hiBound {
		mid := (lo + hiBound) / 2
		val, _ := s.Select1(mid)
		if val < v {
			lo = mid + 1
		} else {
			hiBound = mid
		}
	}
	return lo
}

// Predecessor returns the largest stored value <= v, or (0, false).
func (s *SparseBitVector) Predecessor(v uint64) (uint64, bool) {
	rank := s.Rank1(v + 1)
	if rank == 0 {
		return 0, false
	}
	return s.Select1(rank - 1)
}

// Successor returns the smallest stored value >= v, or (0, false).
func (s *SparseBitVector) Successor(v uint64) (uint64, bool) {
	rank := s.Rank1(v)
	return s.Select1(rank)
}

// WriteTo serializes universe (u64), count m (u64), lowBits (u8), then
// the low PackedIntVector and the high BitVector.
func (s *SparseBitVector) WriteTo(w io.Writer) error {
	if err := persist.WriteUint64(w, s.u); err != nil {
		return err
	}
	if err := persist.WriteUint64(w, s.m); err != nil {
		return err
	}
	if err := persist.WriteByte(w, uint8(s.lowBits)); err != nil {
		return err
	}
	if err := s.low.WriteTo(w); err != nil {
		return err
	}
	return s.high.WriteTo(w)
}

// ReadSparse deserializes a SparseBitVector written by WriteTo.
func ReadSparse(r io.Reader) (*SparseBitVector, error) {
	u, err := persist.ReadUint64(r)
	if err != nil {
		return nil, fmt.Errorf("bitvector: sparse: reading universe: %w", err)
	}
	m, err := persist.ReadUint64(r)
	if err != nil {
		return nil, fmt.Errorf("bitvector: sparse: reading count: %w", err)
	}
	lowBits, err := persist.ReadByte(r)
	if err != nil {
		return nil, fmt.Errorf("bitvector: sparse: reading lowBits: %w", err)
	}
	low, err := intvec.Read(r)
	if err != nil {
		return nil, fmt.Errorf("bitvector: sparse: reading low vector: %w", err)
	}
	high, err := ReadBitVector(r)
	if err != nil {
		return nil, fmt.Errorf("bitvector: sparse: reading high vector: %w", err)
	}
	if err := persist.CheckSize("low.Len", m, uint64(low.Len())); err != nil {
		return nil, err
	}
	return &SparseBitVector{
		m:       m,
		u:       u,
		lowBits: uint(lowBits),
		low:     low,
		high:    high,
	}, nil
}
