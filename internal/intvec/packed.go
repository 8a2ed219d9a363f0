// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package intvec implements PackedIntVector, a bit-compressed sequence
// of fixed-width unsigned integers with random access by index.
//
// The payload is a uniform bit-width integer packed across []uint64
// words rather than one full word per slot — this is the storage
// layout for the document array, SLP child/span-length vectors, and
// every other dense integer sequence in this module.
package intvec

import (
	"fmt"
	"io"
	"math/bits"

	"github.com/duscob/drl/internal/persist"
)

// PackedIntVector is a dense sequence of n integers, each stored in
// exactly width bits (width in [0,64]), packed across []uint64 words.
// Set is a construction-time operation; once a structure built on top
// of a PackedIntVector is published for queries it is never mutated
// again.
type PackedIntVector struct {
	words []uint64
	width uint
	n     int
}

// New allocates a PackedIntVector holding n integers of the given bit
// width, all initialized to zero.
func New(n int, width uint) *PackedIntVector {
	if width > 64 {
		panic(fmt.Sprintf("intvec: width %d exceeds 64", width))
	}
	var totalBits uint64
	if width > 0 {
		totalBits = uint64(n) * uint64(width)
	}
	nWords := (totalBits + 63) / 64
	return &PackedIntVector{
		words: make([]uint64, nWords),
		width: width,
		n:     n,
	}
}

// WidthFor returns the minimal bit width able to represent every value
// in [0, maxValue], i.e. ceil(log2(maxValue+1)), with 0 mapping to a
// width of 0 (a vector whose every value is trivially zero).
func WidthFor(maxValue uint64) uint {
	if maxValue == 0 {
		return 0
	}
	return uint(bits.Len64(maxValue))
}

// Len returns the number of integers stored.
func (v *PackedIntVector) Len() int { return v.n }

// BitWidth returns the fixed width, in bits, of each stored integer.
func (v *PackedIntVector) BitWidth() uint { return v.width }

// Get returns the integer at index i. Panics if i is out of range.
func (v *PackedIntVector) Get(i int) uint64 {
	if i < 0 || i >= v.n {
		panic(fmt.Sprintf("intvec: Get(%d) out of range [0,%d)", i, v.n))
	}
	if v.width == 0 {
		return 0
	}

	bitPos := uint64(i) * uint64(v.width)
	wordIdx := bitPos / 64
	bitOff := bitPos % 64

	lo := v.words[wordIdx] >> bitOff
	if bitOff+uint64(v.width) <= 64 {
		if v.width == 64 {
			return lo
		}
		return lo & (1<<v.width - 1)
	}

	// value straddles two words
	rem := bitOff + uint64(v.width) - 64
	hi := v.words[wordIdx+1] & (1<<rem - 1)
	return lo | (hi << (64 - bitOff))
}

// Set stores val at index i, truncated to the vector's bit width.
// Panics if i is out of range.
func (v *PackedIntVector) Set(i int, val uint64) {
	if i < 0 || i >= v.n {
		panic(fmt.Sprintf("intvec: Set(%d) out of range [0,%d)", i, v.n))
	}
	if v.width == 0 {
		return
	}
	if v.width < 64 {
		val &= 1<<v.width - 1
	}

	bitPos := uint64(i) * uint64(v.width)
	wordIdx := bitPos / 64
	bitOff := bitPos % 64

	mask := uint64(1)<<v.width - 1
	if v.width == 64 {
		mask = ^uint64(0)
	}

	v.words[wordIdx] &^= mask << bitOff
	v.words[wordIdx] |= val << bitOff

	if bitOff+uint64(v.width) > 64 {
		rem := bitOff + uint64(v.width) - 64
		v.words[wordIdx+1] &^= mask >> (uint64(v.width) - rem)
		v.words[wordIdx+1] |= val >> (64 - bitOff)
	}
}

// WriteTo serializes n (u64), width (u8), then the raw words.
func (v *PackedIntVector) WriteTo(w io.Writer) error {
	if err := persist.WriteUint64(w, uint64(v.n)); err != nil {
		return err
	}
	if err := persist.WriteByte(w, uint8(v.width)); err != nil {
		return err
	}
	return persist.WriteUint64Slice(w, v.words)
}

// Read deserializes a PackedIntVector written by WriteTo.
func Read(r io.Reader) (*PackedIntVector, error) {
	n64, err := persist.ReadUint64(r)
	if err != nil {
		return nil, fmt.Errorf("intvec: reading length: %w", err)
	}
	width, err := persist.ReadByte(r)
	if err != nil {
		return nil, fmt.Errorf("intvec: reading width: %w", err)
	}
	words, err := persist.ReadUint64Slice(r)
	if err != nil {
		return nil, fmt.Errorf("intvec: reading words: %w", err)
	}

	v := New(int(n64), uint(width))
	if len(words) != len(v.words) {
		return nil, fmt.Errorf("intvec: %w: words", persist.ErrSizeMismatch)
	}
	copy(v.words, words)
	return v, nil
}
