// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package bitvector implements succinct, read-mostly bitvectors with
// O(1) rank and logarithmic-time select, plus a sparse (Elias–Fano style) encoding for
// strictly increasing integer sequences.
//
// The dense BitVector is a word-packed []uint64 (popcount via
// math/bits, no third-party dependency): Test/Set/Clear operate on
// single words, and Rank1 sums word popcounts via a small checkpoint
// index sampled every blockWords words. The prefix-popcount itself is
// cheap to compute from scratch, but BitVector backs read-only index
// structures queried far more often than they are built, so the
// checkpoint index is precomputed once and cached.
package bitvector

import (
	"fmt"
	"io"
	"math/bits"

	"github.com/duscob/drl/internal/persist"
)

const (
	wordBits  = 64
	blockBits = 512 // one rank checkpoint every 8 words
)

// BitVector is a fixed-length, word-packed bit sequence supporting
// O(1) rank and O(log blocks) select after Freeze has been called.
// It is built by repeated Set calls and is read-only once frozen,
// matching the "no mutation after construction" lifecycle in the
// design notes.
type BitVector struct {
	words       []uint64
	n           uint64 // length in bits
	checkpoints []uint32
	frozen      bool
}

// New allocates a BitVector able to hold n bits, all initially zero.
func New(n uint64) *BitVector {
	return &BitVector{
		words: make([]uint64, wordsFor(n)),
		n:     n,
	}
}

func wordsFor(n uint64) uint64 {
	return (n + wordBits - 1) / wordBits
}

// Len returns the number of bits in the vector.
func (b *BitVector) Len() uint64 { return b.n }

// Set sets bit i to 1. Panics if i >= Len. It is a construction-time
// operation; calling it after Freeze produces a BitVector whose
// cached rank checkpoints are stale.
func (b *BitVector) Set(i uint64) {
	if i >= b.n {
		panic(fmt.Sprintf("bitvector: Set(%d) out of range [0,%d)", i, b.n))
	}
	b.words[i/wordBits] |= 1 << (i % wordBits)
}

// Test reports whether bit i is set. Out-of-range indices return false.
func (b *BitVector) Test(i uint64) bool {
	if i >= b.n {
		return false
	}
	return b.words[i/wordBits]&(1<<(i%wordBits)) != 0
}

// Freeze builds the rank checkpoint index. Call once after all Set
// calls and before any Rank1/Select1/Predecessor/Successor query.
func (b *BitVector) Freeze() *BitVector {
	nBlocks := (len(b.words) + blockWords - 1) / blockWords
	b.checkpoints = make([]uint32, nBlocks+1)

	var cum uint32
	for blk := 0; blk < nBlocks; blk++ {
		b.checkpoints[blk] = cum
		lo := blk * blockWords
		hi := lo + blockWords
		if hi > len(b.words) {
			hi = len(b.words)
		}
		for _, w := range b.words[lo:hi] {
			cum += uint32(bits.OnesCount64(w))
		}
	}
	b.checkpoints[nBlocks] = cum
	b.frozen = true
	return b
}

const blockWords = blockBits / wordBits

// Count returns the total number of set bits.
func (b *BitVector) Count() uint64 {
	if b.frozen {
		return uint64(b.checkpoints[len(b.checkpoints)-1])
	}
	var cnt uint64
	for _, w := range b.words {
		cnt += uint64(bits.OnesCount64(w))
	}
	return cnt
}

// Rank1 returns the number of set bits in [0, i). i may equal Len.
func (b *BitVector) Rank1(i uint64) uint64 {
	if i > b.n {
		i = b.n
	}
	wordIdx := i / wordBits
	blk := int(wordIdx) / blockWords
	rank := uint64(b.checkpointAt(blk))

	lo := blk * blockWords
	for w := lo; w < int(wordIdx); w++ {
		rank += uint64(bits.OnesCount64(b.words[w]))
	}

	if rem := i % wordBits; rem != 0 {
		rank += uint64(bits.OnesCount64(b.words[wordIdx] & (1<<rem - 1)))
	}
	return rank
}

func (b *BitVector) checkpointAt(blk int) uint32 {
	if b.frozen {
		return b.checkpoints[blk]
	}
	var cum uint32
	lo := blk * blockWords
	for w := 0; w < lo && w < len(b.words); w++ {
		cum += uint32(bits.OnesCount64(b.words[w]))
	}
	return cum
}

// Select1 returns the position of the k-th set bit (0-indexed) and
// true, or (0, false) if the vector has fewer than k+1 set bits.
func (b *BitVector) Select1(k uint64) (uint64, bool) {
	if k >= b.Count() {
		return 0, false
	}

	// binary search the checkpoint block containing the k-th one bit
	lo, hi := 0, len(b.checkpoints)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if uint64(b.checkpointAt(mid)) <= k {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	blk := lo
	remaining := k - uint64(b.checkpointAt(blk))

	wStart := blk * blockWords
	wEnd := wStart + blockWords
	if wEnd > len(b.words) {
		wEnd = len(b.words)
	}
	for w := wStart; w < wEnd; w++ {
		word := b.words[w]
		cnt := uint64(bits.OnesCount64(word))
		if remaining < cnt {
			// find the (remaining)-th set bit within word
			for bit := uint(0); bit < wordBits; bit++ {
				if word&(1<<bit) != 0 {
					if remaining == 0 {
						return uint64(w)*wordBits + uint64(bit), true
					}
					remaining--
				}
			}
		}
		remaining -= cnt
	}
	return 0, false
}

// Predecessor returns the largest set bit <= i, or (0, false) if none.
func (b *BitVector) Predecessor(i uint64) (uint64, bool) {
	if i >= b.n {
		i = b.n - 1
	}
	rank := b.Rank1(i + 1)
	if rank == 0 {
		return 0, false
	}
	return b.Select1(rank - 1)
}

// Successor returns the smallest set bit >= i, or (0, false) if none.
func (b *BitVector) Successor(i uint64) (uint64, bool) {
	rank := b.Rank1(i)
	return b.Select1(rank)
}

// WriteTo serializes the bitvector: length (u64), word count (u64),
// then the raw words. No magic/version header of its own — callers
// embed it inline within a larger artifact format that carries the
// header.
func (b *BitVector) WriteTo(w io.Writer) error {
	if err := persist.WriteUint64(w, b.n); err != nil {
		return err
	}
	return persist.WriteUint64Slice(w, b.words)
}

// ReadBitVector deserializes a BitVector written by WriteTo and
// freezes it for querying.
func ReadBitVector(r io.Reader) (*BitVector, error) {
	n, err := persist.ReadUint64(r)
	if err != nil {
		return nil, fmt.Errorf("bitvector: reading length: %w", err)
	}
	words, err := persist.ReadUint64Slice(r)
	if err != nil {
		return nil, fmt.Errorf("bitvector: reading words: %w", err)
	}
	if want := wordsFor(n); uint64(len(words)) != want {
		return nil, fmt.Errorf("bitvector: %w", persist.ErrSizeMismatch)
	}
	bv := &BitVector{words: words, n: n}
	return bv.Freeze(), nil
}
