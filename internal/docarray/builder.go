// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package docarray builds the document array DA from a generalized
// suffix array and a document-border bitvector: DA[i] is the id of
// the document the i-th suffix (in SA order) belongs to.
package docarray

import (
	"runtime"
	"sync"

	"github.com/bits-and-blooms/bitset"

	"github.com/duscob/drl/internal/bitvector"
	"github.com/duscob/drl/internal/intvec"
)

// Build computes DA[i] = border.Rank1(saAt(i)) for i in [0, n), packed
// into a PackedIntVector of width ceil(log2(docCount)).
func Build(n int, docCount int, saAt func(i int) int, border *bitvector.BitVector) *intvec.PackedIntVector {
	width := intvec.WidthFor(uint64(docCount - 1))
	da := intvec.New(n, width)

	for i := 0; i < n; i++ {
		da.Set(i, border.Rank1(uint64(saAt(i))))
	}
	return da
}

// BuildParallel is equivalent to Build but shards [0,n) across
// GOMAXPROCS goroutines, each writing a disjoint range of the packed
// vector. Per the design's concurrency model, the PackedIntVector
// returned is only published to callers once every shard has
// completed — there are no concurrent readers during construction.
func BuildParallel(n int, docCount int, saAt func(i int) int, border *bitvector.BitVector) *intvec.PackedIntVector {
	width := intvec.WidthFor(uint64(docCount - 1))
	da := intvec.New(n, width)

	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		if lo >= hi {
			continue
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				da.Set(i, border.Rank1(uint64(saAt(i))))
			}
		}(lo, hi)
	}
	wg.Wait()

	return da
}

// BuildBorder constructs the DocBorder bitvector of length n, setting
// bit i whenever isDelimiter(i) reports the text position i holds the
// reserved delimiter byte.
//
// The marking pass accumulates into a bits-and-blooms/bitset.BitSet
// scratch set, the generic, growable bitset the pack's one runtime
// dependency offers; the result is then copied into the fixed-layout,
// rank/select-bearing bitvector.BitVector this package's callers
// actually query, since bitset.BitSet has no rank/select support.
func BuildBorder(n int, isDelimiter func(i int) bool) *bitvector.BitVector {
	scratch := bitset.New(uint(n))
	for i := 0; i < n; i++ {
		if isDelimiter(i) {
			scratch.Set(uint(i))
		}
	}

	b := bitvector.New(uint64(n))
	for i := 0; i < n; i++ {
		if scratch.Test(uint(i)) {
			b.Set(uint64(i))
		}
	}
	return b.Freeze()
}
