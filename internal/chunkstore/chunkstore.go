// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package chunkstore stores, for every leaf of a sampled tree, the
// distinct document ids present in that leaf's DA range — precomputed
// once at build time so that cover computation can read a leaf's
// document set in O(1) instead of re-scanning the document array.
package chunkstore

import (
	"fmt"
	"io"

	"github.com/duscob/drl/internal/bitvector"
	"github.com/duscob/drl/internal/intvec"
	"github.com/duscob/drl/internal/persist"
)

// Store answers "which documents occur in leaf i's range" for every
// leaf of a sampled tree.
type Store interface {
	// Docs returns the sorted, distinct document ids in leaf i's
	// range.
	Docs(leaf int) []uint64
	// LeafCount returns the number of leaves the store covers.
	LeafCount() int
}

// PlainStore is the direct representation: a concatenated,
// length-delimited array of per-leaf document-id lists. It trades
// space for simplicity — the design's "grammar-compressed" GCChunks
// variant (chunkstore.GCStore) is preferred once per-leaf sets start
// repeating across leaves, which is common when the collection has
// many small or templated documents.
type PlainStore struct {
	offsets *bitvector.SparseBitVector // leaf i's docs start at offsets.Select1(i)
	values  *intvec.PackedIntVector
	leaves  int
}

var _ Store = (*PlainStore)(nil)

// Build constructs a PlainStore from a per-leaf slice of sorted,
// distinct document id lists.
func Build(docsPerLeaf [][]uint64, docCount uint64) *PlainStore {
	var total uint64
	starts := make([]uint64, len(docsPerLeaf))
	for i, docs := range docsPerLeaf {
		starts[i] = total
		total += uint64(len(docs))
	}

	width := intvec.WidthFor(docCount - 1)
	values := intvec.New(int(total), width)
	var pos int
	for _, docs := range docsPerLeaf {
		for _, d := range docs {
			values.Set(pos, d)
			pos++
		}
	}

	return &PlainStore{
		offsets: bitvector.BuildSparse(total+1, starts),
		values:  values,
		leaves:  len(docsPerLeaf),
	}
}

// Docs implements Store.
func (p *PlainStore) Docs(leaf int) []uint64 {
	start, ok := p.offsets.Select1(uint64(leaf))
	if !ok {
		return nil
	}
	var end uint64
	if leaf+1 < p.leaves {
		end, _ = p.offsets.Select1(uint64(leaf + 1))
	} else {
		end = uint64(p.values.Len())
	}
	out := make([]uint64, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, p.values.Get(int(i)))
	}
	return out
}

// LeafCount implements Store.
func (p *PlainStore) LeafCount() int { return p.leaves }

// WriteTo serializes the store, matching the design's `.chunks`
// format.
func (p *PlainStore) WriteTo(w io.Writer) error {
	if err := persist.WriteUint64(w, uint64(p.leaves)); err != nil {
		return err
	}
	if err := p.offsets.WriteTo(w); err != nil {
		return err
	}
	return p.values.WriteTo(w)
}

// Read deserializes a PlainStore written by WriteTo.
func Read(r io.Reader) (*PlainStore, error) {
	leaves, err := persist.ReadUint64(r)
	if err != nil {
		return nil, fmt.Errorf("chunkstore: reading leaf count: %w", err)
	}
	offsets, err := bitvector.ReadSparse(r)
	if err != nil {
		return nil, fmt.Errorf("chunkstore: reading offsets: %w", err)
	}
	values, err := intvec.Read(r)
	if err != nil {
		return nil, fmt.Errorf("chunkstore: reading values: %w", err)
	}
	return &PlainStore{offsets: offsets, values: values, leaves: int(leaves)}, nil
}

// BuildFromRanges is a convenience constructor: given the document
// array accessor and the tree's per-leaf [lo,hi) ranges, it computes
// each leaf's distinct document set directly. The top-level index
// builder does not call it; it computes the per-leaf sets itself.
func BuildFromRanges(leafCount int, rangeOf func(leaf int) (lo, hi uint64), docAt func(pos uint64) uint64, docCount uint64) *PlainStore {
	docsPerLeaf := make([][]uint64, leafCount)
	seen := make([]bool, docCount)
	for i := 0; i < leafCount; i++ {
		lo, hi := rangeOf(i)
		var distinct []uint64
		var touched []uint64
		for pos := lo; pos < hi; pos++ {
			d := docAt(pos)
			if !seen[d] {
				seen[d] = true
				distinct = append(distinct, d)
				touched = append(touched, d)
			}
		}
		for _, d := range touched {
			seen[d] = false
		}
		docsPerLeaf[i] = sortedUnique(distinct)
	}
	return Build(docsPerLeaf, docCount)
}

func sortedUnique(in []uint64) []uint64 {
	out := append([]uint64(nil), in...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
