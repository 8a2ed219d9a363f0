// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package chunkstore

import (
	"fmt"
	"io"

	"github.com/duscob/drl/internal/bitvector"
	"github.com/duscob/drl/internal/persist"
	"github.com/duscob/drl/internal/slp"
)

// GCStore is the grammar-compressed chunk store: every leaf's
// document-id list is concatenated into one sequence and that
// sequence is itself compressed with an SLP, exactly as the document
// array is. This pays off once leaves recur with identical or
// overlapping document sets, which grammar compression collapses into
// shared rules; PlainStore remains preferable for small collections
// where the rule-table overhead isn't repaid.
type GCStore struct {
	grammar *slp.PlainSLP
	offsets *bitvector.SparseBitVector
	leaves  int
	empty   bool // true when every leaf's document list is empty
}

var _ Store = (*GCStore)(nil)

// BuildGC grammar-compresses the concatenation of docsPerLeaf with
// repairer, using docCount as the terminal alphabet size.
func BuildGC(docsPerLeaf [][]uint64, docCount uint64, repairer slp.Repairer) *GCStore {
	var seq []uint64
	starts := make([]uint64, len(docsPerLeaf))
	var total uint64
	for i, docs := range docsPerLeaf {
		starts[i] = total
		seq = append(seq, docs...)
		total += uint64(len(docs))
	}

	if len(seq) == 0 {
		return &GCStore{
			offsets: bitvector.BuildSparse(total+1, starts),
			leaves:  len(docsPerLeaf),
			empty:   true,
		}
	}

	return &GCStore{
		grammar: slp.Build(seq, docCount, repairer),
		offsets: bitvector.BuildSparse(total+1, starts),
		leaves:  len(docsPerLeaf),
	}
}

// Docs implements Store.
func (g *GCStore) Docs(leaf int) []uint64 {
	if g.empty {
		return nil
	}
	start, ok := g.offsets.Select1(uint64(leaf))
	if !ok {
		return nil
	}
	var end uint64
	if leaf+1 < g.leaves {
		end, _ = g.offsets.Select1(uint64(leaf + 1))
	} else {
		end = g.grammar.SpanLength(g.grammar.Root())
	}
	var out []uint64
	g.grammar.ExpandRange(start, end, func(doc uint64) { out = append(out, doc) })
	return out
}

// LeafCount implements Store.
func (g *GCStore) LeafCount() int { return g.leaves }

// WriteTo serializes the store.
func (g *GCStore) WriteTo(w io.Writer) error {
	if err := persist.WriteUint64(w, uint64(g.leaves)); err != nil {
		return err
	}
	var emptyFlag uint8
	if g.empty {
		emptyFlag = 1
	}
	if err := persist.WriteByte(w, emptyFlag); err != nil {
		return err
	}
	if err := g.offsets.WriteTo(w); err != nil {
		return err
	}
	if g.empty {
		return nil
	}
	return g.grammar.WriteTo(w)
}

// ReadGC deserializes a GCStore written by WriteTo.
func ReadGC(r io.Reader) (*GCStore, error) {
	leaves, err := persist.ReadUint64(r)
	if err != nil {
		return nil, fmt.Errorf("chunkstore: reading leaf count: %w", err)
	}
	emptyFlag, err := persist.ReadByte(r)
	if err != nil {
		return nil, fmt.Errorf("chunkstore: reading empty flag: %w", err)
	}
	offsets, err := bitvector.ReadSparse(r)
	if err != nil {
		return nil, fmt.Errorf("chunkstore: reading offsets: %w", err)
	}
	if emptyFlag != 0 {
		return &GCStore{offsets: offsets, leaves: int(leaves), empty: true}, nil
	}
	grammar, err := slp.Read(r)
	if err != nil {
		return nil, fmt.Errorf("chunkstore: reading grammar: %w", err)
	}
	return &GCStore{grammar: grammar, offsets: offsets, leaves: int(leaves)}, nil
}
