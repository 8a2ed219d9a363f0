// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package pdlrp implements the legacy fixed-block document-listing
// scheme: the document array is partitioned into blocks of a fixed
// size (rather than the adaptive sampled tree of package
// sampledtree), each block's distinct document set is grammar
// compressed, and a query answers the interior of its SA range from
// precomputed block sets while scanning the two boundary fragments
// directly. It exists alongside the sampled-tree scheme as a second,
// simpler baseline selectable at index-build time.
package pdlrp

import (
	"fmt"
	"io"
	"sort"

	"github.com/duscob/drl/internal/chunkstore"
	"github.com/duscob/drl/internal/intvec"
	"github.com/duscob/drl/internal/persist"
	"github.com/duscob/drl/internal/setmerge"
	"github.com/duscob/drl/internal/slp"
	"github.com/duscob/drl/sa"
)

var magic = [4]byte{'P', 'D', 'L', 'R'}

// Index answers document-listing queries using the fixed-block
// scheme.
type Index struct {
	blockSize int
	docCount  uint64
	n         uint64

	da     *intvec.PackedIntVector // for brute-force boundary fragments
	blocks *chunkstore.GCStore     // one grammar-compressed chunk per block
}

// Build constructs an Index over idx's document array, partitioned
// into blocks of blockSize SA positions each, with every block's
// distinct document set grammar-compressed via repairer.
func Build(idx sa.Index, blockSize int, repairer slp.Repairer) (*Index, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("pdlrp: blockSize must be positive, got %d", blockSize)
	}
	n := idx.Len()
	d := idx.DocCount()
	if n == 0 || d == 0 {
		return nil, fmt.Errorf("pdlrp: empty collection (n=%d, docs=%d)", n, d)
	}

	width := intvec.WidthFor(uint64(d - 1))
	da := intvec.New(n, width)
	for i := 0; i < n; i++ {
		da.Set(i, uint64(idx.DocOfPos(idx.SAAt(i))))
	}

	numBlocks := (n + blockSize - 1) / blockSize
	docsPerBlock := make([][]uint64, numBlocks)
	seen := make([]bool, d)
	for b := 0; b < numBlocks; b++ {
		lo := b * blockSize
		hi := lo + blockSize
		if hi > n {
			hi = n
		}
		var distinct []uint64
		for pos := lo; pos < hi; pos++ {
			v := da.Get(pos)
			if !seen[v] {
				seen[v] = true
				distinct = append(distinct, v)
			}
		}
		sort.Slice(distinct, func(i, j int) bool { return distinct[i] < distinct[j] })
		for _, v := range distinct {
			seen[v] = false
		}
		docsPerBlock[b] = distinct
	}

	gc := chunkstore.BuildGC(docsPerBlock, uint64(d), repairer)

	return &Index{
		blockSize: blockSize,
		docCount:  uint64(d),
		n:         uint64(n),
		da:        da,
		blocks:    gc,
	}, nil
}

// List returns the distinct document ids containing pattern, sorted
// ascending.
func (idx *Index) List(saIdx sa.Index, pattern []byte) ([]uint64, error) {
	sp, ep, err := saIdx.Count(pattern)
	if err != nil {
		return nil, fmt.Errorf("pdlrp: counting pattern: %w", err)
	}
	if sp >= ep {
		return []uint64{}, nil
	}
	return idx.ListRange(uint64(sp), uint64(ep)), nil
}

// ListRange returns the distinct document ids whose suffixes occupy
// SA range [sp, ep).
func (idx *Index) ListRange(sp, ep uint64) []uint64 {
	if sp >= ep {
		return nil
	}
	bs := uint64(idx.blockSize)

	firstFullBlock := (sp + bs - 1) / bs // first block wholly inside [sp, ep)
	lastFullBlockEnd := ep / bs          // one past the last block wholly inside [sp, ep)

	var sets [][]uint64

	leadEnd := firstFullBlock * bs
	if leadEnd > ep {
		leadEnd = ep
	}
	if leadEnd > sp {
		sets = append(sets, idx.bruteRange(sp, leadEnd))
	}

	trailStart := lastFullBlockEnd * bs
	if trailStart < sp {
		trailStart = sp
	}
	if trailStart < ep && lastFullBlockEnd >= firstFullBlock {
		sets = append(sets, idx.bruteRange(trailStart, ep))
	}

	for b := firstFullBlock; b < lastFullBlockEnd; b++ {
		sets = append(sets, idx.blocks.Docs(int(b)))
	}

	if len(sets) == 0 {
		return nil
	}
	return setmerge.Merge(sets, idx.docCount)
}

func (idx *Index) bruteRange(lo, hi uint64) []uint64 {
	seen := make([]bool, idx.docCount)
	var out []uint64
	for pos := lo; pos < hi; pos++ {
		v := idx.da.Get(int(pos))
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DocCount returns d, the number of documents in the collection.
func (idx *Index) DocCount() uint64 { return idx.docCount }

// WriteTo serializes the index to w.
func (idx *Index) WriteTo(w io.Writer) error {
	if err := persist.WriteHeader(w, magic, persist.CurrentVersion); err != nil {
		return err
	}
	if err := persist.WriteUint64(w, uint64(idx.blockSize)); err != nil {
		return err
	}
	if err := persist.WriteUint64(w, idx.docCount); err != nil {
		return err
	}
	if err := persist.WriteUint64(w, idx.n); err != nil {
		return err
	}
	if err := idx.da.WriteTo(w); err != nil {
		return err
	}
	return idx.blocks.WriteTo(w)
}

// ReadFrom deserializes an Index written by WriteTo.
func ReadFrom(r io.Reader) (*Index, error) {
	if _, err := persist.ReadHeader(r, magic); err != nil {
		return nil, fmt.Errorf("pdlrp: %w", err)
	}
	blockSize, err := persist.ReadUint64(r)
	if err != nil {
		return nil, fmt.Errorf("pdlrp: reading block size: %w", err)
	}
	docCount, err := persist.ReadUint64(r)
	if err != nil {
		return nil, fmt.Errorf("pdlrp: reading doc count: %w", err)
	}
	n, err := persist.ReadUint64(r)
	if err != nil {
		return nil, fmt.Errorf("pdlrp: reading n: %w", err)
	}
	da, err := intvec.Read(r)
	if err != nil {
		return nil, fmt.Errorf("pdlrp: reading DA: %w", err)
	}
	blocks, err := chunkstore.ReadGC(r)
	if err != nil {
		return nil, fmt.Errorf("pdlrp: reading blocks: %w", err)
	}
	return &Index{
		blockSize: int(blockSize),
		docCount:  docCount,
		n:         n,
		da:        da,
		blocks:    blocks,
	}, nil
}
