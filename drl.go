// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package drl implements compressed document listing: given a pattern
// P, report the distinct ids of the documents in a collection that
// contain P, without enumerating every occurrence. The collection's
// suffix array is an external collaborator (package sa); this package
// builds and queries the document array, grammar, sampled tree, and
// chunk store layered on top of it.
package drl

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/duscob/drl/internal/chunkstore"
	"github.com/duscob/drl/internal/cover"
	"github.com/duscob/drl/internal/intvec"
	"github.com/duscob/drl/internal/persist"
	"github.com/duscob/drl/internal/sampledtree"
	"github.com/duscob/drl/internal/setmerge"
	"github.com/duscob/drl/internal/slp"
	"github.com/duscob/drl/sa"
)

var magic = [4]byte{'D', 'R', 'L', '1'}

// Index answers document-listing queries over a built collection.
type Index struct {
	cfg      Config
	docCount uint64
	n        uint64

	da       *intvec.PackedIntVector // DA, kept for direct fringe access
	grammar  slp.SLP
	tree     *sampledtree.Tree
	nodeDocs chunkstore.Store // per sampled-tree-node distinct doc sets
}

// Build constructs an Index over idx, wiring docarray -> slp ->
// sampledtree -> chunkstore in that order, using repairer to
// grammar-compress the document array. cfg.Validate is called first.
func Build(idx sa.Index, cfg Config, repairer slp.Repairer) (*Index, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	n := idx.Len()
	d := idx.DocCount()
	if n == 0 || d == 0 {
		return nil, fmt.Errorf("%w: empty collection (n=%d, docs=%d)", ErrConfig, n, d)
	}

	width := intvec.WidthFor(uint64(d - 1))
	da := intvec.New(n, width)
	seq := make([]uint64, n)
	for i := 0; i < n; i++ {
		doc := uint64(idx.DocOfPos(idx.SAAt(i)))
		da.Set(i, doc)
		seq[i] = doc
	}

	var grammar slp.SLP
	switch cfg.SLPVariant {
	case SLPCombined:
		left, right, root := repairer.Repair(seq, uint64(d))
		grammar = slp.FromRulesCombined(uint64(d), left, right, root)
	case SLPLight:
		left, right, root := repairer.Repair(seq, uint64(d))
		grammar = slp.FromRulesLight(uint64(d), left, right, root)
	default:
		grammar = slp.Build(seq, uint64(d), repairer)
	}

	tree := sampledtree.Build(grammar, uint64(cfg.StoringFactor))

	docsPerLeaf := computeDocsPerLeaf(tree, da, uint64(d))

	var leafStore chunkstore.Store
	if cfg.ChunkVariant == ChunkGrammarCompressed {
		leafStore = chunkstore.BuildGC(docsPerLeaf, uint64(d), repairer)
	} else {
		leafStore = chunkstore.Build(docsPerLeaf, uint64(d))
	}

	nodeDocs := buildNodeDocs(tree, leafStore, uint64(d), cfg.ChunkVariant, repairer)

	return &Index{
		cfg:      cfg,
		docCount: uint64(d),
		n:        uint64(n),
		da:       da,
		grammar:  grammar,
		tree:     tree,
		nodeDocs: nodeDocs,
	}, nil
}

func computeDocsPerLeaf(tree *sampledtree.Tree, da *intvec.PackedIntVector, docCount uint64) [][]uint64 {
	return chunkstoreDocsPerLeaf(tree, da, docCount)
}

// chunkstoreDocsPerLeaf scans each leaf's DA range once, deduplicating
// with a reusable boolean scratch sized to docCount.
func chunkstoreDocsPerLeaf(tree *sampledtree.Tree, da *intvec.PackedIntVector, docCount uint64) [][]uint64 {
	out := make([][]uint64, tree.LeafCount())
	seen := make([]bool, docCount)
	for i := 0; i < tree.LeafCount(); i++ {
		lo, hi := tree.LeafRange(i)
		var distinct []uint64
		for pos := lo; pos < hi; pos++ {
			v := da.Get(int(pos))
			if !seen[v] {
				seen[v] = true
				distinct = append(distinct, v)
			}
		}
		sort.Slice(distinct, func(a, b int) bool { return distinct[a] < distinct[b] })
		for _, v := range distinct {
			seen[v] = false
		}
		out[i] = distinct
	}
	return out
}

// buildNodeDocs computes, bottom-up, the distinct document set
// covered by every sampled-tree node, so that ListRange never needs
// to walk below a fully-covered cover node at query time. The result
// is stored through whichever chunkstore.Store implementation variant
// selects, matching the leaf store built earlier in Build.
func buildNodeDocs(tree *sampledtree.Tree, leaf chunkstore.Store, docCount uint64, variant ChunkVariant, repairer slp.Repairer) chunkstore.Store {
	n := int(tree.NodeCount())
	docsOf := make([][]uint64, n)

	var fill func(id uint64) []uint64
	fill = func(id uint64) []uint64 {
		if tree.IsLeaf(id) {
			docs := leaf.Docs(int(tree.LeafIndex(id)))
			docsOf[id] = docs
			return docs
		}
		l, r := tree.Children(id)
		merged := setmerge.Merge([][]uint64{fill(l), fill(r)}, docCount)
		docsOf[id] = merged
		return merged
	}
	fill(tree.Root())

	if variant == ChunkGrammarCompressed {
		return chunkstore.BuildGC(docsOf, docCount, repairer)
	}
	return chunkstore.Build(docsOf, docCount)
}

// List returns the distinct document ids containing pattern, sorted
// ascending. An unmatched pattern returns an empty, non-nil slice.
func (idx *Index) List(saIdx sa.Index, pattern []byte) ([]uint64, error) {
	sp, ep, err := saIdx.Count(pattern)
	if err != nil {
		return nil, fmt.Errorf("drl: counting pattern: %w", err)
	}
	if sp >= ep {
		return []uint64{}, nil
	}
	return idx.ListRange(uint64(sp), uint64(ep)), nil
}

// ListRange returns the distinct document ids whose suffixes occupy
// SA range [sp, ep), sorted ascending. An empty range, or one with
// ep > Len, yields an empty result.
func (idx *Index) ListRange(sp, ep uint64) []uint64 {
	if sp >= ep || ep > idx.n {
		return nil
	}

	res := cover.Compute(idx.tree, sp, ep)

	var sets [][]uint64
	for _, node := range res.Nodes {
		sets = append(sets, idx.nodeDocs.Docs(int(node)))
	}
	if len(res.Fringe) > 0 {
		seen := make([]bool, idx.docCount)
		var fringeDocs []uint64
		for _, pos := range res.Fringe {
			v := idx.da.Get(int(pos))
			if !seen[v] {
				seen[v] = true
				fringeDocs = append(fringeDocs, v)
			}
		}
		sort.Slice(fringeDocs, func(a, b int) bool { return fringeDocs[a] < fringeDocs[b] })
		sets = append(sets, fringeDocs)
	}
	if len(sets) == 0 {
		return nil
	}
	return setmerge.Merge(sets, idx.docCount)
}

// DocCount returns d, the number of documents in the collection.
func (idx *Index) DocCount() uint64 { return idx.docCount }

// Len returns n, the length of the concatenated, delimited text.
func (idx *Index) Len() uint64 { return idx.n }

// Save serializes the index to a single file at path.
func (idx *Index) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrIO, path, err)
	}
	defer f.Close()
	if err := idx.WriteTo(f); err != nil {
		return err
	}
	return f.Close()
}

// WriteTo serializes the index to w, in the format Open/ReadFrom
// expect: a versioned header, configuration byte flags, the document
// count and n, then the DA, grammar, sampled tree, and node chunk
// store sections in that order.
func (idx *Index) WriteTo(w io.Writer) error {
	if err := persist.WriteHeader(w, magic, persist.CurrentVersion); err != nil {
		return err
	}
	if err := persist.WriteByte(w, byte(idx.cfg.ChunkVariant)); err != nil {
		return err
	}
	if err := persist.WriteByte(w, byte(idx.cfg.SLPVariant)); err != nil {
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
	if err := writeGrammar(w, idx.cfg.SLPVariant, idx.grammar); err != nil {
		return err
	}
	if err := idx.tree.WriteTo(w); err != nil {
		return err
	}
	return writeNodeDocs(w, idx.cfg.ChunkVariant, idx.nodeDocs)
}

// writeNodeDocs serializes the per-node document-set store through
// whichever concrete chunkstore.Store type variant names, mirroring
// writeGrammar's variant-dispatch shape.
func writeNodeDocs(w io.Writer, variant ChunkVariant, store chunkstore.Store) error {
	if variant == ChunkGrammarCompressed {
		gc, ok := store.(*chunkstore.GCStore)
		if !ok {
			return fmt.Errorf("%w: nodeDocs/variant mismatch", ErrInvariant)
		}
		return gc.WriteTo(w)
	}
	plain, ok := store.(*chunkstore.PlainStore)
	if !ok {
		return fmt.Errorf("%w: nodeDocs/variant mismatch", ErrInvariant)
	}
	return plain.WriteTo(w)
}

func writeGrammar(w io.Writer, variant SLPVariant, g slp.SLP) error {
	switch variant {
	case SLPCombined:
		cs, ok := g.(*slp.CombinedSLP)
		if !ok {
			return fmt.Errorf("%w: grammar/variant mismatch", ErrInvariant)
		}
		return cs.WriteTo(w)
	case SLPLight:
		ls, ok := g.(*slp.LightSLP)
		if !ok {
			return fmt.Errorf("%w: grammar/variant mismatch", ErrInvariant)
		}
		return ls.WriteTo(w)
	default:
		ps, ok := g.(*slp.PlainSLP)
		if !ok {
			return fmt.Errorf("%w: grammar/variant mismatch", ErrInvariant)
		}
		return ps.WriteTo(w)
	}
}

// Open deserializes an Index previously written by Save.
func Open(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrIO, path, err)
	}
	defer f.Close()
	return ReadFrom(f)
}

// ReadFrom deserializes an Index written by WriteTo.
func ReadFrom(r io.Reader) (*Index, error) {
	if _, err := persist.ReadHeader(r, magic); err != nil {
		return nil, fmt.Errorf("drl: %w", err)
	}
	chunkVariantByte, err := persist.ReadByte(r)
	if err != nil {
		return nil, fmt.Errorf("drl: reading chunk variant: %w", err)
	}
	slpVariantByte, err := persist.ReadByte(r)
	if err != nil {
		return nil, fmt.Errorf("drl: reading slp variant: %w", err)
	}
	docCount, err := persist.ReadUint64(r)
	if err != nil {
		return nil, fmt.Errorf("drl: reading doc count: %w", err)
	}
	n, err := persist.ReadUint64(r)
	if err != nil {
		return nil, fmt.Errorf("drl: reading n: %w", err)
	}
	da, err := intvec.Read(r)
	if err != nil {
		return nil, fmt.Errorf("drl: reading DA: %w", err)
	}

	slpVariant := SLPVariant(slpVariantByte)
	grammar, err := readGrammar(r, slpVariant)
	if err != nil {
		return nil, err
	}

	tree, err := sampledtree.Read(r)
	if err != nil {
		return nil, fmt.Errorf("drl: reading sampled tree: %w", err)
	}
	nodeDocs, err := readNodeDocs(r, ChunkVariant(chunkVariantByte))
	if err != nil {
		return nil, fmt.Errorf("drl: reading node chunk store: %w", err)
	}

	cfg := DefaultConfig()
	cfg.ChunkVariant = ChunkVariant(chunkVariantByte)
	cfg.SLPVariant = slpVariant

	return &Index{
		cfg:      cfg,
		docCount: docCount,
		n:        n,
		da:       da,
		grammar:  grammar,
		tree:     tree,
		nodeDocs: nodeDocs,
	}, nil
}

// readNodeDocs deserializes the per-node document-set store, mirroring
// writeNodeDocs' variant dispatch.
func readNodeDocs(r io.Reader, variant ChunkVariant) (chunkstore.Store, error) {
	if variant == ChunkGrammarCompressed {
		return chunkstore.ReadGC(r)
	}
	return chunkstore.Read(r)
}

func readGrammar(r io.Reader, variant SLPVariant) (slp.SLP, error) {
	switch variant {
	case SLPCombined:
		return slp.ReadCombined(r)
	case SLPLight:
		return slp.ReadLight(r)
	default:
		return slp.Read(r)
	}
}
