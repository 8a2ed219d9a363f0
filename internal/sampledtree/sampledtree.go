// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package sampledtree builds a sampled cover tree over an SLP's parse
// tree: internal nodes are kept wherever a subtree's span still
// exceeds the storing factor, and recursion stops at the first node
// whose span fits within it, turning that node into a leaf backed by
// a contiguous chunk of the document array. The resulting tree is
// much shallower than the full parse tree and is what cover.Compute
// walks to find a minimal antichain covering a query range.
package sampledtree

import (
	"fmt"
	"io"

	"github.com/bits-and-blooms/bitset"

	"github.com/duscob/drl/internal/bitvector"
	"github.com/duscob/drl/internal/intvec"
	"github.com/duscob/drl/internal/persist"
)

// SLP is the subset of slp.SLP that tree construction needs. Declared
// locally to avoid an import cycle with package slp (which does not,
// and should not, depend on sampledtree).
type SLP interface {
	Root() uint64
	SpanLength(v uint64) uint64
	Children(v uint64) (left, right uint64, isTerminal bool)
}

// Tree is the succinct sampled cover tree. Node ids are assigned in
// pre-order during construction; node 0 is always the root.
type Tree struct {
	storingFactor uint64
	n             uint64 // total span covered (length of DA)

	isLeaf      *bitvector.BitVector // indexed by node id
	left, right *intvec.PackedIntVector
	parent      *intvec.PackedIntVector
	// firstChildMask[v] is set when v is the left child of its parent;
	// clear when v is the right child or the root.
	firstChildMask *bitvector.BitVector

	// nodeLo/nodeSpan give the DA range [lo, lo+span) covered by every
	// node, computed once during construction so Range is O(1).
	nodeLo, nodeSpan *intvec.PackedIntVector

	// LeafAt maps DA position -> leaf node id via leafStarts.Rank1,
	// where leafStarts holds the start offset of every leaf, in
	// increasing order of both leaf index and DA position (leaves
	// are visited left to right).
	leafStarts *bitvector.SparseBitVector
	leafIDs    []uint64 // leaf index -> node id, in left-to-right order
	leafSpan   []uint64 // leaf index -> span length
}

const noParent = ^uint64(0)

// Build constructs the sampled tree over s with the given storing
// factor: recursion into a node's children continues as long as the
// node's span exceeds storingFactor; the first node (top-down) whose
// span is at most storingFactor becomes a leaf, whatever its span, so
// that a collection with very large documents never forces an
// arbitrarily deep chunk hierarchy below the sampling cut.
func Build(s SLP, storingFactor uint64) *Tree {
	if storingFactor == 0 {
		storingFactor = 1
	}

	b := &builder{s: s, sf: storingFactor}
	root := b.visit(s.Root(), 0, noParent, false)
	_ = root

	t := &Tree{
		storingFactor: storingFactor,
		n:             s.SpanLength(s.Root()),
	}

	// The final node count is only known once recursive pre-order
	// numbering is done, so the two per-node flags collected during
	// visit stay plain growable slices during construction; they are
	// staged here into bits-and-blooms/bitset.BitSet scratch sets
	// (the pack's one runtime dependency's natural role) before being
	// copied into the fixed-layout, rank/select-bearing BitVectors the
	// rest of the tree queries.
	nNodes := len(b.isLeaf)
	leafScratch := bitset.New(uint(nNodes))
	firstChildScratch := bitset.New(uint(nNodes))
	for i, v := range b.isLeaf {
		if v {
			leafScratch.Set(uint(i))
		}
	}
	for i, v := range b.isFirstChild {
		if v {
			firstChildScratch.Set(uint(i))
		}
	}

	isLeaf := bitvector.New(uint64(nNodes))
	firstChild := bitvector.New(uint64(nNodes))
	for i := 0; i < nNodes; i++ {
		if leafScratch.Test(uint(i)) {
			isLeaf.Set(uint64(i))
		}
		if firstChildScratch.Test(uint(i)) {
			firstChild.Set(uint64(i))
		}
	}
	t.isLeaf = isLeaf.Freeze()
	t.firstChildMask = firstChild.Freeze()

	width := intvec.WidthFor(uint64(nNodes))
	leftVec := intvec.New(nNodes, width)
	rightVec := intvec.New(nNodes, width)
	parentVec := intvec.New(nNodes, width)
	for i := 0; i < nNodes; i++ {
		leftVec.Set(i, b.left[i])
		rightVec.Set(i, b.right[i])
		p := b.parent[i]
		if p == noParent {
			p = uint64(nNodes) // sentinel: one past the last valid id
		}
		parentVec.Set(i, p)
	}
	t.left, t.right, t.parent = leftVec, rightVec, parentVec

	loWidth := intvec.WidthFor(t.n)
	nodeLoVec := intvec.New(nNodes, loWidth)
	nodeSpanVec := intvec.New(nNodes, loWidth)
	for i := 0; i < nNodes; i++ {
		nodeLoVec.Set(i, b.nodeLo[i])
		nodeSpanVec.Set(i, b.nodeSpan[i])
	}
	t.nodeLo, t.nodeSpan = nodeLoVec, nodeSpanVec

	starts := make([]uint64, len(b.leafStarts))
	copy(starts, b.leafStarts)
	t.leafStarts = bitvector.BuildSparse(t.n+1, starts)
	t.leafIDs = b.leafIDOrder
	t.leafSpan = b.leafSpanOrder

	return t
}

type builder struct {
	s  SLP
	sf uint64

	isLeaf       []bool
	isFirstChild []bool
	left, right  []uint64
	parent       []uint64
	nodeLo       []uint64
	nodeSpan     []uint64

	leafStarts    []uint64 // start DA offset, in left-to-right order
	leafIDOrder   []uint64
	leafSpanOrder []uint64
}

// visit assigns node ids in pre-order and returns the id of the node
// created for variable v, which covers DA range [lo, lo+span(v)).
func (b *builder) visit(v, lo, parentID uint64, isFirst bool) uint64 {
	id := uint64(len(b.isLeaf))
	b.isLeaf = append(b.isLeaf, false)
	b.isFirstChild = append(b.isFirstChild, isFirst)
	b.left = append(b.left, 0)
	b.right = append(b.right, 0)
	b.parent = append(b.parent, parentID)

	span := b.s.SpanLength(v)
	b.nodeLo = append(b.nodeLo, lo)
	b.nodeSpan = append(b.nodeSpan, span)

	_, _, isTerminal := b.s.Children(v)
	if isTerminal || span <= b.sf {
		b.isLeaf[id] = true
		b.leafStarts = append(b.leafStarts, lo)
		b.leafIDOrder = append(b.leafIDOrder, id)
		b.leafSpanOrder = append(b.leafSpanOrder, span)
		return id
	}

	lchild, rchild, _ := b.s.Children(v)
	lSpan := b.s.SpanLength(lchild)

	leftID := b.visit(lchild, lo, id, true)
	rightID := b.visit(rchild, lo+lSpan, id, false)
	b.left[id] = leftID
	b.right[id] = rightID
	return id
}

// Len returns n, the total length of the document array covered.
func (t *Tree) Len() uint64 { return t.n }

// Root returns the root node id (always 0).
func (t *Tree) Root() uint64 { return 0 }

// NodeCount returns the number of nodes in the sampled tree.
func (t *Tree) NodeCount() uint64 { return t.isLeaf.Len() }

// IsLeaf reports whether node id is a leaf.
func (t *Tree) IsLeaf(id uint64) bool { return t.isLeaf.Test(id) }

// Children returns the two children of internal node id. For a leaf it
// returns (0, 0).
func (t *Tree) Children(id uint64) (left, right uint64) {
	return t.left.Get(int(id)), t.right.Get(int(id))
}

// Parent returns id's parent and whether id has one (false for the
// root).
func (t *Tree) Parent(id uint64) (uint64, bool) {
	p := t.parent.Get(int(id))
	if p == t.NodeCount() {
		return 0, false
	}
	return p, true
}

// IsFirstChild reports whether id is the left child of its parent.
func (t *Tree) IsFirstChild(id uint64) bool { return t.firstChildMask.Test(id) }

// Range returns the DA range [lo, hi) covered by node id.
func (t *Tree) Range(id uint64) (lo, hi uint64) {
	lo = t.nodeLo.Get(int(id))
	hi = lo + t.nodeSpan.Get(int(id))
	return
}

// leafIndexOf finds id's position among leafIDs via linear scan. It
// backs LeafIndex, which the index builder calls once per leaf; LeafAt
// below is the O(log n) position-to-leaf accessor.
func (t *Tree) leafIndexOf(id uint64) uint64 {
	for i, v := range t.leafIDs {
		if v == id {
			return uint64(i)
		}
	}
	panic("sampledtree: node is not a leaf")
}

// LeafAt returns the id of the leaf whose range contains DA position
// pos, found in O(log leafCount) via rank over leafStarts.
func (t *Tree) LeafAt(pos uint64) uint64 {
	r := t.leafStarts.Rank1(pos + 1) // starts <= pos
	if r == 0 {
		return t.leafIDs[0]
	}
	idx := r - 1
	if idx >= uint64(len(t.leafIDs)) {
		idx = uint64(len(t.leafIDs)) - 1
	}
	return t.leafIDs[idx]
}

// LeafCount returns the number of leaves in the tree.
func (t *Tree) LeafCount() int { return len(t.leafIDs) }

// LeafRange returns the DA range covered by the leaf at leaf-index i
// (0-based, left to right).
func (t *Tree) LeafRange(i int) (lo, hi uint64) {
	lo = select1MustGet(t.leafStarts, uint64(i))
	hi = lo + t.leafSpanOrder(i)
	return
}

func (t *Tree) leafSpanOrder(i int) uint64 { return t.leafSpan[i] }

// LeafIndex returns the left-to-right leaf index of leaf node id.
func (t *Tree) LeafIndex(id uint64) uint64 { return t.leafIndexOf(id) }

// LeafNodeID returns the node id of the i-th leaf.
func (t *Tree) LeafNodeID(i int) uint64 { return t.leafIDs[i] }

// select1MustGet documents that leaf starts are a total, gapless
// order: every leaf index in [0, LeafCount) has a start offset.
func select1MustGet(sb *bitvector.SparseBitVector, k uint64) uint64 {
	v, ok := sb.Select1(k)
	if !ok {
		panic("sampledtree: leaf index out of range")
	}
	return v
}

// WriteTo serializes the tree topology, matching the design's
// `.stree` format.
func (t *Tree) WriteTo(w io.Writer) error {
	if err := persist.WriteUint64(w, t.storingFactor); err != nil {
		return err
	}
	if err := persist.WriteUint64(w, t.n); err != nil {
		return err
	}
	if err := persist.WriteUint64(w, t.isLeaf.Len()); err != nil {
		return err
	}
	if err := t.isLeaf.WriteTo(w); err != nil {
		return err
	}
	if err := t.firstChildMask.WriteTo(w); err != nil {
		return err
	}
	if err := t.left.WriteTo(w); err != nil {
		return err
	}
	if err := t.right.WriteTo(w); err != nil {
		return err
	}
	if err := t.parent.WriteTo(w); err != nil {
		return err
	}
	if err := t.nodeLo.WriteTo(w); err != nil {
		return err
	}
	if err := t.nodeSpan.WriteTo(w); err != nil {
		return err
	}
	if err := t.leafStarts.WriteTo(w); err != nil {
		return err
	}
	if err := persist.WriteUint64Slice(w, t.leafIDs); err != nil {
		return err
	}
	return persist.WriteUint64Slice(w, t.leafSpan)
}

// Read deserializes a Tree written by WriteTo.
func Read(r io.Reader) (*Tree, error) {
	sf, err := persist.ReadUint64(r)
	if err != nil {
		return nil, fmt.Errorf("sampledtree: reading storing factor: %w", err)
	}
	n, err := persist.ReadUint64(r)
	if err != nil {
		return nil, fmt.Errorf("sampledtree: reading n: %w", err)
	}
	if _, err := persist.ReadUint64(r); err != nil {
		return nil, fmt.Errorf("sampledtree: reading node count: %w", err)
	}
	isLeaf, err := bitvector.ReadBitVector(r)
	if err != nil {
		return nil, fmt.Errorf("sampledtree: reading isLeaf: %w", err)
	}
	firstChild, err := bitvector.ReadBitVector(r)
	if err != nil {
		return nil, fmt.Errorf("sampledtree: reading firstChildMask: %w", err)
	}
	left, err := intvec.Read(r)
	if err != nil {
		return nil, fmt.Errorf("sampledtree: reading left: %w", err)
	}
	right, err := intvec.Read(r)
	if err != nil {
		return nil, fmt.Errorf("sampledtree: reading right: %w", err)
	}
	parent, err := intvec.Read(r)
	if err != nil {
		return nil, fmt.Errorf("sampledtree: reading parent: %w", err)
	}
	nodeLo, err := intvec.Read(r)
	if err != nil {
		return nil, fmt.Errorf("sampledtree: reading nodeLo: %w", err)
	}
	nodeSpan, err := intvec.Read(r)
	if err != nil {
		return nil, fmt.Errorf("sampledtree: reading nodeSpan: %w", err)
	}
	leafStarts, err := bitvector.ReadSparse(r)
	if err != nil {
		return nil, fmt.Errorf("sampledtree: reading leafStarts: %w", err)
	}
	leafIDs, err := persist.ReadUint64Slice(r)
	if err != nil {
		return nil, fmt.Errorf("sampledtree: reading leafIDs: %w", err)
	}
	leafSpan, err := persist.ReadUint64Slice(r)
	if err != nil {
		return nil, fmt.Errorf("sampledtree: reading leafSpan: %w", err)
	}

	return &Tree{
		storingFactor:  sf,
		n:              n,
		isLeaf:         isLeaf,
		firstChildMask: firstChild,
		left:           left,
		right:          right,
		parent:         parent,
		nodeLo:         nodeLo,
		nodeSpan:       nodeSpan,
		leafStarts:     leafStarts,
		leafIDs:        leafIDs,
		leafSpan:       leafSpan,
	}, nil
}
