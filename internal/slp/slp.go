// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package slp implements a straight-line program (SLP) over a document
// array: a context-free grammar generating exactly DA, used both to
// recover individual document ids by descent and, via the sampled
// tree built on top of it, to supply block structure for
// precomputed chunk document sets.
//
// Three tagged variants are provided (PlainSLP, CombinedSLP, LightSLP)
// rather than a template hierarchy, per the design's note that a small
// set of tagged variants dispatched through a common interface models
// the original C++ template polymorphism more idiomatically in Go; the
// hot path (descent in DocAt/ExpandRange) is a plain switch-free method
// set per concrete type, so each variant still monomorphizes.
package slp

import (
	"fmt"
	"io"

	"github.com/duscob/drl/internal/intvec"
	"github.com/duscob/drl/internal/persist"
)

// recursionThreshold is the SLP height above which PlainSLP.DocAt
// switches from recursive descent to an iterative loop, to avoid deep
// call stacks on pathological inputs. ExpandRange always recurses.
const recursionThreshold = 4096

// SLP is the common interface implemented by PlainSLP, CombinedSLP,
// and LightSLP.
type SLP interface {
	// Root returns the variable id whose expansion is the full DA.
	Root() uint64
	// TerminalCount returns d, the number of terminal (document-id)
	// variables, numbered [0, TerminalCount).
	TerminalCount() uint64
	// SpanLength returns the length of variable v's expansion.
	SpanLength(v uint64) uint64
	// Children returns v's two children. If v is a terminal,
	// isTerminal is true and left/right are unspecified.
	Children(v uint64) (left, right uint64, isTerminal bool)
	// DocAt returns DA[k] by descent from the root.
	DocAt(k uint64) uint64
	// ExpandRange emits DA[b,e) in order via report.
	ExpandRange(b, e uint64, report func(doc uint64))
	// Height returns the SLP's parse-tree height, for callers that
	// need to reason about recursion depth.
	Height() uint64
}

// Repairer is the external collaborator boundary for grammar
// construction: an adapter over a RePair-style compressor producing a
// binary SLP (two children per non-terminal) from a terminal
// sequence. Construction of the compressor itself is out of scope for
// this module, per the design notes; only this interface and a
// reference (non-production) implementation are supplied.
type Repairer interface {
	// Repair compresses seq (a sequence over [0, terminalCount)) into
	// a binary SLP, returning parallel left/right child arrays indexed
	// by (non-terminal id - terminalCount), and the root variable id.
	Repair(seq []uint64, terminalCount uint64) (left, right []uint64, root uint64)
}

// PlainSLP is the direct, two-children-per-non-terminal SLP with a
// precomputed span-length table.
type PlainSLP struct {
	terminalCount uint64
	root          uint64
	left, right   *intvec.PackedIntVector
	spanLen       *intvec.PackedIntVector
	height        uint64
}

var _ SLP = (*PlainSLP)(nil)

// Build constructs a PlainSLP from seq via repairer, then computes
// span lengths with a single post-order pass, per spec.md §4.2.
func Build(seq []uint64, terminalCount uint64, repairer Repairer) *PlainSLP {
	left, right, root := repairer.Repair(seq, terminalCount)
	return FromRules(terminalCount, left, right, root)
}

// FromRules builds a PlainSLP directly from already-binarized
// production rules: left[i]/right[i] are the children of non-terminal
// (terminalCount + i).
func FromRules(terminalCount uint64, left, right []uint64, root uint64) *PlainSLP {
	nNonTerminals := uint64(len(left))
	totalVars := terminalCount + nNonTerminals

	width := intvec.WidthFor(totalVars - 1)
	leftVec := intvec.New(int(nNonTerminals), width)
	rightVec := intvec.New(int(nNonTerminals), width)
	for i := uint64(0); i < nNonTerminals; i++ {
		leftVec.Set(int(i), left[i])
		rightVec.Set(int(i), right[i])
	}

	s := &PlainSLP{
		terminalCount: terminalCount,
		root:          root,
		left:          leftVec,
		right:         rightVec,
	}
	s.spanLen, s.height = computeSpanLengths(s, totalVars)
	return s
}

// computeSpanLengths performs the post-order pass of spec.md §4.2:
// spanLength(terminal) = 1, spanLength(v) = spanLength(left) +
// spanLength(right). Variable ids are assumed topologically producible
// in increasing order above terminalCount (RePair always introduces a
// new rule referencing only earlier symbols), so a single forward pass
// over non-terminals suffices; height is derived the same way.
func computeSpanLengths(s *PlainSLP, totalVars uint64) (*intvec.PackedIntVector, uint64) {
	spanOf := make([]uint64, totalVars)
	heightOf := make([]uint64, totalVars)
	for t := uint64(0); t < s.terminalCount; t++ {
		spanOf[t] = 1
		heightOf[t] = 1
	}
	for i := 0; i < s.left.Len(); i++ {
		v := s.terminalCount + uint64(i)
		l, r := s.left.Get(i), s.right.Get(i)
		spanOf[v] = spanOf[l] + spanOf[r]
		heightOf[v] = 1 + max64(heightOf[l], heightOf[r])
	}

	width := intvec.WidthFor(spanOf[s.root])
	packed := intvec.New(s.left.Len(), width)
	for i := 0; i < s.left.Len(); i++ {
		packed.Set(i, spanOf[s.terminalCount+uint64(i)])
	}
	return packed, heightOf[s.root]
}

func max64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

// Root implements SLP.
func (s *PlainSLP) Root() uint64 { return s.root }

// TerminalCount implements SLP.
func (s *PlainSLP) TerminalCount() uint64 { return s.terminalCount }

// Height implements SLP.
func (s *PlainSLP) Height() uint64 { return s.height }

// SpanLength implements SLP.
func (s *PlainSLP) SpanLength(v uint64) uint64 {
	if v < s.terminalCount {
		return 1
	}
	return s.spanLen.Get(int(v - s.terminalCount))
}

// Children implements SLP.
func (s *PlainSLP) Children(v uint64) (left, right uint64, isTerminal bool) {
	if v < s.terminalCount {
		return 0, 0, true
	}
	i := int(v - s.terminalCount)
	return s.left.Get(i), s.right.Get(i), false
}

// DocAt implements SLP.
func (s *PlainSLP) DocAt(k uint64) uint64 {
	if s.height > recursionThreshold {
		return s.docAtIterative(k)
	}
	return s.docAtRec(s.root, k)
}

func (s *PlainSLP) docAtRec(v, k uint64) uint64 {
	if v < s.terminalCount {
		return v
	}
	l, r, _ := s.Children(v)
	ls := s.SpanLength(l)
	if k < ls {
		return s.docAtRec(l, k)
	}
	return s.docAtRec(r, k-ls)
}

func (s *PlainSLP) docAtIterative(k uint64) uint64 {
	v := s.root
	for v >= s.terminalCount {
		l, r, _ := s.Children(v)
		ls := s.SpanLength(l)
		if k < ls {
			v = l
		} else {
			k -= ls
			v = r
		}
	}
	return v
}

// ExpandRange implements SLP: emits DA[b,e) in order. It descends to
// the deepest ancestor fully contained in [b,e) and yields the ordered
// terminal sequence beneath it, per spec.md §4.3.
func (s *PlainSLP) ExpandRange(b, e uint64, report func(doc uint64)) {
	if b >= e {
		return
	}
	s.expandRangeRec(s.root, 0, s.SpanLength(s.root), b, e, report)
}

// expandRangeRec expands the portion of [lo,hi) (the span of v) that
// intersects [b,e).
func (s *PlainSLP) expandRangeRec(v, lo, hi, b, e uint64, report func(doc uint64)) {
	if hi <= b || lo >= e {
		return
	}
	if v < s.terminalCount {
		report(v)
		return
	}
	if lo >= b && hi <= e {
		s.expandAll(v, report)
		return
	}
	left, right, _ := s.Children(v)
	mid := lo + s.SpanLength(left)
	s.expandRangeRec(left, lo, mid, b, e, report)
	s.expandRangeRec(right, mid, hi, b, e, report)
}

func (s *PlainSLP) expandAll(v uint64, report func(doc uint64)) {
	if v < s.terminalCount {
		report(v)
		return
	}
	left, right, _ := s.Children(v)
	s.expandAll(left, report)
	s.expandAll(right, report)
}

// WriteTo serializes root (u64), terminalCount (u64), nonterminal
// count (u64), then left, right, and span-length vectors, matching
// the `.slp` format in the design notes.
func (s *PlainSLP) WriteTo(w io.Writer) error {
	if err := persist.WriteUint64(w, s.root); err != nil {
		return err
	}
	if err := persist.WriteUint64(w, s.terminalCount); err != nil {
		return err
	}
	if err := persist.WriteUint64(w, uint64(s.left.Len())); err != nil {
		return err
	}
	if err := s.left.WriteTo(w); err != nil {
		return err
	}
	if err := s.right.WriteTo(w); err != nil {
		return err
	}
	return s.spanLen.WriteTo(w)
}

// Read deserializes a PlainSLP written by WriteTo.
func Read(r io.Reader) (*PlainSLP, error) {
	root, err := persist.ReadUint64(r)
	if err != nil {
		return nil, fmt.Errorf("slp: reading root: %w", err)
	}
	terminalCount, err := persist.ReadUint64(r)
	if err != nil {
		return nil, fmt.Errorf("slp: reading terminalCount: %w", err)
	}
	nNonTerminals, err := persist.ReadUint64(r)
	if err != nil {
		return nil, fmt.Errorf("slp: reading nonterminal count: %w", err)
	}
	left, err := intvec.Read(r)
	if err != nil {
		return nil, fmt.Errorf("slp: reading left vector: %w", err)
	}
	right, err := intvec.Read(r)
	if err != nil {
		return nil, fmt.Errorf("slp: reading right vector: %w", err)
	}
	spanLen, err := intvec.Read(r)
	if err != nil {
		return nil, fmt.Errorf("slp: reading span-length vector: %w", err)
	}
	if err := persist.CheckSize("left.Len", nNonTerminals, uint64(left.Len())); err != nil {
		return nil, err
	}

	s := &PlainSLP{
		terminalCount: terminalCount,
		root:          root,
		left:          left,
		right:         right,
		spanLen:       spanLen,
	}
	// height isn't persisted; recompute it here with computeSpanLengths'
	// bottom-up pass.
	_, s.height = computeSpanLengths(s, terminalCount+nNonTerminals)
	if s.SpanLength(s.root) == 0 && terminalCount == 0 {
		return nil, fmt.Errorf("slp: %w: empty grammar", persist.ErrSizeMismatch)
	}
	return s, nil
}
