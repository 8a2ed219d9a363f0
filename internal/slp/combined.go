// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package slp

import (
	"fmt"
	"io"

	"github.com/duscob/drl/internal/intvec"
	"github.com/duscob/drl/internal/persist"
)

// CombinedSLP augments PlainSLP with run-length-coded terminal runs:
// a non-terminal may directly encode "terminal t, repeated len times"
// instead of a binary chain of ordinary rules. This is the common case
// for document arrays, where long runs of the same document id are
// frequent (a single document's suffixes cluster together before
// grammar compression), and collapsing them avoids O(len) rule chains.
type CombinedSLP struct {
	terminalCount uint64
	root          uint64

	// isRun[i] reports whether non-terminal (terminalCount+i) is a run
	// node; runTerm/runLen give its terminal and repeat count. For
	// non-run non-terminals, left/right hold ordinary children.
	isRun         *intvec.PackedIntVector // 0/1, width 1
	left, right   *intvec.PackedIntVector
	runTerm       *intvec.PackedIntVector
	runLen        *intvec.PackedIntVector
	spanLen       *intvec.PackedIntVector
	height        uint64
}

var _ SLP = (*CombinedSLP)(nil)

// runThreshold is the minimum repeat count at which FromRulesCombined
// marks a non-terminal expanding to one repeated terminal as a run
// node.
const runThreshold = 4

// FromRulesCombined builds a CombinedSLP from binarized rules the same
// way FromRules does, then marks as a run node every non-terminal
// whose whole expansion is a single terminal repeated at least
// runThreshold times, whatever the shape of its subtree. The binary
// rules of run nodes are kept.
func FromRulesCombined(terminalCount uint64, left, right []uint64, root uint64) *CombinedSLP {
	plain := FromRules(terminalCount, left, right, root)

	n := plain.left.Len()
	isRun := intvec.New(n, 1)
	runTerm := intvec.New(n, intvec.WidthFor(terminalCount))
	runLen := intvec.New(n, intvec.WidthFor(plain.SpanLength(root)))

	for i := 0; i < n; i++ {
		v := terminalCount + uint64(i)
		term, count, ok := detectRun(plain, v)
		if ok && count >= runThreshold {
			isRun.Set(i, 1)
			runTerm.Set(i, term)
			runLen.Set(i, count)
		}
	}

	return &CombinedSLP{
		terminalCount: terminalCount,
		root:          root,
		isRun:         isRun,
		left:          plain.left,
		right:         plain.right,
		runTerm:       runTerm,
		runLen:        runLen,
		spanLen:       plain.spanLen,
		height:        plain.height,
	}
}

// detectRun reports whether v expands to a uniform run of a single
// terminal, returning that terminal and the run length.
func detectRun(p *PlainSLP, v uint64) (term, count uint64, ok bool) {
	if v < p.terminalCount {
		return v, 1, true
	}
	l, r, _ := p.Children(v)
	lt, lc, lok := detectRun(p, l)
	if !lok {
		return 0, 0, false
	}
	rt, rc, rok := detectRun(p, r)
	if !rok || rt != lt {
		return 0, 0, false
	}
	return lt, lc + rc, true
}

// Root implements SLP.
func (s *CombinedSLP) Root() uint64 { return s.root }

// TerminalCount implements SLP.
func (s *CombinedSLP) TerminalCount() uint64 { return s.terminalCount }

// Height implements SLP.
func (s *CombinedSLP) Height() uint64 { return s.height }

// SpanLength implements SLP.
func (s *CombinedSLP) SpanLength(v uint64) uint64 {
	if v < s.terminalCount {
		return 1
	}
	return s.spanLen.Get(int(v - s.terminalCount))
}

// Children implements SLP. For run nodes, Children returns the node's
// original binary rule children, so that generic descent code keeps
// working; DocAt and ExpandRange use runInfo instead to skip
// descending below a run node.
func (s *CombinedSLP) Children(v uint64) (left, right uint64, isTerminal bool) {
	if v < s.terminalCount {
		return 0, 0, true
	}
	i := int(v - s.terminalCount)
	return s.left.Get(i), s.right.Get(i), false
}

func (s *CombinedSLP) runInfo(v uint64) (term, count uint64, ok bool) {
	if v < s.terminalCount {
		return 0, 0, false
	}
	i := int(v - s.terminalCount)
	if s.isRun.Get(i) == 0 {
		return 0, 0, false
	}
	return s.runTerm.Get(i), s.runLen.Get(i), true
}

// DocAt implements SLP.
func (s *CombinedSLP) DocAt(k uint64) uint64 {
	v := s.root
	for {
		if v < s.terminalCount {
			return v
		}
		if term, _, ok := s.runInfo(v); ok {
			return term
		}
		l, r, _ := s.Children(v)
		ls := s.SpanLength(l)
		if k < ls {
			v = l
		} else {
			k -= ls
			v = r
		}
	}
}

// ExpandRange implements SLP.
func (s *CombinedSLP) ExpandRange(b, e uint64, report func(doc uint64)) {
	if b >= e {
		return
	}
	s.expandRangeRec(s.root, 0, s.SpanLength(s.root), b, e, report)
}

func (s *CombinedSLP) expandRangeRec(v, lo, hi, b, e uint64, report func(doc uint64)) {
	if hi <= b || lo >= e {
		return
	}
	if v < s.terminalCount {
		report(v)
		return
	}
	if term, count, ok := s.runInfo(v); ok {
		start := lo
		if b > start {
			start = b
		}
		end := hi
		if e < end {
			end = e
		}
		for i := start; i < end; i++ {
			report(term)
		}
		_ = count
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

func (s *CombinedSLP) expandAll(v uint64, report func(doc uint64)) {
	if v < s.terminalCount {
		report(v)
		return
	}
	if term, count, ok := s.runInfo(v); ok {
		for i := uint64(0); i < count; i++ {
			report(term)
		}
		return
	}
	left, right, _ := s.Children(v)
	s.expandAll(left, report)
	s.expandAll(right, report)
}

// WriteTo serializes the CombinedSLP, matching the design's `.cslp`
// format: the same PlainSLP layout followed by isRun/runTerm/runLen.
func (s *CombinedSLP) WriteTo(w io.Writer) error {
	if err := persist.WriteUint64(w, s.root); err != nil {
		return err
	}
	if err := persist.WriteUint64(w, s.terminalCount); err != nil {
		return err
	}
	if err := persist.WriteUint64(w, uint64(s.left.Len())); err != nil {
		return err
	}
	for _, v := range []*intvec.PackedIntVector{s.left, s.right, s.spanLen, s.isRun, s.runTerm, s.runLen} {
		if err := v.WriteTo(w); err != nil {
			return err
		}
	}
	return nil
}

// ReadCombined deserializes a CombinedSLP written by WriteTo.
func ReadCombined(r io.Reader) (*CombinedSLP, error) {
	root, err := persist.ReadUint64(r)
	if err != nil {
		return nil, fmt.Errorf("slp: reading root: %w", err)
	}
	terminalCount, err := persist.ReadUint64(r)
	if err != nil {
		return nil, fmt.Errorf("slp: reading terminalCount: %w", err)
	}
	n, err := persist.ReadUint64(r)
	if err != nil {
		return nil, fmt.Errorf("slp: reading nonterminal count: %w", err)
	}

	vecs := make([]*intvec.PackedIntVector, 6)
	for i := range vecs {
		v, err := intvec.Read(r)
		if err != nil {
			return nil, fmt.Errorf("slp: reading combined vector %d: %w", i, err)
		}
		vecs[i] = v
	}
	if err := persist.CheckSize("left.Len", n, uint64(vecs[0].Len())); err != nil {
		return nil, err
	}

	var height uint64
	s := &CombinedSLP{
		terminalCount: terminalCount,
		root:          root,
		left:          vecs[0],
		right:         vecs[1],
		spanLen:       vecs[2],
		isRun:         vecs[3],
		runTerm:       vecs[4],
		runLen:        vecs[5],
	}
	_, height = computeSpanLengths(&PlainSLP{
		terminalCount: terminalCount,
		root:          root,
		left:          vecs[0],
		right:         vecs[1],
	}, terminalCount+n)
	s.height = height
	return s, nil
}
