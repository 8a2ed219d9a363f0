// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package slp

import (
	"fmt"
	"io"

	"github.com/duscob/drl/internal/intvec"
	"github.com/duscob/drl/internal/persist"
)

// LightSLP trades the precomputed span-length table for lower memory:
// span lengths are recomputed on demand by a bottom-up walk each time
// SpanLength/DocAt/ExpandRange need them, memoized only within a
// single call. It is the variant to pick when the grammar is built
// once and queried rarely enough that re-deriving span lengths is
// cheaper than carrying an extra PackedIntVector alongside the
// rules — the same plain/precomputed-table split the design notes
// describe for RMQ listing (ILCP vs. Sadakane) show up again here.
type LightSLP struct {
	terminalCount uint64
	root          uint64
	left, right   *intvec.PackedIntVector
}

var _ SLP = (*LightSLP)(nil)

// FromRulesLight builds a LightSLP directly from binarized rules.
func FromRulesLight(terminalCount uint64, left, right []uint64, root uint64) *LightSLP {
	nNonTerminals := uint64(len(left))
	totalVars := terminalCount + nNonTerminals
	width := intvec.WidthFor(totalVars - 1)

	leftVec := intvec.New(int(nNonTerminals), width)
	rightVec := intvec.New(int(nNonTerminals), width)
	for i := uint64(0); i < nNonTerminals; i++ {
		leftVec.Set(int(i), left[i])
		rightVec.Set(int(i), right[i])
	}
	return &LightSLP{terminalCount: terminalCount, root: root, left: leftVec, right: rightVec}
}

// Root implements SLP.
func (s *LightSLP) Root() uint64 { return s.root }

// TerminalCount implements SLP.
func (s *LightSLP) TerminalCount() uint64 { return s.terminalCount }

// Height implements SLP.
func (s *LightSLP) Height() uint64 {
	_, h := s.spans()
	return h
}

// Children implements SLP.
func (s *LightSLP) Children(v uint64) (left, right uint64, isTerminal bool) {
	if v < s.terminalCount {
		return 0, 0, true
	}
	i := int(v - s.terminalCount)
	return s.left.Get(i), s.right.Get(i), false
}

// spans recomputes the span-length table (and tree height) from
// scratch, a linear pass over all rules.
func (s *LightSLP) spans() ([]uint64, uint64) {
	n := s.left.Len()
	totalVars := s.terminalCount + uint64(n)
	span := make([]uint64, totalVars)
	height := make([]uint64, totalVars)
	for t := uint64(0); t < s.terminalCount; t++ {
		span[t] = 1
		height[t] = 1
	}
	for i := 0; i < n; i++ {
		v := s.terminalCount + uint64(i)
		l, r := s.left.Get(i), s.right.Get(i)
		span[v] = span[l] + span[r]
		h := height[l]
		if height[r] > h {
			h = height[r]
		}
		height[v] = h + 1
	}
	return span, height[s.root]
}

// SpanLength implements SLP. It recomputes the full span table on
// every call; callers that need repeated lookups (sampledtree
// construction, chunk building) should instead use SpanTable once and
// reuse it.
func (s *LightSLP) SpanLength(v uint64) uint64 {
	if v < s.terminalCount {
		return 1
	}
	span, _ := s.spans()
	return span[v]
}

// SpanTable exposes the full recomputed span-length table, indexed by
// variable id, for callers doing a bulk pass rather than point queries
// (DocAt and ExpandRange use it once per call).
func (s *LightSLP) SpanTable() []uint64 {
	span, _ := s.spans()
	return span
}

// DocAt implements SLP.
func (s *LightSLP) DocAt(k uint64) uint64 {
	span := s.SpanTable()
	v := s.root
	for v >= s.terminalCount {
		l, r, _ := s.Children(v)
		ls := span[l]
		if k < ls {
			v = l
		} else {
			k -= ls
			v = r
		}
	}
	return v
}

// ExpandRange implements SLP.
func (s *LightSLP) ExpandRange(b, e uint64, report func(doc uint64)) {
	if b >= e {
		return
	}
	span := s.SpanTable()
	s.expandRangeRec(span, s.root, 0, span[s.root], b, e, report)
}

func (s *LightSLP) expandRangeRec(span []uint64, v, lo, hi, b, e uint64, report func(doc uint64)) {
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
	mid := lo + span[left]
	s.expandRangeRec(span, left, lo, mid, b, e, report)
	s.expandRangeRec(span, right, mid, hi, b, e, report)
}

func (s *LightSLP) expandAll(v uint64, report func(doc uint64)) {
	if v < s.terminalCount {
		report(v)
		return
	}
	left, right, _ := s.Children(v)
	s.expandAll(left, report)
	s.expandAll(right, report)
}

// WriteTo serializes the LightSLP: just root, terminalCount, and the
// left/right rule vectors, per the design's `.lslp` format.
func (s *LightSLP) WriteTo(w io.Writer) error {
	if err := persist.WriteUint64(w, s.root); err != nil {
		return err
	}
	if err := persist.WriteUint64(w, s.terminalCount); err != nil {
		return err
	}
	if err := s.left.WriteTo(w); err != nil {
		return err
	}
	return s.right.WriteTo(w)
}

// ReadLight deserializes a LightSLP written by WriteTo.
func ReadLight(r io.Reader) (*LightSLP, error) {
	root, err := persist.ReadUint64(r)
	if err != nil {
		return nil, fmt.Errorf("slp: reading root: %w", err)
	}
	terminalCount, err := persist.ReadUint64(r)
	if err != nil {
		return nil, fmt.Errorf("slp: reading terminalCount: %w", err)
	}
	left, err := intvec.Read(r)
	if err != nil {
		return nil, fmt.Errorf("slp: reading left vector: %w", err)
	}
	right, err := intvec.Read(r)
	if err != nil {
		return nil, fmt.Errorf("slp: reading right vector: %w", err)
	}
	return &LightSLP{terminalCount: terminalCount, root: root, left: left, right: right}, nil
}
