// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package rmqlisting implements document listing directly over the
// document array via a precomputed auxiliary array and a static range
// minimum query structure, following Muthukrishnan/Sadakane's
// approach: rather than descending a grammar or sampled tree, listing
// is answered by repeatedly finding the minimum of an auxiliary array
// within the query range and splitting around it.
//
// Two variants are provided: Sadakane (auxiliary array keyed on each
// position's previous occurrence of the same document, scanned
// left-to-right) and ILCP (keyed on each position's next occurrence,
// scanned right-to-left — the "run-head" dual of the same technique).
// Both answer identical query results; which is cheaper to build and
// query depends on access pattern, per the design notes.
package rmqlisting

import "github.com/duscob/drl/internal/rmq"

// Sadakane answers document-listing queries over a fixed document
// array using the previous-occurrence auxiliary array.
type Sadakane struct {
	da   []uint64
	prev *rmq.RMQ // prev[i] = 1+(largest j<i with da[j]==da[i]), or 0
}

// BuildSadakane constructs the auxiliary array and RMQ structure over
// da, a single O(n) pass.
func BuildSadakane(da []uint64, docCount uint64) *Sadakane {
	last := make([]int, docCount)
	for i := range last {
		last[i] = -1
	}
	aux := make([]uint64, len(da))
	for i, d := range da {
		if last[d] >= 0 {
			aux[i] = uint64(last[d]) + 1
		}
		last[d] = i
	}
	return &Sadakane{da: da, prev: rmq.Build(aux)}
}

// List reports the distinct documents in da[sp, ep), in no particular
// order, via report.
func (s *Sadakane) List(sp, ep uint64, report func(doc uint64)) {
	if sp >= ep {
		return
	}
	s.list(int(sp), int(ep), int(sp), report)
}

// list scans [scanSp, scanEp) for minima of the auxiliary array, but
// tests each candidate's previous occurrence against origSp, the
// start of the original, whole query range — never the shrinking scan
// window — so that a document already reported at an earlier
// recursion level is never reported again.
func (s *Sadakane) list(scanSp, scanEp, origSp int, report func(doc uint64)) {
	if scanSp >= scanEp {
		return
	}
	m := s.prev.ArgMin(scanSp, scanEp-1)
	if s.prev.ValueAt(m) > uint64(origSp) {
		return
	}
	report(s.da[m])
	s.list(scanSp, m, origSp, report)
	s.list(m+1, scanEp, origSp, report)
}

// ILCP is the right-to-left dual of Sadakane, keyed on each position's
// next occurrence of the same document instead of its previous one.
// Finding the position whose next occurrence is furthest away (a
// range-maximum query) is encoded as a range-minimum query over the
// complement len(da)-nextOcc, since package rmq only implements
// ArgMin.
type ILCP struct {
	da  []uint64
	n   uint64
	inv *rmq.RMQ // inv[i] = n - nextOcc(i); minimal inv <=> maximal nextOcc
}

// BuildILCP constructs the auxiliary array and RMQ structure over da.
func BuildILCP(da []uint64, docCount uint64) *ILCP {
	nextOcc := make([]int, docCount)
	for i := range nextOcc {
		nextOcc[i] = len(da)
	}
	n := len(da)
	inv := make([]uint64, n)
	for i := n - 1; i >= 0; i-- {
		d := da[i]
		inv[i] = uint64(n - nextOcc[d])
		nextOcc[d] = i
	}
	return &ILCP{da: da, n: uint64(n), inv: rmq.Build(inv)}
}

// List reports the distinct documents in da[sp, ep) via report.
func (s *ILCP) List(sp, ep uint64, report func(doc uint64)) {
	if sp >= ep {
		return
	}
	s.list(int(sp), int(ep), int(ep), report)
}

// list scans [scanSp, scanEp) for minima of the auxiliary array, but
// tests each candidate's next occurrence against origEp, the end of
// the original, whole query range — never the shrinking scan window —
// so that a document already reported at an earlier recursion level
// is never reported again.
func (s *ILCP) list(scanSp, scanEp, origEp int, report func(doc uint64)) {
	if scanSp >= scanEp {
		return
	}
	m := s.inv.ArgMin(scanSp, scanEp-1)
	// inv[m] = n - nextOcc(m); nextOcc(m) >= origEp  <=>  inv[m] <= n-origEp.
	if s.inv.ValueAt(m) > s.n-uint64(origEp) {
		return
	}
	report(s.da[m])
	s.list(scanSp, m, origEp, report)
	s.list(m+1, scanEp, origEp, report)
}
