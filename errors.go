// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package drl

import "errors"

// Sentinel errors for the four error kinds named in the design: a
// missing/invalid construction parameter, an I/O failure, a corrupt
// persisted artifact, and a cross-structure invariant that failed to
// hold at load time. RangeError is not an error returned to callers —
// out-of-bounds query ranges yield an empty result, per design — and
// no function in this package returns ErrRange.
var (
	ErrConfig    = errors.New("drl: config error")
	ErrIO        = errors.New("drl: io error")
	ErrFormat    = errors.New("drl: format error")
	ErrInvariant = errors.New("drl: invariant violation")
	ErrRange     = errors.New("drl: range error")
)
