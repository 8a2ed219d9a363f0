// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package sa declares the suffix-array collaborator boundary a
// document-listing index is built on top of: construction of the
// underlying compressed suffix array / FM-index is treated as an
// external concern, out of scope for this module.
package sa

// Index is the minimal contract a compressed suffix array must offer
// to support document listing: locating the SA range of a pattern,
// reading SA values and their document ids, and reporting the
// collection's dimensions.
type Index interface {
	// Count returns the SA range [sp, ep) of suffixes prefixed by
	// pattern, or an error if the underlying index cannot answer.
	Count(pattern []byte) (sp, ep int, err error)
	// SAAt returns SA[i], the starting text position of the i-th
	// suffix in lexicographic order.
	SAAt(i int) int
	// DocOfPos returns the id of the document containing text
	// position p.
	DocOfPos(p int) int
	// Len returns n, the total length of the concatenated, delimited
	// text.
	Len() int
	// DocCount returns d, the number of documents in the collection.
	DocCount() int
}
