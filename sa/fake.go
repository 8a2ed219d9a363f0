// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package sa

import (
	"bytes"
	"sort"
)

// Fake is a plain, uncompressed in-memory suffix array: O(n) extra
// words of space, O(n log n) construction via sort.Slice, and O(|P|
// log n) pattern counting via two binary searches. It exists only as
// a reference Index for tests and the CLI's --build smoke-test path;
// a production system would swap it for an FM-index/RLCSA, which this
// module does not implement (see sa.Index doc comment).
type Fake struct {
	text   []byte
	sa     []int
	border []int // border[i] = document id containing position i
	docs   int
}

var _ Index = (*Fake)(nil)

// BuildFake constructs a Fake suffix array over a concatenation of
// docs, each terminated by the reserved delimiter byte delim. delim
// must not occur within any document.
func BuildFake(docs [][]byte, delim byte) *Fake {
	var text []byte
	border := make([]int, 0)
	for id, d := range docs {
		text = append(text, d...)
		text = append(text, delim)
		for range d {
			border = append(border, id)
		}
		border = append(border, id)
	}

	n := len(text)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool {
		return bytes.Compare(text[idx[i]:], text[idx[j]:]) < 0
	})

	return &Fake{text: text, sa: idx, border: border, docs: len(docs)}
}

// Count implements sa.Index via two binary searches over the sorted
// suffix order, locating the range of suffixes prefixed by pattern.
func (f *Fake) Count(pattern []byte) (sp, ep int, err error) {
	n := len(f.sa)
	lo := sort.Search(n, func(i int) bool {
		return bytes.Compare(f.suffixPrefix(f.sa[i], len(pattern)), pattern) >= 0
	})
	hi := sort.Search(n, func(i int) bool {
		return bytes.Compare(f.suffixPrefix(f.sa[i], len(pattern)), pattern) > 0
	})
	return lo, hi, nil
}

func (f *Fake) suffixPrefix(pos, length int) []byte {
	end := pos + length
	if end > len(f.text) {
		end = len(f.text)
	}
	return f.text[pos:end]
}

// SAAt implements sa.Index.
func (f *Fake) SAAt(i int) int { return f.sa[i] }

// DocOfPos implements sa.Index.
func (f *Fake) DocOfPos(p int) int { return f.border[p] }

// Len implements sa.Index.
func (f *Fake) Len() int { return len(f.text) }

// DocCount implements sa.Index.
func (f *Fake) DocCount() int { return f.docs }
