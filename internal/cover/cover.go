// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package cover computes the canonical-node decomposition of a query
// range over a sampled tree: the maximal antichain of tree nodes whose
// ranges are fully contained in [sp, ep) and whose union, together
// with the leftover boundary positions ("fringe"), exactly equals
// [sp, ep). This is the same decomposition a segment tree range query
// performs, adapted to the sampled tree's parent/child pointers
// instead of a complete binary heap array.
package cover

// Tree is the subset of sampledtree.Tree that Cover needs. Declared
// locally to avoid a dependency from this package back onto
// sampledtree's concrete type, keeping cover reusable over any tree
// shape satisfying this contract.
type Tree interface {
	Root() uint64
	IsLeaf(id uint64) bool
	Children(id uint64) (left, right uint64)
	Range(id uint64) (lo, hi uint64)
}

// Result holds the output of a Cover computation.
type Result struct {
	// Nodes holds the ids of fully-covered tree nodes, in left-to-right
	// order.
	Nodes []uint64
	// Fringe holds individual DA positions not covered by any Nodes
	// entry, in increasing order — always a prefix and/or suffix of
	// [sp, ep) coming from leaves straddling the query boundary.
	Fringe []uint64
}

// Compute returns the canonical decomposition of [sp, ep) over t. An
// empty or inverted range yields a zero Result.
func Compute(t Tree, sp, ep uint64) Result {
	var res Result
	if sp >= ep {
		return res
	}
	collect(t, t.Root(), sp, ep, &res)
	return res
}

func collect(t Tree, id, sp, ep uint64, res *Result) {
	lo, hi := t.Range(id)
	if hi <= sp || lo >= ep {
		return
	}
	if sp <= lo && hi <= ep {
		res.Nodes = append(res.Nodes, id)
		return
	}
	if t.IsLeaf(id) {
		start, end := lo, hi
		if sp > start {
			start = sp
		}
		if ep < end {
			end = ep
		}
		for p := start; p < end; p++ {
			res.Fringe = append(res.Fringe, p)
		}
		return
	}
	left, right := t.Children(id)
	collect(t, left, sp, ep, res)
	collect(t, right, sp, ep, res)
}
