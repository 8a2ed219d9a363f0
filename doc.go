// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package drl provides compressed document listing over a collection
// of documents indexed by an external suffix array (package sa).
//
// Given a pattern P, List reports the distinct ids of the documents
// whose text contains P, in time proportional to the number of
// distinct documents reported rather than the number of occurrences
// of P. Build wires four layers on top of a caller-supplied sa.Index:
//
//   - a document array (DA), recording which document owns each
//     suffix-array position;
//   - a grammar (package slp) compressing the DA into a straight-line
//     program;
//   - a sampled tree (package sampledtree) projected from the
//     grammar's parse tree, whose nodes partition the DA into ranges
//     short enough to enumerate directly;
//   - a chunk store (package chunkstore) precomputing, per sampled
//     leaf and per internal node, the distinct documents its range
//     covers.
//
// A query first asks the suffix array for the SA range of a pattern,
// decomposes that range into a minimal cover of sampled-tree nodes
// plus boundary positions (package cover), looks up each node's
// precomputed document set, and merges them (package setmerge).
package drl
