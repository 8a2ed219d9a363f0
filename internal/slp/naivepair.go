// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package slp

// NaivePair is a reference Repairer: it repeatedly finds the most
// frequent adjacent pair in the sequence and replaces every
// non-overlapping occurrence with a fresh non-terminal, until no pair
// repeats. It is O(n^2) in the worst case and exists only to exercise
// the Repairer boundary in tests and small examples; production
// grammar construction is out of scope, per the design notes (a real
// linear-time RePair implementation is a distinct, much larger
// undertaking that original_source/ itself treats as an external
// library dependency).
type NaivePair struct{}

type pairKey struct{ a, b uint64 }

// Repair implements Repairer.
func (NaivePair) Repair(seq []uint64, terminalCount uint64) (left, right []uint64, root uint64) {
	cur := append([]uint64(nil), seq...)
	nextID := terminalCount

	for len(cur) > 1 {
		counts := make(map[pairKey]int)
		for i := 0; i+1 < len(cur); i++ {
			counts[pairKey{cur[i], cur[i+1]}]++
		}

		var bestKey pairKey
		bestCount := 1
		for k, c := range counts {
			if c > bestCount {
				bestCount = c
				bestKey = k
			}
		}
		if bestCount <= 1 {
			break
		}

		newVar := nextID
		nextID++
		left = append(left, bestKey.a)
		right = append(right, bestKey.b)

		out := make([]uint64, 0, len(cur))
		for i := 0; i < len(cur); i++ {
			if i+1 < len(cur) && cur[i] == bestKey.a && cur[i+1] == bestKey.b {
				out = append(out, newVar)
				i++
			} else {
				out = append(out, cur[i])
			}
		}
		cur = out
	}

	// Fold any remaining sequence of length > 1 into a left-leaning
	// chain of binary rules, so the result is always a single root
	// variable with exactly two children per non-terminal.
	for len(cur) > 1 {
		newVar := nextID
		nextID++
		left = append(left, cur[0])
		right = append(right, cur[1])
		cur = append([]uint64{newVar}, cur[2:]...)
	}

	if len(cur) == 0 {
		return left, right, terminalCount
	}
	return left, right, cur[0]
}
