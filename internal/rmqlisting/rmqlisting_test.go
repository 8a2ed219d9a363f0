package rmqlisting

import (
	"math/rand/v2"
	"sort"
	"testing"
)

func bruteDistinct(da []uint64, sp, ep uint64) []uint64 {
	seen := make(map[uint64]bool)
	for i := sp; i < ep; i++ {
		seen[da[i]] = true
	}
	var out []uint64
	for d := range seen {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func collect(report func(func(uint64))) []uint64 {
	var out []uint64
	report(func(d uint64) { out = append(out, d) })
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestSadakaneAgainstBruteForce(t *testing.T) {
	da := []uint64{0, 1, 2, 0, 1, 1, 2, 3, 0, 2, 1, 3, 3, 0}
	const docCount = 4
	s := BuildSadakane(da, docCount)

	prng := rand.New(rand.NewPCG(5, 11))
	for trial := 0; trial < 300; trial++ {
		sp := uint64(prng.IntN(len(da)))
		ep := sp + uint64(prng.IntN(len(da)-int(sp))+1)
		if ep > uint64(len(da)) {
			ep = uint64(len(da))
		}
		got := collect(func(report func(uint64)) { s.List(sp, ep, report) })
		want := bruteDistinct(da, sp, ep)
		if !equalSlices(got, want) {
			t.Fatalf("Sadakane.List(%d,%d) = %v, want %v", sp, ep, got, want)
		}
	}
}

func TestILCPAgainstBruteForce(t *testing.T) {
	da := []uint64{0, 1, 2, 0, 1, 1, 2, 3, 0, 2, 1, 3, 3, 0}
	const docCount = 4
	s := BuildILCP(da, docCount)

	prng := rand.New(rand.NewPCG(5, 12))
	for trial := 0; trial < 300; trial++ {
		sp := uint64(prng.IntN(len(da)))
		ep := sp + uint64(prng.IntN(len(da)-int(sp))+1)
		if ep > uint64(len(da)) {
			ep = uint64(len(da))
		}
		got := collect(func(report func(uint64)) { s.List(sp, ep, report) })
		want := bruteDistinct(da, sp, ep)
		if !equalSlices(got, want) {
			t.Fatalf("ILCP.List(%d,%d) = %v, want %v", sp, ep, got, want)
		}
	}
}

func equalSlices(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
