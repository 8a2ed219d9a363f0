package setmerge

import (
	"math/rand/v2"
	"reflect"
	"testing"
)

func TestMergeBasic(t *testing.T) {
	sets := [][]uint64{{0, 2}, {1}, {2, 3}, {}}
	got := Merge(sets, 4)
	want := []uint64{0, 1, 2, 3}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Merge() = %v, want %v", got, want)
	}
}

func TestMergeEarlyExit(t *testing.T) {
	sets := [][]uint64{{0, 1, 2}, {0, 1, 2}, {0, 1, 2}}
	got := Merge(sets, 3)
	want := []uint64{0, 1, 2}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Merge() = %v, want %v", got, want)
	}
}

func TestMergeSingleSet(t *testing.T) {
	sets := [][]uint64{{5, 9, 12}}
	got := Merge(sets, 20)
	want := []uint64{5, 9, 12}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Merge() = %v, want %v", got, want)
	}
}

func bruteUnion(sets [][]uint64) []uint64 {
	seen := make(map[uint64]bool)
	for _, s := range sets {
		for _, v := range s {
			seen[v] = true
		}
	}
	var out []uint64
	for v := range seen {
		out = append(out, v)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func TestMergeAgainstBruteForce(t *testing.T) {
	prng := rand.New(rand.NewPCG(9, 3))
	const docCount = 30
	for trial := 0; trial < 200; trial++ {
		numSets := 1 + prng.IntN(8)
		sets := make([][]uint64, numSets)
		for i := range sets {
			present := make(map[uint64]bool)
			count := prng.IntN(10)
			for k := 0; k < count; k++ {
				present[uint64(prng.IntN(docCount))] = true
			}
			var s []uint64
			for v := range present {
				s = append(s, v)
			}
			for a := 1; a < len(s); a++ {
				for b := a; b > 0 && s[b] < s[b-1]; b-- {
					s[b], s[b-1] = s[b-1], s[b]
				}
			}
			sets[i] = s
		}

		got := Merge(sets, docCount)
		want := bruteUnion(sets)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("trial %d: Merge() = %v, want %v (sets=%v)", trial, got, want, sets)
		}
	}
}
