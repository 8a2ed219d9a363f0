package docarray

import "testing"

// T = "TATA$LATA$AAAA$", delimiter '$', 3 documents.
func textFixture() (text string, sa []int) {
	text = "TATA$LATA$AAAA$"
	// Suffix array computed by brute force for the fixture below.
	n := len(text)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	// simple insertion sort by suffix, n is tiny
	for i := 1; i < n; i++ {
		for j := i; j > 0 && text[idx[j]:] < text[idx[j-1]:]; j-- {
			idx[j], idx[j-1] = idx[j-1], idx[j]
		}
	}
	return text, idx
}

func TestBuildBorderAndDocArray(t *testing.T) {
	text, sa := textFixture()
	n := len(text)

	border := BuildBorder(n, func(i int) bool { return text[i] == '$' })

	docOf := func(pos int) int {
		// doc id = rank1 of border up to and including pos... but the
		// contract is docOfPosition(i) = rank1(B, i), exclusive.
		return int(border.Rank1(uint64(pos)))
	}

	da := Build(n, 3, func(i int) int { return sa[i] }, border)

	for i := 0; i < n; i++ {
		want := docOf(sa[i])
		if got := int(da.Get(i)); got != want {
			t.Fatalf("DA[%d] = %d, want %d (saAt=%d)", i, got, want, sa[i])
		}
	}
}

func TestBuildParallelMatchesSerial(t *testing.T) {
	text, sa := textFixture()
	n := len(text)
	border := BuildBorder(n, func(i int) bool { return text[i] == '$' })

	serial := Build(n, 3, func(i int) int { return sa[i] }, border)
	parallel := BuildParallel(n, 3, func(i int) int { return sa[i] }, border)

	for i := 0; i < n; i++ {
		if serial.Get(i) != parallel.Get(i) {
			t.Fatalf("mismatch at %d: serial=%d parallel=%d", i, serial.Get(i), parallel.Get(i))
		}
	}
}

func TestSingleDocument(t *testing.T) {
	text := "AAAA$"
	n := len(text)
	border := BuildBorder(n, func(i int) bool { return text[i] == '$' })

	// identity SA for simplicity, not a real suffix order, only
	// exercising the d=1 path where every position maps to doc 0.
	da := Build(n, 1, func(i int) int { return i }, border)
	for i := 0; i < n; i++ {
		if got := da.Get(i); got != 0 {
			t.Fatalf("DA[%d] = %d, want 0 for single-document collection", i, got)
		}
	}
}
