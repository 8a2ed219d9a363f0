package bitvector

import (
	"bytes"
	"math/rand/v2"
	"testing"
)

func TestBitVectorBasic(t *testing.T) {
	bv := New(100)
	set := []uint64{0, 1, 5, 63, 64, 65, 99}
	for _, i := range set {
		bv.Set(i)
	}
	bv.Freeze()

	for i := uint64(0); i < 100; i++ {
		want := false
		for _, s := range set {
			if s == i {
				want = true
			}
		}
		if got := bv.Test(i); got != want {
			t.Fatalf("Test(%d) = %v, want %v", i, got, want)
		}
	}

	if got := bv.Count(); got != uint64(len(set)) {
		t.Fatalf("Count() = %d, want %d", got, len(set))
	}
}

func TestBitVectorRankSelect(t *testing.T) {
	bv := New(200)
	set := []uint64{2, 3, 10, 64, 127, 128, 199}
	for _, i := range set {
		bv.Set(i)
	}
	bv.Freeze()

	for k, want := range set {
		got, ok := bv.Select1(uint64(k))
		if !ok || got != want {
			t.Fatalf("Select1(%d) = (%d,%v), want (%d,true)", k, got, ok, want)
		}
	}

	if _, ok := bv.Select1(uint64(len(set))); ok {
		t.Fatalf("Select1 out of range should fail")
	}

	// Rank1(i) == number of set bits < i
	for i := uint64(0); i <= 200; i++ {
		want := uint64(0)
		for _, s := range set {
			if s < i {
				want++
			}
		}
		if got := bv.Rank1(i); got != want {
			t.Fatalf("Rank1(%d) = %d, want %d", i, got, want)
		}
	}
}

func TestBitVectorPredecessorSuccessor(t *testing.T) {
	bv := New(64)
	for _, i := range []uint64{5, 10, 20} {
		bv.Set(i)
	}
	bv.Freeze()

	if got, ok := bv.Predecessor(12); !ok || got != 10 {
		t.Fatalf("Predecessor(12) = (%d,%v), want (10,true)", got, ok)
	}
	if got, ok := bv.Successor(12); !ok || got != 20 {
		t.Fatalf("Successor(12) = (%d,%v), want (20,true)", got, ok)
	}
	if _, ok := bv.Predecessor(4); ok {
		t.Fatalf("Predecessor(4) should fail, nothing before")
	}
	if _, ok := bv.Successor(21); ok {
		t.Fatalf("Successor(21) should fail, nothing after")
	}
}

func TestBitVectorRoundTrip(t *testing.T) {
	bv := New(513)
	prng := rand.New(rand.NewPCG(1, 2))
	var want []uint64
	for i := uint64(0); i < 513; i++ {
		if prng.IntN(3) == 0 {
			bv.Set(i)
			want = append(want, i)
		}
	}
	bv.Freeze()

	buf := new(bytes.Buffer)
	if err := bv.WriteTo(buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	got, err := ReadBitVector(buf)
	if err != nil {
		t.Fatalf("ReadBitVector: %v", err)
	}

	if got.Len() != bv.Len() || got.Count() != bv.Count() {
		t.Fatalf("round trip mismatch: len %d/%d count %d/%d", got.Len(), bv.Len(), got.Count(), bv.Count())
	}
	for _, i := range want {
		if !got.Test(i) {
			t.Fatalf("bit %d lost in round trip", i)
		}
	}
}

func TestSparseBitVector(t *testing.T) {
	values := []uint64{0, 1, 5, 17, 18, 100, 1000, 1023}
	s := BuildSparse(1024, values)

	if s.Len() != uint64(len(values)) {
		t.Fatalf("Len() = %d, want %d", s.Len(), len(values))
	}

	for k, want := range values {
		got, ok := s.Select1(uint64(k))
		if !ok || got != want {
			t.Fatalf("Select1(%d) = (%d,%v), want (%d,true)", k, got, ok, want)
		}
	}

	for v := uint64(0); v < 1024; v++ {
		want := false
		for _, x := range values {
			if x == v {
				want = true
			}
		}
		if got := s.Test(v); got != want {
			t.Fatalf("Test(%d) = %v, want %v", v, got, want)
		}
	}
}

func TestSparseBitVectorRoundTrip(t *testing.T) {
	values := []uint64{3, 4, 9, 9999, 10000, 50000}
	s := BuildSparse(100000, values)

	buf := new(bytes.Buffer)
	if err := s.WriteTo(buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	got, err := ReadSparse(buf)
	if err != nil {
		t.Fatalf("ReadSparse: %v", err)
	}

	for k, want := range values {
		v, ok := got.Select1(uint64(k))
		if !ok || v != want {
			t.Fatalf("Select1(%d) = (%d,%v), want (%d,true)", k, v, ok, want)
		}
	}
}

func TestSparseBitVectorEmpty(t *testing.T) {
	s := BuildSparse(100, nil)
	if s.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", s.Len())
	}
	if _, ok := s.Select1(0); ok {
		t.Fatalf("Select1(0) on empty set should fail")
	}
	if got := s.Rank1(50); got != 0 {
		t.Fatalf("Rank1(50) = %d, want 0", got)
	}
}
