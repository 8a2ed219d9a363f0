package chunkstore

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/duscob/drl/internal/slp"
)

func fixture() [][]uint64 {
	return [][]uint64{
		{0, 1},
		{0, 2},
		{},
		{1},
		{0, 1, 2},
	}
}

func TestPlainStore(t *testing.T) {
	docs := fixture()
	s := Build(docs, 3)
	if s.LeafCount() != len(docs) {
		t.Fatalf("LeafCount() = %d, want %d", s.LeafCount(), len(docs))
	}
	for i, want := range docs {
		if got := s.Docs(i); !reflect.DeepEqual(got, want) {
			t.Fatalf("Docs(%d) = %v, want %v", i, got, want)
		}
	}
}

func TestPlainStoreRoundTrip(t *testing.T) {
	docs := fixture()
	s := Build(docs, 3)

	var buf bytes.Buffer
	if err := s.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	for i, want := range docs {
		if g := got.Docs(i); !reflect.DeepEqual(g, want) {
			t.Fatalf("Docs(%d) after round trip = %v, want %v", i, g, want)
		}
	}
}

func TestGCStore(t *testing.T) {
	docs := fixture()
	s := BuildGC(docs, 3, slp.NaivePair{})
	for i, want := range docs {
		got := s.Docs(i)
		if len(want) == 0 {
			if len(got) != 0 {
				t.Fatalf("Docs(%d) = %v, want empty", i, got)
			}
			continue
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("Docs(%d) = %v, want %v", i, got, want)
		}
	}
}

func TestGCStoreRoundTrip(t *testing.T) {
	docs := fixture()
	s := BuildGC(docs, 3, slp.NaivePair{})

	var buf bytes.Buffer
	if err := s.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	got, err := ReadGC(&buf)
	if err != nil {
		t.Fatalf("ReadGC: %v", err)
	}
	for i, want := range docs {
		g := got.Docs(i)
		if len(want) == 0 && len(g) == 0 {
			continue
		}
		if !reflect.DeepEqual(g, want) {
			t.Fatalf("Docs(%d) after round trip = %v, want %v", i, g, want)
		}
	}
}

func TestBuildFromRanges(t *testing.T) {
	da := []uint64{0, 0, 1, 2, 2, 1}
	leafBounds := [][2]uint64{{0, 2}, {2, 4}, {4, 6}}
	s := BuildFromRanges(len(leafBounds),
		func(leaf int) (uint64, uint64) { return leafBounds[leaf][0], leafBounds[leaf][1] },
		func(pos uint64) uint64 { return da[pos] },
		3)

	want := [][]uint64{{0}, {1, 2}, {1, 2}}
	for i, w := range want {
		if got := s.Docs(i); !reflect.DeepEqual(got, w) {
			t.Fatalf("Docs(%d) = %v, want %v", i, got, w)
		}
	}
}
