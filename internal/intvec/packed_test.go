package intvec

import (
	"bytes"
	"math/rand/v2"
	"testing"
)

func TestPackedIntVectorGetSet(t *testing.T) {
	for _, width := range []uint{0, 1, 3, 7, 13, 31, 63, 64} {
		v := New(50, width)
		prng := rand.New(rand.NewPCG(uint64(width), 7))
		max := uint64(0)
		if width > 0 {
			if width == 64 {
				max = ^uint64(0)
			} else {
				max = 1<<width - 1
			}
		}

		want := make([]uint64, 50)
		for i := range want {
			var val uint64
			switch {
			case max == ^uint64(0):
				val = prng.Uint64()
			case max > 0:
				val = prng.Uint64() % (max + 1)
			}
			want[i] = val
			v.Set(i, val)
		}

		for i, w := range want {
			if got := v.Get(i); got != w {
				t.Fatalf("width=%d Get(%d) = %d, want %d", width, i, got, w)
			}
		}
	}
}

func TestWidthFor(t *testing.T) {
	cases := []struct {
		max  uint64
		want uint
	}{
		{0, 0}, {1, 1}, {2, 2}, {3, 2}, {4, 3}, {255, 8}, {256, 9},
	}
	for _, c := range cases {
		if got := WidthFor(c.max); got != c.want {
			t.Fatalf("WidthFor(%d) = %d, want %d", c.max, got, c.want)
		}
	}
}

func TestPackedIntVectorRoundTrip(t *testing.T) {
	v := New(100, 17)
	for i := 0; i < 100; i++ {
		v.Set(i, uint64(i*37)%(1<<17))
	}

	buf := new(bytes.Buffer)
	if err := v.WriteTo(buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	got, err := Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if got.Len() != v.Len() || got.BitWidth() != v.BitWidth() {
		t.Fatalf("mismatch: len %d/%d width %d/%d", got.Len(), v.Len(), got.BitWidth(), v.BitWidth())
	}
	for i := 0; i < 100; i++ {
		if got.Get(i) != v.Get(i) {
			t.Fatalf("Get(%d) = %d, want %d", i, got.Get(i), v.Get(i))
		}
	}
}

func TestPackedIntVectorOutOfRangePanics(t *testing.T) {
	v := New(5, 4)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on out-of-range Get")
		}
	}()
	v.Get(5)
}
