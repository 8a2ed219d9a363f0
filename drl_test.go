// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package drl

import (
	"bytes"
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duscob/drl/internal/slp"
	"github.com/duscob/drl/sa"
)

func buildFakeIndex(t *testing.T, docs [][]byte, cfg Config) (*Index, sa.Index) {
	t.Helper()
	fake := sa.BuildFake(docs, '$')
	idx, err := Build(fake, cfg, slp.NaivePair{})
	require.NoError(t, err, "Build")
	return idx, fake
}

func bruteList(docs [][]byte, pattern []byte) []uint64 {
	out := []uint64{}
	for id, d := range docs {
		if bytes.Contains(d, pattern) {
			out = append(out, uint64(id))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func equalUint64(a, b []uint64) bool {
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

func TestListBasicScenario(t *testing.T) {
	docs := [][]byte{[]byte("TATA"), []byte("LATA"), []byte("AAAA")}
	cfg := DefaultConfig()
	cfg.StoringFactor = 2

	idx, fake := buildFakeIndex(t, docs, cfg)

	for _, pattern := range [][]byte{[]byte("ATA"), []byte("TA"), []byte("AAAA"), []byte("ZZZ"), []byte("A")} {
		got, err := idx.List(fake, pattern)
		require.NoError(t, err, "List(%q)", pattern)
		want := bruteList(docs, pattern)
		assert.Equal(t, want, got, "List(%q)", pattern)
	}
}

func TestListAgainstBruteForceRandomized(t *testing.T) {
	alphabet := []byte("abc")
	prng := rand.New(rand.NewPCG(1, 2))

	var docs [][]byte
	for i := 0; i < 12; i++ {
		length := 3 + prng.IntN(8)
		d := make([]byte, length)
		for j := range d {
			d[j] = alphabet[prng.IntN(len(alphabet))]
		}
		docs = append(docs, d)
	}

	for _, cfg := range []Config{
		mustConfig(DefaultConfig(), ChunkPlain, SLPPlain, 2),
		mustConfig(DefaultConfig(), ChunkPlain, SLPCombined, 3),
		mustConfig(DefaultConfig(), ChunkGrammarCompressed, SLPLight, 4),
	} {
		idx, fake := buildFakeIndex(t, docs, cfg)

		for _, pattern := range [][]byte{[]byte("a"), []byte("b"), []byte("c"), []byte("ab"), []byte("ba"), []byte("aa")} {
			got, err := idx.List(fake, pattern)
			if err != nil {
				t.Fatalf("List(%q): %v", pattern, err)
			}
			want := bruteList(docs, pattern)
			if !equalUint64(got, want) {
				t.Fatalf("cfg=%+v List(%q) = %v, want %v", cfg, pattern, got, want)
			}
		}
	}
}

func mustConfig(base Config, chunk ChunkVariant, variant SLPVariant, sf int) Config {
	base.ChunkVariant = chunk
	base.SLPVariant = variant
	base.StoringFactor = sf
	return base
}

func TestSaveAndOpenRoundTrip(t *testing.T) {
	docs := [][]byte{[]byte("TATA"), []byte("LATA"), []byte("AAAA")}
	cfg := DefaultConfig()
	cfg.StoringFactor = 2
	idx, fake := buildFakeIndex(t, docs, cfg)

	var buf bytes.Buffer
	if err := idx.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	reread, err := ReadFrom(&buf)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}

	for _, pattern := range [][]byte{[]byte("ATA"), []byte("AAAA"), []byte("ZZZ")} {
		got, err := reread.List(fake, pattern)
		if err != nil {
			t.Fatalf("List(%q): %v", pattern, err)
		}
		want := bruteList(docs, pattern)
		if !equalUint64(got, want) {
			t.Fatalf("reloaded List(%q) = %v, want %v", pattern, got, want)
		}
	}
}

func TestSaveAndOpenRoundTripGrammarCompressed(t *testing.T) {
	docs := [][]byte{[]byte("TATATATA"), []byte("LATALATA"), []byte("AAAAAAAA"), []byte("TATALATA")}
	cfg := mustConfig(DefaultConfig(), ChunkGrammarCompressed, SLPPlain, 2)
	idx, fake := buildFakeIndex(t, docs, cfg)

	var buf bytes.Buffer
	require.NoError(t, idx.WriteTo(&buf), "WriteTo")

	reread, err := ReadFrom(&buf)
	require.NoError(t, err, "ReadFrom")

	for _, pattern := range [][]byte{[]byte("ATA"), []byte("AAAA"), []byte("TATA"), []byte("ZZZ")} {
		got, err := reread.List(fake, pattern)
		require.NoError(t, err, "List(%q)", pattern)
		want := bruteList(docs, pattern)
		assert.Equal(t, want, got, "reloaded List(%q)", pattern)
	}
}

func TestListEmptyRangeReturnsEmpty(t *testing.T) {
	docs := [][]byte{[]byte("TATA"), []byte("LATA")}
	idx, fake := buildFakeIndex(t, docs, DefaultConfig())
	got, err := idx.List(fake, []byte("ZZZZZ"))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("List(no-match) = %v, want empty", got)
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	docs := [][]byte{[]byte("TATA")}
	fake := sa.BuildFake(docs, '$')
	bad := DefaultConfig()
	bad.StoringFactor = 0
	if _, err := Build(fake, bad, slp.NaivePair{}); err == nil {
		t.Fatalf("Build with invalid config: want error, got nil")
	}
}
