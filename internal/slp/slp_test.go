package slp

import (
	"bytes"
	"testing"
)

// buildFixture compresses a small repeating sequence with NaivePair
// and returns the resulting rules, usable across all three variants.
func buildFixture() (left, right []uint64, root, terminalCount uint64, seq []uint64) {
	// doc ids 0,1,2 ; sequence chosen to have a repeating "0 1" pair.
	seq = []uint64{0, 1, 0, 1, 2, 0, 1, 0, 1, 2}
	terminalCount = 3
	l, r, rt := NaivePair{}.Repair(seq, terminalCount)
	return l, r, rt, terminalCount, seq
}

func checkExpandMatchesDocAt(t *testing.T, s SLP, seq []uint64) {
	t.Helper()
	for i := range seq {
		if got := s.DocAt(uint64(i)); got != seq[i] {
			t.Fatalf("DocAt(%d) = %d, want %d", i, got, seq[i])
		}
	}
	for b := 0; b <= len(seq); b++ {
		for e := b; e <= len(seq); e++ {
			var got []uint64
			s.ExpandRange(uint64(b), uint64(e), func(doc uint64) { got = append(got, doc) })
			if len(got) != e-b {
				t.Fatalf("ExpandRange(%d,%d) produced %d docs, want %d", b, e, len(got), e-b)
			}
			for i, doc := range got {
				if doc != seq[b+i] {
					t.Fatalf("ExpandRange(%d,%d)[%d] = %d, want %d", b, e, i, doc, seq[b+i])
				}
			}
		}
	}
}

func TestPlainSLP(t *testing.T) {
	left, right, root, terminalCount, seq := buildFixture()
	s := FromRules(terminalCount, left, right, root)

	if got := s.SpanLength(s.Root()); got != uint64(len(seq)) {
		t.Fatalf("root span length = %d, want %d", got, len(seq))
	}
	checkExpandMatchesDocAt(t, s, seq)
}

func TestCombinedSLP(t *testing.T) {
	left, right, root, terminalCount, seq := buildFixture()
	s := FromRulesCombined(terminalCount, left, right, root)
	checkExpandMatchesDocAt(t, s, seq)
}

func TestLightSLP(t *testing.T) {
	left, right, root, terminalCount, seq := buildFixture()
	s := FromRulesLight(terminalCount, left, right, root)
	checkExpandMatchesDocAt(t, s, seq)
}

func TestCombinedSLPDetectsRun(t *testing.T) {
	terminalCount := uint64(2)
	seq := []uint64{0, 0, 0, 0, 0, 0, 0, 0, 1}
	left, right, root := NaivePair{}.Repair(seq, terminalCount)
	s := FromRulesCombined(terminalCount, left, right, root)
	checkExpandMatchesDocAt(t, s, seq)
}

func TestPlainSLPRoundTrip(t *testing.T) {
	left, right, root, terminalCount, seq := buildFixture()
	s := FromRules(terminalCount, left, right, root)

	var buf bytes.Buffer
	if err := s.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	checkExpandMatchesDocAt(t, got, seq)
}
