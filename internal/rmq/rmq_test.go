package rmq

import (
	"math/rand/v2"
	"testing"
)

func bruteArgMin(values []uint64, lo, hi int) int {
	best := lo
	for i := lo + 1; i <= hi; i++ {
		if values[i] < values[best] {
			best = i
		}
	}
	return best
}

func TestRMQAgainstBruteForce(t *testing.T) {
	prng := rand.New(rand.NewPCG(42, 7))
	values := make([]uint64, 200)
	for i := range values {
		values[i] = uint64(prng.IntN(50))
	}

	r := Build(values)

	for trial := 0; trial < 2000; trial++ {
		lo := prng.IntN(len(values))
		hi := lo + prng.IntN(len(values)-lo)

		want := bruteArgMin(values, lo, hi)
		got := r.ArgMin(lo, hi)

		if values[got] != values[want] {
			t.Fatalf("ArgMin(%d,%d) = %d (val %d), want val %d", lo, hi, got, values[got], values[want])
		}
	}
}

func TestRMQSingleElement(t *testing.T) {
	r := Build([]uint64{42})
	if got := r.ArgMin(0, 0); got != 0 {
		t.Fatalf("ArgMin(0,0) = %d, want 0", got)
	}
}

func TestRMQTieBreaksLeft(t *testing.T) {
	r := Build([]uint64{5, 5, 5})
	if got := r.ArgMin(0, 2); got != 0 {
		t.Fatalf("ArgMin(0,2) = %d, want 0 (leftmost tie)", got)
	}
}
