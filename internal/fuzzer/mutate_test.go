package fuzzer

import (
	"math/rand"
	"testing"
)

func TestMutateNeverModifiesTheInputInPlace(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	original := []byte{10, 20, 30, 40}
	snapshot := append([]byte(nil), original...)

	for i := 0; i < 50; i++ {
		mutate(rng, original)
	}
	for i, b := range original {
		if b != snapshot[i] {
			t.Fatalf("mutate modified its input in place: original[%d] = %d, want %d", i, b, snapshot[i])
		}
	}
}

func TestMutateOfEmptyInputProducesOneByte(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	child := mutate(rng, nil)
	if len(child) != 1 {
		t.Errorf("len(mutate(nil)) = %d, want 1", len(child))
	}
}

func TestMutateCanChangeLength(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	data := []byte{1, 2, 3}
	sawDifferentLength := false
	for i := 0; i < 200; i++ {
		if len(mutate(rng, data)) != len(data) {
			sawDifferentLength = true
			break
		}
	}
	if !sawDifferentLength {
		t.Error("expected at least one grow/shrink mutation across 200 attempts")
	}
}
