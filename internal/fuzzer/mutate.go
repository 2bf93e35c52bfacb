// Package fuzzer's mutate.go implements the non-identity byte mutator
// the reference implementation leaves stubbed. This one composes three
// classic grey-box-fuzzer moves: byte flip, small arithmetic delta, and
// length change, chosen uniformly per call.
package fuzzer

import "math/rand"

// mutate returns a mutated copy of data. It never mutates data itself
// (the corpus entry must remain intact for future mutation rounds).
func mutate(rng *rand.Rand, data []byte) []byte {
	if len(data) == 0 {
		return []byte{byte(rng.Intn(256))}
	}

	child := make([]byte, len(data))
	copy(child, data)

	switch rng.Intn(3) {
	case 0: // flip a random bit in a random byte
		idx := rng.Intn(len(child))
		child[idx] ^= 1 << uint(rng.Intn(8))

	case 1: // add a small signed delta to a random byte
		idx := rng.Intn(len(child))
		delta := int8(rng.Intn(17) - 8) // [-8, 8]
		child[idx] = byte(int8(child[idx]) + delta)

	case 2: // grow or shrink by one byte
		if rng.Intn(2) == 0 || len(child) <= 1 {
			child = append(child, byte(rng.Intn(256)))
		} else {
			idx := rng.Intn(len(child))
			child = append(child[:idx], child[idx+1:]...)
		}
	}

	return child
}
