// Package seed converts interval abstract-interpretation results into
// byte-encoded TestCases that seed the fuzzer's corpus: representative
// values per argument, their Cartesian product, each tuple encoded and
// added to the corpus. Grounded on original_source/src/interval_testcase.c.
package seed

import (
	"jpamb/internal/coverage"
	"jpamb/internal/interval"
	"jpamb/internal/testcase"
	"jpamb/internal/types"
	"jpamb/internal/vm"
)

// Generate builds seed TestCases from the final interval for each
// argument local (argIntervals[i] is the result for argument i, e.g.
// the analysis's block-0 in-state projected onto the parameter slots)
// and adds each to corpus. If any argument is ARRAY-typed, Generate adds
// nothing and returns 0: original_source/src/interval_testcase.c:68-69's
// build_testcase_from_values aborts the whole tuple (returns NULL) the
// moment it meets an array argument, rather than shrinking the encoded
// buffer around it. Skipping just that one argument instead would shift
// every byte meant for a later argument into the array's length-byte
// slot once vm.DecodeArgs walks the full, un-shrunk argTypes list, so
// the only faithful behavior is to abort seeding entirely for such
// signatures. A top interval (⊤, the common case for an unconstrained
// parameter) still contributes its own representative set via
// interval.Representatives, since Top is just (−∞, +∞).
func Generate(argTypes []*types.Type, argIntervals []interval.Interval, corpus *testcase.Corpus, cov *coverage.Service) int {
	if len(argTypes) != len(argIntervals) {
		return 0
	}
	for _, t := range argTypes {
		if t.Kind() == types.Array {
			return 0
		}
	}

	var reps [][]int32
	for i := range argTypes {
		r := interval.Representatives(argIntervals[i])
		if len(r) == 0 {
			r = []int32{0}
		}
		reps = append(reps, r)
	}

	if len(reps) == 0 {
		tc := testcase.New([]byte{0}, cov.NewLocal())
		if corpus.Add(tc) {
			return 1
		}
		return 0
	}

	added := 0
	var recurse func(idx int, acc []int32)
	recurse = func(idx int, acc []int32) {
		if idx == len(reps) {
			buf, err := vm.EncodeArgs(argTypes, acc)
			if err != nil {
				return
			}
			tc := testcase.New(buf, cov.NewLocal())
			if corpus.Add(tc) {
				added++
			}
			return
		}
		for _, v := range reps[idx] {
			recurse(idx+1, append(acc, v))
		}
	}
	recurse(0, make([]int32, 0, len(reps)))

	return added
}
