// Package interval implements the integer-interval abstract domain and
// its transfer functions for the arithmetic opcodes the analyzer cares
// about, grounded on original_source/src/domain_interval.c.
package interval

import (
	"math"

	"golang.org/x/exp/constraints"
)

const (
	negInf = math.MinInt32
	posInf = math.MaxInt32
)

// Interval is [Lower, Upper] over ℤ ∪ {−∞, +∞}, represented with
// int32's own min/max as the sentinel infinities (matching the
// reference implementation's use of INT_MIN/INT_MAX).
type Interval struct {
	Lower, Upper int32
}

// Top is the universal interval (−∞, +∞).
func Top() Interval { return Interval{Lower: negInf, Upper: posInf} }

// Bottom is the empty interval, represented canonically as (1, 0).
func Bottom() Interval { return Interval{Lower: 1, Upper: 0} }

// Singleton returns the one-point interval [v, v].
func Singleton(v int32) Interval { return Interval{Lower: v, Upper: v} }

func (i Interval) IsBottom() bool { return i.Lower > i.Upper }
func (i Interval) IsTop() bool    { return i.Lower == negInf && i.Upper == posInf }

// Contains reports whether v lies within the interval (bottom contains
// nothing).
func (i Interval) Contains(v int32) bool {
	return !i.IsBottom() && i.Lower <= v && v <= i.Upper
}

// min32/max32 are generic over any integer type so the same helper
// backs both the int32 endpoint comparisons here and the int64 corner-
// point arithmetic in the Mul/Div transfer functions below.
func min32[T constraints.Integer](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func max32[T constraints.Integer](a, b T) T {
	if a > b {
		return a
	}
	return b
}

// Join is the componentwise min/max lattice join.
func Join(a, b Interval) Interval {
	if a.IsBottom() {
		return b
	}
	if b.IsBottom() {
		return a
	}
	return Interval{Lower: min32(a.Lower, b.Lower), Upper: max32(a.Upper, b.Upper)}
}

// Meet is the componentwise max/min lattice meet.
func Meet(a, b Interval) Interval {
	return Interval{Lower: max32(a.Lower, b.Lower), Upper: min32(a.Upper, b.Upper)}
}

// Widen forces finite-height convergence: any endpoint that grew between
// acc and next is accelerated straight to its infinity.
func Widen(acc, next Interval) (Interval, bool) {
	changed := false
	out := acc
	if acc.Lower > next.Lower {
		out.Lower = negInf
		changed = true
	}
	if acc.Upper < next.Upper {
		out.Upper = posInf
		changed = true
	}
	return out, changed
}

// Narrow recovers precision lost to widening; it is the meet with the
// previous (pre-widening) iterate.
func Narrow(acc, prev Interval) (Interval, bool) {
	out := Meet(acc, prev)
	return out, out != acc
}

// Add is the interval sum transfer: [l1+l2, u1+u2]. Computed in int64 and
// clamped, same as Mul/Div below, so that an already-infinite endpoint
// saturates instead of wrapping around int32.
func Add(a, b Interval) Interval {
	return clamp64(int64(a.Lower)+int64(b.Lower), int64(a.Upper)+int64(b.Upper))
}

// Sub is the interval difference transfer: [l1-u2, u1-l2].
func Sub(a, b Interval) Interval {
	return clamp64(int64(a.Lower)-int64(b.Upper), int64(a.Upper)-int64(b.Lower))
}

// Mul takes the min/max of the four corner products.
func Mul(a, b Interval) Interval {
	products := [4]int64{
		int64(a.Lower) * int64(b.Lower),
		int64(a.Lower) * int64(b.Upper),
		int64(a.Upper) * int64(b.Lower),
		int64(a.Upper) * int64(b.Upper),
	}
	lo, hi := products[0], products[0]
	for _, p := range products[1:] {
		lo = min32(lo, p)
		hi = max32(hi, p)
	}
	return clamp64(lo, hi)
}

// Div is the interval quotient transfer: if the denominator interval
// contains 0, the result is ⊤ (division-by-zero is possible somewhere
// in the interval); otherwise it's the min/max of the four quotients.
func Div(a, b Interval) Interval {
	if b.Lower <= 0 && b.Upper >= 0 {
		return Top()
	}
	candidates := [4]int64{
		int64(a.Lower) / int64(b.Lower),
		int64(a.Lower) / int64(b.Upper),
		int64(a.Upper) / int64(b.Lower),
		int64(a.Upper) / int64(b.Upper),
	}
	lo, hi := candidates[0], candidates[0]
	for _, c := range candidates[1:] {
		lo = min32(lo, c)
		hi = max32(hi, c)
	}
	return clamp64(lo, hi)
}

func clamp64(lo, hi int64) Interval {
	if lo < negInf {
		lo = negInf
	}
	if hi > posInf {
		hi = posInf
	}
	return Interval{Lower: int32(lo), Upper: int32(hi)}
}

// Representatives picks representative integer values from a non-top,
// non-bottom interval for seed generation: the lower bound, the upper
// bound, and an interior midpoint (0 when the interval straddles zero).
// Top and bottom intervals are handled by the caller.
func Representatives(i Interval) []int32 {
	if i.IsBottom() {
		return nil
	}
	lo, hi := i.Lower, i.Upper
	if lo == hi {
		return []int32{lo}
	}
	mid := mid(lo, hi)
	if mid == lo || mid == hi {
		return []int32{lo, hi}
	}
	return []int32{lo, mid, hi}
}

func mid(lo, hi int32) int32 {
	if lo < 0 && hi > 0 {
		return 0
	}
	return int32((int64(lo) + int64(hi)) / 2)
}
