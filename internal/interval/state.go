package interval

// State is the fixed-length tuple of intervals, one per local slot of
// the method under analysis.
type State struct {
	Locals []Interval
}

// NewState returns a state of n bottom intervals.
func NewState(n int) State {
	s := State{Locals: make([]Interval, n)}
	for i := range s.Locals {
		s.Locals[i] = Bottom()
	}
	return s
}

// Clone returns an independent copy of s.
func (s State) Clone() State {
	locals := make([]Interval, len(s.Locals))
	copy(locals, s.Locals)
	return State{Locals: locals}
}

// Equal reports pointwise equality of two states of the same length.
func (s State) Equal(o State) bool {
	if len(s.Locals) != len(o.Locals) {
		return false
	}
	for i := range s.Locals {
		if s.Locals[i] != o.Locals[i] {
			return false
		}
	}
	return true
}

// JoinState is the pointwise lattice join of two states.
func JoinState(a, b State) State {
	out := State{Locals: make([]Interval, len(a.Locals))}
	for i := range a.Locals {
		out.Locals[i] = Join(a.Locals[i], b.Locals[i])
	}
	return out
}

// WidenState is the pointwise widening of acc against next.
func WidenState(acc, next State) (State, bool) {
	out := State{Locals: make([]Interval, len(acc.Locals))}
	changed := false
	for i := range acc.Locals {
		w, c := Widen(acc.Locals[i], next.Locals[i])
		out.Locals[i] = w
		changed = changed || c
	}
	return out, changed
}

// NarrowState is the pointwise narrowing of acc against prev.
func NarrowState(acc, prev State) (State, bool) {
	out := State{Locals: make([]Interval, len(acc.Locals))}
	changed := false
	for i := range acc.Locals {
		n, c := Narrow(acc.Locals[i], prev.Locals[i])
		out.Locals[i] = n
		changed = changed || c
	}
	return out, changed
}
