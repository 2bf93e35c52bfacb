package outcome

import "testing"

func TestWeightedString(t *testing.T) {
	cases := []struct {
		w    Weighted
		want string
	}{
		{Weighted{OK, 100}, "ok;100%"},
		{Weighted{DivideByZero, 0}, "divide by zero;0%"},
		{Weighted{Unknown, 50}, "*;50%"},
		{Weighted{OutOfBounds, 250}, "out of bounds;100%"}, // clamped
		{Weighted{NullPointer, -5}, "null pointer;0%"},     // clamped
	}
	for _, c := range cases {
		if got := c.w.String(); got != c.want {
			t.Errorf("%+v.String() = %q, want %q", c.w, got, c.want)
		}
	}
}
