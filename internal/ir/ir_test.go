package ir

import "testing"

func TestOpcodeStringKnownAndUnknown(t *testing.T) {
	if got := OpBinary.String(); got != "BINARY" {
		t.Errorf("OpBinary.String() = %q, want BINARY", got)
	}
	if got := Opcode(999).String(); got != "UNKNOWN" {
		t.Errorf("Opcode(999).String() = %q, want UNKNOWN", got)
	}
	if got := Opcode(-1).String(); got != "UNKNOWN" {
		t.Errorf("Opcode(-1).String() = %q, want UNKNOWN", got)
	}
}

func TestIfCondEval(t *testing.T) {
	cases := []struct {
		c    IfCond
		a, b int32
		want bool
	}{
		{Eq, 3, 3, true},
		{Eq, 3, 4, false},
		{Ne, 3, 4, true},
		{Lt, 2, 3, true},
		{Lt, 3, 3, false},
		{Le, 3, 3, true},
		{Gt, 4, 3, true},
		{Ge, 3, 3, true},
		{Ge, 2, 3, false},
	}
	for _, c := range cases {
		if got := c.c.Eval(c.a, c.b); got != c.want {
			t.Errorf("%v.Eval(%d, %d) = %v, want %v", c.c, c.a, c.b, got, c.want)
		}
	}
}

func TestIsTerminator(t *testing.T) {
	terminators := []Opcode{OpReturn, OpThrow, OpGoto, OpIf, OpIfZ}
	for _, op := range terminators {
		if !(Instruction{Opcode: op}).IsTerminator() {
			t.Errorf("%v should be a terminator", op)
		}
	}
	nonTerminators := []Opcode{OpLoad, OpStore, OpPush, OpBinary, OpInvoke, OpDup}
	for _, op := range nonTerminators {
		if (Instruction{Opcode: op}).IsTerminator() {
			t.Errorf("%v should not be a terminator", op)
		}
	}
}

func TestIsBranch(t *testing.T) {
	branches := []Opcode{OpGoto, OpIf, OpIfZ}
	for _, op := range branches {
		if !(Instruction{Opcode: op}).IsBranch() {
			t.Errorf("%v should be a branch", op)
		}
	}
	if (Instruction{Opcode: OpReturn}).IsBranch() {
		t.Error("RETURN should not be a branch despite being a terminator")
	}
}
