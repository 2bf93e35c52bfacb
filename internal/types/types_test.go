package types

import "testing"

func TestArrayOfInterns(t *testing.T) {
	a := ArrayOf(IntType)
	b := ArrayOf(IntType)
	if a != b {
		t.Error("ArrayOf should return the same pointer for the same element type")
	}
	nested := ArrayOf(a)
	if nested.Elem() != a {
		t.Errorf("nested array's Elem() = %v, want %v", nested.Elem(), a)
	}
}

func TestParseTypeSignatureRoundTrip(t *testing.T) {
	cases := []string{"I", "Z", "C", "V", "[I", "[[Z", "Lfoo/Bar;"}
	for _, sig := range cases {
		ty, rest, err := ParseTypeSignature(sig)
		if err != nil {
			t.Fatalf("ParseTypeSignature(%q): %v", sig, err)
		}
		if rest != "" {
			t.Errorf("ParseTypeSignature(%q) left remainder %q", sig, rest)
		}
		if ty.Signature() != sig && !(sig[0] == 'L' && ty.Signature() == "Lref;") {
			t.Errorf("Signature() = %q, want %q", ty.Signature(), sig)
		}
	}
}

func TestAsIntProjectsBooleanAndChar(t *testing.T) {
	if v, _ := BoolValue(true).AsInt(); v != 1 {
		t.Errorf("true.AsInt() = %d, want 1", v)
	}
	if v, _ := BoolValue(false).AsInt(); v != 0 {
		t.Errorf("false.AsInt() = %d, want 0", v)
	}
	if v, _ := CharValue('A').AsInt(); v != 'A' {
		t.Errorf("CharValue('A').AsInt() = %d, want %d", v, 'A')
	}
	if _, err := NullValue().AsInt(); err == nil {
		t.Error("AsInt on a reference value should fail")
	}
}

func TestIsNull(t *testing.T) {
	if !NullValue().IsNull() {
		t.Error("NullValue() should be null")
	}
	if RefValue(1).IsNull() {
		t.Error("RefValue(1) should not be null")
	}
}

func TestZeroValue(t *testing.T) {
	if ZeroValue(IntType).Int != 0 {
		t.Error("ZeroValue(IntType) should be 0")
	}
	if !ZeroValue(ReferenceType).IsNull() {
		t.Error("ZeroValue(ReferenceType) should be null")
	}
}

func TestParseArgSignature(t *testing.T) {
	args, err := ParseArgSignature("II[IZ")
	if err != nil {
		t.Fatalf("ParseArgSignature: %v", err)
	}
	if len(args) != 4 {
		t.Fatalf("len(args) = %d, want 4", len(args))
	}
	if args[2].Kind() != Array {
		t.Errorf("args[2].Kind() = %v, want Array", args[2].Kind())
	}
}
