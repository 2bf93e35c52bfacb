package vm

import (
	"testing"

	"jpamb/internal/heap"
	"jpamb/internal/types"
)

func TestDecodeArgsScalars(t *testing.T) {
	h := heap.New()
	values, err := DecodeArgs(h, []*types.Type{types.IntType, types.BooleanType, types.CharType}, []byte{5, 1, 'x'})
	if err != nil {
		t.Fatalf("DecodeArgs: %v", err)
	}
	if values[0].Int != 5 || !values[1].Bool || values[2].Char != 'x' {
		t.Errorf("values = %+v", values)
	}
}

func TestDecodeArgsArray(t *testing.T) {
	h := heap.New()
	arrType := types.ArrayOf(types.IntType)
	values, err := DecodeArgs(h, []*types.Type{arrType}, []byte{2, 10, 20})
	if err != nil {
		t.Fatalf("DecodeArgs: %v", err)
	}
	obj := h.Get(values[0].Ref)
	if obj == nil || len(obj.Elements) != 2 {
		t.Fatalf("expected a 2-element array, got %+v", obj)
	}
	if obj.Elements[0].Int != 10 || obj.Elements[1].Int != 20 {
		t.Errorf("elements = %+v", obj.Elements)
	}
}

func TestDecodeArgsOutOfBytes(t *testing.T) {
	h := heap.New()
	if _, err := DecodeArgs(h, []*types.Type{types.IntType, types.IntType}, []byte{1}); err == nil {
		t.Fatal("expected an error when data runs out mid-decode")
	}
}

func TestEncodeArgsRoundTripsThroughDecode(t *testing.T) {
	argTypes := []*types.Type{types.IntType, types.BooleanType}
	buf, err := EncodeArgs(argTypes, []int32{-5, 1})
	if err != nil {
		t.Fatalf("EncodeArgs: %v", err)
	}
	h := heap.New()
	values, err := DecodeArgs(h, argTypes, buf)
	if err != nil {
		t.Fatalf("DecodeArgs: %v", err)
	}
	if values[0].Int != -5 {
		t.Errorf("values[0].Int = %d, want -5", values[0].Int)
	}
	if !values[1].Bool {
		t.Error("values[1].Bool = false, want true")
	}
}

func TestEncodeArgsClampsToInt8Range(t *testing.T) {
	buf, err := EncodeArgs([]*types.Type{types.IntType}, []int32{100000})
	if err != nil {
		t.Fatalf("EncodeArgs: %v", err)
	}
	if int8(buf[0]) != 127 {
		t.Errorf("clamped byte = %d, want 127", int8(buf[0]))
	}
}

func TestEncodeArgsRejectsArrayType(t *testing.T) {
	arrType := types.ArrayOf(types.IntType)
	if _, err := EncodeArgs([]*types.Type{arrType}, []int32{0}); err == nil {
		t.Fatal("expected an error for an ARRAY-typed argument")
	}
}
