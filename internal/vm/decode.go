package vm

import (
	"fmt"

	"jpamb/internal/heap"
	"jpamb/internal/types"
)

// DecodeArgs walks argTypes and consumes data to build the locals array
// for a fuzzer-mode run: one byte each for INT (sign-extended), BOOLEAN
// (low bit), CHAR (raw); ARRAY reads a one-byte length then that many
// element bytes recursively, allocating an Object in h to obtain a
// reference. Parsing fails if bytes are exhausted or a type is
// unsupported.
func DecodeArgs(h *heap.Heap, argTypes []*types.Type, data []byte) ([]types.Value, error) {
	locals := make([]types.Value, len(argTypes))
	rest := data
	for i, t := range argTypes {
		v, r, err := decodeValue(h, t, rest)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		locals[i] = v
		rest = r
	}
	return locals, nil
}

func decodeValue(h *heap.Heap, t *types.Type, data []byte) (types.Value, []byte, error) {
	switch t.Kind() {
	case types.Int:
		if len(data) < 1 {
			return types.Value{}, nil, fmt.Errorf("out of bytes decoding int")
		}
		return types.IntValue(int32(int8(data[0]))), data[1:], nil

	case types.Boolean:
		if len(data) < 1 {
			return types.Value{}, nil, fmt.Errorf("out of bytes decoding boolean")
		}
		return types.BoolValue(data[0]&1 == 1), data[1:], nil

	case types.Char:
		if len(data) < 1 {
			return types.Value{}, nil, fmt.Errorf("out of bytes decoding char")
		}
		return types.CharValue(data[0]), data[1:], nil

	case types.Array:
		if len(data) < 1 {
			return types.Value{}, nil, fmt.Errorf("out of bytes decoding array length")
		}
		n := int(data[0])
		rest := data[1:]
		elems := make([]types.Value, n)
		for i := 0; i < n; i++ {
			v, r, err := decodeValue(h, t.Elem(), rest)
			if err != nil {
				return types.Value{}, nil, fmt.Errorf("array element %d: %w", i, err)
			}
			elems[i], rest = v, r
		}
		ref := h.Insert(&heap.Object{ElementType: t.Elem(), Elements: elems})
		return types.RefValue(ref), rest, nil

	default:
		return types.Value{}, nil, fmt.Errorf("unsupported argument type %s", t)
	}
}

// EncodeArgs is the inverse of DecodeArgs for the seed generator: it
// encodes a tuple of representative int32 values into a byte buffer,
// one byte per INT/BOOL/CHAR argument, clamped to the int8 range.
// An ARRAY-typed argument is an error here; the seed generator adds no
// seed at all for a signature with an array argument, so it never
// reaches this.
func EncodeArgs(argTypes []*types.Type, values []int32) ([]byte, error) {
	if len(argTypes) != len(values) {
		return nil, fmt.Errorf("encode args: %d types but %d values", len(argTypes), len(values))
	}
	buf := make([]byte, 0, len(argTypes))
	for i, t := range argTypes {
		switch t.Kind() {
		case types.Int, types.Boolean, types.Char:
			buf = append(buf, clampInt8(values[i]))
		default:
			return nil, fmt.Errorf("argument %d: type %s not encodable for seeding", i, t)
		}
	}
	return buf, nil
}

func clampInt8(v int32) byte {
	if v > 127 {
		v = 127
	}
	if v < -128 {
		v = -128
	}
	return byte(int8(v))
}
