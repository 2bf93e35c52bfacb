package cliargs

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"jpamb/internal/heap"
	"jpamb/internal/types"
)

// ParseLiteralParameters parses the "(v1, v2, …)" argument literal
// accepted for -i/--interpreter: each v_i is true/false, a decimal
// integer, or a bracketed array literal "[v; v; …]". Values are decoded
// against argTypes positionally; ARRAY literals are inserted into h to
// obtain their reference Value.
func ParseLiteralParameters(raw string, argTypes []*types.Type, h *heap.Heap) ([]types.Value, error) {
	// Spaces inside the literal are written as underscores so the whole
	// parameters argument survives shell tokenization as one word.
	raw = strings.ReplaceAll(raw, "_", " ")
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "(") || !strings.HasSuffix(trimmed, ")") {
		return nil, errors.Errorf("parameters %q must be parenthesized", raw)
	}
	inner := trimmed[1 : len(trimmed)-1]

	tokens := splitTopLevel(inner, ',')
	if len(tokens) == 1 && strings.TrimSpace(tokens[0]) == "" {
		tokens = nil
	}
	if len(tokens) != len(argTypes) {
		return nil, errors.Errorf("parameters %q: expected %d values, got %d", raw, len(argTypes), len(tokens))
	}

	values := make([]types.Value, len(tokens))
	for i, tok := range tokens {
		v, err := parseValue(strings.TrimSpace(tok), argTypes[i], h)
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %d", i)
		}
		values[i] = v
	}
	return values, nil
}

func parseValue(tok string, t *types.Type, h *heap.Heap) (types.Value, error) {
	switch t.Kind() {
	case types.Boolean:
		switch tok {
		case "true":
			return types.BoolValue(true), nil
		case "false":
			return types.BoolValue(false), nil
		default:
			return types.Value{}, errors.Errorf("%q is not a boolean literal", tok)
		}

	case types.Int:
		n, err := strconv.ParseInt(tok, 10, 32)
		if err != nil {
			return types.Value{}, errors.Wrapf(err, "%q is not an integer literal", tok)
		}
		return types.IntValue(int32(n)), nil

	case types.Char:
		if len(tok) == 0 {
			return types.Value{}, errors.New("empty char literal")
		}
		return types.CharValue(tok[0]), nil

	case types.Array:
		if !strings.HasPrefix(tok, "[") || !strings.HasSuffix(tok, "]") {
			return types.Value{}, errors.Errorf("%q is not a bracketed array literal", tok)
		}
		inner := tok[1 : len(tok)-1]
		elemToks := splitTopLevel(inner, ';')
		if len(elemToks) == 1 && strings.TrimSpace(elemToks[0]) == "" {
			elemToks = nil
		}
		elems := make([]types.Value, len(elemToks))
		for i, et := range elemToks {
			v, err := parseValue(strings.TrimSpace(et), t.Elem(), h)
			if err != nil {
				return types.Value{}, errors.Wrapf(err, "array element %d", i)
			}
			elems[i] = v
		}
		ref := h.Insert(&heap.Object{ElementType: t.Elem(), Elements: elems})
		return types.RefValue(ref), nil

	default:
		return types.Value{}, errors.Errorf("unsupported parameter type %s", t)
	}
}

// splitTopLevel splits s on sep, ignoring occurrences of sep nested
// inside brackets, so "[1; 2], 3" splits into ["[1; 2]", " 3"].
func splitTopLevel(s string, sep byte) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
		case sep:
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])
	return out
}
