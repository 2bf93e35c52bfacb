// Package decompile is the JSON decoder for decompiled bytecode: an
// external collaborator kept deliberately thin. It reads
// "<jpamb_decompiled_path>/<class-path>.json" documents of the shape
// { methods: [ { name, code: { bytecode: [ {opr, ...} ] } } ] } and lifts
// each instruction object into an ir.Instruction, grounded field-for-field
// on original_source/src/decompiled_parser.c's opr/field name tables.
package decompile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"jpamb/internal/ir"
	"jpamb/internal/methodid"
	"jpamb/internal/types"
)

// rawInstruction mirrors the JSON object shape of one bytecode
// instruction; fields not relevant to a given "opr" are left zero.
type rawInstruction struct {
	Opr       string          `json:"opr"`
	Index     *int            `json:"index"`
	Type      string          `json:"type"`
	Value     json.RawMessage `json:"value"`
	Operant   string          `json:"operant"`
	Condition string          `json:"condition"`
	Target    *int            `json:"target"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Words     *int            `json:"words"`
	Dim       *int            `json:"dim"`
	Method    *rawMethodRef   `json:"method"`
}

type rawMethodRef struct {
	Name string   `json:"name"`
	Ref  string   `json:"ref"`
	Args []string `json:"args"`
}

type rawPushValue struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

type rawCode struct {
	Bytecode []rawInstruction `json:"bytecode"`
}

type rawMethod struct {
	Name string  `json:"name"`
	Code rawCode `json:"code"`
}

type rawSource struct {
	Methods []rawMethod `json:"methods"`
}

var opcodeByOpr = map[string]ir.Opcode{
	"load":        ir.OpLoad,
	"push":        ir.OpPush,
	"binary":      ir.OpBinary,
	"get":         ir.OpGet,
	"return":      ir.OpReturn,
	"ifz":         ir.OpIfZ,
	"if":          ir.OpIf,
	"new":         ir.OpNew,
	"dup":         ir.OpDup,
	"invoke":      ir.OpInvoke,
	"throw":       ir.OpThrow,
	"store":       ir.OpStore,
	"goto":        ir.OpGoto,
	"cast":        ir.OpCast,
	"newarray":    ir.OpNewArray,
	"array_load":  ir.OpArrayLoad,
	"array_store": ir.OpArrayStore,
	"arraylength": ir.OpArrayLength,
	"incr":        ir.OpIncr,
	"negate":      ir.OpNegate,
	"compare":     ir.OpCompareFloating,
}

var binaryOpByOperant = map[string]ir.BinaryOp{
	"add": ir.Add,
	"sub": ir.Sub,
	"div": ir.Div,
	"mul": ir.Mul,
	"rem": ir.Rem,
}

var condByName = map[string]ir.IfCond{
	"eq": ir.Eq,
	"ne": ir.Ne,
	"gt": ir.Gt,
	"lt": ir.Lt,
	"ge": ir.Ge,
	"le": ir.Le,
}

// namedType maps the decompiled JSON's load/push/binary type names onto
// the analyzer's interned Type handles.
func namedType(name string) (*types.Type, error) {
	switch name {
	case "int", "integer":
		return types.IntType, nil
	case "boolean":
		return types.BooleanType, nil
	case "char":
		return types.CharType, nil
	case "ref", "reference", "string":
		return types.ReferenceType, nil
	case "void", "null":
		return types.VoidType, nil
	default:
		return nil, errors.Errorf("unsupported type name %q", name)
	}
}

// LoadFunction reads "<decompiledPath>/<classPath>.json" and lifts the
// bytecode of the method named methodName into an ir.Function.
func LoadFunction(decompiledPath, classPath, methodName string) (*ir.Function, error) {
	file := filepath.Join(decompiledPath, classPath+".json")
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrapf(err, "reading decompiled class %q", file)
	}

	var src rawSource
	if err := json.Unmarshal(data, &src); err != nil {
		return nil, errors.Wrapf(err, "parsing decompiled class %q", file)
	}

	for _, m := range src.Methods {
		if m.Name == methodName {
			return liftFunction(m.Code.Bytecode)
		}
	}
	return nil, errors.Errorf("method %q not found in %q", methodName, file)
}

// LoadFunctionForMethod is a convenience wrapper over LoadFunction for a
// parsed method id: the class path is the id's Class field with '/'
// kept as directory separators, matching the jpamb decompiled layout.
func LoadFunctionForMethod(decompiledPath string, id methodid.ID) (*ir.Function, error) {
	return LoadFunction(decompiledPath, id.Class, id.Name)
}

func liftFunction(raw []rawInstruction) (*ir.Function, error) {
	instrs := make([]ir.Instruction, len(raw))
	for seq, r := range raw {
		inst, err := liftInstruction(seq, r)
		if err != nil {
			return nil, errors.Wrapf(err, "instruction %d", seq)
		}
		instrs[seq] = inst
	}
	return &ir.Function{Instructions: instrs}, nil
}

func liftInstruction(seq int, r rawInstruction) (ir.Instruction, error) {
	opcode, ok := opcodeByOpr[r.Opr]
	if !ok {
		return ir.Instruction{}, errors.Errorf("unknown opcode %q", r.Opr)
	}
	inst := ir.Instruction{Opcode: opcode, Seq: seq}

	switch opcode {
	case ir.OpLoad, ir.OpStore:
		if r.Index == nil {
			return inst, fmt.Errorf("%s missing index", r.Opr)
		}
		t, err := namedType(r.Type)
		if err != nil {
			return inst, err
		}
		inst.Index, inst.Type = *r.Index, t

	case ir.OpIncr:
		if r.Index == nil {
			return inst, fmt.Errorf("incr missing index")
		}
		inst.Index = *r.Index
		inst.Amount = 1 // the reference grammar folds amount into a constant step

	case ir.OpPush:
		var pv rawPushValue
		if err := json.Unmarshal(r.Value, &pv); err != nil {
			return inst, errors.Wrap(err, "push value")
		}
		t, err := namedType(pv.Type)
		if err != nil {
			return inst, err
		}
		val, err := decodePushValue(t, pv.Value)
		if err != nil {
			return inst, err
		}
		inst.Value = val

	case ir.OpDup:
		// no payload beyond the opcode itself

	case ir.OpBinary:
		t, err := namedType(r.Type)
		if err != nil {
			return inst, err
		}
		op, ok := binaryOpByOperant[r.Operant]
		if !ok {
			return inst, fmt.Errorf("unknown binary operant %q", r.Operant)
		}
		inst.Type, inst.Op = t, op

	case ir.OpNegate:
		t, err := namedType(r.Type)
		if err != nil {
			return inst, err
		}
		inst.Type = t

	case ir.OpIf, ir.OpIfZ:
		cond, ok := condByName[r.Condition]
		if !ok {
			return inst, fmt.Errorf("unknown if condition %q", r.Condition)
		}
		if r.Target == nil {
			return inst, fmt.Errorf("%s missing target", r.Opr)
		}
		inst.Cond, inst.Target = cond, *r.Target

	case ir.OpGoto:
		if r.Target == nil {
			return inst, fmt.Errorf("goto missing target")
		}
		inst.Target = *r.Target

	case ir.OpInvoke:
		if r.Method == nil {
			return inst, fmt.Errorf("invoke missing method")
		}
		args := make([]*types.Type, len(r.Method.Args))
		for i, a := range r.Method.Args {
			t, err := namedType(a)
			if err != nil {
				return inst, err
			}
			args[i] = t
		}
		inst.MethodName, inst.RefName, inst.Args = r.Method.Name, r.Method.Ref, args

	case ir.OpReturn:
		t, err := namedType(r.Type)
		if err != nil {
			return inst, err
		}
		inst.Type = t

	case ir.OpGet, ir.OpNew, ir.OpThrow, ir.OpCompareFloating:
		// no analyzer-relevant payload: get/new/compare are no-ops,
		// throw additionally reports SR_ASSERTION_ERR at the VM layer.

	case ir.OpCast:
		from, err := namedType(r.From)
		if err != nil {
			return inst, err
		}
		to, err := namedType(r.To)
		if err != nil {
			return inst, err
		}
		inst.FromType, inst.Type = from, to

	case ir.OpNewArray:
		t, err := namedType(r.Type)
		if err != nil {
			return inst, err
		}
		dim := 1
		if r.Dim != nil {
			dim = *r.Dim
		}
		inst.Type, inst.Dim = t, dim

	case ir.OpArrayLoad, ir.OpArrayStore:
		t, err := namedType(r.Type)
		if err != nil {
			return inst, err
		}
		inst.Type = t

	case ir.OpArrayLength:
		// no payload

	default:
		return inst, fmt.Errorf("unhandled opcode %q during lift", r.Opr)
	}

	return inst, nil
}

func decodePushValue(t *types.Type, raw json.RawMessage) (types.Value, error) {
	switch t.Kind() {
	case types.Int:
		var n int64
		if err := json.Unmarshal(raw, &n); err != nil {
			return types.Value{}, errors.Wrap(err, "push int value")
		}
		return types.IntValue(int32(n)), nil
	case types.Boolean:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return types.Value{}, errors.Wrap(err, "push boolean value")
		}
		return types.BoolValue(b), nil
	case types.Char:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil || len(s) == 0 {
			return types.Value{}, errors.Wrap(err, "push char value")
		}
		return types.CharValue(s[0]), nil
	case types.Reference:
		return types.NullValue(), nil
	default:
		return types.Value{}, fmt.Errorf("unsupported push type %s", t)
	}
}
