package interval

import (
	"jpamb/internal/cfg"
	"jpamb/internal/ir"

	"github.com/pkg/errors"
)

// stackEntry is an interval value on the simulated operand stack, with
// an optional origin local slot. Provenance is tracked only so that an
// IF/IFZ comparison against the literal 0 can narrow the local it came
// from on the branch where the comparison is known to hold; any stack
// value not traceable to a single LOAD (the result of arithmetic, a
// PUSH, etc.) carries no origin and is never narrowed.
type stackEntry struct {
	Interval Interval
	Origin   *int
}

// TransferBlock interprets the instructions of block against inState
// and returns one output state per successor in block.Successors'
// order. For blocks ending in IF/IFZ, the two successor states may
// differ: the branch known to hold narrows the compared local to the
// constant it was tested against when that narrowing is expressible in
// this domain (equality), and is left unrefined otherwise.
func TransferBlock(fn *ir.Function, block cfg.Block, inState State) ([]State, error) {
	locals := make([]Interval, len(inState.Locals))
	copy(locals, inState.Locals)
	var stack []stackEntry

	for ip := block.IPStart; ip <= block.IPEnd; ip++ {
		inst := fn.Instructions[ip]
		switch inst.Opcode {
		case ir.OpLoad:
			if inst.Index < 0 || inst.Index >= len(locals) {
				return nil, errors.Errorf("instruction %d: load out-of-range local %d", ip, inst.Index)
			}
			idx := inst.Index
			stack = append(stack, stackEntry{Interval: locals[idx], Origin: &idx})

		case ir.OpStore:
			if inst.Index < 0 || inst.Index >= len(locals) {
				return nil, errors.Errorf("instruction %d: store out-of-range local %d", ip, inst.Index)
			}
			v, rest := pop(stack)
			stack = rest
			locals[inst.Index] = v.Interval

		case ir.OpIncr:
			if inst.Index < 0 || inst.Index >= len(locals) {
				return nil, errors.Errorf("instruction %d: incr out-of-range local %d", ip, inst.Index)
			}
			locals[inst.Index] = Add(locals[inst.Index], Singleton(int32(inst.Amount)))

		case ir.OpPush:
			iv := Top()
			if n, err := inst.Value.AsInt(); err == nil {
				iv = Singleton(n)
			}
			stack = append(stack, stackEntry{Interval: iv})

		case ir.OpDup:
			if len(stack) == 0 {
				return nil, errors.Errorf("instruction %d: dup on empty stack", ip)
			}
			stack = append(stack, stack[len(stack)-1])

		case ir.OpBinary:
			b, rest := pop(stack)
			a, rest2 := pop(rest)
			stack = rest2
			var out Interval
			switch inst.Op {
			case ir.Add:
				out = Add(a.Interval, b.Interval)
			case ir.Sub:
				out = Sub(a.Interval, b.Interval)
			case ir.Mul:
				out = Mul(a.Interval, b.Interval)
			case ir.Div, ir.Rem:
				out = Div(a.Interval, b.Interval)
			default:
				out = Top()
			}
			stack = append(stack, stackEntry{Interval: out})

		case ir.OpNegate:
			a, rest := pop(stack)
			stack = rest
			stack = append(stack, stackEntry{Interval: Sub(Singleton(0), a.Interval)})

		case ir.OpCast, ir.OpCompareFloating, ir.OpGet, ir.OpNew, ir.OpInvoke,
			ir.OpNewArray, ir.OpArrayLoad, ir.OpArrayStore, ir.OpArrayLength:
			// Opaque to this domain: consumed operands are discarded and
			// any produced value is unconstrained.
			n := stackArity(inst)
			for i := 0; i < n.pop; i++ {
				_, rest := pop(stack)
				stack = rest
			}
			for i := 0; i < n.push; i++ {
				stack = append(stack, stackEntry{Interval: Top()})
			}

		case ir.OpIf, ir.OpIfZ, ir.OpGoto, ir.OpReturn, ir.OpThrow:
			// handled below, as block terminators

		default:
			return nil, errors.Errorf("instruction %d: unhandled opcode %s", ip, inst.Opcode)
		}
	}

	last := fn.Instructions[block.IPEnd]
	out := State{Locals: locals}

	switch last.Opcode {
	case ir.OpIfZ:
		a, _ := pop(stack)
		trueState, falseState := narrowCompareZero(out, a, last.Cond)
		return orderSuccessors(block, trueState, falseState), nil

	case ir.OpIf:
		// operand stack order: push a then b; IF pops b first, then a.
		b, rest := pop(stack)
		a, _ := pop(rest)
		trueState, falseState := narrowCompare(out, a, b, last.Cond)
		return orderSuccessors(block, trueState, falseState), nil

	default:
		states := make([]State, len(block.Successors))
		for i := range states {
			states[i] = out
		}
		return states, nil
	}
}

type arity struct{ pop, push int }

func stackArity(inst ir.Instruction) arity {
	switch inst.Opcode {
	case ir.OpCast, ir.OpArrayLength:
		return arity{1, 1}
	case ir.OpCompareFloating:
		return arity{2, 1}
	case ir.OpGet:
		return arity{0, 1}
	case ir.OpNew:
		return arity{0, 1}
	case ir.OpNewArray:
		return arity{inst.Dim, 1}
	case ir.OpArrayLoad:
		return arity{2, 1}
	case ir.OpArrayStore:
		return arity{3, 0}
	case ir.OpInvoke:
		n := len(inst.Args)
		if inst.RefName != "" {
			n++ // receiver
		}
		push := 1
		if inst.ReturnType != nil && inst.ReturnType.String() == "void" {
			push = 0
		}
		return arity{n, push}
	default:
		return arity{0, 0}
	}
}

func pop(stack []stackEntry) (stackEntry, []stackEntry) {
	if len(stack) == 0 {
		return stackEntry{Interval: Top()}, stack
	}
	return stack[len(stack)-1], stack[:len(stack)-1]
}

// narrowCompareZero narrows the state for an IFZ cond's true/false
// outcomes. Only equality-class comparisons against the literal 0 are
// expressible in an interval domain: any other comparison leaves both
// outcomes at the incoming state.
func narrowCompareZero(in State, a stackEntry, cond ir.IfCond) (trueState, falseState State) {
	trueState, falseState = in, in
	if a.Origin == nil {
		return
	}
	switch cond {
	case ir.Eq:
		trueState = withLocal(in, *a.Origin, Singleton(0))
	case ir.Ne:
		falseState = withLocal(in, *a.Origin, Singleton(0))
	}
	return
}

func narrowCompare(in State, a, b stackEntry, cond ir.IfCond) (trueState, falseState State) {
	trueState, falseState = in, in
	zero := Singleton(0)
	if a.Origin != nil && b.Interval == zero {
		t, f := narrowCompareZero(in, a, cond)
		return t, f
	}
	if b.Origin != nil && a.Interval == zero {
		t, f := narrowCompareZero(in, b, flip(cond))
		return t, f
	}
	return
}

func flip(cond ir.IfCond) ir.IfCond {
	switch cond {
	case ir.Lt:
		return ir.Gt
	case ir.Le:
		return ir.Ge
	case ir.Gt:
		return ir.Lt
	case ir.Ge:
		return ir.Le
	default:
		return cond
	}
}

func withLocal(in State, idx int, v Interval) State {
	out := in.Clone()
	out.Locals[idx] = v
	return out
}

// orderSuccessors maps (trueState, falseState) onto block.Successors'
// order, which per internal/cfg is [target, fallthrough] for IF/IFZ
// blocks.
func orderSuccessors(block cfg.Block, trueState, falseState State) []State {
	states := make([]State, len(block.Successors))
	for i := range states {
		if i == 0 {
			states[i] = trueState
		} else {
			states[i] = falseState
		}
	}
	return states
}
