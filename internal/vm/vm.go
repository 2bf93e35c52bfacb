// Package vm is the concrete interpreter: call-stack frames, an operand
// stack, a locals array, and an opcode dispatch table, grounded on
// original_source/src/interpreter_concrete.c's Frame/VMContext/StepResult
// split. VM-level faults are returned as a StepResult value, never a Go
// error: faults are values, not exceptional control flow.
package vm

import (
	"jpamb/internal/cfg"
	"jpamb/internal/heap"
	"jpamb/internal/ir"
	"jpamb/internal/methodid"
	"jpamb/internal/types"
)

// StepResult mirrors interpreter_concrete.c's StepResult enum: the full
// internal fault vocabulary, collapsed down to outcome.Outcome only at
// the VM/fuzzer boundary (internal/outcome), exactly as the C source
// does in outcome.c.
type StepResult int

const (
	SROK StepResult = iota
	SROutOfBounds
	SRNullInstruction
	SRNullPointer
	SREmptyStack
	SRDivideByZero
	SRUnknownOpcode
	SRAssertionErr
	SRInvalidType
	SRInternalErr
	SRStepCapExceeded
)

func (r StepResult) String() string {
	switch r {
	case SROK:
		return "SR_OK"
	case SROutOfBounds:
		return "SR_OUT_OF_BOUNDS"
	case SRNullInstruction:
		return "SR_NULL_INSTRUCTION"
	case SRNullPointer:
		return "SR_NULL_POINTER"
	case SREmptyStack:
		return "SR_EMPTY_STACK"
	case SRDivideByZero:
		return "SR_DIVIDE_BY_ZERO"
	case SRUnknownOpcode:
		return "SR_UNKNOWN_OPCODE"
	case SRAssertionErr:
		return "SR_ASSERTION_ERR"
	case SRInvalidType:
		return "SR_INVALID_TYPE"
	case SRInternalErr:
		return "SR_INTERNAL_ERR"
	case SRStepCapExceeded:
		return "SR_STEP_CAP_EXCEEDED"
	default:
		return "SR_UNKNOWN"
	}
}

// Halted reports whether r ends the run (as opposed to SROK, which just
// means "keep stepping").
func (r StepResult) Halted() bool {
	return r != SROK
}

// MaxSteps is the hard iteration cap past which a run is classified as
// INFINITE_LOOP, matching interpreter_concrete.c's ITERATION constant.
const MaxSteps = 100000

// Frame is one call-stack entry: the instruction pointer, the locals
// array, and the operand stack, all scoped to one invoked IrFunction.
type Frame struct {
	PC      int
	Locals  []types.Value
	Stack   []types.Value
	Func    *ir.Function
	CFG     *cfg.CFG
	Returns bool // whether the method this frame runs has a non-void return type
}

func newFrame(fn *ir.Function, c *cfg.CFG, locals []types.Value, returns bool) *Frame {
	return &Frame{Locals: locals, Func: fn, CFG: c, Returns: returns}
}

func (f *Frame) push(v types.Value) { f.Stack = append(f.Stack, v) }

func (f *Frame) pop() (types.Value, bool) {
	if len(f.Stack) == 0 {
		return types.Value{}, false
	}
	v := f.Stack[len(f.Stack)-1]
	f.Stack = f.Stack[:len(f.Stack)-1]
	return v, true
}

// Resolver answers the VM's INVOKE handler: given a fully-built method
// id it returns the callee's IR function, CFG and whether it returns a value,
// or ok=false if the callee lies outside the project's own namespace (in
// which case INVOKE is a no-op advance) or otherwise cannot be resolved.
type Resolver interface {
	Resolve(id string) (fn *ir.Function, cfg *cfg.CFG, returnsValue bool, ok bool)
}

// Context is one VM run: the call stack, the heap, and the thread-local
// coverage bitmap it marks as it steps. Grounded on VMContext in
// interpreter_concrete.c.
type Context struct {
	Stack    []*Frame
	Heap     *heap.Heap
	Coverage []byte // thread-local bitmap; nil disables marking
	Resolver Resolver
	Steps    int
}

// NewContext builds a fresh run over fn/cfg with the given already-decoded
// locals (the argument slots; STORE may grow this slice further).
func NewContext(fn *ir.Function, c *cfg.CFG, locals []types.Value, returnsValue bool, resolver Resolver, coverage []byte) *Context {
	vmc := &Context{Heap: heap.New(), Resolver: resolver, Coverage: coverage}
	vmc.Stack = []*Frame{newFrame(fn, c, locals, returnsValue)}
	return vmc
}

// Reset reuses vmc for another fuzz iteration: the operand stack is
// cleared, pc reset to 0, any frames pushed by INVOKE dropped, and
// locals reinstalled. Callers that decode ARRAY-typed arguments must
// call vmc.Heap.Reset() (via ResetHeap) *before* decoding those
// arguments into locals — Reset itself never touches the heap, since
// locals may already hold references into it by the time Reset runs.
func (vmc *Context) Reset(fn *ir.Function, c *cfg.CFG, locals []types.Value, returnsValue bool) {
	vmc.Steps = 0
	vmc.Stack = []*Frame{newFrame(fn, c, locals, returnsValue)}
}

// ResetHeap truncates the heap back to the null slot, for the caller to
// do before decoding the next iteration's arguments.
func (vmc *Context) ResetHeap() {
	vmc.Heap.Reset()
}

func (vmc *Context) top() *Frame {
	if len(vmc.Stack) == 0 {
		return nil
	}
	return vmc.Stack[len(vmc.Stack)-1]
}

// Run steps the VM to completion: RETURN on the bottom frame, a fault,
// or MaxSteps iterations (classified SRStepCapExceeded, mapped to
// outcome.Unknown/INFINITE_LOOP by the caller). It returns the final
// StepResult and, for a value-returning method that completed
// normally, the returned Value.
func (vmc *Context) Run() (StepResult, types.Value) {
	for {
		if vmc.Steps >= MaxSteps {
			return SRStepCapExceeded, types.Value{}
		}
		vmc.Steps++

		res, done, retVal := vmc.step()
		if res != SROK {
			return res, types.Value{}
		}
		if done {
			return SROK, retVal
		}
	}
}

// step executes exactly one instruction on the top frame. done is true
// once the call stack has been fully unwound by a RETURN at the bottom
// frame.
func (vmc *Context) step() (result StepResult, done bool, retVal types.Value) {
	frame := vmc.top()
	if frame == nil {
		return SREmptyStack, false, types.Value{}
	}
	if frame.PC < 0 || frame.PC >= len(frame.Func.Instructions) {
		return SRNullInstruction, false, types.Value{}
	}

	if vmc.Coverage != nil {
		n := len(frame.Func.Instructions)
		if frame.PC < len(vmc.Coverage) && frame.PC < n {
			vmc.Coverage[frame.PC] = 1
		}
	}

	inst := frame.Func.Instructions[frame.PC]
	return vmc.dispatch(frame, inst)
}

// dispatch is the opcode table: one handler call per Opcode, mirroring
// interpreter_concrete.c's static OpHandler opcode_table[OP_COUNT].
func (vmc *Context) dispatch(frame *Frame, inst ir.Instruction) (StepResult, bool, types.Value) {
	switch inst.Opcode {
	case ir.OpLoad:
		return vmc.handleLoad(frame, inst)
	case ir.OpStore:
		return vmc.handleStore(frame, inst)
	case ir.OpIncr:
		return vmc.handleIncr(frame, inst)
	case ir.OpPush:
		frame.push(inst.Value)
		frame.PC++
		return SROK, false, types.Value{}
	case ir.OpDup:
		return vmc.handleDup(frame)
	case ir.OpBinary:
		return vmc.handleBinary(frame, inst)
	case ir.OpNegate:
		return vmc.handleNegate(frame, inst)
	case ir.OpIf:
		return vmc.handleIf(frame, inst)
	case ir.OpIfZ:
		return vmc.handleIfZ(frame, inst)
	case ir.OpGoto:
		frame.PC = inst.Target
		return SROK, false, types.Value{}
	case ir.OpInvoke:
		return vmc.handleInvoke(frame, inst)
	case ir.OpReturn:
		return vmc.handleReturn(frame, inst)
	case ir.OpThrow:
		return SRAssertionErr, false, types.Value{}
	case ir.OpNewArray:
		return vmc.handleNewArray(frame, inst)
	case ir.OpArrayLoad:
		return vmc.handleArrayLoad(frame, inst)
	case ir.OpArrayStore:
		return vmc.handleArrayStore(frame, inst)
	case ir.OpArrayLength:
		return vmc.handleArrayLength(frame)
	case ir.OpGet, ir.OpNew, ir.OpCast, ir.OpCompareFloating:
		frame.PC++
		return SROK, false, types.Value{}
	default:
		return SRUnknownOpcode, false, types.Value{}
	}
}

func (vmc *Context) handleLoad(frame *Frame, inst ir.Instruction) (StepResult, bool, types.Value) {
	if inst.Index < 0 || inst.Index >= len(frame.Locals) {
		return SROutOfBounds, false, types.Value{}
	}
	frame.push(frame.Locals[inst.Index])
	frame.PC++
	return SROK, false, types.Value{}
}

func (vmc *Context) handleStore(frame *Frame, inst ir.Instruction) (StepResult, bool, types.Value) {
	v, ok := frame.pop()
	if !ok {
		return SREmptyStack, false, types.Value{}
	}
	if inst.Index >= len(frame.Locals) {
		grown := make([]types.Value, inst.Index+1)
		copy(grown, frame.Locals)
		for i := len(frame.Locals); i < len(grown); i++ {
			grown[i] = types.ZeroValue(inst.Type)
		}
		frame.Locals = grown
	}
	frame.Locals[inst.Index] = v
	frame.PC++
	return SROK, false, types.Value{}
}

func (vmc *Context) handleIncr(frame *Frame, inst ir.Instruction) (StepResult, bool, types.Value) {
	if inst.Index < 0 || inst.Index >= len(frame.Locals) {
		return SROutOfBounds, false, types.Value{}
	}
	local := frame.Locals[inst.Index]
	if local.Type.Kind() != types.Int {
		return SRInvalidType, false, types.Value{}
	}
	frame.Locals[inst.Index] = types.IntValue(local.Int + int32(inst.Amount))
	frame.PC++
	return SROK, false, types.Value{}
}

func (vmc *Context) handleDup(frame *Frame) (StepResult, bool, types.Value) {
	if len(frame.Stack) == 0 {
		// handle_dup is a documented no-op on empty stack.
		frame.PC++
		return SROK, false, types.Value{}
	}
	frame.push(frame.Stack[len(frame.Stack)-1])
	frame.PC++
	return SROK, false, types.Value{}
}

func (vmc *Context) handleBinary(frame *Frame, inst ir.Instruction) (StepResult, bool, types.Value) {
	rhs, ok1 := frame.pop()
	lhs, ok2 := frame.pop()
	if !ok1 || !ok2 {
		return SREmptyStack, false, types.Value{}
	}
	a, err1 := lhs.AsInt()
	b, err2 := rhs.AsInt()
	if err1 != nil || err2 != nil {
		return SRInvalidType, false, types.Value{}
	}

	switch inst.Op {
	case ir.Add:
		frame.push(types.IntValue(a + b))
	case ir.Sub:
		frame.push(types.IntValue(a - b))
	case ir.Mul:
		frame.push(types.IntValue(a * b))
	case ir.Div:
		if b == 0 {
			return SRDivideByZero, false, types.Value{}
		}
		frame.push(types.IntValue(a / b))
	case ir.Rem:
		if b == 0 {
			return SRDivideByZero, false, types.Value{}
		}
		frame.push(types.IntValue(a % b))
	default:
		return SRUnknownOpcode, false, types.Value{}
	}
	frame.PC++
	return SROK, false, types.Value{}
}

func (vmc *Context) handleNegate(frame *Frame, inst ir.Instruction) (StepResult, bool, types.Value) {
	v, ok := frame.pop()
	if !ok {
		return SREmptyStack, false, types.Value{}
	}
	n, err := v.AsInt()
	if err != nil {
		return SRInvalidType, false, types.Value{}
	}
	frame.push(types.IntValue(-n))
	frame.PC++
	return SROK, false, types.Value{}
}

func (vmc *Context) handleIf(frame *Frame, inst ir.Instruction) (StepResult, bool, types.Value) {
	bv, ok1 := frame.pop()
	av, ok2 := frame.pop()
	if !ok1 || !ok2 {
		return SREmptyStack, false, types.Value{}
	}
	a, err1 := av.AsInt()
	b, err2 := bv.AsInt()
	if err1 != nil || err2 != nil {
		return SRInvalidType, false, types.Value{}
	}
	if inst.Cond.Eval(a, b) {
		frame.PC = inst.Target
	} else {
		frame.PC++
	}
	return SROK, false, types.Value{}
}

func (vmc *Context) handleIfZ(frame *Frame, inst ir.Instruction) (StepResult, bool, types.Value) {
	av, ok := frame.pop()
	if !ok {
		return SREmptyStack, false, types.Value{}
	}
	a, err := av.AsInt()
	if err != nil {
		return SRInvalidType, false, types.Value{}
	}
	if inst.Cond.Eval(a, 0) {
		frame.PC = inst.Target
	} else {
		frame.PC++
	}
	return SROK, false, types.Value{}
}

func (vmc *Context) handleReturn(frame *Frame, inst ir.Instruction) (StepResult, bool, types.Value) {
	var retVal types.Value
	hasVal := inst.Type != nil && inst.Type.Kind() != types.Void
	if hasVal {
		v, ok := frame.pop()
		if !ok {
			return SREmptyStack, false, types.Value{}
		}
		retVal = v
	}

	vmc.Stack = vmc.Stack[:len(vmc.Stack)-1]
	if len(vmc.Stack) == 0 {
		return SROK, true, retVal
	}
	if hasVal {
		vmc.top().push(retVal)
	}
	return SROK, false, types.Value{}
}

// handleInvoke builds a callee frame when the target resolves to a
// method inside the project's own namespace (Resolver.Resolve); any
// other callee is a no-op advance (the analyzer has nothing further to
// execute).
func (vmc *Context) handleInvoke(frame *Frame, inst ir.Instruction) (StepResult, bool, types.Value) {
	argc := len(inst.Args)
	id := methodid.Build(inst.RefName, inst.MethodName, inst.Args, inst.ReturnType)

	fn, callCFG, returnsValue, ok := vmc.Resolver.Resolve(id)
	if !ok {
		frame.PC++
		return SROK, false, types.Value{}
	}

	if len(frame.Stack) < argc {
		return SREmptyStack, false, types.Value{}
	}
	args := make([]types.Value, argc)
	copy(args, frame.Stack[len(frame.Stack)-argc:])
	frame.Stack = frame.Stack[:len(frame.Stack)-argc]
	frame.PC++ // resume here once the callee returns

	vmc.Stack = append(vmc.Stack, newFrame(fn, callCFG, args, returnsValue))
	return SROK, false, types.Value{}
}

func (vmc *Context) handleNewArray(frame *Frame, inst ir.Instruction) (StepResult, bool, types.Value) {
	sizeVal, ok := frame.pop()
	if !ok {
		return SREmptyStack, false, types.Value{}
	}
	size, err := sizeVal.AsInt()
	if err != nil {
		return SRInvalidType, false, types.Value{}
	}
	if size < 0 {
		return SROutOfBounds, false, types.Value{}
	}
	elements := make([]types.Value, size)
	for i := range elements {
		elements[i] = types.ZeroValue(inst.Type)
	}
	ref := vmc.Heap.Insert(&heap.Object{ElementType: inst.Type, Elements: elements})
	frame.push(types.RefValue(ref))
	frame.PC++
	return SROK, false, types.Value{}
}

func (vmc *Context) handleArrayLoad(frame *Frame, inst ir.Instruction) (StepResult, bool, types.Value) {
	idxVal, ok1 := frame.pop()
	refVal, ok2 := frame.pop()
	if !ok1 || !ok2 {
		return SREmptyStack, false, types.Value{}
	}
	obj := vmc.Heap.Get(refVal.Ref)
	if refVal.IsNull() || obj == nil {
		return SRNullPointer, false, types.Value{}
	}
	idx, err := idxVal.AsInt()
	if err != nil {
		return SRInvalidType, false, types.Value{}
	}
	if idx < 0 || int(idx) >= len(obj.Elements) {
		return SROutOfBounds, false, types.Value{}
	}
	frame.push(obj.Elements[idx])
	frame.PC++
	return SROK, false, types.Value{}
}

func (vmc *Context) handleArrayStore(frame *Frame, inst ir.Instruction) (StepResult, bool, types.Value) {
	val, ok1 := frame.pop()
	idxVal, ok2 := frame.pop()
	refVal, ok3 := frame.pop()
	if !ok1 || !ok2 || !ok3 {
		return SREmptyStack, false, types.Value{}
	}
	obj := vmc.Heap.Get(refVal.Ref)
	if refVal.IsNull() || obj == nil {
		return SRNullPointer, false, types.Value{}
	}
	idx, err := idxVal.AsInt()
	if err != nil {
		return SRInvalidType, false, types.Value{}
	}
	if idx < 0 || int(idx) >= len(obj.Elements) {
		return SROutOfBounds, false, types.Value{}
	}
	if val.Type != obj.ElementType {
		return SRInvalidType, false, types.Value{}
	}
	obj.Elements[idx] = val
	frame.PC++
	return SROK, false, types.Value{}
}

func (vmc *Context) handleArrayLength(frame *Frame) (StepResult, bool, types.Value) {
	refVal, ok := frame.pop()
	if !ok {
		return SREmptyStack, false, types.Value{}
	}
	obj := vmc.Heap.Get(refVal.Ref)
	if refVal.IsNull() || obj == nil {
		return SRNullPointer, false, types.Value{}
	}
	frame.push(types.IntValue(int32(len(obj.Elements))))
	frame.PC++
	return SROK, false, types.Value{}
}
