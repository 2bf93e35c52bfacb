package vm

import "jpamb/internal/outcome"

// ClassifyOutcome maps a terminal StepResult to the six reported
// outcomes, collapsing everything internal (empty-stack, unknown
// opcode, invalid type, out-of-range instruction pointer) down to
// Unknown, exactly as outcome.c does in the reference implementation.
func ClassifyOutcome(r StepResult) outcome.Outcome {
	switch r {
	case SROK:
		return outcome.OK
	case SRDivideByZero:
		return outcome.DivideByZero
	case SRAssertionErr:
		return outcome.AssertionError
	case SROutOfBounds:
		return outcome.OutOfBounds
	case SRNullPointer:
		return outcome.NullPointer
	case SRStepCapExceeded:
		return outcome.Unknown // the CLI's non-termination marker, "*"
	default:
		return outcome.Unknown
	}
}
