// Package errs classifies the fatal error taxonomy from the analyzer's
// error handling design: setup errors and analyzer failures unwind the
// whole run, each tagged with the stage that produced it.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind names the stage that raised a fatal error, mirroring the
// setup/analyzer split in the design: config and IR loading are Setup,
// CFG/WPO construction failures are Analyzer.
type Kind string

const (
	Setup    Kind = "setup"
	Analyzer Kind = "analyzer"
)

// FatalError wraps an underlying cause with the stage it occurred in and,
// for analyzer errors, the method id under analysis. Both stages unwind
// the whole run per the error handling design; Kind exists so the CLI can
// pick an exit code and a diagnostic prefix without string-matching.
type FatalError struct {
	Kind   Kind
	Method string
	cause  error
}

func (e *FatalError) Error() string {
	if e.Method != "" {
		return fmt.Sprintf("%s error (method %s): %v", e.Kind, e.Method, e.cause)
	}
	return fmt.Sprintf("%s error: %v", e.Kind, e.cause)
}

func (e *FatalError) Unwrap() error { return e.cause }

// NewSetup wraps cause as a fatal setup error (missing config, IR parse
// failure, unknown method id).
func NewSetup(cause error, format string, args ...interface{}) *FatalError {
	return &FatalError{Kind: Setup, cause: errors.Wrapf(cause, format, args...)}
}

// NewAnalyzer wraps cause as a fatal analyzer error (CFG build, WPO
// predecessor miscount) for the given method id.
func NewAnalyzer(method string, cause error, format string, args ...interface{}) *FatalError {
	return &FatalError{
		Kind:   Analyzer,
		Method: method,
		cause:  errors.Wrapf(cause, format, args...),
	}
}

// Is reports whether err is a FatalError of the given kind.
func Is(err error, kind Kind) bool {
	var fe *FatalError
	if errors.As(err, &fe) {
		return fe.Kind == kind
	}
	return false
}
