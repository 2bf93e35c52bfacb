// Package cliargs parses the analyzer's command line, grounded on
// original_source/src/cli.c's option scan: -i/--interpreter and
// -a/--abstract are mutually exclusive, the method id is the sole
// mandatory positional, and an optional literal parameters argument is
// only meaningful alongside -i.
package cliargs

import (
	"strings"

	"github.com/pkg/errors"
)

// Mode selects which of the three techniques a run exercises.
type Mode int

const (
	ModeFuzz Mode = iota
	ModeInterpreter
	ModeAbstract
)

// Options is the parsed command line.
type Options struct {
	Mode       Mode
	Info       bool
	MethodID   string
	Parameters string // raw "(v1, v2, ...)" literal, only set alongside -i
}

// ParseErrorKind names one of the option-parser's fatal usage errors,
// each of which exits the CLI with status 1.
type ParseErrorKind int

const (
	ErrNotEnoughArgs ParseErrorKind = iota
	ErrTooManyArgs
	ErrUnknownOption
	ErrMutuallyExclusive
)

// ParseError wraps a usage failure with the kind the CLI needs to print
// a specific diagnostic and exit 1.
type ParseError struct {
	Kind ParseErrorKind
	msg  string
}

func (e *ParseError) Error() string { return e.msg }

func newParseErr(kind ParseErrorKind, msg string) *ParseError {
	return &ParseError{Kind: kind, msg: msg}
}

const maxOptionArgs = 2

// Parse interprets args (os.Args[1:]) into Options, matching
// options_parse_args's arity and mutual-exclusion checks.
func Parse(args []string) (Options, error) {
	var opts Options

	var positional []string
	var sawInterpreter, sawAbstract bool

	for _, a := range args {
		if strings.HasPrefix(a, "-") && a != "-" {
			switch trimDashes(a) {
			case "i", "interpreter":
				sawInterpreter = true
			case "a", "abstract":
				sawAbstract = true
			default:
				return opts, newParseErr(ErrUnknownOption, errors.Errorf("unknown option %q", a).Error())
			}
			continue
		}
		positional = append(positional, a)
	}

	if sawInterpreter && sawAbstract {
		return opts, newParseErr(ErrMutuallyExclusive, "options -i/--interpreter and -a/--abstract are mutually exclusive")
	}

	if len(positional) < 1 {
		return opts, newParseErr(ErrNotEnoughArgs, "missing required method id argument")
	}
	if len(positional) > 2 {
		return opts, newParseErr(ErrTooManyArgs, "too many positional arguments")
	}

	opts.MethodID = positional[0]
	opts.Info = opts.MethodID == "info"
	if len(positional) == 2 {
		opts.Parameters = positional[1]
	}

	switch {
	case sawInterpreter:
		opts.Mode = ModeInterpreter
	case sawAbstract:
		opts.Mode = ModeAbstract
	default:
		opts.Mode = ModeFuzz
	}

	if opts.Mode != ModeInterpreter && opts.Parameters != "" {
		return opts, newParseErr(ErrTooManyArgs, "literal parameters are only valid with -i/--interpreter")
	}

	return opts, nil
}

func trimDashes(s string) string {
	for len(s) > 0 && s[0] == '-' {
		s = s[1:]
	}
	return s
}
