package cliargs

import "testing"

func TestParseModes(t *testing.T) {
	cases := []struct {
		name string
		args []string
		mode Mode
	}{
		{"default is fuzz", []string{"pkg/Foo.bar:()V"}, ModeFuzz},
		{"-i selects interpreter", []string{"-i", "pkg/Foo.bar:(I)I", "(1)"}, ModeInterpreter},
		{"--interpreter long form", []string{"--interpreter", "pkg/Foo.bar:(I)I", "(1)"}, ModeInterpreter},
		{"-a selects abstract", []string{"-a", "pkg/Foo.bar:()V"}, ModeAbstract},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			opts, err := Parse(c.args)
			if err != nil {
				t.Fatalf("Parse(%v): %v", c.args, err)
			}
			if opts.Mode != c.mode {
				t.Errorf("Mode = %v, want %v", opts.Mode, c.mode)
			}
		})
	}
}

func TestParseInfoMethodID(t *testing.T) {
	opts, err := Parse([]string{"info"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !opts.Info {
		t.Error("Info should be true for the reserved \"info\" method id")
	}
}

func TestParseRejectsMutuallyExclusiveFlags(t *testing.T) {
	_, err := Parse([]string{"-i", "-a", "pkg/Foo.bar:()V"})
	if err == nil {
		t.Fatal("expected an error for -i combined with -a")
	}
	pe, ok := err.(*ParseError)
	if !ok || pe.Kind != ErrMutuallyExclusive {
		t.Errorf("err = %v, want a ParseError with Kind ErrMutuallyExclusive", err)
	}
}

func TestParseRejectsMissingMethodID(t *testing.T) {
	_, err := Parse(nil)
	pe, ok := err.(*ParseError)
	if !ok || pe.Kind != ErrNotEnoughArgs {
		t.Errorf("err = %v, want a ParseError with Kind ErrNotEnoughArgs", err)
	}
}

func TestParseRejectsUnknownOption(t *testing.T) {
	_, err := Parse([]string{"--bogus", "pkg/Foo.bar:()V"})
	pe, ok := err.(*ParseError)
	if !ok || pe.Kind != ErrUnknownOption {
		t.Errorf("err = %v, want a ParseError with Kind ErrUnknownOption", err)
	}
}

func TestParseRejectsLiteralParametersWithoutInterpreterMode(t *testing.T) {
	_, err := Parse([]string{"pkg/Foo.bar:(I)I", "(1)"})
	if err == nil {
		t.Fatal("expected an error: literal parameters require -i/--interpreter")
	}
}
