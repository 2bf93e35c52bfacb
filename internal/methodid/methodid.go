// Package methodid parses the textual method identifier
// "pkg/Class.name:(argsig)returnsig" used throughout the analyzer to
// name the method under analysis, grounded on
// original_source/src/method.c's class/name/arguments/returns split.
package methodid

import (
	"strings"

	"github.com/pkg/errors"

	"jpamb/internal/types"
)

// ID is a parsed method identifier.
type ID struct {
	Raw        string // the original, unparsed identifier
	Class      string // e.g. "pkg/Class"
	Name       string
	Args       []*types.Type
	ReturnType *types.Type
}

// Parse splits "pkg/Class.name:(argsig)returnsig" into its parts. The
// class/name split is on the last '.' before the ':', matching
// get_method_class's use of strrchr so that package path separators
// ('/') are never mistaken for it.
func Parse(raw string) (ID, error) {
	colon := strings.IndexByte(raw, ':')
	if colon < 0 {
		return ID{}, errors.Errorf("method id %q missing ':' before signature", raw)
	}
	classAndName, sig := raw[:colon], raw[colon+1:]

	dot := strings.LastIndexByte(classAndName, '.')
	if dot < 0 {
		return ID{}, errors.Errorf("method id %q missing '.' before method name", raw)
	}
	class, name := classAndName[:dot], classAndName[dot+1:]

	if len(sig) == 0 || sig[0] != '(' {
		return ID{}, errors.Errorf("method id %q missing '(' in signature", raw)
	}
	close := strings.IndexByte(sig, ')')
	if close < 0 {
		return ID{}, errors.Errorf("method id %q missing ')' in signature", raw)
	}
	argsig, retsig := sig[1:close], sig[close+1:]

	args, err := types.ParseArgSignature(argsig)
	if err != nil {
		return ID{}, errors.Wrapf(err, "method id %q: parsing argument signature %q", raw, argsig)
	}
	retType, rest, err := types.ParseTypeSignature(retsig)
	if err != nil {
		return ID{}, errors.Wrapf(err, "method id %q: parsing return signature %q", raw, retsig)
	}
	if rest != "" {
		return ID{}, errors.Errorf("method id %q: trailing characters %q after return type", raw, rest)
	}

	return ID{Raw: raw, Class: class, Name: name, Args: args, ReturnType: retType}, nil
}

// Build renders a method id back into its canonical textual form, used by
// the VM to resolve an INVOKE instruction's (class, name, args) payload
// against the IR program cache.
func Build(class, name string, args []*types.Type, ret *types.Type) string {
	var sig strings.Builder
	sig.WriteString(class)
	sig.WriteByte('.')
	sig.WriteString(name)
	sig.WriteString(":(")
	for _, a := range args {
		sig.WriteString(a.Signature())
	}
	sig.WriteByte(')')
	if ret != nil {
		sig.WriteString(ret.Signature())
	}
	return sig.String()
}

// IsSpecialInfo reports whether raw is the reserved "info" method id
// used by the CLI to print analyzer identification instead of running
// any analysis.
func IsSpecialInfo(raw string) bool {
	return raw == "info"
}
