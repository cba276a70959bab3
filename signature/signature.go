package signature

import (
	"fmt"
	"strings"

	"github.com/wippyai/dllbridge/errors"
)

// DefaultConvention is used when the signature names no calling convention.
const DefaultConvention = "cdecl"

// Arrow separates parameters from the result type.
const Arrow = "->"

// Signature describes a function as declared by a request
type Signature struct {
	Convention string
	Params     []Type
	Result     Type
}

// Parse parses text of the form "<params>[(<convention>)] -> <result>".
func Parse(text string) (*Signature, error) {
	parts := strings.Split(text, Arrow)
	if len(parts) != 2 {
		return nil, errors.Malformed(errors.PhaseParse, "Signature must contain '->'")
	}

	params, convention, err := splitConvention(parts[0])
	if err != nil {
		return nil, err
	}

	sig := &Signature{Convention: convention}
	for _, tok := range strings.Split(params, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		t, err := ParseType(tok)
		if err != nil {
			return nil, err
		}
		sig.Params = append(sig.Params, t)
	}

	sig.Result, err = ParseType(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, err
	}
	return sig, nil
}

// splitConvention separates "int,int(stdcall)" into "int,int" and "stdcall".
// The closing parenthesis is searched from the start of the text, so text
// after it is dropped along with the convention.
func splitConvention(s string) (params, convention string, err error) {
	start := strings.IndexByte(s, '(')
	if start < 0 {
		return s, DefaultConvention, nil
	}
	end := strings.IndexByte(s, ')')
	if end < 0 {
		return "", "", errors.Malformed(errors.PhaseParse, "Malformed signature: missing closing parenthesis")
	}
	if end < start {
		return "", "", errors.Malformed(errors.PhaseParse, "Malformed signature: ')' before '('")
	}
	return s[:start], s[start+1 : end], nil
}

// Arity returns the declared parameter count.
func (s *Signature) Arity() int {
	return len(s.Params)
}

// String renders the canonical text form, e.g. "int,int(cdecl) -> int".
func (s *Signature) String() string {
	var b strings.Builder
	for i, p := range s.Params {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p.String())
	}
	b.WriteByte('(')
	b.WriteString(s.Convention)
	b.WriteString(") ")
	b.WriteString(Arrow)
	b.WriteByte(' ')
	b.WriteString(s.Result.String())
	return b.String()
}

// WIT renders the signature as a WIT function type,
// e.g. "func(a0: s32, a1: s32) -> s32". Void parameters and results are omitted.
func (s *Signature) WIT() string {
	var params []string
	for i, p := range s.Params {
		if name := WITName(p.WIT()); name != "" {
			params = append(params, fmt.Sprintf("a%d: %s", i, name))
		}
	}
	out := "func(" + strings.Join(params, ", ") + ")"
	if name := WITName(s.Result.WIT()); name != "" {
		out += " -> " + name
	}
	return out
}

// Equal reports whether two signatures describe the same function type.
func (s *Signature) Equal(o *Signature) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.Convention != o.Convention || s.Result != o.Result || len(s.Params) != len(o.Params) {
		return false
	}
	for i := range s.Params {
		if s.Params[i] != o.Params[i] {
			return false
		}
	}
	return true
}
