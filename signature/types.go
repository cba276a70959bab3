package signature

import (
	"strings"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/dllbridge/errors"
)

// Type is one of the value types a signature can name
type Type uint8

const (
	Int Type = iota
	Float
	Char
	Void
)

var typeNames = [...]string{
	Int:   "int",
	Float: "float",
	Char:  "char",
	Void:  "void",
}

// String returns the lowercase token for the type
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

// WIT maps the type onto the component model vocabulary.
// Void has no WIT counterpart and maps to nil.
func (t Type) WIT() wit.Type {
	switch t {
	case Int:
		return wit.S32{}
	case Float:
		return wit.F32{}
	case Char:
		return wit.Char{}
	default:
		return nil
	}
}

// ParseType resolves a single type token, ignoring case.
func ParseType(token string) (Type, error) {
	switch strings.ToLower(token) {
	case "int":
		return Int, nil
	case "float":
		return Float, nil
	case "char":
		return Char, nil
	case "void":
		return Void, nil
	}
	return 0, errors.Unsupported(errors.PhaseParse, "type", token)
}

// WITName returns the WIT spelling of a type produced by Type.WIT.
func WITName(t wit.Type) string {
	switch t.(type) {
	case wit.S32:
		return "s32"
	case wit.F32:
		return "f32"
	case wit.Char:
		return "char"
	case nil:
		return ""
	default:
		return "unknown"
	}
}
