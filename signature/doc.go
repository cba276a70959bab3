// Package signature parses the textual function signatures carried by
// protocol requests.
//
// # Grammar
//
//	signature  = params [ "(" convention ")" ] "->" result
//	params     = [ type { "," type } ]
//	type       = "int" | "float" | "char" | "void"   (case-insensitive)
//
// Examples:
//
//	int,int -> int
//	int,int(stdcall) -> int
//	void -> int
//	-> int
//
// The text must contain exactly one "->". Empty parameter tokens are
// dropped, so "-> int" and " , -> int" both describe a function without
// parameters. The calling convention defaults to "cdecl" and is carried
// through unmodified; nothing here checks it against the library.
//
// Parsing is pure: the same text always yields an equal Signature.
package signature
