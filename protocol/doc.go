// Package protocol implements the line protocol spoken by the bridge.
//
// # Requests
//
// Each line is one request:
//
//	call <function> sig:<params>[(<convention>)] -> <result> [<arg> ...]
//
// The signature may contain spaces; it runs from the "sig:" token up to and
// including the first token that completes a "->". If nothing follows the
// arrow inside that token, the next token is the result type. Tokens after
// the signature are the arguments.
//
//	call helloworld sig:void -> int
//	call add sig:int,int -> int 3 4
//	call add sig:int,int(cdecl)->int 3 4
//
// # Responses
//
// Every request produces exactly one response line terminated by "\n":
// the decimal result, or "ERR " followed by a message.
//
//	42
//	ERR Missing function name
//
// Lines are independent: no state is kept between them.
package protocol
