// Package dllbridge serves the exported functions of one code library over a
// line-oriented TCP protocol.
//
// A client names a function, declares its signature and passes integer
// arguments:
//
//	call add sig:int,int -> int 3 4
//
// and receives one line back, either the decimal result or an error:
//
//	7
//	ERR Argument parsing error: argument 1 "x" is not a 32-bit integer
//
// # Architecture Overview
//
//	dllbridge/
//	├── signature/       Signature grammar: parameter types, convention, result
//	├── ffi/             Dynamic loading and runtime-built native calls (purego)
//	├── library/         Library backends (native, wasm via wazero), shared handle
//	├── invoke/          Argument marshaling and the call itself
//	├── protocol/        Request tokenizing and per-line dispatch
//	├── server/          Loopback TCP server, one worker per connection
//	├── client/          Go client for the protocol
//	├── errors/          Structured error types
//	└── cmd/
//	    ├── dllbridge/   Server entry point
//	    └── bridgectl/   Line-mode and interactive client
//
// # Quick Start
//
// Serve a library:
//
//	dllbridge ./libmath.so 5000
//
// Call into it from Go:
//
//	c, err := client.Dial(ctx, "127.0.0.1:5000")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	sum, err := c.Call(ctx, "add", "int,int -> int", 3, 4)
//
// # Type Support
//
// Signatures may name int, float, char and void. Every argument and the
// result are marshaled as signed 32-bit integers regardless of the declared
// types; the declared types are parsed, logged and validated only.
//
// # Safety
//
// Native calls are not isolated. A function that faults takes the whole
// process down, and concurrent calls into a non-reentrant library are not
// serialized.
package dllbridge
