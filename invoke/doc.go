// Package invoke marshals protocol argument tokens into a call and renders
// the result.
//
// Every token is parsed as a 32-bit signed integer and the result is always
// read back as one, whatever types the request's signature declares. The
// number of integers passed is the number of tokens supplied, not the
// declared parameter count. A token that fails to parse aborts the request
// before the target function runs.
package invoke
