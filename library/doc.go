// Package library loads the code library served by the bridge and resolves
// its exported functions by name.
//
// Two backends implement Library:
//
//	native  shared objects and DLLs, loaded through package ffi
//	wasm    core WebAssembly modules (".wasm"), instantiated with wazero
//
// Open picks the backend from the file extension and wraps the result in a
// Handle. A Handle is created once at startup and shared by every connection
// worker; workers Retain it while they run and Release it when they finish.
// Close releases the owner's reference, and the library is unloaded once the
// last reference is gone.
//
// Resolve performs a fresh lookup for every request. Nothing is cached.
//
// # Thread Safety
//
// Library, Handle and Resolve are safe for concurrent use. The functions
// behind a Symbol are not synchronized; whether concurrent calls into one
// library are safe depends on that library.
package library
