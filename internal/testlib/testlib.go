// Package testlib provides code libraries exporting a small, known set of
// functions, for tests that need something real to call.
//
// Exports shared by the wasm module and the native library:
//
//	helloworld() -> 42
//	add(a, b)    -> a + b
//	sub(a, b)    -> a - b
//
// The native library also exports AddNumbers, negate, bump and sum8; see testdata/lib.c.
package testlib

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
)

//go:embed testdata/lib.c
var nativeSource []byte

// Wasm is a core WebAssembly module exporting helloworld, add and sub.
var Wasm = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version

	// type section: (i32, i32) -> i32, () -> i32
	0x01, 0x0b, 0x02,
	0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f,
	0x60, 0x00, 0x01, 0x7f,

	// function section: add, helloworld, sub
	0x03, 0x04, 0x03, 0x00, 0x01, 0x00,

	// export section
	0x07, 0x1a, 0x03,
	0x03, 'a', 'd', 'd', 0x00, 0x00,
	0x0a, 'h', 'e', 'l', 'l', 'o', 'w', 'o', 'r', 'l', 'd', 0x00, 0x01,
	0x03, 's', 'u', 'b', 0x00, 0x02,

	// code section
	0x0a, 0x16, 0x03,
	0x07, 0x00, 0x20, 0x00, 0x20, 0x01, 0x6a, 0x0b, // local.get 0, local.get 1, i32.add
	0x04, 0x00, 0x41, 0x2a, 0x0b, // i32.const 42
	0x07, 0x00, 0x20, 0x00, 0x20, 0x01, 0x6b, 0x0b, // local.get 0, local.get 1, i32.sub
}

// WasmFile writes Wasm into a temporary directory and returns its path.
func WasmFile(t testing.TB) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "bridgetest.wasm")
	if err := os.WriteFile(path, Wasm, 0o644); err != nil {
		t.Fatalf("write wasm module: %v", err)
	}
	return path
}

// NativeFile compiles lib.c into a shared library with the system C
// compiler and returns its path. The test is skipped when no compiler is
// available.
func NativeFile(t testing.TB) string {
	t.Helper()

	path, err := buildNative(t)
	if err != nil {
		t.Skip(err)
	}
	return path
}

// TryNativeFile is NativeFile for tests that also run without the native
// library. It reports false instead of skipping.
func TryNativeFile(t testing.TB) (string, bool) {
	t.Helper()

	path, err := buildNative(t)
	if err != nil {
		t.Log(err)
		return "", false
	}
	return path, true
}

func buildNative(t testing.TB) (string, error) {
	if runtime.GOOS == "windows" {
		return "", errors.New("native test library is not built on windows")
	}
	cc := os.Getenv("CC")
	if cc == "" {
		cc = "cc"
	}
	if _, err := exec.LookPath(cc); err != nil {
		return "", fmt.Errorf("no C compiler: %w", err)
	}

	dir := t.TempDir()
	src := filepath.Join(dir, "lib.c")
	if err := os.WriteFile(src, nativeSource, 0o644); err != nil {
		return "", fmt.Errorf("write source: %w", err)
	}
	out := filepath.Join(dir, "libbridgetest.so")
	cmd := exec.Command(cc, "-shared", "-fPIC", "-o", out, src)
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("compile test library: %w\n%s", err, output)
	}
	return out, nil
}

// SystemLibC returns the path of the C library, which exports abs and
// toupper. The test is skipped on platforms without a known path.
func SystemLibC(t testing.TB) string {
	t.Helper()

	switch runtime.GOOS {
	case "linux":
		return "libc.so.6"
	case "darwin":
		return "/usr/lib/libSystem.B.dylib"
	case "freebsd":
		return "libc.so.7"
	}
	t.Skipf("no known C library on %s", runtime.GOOS)
	return ""
}
