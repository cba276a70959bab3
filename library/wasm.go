package library

import (
	"context"
	"fmt"
	"os"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/wippyai/dllbridge/errors"
)

type wasmLibrary struct {
	runtime wazero.Runtime
	module  api.Module
	path    string
}

// OpenWasm compiles and instantiates a core WebAssembly module. WASI
// preview1 imports are provided; a reactor's _initialize export runs once
// here, and _start is never run.
func OpenWasm(ctx context.Context, path string) (Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load(fmt.Sprintf("Failed to load library %s", path), err)
	}

	rt := wazero.NewRuntime(ctx)
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		rt.Close(ctx)
		return nil, errors.Load("instantiate WASI", err)
	}

	cfg := wazero.NewModuleConfig().
		WithName(path).
		WithStdout(os.Stdout).
		WithStderr(os.Stderr).
		WithStartFunctions("_initialize")

	mod, err := rt.InstantiateWithConfig(ctx, data, cfg)
	if err != nil {
		rt.Close(ctx)
		return nil, errors.Load(fmt.Sprintf("Failed to load library %s", path), err)
	}

	return &wasmLibrary{runtime: rt, module: mod, path: path}, nil
}

func (w *wasmLibrary) Path() string { return w.path }

func (w *wasmLibrary) Kind() Kind { return KindWasm }

func (w *wasmLibrary) Lookup(name string) (Symbol, error) {
	if w.module.IsClosed() {
		return nil, errors.Closed(errors.PhaseResolve, "library")
	}
	fn := w.module.ExportedFunction(name)
	if fn == nil {
		return nil, fmt.Errorf("export %q not found in %s", name, w.path)
	}
	return &wasmSymbol{name: name, fn: fn}, nil
}

func (w *wasmLibrary) Close(ctx context.Context) error {
	return w.runtime.Close(ctx)
}

// wasmSymbol holds its own api.Function, so separate lookups can be called
// from separate goroutines.
type wasmSymbol struct {
	fn   api.Function
	name string
}

func (s *wasmSymbol) Name() string { return s.name }

func (s *wasmSymbol) Call(ctx context.Context, args []int32) (int32, error) {
	params := make([]uint64, len(args))
	for i, a := range args {
		params[i] = api.EncodeI32(a)
	}

	results, err := s.fn.Call(ctx, params...)
	if err != nil {
		return 0, errors.CallFailed(s.name, err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return api.DecodeI32(results[0]), nil
}
