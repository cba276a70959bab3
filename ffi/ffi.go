package ffi

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/wippyai/dllbridge/errors"
)

// MaxArgs is the largest argument count a call interface can describe.
const MaxArgs = 15

var int32Type = reflect.TypeOf(int32(0))

// Library is a shared library loaded into the process
type Library struct {
	path   string
	handle uintptr
	mu     sync.RWMutex
	closed bool
}

// Open loads the shared library at path.
func Open(path string) (*Library, error) {
	h, err := openLibrary(path)
	if err != nil {
		return nil, errors.Load(fmt.Sprintf("Failed to load library %s", path), err)
	}
	return &Library{path: path, handle: h}, nil
}

// Path returns the path the library was loaded from.
func (l *Library) Path() string {
	return l.path
}

// Lookup returns the address of the exported symbol name. Errors carry the
// loader's own diagnostic.
func (l *Library) Lookup(name string) (uintptr, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return 0, errors.Closed(errors.PhaseResolve, "library")
	}
	addr, err := lookupSymbol(l.handle, name)
	if err != nil {
		return 0, err
	}
	if addr == 0 {
		return 0, fmt.Errorf("symbol %s has a nil address", name)
	}
	return addr, nil
}

// Close unloads the library. Addresses obtained from Lookup are invalid
// afterwards.
func (l *Library) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	return closeLibrary(l.handle)
}

// CallInterface describes a function of N int32 parameters returning int32
type CallInterface struct {
	fnType reflect.Type
	nargs  int
}

// NewCallInterface prepares a call interface for nargs integer arguments.
func NewCallInterface(nargs int) (*CallInterface, error) {
	if nargs < 0 || nargs > MaxArgs {
		return nil, errors.New(errors.PhaseInvoke, errors.KindUnsupported).
			Value(nargs).
			Detail("Too many arguments: %d (at most %d)", nargs, MaxArgs).
			Build()
	}

	in := make([]reflect.Type, nargs)
	for i := range in {
		in[i] = int32Type
	}
	return &CallInterface{
		fnType: reflect.FuncOf(in, []reflect.Type{int32Type}, false),
		nargs:  nargs,
	}, nil
}

// Arity returns the number of arguments the interface passes.
func (c *CallInterface) Arity() int {
	return c.nargs
}

// Call invokes the function at addr with args in order and returns its
// result. The call blocks until the function returns.
func (c *CallInterface) Call(addr uintptr, args []int32) (int32, error) {
	if addr == 0 {
		return 0, errors.InvalidInput(errors.PhaseInvoke, "nil function address")
	}
	if len(args) != c.nargs {
		return 0, errors.InvalidInput(errors.PhaseInvoke,
			fmt.Sprintf("call interface takes %d arguments, got %d", c.nargs, len(args)))
	}

	fn := reflect.New(c.fnType)
	if err := bind(fn.Interface(), addr); err != nil {
		return 0, err
	}

	in := make([]reflect.Value, len(args))
	for i, a := range args {
		in[i] = reflect.ValueOf(a)
	}
	out := fn.Elem().Call(in)
	return int32(out[0].Int()), nil
}

// bind points the function variable behind fptr at addr. Binding reports
// unsupported layouts by panicking, which is turned into an error here.
func bind(fptr any, addr uintptr) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrap(errors.PhaseInvoke, errors.KindUnsupported, fmt.Errorf("%v", r), "Failed to build call interface")
		}
	}()
	bindFunc(fptr, addr)
	return nil
}
