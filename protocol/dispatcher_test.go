package protocol

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/wippyai/dllbridge/internal/testlib"
	"github.com/wippyai/dllbridge/library"
)

type stubSymbol struct {
	fn   func(args []int32) int32
	name string
}

func (s stubSymbol) Name() string { return s.name }

func (s stubSymbol) Call(_ context.Context, args []int32) (int32, error) {
	return s.fn(args), nil
}

// stubResolver records every call so tests can assert that nothing ran.
type stubResolver struct {
	funcs    map[string]func(args []int32) int32
	calls    map[string][][]int32
	resolved int
	mu       sync.Mutex
}

func newStubResolver() *stubResolver {
	r := &stubResolver{calls: make(map[string][][]int32)}
	r.funcs = map[string]func([]int32) int32{
		"helloworld": func([]int32) int32 { return 42 },
		"add":        func(a []int32) int32 { return a[0] + a[1] },
		"sub":        func(a []int32) int32 { return a[0] - a[1] },
		"count":      func(a []int32) int32 { return int32(len(a)) },
	}
	return r
}

func (r *stubResolver) Resolve(name string) (library.Symbol, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.resolved++
	fn, ok := r.funcs[name]
	if !ok {
		_, err := library.Resolve(emptyLibrary{}, name)
		return nil, err
	}
	return stubSymbol{name: name, fn: func(args []int32) int32 {
		r.mu.Lock()
		r.calls[name] = append(r.calls[name], args)
		r.mu.Unlock()
		return fn(args)
	}}, nil
}

func (r *stubResolver) callCount(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls[name])
}

type emptyLibrary struct{}

func (emptyLibrary) Path() string { return "empty.so" }

func (emptyLibrary) Kind() library.Kind { return library.KindNative }

func (emptyLibrary) Close(context.Context) error { return nil }

func (emptyLibrary) Lookup(n string) (library.Symbol, error) {
	return nil, errors.New("undefined symbol: " + n)
}

func TestDispatcher_Handle(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"helloworld", "call helloworld sig:void -> int", "42\n"},
		{"helloworld compact", "call helloworld sig:void ->int\n", "42\n"},
		{"add", "call add sig:int,int -> int 3 4", "7\n"},
		{"argument order", "call sub sig:int,int -> int 10 3", "7\n"},
		{"negative result", "call sub sig:int,int -> int 3 10", "-7\n"},
		{"declared types ignored", "call add sig:float,char(stdcall) -> void 3 4", "7\n"},
		{"argument count not validated", "call count sig:int -> int 1 2 3", "3\n"},
		{"no arguments for declared params", "call count sig:int,int -> int", "0\n"},
		{"bad argument", "call add sig:int,int -> int 3 x", "ERR Argument parsing error: argument 1 \"x\" is not a 32-bit integer\n"},
		{"wrong command", "hello", "ERR Command must start with 'call'\n"},
		{"empty line", "\n", "ERR Command must start with 'call'\n"},
		{"missing name", "call", "ERR Missing function name\n"},
		{"no signature", "call add 3 4", "ERR No signature string provided\n"},
		{"no arrow", "call add sig:int,int 3 4", "ERR Malformed signature; no '->' found\n"},
		{"unknown type", "call add sig:int,bool -> int 3 4", "ERR Unsupported type: bool\n"},
		{"unclosed paren", "call add sig:int,int(cdecl -> int 3 4", "ERR Malformed signature: missing closing parenthesis\n"},
		{"embedded NUL", "call add\x00x sig:int,int -> int 3 4", "ERR Invalid function name\n"},
		{"missing function", "call nope sig:void -> int", "ERR Symbol lookup failed for \"nope\": undefined symbol: nope\n"},
	}

	d := NewDispatcher(newStubResolver())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.Handle(context.Background(), tt.line); got != tt.want {
				t.Errorf("Handle(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestDispatcher_NoCallOnError(t *testing.T) {
	lines := []string{
		"call add sig:int,int -> int 3 x",
		"call add 3 4",
		"call add sig:int,int 3 4",
		"call add sig:bogus -> int 3 4",
	}

	r := newStubResolver()
	d := NewDispatcher(r)
	for _, line := range lines {
		resp := d.Handle(context.Background(), line)
		if !strings.HasPrefix(resp, ErrorPrefix) {
			t.Errorf("Handle(%q) = %q, want an error", line, resp)
		}
	}
	if n := r.callCount("add"); n != 0 {
		t.Errorf("add called %d times, want 0", n)
	}
}

func TestDispatcher_ResolveAfterSignature(t *testing.T) {
	r := newStubResolver()
	d := NewDispatcher(r)

	d.Handle(context.Background(), "call add sig:int,bool -> int 3 4")
	d.Handle(context.Background(), "call add")
	if r.resolved != 0 {
		t.Errorf("resolved %d times for rejected requests, want 0", r.resolved)
	}

	d.Handle(context.Background(), "call add sig:int,int -> int 1 2")
	d.Handle(context.Background(), "call add sig:int,int -> int 1 2")
	if r.resolved != 2 {
		t.Errorf("resolved %d times, want a fresh lookup per request", r.resolved)
	}
}

func TestDispatcher_LinesAreIndependent(t *testing.T) {
	d := NewDispatcher(newStubResolver())
	ctx := context.Background()

	if got := d.Handle(ctx, "call add sig:int,int"); !strings.HasPrefix(got, ErrorPrefix) {
		t.Fatalf("partial signature accepted: %q", got)
	}
	if got := d.Handle(ctx, "-> int 3 4"); got != "ERR Command must start with 'call'\n" {
		t.Errorf("continuation line = %q", got)
	}
	if got := d.Handle(ctx, "call add sig:int,int -> int 3 4"); got != "7\n" {
		t.Errorf("Handle() = %q, want 7", got)
	}
}

func TestDispatcher_Wasm(t *testing.T) {
	ctx := context.Background()

	h, err := library.Open(ctx, testlib.WasmFile(t))
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	d := NewDispatcher(h)
	tests := map[string]string{
		"call helloworld sig:void -> int": "42\n",
		"call add sig:int,int -> int 3 4": "7\n",
		"call sub sig:int,int -> int 3 4": "-1\n",
		"call add sig:int,int -> int 3 x": "ERR Argument parsing error: argument 1 \"x\" is not a 32-bit integer\n",
		"call add sig:int -> int 3":       "",
		"call missing sig:void -> int":    "",
	}
	for line, want := range tests {
		got := d.Handle(ctx, line)
		if want == "" {
			if !strings.HasPrefix(got, ErrorPrefix) || strings.Count(got, "\n") != 1 || !strings.HasSuffix(got, "\n") {
				t.Errorf("Handle(%q) = %q, want one ERR line", line, got)
			}
			continue
		}
		if got != want {
			t.Errorf("Handle(%q) = %q, want %q", line, got, want)
		}
	}
}

func TestFormatResponse(t *testing.T) {
	if got := FormatResponse("42", nil); got != "42\n" {
		t.Errorf("FormatResponse(42) = %q", got)
	}
	if got := FormatResponse("", errors.New("line one\nline two")); got != "ERR line one line two\n" {
		t.Errorf("FormatResponse(multi-line error) = %q", got)
	}
}
