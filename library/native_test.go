//go:build darwin || freebsd || linux

package library

import (
	"context"
	"testing"

	"github.com/wippyai/dllbridge/internal/testlib"
)

func TestOpen_Native(t *testing.T) {
	ctx := context.Background()

	h, err := Open(ctx, testlib.NativeFile(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer h.Close()

	if h.Library().Kind() != KindNative {
		t.Errorf("Kind() = %v, want native", h.Library().Kind())
	}

	sym, err := h.Resolve("AddNumbers")
	if err != nil {
		t.Fatal(err)
	}
	if ns, ok := sym.(*NativeSymbol); !ok || ns.Address() == 0 {
		t.Fatalf("symbol %T has no address", sym)
	}
	got, err := sym.Call(ctx, []int32{20, 22})
	if err != nil {
		t.Fatal(err)
	}
	if got != 42 {
		t.Errorf("AddNumbers(20, 22) = %d, want 42", got)
	}
}

func TestNative_NoCaching(t *testing.T) {
	ctx := context.Background()

	h, err := Open(ctx, testlib.NativeFile(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer h.Close()

	for want := int32(1); want <= 3; want++ {
		sym, err := h.Resolve("bump")
		if err != nil {
			t.Fatal(err)
		}
		got, err := sym.Call(ctx, nil)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("bump() = %d, want %d", got, want)
		}
	}
}

func TestNative_MissingSymbol(t *testing.T) {
	h, err := Open(context.Background(), testlib.NativeFile(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer h.Close()

	if _, err := h.Resolve("does_not_exist"); err == nil {
		t.Error("expected resolution error")
	}
}
