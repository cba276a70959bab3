package library

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/dllbridge/errors"
)

// Handle is the reference-counted owner of the one loaded Library. The
// creator holds the first reference and gives it up with Close.
type Handle struct {
	lib      Library
	closeErr error
	refs     int
	mu       sync.Mutex
	released bool
}

// NewHandle wraps lib with a reference count of one.
func NewHandle(lib Library) *Handle {
	return &Handle{lib: lib, refs: 1}
}

// Library returns the wrapped library.
func (h *Handle) Library() Library {
	return h.lib
}

// Resolve looks up name in the wrapped library.
func (h *Handle) Resolve(name string) (Symbol, error) {
	return Resolve(h.lib, name)
}

// Retain adds a reference. It fails once the library has been unloaded.
func (h *Handle) Retain() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.refs == 0 {
		return errors.Closed(errors.PhaseServe, "library")
	}
	h.refs++
	return nil
}

// Release drops a reference taken with Retain. Dropping the last reference
// unloads the library.
func (h *Handle) Release() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.release()
}

// Close gives up the creator's reference. It returns the unload error when
// this was the last reference. Later calls are no-ops.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.released {
		return nil
	}
	h.released = true
	h.release()
	return h.closeErr
}

// Refs returns the current reference count.
func (h *Handle) Refs() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.refs
}

func (h *Handle) release() {
	if h.refs == 0 {
		return
	}
	h.refs--
	if h.refs > 0 {
		return
	}
	h.closeErr = h.lib.Close(context.Background())
	if h.closeErr != nil {
		Logger().Warn("library unload failed", zap.String("path", h.lib.Path()), zap.Error(h.closeErr))
		return
	}
	Logger().Info("library unloaded", zap.String("path", h.lib.Path()))
}
