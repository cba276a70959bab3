package server

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/wippyai/dllbridge/errors"
	"github.com/wippyai/dllbridge/library"
	"github.com/wippyai/dllbridge/protocol"
)

const (
	// Host is the only address the server binds to.
	Host = "127.0.0.1"
	// DefaultPort is used when no port is configured.
	DefaultPort = 5000

	maxAcceptDelay = time.Second
)

// Config holds server settings
type Config struct {
	// Port to listen on. Zero picks a free port.
	Port int
	// MaxConns limits concurrently served connections. Zero means unbounded.
	MaxConns int
}

// DefaultConfig returns the configuration used by the command line.
func DefaultConfig() Config {
	return Config{Port: DefaultPort}
}

// Server serves the line protocol for one library handle
type Server struct {
	handle     *library.Handle
	dispatcher *protocol.Dispatcher
	conns      map[net.Conn]struct{}
	cfg        Config
	nextID     atomic.Uint64
	mu         sync.Mutex
}

// New creates a server that dispatches requests to functions of h.
func New(h *library.Handle, cfg Config) *Server {
	return &Server{
		handle:     h,
		dispatcher: protocol.NewDispatcher(h),
		conns:      make(map[net.Conn]struct{}),
		cfg:        cfg,
	}
}

// Listen binds the loopback address on the configured port.
func (s *Server) Listen() (net.Listener, error) {
	if s.cfg.Port < 0 || s.cfg.Port > 65535 {
		return nil, errors.InvalidInput(errors.PhaseLoad, fmt.Sprintf("invalid port %d", s.cfg.Port))
	}
	addr := net.JoinHostPort(Host, strconv.Itoa(s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Load(fmt.Sprintf("Failed to bind to %s", addr), err)
	}
	return ln, nil
}

// ListenAndServe binds the configured port and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done. It takes ownership of
// ln and returns after every connection worker has exited.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	var sem *semaphore.Weighted
	if s.cfg.MaxConns > 0 {
		sem = semaphore.NewWeighted(int64(s.cfg.MaxConns))
	}

	Logger().Info("bridge listening",
		zap.Stringer("addr", ln.Addr()),
		zap.String("library", s.handle.Library().Path()),
		zap.Int("max_conns", s.cfg.MaxConns))

	g.Go(func() error {
		<-gctx.Done()
		ln.Close()
		s.closeConns()
		return nil
	})

	g.Go(func() error {
		var delay time.Duration
		for {
			if sem != nil {
				if err := sem.Acquire(gctx, 1); err != nil {
					return nil
				}
			}

			conn, err := ln.Accept()
			if err != nil {
				if sem != nil {
					sem.Release(1)
				}
				if gctx.Err() != nil {
					return nil
				}
				if stderrors.Is(err, net.ErrClosed) {
					return err
				}
				delay = nextDelay(delay)
				Logger().Error("connection failed", zap.Error(err), zap.Duration("retry_in", delay))
				select {
				case <-time.After(delay):
				case <-gctx.Done():
					return nil
				}
				continue
			}
			delay = 0

			g.Go(func() error {
				if sem != nil {
					defer sem.Release(1)
				}
				s.serveConn(gctx, conn)
				return nil
			})
		}
	})

	err := g.Wait()
	Logger().Info("bridge stopped", zap.Stringer("addr", ln.Addr()))
	return err
}

func nextDelay(d time.Duration) time.Duration {
	if d == 0 {
		return 5 * time.Millisecond
	}
	d *= 2
	if d > maxAcceptDelay {
		d = maxAcceptDelay
	}
	return d
}

// serveConn runs the request loop for one connection. A line cut short by
// the peer closing the connection gets no response.
func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	id := s.nextID.Add(1)
	log := Logger().With(zap.Uint64("conn", id), zap.Stringer("remote", conn.RemoteAddr()))

	if !s.track(conn) {
		conn.Close()
		return
	}
	defer s.untrack(conn)

	if err := s.handle.Retain(); err != nil {
		log.Warn("library unavailable", zap.Error(err))
		return
	}
	defer s.handle.Release()

	log.Debug("connection accepted")
	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			switch {
			case len(line) > 0:
				log.Debug("dropping unterminated line", zap.Int("bytes", len(line)))
			case stderrors.Is(err, io.EOF), ctx.Err() != nil:
			default:
				log.Debug("read failed", zap.Error(err))
			}
			break
		}

		resp := s.dispatcher.Handle(ctx, line)
		if _, err := io.WriteString(conn, resp); err != nil {
			log.Debug("write failed", zap.Error(err))
			break
		}
	}
	log.Debug("connection closed")
}

// track registers conn for shutdown. It reports false when the server is
// already shutting down.
func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conns == nil {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conns != nil {
		delete(s.conns, conn)
	}
	conn.Close()
}

func (s *Server) closeConns() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for conn := range s.conns {
		conn.Close()
	}
	s.conns = nil
}
