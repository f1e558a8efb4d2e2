// Package server provides a handler-based accept loop over a listening
// tcp.Socket: per-connection goroutines, graceful shutdown that waits for
// in-flight handlers to return, and lightweight accept-error metrics.
// It is adapted from the runtime's own net.Listener-based TCPServer,
// rebuilt on the portable Socket/Accept primitives instead of the standard
// library's net package.
package server

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kestrelnet/tcpio/internal/net/tcp"
)

// Metrics is a snapshot of the server's accept-loop counters.
type Metrics struct {
	AcceptErrors     uint64
	BackoffMaxHits   uint64
	LastBackoffNanos int64
}

// Server runs one accept loop over a listening Socket, dispatching each
// accepted connection to a caller-supplied handler on its own goroutine.
type Server struct {
	listener *tcp.Socket
	closed   chan struct{}

	mu    sync.Mutex
	conns map[*tcp.Socket]struct{}
	wg    sync.WaitGroup

	acceptErrors     uint64
	backoffMaxHits   uint64
	lastBackoffNanos int64
}

// New wraps an already-listening Socket (Listen must already have been
// called). The Server takes no ownership of listener beyond closing it in
// Stop.
func New(listener *tcp.Socket) *Server {
	return &Server{
		listener: listener,
		closed:   make(chan struct{}),
		conns:    make(map[*tcp.Socket]struct{}),
	}
}

// Metrics returns a snapshot of the accept loop's counters.
func (s *Server) Metrics() Metrics {
	return Metrics{
		AcceptErrors:     atomic.LoadUint64(&s.acceptErrors),
		BackoffMaxHits:   atomic.LoadUint64(&s.backoffMaxHits),
		LastBackoffNanos: atomic.LoadInt64(&s.lastBackoffNanos),
	}
}

// Start begins accepting connections in a background goroutine and returns
// immediately. handler is invoked once per accepted connection, on its own
// goroutine, with a context derived from ctx and canceled when either ctx
// is done or the connection's handler returns.
//
// Every accept error is treated as transient and retried with bounded
// exponential backoff (5ms doubling to 500ms): the core surfaces accept
// failures as plain errors rather than the standard library's
// net.Error.Temporary(), so there is no reliable way to distinguish a
// recoverable condition from a fatal one short of inspecting errno per
// platform. ctx cancellation is always checked first and always stops the
// loop regardless of any pending backoff.
func (s *Server) Start(ctx context.Context, handler func(ctx context.Context, conn *tcp.Socket)) {
	go func() {
		defer close(s.closed)
		var backoff time.Duration
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			conn, err := tcp.Accept(s.listener)
			if err != nil {
				select {
				case <-ctx.Done():
					return
				default:
				}
				atomic.AddUint64(&s.acceptErrors, 1)
				if backoff == 0 {
					backoff = 5 * time.Millisecond
				} else {
					backoff *= 2
					if backoff > 500*time.Millisecond {
						backoff = 500 * time.Millisecond
						atomic.AddUint64(&s.backoffMaxHits, 1)
					}
				}
				atomic.StoreInt64(&s.lastBackoffNanos, int64(backoff))
				select {
				case <-ctx.Done():
					return
				case <-time.After(backoff):
				}
				continue
			}
			backoff = 0

			s.mu.Lock()
			s.conns[conn] = struct{}{}
			s.mu.Unlock()
			s.wg.Add(1)

			connCtx, cancel := context.WithCancel(ctx)
			go func(c *tcp.Socket, cancel context.CancelFunc) {
				defer func() {
					_ = c.Close()
					cancel()
					s.mu.Lock()
					delete(s.conns, c)
					s.mu.Unlock()
					s.wg.Done()
				}()
				handler(connCtx, c)
			}(conn, cancel)
		}
	}()
}

// Stop closes the listener, then waits for the accept loop to exit, which
// happens only once the ctx passed to Start is done. After that it closes
// every in-flight connection (to unblock handlers that are mid-Recv) and
// waits for their handlers to return. If ctx expires during either wait,
// Stop returns ctx.Err().
func (s *Server) Stop(ctx context.Context) error {
	_ = s.listener.Close()
	select {
	case <-s.closed:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.mu.Lock()
	toClose := make([]*tcp.Socket, 0, len(s.conns))
	for c := range s.conns {
		toClose = append(toClose, c)
	}
	s.mu.Unlock()
	for _, c := range toClose {
		_ = c.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
