// Package tcp implements the portable core of an asynchronous TCP socket
// layer: Socket/Handle/Endpoint and the five suspendable operations
// (Accept, Connect, Recv, Send, SendSome), reconciled behind one contract
// over two backend event models — a completion backend (Windows overlapped
// I/O) and a readiness backend (epoll/kqueue/poll). Address resolution,
// TLS, and framing are not this package's concern; it is byte-transparent.
package tcp

import (
	"fmt"

	"github.com/kestrelnet/tcpio/internal/net/endpoint"
	"github.com/kestrelnet/tcpio/internal/net/handle"
	"github.com/kestrelnet/tcpio/internal/reactor"
)

// Socket is a TCP endpoint: it owns a Handle, is bound to exactly one
// reactor.Context for its whole lifetime, and caches its local Endpoint.
//
// A Socket does not serialize its own operations: at most one of
// {Accept, Connect, Recv, Send/SendSome} may be in flight per direction
// (read vs write) at a time, but read and write operations may run
// concurrently with each other. Enforcing that discipline is the caller's
// responsibility, exactly as in the core this package implements.
type Socket struct {
	h        handle.Handle
	ctx      reactor.Context
	family   endpoint.Family
	protocol int
	local    endpoint.Endpoint
	bound    bool // completion backend only: set once connect's auto-bind runs
}

// New opens a TCP stream socket (SOCK_STREAM, IPPROTO_TCP) for family and
// registers it with ctx.
func New(ctx reactor.Context, family endpoint.Family) (*Socket, error) {
	return NewWithProtocol(ctx, family, defaultProtocol)
}

// NewWithProtocol opens a stream socket with an explicit L4 protocol.
func NewWithProtocol(ctx reactor.Context, family endpoint.Family, protocol int) (*Socket, error) {
	if family != endpoint.V4 && family != endpoint.V6 {
		return nil, fmt.Errorf("tcp: unsupported address family %v", family)
	}
	fd, err := openSocket(family, protocol)
	if err != nil {
		return nil, err
	}
	h := handle.New(fd)
	if err := ctx.Register(fd); err != nil {
		_ = h.Close()
		return nil, err
	}
	return &Socket{h: h, ctx: ctx, family: family, protocol: protocol}, nil
}

// newFromHandle wraps an already-open descriptor and registers it with ctx
// (used by Accept to construct the client Socket). protocol and family are
// inherited from the listening Socket.
func newFromHandle(ctx reactor.Context, family endpoint.Family, protocol int, fd int) (*Socket, error) {
	if err := ctx.Register(fd); err != nil {
		return nil, err
	}
	return &Socket{h: handle.New(fd), ctx: ctx, family: family, protocol: protocol}, nil
}

// Endpoint returns a pointer to the cached local Endpoint so operations
// (accept fills the peer's, the caller sets one before connect) can
// overwrite it in place.
func (s *Socket) Endpoint() *endpoint.Endpoint { return &s.local }

// Handle exposes the underlying Handle for backend use.
func (s *Socket) Handle() *handle.Handle { return &s.h }

// Context returns the reactor.Context this Socket is bound to.
func (s *Socket) Context() reactor.Context { return s.ctx }

// Family reports the socket's address family.
func (s *Socket) Family() endpoint.Family { return s.family }

// fd is a convenience accessor used throughout the operation files.
func (s *Socket) fd() int { return s.h.FD() }

// Close deregisters the socket from its Context and releases its Handle.
// Idempotent, matching Handle's own idempotent Close.
func (s *Socket) Close() error {
	s.ctx.Deregister(s.fd())
	return s.h.Close()
}
