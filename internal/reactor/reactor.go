// Package reactor provides the event-multiplexer glue the tcp package's
// Operation state machines consume: a one-shot "tell me when this
// descriptor is readable/writable" primitive (the readiness backend) and a
// completion-queue primitive for overlapped I/O (the completion backend).
// Selection between the two happens at build time via file-level build
// tags, mirroring the platform split of the core they serve.
package reactor

import "context"

// Context is the backend interface the tcp package's Operation phases
// consume (see the core's §4.8 "Backend interface"). It is the seam between
// the portable Operation state machines and a concrete OS event loop.
type Context interface {
	// Register arms the descriptor with this Context's multiplexer. It must
	// be called once, when a Socket is constructed, before any operation is
	// submitted against it.
	Register(fd int) error

	// Deregister removes the descriptor from the multiplexer. Safe to call
	// on a descriptor that was never registered or already deregistered. On
	// the readiness backends, any wake still armed on fd fires with
	// cancelled=true before the registration is dropped, so a goroutine
	// suspended in Run waiting on it is unblocked rather than left to hang
	// past the socket's lifetime. The completion backend's Deregister does
	// nothing (see CompletionContext.Deregister).
	Deregister(fd int)

	// Close stops the Context's loop goroutine and releases its kernel
	// resources (the epoll/kqueue fd or I/O completion port handle).
	Close() error
}

// Readiness is the sub-interface the readiness backend's (epoll, kqueue,
// and the generic poll(2) fallback) Context implementations satisfy. The
// tcp package's Unix operation files assert against this interface rather
// than depending on a concrete backend type.
//
// wake's cancelled argument is false for an ordinary readiness wake (the
// operation should re-attempt its syscall) and true when the descriptor was
// deregistered while the wake was still armed (the operation should treat
// this as a cancellation error rather than re-attempting anything).
type Readiness interface {
	Context
	QueueRecv(fd int, wake func(cancelled bool)) bool
	QueueSend(fd int, wake func(cancelled bool)) bool
}

// Start brings up the default Context for the current platform and starts
// its loop goroutine under ctx. Exactly one Context normally serves one
// goroutine's worth of Sockets (see the core's single-threaded-cooperative
// scheduling model); a process may run several Contexts in parallel.
func Start(ctx context.Context) (Context, error) {
	return newPlatformContext(ctx)
}
