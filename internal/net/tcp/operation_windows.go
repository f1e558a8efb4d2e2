//go:build windows
// +build windows

package tcp

import (
	"errors"

	"github.com/kestrelnet/tcpio/internal/reactor"
)

// errNotCompletion is recorded if a Socket's Context unexpectedly does not
// implement the completion backend. It should never occur on a Windows
// build: every Windows Context is a *reactor.CompletionContext.
var errNotCompletion = errors.New("tcp: context is not a completion backend")

// cqOp holds the completion result a Token's wake callback stashes before
// releasing the operation's wait channel: the transferred byte count and
// whatever error GetQueuedCompletionStatus reported for that overlapped
// call (nil on success).
type cqOp struct {
	transferred uint32
	cqErr       error
}

// armToken arms a fresh wait channel (mirroring suspendRead/suspendWrite's
// one-shot channel arming on the readiness backend) and binds it to a new
// Token whose wake callback records the completion result into out. The
// Token must stay reachable (held by the caller's Operation) from this call
// until Resume observes out, matching the core's "pinned from suspend until
// resume" contract.
func (b *baseOp) armToken(cc *reactor.CompletionContext, out *cqOp) *reactor.Token {
	ch := b.arm()
	return cc.NewToken(func(transferred uint32, err error) {
		out.transferred = transferred
		out.cqErr = err
		close(ch)
	})
}

// completionContext type-asserts the Socket's Context to the completion
// backend, recording errNotCompletion on mismatch.
func (b *baseOp) completionContext() (*reactor.CompletionContext, bool) {
	cc, ok := b.sock.ctx.(*reactor.CompletionContext)
	if !ok {
		b.fail(errNotCompletion)
	}
	return cc, ok
}

// bufPtr returns the address of b's first byte, or nil for an empty slice.
// WSARecv, WSASend, and AcceptEx all accept a nil buffer pointer paired
// with a zero length.
func bufPtr(b []byte) *byte {
	if len(b) == 0 {
		return nil
	}
	return &b[0]
}
