//go:build windows
// +build windows

package tcp

import (
	"errors"

	"golang.org/x/sys/windows"

	"github.com/kestrelnet/tcpio/internal/reactor"
)

// errSendStalled marks a send round that made zero progress and has no
// pending overlapped call to wait on: the kernel accepted nothing and there
// is nothing left to suspend for.
var errSendStalled = errors.New("tcp: send made no progress")

// sendOp is the completion-backend send/send_some: Suspend posts exactly
// one overlapped WSASend per round and always waits for its completion
// packet, never reusing a Token before its own completion has been
// observed — a synchronously-successful overlapped WSASend on an
// IOCP-associated socket still queues a completion later (this core never
// sets FILE_SKIP_COMPLETION_PORT_ON_SUCCESS), so treating "err == nil" as
// license to submit another call on a fresh Token would leave the first
// Token's completion to land on whatever Token/cqOp pair is live by then.
// This mirrors the same IOCP-safe reasoning already applied to accept and
// connect's Suspend. (See the core's suspicious "advance pointer then
// subtract it back" note in the source this resolves — progress here
// always means advance the Cursor, never undo it.) Resume extracts each
// round's result and, for a plain send, loops back through another
// Suspend until the Cursor drains.
type sendOp struct {
	baseOp
	cq       cqOp
	token    *reactor.Token
	cur      *Cursor
	someShot bool
}

func newSendOp(sock *Socket, cur *Cursor, someShot bool) *sendOp {
	return &sendOp{baseOp: baseOp{sock: sock}, cur: cur, someShot: someShot}
}

func (s *sendOp) AwaitReady() bool { return false }

func (s *sendOp) Suspend() bool {
	if s.cur.Done() {
		return false
	}
	cc, ok := s.completionContext()
	if !ok {
		return false
	}
	rem := s.cur.Remaining()
	wsabuf := windows.WSABuf{Len: uint32(len(rem)), Buf: bufPtr(rem)}
	var sent uint32
	s.token = s.armToken(cc, &s.cq)
	err := windows.WSASend(windows.Handle(s.sock.fd()), &wsabuf, 1, &sent, 0, s.token.Ptr(), nil)
	if err != nil && err != windows.ERROR_IO_PENDING {
		s.fail(err)
		return false
	}
	// Whether WSASend completed synchronously or is pending, the
	// completion port still delivers a completion packet for this Token;
	// always suspend and let Resume read the real result from it.
	return true
}

func (s *sendOp) Resume() bool {
	if s.terminal() {
		return true
	}
	if s.cur.Done() {
		// Suspend returned false with nothing submitted: the Cursor was
		// already drained (send) or send_some had already made its one
		// write on an earlier round.
		return true
	}
	if s.cq.cqErr != nil {
		s.fail(s.cq.cqErr)
		return true
	}
	n := int(s.cq.transferred)
	if n > 0 {
		s.cur.Advance(n)
	}
	if s.someShot {
		return true
	}
	if s.cur.Done() {
		return true
	}
	if n == 0 {
		s.fail(errSendStalled)
		return true
	}
	return false // another Suspend round: more of the Cursor remains
}
