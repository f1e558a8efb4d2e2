//go:build linux || darwin || freebsd || netbsd || openbsd
// +build linux darwin freebsd netbsd openbsd

package tcp

import "golang.org/x/sys/unix"

// sendOp is the readiness-backend send/send_some: a non-blocking write(2)
// retried through writable-ready wakes. The Cursor tracks how much of the
// caller's buffer has been handed to the kernel so far; someShot selects
// send_some's single-write termination instead of send's drain-to-done.
type sendOp struct {
	baseOp
	cur      *Cursor
	someShot bool
}

func newSendOp(sock *Socket, cur *Cursor, someShot bool) *sendOp {
	return &sendOp{baseOp: baseOp{sock: sock}, cur: cur, someShot: someShot}
}

// AwaitReady attempts one non-blocking write of the Cursor's remaining
// bytes. It reports true (no suspension needed) once the Cursor is fully
// drained (send) or after any write at all (send_some); EAGAIN/EINTR with
// zero progress reports false so the caller suspends for writable-ready.
func (s *sendOp) AwaitReady() bool {
	if s.cur.Done() {
		return true
	}
	n, err := unix.Write(s.sock.fd(), s.cur.Remaining())
	if err != nil {
		switch err {
		case unix.EAGAIN, unix.EINTR:
			return false
		default:
			s.fail(err)
			return true
		}
	}
	if n == 0 {
		// The kernel accepted nothing further; end the operation rather
		// than spin on a socket that will never make more progress.
		return true
	}
	s.cur.Advance(n)
	if s.someShot {
		return true
	}
	return s.cur.Done()
}

func (s *sendOp) Suspend() bool {
	return s.suspendWrite()
}

func (s *sendOp) Resume() bool {
	if s.terminal() {
		return true
	}
	if s.someShot {
		// send_some is terminal after exactly one write attempt, even if
		// this post-wake attempt makes no further progress.
		_ = s.AwaitReady()
		return true
	}
	return s.AwaitReady()
}
