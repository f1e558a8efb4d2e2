//go:build linux || darwin || freebsd || netbsd || openbsd
// +build linux darwin freebsd netbsd openbsd

package tcp

import "golang.org/x/sys/unix"

// recvOp is the readiness-backend recv: a non-blocking read(2) retried
// through readable-ready wakes. ECONNRESET is normalized to a 0-byte
// orderly-close result rather than surfaced as an error.
type recvOp struct {
	baseOp
	buf []byte
	n   int
}

func newRecvOp(sock *Socket, buf []byte) *recvOp {
	return &recvOp{baseOp: baseOp{sock: sock}, buf: buf}
}

func (r *recvOp) result() int { return r.n }

func (r *recvOp) AwaitReady() bool {
	n, err := unix.Read(r.sock.fd(), r.buf)
	if err != nil {
		switch err {
		case unix.ECONNRESET:
			r.n = 0
			return true
		case unix.EAGAIN, unix.EINTR:
			return false
		default:
			r.fail(err)
			return true
		}
	}
	r.n = n
	return true
}

func (r *recvOp) Suspend() bool {
	return r.suspendRead()
}

func (r *recvOp) Resume() bool {
	if r.terminal() {
		return true
	}
	return r.AwaitReady()
}
