//go:build linux || darwin || freebsd || netbsd || openbsd
// +build linux darwin freebsd netbsd openbsd

package tcp

import (
	"golang.org/x/sys/unix"

	"github.com/kestrelnet/tcpio/internal/net/endpoint"
)

// connectOp is the readiness-backend connect: a non-blocking connect(2)
// retried through writable-ready wakes, with the asynchronous outcome read
// back from SO_ERROR once the socket becomes writable.
type connectOp struct {
	baseOp
	dest endpoint.Endpoint
}

func newConnectOp(sock *Socket, dest endpoint.Endpoint) *connectOp {
	return &connectOp{baseOp: baseOp{sock: sock}, dest: dest}
}

func (c *connectOp) AwaitReady() bool {
	sa, err := c.dest.ToSockaddr()
	if err != nil {
		c.fail(err)
		return true
	}
	for {
		err := unix.Connect(c.sock.fd(), sa)
		if err == nil {
			return true
		}
		switch err {
		case unix.EINPROGRESS:
			return false
		case unix.EINTR:
			// EINTR handling is deliberately OS-specific (see
			// retryConnectOnEINTR): some kernels restart a non-blocking
			// connect transparently, others require the caller to fall
			// through to suspend and discover the outcome via SO_ERROR.
			if retryConnectOnEINTR {
				continue
			}
			return false
		default:
			c.fail(err)
			return true
		}
	}
}

func (c *connectOp) Suspend() bool {
	return c.suspendWrite()
}

func (c *connectOp) Resume() bool {
	if c.terminal() {
		return true
	}
	errno, err := unix.GetsockoptInt(c.sock.fd(), unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		c.fail(err)
		return true
	}
	if errno != 0 {
		c.fail(unix.Errno(errno))
	}
	return true
}
