//go:build linux || darwin || freebsd || netbsd || openbsd
// +build linux darwin freebsd netbsd openbsd

package tcp

import (
	"golang.org/x/sys/unix"

	"github.com/kestrelnet/tcpio/internal/net/endpoint"
)

// acceptOp is the readiness-backend accept: a non-blocking accept4 retried
// through readable-ready wakes. accept-with-flags is used so the accepted
// descriptor is born non-blocking, closing the descriptor-leak window a
// separate fcntl(F_SETFL) call would otherwise open.
type acceptOp struct {
	baseOp
	client *Socket
}

func newAcceptOp(sock *Socket) *acceptOp {
	return &acceptOp{baseOp: baseOp{sock: sock}}
}

func (a *acceptOp) AwaitReady() bool {
	fd, sa, err := unix.Accept4(a.sock.fd(), unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
	if err != nil {
		switch err {
		case unix.EAGAIN, unix.EINTR:
			return false
		default:
			a.fail(err)
			return true
		}
	}
	client, cerr := newFromHandle(a.sock.ctx, a.sock.family, a.sock.protocol, fd)
	if cerr != nil {
		_ = unix.Close(fd)
		a.fail(cerr)
		return true
	}
	if sa != nil {
		*client.Endpoint() = endpoint.FromSockaddr(sa)
	}
	a.client = client
	return true
}

func (a *acceptOp) Suspend() bool {
	return a.suspendRead()
}

func (a *acceptOp) Resume() bool {
	if a.terminal() {
		return true
	}
	return a.AwaitReady()
}
