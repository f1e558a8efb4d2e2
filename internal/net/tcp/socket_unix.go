//go:build linux || darwin || freebsd || netbsd || openbsd
// +build linux darwin freebsd netbsd openbsd

package tcp

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/kestrelnet/tcpio/internal/net/endpoint"
)

const defaultProtocol = unix.IPPROTO_TCP

// isBSDFamily reports whether the listener's SO_LINGER abortive-close
// quirk (see Listen) applies to the running target.
const isBSDFamily = runtimeIsBSD

func openSocket(family endpoint.Family, protocol int) (int, error) {
	af := unix.AF_INET
	if family == endpoint.V6 {
		af = unix.AF_INET6
	}
	fd, err := unix.Socket(af, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, protocol)
	if err != nil {
		return -1, err
	}
	return fd, nil
}

// Listen turns the socket into a passive listener with the given backlog
// (0 means "kernel default"). On BSD-family targets it additionally sets
// SO_LINGER{on_off=1, linger=0} immediately after listen, producing an
// abortive close on shutdown of a listener socket; this matches the
// documented behavior those kernels require for prompt port reuse. The
// setting is applied best-effort and its result is not reported, matching
// the core's contract.
func (s *Socket) Listen(backlog int) error {
	n := backlog
	if n <= 0 {
		n = unix.SOMAXCONN
	}
	if err := unix.Listen(s.fd(), n); err != nil {
		return fmt.Errorf("listen on socket: %w", err)
	}
	if isBSDFamily {
		_ = unix.SetsockoptLinger(s.fd(), unix.SOL_SOCKET, unix.SO_LINGER, &unix.Linger{Onoff: 1, Linger: 0})
	}
	return nil
}
