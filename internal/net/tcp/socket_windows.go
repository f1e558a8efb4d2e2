//go:build windows
// +build windows

package tcp

import (
	"fmt"

	"golang.org/x/sys/windows"

	"github.com/kestrelnet/tcpio/internal/net/endpoint"
)

// bindIfNeeded performs connect's constructor-side-effect local auto-bind,
// idempotently: ConnectEx requires a bound socket, and ordinary sockets
// created by New are never explicitly bound (bind is not part of this
// core's contract). wildcard's family must match the destination the
// caller is about to connect to (see endpoint.WildcardFor), resolving the
// source's unconditional-IPv4 auto-bind bug for IPv6 destinations.
func (s *Socket) bindIfNeeded(wildcard endpoint.Endpoint) error {
	if s.bound {
		return nil
	}
	sa, err := wildcard.ToWindowsSockaddr()
	if err != nil {
		return err
	}
	if err := windows.Bind(windows.Handle(s.fd()), sa); err != nil {
		return err
	}
	s.bound = true
	return nil
}

const defaultProtocol = windows.IPPROTO_TCP

func openSocket(family endpoint.Family, protocol int) (int, error) {
	af := windows.AF_INET
	if family == endpoint.V6 {
		af = windows.AF_INET6
	}
	s, err := windows.WSASocket(int32(af), windows.SOCK_STREAM, int32(protocol), nil, 0, windows.WSA_FLAG_OVERLAPPED)
	if err != nil {
		return -1, err
	}
	return int(s), nil
}

// Listen turns the socket into a passive listener with the given backlog
// (0 means "kernel default"). The BSD-family SO_LINGER quirk does not apply
// on Windows; listen is the only platform behavior this method carries.
func (s *Socket) Listen(backlog int) error {
	n := backlog
	if n <= 0 {
		n = windows.SOMAXCONN
	}
	if err := windows.Listen(windows.Handle(s.fd()), n); err != nil {
		return fmt.Errorf("listen on socket: %w", err)
	}
	return nil
}
