//go:build linux || darwin || freebsd || netbsd || openbsd
// +build linux darwin freebsd netbsd openbsd

// Package netutil holds the address collaborator the core deliberately
// leaves out of its own contract: binding a Socket to a local address
// before Listen or Connect. Translating standard library net.TCPAddr values
// into Endpoints is endpoint.FromTCPAddr's job, not this package's. The
// core's Non-goals exclude bind(2) and
// DNS resolution from the Socket/Operation contract itself, the same way
// the runtime keeps name resolution outside its transport primitives.
package netutil

import (
	"golang.org/x/sys/unix"

	"github.com/kestrelnet/tcpio/internal/net/endpoint"
	"github.com/kestrelnet/tcpio/internal/net/tcp"
)

// Bind assigns ep as sock's local address. Call before Listen (server) or
// before Connect on a socket that must source from a specific address.
func Bind(sock *tcp.Socket, ep endpoint.Endpoint) error {
	sa, err := ep.ToSockaddr()
	if err != nil {
		return err
	}
	return unix.Bind(sock.Handle().FD(), sa)
}
