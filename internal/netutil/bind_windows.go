//go:build windows
// +build windows

package netutil

import (
	"golang.org/x/sys/windows"

	"github.com/kestrelnet/tcpio/internal/net/endpoint"
	"github.com/kestrelnet/tcpio/internal/net/tcp"
)

// Bind assigns ep as sock's local address. Call before Listen (server).
// Connect's own auto-bind (see tcp's bindIfNeeded) handles the client side
// on this platform, so callers dialing out normally never need this.
func Bind(sock *tcp.Socket, ep endpoint.Endpoint) error {
	sa, err := ep.ToWindowsSockaddr()
	if err != nil {
		return err
	}
	return windows.Bind(windows.Handle(sock.Handle().FD()), sa)
}
