//go:build linux || darwin || freebsd || netbsd || openbsd
// +build linux darwin freebsd netbsd openbsd

package endpoint

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// ToSockaddr converts the Endpoint to the unix.Sockaddr form consumed by
// connect(2)/bind(2). Returns an error for an Unset Endpoint.
func (e Endpoint) ToSockaddr() (unix.Sockaddr, error) {
	switch e.family {
	case V4:
		sa := &unix.SockaddrInet4{Port: int(e.port)}
		copy(sa.Addr[:], e.v4[:])
		return sa, nil
	case V6:
		sa := &unix.SockaddrInet6{Port: int(e.port), ZoneId: e.zoneID}
		copy(sa.Addr[:], e.v6[:])
		return sa, nil
	default:
		return nil, fmt.Errorf("endpoint: unset endpoint has no sockaddr form")
	}
}

// FromSockaddr builds an Endpoint from the unix.Sockaddr returned by
// accept(2)/getpeername(2). Unsupported families yield an Unset Endpoint.
func FromSockaddr(sa unix.Sockaddr) Endpoint {
	var e Endpoint
	switch v := sa.(type) {
	case *unix.SockaddrInet4:
		e.family = V4
		copy(e.v4[:], v.Addr[:])
		e.port = uint16(v.Port)
	case *unix.SockaddrInet6:
		e.family = V6
		copy(e.v6[:], v.Addr[:])
		e.port = uint16(v.Port)
		e.zoneID = v.ZoneId
	}
	return e
}

// WildcardFor returns the family-appropriate wildcard Endpoint ("0.0.0.0:0"
// or "[::]:0") used for the completion backend's implicit local auto-bind
// before connect. Resolves the REDESIGN FLAG around IPv6 auto-bind: the
// family is taken from the destination Endpoint being connected to, not
// hardcoded to IPv4.
func WildcardFor(family Family) Endpoint {
	var e Endpoint
	switch family {
	case V6:
		e.family = V6
	default:
		e.family = V4
	}
	return e
}
