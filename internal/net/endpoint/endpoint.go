// Package endpoint models a socket address as a family-tagged variant rather
// than a raw sockaddr_storage buffer plus length, avoiding the alignment and
// stale-length bugs that come with reinterpreting a byte buffer in place.
package endpoint

import (
	"net"
)

// Family identifies which concrete address form an Endpoint currently holds.
type Family int

const (
	// Unset marks an Endpoint with no address: zero value, used before
	// accept fills one in or before a caller sets one ahead of connect.
	Unset Family = iota
	V4
	V6
)

// Endpoint is a family-tagged address and port identifying one peer of a
// TCP socket; its sockaddr length follows from the family rather than being
// stored. The zero value is Unset and carries no address.
type Endpoint struct {
	family Family
	v4     [4]byte
	v6     [16]byte
	zoneID uint32
	port   uint16
}

// FromTCPAddr builds an Endpoint from a resolved net.TCPAddr. Endpoint itself
// never resolves names; address/endpoint resolution is an external concern.
func FromTCPAddr(addr *net.TCPAddr) Endpoint {
	var e Endpoint
	if addr == nil {
		return e
	}
	if ip4 := addr.IP.To4(); ip4 != nil {
		e.family = V4
		copy(e.v4[:], ip4)
	} else if ip6 := addr.IP.To16(); ip6 != nil {
		e.family = V6
		copy(e.v6[:], ip6)
		if addr.Zone != "" {
			if iface, err := net.InterfaceByName(addr.Zone); err == nil {
				e.zoneID = uint32(iface.Index)
			}
		}
	}
	e.port = uint16(addr.Port)
	return e
}

// Family reports which address form, if any, this Endpoint holds.
func (e Endpoint) Family() Family { return e.family }

// IsSet reports whether the Endpoint carries an address.
func (e Endpoint) IsSet() bool { return e.family != Unset }

// Port returns the port in host byte order.
func (e Endpoint) Port() uint16 { return e.port }

// IP returns the address as a net.IP, or nil for an Unset Endpoint.
func (e Endpoint) IP() net.IP {
	switch e.family {
	case V4:
		ip := make(net.IP, 4)
		copy(ip, e.v4[:])
		return ip
	case V6:
		ip := make(net.IP, 16)
		copy(ip, e.v6[:])
		return ip
	default:
		return nil
	}
}

// TCPAddr converts the Endpoint back to a net.TCPAddr for use with the
// standard library or for display. Returns nil for an Unset Endpoint.
func (e Endpoint) TCPAddr() *net.TCPAddr {
	if !e.IsSet() {
		return nil
	}
	addr := &net.TCPAddr{IP: e.IP(), Port: int(e.port)}
	if e.family == V6 && e.zoneID != 0 {
		if iface, err := net.InterfaceByIndex(int(e.zoneID)); err == nil {
			addr.Zone = iface.Name
		}
	}
	return addr
}

// String renders the Endpoint the way net.TCPAddr would.
func (e Endpoint) String() string {
	if !e.IsSet() {
		return "<unset>"
	}
	return e.TCPAddr().String()
}
