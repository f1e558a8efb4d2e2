//go:build windows
// +build windows

package endpoint

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/sys/windows"
)

// sockaddrInSize/sockaddrIn6Size mirror sizeof(sockaddr_in)/sizeof(sockaddr_in6)
// on Windows: the byte lengths of the two raw address forms. AcceptEx's
// completion buffer gives each of its local/remote addresses a larger slot
// of sizeof(sockaddr_storage)+16 bytes (see tcp's sockaddrPadded).
const (
	sockaddrInSize  = 16
	sockaddrIn6Size = 28
)

// ToRawBytes renders the Endpoint as the raw little-endian sockaddr_in or
// sockaddr_in6 bytes ConnectEx/AcceptEx expect. Returns an error for an
// Unset Endpoint.
func (e Endpoint) ToRawBytes() ([]byte, error) {
	switch e.family {
	case V4:
		buf := make([]byte, sockaddrInSize)
		binary.LittleEndian.PutUint16(buf[0:2], uint16(windows.AF_INET))
		binary.BigEndian.PutUint16(buf[2:4], e.port)
		copy(buf[4:8], e.v4[:])
		return buf, nil
	case V6:
		buf := make([]byte, sockaddrIn6Size)
		binary.LittleEndian.PutUint16(buf[0:2], uint16(windows.AF_INET6))
		binary.BigEndian.PutUint16(buf[2:4], e.port)
		copy(buf[8:24], e.v6[:])
		binary.LittleEndian.PutUint32(buf[24:28], e.zoneID)
		return buf, nil
	default:
		return nil, fmt.Errorf("endpoint: unset endpoint has no sockaddr form")
	}
}

// ToWindowsSockaddr converts the Endpoint to the windows.Sockaddr form
// consumed by windows.Bind/windows.Connect. Returns an error for an Unset
// Endpoint.
func (e Endpoint) ToWindowsSockaddr() (windows.Sockaddr, error) {
	switch e.family {
	case V4:
		sa := &windows.SockaddrInet4{Port: int(e.port)}
		copy(sa.Addr[:], e.v4[:])
		return sa, nil
	case V6:
		sa := &windows.SockaddrInet6{Port: int(e.port), ZoneId: e.zoneID}
		copy(sa.Addr[:], e.v6[:])
		return sa, nil
	default:
		return nil, fmt.Errorf("endpoint: unset endpoint has no sockaddr form")
	}
}

// FromRawBytes parses the family-tagged sockaddr bytes AcceptEx writes into
// its completion buffer (see accept's resume phase), returning the decoded
// Endpoint and its byte length.
func FromRawBytes(buf []byte) (Endpoint, int, error) {
	if len(buf) < 2 {
		return Endpoint{}, 0, fmt.Errorf("endpoint: truncated sockaddr buffer")
	}
	family := binary.LittleEndian.Uint16(buf[0:2])
	var e Endpoint
	switch int(family) {
	case windows.AF_INET:
		if len(buf) < sockaddrInSize {
			return Endpoint{}, 0, fmt.Errorf("endpoint: truncated sockaddr_in")
		}
		e.family = V4
		e.port = binary.BigEndian.Uint16(buf[2:4])
		copy(e.v4[:], buf[4:8])
		return e, sockaddrInSize, nil
	case windows.AF_INET6:
		if len(buf) < sockaddrIn6Size {
			return Endpoint{}, 0, fmt.Errorf("endpoint: truncated sockaddr_in6")
		}
		e.family = V6
		e.port = binary.BigEndian.Uint16(buf[2:4])
		copy(e.v6[:], buf[8:24])
		e.zoneID = binary.LittleEndian.Uint32(buf[24:28])
		return e, sockaddrIn6Size, nil
	default:
		return Endpoint{}, 0, fmt.Errorf("endpoint: unsupported address family %d", family)
	}
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
