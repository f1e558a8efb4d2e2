// Package handshake implements a minimal version-negotiation exchange that
// runs immediately after connect/accept and before any application data
// flows: both sides send a newline-terminated semver banner, then each
// checks the peer's version against a constraint expression, the same
// constraint syntax and parsing the package manager's resolver uses to
// check dependency versions.
package handshake

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/kestrelnet/tcpio/internal/net/tcp"
)

// maxBannerLen bounds ReadBanner against a peer that never sends a newline.
const maxBannerLen = 64

// SendBanner writes version as a newline-terminated line.
func SendBanner(sock *tcp.Socket, version string) error {
	_, err := tcp.Send(sock, []byte(version+"\n"))
	return err
}

// ReadBanner reads byte-at-a-time until the newline terminator, since the
// core is byte-transparent and offers no line framing of its own.
func ReadBanner(sock *tcp.Socket) (string, error) {
	var sb strings.Builder
	buf := make([]byte, 1)
	for sb.Len() <= maxBannerLen {
		n, err := tcp.Recv(sock, buf)
		if err != nil {
			return "", err
		}
		if n == 0 {
			return "", fmt.Errorf("handshake: peer closed before sending a banner")
		}
		if buf[0] == '\n' {
			return sb.String(), nil
		}
		sb.WriteByte(buf[0])
	}
	return "", fmt.Errorf("handshake: banner exceeded %d bytes", maxBannerLen)
}

// Negotiate exchanges version banners with the peer over sock and checks
// that the peer's version satisfies constraint (e.g. ">=1.2.0, <2.0.0").
// It returns the peer's parsed version on success.
func Negotiate(sock *tcp.Socket, localVersion, constraint string) (*semver.Version, error) {
	if err := SendBanner(sock, localVersion); err != nil {
		return nil, fmt.Errorf("handshake: send banner: %w", err)
	}
	peerRaw, err := ReadBanner(sock)
	if err != nil {
		return nil, err
	}
	peerVer, err := semver.NewVersion(peerRaw)
	if err != nil {
		return nil, fmt.Errorf("handshake: peer sent invalid version %q: %w", peerRaw, err)
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return nil, fmt.Errorf("handshake: invalid constraint %q: %w", constraint, err)
	}
	if !c.Check(peerVer) {
		return nil, fmt.Errorf("handshake: peer version %s does not satisfy %s", peerVer, constraint)
	}
	return peerVer, nil
}
