//go:build windows
// +build windows

package tcp

import (
	"errors"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/kestrelnet/tcpio/internal/net/endpoint"
	"github.com/kestrelnet/tcpio/internal/reactor"
)

// sockaddrPadded mirrors sizeof(sockaddr_storage)+16, the per-address
// padding AcceptEx's completion buffer convention requires for each of the
// local and remote addresses it packs back to back.
const sockaddrPadded = 128 + 16

const soUpdateAcceptContext = 0x700B

// errNoClient is the normalized outcome of an ECONNRESET-equivalent during
// accept: no client was produced, and the caller may retry with a fresh
// Accept call.
var errNoClient = errors.New("tcp: accept reset by peer, no client produced")

// acceptOp is the completion-backend accept: AcceptEx into a per-operation
// buffer, using a client handle vended by the Context ahead of Suspend (see
// the core's design notes on pre-posted accept client handles).
type acceptOp struct {
	baseOp
	cq       cqOp
	token    *reactor.Token
	buf      []byte
	clientFD int
	client   *Socket
}

func newAcceptOp(sock *Socket) *acceptOp {
	return &acceptOp{baseOp: baseOp{sock: sock}}
}

// AwaitReady always returns false: the completion model never has a
// synchronous accept result.
func (a *acceptOp) AwaitReady() bool { return false }

func (a *acceptOp) Suspend() bool {
	cc, ok := a.completionContext()
	if !ok {
		return false
	}
	af := int32(windows.AF_INET)
	if a.sock.family == endpoint.V6 {
		af = windows.AF_INET6
	}
	fd, err := cc.NewAcceptSocket(af)
	if err != nil {
		a.fail(err)
		return false
	}
	a.clientFD = fd
	a.buf = make([]byte, 2*sockaddrPadded)
	for {
		a.token = a.armToken(cc, &a.cq)
		err := reactor.AcceptEx(windows.Handle(a.sock.fd()), windows.Handle(a.clientFD),
			&a.buf[0], 0, sockaddrPadded, sockaddrPadded, &a.cq.transferred, a.token.Ptr())
		if err == nil {
			// Relies on the completion port to deliver the result whether
			// the call pended or completed synchronously: this core never
			// sets FILE_SKIP_COMPLETION_PORT_ON_SUCCESS, so a synchronous
			// success still queues a completion packet for this Token.
			return true
		}
		if errors.Is(err, windows.WSAECONNRESET) {
			continue // transient reset while establishing; retry in place
		}
		windows.Closesocket(windows.Handle(a.clientFD))
		a.fail(err)
		return false
	}
}

func (a *acceptOp) Resume() bool {
	if a.terminal() {
		return true
	}
	if a.cq.cqErr != nil {
		windows.Closesocket(windows.Handle(a.clientFD))
		if errors.Is(a.cq.cqErr, windows.WSAECONNRESET) {
			a.fail(errNoClient)
		} else {
			a.fail(a.cq.cqErr)
		}
		return true
	}

	// SO_UPDATE_ACCEPT_CONTEXT is required before the accepted socket can
	// be used with getsockname/getpeername or most other setsockopt calls.
	ls := windows.Handle(a.sock.fd())
	_ = windows.Setsockopt(windows.Handle(a.clientFD), windows.SOL_SOCKET, soUpdateAcceptContext,
		(*byte)(unsafe.Pointer(&ls)), int32(unsafe.Sizeof(ls)))

	client, err := newFromHandle(a.sock.ctx, a.sock.family, a.sock.protocol, a.clientFD)
	if err != nil {
		windows.Closesocket(windows.Handle(a.clientFD))
		a.fail(err)
		return true
	}
	if peer, _, perr := endpoint.FromRawBytes(a.buf[len(a.buf)/2:]); perr == nil {
		*client.Endpoint() = peer
	}
	a.client = client
	return true
}
