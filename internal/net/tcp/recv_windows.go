//go:build windows
// +build windows

package tcp

import (
	"golang.org/x/sys/windows"

	"github.com/kestrelnet/tcpio/internal/reactor"
)

// recvOp is the completion-backend recv: a single overlapped WSARecv,
// extracting the transferred byte count from the completion result.
type recvOp struct {
	baseOp
	cq    cqOp
	token *reactor.Token
	buf   []byte
	n     int
}

func newRecvOp(sock *Socket, buf []byte) *recvOp {
	return &recvOp{baseOp: baseOp{sock: sock}, buf: buf}
}

func (r *recvOp) result() int { return r.n }

// AwaitReady always returns false: the completion model posts the receive
// and waits for the completion port rather than resolving synchronously.
func (r *recvOp) AwaitReady() bool { return false }

func (r *recvOp) Suspend() bool {
	cc, ok := r.completionContext()
	if !ok {
		return false
	}
	r.token = r.armToken(cc, &r.cq)
	wsabuf := windows.WSABuf{Len: uint32(len(r.buf)), Buf: bufPtr(r.buf)}
	var flags uint32
	err := windows.WSARecv(windows.Handle(r.sock.fd()), &wsabuf, 1, &r.cq.transferred, &flags, r.token.Ptr(), nil)
	if err != nil && err != windows.ERROR_IO_PENDING {
		r.fail(err)
		return false
	}
	return true
}

func (r *recvOp) Resume() bool {
	if r.terminal() {
		return true
	}
	if r.cq.cqErr != nil {
		r.fail(r.cq.cqErr)
		return true
	}
	r.n = int(r.cq.transferred)
	return true
}
