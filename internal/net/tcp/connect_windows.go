//go:build windows
// +build windows

package tcp

import (
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/kestrelnet/tcpio/internal/net/endpoint"
	"github.com/kestrelnet/tcpio/internal/reactor"
)

// connectOp is the completion-backend connect: ConnectEx through the
// process-wide lazy extension-function pointer (see reactor.ConnectEx),
// after a constructor-side-effect auto-bind to a family-appropriate
// wildcard address.
type connectOp struct {
	baseOp
	cq    cqOp
	token *reactor.Token
	dest  endpoint.Endpoint
}

func newConnectOp(sock *Socket, dest endpoint.Endpoint) *connectOp {
	op := &connectOp{baseOp: baseOp{sock: sock}, dest: dest}
	if err := sock.bindIfNeeded(endpoint.WildcardFor(dest.Family())); err != nil {
		op.fail(err)
	}
	return op
}

// AwaitReady never completes connect synchronously; it only short-circuits
// if the constructor's auto-bind already failed (first-write-wins error
// recording means every later phase sees that same error).
func (c *connectOp) AwaitReady() bool {
	return c.terminal()
}

func (c *connectOp) Suspend() bool {
	if c.terminal() {
		return false
	}
	fn, err := reactor.ConnectEx()
	if err != nil {
		c.fail(err)
		return false
	}
	cc, ok := c.completionContext()
	if !ok {
		return false
	}
	raw, err := c.dest.ToRawBytes()
	if err != nil {
		c.fail(err)
		return false
	}
	c.token = c.armToken(cc, &c.cq)
	if err := reactor.CallConnectEx(fn, windows.Handle(c.sock.fd()), unsafe.Pointer(&raw[0]), int32(len(raw)),
		nil, 0, &c.cq.transferred, c.token.Ptr()); err != nil {
		c.fail(err)
		return false
	}
	return true
}

func (c *connectOp) Resume() bool {
	if c.terminal() {
		return true
	}
	if c.cq.cqErr != nil {
		c.fail(c.cq.cqErr)
	}
	return true
}
