//go:build linux || darwin || freebsd || netbsd || openbsd
// +build linux darwin freebsd netbsd openbsd

package tcp

import (
	"errors"

	"github.com/kestrelnet/tcpio/internal/reactor"
)

// errNotReadiness is the definitive (non-retriable) error recorded when a
// Socket's Context does not implement reactor.Readiness. It should never
// occur in practice: every Unix build wires a readiness Context.
var errNotReadiness = errors.New("tcp: context does not implement reactor.Readiness")

// errOperationCancelled is the synthetic error (§5 "cancellation is
// delivered ... as a synthetic completion") recorded when a still-armed
// wake fires because its socket was deregistered (Close) before the
// readiness event arrived, rather than because the descriptor became ready.
var errOperationCancelled = errors.New("tcp: operation cancelled")

// suspendRead arms a one-shot readable wake through the readiness backend
// and reports whether arming succeeded (Suspend's return value).
func (b *baseOp) suspendRead() bool {
	ch := b.arm()
	rc, ok := b.sock.ctx.(reactor.Readiness)
	if !ok {
		b.fail(errNotReadiness)
		return false
	}
	if !rc.QueueRecv(b.sock.fd(), func(cancelled bool) {
		if cancelled {
			b.fail(errOperationCancelled)
		}
		close(ch)
	}) {
		b.fail(errors.New("tcp: queue_recv failed"))
		return false
	}
	return true
}

// suspendWrite arms a one-shot writable wake through the readiness backend.
func (b *baseOp) suspendWrite() bool {
	ch := b.arm()
	rc, ok := b.sock.ctx.(reactor.Readiness)
	if !ok {
		b.fail(errNotReadiness)
		return false
	}
	if !rc.QueueSend(b.sock.fd(), func(cancelled bool) {
		if cancelled {
			b.fail(errOperationCancelled)
		}
		close(ch)
	}) {
		b.fail(errors.New("tcp: queue_send failed"))
		return false
	}
	return true
}
