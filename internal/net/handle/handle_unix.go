//go:build linux || darwin || freebsd || netbsd || openbsd
// +build linux darwin freebsd netbsd openbsd

package handle

import (
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// Close releases the descriptor, idempotently. The first call closes the fd
// and reports the result of close(2); subsequent calls are no-ops returning
// nil, matching the "closing is idempotent" invariant.
func (h *Handle) Close() error {
	if !atomic.CompareAndSwapUint32(&h.closed, 0, 1) {
		return nil
	}
	raw := atomic.SwapInt64(&h.raw, 0)
	if raw <= 0 {
		return nil
	}
	return unix.Close(int(raw - 1))
}
