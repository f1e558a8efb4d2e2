//go:build windows
// +build windows

package handle

import (
	"sync/atomic"

	"golang.org/x/sys/windows"
)

// Close releases the underlying SOCKET, idempotently. The first call
// invokes closesocket; subsequent calls are no-ops returning nil, matching
// the "closing is idempotent" invariant.
func (h *Handle) Close() error {
	if !atomic.CompareAndSwapUint32(&h.closed, 0, 1) {
		return nil
	}
	raw := atomic.SwapInt64(&h.raw, 0)
	if raw <= 0 {
		return nil
	}
	return windows.Closesocket(windows.Handle(raw - 1))
}
