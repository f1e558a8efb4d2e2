// Package handle provides an owning wrapper over a kernel socket descriptor.
// A Handle closes its descriptor exactly once, when Close is called; there
// is no finalizer, so the owning Socket is responsible for calling Close.
// This matches the core's deterministic, non-reference-counted ownership
// model rather than relying on garbage collection to release kernel
// descriptors. A zero-value Handle is the sentinel "invalid" value and
// never closes anything.
package handle

import "sync/atomic"

// Handle owns exactly one kernel socket descriptor.
type Handle struct {
	raw    int64 // native descriptor + 1; 0 means invalid, including the zero value
	closed uint32
}

// Invalid is the sentinel value of a Handle that owns no descriptor. It is
// equal to the zero value: an unconstructed Handle is already invalid.
var Invalid = Handle{}

// New wraps an already-open descriptor, taking ownership of it. A negative
// fd (as used by the tests to build a deliberately invalid Handle) is
// folded into the same Invalid sentinel as the zero value.
func New(fd int) Handle {
	return Handle{raw: int64(fd) + 1}
}

// Valid reports whether the Handle owns a live descriptor.
func (h *Handle) Valid() bool {
	return atomic.LoadInt64(&h.raw) > 0
}

// FD returns the native descriptor, or -1 if the Handle is invalid.
func (h *Handle) FD() int {
	raw := atomic.LoadInt64(&h.raw)
	if raw <= 0 {
		return -1
	}
	return int(raw - 1)
}

// Release detaches the descriptor from this Handle without closing it,
// returning the raw value to the caller. Used by accept to hand a freshly
// produced descriptor into a new Socket's Handle without an intervening
// close. After Release, h is invalid and Close is a no-op.
func (h *Handle) Release() int {
	raw := atomic.SwapInt64(&h.raw, 0)
	if raw <= 0 {
		return -1
	}
	return int(raw - 1)
}

// reset installs fd as the descriptor this Handle owns, invalidating
// whatever it owned before without closing it (the caller is responsible
// for not leaking a previous descriptor). New does not call it; the tests
// use it to set up a Handle in place.
func (h *Handle) reset(fd int) {
	atomic.StoreInt64(&h.raw, int64(fd)+1)
	atomic.StoreUint32(&h.closed, 0)
}
