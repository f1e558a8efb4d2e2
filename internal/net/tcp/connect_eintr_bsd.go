//go:build darwin || freebsd || netbsd || openbsd
// +build darwin freebsd netbsd openbsd

package tcp

// retryConnectOnEINTR is false on the BSD family: a non-blocking connect(2)
// interrupted by a signal must not be retried directly there (a second
// connect() call on the same socket returns EALREADY); the caller instead
// falls through to suspend and reads the real outcome from SO_ERROR once
// the socket becomes writable.
const retryConnectOnEINTR = false
