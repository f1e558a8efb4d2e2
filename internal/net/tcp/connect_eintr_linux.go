//go:build linux
// +build linux

package tcp

// retryConnectOnEINTR is true on Linux: connect(2) there is restartable
// after EINTR, so the synchronous phase simply loops rather than falling
// through to a suspend the kernel hasn't actually requested.
const retryConnectOnEINTR = true
