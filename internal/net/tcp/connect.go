package tcp

import "github.com/kestrelnet/tcpio/internal/net/endpoint"

// Connect opens a connection from sock to dest, blocking the calling
// goroutine until the connection completes or fails.
func Connect(sock *Socket, dest endpoint.Endpoint) error {
	op := newConnectOp(sock, dest)
	return Run(op)
}
