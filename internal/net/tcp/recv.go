package tcp

// Recv reads into buf, suspending on the backend until data, an orderly
// close, or an error is available. A return of (0, nil) means the peer
// closed its write half; callers may not assume further data will arrive.
func Recv(sock *Socket, buf []byte) (int, error) {
	op := newRecvOp(sock, buf)
	err := Run(op)
	return op.result(), err
}
