package tcp

// Accept waits for and accepts one connection on a listening Socket,
// returning a freshly connected client Socket whose Endpoint is the peer's
// address. sock must already have had Listen called on it.
func Accept(sock *Socket) (*Socket, error) {
	op := newAcceptOp(sock)
	if err := Run(op); err != nil {
		return nil, err
	}
	return op.client, nil
}
