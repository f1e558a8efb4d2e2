package tcp

// Send writes buf in full, suspending on the backend as many rounds as the
// kernel needs until every byte is transferred or an error occurs. On a
// nil error, the returned count always equals len(buf).
func Send(sock *Socket, buf []byte) (int, error) {
	cur := NewCursor(buf)
	op := newSendOp(sock, cur, false)
	err := Run(op)
	return cur.Transferred(), err
}

// SendSome performs a single best-effort write and returns as soon as the
// kernel accepts any amount, which may be less than len(buf). Callers that
// want to interleave other work between writes use this instead of Send,
// looping externally to drain the buffer.
func SendSome(sock *Socket, buf []byte) (int, error) {
	cur := NewCursor(buf)
	op := newSendOp(sock, cur, true)
	err := Run(op)
	return cur.Transferred(), err
}
