package tcp

// Op is the shared three-phase skeleton every asynchronous TCP operation
// (Accept, Connect, Recv, Send, SendSome) implements. It re-expresses the
// core's await_ready/suspend/resume coroutine contract as a plain state
// machine driven by Run, rather than relying on any language-level
// coroutine lowering: each phase is an ordinary method call, and
// "suspending" means the calling goroutine blocks on Waiter() until the
// backend wakes it.
//
// All five operations are single-shot: constructing one, passing it to Run,
// and discarding it is the only supported usage. Re-running a completed Op
// is undefined.
type Op interface {
	// AwaitReady attempts synchronous, non-blocking progress. true means a
	// final result (success or terminal error) is available and no
	// suspension is needed.
	AwaitReady() bool

	// Suspend is called only when AwaitReady returned false. It posts the
	// operation to the backend. true means the backend now owns the
	// operation and Run must wait for a wake before calling Resume; false
	// means Resume should be called immediately without waiting (either
	// because the operation already finished synchronously, or because a
	// terminal error was recorded and there is nothing to wait for).
	Suspend() bool

	// Resume is called after a wake from Suspend. true means the operation
	// is terminally done; false means another Suspend/wait round is
	// required (used by Send to loop until its buffer drains).
	Resume() bool

	// Err returns the operation's error slot. Zero/nil means success; it is
	// read only after Run returns.
	Err() error

	// Waiter returns the channel Run blocks on after a true-returning
	// Suspend. It must be safe to call again after each Suspend call,
	// returning the channel for that round.
	Waiter() <-chan struct{}
}

// Run drives op through await_ready, then alternating suspend/wait/resume
// rounds, until a terminal result is available.
func Run(op Op) error {
	if op.AwaitReady() {
		return op.Err()
	}
	for {
		if op.Suspend() {
			<-op.Waiter()
		}
		if op.Resume() {
			return op.Err()
		}
	}
}

// baseOp carries the fields common to every operation: the error slot and
// the per-round wake channel. Concrete operations embed it and implement
// the remaining Op methods themselves.
type baseOp struct {
	sock *Socket
	err  error
	ch   chan struct{}
}

// Err returns the error slot. Error recording is first-write-wins: once
// non-zero it never reverts, so later phases that would otherwise overwrite
// it with a secondary failure (e.g. a cancellation race) are ignored.
func (b *baseOp) Err() error { return b.err }

// fail records err in the error slot if it is not already set.
func (b *baseOp) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// terminal reports whether a terminal error is already recorded. Concrete
// Resume implementations check this after a Suspend that returned false
// without posting any wait, so a failed arm/post is not mistaken for a
// synchronous completion worth retrying.
func (b *baseOp) terminal() bool { return b.err != nil }

// arm creates a fresh one-shot wake channel for the next suspend round and
// returns it so the backend's wake callback can close it.
func (b *baseOp) arm() chan struct{} {
	b.ch = make(chan struct{})
	return b.ch
}

// Waiter returns the channel created by the most recent arm call.
func (b *baseOp) Waiter() <-chan struct{} { return b.ch }
