//go:build darwin || freebsd || netbsd || openbsd
// +build darwin freebsd netbsd openbsd

package reactor

import (
	"context"
	"sync"

	"golang.org/x/sys/unix"
)

func newPlatformContext(ctx context.Context) (Context, error) {
	return newKqueueContext(ctx)
}

// kqueueContext is the readiness backend shared by macOS and the BSDs.
// Each registered descriptor gets a reusable EVFILT_READ/EVFILT_WRITE pair
// that is added disabled on register, enabled by QueueRecv/QueueSend, and
// disabled again immediately after firing, so a single QueueRecv/QueueSend
// call delivers exactly one wake.
type kqueueContext struct {
	kq     int
	cancel context.CancelFunc

	mu   sync.Mutex
	regs map[int]*kqReg
}

type kqReg struct {
	fd      int
	onRead  func(cancelled bool)
	onWrite func(cancelled bool)
}

func newKqueueContext(ctx context.Context) (Context, error) {
	fd, err := unix.Kqueue()
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	loopCtx, cancel := context.WithCancel(ctx)
	c := &kqueueContext{kq: fd, cancel: cancel, regs: make(map[int]*kqReg)}
	go c.loop(loopCtx)
	return c, nil
}

func (c *kqueueContext) Register(fd int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.regs[fd]; ok {
		return nil
	}
	c.regs[fd] = &kqReg{fd: fd}
	changes := []unix.Kevent_t{
		{Ident: uint64(fd), Filter: unix.EVFILT_READ, Flags: unix.EV_ADD | unix.EV_DISABLE},
		{Ident: uint64(fd), Filter: unix.EVFILT_WRITE, Flags: unix.EV_ADD | unix.EV_DISABLE},
	}
	_, err := unix.Kevent(c.kq, changes, nil, nil)
	return err
}

func (c *kqueueContext) Deregister(fd int) {
	c.mu.Lock()
	reg, ok := c.regs[fd]
	var onRead, onWrite func(bool)
	if ok {
		onRead, reg.onRead = reg.onRead, nil
		onWrite, reg.onWrite = reg.onWrite, nil
	}
	delete(c.regs, fd)
	c.mu.Unlock()
	changes := []unix.Kevent_t{
		{Ident: uint64(fd), Filter: unix.EVFILT_READ, Flags: unix.EV_DELETE},
		{Ident: uint64(fd), Filter: unix.EVFILT_WRITE, Flags: unix.EV_DELETE},
	}
	_, _ = unix.Kevent(c.kq, changes, nil, nil)
	if onRead != nil {
		onRead(true)
	}
	if onWrite != nil {
		onWrite(true)
	}
}

func (c *kqueueContext) QueueRecv(fd int, wake func(cancelled bool)) bool {
	c.mu.Lock()
	reg, ok := c.regs[fd]
	if !ok {
		c.mu.Unlock()
		return false
	}
	reg.onRead = wake
	c.mu.Unlock()
	changes := []unix.Kevent_t{{Ident: uint64(fd), Filter: unix.EVFILT_READ, Flags: unix.EV_ENABLE}}
	_, err := unix.Kevent(c.kq, changes, nil, nil)
	return err == nil
}

func (c *kqueueContext) QueueSend(fd int, wake func(cancelled bool)) bool {
	c.mu.Lock()
	reg, ok := c.regs[fd]
	if !ok {
		c.mu.Unlock()
		return false
	}
	reg.onWrite = wake
	c.mu.Unlock()
	changes := []unix.Kevent_t{{Ident: uint64(fd), Filter: unix.EVFILT_WRITE, Flags: unix.EV_ENABLE}}
	_, err := unix.Kevent(c.kq, changes, nil, nil)
	return err == nil
}

func (c *kqueueContext) loop(ctx context.Context) {
	events := make([]unix.Kevent_t, 128)
	timeout := unix.NsecToTimespec(int64(100 * 1e6))
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		n, err := unix.Kevent(c.kq, nil, events, &timeout)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return
		}
		for i := 0; i < n; i++ {
			ev := events[i]
			fd := int(ev.Ident)

			c.mu.Lock()
			reg, ok := c.regs[fd]
			var fired func(bool)
			var disable []unix.Kevent_t
			if ok {
				switch ev.Filter {
				case unix.EVFILT_READ:
					fired, reg.onRead = reg.onRead, nil
					disable = []unix.Kevent_t{{Ident: uint64(fd), Filter: unix.EVFILT_READ, Flags: unix.EV_DISABLE}}
				case unix.EVFILT_WRITE:
					fired, reg.onWrite = reg.onWrite, nil
					disable = []unix.Kevent_t{{Ident: uint64(fd), Filter: unix.EVFILT_WRITE, Flags: unix.EV_DISABLE}}
				}
			}
			c.mu.Unlock()

			if disable != nil {
				_, _ = unix.Kevent(c.kq, disable, nil, nil)
			}
			if fired != nil {
				fired(false)
			}
		}
	}
}

func (c *kqueueContext) Close() error {
	c.cancel()
	return unix.Close(c.kq)
}
