//go:build linux
// +build linux

package reactor

import (
	"context"
	"sync"

	"golang.org/x/sys/unix"
)

func newPlatformContext(ctx context.Context) (Context, error) {
	return newEpollContext(ctx)
}

// epollContext is the readiness backend for Linux: a single epoll instance
// shared by every Socket registered against it, driven by one loop
// goroutine. Each armed wait is one-shot: EPOLLONESHOT, re-armed explicitly
// by the next QueueRecv/QueueSend call, matching the core's "arms a
// one-shot notification" contract.
type epollContext struct {
	epfd   int
	cancel context.CancelFunc

	mu   sync.Mutex
	regs map[int]*epollReg
}

type epollReg struct {
	fd         int
	interested uint32 // currently armed EPOLLIN/EPOLLOUT bits
	onRead     func(cancelled bool)
	onWrite    func(cancelled bool)
}

func newEpollContext(ctx context.Context) (Context, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	loopCtx, cancel := context.WithCancel(ctx)
	c := &epollContext{epfd: fd, cancel: cancel, regs: make(map[int]*epollReg)}
	go c.loop(loopCtx)
	return c, nil
}

func (c *epollContext) Register(fd int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.regs[fd]; ok {
		return nil
	}
	reg := &epollReg{fd: fd}
	c.regs[fd] = reg
	ev := unix.EpollEvent{Events: 0, Fd: int32(fd)}
	return unix.EpollCtl(c.epfd, unix.EPOLL_CTL_ADD, fd, &ev)
}

func (c *epollContext) Deregister(fd int) {
	c.mu.Lock()
	reg, ok := c.regs[fd]
	var onRead, onWrite func(bool)
	if ok {
		onRead, reg.onRead = reg.onRead, nil
		onWrite, reg.onWrite = reg.onWrite, nil
	}
	delete(c.regs, fd)
	c.mu.Unlock()
	_ = unix.EpollCtl(c.epfd, unix.EPOLL_CTL_DEL, fd, nil)
	if onRead != nil {
		onRead(true)
	}
	if onWrite != nil {
		onWrite(true)
	}
}

func (c *epollContext) QueueRecv(fd int, wake func(cancelled bool)) bool {
	return c.arm(fd, unix.EPOLLIN, wake, true)
}

func (c *epollContext) QueueSend(fd int, wake func(cancelled bool)) bool {
	return c.arm(fd, unix.EPOLLOUT, wake, false)
}

func (c *epollContext) arm(fd int, bit uint32, wake func(cancelled bool), read bool) bool {
	c.mu.Lock()
	reg, ok := c.regs[fd]
	if !ok {
		c.mu.Unlock()
		return false
	}
	if read {
		reg.onRead = wake
	} else {
		reg.onWrite = wake
	}
	reg.interested |= bit | unix.EPOLLONESHOT
	interested := reg.interested
	c.mu.Unlock()
	ev := unix.EpollEvent{Events: interested, Fd: int32(fd)}
	return unix.EpollCtl(c.epfd, unix.EPOLL_CTL_MOD, fd, &ev) == nil
}

func (c *epollContext) loop(ctx context.Context) {
	events := make([]unix.EpollEvent, 128)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		n, err := unix.EpollWait(c.epfd, events, 100)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return
		}
		for i := 0; i < n; i++ {
			fd := int(events[i].Fd)
			readable := events[i].Events&(unix.EPOLLIN|unix.EPOLLHUP|unix.EPOLLERR) != 0
			writable := events[i].Events&(unix.EPOLLOUT|unix.EPOLLHUP|unix.EPOLLERR) != 0

			c.mu.Lock()
			reg, ok := c.regs[fd]
			var onRead, onWrite func(bool)
			var rearm uint32
			if ok {
				if readable && reg.onRead != nil {
					onRead, reg.onRead = reg.onRead, nil
					reg.interested &^= unix.EPOLLIN
				}
				if writable && reg.onWrite != nil {
					onWrite, reg.onWrite = reg.onWrite, nil
					reg.interested &^= unix.EPOLLOUT
				}
				// EPOLLONESHOT disarms both directions on the fd, not just the
				// one that fired: if the other direction is still waiting on a
				// wake, re-arm it explicitly or it would never fire again.
				if (onRead != nil || onWrite != nil) && reg.interested&(unix.EPOLLIN|unix.EPOLLOUT) != 0 {
					rearm = reg.interested
				}
			}
			c.mu.Unlock()

			if rearm != 0 {
				ev := unix.EpollEvent{Events: rearm, Fd: int32(fd)}
				_ = unix.EpollCtl(c.epfd, unix.EPOLL_CTL_MOD, fd, &ev)
			}
			if onRead != nil {
				onRead(false)
			}
			if onWrite != nil {
				onWrite(false)
			}
		}
	}
}

func (c *epollContext) Close() error {
	c.cancel()
	return unix.Close(c.epfd)
}
