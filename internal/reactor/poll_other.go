//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !windows
// +build !linux,!darwin,!freebsd,!netbsd,!openbsd,!windows

package reactor

import (
	"context"
	"sync"

	"golang.org/x/sys/unix"
)

func newPlatformContext(ctx context.Context) (Context, error) {
	return newPollContext(ctx)
}

// pollContext is the readiness backend fallback for POSIX systems with
// neither epoll nor kqueue: a shared poll(2) loop re-armed each round from
// the current registration table. Less efficient than the OS-specific
// backends (O(n) per wake versus O(1)) but portable to any target with a
// standard poll(2).
type pollContext struct {
	cancel context.CancelFunc

	mu   sync.Mutex
	regs map[int]*pollReg
}

type pollReg struct {
	onRead  func(cancelled bool)
	onWrite func(cancelled bool)
}

func newPollContext(ctx context.Context) (Context, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	loopCtx, cancel := context.WithCancel(ctx)
	c := &pollContext{cancel: cancel, regs: make(map[int]*pollReg)}
	go c.loop(loopCtx)
	return c, nil
}

func (c *pollContext) Register(fd int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.regs[fd]; !ok {
		c.regs[fd] = &pollReg{}
	}
	return nil
}

func (c *pollContext) Deregister(fd int) {
	c.mu.Lock()
	reg, ok := c.regs[fd]
	var onRead, onWrite func(bool)
	if ok {
		onRead, reg.onRead = reg.onRead, nil
		onWrite, reg.onWrite = reg.onWrite, nil
	}
	delete(c.regs, fd)
	c.mu.Unlock()
	if onRead != nil {
		onRead(true)
	}
	if onWrite != nil {
		onWrite(true)
	}
}

func (c *pollContext) QueueRecv(fd int, wake func(cancelled bool)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	reg, ok := c.regs[fd]
	if !ok {
		return false
	}
	reg.onRead = wake
	return true
}

func (c *pollContext) QueueSend(fd int, wake func(cancelled bool)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	reg, ok := c.regs[fd]
	if !ok {
		return false
	}
	reg.onWrite = wake
	return true
}

func (c *pollContext) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		c.mu.Lock()
		fds := make([]unix.PollFd, 0, len(c.regs))
		fdToReg := make(map[int]*pollReg, len(c.regs))
		for fd, reg := range c.regs {
			var events int16
			if reg.onRead != nil {
				events |= unix.POLLIN
			}
			if reg.onWrite != nil {
				events |= unix.POLLOUT
			}
			if events == 0 {
				continue
			}
			fds = append(fds, unix.PollFd{Fd: int32(fd), Events: events})
			fdToReg[fd] = reg
		}
		c.mu.Unlock()

		if len(fds) == 0 {
			select {
			case <-ctx.Done():
				return
			default:
			}
			continue
		}

		n, err := unix.Poll(fds, 100)
		if err != nil || n <= 0 {
			continue
		}
		for _, pfd := range fds {
			if pfd.Revents == 0 {
				continue
			}
			c.mu.Lock()
			reg := fdToReg[int(pfd.Fd)]
			var onRead, onWrite func(bool)
			if reg != nil {
				if pfd.Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0 {
					onRead, reg.onRead = reg.onRead, nil
				}
				if pfd.Revents&(unix.POLLOUT|unix.POLLHUP|unix.POLLERR) != 0 {
					onWrite, reg.onWrite = reg.onWrite, nil
				}
			}
			c.mu.Unlock()
			if onRead != nil {
				onRead(false)
			}
			if onWrite != nil {
				onWrite(false)
			}
		}
	}
}

func (c *pollContext) Close() error {
	c.cancel()
	return nil
}
