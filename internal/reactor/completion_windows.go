//go:build windows
// +build windows

package reactor

import (
	"context"
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

func newPlatformContext(ctx context.Context) (Context, error) {
	return newCompletionContext(ctx)
}

// sioGetExtensionFunctionPointer is SIO_GET_EXTENSION_FUNCTION_POINTER from
// mswsock.h. golang.org/x/sys/windows does not export it, so it is inlined
// here the same way the standard library's internal Windows poller does.
const sioGetExtensionFunctionPointer = 0xC8000006

var (
	wsaidConnectEx = windows.GUID{
		Data1: 0x25a207b9, Data2: 0xddf3, Data3: 0x4660,
		Data4: [8]byte{0x8e, 0xe9, 0x76, 0xe5, 0x8c, 0x74, 0x06, 0x3e},
	}

	mswsock      = windows.NewLazySystemDLL("mswsock.dll")
	procAcceptEx = mswsock.NewProc("AcceptEx")
)

// connectExFn is the process-wide lazy singleton for the ConnectEx function
// pointer: WSAIoctl returns a socket-specific pointer, but in practice it is
// stable for the process's lifetime once obtained from any overlapped TCP
// socket, so the core fetches it once and caches both the pointer and any
// initialization error (sticky, never re-probed).
type connectExFn struct {
	once sync.Once
	fn   uintptr
	err  error
}

var lazyConnectEx connectExFn

func (c *connectExFn) get() (uintptr, error) {
	c.once.Do(func() {
		s, err := windows.WSASocket(windows.AF_INET, windows.SOCK_STREAM, 0, nil, 0, windows.WSA_FLAG_OVERLAPPED)
		if err != nil {
			c.err = err
			return
		}
		defer windows.Closesocket(s)
		var bytes uint32
		err = windows.WSAIoctl(s, sioGetExtensionFunctionPointer,
			(*byte)(unsafe.Pointer(&wsaidConnectEx)), uint32(unsafe.Sizeof(wsaidConnectEx)),
			(*byte)(unsafe.Pointer(&c.fn)), uint32(unsafe.Sizeof(c.fn)),
			&bytes, nil, 0)
		if err != nil {
			c.err = err
		}
	})
	return c.fn, c.err
}

// ConnectEx returns the process-wide ConnectEx function pointer, looking it
// up on first use. A failed lookup is sticky: every subsequent call returns
// the same cached error without re-probing (see the core's §5 shared
// resource policy).
func ConnectEx() (uintptr, error) { return lazyConnectEx.get() }

// CallConnectEx invokes the ConnectEx extension function with the calling
// convention Winsock extension functions use.
func CallConnectEx(fn uintptr, s windows.Handle, name unsafe.Pointer, namelen int32, sendBuf unsafe.Pointer, sendLen uint32, sent *uint32, ov *windows.Overlapped) error {
	r1, _, e := syscall.Syscall9(fn, 7,
		uintptr(s), uintptr(name), uintptr(namelen),
		uintptr(sendBuf), uintptr(sendLen), uintptr(unsafe.Pointer(sent)),
		uintptr(unsafe.Pointer(ov)), 0, 0)
	if r1 != 0 {
		return nil
	}
	if errno, ok := e.(syscall.Errno); ok && errno == windows.ERROR_IO_PENDING {
		return nil
	}
	return e
}

// AcceptEx invokes mswsock's AcceptEx, a regular exported symbol (unlike
// ConnectEx, which must be fetched per-process via WSAIoctl).
func AcceptEx(listener, accepted windows.Handle, buf *byte, recvLen uint32, localLen, remoteLen uint32, bytesReceived *uint32, ov *windows.Overlapped) error {
	r1, _, e := procAcceptEx.Call(
		uintptr(listener), uintptr(accepted), uintptr(unsafe.Pointer(buf)),
		uintptr(recvLen), uintptr(localLen), uintptr(remoteLen),
		uintptr(unsafe.Pointer(bytesReceived)), uintptr(unsafe.Pointer(ov)))
	if r1 != 0 {
		return nil
	}
	if errno, ok := e.(syscall.Errno); ok && errno == windows.ERROR_IO_PENDING {
		return nil
	}
	return e
}

// Token is the completion-queue analogue of a Unix readiness wake: one
// Operation embeds one Token for the lifetime of a single overlapped call.
// GetQueuedCompletionStatus hands back the *windows.Overlapped pointer,
// which is the address of Token.Overlapped, so the loop recovers the owning
// Token with a plain pointer cast and never needs a side registry.
type Token struct {
	windows.Overlapped
	wake func(transferred uint32, err error)
}

// Ptr returns the pointer to pass to WSARecv/WSASend/AcceptEx/ConnectEx.
func (t *Token) Ptr() *windows.Overlapped { return &t.Overlapped }

// CompletionContext is the completion backend: one I/O completion port
// shared by every Socket registered against it, and one loop goroutine
// dispatching GetQueuedCompletionStatus results back to the Operation that
// posted the corresponding overlapped call.
type CompletionContext struct {
	port   windows.Handle
	cancel context.CancelFunc
}

func newCompletionContext(ctx context.Context) (*CompletionContext, error) {
	port, err := windows.CreateIoCompletionPort(windows.InvalidHandle, 0, 0, 0)
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	loopCtx, cancel := context.WithCancel(ctx)
	c := &CompletionContext{port: port, cancel: cancel}
	go c.loop(loopCtx)
	return c, nil
}

// Register associates fd with this Context's completion port. Every socket
// must be associated exactly once, before any overlapped call is issued
// against it.
func (c *CompletionContext) Register(fd int) error {
	_, err := windows.CreateIoCompletionPort(windows.Handle(fd), c.port, 0, 0)
	return err
}

// Deregister is a no-op on the completion backend: Windows has no API to
// disassociate a socket from an IOCP short of closing it, so pending
// completions simply drain (or are cancelled by the caller via CancelIoEx)
// as the socket closes.
func (c *CompletionContext) Deregister(fd int) {}

// NewToken allocates a fresh Token carrying wake, to be passed by address
// (via Ptr) to the next overlapped Winsock call this Operation issues.
func (c *CompletionContext) NewToken(wake func(transferred uint32, err error)) *Token {
	return &Token{wake: wake}
}

// NewAcceptSocket opens a fresh overlapped socket in address family af,
// for use as AcceptEx's pre-posted "accepted" handle (see the core's design
// notes on pre-posted accept client handles). On error during the caller's
// Suspend, the returned descriptor, if any, is the caller's to close; this
// is a plain socket-syscall delegate, not a pooled resource.
func (c *CompletionContext) NewAcceptSocket(af int32) (int, error) {
	s, err := windows.WSASocket(af, windows.SOCK_STREAM, windows.IPPROTO_TCP, nil, 0, windows.WSA_FLAG_OVERLAPPED)
	if err != nil {
		return -1, err
	}
	return int(s), nil
}

func (c *CompletionContext) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		var bytes uint32
		var key uintptr
		var ov *windows.Overlapped
		err := windows.GetQueuedCompletionStatus(c.port, &bytes, &key, &ov, 200)
		if ctx.Err() != nil {
			return
		}
		if ov == nil {
			continue // timeout tick or bare wake; nothing to dispatch
		}
		token := (*Token)(unsafe.Pointer(ov))
		var completionErr error
		if err != nil {
			completionErr = err
		}
		if token.wake != nil {
			token.wake(bytes, completionErr)
		}
	}
}

func (c *CompletionContext) Close() error {
	c.cancel()
	return windows.CloseHandle(c.port)
}
