//go:build linux || darwin || freebsd || netbsd || openbsd
// +build linux darwin freebsd netbsd openbsd

package tcp_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/kestrelnet/tcpio/internal/net/endpoint"
	"github.com/kestrelnet/tcpio/internal/net/tcp"
	"github.com/kestrelnet/tcpio/internal/reactor"
)

// mustListener opens, binds to 127.0.0.1:0, and listens on a fresh Socket,
// returning it alongside the kernel-assigned Endpoint a client can dial.
// bind() is not part of the core's contract (see spec §4.1 Non-goals), so
// the test reaches for the raw syscall directly, the way an external
// address-resolution collaborator would.
func mustListener(t *testing.T, ctx reactor.Context) (*tcp.Socket, endpoint.Endpoint) {
	t.Helper()
	s, err := tcp.New(ctx, endpoint.V4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	sa := &unix.SockaddrInet4{Addr: [4]byte{127, 0, 0, 1}}
	if err := unix.Bind(s.Handle().FD(), sa); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if err := s.Listen(0); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	got, err := unix.Getsockname(s.Handle().FD())
	if err != nil {
		t.Fatalf("getsockname: %v", err)
	}
	return s, endpoint.FromSockaddr(got)
}

// TestLoopbackEcho exercises §8 end-to-end scenario 1: a client connects,
// sends a 5-byte payload, the server echoes it back, both sides observe
// zero errors and size_ == 5 on each send.
func TestLoopbackEcho(t *testing.T) {
	rctx, err := reactor.Start(context.Background())
	if err != nil {
		t.Fatalf("reactor.Start: %v", err)
	}
	defer rctx.Close()

	listener, addr := mustListener(t, rctx)
	payload := []byte{0x68, 0x65, 0x6c, 0x6c, 0x6f}

	serverDone := make(chan error, 1)
	go func() {
		client, err := tcp.Accept(listener)
		if err != nil {
			serverDone <- err
			return
		}
		defer client.Close()
		buf := make([]byte, len(payload))
		n, err := tcp.Recv(client, buf)
		if err != nil {
			serverDone <- err
			return
		}
		if n != len(payload) || string(buf[:n]) != string(payload) {
			serverDone <- fmt.Errorf("unexpected recv: %q", buf[:n])
			return
		}
		if sent, err := tcp.Send(client, buf[:n]); err != nil || sent != len(payload) {
			serverDone <- fmt.Errorf("echo send: n=%d err=%v", sent, err)
			return
		}
		serverDone <- nil
	}()

	dialer, err := tcp.New(rctx, endpoint.V4)
	if err != nil {
		t.Fatalf("New dialer: %v", err)
	}
	defer dialer.Close()

	if err := tcp.Connect(dialer, addr); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	n, err := tcp.Send(dialer, payload)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if n != len(payload) {
		t.Fatalf("expected to send %d bytes, sent %d", len(payload), n)
	}
	echoed := make([]byte, len(payload))
	n, err = tcp.Recv(dialer, echoed)
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if n != len(payload) || string(echoed[:n]) != string(payload) {
		t.Fatalf("echo mismatch: got %q", echoed[:n])
	}
	if err := <-serverDone; err != nil {
		t.Fatalf("server: %v", err)
	}
}

// TestOrderlyClose exercises §8 scenario 2: after the peer closes its write
// side, recv returns 0 bytes with a nil error.
func TestOrderlyClose(t *testing.T) {
	rctx, err := reactor.Start(context.Background())
	if err != nil {
		t.Fatalf("reactor.Start: %v", err)
	}
	defer rctx.Close()

	listener, addr := mustListener(t, rctx)

	accepted := make(chan *tcp.Socket, 1)
	go func() {
		c, err := tcp.Accept(listener)
		if err != nil {
			t.Errorf("Accept: %v", err)
			accepted <- nil
			return
		}
		accepted <- c
	}()

	dialer, err := tcp.New(rctx, endpoint.V4)
	if err != nil {
		t.Fatalf("New dialer: %v", err)
	}
	defer dialer.Close()
	if err := tcp.Connect(dialer, addr); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	server := <-accepted
	if server == nil {
		t.Fatal("accept failed")
	}
	_ = server.Close()

	buf := make([]byte, 16)
	n, err := tcp.Recv(dialer, buf)
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected orderly close (0 bytes), got %d", n)
	}
}

// TestConnectRefused exercises §8 scenario 6: connecting to a closed local
// port surfaces ECONNREFUSED, from connect(2) itself or via SO_ERROR.
func TestConnectRefused(t *testing.T) {
	rctx, err := reactor.Start(context.Background())
	if err != nil {
		t.Fatalf("reactor.Start: %v", err)
	}
	defer rctx.Close()

	dialer, err := tcp.New(rctx, endpoint.V4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer dialer.Close()

	dest := endpoint.FromTCPAddr(&net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 1})
	if err := tcp.Connect(dialer, dest); !errors.Is(err, unix.ECONNREFUSED) {
		t.Fatalf("expected connection refused, got %v", err)
	}
}

// TestPartialSendDrains exercises §8 scenario 4: a 1 MiB send over a
// tuned small-SNDBUF socket still drains fully, with size_ landing on the
// full length at completion.
func TestPartialSendDrains(t *testing.T) {
	rctx, err := reactor.Start(context.Background())
	if err != nil {
		t.Fatalf("reactor.Start: %v", err)
	}
	defer rctx.Close()

	listener, addr := mustListener(t, rctx)

	const total = 1 << 20
	serverErr := make(chan error, 1)
	go func() {
		c, err := tcp.Accept(listener)
		if err != nil {
			serverErr <- err
			return
		}
		defer c.Close()
		got := 0
		buf := make([]byte, 8192)
		for got < total {
			n, err := tcp.Recv(c, buf)
			if err != nil {
				serverErr <- err
				return
			}
			if n == 0 {
				break
			}
			got += n
		}
		if got != total {
			serverErr <- fmt.Errorf("server received %d, want %d", got, total)
			return
		}
		serverErr <- nil
	}()

	dialer, err := tcp.New(rctx, endpoint.V4)
	if err != nil {
		t.Fatalf("New dialer: %v", err)
	}
	defer dialer.Close()
	_ = unix.SetsockoptInt(dialer.Handle().FD(), unix.SOL_SOCKET, unix.SO_SNDBUF, 4096)

	if err := tcp.Connect(dialer, addr); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	payload := make([]byte, total)
	for i := range payload {
		payload[i] = byte(i)
	}
	n, err := tcp.Send(dialer, payload)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if n != total {
		t.Fatalf("expected size_ == %d, got %d", total, n)
	}
	if err := <-serverErr; err != nil {
		t.Fatalf("server: %v", err)
	}
}

// TestSendSomeSingleShot exercises §8 scenario 5: send_some returns after
// the first successful write, never draining the buffer on its own.
func TestSendSomeSingleShot(t *testing.T) {
	rctx, err := reactor.Start(context.Background())
	if err != nil {
		t.Fatalf("reactor.Start: %v", err)
	}
	defer rctx.Close()

	listener, addr := mustListener(t, rctx)

	const total = 1 << 20
	drained := make(chan int, 1)
	serverErr := make(chan error, 1)
	go func() {
		c, err := tcp.Accept(listener)
		if err != nil {
			serverErr <- err
			return
		}
		defer c.Close()
		got := 0
		buf := make([]byte, 8192)
		for got < total {
			n, err := tcp.Recv(c, buf)
			if err != nil {
				serverErr <- err
				return
			}
			if n == 0 {
				break
			}
			got += n
		}
		drained <- got
		serverErr <- nil
	}()

	dialer, err := tcp.New(rctx, endpoint.V4)
	if err != nil {
		t.Fatalf("New dialer: %v", err)
	}
	defer dialer.Close()
	_ = unix.SetsockoptInt(dialer.Handle().FD(), unix.SOL_SOCKET, unix.SO_SNDBUF, 4096)

	if err := tcp.Connect(dialer, addr); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	payload := make([]byte, total)
	n, err := tcp.SendSome(dialer, payload)
	if err != nil {
		t.Fatalf("SendSome: %v", err)
	}
	if n <= 0 || n >= total {
		t.Fatalf("expected 0 < n < %d from a single best-effort write, got %d", total, n)
	}

	rest := payload[n:]
	for len(rest) > 0 {
		m, err := tcp.Send(dialer, rest)
		if err != nil {
			t.Fatalf("drain Send: %v", err)
		}
		rest = rest[m:]
	}

	if err := <-serverErr; err != nil {
		t.Fatalf("server: %v", err)
	}
	if got := <-drained; got != total {
		t.Fatalf("server received %d, want %d", got, total)
	}
}
