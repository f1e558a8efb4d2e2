// Command tcpio-echo is a minimal loopback echo server demonstrating the
// full stack: a listening Socket, the handshake's version negotiation, and
// the server package's accept loop with graceful shutdown on SIGINT/SIGTERM.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kestrelnet/tcpio/internal/handshake"
	"github.com/kestrelnet/tcpio/internal/net/endpoint"
	"github.com/kestrelnet/tcpio/internal/net/tcp"
	"github.com/kestrelnet/tcpio/internal/netutil"
	"github.com/kestrelnet/tcpio/internal/reactor"
	"github.com/kestrelnet/tcpio/internal/server"
	"github.com/kestrelnet/tcpio/internal/watchconfig"
)

const selfVersion = "1.0.0"

func main() {
	addr := flag.String("addr", "127.0.0.1:9443", "listen address")
	configPath := flag.String("config", "", "path to a hot-reloadable JSON config (backlog, banner_version, min_peer_version)")
	flag.Parse()

	if err := run(*addr, *configPath); err != nil {
		fmt.Fprintln(os.Stderr, "tcpio-echo:", err)
		os.Exit(1)
	}
}

func run(addrStr, configPath string) error {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addrStr)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", addrStr, err)
	}
	ep := endpoint.FromTCPAddr(tcpAddr)

	cfg := watchconfig.Config{
		Backlog:        128,
		BannerVersion:  selfVersion,
		MinPeerVersion: ">=1.0.0",
	}
	var watcher *watchconfig.Watcher
	if configPath != "" {
		watcher, err = watchconfig.New(configPath)
		if err != nil {
			return err
		}
		defer watcher.Close()
		cfg = watcher.Current()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		cancel()
	}()

	rctx, err := reactor.Start(ctx)
	if err != nil {
		return fmt.Errorf("start reactor: %w", err)
	}
	defer rctx.Close()

	listener, err := tcp.New(rctx, ep.Family())
	if err != nil {
		return fmt.Errorf("open listener: %w", err)
	}
	if err := netutil.Bind(listener, ep); err != nil {
		return fmt.Errorf("bind %s: %w", addrStr, err)
	}
	if err := listener.Listen(cfg.Backlog); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	fmt.Printf("tcpio-echo listening on %s (backlog=%d)\n", addrStr, cfg.Backlog)

	bufPool := reactor.DefaultBytePool()
	srv := server.New(listener)
	srv.Start(ctx, func(connCtx context.Context, conn *tcp.Socket) {
		_ = connCtx
		localVer, minVer := cfg.BannerVersion, cfg.MinPeerVersion
		if watcher != nil {
			cur := watcher.Current()
			localVer, minVer = cur.BannerVersion, cur.MinPeerVersion
		}
		if _, err := handshake.Negotiate(conn, localVer, minVer); err != nil {
			fmt.Fprintf(os.Stderr, "handshake with %s failed: %v\n", conn.Endpoint(), err)
			return
		}
		echo(conn, bufPool)
	})

	<-ctx.Done()
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	if err := srv.Stop(stopCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	m := srv.Metrics()
	fmt.Printf("shutdown complete: accept_errors=%d backoff_max_hits=%d\n", m.AcceptErrors, m.BackoffMaxHits)
	return nil
}

func echo(conn *tcp.Socket, pool *reactor.BytePool) {
	buf := pool.Get(4096)
	buf = buf[:cap(buf)]
	defer pool.Put(buf)
	for {
		n, err := tcp.Recv(conn, buf)
		if err != nil || n == 0 {
			return
		}
		if _, err := tcp.Send(conn, buf[:n]); err != nil {
			return
		}
	}
}
