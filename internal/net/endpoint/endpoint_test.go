package endpoint

import (
	"net"
	"testing"
)

func TestFromTCPAddrV4RoundTrip(t *testing.T) {
	addr := &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 4242}
	e := FromTCPAddr(addr)
	if !e.IsSet() {
		t.Fatal("expected endpoint to be set")
	}
	if e.Family() != V4 {
		t.Fatalf("expected V4, got %v", e.Family())
	}
	if e.Port() != 4242 {
		t.Fatalf("expected port 4242, got %d", e.Port())
	}
	if got := e.IP().String(); got != "127.0.0.1" {
		t.Fatalf("expected 127.0.0.1, got %s", got)
	}
}

func TestFromTCPAddrV6RoundTrip(t *testing.T) {
	addr := &net.TCPAddr{IP: net.ParseIP("::1"), Port: 9}
	e := FromTCPAddr(addr)
	if e.Family() != V6 {
		t.Fatalf("expected V6, got %v", e.Family())
	}
	if got := e.IP().String(); got != "::1" {
		t.Fatalf("expected ::1, got %s", got)
	}
}

func TestUnsetEndpoint(t *testing.T) {
	var e Endpoint
	if e.IsSet() {
		t.Fatal("zero value must be Unset")
	}
	if e.TCPAddr() != nil {
		t.Fatal("unset endpoint must have no TCPAddr")
	}
}

func TestWildcardFor(t *testing.T) {
	if WildcardFor(V4).Family() != V4 {
		t.Fatal("expected V4 wildcard")
	}
	if WildcardFor(V6).Family() != V6 {
		t.Fatal("expected V6 wildcard")
	}
	if WildcardFor(Unset).Family() != V4 {
		t.Fatal("expected default wildcard to be V4")
	}
}
