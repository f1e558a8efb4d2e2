package handle

import "testing"

func TestInvalidHandle(t *testing.T) {
	var h Handle
	h.reset(-1)
	if h.Valid() {
		t.Fatal("zero-fd handle reset to -1 must be invalid")
	}
}

func TestZeroValueIsInvalid(t *testing.T) {
	var h Handle
	if h.Valid() {
		t.Fatal("unconstructed Handle must be invalid")
	}
	if err := h.Close(); err != nil {
		t.Fatalf("Close on a zero-value Handle must be a safe no-op: %v", err)
	}
}

func TestReleaseDetaches(t *testing.T) {
	h := New(3)
	if !h.Valid() {
		t.Fatal("expected valid handle")
	}
	fd := h.Release()
	if fd != 3 {
		t.Fatalf("expected released fd 3, got %d", fd)
	}
	if h.Valid() {
		t.Fatal("handle must be invalid after Release")
	}
	// Close after Release must be a no-op, not double-close fd 3.
	if err := h.Close(); err != nil {
		t.Fatalf("Close after Release must be a no-op: %v", err)
	}
}

func TestCloseIdempotent(t *testing.T) {
	h := New(-1) // invalid descriptor: Close must still be safe and idempotent
	if err := h.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("second close must be no-op: %v", err)
	}
}
