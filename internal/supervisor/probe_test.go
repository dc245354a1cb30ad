package supervisor

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"
)

func TestWaitUntilReady_Accepting(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	err = waitUntilReady(context.Background(), "127.0.0.1", port, 10*time.Millisecond, 2*time.Second)
	if err != nil {
		t.Fatalf("expected ready, got %v", err)
	}
}

func TestWaitUntilReady_Timeout(t *testing.T) {
	// Grab a free port and close it again so nothing accepts there.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	err = waitUntilReady(context.Background(), "127.0.0.1", port, 10*time.Millisecond, 60*time.Millisecond)
	if !errors.Is(err, ErrReadinessTimeout) {
		t.Fatalf("expected readiness timeout, got %v", err)
	}
}

func TestWaitUntilReady_ContextCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	err = waitUntilReady(ctx, "127.0.0.1", port, 10*time.Millisecond, 10*time.Second)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}
