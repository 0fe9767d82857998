package server

import (
	"net"
	"strconv"
	"testing"
	"time"
)

func TestWaitReadyListening(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	defer l.Close()

	port := l.Addr().(*net.TCPAddr).Port

	if !WaitReady("127.0.0.1", port, 5*time.Second) {
		t.Error("WaitReady = false for a listening port")
	}
}

func TestWaitReadyTimeout(t *testing.T) {
	port, err := FreePort()
	if err != nil {
		t.Fatalf("FreePort failed: %v", err)
	}

	start := time.Now()

	if WaitReady("127.0.0.1", port, 500*time.Millisecond) {
		t.Fatal("WaitReady = true with nothing listening")
	}

	if elapsed := time.Since(start); elapsed < 400*time.Millisecond {
		t.Errorf("returned after %v, before the timeout elapsed", elapsed)
	}
}

func TestWaitReadyLateListener(t *testing.T) {
	port, err := FreePort()
	if err != nil {
		t.Fatalf("FreePort failed: %v", err)
	}

	// Refusals before the listener appears must be treated as "not yet
	// ready", not as errors.
	go func() {
		time.Sleep(300 * time.Millisecond)

		l, err := net.Listen(
			"tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)),
		)
		if err != nil {
			return
		}

		time.Sleep(2 * time.Second)
		l.Close()
	}()

	if !WaitReady("127.0.0.1", port, 5*time.Second) {
		t.Error("WaitReady = false for a listener that came up late")
	}
}
