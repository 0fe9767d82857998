package server

import (
	"fmt"
	"net"
	"testing"
)

func TestFreePort(t *testing.T) {
	port, err := FreePort()
	if err != nil {
		t.Fatalf("FreePort failed: %v", err)
	}

	if port <= 0 || port > 65535 {
		t.Fatalf("port = %d, out of range", port)
	}

	// The returned port should be immediately bindable.
	l, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		t.Fatalf("allocated port %d not bindable: %v", port, err)
	}
	l.Close()
}

func TestFreePortDistinct(t *testing.T) {
	a, err := FreePort()
	if err != nil {
		t.Fatalf("FreePort failed: %v", err)
	}

	b, err := FreePort()
	if err != nil {
		t.Fatalf("FreePort failed: %v", err)
	}

	// Not guaranteed by the OS, but consecutive allocations on an idle
	// loopback interface do not normally collide.
	if a == b {
		t.Logf("consecutive allocations returned the same port %d", a)
	}
}
