package server

import (
	"fmt"
	"net"
)

// FreePort asks the OS for an ephemeral loopback port by binding a
// listener on port 0, reading the assigned port back, and releasing
// the socket. There is a small window in which another process could
// claim the port before the server binds it; that is an accepted
// limitation of the technique.
func FreePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("bind ephemeral port: %w", err)
	}

	port := l.Addr().(*net.TCPAddr).Port

	if err := l.Close(); err != nil {
		return 0, fmt.Errorf("release ephemeral port: %w", err)
	}

	return port, nil
}
