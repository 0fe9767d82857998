package server

import (
	"net"
	"strconv"
	"time"
)

const (
	probeDialTimeout = 1 * time.Second
	probeInterval    = 100 * time.Millisecond
)

// WaitReady polls host:port with short-timeout TCP connects until one
// succeeds or the overall timeout elapses. Connection refusal and dial
// timeout both mean "not yet ready"; only exhausting the timeout is an
// error condition, reported as false.
func WaitReady(host string, port int, timeout time.Duration) bool {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, probeDialTimeout)
		if err == nil {
			conn.Close()

			return true
		}

		time.Sleep(probeInterval)
	}

	return false
}
