// Package workload defines the benchmark matrix: the payload-size and
// concurrency sets, the operation count, and the naming scheme for
// target containers and blobs.
package workload

import (
	"fmt"
	"strconv"
	"strings"
)

// ReadBlobName is the single seed object that read batches target.
const ReadBlobName = "read-blob"

// Matrix is the full workload specification supplied by the driver.
// It is read-only during execution.
type Matrix struct {
	Sizes      []int64
	Clients    []int
	Operations int
}

// Cell is one (payload size, concurrency level) combination.
type Cell struct {
	Size    int64
	Clients int
}

// NewMatrix validates the size and concurrency sets and the operation
// count and builds a Matrix.
func NewMatrix(sizes []int64, clients []int, operations int) (Matrix, error) {
	if len(sizes) == 0 {
		return Matrix{}, fmt.Errorf("no payload sizes given")
	}

	if len(clients) == 0 {
		return Matrix{}, fmt.Errorf("no concurrency levels given")
	}

	if operations <= 0 {
		return Matrix{}, fmt.Errorf(
			"operation count must be positive, got %d", operations,
		)
	}

	for _, s := range sizes {
		if s <= 0 {
			return Matrix{}, fmt.Errorf("payload size must be positive, got %d", s)
		}
	}

	for _, c := range clients {
		if c <= 0 {
			return Matrix{}, fmt.Errorf(
				"concurrency level must be positive, got %d", c,
			)
		}
	}

	return Matrix{Sizes: sizes, Clients: clients, Operations: operations}, nil
}

// Cells enumerates the size x concurrency combinations in declared
// order: all concurrency levels for the first size, then the next.
func (m Matrix) Cells() []Cell {
	cells := make([]Cell, 0, len(m.Sizes)*len(m.Clients))

	for _, size := range m.Sizes {
		for _, clients := range m.Clients {
			cells = append(cells, Cell{Size: size, Clients: clients})
		}
	}

	return cells
}

// ParseSizes parses a comma-separated list of payload sizes in bytes.
func ParseSizes(s string) ([]int64, error) {
	parts := splitList(s)
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty size list")
	}

	sizes := make([]int64, 0, len(parts))

	for _, p := range parts {
		size, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse size %q: %w", p, err)
		}

		sizes = append(sizes, size)
	}

	return sizes, nil
}

// ParseClients parses a comma-separated list of concurrency levels.
func ParseClients(s string) ([]int, error) {
	parts := splitList(s)
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty concurrency list")
	}

	clients := make([]int, 0, len(parts))

	for _, p := range parts {
		c, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("parse concurrency %q: %w", p, err)
		}

		clients = append(clients, c)
	}

	return clients, nil
}

func splitList(s string) []string {
	var parts []string

	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}

	return parts
}

// ContainerName returns the deterministic per-cell container name.
// Write and read batches for the same cell share a container.
func ContainerName(size int64, clients int) string {
	return fmt.Sprintf("bench-%d-%d", size, clients)
}

// BlobName returns the indexed key written by write batches.
func BlobName(i int) string {
	return fmt.Sprintf("blob-%d", i)
}

// Payload returns a fixed-content buffer of the given size. A batch
// generates its payload once and reuses it for every operation so
// allocation cost stays out of the timed window.
func Payload(size int64) []byte {
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = 'x'
	}

	return buf
}
