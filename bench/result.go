package bench

import (
	"fmt"
	"time"
)

// Op is the workload operation kind a result measures.
type Op string

const (
	OpWrite Op = "write"
	OpRead  Op = "read"
)

// Result holds one measured benchmark cell. It is a value type,
// immutable after construction.
type Result struct {
	Operation  Op
	Server     string
	BlobSize   int64
	Clients    int
	Operations int
	Elapsed    time.Duration
	OpsPerSec  float64
	MBPerSec   float64
}

// Derive converts a raw batch measurement into throughput figures. A
// non-positive elapsed time means the harness mistimed the batch; it
// is reported as an error, never divided by.
func Derive(
	operations int, elapsed time.Duration, blobSize int64,
) (opsPerSec, mbPerSec float64, err error) {
	if elapsed <= 0 {
		return 0, 0, fmt.Errorf(
			"derive throughput: non-positive elapsed time %v", elapsed,
		)
	}

	secs := elapsed.Seconds()
	opsPerSec = float64(operations) / secs
	mbPerSec = float64(operations) * float64(blobSize) / secs / (1 << 20)

	return opsPerSec, mbPerSec, nil
}

// NewResult derives throughput for a completed batch and packages it
// with the workload parameters.
func NewResult(
	op Op, serverLabel string, spec Spec, elapsed time.Duration,
) (Result, error) {
	opsPerSec, mbPerSec, err := Derive(spec.Operations, elapsed, spec.BlobSize)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Operation:  op,
		Server:     serverLabel,
		BlobSize:   spec.BlobSize,
		Clients:    spec.Clients,
		Operations: spec.Operations,
		Elapsed:    elapsed,
		OpsPerSec:  opsPerSec,
		MBPerSec:   mbPerSec,
	}, nil
}
