package bench

import (
	"math"
	"testing"
	"time"
)

func TestDerive(t *testing.T) {
	opsPerSec, mbPerSec, err := Derive(1000, 2*time.Second, 1048576)
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}

	if math.Abs(opsPerSec-500) > 1e-9 {
		t.Errorf("ops/s = %f, want 500", opsPerSec)
	}
	if math.Abs(mbPerSec-500) > 1e-9 {
		t.Errorf("MB/s = %f, want 500", mbPerSec)
	}
}

func TestDeriveSmallPayload(t *testing.T) {
	opsPerSec, mbPerSec, err := Derive(1000, 1*time.Second, 1024)
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}

	if math.Abs(opsPerSec-1000) > 1e-9 {
		t.Errorf("ops/s = %f, want 1000", opsPerSec)
	}

	// 1000 * 1024 bytes in one second is 1000/1024 MiB/s.
	want := 1000.0 * 1024.0 / (1 << 20)
	if math.Abs(mbPerSec-want) > 1e-9 {
		t.Errorf("MB/s = %f, want %f", mbPerSec, want)
	}
}

func TestDerivePositive(t *testing.T) {
	tests := []struct {
		operations int
		elapsed    time.Duration
		size       int64
	}{
		{1, time.Nanosecond, 1},
		{1000, time.Millisecond, 1024},
		{10, time.Hour, 1 << 20},
	}

	for _, tt := range tests {
		opsPerSec, mbPerSec, err := Derive(tt.operations, tt.elapsed, tt.size)
		if err != nil {
			t.Fatalf("Derive(%d, %v, %d) failed: %v",
				tt.operations, tt.elapsed, tt.size, err)
		}

		if opsPerSec <= 0 {
			t.Errorf("ops/s = %f, want > 0", opsPerSec)
		}
		if mbPerSec < 0 {
			t.Errorf("MB/s = %f, want >= 0", mbPerSec)
		}
	}
}

func TestDeriveZeroElapsed(t *testing.T) {
	if _, _, err := Derive(1000, 0, 1024); err == nil {
		t.Error("Derive succeeded with zero elapsed time")
	}

	if _, _, err := Derive(1000, -time.Second, 1024); err == nil {
		t.Error("Derive succeeded with negative elapsed time")
	}
}

func TestNewResult(t *testing.T) {
	spec := Spec{
		Container:  "bench-1024-4",
		BlobSize:   1024,
		Operations: 500,
		Clients:    4,
	}

	r, err := NewResult(OpWrite, "azurite-rs", spec, time.Second)
	if err != nil {
		t.Fatalf("NewResult failed: %v", err)
	}

	if r.Operation != OpWrite {
		t.Errorf("operation = %q, want write", r.Operation)
	}
	if r.Server != "azurite-rs" {
		t.Errorf("server = %q, want azurite-rs", r.Server)
	}
	if r.BlobSize != 1024 || r.Clients != 4 || r.Operations != 500 {
		t.Errorf("workload fields not carried over: %+v", r)
	}
	if math.Abs(r.OpsPerSec-500) > 1e-9 {
		t.Errorf("ops/s = %f, want 500", r.OpsPerSec)
	}
}

func TestNewResultZeroElapsed(t *testing.T) {
	spec := Spec{BlobSize: 1024, Operations: 500, Clients: 1}

	if _, err := NewResult(OpRead, "azurite", spec, 0); err == nil {
		t.Error("NewResult succeeded with zero elapsed time")
	}
}
