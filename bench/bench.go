// Package bench drives fixed-count read and write workloads against a
// running blob server and measures wall-clock time per batch.
package bench

import (
	"context"
	"fmt"
	"time"

	"github.com/user/blobbench/blobclient"
	"github.com/user/blobbench/workload"
)

// Spec describes one benchmark batch: the target container, the
// payload size, the number of operations, and the concurrency level.
type Spec struct {
	Container  string
	BlobSize   int64
	Operations int
	Clients    int
}

// RunWrite uploads Operations distinct blobs (blob-0..blob-N-1) of
// BlobSize bytes each and returns the elapsed time for the batch.
// Container setup and payload allocation happen before timing starts;
// timing stops when the last operation's completion is observed. Any
// operation failure aborts the batch and the partial timing is
// discarded.
func RunWrite(
	ctx context.Context, client *blobclient.Client, spec Spec,
) (time.Duration, error) {
	if err := client.EnsureContainer(ctx, spec.Container); err != nil {
		return 0, err
	}

	payload := workload.Payload(spec.BlobSize)

	start := time.Now()

	err := forEach(ctx, spec.Operations, spec.Clients,
		func(ctx context.Context, i int) error {
			return client.Upload(ctx, spec.Container, workload.BlobName(i), payload)
		})
	if err != nil {
		return 0, fmt.Errorf("write batch %s: %w", spec.Container, err)
	}

	return time.Since(start), nil
}

// RunRead seeds a single blob of BlobSize bytes, then performs
// Operations full reads of that same blob, discarding the content.
// The seed upload happens outside the timed window.
func RunRead(
	ctx context.Context, client *blobclient.Client, spec Spec,
) (time.Duration, error) {
	if err := client.EnsureContainer(ctx, spec.Container); err != nil {
		return 0, err
	}

	seed := workload.Payload(spec.BlobSize)
	if err := client.Upload(ctx, spec.Container, workload.ReadBlobName, seed); err != nil {
		return 0, fmt.Errorf("seed read blob in %s: %w", spec.Container, err)
	}

	start := time.Now()

	err := forEach(ctx, spec.Operations, spec.Clients,
		func(ctx context.Context, _ int) error {
			_, err := client.DownloadDiscard(ctx, spec.Container, workload.ReadBlobName)

			return err
		})
	if err != nil {
		return 0, fmt.Errorf("read batch %s: %w", spec.Container, err)
	}

	return time.Since(start), nil
}
