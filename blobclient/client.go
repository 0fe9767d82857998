// Package blobclient wraps the Azure Blob SDK with the small operation
// surface the harness needs: container setup, blob upload/download,
// listings, copies, and error classification.
package blobclient

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blockblob"
	"github.com/google/uuid"
)

const copyPollInterval = 100 * time.Millisecond

// Client issues blob operations against one server endpoint.
// Operation-level calls use the SDK's own timeout defaults.
type Client struct {
	svc *azblob.Client
}

// New builds a Client from a connection string in the fixed
// `DefaultEndpointsProtocol=...;AccountName=...;` format.
func New(connectionString string) (*Client, error) {
	svc, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	return &Client{svc: svc}, nil
}

// CreateContainer creates the named container, failing if it already
// exists. Metadata is optional.
func (c *Client) CreateContainer(
	ctx context.Context, name string, metadata map[string]string,
) error {
	var opts *azblob.CreateContainerOptions

	if len(metadata) > 0 {
		md := make(map[string]*string, len(metadata))
		for k, v := range metadata {
			md[k] = to.Ptr(v)
		}

		opts = &azblob.CreateContainerOptions{Metadata: md}
	}

	if _, err := c.svc.CreateContainer(ctx, name, opts); err != nil {
		return fmt.Errorf("create container %s: %w", name, err)
	}

	return nil
}

// EnsureContainer creates the named container if needed. Benchmark
// sweeps may race benignly on setup, so ContainerAlreadyExists is
// swallowed here rather than surfaced.
func (c *Client) EnsureContainer(ctx context.Context, name string) error {
	_, err := c.svc.CreateContainer(ctx, name, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return fmt.Errorf("ensure container %s: %w", name, err)
	}

	return nil
}

// DeleteContainer removes the named container and its contents.
func (c *Client) DeleteContainer(ctx context.Context, name string) error {
	if _, err := c.svc.DeleteContainer(ctx, name, nil); err != nil {
		return fmt.Errorf("delete container %s: %w", name, err)
	}

	return nil
}

// ContainerExists probes the container with a properties round trip.
func (c *Client) ContainerExists(ctx context.Context, name string) (bool, error) {
	cc := c.svc.ServiceClient().NewContainerClient(name)

	_, err := cc.GetProperties(ctx, nil)
	if err == nil {
		return true, nil
	}

	if IsNotFound(err) {
		return false, nil
	}

	return false, fmt.Errorf("probe container %s: %w", name, err)
}

// ListContainers returns the names of all containers on the account.
func (c *Client) ListContainers(ctx context.Context) ([]string, error) {
	var names []string

	pager := c.svc.NewListContainersPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list containers: %w", err)
		}

		for _, item := range page.ContainerItems {
			names = append(names, *item.Name)
		}
	}

	return names, nil
}

// Upload writes data to container/name, overwriting any existing blob.
func (c *Client) Upload(
	ctx context.Context, containerName, blobName string, data []byte,
) error {
	if _, err := c.svc.UploadBuffer(ctx, containerName, blobName, data, nil); err != nil {
		return fmt.Errorf("upload %s/%s: %w", containerName, blobName, err)
	}

	return nil
}

// UploadIfAbsent writes data only when the blob does not already
// exist, using an If-None-Match: * conditional header. Whether a
// server rejects the write or soft-accepts it when the blob exists
// depends on its conditional-write support; callers must tolerate
// both outcomes and can classify rejections with IsAlreadyExists.
func (c *Client) UploadIfAbsent(
	ctx context.Context, containerName, blobName string, data []byte,
) error {
	bb := c.svc.ServiceClient().
		NewContainerClient(containerName).
		NewBlockBlobClient(blobName)

	opts := &blockblob.UploadBufferOptions{
		AccessConditions: &blob.AccessConditions{
			ModifiedAccessConditions: &blob.ModifiedAccessConditions{
				IfNoneMatch: to.Ptr(azcore.ETagAny),
			},
		},
	}

	if _, err := bb.UploadBuffer(ctx, data, opts); err != nil {
		return fmt.Errorf(
			"upload %s/%s without overwrite: %w", containerName, blobName, err,
		)
	}

	return nil
}

// Download reads the full content of container/name.
func (c *Client) Download(
	ctx context.Context, containerName, blobName string,
) ([]byte, error) {
	resp, err := c.svc.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		return nil, fmt.Errorf("download %s/%s: %w", containerName, blobName, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf(
			"read %s/%s body: %w", containerName, blobName, err,
		)
	}

	return data, nil
}

// DownloadRange reads length bytes of container/name starting at
// offset.
func (c *Client) DownloadRange(
	ctx context.Context, containerName, blobName string, offset, length int64,
) ([]byte, error) {
	resp, err := c.svc.DownloadStream(ctx, containerName, blobName,
		&azblob.DownloadStreamOptions{
			Range: azblob.HTTPRange{Offset: offset, Count: length},
		})
	if err != nil {
		return nil, fmt.Errorf(
			"download range %s/%s: %w", containerName, blobName, err,
		)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf(
			"read %s/%s range body: %w", containerName, blobName, err,
		)
	}

	return data, nil
}

// DownloadDiscard streams the blob and throws the bytes away,
// returning how many were read. Read batches use this so the timed
// path measures transfer, not buffering or verification.
func (c *Client) DownloadDiscard(
	ctx context.Context, containerName, blobName string,
) (int64, error) {
	resp, err := c.svc.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		return 0, fmt.Errorf("download %s/%s: %w", containerName, blobName, err)
	}
	defer resp.Body.Close()

	n, err := io.Copy(io.Discard, resp.Body)
	if err != nil {
		return n, fmt.Errorf(
			"read %s/%s body: %w", containerName, blobName, err,
		)
	}

	return n, nil
}

// DeleteBlob removes container/name.
func (c *Client) DeleteBlob(
	ctx context.Context, containerName, blobName string,
) error {
	if _, err := c.svc.DeleteBlob(ctx, containerName, blobName, nil); err != nil {
		return fmt.Errorf("delete %s/%s: %w", containerName, blobName, err)
	}

	return nil
}

// BlobSize returns the content length the server reports for
// container/name.
func (c *Client) BlobSize(
	ctx context.Context, containerName, blobName string,
) (int64, error) {
	bc := c.svc.ServiceClient().
		NewContainerClient(containerName).
		NewBlobClient(blobName)

	props, err := bc.GetProperties(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf(
			"get properties %s/%s: %w", containerName, blobName, err,
		)
	}

	if props.ContentLength == nil {
		return 0, nil
	}

	return *props.ContentLength, nil
}

// ListBlobs returns the names of blobs in the container, optionally
// restricted to a key prefix.
func (c *Client) ListBlobs(
	ctx context.Context, containerName, prefix string,
) ([]string, error) {
	var opts *azblob.ListBlobsFlatOptions
	if prefix != "" {
		opts = &azblob.ListBlobsFlatOptions{Prefix: to.Ptr(prefix)}
	}

	var names []string

	pager := c.svc.NewListBlobsFlatPager(containerName, opts)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list blobs in %s: %w", containerName, err)
		}

		for _, item := range page.Segment.BlobItems {
			names = append(names, *item.Name)
		}
	}

	return names, nil
}

// CopyBlob server-side copies src to dst within the container and
// waits until the copy reaches a terminal status. In-memory servers
// complete copies synchronously, but the API contract allows a
// pending status.
func (c *Client) CopyBlob(
	ctx context.Context, containerName, src, dst string,
) error {
	cc := c.svc.ServiceClient().NewContainerClient(containerName)
	srcURL := cc.NewBlobClient(src).URL()
	dstClient := cc.NewBlobClient(dst)

	if _, err := dstClient.StartCopyFromURL(ctx, srcURL, nil); err != nil {
		return fmt.Errorf(
			"copy %s/%s to %s: %w", containerName, src, dst, err,
		)
	}

	for {
		props, err := dstClient.GetProperties(ctx, nil)
		if err != nil {
			return fmt.Errorf("poll copy of %s/%s: %w", containerName, dst, err)
		}

		if props.CopyStatus == nil || *props.CopyStatus != blob.CopyStatusTypePending {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf(
				"poll copy of %s/%s: %w", containerName, dst, ctx.Err(),
			)
		case <-time.After(copyPollInterval):
		}
	}
}

// UniqueContainerName returns prefix plus a short random suffix, for
// checks that need a container nothing else touches.
func UniqueContainerName(prefix string) string {
	id := uuid.New()

	return fmt.Sprintf("%s-%x", prefix, id[:4])
}

// IsNotFound reports whether err is a blob- or container-not-found
// response. Checks assert on this condition; it is not a harness
// failure by itself.
func IsNotFound(err error) bool {
	return bloberror.HasCode(err,
		bloberror.BlobNotFound, bloberror.ContainerNotFound)
}

// IsAlreadyExists reports whether err is a create or conditional-write
// rejection for a resource that already exists.
func IsAlreadyExists(err error) bool {
	return bloberror.HasCode(err,
		bloberror.BlobAlreadyExists,
		bloberror.ContainerAlreadyExists,
		bloberror.ConditionNotMet)
}
