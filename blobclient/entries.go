package blobclient

import (
	"context"
	"fmt"
)

// Entry is one item of a hierarchical listing: either a concrete blob
// or a virtual-directory prefix. The two shapes are discriminated
// explicitly by type, never by attribute probing.
type Entry interface {
	entry()
}

// BlobEntry is a concrete blob in a hierarchical listing.
type BlobEntry struct {
	Name string
}

// PrefixEntry is a virtual-directory prefix in a hierarchical listing.
type PrefixEntry struct {
	Prefix string
}

func (BlobEntry) entry()   {}
func (PrefixEntry) entry() {}

// ListHierarchy lists the container with a delimiter, returning the
// blobs and prefixes at the top level as tagged entries.
func (c *Client) ListHierarchy(
	ctx context.Context, containerName, delimiter string,
) ([]Entry, error) {
	cc := c.svc.ServiceClient().NewContainerClient(containerName)

	var entries []Entry

	pager := cc.NewListBlobsHierarchyPager(delimiter, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf(
				"list %s with delimiter %q: %w", containerName, delimiter, err,
			)
		}

		for _, p := range page.Segment.BlobPrefixes {
			entries = append(entries, PrefixEntry{Prefix: *p.Name})
		}

		for _, b := range page.Segment.BlobItems {
			entries = append(entries, BlobEntry{Name: *b.Name})
		}
	}

	return entries, nil
}
