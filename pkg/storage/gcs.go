package storage

import (
	"context"
	"fmt"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

const defaultPageSize = 1000

// GCSBucket is a Google Cloud Storage bucket
type GCSBucket struct {
	client *gcs.Client
	bucket *gcs.BucketHandle
}

// NewGCSBucket creates a client using application default credentials
func NewGCSBucket(ctx context.Context, name string) (*GCSBucket, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSBucket{client: client, bucket: client.Bucket(name)}, nil
}

// List returns a single page of a delimiter listing
func (b *GCSBucket) List(ctx context.Context, opts ListOptions) (*ListPage, error) {
	pageSize := opts.MaxKeys
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	it := b.bucket.Objects(ctx, &gcs.Query{
		Prefix:    opts.Prefix,
		Delimiter: opts.Delimiter,
	})
	pager := iterator.NewPager(it, pageSize, opts.ContinuationToken)

	var attrs []*gcs.ObjectAttrs
	next, err := pager.NextPage(&attrs)
	if err != nil {
		return nil, fmt.Errorf("listing %q: %w", opts.Prefix, err)
	}

	page := &ListPage{NextContinuationToken: next}
	for _, attr := range attrs {
		// With a delimiter, synthetic entries carry only Prefix
		if attr.Name == "" && attr.Prefix != "" {
			page.CommonPrefixes = append(page.CommonPrefixes, attr.Prefix)
			continue
		}
		page.Objects = append(page.Objects, Object{Key: attr.Name, Size: attr.Size})
	}
	return page, nil
}

// Put uploads a whole object
func (b *GCSBucket) Put(ctx context.Context, key string, body []byte, contentType string) error {
	writer := b.bucket.Object(key).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := writer.Write(body); err != nil {
		writer.Close()
		return fmt.Errorf("Writer.Write: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("Writer.Close: %w", err)
	}
	return nil
}

// Close releases the underlying client
func (b *GCSBucket) Close() error {
	return b.client.Close()
}
