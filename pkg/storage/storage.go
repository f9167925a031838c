// Package storage wraps the object store holding the portfolio images.
//
// Listings are delimiter based: a page carries the objects directly under the
// requested prefix plus the immediate child prefixes ("folders").
package storage

import (
	"context"
	"fmt"

	"google.golang.org/api/iterator"

	"photo-portfolio/pkg/config"
)

// Object is a single key returned by a listing
type Object struct {
	Key  string
	Size int64
}

// ListOptions configures a single listing request
type ListOptions struct {
	Prefix            string
	Delimiter         string
	ContinuationToken string
	MaxKeys           int
}

// ListPage is one page of a listing
type ListPage struct {
	Objects        []Object
	CommonPrefixes []string
	// NextContinuationToken is empty on the last page.
	NextContinuationToken string
}

// Bucket is the subset of object store operations the site needs
type Bucket interface {
	List(ctx context.Context, opts ListOptions) (*ListPage, error)
	Put(ctx context.Context, key string, body []byte, contentType string) error
	Close() error
}

// PageIterator walks a listing page by page, following continuation tokens
type PageIterator struct {
	ctx    context.Context
	bucket Bucket
	opts   ListOptions
	done   bool
}

// Pages returns an iterator over every page of the listing described by opts.
// Next returns iterator.Done once the last page has been handed out.
func Pages(ctx context.Context, bucket Bucket, opts ListOptions) *PageIterator {
	return &PageIterator{ctx: ctx, bucket: bucket, opts: opts}
}

// Next fetches the next page
func (it *PageIterator) Next() (*ListPage, error) {
	if it.done {
		return nil, iterator.Done
	}

	page, err := it.bucket.List(it.ctx, it.opts)
	if err != nil {
		it.done = true
		return nil, err
	}

	if page.NextContinuationToken == "" {
		it.done = true
	} else {
		it.opts.ContinuationToken = page.NextContinuationToken
	}
	return page, nil
}

// Open connects to the bucket named in the configuration
func Open(ctx context.Context, cfg *config.Config) (Bucket, error) {
	switch cfg.Provider {
	case config.ProviderR2:
		return NewS3Bucket(ctx, cfg)
	case config.ProviderGCS:
		return NewGCSBucket(ctx, cfg.BucketName)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownProvider, cfg.Provider)
	}
}
