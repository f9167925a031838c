package services

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"photo-portfolio/pkg/config"
	"photo-portfolio/pkg/storage"
)

// fakeBucket is an in-memory bucket with S3 style delimiter listings
type fakeBucket struct {
	mu       sync.Mutex
	keys     []string
	pageSize int
	listErr  error
	putErr   error
	puts     map[string][]byte
	lists    int
}

func newFakeBucket(keys ...string) *fakeBucket {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	return &fakeBucket{keys: sorted, puts: map[string][]byte{}}
}

func (b *fakeBucket) List(ctx context.Context, opts storage.ListOptions) (*storage.ListPage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lists++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b.listErr != nil {
		return nil, b.listErr
	}

	type entry struct {
		key    string
		folder bool
	}
	var entries []entry
	seen := map[string]bool{}
	for _, key := range b.keys {
		if !strings.HasPrefix(key, opts.Prefix) {
			continue
		}
		rest := key[len(opts.Prefix):]
		if opts.Delimiter != "" {
			if i := strings.Index(rest, opts.Delimiter); i >= 0 {
				common := opts.Prefix + rest[:i+len(opts.Delimiter)]
				if !seen[common] {
					seen[common] = true
					entries = append(entries, entry{key: common, folder: true})
				}
				continue
			}
		}
		entries = append(entries, entry{key: key})
	}

	start := 0
	if opts.ContinuationToken != "" {
		start, _ = strconv.Atoi(opts.ContinuationToken)
	}
	size := b.pageSize
	if size <= 0 {
		size = len(entries) + 1
	}
	end := start + size
	if end > len(entries) {
		end = len(entries)
	}

	page := &storage.ListPage{}
	for _, e := range entries[start:end] {
		if e.folder {
			page.CommonPrefixes = append(page.CommonPrefixes, e.key)
		} else {
			page.Objects = append(page.Objects, storage.Object{Key: e.key, Size: 1})
		}
	}
	if end < len(entries) {
		page.NextContinuationToken = strconv.Itoa(end)
	}
	return page, nil
}

func (b *fakeBucket) Put(_ context.Context, key string, body []byte, _ string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.putErr != nil {
		return b.putErr
	}
	b.puts[key] = body
	return nil
}

func (b *fakeBucket) Close() error {
	return nil
}

func (b *fakeBucket) listCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lists
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		Provider:           config.ProviderR2,
		BucketName:         "photos",
		PublicBaseURL:      baseURL,
		ManifestKey:        "manifest.json",
		ManifestCategories: []string{"portraits", "events"},
		RelayURL:           baseURL + "/submit",
		RelayAccessKey:     "relay-key",
		SiteName:           "Test Studio",
	}
}
