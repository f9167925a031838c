package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	_ "golang.org/x/image/webp"
	"google.golang.org/api/iterator"

	"photo-portfolio/pkg/config"
	"photo-portfolio/pkg/models"
	"photo-portfolio/pkg/storage"
)

const (
	// probeBytes is how much of each image is fetched to read its header
	probeBytes = 64 * 1024

	// DefaultProbeTimeout bounds a single byte-range fetch
	DefaultProbeTimeout = 10 * time.Second
)

// ProgressCallback receives one call per image as it is probed
type ProgressCallback func(category, filename string, width, height int)

// ManifestGenerator walks the bucket and publishes manifest.json
type ManifestGenerator struct {
	bucket      storage.Bucket
	client      *http.Client
	baseURL     string
	manifestKey string
	categories  []string
	now         func() time.Time

	// ProbeTimeout bounds each header fetch; a timed out probe falls back
	// to the default dimensions.
	ProbeTimeout time.Duration
	Progress     ProgressCallback
}

// NewManifestGenerator creates a generator for the categories in cfg
func NewManifestGenerator(cfg *config.Config, bucket storage.Bucket) *ManifestGenerator {
	return &ManifestGenerator{
		bucket:       bucket,
		client:       &http.Client{},
		baseURL:      cfg.PublicBaseURL,
		manifestKey:  cfg.ManifestKey,
		categories:   cfg.ManifestCategories,
		now:          time.Now,
		ProbeTimeout: DefaultProbeTimeout,
	}
}

// Run generates the manifest and overwrites the stored copy
func (g *ManifestGenerator) Run(ctx context.Context) (*models.Manifest, error) {
	manifest, err := g.Generate(ctx)
	if err != nil {
		return nil, err
	}
	if err := g.Publish(ctx, manifest); err != nil {
		return nil, err
	}
	return manifest, nil
}

// Generate builds a manifest for every configured category. Images are
// probed one at a time.
func (g *ManifestGenerator) Generate(ctx context.Context) (*models.Manifest, error) {
	manifest := &models.Manifest{
		Updated: g.now().UTC().Format(time.RFC3339),
		Images:  make(map[string][]models.ManifestEntry, len(g.categories)),
	}

	for _, category := range g.categories {
		log.Printf("Scanning category %s", category)
		entries, err := g.listCategory(ctx, category)
		if err != nil {
			return nil, fmt.Errorf("category %s: %w", category, err)
		}
		manifest.Images[category] = entries
	}

	return manifest, nil
}

// Publish writes the manifest to the bucket in a single put
func (g *ManifestGenerator) Publish(ctx context.Context, manifest *models.Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := g.bucket.Put(ctx, g.manifestKey, data, "application/json"); err != nil {
		return fmt.Errorf("uploading manifest: %w", err)
	}
	log.Printf("Uploaded %s (%d bytes)", g.manifestKey, len(data))
	return nil
}

// listCategory lists every image below category, including nested folders
func (g *ManifestGenerator) listCategory(ctx context.Context, category string) ([]models.ManifestEntry, error) {
	prefix := folderPrefix(category)
	it := storage.Pages(ctx, g.bucket, storage.ListOptions{Prefix: prefix})

	entries := []models.ManifestEntry{}
	for {
		page, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}

		for _, obj := range page.Objects {
			if obj.Key == prefix || !IsImageKey(obj.Key) {
				continue
			}

			filename := strings.TrimPrefix(obj.Key, prefix)
			width, height := g.ProbeDimensions(ctx, objectURL(g.baseURL, obj.Key))
			if g.Progress != nil {
				g.Progress(category, filename, width, height)
			}

			entries = append(entries, models.ManifestEntry{
				Filename: filename,
				Width:    width,
				Height:   height,
			})
		}
	}

	return entries, nil
}

// ProbeDimensions reads the pixel size of a remote image from its first
// 64KB. Any failure yields the fallback dimensions.
func (g *ManifestGenerator) ProbeDimensions(ctx context.Context, imageURL string) (int, int) {
	width, height, err := g.probe(ctx, imageURL)
	if err != nil {
		log.Printf("Warning: using default dimensions for %s: %v", imageURL, err)
		return models.FallbackWidth, models.FallbackHeight
	}
	return width, height
}

func (g *ManifestGenerator) probe(ctx context.Context, imageURL string) (int, int, error) {
	timeout := g.ProbeTimeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return 0, 0, err
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=0-%d", probeBytes-1))

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return 0, 0, fmt.Errorf("bad status code: %d", resp.StatusCode)
	}

	cfg, _, err := image.DecodeConfig(io.LimitReader(resp.Body, probeBytes))
	if err != nil {
		return 0, 0, fmt.Errorf("decoding header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, fmt.Errorf("invalid dimensions %dx%d", cfg.Width, cfg.Height)
	}
	return cfg.Width, cfg.Height, nil
}

// objectURL builds the public URL of a key, escaping each path segment
func objectURL(baseURL, key string) string {
	segments := strings.Split(key, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return baseURL + "/" + strings.Join(segments, "/")
}
