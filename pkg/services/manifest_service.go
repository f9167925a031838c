package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"

	"photo-portfolio/pkg/models"
)

// ErrManifestUnavailable is returned when the manifest could not be fetched
// or parsed. Callers should offer a retry rather than an empty gallery.
var ErrManifestUnavailable = errors.New("manifest unavailable")

// Compile regex for file extension extraction
var extensionRegex = regexp.MustCompile(`\.[^.]+$`)

var altSeparators = strings.NewReplacer("-", " ", "_", " ")

// FetchManifest reads the published manifest. It returns nil when the
// manifest cannot be loaded; the failure is logged.
func (s *Service) FetchManifest(ctx context.Context) *models.Manifest {
	manifest, err := cached(ctx, s, manifestCacheKey, func(ctx context.Context) (*models.Manifest, error) {
		return s.fetchManifest(ctx)
	})
	if err != nil {
		log.Printf("Failed to fetch manifest: %v", err)
		return nil
	}
	return manifest
}

func (s *Service) fetchManifest(ctx context.Context) (*models.Manifest, error) {
	url := s.config.ManifestURL()
	log.Printf("Fetching manifest from %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: bad status code: %d", url, resp.StatusCode)
	}

	var manifest models.Manifest
	if err := json.NewDecoder(resp.Body).Decode(&manifest); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	if manifest.Images == nil {
		manifest.Images = map[string][]models.ManifestEntry{}
	}
	return &manifest, nil
}

// GetPhotos returns the manifest photos of a category. folderPath is the
// storage folder; slugPath is accepted as a fallback manifest key.
func (s *Service) GetPhotos(ctx context.Context, folderPath, slugPath string) ([]models.Photo, error) {
	manifest := s.FetchManifest(ctx)
	if manifest == nil {
		return nil, ErrManifestUnavailable
	}

	key := folderPath
	if _, ok := manifest.Images[key]; !ok && slugPath != "" {
		key = slugPath
	}
	return ExpandManifest(s.config.PublicBaseURL, manifest, key), nil
}

// ManifestPhotos returns the photos listed under key and whether the manifest
// has an entry for key at all.
func (s *Service) ManifestPhotos(ctx context.Context, key string) ([]models.Photo, bool, error) {
	manifest := s.FetchManifest(ctx)
	if manifest == nil {
		return nil, false, ErrManifestUnavailable
	}

	_, ok := manifest.Images[key]
	return ExpandManifest(s.config.PublicBaseURL, manifest, key), ok, nil
}

// ExpandManifest turns the manifest entries of category into photos.
// A category missing from the manifest yields an empty list.
func ExpandManifest(baseURL string, manifest *models.Manifest, category string) []models.Photo {
	if manifest == nil {
		return []models.Photo{}
	}

	entries := manifest.Images[category]
	photos := make([]models.Photo, 0, len(entries))
	for _, entry := range entries {
		width, height := entry.Width, entry.Height
		if width <= 0 || height <= 0 {
			width, height = models.FallbackWidth, models.FallbackHeight
		}
		photos = append(photos, models.Photo{
			Src:      fmt.Sprintf("%s/%s/%s", baseURL, category, entry.Filename),
			Width:    width,
			Height:   height,
			Alt:      AltText(entry.Filename),
			Category: category,
		})
	}
	return photos
}

// AltText derives accessibility text from a filename:
// "golden-hour_01.jpg" becomes "golden hour 01".
func AltText(filename string) string {
	return altSeparators.Replace(extensionRegex.ReplaceAllString(filename, ""))
}
