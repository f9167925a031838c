package services

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"photo-portfolio/pkg/config"
	"photo-portfolio/pkg/storage"
)

// Cache keys
const (
	categoriesCacheKey = "categories"
	manifestCacheKey   = "manifest"
	imagesCacheKey     = "images:"
)

// Service handles category, photo and contact operations for the site
type Service struct {
	config     *config.Config
	bucket     storage.Bucket
	cache      *cache.Cache
	group      singleflight.Group
	httpClient *http.Client
}

// NewService creates a service over the given bucket. The bucket may be nil
// when only manifest reads are needed.
func NewService(cfg *config.Config, bucket storage.Bucket) *Service {
	ttl := cfg.CacheTTL
	return &Service{
		config:     cfg,
		bucket:     bucket,
		cache:      cache.New(ttl, 2*ttl),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// SetHTTPClient replaces the client used for manifest and relay requests
func (s *Service) SetHTTPClient(client *http.Client) {
	s.httpClient = client
}

// Flush drops every cached listing and the cached manifest
func (s *Service) Flush() {
	s.cache.Flush()
}

// cached returns the value stored under key or fills it. Concurrent fills for
// the same key share one call, which runs detached from the first caller's
// cancellation. Failed fills are never cached.
func cached[T any](ctx context.Context, s *Service, key string, fill func(ctx context.Context) (T, error)) (T, error) {
	if s.config.CacheTTL <= 0 {
		return fill(ctx)
	}

	if v, found := s.cache.Get(key); found {
		log.Printf("Using cached %s", key)
		return v.(T), nil
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		value, err := fill(context.WithoutCancel(ctx))
		if err != nil {
			return value, err
		}
		s.cache.Set(key, value, cache.DefaultExpiration)
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
