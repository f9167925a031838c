package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"google.golang.org/api/iterator"

	"photo-portfolio/pkg/models"
	"photo-portfolio/pkg/storage"
)

const delimiter = "/"

// Allowed Extensions
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

// IsImageKey reports whether an object key has a recognised image extension
func IsImageKey(key string) bool {
	if strings.HasSuffix(key, delimiter) {
		return false
	}
	return imageExtensions[strings.ToLower(path.Ext(key))]
}

// folderListing is what a single delimiter listing of a folder reveals
type folderListing struct {
	children     []string
	directImages []string
}

// ListTopLevel returns the top-level folder names in listing order
func (s *Service) ListTopLevel(ctx context.Context) ([]string, error) {
	listing, err := s.scanFolder(ctx, "", false)
	if err != nil {
		return nil, err
	}
	return listing.children, nil
}

// ListChildren returns the names of the folders directly under folder
func (s *Service) ListChildren(ctx context.Context, folder string) ([]string, error) {
	listing, err := s.scanFolder(ctx, folder, false)
	if err != nil {
		return nil, err
	}
	return listing.children, nil
}

// HasImageObjects reports whether any image sits directly under pathPrefix
func (s *Service) HasImageObjects(ctx context.Context, pathPrefix string) (bool, error) {
	return s.hasImages(ctx, folderPrefix(pathPrefix), delimiter)
}

// ContainsImageObjects reports whether any image sits anywhere below pathPrefix
func (s *Service) ContainsImageObjects(ctx context.Context, pathPrefix string) (bool, error) {
	return s.hasImages(ctx, folderPrefix(pathPrefix), "")
}

// ListImages returns the images directly inside folder, in listing order
func (s *Service) ListImages(ctx context.Context, folder string) ([]models.ImageObject, error) {
	listing, err := s.scanFolder(ctx, folder, true)
	if err != nil {
		return nil, err
	}

	prefix := folderPrefix(folder)
	images := make([]models.ImageObject, 0, len(listing.directImages))
	for _, key := range listing.directImages {
		images = append(images, models.ImageObject{
			Src:      s.config.PublicBaseURL + "/" + key,
			Filename: strings.TrimPrefix(key, prefix),
		})
	}
	return images, nil
}

// scanFolder drains a delimiter listing of folder. Image keys are only
// collected when collectImages is set.
func (s *Service) scanFolder(ctx context.Context, folder string, collectImages bool) (*folderListing, error) {
	prefix := folderPrefix(folder)
	it := storage.Pages(ctx, s.bucket, storage.ListOptions{
		Prefix:    prefix,
		Delimiter: delimiter,
	})

	listing := &folderListing{}
	for {
		page, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing %q: %w", prefix, err)
		}

		for _, p := range page.CommonPrefixes {
			name := strings.TrimSuffix(strings.TrimPrefix(p, prefix), delimiter)
			if name == "" {
				continue
			}
			listing.children = append(listing.children, name)
		}

		if !collectImages {
			continue
		}
		for _, obj := range page.Objects {
			if obj.Key == prefix || !IsImageKey(obj.Key) {
				continue
			}
			// Skip if the object is in a subfolder
			if strings.Contains(strings.TrimPrefix(obj.Key, prefix), delimiter) {
				continue
			}
			listing.directImages = append(listing.directImages, obj.Key)
		}
	}

	return listing, nil
}

// hasImages stops paging at the first image found under prefix
func (s *Service) hasImages(ctx context.Context, prefix, delim string) (bool, error) {
	it := storage.Pages(ctx, s.bucket, storage.ListOptions{
		Prefix:    prefix,
		Delimiter: delim,
	})

	for {
		page, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("listing %q: %w", prefix, err)
		}

		for _, obj := range page.Objects {
			if obj.Key != prefix && IsImageKey(obj.Key) {
				return true, nil
			}
		}
	}
}

// folderPrefix turns a folder path into a listing prefix
func folderPrefix(folder string) string {
	folder = strings.Trim(folder, delimiter)
	if folder == "" {
		return ""
	}
	return folder + delimiter
}
