package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"photo-portfolio/pkg/models"
)

// ErrCategoryNotFound is returned when a slug path matches no storage folder
var ErrCategoryNotFound = errors.New("category not found")

// BuildTree derives the two-level category tree from the bucket layout.
// A folder is kept when it holds images directly or has a subfolder holding
// images. Listing order is preserved. Slugs are unique among siblings: a
// folder whose slug is empty or already taken is skipped, so the first folder
// in listing order wins, as in ResolvePath.
func (s *Service) BuildTree(ctx context.Context) ([]models.Category, error) {
	folders, err := s.ListTopLevel(ctx)
	if err != nil {
		return nil, err
	}

	categories := make([]models.Category, 0, len(folders))
	seen := map[string]bool{}
	for _, folder := range folders {
		slug := slugFor(folder)
		if !claimSlug(seen, slug, folder) {
			continue
		}

		listing, err := s.scanFolder(ctx, folder, true)
		if err != nil {
			return nil, err
		}

		var subcategories []models.Subcategory
		seenChildren := map[string]bool{}
		for _, child := range listing.children {
			fullPath := folder + delimiter + child
			childSlug := slugFor(child)
			if !claimSlug(seenChildren, childSlug, fullPath) {
				continue
			}
			hasImages, err := s.ContainsImageObjects(ctx, fullPath)
			if err != nil {
				return nil, err
			}
			if !hasImages {
				continue
			}
			subcategories = append(subcategories, models.Subcategory{
				Slug:     childSlug,
				Label:    DisplayName(child),
				FullPath: fullPath,
			})
		}

		if len(listing.directImages) == 0 && len(subcategories) == 0 {
			continue
		}

		categories = append(categories, models.Category{
			Slug:          slug,
			Label:         DisplayName(folder),
			FullPath:      folder,
			Subcategories: subcategories,
		})
	}

	return categories, nil
}

// GetCategories returns the cached category tree. Storage failures are logged
// and reported as an empty tree.
func (s *Service) GetCategories(ctx context.Context) []models.Category {
	categories, err := cached(ctx, s, categoriesCacheKey, func(ctx context.Context) ([]models.Category, error) {
		log.Println("Building category tree")
		return s.BuildTree(ctx)
	})
	if err != nil {
		log.Printf("Error fetching categories: %v", err)
		return []models.Category{}
	}
	return categories
}

// ResolvePath maps a slug path ("editorial" or "events/baptism") back to the
// storage folder it names, e.g. "01-Editorial" or "03-Events/Baptism".
func (s *Service) ResolvePath(ctx context.Context, slugPath string) (string, error) {
	parts := splitSlugPath(slugPath)
	if len(parts) == 0 || len(parts) > 2 {
		return "", fmt.Errorf("%w: %s", ErrCategoryNotFound, slugPath)
	}

	folders, err := s.ListTopLevel(ctx)
	if err != nil {
		return "", err
	}

	matched := ""
	for _, folder := range folders {
		if matchesSlug(folder, parts[0]) {
			matched = folder
			break
		}
	}
	if matched == "" {
		return "", fmt.Errorf("%w: %s", ErrCategoryNotFound, slugPath)
	}
	if len(parts) == 1 {
		return matched, nil
	}

	children, err := s.ListChildren(ctx, matched)
	if err != nil {
		return "", err
	}
	for _, child := range children {
		if matchesSlug(child, parts[1]) {
			return matched + delimiter + child, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrCategoryNotFound, slugPath)
}

// GetImages lists the images of the folder addressed by slugPath. An
// unresolvable path yields an empty list together with ErrCategoryNotFound.
func (s *Service) GetImages(ctx context.Context, slugPath string) ([]models.ImageObject, error) {
	key := imagesCacheKey + strings.ToLower(strings.Join(splitSlugPath(slugPath), delimiter))
	images, err := cached(ctx, s, key, func(ctx context.Context) ([]models.ImageObject, error) {
		folder, err := s.ResolvePath(ctx, slugPath)
		if err != nil {
			return nil, err
		}
		log.Printf("Listing images in %s", folder)
		return s.ListImages(ctx, folder)
	})
	if images == nil {
		images = []models.ImageObject{}
	}
	return images, err
}

// claimSlug records slug in seen and reports whether it was free
func claimSlug(seen map[string]bool, slug, folder string) bool {
	if slug == "" {
		log.Printf("Skipping %s: folder name has no display name", folder)
		return false
	}
	if seen[slug] {
		log.Printf("Skipping %s: slug %q is already used by an earlier folder", folder, slug)
		return false
	}
	seen[slug] = true
	return true
}

func slugFor(folder string) string {
	return strings.ToLower(DisplayName(folder))
}

func splitSlugPath(slugPath string) []string {
	var parts []string
	for _, part := range strings.Split(slugPath, delimiter) {
		part = strings.TrimSpace(part)
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
