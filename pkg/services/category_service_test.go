package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photo-portfolio/pkg/models"
)

func portfolioBucket() *fakeBucket {
	return newFakeBucket(
		"01-Editorial/cover.jpg",
		"02-Portraits/jane.webp",
		"03-Events/Baptism/font.jpg",
		"03-Events/Maternity/",
		"03-Events/Maternity/notes.txt",
		"04-Drafts/readme.md",
		"05-Graduation/class.png",
		"05-Graduation/Empty/",
		"manifest.json",
	)
}

func TestBuildTree(t *testing.T) {
	svc := NewService(testConfig("https://cdn.test"), portfolioBucket())

	tree, err := svc.BuildTree(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []models.Category{
		{Slug: "editorial", Label: "Editorial", FullPath: "01-Editorial"},
		{Slug: "portraits", Label: "Portraits", FullPath: "02-Portraits"},
		{
			Slug: "events", Label: "Events", FullPath: "03-Events",
			Subcategories: []models.Subcategory{
				{Slug: "baptism", Label: "Baptism", FullPath: "03-Events/Baptism"},
			},
		},
		{Slug: "graduation", Label: "Graduation", FullPath: "05-Graduation"},
	}, tree)
}

func TestBuildTreeOmitsEmptySubcategories(t *testing.T) {
	svc := NewService(testConfig("https://cdn.test"), portfolioBucket())

	tree, err := svc.BuildTree(context.Background())
	require.NoError(t, err)

	var graduation *models.Category
	for i := range tree {
		if tree[i].Slug == "graduation" {
			graduation = &tree[i]
		}
	}
	require.NotNil(t, graduation)
	assert.Nil(t, graduation.Subcategories)

	data, err := json.Marshal(graduation)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "subcategories")
}

func TestBuildTreeDropsFoldersWithoutImages(t *testing.T) {
	svc := NewService(testConfig("https://cdn.test"), newFakeBucket(
		"empty/readme.txt",
		"empty/sub/also-not-an-image.pdf",
	))

	tree, err := svc.BuildTree(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tree)
	assert.NotNil(t, tree)
}

func TestBuildTreeSubcategoryOnlyParent(t *testing.T) {
	svc := NewService(testConfig("https://cdn.test"), newFakeBucket(
		"events/baptism/one.jpg",
		"events/maternity/",
	))

	tree, err := svc.BuildTree(context.Background())
	require.NoError(t, err)

	require.Len(t, tree, 1)
	assert.Equal(t, "events", tree[0].Slug)
	require.Len(t, tree[0].Subcategories, 1)
	assert.Equal(t, "baptism", tree[0].Subcategories[0].Slug)
}

func TestGetCategoriesDegradesToEmpty(t *testing.T) {
	bucket := portfolioBucket()
	bucket.listErr = errors.New("network unreachable")
	svc := NewService(testConfig("https://cdn.test"), bucket)

	categories := svc.GetCategories(context.Background())
	assert.NotNil(t, categories)
	assert.Empty(t, categories)
}

func TestGetCategoriesIsCached(t *testing.T) {
	bucket := portfolioBucket()
	cfg := testConfig("https://cdn.test")
	cfg.CacheTTL = time.Minute
	svc := NewService(cfg, bucket)

	first := svc.GetCategories(context.Background())
	calls := bucket.listCalls()
	second := svc.GetCategories(context.Background())

	assert.Equal(t, first, second)
	assert.Equal(t, calls, bucket.listCalls())

	svc.Flush()
	svc.GetCategories(context.Background())
	assert.Greater(t, bucket.listCalls(), calls)
}

func TestResolvePath(t *testing.T) {
	svc := NewService(testConfig("https://cdn.test"), newFakeBucket(
		"01-Editorial/a.jpg",
		"02-Portraits/b.jpg",
		"03-Events/1. Baptism/c.jpg",
	))
	ctx := context.Background()

	tests := []struct {
		slug string
		want string
	}{
		{"editorial", "01-Editorial"},
		{"EDITORIAL", "01-Editorial"},
		{"/portraits/", "02-Portraits"},
		{"events/baptism", "03-Events/1. Baptism"},
		{"Events/BAPTISM", "03-Events/1. Baptism"},
	}
	for _, tt := range tests {
		got, err := svc.ResolvePath(ctx, tt.slug)
		require.NoError(t, err, tt.slug)
		assert.Equal(t, tt.want, got, tt.slug)
	}

	for _, slug := range []string{"studio", "events/family", "", "events/baptism/extra", "01-editorial"} {
		_, err := svc.ResolvePath(ctx, slug)
		assert.ErrorIs(t, err, ErrCategoryNotFound, slug)
	}
}

func TestResolvePathStorageFailureIsNotNotFound(t *testing.T) {
	bucket := newFakeBucket("01-Editorial/a.jpg")
	bucket.listErr = errors.New("timeout")
	svc := NewService(testConfig("https://cdn.test"), bucket)

	_, err := svc.ResolvePath(context.Background(), "editorial")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrCategoryNotFound))
}

func TestEventsSubcategoriesEndToEnd(t *testing.T) {
	svc := NewService(testConfig("https://cdn.test"), newFakeBucket(
		"events/baptism/first.jpg",
		"events/maternity/",
	))
	ctx := context.Background()

	tree, err := svc.BuildTree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, []models.Subcategory{
		{Slug: "baptism", Label: "baptism", FullPath: "events/baptism"},
	}, tree[0].Subcategories)

	images, err := svc.GetImages(ctx, "events/baptism")
	require.NoError(t, err)
	assert.Equal(t, []models.ImageObject{
		{Src: "https://cdn.test/events/baptism/first.jpg", Filename: "first.jpg"},
	}, images)
}

func TestGetImagesUnresolvedIsEmpty(t *testing.T) {
	svc := NewService(testConfig("https://cdn.test"), portfolioBucket())

	images, err := svc.GetImages(context.Background(), "studio")
	assert.ErrorIs(t, err, ErrCategoryNotFound)
	assert.NotNil(t, images)
	assert.Empty(t, images)
}

func TestBuildTreeKeepsSlugsUnique(t *testing.T) {
	svc := NewService(testConfig("https://cdn.test"), newFakeBucket(
		"01-Events/a.jpg",
		"02-Events/b.jpg",
		"2024/c.jpg",
		"Events/Baptism/x.jpg",
		"Weddings/Baptism/x.jpg",
		"Weddings/1-Baptism/y.jpg",
	))
	ctx := context.Background()

	tree, err := svc.BuildTree(ctx)
	require.NoError(t, err)

	assert.Equal(t, []models.Category{
		{Slug: "events", Label: "Events", FullPath: "01-Events"},
		{
			Slug: "weddings", Label: "Weddings", FullPath: "Weddings",
			Subcategories: []models.Subcategory{
				{Slug: "baptism", Label: "Baptism", FullPath: "Weddings/1-Baptism"},
			},
		},
	}, tree)

	// every published slug resolves to the folder the tree names
	for _, category := range tree {
		folder, err := svc.ResolvePath(ctx, category.Slug)
		require.NoError(t, err)
		assert.Equal(t, category.FullPath, folder)
		for _, sub := range category.Subcategories {
			folder, err := svc.ResolvePath(ctx, category.Slug+"/"+sub.Slug)
			require.NoError(t, err)
			assert.Equal(t, sub.FullPath, folder)
		}
	}
}

func TestGetCategoriesSharedFillIgnoresCallerCancellation(t *testing.T) {
	cfg := testConfig("https://cdn.test")
	cfg.CacheTTL = time.Minute
	svc := NewService(cfg, portfolioBucket())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	categories := svc.GetCategories(ctx)
	assert.Len(t, categories, 4)
}
