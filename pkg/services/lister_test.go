package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photo-portfolio/pkg/models"
)

func TestIsImageKey(t *testing.T) {
	for _, key := range []string{"a.jpg", "b.JPEG", "c/d.png", "e.WebP", "f.gif"} {
		assert.True(t, IsImageKey(key), key)
	}
	for _, key := range []string{"a.txt", "folder/", "manifest.json", "noext", "movie.mp4"} {
		assert.False(t, IsImageKey(key), key)
	}
}

func TestListTopLevelFollowsPagination(t *testing.T) {
	bucket := newFakeBucket(
		"01-Editorial/a.jpg",
		"02-Portraits/b.jpg",
		"03-Events/Baptism/c.jpg",
		"manifest.json",
	)
	bucket.pageSize = 1
	svc := NewService(testConfig("https://cdn.test"), bucket)

	folders, err := svc.ListTopLevel(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"01-Editorial", "02-Portraits", "03-Events"}, folders)
	assert.Equal(t, 4, bucket.listCalls())
}

func TestListChildren(t *testing.T) {
	bucket := newFakeBucket(
		"03-Events/Baptism/c.jpg",
		"03-Events/Maternity/readme.txt",
		"03-Events/cover.jpg",
	)
	svc := NewService(testConfig("https://cdn.test"), bucket)

	children, err := svc.ListChildren(context.Background(), "03-Events")
	require.NoError(t, err)
	assert.Equal(t, []string{"Baptism", "Maternity"}, children)
}

func TestHasAndContainsImageObjects(t *testing.T) {
	bucket := newFakeBucket(
		"events/notes.txt",
		"events/baptism/deep/a.JPG",
	)
	bucket.pageSize = 1
	svc := NewService(testConfig("https://cdn.test"), bucket)
	ctx := context.Background()

	direct, err := svc.HasImageObjects(ctx, "events")
	require.NoError(t, err)
	assert.False(t, direct)

	nested, err := svc.ContainsImageObjects(ctx, "events")
	require.NoError(t, err)
	assert.True(t, nested)

	empty, err := svc.ContainsImageObjects(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, empty)
}

func TestListImagesSkipsNestedAndNonImages(t *testing.T) {
	bucket := newFakeBucket(
		"01-Editorial/",
		"01-Editorial/cover.jpg",
		"01-Editorial/notes.txt",
		"01-Editorial/b.PNG",
		"01-Editorial/Covers/nested.jpg",
	)
	bucket.pageSize = 2
	svc := NewService(testConfig("https://cdn.test"), bucket)

	images, err := svc.ListImages(context.Background(), "01-Editorial")
	require.NoError(t, err)

	assert.Equal(t, []models.ImageObject{
		{Src: "https://cdn.test/01-Editorial/b.PNG", Filename: "b.PNG"},
		{Src: "https://cdn.test/01-Editorial/cover.jpg", Filename: "cover.jpg"},
	}, images)
}

func TestListingErrorsPropagate(t *testing.T) {
	bucket := newFakeBucket()
	bucket.listErr = errors.New("access denied")
	svc := NewService(testConfig("https://cdn.test"), bucket)

	_, err := svc.ListTopLevel(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}
