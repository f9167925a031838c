package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"photo-portfolio/pkg/services"
)

// newShowCategoryCmd creates a new command for showing the manifest photos of a category
func newShowCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show-category [path]",
		Short: "Show the photos of a category",
		Long:  `Show the photos the manifest lists for a category, with their dimensions.`,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			cfg := mustLoadConfig()

			// Resolution needs the bucket; without credentials the slug is used as the manifest key
			svc := services.NewService(cfg, nil)
			folder := ""
			if cfg.ValidateCredentials() == nil {
				bucket := openBucket(ctx, cfg)
				defer closeBucket(bucket)
				svc = services.NewService(cfg, bucket)
				folder = resolveFolder(ctx, svc, args[0])
			}
			showCategory(ctx, svc, folder, args[0])
		},
	}
}

func resolveFolder(ctx context.Context, svc *services.Service, slugPath string) string {
	folder, err := svc.ResolvePath(ctx, slugPath)
	if errors.Is(err, services.ErrCategoryNotFound) {
		fmt.Printf("Category not found: %s\n", slugPath)
		os.Exit(1)
	}
	if err != nil {
		log.Printf("Warning: could not resolve %s: %v", slugPath, err)
		return ""
	}
	return folder
}

// showCategory displays the photos of a category
func showCategory(ctx context.Context, svc *services.Service, folder, slugPath string) {
	slugPath = strings.ToLower(strings.Trim(slugPath, "/"))
	if folder == "" {
		folder = slugPath
	}

	photos, err := svc.GetPhotos(ctx, folder, slugPath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Category: %s\n", folder)
	fmt.Printf("Photos: %d\n", len(photos))
	fmt.Println("================")

	for i, photo := range photos {
		fmt.Printf("%d. %s (%dx%d)\n", i+1, photo.Alt, photo.Width, photo.Height)
		fmt.Printf("   URL: %s\n", photo.Src)
	}
}
