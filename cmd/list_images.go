package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"photo-portfolio/pkg/services"
)

// newListImagesCmd creates a new command for listing the stored images of a category
func newListImagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-images [path]",
		Short: "List the images stored in a category",
		Long:  `List the image objects stored directly in the folder a slug path such as "events/baptism" resolves to.`,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			_, svc, bucket := newService(ctx)
			defer closeBucket(bucket)
			listImages(ctx, svc, args[0])
		},
	}
}

// listImages prints every image of the folder addressed by slugPath
func listImages(ctx context.Context, svc *services.Service, slugPath string) {
	folder, err := svc.ResolvePath(ctx, slugPath)
	if err != nil {
		if errors.Is(err, services.ErrCategoryNotFound) {
			fmt.Printf("Category not found: %s\n", slugPath)
		} else {
			fmt.Printf("Error: %v\n", err)
		}
		os.Exit(1)
	}

	images, err := svc.ListImages(ctx, folder)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Folder: %s\n", folder)
	fmt.Printf("Images: %d\n", len(images))
	fmt.Println("================")

	for i, image := range images {
		fmt.Printf("%d. %s\n", i+1, image.Filename)
		fmt.Printf("   URL: %s\n", image.Src)
	}
}
