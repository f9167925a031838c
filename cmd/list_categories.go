package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"photo-portfolio/pkg/models"
)

// newListCategoriesCmd creates a new command for listing categories
func newListCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-categories",
		Short: "List all photo categories",
		Long:  `List the category tree derived from the bucket's folder layout, with subcategories.`,
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			_, svc, bucket := newService(ctx)
			defer closeBucket(bucket)

			categories, err := svc.BuildTree(ctx)
			if err != nil {
				log.Fatalf("Failed to list categories: %v", err)
			}
			listCategories(categories)
		},
	}
}

// listCategories displays all categories and their subcategories
func listCategories(categories []models.Category) {
	fmt.Println("Photo Categories:")
	fmt.Println("================")

	subcategories := 0
	for _, category := range categories {
		fmt.Printf("%s (/%s)\n", category.Label, category.Slug)
		fmt.Printf("  Folder: %s\n", category.FullPath)
		for _, sub := range category.Subcategories {
			fmt.Printf("  - %s (/%s/%s)\n", sub.Label, category.Slug, sub.Slug)
			subcategories++
		}
		fmt.Println()
	}

	fmt.Printf("Total: %d categories, %d subcategories\n", len(categories), subcategories)
}
