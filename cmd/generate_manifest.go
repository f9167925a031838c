package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"photo-portfolio/pkg/config"
	"photo-portfolio/pkg/models"
	"photo-portfolio/pkg/services"
)

// Command options
var (
	dryRun       bool
	probeTimeout time.Duration
	categories   []string
)

// newGenerateManifestCmd creates a new command for regenerating manifest.json
func newGenerateManifestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate-manifest",
		Short: "Regenerate the image manifest",
		Long: `Scan every manifest category in the bucket, read the dimensions of each image from
its first 64KB and upload the result as the manifest object. Requires R2_ACCOUNT_ID,
R2_ACCESS_KEY_ID and R2_SECRET_ACCESS_KEY for the r2 provider.`,
		Run: func(cmd *cobra.Command, args []string) {
			cfg := mustLoadConfig()
			if len(categories) > 0 {
				cfg.ManifestCategories = categories
			}
			generateManifest(context.Background(), cfg)
		},
	}

	// Add command-specific flags
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Print the manifest instead of uploading it")
	cmd.Flags().DurationVarP(&probeTimeout, "probe-timeout", "t", services.DefaultProbeTimeout, "Timeout for each image header fetch")
	cmd.Flags().StringSliceVarP(&categories, "category", "c", nil, "Category to scan, repeatable (overrides MANIFEST_CATEGORIES)")

	return cmd
}

// generateManifest scans the bucket and publishes or prints the manifest
func generateManifest(ctx context.Context, cfg *config.Config) {
	bucket := openBucket(ctx, cfg)
	defer closeBucket(bucket)

	generator := services.NewManifestGenerator(cfg, bucket)
	generator.ProbeTimeout = probeTimeout
	generator.Progress = func(category, filename string, width, height int) {
		fmt.Printf("  %s/%s: %dx%d\n", category, filename, width, height)
	}

	fmt.Printf("Scanning %d categories in bucket %s...\n", len(cfg.ManifestCategories), cfg.BucketName)

	manifest, err := generator.Generate(ctx)
	if err != nil {
		log.Fatalf("Failed to generate manifest: %v", err)
	}

	printManifestSummary(manifest, cfg.ManifestCategories)

	if dryRun {
		data, err := json.MarshalIndent(manifest, "", "  ")
		if err != nil {
			log.Fatalf("Failed to marshal manifest: %v", err)
		}
		fmt.Println(string(data))
		return
	}

	if err := generator.Publish(ctx, manifest); err != nil {
		log.Fatalf("Failed to upload manifest: %v", err)
	}
	fmt.Printf("Uploaded %s\n", cfg.ManifestURL())
}

// printManifestSummary prints the image count per category
func printManifestSummary(manifest *models.Manifest, order []string) {
	fmt.Println()
	fmt.Println("Summary:")
	fmt.Println("================")

	total := 0
	for _, category := range order {
		entries := manifest.Images[category]
		fallbacks := 0
		for _, entry := range entries {
			if entry.Width == models.FallbackWidth && entry.Height == models.FallbackHeight {
				fallbacks++
			}
		}
		fmt.Printf("%s: %d images", category, len(entries))
		if fallbacks > 0 {
			fmt.Printf(" (%d with default dimensions)", fallbacks)
		}
		fmt.Println()
		total += len(entries)
	}

	fmt.Printf("Total: %d images, updated %s\n", total, manifest.Updated)
}
