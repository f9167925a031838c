package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"photo-portfolio/pkg/services"
)

// newExportCmd creates a new command for exporting portfolio data
func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [format]",
		Short: "Export portfolio data",
		Long: `Export portfolio data as JSON. Supported formats: tree (the category tree derived
from the bucket, the default) and manifest (the published image manifest).`,
		Args: cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			format := "tree"
			if len(args) > 0 {
				format = args[0]
			}
			exportData(context.Background(), format)
		},
	}
}

// exportData prints the requested data set as indented JSON
func exportData(ctx context.Context, format string) {
	var data interface{}

	switch format {
	case "tree":
		_, svc, bucket := newService(ctx)
		defer closeBucket(bucket)

		categories, err := svc.BuildTree(ctx)
		if err != nil {
			log.Fatalf("Failed to build category tree: %v", err)
		}
		data = categories
	case "manifest":
		svc := services.NewService(mustLoadConfig(), nil)

		manifest := svc.FetchManifest(ctx)
		if manifest == nil {
			fmt.Println("Error: manifest unavailable")
			os.Exit(1)
		}
		data = manifest
	default:
		fmt.Printf("Unsupported export format: %s\n", format)
		fmt.Println("Supported formats: tree, manifest")
		os.Exit(1)
	}

	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		fmt.Printf("Error marshaling data: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(string(out))
}
