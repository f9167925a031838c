package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"photo-portfolio/pkg/config"
	"photo-portfolio/pkg/services"
	"photo-portfolio/pkg/storage"
)

// settings holds environment bindings with command line flags layered on top
var settings *viper.Viper

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	settings = config.NewViper()

	rootCmd := &cobra.Command{
		Use:   "photo-portfolio",
		Short: "Photo Portfolio serves a photographer's galleries from object storage",
		Long: `Photo Portfolio is a command line application that serves a photography portfolio
whose categories are derived from the folder layout of an R2 or GCS bucket. It can also
inspect the bucket and regenerate the image manifest used by the gallery pages.`,
	}

	// Define persistent flags that will be available for all commands
	flags := rootCmd.PersistentFlags()
	flags.StringP(config.KeyBucket, "b", "", "Set the BUCKET_NAME (overrides environment variable)")
	flags.StringP(config.KeyPort, "p", "", "Set the PORT (overrides environment variable)")
	flags.String(config.KeyProvider, "", "Set the STORAGE_PROVIDER, r2 or gcs (overrides environment variable)")
	flags.String(config.KeyPublicURL, "", "Set the PUBLIC_BASE_URL (overrides environment variable)")
	flags.String(config.KeyEndpoint, "", "Set the R2_ENDPOINT (overrides environment variable)")
	flags.String(config.KeyViewsDir, "", "Set the VIEWS_DIR (overrides environment variable)")

	// Unset flags fall through to the environment and defaults
	if err := settings.BindPFlags(flags); err != nil {
		log.Fatalf("Failed to bind flags: %v", err)
	}

	// Add commands to root
	rootCmd.AddCommand(newListCategoriesCmd())
	rootCmd.AddCommand(newListImagesCmd())
	rootCmd.AddCommand(newShowCategoryCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newGenerateManifestCmd())

	return rootCmd
}

// LoadConfig loads configuration with respect to command line flags
func LoadConfig() (*config.Config, error) {
	if settings == nil {
		return config.Load()
	}
	return config.FromViper(settings)
}

// mustLoadConfig loads the configuration or exits
func mustLoadConfig() *config.Config {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	return cfg
}

// openBucket validates the storage credentials and connects to the bucket.
// Missing credentials are fatal.
func openBucket(ctx context.Context, cfg *config.Config) storage.Bucket {
	if err := cfg.ValidateCredentials(); err != nil {
		log.Fatalf("Storage credentials missing: %v", err)
	}

	bucket, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open bucket %s: %v", cfg.BucketName, err)
	}
	return bucket
}

// newService loads the configuration and builds a service over the bucket.
// The caller closes the returned bucket.
func newService(ctx context.Context) (*config.Config, *services.Service, storage.Bucket) {
	cfg := mustLoadConfig()
	bucket := openBucket(ctx, cfg)
	return cfg, services.NewService(cfg, bucket), bucket
}

func closeBucket(bucket storage.Bucket) {
	if err := bucket.Close(); err != nil {
		log.Printf("Warning: error closing storage client: %v", err)
	}
}
