package cmd

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"photo-portfolio/pkg/config"
	"photo-portfolio/pkg/handlers"
	"photo-portfolio/pkg/services"
)

// newServeCmd creates a new command for serving the web application
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long:  `Start the web server to serve the portfolio pages and JSON endpoints via HTTP.`,
		Run: func(cmd *cobra.Command, args []string) {
			cfg, svc, bucket := newService(context.Background())
			defer closeBucket(bucket)
			serveWebsite(cfg, svc)
		},
	}
}

// serveWebsite runs the web server until it fails
func serveWebsite(cfg *config.Config, svc *services.Service) {
	router := handlers.New(svc, cfg).Routes()

	// Start server
	cfg.PrintServerStartMessage()
	if err := http.ListenAndServe(cfg.ServerAddress(), router); err != nil {
		log.Printf("Server error: %v", err)
		os.Exit(1)
	}
}
