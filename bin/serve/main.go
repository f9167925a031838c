package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"photo-portfolio/pkg/config"
	"photo-portfolio/pkg/handlers"
	"photo-portfolio/pkg/services"
	"photo-portfolio/pkg/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.ValidateCredentials(); err != nil {
		log.Fatalf("Storage credentials missing: %v", err)
	}

	bucket, err := storage.Open(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to open bucket %s: %v", cfg.BucketName, err)
	}
	defer bucket.Close()

	// Initialize services
	svc := services.NewService(cfg, bucket)

	// Start server
	cfg.PrintServerStartMessage()
	if err := http.ListenAndServe(cfg.ServerAddress(), handlers.New(svc, cfg).Routes()); err != nil {
		log.Printf("Server error: %v", err)
		os.Exit(1)
	}
}
