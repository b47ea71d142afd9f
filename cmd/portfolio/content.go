package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"cloud.google.com/go/storage"
	"github.com/dfryer1193/portfolio/internal/config"
	"github.com/dfryer1193/portfolio/site/domain"
	"github.com/dfryer1193/portfolio/site/persistence"
	"github.com/rs/zerolog/log"
)

const imagesDir = "images"

// openContentStore returns the configured store and a func releasing it.
func openContentStore(ctx context.Context, cfg config.ContentConfig) (domain.WritableContentStore, func(), error) {
	switch cfg.Backend {
	case config.BackendGCS:
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		log.Info().Str("bucket", cfg.Bucket).Str("prefix", cfg.Prefix).Msg("Using GCS content store")
		closeClient := func() {
			if err := client.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to close storage client")
			}
		}
		return persistence.NewGCSStore(client.Bucket(cfg.Bucket), cfg.Prefix), closeClient, nil
	default:
		log.Info().Str("dir", cfg.Dir).Msg("Using file system content store")
		return persistence.NewFileSystemStore(cfg.Dir), func() {}, nil
	}
}

// contentImages is the image directory of a file system store, if it has one.
func contentImages(cfg config.ContentConfig) (string, fs.FS) {
	if cfg.Backend != config.BackendFS {
		return "", nil
	}
	dir := filepath.Join(cfg.Dir, imagesDir)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return "", nil
	}
	return dir, os.DirFS(dir)
}
