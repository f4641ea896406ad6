package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"dramahub/database"
	"dramahub/internal/catalog/sync"
	"dramahub/internal/catalog/tmdb"
	"dramahub/internal/config"
	"dramahub/internal/http-api/repository"
	"dramahub/internal/http-api/service"
)

// drama-sync bulk-populates the cache with the most popular series, for
// first-boot seeding or backfills after schema changes.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}
	defer database.Close(db)

	client := tmdb.NewClient(cfg.TMDBAPIURL, cfg.TMDBAPIKey)
	repo := repository.NewDramaRepo(db)
	hotCache, _ := repository.NewHotCacheRepo("", "") // seeding never touches the hot cache
	notifier := service.NewNotifier(cfg.PushTriggerURL)
	dramas := service.NewDramaService(repo, client, hotCache, notifier, cfg)

	syncSvc := sync.NewSyncService(sync.Config{
		Language:    cfg.PrimaryLanguage,
		Pages:       getEnvInt("SYNC_PAGES", 3),
		WorkerCount: getEnvInt("SYNC_WORKERS", 4),
	}, client, dramas)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received, cancelling sync")
		cancel()
	}()

	saved, err := syncSvc.Run(ctx)
	if err != nil {
		log.Fatalf("sync failed: %v", err)
	}
	log.Printf("sync complete: %d titles populated", saved)
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}
