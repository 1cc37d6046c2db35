package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"newsfeed/internal/aggregator"
	"newsfeed/internal/ai"
	"newsfeed/internal/api"
	"newsfeed/internal/cache"
	"newsfeed/internal/config"
	"newsfeed/internal/models"
	"newsfeed/internal/poller"
	"newsfeed/internal/storage"

	_ "newsfeed/docs"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize cache for hot data
	cacheManager := cache.NewManager(cfg.CacheTTL)

	// Initialize persistent storage
	storageManager, err := storage.NewStorage(cfg.DataDir)
	if err != nil {
		log.Fatal("Failed to initialize storage:", err)
	}

	// Clean up old articles based on retention policy
	log.Printf("Cleaning up articles older than %v", cfg.ArticleRetention)
	if err := storageManager.CleanupOldArticles(cfg.ArticleRetention); err != nil {
		log.Printf("Warning: failed to cleanup old articles: %v", err)
	}

	// Seed default feeds when none are registered yet
	if err := seedFeeds(storageManager, cfg.DefaultFeeds); err != nil {
		log.Printf("Warning: failed to seed default feeds: %v", err)
	}

	// Initialize the annotation model client
	aiClient := ai.NewLMStudioClient(cfg.AI)
	if aiClient.Available() {
		log.Printf("AI backend reachable at %s", cfg.AI.BaseURL)
	} else {
		log.Printf("AI backend not reachable at %s, articles will use fallback annotations", cfg.AI.BaseURL)
	}

	// Initialize the ingestion pipeline
	agg := aggregator.New(storageManager, aiClient, cacheManager)

	// Perform an initial refresh to populate the feed
	log.Printf("Starting initial feed refresh...")
	if feeds, articles, err := agg.RefreshAll(context.Background()); err != nil {
		log.Printf("Warning: initial refresh failed: %v", err)
	} else {
		log.Printf("Initial refresh completed: %d feeds, %d articles", feeds, articles)
	}

	// Start background polling
	backgroundPoller := poller.New(agg, cfg.PollInterval)
	backgroundPoller.Start()

	// Initialize API server
	server := api.NewServer(storageManager, aiClient, backgroundPoller, cacheManager, cfg)

	log.Printf("Starting news feed server on port %d", cfg.Port)
	log.Printf("Data directory: %s", cfg.DataDir)
	log.Printf("Cache TTL: %v", cfg.CacheTTL)
	log.Printf("Article retention: %v", cfg.ArticleRetention)
	log.Printf("Background polling interval: %v", cfg.PollInterval)

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		<-sigChan
		log.Println("Received shutdown signal, stopping services...")
		backgroundPoller.Stop()
		cancel()
	}()

	if err := server.StartWithContext(ctx); err != nil && err != context.Canceled {
		log.Fatal("Failed to start server:", err)
	}

	if err := storageManager.Close(); err != nil {
		log.Printf("Warning: failed to close storage: %v", err)
	}
}

// seedFeeds registers the configured default feeds on an empty feeds table.
func seedFeeds(store storage.Storage, urls []string) error {
	feeds, err := store.ListActiveFeeds()
	if err != nil {
		return err
	}
	if len(feeds) > 0 {
		return nil
	}

	for _, url := range urls {
		if _, err := store.UpsertFeed(&models.Feed{URL: url, Title: url}); err != nil {
			return err
		}
	}
	log.Printf("Seeded %d default feeds", len(urls))
	return nil
}
