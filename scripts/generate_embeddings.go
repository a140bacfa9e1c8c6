package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	database "github.com/omarmoh21/egypt-trip-planner/app/db"
	"github.com/omarmoh21/egypt-trip-planner/config"
	"github.com/omarmoh21/egypt-trip-planner/internal/api/catalog"
	generativeAI "github.com/omarmoh21/egypt-trip-planner/internal/api/generative_ai"
)

// Backfills missing site embeddings in batches. Safe to re-run; it only
// touches rows whose embedding is NULL.
func main() {
	batchSize := flag.Int("batch", 50, "sites fetched per batch")
	workers := flag.Int("workers", 4, "concurrent embedding calls")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dbConfig, err := database.NewDatabaseConfig(&cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		os.Exit(1)
	}
	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	embeddingService, err := generativeAI.NewEmbeddingService(ctx, logger)
	if err != nil {
		logger.Error("Failed to initialize embedding service", slog.Any("error", err))
		os.Exit(1)
	}

	repo := catalog.NewRepository(pool, logger)

	var total int
	start := time.Now()
	for {
		sites, err := repo.GetSitesWithoutEmbeddings(ctx, *batchSize)
		if err != nil {
			logger.Error("Failed to fetch sites without embeddings", slog.Any("error", err))
			os.Exit(1)
		}
		if len(sites) == 0 {
			break
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(*workers)
		for _, site := range sites {
			g.Go(func() error {
				embedding, err := embeddingService.GenerateSiteEmbedding(gctx, site.Name, site.City, site.Description, site.Activities)
				if err != nil {
					return err
				}
				return repo.UpdateSiteEmbedding(gctx, site.ID, embedding)
			})
		}
		if err := g.Wait(); err != nil {
			logger.Error("Embedding batch failed", slog.Any("error", err))
			os.Exit(1)
		}

		total += len(sites)
		logger.Info("Embedded batch", slog.Int("batch_size", len(sites)), slog.Int("total", total))
	}

	logger.Info("Embedding backfill complete",
		slog.Int("sites_embedded", total),
		slog.Duration("elapsed", time.Since(start)),
	)
}
