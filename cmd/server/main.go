package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"faqbot/internal/adapter/api"
	"faqbot/internal/adapter/client"
	"faqbot/internal/adapter/embedding/tfidf"
	"faqbot/internal/adapter/store"
	"faqbot/internal/config"
	"faqbot/internal/domain/entity"
	"faqbot/internal/domain/repository"
	"faqbot/internal/observability"
	"faqbot/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/qdrant/go-client/qdrant"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	_ = godotenv.Load(".env")

	defaultPath := os.Getenv("FAQBOT_CONFIG")
	if defaultPath == "" {
		defaultPath = "config.yaml"
	}
	configPath := flag.String("config", defaultPath, "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLogger := observability.NewLogger(observability.LogConfig{})
		bootLogger.Fatal().Err(err).Str("path", *configPath).Msg("failed to load config")
	}
	logger := observability.NewLogger(observability.LogConfig{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}
	ctx := context.Background()

	catalog, err := store.LoadFAQ(cfg.FAQ.Path)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.FAQ.Path).Msg("failed to load FAQ data")
	}
	logger.Info().Int("questions", catalog.Len()).Int("categories", len(catalog.Categories)).Msg("FAQ data loaded")

	// Redis backs conversation history and rate limiting when configured
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis not reachable yet")
		}
	}

	embedder := newEmbedder(ctx, cfg, catalog, logger)
	embeddingCache := newEmbeddingCache(cfg, logger)

	if embedder != nil {
		indexCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		err := usecase.BuildIndex(indexCtx, catalog, embedder, embeddingCache, logger)
		cancel()
		if err != nil {
			logger.Warn().Err(err).Msg("semantic index unavailable, using keyword overlap")
		}
	}

	var history repository.ConversationStore
	switch cfg.History.Type {
	case "redis":
		history = store.NewRedisHistory(rdb, cfg.History.KeyPrefix, cfg.History.MaxTurns, cfg.HistoryTTL())
	default:
		history = store.NewMemoryHistory(cfg.History.MaxUsers, cfg.History.MaxTurns, cfg.HistoryTTL())
	}

	var limiter repository.RequestLimiter
	if rdb != nil && cfg.RateLimit.Requests > 0 {
		limiter = store.NewRedisLimiter(rdb, cfg.RateLimit.Requests, cfg.RateLimitWindow())
	}

	var fallback repository.Fallback
	if cfg.Fallback.Type == "website" {
		fallback = client.NewSiteFallback(
			cfg.Resolver.SiteURL,
			cfg.Fallback.Sections,
			time.Duration(cfg.Fallback.TimeoutSecs)*time.Second,
			time.Duration(cfg.Fallback.CacheTTLMinutes)*time.Minute,
			logger,
		)
	}

	rc := cfg.Resolver
	resolver := usecase.NewResolver(catalog, embedder, history, fallback,
		usecase.NewVarier(cfg.Variation.Probability, cfg.Variation.Seed),
		usecase.ResolverConfig{
			HighThreshold:           rc.HighThreshold,
			MediumThreshold:         rc.MediumThreshold,
			CutoffMatchThreshold:    rc.CutoffMatchThreshold,
			ClarificationConfidence: rc.ClarificationConfidence,
			StaticCutoffConfidence:  rc.StaticCutoffConfidence,
			FallbackConfidence:      rc.FallbackConfidence,
			SiteURL:                 rc.SiteURL,
		},
		logger,
	)
	interactions := store.NewMemoryInteractionLog(store.DefaultMaxInteractions, store.DefaultMaxFeedback)
	service := usecase.NewChatService(resolver, limiter, interactions, rc.HighThreshold, logger)

	if embedder != nil {
		go func() {
			warmCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if _, err := embedder.CreateEmbedding(warmCtx, "warmup"); err != nil {
				logger.Warn().Err(err).Msg("embedder warm-up failed")
				return
			}
			logger.Info().Msg("embedder warm-up complete")
		}()
	}

	app := fiber.New(fiber.Config{
		AppName: "NIE FAQ Bot",
	})
	api.SetupRouter(app, api.NewChatHandler(service), cfg.Server.CORSOrigins)

	go func() {
		logger.Info().Str("port", cfg.Server.Port).Bool("semantic", resolver.Stats().Semantic).Msg("faqbot listening")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout()); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
}

// newEmbedder returns nil when embeddings are disabled or cannot be set up,
// which leaves the resolver in keyword mode.
func newEmbedder(ctx context.Context, cfg *config.AppConfig, catalog *entity.Catalog, logger zerolog.Logger) repository.Embedder {
	timeout := time.Duration(cfg.Embedder.TimeoutSecs) * time.Second
	switch cfg.Embedder.Type {
	case "gemini":
		g := cfg.Embedder.Gemini
		primary, err := client.NewGeminiEmbedder(ctx, g.Project, g.Location, g.APIKey, g.Model, g.BatchSize)
		if err != nil {
			logger.Warn().Err(err).Msg("gemini embedder unavailable")
			return nil
		}
		return usecase.NewResilientEmbedder(primary, cfg.Embedder.MaxRetries, timeout, logger)
	case "tfidf":
		emb, err := tfidf.NewEmbedder(usecase.NormalizedQuestions(catalog))
		if err != nil {
			logger.Warn().Err(err).Msg("tfidf embedder unavailable")
			return nil
		}
		return emb
	default:
		return nil
	}
}

func newEmbeddingCache(cfg *config.AppConfig, logger zerolog.Logger) repository.EmbeddingCache {
	switch cfg.EmbeddingCache.Type {
	case "file":
		return store.NewFileEmbeddingCache(cfg.EmbeddingCache.Path)
	case "qdrant":
		q := cfg.EmbeddingCache.Qdrant
		qClient, err := qdrant.NewClient(&qdrant.Config{
			Host: q.Host,
			Port: q.Port,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("failed to connect to qdrant, embedding cache disabled")
			return nil
		}
		return store.NewQdrantEmbeddingCache(qClient, q.Collection)
	default:
		return nil
	}
}

