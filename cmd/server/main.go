package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/agenthands/rolodex/internal/cache"
	"github.com/agenthands/rolodex/internal/config"
	"github.com/agenthands/rolodex/internal/extraction"
	"github.com/agenthands/rolodex/internal/fastpath"
	"github.com/agenthands/rolodex/internal/llm"
	"github.com/agenthands/rolodex/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := buildLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	llmClient, embedder, err := llm.NewClient(ctx, cfg.LLM, logger)
	if err != nil {
		logger.Fatal("failed to initialize LLM client", zap.Error(err))
	}

	var store *cache.Store
	if cfg.Cache.Enabled {
		if embedder == nil {
			logger.Warn("provider has no embedding endpoint, caching disabled",
				zap.String("provider", cfg.LLM.Provider))
		} else {
			store, err = cache.New(cfg.Cache, embedder, logger)
			if err != nil {
				logger.Fatal("failed to open similarity cache", zap.Error(err))
			}
		}
	}

	fast := fastpath.New(logger)
	extractor := extraction.New(llmClient, fast, cacheOrNil(store), extraction.Params{
		FastMode:       cfg.Extraction.FastMode,
		MaxAttempts:    cfg.Extraction.MaxAttempts,
		CacheThreshold: cfg.Cache.SimilarityThreshold,
	}, logger)

	if err := llmClient.Available(ctx); err != nil {
		logger.Warn("generative model not reachable at startup", zap.Error(err))
	}

	srv := server.New(extractor, store, cfg.Cache.Collection, logger)
	r := srv.SetupRouter()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("starting server", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

// cacheOrNil keeps a typed-nil *cache.Store from sneaking into the
// orchestrator's interface field.
func cacheOrNil(store *cache.Store) extraction.SimilarityCache {
	if store == nil {
		return nil
	}
	return store
}

func buildLogger(level string) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	return zapCfg.Build()
}
