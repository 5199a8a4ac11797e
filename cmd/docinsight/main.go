package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docinsight/internal/config"
	"github.com/kailas-cloud/docinsight/internal/db/postgres"
	dbValkey "github.com/kailas-cloud/docinsight/internal/db/valkey"
	"github.com/kailas-cloud/docinsight/internal/domain"
	"github.com/kailas-cloud/docinsight/internal/llm"
	logpkg "github.com/kailas-cloud/docinsight/internal/logger"
	"github.com/kailas-cloud/docinsight/internal/metrics"
	budgetrepo "github.com/kailas-cloud/docinsight/internal/repository/budget"
	catalogrepo "github.com/kailas-cloud/docinsight/internal/repository/catalog"
	chunkrepo "github.com/kailas-cloud/docinsight/internal/repository/chunk"
	"github.com/kailas-cloud/docinsight/internal/repository/embcache"
	userrepo "github.com/kailas-cloud/docinsight/internal/repository/user"
	"github.com/kailas-cloud/docinsight/internal/splitter"
	chiTransport "github.com/kailas-cloud/docinsight/internal/transport/chi"
	openaiTransport "github.com/kailas-cloud/docinsight/internal/transport/openai"
	answeruc "github.com/kailas-cloud/docinsight/internal/usecase/answer"
	authuc "github.com/kailas-cloud/docinsight/internal/usecase/auth"
	embeddinguc "github.com/kailas-cloud/docinsight/internal/usecase/embedding"
	evaluationuc "github.com/kailas-cloud/docinsight/internal/usecase/evaluation"
	healthuc "github.com/kailas-cloud/docinsight/internal/usecase/health"
	indexuc "github.com/kailas-cloud/docinsight/internal/usecase/index"
	ingestuc "github.com/kailas-cloud/docinsight/internal/usecase/ingest"
	insightuc "github.com/kailas-cloud/docinsight/internal/usecase/insight"
	retrievaluc "github.com/kailas-cloud/docinsight/internal/usecase/retrieval"
	"github.com/kailas-cloud/docinsight/internal/version"
)

const embeddingProvider = "openai"

func main() {
	// Provider keys usually live in .env; a missing file is fine.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting docinsight API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("valkey_addrs", cfg.Database.Addrs),
	)

	metrics.Register()
	ctx := logpkg.ContextWithLogger(context.Background(), logger)

	// Vector store
	store, err := dbValkey.NewStore(dbValkey.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create valkey store", zap.Error(err))
	}
	defer store.Close()

	readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, readiness); err != nil {
		logger.Fatal("Valkey not ready", zap.Error(err))
	}
	logger.Info("Connected to valkey")

	// Document catalog
	pool, err := postgres.NewPool(ctx, postgres.Config{DSN: cfg.Postgres.DSN, MaxConns: cfg.Postgres.MaxConns})
	if err != nil {
		logger.Fatal("Failed to create postgres pool", zap.Error(err))
	}
	defer pool.Close()

	if err := postgres.WaitForReady(ctx, pool, readiness); err != nil {
		logger.Fatal("Postgres not ready", zap.Error(err))
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		logger.Fatal("Catalog migration failed", zap.Error(err))
	}
	logger.Info("Connected to postgres")

	// Embedder chain and LLM gateway
	embedder := buildEmbedder(ctx, cfg, store, logger)

	gateway, err := buildGateway(cfg.LLM, logger)
	if err != nil {
		logger.Fatal("No chat provider available", zap.Error(err))
	}

	// Use cases
	chunks := chunkrepo.New(store, chunkrepo.Config{
		KeyPrefix:       cfg.Storage.KeyPrefix,
		IndexName:       cfg.Index.Name,
		Dimensions:      cfg.Embedding.Dimensions,
		HNSWM:           cfg.Index.HNSWM,
		HNSWEFConstruct: cfg.Index.HNSWEFConstruct,
	})
	indexSvc := indexuc.New(chunks, embedder)
	if err := indexSvc.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure vector index", zap.Error(err))
	}

	retrievalSvc := retrievaluc.New(indexSvc, cfg.RAG.TopK)
	answerSvc := answeruc.New(gateway, cfg.RAG.Temperature)
	ingestSvc := ingestuc.New(
		ingestuc.PDFParser{},
		splitter.New(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap),
		indexSvc,
		catalogrepo.New(pool),
	)
	insightSvc := insightuc.New(retrievalSvc, gateway, cfg.RAG.Temperature)
	evalSvc := evaluationuc.New(indexSvc, retrievalSvc, answerSvc, gateway,
		evaluationuc.WithTemperature(cfg.RAG.Temperature))
	healthSvc := healthuc.New(
		healthuc.PingCheck("valkey", store),
		healthuc.PingCheck("postgres", pool),
		healthuc.EmbeddingCheck(embedder),
	)

	services := chiTransport.Services{
		Ingest:    ingestSvc,
		Sources:   indexSvc,
		Retrieval: retrievalSvc,
		Answer:    answerSvc,
		Analyst:   insightSvc,
		Eval:      evalSvc,
		Health:    healthSvc,
	}
	routerCfg := chiTransport.RouterConfig{
		APIKeys:      cfg.Auth.APIKeys,
		RequireLogin: cfg.Auth.RequireLogin,
		Logger:       logger,
	}
	if cfg.Auth.JWTSecret != "" {
		authSvc, err := authuc.New(userrepo.New(pool), []byte(cfg.Auth.JWTSecret),
			time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)
		if err != nil {
			logger.Fatal("Failed to init auth", zap.Error(err))
		}
		services.Auth = authSvc
		routerCfg.Tokens = authSvc
		logger.Info("User auth enabled", zap.Bool("require_login", cfg.Auth.RequireLogin))
	}

	server := chiTransport.NewServer(services,
		chiTransport.WithMaxUploadMB(cfg.Upload.MaxSizeMB),
		chiTransport.WithDefaultSamples(cfg.RAG.DefaultSamples),
	)
	router := chiTransport.NewRouter(server, routerCfg)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented (budget + metrics).
func buildEmbedder(
	ctx context.Context,
	cfg config.Config,
	store *dbValkey.Store,
	logger *zap.Logger,
) *embeddinguc.InstrumentedEmbedder {
	base := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   embeddingProvider,
		Logger:     logger,
	})

	var embedder domain.Embedder = base
	if cfg.Embedding.Cache {
		embedder = embcache.New(base, store, embcache.Config{
			KeyPrefix: cfg.Storage.KeyPrefix,
			Model:     cfg.Embedding.Model,
			TTL:       time.Duration(cfg.Embedding.CacheTTLH) * time.Hour,
		}, metrics.EmbeddingCacheTotal, logger)
	}

	// Pass a nil interface, not a typed nil pointer, when no budget is set.
	var budget embeddinguc.Budget
	if cfg.Embedding.Budget.DailyTokens > 0 {
		daily := embeddinguc.NewDailyBudget(
			cfg.Embedding.Budget.DailyTokens,
			embeddinguc.BudgetAction(cfg.Embedding.Budget.Action),
			cfg.Storage.KeyPrefix,
			logger,
		)
		budget = daily.WithStore(ctx, budgetrepo.New(store, 48*time.Hour))
	}

	logger.Info("Embedder created",
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.Bool("cache", cfg.Embedding.Cache),
		zap.Int64("daily_token_budget", cfg.Embedding.Budget.DailyTokens),
	)

	return embeddinguc.NewInstrumentedEmbedder(embedder, embeddingProvider, cfg.Embedding.Model, budget, logger)
}

// buildGateway resolves the configured chat providers.
func buildGateway(cfg config.LLMConfig, logger *zap.Logger) (*llm.Gateway, error) {
	providers := make([]llm.Provider, len(cfg.Providers))
	for i, p := range cfg.Providers {
		providers[i] = llm.Provider{
			Name:    p.Name,
			Tier:    p.Tier,
			APIKey:  p.APIKey,
			BaseURL: p.BaseURL,
			Model:   p.Model,
		}
	}

	factory := func(p llm.Provider) domain.Completer {
		return openaiTransport.NewChat(&openaiTransport.ChatConfig{
			Name:    p.Name,
			APIKey:  p.APIKey,
			BaseURL: p.BaseURL,
			Model:   p.Model,
			Logger:  logger,
		})
	}

	gw, err := llm.New(providers, factory, llm.NewSelector(cfg.Strategy), logger)
	if err != nil {
		return nil, fmt.Errorf("build llm gateway: %w", err)
	}
	return gw, nil
}
