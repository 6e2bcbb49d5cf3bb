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

	"github.com/kailas-cloud/travelrag/internal/config"
	dbRedis "github.com/kailas-cloud/travelrag/internal/db/redis"
	dbValkey "github.com/kailas-cloud/travelrag/internal/db/valkey"
	"github.com/kailas-cloud/travelrag/internal/domain"
	"github.com/kailas-cloud/travelrag/internal/domain/collection"
	"github.com/kailas-cloud/travelrag/internal/domain/search/request"
	"github.com/kailas-cloud/travelrag/internal/ingest"
	logpkg "github.com/kailas-cloud/travelrag/internal/logger"
	"github.com/kailas-cloud/travelrag/internal/metrics"
	documentrepo "github.com/kailas-cloud/travelrag/internal/repository/document"
	"github.com/kailas-cloud/travelrag/internal/repository/embcache"
	"github.com/kailas-cloud/travelrag/internal/repository/memory"
	profilerepo "github.com/kailas-cloud/travelrag/internal/repository/profile"
	"github.com/kailas-cloud/travelrag/internal/repository/profilepg"
	chiTransport "github.com/kailas-cloud/travelrag/internal/transport/chi"
	geminiEmb "github.com/kailas-cloud/travelrag/internal/transport/gemini"
	"github.com/kailas-cloud/travelrag/internal/transport/hashing"
	openaiEmb "github.com/kailas-cloud/travelrag/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/travelrag/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/travelrag/internal/usecase/health"
	prefuc "github.com/kailas-cloud/travelrag/internal/usecase/preference"
	"github.com/kailas-cloud/travelrag/internal/usecase/recommend"
	"github.com/kailas-cloud/travelrag/internal/usecase/retrieval"
	"github.com/kailas-cloud/travelrag/internal/version"
)

// backend is the document store chosen by database.driver.
type backend struct {
	repo  retrieval.Repository
	ping  healthuc.Pinger
	kv    *dbRedis.Store // nil for the memory driver
	close func()
}

func main() {
	// .env is optional; real environment variables win.
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

	logger.Info("Starting travelrag API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.String("profiles_driver", cfg.Profiles.Driver),
	)

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterRetrievalMetrics()
	metrics.RegisterHTTPMetrics()

	ctx := context.Background()

	store, err := openBackend(ctx, &cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open document store", zap.Error(err))
	}
	defer store.close()

	docEmbedder, dim, err := buildEmbedder(ctx, &cfg, geminiEmb.TaskRetrievalDocument,
		cfg.Embedding.DocumentInstruction, store.kv, logger)
	if err != nil {
		logger.Fatal("Failed to create document embedder", zap.Error(err))
	}
	queryEmbedder, _, err := buildEmbedder(ctx, &cfg, geminiEmb.TaskRetrievalQuery,
		cfg.Embedding.QueryInstruction, store.kv, logger)
	if err != nil {
		logger.Fatal("Failed to create query embedder", zap.Error(err))
	}
	logger.Info("Embedders created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", dim),
	)

	profiles, profilesPing, closeProfiles, err := openProfiles(ctx, &cfg, store.kv)
	if err != nil {
		logger.Fatal("Failed to open profile store", zap.Error(err))
	}
	defer closeProfiles()

	retrievalSvc := retrieval.New(store.repo, docEmbedder, queryEmbedder, dim, request.Limits{
		Default: cfg.Search.DefaultLimit,
		Max:     cfg.Search.MaxLimit,
	})
	prefSvc := prefuc.New(profiles, retrievalSvc)
	recommendSvc := recommend.New(retrievalSvc, prefSvc)
	healthSvc := healthuc.New(store.ping, newEmbeddingHealthChecker(docEmbedder), profilesPing)

	if cfg.Data.IndexOnStartup {
		indexOnStartup(ctx, &cfg.Data, retrievalSvc, logger)
	}

	server := chiTransport.NewServer(recommendSvc, prefSvc, retrievalSvc, healthSvc)
	handler := chiTransport.NewRouter(server, cfg.Auth.APIKeys, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
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

func openBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*backend, error) {
	if cfg.Database.Driver == config.DriverMemory {
		repo := memory.New(cfg.Database.SnapshotPath)
		if err := repo.Load(); err != nil {
			return nil, fmt.Errorf("load snapshot: %w", err)
		}
		return &backend{
			repo: repo,
			ping: repo,
			close: func() {
				if err := repo.Save(); err != nil {
					logger.Error("Failed to save snapshot", zap.Error(err))
				}
			},
		}, nil
	}

	connCfg := dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
	}

	var (
		kv   *dbRedis.Store
		repo *documentrepo.Repo
	)
	hnsw := documentrepo.HNSWConfig{M: cfg.Index.HNSWM, EFConstruct: cfg.Index.HNSWEFConstruct}
	switch cfg.Database.Driver {
	case config.DriverValkey:
		s, err := dbValkey.NewStore(connCfg)
		if err != nil {
			return nil, fmt.Errorf("create valkey store: %w", err)
		}
		kv = s.Store
		repo = documentrepo.New(s, cfg.Storage.KeyPrefix).WithHNSW(hnsw)
	default:
		s, err := dbRedis.NewStore(connCfg)
		if err != nil {
			return nil, fmt.Errorf("create redis store: %w", err)
		}
		kv = s
		repo = documentrepo.New(s, cfg.Storage.KeyPrefix).WithHNSW(hnsw)
	}

	if err := kv.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		kv.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database", zap.Strings("addrs", cfg.Database.Addrs))

	return &backend{repo: repo, ping: kv, kv: kv, close: kv.Close}, nil
}

// buildEmbedder assembles the decorator chain: provider -> cache -> instrumented -> instruction.
// The instruction is outermost so cache keys include it.
func buildEmbedder(
	ctx context.Context,
	cfg *config.Config,
	taskType, instruction string,
	kv *dbRedis.Store,
	logger *zap.Logger,
) (domain.Embedder, int, error) {
	base, dim, err := buildProvider(ctx, &cfg.Embedding, taskType, logger)
	if err != nil {
		return nil, 0, err
	}

	model := cfg.Embedding.Model
	if cfg.Embedding.Provider == config.ProviderGemini {
		model += ":" + taskType
	}

	embedder := base
	cacheCfg := embcache.Config{
		KeyPrefix: fmt.Sprintf("%semb_cache:%s:%s:", cfg.Storage.KeyPrefix, cfg.Embedding.Provider, model),
		TTL:       time.Duration(cfg.Embedding.CacheTTLSec) * time.Second,
		LocalTTL:  time.Duration(cfg.Embedding.LocalCacheTTLSec) * time.Second,
	}
	switch {
	case kv != nil:
		embedder = embcache.New(embedder, kv, cacheCfg, metrics.EmbeddingCacheTotal, logger)
	case cacheCfg.LocalTTL > 0:
		// Pass a nil interface, not a typed nil *Store.
		embedder = embcache.New(embedder, nil, cacheCfg, metrics.EmbeddingCacheTotal, logger)
	}

	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, embeddinguc.Options{
		Provider:     cfg.Embedding.Provider,
		Model:        cfg.Embedding.Model,
		Dimensions:   dim,
		MaxBatchSize: cfg.Embedding.MaxBatchSize,
	}, logger)

	if instruction != "" {
		return domain.NewInstructionEmbedder(embedder, instruction), dim, nil
	}
	return embedder, dim, nil
}

// buildProvider returns the base embedding provider and its vector dimension.
func buildProvider(
	ctx context.Context, cfg *config.EmbeddingConfig, taskType string, logger *zap.Logger,
) (domain.Embedder, int, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Provider:   cfg.Provider,
			Logger:     logger,
		}), cfg.Dimensions, nil
	case config.ProviderGemini:
		emb, err := geminiEmb.NewEmbedder(ctx, &geminiEmb.Config{
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			TaskType:   taskType,
			Logger:     logger,
		})
		if err != nil {
			return nil, 0, fmt.Errorf("gemini: %w", err)
		}
		return emb, cfg.Dimensions, nil
	default:
		emb := hashing.NewEmbedder(cfg.Dimensions)
		return emb, emb.Dimensions(), nil
	}
}

// openProfiles returns the profile store, its pinger (nil when it cannot fail) and a closer.
func openProfiles(
	ctx context.Context, cfg *config.Config, kv *dbRedis.Store,
) (prefuc.ProfileStore, healthuc.Pinger, func(), error) {
	switch cfg.Profiles.Driver {
	case config.ProfilesRedis:
		return profilerepo.NewKV(kv, cfg.Storage.KeyPrefix), nil, func() {}, nil
	case config.ProfilesPostgres:
		pool, err := profilepg.Open(ctx, cfg.Profiles.PostgresDSN)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		repo := profilepg.New(pool)
		if err := repo.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, nil, fmt.Errorf("migrate profiles: %w", err)
		}
		return repo, pool, pool.Close, nil
	default:
		return profilerepo.NewMemory(), nil, func() {}, nil
	}
}

func indexOnStartup(ctx context.Context, cfg *config.DataConfig, idx ingest.Indexer, logger *zap.Logger) {
	paths := map[collection.Kind]string{
		collection.Hotels:      cfg.HotelsPath,
		collection.Attractions: cfg.AttractionsPath,
		collection.Itineraries: cfg.ItinerariesPath,
	}
	counts, err := ingest.IndexFiles(logpkg.ContextWithLogger(ctx, logger), idx, paths)
	if err != nil {
		logger.Error("Startup indexing failed", zap.Error(err))
		return
	}
	for kind, n := range counts {
		logger.Info("Collection indexed", zap.String("collection", string(kind)), zap.Int("documents", n))
	}
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}
