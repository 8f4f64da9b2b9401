package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/myuzeplay/playsearch/internal/config"
	"github.com/myuzeplay/playsearch/internal/db"
	dbRedis "github.com/myuzeplay/playsearch/internal/db/redis"
	"github.com/myuzeplay/playsearch/internal/domain"
	logpkg "github.com/myuzeplay/playsearch/internal/logger"
	"github.com/myuzeplay/playsearch/internal/metrics"
	catalogrepo "github.com/myuzeplay/playsearch/internal/repository/catalog"
	"github.com/myuzeplay/playsearch/internal/repository/embcache"
	chiTransport "github.com/myuzeplay/playsearch/internal/transport/chi"
	openaiEmb "github.com/myuzeplay/playsearch/internal/transport/openai"
	bucketuc "github.com/myuzeplay/playsearch/internal/usecase/bucket"
	diaguc "github.com/myuzeplay/playsearch/internal/usecase/diag"
	healthuc "github.com/myuzeplay/playsearch/internal/usecase/health"
	searchuc "github.com/myuzeplay/playsearch/internal/usecase/search"
	"github.com/myuzeplay/playsearch/internal/version"
)

const serviceName = "playsearch"

func main() {
	// Load configuration based on ENV
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

	logger.Info("Starting playsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("index", cfg.Catalog.IndexName),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	if cfg.Catalog.EnsureIndex {
		if err := ensureCatalogIndex(ctx, store, cfg); err != nil {
			logger.Fatal("Failed to ensure catalog index", zap.Error(err))
		}
		logger.Info("Catalog index ready", zap.String("index", cfg.Catalog.IndexName))
	}

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	embedder := buildEmbedder(cfg, store, logger)
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	repo := catalogrepo.New(store, cfg.Catalog.IndexName, cfg.Catalog.KeyPrefix)

	defaults := domain.QueryDefaults{
		TopK:           cfg.Catalog.DefaultTopK,
		MaxTopK:        cfg.Catalog.MaxTopK,
		ScoreThreshold: cfg.Catalog.ScoreThreshold,
	}
	searchSvc := searchuc.New(repo, embedder, defaults)
	bucketSvc := bucketuc.New(
		embedder,
		cfg.Buckets.AssignThreshold,
		cfg.Buckets.DefaultMarket,
		marketCriteria(cfg.Buckets.Markets),
	)
	healthSvc := healthuc.New(serviceName, version.Version)
	diagSvc := diaguc.New(embedder, repo, cfg.Catalog.TestProbeQuery)

	server := chiTransport.NewServer(searchSvc, bucketSvc, healthSvc, diagSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiTransport.CORSMiddleware())
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

// cachedBatchEmbedder narrows the embedder chain to the interfaces the
// services consume.
type cachedBatchEmbedder interface {
	domain.Embedder
	domain.BatchEmbedder
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached.
func buildEmbedder(cfg config.Config, store db.Store, logger *zap.Logger) cachedBatchEmbedder {
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})

	cacheTTL := time.Duration(cfg.Embedding.CacheTTLSec) * time.Second
	return embcache.New(base, store, cfg.Catalog.KeyPrefix, cacheTTL, metrics.EmbeddingCacheTotal, logger)
}

// ensureCatalogIndex creates the FT index when it does not exist yet.
func ensureCatalogIndex(ctx context.Context, store db.Store, cfg config.Config) error {
	exists, err := store.IndexExists(ctx, cfg.Catalog.IndexName)
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	if exists {
		return nil
	}

	def, err := db.NewIndex(cfg.Catalog.IndexName).
		Prefix(cfg.Catalog.KeyPrefix).
		Text("title").
		Text("description").
		Tag("ptype").
		Tag("category").
		Tag("is_billable").
		TagWithSeparator("language", ",").
		TagWithSeparator("category_levels", ",").
		TagWithSeparator("zoneid", ",").
		Numeric("episode_count").
		VectorHNSW("vector", cfg.Embedding.Dimensions, db.DistanceCosine,
			cfg.Catalog.HNSWM, cfg.Catalog.HNSWEFConstruct).
		Build()
	if err != nil {
		return fmt.Errorf("build index definition: %w", err)
	}

	if err := store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// marketCriteria converts configured market templates into bucket criteria.
func marketCriteria(markets map[string][]config.BucketTemplate) map[string][]domain.BucketCriterion {
	out := make(map[string][]domain.BucketCriterion, len(markets))
	for market, templates := range markets {
		criteria := make([]domain.BucketCriterion, len(templates))
		for i, tpl := range templates {
			criteria[i] = domain.BucketCriterion{Name: tpl.Name, Description: tpl.Query}
		}
		out[market] = criteria
	}
	return out
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
