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

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lumenpick/internal/config"
	dbRedis "github.com/kailas-cloud/lumenpick/internal/db/redis"
	logpkg "github.com/kailas-cloud/lumenpick/internal/logger"
	"github.com/kailas-cloud/lumenpick/internal/metrics"
	catalogrepo "github.com/kailas-cloud/lumenpick/internal/repository/catalog"
	"github.com/kailas-cloud/lumenpick/internal/repository/rankcache"
	runrepo "github.com/kailas-cloud/lumenpick/internal/repository/run"
	"github.com/kailas-cloud/lumenpick/internal/tracing"
	"github.com/kailas-cloud/lumenpick/internal/transport/catalogapi"
	chiTransport "github.com/kailas-cloud/lumenpick/internal/transport/chi"
	"github.com/kailas-cloud/lumenpick/internal/usecase/catalogfeed"
	healthuc "github.com/kailas-cloud/lumenpick/internal/usecase/health"
	rankingsuc "github.com/kailas-cloud/lumenpick/internal/usecase/rankings"
	runuc "github.com/kailas-cloud/lumenpick/internal/usecase/run"
	"github.com/kailas-cloud/lumenpick/internal/usecase/scoring"
	"github.com/kailas-cloud/lumenpick/internal/version"
)

const serviceName = "lumenpick"

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

	logger.Info("Starting lumenpick API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("catalog_driver", cfg.Catalog.Driver),
		zap.String("algorithm_version", scoring.AlgorithmVersion),
	)

	ctx := context.Background()

	tp, err := tracing.NewProvider(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: version.Version,
		Environment:    env,
		Enabled:        cfg.Tracing.Enabled,
		Endpoint:       cfg.Tracing.Endpoint,
		Insecure:       cfg.Tracing.Insecure,
		SamplingRate:   cfg.Tracing.SamplingRate,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to start tracing", zap.Error(err))
	}

	// Register engine metrics explicitly (no init())
	metrics.RegisterEngineMetrics()

	// Redis and Valkey share the rueidis driver.
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	source, closeSource, err := buildCatalogSource(cfg.Catalog, logger)
	if err != nil {
		logger.Fatal("Failed to create catalog source", zap.Error(err))
	}
	defer closeSource()
	feed := catalogfeed.NewInstrumented(source, logger)

	// Create repositories and use case services
	repo := runrepo.New(store, cfg.Storage.KeyPrefix).
		WithRetention(time.Duration(cfg.Engine.RunRetentionDays) * 24 * time.Hour)

	runSvc := runuc.New(feed, repo).
		WithLimits(cfg.Engine.DefaultResults, cfg.Engine.MaxResults).
		WithWorkers(cfg.Engine.Workers)
	if cfg.Engine.RankCacheTTLSec > 0 {
		runSvc = runSvc.WithRankCache(rankcache.New(
			store, cfg.Storage.KeyPrefix, scoring.AlgorithmVersion,
			time.Duration(cfg.Engine.RankCacheTTLSec)*time.Second,
			metrics.RankCacheTotal, logger,
		))
	}
	rankingsSvc := rankingsuc.New(feed)
	healthSvc := healthuc.New(store, feed)

	server := chiTransport.NewServer(runSvc, rankingsSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(otelhttp.NewMiddleware(serviceName))
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.CORS(cfg.CORS.AllowedOrigins))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	r.Use(chiMiddleware.Timeout(time.Duration(cfg.HTTP.RequestTimeoutSec) * time.Second))
	chiTransport.HandlerWithOptions(server, chiTransport.ChiServerOptions{
		BaseRouter: r,
		CreateMiddlewares: []chiTransport.MiddlewareFunc{
			chiTransport.CreateRateLimit(cfg.RateLimit.CreateRequests, time.Duration(cfg.RateLimit.WindowSec)*time.Second),
		},
		ErrorHandlerFunc: func(w http.ResponseWriter, _ *http.Request, err error) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
				Code:    chiTransport.CodeBadRequest,
				Message: err.Error(),
			})
		},
	})

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
	if err := tp.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error flushing traces", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildCatalogSource picks the catalog backend. The returned func releases it.
func buildCatalogSource(cfg config.CatalogConfig, logger *zap.Logger) (catalogfeed.Source, func(), error) {
	switch cfg.Driver {
	case "http":
		client, err := catalogapi.NewClient(&catalogapi.Config{
			BaseURL:          cfg.BaseURL,
			Timeout:          time.Duration(cfg.TimeoutSec) * time.Second,
			MaxRequests:      cfg.Breaker.MaxRequests,
			Interval:         time.Duration(cfg.Breaker.IntervalSec) * time.Second,
			BreakerTimeout:   time.Duration(cfg.Breaker.TimeoutSec) * time.Second,
			FailureThreshold: cfg.Breaker.FailureThreshold,
			Logger:           logger,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("catalog api: %w", err)
		}
		return client, func() {}, nil
	case "postgres":
		db, err := catalogrepo.OpenPostgres(cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return catalogrepo.NewSQLSource(db), func() { _ = db.Close() }, nil
	case "file":
		return catalogrepo.NewFileSource(cfg.Path), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown catalog driver %q", cfg.Driver)
	}
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.String("path", r.URL.Path),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.CodeInternalError,
						Message: "internal error",
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
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			if traceID := tracing.TraceID(r.Context()); traceID != "" {
				reqLogger = reqLogger.With(zap.String("trace_id", traceID))
			}
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
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
