// Package main is the entrypoint for the form API server.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/formapi/formapi/internal/cache"
	"github.com/formapi/formapi/internal/config"
	"github.com/formapi/formapi/internal/metrics"
	"github.com/formapi/formapi/internal/middleware"
	"github.com/formapi/formapi/internal/router"
	"github.com/formapi/formapi/internal/server"
	"github.com/formapi/formapi/internal/service"
	"github.com/formapi/formapi/internal/store"
	"github.com/formapi/formapi/internal/store/memstore"
	"github.com/formapi/formapi/internal/store/mongostore"
	"github.com/formapi/formapi/internal/store/pgstore"
	"github.com/formapi/formapi/internal/validation"
)

func main() {
	// Initialize context
	ctx := context.Background()

	if err := config.LoadDotEnv(); err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize store. A failed connection is logged and the server still
	// starts so the status and probe endpoints keep answering.
	st := openStore(ctx, cfg, logger)

	// Initialize cache
	var cacheClient *cache.Cache
	if cfg.RedisURL != "" {
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("failed to connect to Redis, rate limiting disabled",
				slog.String("error", store.Redact(err.Error(), cfg.RedisURL)),
				slog.String("redis_url", store.RedactURI(cfg.RedisURL)),
			)
			cacheClient = nil
		} else {
			logger.Info("connected to Redis")
		}
	}

	// Initialize services
	var metricsRecorder *metrics.InMemoryRecorder
	var recorder metrics.Recorder = metrics.NewNoop()
	if cfg.MetricsEnabled {
		metricsRecorder = metrics.NewInMemory()
		recorder = metricsRecorder
	}

	validator := validation.New(validation.Options{
		MaxNameLength:    cfg.MaxNameLength,
		MaxEmailLength:   cfg.MaxEmailLength,
		MaxMessageLength: cfg.MaxMessageLength,
		CheckEmailFormat: cfg.ValidateEmailFormat,
	})
	formService := service.NewFormService(st, validator, recorder, cfg.StoreOperationTimeout, logger)

	// Setup router
	r := router.New(router.Deps{
		Logger:  logger,
		Store:   st,
		Forms:   formService,
		Cache:   cacheClient,
		Metrics: metricsRecorder,
		Options: routerOptions(cfg),
	})

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)
	srv.OnShutdown("store", st.Close)
	if cacheClient != nil {
		srv.OnShutdown("redis", func(ctx context.Context) error {
			return cacheClient.Close()
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"store_driver", cfg.StoreDriver,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// openStore connects the configured driver. When no client can be built at
// all the returned store is offline and reports itself disconnected.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) store.Store {
	opts := store.Options{
		ConnectTimeout: cfg.StoreConnectTimeout,
		SocketTimeout:  cfg.StoreSocketTimeout,
		MaxPoolSize:    cfg.StoreMaxPoolSize,
		HealthInterval: cfg.StoreHealthInterval,
	}

	switch cfg.StoreDriver {
	case config.DriverMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		return memstore.New(logger)

	case config.DriverPostgres:
		logger.Info("connecting to store",
			slog.String("driver", pgstore.Driver),
			slog.String("database_url", store.RedactURI(cfg.DatabaseURL)),
		)
		s, err := pgstore.Connect(ctx, pgstore.Config{DatabaseURL: cfg.DatabaseURL, Options: opts}, logger)
		if err != nil {
			logger.Error("failed to create store client", slog.String("driver", pgstore.Driver), slog.String("error", err.Error()))
			return store.NewOffline(store.Info{Driver: pgstore.Driver}, err)
		}
		return s

	default:
		if !cfg.MongoURISet {
			logger.Warn("MONGO_URI not set, using local default", slog.String("uri", config.DefaultMongoURI))
		}
		logger.Info("connecting to store",
			slog.String("driver", mongostore.Driver),
			slog.String("uri", store.RedactURI(cfg.MongoURI)),
		)
		s, err := mongostore.Connect(ctx, mongostore.Config{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
			Options:    opts,
		}, logger)
		if err != nil {
			logger.Error("failed to create store client", slog.String("driver", mongostore.Driver), slog.String("error", err.Error()))
			return store.NewOffline(store.Info{Driver: mongostore.Driver, Database: cfg.MongoDatabase}, err)
		}
		return s
	}
}

func routerOptions(cfg *config.Config) router.Options {
	cors := middleware.DefaultCORSConfig()
	if origins := cfg.GetCORSAllowedOrigins(); len(origins) > 0 {
		cors.AllowedOrigins = origins
	}

	return router.Options{
		IsDevelopment:  cfg.IsDevelopment(),
		CORS:           cors,
		MaxBodySize:    cfg.MaxRequestBodySize,
		RateLimit:      cfg.RateLimitEnabled,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		URISet:         cfg.URISet(),
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
