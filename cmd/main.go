package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnknownOlympus/perimeter/internal/api"
	"github.com/UnknownOlympus/perimeter/internal/config"
	"github.com/UnknownOlympus/perimeter/internal/directory"
	"github.com/UnknownOlympus/perimeter/internal/geocoding"
	"github.com/UnknownOlympus/perimeter/internal/metrics"
	"github.com/UnknownOlympus/perimeter/internal/repository"
	"github.com/UnknownOlympus/perimeter/internal/service"
	"github.com/UnknownOlympus/perimeter/internal/spatial"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load application configuration.
	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env)
	if cfg.Env != envLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	// The directory lives in memory; the database and the examples only seed it.
	dir := directory.New(logger)
	if cfg.Directory.SeedExamples {
		seedExamples(ctx, logger, dir)
	}

	var pinger api.Pinger
	if cfg.Database.Host != "" {
		dtb, err := repository.NewDatabase(ctx,
			cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
		)
		if err != nil {
			log.Fatalf("Failed to connect to DB: %v", err)
		}
		defer dtb.Close()

		repo := repository.NewRepository(dtb, logger)
		pinger = repo

		syncer := service.NewDirectorySync(
			logger, repo, dir, appMetrics, cfg.Directory.SeedLimit, cfg.Directory.SyncInterval,
		)
		syncer.Sync(ctx)
		go syncer.Run(ctx)
	}
	appMetrics.DirectoryBuildings.Set(float64(dir.Len()))

	// Create the spatial provider using factory pattern based on configuration.
	provider, err := spatial.NewProvider(spatial.ProviderConfig{
		Type:      spatial.ProviderType(cfg.Provider.Type),
		APIKey:    cfg.Provider.APIKey,
		BaseURL:   cfg.Provider.BaseURL,
		UserAgent: cfg.Provider.UserAgent,
		Timeout:   cfg.Provider.Timeout,
		RateLimit: cfg.Provider.RateLimit,
		Logger:    logger,
		Metrics:   appMetrics,
	})
	if err != nil {
		log.Fatalf("Failed to create spatial provider: %v", err)
	}
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		if err = client.Ping(ctx).Err(); err != nil {
			logger.WarnContext(ctx, "Discovery cache unreachable, lookups will bypass it", "error", err)
		}
		provider = spatial.NewCachedProvider(provider, spatial.NewRedisCache(client), cfg.Redis.TTL, logger, appMetrics)
	}

	logger.InfoContext(ctx, "Spatial provider initialized",
		"type", cfg.Provider.Type, "cache", cfg.Redis.Addr != "")

	geocoder, err := geocoding.NewProvider(geocoding.ProviderConfig{
		Type:      geocoding.ProviderType(cfg.Geocoder.Type),
		APIKey:    cfg.Geocoder.APIKey,
		BaseURL:   cfg.Geocoder.BaseURL,
		UserAgent: cfg.Geocoder.UserAgent,
		Timeout:   cfg.Geocoder.Timeout,
		RateLimit: cfg.Geocoder.RateLimit,
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("Failed to create geocoding provider: %v", err)
	}

	evaluator := service.NewEvaluator(logger, dir, provider, appMetrics, service.Settings{
		DefaultRadiusMeters: cfg.Geofence.DefaultRadiusMeters,
		MaxBuildings:        cfg.Geofence.MaxBuildings,
		DiscoveryBuffer:     cfg.Geofence.DiscoveryBuffer,
	})

	defaultMode, err := service.ParseMode(cfg.Geofence.DefaultMode)
	if err != nil {
		log.Fatalf("Invalid default mode: %v", err)
	}
	handler := api.NewHandler(
		logger, evaluator, dir, pinger, geocoder, appMetrics, defaultMode, cfg.Geofence.DefaultRadiusMeters,
	)

	// Log that the application has started.
	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	if err = runServer(ctx, logger, api.NewRouter(handler, reg), cfg.HTTP.Port, cfg.HTTP.ShutdownTimeout); err != nil {
		logger.ErrorContext(ctx, "API server failed", "error", err)
		os.Exit(1)
	}

	// Log graceful shutdown completion.
	logger.InfoContext(ctx, "Application stopped gracefully.")
}

// seedExamples loads the demo buildings into an empty directory.
func seedExamples(ctx context.Context, log *slog.Logger, dir *directory.Directory) {
	for _, building := range directory.ExampleBuildings() {
		if _, err := dir.Create(building); err != nil {
			log.ErrorContext(ctx, "Failed to seed example building", "name", building.Name, "error", err)
		}
	}
	log.InfoContext(ctx, "Seeded example buildings", "count", dir.Len())
}

// runServer serves the API until ctx is cancelled and then shuts the server down,
// waiting at most shutdownTimeout for in-flight requests.
func runServer(
	ctx context.Context,
	log *slog.Logger,
	handler http.Handler,
	port int,
	shutdownTimeout time.Duration,
) error {
	readTimeout := 5
	writeTimeout := 30
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.InfoContext(ctx, "Starting API server", "port", port)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	// Log that a shutdown signal has been received.
	log.InfoContext(ctx, "Shutdown signal received. Stopping application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down API server: %w", err)
	}
	return nil
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelInfo,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelWarn,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelError,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)

		log.Error(
			"The env parameter was not specified	 or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}
