package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"googlemaps.github.io/maps"

	"github.com/pelorus-nav/searisk/internal/config"
	delivery "github.com/pelorus-nav/searisk/internal/delivery/http"
	"github.com/pelorus-nav/searisk/internal/incidents"
	"github.com/pelorus-nav/searisk/internal/metrics"
	"github.com/pelorus-nav/searisk/internal/ports"
	"github.com/pelorus-nav/searisk/internal/risk"
	"github.com/pelorus-nav/searisk/internal/routing"
	"github.com/pelorus-nav/searisk/internal/service"
	"github.com/pelorus-nav/searisk/internal/weather"
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

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	// Initialize the incident dataset source. The pool stays nil on the CSV
	// backend; the health check skips the ping then.
	var pool *pgxpool.Pool
	var source incidents.Source
	if cfg.IncidentSource == "postgres" {
		var err error
		pool, err = pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("Failed to connect to DB: %v", err)
		}
		defer pool.Close()
		source = incidents.NewPostgresSource(pool, logger)
	} else {
		source = incidents.NewCSVSource(cfg.IncidentPath, logger)
	}

	// A failed initial load is degraded operation, not a startup failure:
	// the store stays usable with an empty index and zero incident signal.
	store, err := incidents.NewStore(ctx, source, logger)
	if err != nil {
		logger.WarnContext(ctx, "Incident dataset load failed, starting with empty index", "error", err)
	}
	observeIncidentStats(appMetrics, store.Stats())
	if cfg.ReloadInterval > 0 {
		go store.Watch(ctx, cfg.ReloadInterval)
	}

	weatherProvider, err := weather.NewProvider(weather.ProviderConfig{
		Type:      weather.ProviderType(cfg.WeatherProvider),
		APIKey:    cfg.WeatherAPIKey,
		RateLimit: cfg.WeatherRateLimit,
		Timeout:   cfg.ProviderTimeout,
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("Failed to create weather provider: %v", err)
	}

	routingProvider, err := routing.NewProvider(routing.ProviderConfig{
		Type:    routing.ProviderType(cfg.RoutingProvider),
		BaseURL: cfg.RoutingURL,
		Timeout: cfg.ProviderTimeout,
		Logger:  logger,
	})
	if err != nil {
		log.Fatalf("Failed to create routing provider: %v", err)
	}

	var geocoder ports.Geocoder
	if cfg.GeocoderAPIKey != "" {
		mapsClient, mapsErr := maps.NewClient(maps.WithAPIKey(cfg.GeocoderAPIKey))
		if mapsErr != nil {
			log.Fatalf("Failed to create geocoding client: %v", mapsErr)
		}
		geocoder = ports.NewMapsGeocoder(mapsClient, logger)
	}

	resolver, err := ports.NewResolver(cfg.PortIndexPath, geocoder, logger)
	if err != nil {
		log.Fatalf("Failed to load port index: %v", err)
	}

	logger.InfoContext(ctx, "Providers initialized",
		"weather", cfg.WeatherProvider, "routing", cfg.RoutingProvider, "ports", resolver.Count())

	assessor := service.NewAssessmentService(
		logger,
		resolver,
		routingProvider,
		cfg.RoutingProvider, // Provider name for metrics
		weatherProvider,
		cfg.WeatherProvider,
		store,
		appMetrics,
		service.Config{
			Scorer: risk.Config{
				RadiusKm:        cfg.Risk.RadiusKm,
				IncidentWeight:  cfg.Risk.IncidentWeight,
				WeatherWeight:   cfg.Risk.WeatherWeight,
				ScoreCap:        cfg.Risk.ScoreCap,
				ModerateWindKph: cfg.Risk.ModerateWindKph,
				SevereWindKph:   cfg.Risk.SevereWindKph,
			},
			Classifier: risk.ClassifierConfig{
				IntervalKm:           cfg.Risk.IntervalKm,
				CautionThreshold:     cfg.Risk.CautionThreshold,
				HighRiskThreshold:    cfg.Risk.HighRiskThreshold,
				WeatherMaxDistanceKm: cfg.Risk.WeatherMaxDistanceKm,
			},
			WeatherSamples: cfg.WeatherSamples,
			NumWorkers:     cfg.Workers,
		},
	)

	handler := delivery.NewHandler(
		logger,
		assessor,
		resolver,
		&meteredStore{Store: store, metrics: appMetrics},
		cfg.MaxAlternatives,
	)
	app := delivery.NewApp(logger, handler)

	// Log that the application has started.
	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	// Start the monitoring server in a goroutine to allow main to listen for signals.
	go startMonitoringServer(ctx, logger, reg, pool, cfg.MonitorPort)

	go func() {
		if listenErr := app.Listen(fmt.Sprintf(":%d", cfg.HTTPPort)); listenErr != nil {
			logger.ErrorContext(ctx, "API server failed", "error", listenErr)
			stop()
		}
	}()

	// Wait for the context to be canceled (e.g., by Ctrl+C).
	<-ctx.Done()

	// Log that a shutdown signal has been received.
	logger.InfoContext(ctx, "Shutdown signal received. Stopping application...")

	if err = app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		logger.ErrorContext(ctx, "API server forced to shutdown", "error", err)
	}

	// Log graceful shutdown completion.
	logger.InfoContext(ctx, "Application stopped gracefully.")
}

// meteredStore refreshes the dataset gauges whenever the admin endpoint
// triggers a reload.
type meteredStore struct {
	*incidents.Store
	metrics *metrics.Metrics
}

func (m *meteredStore) Reload(ctx context.Context) error {
	err := m.Store.Reload(ctx)
	m.metrics.IncidentReloads.Inc()
	observeIncidentStats(m.metrics, m.Store.Stats())

	return err
}

func observeIncidentStats(appMetrics *metrics.Metrics, stats incidents.Stats) {
	appMetrics.IncidentsLoaded.Set(float64(stats.Count))
	appMetrics.IncidentsSkipped.Set(float64(stats.Skipped))
}

// startMonitoringServer starts an HTTP server that provides health check and metrics endpoints.
// It listens on the specified port and logs the server's status and any errors encountered.
//
// Parameters:
// - ctx: A context.Context for managing cancellation and timeouts.
// - log: A logger for logging server events and errors.
// - reg: A registry with Prometheus collectors.
// - dtb: A pgxpool connector for database methods (ping), nil on the CSV backend.
// - port: The port number on which the server will listen.
func startMonitoringServer(
	ctx context.Context,
	log *slog.Logger,
	reg *prometheus.Registry,
	dtb *pgxpool.Pool,
	port int,
) {
	http.HandleFunc("/healthz", func(writer http.ResponseWriter, _ *http.Request) {
		log.DebugContext(ctx, "Performing health checks...")
		status, body := http.StatusOK, "OK"
		if dtb != nil {
			if err := dtb.Ping(ctx); err != nil {
				status, body = http.StatusServiceUnavailable, "DB ping failed"
			}
		}
		writer.WriteHeader(status)
		_, err := writer.Write([]byte(body))
		if err != nil {
			log.ErrorContext(ctx, "failed to write reply", "error", err)
		}

		log.DebugContext(ctx, "Health checks completed", "status", status)
	})
	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	log.InfoContext(ctx, "Starting monitoring server", "port", port)
	readTimeout := 5
	writeTimeout := 10
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      http.DefaultServeMux,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}
	if err := server.ListenAndServe(); err != nil {
		log.ErrorContext(ctx, "Monitoring server failed", "error", err)
	}
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
