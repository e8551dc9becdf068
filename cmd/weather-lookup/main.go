package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/valkey-io/valkey-go"

	httpapi "github.com/i474232898/weather-lookup/internal/api/http"
	"github.com/i474232898/weather-lookup/internal/config"
	"github.com/i474232898/weather-lookup/internal/logger"
	"github.com/i474232898/weather-lookup/internal/scheduler"
	"github.com/i474232898/weather-lookup/internal/store"
	"github.com/i474232898/weather-lookup/internal/weather"
	"github.com/i474232898/weather-lookup/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.LogLevel)
	slog.SetDefault(appLogger)
	clk := clock.NewClock()

	// Shared HTTP client for outbound geocoder and forecast calls.
	httpCfg := providers.HTTPClientConfig{
		Client:    &http.Client{Timeout: cfg.HTTPTimeout},
		UserAgent: cfg.UserAgent,
	}

	var geocoder weather.Geocoder
	switch cfg.Geocoder {
	case config.GeocoderGoogle:
		geocoder = providers.NewGoogleGeocoder(cfg.GoogleGeocoderKey)
	default:
		geocoder = providers.NewNominatimGeocoder(httpCfg, cfg.NominatimBaseURL)
	}

	var provider weather.Provider
	switch cfg.WeatherProvider {
	case config.ProviderOpenMeteo:
		provider = providers.NewOpenMeteoProvider(httpCfg, cfg.OpenMeteoBaseURL)
	default:
		provider = providers.NewMetNoProvider(httpCfg, cfg.MetNoBaseURL)
	}

	service := weather.NewService(weather.NewResolver(geocoder), provider, clk, appLogger)

	prefs, err := openStore(cfg, clk)
	if err != nil {
		appLogger.Error("failed to open preferences store", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	defer prefs.Close()

	// Scheduler that periodically drops stale preference records.
	sched := scheduler.New(prefs, cfg.PruneInterval, cfg.PreferencesMaxAge, clk, appLogger)
	// os.Exit skips deferred calls, so the store is closed here on failure.
	if err := startOrClose(sched.Start, prefs); err != nil {
		appLogger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	app := httpapi.NewApp(httpapi.Options{
		Service:         service,
		Preferences:     prefs,
		Logger:          appLogger,
		DefaultLanguage: cfg.DefaultLanguage,
		LookupTimeout:   cfg.LookupTimeout,
		RequestLog:      true,
	})

	// Start server with graceful shutdown
	go func() {
		appLogger.Info("listening",
			"port", cfg.Port,
			"geocoder", geocoder.Name(),
			"provider", provider.Name(),
			"store", cfg.StoreBackend,
		)
		if err := app.Listen(":" + cfg.Port); err != nil {
			appLogger.Error("fiber server stopped", "error", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.Error("error during shutdown", "error", err)
	}
}

// startOrClose runs start and closes c when start fails.
func startOrClose(start func() error, c io.Closer) error {
	if err := start(); err != nil {
		return errors.Join(err, c.Close())
	}
	return nil
}

func openStore(cfg *config.AppConfig, clk clock.Clock) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.StoreSQLite:
		st, err := store.NewSQLiteStore(cfg.SQLitePath, clk)
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.StoreValkey:
		client, err := valkey.NewClient(valkey.ClientOption{InitAddress: []string{cfg.ValkeyAddr}})
		if err != nil {
			return nil, err
		}
		return store.NewValkeyStore(client, cfg.ValkeyPrefix, cfg.PreferencesMaxAge, clk), nil
	default:
		return store.NewMemoryStore(clk), nil
	}
}
