// main is the entry point of legacyping.
// With a host argument it queries that server once and prints its status as JSON.
// Otherwise it opens the database and GeoIP provider, then runs a maintenance
// task or the tracking HTTP service.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/legacyping/internal/config"
	"github.com/woozymasta/legacyping/internal/fake"
	"github.com/woozymasta/legacyping/internal/game"
	"github.com/woozymasta/legacyping/internal/geoip"
	"github.com/woozymasta/legacyping/internal/logger"
	"github.com/woozymasta/legacyping/internal/maintenance"
	"github.com/woozymasta/legacyping/internal/server"
	"github.com/woozymasta/legacyping/internal/storage"
)

func main() {
	cfg := config.Parse()

	logger.Setup(cfg.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Args.Host != "" {
		code := queryOnce(ctx, cfg)
		stop()
		os.Exit(code)
	}

	log.Info().Msg("Starting legacyping service...")

	// GeoIP Update
	log.Info().Msg("Checking GeoIP database...")
	if err := geoip.EnsureDB(ctx, cfg.GeoIP.Path, cfg.GeoIP.URL, cfg.GeoIP.Interval); err != nil {
		log.Error().Err(err).Msg("Failed to download GeoIP database")
	}

	var countries game.CountryLookup
	geoProvider, err := geoip.Open(cfg.GeoIP.Path)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open GeoIP database, country detection disabled")
	} else {
		countries = geoProvider
		defer func() {
			if err := geoProvider.Close(); err != nil {
				log.Error().Err(err).Msg("Error closing GeoIP provider")
			}
		}()
	}

	// Database
	store, err := storage.New(cfg.Storage.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database")
		}
	}()

	pinger := game.NewPinger(cfg.Query, countries)

	// data generation or database maintenance
	if cfg.Storage.GenerateCount > 0 {
		fake.GenerateData(store, cfg.Storage.GenerateCount)
		return
	} else if maintenance.Run(ctx, cfg, store, pinger) {
		return
	}

	srvHandler := server.New(store, pinger, cfg)
	srvHandler.StartWorkers()

	httpServer := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: srvHandler.Run(),
		// live status requests may take up to the query timeout
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.Query.Timeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("address", cfg.Server.Address).Msg("Server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful Shutdown
	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop workers (wait queue done)
	srvHandler.StopWorkers()

	log.Info().Msg("Server exited")
}

// queryOnce pings cfg.Args.Host and prints the status to stdout. It returns the exit code.
func queryOnce(ctx context.Context, cfg *config.Config) int {
	pinger := game.NewPinger(cfg.Query, nil)

	res, err := pinger.Query(ctx, cfg.Args.Host, cfg.Query.Port)
	if err != nil {
		log.Error().Err(err).Str("host", cfg.Args.Host).Msg("Status query failed")
		return 1
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		log.Error().Err(err).Msg("Failed to write status")
		return 1
	}

	return 0
}
