// Package maintenance provides tools to clean and re-check the tracked servers database.
package maintenance

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/legacyping/internal/config"
	"github.com/woozymasta/legacyping/internal/game"
	"github.com/woozymasta/legacyping/internal/models"
	"github.com/woozymasta/legacyping/internal/storage"
)

const workers = 10

// Run checks if any maintenance flags are set and executes the corresponding task.
// Returns true if a maintenance task was executed (indicating the program should exit).
func Run(ctx context.Context, cfg *config.Config, store *storage.Repository, pinger *game.Pinger) bool {
	if cfg.Storage.PruneOffline {
		log.Info().Msg("Pruning offline servers...")

		count, err := store.DeleteOfflineServers()
		if err != nil {
			log.Error().Err(err).Msg("Failed to prune servers")
		} else {
			log.Info().Int64("deleted", count).Msg("Prune finished")
		}

		return true
	}

	var taskName string
	var onlyOffline bool

	switch {
	case cfg.Storage.CheckOffline:
		taskName, onlyOffline = "Check Offline", true
	case cfg.Storage.CheckAll:
		taskName = "Check All"
	default:
		return false
	}

	servers, err := store.GetServersSubset(onlyOffline)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch servers")
		return true
	}

	if len(servers) == 0 {
		log.Info().Msg("No servers found for maintenance")
		return true
	}

	log.Info().Int("count", len(servers)).Int("workers", workers).Msgf("Starting '%s' task...", taskName)
	runWorkerPool(ctx, servers, store, pinger)
	log.Info().Msg("Maintenance task completed")

	return true
}

func runWorkerPool(ctx context.Context, servers []models.Server, store *storage.Repository, pinger *game.Pinger) {
	jobs := make(chan models.Server, len(servers))
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for node := range jobs {
				if ctx.Err() != nil {
					continue
				}
				processServer(ctx, node, store, pinger)
			}
		}()
	}

	for _, s := range servers {
		jobs <- s
	}
	close(jobs)

	wg.Wait()
}

// processServer re-pings one server: updated when it answers, deleted when it does not.
func processServer(ctx context.Context, node models.Server, store *storage.Repository, pinger *game.Pinger) {
	logCtx := log.With().
		Str("host", node.Host).
		Int("port", node.Port).
		Logger()

	checked, err := pinger.Check(ctx, node.Host, node.Port)
	if err != nil {
		logCtx.Debug().Err(err).Msg("Server unreachable, deleting")
		if err := store.DeleteServer(node.Host, node.Port); err != nil {
			logCtx.Error().Err(err).Msg("Failed to delete unreachable server")
		}
		return
	}

	if err := store.UpsertServer(checked); err != nil {
		logCtx.Error().Err(err).Msg("Failed to update server")
	} else {
		logCtx.Trace().Msg("Server updated successfully")
	}
}
