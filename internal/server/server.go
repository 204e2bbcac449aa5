// Package server implements the HTTP API, the background ping workers and the
// periodic refresh of tracked servers.
package server

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog/log"
	"github.com/woozymasta/legacyping/internal/config"
	"github.com/woozymasta/legacyping/internal/game"
	"github.com/woozymasta/legacyping/internal/storage"
)

// New creates a new Server instance with the provided storage, pinger, and configuration.
func New(store *storage.Repository, pinger *game.Pinger, cfg *config.Config) *Server {
	return &Server{
		storage:         store,
		pinger:          pinger,
		authToken:       cfg.Server.AuthToken,
		maxBody:         cfg.Server.MaxBodySize,
		trustProxy:      cfg.Server.TrustProxy,
		workers:         cfg.Server.Workers,
		refreshInterval: cfg.Server.RefreshInterval,
		hardLimitCount:  cfg.RateLimit.HardLimitCount,
		hardLimitWin:    cfg.RateLimit.HardLimitWin,
		softLimitDur:    cfg.RateLimit.SoftLimitDur,

		queue:    make(chan pingJob, cfg.Server.QueueSize),
		shutdown: make(chan struct{}),
	}
}

// StartWorkers starts the ping worker pool, the refresher and the cache cleanup routine.
func (s *Server) StartWorkers() {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}

	if s.refreshInterval > 0 {
		s.loops.Add(1)
		go s.refreshLoop()
	}

	s.loops.Add(1)
	go s.gcSoftLimitCache()
}

// StopWorkers stops the background loops, closes the job queue and waits for pending jobs.
func (s *Server) StopWorkers() {
	close(s.shutdown)
	// loops may still be queueing jobs
	s.loops.Wait()

	close(s.queue)
	s.wg.Wait()
}

// Run configures the HTTP routes and returns the main handler.
func (s *Server) Run() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /api/status", s.RateLimitMiddleware(http.HandlerFunc(s.handleStatus)))
	mux.Handle("GET /api/version", http.HandlerFunc(s.handleVersion))
	mux.Handle("POST /api/servers", AdminAuthMiddleware(s.authToken, http.HandlerFunc(s.handleTrack)))
	mux.Handle("GET /api/servers", AdminAuthMiddleware(s.authToken, http.HandlerFunc(s.handleServers)))
	mux.Handle("GET /api/server", AdminAuthMiddleware(s.authToken, http.HandlerFunc(s.handleGetServer)))
	mux.Handle("DELETE /api/server", AdminAuthMiddleware(s.authToken, http.HandlerFunc(s.handleDeleteServer)))

	return s.LoggingMiddleware(mux)
}

// Enqueue schedules a ping of host:port unless it was queued within the soft limit.
// It reports false when the queue is full.
func (s *Server) Enqueue(host string, port int) bool {
	port = s.pinger.Port(port)
	key := xxhash.Sum64String(net.JoinHostPort(host, strconv.Itoa(port)))

	if val, ok := s.seenCache.Load(key); ok {
		if lastSeen, ok := val.(time.Time); ok && time.Since(lastSeen) < s.softLimitDur {
			log.Trace().
				Str("host", host).
				Int("port", port).
				Msg("Dropped by soft limit hit")
			return true
		}
	}

	select {
	case s.queue <- pingJob{Host: host, Port: port}:
		s.seenCache.Store(key, time.Now())
		return true
	default:
		log.Warn().
			Str("host", host).
			Int("port", port).
			Msg("Queue full, ping dropped")
		return false
	}
}

// worker processes jobs from the ping queue until it is closed.
func (s *Server) worker() {
	defer s.wg.Done()

	for job := range s.queue {
		s.processJob(job)
	}
}

// processJob pings one server and upserts the result, online or not.
func (s *Server) processJob(job pingJob) {
	node, err := s.pinger.Check(context.Background(), job.Host, job.Port)
	if err != nil {
		log.Debug().
			Err(err).
			Str("host", job.Host).
			Int("port", job.Port).
			Msg("Legacy ping failed")
	}

	if err := s.storage.UpsertServer(node); err != nil {
		log.Error().Err(err).Msg("Failed to save server to DB")
		return
	}

	log.Debug().
		Str("host", node.Host).
		Int("port", node.Port).
		Bool("online", node.Online).
		Msg("Server status saved")
}

// refreshLoop re-queues every tracked server each refresh interval.
func (s *Server) refreshLoop() {
	defer s.loops.Done()

	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.shutdown:
			return
		case <-ticker.C:
			servers, err := s.storage.GetServers()
			if err != nil {
				log.Error().Err(err).Msg("Failed to fetch servers for refresh")
				continue
			}

			queued := 0
			for _, srv := range servers {
				select {
				case <-s.shutdown:
					return
				default:
				}
				if s.Enqueue(srv.Host, srv.Port) {
					queued++
				}
			}

			log.Debug().Int("servers", len(servers)).Int("queued", queued).Msg("Refresh scheduled")
		}
	}
}

// gcSoftLimitCache periodically cleans up expired entries from the soft limit cache.
func (s *Server) gcSoftLimitCache() {
	defer s.loops.Done()

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.shutdown:
			return
		case <-ticker.C:
			now := time.Now()
			s.seenCache.Range(func(key, value any) bool {
				if t, ok := value.(time.Time); !ok || now.Sub(t) > s.softLimitDur {
					s.seenCache.Delete(key)
				}
				return true
			})
		}
	}
}
