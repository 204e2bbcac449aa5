package server

import (
	"sync"
	"time"

	"github.com/woozymasta/legacyping/internal/game"
	"github.com/woozymasta/legacyping/internal/storage"
)

// Server holds the dependencies, configuration, and runtime state required
// to handle HTTP requests and background ping processing.
type Server struct {
	// storage provides access to the tracked servers and their latest ping results.
	storage *storage.Repository

	// pinger runs legacy status queries and converts them into storage records.
	pinger *game.Pinger

	// queue is a buffered channel passing ping jobs from HTTP handlers and the
	// refresher to background workers.
	queue chan pingJob

	// shutdown is closed to stop the refresher and cache cleanup goroutines.
	shutdown chan struct{}

	// seenCache maps the xxhash of "host:port" to the time the server was last
	// queued. It backs the soft limit that skips redundant pings.
	seenCache sync.Map

	// authToken is the secret token required to access administrative API endpoints.
	authToken string

	// wg waits for the ping workers to drain the queue on shutdown.
	wg sync.WaitGroup

	// loops waits for the refresher and cache cleanup goroutines.
	loops sync.WaitGroup

	// maxBody is the maximum accepted request body size in bytes.
	maxBody int64

	// hardLimitCount is the number of live status requests allowed per IP within hardLimitWin.
	hardLimitCount int

	// hardLimitWin is the time window of the hard rate limiter.
	hardLimitWin time.Duration

	// softLimitDur is how long a queued server is not queued again.
	softLimitDur time.Duration

	// refreshInterval re-queues every tracked server periodically, zero disables it.
	refreshInterval time.Duration

	// workers is the size of the ping worker pool.
	workers int

	// trustProxy indicates whether X-Forwarded-For or CF-Connecting-IP is used
	// to determine the client's real IP address.
	trustProxy bool
}

// pingJob is a server waiting to be pinged and stored.
type pingJob struct {
	Host string
	Port int
}
