package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/legacyping/internal/models"
	"github.com/woozymasta/legacyping/internal/status"
	"github.com/woozymasta/legacyping/internal/vars"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// hostPort reads the host and optional port query params. A missing port is returned as 0.
func hostPort(r *http.Request, requirePort bool) (string, int, string) {
	host := strings.TrimSpace(r.URL.Query().Get("host"))
	portStr := r.URL.Query().Get("port")

	if host == "" || (requirePort && portStr == "") {
		if requirePort {
			return "", 0, "Missing required params (host, port)"
		}
		return "", 0, "Missing host"
	}

	if portStr == "" {
		return host, 0, ""
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return "", 0, "Invalid port"
	}

	return host, port, ""
}

// handleStatus performs a live legacy ping and returns the status as JSON.
// Query params: ?host=play.example.org&port=25565
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	host, port, msg := hostPort(r, false)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	res, err := s.pinger.Query(r.Context(), host, port)
	if err != nil {
		code := http.StatusBadGateway
		switch {
		case errors.Is(err, status.ErrValidation):
			code = http.StatusBadRequest
		case errors.Is(err, status.ErrTimeout):
			code = http.StatusGatewayTimeout
		}

		log.Debug().
			Err(err).
			Str("host", host).
			Int("port", port).
			Msg("Live status query failed")

		writeError(w, code, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// handleTrack queues a server for pinging; the result is stored by a worker.
func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)

	var req models.TrackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Host = strings.TrimSpace(req.Host)
	if req.Host == "" {
		writeError(w, http.StatusBadRequest, "Missing host")
		return
	}
	if req.Port < 0 || req.Port > 65535 {
		writeError(w, http.StatusBadRequest, "Invalid port")
		return
	}

	if !s.Enqueue(req.Host, req.Port) {
		writeError(w, http.StatusServiceUnavailable, "Queue full")
		return
	}

	log.Info().
		Str("host", req.Host).
		Int("port", s.pinger.Port(req.Port)).
		Msg("Server queued for tracking")

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// handleServers returns every tracked server.
func (s *Server) handleServers(w http.ResponseWriter, _ *http.Request) {
	servers, err := s.storage.GetServers()
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch servers")
		http.Error(w, "Database Error", http.StatusInternalServerError)
		return
	}

	if servers == nil {
		servers = []models.Server{}
	}

	writeJSON(w, http.StatusOK, servers)
}

// handleGetServer returns one tracked server.
// Query params: ?host=play.example.org&port=25565
func (s *Server) handleGetServer(w http.ResponseWriter, r *http.Request) {
	host, port, msg := hostPort(r, true)
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	node, err := s.storage.GetServer(host, port)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch server")
		http.Error(w, "Database Error", http.StatusInternalServerError)
		return
	}

	if node == nil {
		http.NotFound(w, r)
		return
	}

	writeJSON(w, http.StatusOK, node)
}

// handleDeleteServer stops tracking a server.
// Query params: ?host=play.example.org&port=25565
func (s *Server) handleDeleteServer(w http.ResponseWriter, r *http.Request) {
	host, port, msg := hostPort(r, true)
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	if err := s.storage.DeleteServer(host, port); err != nil {
		log.Error().Err(err).
			Str("host", host).
			Int("port", port).
			Msg("Failed to delete server")

		http.Error(w, "Database Error", http.StatusInternalServerError)
		return
	}

	log.Info().
		Str("host", host).
		Int("port", port).
		Msg("Server deleted manually")

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "Server deleted"})
}

// handleVersion returns the build information.
func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, vars.Info())
}
