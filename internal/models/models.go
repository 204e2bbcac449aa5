// Package models defines the data structures used for API requests and database persistence.
package models

import "time"

// TrackRequest asks the service to start tracking a server.
type TrackRequest struct {
	Host string `json:"host"`
	Port int    `json:"port,omitempty"`
}

// Server is a tracked game server with the result of its latest ping.
type Server struct {
	FirstSeen   time.Time `json:"first_seen"`
	LastSeen    time.Time `json:"last_seen"`
	LastOnline  time.Time `json:"last_online"`
	Host        string    `json:"host"`
	Address     string    `json:"address"`
	CountryCode string    `json:"country_code"`
	SRVHost     string    `json:"srv_host,omitempty"`
	MOTD        string    `json:"motd"`
	MOTDClean   string    `json:"motd_clean"`
	LastError   string    `json:"last_error,omitempty"`
	Port        int       `json:"port"`
	SRVPort     int       `json:"srv_port,omitempty"`
	LatencyMS   int64     `json:"latency_ms"`
	Count       int64     `json:"count"`
	Players     int32     `json:"players"`
	MaxPlayers  int32     `json:"max_players"`
	Online      bool      `json:"online"`
}
