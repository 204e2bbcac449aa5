// Package game pings tracked Minecraft servers with the legacy status protocol
// and converts the outcome into storage records.
package game

import (
	"context"
	"slices"
	"time"

	"github.com/woozymasta/legacyping/internal/config"
	"github.com/woozymasta/legacyping/internal/models"
	"github.com/woozymasta/legacyping/internal/status"
)

// CountryLookup resolves an "ip:port" address to an ISO country code.
type CountryLookup interface {
	CountryCode(addr string) string
}

// Pinger queries servers with a fixed set of status options.
type Pinger struct {
	client      *status.Client
	geo         CountryLookup
	options     []status.Option
	defaultPort int
}

// NewPinger builds a pinger from the query flags. geo may be nil.
func NewPinger(q config.Query, geo CountryLookup) *Pinger {
	return &Pinger{
		client:      q.Client(),
		geo:         geo,
		options:     q.Options(),
		defaultPort: q.Port,
	}
}

// Port returns port, or the configured default when port is zero.
func (p *Pinger) Port(port int) int {
	if port == 0 {
		return p.defaultPort
	}

	return port
}

// Query performs one legacy status query against host:port.
func (p *Pinger) Query(ctx context.Context, host string, port int) (*status.StatusResponse, error) {
	opts := append(slices.Clone(p.options), status.WithPort(p.Port(port)))
	return p.client.GetLegacyStatus(ctx, host, opts...)
}

// Check pings host:port and returns the record to store, online or not, with the query error.
func (p *Pinger) Check(ctx context.Context, host string, port int) (models.Server, error) {
	port = p.Port(port)
	node := models.Server{
		Host:     host,
		Port:     port,
		LastSeen: time.Now().UTC(),
	}

	res, err := p.Query(ctx, host, port)
	if err != nil {
		node.LastError = err.Error()
		return node, err
	}

	node.Online = true
	node.Address = res.Address
	node.MOTD = res.MOTD.Raw
	node.MOTDClean = res.MOTD.Clean
	node.Players = res.Players.Online
	node.MaxPlayers = res.Players.Max
	node.LatencyMS = res.RoundTripLatency
	if res.SRVRecord != nil {
		node.SRVHost = res.SRVRecord.Host
		node.SRVPort = int(res.SRVRecord.Port)
	}
	if p.geo != nil {
		node.CountryCode = p.geo.CountryCode(res.Address)
	}

	return node, nil
}
