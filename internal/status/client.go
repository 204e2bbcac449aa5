// Package status queries Minecraft servers for their public status using the
// legacy Beta 1.8 - 1.3.2 Server List Ping.
package status

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Client runs status queries. The zero value uses DNS SRV lookups and plain TCP.
type Client struct {
	Resolver Resolver
	Dialer   Dialer
}

// NewClient returns a client with the system DNS resolver and a TCP dialer.
func NewClient() *Client {
	return &Client{
		Resolver: NewDNSResolver(),
		Dialer:   TCPDialer{},
	}
}

// GetLegacyStatus queries host with a default client.
func GetLegacyStatus(ctx context.Context, host string, opts ...Option) (*StatusResponse, error) {
	return NewClient().GetLegacyStatus(ctx, host, opts...)
}

// GetLegacyStatus resolves host, performs one legacy ping exchange and assembles the response.
// A single deadline of Options.Timeout bounds resolution, connect and every read.
// The connection is always released before returning.
func (c *Client) GetLegacyStatus(ctx context.Context, host string, opts ...Option) (*StatusResponse, error) {
	if host == "" {
		return nil, fmt.Errorf("%w: expected host to have content, got an empty string", ErrValidation)
	}

	o, err := NewOptions(opts...)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, o.Timeout)
	defer cancel()

	var srv *SRVRecord
	if o.EnableSRV && !isIPv4Literal(host) {
		srv, err = c.resolver().LookupSRV(ctx, host)
		if err != nil {
			return nil, err
		}
	}

	target, port := host, o.Port
	if srv != nil {
		target, port = srv.Host, int(srv.Port)
		log.Trace().
			Str("host", host).
			Str("srv_host", srv.Host).
			Uint16("srv_port", srv.Port).
			Msg("Using SRV record")
	}

	start := time.Now()

	conn, err := c.dialer().Dial(ctx, target, port, o.Timeout)
	if err != nil {
		return nil, err
	}
	defer func() { _ = conn.Destroy() }()

	reply, err := readLegacyReply(conn)
	if err != nil {
		return nil, err
	}

	return newStatusResponse(host, o.Port, srv, conn.RemoteAddr(), reply, time.Since(start)), nil
}

func (c *Client) resolver() Resolver {
	if c.Resolver == nil {
		return NewDNSResolver()
	}

	return c.Resolver
}

func (c *Client) dialer() Dialer {
	if c.Dialer == nil {
		return TCPDialer{}
	}

	return c.Dialer
}
