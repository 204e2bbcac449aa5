// Package config handles the parsing and validation of application configuration
// from command-line arguments and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/woozymasta/legacyping/internal/logger"
	"github.com/woozymasta/legacyping/internal/status"
	"github.com/woozymasta/legacyping/internal/vars"
)

// Config represents the complete application flags configuration.
type Config struct {
	// betteralign:ignore

	Query     Query         `group:"Query Options" env-namespace:"LEGACYPING"`
	Server    Server        `group:"Server Options" env-namespace:"LEGACYPING"`
	Storage   Storage       `group:"Storage Options" namespace:"db" env-namespace:"LEGACYPING_DB"`
	GeoIP     GeoIP         `group:"GeoIP Options" namespace:"geoip" env-namespace:"LEGACYPING_GEOIP"`
	RateLimit RateLimit     `group:"Rate Limit Options" namespace:"rate-limit" env-namespace:"LEGACYPING_RATE_LIMIT"`
	Logger    logger.Config `group:"Logger Options" namespace:"log" env-namespace:"LEGACYPING_LOG"`

	Args struct {
		Host string `positional-arg-name:"host" description:"Query this server once and print its status as JSON"`
	} `positional-args:"yes"`

	Version bool `short:"v" long:"version" description:"Print version and build info"`
}

// Query holds the legacy ping options shared by one-shot queries and the service.
type Query struct {
	// betteralign:ignore

	Port            int           `short:"p" long:"port" env:"PORT" description:"Server port used when no SRV record is found" default:"25565"`
	ProtocolVersion int           `long:"protocol" env:"PROTOCOL" description:"Protocol version, accepted for symmetry with newer formats" default:"47"`
	Timeout         time.Duration `long:"timeout" env:"TIMEOUT" description:"Overall query timeout" default:"5s"`
	NoSRV           bool          `long:"no-srv" env:"NO_SRV" description:"Disable _minecraft._tcp SRV lookups"`
	DNSServers      []string      `long:"dns-server" env:"DNS_SERVERS" env-delim:"," description:"DNS server (host:port) for SRV lookups, defaults to /etc/resolv.conf"`
}

// Server holds web server and tracking configuration.
type Server struct {
	// betteralign:ignore

	Address         string        `short:"l" long:"address" env:"LISTEN_ADDRESS" description:"Server listen address" default:":8080"`
	AuthToken       string        `short:"t" long:"auth-token" env:"AUTH_TOKEN" description:"Admin authentication token"`
	MaxBodySize     int64         `long:"max-body-size" env:"MAX_BODY_SIZE" description:"Max body size for incoming requests" default:"512"`
	TrustProxy      bool          `long:"trust-proxy" env:"TRUST_PROXY" description:"Trust X-Forwarded-For headers"`
	Workers         int           `long:"workers" env:"WORKERS" description:"Background ping workers" default:"10"`
	QueueSize       int           `long:"queue-size" env:"QUEUE_SIZE" description:"Pending ping jobs buffer" default:"1000"`
	RefreshInterval time.Duration `long:"refresh-interval" env:"REFRESH_INTERVAL" description:"Re-ping tracked servers every interval, 0 disables" default:"5m"`
}

// Storage holds database configuration and maintenance tasks.
type Storage struct {
	// betteralign:ignore

	Path          string `short:"d" long:"path" env:"PATH" description:"Path to SQLite database" default:"legacyping.db"`
	PruneOffline  bool   `long:"prune-offline" description:"Delete servers whose last ping failed"`
	CheckOffline  bool   `long:"check-offline" description:"Re-check offline servers. Update if UP, delete if DOWN"`
	CheckAll      bool   `long:"check-all" description:"Re-check ALL servers. Update if UP, delete if DOWN"`
	GenerateCount int    `long:"gen-fake-data" hidden:"true"`
}

// GeoIP holds MaxMind GeoIP configuration.
type GeoIP struct {
	// betteralign:ignore

	Path     string        `short:"g" long:"path" env:"PATH" description:"Path to MMDB file" default:"legacyping.mmdb"`
	URL      string        `long:"url" env:"URL" description:"URL to download MMDB" default:"https://git.io/GeoLite2-Country.mmdb"`
	Interval time.Duration `long:"interval" env:"INTERVAL" description:"Update interval check" default:"24h"`
}

// RateLimit holds API rate limiting configuration.
type RateLimit struct {
	// betteralign:ignore

	HardLimitCount int           `long:"hard-count" env:"HARD_COUNT" description:"Hard IP limit: live status requests count" default:"8"`
	HardLimitWin   time.Duration `long:"hard-window" env:"HARD_WINDOW" description:"Hard IP limit: window duration" default:"1m"`
	SoftLimitDur   time.Duration `long:"soft" env:"SOFT" description:"Soft limit: skip re-ping of a tracked server seen within duration" default:"30s"`
}

// Options converts the query flags to status options.
func (q Query) Options() []status.Option {
	return []status.Option{
		status.WithPort(q.Port),
		status.WithProtocolVersion(q.ProtocolVersion),
		status.WithTimeout(q.Timeout),
		status.WithSRV(!q.NoSRV),
	}
}

// Client builds a status client honouring the configured DNS servers.
func (q Query) Client() *status.Client {
	return &status.Client{
		Resolver: status.NewDNSResolver(q.DNSServers...),
		Dialer:   status.TCPDialer{},
	}
}

// Maintenance reports whether a maintenance task was requested.
func (c *Config) Maintenance() bool {
	return c.Storage.PruneOffline || c.Storage.CheckOffline || c.Storage.CheckAll
}

// Parse reads the configuration from flags and environment variables.
// It terminates the application if the configuration is invalid or if the help flag is invoked.
func Parse() *Config {
	cfg, err := parse(os.Args[1:], flags.Default)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
			// already printed by the parser
			os.Exit(1)
		}

		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if cfg.Version {
		vars.Fprint(os.Stdout)
		os.Exit(0)
	}

	return cfg
}

// ParseArgs parses args without printing or exiting.
func ParseArgs(args []string) (*Config, error) {
	return parse(args, flags.HelpFlag|flags.PassDoubleDash)
}

func parse(args []string, options flags.Options) (*Config, error) {
	var cfg Config
	parser := flags.NewParser(&cfg, options)
	parser.NamespaceDelimiter = "-"

	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	if cfg.Version {
		return &cfg, nil
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if _, err := status.NewOptions(c.Query.Options()...); err != nil {
		return err
	}

	if c.Args.Host != "" || c.Maintenance() || c.Storage.GenerateCount > 0 {
		return nil
	}

	if c.Server.AuthToken == "" {
		return errors.New("required flag `-t, --auth-token' or environment variable `LEGACYPING_AUTH_TOKEN` was not specified")
	}
	if c.Server.Workers < 1 {
		return fmt.Errorf("expected --workers to be positive, got %d", c.Server.Workers)
	}
	if c.Server.QueueSize < 1 {
		return fmt.Errorf("expected --queue-size to be positive, got %d", c.Server.QueueSize)
	}
	if c.RateLimit.HardLimitCount < 1 || c.RateLimit.HardLimitWin <= 0 {
		return errors.New("expected positive --rate-limit-hard-count and --rate-limit-hard-window")
	}

	return nil
}
