package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/woozymasta/legacyping/internal/status"
)

func TestParseArgs_QueryDefaults(t *testing.T) {
	cfg, err := ParseArgs([]string{"play.example.org"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Args.Host != "play.example.org" {
		t.Fatalf("host = %q", cfg.Args.Host)
	}

	opts, err := status.NewOptions(cfg.Query.Options()...)
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if opts != status.DefaultOptions() {
		t.Fatalf("got %+v, want defaults", opts)
	}
	if cfg.Storage.Path != "legacyping.db" || cfg.Server.Workers != 10 {
		t.Fatalf("unexpected defaults: %+v %+v", cfg.Storage, cfg.Server)
	}
}

func TestParseArgs_QueryOverrides(t *testing.T) {
	cfg, err := ParseArgs([]string{
		"--port", "25570", "--timeout", "750ms", "--no-srv", "--protocol", "39",
		"--dns-server", "127.0.0.1:5353", "10.0.0.5",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	opts, err := status.NewOptions(cfg.Query.Options()...)
	if err != nil {
		t.Fatalf("options: %v", err)
	}

	want := status.Options{Port: 25570, ProtocolVersion: 39, Timeout: 750 * time.Millisecond, EnableSRV: false}
	if opts != want {
		t.Fatalf("got %+v, want %+v", opts, want)
	}
	if len(cfg.Query.DNSServers) != 1 || cfg.Query.DNSServers[0] != "127.0.0.1:5353" {
		t.Fatalf("dns servers = %v", cfg.Query.DNSServers)
	}
}

func TestParseArgs_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
		wantMsg string
	}{
		{
			name:    "service without token",
			args:    []string{},
			wantMsg: "--auth-token",
		},
		{
			name:    "port out of range",
			args:    []string{"--port", "70000", "play.example.org"},
			wantErr: status.ErrValidation,
		},
		{
			name:    "zero timeout",
			args:    []string{"--timeout", "0s", "play.example.org"},
			wantErr: status.ErrValidation,
		},
		{
			name:    "zero workers",
			args:    []string{"-t", "secret", "--workers", "0"},
			wantMsg: "--workers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseArgs(tt.args)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Fatalf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestParseArgs_Maintenance(t *testing.T) {
	cfg, err := ParseArgs([]string{"--db-check-all", "--db-path", "/tmp/x.db"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Maintenance() || cfg.Storage.Path != "/tmp/x.db" {
		t.Fatalf("unexpected storage config: %+v", cfg.Storage)
	}
}

func TestParseArgs_Service(t *testing.T) {
	cfg, err := ParseArgs([]string{"-t", "secret", "--geoip-interval", "1h", "--rate-limit-soft", "1m"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.AuthToken != "secret" || cfg.GeoIP.Interval != time.Hour || cfg.RateLimit.SoftLimitDur != time.Minute {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}
