package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/woozymasta/legacyping/internal/config"
	"github.com/woozymasta/legacyping/internal/fake"
	"github.com/woozymasta/legacyping/internal/status"
)

type staticCountry string

func (c staticCountry) CountryCode(string) string { return string(c) }

func testQuery() config.Query {
	return config.Query{Port: 25565, ProtocolVersion: 47, Timeout: 2 * time.Second, NoSRV: true}
}

func TestPinger_CheckOnline(t *testing.T) {
	srv, err := fake.NewServer(fake.LegacyReply("§bLobby", 4, 40))
	if err != nil {
		t.Fatalf("start fake server: %v", err)
	}
	defer func() { _ = srv.Close() }()

	p := NewPinger(testQuery(), staticCountry("NL"))

	node, err := p.Check(context.Background(), srv.Host(), srv.Port())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !node.Online || node.MOTD != "§bLobby" || node.MOTDClean != "Lobby" || node.Players != 4 || node.MaxPlayers != 40 {
		t.Fatalf("unexpected record: %+v", node)
	}
	if node.CountryCode != "NL" || node.Port != srv.Port() || node.Address == "" || node.LastError != "" {
		t.Fatalf("unexpected record: %+v", node)
	}
}

func TestPinger_CheckOffline(t *testing.T) {
	srv, err := fake.NewServer(fake.LegacyFrame(0x00, "nope"))
	if err != nil {
		t.Fatalf("start fake server: %v", err)
	}
	defer func() { _ = srv.Close() }()

	p := NewPinger(testQuery(), nil)

	node, err := p.Check(context.Background(), srv.Host(), srv.Port())
	if !errors.Is(err, status.ErrProtocol) {
		t.Fatalf("expected ErrProtocol, got %v", err)
	}
	if node.Online || node.LastError == "" || node.Host != srv.Host() || node.LastSeen.IsZero() {
		t.Fatalf("unexpected record: %+v", node)
	}
}

func TestPinger_DefaultPort(t *testing.T) {
	p := NewPinger(testQuery(), nil)
	if p.Port(0) != 25565 || p.Port(1234) != 1234 {
		t.Fatalf("Port: %d %d", p.Port(0), p.Port(1234))
	}
}
