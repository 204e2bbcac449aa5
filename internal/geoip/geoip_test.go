package geoip

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestEnsureDB_Downloads(t *testing.T) {
	var userAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.UserAgent()
		_, _ = w.Write([]byte("mmdb"))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "country.mmdb")
	if err := EnsureDB(context.Background(), path, srv.URL, time.Hour); err != nil {
		t.Fatalf("EnsureDB: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil || string(data) != "mmdb" {
		t.Fatalf("downloaded %q, %v", data, err)
	}
	if !strings.HasPrefix(userAgent, "legacyping/") {
		t.Fatalf("User-Agent = %q", userAgent)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temporary file left behind: %v", err)
	}
}

func TestEnsureDB_UpToDate(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "country.mmdb")
	if err := os.WriteFile(path, []byte("old"), 0600); err != nil {
		t.Fatal(err)
	}

	if err := EnsureDB(context.Background(), path, srv.URL, time.Hour); err != nil {
		t.Fatalf("EnsureDB: %v", err)
	}
	if hits != 0 {
		t.Fatalf("fresh database downloaded again")
	}
}

func TestEnsureDB_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "country.mmdb")
	if err := EnsureDB(context.Background(), path, srv.URL, time.Hour); err == nil {
		t.Fatal("expected error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("database file created on failure: %v", err)
	}
}

func TestParseIP(t *testing.T) {
	tests := map[string]string{
		"203.0.113.7:25565":   "203.0.113.7",
		"203.0.113.7":         "203.0.113.7",
		"[2001:db8::1]:25565": "2001:db8::1",
		"play.example.org":    "<nil>",
	}

	for in, want := range tests {
		if got := ParseIP(in).String(); got != want {
			t.Errorf("ParseIP(%q) = %s, want %s", in, got, want)
		}
	}
}
