package logger

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func restoreGlobal(t *testing.T) {
	prev, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	})
}

func TestSetup_JSONFile(t *testing.T) {
	restoreGlobal(t)

	path := filepath.Join(t.TempDir(), "legacyping.log")
	Setup(Config{Level: "debug", Format: "json", Output: path})

	l := Component("pinger")
	l.Debug().Str("host", "play.example.org").Msg("hello")
	l = Component("pinger")
	l.Trace().Msg("filtered")

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer func() { _ = f.Close() }()

	var lines []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var entry map[string]any
		if err := json.Unmarshal(sc.Bytes(), &entry); err != nil {
			t.Fatalf("not JSON: %q", sc.Text())
		}
		lines = append(lines, entry)
	}

	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1", len(lines))
	}
	if lines[0]["component"] != "pinger" || lines[0]["message"] != "hello" || lines[0]["level"] != "debug" {
		t.Fatalf("unexpected entry: %v", lines[0])
	}
}

func TestSetup_UnknownLevel(t *testing.T) {
	restoreGlobal(t)

	Setup(Config{Level: "loud", Format: "console", Output: "stderr"})
	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Fatalf("level = %s, want info", zerolog.GlobalLevel())
	}
}
