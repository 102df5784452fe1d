package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/madved/inlineq/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("DefaultsWithMissingFile", func(t *testing.T) {
		t.Setenv("INLINEQ_TELEGRAM_TOKEN", "123:abc")

		cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		if err != nil {
			t.Fatalf("LoadConfig: %v", err)
		}
		if cfg.Logger.Level != "info" || !cfg.Logger.JSON {
			t.Errorf("logger defaults = %+v", cfg.Logger)
		}
		if cfg.Database.Path != "inlineq.db" {
			t.Errorf("database path default = %q", cfg.Database.Path)
		}
		if cfg.Inline.QueryDelay != 3*time.Second {
			t.Errorf("query delay default = %v", cfg.Inline.QueryDelay)
		}
		if cfg.Inline.EventBuffer != 64 {
			t.Errorf("event buffer default = %d", cfg.Inline.EventBuffer)
		}
		if cfg.Scheduler.MaintenanceSchedule == "" {
			t.Error("maintenance schedule default empty")
		}
	})

	t.Run("FileOverridesDefaults", func(t *testing.T) {
		path := writeConfig(t, `
logger:
  level: debug
  json: false
telegram:
  token: 123:abc
database:
  path: /tmp/test.db
inline:
  query_delay: 5s
  event_buffer: 128
`)

		cfg, err := config.LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig: %v", err)
		}
		if cfg.Logger.Level != "debug" || cfg.Logger.JSON {
			t.Errorf("logger = %+v", cfg.Logger)
		}
		if cfg.Database.Path != "/tmp/test.db" {
			t.Errorf("database path = %q", cfg.Database.Path)
		}
		if cfg.Inline.QueryDelay != 5*time.Second || cfg.Inline.EventBuffer != 128 {
			t.Errorf("inline = %+v", cfg.Inline)
		}
	})

	t.Run("ValidationFailures", func(t *testing.T) {
		tests := []struct {
			name string
			yaml string
		}{
			{"missing token", "logger:\n  level: info\n"},
			{"bad log level", "logger:\n  level: loud\ntelegram:\n  token: 123:abc\n"},
			{"excessive delay", "telegram:\n  token: 123:abc\ninline:\n  query_delay: 2h\n"},
			{"zero event buffer", "telegram:\n  token: 123:abc\ninline:\n  event_buffer: 0\n"},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				if _, err := config.LoadConfig(writeConfig(t, tc.yaml)); err == nil {
					t.Fatal("invalid config accepted")
				}
			})
		}
	})
}
