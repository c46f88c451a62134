package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `
log:
  path: /var/log/fantasystrike/Player.log
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	if cfg.Log.Path != "/var/log/fantasystrike/Player.log" {
		t.Errorf("log path = %q", cfg.Log.Path)
	}
	if cfg.Log.PollInterval != 100*time.Millisecond {
		t.Errorf("poll interval = %v, want default 100ms", cfg.Log.PollInterval)
	}
	if cfg.Server.ListenAddr != "127.0.0.1" || cfg.Server.HTTPPort != 8080 {
		t.Errorf("server defaults not applied: %#v", cfg.Server)
	}
	if cfg.Database.Path == "" {
		t.Error("database path default not applied")
	}
	if cfg.NATS.Port != 4222 || cfg.NATS.SubjectPrefix != "fslog" {
		t.Errorf("nats defaults not applied: %#v", cfg.NATS)
	}
}

func TestLoadFullFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `
log:
  path: C:\Users\rei\AppData\LocalLow\Sirlin Games\Fantasy Strike\Player.log
  poll_interval: 250ms
database:
  path: /tmp/tracker.db
server:
  listen_addr: 0.0.0.0
  http_port: 9090
nats:
  enabled: true
  embed: true
  port: 4333
  subject_prefix: tracker
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	if cfg.Log.PollInterval != 250*time.Millisecond {
		t.Errorf("poll interval = %v, want 250ms", cfg.Log.PollInterval)
	}
	if cfg.Database.Path != "/tmp/tracker.db" {
		t.Errorf("database path = %q", cfg.Database.Path)
	}
	if cfg.Server.ListenAddr != "0.0.0.0" || cfg.Server.HTTPPort != 9090 {
		t.Errorf("server config = %#v", cfg.Server)
	}
	if !cfg.NATS.Enabled || !cfg.NATS.Embed || cfg.NATS.Port != 4333 || cfg.NATS.SubjectPrefix != "tracker" {
		t.Errorf("nats config = %#v", cfg.NATS)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("expected an error for a missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yml")
	if err := os.WriteFile(path, []byte("log: [not a mapping"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected an error for malformed yaml")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Log.Path != "" {
		t.Errorf("default log path should be empty, got %q", cfg.Log.Path)
	}
	if cfg.Log.PollInterval != 100*time.Millisecond {
		t.Errorf("poll interval = %v", cfg.Log.PollInterval)
	}
}
