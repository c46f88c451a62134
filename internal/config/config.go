package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	NATS     NATSConfig     `yaml:"nats"`
}

// LogConfig holds game log tailing settings
type LogConfig struct {
	Path         string        `yaml:"path"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// DatabaseConfig holds SQLite settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	HTTPPort   int    `yaml:"http_port"`
}

// NATSConfig holds the optional NATS notification bus settings. When Embed is
// set an in-process server is started and URL is ignored.
type NATSConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Embed         bool   `yaml:"embed"`
	URL           string `yaml:"url"`
	Port          int    `yaml:"port"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a configuration with every field at its default value,
// for CLI commands run without a config file.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.Log.PollInterval == 0 {
		cfg.Log.PollInterval = 100 * time.Millisecond
	}
	if cfg.Database.Path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		cfg.Database.Path = filepath.Join(home, "fs-log-parser.db")
	}
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = "127.0.0.1"
	}
	if cfg.Server.HTTPPort == 0 {
		cfg.Server.HTTPPort = 8080
	}
	if cfg.NATS.Port == 0 {
		cfg.NATS.Port = 4222
	}
	if cfg.NATS.SubjectPrefix == "" {
		cfg.NATS.SubjectPrefix = "fslog"
	}
}
