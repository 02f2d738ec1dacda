package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"security-assistant/mail"
	"security-assistant/vetting"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	History   HistoryConfig   `yaml:"history"`
	Blocklist BlocklistConfig `yaml:"blocklist"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Signals   SignalsConfig   `yaml:"signals"`
	Lexicon   []string        `yaml:"lexicon"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json", "text"
}

// HistoryConfig controls where verdicts and email results are kept.
// An empty DBPath keeps them in memory.
type HistoryConfig struct {
	DBPath string `yaml:"db_path"`
	Limit  int    `yaml:"limit"`
}

// BlocklistConfig configures the known-malicious domain set and its refresh.
type BlocklistConfig struct {
	Domains      []string      `yaml:"domains"`
	Feeds        []FeedEntry   `yaml:"feeds"`
	LocalLists   []string      `yaml:"local_lists"`
	SyncInterval time.Duration `yaml:"sync_interval"`
	WatchLocal   bool          `yaml:"watch_local"`
}

// FeedEntry defines a single remote blocklist feed.
type FeedEntry struct {
	Name   string `yaml:"name"`
	URL    string `yaml:"url"`
	Format string `yaml:"format"` // "hostfile" or "domain-list"
}

type ScoringConfig struct {
	Weights    vetting.Weights           `yaml:"weights"`
	Thresholds vetting.ScoringThresholds `yaml:"thresholds"`
}

// SignalsConfig selects the signal source: "random" or "static".
type SignalsConfig struct {
	Mode    string                             `yaml:"mode"`
	Default vetting.SecuritySignals            `yaml:"default"`
	Static  map[string]vetting.SecuritySignals `yaml:"static"`
}

const (
	SignalsModeRandom = "random"
	SignalsModeStatic = "static"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            "8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		History: HistoryConfig{
			Limit: 100,
		},
		Blocklist: BlocklistConfig{
			Domains:      append([]string(nil), vetting.DefaultMaliciousDomains...),
			SyncInterval: 24 * time.Hour,
		},
		Scoring: ScoringConfig{
			Weights:    vetting.DefaultWeights(),
			Thresholds: vetting.DefaultScoringThresholds(),
		},
		Signals: SignalsConfig{
			Mode: SignalsModeRandom,
		},
		Lexicon: append([]string(nil), mail.DefaultLexicon...),
	}
}

// Load builds a Config from defaults, the optional YAML file at path, a .env
// file in the working directory and finally the process environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg.Signals.Mode = strings.ToLower(strings.TrimSpace(cfg.Signals.Mode))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
	}
	if v := os.Getenv("SENTINEL_DB_PATH"); v != "" {
		cfg.History.DBPath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("SENTINEL_HISTORY_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SENTINEL_HISTORY_LIMIT: %w", err)
		}
		cfg.History.Limit = n
	}
	if v := os.Getenv("SENTINEL_SIGNALS_MODE"); v != "" {
		cfg.Signals.Mode = v
	}
	return nil
}

// Validate checks the configuration for values the service cannot run with.
func (c Config) Validate() error {
	if c.History.Limit <= 0 {
		return fmt.Errorf("history.limit must be positive, got %d", c.History.Limit)
	}
	if err := c.Scoring.Weights.Validate(); err != nil {
		return fmt.Errorf("scoring.weights: %w", err)
	}
	if err := c.Scoring.Thresholds.Validate(); err != nil {
		return fmt.Errorf("scoring.thresholds: %w", err)
	}
	if _, err := mail.NewLexicon(c.Lexicon...); err != nil {
		return fmt.Errorf("lexicon: %w", err)
	}
	switch strings.ToLower(c.Signals.Mode) {
	case SignalsModeRandom, SignalsModeStatic:
	default:
		return fmt.Errorf("signals.mode must be %q or %q, got %q", SignalsModeRandom, SignalsModeStatic, c.Signals.Mode)
	}
	names := make(map[string]struct{}, len(c.Blocklist.Feeds))
	for i, f := range c.Blocklist.Feeds {
		if f.Name == "" || f.URL == "" {
			return fmt.Errorf("blocklist.feeds[%d]: name and url are required", i)
		}
		if _, dup := names[f.Name]; dup {
			return fmt.Errorf("blocklist.feeds[%d]: duplicate feed name %q", i, f.Name)
		}
		names[f.Name] = struct{}{}
	}
	if c.Blocklist.SyncInterval < 0 {
		return fmt.Errorf("blocklist.sync_interval must not be negative")
	}
	return nil
}
