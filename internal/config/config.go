package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownStorage  = errors.New("unknown storage backend")
	ErrInvalidDebounce = errors.New("sync debounce must be positive")
)

type Config struct {
	Server    Server    `yaml:"server" json:"server"`
	Storage   Storage   `yaml:"storage" json:"storage"`
	Sync      Sync      `yaml:"sync" json:"sync"`
	Navigator Navigator `yaml:"navigator" json:"navigator"`
	Icons     Icons     `yaml:"icons" json:"icons"`
	Notify    Notify    `yaml:"notify" json:"notify"`
	Backup    Backup    `yaml:"backup" json:"backup"`
	Game      Game      `yaml:"game" json:"game"`
}

type Server struct {
	Addr string `yaml:"addr" json:"addr"`
}

type Storage struct {
	// Backend is one of none, memory, file or sqlite.
	Backend    string `yaml:"backend" json:"backend"`
	DataDir    string `yaml:"data_dir" json:"data_dir"`
	SQLitePath string `yaml:"sqlite_path" json:"sqlite_path"`
	UserID     string `yaml:"user_id" json:"user_id"`
}

type Sync struct {
	DebounceMS     int `yaml:"debounce_ms" json:"debounce_ms"`
	WriteTimeoutMS int `yaml:"write_timeout_ms" json:"write_timeout_ms"`
}

func (s Sync) Debounce() time.Duration {
	return time.Duration(s.DebounceMS) * time.Millisecond
}

func (s Sync) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutMS) * time.Millisecond
}

type Navigator struct {
	APIKey    string `yaml:"-" json:"-"`
	BaseURL   string `yaml:"base_url" json:"base_url"`
	Model     string `yaml:"model" json:"model"`
	TimeoutMS int    `yaml:"timeout_ms" json:"timeout_ms"`
}

type Icons struct {
	APIKey    string `yaml:"-" json:"-"`
	BaseURL   string `yaml:"base_url" json:"base_url"`
	Model     string `yaml:"model" json:"model"`
	TimeoutMS int    `yaml:"timeout_ms" json:"timeout_ms"`
}

type Notify struct {
	RingSize         int    `yaml:"ring_size" json:"ring_size"`
	TelegramToken    string `yaml:"-" json:"-"`
	TelegramChatID   int64  `yaml:"telegram_chat_id" json:"telegram_chat_id"`
	TelegramMinLevel string `yaml:"telegram_min_level" json:"telegram_min_level"`
}

type Backup struct {
	// Cron is a five-field schedule; empty disables scheduled backups.
	Cron string `yaml:"cron" json:"cron"`
	Dir  string `yaml:"dir" json:"dir"`
	Keep int    `yaml:"keep" json:"keep"`
}

type Game struct {
	// FreedomDate overrides the countdown target for fresh profiles (YYYY-MM-DD).
	FreedomDate string `yaml:"freedom_date" json:"freedom_date"`
}

func Default() *Config {
	c := &Config{}
	c.ApplyDefaults()
	return c
}

func (c *Config) ApplyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":42069"
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "file"
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "data"
	}
	if c.Storage.UserID == "" {
		c.Storage.UserID = "default"
	}
	if c.Sync.DebounceMS == 0 {
		c.Sync.DebounceMS = 1000
	}
	if c.Sync.WriteTimeoutMS == 0 {
		c.Sync.WriteTimeoutMS = 30000
	}
	if c.Navigator.BaseURL == "" {
		c.Navigator.BaseURL = "https://api.deepseek.com"
	}
	if c.Navigator.Model == "" {
		c.Navigator.Model = "deepseek-chat"
	}
	if c.Navigator.TimeoutMS == 0 {
		c.Navigator.TimeoutMS = 30000
	}
	if c.Icons.BaseURL == "" {
		c.Icons.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if c.Icons.Model == "" {
		c.Icons.Model = "imagen-3.0-generate-001"
	}
	if c.Icons.TimeoutMS == 0 {
		c.Icons.TimeoutMS = 60000
	}
	if c.Notify.RingSize == 0 {
		c.Notify.RingSize = 50
	}
	if c.Notify.TelegramMinLevel == "" {
		c.Notify.TelegramMinLevel = "info"
	}
	if c.Backup.Dir == "" {
		c.Backup.Dir = "backups"
	}
	if c.Backup.Keep == 0 {
		c.Backup.Keep = 7
	}
}

// Validate rejects settings the app cannot start with.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Storage.Backend) {
	case "none", "memory", "file", "sqlite":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStorage, c.Storage.Backend)
	}
	if c.Sync.DebounceMS <= 0 {
		return ErrInvalidDebounce
	}
	if c.Game.FreedomDate != "" {
		if _, err := time.Parse("2006-01-02", c.Game.FreedomDate); err != nil {
			return fmt.Errorf("game.freedom_date: %w", err)
		}
	}
	return nil
}

// ParsedFreedomDate returns the configured countdown target, if one is set.
func (g Game) ParsedFreedomDate() (time.Time, bool) {
	t, err := time.Parse("2006-01-02", g.FreedomDate)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// Load reads a YAML file, fills defaults and applies environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	var r Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &r); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, err
	}
	r.ApplyEnv()
	r.ApplyDefaults()
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}
