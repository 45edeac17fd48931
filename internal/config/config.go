package config

import (
	"embed"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

const appName = "lexis"

// Feed is an RSS or Atom headline source.
type Feed struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
}

type AIConfig struct {
	Provider string `yaml:"provider"` // "gemini", "openai" or "claude"
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
}

type NarrationConfig struct {
	Provider   string `yaml:"provider"` // "openai" or "none"
	APIKey     string `yaml:"api_key"`
	Model      string `yaml:"model"`
	Voice      string `yaml:"voice"`
	SampleRate int    `yaml:"sample_rate,omitempty"`
}

type HeadlinesConfig struct {
	Source string `yaml:"source"` // "ai" or "feed"
	Count  int    `yaml:"count,omitempty"`
	Feeds  []Feed `yaml:"feeds"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn,omitempty"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

type Config struct {
	Topics    []string         `yaml:"topics"`
	Retention string           `yaml:"retention"`
	AI        *AIConfig        `yaml:"ai,omitempty"`
	Narration *NarrationConfig `yaml:"narration,omitempty"`
	Headlines HeadlinesConfig  `yaml:"headlines"`
	Storage   StorageConfig    `yaml:"storage"`
	Server    ServerConfig     `yaml:"server"`
	Log       LogConfig        `yaml:"log"`
}

// AIEnabled returns true if AI is configured with a valid API key.
func (c *Config) AIEnabled() bool {
	return c.AI != nil && c.AIKey() != ""
}

// AIKey returns the resolved API key (config or env var).
func (c *Config) AIKey() string {
	if c.AI != nil && c.AI.APIKey != "" {
		return c.AI.APIKey
	}
	return os.Getenv("LEXIS_AI_KEY")
}

// NarrationEnabled reports whether a speech provider is configured.
func (c *Config) NarrationEnabled() bool {
	if c.Narration == nil || c.Narration.Provider == "" || c.Narration.Provider == "none" {
		return false
	}
	return c.NarrationKey() != ""
}

// NarrationKey resolves the speech key. When narration and generation share
// a provider the generation key is reused.
func (c *Config) NarrationKey() string {
	if c.Narration == nil {
		return ""
	}
	if c.Narration.APIKey != "" {
		return c.Narration.APIKey
	}
	if key := os.Getenv("LEXIS_TTS_KEY"); key != "" {
		return key
	}
	if c.AI != nil && c.AI.Provider == c.Narration.Provider {
		return c.AIKey()
	}
	return ""
}

// SampleRate returns the narration PCM rate, defaulting to 24 kHz.
func (c *Config) SampleRate() int {
	if c.Narration == nil || c.Narration.SampleRate <= 0 {
		return 24000
	}
	return c.Narration.SampleRate
}

func (c *Config) RetentionDuration() time.Duration {
	if c.Retention == "" {
		return 90 * 24 * time.Hour
	}
	// Support "Nd" day syntax
	if len(c.Retention) > 1 && c.Retention[len(c.Retention)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(c.Retention, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour
		}
	}
	d, err := time.ParseDuration(c.Retention)
	if err != nil {
		return 90 * 24 * time.Hour
	}
	return d
}

func (c *Config) EnabledFeeds() []Feed {
	var out []Feed
	for _, f := range c.Headlines.Feeds {
		if f.Enabled {
			out = append(out, f)
		}
	}
	return out
}

func (c *Config) FeedNames() []string {
	var names []string
	for _, f := range c.EnabledFeeds() {
		names = append(names, f.Name)
	}
	return names
}

// HeadlineCount returns how many headlines to show, defaulting to 5.
func (c *Config) HeadlineCount() int {
	if c.Headlines.Count <= 0 {
		return 5
	}
	return c.Headlines.Count
}

// HeadlineSource returns "ai" or "feed".
func (c *Config) HeadlineSource() string {
	if c.Headlines.Source == "" {
		return "ai"
	}
	return c.Headlines.Source
}

func (c *Config) StorageDriver() string {
	if c.Storage.Driver == "" {
		return "sqlite"
	}
	return c.Storage.Driver
}

// StorageDSN returns the configured DSN, or the XDG data path for sqlite.
func (c *Config) StorageDSN() string {
	if c.Storage.DSN != "" {
		return c.Storage.DSN
	}
	if c.StorageDriver() == "sqlite" {
		return DataPath()
	}
	return ""
}

func (c *Config) ServerAddr() string {
	if c.Server.Addr == "" {
		return "127.0.0.1:8080"
	}
	return c.Server.Addr
}

// LogFile is where the TUI writes its log.
func (c *Config) LogFile() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return LogPath()
}

// LogLevel parses log.level, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.yaml")
}

func DataPath() string {
	return filepath.Join(xdg.DataHome, appName, appName+".db")
}

func LogPath() string {
	return filepath.Join(xdg.StateHome, appName, appName+".log")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

func Load(path string) (*Config, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Write defaults to config path on first run
			if err := writeDefaults(path); err != nil {
				// Non-fatal: just use embedded defaults
				return defaults, nil
			}
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	applyDefaults(&cfg, defaults)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func applyDefaults(cfg, defaults *Config) {
	if len(cfg.Topics) == 0 {
		cfg.Topics = defaults.Topics
	}
	if cfg.AI == nil {
		cfg.AI = defaults.AI
	}
	if cfg.Narration == nil {
		cfg.Narration = defaults.Narration
	}
	if cfg.Headlines.Source == "" {
		cfg.Headlines.Source = defaults.Headlines.Source
	}
	mergeDefaultFeeds(cfg, defaults)
}

// mergeDefaultFeeds appends default feeds missing from cfg and refreshes the
// URL and type of feeds that share a name with a default.
func mergeDefaultFeeds(cfg, defaults *Config) {
	index := make(map[string]int, len(cfg.Headlines.Feeds))
	for i, f := range cfg.Headlines.Feeds {
		index[f.Name] = i
	}
	for _, d := range defaults.Headlines.Feeds {
		if i, ok := index[d.Name]; ok {
			cfg.Headlines.Feeds[i].URL = d.URL
			cfg.Headlines.Feeds[i].Type = d.Type
			continue
		}
		cfg.Headlines.Feeds = append(cfg.Headlines.Feeds, d)
	}
}

func validate(cfg *Config) error {
	if cfg.AI != nil {
		switch cfg.AI.Provider {
		case "gemini", "openai", "claude":
		default:
			return fmt.Errorf("ai: unknown provider %q (valid: gemini, openai, claude)", cfg.AI.Provider)
		}
	}
	if cfg.Narration != nil {
		switch cfg.Narration.Provider {
		case "", "none", "openai":
		default:
			return fmt.Errorf("narration: unknown provider %q (valid: openai, none)", cfg.Narration.Provider)
		}
	}
	switch cfg.Headlines.Source {
	case "", "ai", "feed":
	default:
		return fmt.Errorf("headlines: unknown source %q (valid: ai, feed)", cfg.Headlines.Source)
	}
	switch strings.ToLower(cfg.Storage.Driver) {
	case "", "sqlite", "postgres", "redis", "memory":
	default:
		return fmt.Errorf("storage: unknown driver %q (valid: sqlite, postgres, redis, memory)", cfg.Storage.Driver)
	}

	validTypes := map[string]bool{"rss": true, "atom": true}
	for i, f := range cfg.Headlines.Feeds {
		if f.Name == "" {
			return fmt.Errorf("feed %d: name is required", i)
		}
		if f.URL == "" {
			return fmt.Errorf("feed %q: url is required", f.Name)
		}
		u, err := url.Parse(f.URL)
		if err != nil {
			return fmt.Errorf("feed %q: invalid url: %w", f.Name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("feed %q: url scheme must be http or https, got %q", f.Name, u.Scheme)
		}
		if !validTypes[f.Type] {
			return fmt.Errorf("feed %q: unknown type %q (valid: rss, atom)", f.Name, f.Type)
		}
	}
	return nil
}
