// Package config loads the deckbind YAML configuration.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/joeblew999/deckbind/pkg/deck"
	"github.com/joeblew999/deckbind/pkg/pipeline"
)

// Store backends
const (
	BackendMemory = "memory"
	BackendBolt   = "bolt"
	BackendKV     = "kv"
)

// Config is the main configuration structure
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Templates TemplatesConfig `yaml:"templates"`
	Store     StoreConfig     `yaml:"store"`
	Render    RenderConfig    `yaml:"render"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig contains HTTP API settings
type ServerConfig struct {
	ListenAddr   string        `yaml:"listen_addr"`   // Default: :8080
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"` // Default: 60s
	CORSOrigin   string        `yaml:"cors_origin"`   // Default: *
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
}

// TemplatesConfig selects where templates come from. With neither Dir nor
// URL set the embedded templates are used.
type TemplatesConfig struct {
	Dir       string         `yaml:"dir"`
	URL       string         `yaml:"url"`    // public bucket serving <prefix>index.json
	Prefix    string         `yaml:"prefix"` // key prefix inside Dir or URL
	DefaultID int            `yaml:"default_id"`
	PageTypes map[string]int `yaml:"page_types"` // page type -> template id
}

// StoreConfig contains deck storage settings
type StoreConfig struct {
	Backend string `yaml:"backend"` // memory, bolt, kv
	Path    string `yaml:"path"`    // bolt database file
	Dir     string `yaml:"dir"`     // directory backing the kv backend
}

// RenderConfig contains pipeline settings
type RenderConfig struct {
	Workers       int       `yaml:"workers"`
	CacheSize     int       `yaml:"cache_size"` // 0 disables the scene cache
	DefaultFormat string    `yaml:"default_format"`
	ThumbWidth    int       `yaml:"thumb_width"` // PNG width in pixels
	PDF           PDFConfig `yaml:"pdf"`
}

// PDFConfig enables PDF export through ajstarks' pdfdeck binary
type PDFConfig struct {
	Enabled bool   `yaml:"enabled"`
	BinDir  string `yaml:"bin_dir"`  // directory holding pdfdeck; empty searches PATH
	FontDir string `yaml:"font_dir"` // empty falls back to $DECKFONTS
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// Default returns the configuration used when no file is given
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// Load loads configuration from a YAML file. An empty path yields defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 60 * time.Second
	}
	if c.Server.CORSOrigin == "" {
		c.Server.CORSOrigin = "*"
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = 1 << 20 // 1 MB
	}

	if c.Store.Backend == "" {
		c.Store.Backend = BackendMemory
	}
	if c.Store.Backend == BackendBolt && c.Store.Path == "" {
		c.Store.Path = "deckbind.db"
	}
	if c.Store.Backend == BackendKV && c.Store.Dir == "" {
		c.Store.Dir = "data"
	}

	if c.Render.Workers == 0 {
		c.Render.Workers = 4
	}
	if c.Render.DefaultFormat == "" {
		c.Render.DefaultFormat = string(pipeline.FormatSVG)
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendBolt, BackendKV:
	default:
		return fmt.Errorf("invalid store.backend: %s (must be memory, bolt, or kv)", c.Store.Backend)
	}

	if c.Templates.Dir != "" && c.Templates.URL != "" {
		return fmt.Errorf("templates.dir and templates.url are mutually exclusive")
	}
	if c.Templates.DefaultID < 0 {
		return fmt.Errorf("templates.default_id must not be negative")
	}
	if _, err := c.PageTypeIDs(); err != nil {
		return err
	}

	if c.Render.Workers < 1 {
		return fmt.Errorf("render.workers must be at least 1")
	}
	if c.Render.CacheSize < 0 {
		return fmt.Errorf("render.cache_size must not be negative")
	}
	if c.Render.ThumbWidth < 0 {
		return fmt.Errorf("render.thumb_width must not be negative")
	}
	format, err := pipeline.ParseFormat(c.Render.DefaultFormat)
	if err != nil {
		return fmt.Errorf("invalid render.default_format: %w", err)
	}
	if format == pipeline.FormatPDF && !c.Render.PDF.Enabled {
		return fmt.Errorf("render.default_format is pdf but render.pdf is not enabled")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging.level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("invalid logging.format: %s (must be json or text)", c.Logging.Format)
	}

	return nil
}

// PageTypeIDs returns templates.page_types keyed by page kind
func (c *Config) PageTypeIDs() (map[deck.Kind]int, error) {
	out := make(map[deck.Kind]int, len(c.Templates.PageTypes))
	for name, id := range c.Templates.PageTypes {
		kind, ok := deck.ParseKind(name)
		if !ok {
			return nil, fmt.Errorf("invalid templates.page_types key: %s", name)
		}
		if id <= 0 {
			return nil, fmt.Errorf("invalid template id %d for page type %s", id, name)
		}
		out[kind] = id
	}
	return out, nil
}

// NewLogger builds the application logger from the logging section
func (c LoggingConfig) NewLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch c.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if c.Format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}
