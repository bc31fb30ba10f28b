// Package config loads the connector settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gstbrowser/connector/filesystemserver/handler"
)

const (
	DefaultListenAddr    = ":8080"
	DefaultMaxUploadSize = 100 * 1024 * 1024
)

// Config is the whole settings file.
type Config struct {
	Server   ServerConfig     `yaml:"server"`
	Profiles handler.Profiles `yaml:"configs"`
}

// ServerConfig holds the process level settings.
type ServerConfig struct {
	ListenAddr    string   `yaml:"listen_addr"`
	LogLevel      string   `yaml:"log_level"`
	LogFormat     string   `yaml:"log_format"`
	MaxUploadSize int64    `yaml:"max_upload_size"`
	CORSOrigins   []string `yaml:"cors_origins"`
	Metrics       *bool    `yaml:"metrics"`
}

// MetricsEnabled reports whether /metrics is served. It is on unless the
// settings file turns it off.
func (s ServerConfig) MetricsEnabled() bool {
	return s.Metrics == nil || *s.Metrics
}

// Load reads the YAML settings at path, applies environment overrides and
// defaults, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse is Load for settings already in memory.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnv()
	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.ListenAddr = envOr("LISTEN_ADDR", c.Server.ListenAddr)
	c.Server.LogLevel = envOr("LOG_LEVEL", c.Server.LogLevel)
	c.Server.LogFormat = envOr("LOG_FORMAT", c.Server.LogFormat)
	c.Server.MaxUploadSize = envInt64("MAX_UPLOAD_SIZE", c.Server.MaxUploadSize)
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		c.Server.CORSOrigins = splitList(origins)
	}
}

func (c *Config) setDefaults() {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = DefaultListenAddr
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Server.LogFormat == "" {
		c.Server.LogFormat = "json"
	}
	if c.Server.MaxUploadSize == 0 {
		c.Server.MaxUploadSize = DefaultMaxUploadSize
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}
}

// Validate checks that every profile resolves, the default one included.
func (c *Config) Validate() error {
	if c.Server.MaxUploadSize < 0 {
		return errors.New("max_upload_size must not be negative")
	}
	switch c.Server.LogFormat {
	case "", "json", "console":
	default:
		return fmt.Errorf("unsupported log_format: %s", c.Server.LogFormat)
	}

	if _, ok := c.Profiles[handler.DefaultProfile]; !ok {
		return handler.ErrNoDefaultProfile
	}
	for key := range c.Profiles {
		if _, err := handler.Resolve(key, c.Profiles); err != nil {
			return err
		}
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return i
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
