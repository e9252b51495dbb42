// Package config loads the configuration of the tracker.
//
// Values are read from an optional YAML file named by TRACKER_CONFIG and
// then overridden by environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/envelope-zero/tracker/internal/kv"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid configuration")

type Cache struct {
	Backend kv.Backend `yaml:"backend"`
	Path    string     `yaml:"path"`
}

type Config struct {
	LogFormat        string   `yaml:"logFormat"`
	LogLevel         string   `yaml:"logLevel"`
	GinMode          string   `yaml:"ginMode"`
	Port             string   `yaml:"port"`
	CORSAllowOrigins []string `yaml:"corsAllowOrigins"`
	EnablePprof      bool     `yaml:"enablePprof"`
	Cache            Cache    `yaml:"cache"`
	RemoteURL        string   `yaml:"remoteUrl"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		GinMode: gin.ReleaseMode,
		Port:    "8080",
		Cache: Cache{
			Backend: kv.BackendSQLite,
			Path:    "data/cache.db",
		},
		RemoteURL: "http://localhost:8080/v1",
	}
}

// Load returns the configuration from the file named by TRACKER_CONFIG, if
// set, and the environment.
func Load() (Config, error) {
	cfg := Default()

	if path, ok := os.LookupEnv("TRACKER_CONFIG"); ok {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading configuration file: %w", err)
		}

		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
		}
	}

	cfg.fromEnv()
	return cfg, cfg.validate()
}

func (c *Config) fromEnv() {
	if v, ok := os.LookupEnv("LOG_FORMAT"); ok {
		c.LogFormat = v
	}
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := os.LookupEnv("GIN_MODE"); ok {
		c.GinMode = v
	}
	if v, ok := os.LookupEnv("PORT"); ok {
		c.Port = v
	}
	if v, ok := os.LookupEnv("CORS_ALLOW_ORIGINS"); ok {
		c.CORSAllowOrigins = strings.Fields(v)
	}
	if v, ok := os.LookupEnv("TRACKER_CACHE_BACKEND"); ok {
		c.Cache.Backend = kv.Backend(v)
	}
	if v, ok := os.LookupEnv("TRACKER_CACHE_PATH"); ok {
		c.Cache.Path = v
	}
	if v, ok := os.LookupEnv("TRACKER_REMOTE_URL"); ok {
		c.RemoteURL = v
	}
	if v, ok := os.LookupEnv("TRACKER_ENABLE_PPROF"); ok {
		c.EnablePprof = v == "true"
	}
}

func (c Config) validate() error {
	switch c.Cache.Backend {
	case kv.BackendSQLite, kv.BackendBadger:
	default:
		return fmt.Errorf("%w: unknown cache backend %q", ErrInvalid, c.Cache.Backend)
	}

	switch c.GinMode {
	case gin.ReleaseMode, gin.DebugMode, gin.TestMode:
	default:
		return fmt.Errorf("%w: unknown gin mode %q", ErrInvalid, c.GinMode)
	}

	if c.LogLevel != "" {
		if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}

	return nil
}

// Debug reports whether gin runs in debug mode.
func (c Config) Debug() bool {
	return c.GinMode == gin.DebugMode
}

// Logger returns the logger writing to out.
//
// Without an explicit format, debug mode logs human readable output and
// release mode logs JSON.
func (c Config) Logger(out io.Writer) zerolog.Logger {
	if (c.LogFormat == "" && c.Debug()) || c.LogFormat == "human" {
		out = zerolog.ConsoleWriter{Out: out}
	}

	level := zerolog.InfoLevel
	if c.Debug() {
		level = zerolog.DebugLevel
	}
	if c.LogLevel != "" {
		level, _ = zerolog.ParseLevel(c.LogLevel)
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
