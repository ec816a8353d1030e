package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Token store backends.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// ClientConfig holds configuration for the examdesk client.
type ClientConfig struct {
	Server         string        `yaml:"server"`          // Backend API base URL
	RequestTimeout time.Duration `yaml:"request_timeout"` // Per-request timeout (default 15s)
	PageSize       int           `yaml:"page_size"`       // List page size (default 10)
	TokenStore     string        `yaml:"token_store"`     // "file" or "sqlite"
	TokenPath      string        `yaml:"token_path"`      // Token store location (default ~/.examdesk/credentials.json)
	UIAddr         string        `yaml:"ui_addr"`         // Web console listen address
	LogLevel       string        `yaml:"log_level"`       // debug, info, warn, error
	LogFormat      string        `yaml:"log_format"`      // text, json
	LogFile        string        `yaml:"log_file"`        // Optional rotating log file
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Server:         "http://localhost:3000/api",
		RequestTimeout: 15 * time.Second,
		PageSize:       10,
		TokenStore:     StoreFile,
		UIAddr:         "127.0.0.1:8090",
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// Dir returns the examdesk state directory (~/.examdesk).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return filepath.Join(home, ".examdesk"), nil
}

// DefaultPath returns the default config file path (~/.examdesk/config.yaml).
func DefaultPath() string {
	dir, err := Dir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load builds a ClientConfig from defaults, the YAML file at path (missing
// file is fine), a .env file in the working directory and EXAMDESK_*
// environment variables, in increasing precedence.
func Load(path string) (ClientConfig, error) {
	cfg := DefaultClientConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	// godotenv never overrides variables already set in the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.resolvePaths(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *ClientConfig) applyEnv() error {
	if v := os.Getenv("EXAMDESK_SERVER"); v != "" {
		c.Server = v
	}
	if v := os.Getenv("EXAMDESK_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("EXAMDESK_REQUEST_TIMEOUT: %w", err)
		}
		c.RequestTimeout = d
	}
	if v := os.Getenv("EXAMDESK_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("EXAMDESK_PAGE_SIZE: %w", err)
		}
		c.PageSize = n
	}
	if v := os.Getenv("EXAMDESK_TOKEN_STORE"); v != "" {
		c.TokenStore = v
	}
	if v := os.Getenv("EXAMDESK_TOKEN_PATH"); v != "" {
		c.TokenPath = v
	}
	if v := os.Getenv("EXAMDESK_UI_ADDR"); v != "" {
		c.UIAddr = v
	}
	if v := os.Getenv("EXAMDESK_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("EXAMDESK_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if v := os.Getenv("EXAMDESK_LOG_FILE"); v != "" {
		c.LogFile = v
	}
	return nil
}

// resolvePaths fills the token path default for the selected store.
func (c *ClientConfig) resolvePaths() error {
	if c.TokenPath != "" {
		return nil
	}
	dir, err := Dir()
	if err != nil {
		return err
	}
	switch c.TokenStore {
	case StoreSQLite:
		c.TokenPath = filepath.Join(dir, "examdesk.db")
	default:
		c.TokenPath = filepath.Join(dir, "credentials.json")
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c ClientConfig) Validate() error {
	if c.Server == "" {
		return errors.New("config: server is required")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("config: request_timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("config: page_size must be positive, got %d", c.PageSize)
	}
	switch c.TokenStore {
	case StoreFile, StoreSQLite:
	default:
		return fmt.Errorf("config: unknown token_store %q (want %q or %q)", c.TokenStore, StoreFile, StoreSQLite)
	}
	return nil
}
