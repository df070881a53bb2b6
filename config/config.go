package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/rustyeddy/portfolio/broker"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultBaseURL is the trading endpoint used when an account omits one.
	DefaultBaseURL = "https://paper-api.alpaca.markets"
	// DefaultDataURL is the market data endpoint.
	DefaultDataURL = "https://data.alpaca.markets"
)

// Config is the account registry plus the settings of the analytics service.
type Config struct {
	Accounts    []Account       `json:"accounts" yaml:"accounts"`
	DataURL     string          `json:"data_url,omitempty" yaml:"data_url,omitempty"`
	Feed        string          `json:"feed,omitempty" yaml:"feed,omitempty"`
	Benchmark   BenchmarkConfig `json:"benchmark" yaml:"benchmark"`
	MarketIndex IndexConfig     `json:"market_index" yaml:"market_index"`
	Server      ServerConfig    `json:"server" yaml:"server"`
	Timezone    string          `json:"timezone,omitempty" yaml:"timezone,omitempty"`
	Concurrency int             `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`
	HTTPTimeout string          `json:"http_timeout,omitempty" yaml:"http_timeout,omitempty"` // e.g. "30s"
}

// Account is one brokerage account in the registry.
type Account struct {
	Name      string `json:"name" yaml:"name"`
	KeyID     string `json:"key_id" yaml:"key_id"`
	SecretKey string `json:"secret_key" yaml:"secret_key"`
	BaseURL   string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// BenchmarkConfig selects the reference series overlaid on account histories.
// KeyID and SecretKey are optional; without them the first account's
// credentials are borrowed.
type BenchmarkConfig struct {
	Symbol    string `json:"symbol" yaml:"symbol"`
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	KeyID     string `json:"key_id,omitempty" yaml:"key_id,omitempty"`
	SecretKey string `json:"secret_key,omitempty" yaml:"secret_key,omitempty"`
}

// IndexConfig selects the quote appended to account summaries. An empty
// symbol disables the entry.
type IndexConfig struct {
	Symbol string `json:"symbol" yaml:"symbol"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
}

// ServerConfig contains HTTP server parameters
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

// Credentials converts the account into broker credentials.
func (a Account) Credentials() broker.Credentials {
	baseURL := a.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return broker.Credentials{
		Name:      a.Name,
		KeyID:     a.KeyID,
		SecretKey: a.SecretKey,
		BaseURL:   baseURL,
	}
}

// Credentials returns the registry in order as broker credentials.
func (c *Config) Credentials() []broker.Credentials {
	out := make([]broker.Credentials, len(c.Accounts))
	for i, a := range c.Accounts {
		out[i] = a.Credentials()
	}
	return out
}

// BenchmarkCredentials returns the dedicated benchmark credentials when set,
// otherwise those of the first account. ok is false when neither exists.
func (c *Config) BenchmarkCredentials() (broker.Credentials, bool) {
	if c.Benchmark.KeyID != "" && c.Benchmark.SecretKey != "" {
		return broker.Credentials{
			Name:      "benchmark",
			KeyID:     c.Benchmark.KeyID,
			SecretKey: c.Benchmark.SecretKey,
			BaseURL:   DefaultBaseURL,
		}, true
	}
	if len(c.Accounts) == 0 {
		return broker.Credentials{}, false
	}
	return c.Accounts[0].Credentials(), true
}

// Location resolves the configured timezone, defaulting to local time.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// Timeout parses the HTTP timeout, defaulting to 30 seconds.
func (c *Config) Timeout() (time.Duration, error) {
	if c.HTTPTimeout == "" {
		return 30 * time.Second, nil
	}
	return time.ParseDuration(c.HTTPTimeout)
}

// LoadFromFile loads configuration from a file (YAML, or JSON as fallback).
// ${VAR} references are expanded from the environment before parsing so
// secrets need not be written to disk. A bare $ is left alone.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(expandEnv(data))
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

func expandEnv(data []byte) []byte {
	return envRef.ReplaceAllFunc(data, func(ref []byte) []byte {
		return []byte(os.Getenv(string(ref[2 : len(ref)-1])))
	})
}

// Parse decodes and validates a configuration document.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err := yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	for i := range c.Accounts {
		if c.Accounts[i].BaseURL == "" {
			c.Accounts[i].BaseURL = DefaultBaseURL
		}
	}
	if c.DataURL == "" {
		c.DataURL = DefaultDataURL
	}
	if c.Feed == "" {
		c.Feed = "iex"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 1
	}
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid. An empty registry is
// valid; callers report it per request.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Accounts))
	for i, a := range c.Accounts {
		if strings.TrimSpace(a.Name) == "" {
			return fmt.Errorf("accounts[%d].name is required", i)
		}
		if seen[a.Name] {
			return fmt.Errorf("duplicate account name: %s", a.Name)
		}
		seen[a.Name] = true
		if a.KeyID == "" || a.SecretKey == "" {
			return fmt.Errorf("account %s: key_id and secret_key are required", a.Name)
		}
	}
	if (c.Benchmark.KeyID == "") != (c.Benchmark.SecretKey == "") {
		return fmt.Errorf("benchmark key_id and secret_key must be set together")
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	if _, err := c.Timeout(); err != nil {
		return fmt.Errorf("http_timeout: %w", err)
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Accounts: []Account{
			{
				Name:      "Paper",
				KeyID:     "${ALPACA_KEY_ID}",
				SecretKey: "${ALPACA_SECRET_KEY}",
				BaseURL:   DefaultBaseURL,
			},
		},
		DataURL: DefaultDataURL,
		Feed:    "iex",
		Benchmark: BenchmarkConfig{
			Symbol: "SPY",
			Name:   "S&P 500",
		},
		MarketIndex: IndexConfig{
			Symbol: "SPY",
			Name:   "S&P 500",
		},
		Server:      ServerConfig{Addr: ":8080"},
		Timezone:    "America/New_York",
		Concurrency: 1,
		HTTPTimeout: "30s",
	}
}
