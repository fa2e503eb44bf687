package store

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Upstox struct {
		BaseURL        string `yaml:"base_url"`
		RedirectURI    string `yaml:"redirect_uri"`
		TokenFile      string `yaml:"token_file"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		RateLimitRPS   int    `yaml:"rate_limit_rps"`
	} `yaml:"upstox"`
	Auth struct {
		ListenAddr            string `yaml:"listen_addr"`
		CaptureTimeoutSeconds int    `yaml:"capture_timeout_seconds"`
	} `yaml:"auth"`
	Catalog struct {
		Path string `yaml:"path"`
	} `yaml:"catalog"`
	// PreferredExchanges is the deterministic tie-break order for symbols
	// listed on more than one exchange.
	PreferredExchanges []string `yaml:"preferred_exchanges"`
}

func (c *Config) Validate() error {
	if c.Upstox.TokenFile == "" {
		return errors.New("upstox.token_file cannot be empty")
	}
	if c.Catalog.Path == "" {
		return errors.New("catalog.path cannot be empty")
	}
	if c.Auth.CaptureTimeoutSeconds <= 0 {
		return fmt.Errorf("auth.capture_timeout_seconds must be positive, got %d", c.Auth.CaptureTimeoutSeconds)
	}
	if c.Upstox.RateLimitRPS <= 0 {
		return fmt.Errorf("upstox.rate_limit_rps must be positive, got %d", c.Upstox.RateLimitRPS)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if c.Server.Addr == "" {
		c.Server.Addr = ":8090"
	}
	if c.Upstox.BaseURL == "" {
		c.Upstox.BaseURL = "https://api.upstox.com"
	}
	if c.Upstox.RedirectURI == "" {
		c.Upstox.RedirectURI = "http://localhost:8080"
	}
	if c.Upstox.TokenFile == "" {
		c.Upstox.TokenFile = "upstox_token.json"
	}
	if c.Upstox.TimeoutSeconds == 0 {
		c.Upstox.TimeoutSeconds = 30
	}
	if c.Upstox.RateLimitRPS == 0 {
		c.Upstox.RateLimitRPS = 10
	}
	if c.Auth.ListenAddr == "" {
		c.Auth.ListenAddr = ":8080"
	}
	if c.Auth.CaptureTimeoutSeconds == 0 {
		c.Auth.CaptureTimeoutSeconds = 300
	}
	if c.Catalog.Path == "" {
		c.Catalog.Path = "categorized_stocks.json"
	}
	if len(c.PreferredExchanges) == 0 {
		c.PreferredExchanges = []string{"NSE", "BSE"}
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}
