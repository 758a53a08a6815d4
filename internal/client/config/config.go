package config

import (
	"fmt"
	"time"
)

// Config holds runtime settings for the medreminder client.
type Config struct {
	ServerEndpointAddr  string
	DatabasePath        string
	OnlineCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:8080"
	c.DatabasePath = "medreminder.db"
	c.OnlineCheckInterval = 3 * time.Second
}

// LoadConfig applies defaults, then the JSON file and flags found in args
// (usually os.Args[1:]). Later sources take precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if cfg.OnlineCheckInterval <= 0 {
		return nil, fmt.Errorf("online check interval must be positive, got %s", cfg.OnlineCheckInterval)
	}
	return cfg, nil
}
