package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/medreminder/internal/flagx"
	"github.com/dmitrijs2005/medreminder/internal/timex"
)

// jsonConfig is the on-disk form of Config. Durations use timex.Duration,
// so both "90s" and integer nanoseconds are accepted.
type jsonConfig struct {
	EndpointAddr                string          `json:"endpoint_addr"`
	DatabaseDSN                 string          `json:"database_dsn"`
	RedisAddr                   string          `json:"redis_addr"`
	SecretKey                   string          `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	OTPValidityDuration         *timex.Duration `json:"otp_validity_duration"`
}

// parseJSON overlays config with the file named by -c/-config. Keys missing
// from the file keep their current value.
func parseJSON(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var c jsonConfig
	if err := json.Unmarshal(data, &c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	overlay(&config.EndpointAddr, c.EndpointAddr)
	overlay(&config.DatabaseDSN, c.DatabaseDSN)
	overlay(&config.RedisAddr, c.RedisAddr)
	overlay(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.OTPValidityDuration != nil {
		config.OTPValidityDuration = c.OTPValidityDuration.Duration
	}
	return nil
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
