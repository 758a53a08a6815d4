package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/medreminder/internal/flagx"
	"github.com/dmitrijs2005/medreminder/internal/timex"
)

// jsonConfig is the on-disk form of Config.
type jsonConfig struct {
	ServerEndpointAddr  string          `json:"server_endpoint_addr"`
	DatabasePath        string          `json:"database_path"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
}

// parseJSON overlays cfg with the file named by -c/-config, if any.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	return nil
}
