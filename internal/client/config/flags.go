package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/medreminder/internal/flagx"
)

// parseFlags overlays cfg with the -a, -d and -i flags. Other flags in args
// are ignored.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-i"})

	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "base URL of the auth server")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path of the local database")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	// -i only overrides when given, so sub-second JSON values survive.
	var err error
	fs.Visit(func(f *flag.Flag) {
		if f.Name != "i" {
			return
		}
		if *onlineCheckInterval <= 0 {
			err = fmt.Errorf("online check interval must be positive, got %d", *onlineCheckInterval)
			return
		}
		cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	})
	return err
}
