package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/medreminder/internal/flagx"
)

// parseFlags overlays the server Config with command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-r string   Redis address
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-o int      one-time code validity, minutes
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-r", "-s", "-t", "-o"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidity := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	otpValidity := fs.Int("o", int(config.OTPValidityDuration.Minutes()), "one-time code validity (in minutes)")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	// Minute flags only override when given, so sub-minute JSON values survive.
	var err error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration, err = minutes(*accessTokenValidity, err)
		case "o":
			config.OTPValidityDuration, err = minutes(*otpValidity, err)
		}
	})
	return err
}

func minutes(n int, prev error) (time.Duration, error) {
	if n <= 0 && prev == nil {
		prev = fmt.Errorf("validity must be positive, got %d", n)
	}
	return time.Duration(n) * time.Minute, prev
}
