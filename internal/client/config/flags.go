package config

import (
	"flag"
	"os"
	"time"

	"github.com/teachbridge/authkit/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the backend API (default from Config)
//	-g string   Google OAuth client id
//	-t int      token refresh threshold in minutes
//	-d string   path to the local vault database
//	-l string   log level
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-t", "-d", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the backend API")
	fs.StringVar(&cfg.GoogleClientID, "g", cfg.GoogleClientID, "Google OAuth client id")
	refreshThreshold := fs.Int("t", int(cfg.TokenRefreshThreshold.Minutes()), "token refresh threshold (in minutes)")
	fs.StringVar(&cfg.VaultPath, "d", cfg.VaultPath, "path to the local vault database")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.TokenRefreshThreshold = time.Duration(*refreshThreshold) * time.Minute
}
