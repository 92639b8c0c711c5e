package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gophcoach/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8000")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-k string   OpenRouter API key
//	-b string   OpenRouter base URL
//	-m string   completion model
//	-w int      completion timeout, seconds
//	-l string   log level
//
// Only these flags are parsed (see flagx.FilterArgs), so -c and -env-file
// can coexist on the same command line.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-r", "-k", "-b", "-m", "-w", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh_token_validity_duration (in minutes)")

	fs.StringVar(&config.OpenRouterAPIKey, "k", config.OpenRouterAPIKey, "OpenRouter API key")
	fs.StringVar(&config.OpenRouterBaseURL, "b", config.OpenRouterBaseURL, "OpenRouter base URL")
	fs.StringVar(&config.CompletionModel, "m", config.CompletionModel, "completion model")
	completionTimeout := fs.Int("w", int(config.CompletionTimeout.Seconds()), "completion timeout (in seconds)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Durations are only touched when given explicitly; round-tripping
	// through whole minutes would truncate values from earlier layers.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
		case "r":
			config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
		case "w":
			config.CompletionTimeout = time.Duration(*completionTimeout) * time.Second
		}
	})
}
