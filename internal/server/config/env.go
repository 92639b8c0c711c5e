package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/dmitrijs2005/gophcoach/internal/flagx"
	"github.com/joho/godotenv"
)

// Environment variable names. OPENROUTER_API_KEY, YOUR_SITE_URL and
// YOUR_SITE_NAME keep the names existing deployments already export.
const (
	envHTTPAddress       = "HTTP_ADDRESS"
	envDatabaseDSN       = "DATABASE_DSN"
	envSecretKey         = "SECRET_KEY"
	envAccessTokenTTL    = "ACCESS_TOKEN_TTL"
	envRefreshTokenTTL   = "REFRESH_TOKEN_TTL"
	envOpenRouterAPIKey  = "OPENROUTER_API_KEY"
	envOpenRouterBaseURL = "OPENROUTER_BASE_URL"
	envCompletionModel   = "COMPLETION_MODEL"
	envCompletionTimeout = "COMPLETION_TIMEOUT"
	envSiteURL           = "YOUR_SITE_URL"
	envSiteName          = "YOUR_SITE_NAME"
	envAllowedOrigins    = "ALLOWED_ORIGINS"
	envLogLevel          = "LOG_LEVEL"
)

// parseEnv loads the dotenv file (if present) into the process environment
// and then copies every recognised, non-empty variable into config.
// Variables already set in the environment win over the dotenv file.
// A malformed dotenv file or duration value panics.
func parseEnv(config *Config) {
	if err := godotenv.Load(flagx.EnvFileFlag()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, envHTTPAddress)
	setString(&config.DatabaseDSN, envDatabaseDSN)
	setString(&config.SecretKey, envSecretKey)
	setDuration(&config.AccessTokenValidityDuration, envAccessTokenTTL)
	setDuration(&config.RefreshTokenValidityDuration, envRefreshTokenTTL)
	setString(&config.OpenRouterAPIKey, envOpenRouterAPIKey)
	setString(&config.OpenRouterBaseURL, envOpenRouterBaseURL)
	setString(&config.CompletionModel, envCompletionModel)
	setDuration(&config.CompletionTimeout, envCompletionTimeout)
	setString(&config.SiteURL, envSiteURL)
	setString(&config.SiteName, envSiteName)
	setString(&config.AllowedOrigins, envAllowedOrigins)
	setString(&config.LogLevel, envLogLevel)
}

func setString(dst *string, name string) {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, name string) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(err)
	}
	*dst = d
}
