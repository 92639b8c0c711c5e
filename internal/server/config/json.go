package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophcoach/internal/flagx"
	"github.com/dmitrijs2005/gophcoach/internal/timex"
)

// JsonConfig is the on-disk shape of the optional JSON config file.
// Durations accept both "90s"-style strings and integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP             string         `json:"endpoint_addr_http"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	OpenRouterAPIKey             string         `json:"openrouter_api_key"`
	OpenRouterBaseURL            string         `json:"openrouter_base_url"`
	CompletionModel              string         `json:"completion_model"`
	CompletionTimeout            timex.Duration `json:"completion_timeout"`
	SiteURL                      string         `json:"site_url"`
	SiteName                     string         `json:"site_name"`
	AllowedOrigins               string         `json:"allowed_origins"`
	LogLevel                     string         `json:"log_level"`
}

// parseJson overlays values from the file named by -c/-config onto config.
// Only keys present with non-zero values override earlier layers. Without
// the flag nothing happens; an unreadable or invalid file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	overlay(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	overlay(&config.DatabaseDSN, c.DatabaseDSN)
	overlay(&config.SecretKey, c.SecretKey)
	overlay(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration.Duration)
	overlay(&config.RefreshTokenValidityDuration, c.RefreshTokenValidityDuration.Duration)
	overlay(&config.OpenRouterAPIKey, c.OpenRouterAPIKey)
	overlay(&config.OpenRouterBaseURL, c.OpenRouterBaseURL)
	overlay(&config.CompletionModel, c.CompletionModel)
	overlay(&config.CompletionTimeout, c.CompletionTimeout.Duration)
	overlay(&config.SiteURL, c.SiteURL)
	overlay(&config.SiteName, c.SiteName)
	overlay(&config.AllowedOrigins, c.AllowedOrigins)
	overlay(&config.LogLevel, c.LogLevel)
}

func overlay[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}
