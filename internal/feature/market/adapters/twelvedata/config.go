// Package twelvedata provides a quote client for the Twelve Data market API.
package twelvedata

import (
	"os"
	"time"
)

const defaultBaseURL = "https://api.twelvedata.com"

// Config holds configuration for the Twelve Data API client.
type Config struct {
	TwelveDataAPIKey string        // API key for authentication
	BaseURL          string        // Base URL for the API (e.g., "https://api.twelvedata.com")
	Exchange         string        // Listing venue passed with every quote, "NSE" by default
	Timeout          time.Duration // HTTP request timeout
}

// LoadConfig loads Twelve Data configuration from environment variables.
func LoadConfig() Config {
	cfg := Config{
		TwelveDataAPIKey: os.Getenv("TWELVE_DATA_API_KEY"),
		BaseURL:          os.Getenv("TWELVE_DATA_BASE_URL"),
		Exchange:         os.Getenv("TWELVE_DATA_EXCHANGE"),
		Timeout:          10 * time.Second,
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Exchange == "" {
		cfg.Exchange = "NSE"
	}
	return cfg
}
