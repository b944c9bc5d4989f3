// Package twelvedata provides a client for the Twelve Data stock market API.
package twelvedata

// Config holds configuration for the Twelve Data API client.
type Config struct {
	APIKey  string // API key for authentication
	BaseURL string // Base URL for the API (e.g., "https://api.twelvedata.com")
}
