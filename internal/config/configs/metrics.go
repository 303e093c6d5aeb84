package configs

// Metrics holds configuration for the external engagement-metrics provider.
type Metrics struct {
	// BaseURL is the provider's API root.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:9090"`
	// APIKey authenticates requests against the provider.
	APIKey string `env:"API_KEY" envDefault:""`
}
