package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            "127.0.0.1:0",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    5 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			AllowedOrigins:  []string{"https://zerozero.dev"},
		},
		GitHub: GitHubConfig{
			Username:    "octocat",
			APIBaseURL:  "http://127.0.0.1:0",
			BatchSize:   5,
			UserAgent:   "portfolio-test/1.0",
			HTTPTimeout: 5 * time.Second,
		},
		AtCoder: AtCoderConfig{
			Username:    "tourist",
			BaseURL:     "http://127.0.0.1:0",
			UserAgent:   "portfolio-test/1.0",
			HTTPTimeout: 5 * time.Second,
		},
		Cache: CacheConfig{
			Backend: BackendMemory, // no files or network in unit tests
			TTL:     CacheTTL,
		},
		Blog: BlogConfig{
			SiteURL:   "https://zerozero.dev",
			SiteTitle: "test blog",
		},
		Log: LogConfig{
			Level: "off",
		},
	}
}
