// Package config loads toolkit configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds everything the CLI and pipelines need to run.
type Config struct {
	// DevMode switches auth to the fixture identity and skips the
	// identity provider entirely.
	DevMode bool

	// Backend API the client wrapper talks to.
	BackendBaseURL string

	// Serving store (Postgres) and Supabase alternative.
	PostgresDSN      string
	SupabaseURL      string
	SupabaseKey      string
	SupabasePassword string

	// Landing store for raw scrape results.
	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	// Scraper credentials.
	GitHubToken       string
	RavelryKey        string
	RavelrySecret     string
	ThingiverseToken  string
	ThingiverseClient string

	// News feeds to ingest, comma separated.
	NewsFeeds []string

	// Worker counts for the refresh pipeline.
	FetchWorkers   int
	ScrapeWorkers  int
	RequestTimeout int
}

// Load reads configuration from the environment. A .env file is loaded
// first if present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DevMode:           getEnvBool("TOOLDEX_DEV_MODE", false),
		BackendBaseURL:    getEnv("TOOLDEX_API_URL", "http://localhost:8080/api"),
		PostgresDSN:       getEnv("DATABASE_URL", ""),
		SupabaseURL:       getEnv("SUPABASE_URL", ""),
		SupabaseKey:       getEnv("SUPABASE_KEY", ""),
		SupabasePassword:  getEnv("SUPABASE_DB_PASSWORD", ""),
		MongoURI:          getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:     getEnv("MONGO_DATABASE", "tooldex"),
		MongoCollection:   getEnv("MONGO_COLLECTION", "scraped_products"),
		GitHubToken:       getEnv("GITHUB_TOKEN", ""),
		RavelryKey:        getEnv("RAVELRY_KEY", ""),
		RavelrySecret:     getEnv("RAVELRY_SECRET", ""),
		ThingiverseToken:  getEnv("THINGIVERSE_TOKEN", ""),
		ThingiverseClient: getEnv("THINGIVERSE_CLIENT_ID", ""),
		NewsFeeds:         getEnvList("NEWS_FEEDS"),
		FetchWorkers:      getEnvInt("FETCH_WORKERS", 3),
		ScrapeWorkers:     getEnvInt("SCRAPE_WORKERS", 5),
		RequestTimeout:    getEnvInt("REQUEST_TIMEOUT_SECONDS", 30),
	}

	return cfg, nil
}

// Validate checks the combinations the long-running commands need. One-shot
// commands validate only what they use, so this stays advisory per field
// group rather than failing on every empty value.
func (c *Config) Validate() error {
	if c.PostgresDSN == "" && (c.SupabaseURL == "" || c.SupabaseKey == "") {
		return fmt.Errorf("either DATABASE_URL or SUPABASE_URL+SUPABASE_KEY must be set")
	}
	if c.RavelryKey != "" && c.RavelrySecret == "" {
		return fmt.Errorf("RAVELRY_SECRET is required when RAVELRY_KEY is set")
	}
	if c.FetchWorkers <= 0 || c.ScrapeWorkers <= 0 {
		return fmt.Errorf("worker counts must be positive")
	}
	return nil
}

// getEnv reads a string variable with a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool reads a boolean variable; "true", "1" and "yes" are truthy.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	value = strings.ToLower(strings.TrimSpace(value))
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt reads an integer variable, falling back on parse failure.
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intVal
}

// getEnvList reads a comma-separated variable into a trimmed slice.
func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
