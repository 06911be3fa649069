// Package config provides centralized configuration for the catalog tools.
// Settings come from environment variables (a .env file is loaded by each
// command first) with defaults, and are validated before any work starts.
package config

import "time"

// Config holds the settings shared by every command.
type Config struct {
	Merchant   MerchantConfig
	Paths      PathsConfig
	Zendit     ZenditConfig
	Brandfetch BrandfetchConfig
	Cache      CacheConfig
	Store      StoreConfig
	Logging    LoggingConfig
}

// MerchantConfig holds storefront naming used in generated copy.
type MerchantConfig struct {
	// Name is appended to meta titles and descriptions
	Name string `env:"MERCHANT_NAME"`
}

// PathsConfig holds input and output locations, relative to the working directory.
type PathsConfig struct {
	DataCSVDir    string `env:"DATA_CSV_DIR" default:"dataCsv"`
	OutputCSVDir  string `env:"OUTPUT_CSV_DIR" default:"outputCsv"`
	DataJSONDir   string `env:"DATA_JSON_DIR" default:"dataJson"`
	OutputJSONDir string `env:"OUTPUT_JSON_DIR" default:"outputJson"`
	ImagesDir     string `env:"IMAGES_DIR" default:"brandImages"`

	// CountriesFile replaces the embedded country table when set
	CountriesFile string `env:"COUNTRIES_FILE"`
}

// ZenditConfig holds settings for the wholesale API and its console GraphQL endpoint.
type ZenditConfig struct {
	// APIURL is the REST base used for per-offer roaming lookups
	APIURL string `env:"ZENDIT_API_URL" default:"https://api.zendit.io/v1"`

	// APIKey is the bearer token for the REST API
	APIKey string `env:"ZENDIT_API_KEY"`

	// GraphQLURL is the console endpoint paged by fetch-offers
	GraphQLURL string `env:"ZENDIT_GRAPHQL_URL" default:"https://console-grql.api.zendit.io/graphql"`

	// ClientID scopes the console offers query
	ClientID string `env:"ZENDIT_CLIENT_ID"`

	// ConsoleCookie is sent verbatim as the Cookie header of console requests
	ConsoleCookie string `env:"ZENDIT_CONSOLE_COOKIE"`

	// PageLimit is the number of offers requested per page (default: 1024)
	PageLimit int `env:"ZENDIT_PAGE_LIMIT" default:"1024"`

	// MaxPages stops paging early; 0 fetches everything
	MaxPages int `env:"ZENDIT_MAX_PAGES" default:"0"`

	// MaxFailures is the number of consecutive failed pages before giving up (default: 3)
	MaxFailures int `env:"ZENDIT_MAX_FAILURES" default:"3"`

	// RequestDelay is the pause after every page request (default: 1s)
	RequestDelay time.Duration `env:"ZENDIT_REQUEST_DELAY" default:"1s"`

	// RateLimitWait is the extra pause after an HTTP 429 (default: 5s)
	RateLimitWait time.Duration `env:"ZENDIT_RATE_LIMIT_WAIT" default:"5s"`

	// LookupDelay is the pause after every roaming lookup (default: 300ms)
	LookupDelay time.Duration `env:"ZENDIT_LOOKUP_DELAY" default:"300ms"`

	// Timeout bounds a single HTTP request (default: 30s)
	Timeout time.Duration `env:"ZENDIT_TIMEOUT" default:"30s"`
}

// BrandfetchConfig holds logo CDN settings.
type BrandfetchConfig struct {
	ClientID   string        `env:"BRANDFETCH_CLIENT_ID"`
	CDNURL     string        `env:"BRANDFETCH_CDN_URL" default:"https://cdn.brandfetch.io"`
	Width      int           `env:"LOGO_WIDTH" default:"992"`
	Height     int           `env:"LOGO_HEIGHT" default:"624"`
	BatchSize  int           `env:"LOGO_BATCH_SIZE" default:"5"`
	BatchPause time.Duration `env:"LOGO_BATCH_PAUSE" default:"1s"`
	Timeout    time.Duration `env:"LOGO_TIMEOUT" default:"30s"`
}

// CacheConfig holds the optional Redis cache for roaming lookups.
type CacheConfig struct {
	// RedisURL enables the cache when set, e.g. redis://localhost:6379/0
	RedisURL string `env:"REDIS_URL"`

	// RoamingTTL is how long a cached lookup stays valid (default: 24h)
	RoamingTTL time.Duration `env:"ROAMING_CACHE_TTL" default:"24h"`
}

// StoreConfig holds the optional catalog sinks. Both are off when empty.
type StoreConfig struct {
	// DatabaseURL is a PostgreSQL connection string
	// Supports both CATALOG_DATABASE_URL and DATABASE_URL
	DatabaseURL string `env:"CATALOG_DATABASE_URL" envAlt:"DATABASE_URL"`

	// SQLitePath is a local database file
	SQLitePath string `env:"CATALOG_SQLITE_PATH"`

	MaxConns int `env:"DB_MAX_CONNS" default:"4"`
	MinConns int `env:"DB_MIN_CONNS" default:"0"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`

	// Dir receives the rotating log files; empty disables file output
	Dir string `env:"LOG_DIR" default:"logs"`

	// MaxSizeMB is the size at which a log file is rotated (default: 5)
	MaxSizeMB int `env:"LOG_MAX_SIZE_MB" default:"5"`

	// MaxFiles is the number of rotated files kept (default: 5)
	MaxFiles int `env:"LOG_MAX_FILES" default:"5"`
}
