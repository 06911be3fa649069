package config

import (
	"fmt"
	"os"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// loadStruct recursively populates struct fields from environment variables.
func loadStruct(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		// Skip unexported fields
		if !fieldVal.CanSet() {
			continue
		}

		// Recurse into nested structs
		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
			if err := loadStruct(fieldVal); err != nil {
				return err
			}
			continue
		}

		// Get tags
		envName := field.Tag.Get("env")
		envAlt := field.Tag.Get("envAlt")
		defaultVal := field.Tag.Get("default")
		required := field.Tag.Get("required") == "true"

		if envName == "" {
			continue
		}

		// Try primary env var, then alternate
		value := os.Getenv(envName)
		if value == "" && envAlt != "" {
			value = os.Getenv(envAlt)
		}

		// Apply default if not set
		if value == "" {
			if required {
				return fmt.Errorf("required environment variable %s is not set", envName)
			}
			value = defaultVal
		}

		if value == "" {
			continue
		}

		// Set the field value
		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		// Handle time.Duration specially
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Require reports every named setting that is still empty. Commands call it
// for the variables only they depend on, e.g. Require("MERCHANT_NAME").
func (c *Config) Require(envNames ...string) error {
	var missing []string
	collectEmpty(reflect.ValueOf(c).Elem(), envNames, &missing)
	if len(missing) > 0 {
		return fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}
	return nil
}

func collectEmpty(v reflect.Value, envNames []string, missing *[]string) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		// Nested sections are walked the same way as in loadStruct
		if field.Type.Kind() == reflect.Struct {
			collectEmpty(v.Field(i), envNames, missing)
			continue
		}
		name := field.Tag.Get("env")
		if name != "" && slices.Contains(envNames, name) && v.Field(i).IsZero() {
			*missing = append(*missing, name)
		}
	}
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Zendit validation
	if c.Zendit.PageLimit <= 0 {
		errs = append(errs, "ZENDIT_PAGE_LIMIT must be positive")
	}
	if c.Zendit.MaxPages < 0 {
		errs = append(errs, "ZENDIT_MAX_PAGES must be non-negative")
	}
	if c.Zendit.MaxFailures <= 0 {
		errs = append(errs, "ZENDIT_MAX_FAILURES must be positive")
	}
	if c.Zendit.RequestDelay < 0 || c.Zendit.RateLimitWait < 0 || c.Zendit.LookupDelay < 0 {
		errs = append(errs, "ZENDIT_REQUEST_DELAY, ZENDIT_RATE_LIMIT_WAIT and ZENDIT_LOOKUP_DELAY must be non-negative")
	}
	if c.Zendit.Timeout <= 0 {
		errs = append(errs, "ZENDIT_TIMEOUT must be positive")
	}

	// Logo download validation
	if c.Brandfetch.Width <= 0 || c.Brandfetch.Height <= 0 {
		errs = append(errs, fmt.Sprintf("LOGO_WIDTH (%d) and LOGO_HEIGHT (%d) must be positive",
			c.Brandfetch.Width, c.Brandfetch.Height))
	}
	if c.Brandfetch.BatchSize <= 0 {
		errs = append(errs, "LOGO_BATCH_SIZE must be positive")
	}
	if c.Brandfetch.BatchPause < 0 {
		errs = append(errs, "LOGO_BATCH_PAUSE must be non-negative")
	}
	if c.Brandfetch.Timeout <= 0 {
		errs = append(errs, "LOGO_TIMEOUT must be positive")
	}

	// Cache validation
	if c.Cache.RedisURL != "" && c.Cache.RoamingTTL <= 0 {
		errs = append(errs, "ROAMING_CACHE_TTL must be positive when REDIS_URL is set")
	}

	// Catalog store validation
	if c.Store.MaxConns < c.Store.MinConns {
		errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)",
			c.Store.MaxConns, c.Store.MinConns))
	}
	if c.Store.MaxConns <= 0 {
		errs = append(errs, "DB_MAX_CONNS must be positive")
	}
	if c.Store.MinConns < 0 {
		errs = append(errs, "DB_MIN_CONNS must be non-negative")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}
	if c.Logging.Dir != "" && (c.Logging.MaxSizeMB <= 0 || c.Logging.MaxFiles <= 0) {
		errs = append(errs, "LOG_MAX_SIZE_MB and LOG_MAX_FILES must be positive when LOG_DIR is set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
// Credentials and connection strings are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Merchant: {Name: %q}, ", c.Merchant.Name))
	b.WriteString(fmt.Sprintf("Zendit: {APIURL: %q, APIKey: %s, GraphQLURL: %q, ClientID: %q, Cookie: %s, PageLimit: %d}, ",
		c.Zendit.APIURL, mask(c.Zendit.APIKey), c.Zendit.GraphQLURL, c.Zendit.ClientID,
		mask(c.Zendit.ConsoleCookie), c.Zendit.PageLimit))
	b.WriteString(fmt.Sprintf("Brandfetch: {ClientID: %s, BatchSize: %d}, ",
		mask(c.Brandfetch.ClientID), c.Brandfetch.BatchSize))
	b.WriteString(fmt.Sprintf("Cache: {RedisURL: %s}, ", mask(c.Cache.RedisURL)))
	b.WriteString(fmt.Sprintf("Store: {DatabaseURL: %s, SQLitePath: %q}, ",
		mask(c.Store.DatabaseURL), c.Store.SQLitePath))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q, Dir: %q}",
		c.Logging.Level, c.Logging.Format, c.Logging.Dir))
	b.WriteString("}")
	return b.String()
}

func mask(s string) string {
	if s == "" {
		return `""`
	}
	return "[MASKED]"
}
