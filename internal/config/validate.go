package config

import (
	"errors"
	"fmt"
	"time"
)

var knownSources = map[string]bool{
	"vlr":  true,
	"grid": true,
}

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if len(c.Sources.Enabled) == 0 {
		return errors.New("sources.enabled must list at least one source")
	}
	for _, s := range c.Sources.Enabled {
		if !knownSources[s] {
			return fmt.Errorf("sources.enabled: unknown source %q", s)
		}
	}

	if c.API.Timeout <= 0 {
		return errors.New("api.timeout must be positive")
	}
	if c.API.RetryAttempts < 1 {
		return errors.New("api.retry_attempts must be >= 1")
	}
	if c.API.RetryBackoff < 0 {
		return errors.New("api.retry_backoff must be >= 0")
	}

	for class, limit := range c.Rates {
		if limit < 1 {
			return fmt.Errorf("rate_limits.%s must be >= 1", class)
		}
	}

	if c.Fetch.MaxMatches < 1 {
		return errors.New("fetch.max_matches must be >= 1")
	}
	if c.Fetch.MinMatchDate != "" {
		if _, err := time.Parse("2006-01-02", c.Fetch.MinMatchDate); err != nil {
			return fmt.Errorf("fetch.min_match_date must be YYYY-MM-DD, got %q", c.Fetch.MinMatchDate)
		}
	}

	if c.CachingEnabled() && c.Cache.Path == "" {
		return errors.New("cache.path is required when caching is enabled")
	}

	if c.Export.Path == "" {
		return errors.New("export.path is required")
	}
	if c.Export.Format != "csv" && c.Export.Format != "parquet" {
		return fmt.Errorf("export.format must be csv or parquet, got %q", c.Export.Format)
	}

	if c.Warehouse.Enabled {
		if err := c.Warehouse.DB.validate("warehouse.db"); err != nil {
			return err
		}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
