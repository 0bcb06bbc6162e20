package config

import "time"

// Config is the root configuration for one ingestion run.
type Config struct {
	Sources   SourcesConfig   `yaml:"sources"`
	API       APIConfig       `yaml:"api"`
	Rates     map[string]int  `yaml:"rate_limits"` // requests/second per client class
	Fetch     FetchConfig     `yaml:"fetch"`
	Cache     CacheConfig     `yaml:"cache"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Export    ExportConfig    `yaml:"export"`
	Features  map[string]bool `yaml:"features"`
	Warehouse WarehouseConfig `yaml:"warehouse"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// SourcesConfig selects and credentials the upstream APIs.
type SourcesConfig struct {
	Enabled []string          `yaml:"enabled"`
	APIKeys map[string]string `yaml:"api_keys"`
	VLRURL  string            `yaml:"vlr_url"`
	GridURL string            `yaml:"grid_url"`
}

// APIConfig holds shared HTTP client settings.
type APIConfig struct {
	Timeout       time.Duration `yaml:"timeout"`        // Per-attempt timeout
	RetryAttempts int           `yaml:"retry_attempts"` // Total attempts per logical request
	RetryBackoff  time.Duration `yaml:"retry_backoff"`  // Base backoff, grows linearly per attempt
}

// FetchConfig bounds what one run pulls from each source.
type FetchConfig struct {
	MaxMatches   int    `yaml:"max_matches"`
	MinMatchDate string `yaml:"min_match_date"` // YYYY-MM-DD, optional; earlier matches are dropped
}

// CacheConfig controls the content-addressed response cache.
type CacheConfig struct {
	Enabled *bool  `yaml:"enabled"` // nil defaults to true
	Path    string `yaml:"path"`
}

// PipelineConfig holds orchestration settings.
type PipelineConfig struct {
	Parallel bool `yaml:"parallel"` // Fetch sources concurrently
}

// ExportConfig controls where and how tables are written.
type ExportConfig struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"` // "csv" or "parquet"
}

// WarehouseConfig holds the optional Postgres sink.
type WarehouseConfig struct {
	Enabled bool     `yaml:"enabled"`
	DB      DBConfig `yaml:"db"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// LoggingConfig selects the log level.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug | info | warn | error
}

// SourceEnabled reports whether the named source is in the enabled set.
func (c *Config) SourceEnabled(name string) bool {
	for _, s := range c.Sources.Enabled {
		if s == name {
			return true
		}
	}
	return false
}

// CachingEnabled reports the effective cache switch.
func (c *Config) CachingEnabled() bool {
	return c.Cache.Enabled == nil || *c.Cache.Enabled
}
