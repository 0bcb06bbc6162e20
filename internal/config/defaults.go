package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultVLRURL        = "https://vlrggapi.vercel.app"
	DefaultGridURL       = "https://api.grid.gg/v2"
	DefaultAPITimeout    = 15 * time.Second
	DefaultRetryAttempts = 3
	DefaultRetryBackoff  = 1500 * time.Millisecond
	DefaultRateLimit     = 1 // requests/second per unconfigured client class
	DefaultMaxMatches    = 10
	DefaultCachePath     = "./cache"
	DefaultExportPath    = "./out"
	DefaultExportFormat  = "csv"
	DefaultDBPort        = 5432
	DefaultDBSSLMode     = "prefer"
	DefaultMaxConns      = 10
	DefaultMinConns      = 2
	DefaultLogLevel      = "info"
)

func (c *Config) applyDefaults() {
	// Source defaults
	if len(c.Sources.Enabled) == 0 {
		c.Sources.Enabled = []string{"vlr"}
	}
	if c.Sources.VLRURL == "" {
		c.Sources.VLRURL = DefaultVLRURL
	}
	if c.Sources.GridURL == "" {
		c.Sources.GridURL = DefaultGridURL
	}

	// API defaults
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.RetryAttempts == 0 {
		c.API.RetryAttempts = DefaultRetryAttempts
	}
	if c.API.RetryBackoff == 0 {
		c.API.RetryBackoff = DefaultRetryBackoff
	}

	// Fetch defaults
	if c.Fetch.MaxMatches == 0 {
		c.Fetch.MaxMatches = DefaultMaxMatches
	}

	// Cache defaults
	if c.Cache.Path == "" {
		c.Cache.Path = DefaultCachePath
	}

	// Export defaults
	if c.Export.Path == "" {
		c.Export.Path = DefaultExportPath
	}
	if c.Export.Format == "" {
		c.Export.Format = DefaultExportFormat
	}

	// Warehouse defaults
	if c.Warehouse.Enabled {
		applyDBDefaults(&c.Warehouse.DB)
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
