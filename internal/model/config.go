package model

import "time"

// Config is the complete arbitr configuration.
// Values are layered: CLI flags > ARBITR_* env vars > config file > DefaultConfig.
type Config struct {
	HTTP         HTTPConfig        `yaml:"http" mapstructure:"http"`
	Cache        CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitConfig   `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Dates        DatesConfig       `yaml:"dates" mapstructure:"dates"`
	Analysis     AnalysisConfig    `yaml:"analysis" mapstructure:"analysis"`
	Output       OutputConfig      `yaml:"output" mapstructure:"output"`
	Store        StoreConfig       `yaml:"store" mapstructure:"store"`
	Log          LogConfig         `yaml:"log" mapstructure:"log"`
}

// HTTPConfig controls article page fetching
type HTTPConfig struct {
	Timeout         time.Duration `yaml:"timeout" mapstructure:"timeout"`                   // Per-request timeout
	UserAgent       string        `yaml:"user_agent" mapstructure:"user_agent"`             // User-Agent header
	MaxBodyBytes    int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`     // Response bodies are truncated here
	InsecureTLS     bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`         // Skip certificate verification
	HTTPProxy       string        `yaml:"http_proxy" mapstructure:"http_proxy"`             // Overrides HTTP_PROXY
	HTTPSProxy      string        `yaml:"https_proxy" mapstructure:"https_proxy"`           // Overrides HTTPS_PROXY
	FetchContent    bool          `yaml:"fetch_content" mapstructure:"fetch_content"`       // Fetch article pages for body text and dates
	RespectRobots   bool          `yaml:"respect_robots" mapstructure:"respect_robots"`     // Honour robots.txt before fetching
	MaxRetries      int           `yaml:"max_retries" mapstructure:"max_retries"`           // Retries on 429 and 5xx
	ExcludedDomains []string      `yaml:"excluded_domains" mapstructure:"excluded_domains"` // Hosts never fetched (video and social sites)
}

// CacheConfig controls the fetched-page cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`               // Disk cache directory
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"` // In-process layer
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`     // Persistent layer
}

// ConcurrencyConfig controls the worker pool
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitConfig controls per-domain request pacing
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// DatesConfig controls date normalization
type DatesConfig struct {
	Fuzzy             bool `yaml:"fuzzy" mapstructure:"fuzzy"`                             // Try the permissive parser before the pattern table
	MinYear           int  `yaml:"min_year" mapstructure:"min_year"`                       // Validity window
	MaxYear           int  `yaml:"max_year" mapstructure:"max_year"`
	BodyMinYear       int  `yaml:"body_min_year" mapstructure:"body_min_year"`             // Window for unlabelled body dates
	BodyMaxYear       int  `yaml:"body_max_year" mapstructure:"body_max_year"`
	BodyScanLines     int  `yaml:"body_scan_lines" mapstructure:"body_scan_lines"`         // Lines searched for labelled dates
	BodyScanChars     int  `yaml:"body_scan_chars" mapstructure:"body_scan_chars"`         // Characters searched for unlabelled dates
	BodyMaxCandidates int  `yaml:"body_max_candidates" mapstructure:"body_max_candidates"` // Unlabelled candidates tried
}

// AnalysisConfig controls classification
type AnalysisConfig struct {
	TaxonomyFile string `yaml:"taxonomy_file" mapstructure:"taxonomy_file"` // YAML industry taxonomy replacing the built-in one
}

// OutputConfig controls result files
type OutputConfig struct {
	Dir         string `yaml:"dir" mapstructure:"dir"`
	Markdown    bool   `yaml:"markdown" mapstructure:"markdown"`         // Also write summary.md
	Verbose     bool   `yaml:"verbose" mapstructure:"verbose"`           // Progress lines on stderr
	TopKeywords int    `yaml:"top_keywords" mapstructure:"top_keywords"` // Keyword rows in visualization data
}

// StoreConfig controls SQLite persistence
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // Empty disables the store
}

// LogConfig controls structured logging
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // console or json
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "arbitr/0.3 (+https://github.com/0ne-nine9/arbitr)",
			MaxBodyBytes:  5_000_000,
			FetchContent:  true,
			RespectRobots: true,
			MaxRetries:    2,
			ExcludedDomains: []string{
				"youtube.com",
				"youtu.be",
				"instagram.com",
				"vimeo.com",
			},
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".arbitr-cache",
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 1,
			BurstSize:         2,
		},
		Dates: DatesConfig{
			Fuzzy:             true,
			MinYear:           2000,
			MaxYear:           2030,
			BodyMinYear:       2020,
			BodyMaxYear:       2026,
			BodyScanLines:     30,
			BodyScanChars:     1000,
			BodyMaxCandidates: 5,
		},
		Output: OutputConfig{
			Dir:         "arbitr-output",
			TopKeywords: 30,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
