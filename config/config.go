package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Listing source kinds recognized by the sync pipeline.
const (
	SourceHTML = "html"
	SourceRSS  = "rss"
)

// Config holds every knob used by the mirror pipeline and the manual post
// tool. Zero configuration is valid: Default() carries the production values
// for news.hada.io.
type Config struct {
	// BaseURL is the aggregator front page; detail links resolve against it.
	BaseURL string
	// Source selects the listing flow: "html" scrapes the front page,
	// "rss" reads FeedURL.
	Source  string
	FeedURL string

	// PostsDir is where rendered posts land.
	PostsDir string
	// LedgerPath is the JSON file tracking already-mirrored article ids.
	LedgerPath string
	// ArchivePath is the SQLite archive of mirrored article metadata.
	// Empty disables archiving.
	ArchivePath string

	// Timeout applies to listing and detail page fetches, FeedTimeout to
	// the RSS variant. FetchDelay is inserted between consecutive detail
	// fetches as a politeness throttle.
	Timeout     time.Duration
	FeedTimeout time.Duration
	FetchDelay  time.Duration

	// MaxContentLen caps extracted body text, in runes.
	MaxContentLen int

	UserAgent string
	// SiteName is the author fallback when the listing carries no "by" line.
	SiteName string
	// PublishBranch is the branch the manual tool pushes to.
	PublishBranch string
}

// Default returns the configuration the mirror runs with in production.
func Default() Config {
	return Config{
		BaseURL:       "https://news.hada.io/",
		Source:        SourceHTML,
		FeedURL:       "https://news.hada.io/rss/news",
		PostsDir:      "_posts",
		LedgerPath:    ".hada_mirror_data.json",
		ArchivePath:   ".hada_mirror.db",
		Timeout:       30 * time.Second,
		FeedTimeout:   10 * time.Second,
		FetchDelay:    1 * time.Second,
		MaxContentLen: 10000,
		UserAgent:     "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		SiteName:      "GeekNews",
		PublishBranch: "main",
	}
}

// fileConfig is the YAML overlay shape. Durations are strings so the file can
// say "30s" rather than nanosecond counts.
type fileConfig struct {
	BaseURL       string  `yaml:"base_url"`
	Source        string  `yaml:"source"`
	FeedURL       string  `yaml:"feed_url"`
	PostsDir      string  `yaml:"posts_dir"`
	LedgerPath    string  `yaml:"ledger_path"`
	ArchivePath   *string `yaml:"archive_path"`
	Timeout       string  `yaml:"timeout"`
	FeedTimeout   string  `yaml:"feed_timeout"`
	FetchDelay    *string `yaml:"fetch_delay"`
	MaxContentLen *int    `yaml:"max_content_length"`
	UserAgent     string  `yaml:"user_agent"`
	SiteName      string  `yaml:"site_name"`
	PublishBranch string  `yaml:"publish_branch"`
}

// Load returns the default configuration overlaid with values from the YAML
// file at path. An empty path or a missing file is not an error -- defaults
// apply. A file that exists but cannot be parsed is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	if fc.BaseURL != "" {
		cfg.BaseURL = fc.BaseURL
	}
	if fc.Source != "" {
		cfg.Source = fc.Source
	}
	if fc.FeedURL != "" {
		cfg.FeedURL = fc.FeedURL
	}
	if fc.PostsDir != "" {
		cfg.PostsDir = fc.PostsDir
	}
	if fc.LedgerPath != "" {
		cfg.LedgerPath = fc.LedgerPath
	}
	if fc.ArchivePath != nil {
		// Explicit empty string disables the archive.
		cfg.ArchivePath = *fc.ArchivePath
	}
	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return cfg, fmt.Errorf("failed to parse timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if fc.FeedTimeout != "" {
		d, err := time.ParseDuration(fc.FeedTimeout)
		if err != nil {
			return cfg, fmt.Errorf("failed to parse feed_timeout: %w", err)
		}
		cfg.FeedTimeout = d
	}
	if fc.FetchDelay != nil {
		d, err := time.ParseDuration(*fc.FetchDelay)
		if err != nil {
			return cfg, fmt.Errorf("failed to parse fetch_delay: %w", err)
		}
		cfg.FetchDelay = d
	}
	if fc.MaxContentLen != nil {
		cfg.MaxContentLen = *fc.MaxContentLen
	}
	if fc.UserAgent != "" {
		cfg.UserAgent = fc.UserAgent
	}
	if fc.SiteName != "" {
		cfg.SiteName = fc.SiteName
	}
	if fc.PublishBranch != "" {
		cfg.PublishBranch = fc.PublishBranch
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate rejects option values the pipeline cannot act on.
func (c Config) Validate() error {
	if c.Source != SourceHTML && c.Source != SourceRSS {
		return fmt.Errorf("source must be %q or %q, got %q", SourceHTML, SourceRSS, c.Source)
	}
	if c.MaxContentLen <= 0 {
		return fmt.Errorf("max_content_length must be positive, got %d", c.MaxContentLen)
	}
	return nil
}
