// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Places  PlacesConfig  `mapstructure:"places"`
	SMTP    SMTPConfig    `mapstructure:"smtp"`
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Crawl   CrawlConfig   `mapstructure:"crawl"`
	Run     RunConfig     `mapstructure:"run"`
	Ledger  LedgerConfig  `mapstructure:"ledger"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port       int    `mapstructure:"port"`
	ResultsDir string `mapstructure:"results_dir"`
}

// AuthConfig defines API authentication toggles.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// PlacesConfig holds the places-search API credentials.
type PlacesConfig struct {
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
	PageSize int    `mapstructure:"page_size"`
}

// SMTPConfig configures the outbound mail transport.
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// FetchConfig governs the bounded HTTP fetcher.
type FetchConfig struct {
	TimeoutSeconds  int    `mapstructure:"timeout_seconds"`
	WatchdogSeconds int    `mapstructure:"watchdog_seconds"`
	MaxBodyBytes    int    `mapstructure:"max_body_bytes"`
	MaxInFlight     int    `mapstructure:"max_in_flight"`
	MaxRetries      int    `mapstructure:"max_retries"`
	BackoffBaseMs   int    `mapstructure:"backoff_base_ms"`
	UserAgent       string `mapstructure:"user_agent"`
}

// CrawlConfig governs the per-site email crawl.
type CrawlConfig struct {
	ThrottleMs     int `mapstructure:"throttle_ms"`
	MaxSubpages    int `mapstructure:"max_subpages"`
	MaxDocuments   int `mapstructure:"max_documents"`
	MaxSitemapURLs int `mapstructure:"max_sitemap_urls"`
}

// RunConfig governs orchestrator behavior.
type RunConfig struct {
	MaxSendCap        int  `mapstructure:"max_send_cap"`
	Concurrency       int  `mapstructure:"concurrency"`
	PageSize          int  `mapstructure:"page_size"`
	BusinessDelayMs   int  `mapstructure:"business_delay_ms"`
	HeartbeatSeconds  int  `mapstructure:"heartbeat_seconds"`
	ResendOnShortfall bool `mapstructure:"resend_on_shortfall"`
}

// LedgerConfig sets the dedupe ledger location and flush behavior.
type LedgerConfig struct {
	Path       string `mapstructure:"path"`
	DebounceMs int    `mapstructure:"debounce_ms"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LEADGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.results_dir", "results")
	v.SetDefault("places.base_url", "https://places.googleapis.com/v1/places:searchText")
	v.SetDefault("places.page_size", 20)
	v.SetDefault("smtp.port", 587)
	v.SetDefault("fetch.timeout_seconds", 10)
	v.SetDefault("fetch.watchdog_seconds", 15)
	v.SetDefault("fetch.max_body_bytes", 1500*1024)
	v.SetDefault("fetch.max_in_flight", 5)
	v.SetDefault("fetch.max_retries", 2)
	v.SetDefault("fetch.backoff_base_ms", 500)
	v.SetDefault("fetch.user_agent", "leadgen-bot/0.1")
	v.SetDefault("crawl.throttle_ms", 400)
	v.SetDefault("crawl.max_subpages", 8)
	v.SetDefault("crawl.max_documents", 6)
	v.SetDefault("crawl.max_sitemap_urls", 12)
	v.SetDefault("run.max_send_cap", 100)
	v.SetDefault("run.concurrency", 6)
	v.SetDefault("run.page_size", 20)
	v.SetDefault("run.business_delay_ms", 1500)
	v.SetDefault("run.heartbeat_seconds", 10)
	v.SetDefault("run.resend_on_shortfall", false)
	v.SetDefault("ledger.path", "contacted.json")
	v.SetDefault("ledger.debounce_ms", 1000)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be > 0")
	}
	if c.Fetch.WatchdogSeconds < c.Fetch.TimeoutSeconds {
		return fmt.Errorf("fetch.watchdog_seconds must be >= fetch.timeout_seconds")
	}
	if c.Fetch.MaxInFlight <= 0 {
		return fmt.Errorf("fetch.max_in_flight must be > 0")
	}
	if c.Run.Concurrency <= 0 {
		return fmt.Errorf("run.concurrency must be > 0")
	}
	if c.Run.MaxSendCap <= 0 {
		return fmt.Errorf("run.max_send_cap must be > 0")
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set when auth is enabled")
	}
	return nil
}

// FetchTimeout converts the per-attempt timeout into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// FetchWatchdog converts the hard watchdog ceiling into a duration.
func (c Config) FetchWatchdog() time.Duration {
	return time.Duration(c.Fetch.WatchdogSeconds) * time.Second
}
