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
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	DB        DBConfig        `mapstructure:"db"`
	ProviderA ProviderConfig  `mapstructure:"provider_a"`
	ProviderB ProviderConfig  `mapstructure:"provider_b"`
	Translate TranslateConfig `mapstructure:"translate"`
	Search    SearchConfig    `mapstructure:"search"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Scrape    ScrapeConfig    `mapstructure:"scrape"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// DBConfig controls access to the relational database. An empty DSN
// selects the in-memory stores.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// ProviderConfig holds per-provider upstream settings.
type ProviderConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	// MinDelayMs is the minimum spacing between outbound scrape
	// requests to this provider.
	MinDelayMs int `mapstructure:"min_delay_ms"`
}

// TranslateConfig gates the optional query translation feature. An
// empty APIKey disables translation; queries pass through unchanged.
type TranslateConfig struct {
	Endpoint       string `mapstructure:"endpoint"`
	APIKey         string `mapstructure:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// SearchConfig governs federation behavior.
type SearchConfig struct {
	DefaultPageSize int `mapstructure:"default_page_size"`
	MaxPageSize     int `mapstructure:"max_page_size"`
}

// CacheConfig controls the search result cache.
type CacheConfig struct {
	TTLHours int `mapstructure:"ttl_hours"`
}

// ScrapeConfig bounds background crawl runs.
type ScrapeConfig struct {
	MaxProductsPerRun    int `mapstructure:"max_products_per_run"`
	MaxConsecutiveErrors int `mapstructure:"max_consecutive_errors"`
	PageSize             int `mapstructure:"page_size"`
}

// SchedulerConfig sets trigger cadences.
type SchedulerConfig struct {
	IncrementalInterval time.Duration `mapstructure:"incremental_interval"`
	DemandInterval      time.Duration `mapstructure:"demand_interval"`
	PopularityInterval  time.Duration `mapstructure:"popularity_interval"`
	DemandBatchSize     int           `mapstructure:"demand_batch_size"`
	MinPopularity       int           `mapstructure:"min_popularity"`
	StaleAfterDays      int           `mapstructure:"stale_after_days"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FOODSEARCH")
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
	v.SetDefault("logging.development", true)
	v.SetDefault("db.max_conns", 8)
	v.SetDefault("provider_a.base_url", "https://api.nal.usda.gov/fdc")
	v.SetDefault("provider_a.timeout_seconds", 10)
	v.SetDefault("provider_a.min_delay_ms", 1000)
	v.SetDefault("provider_b.base_url", "https://world.openfoodfacts.org")
	v.SetDefault("provider_b.timeout_seconds", 10)
	v.SetDefault("provider_b.min_delay_ms", 500)
	v.SetDefault("translate.endpoint", "https://translation.googleapis.com/language/translate/v2")
	v.SetDefault("translate.timeout_seconds", 2)
	v.SetDefault("search.default_page_size", 20)
	v.SetDefault("search.max_page_size", 50)
	v.SetDefault("cache.ttl_hours", 24)
	v.SetDefault("scrape.max_products_per_run", 1000)
	v.SetDefault("scrape.max_consecutive_errors", 10)
	v.SetDefault("scrape.page_size", 50)
	v.SetDefault("scheduler.incremental_interval", 24*time.Hour)
	v.SetDefault("scheduler.demand_interval", time.Hour)
	v.SetDefault("scheduler.popularity_interval", 7*24*time.Hour)
	v.SetDefault("scheduler.demand_batch_size", 10)
	v.SetDefault("scheduler.min_popularity", 50)
	v.SetDefault("scheduler.stale_after_days", 30)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.ProviderA.BaseURL == "" {
		return fmt.Errorf("provider_a.base_url must be set")
	}
	if c.ProviderB.BaseURL == "" {
		return fmt.Errorf("provider_b.base_url must be set")
	}
	if c.Search.DefaultPageSize <= 0 {
		return fmt.Errorf("search.default_page_size must be > 0")
	}
	if c.Search.MaxPageSize < c.Search.DefaultPageSize {
		return fmt.Errorf("search.max_page_size must be >= search.default_page_size")
	}
	if c.Cache.TTLHours <= 0 {
		return fmt.Errorf("cache.ttl_hours must be > 0")
	}
	if c.Scrape.MaxProductsPerRun <= 0 {
		return fmt.Errorf("scrape.max_products_per_run must be > 0")
	}
	if c.Scheduler.DemandBatchSize <= 0 {
		return fmt.Errorf("scheduler.demand_batch_size must be > 0")
	}
	return nil
}

// CacheTTL converts the configured TTL into a duration.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLHours) * time.Hour
}

// TranslateTimeout converts the translation timeout into a duration.
func (c Config) TranslateTimeout() time.Duration {
	return time.Duration(c.Translate.TimeoutSeconds) * time.Second
}
