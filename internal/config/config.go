// Package config loads and validates crawler configuration via Viper.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/hollis-b/sitesnap/internal/crawler"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Crawler CrawlerConfig `mapstructure:"crawler"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// CrawlerConfig governs crawl loop behavior.
type CrawlerConfig struct {
	SeedURL            string `mapstructure:"seed_url"`
	MaxPages           int    `mapstructure:"max_pages"`
	OutputDir          string `mapstructure:"output_dir"`
	DelaySeconds       int    `mapstructure:"delay_seconds"`
	UserAgent          string `mapstructure:"user_agent"`
	DisambiguateImages bool   `mapstructure:"disambiguate_images"`
}

// HTTPConfig configures the fetch transport.
type HTTPConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from an optional config file and the environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SITESNAP")
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
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("crawler.max_pages", -1)
	v.SetDefault("crawler.output_dir", "website_content")
	v.SetDefault("crawler.delay_seconds", 1)
	v.SetDefault("crawler.user_agent", "sitesnap/1.0 (+https://github.com/hollis-b/sitesnap)")
	v.SetDefault("crawler.disambiguate_images", false)
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values. A violation here is a setup error and
// aborts before any crawling starts.
func (c Config) Validate() error {
	if err := ValidateSeedURL(c.Crawler.SeedURL); err != nil {
		return err
	}
	if c.Crawler.OutputDir == "" {
		return fmt.Errorf("crawler.output_dir must be set")
	}
	if c.Crawler.DelaySeconds < 0 {
		return fmt.Errorf("crawler.delay_seconds must be >= 0")
	}
	if c.Crawler.UserAgent == "" {
		return fmt.Errorf("crawler.user_agent must be set")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	return nil
}

// ValidateSeedURL checks that the seed is an absolute http or https URL.
func ValidateSeedURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("seed URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid seed URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("seed URL %q must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("seed URL %q must be absolute", raw)
	}
	return nil
}

// EngineConfig converts the loaded settings into the crawler's Config.
func (c Config) EngineConfig() crawler.Config {
	return crawler.Config{
		SeedURL:            c.Crawler.SeedURL,
		MaxPages:           c.Crawler.MaxPages,
		OutputDir:          c.Crawler.OutputDir,
		Delay:              time.Duration(c.Crawler.DelaySeconds) * time.Second,
		UserAgent:          c.Crawler.UserAgent,
		RequestTimeout:     time.Duration(c.HTTP.TimeoutSeconds) * time.Second,
		DisambiguateImages: c.Crawler.DisambiguateImages,
	}
}
