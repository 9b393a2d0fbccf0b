// Package config provides configuration management for the EPG API server.
package config

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"time"

	// Embed the timezone database so LoadLocation works on hosts without
	// one installed.
	_ "time/tzdata"
)

var (
	// ErrFeedURLRequired is returned when the feed URL is not provided.
	ErrFeedURLRequired = errors.New("feed URL is required")
	// ErrInvalidPort is returned when the port number is invalid.
	ErrInvalidPort = errors.New("invalid port number")
	// ErrTimeoutPositive is returned when the fetch timeout is not positive.
	ErrTimeoutPositive = errors.New("fetch timeout must be positive")
	// ErrRetriesNegative is returned when the retry count is negative.
	ErrRetriesNegative = errors.New("fetch retries must not be negative")
	// ErrInvalidTimezone is returned when the display timezone is unknown.
	ErrInvalidTimezone = errors.New("invalid display timezone")
	// ErrInvalidLogLevel is returned when the log level is invalid.
	ErrInvalidLogLevel = errors.New("invalid log level")
)

// Config holds the application configuration.
type Config struct {
	FeedURL       string
	Port          int
	LogLevel      string
	Timezone      string
	ChannelPrefix string
	FetchTimeout  time.Duration
	FetchRetries  int

	// Location is resolved from Timezone during Validate.
	Location *time.Location
}

// New creates a new configuration instance by parsing command-line flags.
func New() (*Config, error) {
	cfg := &Config{}

	flag.StringVar(&cfg.FeedURL, "feed", "https://avkb.short.gy/tsepg.xml.gz", "URL of the gzip-compressed XMLTV feed")
	flag.IntVar(&cfg.Port, "port", 8080, "Port to listen on")
	flag.StringVar(&cfg.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.StringVar(&cfg.Timezone, "timezone", "Asia/Kolkata", "Display timezone for program times")
	flag.StringVar(&cfg.ChannelPrefix, "channel-prefix", "ts", "Prefix prepended to requested channel IDs before lookup")
	flag.DurationVar(&cfg.FetchTimeout, "fetch-timeout", 10*time.Second, "Timeout for downloading the feed")
	flag.IntVar(&cfg.FetchRetries, "fetch-retries", 2, "Extra attempts after a transient feed download failure")

	flag.Parse()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid and resolves the display
// timezone into Location.
func (c *Config) Validate() error {
	if c.FeedURL == "" {
		return ErrFeedURLRequired
	}

	if _, err := url.Parse(c.FeedURL); err != nil {
		return fmt.Errorf("invalid feed URL: %w", err)
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Port)
	}

	if c.FetchTimeout <= 0 {
		return ErrTimeoutPositive
	}

	if c.FetchRetries < 0 {
		return ErrRetriesNegative
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTimezone, c.Timezone)
	}
	c.Location = loc

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("%w: %s (must be debug, info, warn, or error)", ErrInvalidLogLevel, c.LogLevel)
	}

	return nil
}
