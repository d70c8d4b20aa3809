package config

import (
	"fmt"
	"strings"

	"github.com/heartmarshall/medchan-backend/internal/domain"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("database.driver must be %q or %q (got %q)", DriverPostgres, DriverSQLite, c.Database.Driver)
	}

	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("database.dsn is required")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535 (got %d)", c.Server.Port)
	}

	if c.Server.RateLimitPerMinute < 0 {
		return fmt.Errorf("server.rate_limit_per_minute must be >= 0 (got %d)", c.Server.RateLimitPerMinute)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be > 0 (got %d)", c.Server.MaxBodyBytes)
	}

	if err := c.Pipeline.validate(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	if err := c.Telegram.validate(); err != nil {
		return fmt.Errorf("telegram: %w", err)
	}

	return nil
}

func (p *PipelineConfig) validate() error {
	if _, err := domain.ParseSources(p.Sources); err != nil {
		return fmt.Errorf("sources: %w", err)
	}
	if _, err := domain.ParseSources(p.ImageSources); err != nil {
		return fmt.Errorf("image_sources: %w", err)
	}
	if p.CursorDir == "" {
		return fmt.Errorf("cursor_dir is required")
	}
	if p.FetchLimit <= 0 {
		return fmt.Errorf("fetch_limit must be > 0 (got %d)", p.FetchLimit)
	}
	if p.ImageFetchLimit <= 0 {
		return fmt.Errorf("image_fetch_limit must be > 0 (got %d)", p.ImageFetchLimit)
	}
	if p.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0 (got %d)", p.BatchSize)
	}
	return nil
}

func (t *TelegramConfig) validate() error {
	if !strings.HasPrefix(t.BaseURL, "http://") && !strings.HasPrefix(t.BaseURL, "https://") {
		return fmt.Errorf("base_url must be an http(s) URL (got %q)", t.BaseURL)
	}
	if t.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests_per_second must be > 0 (got %v)", t.RequestsPerSecond)
	}
	if t.Burst < 1 {
		return fmt.Errorf("burst must be >= 1 (got %d)", t.Burst)
	}
	if t.RetryCount < 0 {
		return fmt.Errorf("retry_count must be >= 0 (got %d)", t.RetryCount)
	}
	return nil
}
