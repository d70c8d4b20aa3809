package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	CORS     CORSConfig     `yaml:"cors"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Telegram TelegramConfig `yaml:"telegram"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Content-Type,X-Request-Id"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	// RateLimitPerMinute caps requests per client IP; 0 disables limiting.
	RateLimitPerMinute int   `yaml:"rate_limit_per_minute" env:"SERVER_RATE_LIMIT_PER_MINUTE" env-default:"600"`
	MaxBodyBytes       int64 `yaml:"max_body_bytes"        env:"SERVER_MAX_BODY_BYTES"        env-default:"1048576"`
}

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DatabaseConfig holds record storage connection settings.
// For the sqlite driver DSN is a database file path.
type DatabaseConfig struct {
	Driver          string        `yaml:"driver"             env:"DATABASE_DRIVER"             env-default:"postgres"`
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// LogConfig holds logging settings. When File is set, records are also
// written to a size-rotated file.
type LogConfig struct {
	Level      string `yaml:"level"        env:"LOG_LEVEL"        env-default:"info"`
	Format     string `yaml:"format"       env:"LOG_FORMAT"       env-default:"json"`
	File       string `yaml:"file"         env:"LOG_FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb"  env:"LOG_MAX_SIZE_MB"  env-default:"50"`
	MaxBackups int    `yaml:"max_backups"  env:"LOG_MAX_BACKUPS"  env-default:"3"`
}

// PipelineConfig holds ingestion job settings.
type PipelineConfig struct {
	Sources         []string `yaml:"sources"           env:"PIPELINE_SOURCES"           env-separator:"," env-default:"@DoctorsET,@CheMed123,@lobelia4cosmetics,@yetenaweg,@EAHCI"`
	ImageSources    []string `yaml:"image_sources"     env:"PIPELINE_IMAGE_SOURCES"     env-separator:"," env-default:"@CheMed123,@lobelia4cosmetics"`
	CursorDir       string   `yaml:"cursor_dir"        env:"PIPELINE_CURSOR_DIR"        env-default:"data/last_id"`
	RawDir          string   `yaml:"raw_dir"           env:"PIPELINE_RAW_DIR"           env-default:"data/raw_data"`
	CleanedPath     string   `yaml:"cleaned_path"      env:"PIPELINE_CLEANED_PATH"      env-default:"data/cleaned_medical_data.csv"`
	MergedPath      string   `yaml:"merged_path"       env:"PIPELINE_MERGED_PATH"       env-default:"data/merged_medical_data.csv"`
	ImagesDir       string   `yaml:"images_dir"        env:"PIPELINE_IMAGES_DIR"        env-default:"data/images"`
	FetchLimit      int      `yaml:"fetch_limit"       env:"PIPELINE_FETCH_LIMIT"       env-default:"1000"`
	ImageFetchLimit int      `yaml:"image_fetch_limit" env:"PIPELINE_IMAGE_FETCH_LIMIT" env-default:"100"`
	BatchSize       int      `yaml:"batch_size"        env:"PIPELINE_BATCH_SIZE"        env-default:"500"`
}

// TelegramConfig holds settings of the public channel preview client.
type TelegramConfig struct {
	BaseURL           string        `yaml:"base_url"            env:"TELEGRAM_BASE_URL"            env-default:"https://t.me"`
	UserAgent         string        `yaml:"user_agent"          env:"TELEGRAM_USER_AGENT"          env-default:"medchan-scraper/1.0"`
	Timeout           time.Duration `yaml:"timeout"             env:"TELEGRAM_TIMEOUT"             env-default:"15s"`
	RequestsPerSecond float64       `yaml:"requests_per_second" env:"TELEGRAM_REQUESTS_PER_SECOND" env-default:"1"`
	Burst             int           `yaml:"burst"               env:"TELEGRAM_BURST"               env-default:"1"`
	RetryCount        int           `yaml:"retry_count"         env:"TELEGRAM_RETRY_COUNT"         env-default:"2"`
}
