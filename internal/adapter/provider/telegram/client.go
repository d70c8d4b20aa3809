// Package telegram reads public Telegram channels through the web preview at
// t.me/s/<channel> and downloads the photos attached to their posts.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/heartmarshall/medchan-backend/internal/config"
)

const (
	defaultBaseURL   = "https://t.me"
	retryWaitTime    = 500 * time.Millisecond
	retryMaxWaitTime = 5 * time.Second
)

// Client is a rate-limited HTTP client for t.me shared by the fetcher and
// the media downloader.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	log     *slog.Logger
}

// NewClient creates a Client from TelegramConfig. An empty base URL uses
// https://t.me; a non-positive request rate disables limiting.
func NewClient(cfg config.TelegramConfig, logger *slog.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	limit := rate.Limit(cfg.RequestsPerSecond)
	if cfg.RequestsPerSecond <= 0 {
		limit = rate.Inf
	}
	burst := max(cfg.Burst, 1)

	log := logger.With("adapter", "telegram")

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(retryWaitTime).
		SetRetryMaxWaitTime(retryMaxWaitTime).
		AddRetryCondition(func(res *resty.Response, err error) bool {
			return err != nil || res.StatusCode() >= http.StatusInternalServerError || res.StatusCode() == http.StatusTooManyRequests
		}).
		AddRetryHook(func(res *resty.Response, err error) {
			reason := "network error"
			if err == nil && res != nil {
				reason = fmt.Sprintf("status %d", res.StatusCode())
			}
			url := ""
			if res != nil && res.Request != nil {
				url = res.Request.URL
			}
			log.Warn("telegram retry", slog.String("url", url), slog.String("reason", reason))
		})

	return &Client{
		http:    client,
		limiter: rate.NewLimiter(limit, burst),
		log:     log,
	}
}

// get performs a rate-limited GET and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, url string, query map[string]string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(query).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("GET %s: unexpected status %d", url, res.StatusCode())
	}
	return res.Body(), nil
}
