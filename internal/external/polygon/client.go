package polygon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/wonny/equityrank/pkg/config"
	"github.com/wonny/equityrank/pkg/logger"
)

var ErrInvalidStatusCode = errors.New("invalid status code received")

// Client talks to the Polygon.io REST API. All calls honor a client-side
// rate limit so free-tier keys survive a full collection run.
type Client struct {
	http    *resty.Client
	apiKey  string
	limiter *rate.Limiter
	logger  *logger.Logger
}

// New creates a Polygon client from market-data configuration.
func New(cfg config.MarketDataConfig, log *logger.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(30 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err == nil && (r.StatusCode() == 429 || r.StatusCode() >= 500)
		})

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RateLimit)), 1)
	}

	return &Client{
		http:    httpClient,
		apiKey:  cfg.APIKey,
		limiter: limiter,
		logger:  log,
	}
}

// get performs one rate-limited GET. url may be a path relative to the base
// URL or an absolute next_url returned by a previous page.
func (c *Client) get(ctx context.Context, url string, params map[string]string, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("apiKey", c.apiKey).
		SetQueryParams(params).
		SetResult(result).
		Get(url)
	if err != nil {
		return fmt.Errorf("request %s: %w", url, err)
	}
	if resp.StatusCode() >= 300 {
		c.logger.WithFields(map[string]interface{}{
			"status": resp.StatusCode(),
			"url":    url,
		}).Error("Upstream request failed")
		return fmt.Errorf("%w (%d): %s", ErrInvalidStatusCode, resp.StatusCode(), resp.Body())
	}
	return nil
}
