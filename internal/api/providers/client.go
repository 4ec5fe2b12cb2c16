package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultRatePerSec = 2.0
	maxAttempts       = 3
	userAgent         = "JobAlertBot/1.0"
)

// Options are shared by every provider variant.
type Options struct {
	Timeout      time.Duration // per request, including retries
	RatePerSec   float64       // outbound requests per second to one provider
	ResultsLimit int           // raw results kept per call
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.RatePerSec <= 0 {
		o.RatePerSec = defaultRatePerSec
	}
	if o.ResultsLimit <= 0 {
		o.ResultsLimit = DefaultResultsLimit
	}
	return o
}

// client is the HTTP plumbing shared by provider variants
type client struct {
	tag        Tag
	httpClient *http.Client
	limiter    *rate.Limiter
	timeout    time.Duration
	logger     *zap.Logger
}

func newClient(tag Tag, opts Options, logger *zap.Logger) *client {
	burst := int(opts.RatePerSec)
	if burst < 1 {
		burst = 1
	}

	return &client{
		tag: tag,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSec), burst),
		timeout: opts.Timeout,
		logger:  logger.With(zap.String("provider", string(tag))),
	}
}

// doRequest performs one HTTP call with retries on transport errors,
// 429 and 5xx. A JSON body is sent when body is not nil.
func (c *client) doRequest(ctx context.Context, method, endpoint string, params url.Values, body interface{}) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	fullURL := endpoint
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * time.Second
			c.logger.Debug("retrying request",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
				zap.NamedError("last_error", lastErr),
			)
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("request cancelled: %w (last error: %v)", ctx.Err(), lastErr)
			case <-time.After(backoff):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		data, retry, err := c.attempt(ctx, method, fullURL, payload)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retry {
			return nil, err
		}
	}

	return nil, fmt.Errorf("request failed after retries: %w", lastErr)
}

func (c *client) attempt(ctx context.Context, method, fullURL string, payload []byte) ([]byte, bool, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, fmt.Errorf("http %s: %w", method, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.logger.Debug("successful request", zap.Int("status", resp.StatusCode))
		return data, false, nil
	}

	c.logger.Warn("provider API error",
		zap.Int("status", resp.StatusCode),
		zap.String("path", req.URL.Path),
	)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, true, fmt.Errorf("rate limit exceeded")
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	default:
		return nil, false, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
}

func (c *client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	return c.doRequest(ctx, http.MethodGet, endpoint, params, nil)
}

func (c *client) post(ctx context.Context, endpoint string, body interface{}) ([]byte, error) {
	return c.doRequest(ctx, http.MethodPost, endpoint, nil, body)
}

func parseResponse(data []byte, dest interface{}) error {
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
