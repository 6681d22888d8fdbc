// Package collector retrieves hashtag timelines and follow graphs from a
// Mastodon-compatible instance.
package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/dd0wney/fedigraph/pkg/config"
	"github.com/dd0wney/fedigraph/pkg/logging"
	"github.com/dd0wney/fedigraph/pkg/metrics"
)

// Options configures a Client.
type Options struct {
	BaseURL     string
	AccessToken string
	Hashtags    []string
	SeedUsers   []string
	MinPosts    int
	MinUsers    int
	PageLimit   int

	RequestsPerSecond float64
	ErrorPause        time.Duration // base pause before a retry
	MaxRetries        int
	Timeout           time.Duration // per request

	BreakerFailureRatio float64
	BreakerMinRequests  uint32
	BreakerOpenTimeout  time.Duration
}

// OptionsFromConfig maps the collector config section onto Options.
func OptionsFromConfig(cfg config.CollectorConfig) Options {
	return Options{
		BaseURL:             cfg.BaseURL,
		AccessToken:         cfg.AccessToken.Value(),
		Hashtags:            cfg.Hashtags,
		SeedUsers:           cfg.SeedUsers,
		MinPosts:            cfg.MinPosts,
		MinUsers:            cfg.MinUsers,
		PageLimit:           cfg.PageLimit,
		RequestsPerSecond:   cfg.RequestsPerSecond,
		ErrorPause:          cfg.ErrorPause,
		MaxRetries:          cfg.MaxRetries,
		Timeout:             cfg.Timeout,
		BreakerFailureRatio: cfg.BreakerFailureRatio,
		BreakerMinRequests:  uint32(cfg.BreakerMinRequests),
		BreakerOpenTimeout:  cfg.BreakerOpenTimeout,
	}
}

// StatusError is returned for a non-2xx response.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Temporary reports whether the request may succeed when retried.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Client talks to the remote instance. Every request waits on a shared rate
// limiter, runs through a circuit breaker and is retried on transient failure.
type Client struct {
	opts    Options
	base    *url.URL
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	logger  logging.Logger
	metrics *metrics.Registry
}

// New creates a Client. A nil logger or registry disables that output.
func New(opts Options, logger logging.Logger, reg *metrics.Registry) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("collector: invalid base url %q", opts.BaseURL)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if opts.PageLimit <= 0 {
		opts.PageLimit = 40
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	c := &Client{
		opts:    opts,
		base:    base,
		http:    &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger.With(logging.Component("collector")),
		metrics: reg,
	}

	minRequests := opts.BreakerMinRequests
	if minRequests == 0 {
		minRequests = 5
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "instance",
		MaxRequests: 1,
		Timeout:     opts.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= opts.BreakerFailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			c.logger.Warn("circuit breaker state changed",
				logging.String("breaker", name),
				logging.String("from", from.String()),
				logging.String("to", to.String()))
			if c.metrics != nil {
				c.metrics.SetBreakerState(int(to))
			}
		},
		IsSuccessful: func(err error) bool {
			// Client errors say nothing about instance health.
			var se *StatusError
			if errors.As(err, &se) && !se.Temporary() {
				return true
			}
			return err == nil
		},
	})
	return c, nil
}

func (c *Client) backoff() retry.Backoff {
	pause := c.opts.ErrorPause
	if pause <= 0 {
		pause = time.Millisecond
	}
	return retry.WithMaxRetries(uint64(max(c.opts.MaxRetries, 0)), retry.NewExponential(pause))
}

// getJSON fetches path and decodes the JSON body into out. endpoint is the
// low-cardinality label used for logs and metrics.
func (c *Client) getJSON(ctx context.Context, endpoint, path string, query url.Values, out any) error {
	u := *c.base
	u.Path = c.base.Path + path
	u.RawQuery = query.Encode()
	target := u.String()

	attempt := 0
	return retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		if attempt > 0 && c.metrics != nil {
			c.metrics.RecordCollectorRetry(endpoint)
		}
		attempt++

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		_, err := c.breaker.Execute(func() (any, error) {
			return nil, c.do(ctx, endpoint, target, out)
		})
		if err == nil {
			return nil
		}

		c.logger.Debug("request failed",
			logging.Operation(endpoint), logging.URL(target),
			logging.Int("attempt", attempt), logging.Error(err))

		var se *StatusError
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			return err
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.As(err, &se) && !se.Temporary():
			return err
		}
		return retry.RetryableError(err)
	})
}

func (c *Client) do(ctx context.Context, endpoint, target string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.opts.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.AccessToken)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.record(endpoint, "error", time.Since(start))
		return err
	}
	defer resp.Body.Close()
	c.record(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", endpoint, err)
	}
	return nil
}

func (c *Client) record(endpoint, status string, d time.Duration) {
	if c.metrics != nil {
		c.metrics.RecordCollectorRequest(endpoint, status, d)
	}
}
