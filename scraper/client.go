package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gocolly/colly/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/aluiziolira/go-snap-search/config"
)

const holderKey = "result_holder"

// Client wraps the colly collector for the profile search endpoint. All
// calls are synchronous: one blocking round trip per attempt, with a
// capped exponential backoff between retries. Decoded payloads are cached
// by search URL so a keyword repeated in the input is served from memory.
type Client struct {
	cfg       *config.Config
	collector *colly.Collector
	cache     *lru.Cache[string, any]
	metrics   *Metrics

	requestCount int
	retryCount   int
}

type fetchResult struct {
	payload any
	err     error
}

// NewClient builds a search client configured from cfg.
func NewClient(cfg *config.Config, metrics *Metrics) (*Client, error) {
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("base url must include a host")
	}

	collector := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	collector.SetRequestTimeout(cfg.Timeout)
	collector.IgnoreRobotsTxt = true
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})
	if cfg.Proxy != "" {
		if err := collector.SetProxy(cfg.Proxy); err != nil {
			return nil, fmt.Errorf("configure proxy: %w", err)
		}
	}

	cache, err := lru.New[string, any](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create payload cache: %w", err)
	}

	c := &Client{
		cfg:       cfg,
		collector: collector,
		cache:     cache,
		metrics:   metrics,
	}
	c.registerHandlers()
	return c, nil
}

func (c *Client) registerHandlers() {
	c.collector.OnRequest(func(r *colly.Request) {
		r.Ctx.Put("start", time.Now())
		c.metrics.IncRequest("started")
	})

	c.collector.OnResponse(func(r *colly.Response) {
		if start, ok := r.Ctx.GetAny("start").(time.Time); ok {
			c.metrics.ObserveDuration(time.Since(start))
		}

		holder, ok := r.Ctx.GetAny(holderKey).(*fetchResult)
		if !ok {
			return
		}
		var payload any
		if err := json.Unmarshal(r.Body, &payload); err != nil {
			holder.err = ErrDecode{Err: err}
			return
		}
		holder.payload = payload
	})

	c.collector.OnError(func(r *colly.Response, err error) {
		statusCode := 0
		if r != nil {
			statusCode = r.StatusCode
		}
		classified := classifyError(err, statusCode)
		c.metrics.IncError(errorTypeLabel(classified))

		if r == nil {
			return
		}
		if holder, ok := r.Ctx.GetAny(holderKey).(*fetchResult); ok {
			holder.err = classified
		}
	})
}

// Search performs one keyword search and returns the decoded JSON payload.
// Transient failures are retried up to MaxRetries extra attempts.
func (c *Client) Search(ctx context.Context, keyword string) (any, error) {
	searchURL := c.searchURL(keyword)

	if payload, ok := c.cache.Get(searchURL); ok {
		c.metrics.IncCacheHit()
		slog.Debug("payload cache hit", slog.String("keyword", keyword))
		return payload, nil
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			c.retryCount++
			c.metrics.IncRetries()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff(attempt)):
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		payload, err := c.fetch(searchURL)
		if err == nil {
			c.cache.Add(searchURL, payload)
			return payload, nil
		}
		lastErr = err
		if !retryable(err) {
			break
		}
		slog.Debug("retrying search",
			slog.String("keyword", keyword),
			slog.Int("attempt", attempt+1),
			slog.Any("error", err),
		)
	}

	return nil, lastErr
}

func (c *Client) fetch(searchURL string) (any, error) {
	c.requestCount++

	holder := &fetchResult{}
	cctx := colly.NewContext()
	cctx.Put(holderKey, holder)

	err := c.collector.Request(http.MethodGet, searchURL, nil, cctx, nil)
	if holder.err != nil {
		return nil, holder.err
	}
	if err != nil {
		return nil, classifyError(err, 0)
	}
	return holder.payload, nil
}

func (c *Client) searchURL(keyword string) string {
	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return c.cfg.BaseURL
	}
	query := u.Query()
	query.Set("q", keyword)
	query.Set("type", "profile")
	query.Set("count", strconv.Itoa(c.cfg.MaxProfiles))
	u.RawQuery = query.Encode()
	return u.String()
}

func (c *Client) backoff(attempt int) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}

	base := c.cfg.RetryBackoff
	if base <= 0 {
		base = 100 * time.Millisecond
	}

	delay := base * time.Duration(1<<(attempt-1))
	if max := c.cfg.RetryBackoffMax; max > 0 && delay > max {
		delay = max
	}
	return delay
}

// RequestCount returns the number of HTTP attempts issued.
func (c *Client) RequestCount() int {
	return c.requestCount
}

// RetryCount returns the number of retry attempts issued.
func (c *Client) RetryCount() int {
	return c.retryCount
}

func classifyError(err error, statusCode int) error {
	if err == nil && statusCode == 0 {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout{Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout{Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ErrConnection{Err: err}
	}

	if statusCode != 0 {
		wrapped := err
		if wrapped == nil {
			wrapped = fmt.Errorf("http status %d", statusCode)
		}
		switch statusCode {
		case http.StatusForbidden:
			return ErrForbidden{Err: wrapped}
		case http.StatusNotFound:
			return ErrNotFound{Err: wrapped}
		case http.StatusTooManyRequests:
			return ErrRateLimited{Err: wrapped}
		}
	}

	if err == nil {
		return nil
	}
	return err
}
