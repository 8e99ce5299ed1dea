package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dharmasatrya/flightdeals/internal/cache"
	"github.com/dharmasatrya/flightdeals/internal/metrics"
	"github.com/dharmasatrya/flightdeals/internal/ratelimit"
	"github.com/dharmasatrya/flightdeals/pkg/logger"
)

const maxPayloadBytes = 8 << 20

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Deps are the collaborators shared by every upstream client. Nil fields
// fall back to inert defaults.
type Deps struct {
	Limiter    *ratelimit.UpstreamLimiter
	Cache      cache.Cache
	Metrics    *metrics.Metrics
	Logger     logger.Logger
	HTTPClient *http.Client
}

// client is the RapidAPI transport: rate limit, payload cache, one GET, no retry.
type client struct {
	name    string
	baseURL string
	host    string
	apiKey  string
	http    *http.Client
	limiter *ratelimit.UpstreamLimiter
	cache   cache.Cache
	metrics *metrics.Metrics
	log     logger.Logger
}

func newClient(name string, cfg Config, deps Deps) (*client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("%s: invalid base url %q", name, cfg.BaseURL)
	}

	c := &client{
		name:    name,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		host:    u.Host,
		apiKey:  cfg.APIKey,
		http:    deps.HTTPClient,
		limiter: deps.Limiter,
		cache:   deps.Cache,
		metrics: deps.Metrics,
		log:     deps.Logger,
	}
	if c.http == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		c.http = &http.Client{Timeout: timeout}
	}
	if c.limiter == nil {
		c.limiter = ratelimit.NewUpstreamLimiter(ratelimit.DefaultConfig())
	}
	if c.cache == nil {
		c.cache = cache.NewNoOpCache()
	}
	if c.metrics == nil {
		c.metrics = metrics.NewMetrics(prometheus.NewRegistry())
	}
	if c.log == nil {
		c.log = logger.NewNop()
	}
	return c, nil
}

func (c *client) Name() string {
	return c.name
}

func (c *client) Configured() bool {
	return c.apiKey != ""
}

// fetch GETs path with query and hands the body to accept. A cached payload
// is tried first; a fresh payload is cached only once accept returns nil.
func (c *client) fetch(ctx context.Context, path string, query url.Values, accept func([]byte) error) error {
	if !c.Configured() {
		return NewProviderError(c.name, ErrMissingAPIKey)
	}

	key := cache.Key(c.name, path, query)
	if body, ok := c.cache.Get(ctx, key); ok {
		c.metrics.IncCacheLookup(c.name, true)
		if err := accept(body); err == nil {
			c.metrics.ObserveUpstream(c.name, metrics.OutcomeCache, 0)
			return nil
		}
	} else {
		c.metrics.IncCacheLookup(c.name, false)
	}

	body, err := c.get(ctx, path, query)
	if err != nil {
		return err
	}
	if err := accept(body); err != nil {
		return NewProviderError(c.name, err)
	}

	if err := c.cache.Set(ctx, key, body); err != nil {
		c.log.Warn("cache write failed", "upstream", c.name, "error", err)
	}
	return nil
}

func (c *client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	waited, err := c.limiter.Wait(ctx, c.name)
	c.metrics.ObserveRateLimitWait(c.name, waited)
	if err != nil {
		return nil, NewProviderError(c.name, fmt.Errorf("rate limit: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, NewProviderError(c.name, err)
	}
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", c.host)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.ObserveUpstream(c.name, metrics.OutcomeError, time.Since(start))
		return nil, NewProviderError(c.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.ObserveUpstream(c.name, metrics.OutcomeError, elapsed)
		return nil, NewProviderError(c.name, fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.ObserveUpstream(c.name, metrics.OutcomeError, elapsed)
		return nil, NewProviderError(c.name, fmt.Errorf("%w: %d %s", ErrUpstreamStatus, resp.StatusCode, snippet(body)))
	}

	c.metrics.ObserveUpstream(c.name, metrics.OutcomeOK, elapsed)
	c.log.Debug("upstream request", "upstream", c.name, "path", path, "status", resp.StatusCode, "elapsed", elapsed)
	return body, nil
}

func snippet(body []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
