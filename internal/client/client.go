package client

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/fivetwenty-io/omie-client/internal/constants"
	"github.com/fivetwenty-io/omie-client/internal/http"
	"github.com/fivetwenty-io/omie-client/pkg/omie"
)

// Client implements the omie.Client interface.
type Client struct {
	appKey    string
	appSecret string

	httpClient *http.Client
	catalog    *omie.Catalog
	logger     omie.Logger

	cache    omie.Cache
	cacheTTL time.Duration
	flights  singleflight.Group
	stats    cacheCounters
	now      func() time.Time

	// flightTimeout bounds a shared network call, which runs detached from
	// the callers waiting on it.
	flightTimeout time.Duration
}

type cacheCounters struct {
	hits      atomic.Int64
	misses    atomic.Int64
	sets      atomic.Int64
	coalesced atomic.Int64
}

var _ omie.Client = (*Client)(nil)

// New creates a client from config. Missing credentials fail here, before
// any network access.
func New(config *omie.Config) (*Client, error) {
	if config == nil || strings.TrimSpace(config.AppKey) == "" || strings.TrimSpace(config.AppSecret) == "" {
		return nil, &omie.ClientError{Op: "new client", Err: omie.ErrMissingCredentials}
	}

	logger := config.Logger
	if logger == nil {
		logger = omie.NoOpLogger{}
	}

	cacheTTL := config.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = constants.DefaultCacheTTL
	}

	cache := config.Cache
	if cache == nil {
		cache = omie.NewMemoryCache(config.CacheMaxEntries)
	}

	catalog := config.Catalog
	if catalog == nil {
		catalog = omie.MustCatalog()
	}

	client := &Client{
		appKey:        config.AppKey,
		appSecret:     config.AppSecret,
		httpClient:    http.NewClient(config.URLPrefix, createHTTPClientOptions(config, logger)...),
		catalog:       catalog,
		logger:        logger,
		cache:         cache,
		cacheTTL:      cacheTTL,
		now:           time.Now,
		flightTimeout: flightTimeout(config),
	}

	return client, nil
}

func createHTTPClientOptions(config *omie.Config, logger omie.Logger) []http.Option {
	chain := config.Interceptors.Clone()
	if config.RequestsPerSecond > 0 {
		chain.PrependRequestInterceptor(omie.RateLimitInterceptor(omie.NewRateLimiter(config.RequestsPerSecond)))
	}

	httpOpts := []http.Option{
		http.WithLogger(logger),
		http.WithInterceptors(chain),
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.HTTPClient != nil {
		httpOpts = append(httpOpts, http.WithHTTPClient(config.HTTPClient))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	retryMax, retryWaitMin, retryWaitMax := retrySettings(config)

	return append(httpOpts, http.WithRetryConfig(retryMax, retryWaitMin, retryWaitMax))
}

func retrySettings(config *omie.Config) (int, time.Duration, time.Duration) {
	retryMax := constants.LowRetryMax
	if config.RetryMax > 0 {
		retryMax = config.RetryMax
	}

	retryWaitMin := constants.DefaultRetryWaitMin
	if config.RetryWaitMin > 0 {
		retryWaitMin = config.RetryWaitMin
	}

	retryWaitMax := constants.DefaultRetryWaitMax
	if config.RetryWaitMax > 0 {
		retryWaitMax = config.RetryWaitMax
	}

	return retryMax, retryWaitMin, retryWaitMax
}

// flightTimeout is the longest a call can take with every attempt timing
// out and every backoff at its maximum.
func flightTimeout(config *omie.Config) time.Duration {
	attemptTimeout := constants.DefaultHTTPTimeout
	if config.HTTPTimeout > 0 {
		attemptTimeout = config.HTTPTimeout
	}

	retryMax, _, retryWaitMax := retrySettings(config)

	return attemptTimeout*time.Duration(retryMax+1) + retryWaitMax*time.Duration(retryMax)
}

// Catalog returns the catalog method names are resolved against.
func (c *Client) Catalog() *omie.Catalog {
	return c.catalog
}

// URLPrefix returns the normalized prefix every path is appended to.
func (c *Client) URLPrefix() string {
	return c.httpClient.Prefix()
}

// CacheStats returns a snapshot of cache counters.
func (c *Client) CacheStats() omie.CacheStats {
	return omie.CacheStats{
		Hits:      c.stats.hits.Load(),
		Misses:    c.stats.misses.Load(),
		Sets:      c.stats.sets.Load(),
		Coalesced: c.stats.coalesced.Load(),
	}
}

// ClearCache drops every cached response.
func (c *Client) ClearCache(ctx context.Context) error {
	return c.cache.Clear(ctx)
}

// SetClock replaces the time source used to stamp cache expiry.
func (c *Client) SetClock(now func() time.Time) {
	c.now = now
}
