package client

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"

	"github.com/fivetwenty-io/omie-client/internal/http"
	"github.com/fivetwenty-io/omie-client/pkg/omie"
)

type computeFunc func(ctx context.Context) (*omie.Response, error)

// Fingerprint identifies a request for caching: verb, URL and a digest of
// the body. Credentials live in the body, so they are part of it.
func Fingerprint(verb, url string, body []byte) string {
	sum := sha256.Sum256(body)

	return verb + ":" + url + ":" + hex.EncodeToString(sum[:])
}

// lookupOrCompute returns the live cached response for key, or runs compute
// and caches its result. Concurrent callers with the same key share a single
// compute call. The shared call is detached from any one caller's context:
// each caller stops waiting when its own context is done, and the call runs
// on, bounded by the flight timeout, for the others.
func (c *Client) lookupOrCompute(ctx context.Context, url, key string, compute computeFunc) (*omie.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, omie.NewTransportError(url, err)
	}

	if resp, ok := c.lookup(ctx, key); ok {
		c.stats.hits.Add(1)

		return resp, nil
	}

	c.stats.misses.Add(1)

	flightCtx := context.WithoutCancel(ctx)

	flight := c.flights.DoChan(key, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(flightCtx, c.flightTimeout)
		defer cancel()

		// an earlier flight may have filled the entry since the lookup
		if resp, ok := c.lookup(ctx, key); ok {
			return resp, nil
		}

		resp, err := compute(ctx)
		if err != nil {
			return nil, err
		}

		c.store(ctx, key, resp)

		return resp, nil
	})

	select {
	case <-ctx.Done():
		return nil, omie.NewTransportError(url, ctx.Err())
	case result := <-flight:
		if result.Shared {
			c.stats.coalesced.Add(1)
		}

		if result.Err != nil {
			return nil, result.Err
		}

		resp, _ := result.Val.(*omie.Response)

		return cloneResponse(resp), nil
	}
}

func (c *Client) lookup(ctx context.Context, key string) (*omie.Response, bool) {
	entry, err := c.cache.Get(ctx, key)
	if err != nil {
		if !isCacheMiss(err) {
			c.logger.Warn("cache lookup failed", map[string]interface{}{"error": err.Error()})
		}

		return nil, false
	}

	c.logger.Debug("cache hit", map[string]interface{}{"expires_at": entry.ExpiresAt})

	return &omie.Response{
		StatusCode: entry.StatusCode,
		Header:     entry.Header.Clone(),
		Body:       bytes.Clone(entry.Data),
		Cached:     true,
	}, true
}

// cloneResponse copies resp so callers never share its body or header with
// the cache or with each other.
func cloneResponse(resp *omie.Response) *omie.Response {
	out := *resp
	out.Header = resp.Header.Clone()
	out.Body = bytes.Clone(resp.Body)

	return &out
}

// store caches resp when its body is a JSON object. Faults are cached like
// results; proxy error pages, empty bodies and retryable statuses are not.
func (c *Client) store(ctx context.Context, key string, resp *omie.Response) {
	if http.Retryable(resp.StatusCode) || !isJSONObject(resp.Body) {
		return
	}

	entry := &omie.CacheEntry{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Data:       resp.Body,
		ExpiresAt:  c.now().Add(c.cacheTTL),
	}

	err := c.cache.Set(ctx, key, entry)
	if err != nil {
		c.logger.Warn("cache store failed", map[string]interface{}{"error": err.Error()})

		return
	}

	c.stats.sets.Add(1)
}

func isCacheMiss(err error) bool {
	return errors.Is(err, omie.ErrCacheMiss) ||
		errors.Is(err, omie.ErrCacheEntryExpired) ||
		errors.Is(err, omie.ErrCacheDisabled) ||
		errors.Is(err, omie.ErrKeyNotFoundInAnyCache)
}

func isJSONObject(body []byte) bool {
	var fields map[string]json.RawMessage

	return json.Unmarshal(body, &fields) == nil && fields != nil
}
