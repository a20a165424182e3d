package client

import (
	"context"
	"encoding/json"
	"fmt"
	nethttp "net/http"

	"github.com/fivetwenty-io/omie-client/internal/http"
	"github.com/fivetwenty-io/omie-client/pkg/omie"
)

// envelope is the wire body of every call.
type envelope struct {
	AppKey    string           `json:"app_key"`
	AppSecret string           `json:"app_secret"`
	Call      string           `json:"call"`
	Param     []map[string]any `json:"param"`
}

// Get performs a single call and returns the decoded body.
func (c *Client) Get(ctx context.Context, method omie.Method, params any, opts ...omie.CallOption) (omie.Record, error) {
	resp, err := c.GetRaw(ctx, method, params, opts...)
	if err != nil {
		return nil, err
	}

	return resp.Record()
}

// GetRaw performs a single call and returns the undecoded response.
func (c *Client) GetRaw(ctx context.Context, method omie.Method, params any, opts ...omie.CallOption) (*omie.Response, error) {
	options := omie.ApplyCallOptions(opts...)

	ctx, cancel := withTimeout(ctx, options)
	defer cancel()

	desc, payload, err := c.prepare(method, params)
	if err != nil {
		return nil, err
	}

	return c.execute(ctx, desc, payload, options)
}

// prepare resolves the method, rejects non-query methods and normalizes
// params.
func (c *Client) prepare(method omie.Method, params any) (omie.MethodDescriptor, map[string]any, error) {
	desc, err := method.Resolve(c.catalog)
	if err != nil {
		return omie.MethodDescriptor{}, nil, err
	}

	if desc.Kind != omie.Query {
		return omie.MethodDescriptor{}, nil, &omie.ClientError{Op: desc.Name, Err: omie.ErrNotQueryMethod}
	}

	payload, err := omie.Normalize(desc, params)
	if err != nil {
		return omie.MethodDescriptor{}, nil, err
	}

	return desc, payload, nil
}

// execute sends one envelope, through the cache when options allow it.
func (c *Client) execute(ctx context.Context, desc omie.MethodDescriptor, payload map[string]any, options omie.CallOptions) (*omie.Response, error) {
	if desc.Kind != omie.Query {
		return nil, &omie.ClientError{Op: desc.Name, Err: omie.ErrNotQueryMethod}
	}

	body, err := c.encodeEnvelope(desc.Name, payload)
	if err != nil {
		return nil, &omie.ClientError{Op: desc.Name, Err: err}
	}

	send := func(ctx context.Context) (*omie.Response, error) {
		resp, err := c.httpClient.Do(ctx, &http.Request{
			Call:    desc.Name,
			Path:    desc.Path,
			Body:    body,
			Retries: options.Retries,
		})
		if err != nil {
			return nil, err
		}

		return &omie.Response{
			StatusCode: resp.StatusCode,
			Header:     resp.Header,
			Body:       resp.Body,
		}, nil
	}

	if !options.UseCache {
		return send(ctx)
	}

	url := c.httpClient.URL(desc.Path)

	return c.lookupOrCompute(ctx, url, Fingerprint(nethttp.MethodPost, url, body), send)
}

func (c *Client) encodeEnvelope(call string, payload map[string]any) ([]byte, error) {
	if payload == nil {
		payload = map[string]any{}
	}

	body, err := json.Marshal(envelope{
		AppKey:    c.appKey,
		AppSecret: c.appSecret,
		Call:      call,
		Param:     []map[string]any{payload},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode envelope: %w", err)
	}

	return body, nil
}

func withTimeout(ctx context.Context, options omie.CallOptions) (context.Context, context.CancelFunc) {
	if options.Timeout > 0 {
		return context.WithTimeout(ctx, options.Timeout)
	}

	return context.WithCancel(ctx)
}
