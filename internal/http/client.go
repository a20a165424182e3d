// Package http is the transport used by the Omie client: JSON POSTs with
// retries, interceptors and no redirect following.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/fivetwenty-io/omie-client/internal/constants"
	"github.com/fivetwenty-io/omie-client/pkg/omie"
)

// Request is one POST to an API path.
type Request struct {
	// Call is the API method name, used for logging and interceptors.
	Call    string
	Path    string
	Body    []byte
	Headers http.Header

	// Retries overrides the client's retry count when non-nil.
	Retries *int
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client posts JSON bodies to a fixed URL prefix.
type Client struct {
	prefix     string
	httpClient *http.Client
	logger     omie.Logger
	debug      bool
	userAgent  string

	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration

	interceptors *omie.InterceptorChain

	mu      sync.Mutex
	clients map[int]*retryablehttp.Client
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger omie.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug logs every request and response at debug level.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithRetryConfig sets retry count and backoff bounds.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.retryMax = retryMax
		c.retryWaitMin = waitMin
		c.retryWaitMax = waitMax
	}
}

// WithTimeout bounds each attempt.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying client. Redirects are still not
// followed.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			clone := *client
			c.httpClient = &clone
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithInterceptors runs chain around every request that reaches the network.
func WithInterceptors(chain *omie.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// NewClient creates a transport for URLs under prefix.
func NewClient(prefix string, opts ...Option) *Client {
	client := &Client{
		prefix:       NormalizePrefix(prefix),
		httpClient:   &http.Client{Timeout: constants.DefaultHTTPTimeout},
		userAgent:    constants.DefaultUserAgent,
		retryMax:     constants.LowRetryMax,
		retryWaitMin: constants.DefaultRetryWaitMin,
		retryWaitMax: constants.DefaultRetryWaitMax,
		clients:      make(map[int]*retryablehttp.Client),
	}

	for _, opt := range opts {
		opt(client)
	}

	client.httpClient.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return client
}

// NormalizePrefix makes prefix absolute and slash-terminated.
func NormalizePrefix(prefix string) string {
	if prefix == "" {
		prefix = constants.DefaultURLPrefix
	}

	if !strings.HasPrefix(prefix, "http://") && !strings.HasPrefix(prefix, "https://") {
		prefix = "https://" + prefix
	}

	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	return prefix
}

// Prefix returns the normalized URL prefix.
func (c *Client) Prefix() string {
	return c.prefix
}

// URL returns the endpoint for an API path: prefix + path + "/".
func (c *Client) URL(path string) string {
	return c.prefix + strings.Trim(path, "/") + "/"
}

// Do sends the request. Failing to get any response yields an
// *omie.TransportError. Any response, whatever its status, is returned.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	url := c.URL(req.Path)

	intercepted := &omie.Request{
		Method:  req.Call,
		URL:     url,
		Headers: req.Headers.Clone(),
		Body:    req.Body,
	}

	err := c.interceptors.ExecuteRequestInterceptors(ctx, intercepted)
	if err != nil {
		return nil, omie.NewTransportError(url, err)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, intercepted.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, values := range intercepted.Headers {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	httpReq.Header.Set("Content-Type", constants.ContentTypeJSON)
	httpReq.Header.Set("Accept", constants.ContentTypeJSON)
	httpReq.Header.Set("User-Agent", c.userAgent)

	c.logDebug("HTTP Request", map[string]interface{}{
		"call": req.Call,
		"url":  url,
		"size": len(intercepted.Body),
	})

	retryMax := c.retryMax
	if req.Retries != nil {
		retryMax = *req.Retries
	}

	httpResp, err := c.retryClient(retryMax).Do(httpReq)
	if err != nil {
		if httpResp != nil {
			_ = httpResp.Body.Close()
		}

		c.afterResponse(ctx, intercepted, &omie.InterceptedResponse{Error: err})

		return nil, omie.NewTransportError(url, unwrapTransportError(ctx, err))
	}

	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		c.afterResponse(ctx, intercepted, &omie.InterceptedResponse{StatusCode: httpResp.StatusCode, Error: err})

		return nil, omie.NewTransportError(url, fmt.Errorf("failed to read response body: %w", err))
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       body,
	}

	c.logDebug("HTTP Response", map[string]interface{}{
		"call":        req.Call,
		"url":         url,
		"status_code": resp.StatusCode,
		"size":        len(body),
	})

	err = c.interceptors.ExecuteResponseInterceptors(ctx, intercepted, &omie.InterceptedResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       resp.Body,
	})
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func (c *Client) afterResponse(ctx context.Context, req *omie.Request, resp *omie.InterceptedResponse) {
	err := c.interceptors.ExecuteResponseInterceptors(ctx, req, resp)
	if err != nil && c.logger != nil {
		c.logger.Warn("response interceptor failed", map[string]interface{}{"error": err.Error()})
	}
}

func (c *Client) logDebug(msg string, fields map[string]interface{}) {
	if c.debug && c.logger != nil {
		c.logger.Debug(msg, fields)
	}
}

// retryClient returns a retrying client for retryMax, sharing one
// connection pool across all of them.
func (c *Client) retryClient(retryMax int) *retryablehttp.Client {
	if retryMax < 0 {
		retryMax = 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if client, ok := c.clients[retryMax]; ok {
		return client
	}

	client := &retryablehttp.Client{
		HTTPClient:   c.httpClient,
		RetryWaitMin: c.retryWaitMin,
		RetryWaitMax: c.retryWaitMax,
		RetryMax:     retryMax,
		CheckRetry:   CheckRetry,
		Backoff:      retryablehttp.DefaultBackoff,
		ErrorHandler: retryablehttp.PassthroughErrorHandler,
	}

	if c.debug && c.logger != nil {
		client.Logger = &leveledLogger{logger: c.logger}
	}

	c.clients[retryMax] = client

	return client
}

// CheckRetry retries connection errors and 429/502/503/504. The API reports
// faults with HTTP 500, so 500 is never retried.
func CheckRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if err != nil {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}

	return Retryable(resp.StatusCode), nil
}

// Retryable reports whether status signals a transient gateway or rate
// limit failure rather than an answer from the API.
func Retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func unwrapTransportError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
		return fmt.Errorf("%w: %w", ctxErr, err)
	}

	return err
}

// leveledLogger adapts omie.Logger to retryablehttp.LeveledLogger.
type leveledLogger struct {
	logger omie.Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, fieldsFrom(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, fieldsFrom(keysAndValues))
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, fieldsFrom(keysAndValues))
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, fieldsFrom(keysAndValues))
}

func fieldsFrom(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}

		fields[key] = keysAndValues[i+1]
	}

	return fields
}

var _ retryablehttp.LeveledLogger = (*leveledLogger)(nil)

