package omie

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Record is one decoded JSON object returned by the API.
type Record = map[string]any

// Response is an undecoded API response. Fault detection has not been
// applied; use Decode or Record to classify it.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Cached     bool
}

// Page is one page of a paginated sweep.
type Page struct {
	Number     int
	TotalPages int
	Total      int
	Items      []json.RawMessage
}

// PageFunc is called once per page, in page order. Returning an error stops
// the sweep and the error is returned to the caller.
type PageFunc func(ctx context.Context, page *Page) error

// CacheStats reports response cache activity for one client.
type CacheStats struct {
	Hits      int64 `json:"hits"      yaml:"hits"`
	Misses    int64 `json:"misses"    yaml:"misses"`
	Sets      int64 `json:"sets"      yaml:"sets"`
	Coalesced int64 `json:"coalesced" yaml:"coalesced"`
}

// HitRate returns hits divided by lookups, or 0 before any lookup.
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}

	return float64(s.Hits) / float64(total)
}

// Client calls Omie API methods.
type Client interface {
	// Get performs a single call and returns the decoded response body.
	Get(ctx context.Context, method Method, params any, opts ...CallOption) (Record, error)

	// GetRaw performs a single call and returns the response without
	// decoding it or checking it for faults.
	GetRaw(ctx context.Context, method Method, params any, opts ...CallOption) (*Response, error)

	// GetAll fetches every page of a paginated method and concatenates the
	// records in page order.
	GetAll(ctx context.Context, method Method, params any, opts ...CallOption) ([]Record, error)

	// ForEachPage fetches every page of a paginated method and hands each one
	// to fn as it arrives.
	ForEachPage(ctx context.Context, method Method, params any, fn PageFunc, opts ...CallOption) error

	// Catalog returns the methods this client resolves names against.
	Catalog() *Catalog

	// CacheStats returns a snapshot of response cache counters.
	CacheStats() CacheStats

	// ClearCache drops every cached response.
	ClearCache(ctx context.Context) error
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building an omie.Client.
//
// # Credentials
//
// AppKey and AppSecret are sent inside every request body. Both are
// required; construction fails with a *ClientError before any network
// access if either is empty.
//
// # Caching
//
// Responses are cached per client, keyed by a fingerprint of the request
// URL and body. CacheTTL and CacheMaxEntries size the default in-memory
// cache. Set Cache to use another backend (for example a NATS KV bucket
// shared between processes); the fingerprint includes the credentials, so
// distinct accounts never read each other's entries.
//
// # Timeouts and retries
//
// HTTPTimeout bounds each attempt. Connection errors and 429/502/503/504
// responses are retried up to RetryMax times with exponential backoff
// between RetryWaitMin and RetryWaitMax. Faults in the response body are
// never retried. Per-call overrides are available through WithRetries and
// WithTimeout.
type Config struct {
	AppKey    string
	AppSecret string

	// URLPrefix is prepended to every method path. It always ends in "/".
	URLPrefix string

	CacheTTL        time.Duration
	CacheMaxEntries int
	Cache           Cache

	HTTPTimeout  time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// RequestsPerSecond limits outgoing requests. Zero means unlimited.
	RequestsPerSecond float64

	// HTTPClient overrides the underlying transport client.
	HTTPClient *http.Client

	Logger    Logger
	Debug     bool
	UserAgent string

	// Catalog resolves methods given by name.
	Catalog *Catalog

	Interceptors *InterceptorChain
}

// Method identifies the operation to call, either by catalog name or by an
// explicit descriptor.
type Method struct {
	name       string
	descriptor *MethodDescriptor
}

// ByName refers to a method registered in the client's catalog.
func ByName(name string) Method {
	return Method{name: name}
}

// ByDescriptor refers to a method by its descriptor. The catalog is not
// consulted.
func ByDescriptor(desc MethodDescriptor) Method {
	return Method{descriptor: &desc}
}

// Name returns the method name.
func (m Method) Name() string {
	if m.descriptor != nil {
		return m.descriptor.Name
	}

	return m.name
}

// Resolve returns the descriptor the method refers to.
func (m Method) Resolve(catalog *Catalog) (MethodDescriptor, error) {
	if m.descriptor != nil {
		desc, err := prepareDescriptor(*m.descriptor)
		if err != nil {
			return MethodDescriptor{}, newClientError(m.descriptor.Name, err)
		}

		return desc, nil
	}

	if m.name == "" {
		return MethodDescriptor{}, newClientError("", ErrInvalidMethod)
	}

	desc, ok := catalog.Lookup(m.name)
	if !ok {
		return MethodDescriptor{}, newClientError(m.name, ErrMethodNotFound)
	}

	return desc, nil
}

// String implements fmt.Stringer.
func (m Method) String() string {
	return m.Name()
}
