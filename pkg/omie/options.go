package omie

import (
	"time"

	"github.com/fivetwenty-io/omie-client/internal/constants"
)

// CallOptions holds per-call settings. Build it with CallOption values.
type CallOptions struct {
	UseCache bool
	PageSize int
	MaxPages int
	// Retries overrides Config.RetryMax when non-nil.
	Retries *int
	// Timeout bounds the whole call, including retries and every page of a
	// sweep. Zero means no extra bound.
	Timeout time.Duration
}

// CallOption configures a single call.
type CallOption func(*CallOptions)

// DefaultCallOptions returns the options used when none are given.
func DefaultCallOptions() CallOptions {
	return CallOptions{
		UseCache: true,
		PageSize: constants.DefaultPageSize,
	}
}

// ApplyCallOptions folds opts over the defaults.
func ApplyCallOptions(opts ...CallOption) CallOptions {
	options := DefaultCallOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	if options.PageSize <= 0 {
		options.PageSize = constants.DefaultPageSize
	}

	return options
}

// WithoutCache bypasses the response cache for this call.
func WithoutCache() CallOption {
	return func(o *CallOptions) {
		o.UseCache = false
	}
}

// WithCache sets whether the response cache is used.
func WithCache(enabled bool) CallOption {
	return func(o *CallOptions) {
		o.UseCache = enabled
	}
}

// WithPageSize sets the page size of a paginated sweep.
func WithPageSize(size int) CallOption {
	return func(o *CallOptions) {
		o.PageSize = size
	}
}

// WithMaxPages caps the number of pages fetched. Zero means no cap.
func WithMaxPages(pages int) CallOption {
	return func(o *CallOptions) {
		o.MaxPages = pages
	}
}

// WithRetries overrides the retry count for this call.
func WithRetries(retries int) CallOption {
	return func(o *CallOptions) {
		o.Retries = &retries
	}
}

// WithTimeout bounds the call with a deadline.
func WithTimeout(timeout time.Duration) CallOption {
	return func(o *CallOptions) {
		o.Timeout = timeout
	}
}
