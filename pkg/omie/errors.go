package omie

import (
	"errors"
	"fmt"
	"strings"
)

// Known fault codes reported by the API.
const (
	// FaultCodeNotFound is returned when the requested record does not exist.
	FaultCodeNotFound = "SOAP-ENV:Client-107"

	// FaultCodeRedundantRequest is returned when an identical request was
	// issued too recently.
	FaultCodeRedundantRequest = "SOAP-ENV:Client-8020"

	// FaultCodeNoRecords is returned when a list filter matches nothing.
	FaultCodeNoRecords = "SOAP-ENV:Client-5113"
)

// Static errors that can be wrapped with context.
var (
	ErrMissingCredentials = errors.New("app_key and app_secret are required")
	ErrMethodNotFound     = errors.New("method not found in catalog")
	ErrNotQueryMethod     = errors.New("method is not a query method")
	ErrNotPaginated       = errors.New("method has no pagination")
	ErrInvalidParams      = errors.New("invalid parameters")
	ErrUnsupportedParams  = errors.New("unsupported parameters type")
	ErrInvalidMethod      = errors.New("method must be given by name or descriptor")
	ErrNoRecords          = errors.New("no records match filter")
	ErrInvalidResponse    = errors.New("invalid response body")
	ErrInvalidURLPrefix   = errors.New("invalid URL prefix")
)

// ClientError reports local misuse of the client. It is never retried.
type ClientError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *ClientError) Error() string {
	if e.Op == "" {
		return "omie client error: " + e.Err.Error()
	}

	return fmt.Sprintf("omie client error: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *ClientError) Unwrap() error {
	return e.Err
}

func newClientError(op string, err error) *ClientError {
	return &ClientError{Op: op, Err: err}
}

// FieldError describes one offending request field.
type FieldError struct {
	Field   string `json:"field"   yaml:"field"`
	Message string `json:"message" yaml:"message"`
}

// ValidationError lists every field of a payload that failed validation.
type ValidationError struct {
	Method string       `json:"method" yaml:"method"`
	Fields []FieldError `json:"fields" yaml:"fields"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields {
		parts = append(parts, field.Field+": "+field.Message)
	}

	return fmt.Sprintf("validation failed for %s: %s", e.Method, strings.Join(parts, "; "))
}

// Unwrap lets errors.Is match ErrInvalidParams.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidParams
}

// Field returns the message for a field, or "" if the field passed.
func (e *ValidationError) Field(name string) string {
	for _, field := range e.Fields {
		if field.Field == name {
			return field.Message
		}
	}

	return ""
}

// RemoteAPIError is a fault reported by the API inside the response body.
// The HTTP status is informational only; the body shape decides.
type RemoteAPIError struct {
	FaultCode   string         `json:"faultcode"   yaml:"faultcode"`
	FaultString string         `json:"faultstring" yaml:"faultstring"`
	StatusCode  int            `json:"status_code" yaml:"status_code"`
	Body        map[string]any `json:"body"        yaml:"body"`
	Err         error          `json:"-"           yaml:"-"`
}

// Error implements the error interface.
func (e *RemoteAPIError) Error() string {
	if e.FaultCode == "" {
		return "omie API fault: " + e.FaultString
	}

	return fmt.Sprintf("omie API fault %s: %s", e.FaultCode, e.FaultString)
}

// Unwrap returns the underlying sentinel, if any.
func (e *RemoteAPIError) Unwrap() error {
	return e.Err
}

// TransportError is a failure to obtain any response: connection errors,
// timeouts and cancellation.
type TransportError struct {
	URL string
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("omie transport error: %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError wraps err as a TransportError for url.
func NewTransportError(url string, err error) *TransportError {
	return &TransportError{URL: url, Err: err}
}

// IsClientError checks if the error is a ClientError.
func IsClientError(err error) bool {
	var clientErr *ClientError

	return errors.As(err, &clientErr)
}

// IsRemoteAPIError checks if the error is a RemoteAPIError.
func IsRemoteAPIError(err error) bool {
	var apiErr *RemoteAPIError

	return errors.As(err, &apiErr)
}

// IsTransportError checks if the error is a TransportError.
func IsTransportError(err error) bool {
	var transportErr *TransportError

	return errors.As(err, &transportErr)
}

// IsFault checks if the error is a RemoteAPIError with the given fault code.
func IsFault(err error, code string) bool {
	var apiErr *RemoteAPIError
	if errors.As(err, &apiErr) {
		return apiErr.FaultCode == code
	}

	return false
}

// IsNotFound checks if the error is a "record not found" fault.
func IsNotFound(err error) bool {
	return IsFault(err, FaultCodeNotFound)
}

// IsRedundantRequest checks if the error is a "redundant request" fault.
func IsRedundantRequest(err error) bool {
	return IsFault(err, FaultCodeRedundantRequest)
}

// IsNoRecords checks if a list call matched nothing, either because the
// total count was zero or because the API reported it as a fault.
func IsNoRecords(err error) bool {
	return errors.Is(err, ErrNoRecords) || IsFault(err, FaultCodeNoRecords)
}

// AsRemoteAPIError returns the RemoteAPIError in err's chain, if any.
func AsRemoteAPIError(err error) (*RemoteAPIError, bool) {
	var apiErr *RemoteAPIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}

	return nil, false
}
