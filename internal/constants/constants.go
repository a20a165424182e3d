package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// Endpoint defaults.
const (
	// DefaultURLPrefix is the base URL every method path is appended to.
	DefaultURLPrefix = "https://app.omie.com.br/api/v1/"

	// DefaultUserAgent is sent on every request unless overridden.
	DefaultUserAgent = "omie-client-go"

	// ContentTypeJSON is the content type of the RPC envelope.
	ContentTypeJSON = "application/json"
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits.
const (
	// LowRetryMax is the default maximum number of retries.
	LowRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Concurrency limits.
const (
	// DefaultConcurrencyLimit limits concurrent operations in bulk helpers.
	DefaultConcurrencyLimit = 3
)

// Cache defaults.
const (
	// DefaultCacheTTL is how long a response stays fresh.
	DefaultCacheTTL = 60 * time.Second

	// DefaultCacheSize is the maximum number of cached responses.
	DefaultCacheSize = 1024

	// DefaultCleanupInterval is the interval between expired entry sweeps.
	DefaultCleanupInterval = time.Minute

	// DefaultNATSBucket is the JetStream KV bucket used for shared caches.
	DefaultNATSBucket = "omie-responses"
)

// Pagination defaults.
const (
	// DefaultPageSize is the page size used by paginated sweeps.
	DefaultPageSize = 100

	// ProbePage is the page requested by the probe call.
	ProbePage = 1

	// ProbePageSize is the page size requested by the probe call.
	ProbePageSize = 1
)

// CLI constants.
const (
	// MinimumArgumentCount is the minimum number of command line arguments.
	MinimumArgumentCount = 2

	// JSONIndentSize is the indent used for JSON output.
	JSONIndentSize = 2

	// StringTruncationLength caps cell values in table output.
	StringTruncationLength = 80

	// MaskedSecret replaces secrets in displayed configuration.
	MaskedSecret = "***"

	// NotAvailable is shown for missing values.
	NotAvailable = "N/A"
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"
)
