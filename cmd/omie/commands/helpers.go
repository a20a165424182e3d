package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/omie-client/internal/auth"
	"github.com/fivetwenty-io/omie-client/internal/constants"
	"github.com/fivetwenty-io/omie-client/pkg/omie"
	"github.com/fivetwenty-io/omie-client/pkg/omieclient"
)

// Viper keys shared by flags, the config file and OMIE_* variables.
const (
	KeyConfig    = "config"
	KeyAppKey    = "app_key"
	KeyAppSecret = "app_secret"
	KeyURLPrefix = "url_prefix"
	KeyOutput    = "output"
	KeyVerbose   = "verbose"
	KeyCacheTTL  = "cache_ttl"
	KeyRPS       = "rps"
	KeyCache     = "cache"
	KeyNATSURL   = "nats_url"
)

// CreateClient builds an Omie client from the merged flag, environment and
// config file settings.
func CreateClient() (omie.Client, error) {
	creds, err := auth.Load(viper.GetString(KeyAppKey), viper.GetString(KeyAppSecret))
	if err != nil {
		return nil, err
	}

	if creds.Validate() != nil {
		return nil, constants.ErrCredentialsRequired
	}

	cache, err := newCache()
	if err != nil {
		return nil, err
	}

	verbose := viper.GetBool(KeyVerbose)

	return omieclient.New(&omie.Config{
		AppKey:            creds.AppKey,
		AppSecret:         creds.AppSecret,
		URLPrefix:         viper.GetString(KeyURLPrefix),
		CacheTTL:          viper.GetDuration(KeyCacheTTL),
		Cache:             cache,
		RequestsPerSecond: viper.GetFloat64(KeyRPS),
		Logger:            newLogger(verbose),
		Debug:             verbose,
	})
}

// newCache builds the response cache selected by the cache key. The NATS
// backend keeps entries for the configured cache TTL.
func newCache() (omie.Cache, error) {
	cacheType, err := omie.ParseCacheType(viper.GetString(KeyCache))
	if err != nil {
		return nil, err
	}

	ttl := viper.GetDuration(KeyCacheTTL)
	if ttl <= 0 {
		ttl = constants.DefaultCacheTTL
	}

	return omie.NewCacheBuilder().
		WithType(cacheType).
		WithNATS(viper.GetString(KeyNATSURL), constants.DefaultNATSBucket, ttl).
		Build()
}

func newLogger(verbose bool) omie.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	return omie.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// ParseKeyValues turns key=value arguments into url.Values. Repeated keys
// accumulate.
func ParseKeyValues(args []string) (url.Values, error) {
	values := url.Values{}

	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("%w, got %q", constants.ErrInvalidArgument, arg)
		}

		values.Add(strings.TrimSpace(key), value)
	}

	return values, nil
}

func outputFormat() (string, error) {
	format := strings.ToLower(viper.GetString(KeyOutput))
	switch format {
	case "", constants.FormatTable:
		return constants.FormatTable, nil
	case constants.FormatJSON, constants.FormatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("%w: %s", constants.ErrUnsupportedOutput, format)
	}
}

// writeStructured writes v as JSON or YAML. It reports false for the table
// format so the caller can render its own table.
func writeStructured(w io.Writer, format string, v any) (bool, error) {
	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))

		return true, encoder.Encode(v)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(w)
		defer func() { _ = encoder.Close() }()

		return true, encoder.Encode(v)
	default:
		return false, nil
	}
}

func renderTable(w io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header(toAny(header)...)

	for _, row := range rows {
		_ = table.Append(toAny(row)...)
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, value := range values {
		out[i] = value
	}

	return out
}

// recordTable renders one record as Field/Value rows.
func recordTable(w io.Writer, record omie.Record) error {
	keys := sortedKeys(record)
	rows := make([][]string, 0, len(keys))

	for _, key := range keys {
		rows = append(rows, []string{key, formatCell(record[key])})
	}

	return renderTable(w, []string{"Field", "Value"}, rows)
}

// recordsTable renders records with one column per top-level field.
func recordsTable(w io.Writer, records []omie.Record) error {
	seen := map[string]struct{}{}

	for _, record := range records {
		for key := range record {
			seen[key] = struct{}{}
		}
	}

	columns := make([]string, 0, len(seen))
	for key := range seen {
		columns = append(columns, key)
	}

	sort.Strings(columns)

	rows := make([][]string, 0, len(records))

	for _, record := range records {
		row := make([]string, len(columns))
		for i, column := range columns {
			value, ok := record[column]
			if !ok {
				row[i] = ""

				continue
			}

			row[i] = formatCell(value)
		}

		rows = append(rows, row)
	}

	return renderTable(w, columns, rows)
}

func sortedKeys(record omie.Record) []string {
	keys := make([]string, 0, len(record))
	for key := range record {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// formatCell prints scalars as-is and composites as compact JSON, truncated
// to fit a table cell.
func formatCell(value any) string {
	var text string

	switch typed := value.(type) {
	case nil:
		return constants.NotAvailable
	case string:
		text = typed
	case map[string]any, []any:
		data, err := json.Marshal(typed)
		if err != nil {
			text = fmt.Sprint(typed)
		} else {
			text = string(data)
		}
	default:
		text = cast.ToString(typed)
	}

	if runes := []rune(text); len(runes) > constants.StringTruncationLength {
		return string(runes[:constants.StringTruncationLength-3]) + "..."
	}

	return text
}
