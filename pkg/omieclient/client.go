package omieclient

import (
	"fmt"
	"os"
	"strings"

	"github.com/fivetwenty-io/omie-client/internal/auth"
	"github.com/fivetwenty-io/omie-client/internal/client"
	"github.com/fivetwenty-io/omie-client/pkg/omie"
	"github.com/fivetwenty-io/omie-client/pkg/omie/methods"
)

// Environment variables read by NewFromEnv.
const (
	EnvAppKey    = auth.EnvAppKey
	EnvAppSecret = auth.EnvAppSecret
	EnvURLPrefix = "OMIE_URL_PREFIX"
)

// New creates an Omie API client. When config.Catalog is nil the built-in
// method catalog is used. config is not modified.
func New(config *omie.Config) (omie.Client, error) {
	if config == nil {
		return nil, &omie.ClientError{Op: "new client", Err: omie.ErrMissingCredentials}
	}

	cfg := *config

	if cfg.Catalog == nil {
		cfg.Catalog = methods.Catalog()
	}

	if cfg.URLPrefix != "" {
		prefix, err := normalizeURLPrefix(cfg.URLPrefix)
		if err != nil {
			return nil, err
		}

		cfg.URLPrefix = prefix
	}

	c, err := client.New(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// NewWithCredentials creates a client with default settings.
func NewWithCredentials(appKey, appSecret string) (omie.Client, error) {
	return New(&omie.Config{
		AppKey:    appKey,
		AppSecret: appSecret,
	})
}

// NewFromEnv creates a client from OMIE_APP_KEY, OMIE_APP_SECRET and the
// optional OMIE_URL_PREFIX. The credential variables may hold env: or file:
// references.
func NewFromEnv() (omie.Client, error) {
	creds, err := auth.FromEnv()
	if err != nil {
		return nil, &omie.ClientError{Op: "new client", Err: err}
	}

	return New(&omie.Config{
		AppKey:    creds.AppKey,
		AppSecret: creds.AppSecret,
		URLPrefix: os.Getenv(EnvURLPrefix),
	})
}

// normalizeURLPrefix rejects prefixes carrying a query or fragment; the
// transport only appends method paths.
func normalizeURLPrefix(prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if strings.ContainsAny(prefix, "?#") {
		return "", &omie.ClientError{Op: "new client", Err: fmt.Errorf("%w: %q", omie.ErrInvalidURLPrefix, prefix)}
	}

	return prefix, nil
}
