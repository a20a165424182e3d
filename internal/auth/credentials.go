// Package auth resolves Omie API credentials. Omie authenticates every call
// with an app key and app secret carried in the request envelope, so there
// is no token exchange; this package only locates and checks the pair.
package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Environment variables holding the credentials.
const (
	EnvAppKey    = "OMIE_APP_KEY"
	EnvAppSecret = "OMIE_APP_SECRET"
)

// Reference prefixes accepted in place of a literal value.
const (
	RefEnv  = "env:"
	RefFile = "file:"
)

// Static errors for err113 compliance.
var (
	ErrMissingAppKey    = errors.New("app key is required")
	ErrMissingAppSecret = errors.New("app secret is required")
	ErrEmptyReference   = errors.New("secret reference resolved to an empty value")
)

// Credentials is the app key and secret pair sent with every call.
type Credentials struct {
	AppKey    string
	AppSecret string
}

// Validate checks that both values are present.
func (c Credentials) Validate() error {
	var errs []error

	if strings.TrimSpace(c.AppKey) == "" {
		errs = append(errs, ErrMissingAppKey)
	}

	if strings.TrimSpace(c.AppSecret) == "" {
		errs = append(errs, ErrMissingAppSecret)
	}

	return errors.Join(errs...)
}

// Load resolves references in appKey and appSecret. It does not validate the
// result; empty inputs stay empty.
func Load(appKey, appSecret string) (Credentials, error) {
	key, err := Resolve(appKey)
	if err != nil {
		return Credentials{}, fmt.Errorf("app key: %w", err)
	}

	secret, err := Resolve(appSecret)
	if err != nil {
		return Credentials{}, fmt.Errorf("app secret: %w", err)
	}

	return Credentials{AppKey: key, AppSecret: secret}, nil
}

// FromEnv loads credentials from OMIE_APP_KEY and OMIE_APP_SECRET. Either
// variable may itself hold a reference.
func FromEnv() (Credentials, error) {
	return Load(os.Getenv(EnvAppKey), os.Getenv(EnvAppSecret))
}

// IsReference reports whether value is an env: or file: reference.
func IsReference(value string) bool {
	return strings.HasPrefix(value, RefEnv) || strings.HasPrefix(value, RefFile)
}

// Resolve expands env:NAME and file:PATH references. Any other value is
// returned unchanged.
func Resolve(value string) (string, error) {
	switch {
	case strings.HasPrefix(value, RefEnv):
		resolved := os.Getenv(strings.TrimPrefix(value, RefEnv))
		if resolved == "" {
			return "", fmt.Errorf("%w: %s", ErrEmptyReference, value)
		}

		return resolved, nil
	case strings.HasPrefix(value, RefFile):
		path := filepath.Clean(strings.TrimPrefix(value, RefFile))

		// #nosec G304 -- the path comes from the user's own configuration
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read secret file: %w", err)
		}

		resolved := strings.TrimSpace(string(data))
		if resolved == "" {
			return "", fmt.Errorf("%w: %s", ErrEmptyReference, value)
		}

		return resolved, nil
	default:
		return value, nil
	}
}
