package constants

import "errors"

// Configuration errors.
var (
	ErrCredentialsRequired = errors.New("app key and app secret are required (use --app-key/--app-secret, OMIE_APP_KEY/OMIE_APP_SECRET or omie config set-credentials)")
	ErrUnknownConfigKey    = errors.New("unknown configuration key")
)

// Argument errors.
var (
	ErrInvalidArgument   = errors.New("expected key=value")
	ErrUnsupportedOutput = errors.New("unsupported output format")
	ErrMethodNotFound    = errors.New("method not found")
)
