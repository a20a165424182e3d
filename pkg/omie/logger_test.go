package omie_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fivetwenty-io/omie-client/pkg/omie"
)

func TestSlogLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			if attr.Key == slog.TimeKey {
				return slog.Attr{}
			}

			return attr
		},
	})

	logger := omie.NewSlogLogger(slog.New(handler))

	logger.Debug("hidden", map[string]interface{}{"a": 1})
	logger.Info("cache hit", map[string]interface{}{"method": "ListarOS", "attempt": 2})
	logger.Error("failed", nil)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `level=INFO msg="cache hit" attempt=2 method=ListarOS`)
	assert.Contains(t, out, "level=ERROR msg=failed")
}

func TestNoOpLogger(t *testing.T) {
	t.Parallel()

	var logger omie.Logger = omie.NoOpLogger{}

	assert.NotPanics(t, func() {
		logger.Debug("x", nil)
		logger.Info("x", nil)
		logger.Warn("x", nil)
		logger.Error("x", nil)
	})
}
