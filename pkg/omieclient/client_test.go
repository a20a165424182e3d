package omieclient_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/omie-client/pkg/omie"
	"github.com/fivetwenty-io/omie-client/pkg/omie/methods"
	"github.com/fivetwenty-io/omie-client/pkg/omieclient"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("creates client with built-in catalog", func(t *testing.T) {
		t.Parallel()

		client, err := omieclient.New(&omie.Config{AppKey: "key", AppSecret: "secret"})
		require.NoError(t, err)
		require.NotNil(t, client)

		assert.Equal(t, methods.Catalog().Names(), client.Catalog().Names())
	})

	t.Run("nil config", func(t *testing.T) {
		t.Parallel()

		_, err := omieclient.New(nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, omie.ErrMissingCredentials)
		assert.True(t, omie.IsClientError(err))
	})

	t.Run("missing secret", func(t *testing.T) {
		t.Parallel()

		_, err := omieclient.New(&omie.Config{AppKey: "key"})
		require.Error(t, err)
		assert.ErrorIs(t, err, omie.ErrMissingCredentials)
	})

	t.Run("rejects prefix with query", func(t *testing.T) {
		t.Parallel()

		_, err := omieclient.New(&omie.Config{AppKey: "key", AppSecret: "secret", URLPrefix: "https://example.com/api?x=1"})
		require.Error(t, err)
		assert.ErrorIs(t, err, omie.ErrInvalidURLPrefix)
	})

	t.Run("does not modify config", func(t *testing.T) {
		t.Parallel()

		config := &omie.Config{AppKey: "key", AppSecret: "secret"}

		_, err := omieclient.New(config)
		require.NoError(t, err)
		assert.Nil(t, config.Catalog)
	})
}

func TestNewWithCredentials(t *testing.T) {
	t.Parallel()

	client, err := omieclient.NewWithCredentials("key", "secret")
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv(omieclient.EnvAppKey, "env-key")
	t.Setenv(omieclient.EnvAppSecret, "env-secret")
	t.Setenv(omieclient.EnvURLPrefix, "")

	client, err := omieclient.NewFromEnv()
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestNewFromEnv_SecretReference(t *testing.T) {
	t.Setenv(omieclient.EnvAppKey, "env-key")
	t.Setenv(omieclient.EnvAppSecret, "env:OMIE_TEST_UNSET_SECRET")
	t.Setenv(omieclient.EnvURLPrefix, "")

	_, err := omieclient.NewFromEnv()
	require.Error(t, err)
	assert.True(t, omie.IsClientError(err))
}

func TestClientIntegration(t *testing.T) {
	t.Parallel()

	var received map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		body, _ := io.ReadAll(request.Body)
		_ = json.Unmarshal(body, &received)

		switch request.URL.Path {
		case "/geral/vendedores/":
			writer.Header().Set("Content-Type", "application/json")
			_, _ = writer.Write([]byte(`{"codigo": 42, "nome": "Maria"}`))
		default:
			writer.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client, err := omieclient.New(&omie.Config{
		AppKey:    "key",
		AppSecret: "secret",
		URLPrefix: server.URL,
	})
	require.NoError(t, err)

	vendedor, err := omie.GetAs[methods.Vendedor](context.Background(), client,
		omie.ByName(methods.ConsultarVendedor), methods.VendedorConsultarRequest{Codigo: 42})
	require.NoError(t, err)

	assert.Equal(t, int64(42), vendedor.Codigo)
	assert.Equal(t, "Maria", vendedor.Nome)
	assert.Equal(t, "ConsultarVendedor", received["call"])
	assert.Equal(t, []any{map[string]any{"codigo": float64(42)}}, received["param"])
}
