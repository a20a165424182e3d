package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	. "github.com/fivetwenty-io/omie-client/internal/client"
	"github.com/fivetwenty-io/omie-client/internal/mocks"
	"github.com/fivetwenty-io/omie-client/pkg/omie"
)

var errBackendDown = errors.New("backend down")

func TestFingerprint(t *testing.T) {
	t.Parallel()

	url := "https://app.omie.com.br/api/v1/geral/projetos/"

	a := Fingerprint(http.MethodPost, url, []byte(`{"call":"ConsultarProjeto"}`))
	b := Fingerprint(http.MethodPost, url, []byte(`{"call":"ConsultarProjeto"}`))
	c := Fingerprint(http.MethodPost, url, []byte(`{"call":"ListarProjetos"}`))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Regexp(t, `^POST:https://app\.omie\.com\.br/api/v1/geral/projetos/:[0-9a-f]{64}$`, a)
}

func TestClient_CacheIdempotence(t *testing.T) {
	t.Parallel()

	server, rec := newStubServer(t, respondWith(http.StatusOK, `{"codigo": 1}`))
	client := newTestClient(t, server.URL)
	ctx := context.Background()

	first, err := client.GetRaw(ctx, omie.ByName("ConsultarProjeto"), map[string]any{"codigo": 1})
	require.NoError(t, err)
	assert.False(t, first.Cached)

	// equivalent params normalize to the same payload
	second, err := client.GetRaw(ctx, omie.ByName("ConsultarProjeto"), map[string]any{"codigo": "1", "codInt": ""})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Body, second.Body)

	assert.Equal(t, 1, rec.Hits())
	assert.Equal(t, omie.CacheStats{Hits: 1, Misses: 1, Sets: 1}, client.CacheStats())

	_, err = client.GetRaw(ctx, omie.ByName("ConsultarProjeto"), map[string]any{"codigo": 2})
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Hits())
}

func TestClient_CacheBypass(t *testing.T) {
	t.Parallel()

	server, rec := newStubServer(t, respondWith(http.StatusOK, `{"codigo": 1}`))
	client := newTestClient(t, server.URL)
	ctx := context.Background()

	for range 2 {
		_, err := client.Get(ctx, omie.ByName("ConsultarProjeto"), nil, omie.WithoutCache())
		require.NoError(t, err)
	}

	assert.Equal(t, 2, rec.Hits())
	assert.Equal(t, omie.CacheStats{}, client.CacheStats())
}

func TestClient_CacheExpiry(t *testing.T) {
	t.Parallel()

	server, rec := newStubServer(t, respondWith(http.StatusOK, `{"codigo": 1}`))

	clock := newFakeClock()
	cache := omie.NewMemoryCache(10)
	cache.SetClock(clock.Now)

	client := newTestClient(t, server.URL, func(c *omie.Config) {
		c.Cache = cache
		c.CacheTTL = time.Minute
	})
	client.SetClock(clock.Now)

	ctx := context.Background()
	call := func() {
		_, err := client.Get(ctx, omie.ByName("ConsultarProjeto"), nil)
		require.NoError(t, err)
	}

	call()
	clock.Advance(59 * time.Second)
	call()
	assert.Equal(t, 1, rec.Hits())

	clock.Advance(time.Second)
	call()
	assert.Equal(t, 2, rec.Hits())
}

func TestClient_CacheLRUEviction(t *testing.T) {
	t.Parallel()

	server, rec := newStubServer(t, respondWith(http.StatusOK, `{"ok": true}`))
	client := newTestClient(t, server.URL, func(c *omie.Config) { c.CacheMaxEntries = 2 })
	ctx := context.Background()

	for _, codigo := range []int{1, 2, 3, 1} {
		_, err := client.Get(ctx, omie.ByName("ConsultarProjeto"), map[string]any{"codigo": codigo})
		require.NoError(t, err)
	}

	// 1 was evicted when 3 arrived
	assert.Equal(t, 4, rec.Hits())

	_, err := client.Get(ctx, omie.ByName("ConsultarProjeto"), map[string]any{"codigo": 3})
	require.NoError(t, err)
	assert.Equal(t, 4, rec.Hits())
}

func TestClient_CacheStoresFaults(t *testing.T) {
	t.Parallel()

	server, rec := newStubServer(t, respondWith(http.StatusInternalServerError,
		`{"faultstring": "Consumo redundante", "faultcode": "SOAP-ENV:Client-8020"}`))
	client := newTestClient(t, server.URL)

	for range 2 {
		_, err := client.Get(context.Background(), omie.ByName("ConsultarProjeto"), nil)
		require.Error(t, err)
		assert.True(t, omie.IsRedundantRequest(err))
	}

	assert.Equal(t, 1, rec.Hits())
}

func TestClient_CacheSkipsUncacheableResponses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"html page", http.StatusOK, `<html>maintenance</html>`},
		{"json array", http.StatusOK, `[]`},
		{"gateway failure", http.StatusBadGateway, `{"message": "bad gateway"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server, rec := newStubServer(t, respondWith(tt.status, tt.body))
			client := newTestClient(t, server.URL)

			for range 2 {
				_, _ = client.GetRaw(context.Background(), omie.ByName("ConsultarProjeto"), nil, omie.WithRetries(0))
			}

			assert.Equal(t, 2, rec.Hits())
			assert.Equal(t, int64(0), client.CacheStats().Sets)
		})
	}
}

func TestClient_ClearCache(t *testing.T) {
	t.Parallel()

	server, rec := newStubServer(t, respondWith(http.StatusOK, `{}`))
	client := newTestClient(t, server.URL)
	ctx := context.Background()

	_, err := client.Get(ctx, omie.ByName("ConsultarProjeto"), nil)
	require.NoError(t, err)
	require.NoError(t, client.ClearCache(ctx))

	_, err = client.Get(ctx, omie.ByName("ConsultarProjeto"), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Hits())
}

func TestClient_CredentialsSeparateCacheEntries(t *testing.T) {
	t.Parallel()

	server, rec := newStubServer(t, respondWith(http.StatusOK, `{}`))
	shared := omie.NewMemoryCache(10)

	first := newTestClient(t, server.URL, func(c *omie.Config) { c.Cache = shared })
	second := newTestClient(t, server.URL, func(c *omie.Config) {
		c.Cache = shared
		c.AppKey = "other-key"
	})

	_, err := first.Get(context.Background(), omie.ByName("ConsultarProjeto"), nil)
	require.NoError(t, err)

	_, err = second.Get(context.Background(), omie.ByName("ConsultarProjeto"), nil)
	require.NoError(t, err)

	assert.Equal(t, 2, rec.Hits())
	assert.Equal(t, 2, shared.Len())
}

func TestClient_ConcurrentCallsCoalesce(t *testing.T) {
	t.Parallel()

	const callers = 8

	release := make(chan struct{})
	releaseOnce := sync.OnceFunc(func() { close(release) })

	server, rec := newStubServer(t, func(envelope) (int, string) {
		<-release

		return http.StatusOK, `{"codigo": 7}`
	})
	defer releaseOnce()

	client := newTestClient(t, server.URL)

	var wg sync.WaitGroup

	records := make([]omie.Record, callers)
	errs := make([]error, callers)

	for i := range callers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			records[i], errs[i] = client.Get(context.Background(), omie.ByName("ConsultarProjeto"), map[string]any{"codigo": 7})
		}()
	}

	require.Eventually(t, func() bool {
		return client.CacheStats().Misses == callers && rec.Hits() == 1
	}, 2*time.Second, time.Millisecond)

	releaseOnce()
	wg.Wait()

	for i := range callers {
		require.NoError(t, errs[i])
		assert.Equal(t, records[0], records[i])
	}

	assert.Equal(t, 1, rec.Hits())
}

func TestClient_CoalescedCallerKeepsOwnDeadline(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	releaseOnce := sync.OnceFunc(func() { close(release) })

	server, rec := newStubServer(t, func(envelope) (int, string) {
		<-release

		return http.StatusOK, `{"codigo": 7}`
	})
	defer releaseOnce()

	client := newTestClient(t, server.URL)
	params := map[string]any{"codigo": 7}

	_, err := client.Get(context.Background(), omie.ByName("ConsultarProjeto"), params, omie.WithTimeout(50*time.Millisecond))
	require.Error(t, err)
	assert.True(t, omie.IsTransportError(err))
	require.ErrorIs(t, err, context.DeadlineExceeded)

	var (
		record omie.Record
		done   = make(chan error, 1)
	)

	go func() {
		var err error

		record, err = client.Get(context.Background(), omie.ByName("ConsultarProjeto"), params)
		done <- err
	}()

	require.Eventually(t, func() bool {
		return client.CacheStats().Misses == 2
	}, 2*time.Second, time.Millisecond)

	releaseOnce()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("call without a deadline did not return")
	}

	assert.Equal(t, json.Number("7"), record["codigo"])
	assert.Equal(t, 1, rec.Hits())

	cached, err := client.GetRaw(context.Background(), omie.ByName("ConsultarProjeto"), params)
	require.NoError(t, err)
	assert.True(t, cached.Cached)
	assert.Equal(t, 1, rec.Hits())
}

func TestClient_CachedResponsesAreIsolated(t *testing.T) {
	t.Parallel()

	server, rec := newStubServer(t, respondWith(http.StatusOK, `{"codigo": 1}`))
	client := newTestClient(t, server.URL)
	ctx := context.Background()

	first, err := client.GetRaw(ctx, omie.ByName("ConsultarProjeto"), nil)
	require.NoError(t, err)

	for i := range first.Body {
		first.Body[i] = ' '
	}

	first.Header.Set("Content-Type", "text/plain")

	second, err := client.GetRaw(ctx, omie.ByName("ConsultarProjeto"), nil)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.JSONEq(t, `{"codigo": 1}`, string(second.Body))
	assert.Equal(t, "application/json", second.Header.Get("Content-Type"))

	second.Body[0] = '['

	record, err := client.Get(ctx, omie.ByName("ConsultarProjeto"), nil)
	require.NoError(t, err)
	assert.Equal(t, json.Number("1"), record["codigo"])
	assert.Equal(t, 1, rec.Hits())
}

func TestClient_CacheBackendMock(t *testing.T) {
	t.Parallel()

	t.Run("stores the response under its fingerprint", func(t *testing.T) {
		t.Parallel()

		server, rec := newStubServer(t, respondWith(http.StatusOK, `{"codigo": 1}`))

		ctrl := gomock.NewController(t)
		cache := mocks.NewMockCache(ctrl)
		clock := newFakeClock()

		var storedKey string

		cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, omie.ErrCacheMiss).Times(2)
		cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, key string, entry *omie.CacheEntry) error {
				storedKey = key

				assert.Equal(t, http.StatusOK, entry.StatusCode)
				assert.JSONEq(t, `{"codigo": 1}`, string(entry.Data))
				assert.Equal(t, clock.Now().Add(30*time.Second), entry.ExpiresAt)

				return nil
			})

		client := newTestClient(t, server.URL, func(c *omie.Config) {
			c.Cache = cache
			c.CacheTTL = 30 * time.Second
		})
		client.SetClock(clock.Now)

		_, err := client.Get(context.Background(), omie.ByName("ConsultarProjeto"), nil)
		require.NoError(t, err)

		expected := Fingerprint(http.MethodPost, server.URL+"/geral/projetos/", rec.Bodies()[0])
		assert.Equal(t, expected, storedKey)
	})

	t.Run("serves hits without the network", func(t *testing.T) {
		t.Parallel()

		server, rec := newStubServer(t, respondWith(http.StatusOK, `{}`))

		ctrl := gomock.NewController(t)
		cache := mocks.NewMockCache(ctrl)

		cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(&omie.CacheEntry{
			StatusCode: http.StatusOK,
			Data:       []byte(`{"cached": true}`),
		}, nil)

		client := newTestClient(t, server.URL, func(c *omie.Config) { c.Cache = cache })

		record, err := client.Get(context.Background(), omie.ByName("ConsultarProjeto"), nil)
		require.NoError(t, err)
		assert.Equal(t, true, record["cached"])
		assert.Equal(t, 0, rec.Hits())
	})

	t.Run("backend failures degrade to misses", func(t *testing.T) {
		t.Parallel()

		server, rec := newStubServer(t, respondWith(http.StatusOK, `{"codigo": 1}`))

		ctrl := gomock.NewController(t)
		cache := mocks.NewMockCache(ctrl)
		logger := &logRecorder{}

		cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, errBackendDown).Times(2)
		cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Return(errBackendDown)

		client := newTestClient(t, server.URL, func(c *omie.Config) {
			c.Cache = cache
			c.Logger = logger
		})

		record, err := client.Get(context.Background(), omie.ByName("ConsultarProjeto"), nil)
		require.NoError(t, err)
		assert.NotNil(t, record)
		assert.Equal(t, 1, rec.Hits())
		assert.Contains(t, logger.Messages(), "warn:cache lookup failed")
		assert.Contains(t, logger.Messages(), "warn:cache store failed")
		assert.Equal(t, int64(0), client.CacheStats().Sets)
	})
}
