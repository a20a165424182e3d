package client_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	. "github.com/fivetwenty-io/omie-client/internal/client"
	"github.com/fivetwenty-io/omie-client/pkg/omie"
)

const (
	testAppKey    = "key"
	testAppSecret = "secret"
)

// envelope is the request body as the server sees it.
type envelope struct {
	AppKey    string           `json:"app_key"`
	AppSecret string           `json:"app_secret"`
	Call      string           `json:"call"`
	Param     []map[string]any `json:"param"`
}

func (e envelope) param(name string) any {
	if len(e.Param) == 0 {
		return nil
	}

	return e.Param[0][name]
}

func (e envelope) intParam(name string) int {
	value, _ := e.param(name).(float64)

	return int(value)
}

// recorder counts and keeps every request that reached the stub server.
type recorder struct {
	hits atomic.Int32

	mu        sync.Mutex
	envelopes []envelope
	bodies    [][]byte
	paths     []string
}

func (r *recorder) Hits() int {
	return int(r.hits.Load())
}

func (r *recorder) Envelopes() []envelope {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]envelope(nil), r.envelopes...)
}

func (r *recorder) Bodies() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([][]byte(nil), r.bodies...)
}

func (r *recorder) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.paths...)
}

type respondFunc func(env envelope) (int, string)

func newStubServer(t *testing.T, respond respondFunc) (*httptest.Server, *recorder) {
	t.Helper()

	rec := &recorder{}

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		body, _ := io.ReadAll(request.Body)

		var env envelope

		_ = json.Unmarshal(body, &env)

		rec.mu.Lock()
		rec.envelopes = append(rec.envelopes, env)
		rec.bodies = append(rec.bodies, body)
		rec.paths = append(rec.paths, request.URL.Path)
		rec.mu.Unlock()

		rec.hits.Add(1)

		status, response := respond(env)

		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(status)
		_, _ = writer.Write([]byte(response))
	}))

	t.Cleanup(server.Close)

	return server, rec
}

func respondWith(status int, body string) respondFunc {
	return func(envelope) (int, string) {
		return status, body
	}
}

// pagedResponder serves total records numbered from 1 under arrayField,
// honoring the page fields of the request.
func pagedResponder(total int, pageField, sizeField, totalField, arrayField string) respondFunc {
	return func(env envelope) (int, string) {
		page := env.intParam(pageField)
		size := env.intParam(sizeField)

		items := make([]map[string]any, 0, size)

		for id := (page-1)*size + 1; id <= page*size && id <= total; id++ {
			items = append(items, map[string]any{"id": id, "nome": fmt.Sprintf("item %d", id)})
		}

		body, _ := json.Marshal(map[string]any{
			pageField:  page,
			sizeField:  size,
			totalField: total,
			arrayField: items,
		})

		return http.StatusOK, string(body)
	}
}

var testCatalog = omie.MustCatalog(
	omie.MethodDescriptor{
		Name: "ConsultarProjeto",
		Path: "geral/projetos",
		Shape: omie.Shape{
			"codigo": {Type: omie.FieldInteger},
			"codInt": {Type: omie.FieldString},
		},
	},
	omie.MethodDescriptor{
		Name: "ListarCoisas",
		Path: "geral/coisas",
		Shape: omie.Shape{
			"pagina":               {Type: omie.FieldInteger},
			"registros_por_pagina": {Type: omie.FieldInteger},
			"filtro":               {Type: omie.FieldString},
		},
		Pagination: &omie.Pagination{
			PageNumberField: "pagina",
			PageSizeField:   "registros_por_pagina",
			TotalCountField: "total_de_registros",
			ArrayField:      "coisas",
		},
	},
	omie.MethodDescriptor{
		Name: "IncluirCoisa",
		Path: "geral/coisas",
		Kind: omie.Mutate,
	},
)

func newTestClient(t *testing.T, prefix string, mutators ...func(*omie.Config)) *Client {
	t.Helper()

	config := &omie.Config{
		AppKey:       testAppKey,
		AppSecret:    testAppSecret,
		URLPrefix:    prefix,
		Catalog:      testCatalog,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 5 * time.Millisecond,
	}

	for _, mutate := range mutators {
		mutate(config)
	}

	client, err := New(config)
	require.NoError(t, err)

	return client
}

// fakeClock is a settable time source shared by the client and its cache.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

// logRecorder keeps log messages by level.
type logRecorder struct {
	mu       sync.Mutex
	messages []string
}

func (l *logRecorder) add(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.messages = append(l.messages, level+":"+msg)
}

func (l *logRecorder) Messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]string(nil), l.messages...)
}

func (l *logRecorder) Debug(msg string, _ map[string]interface{}) { l.add("debug", msg) }
func (l *logRecorder) Info(msg string, _ map[string]interface{})  { l.add("info", msg) }
func (l *logRecorder) Warn(msg string, _ map[string]interface{})  { l.add("warn", msg) }
func (l *logRecorder) Error(msg string, _ map[string]interface{}) { l.add("error", msg) }
