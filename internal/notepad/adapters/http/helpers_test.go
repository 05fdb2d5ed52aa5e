package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"notepad/internal/notepad/adapters/editor"
	notepadhttp "notepad/internal/notepad/adapters/http"
	presenteradapter "notepad/internal/notepad/adapters/presenter"
	storageadapter "notepad/internal/notepad/adapters/storage"
	"notepad/internal/notepad/app"
	"notepad/pkg/resilience"
)

type testServer struct {
	app    *fiber.App
	ws     *app.Workspace
	store  *storageadapter.MemoryStore
	buffer *editor.Buffer
	hub    *presenteradapter.Hub
	reg    *prometheus.Registry
}

type serverOption func(store *storageadapter.MemoryStore, opts *notepadhttp.RouterOptions)

func withRateLimit(rps float64, burst int) serverOption {
	return func(_ *storageadapter.MemoryStore, opts *notepadhttp.RouterOptions) {
		opts.RateLimit = rps
		opts.RateBurst = burst
	}
}

func withSeed(key string, value string) serverOption {
	return func(store *storageadapter.MemoryStore, _ *notepadhttp.RouterOptions) {
		_ = store.Set(context.Background(), key, []byte(value))
	}
}

func newTestServer(t *testing.T, options ...serverOption) *testServer {
	t.Helper()
	ctx := context.Background()

	store := storageadapter.NewMemoryStore()
	reg := prometheus.NewRegistry()
	routerOpts := notepadhttp.RouterOptions{BaseContext: ctx, Gatherer: reg}
	for _, opt := range options {
		opt(store, &routerOpts)
	}

	metered := storageadapter.NewMeteredStore(store, "memory", storageadapter.NewMetrics(reg))
	buffer := editor.NewBuffer()
	hub := presenteradapter.NewHub(0)
	hub.RegisterMetrics(reg)

	ws, err := app.New(ctx, app.Dependencies{
		Store:     metered,
		Presenter: hub,
		Document:  buffer,
	}, app.Options{
		ShareBaseURL:  "http://127.0.0.1:8080/",
		AutoSaveDelay: time.Hour,
		StartupRetry:  resilience.RetryConfig{MaxAttempts: 1},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close(ctx) })

	fiberApp := fiber.New()
	notepadhttp.SetupRouter(fiberApp, notepadhttp.NewHandler(ws, buffer, hub, metered), routerOpts)

	return &testServer{app: fiberApp, ws: ws, store: store, buffer: buffer, hub: hub, reg: reg}
}

// do выполняет запрос; body сериализуется в JSON, если не nil.
func (s *testServer) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.send(t, req)
}

func (s *testServer) send(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()

	resp, err := s.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(data, &out), string(data))
	return out
}
