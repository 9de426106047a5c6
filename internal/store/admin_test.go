package store

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/routeward/routeward/internal/route"
)

const serverDoc = `{
	"listen": [":443"],
	"automatic_https": {"disable": false},
	"routes": [
		{"@id": "api", "match": [{"path": ["/api/*"]}], "handle": [{"handler": "reverse_proxy"}]}
	]
}`

func newAdminTestClient(t *testing.T, handler http.Handler) *AdminClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewAdminClient(srv.URL, 2*time.Second, 5*time.Second, zap.NewNop())
}

func TestAdminClient_GetServer(t *testing.T) {
	t.Parallel()

	client := newAdminTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/config/servers/main", r.URL.Path)
		_, _ = w.Write([]byte(serverDoc))
	}))

	cfg, err := client.GetServer(context.Background(), "main")
	require.NoError(t, err)
	require.Len(t, cfg.Routes, 1)
	assert.Equal(t, "api", cfg.Routes[0].ID)
}

func TestAdminClient_GetServerNotFound(t *testing.T) {
	t.Parallel()

	client := newAdminTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	_, err := client.GetServer(context.Background(), "missing")
	require.Error(t, err)
	assert.Regexp(t, `(?i)not found`, err.Error())

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing", notFound.Server)
}

func TestAdminClient_GetServerRetriesTransientFailure(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newAdminTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(serverDoc))
	}))

	cfg, err := client.GetServer(context.Background(), "main")
	require.NoError(t, err)
	assert.Len(t, cfg.Routes, 1)
	assert.GreaterOrEqual(t, calls.Load(), int32(2))
}

func TestAdminClient_PutServerPreservesServerFields(t *testing.T) {
	t.Parallel()

	var written []byte
	client := newAdminTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(serverDoc))
		case http.MethodPost:
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			written = body
			w.WriteHeader(http.StatusOK)
		}
	}))

	ctx := context.Background()
	cfg, err := client.GetServer(ctx, "main")
	require.NoError(t, err)

	cfg.Routes = append(cfg.Routes, route.Route{
		ID:       "extra",
		Handlers: []route.Handler{{"handler": "static_response"}},
	})
	require.NoError(t, client.PutServer(ctx, "main", cfg))

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(written, &doc))
	assert.Contains(t, doc, "listen")
	assert.Contains(t, doc, "automatic_https")

	var routes []route.Route
	require.NoError(t, json.Unmarshal(doc["routes"], &routes))
	assert.Len(t, routes, 2)
}

func TestAdminClient_PutServerClientErrorNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newAdminTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))

	err := client.PutServer(context.Background(), "main", &ServerConfig{})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestAdminClient_Ping(t *testing.T) {
	t.Parallel()

	healthy := newAdminTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	assert.NoError(t, healthy.Ping(context.Background()))

	broken := newAdminTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	assert.Error(t, broken.Ping(context.Background()))
}
