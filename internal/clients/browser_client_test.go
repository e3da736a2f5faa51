package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaehwan-dev/naverflow/config"
)

func newTestGrid(t *testing.T, handler http.Handler) *BrowserClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewBrowserClient(config.BrowserConfig{
		RemoteURL:   server.URL,
		PageTimeout: 5 * time.Second,
		PoolSize:    2,
	})
}

func TestBrowserSessionLifecycle(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /session", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"value": {"sessionId": "sess-1", "capabilities": {}}}`))
	})
	mux.HandleFunc("POST /session/sess-1/url", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "https://example.com", body["url"])
		w.Write([]byte(`{"value": null}`))
	})
	mux.HandleFunc("GET /session/sess-1/source", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"value": "<html><body>hi</body></html>"}`))
	})
	mux.HandleFunc("POST /session/sess-1/execute/sync", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"value": 7}`))
	})
	mux.HandleFunc("DELETE /session/sess-1", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"value": null}`))
	})

	client := newTestGrid(t, mux)
	ctx := context.Background()

	session, err := client.Acquire(ctx)
	require.NoError(t, err)
	defer session.Release()

	require.NoError(t, session.Navigate(ctx, "https://example.com"))

	html, err := session.PageSource(ctx)
	require.NoError(t, err)
	assert.Contains(t, html, "hi")

	raw, err := session.ExecuteScript(ctx, "return 7;")
	require.NoError(t, err)
	var count int
	require.NoError(t, json.Unmarshal(raw, &count))
	assert.Equal(t, 7, count)
}

func TestBrowserAcquireGridDownIsTransient(t *testing.T) {
	client := newTestGrid(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"value": {"error": "session not created", "message": "grid overloaded"}}`))
	}))

	_, err := client.Acquire(context.Background())
	require.Error(t, err)
	assert.True(t, IsTransient(err))
}

func TestBrowserDriverErrorIsPermanent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /session", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"value": {"sessionId": "sess-2"}}`))
	})
	mux.HandleFunc("POST /session/sess-2/url", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"value": {"error": "invalid argument", "message": "bad url"}}`))
	})

	client := newTestGrid(t, mux)

	session, err := client.Acquire(context.Background())
	require.NoError(t, err)

	err = session.Navigate(context.Background(), "not a url")
	require.Error(t, err)
	assert.True(t, IsPermanent(err))
}
