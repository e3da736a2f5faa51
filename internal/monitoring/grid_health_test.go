package monitoring

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaehwan-dev/naverflow/config"
	"github.com/jaehwan-dev/naverflow/internal/clients"
)

func newTestGrid(t *testing.T, handler http.HandlerFunc) *clients.BrowserClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return clients.NewBrowserClient(config.BrowserConfig{
		RemoteURL:   server.URL,
		PageTimeout: 2 * time.Second,
		PoolSize:    1,
	})
}

func TestWaitForGridReady(t *testing.T) {
	calls := 0
	browser := newTestGrid(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls < 2 {
			w.Write([]byte(`{"value": {"ready": false}}`))
			return
		}
		w.Write([]byte(`{"value": {"ready": true}}`))
	})

	require.NoError(t, WaitForGrid(context.Background(), browser, 3))
	assert.Equal(t, 2, calls)
}

func TestWaitForGridGivesUp(t *testing.T) {
	browser := newTestGrid(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"value": {"ready": false}}`))
	})

	err := WaitForGrid(context.Background(), browser, 1)
	require.Error(t, err)
}

func TestMonitorGridHealthCancelsJobWhenGridStaysDown(t *testing.T) {
	browser := newTestGrid(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "grid down", http.StatusInternalServerError)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		monitorGridHealth(ctx, browser, cancel, 10*time.Millisecond)
		close(done)
	}()

	select {
	case <-ctx.Done():
	case <-time.After(3 * time.Second):
		t.Fatal("job context was never cancelled")
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop after cancelling")
	}
}

func TestMonitorGridHealthStopsWithJob(t *testing.T) {
	browser := newTestGrid(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"value": {"ready": true}}`))
	})

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		monitorGridHealth(ctx, browser, cancel, 10*time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor kept running after the job finished")
	}
}
