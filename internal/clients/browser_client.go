package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jaehwan-dev/naverflow/config"
)

// BrowserClient talks the WebDriver wire protocol to a remote Selenium grid.
// The grid does the actual rendering; this client only creates sessions,
// navigates, runs scripts and pulls page source. Sessions come out of a
// bounded pool so at most PoolSize pages render at once.
type BrowserClient struct {
	baseURL string
	http    *http.Client
	pool    chan struct{}
	timeout time.Duration
}

// BrowserSession is one live remote browser. Callers must Release it.
type BrowserSession struct {
	client *BrowserClient
	id     string
}

func NewBrowserClient(cfg config.BrowserConfig) *BrowserClient {
	size := cfg.PoolSize
	if size <= 0 {
		size = 4
	}
	return &BrowserClient{
		baseURL: strings.TrimRight(cfg.RemoteURL, "/"),
		http:    &http.Client{Timeout: cfg.PageTimeout + 10*time.Second},
		pool:    make(chan struct{}, size),
		timeout: cfg.PageTimeout,
	}
}

// Ready reports whether the grid is accepting new sessions.
func (b *BrowserClient) Ready(ctx context.Context) bool {
	value, err := b.do(ctx, http.MethodGet, "/status", nil)
	if err != nil {
		return false
	}
	var status struct {
		Ready bool `json:"ready"`
	}
	if err := json.Unmarshal(value, &status); err != nil {
		return false
	}
	return status.Ready
}

// wireValue is the W3C response envelope.
type wireValue struct {
	Value json.RawMessage `json:"value"`
}

type wireError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Acquire blocks for a pool slot, then opens a headless session on the grid.
func (b *BrowserClient) Acquire(ctx context.Context) (*BrowserSession, error) {
	select {
	case b.pool <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	payload := map[string]any{
		"capabilities": map[string]any{
			"alwaysMatch": map[string]any{
				"browserName": "chrome",
				"goog:chromeOptions": map[string]any{
					"args": []string{"--headless=new", "--disable-gpu", "--no-sandbox"},
				},
			},
		},
	}

	value, err := b.do(ctx, http.MethodPost, "/session", payload)
	if err != nil {
		<-b.pool
		return nil, fmt.Errorf("[BrowserClient] failed to create session: %w", err)
	}

	var created struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(value, &created); err != nil || created.SessionID == "" {
		<-b.pool
		return nil, Transient(fmt.Errorf("[BrowserClient] malformed session response: %w", err))
	}

	slog.Debug("[BrowserClient] Session created", slog.String("session_id", created.SessionID))
	return &BrowserSession{client: b, id: created.SessionID}, nil
}

// Release closes the remote session and frees the pool slot.
func (s *BrowserSession) Release() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := s.client.do(ctx, http.MethodDelete, "/session/"+s.id, nil); err != nil {
		slog.Warn("[BrowserClient] Failed to close session",
			slog.String("session_id", s.id),
			slog.String("error", err.Error()))
	}
	<-s.client.pool
}

// Navigate loads url in the remote browser, bounded by the page timeout.
func (s *BrowserSession) Navigate(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, s.client.timeout)
	defer cancel()

	_, err := s.client.do(ctx, http.MethodPost, "/session/"+s.id+"/url", map[string]string{"url": url})
	if err != nil {
		return fmt.Errorf("[BrowserClient] navigation to %s failed: %w", url, err)
	}
	return nil
}

// PageSource returns the rendered HTML of the current page.
func (s *BrowserSession) PageSource(ctx context.Context) (string, error) {
	value, err := s.client.do(ctx, http.MethodGet, "/session/"+s.id+"/source", nil)
	if err != nil {
		return "", fmt.Errorf("[BrowserClient] failed to read page source: %w", err)
	}
	var html string
	if err := json.Unmarshal(value, &html); err != nil {
		return "", Transient(fmt.Errorf("[BrowserClient] malformed page source: %w", err))
	}
	return html, nil
}

// ExecuteScript runs script synchronously in the page and returns its result.
func (s *BrowserSession) ExecuteScript(ctx context.Context, script string, args ...any) (json.RawMessage, error) {
	if args == nil {
		args = []any{}
	}
	payload := map[string]any{"script": script, "args": args}
	value, err := s.client.do(ctx, http.MethodPost, "/session/"+s.id+"/execute/sync", payload)
	if err != nil {
		return nil, fmt.Errorf("[BrowserClient] script execution failed: %w", err)
	}
	return value, nil
}

func (b *BrowserClient) do(ctx context.Context, method, path string, payload any) (json.RawMessage, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, Permanent(err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, body)
	if err != nil {
		return nil, Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	res, err := b.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, Transient(ctx.Err())
		}
		return nil, Transient(err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, Transient(err)
	}

	var envelope wireValue
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, Transient(fmt.Errorf("malformed grid response: %w", err))
	}

	if res.StatusCode >= 400 {
		var driverErr wireError
		_ = json.Unmarshal(envelope.Value, &driverErr)
		err := fmt.Errorf("grid returned %d (%s): %s", res.StatusCode, driverErr.Error, driverErr.Message)
		if res.StatusCode >= 500 || driverErr.Error == "timeout" || driverErr.Error == "invalid session id" {
			return nil, Transient(err)
		}
		return nil, Permanent(err)
	}

	return envelope.Value, nil
}
