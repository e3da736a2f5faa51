package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/jaehwan-dev/naverflow/config"
	"github.com/jaehwan-dev/naverflow/internal/models"
)

const (
	NAVER_NEWS_ENDPOINT = "https://openapi.naver.com/v1/search/news.json"
	MAX_RETRIES         = 5
	INITIAL_BACKOFF     = 1 * time.Second
	MAX_BACKOFF         = 32 * time.Second
)

// NaverAPIClient calls the Naver Open API news search with credential
// headers and status-code-classified retries.
type NaverAPIClient struct {
	Client   *http.Client
	Endpoint string
	creds    config.NaverConfig
}

func NewNaverAPIClient(cfg config.NaverConfig) *NaverAPIClient {
	return &NaverAPIClient{
		Client:   &http.Client{Timeout: 15 * time.Second},
		Endpoint: NAVER_NEWS_ENDPOINT,
		creds:    cfg,
	}
}

// SearchNews fetches one result page for keyword, sorted newest first.
func (n *NaverAPIClient) SearchNews(ctx context.Context, keyword string, display, start int) (*models.NaverNewsResponse, error) {
	if n.creds.ClientID == "" || n.creds.ClientSecret == "" {
		return nil, Permanent(errors.New("[NaverAPIClient] API credentials are missing"))
	}

	params := url.Values{}
	params.Set("query", keyword)
	params.Set("display", fmt.Sprintf("%d", display))
	params.Set("start", fmt.Sprintf("%d", start))
	params.Set("sort", "date")
	reqURL := n.Endpoint + "?" + params.Encode()

	var lastErr error
	backoff := INITIAL_BACKOFF

	for attempt := 1; attempt <= MAX_RETRIES; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, Permanent(err)
		}
		req.Header.Set("X-Naver-Client-Id", n.creds.ClientID)
		req.Header.Set("X-Naver-Client-Secret", n.creds.ClientSecret)

		res, err := n.Client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Warn("[NaverAPIClient] Request failed, retrying...",
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()))
			lastErr = Transient(err)
		} else {
			response, done, err := n.handleResponse(res)
			if done {
				return response, err
			}
			lastErr = err
			slog.Warn("[NaverAPIClient] Retryable response",
				slog.Int("status", res.StatusCode),
				slog.Int("attempt", attempt),
				slog.Duration("backoff", backoff))
		}

		if attempt == MAX_RETRIES {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > MAX_BACKOFF {
			backoff = MAX_BACKOFF
		}
	}

	return nil, fmt.Errorf("[NaverAPIClient] failed after %d attempts: %w", MAX_RETRIES, lastErr)
}

// handleResponse decodes or classifies one HTTP response. done is false when
// the caller should back off and retry.
func (n *NaverAPIClient) handleResponse(res *http.Response) (*models.NaverNewsResponse, bool, error) {
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(res.Body)
		if err != nil {
			return nil, false, Transient(err)
		}
		var response models.NaverNewsResponse
		if err := json.Unmarshal(body, &response); err != nil {
			return nil, true, Permanent(fmt.Errorf("[NaverAPIClient] malformed response: %w", err))
		}
		return &response, true, nil
	case http.StatusBadRequest:
		return nil, true, Permanent(errors.New("[NaverAPIClient] bad request: check query parameters"))
	case http.StatusUnauthorized:
		return nil, true, Permanent(errors.New("[NaverAPIClient] invalid API credentials"))
	case http.StatusForbidden:
		return nil, true, Permanent(errors.New("[NaverAPIClient] API key lacks required permissions"))
	case http.StatusNotFound:
		return nil, true, Permanent(errors.New("[NaverAPIClient] endpoint not found"))
	case http.StatusTooManyRequests:
		io.Copy(io.Discard, res.Body)
		return nil, false, Transient(errors.New("[NaverAPIClient] rate limit exceeded"))
	default:
		if res.StatusCode >= 500 {
			return nil, false, Transient(fmt.Errorf("[NaverAPIClient] server error %d", res.StatusCode))
		}
		return nil, true, Permanent(fmt.Errorf("[NaverAPIClient] unexpected status %d", res.StatusCode))
	}
}
