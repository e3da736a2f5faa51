package collectors

import (
	"context"
	"log/slog"
	"time"

	"github.com/jaehwan-dev/naverflow/config"
	"github.com/jaehwan-dev/naverflow/internal/clients"
	"github.com/jaehwan-dev/naverflow/internal/models"
)

// MetadataCollector produces article metadata batches from either the Open
// API or rendered search-result pages.
type MetadataCollector struct {
	api        *clients.NaverAPIClient
	browser    *clients.BrowserClient
	maxRetries int
	retryDelay time.Duration
}

func NewMetadataCollector(api *clients.NaverAPIClient, browser *clients.BrowserClient, cfg config.Config) *MetadataCollector {
	return &MetadataCollector{
		api:        api,
		browser:    browser,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}
}

func (c *MetadataCollector) Kind() models.MessageKind { return models.KindMetadata }

// MetadataRequest describes one metadata collection job.
type MetadataRequest struct {
	Method  string
	Keyword string
	// StartDate/EndDate bound search collection; zero values default to
	// the last five weeks ending today.
	StartDate   time.Time
	EndDate     time.Time
	MaxArticles int
	IsTest      bool
}

// Collect runs the job and returns a deduplicated batch. Every returned
// article has a non-empty NaverLink.
func (c *MetadataCollector) Collect(ctx context.Context, req MetadataRequest) (models.ArticleBatch, error) {
	if req.Keyword == "" {
		return models.ArticleBatch{}, collectionErrorf("keyword is required")
	}
	if req.MaxArticles <= 0 {
		req.MaxArticles = 1000
	}

	slog.Info("[MetadataCollector] Starting collection",
		slog.String("method", req.Method),
		slog.String("keyword", req.Keyword),
		slog.Int("max_articles", req.MaxArticles))

	var articles []models.Article
	var err error

	switch req.Method {
	case MethodAPI:
		articles, err = c.collectFromAPI(ctx, req)
	case MethodSearch:
		articles, err = c.collectFromSearch(ctx, req)
	default:
		return models.ArticleBatch{}, collectionErrorf("invalid collection method %q", req.Method)
	}
	if err != nil {
		return models.ArticleBatch{}, err
	}

	for i := range articles {
		articles[i].MainKeyword = req.Keyword
		articles[i].IsTest = req.IsTest
		articles[i].IsAPICollection = req.Method == MethodAPI
	}

	batch := models.ArticleBatch{
		Keyword:     req.Keyword,
		Method:      req.Method,
		Articles:    articles,
		CollectedAt: models.NowKST(),
	}
	batch.Dedupe()

	if len(batch.Articles) > req.MaxArticles {
		batch.Articles = batch.Articles[:req.MaxArticles]
	}

	slog.Info("[MetadataCollector] Collection finished",
		slog.String("keyword", req.Keyword),
		slog.Int("articles", len(batch.Articles)))
	return batch, nil
}

func (req MetadataRequest) dateRange(now time.Time) (time.Time, time.Time) {
	end := req.EndDate
	if end.IsZero() {
		end = now
	}
	start := req.StartDate
	if start.IsZero() {
		start = now.Add(-recencyWindow)
	}
	return start, end
}
