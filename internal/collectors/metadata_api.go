package collectors

import (
	"context"
	"html"
	"log/slog"
	"regexp"
	"strings"

	"github.com/jaehwan-dev/naverflow/internal/models"
)

const (
	// Open API limits: at most 100 items per page, offsets up to 1000.
	apiMaxDisplay = 100
	apiMaxStart   = 1000
)

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// collectFromAPI pages through the Open API newest-first until MaxArticles
// or the offset limit is reached. A failed page is skipped with a warning;
// the job only fails when no page ever succeeds.
func (c *MetadataCollector) collectFromAPI(ctx context.Context, req MetadataRequest) ([]models.Article, error) {
	var all []models.Article
	succeeded := 0
	failed := 0

	for start := 1; start <= apiMaxStart && len(all) < req.MaxArticles; start += apiMaxDisplay {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		display := apiMaxDisplay
		if remaining := req.MaxArticles - len(all); remaining < display {
			display = remaining
		}

		response, err := c.api.SearchNews(ctx, req.Keyword, display, start)
		if err != nil {
			failed++
			slog.Warn("[MetadataCollector] Skipping failed API page",
				slog.Int("start", start),
				slog.String("error", err.Error()))
			continue
		}
		succeeded++

		all = append(all, processAPIItems(response.Items)...)
		if len(response.Items) < display {
			break
		}
	}

	if succeeded == 0 && failed > 0 {
		return nil, collectionErrorf("all %d API pages failed for keyword %q", failed, req.Keyword)
	}
	if failed > 0 {
		slog.Warn("[MetadataCollector] Some API pages were skipped",
			slog.Int("failed_pages", failed))
	}

	return all, nil
}

// processAPIItems maps Open API hits onto articles. Items with an
// unparseable pubDate keep a nil PublishedAt rather than being dropped.
func processAPIItems(items []models.NaverNewsItem) []models.Article {
	articles := make([]models.Article, 0, len(items))

	for _, item := range items {
		if item.Link == "" {
			continue
		}

		article := models.Article{
			Title:        stripTags(item.Title),
			NaverLink:    item.Link,
			OriginalLink: item.OriginalLink,
			Description:  stripTags(item.Description),
			CollectedAt:  models.NowKST(),
			IsNaverNews:  strings.Contains(item.Link, "news.naver.com"),
		}

		article.PublisherDomain = extractDomain(item.OriginalLink)
		article.Publisher = publisherFromDomain(article.PublisherDomain)

		if published, err := parseAPIDate(item.PubDate); err == nil {
			article.PublishedAt = &published
			article.PublishedDate = published.Format("2006.01.02")
		} else {
			slog.Warn("[MetadataCollector] Unparseable pubDate",
				slog.String("pub_date", item.PubDate),
				slog.String("link", item.Link))
		}

		articles = append(articles, article)
	}

	return articles
}

// stripTags removes the keyword-highlight markup the API wraps around
// titles and descriptions, and decodes HTML entities.
func stripTags(s string) string {
	return strings.TrimSpace(html.UnescapeString(tagPattern.ReplaceAllString(s, "")))
}
