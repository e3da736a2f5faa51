package collectors

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jaehwan-dev/naverflow/internal/clients"
	"github.com/jaehwan-dev/naverflow/internal/models"
)

const (
	searchBaseURL = "https://search.naver.com/search.naver"
	scrollPause   = time.Second
)

// collectFromSearch crawls rendered search-result pages. Recent days are
// paged one search per day (newest first); anything past the recency
// window goes through a single absolute-date listing. A page that fails
// all its retries is skipped; the job fails only if every page failed.
func (c *MetadataCollector) collectFromSearch(ctx context.Context, req MetadataRequest) ([]models.Article, error) {
	now := models.NowKST()
	start, end := req.dateRange(now)
	plan := planSearchRange(now, start, end)

	var all []models.Article
	succeeded := 0
	failed := 0

	for _, day := range plan.DailyDates {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if len(all) >= req.MaxArticles {
			break
		}

		day := day
		articles, err := c.collectSearchPage(ctx, req.Keyword, day, day, &day)
		if err != nil {
			failed++
			slog.Warn("[MetadataCollector] Skipping failed search day",
				slog.String("date", day.Format("2006-01-02")),
				slog.String("error", err.Error()))
			continue
		}
		succeeded++
		all = append(all, articles...)
	}

	if plan.HasRange() && len(all) < req.MaxArticles && ctx.Err() == nil {
		articles, err := c.collectSearchPage(ctx, req.Keyword, plan.RangeStart, plan.RangeEnd, nil)
		if err != nil {
			failed++
			slog.Warn("[MetadataCollector] Skipping failed date-range listing",
				slog.String("error", err.Error()))
		} else {
			succeeded++
			all = append(all, articles...)
		}
	}

	if succeeded == 0 && failed > 0 {
		return nil, collectionErrorf("all %d search pages failed for keyword %q", failed, req.Keyword)
	}

	return all, nil
}

// collectSearchPage renders one search listing and extracts its articles.
// searchDate is non-nil for daily paging, where the search day itself is
// the best available publication date.
func (c *MetadataCollector) collectSearchPage(ctx context.Context, keyword string, start, end time.Time, searchDate *time.Time) ([]models.Article, error) {
	pageURL := buildSearchURL(keyword, start, end)

	return withRetries(ctx, c.maxRetries, c.retryDelay, "search page "+pageURL, func() ([]models.Article, error) {
		html, err := c.renderSearchPage(ctx, pageURL)
		if err != nil {
			return nil, err
		}
		return parseSearchArticles(html, searchDate)
	})
}

// buildSearchURL renders the news-search URL with newest-first sorting and
// an explicit ds/de date window.
func buildSearchURL(keyword string, start, end time.Time) string {
	params := url.Values{}
	params.Set("where", "news")
	params.Set("query", keyword)
	params.Set("sort", "1")
	params.Set("pd", "3")
	params.Set("start", "1")
	params.Set("ds", start.Format("2006.01.02"))
	params.Set("de", end.Format("2006.01.02"))
	return searchBaseURL + "?" + params.Encode()
}

// renderSearchPage loads the listing in a pooled browser session and
// scrolls until no more results stream in, then returns the final HTML.
func (c *MetadataCollector) renderSearchPage(ctx context.Context, pageURL string) (string, error) {
	session, err := c.browser.Acquire(ctx)
	if err != nil {
		return "", err
	}
	defer session.Release()

	if err := session.Navigate(ctx, pageURL); err != nil {
		return "", err
	}

	lastCount := -1
	stable := 0
	for stable < 2 {
		raw, err := session.ExecuteScript(ctx,
			`window.scrollTo(0, document.body.scrollHeight);
			 return document.querySelectorAll('ul.list_news > li.bx').length;`)
		if err != nil {
			return "", err
		}

		var count int
		if err := json.Unmarshal(raw, &count); err != nil {
			return "", clients.Transient(err)
		}
		if count == lastCount {
			stable++
		} else {
			stable = 0
			lastCount = count
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(scrollPause):
		}
	}

	return session.PageSource(ctx)
}

// parseSearchArticles extracts article metadata from a rendered listing.
// A page without the news-list container is treated as an empty-render
// glitch and surfaces as transient so the caller retries it.
func parseSearchArticles(pageHTML string, searchDate *time.Time) ([]models.Article, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return nil, clients.Transient(err)
	}

	if doc.Find("ul.list_news").Length() == 0 {
		return nil, clients.Transient(errors.New("news list not rendered"))
	}

	var articles []models.Article
	doc.Find("ul.list_news > li.bx").Each(func(_ int, item *goquery.Selection) {
		if article, ok := extractSearchArticle(item, searchDate); ok {
			articles = append(articles, article)
		}
	})

	return articles, nil
}

func extractSearchArticle(item *goquery.Selection, searchDate *time.Time) (models.Article, bool) {
	titleLink := item.Find("a.news_tit, a.title_link").First()
	if titleLink.Length() == 0 {
		return models.Article{}, false
	}

	title := strings.TrimSpace(titleLink.Text())
	originalLink, _ := titleLink.Attr("href")
	if originalLink == "" {
		return models.Article{}, false
	}

	// The dedicated source-news anchor is labeled 네이버뉴스; articles the
	// source does not host fall back to the outlet's own link.
	naverLink := originalLink
	item.Find("a.info, a.news_source").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		if strings.TrimSpace(link.Text()) != "네이버뉴스" {
			return true
		}
		if href, ok := link.Attr("href"); ok && href != "" {
			naverLink = href
			return false
		}
		return true
	})

	description := strings.TrimSpace(item.Find("div.news_dsc").First().Text())

	press := item.Find("a.press").First().Clone()
	press.Find("i").Remove()
	publisher := strings.TrimSpace(press.Text())

	article := models.Article{
		Title:           title,
		NaverLink:       naverLink,
		OriginalLink:    originalLink,
		Description:     description,
		Publisher:       publisher,
		PublisherDomain: extractDomain(originalLink),
		CollectedAt:     models.NowKST(),
		IsNaverNews:     strings.Contains(naverLink, "news.naver.com"),
	}

	if searchDate != nil {
		published := *searchDate
		article.PublishedAt = &published
		article.PublishedDate = published.Format("2006.01.02")
	} else {
		item.Find("span.info").EachWithBreak(func(_ int, span *goquery.Selection) bool {
			date := extractAbsoluteDate(span.Text())
			if date == "" {
				return true
			}
			article.PublishedDate = date
			if published, err := parseAbsoluteDate(date); err == nil {
				article.PublishedAt = &published
			}
			return false
		})
	}

	return article, true
}
