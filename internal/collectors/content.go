package collectors

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jaehwan-dev/naverflow/config"
	"github.com/jaehwan-dev/naverflow/internal/clients"
	"github.com/jaehwan-dev/naverflow/internal/models"
)

const articleTimeLayout = "2006-01-02 15:04:05"

// ContentCollector fetches a hosted article page and extracts its full
// body, byline, and publication metadata.
type ContentCollector struct {
	browser    *clients.BrowserClient
	maxRetries int
	retryDelay time.Duration
}

func NewContentCollector(browser *clients.BrowserClient, cfg config.Config) *ContentCollector {
	return &ContentCollector{
		browser:    browser,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}
}

func (c *ContentCollector) Kind() models.MessageKind {
	return models.KindContent
}

func (c *ContentCollector) Collect(ctx context.Context, articleURL string) (*models.Content, error) {
	return withRetries(ctx, c.maxRetries, c.retryDelay, "article content "+articleURL, func() (*models.Content, error) {
		html, err := c.renderArticlePage(ctx, articleURL)
		if err != nil {
			return nil, err
		}
		return parseArticleContent(html, articleURL)
	})
}

func (c *ContentCollector) renderArticlePage(ctx context.Context, articleURL string) (string, error) {
	session, err := c.browser.Acquire(ctx)
	if err != nil {
		return "", err
	}
	defer session.Release()

	if err := session.Navigate(ctx, articleURL); err != nil {
		return "", err
	}
	return session.PageSource(ctx)
}

// parseArticleContent extracts the article from a rendered page. A page
// without the body container is not a hosted article (removed, paywalled,
// or an outlet-side page) and fails permanently.
func parseArticleContent(pageHTML, articleURL string) (*models.Content, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return nil, clients.Transient(err)
	}

	body := doc.Find("article#dic_area").First()
	if body.Length() == 0 {
		return nil, clients.Permanent(fmt.Errorf("%w: article body missing at %s", ErrNotFound, articleURL))
	}

	content := &models.Content{
		ArticleURL:  articleURL,
		Title:       strings.TrimSpace(doc.Find("h2#title_area span").First().Text()),
		Reporter:    strings.TrimSpace(doc.Find("span.byline_s").First().Text()),
		Category:    strings.TrimSpace(doc.Find("em.media_end_categorize_item").First().Text()),
		CollectedAt: models.NowKST(),
	}

	if media, ok := doc.Find("a.media_end_head_top_logo img").First().Attr("alt"); ok {
		content.Media = strings.TrimSpace(media)
	}

	content.PublishedAt = parseArticleTimestamp(doc.Find("span.media_end_head_info_datestamp_time").First(), "data-date-time")
	content.ModifiedAt = parseArticleTimestamp(doc.Find("span._MODIFY_DATE_TIME").First(), "data-modify-date-time")

	// Captioned photos live inside the body; pull them out before the
	// text pass so captions do not leak into the body text. Each caption
	// is resolved from the image's own photo wrapper, so images without
	// one stay uncaptioned instead of stealing a later caption.
	body.Find("img").Each(func(_ int, img *goquery.Selection) {
		src, ok := img.Attr("data-src")
		if !ok {
			src, ok = img.Attr("src")
		}
		if !ok || src == "" {
			return
		}
		image := models.ArticleImage{URL: src}
		image.Alt, _ = img.Attr("alt")
		image.Caption = strings.TrimSpace(img.Closest("span.end_photo_org").Find("em.img_desc").First().Text())
		content.Images = append(content.Images, image)
	})
	body.Find("em.img_desc").Remove()

	// Bolded strong runs are section subheadings, not body prose.
	body.Find("strong").Each(func(_ int, heading *goquery.Selection) {
		if text := strings.TrimSpace(heading.Text()); text != "" {
			content.Subheadings = append(content.Subheadings, text)
		}
		heading.Remove()
	})

	content.Body = normalizeBodyText(body.Text())
	if content.Title == "" && content.Body == "" {
		return nil, clients.Permanent(fmt.Errorf("%w: empty article at %s", ErrParse, articleURL))
	}

	return content, nil
}

func parseArticleTimestamp(node *goquery.Selection, attr string) *time.Time {
	raw, ok := node.Attr(attr)
	if !ok {
		return nil
	}
	parsed, err := time.ParseInLocation(articleTimeLayout, strings.TrimSpace(raw), models.KST)
	if err != nil {
		return nil
	}
	return &parsed
}

// normalizeBodyText collapses the whitespace soup left behind by removed
// markup into clean paragraph-joined text.
func normalizeBodyText(raw string) string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
