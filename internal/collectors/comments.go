package collectors

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jaehwan-dev/naverflow/config"
	"github.com/jaehwan-dev/naverflow/internal/clients"
	"github.com/jaehwan-dev/naverflow/internal/models"
)

const (
	commentTimeLayout = "2006-01-02T15:04:05-0700"
	loadMorePause     = 700 * time.Millisecond
	maxLoadMoreClicks = 200
)

var (
	articleURLPattern    = regexp.MustCompile(`(https://n\.news\.naver\.com)/(?:(mnews|news)/)?article(?:/view)?/(\d+)/(\d+)`)
	commentNoPattern     = regexp.MustCompile(`commentNo:'([^']*)'`)
	parentCommentPattern = regexp.MustCompile(`parentCommentNo:'([^']*)'`)
)

// CommentCollector loads the comment page for a hosted article, expands
// every comment thread, and extracts the comments with their aggregate
// statistics.
type CommentCollector struct {
	browser    *clients.BrowserClient
	maxRetries int
	retryDelay time.Duration
}

func NewCommentCollector(browser *clients.BrowserClient, cfg config.Config) *CommentCollector {
	return &CommentCollector{
		browser:    browser,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}
}

func (c *CommentCollector) Kind() models.MessageKind {
	return models.KindComments
}

// Collect gathers all comments for the article. withStats additionally
// parses the demographic chart, which the page only renders for articles
// with enough commenters.
func (c *CommentCollector) Collect(ctx context.Context, articleURL string, withStats bool) (*models.CommentBatch, error) {
	commentURL, err := CommentPageURL(articleURL)
	if err != nil {
		return nil, err
	}

	return withRetries(ctx, c.maxRetries, c.retryDelay, "comments "+commentURL, func() (*models.CommentBatch, error) {
		html, err := c.renderCommentPage(ctx, commentURL)
		if err != nil {
			return nil, err
		}
		return parseCommentBatch(html, articleURL, withStats)
	})
}

// CommentPageURL converts a hosted article URL to its comment-page URL.
// Only articles hosted on the news portal carry a comment page.
func CommentPageURL(articleURL string) (string, error) {
	match := articleURLPattern.FindStringSubmatch(articleURL)
	if match == nil {
		return "", clients.Permanent(collectionErrorf("not a hosted article URL: %s", articleURL))
	}

	domain, urlType, mediaID, articleID := match[1], match[2], match[3], match[4]
	if urlType == "" {
		urlType = "mnews"
	}
	return domain + "/" + urlType + "/article/comment/" + mediaID + "/" + articleID, nil
}

// renderCommentPage loads the comment page and clicks the more-button
// until every page of comments is in the DOM.
func (c *CommentCollector) renderCommentPage(ctx context.Context, commentURL string) (string, error) {
	session, err := c.browser.Acquire(ctx)
	if err != nil {
		return "", err
	}
	defer session.Release()

	if err := session.Navigate(ctx, commentURL); err != nil {
		return "", err
	}

	for i := 0; i < maxLoadMoreClicks; i++ {
		raw, err := session.ExecuteScript(ctx,
			`var btn = document.querySelector('a.u_cbox_btn_more');
			 if (btn && btn.offsetParent !== null) { btn.click(); return true; }
			 return false;`)
		if err != nil {
			return "", err
		}

		var clicked bool
		if err := json.Unmarshal(raw, &clicked); err != nil {
			return "", clients.Transient(err)
		}
		if !clicked {
			break
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(loadMorePause):
		}
	}

	return session.PageSource(ctx)
}

// parseCommentBatch extracts the comments and optional statistics from a
// fully expanded comment page.
func parseCommentBatch(pageHTML, articleURL string, withStats bool) (*models.CommentBatch, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return nil, clients.Transient(err)
	}

	batch := &models.CommentBatch{
		ArticleURL:  articleURL,
		TotalCount:  parseCount(doc.Find("span.u_cbox_count").First().Text()),
		PublishedAt: parseArticleTimestamp(doc.Find("span._ARTICLE_DATE_TIME").First(), "data-date-time"),
		CollectedAt: models.NowKST(),
	}

	doc.Find("div.u_cbox_comment, li.u_cbox_comment, li.u_cbox_reply_item").Each(func(_ int, item *goquery.Selection) {
		if comment, ok := extractComment(item); ok {
			batch.Comments = append(batch.Comments, comment)
		}
	})

	if withStats {
		batch.Stats = parseCommentStats(doc, batch.TotalCount)
	}

	return batch, nil
}

func extractComment(item *goquery.Selection) (models.Comment, bool) {
	info, ok := item.Attr("data-info")
	if !ok {
		return models.Comment{}, false
	}

	comment := models.Comment{
		CommentNo:   firstSubmatch(commentNoPattern, info),
		IsReply:     item.HasClass("u_cbox_reply_item"),
		CollectedAt: models.NowKST(),
	}
	if comment.CommentNo == "" {
		return models.Comment{}, false
	}
	if comment.IsReply {
		comment.ParentCommentNo = firstSubmatch(parentCommentPattern, info)
	}

	if item.HasClass("u_cbox_type_delete") {
		comment.IsDeleted = true
		notice := strings.TrimSpace(item.Find("span.u_cbox_delete_contents").First().Text())
		comment.Content = notice
		if strings.Contains(notice, "작성자") {
			comment.DeleteType = models.DeleteTypeUser
		} else {
			comment.DeleteType = models.DeleteTypeAdmin
		}
		return comment, true
	}

	comment.Content = strings.TrimSpace(item.Find("span.u_cbox_contents").First().Text())
	comment.Username = strings.TrimSpace(item.Find("span.u_cbox_nick").First().Text())
	comment.ProfileURL, _ = item.Find("img.u_cbox_img_profile").First().Attr("src")

	if raw, ok := item.Find("span.u_cbox_date").First().Attr("data-value"); ok {
		if parsed, err := time.Parse(commentTimeLayout, strings.TrimSpace(raw)); err == nil {
			ts := parsed.In(models.KST)
			comment.Timestamp = &ts
		}
	}

	comment.Likes = parseCount(item.Find("em.u_cbox_cnt_recomm").First().Text())
	comment.Dislikes = parseCount(item.Find("em.u_cbox_cnt_unrecomm").First().Text())
	if !comment.IsReply {
		comment.ReplyCount = parseCount(item.Find("span.u_cbox_reply_cnt").First().Text())
	}

	return comment, true
}

// parseCommentStats reads the count breakdown and demographic charts.
// Articles without enough commenters render no charts; those fields stay
// at their zero values.
func parseCommentStats(doc *goquery.Document, totalCount int) *models.CommentStats {
	stats := models.EmptyCommentStats()
	stats.TotalCount = totalCount
	stats.CollectedAt = models.NowKST()

	doc.Find("div.u_cbox_comment_count_wrap .u_cbox_count_info").Each(func(_ int, info *goquery.Selection) {
		title := strings.TrimSpace(info.Find(".u_cbox_info_title").First().Text())
		count := parseCount(info.Find(".u_cbox_info_txt").First().Text())
		switch {
		case strings.Contains(title, "현재"):
			stats.CurrentCount = count
		case strings.Contains(title, "작성자"):
			stats.UserDeletedCount = count
		case strings.Contains(title, "규정"):
			stats.AdminDeletedCount = count
		}
	})

	stats.GenderRatio.Male = parsePercent(doc.Find(".u_cbox_chart_male .u_cbox_chart_per").First().Text())
	stats.GenderRatio.Female = parsePercent(doc.Find(".u_cbox_chart_female .u_cbox_chart_per").First().Text())

	doc.Find(".u_cbox_chart_progress .u_cbox_chart_per").Each(func(i int, per *goquery.Selection) {
		if i < len(models.AgeBuckets) {
			stats.AgeDistribution[models.AgeBuckets[i]] = parsePercent(per.Text())
		}
	})

	return stats
}

func firstSubmatch(pattern *regexp.Regexp, text string) string {
	if match := pattern.FindStringSubmatch(text); match != nil {
		return match[1]
	}
	return ""
}

func parseCount(text string) int {
	text = strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	if text == "" {
		return 0
	}
	count, err := strconv.Atoi(text)
	if err != nil {
		return 0
	}
	return count
}

func parsePercent(text string) float64 {
	text = strings.TrimSuffix(strings.TrimSpace(text), "%")
	if text == "" {
		return 0
	}
	percent, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0
	}
	return percent
}
