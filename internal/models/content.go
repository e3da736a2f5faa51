package models

import "time"

// ArticleImage is one inline image with its caption, in document order.
type ArticleImage struct {
	URL     string `json:"url"`
	Caption string `json:"caption"`
	Alt     string `json:"alt"`
}

// Content is the full body of one article, at most one per Article.
type Content struct {
	ArticleURL  string         `json:"article_url"`
	Title       string         `json:"title"`
	Subheadings []string       `json:"subheadings"`
	Body        string         `json:"content"`
	Reporter    string         `json:"reporter"`
	Media       string         `json:"media"`
	PublishedAt *time.Time     `json:"published_at,omitempty"`
	ModifiedAt  *time.Time     `json:"modified_at,omitempty"`
	Category    string         `json:"category"`
	Images      []ArticleImage `json:"images"`
	CollectedAt time.Time      `json:"collected_at"`
}
