package models

import "time"

// Article is one collected news item. (MainKeyword, NaverLink) identifies
// an article; re-collecting the same link under the same keyword updates
// the existing row instead of creating a new one.
type Article struct {
	MainKeyword     string     `json:"main_keyword"`
	Title           string     `json:"title"`
	NaverLink       string     `json:"naver_link"`
	OriginalLink    string     `json:"original_link"`
	Description     string     `json:"description"`
	Publisher       string     `json:"publisher"`
	PublisherDomain string     `json:"publisher_domain"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	// PublishedDate holds a coarse YYYY.MM.DD string for articles whose
	// exact publication time is unknown.
	PublishedDate   string    `json:"published_date,omitempty"`
	CollectedAt     time.Time `json:"collected_at"`
	IsNaverNews     bool      `json:"is_naver_news"`
	IsTest          bool      `json:"is_test"`
	IsAPICollection bool      `json:"is_api_collection"`
}

// ArticleBatch is the payload of a metadata message.
type ArticleBatch struct {
	Keyword     string    `json:"keyword"`
	Method      string    `json:"method"`
	Articles    []Article `json:"articles"`
	CollectedAt time.Time `json:"collected_at"`
}

// Dedupe collapses duplicate NaverLink values, last write wins, keeping
// first-seen order for the surviving entries.
func (b *ArticleBatch) Dedupe() {
	byLink := make(map[string]int, len(b.Articles))
	deduped := b.Articles[:0]
	for _, a := range b.Articles {
		if i, seen := byLink[a.NaverLink]; seen {
			deduped[i] = a
			continue
		}
		byLink[a.NaverLink] = len(deduped)
		deduped = append(deduped, a)
	}
	b.Articles = deduped
}
