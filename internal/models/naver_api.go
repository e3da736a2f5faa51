package models

// NaverNewsResponse is one page of the Naver Open API news search.
type NaverNewsResponse struct {
	LastBuildDate string          `json:"lastBuildDate"`
	Total         int             `json:"total"`
	Start         int             `json:"start"`
	Display       int             `json:"display"`
	Items         []NaverNewsItem `json:"items"`
}

// NaverNewsItem is one search hit. Title and Description arrive with the
// keyword wrapped in <b> tags; PubDate is RFC-822 style with a +0900 offset.
type NaverNewsItem struct {
	Title        string `json:"title"`
	OriginalLink string `json:"originallink"`
	Link         string `json:"link"`
	Description  string `json:"description"`
	PubDate      string `json:"pubDate"`
}
