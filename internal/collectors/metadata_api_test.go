package collectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaehwan-dev/naverflow/internal/models"
)

func TestStripTags(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<b>부동산</b> 시장 전망", "부동산 시장 전망"},
		{"A &amp; B &quot;quoted&quot;", `A & B "quoted"`},
		{"  plain  ", "plain"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripTags(tt.in))
	}
}

func TestProcessAPIItems(t *testing.T) {
	items := []models.NaverNewsItem{
		{
			Title:        "<b>금리</b> 인상 전망",
			OriginalLink: "https://www.yna.co.kr/view/AKR123",
			Link:         "https://n.news.naver.com/mnews/article/001/0012345678",
			Description:  "한국은행이 <b>금리</b>를...",
			PubDate:      "Wed, 20 Mar 2024 14:30:00 +0900",
		},
		{
			Title:        "outlet only",
			OriginalLink: "https://example.com/post/1",
			Link:         "https://example.com/post/1",
			Description:  "",
			PubDate:      "not a date",
		},
		{
			Title: "no link",
		},
	}

	articles := processAPIItems(items)
	require.Len(t, articles, 2)

	first := articles[0]
	assert.Equal(t, "금리 인상 전망", first.Title)
	assert.Equal(t, "한국은행이 금리를...", first.Description)
	assert.Equal(t, "yna.co.kr", first.PublisherDomain)
	assert.Equal(t, "연합뉴스", first.Publisher)
	assert.True(t, first.IsNaverNews)
	require.NotNil(t, first.PublishedAt)
	assert.Equal(t, "2024.03.20", first.PublishedDate)

	second := articles[1]
	assert.False(t, second.IsNaverNews)
	assert.Nil(t, second.PublishedAt)
	assert.Empty(t, second.PublishedDate)
}

func TestPublisherFromDomain(t *testing.T) {
	assert.Equal(t, "연합뉴스", publisherFromDomain("yna.co.kr"))
	assert.Equal(t, "연합뉴스", publisherFromDomain("www.yna.co.kr"))
	assert.Empty(t, publisherFromDomain("unknown-outlet.example"))
}

func TestExtractDomain(t *testing.T) {
	assert.Equal(t, "yna.co.kr", extractDomain("https://www.yna.co.kr/view/AKR123"))
	assert.Equal(t, "n.news.naver.com", extractDomain("https://n.news.naver.com/mnews/article/001/0012345678"))
	assert.Empty(t, extractDomain("::not a url::"))
}
