package collectors

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaehwan-dev/naverflow/internal/clients"
	"github.com/jaehwan-dev/naverflow/internal/models"
)

const articlePageHTML = `
<html><body>
<a class="media_end_head_top_logo"><img src="/logo.png" alt="연합뉴스"></a>
<h2 id="title_area"><span>반도체 수출 증가세 지속</span></h2>
<span class="media_end_head_info_datestamp_time" data-date-time="2024-03-20 14:30:01">2024.03.20. 오후 2:30</span>
<span class="_MODIFY_DATE_TIME" data-modify-date-time="2024-03-20 16:05:00">2024.03.20. 오후 4:05</span>
<article id="dic_area">
  <strong>1분기 실적</strong>
  수출이 석 달 연속 늘었다.
  <img src="https://imgnews.example/chart.png" alt="수출 추이 그래프">
  <span class="end_photo_org"><img data-src="https://imgnews.example/photo1.jpg" alt="반도체 공장"><em class="img_desc">공장 전경. 연합뉴스</em></span>
  업계는 하반기에도 증가세가 이어질 것으로 본다.
</article>
<span class="byline_s">홍길동 기자</span>
<em class="media_end_categorize_item">경제</em>
</body></html>`

func TestParseArticleContent(t *testing.T) {
	content, err := parseArticleContent(articlePageHTML, "https://n.news.naver.com/mnews/article/001/0012345678")
	require.NoError(t, err)

	assert.Equal(t, "https://n.news.naver.com/mnews/article/001/0012345678", content.ArticleURL)
	assert.Equal(t, "반도체 수출 증가세 지속", content.Title)
	assert.Equal(t, "홍길동 기자", content.Reporter)
	assert.Equal(t, "연합뉴스", content.Media)
	assert.Equal(t, "경제", content.Category)

	require.NotNil(t, content.PublishedAt)
	assert.Equal(t, time.Date(2024, 3, 20, 14, 30, 1, 0, models.KST), *content.PublishedAt)
	require.NotNil(t, content.ModifiedAt)
	assert.Equal(t, time.Date(2024, 3, 20, 16, 5, 0, 0, models.KST), *content.ModifiedAt)

	assert.Equal(t, []string{"1분기 실적"}, content.Subheadings)
	assert.Contains(t, content.Body, "수출이 석 달 연속 늘었다.")
	assert.Contains(t, content.Body, "업계는 하반기에도")
	assert.NotContains(t, content.Body, "1분기 실적", "subheadings must not stay in the body")
	assert.NotContains(t, content.Body, "공장 전경", "captions must not stay in the body")

	require.Len(t, content.Images, 2)
	assert.Equal(t, "https://imgnews.example/chart.png", content.Images[0].URL)
	assert.Empty(t, content.Images[0].Caption,
		"an image without a photo wrapper must not take the next caption")
	assert.Equal(t, "https://imgnews.example/photo1.jpg", content.Images[1].URL)
	assert.Equal(t, "공장 전경. 연합뉴스", content.Images[1].Caption)
	assert.Equal(t, "반도체 공장", content.Images[1].Alt)
}

func TestParseArticleContentMissingBodyIsPermanent(t *testing.T) {
	_, err := parseArticleContent("<html><body><p>404</p></body></html>", "https://n.news.naver.com/mnews/article/001/0")
	require.Error(t, err)
	assert.True(t, clients.IsPermanent(err))
	assert.True(t, errors.Is(err, ErrNotFound))
}
