package collectors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaehwan-dev/naverflow/internal/clients"
	"github.com/jaehwan-dev/naverflow/internal/models"
)

func TestCommentPageURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "mnews article",
			in:   "https://n.news.naver.com/mnews/article/001/0012345678",
			want: "https://n.news.naver.com/mnews/article/comment/001/0012345678",
		},
		{
			name: "news article with view segment",
			in:   "https://n.news.naver.com/news/article/view/055/0002223334",
			want: "https://n.news.naver.com/news/article/comment/055/0002223334",
		},
		{
			name: "bare article path defaults to mnews",
			in:   "https://n.news.naver.com/article/421/0007654321",
			want: "https://n.news.naver.com/mnews/article/comment/421/0007654321",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CommentPageURL(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommentPageURLRejectsOutletLinks(t *testing.T) {
	_, err := CommentPageURL("https://www.yna.co.kr/view/AKR123")
	require.Error(t, err)
	assert.True(t, clients.IsPermanent(err))
}

const commentPageHTML = `
<html><body>
<span class="_ARTICLE_DATE_TIME" data-date-time="2024-03-20 14:30:01"></span>
<span class="u_cbox_count">1,234</span>
<div class="u_cbox_comment_count_wrap">
  <div class="u_cbox_count_info"><span class="u_cbox_info_title">현재</span><span class="u_cbox_info_txt">1,200</span></div>
  <div class="u_cbox_count_info"><span class="u_cbox_info_title">작성자 삭제</span><span class="u_cbox_info_txt">24</span></div>
  <div class="u_cbox_count_info"><span class="u_cbox_info_title">규정 미준수</span><span class="u_cbox_info_txt">10</span></div>
</div>
<div class="u_cbox_chart_male"><span class="u_cbox_chart_per">61%</span></div>
<div class="u_cbox_chart_female"><span class="u_cbox_chart_per">39%</span></div>
<div class="u_cbox_chart_progress"><span class="u_cbox_chart_per">2%</span></div>
<div class="u_cbox_chart_progress"><span class="u_cbox_chart_per">11%</span></div>
<div class="u_cbox_chart_progress"><span class="u_cbox_chart_per">21%</span></div>
<div class="u_cbox_chart_progress"><span class="u_cbox_chart_per">30%</span></div>
<div class="u_cbox_chart_progress"><span class="u_cbox_chart_per">24%</span></div>
<div class="u_cbox_chart_progress"><span class="u_cbox_chart_per">12%</span></div>
<ul>
  <li class="u_cbox_comment" data-info="commentNo:'100001',deleted:false">
    <img class="u_cbox_img_profile" src="https://phinf.example/profile1.png">
    <span class="u_cbox_nick">시민A</span>
    <span class="u_cbox_contents">좋은 기사네요</span>
    <span class="u_cbox_date" data-value="2024-03-20T15:00:00+0900"></span>
    <em class="u_cbox_cnt_recomm">12</em>
    <em class="u_cbox_cnt_unrecomm">3</em>
    <span class="u_cbox_reply_cnt">2</span>
  </li>
  <li class="u_cbox_reply_item" data-info="commentNo:'100002',parentCommentNo:'100001'">
    <span class="u_cbox_nick">시민B</span>
    <span class="u_cbox_contents">동의합니다</span>
    <span class="u_cbox_date" data-value="2024-03-20T15:10:00+0900"></span>
    <em class="u_cbox_cnt_recomm">1</em>
    <em class="u_cbox_cnt_unrecomm">0</em>
  </li>
  <li class="u_cbox_comment u_cbox_type_delete" data-info="commentNo:'100003'">
    <span class="u_cbox_delete_contents">작성자에 의해 삭제된 댓글입니다.</span>
  </li>
  <li class="u_cbox_comment u_cbox_type_delete" data-info="commentNo:'100004'">
    <span class="u_cbox_delete_contents">규정을 위반하여 삭제된 댓글입니다.</span>
  </li>
  <li class="u_cbox_comment">no data-info, skipped</li>
</ul>
</body></html>`

func TestParseCommentBatch(t *testing.T) {
	batch, err := parseCommentBatch(commentPageHTML, "https://n.news.naver.com/mnews/article/001/0012345678", true)
	require.NoError(t, err)

	assert.Equal(t, 1234, batch.TotalCount)
	require.NotNil(t, batch.PublishedAt)
	assert.Equal(t, time.Date(2024, 3, 20, 14, 30, 1, 0, models.KST), *batch.PublishedAt)

	require.Len(t, batch.Comments, 4)

	top := batch.Comments[0]
	assert.Equal(t, "100001", top.CommentNo)
	assert.False(t, top.IsReply)
	assert.Equal(t, "좋은 기사네요", top.Content)
	assert.Equal(t, "시민A", top.Username)
	assert.Equal(t, "https://phinf.example/profile1.png", top.ProfileURL)
	require.NotNil(t, top.Timestamp)
	assert.Equal(t, time.Date(2024, 3, 20, 15, 0, 0, 0, models.KST), *top.Timestamp)
	assert.Equal(t, 12, top.Likes)
	assert.Equal(t, 3, top.Dislikes)
	assert.Equal(t, 2, top.ReplyCount)

	reply := batch.Comments[1]
	assert.Equal(t, "100002", reply.CommentNo)
	assert.True(t, reply.IsReply)
	assert.Equal(t, "100001", reply.ParentCommentNo)
	assert.Zero(t, reply.ReplyCount)

	userDeleted := batch.Comments[2]
	assert.True(t, userDeleted.IsDeleted)
	assert.Equal(t, models.DeleteTypeUser, userDeleted.DeleteType)

	adminDeleted := batch.Comments[3]
	assert.True(t, adminDeleted.IsDeleted)
	assert.Equal(t, models.DeleteTypeAdmin, adminDeleted.DeleteType)
}

func TestParseCommentBatchStats(t *testing.T) {
	batch, err := parseCommentBatch(commentPageHTML, "https://n.news.naver.com/mnews/article/001/0012345678", true)
	require.NoError(t, err)
	require.NotNil(t, batch.Stats)

	stats := batch.Stats
	assert.Equal(t, 1234, stats.TotalCount)
	assert.Equal(t, 1200, stats.CurrentCount)
	assert.Equal(t, 24, stats.UserDeletedCount)
	assert.Equal(t, 10, stats.AdminDeletedCount)
	assert.Equal(t, 61.0, stats.GenderRatio.Male)
	assert.Equal(t, 39.0, stats.GenderRatio.Female)
	assert.Equal(t, 2.0, stats.AgeDistribution["10s"])
	assert.Equal(t, 30.0, stats.AgeDistribution["40s"])
	assert.Equal(t, 12.0, stats.AgeDistribution["60s_above"])
}

func TestParseCommentBatchWithoutStats(t *testing.T) {
	batch, err := parseCommentBatch(commentPageHTML, "https://n.news.naver.com/mnews/article/001/0012345678", false)
	require.NoError(t, err)
	assert.Nil(t, batch.Stats)
}

func TestParseCommentBatchEmptyCharts(t *testing.T) {
	page := `<html><body><span class="u_cbox_count">3</span></body></html>`

	batch, err := parseCommentBatch(page, "https://n.news.naver.com/mnews/article/001/1", true)
	require.NoError(t, err)
	require.NotNil(t, batch.Stats)
	assert.Zero(t, batch.Stats.GenderRatio.Male)
	for _, bucket := range models.AgeBuckets {
		assert.Zero(t, batch.Stats.AgeDistribution[bucket])
	}
}
