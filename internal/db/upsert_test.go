package db

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaehwan-dev/naverflow/internal/models"
)

func TestBuildArticleUpsert(t *testing.T) {
	articles := []models.Article{
		{MainKeyword: "금리", NaverLink: "https://n.news.naver.com/a", Title: "첫 기사"},
		{MainKeyword: "금리", NaverLink: "https://n.news.naver.com/b", Title: "둘째 기사"},
	}

	query, values := buildArticleUpsert(articles)

	require.Len(t, values, 26)
	assert.Equal(t, "금리", values[0])
	assert.Equal(t, "https://n.news.naver.com/a", values[1])
	assert.Equal(t, "https://n.news.naver.com/b", values[14])

	assert.Contains(t, query, "ON CONFLICT (main_keyword, naver_link)")
	assert.Contains(t, query, "($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)")
	assert.Contains(t, query, "$26")
	assert.NotContains(t, query, "$27")
	assert.Contains(t, query, "COALESCE(EXCLUDED.published_at, articles.published_at)",
		"a coarse re-collection must not erase a known timestamp")
	assert.NotContains(t, query, "collected_at = EXCLUDED",
		"first collection time is immutable")
}

func TestBuildCommentUpsert(t *testing.T) {
	comments := []models.Comment{
		{CommentNo: "100001", Content: "댓글", Username: "시민A", ReplyCount: 2},
		{CommentNo: "100002", ParentCommentNo: "100001", Content: "답글", IsReply: true},
	}

	query, values := buildCommentUpsert(42, comments)

	require.Len(t, values, 28)
	assert.Equal(t, int64(42), values[0])
	assert.Equal(t, "100001", values[1])
	assert.Nil(t, values[2], "empty parent must be stored as NULL")
	assert.Equal(t, "100001", values[16], "reply keeps its soft parent reference")

	assert.Contains(t, query, "ON CONFLICT (article_id, comment_no)")
	assert.Contains(t, query, "$28")
	assert.NotContains(t, query, "$29")
	assert.NotContains(t, query, "parent_comment_no = EXCLUDED",
		"thread structure never changes on re-collection")
}

func TestBuildArticleUpsertPlaceholdersAreSequential(t *testing.T) {
	articles := make([]models.Article, 5)
	for i := range articles {
		articles[i] = models.Article{
			MainKeyword: "k",
			NaverLink:   fmt.Sprintf("https://n.news.naver.com/%d", i),
		}
	}

	query, values := buildArticleUpsert(articles)
	assert.Len(t, values, 5*13)
	assert.Equal(t, 5, strings.Count(query, "("+"$"))
}

func TestNullable(t *testing.T) {
	assert.Nil(t, nullable(""))
	assert.Equal(t, "user", nullable("user"))
}
