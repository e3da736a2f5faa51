package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArticleBatchDedupe(t *testing.T) {
	batch := ArticleBatch{
		Articles: []Article{
			{NaverLink: "https://n.news.naver.com/a", Title: "first"},
			{NaverLink: "https://n.news.naver.com/b", Title: "second"},
			{NaverLink: "https://n.news.naver.com/a", Title: "first updated"},
			{NaverLink: "https://n.news.naver.com/c", Title: "third"},
		},
	}

	batch.Dedupe()

	require.Len(t, batch.Articles, 3)
	assert.Equal(t, "first updated", batch.Articles[0].Title, "last write wins")
	assert.Equal(t, "second", batch.Articles[1].Title)
	assert.Equal(t, "third", batch.Articles[2].Title, "first-seen order is preserved")
}

func TestArticleBatchDedupeEmpty(t *testing.T) {
	batch := ArticleBatch{}
	batch.Dedupe()
	assert.Empty(t, batch.Articles)
}
