package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jaehwan-dev/naverflow/internal/models"
)

// StoreArticleBatch upserts every article of one metadata message in a
// single transaction. Conflicts on (main_keyword, naver_link) update the
// mutable fields but keep the collected_at of the first insertion.
func (s *Store) StoreArticleBatch(ctx context.Context, batch models.ArticleBatch) (int, error) {
	if len(batch.Articles) == 0 {
		return 0, nil
	}

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("[Store] failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query, values := buildArticleUpsert(batch.Articles)
	if _, err := tx.Exec(ctx, query, values...); err != nil {
		return 0, fmt.Errorf("[Store] failed to upsert articles: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("[Store] failed to commit article batch: %w", err)
	}
	return len(batch.Articles), nil
}

// buildArticleUpsert renders the multi-row insert for a batch of articles.
func buildArticleUpsert(articles []models.Article) (string, []any) {
	const fieldCount = 13

	query := `INSERT INTO articles
        (main_keyword, naver_link, original_link, title, description,
         publisher, publisher_domain, published_at, published_date,
         collected_at, is_naver_news, is_test, is_api_collection) VALUES `

	values := make([]any, 0, len(articles)*fieldCount)
	placeholderParts := make([]string, 0, len(articles))

	for i, a := range articles {
		offset := i * fieldCount
		nums := make([]string, fieldCount)
		for j := range nums {
			nums[j] = fmt.Sprintf("$%d", offset+j+1)
		}
		placeholderParts = append(placeholderParts, "("+strings.Join(nums, ", ")+")")

		values = append(values,
			a.MainKeyword, a.NaverLink, a.OriginalLink, a.Title, a.Description,
			a.Publisher, a.PublisherDomain, a.PublishedAt, a.PublishedDate,
			a.CollectedAt, a.IsNaverNews, a.IsTest, a.IsAPICollection)
	}

	query += strings.Join(placeholderParts, ", ")
	query += `
        ON CONFLICT (main_keyword, naver_link) DO UPDATE SET
            original_link = EXCLUDED.original_link,
            title = EXCLUDED.title,
            description = EXCLUDED.description,
            publisher = EXCLUDED.publisher,
            publisher_domain = EXCLUDED.publisher_domain,
            published_at = COALESCE(EXCLUDED.published_at, articles.published_at),
            published_date = EXCLUDED.published_date,
            is_naver_news = EXCLUDED.is_naver_news,
            is_test = EXCLUDED.is_test,
            is_api_collection = EXCLUDED.is_api_collection`

	return query, values
}

// rowQuerier is satisfied by both the pool and a transaction.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// articleIDByLink resolves the row id for a collected article link. When
// several keywords collected the same link, the earliest row wins.
func articleIDByLink(ctx context.Context, q rowQuerier, naverLink string) (int64, error) {
	var id int64
	err := q.QueryRow(ctx,
		`SELECT id FROM articles WHERE naver_link = $1 ORDER BY id LIMIT 1`,
		naverLink).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s", ErrArticleNotFound, naverLink)
	}
	if err != nil {
		return 0, fmt.Errorf("[Store] article lookup failed: %w", err)
	}
	return id, nil
}
