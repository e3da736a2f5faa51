package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jaehwan-dev/naverflow/internal/models"
)

// StoreContent upserts the body of one article. The parent article must
// already exist; ErrArticleNotFound rides up otherwise so the consumer can
// requeue. The 1:1 constraint means re-collection overwrites the old body.
func (s *Store) StoreContent(ctx context.Context, content models.Content) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("[Store] failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	articleID, err := articleIDByLink(ctx, tx, content.ArticleURL)
	if err != nil {
		return err
	}

	subheadings, err := json.Marshal(content.Subheadings)
	if err != nil {
		return fmt.Errorf("[Store] failed to encode subheadings: %w", err)
	}
	images, err := json.Marshal(content.Images)
	if err != nil {
		return fmt.Errorf("[Store] failed to encode images: %w", err)
	}

	_, err = tx.Exec(ctx, `
        INSERT INTO contents
            (article_id, title, subheadings, content, reporter, media,
             published_at, modified_at, category, images, collected_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        ON CONFLICT (article_id) DO UPDATE SET
            title = EXCLUDED.title,
            subheadings = EXCLUDED.subheadings,
            content = EXCLUDED.content,
            reporter = EXCLUDED.reporter,
            media = EXCLUDED.media,
            published_at = EXCLUDED.published_at,
            modified_at = EXCLUDED.modified_at,
            category = EXCLUDED.category,
            images = EXCLUDED.images,
            collected_at = EXCLUDED.collected_at`,
		articleID, content.Title, subheadings, content.Body, content.Reporter,
		content.Media, content.PublishedAt, content.ModifiedAt, content.Category,
		images, content.CollectedAt)
	if err != nil {
		return fmt.Errorf("[Store] failed to upsert content: %w", err)
	}

	// Backfill the article timestamp when metadata collection only had a
	// coarse date.
	if content.PublishedAt != nil {
		_, err = tx.Exec(ctx,
			`UPDATE articles SET published_at = $1 WHERE id = $2 AND published_at IS NULL`,
			content.PublishedAt, articleID)
		if err != nil {
			return fmt.Errorf("[Store] failed to backfill article timestamp: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("[Store] failed to commit content: %w", err)
	}
	return nil
}
