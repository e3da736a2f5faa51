package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jaehwan-dev/naverflow/internal/models"
)

// StoreCommentBatch persists one comments message atomically: the comment
// rows, the optional stats block and the article timestamp backfill either
// all commit or none do. Redelivered batches land on the
// (article_id, comment_no) constraint and update in place.
func (s *Store) StoreCommentBatch(ctx context.Context, batch models.CommentBatch) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("[Store] failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	articleID, err := articleIDByLink(ctx, tx, batch.ArticleURL)
	if err != nil {
		return err
	}

	if len(batch.Comments) > 0 {
		query, values := buildCommentUpsert(articleID, batch.Comments)
		if _, err := tx.Exec(ctx, query, values...); err != nil {
			return fmt.Errorf("[Store] failed to upsert comments: %w", err)
		}
	}

	if batch.Stats != nil {
		if err := upsertCommentStats(ctx, tx, articleID, batch.TotalCount, batch.Stats); err != nil {
			return err
		}
	}

	if batch.PublishedAt != nil {
		_, err = tx.Exec(ctx,
			`UPDATE articles SET published_at = $1 WHERE id = $2 AND published_at IS NULL`,
			batch.PublishedAt, articleID)
		if err != nil {
			return fmt.Errorf("[Store] failed to backfill article timestamp: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("[Store] failed to commit comment batch: %w", err)
	}
	return nil
}

func buildCommentUpsert(articleID int64, comments []models.Comment) (string, []any) {
	const fieldCount = 14

	query := `INSERT INTO comments
        (article_id, comment_no, parent_comment_no, content, username,
         profile_url, commented_at, likes, dislikes, reply_count,
         is_reply, is_deleted, delete_type, collected_at) VALUES `

	values := make([]any, 0, len(comments)*fieldCount)
	placeholderParts := make([]string, 0, len(comments))

	for i, c := range comments {
		offset := i * fieldCount
		nums := make([]string, fieldCount)
		for j := range nums {
			nums[j] = fmt.Sprintf("$%d", offset+j+1)
		}
		placeholderParts = append(placeholderParts, "("+strings.Join(nums, ", ")+")")

		values = append(values,
			articleID, c.CommentNo, nullable(c.ParentCommentNo), c.Content,
			c.Username, nullable(c.ProfileURL), c.Timestamp, c.Likes, c.Dislikes,
			c.ReplyCount, c.IsReply, c.IsDeleted, nullable(c.DeleteType), c.CollectedAt)
	}

	query += strings.Join(placeholderParts, ", ")
	query += `
        ON CONFLICT (article_id, comment_no) DO UPDATE SET
            content = EXCLUDED.content,
            likes = EXCLUDED.likes,
            dislikes = EXCLUDED.dislikes,
            reply_count = EXCLUDED.reply_count,
            is_deleted = EXCLUDED.is_deleted,
            delete_type = EXCLUDED.delete_type`

	return query, values
}

func upsertCommentStats(ctx context.Context, tx pgx.Tx, articleID int64, totalCount int, stats *models.CommentStats) error {
	_, err := tx.Exec(ctx, `
        INSERT INTO comment_stats
            (article_id, total_count, current_count, user_deleted_count,
             admin_deleted_count, male_ratio, female_ratio,
             age_10s, age_20s, age_30s, age_40s, age_50s, age_60s_above,
             collected_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
        ON CONFLICT (article_id) DO UPDATE SET
            total_count = EXCLUDED.total_count,
            current_count = EXCLUDED.current_count,
            user_deleted_count = EXCLUDED.user_deleted_count,
            admin_deleted_count = EXCLUDED.admin_deleted_count,
            male_ratio = EXCLUDED.male_ratio,
            female_ratio = EXCLUDED.female_ratio,
            age_10s = EXCLUDED.age_10s,
            age_20s = EXCLUDED.age_20s,
            age_30s = EXCLUDED.age_30s,
            age_40s = EXCLUDED.age_40s,
            age_50s = EXCLUDED.age_50s,
            age_60s_above = EXCLUDED.age_60s_above,
            collected_at = EXCLUDED.collected_at`,
		articleID, totalCount, stats.CurrentCount, stats.UserDeletedCount,
		stats.AdminDeletedCount, stats.GenderRatio.Male, stats.GenderRatio.Female,
		stats.AgeDistribution["10s"], stats.AgeDistribution["20s"],
		stats.AgeDistribution["30s"], stats.AgeDistribution["40s"],
		stats.AgeDistribution["50s"], stats.AgeDistribution["60s_above"],
		stats.CollectedAt)
	if err != nil {
		return fmt.Errorf("[Store] failed to upsert comment stats: %w", err)
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
