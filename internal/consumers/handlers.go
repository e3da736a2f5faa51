package consumers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jaehwan-dev/naverflow/internal/clients"
	"github.com/jaehwan-dev/naverflow/internal/models"
	"github.com/jaehwan-dev/naverflow/internal/utils"
)

// handleMetadata upserts an article batch. Upserts make redelivered
// batches safe to apply again.
func (c *IngestConsumer) handleMetadata(ctx context.Context, envelope models.Envelope) error {
	var batch models.ArticleBatch
	if err := utils.DeserializeFromJSON(envelope.Payload, &batch); err != nil {
		return clients.Permanent(fmt.Errorf("decoding article batch: %w", err))
	}
	if len(batch.Articles) == 0 {
		return clients.Permanent(fmt.Errorf("article batch %s carries no articles", envelope.BatchID))
	}

	stored, err := c.store.StoreArticleBatch(ctx, batch)
	if err != nil {
		return err
	}

	slog.Info("[IngestConsumer] Article batch stored",
		slog.String("batch_id", envelope.BatchID),
		slog.String("keyword", batch.Keyword),
		slog.Int("articles", stored))
	return nil
}

// handleContent upserts one article body. The parent article row may not
// exist yet when content overtakes its metadata batch; that lookup failure
// stays transient so redelivery can land it later.
func (c *IngestConsumer) handleContent(ctx context.Context, envelope models.Envelope) error {
	var content models.Content
	if err := utils.DeserializeFromJSON(envelope.Payload, &content); err != nil {
		return clients.Permanent(fmt.Errorf("decoding article content: %w", err))
	}
	if content.ArticleURL == "" {
		return clients.Permanent(fmt.Errorf("content message %s missing article URL", envelope.BatchID))
	}

	if err := c.store.StoreContent(ctx, content); err != nil {
		return err
	}

	slog.Info("[IngestConsumer] Article content stored",
		slog.String("batch_id", envelope.BatchID),
		slog.String("article_url", content.ArticleURL))
	return nil
}

// handleComments upserts a comment batch with its optional statistics.
func (c *IngestConsumer) handleComments(ctx context.Context, envelope models.Envelope) error {
	var batch models.CommentBatch
	if err := utils.DeserializeFromJSON(envelope.Payload, &batch); err != nil {
		return clients.Permanent(fmt.Errorf("decoding comment batch: %w", err))
	}
	if batch.ArticleURL == "" {
		return clients.Permanent(fmt.Errorf("comment message %s missing article URL", envelope.BatchID))
	}

	if err := c.store.StoreCommentBatch(ctx, batch); err != nil {
		return err
	}

	slog.Info("[IngestConsumer] Comment batch stored",
		slog.String("batch_id", envelope.BatchID),
		slog.String("article_url", batch.ArticleURL),
		slog.Int("comments", len(batch.Comments)))
	return nil
}
