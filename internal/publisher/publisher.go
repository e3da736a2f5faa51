package publisher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jaehwan-dev/naverflow/internal/clients"
	"github.com/jaehwan-dev/naverflow/internal/clients/kafka_client"
	"github.com/jaehwan-dev/naverflow/internal/models"
	"github.com/jaehwan-dev/naverflow/internal/utils"
)

// Publisher wraps collected records in envelopes and hands them to the
// message channel. A cache of recently published keys keeps repeat
// collection runs from re-sending unchanged records; the ingestion side's
// upserts make any cache miss harmless.
type Publisher struct {
	producer *kafka_client.Producer
	cache    *clients.ValkeyClient
}

func New(producer *kafka_client.Producer, cache *clients.ValkeyClient) *Publisher {
	return &Publisher{producer: producer, cache: cache}
}

// PublishMetadata sends an article batch. The whole batch travels as one
// message keyed by keyword, so all articles for a keyword land on the same
// partition in collection order.
func (p *Publisher) PublishMetadata(ctx context.Context, batch models.ArticleBatch) error {
	if len(batch.Articles) == 0 {
		slog.Info("[Publisher] Skipping empty article batch",
			slog.String("keyword", batch.Keyword))
		return nil
	}

	return p.publish(ctx, kafka_client.KAFKA_TOPIC_METADATA, models.KindMetadata, batch.Keyword, batch)
}

// PublishContent sends one article body, keyed and deduplicated by the
// article URL.
func (p *Publisher) PublishContent(ctx context.Context, content *models.Content) error {
	key := content.ArticleURL
	if p.cache != nil && p.cache.IsPublished(ctx, string(models.KindContent), key) {
		slog.Info("[Publisher] Content already published recently, skipping",
			slog.String("article_url", key))
		return nil
	}

	if err := p.publish(ctx, kafka_client.KAFKA_TOPIC_CONTENT, models.KindContent, key, content); err != nil {
		return err
	}

	p.markPublished(ctx, models.KindContent, key)
	return nil
}

// PublishComments sends a comment batch, keyed and deduplicated by the
// article URL.
func (p *Publisher) PublishComments(ctx context.Context, batch *models.CommentBatch) error {
	key := batch.ArticleURL
	if p.cache != nil && p.cache.IsPublished(ctx, string(models.KindComments), key) {
		slog.Info("[Publisher] Comments already published recently, skipping",
			slog.String("article_url", key))
		return nil
	}

	if err := p.publish(ctx, kafka_client.KAFKA_TOPIC_COMMENTS, models.KindComments, key, batch); err != nil {
		return err
	}

	p.markPublished(ctx, models.KindComments, key)
	return nil
}

func (p *Publisher) publish(ctx context.Context, topic string, kind models.MessageKind, key string, payload any) error {
	raw, err := utils.SerializeToJSON(payload)
	if err != nil {
		return fmt.Errorf("[Publisher] failed to serialize %s payload: %w", kind, err)
	}

	envelope := models.Envelope{
		Kind:    kind,
		BatchID: uuid.NewString(),
		Payload: raw,
	}

	if err := p.producer.Publish(ctx, topic, key, envelope); err != nil {
		return fmt.Errorf("[Publisher] failed to publish %s message: %w", kind, err)
	}

	slog.Info("[Publisher] Message published",
		slog.String("topic", topic),
		slog.String("batch_id", envelope.BatchID),
		slog.String("key", key))
	return nil
}

func (p *Publisher) markPublished(ctx context.Context, kind models.MessageKind, key string) {
	if p.cache == nil {
		return
	}
	if err := p.cache.MarkPublished(ctx, string(kind), key); err != nil {
		slog.Warn("[Publisher] Failed to mark key as published",
			slog.String("kind", string(kind)),
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
}
