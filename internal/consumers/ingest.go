package consumers

import (
	"context"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/google/uuid"

	"github.com/jaehwan-dev/naverflow/internal/clients"
	"github.com/jaehwan-dev/naverflow/internal/clients/kafka_client"
	"github.com/jaehwan-dev/naverflow/internal/db"
	"github.com/jaehwan-dev/naverflow/internal/models"
	"github.com/jaehwan-dev/naverflow/internal/utils"
)

// Store is the slice of the relational store the ingestion consumers use.
type Store interface {
	StoreArticleBatch(ctx context.Context, batch models.ArticleBatch) (int, error)
	StoreContent(ctx context.Context, content models.Content) error
	StoreCommentBatch(ctx context.Context, batch models.CommentBatch) error
}

type republisher interface {
	Publish(ctx context.Context, topic string, key string, value any) error
}

type deadLetterArchiver interface {
	Archive(ctx context.Context, letter db.DeadLetter) error
}

// IngestConsumer drains the channel topics into the relational store.
// Store failures are retried in place; a message that keeps failing goes
// back on its own topic with a bumped redelivery count, and one that
// exhausts redeliveries is parked on the dead-letter topic and archived.
type IngestConsumer struct {
	store      Store
	producer   republisher
	archive    deadLetterArchiver
	maxRetries int
	retryDelay time.Duration
}

func NewIngestConsumer(store Store, producer republisher, archive deadLetterArchiver) *IngestConsumer {
	return &IngestConsumer{
		store:      store,
		producer:   producer,
		archive:    archive,
		maxRetries: kafka_client.MAX_RETRIES,
		retryDelay: kafka_client.RETRY_DELAY,
	}
}

// Register binds one consumer loop per channel topic.
func (c *IngestConsumer) Register() {
	for _, topic := range kafka_client.IngestTopics() {
		kafka_client.RegisterConsumer(topic, c.consumeTopic(topic))
	}
}

type envelopeHandler func(ctx context.Context, envelope models.Envelope) error

// consumeTopic builds the serial loop for one topic. Every message is
// committed once its outcome is settled, whether that outcome is a store
// write, a redelivery, or a dead-letter park.
func (c *IngestConsumer) consumeTopic(topic string) kafka_client.ConsumerFunc {
	return func(ctx context.Context, consumer *kafka.Consumer) {
		iterator := kafka_client.NewKafkaMessageIterator(ctx, consumer)
		committer := kafka_client.NewCommitHandler(ctx, consumer)

		slog.Info("[IngestConsumer] Listening for messages...",
			slog.String("topic", topic))

		for {
			select {
			case <-ctx.Done():
				slog.Warn("[IngestConsumer] Stopping consumer...",
					slog.String("topic", topic))
				return
			default:
				msg, err := iterator.Next()
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					utils.HandleConsumerError(err)
					continue
				}

				c.processMessage(ctx, topic, msg)

				if err := committer.Commit(msg); err != nil {
					slog.Warn("[IngestConsumer] Failed to commit offset",
						slog.String("topic", topic),
						slog.String("error", err.Error()))
				}
			}
		}
	}
}

func (c *IngestConsumer) processMessage(ctx context.Context, topic string, msg *kafka.Message) {
	var envelope models.Envelope
	if err := utils.DeserializeFromJSON(msg.Value, &envelope); err != nil {
		slog.Warn("[IngestConsumer] Dropping malformed message",
			slog.String("topic", topic),
			slog.String("error", err.Error()))
		return
	}
	if err := envelope.Validate(); err != nil {
		slog.Warn("[IngestConsumer] Dropping invalid envelope",
			slog.String("topic", topic),
			slog.String("error", err.Error()))
		return
	}

	err := c.handleWithRetries(ctx, envelope, topicHandlerName(topic))
	if err == nil {
		return
	}

	if clients.IsPermanent(err) {
		c.deadLetter(ctx, topic, msg, envelope, err)
		return
	}

	if envelope.Redeliveries >= kafka_client.MAX_REDELIVERIES {
		c.deadLetter(ctx, topic, msg, envelope, err)
		return
	}
	c.redeliver(ctx, topic, msg, envelope, err)
}

// handleWithRetries runs the per-kind handler with fixed-delay retries.
// Permanent failures and context cancellation stop the attempts early.
func (c *IngestConsumer) handleWithRetries(ctx context.Context, envelope models.Envelope, handlerName string) error {
	handler := c.handlerFor(envelope.Kind)

	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		lastErr = handler(ctx, envelope)
		if lastErr == nil {
			return nil
		}
		if clients.IsPermanent(lastErr) || ctx.Err() != nil {
			return lastErr
		}

		slog.Warn("[IngestConsumer] Store write failed, retrying...",
			slog.String("handler", handlerName),
			slog.String("batch_id", envelope.BatchID),
			slog.Int("attempt", i+1),
			slog.Int("max_retries", c.maxRetries),
			slog.String("error", lastErr.Error()))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.retryDelay):
		}
	}
	return lastErr
}

func (c *IngestConsumer) handlerFor(kind models.MessageKind) envelopeHandler {
	switch kind {
	case models.KindMetadata:
		return c.handleMetadata
	case models.KindContent:
		return c.handleContent
	default:
		return c.handleComments
	}
}

// redeliver puts the message back on its own topic with a bumped count so
// a later attempt sees the parent rows that were missing this time.
func (c *IngestConsumer) redeliver(ctx context.Context, topic string, msg *kafka.Message, envelope models.Envelope, cause error) {
	envelope.Redeliveries++

	slog.Warn("[IngestConsumer] Redelivering message",
		slog.String("topic", topic),
		slog.String("batch_id", envelope.BatchID),
		slog.Int("redeliveries", envelope.Redeliveries),
		slog.String("cause", cause.Error()))

	if err := c.producer.Publish(ctx, topic, string(msg.Key), envelope); err != nil {
		slog.Error("[IngestConsumer] Redelivery failed, parking message",
			slog.String("topic", topic),
			slog.String("batch_id", envelope.BatchID),
			slog.String("error", err.Error()))
		c.deadLetter(ctx, topic, msg, envelope, cause)
	}
}

// deadLetter parks the message on the dead-letter topic and archives it.
// Both writes are best effort; the message is already logged in full.
func (c *IngestConsumer) deadLetter(ctx context.Context, topic string, msg *kafka.Message, envelope models.Envelope, cause error) {
	slog.Error("[IngestConsumer] Message exhausted delivery, dead-lettering",
		slog.String("topic", topic),
		slog.String("batch_id", envelope.BatchID),
		slog.Int("redeliveries", envelope.Redeliveries),
		slog.String("cause", cause.Error()))

	if err := c.producer.Publish(ctx, kafka_client.KAFKA_TOPIC_DEAD_LETTER, string(msg.Key), envelope); err != nil {
		slog.Error("[IngestConsumer] Failed to publish to dead-letter topic",
			slog.String("batch_id", envelope.BatchID),
			slog.String("error", err.Error()))
	}

	if c.archive == nil {
		return
	}
	letter := db.DeadLetter{
		MessageID:    uuid.NewString(),
		Topic:        topic,
		Kind:         string(envelope.Kind),
		Reason:       cause.Error(),
		Redeliveries: envelope.Redeliveries,
		Payload:      string(msg.Value),
		FailedAt:     models.NowKST().Format(time.RFC3339),
	}
	if err := c.archive.Archive(ctx, letter); err != nil {
		slog.Error("[IngestConsumer] Failed to archive dead letter",
			slog.String("batch_id", envelope.BatchID),
			slog.String("error", err.Error()))
	}
}

func topicHandlerName(topic string) string {
	switch topic {
	case kafka_client.KAFKA_TOPIC_METADATA:
		return "metadata"
	case kafka_client.KAFKA_TOPIC_CONTENT:
		return "content"
	default:
		return "comments"
	}
}
