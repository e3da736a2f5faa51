package kafka_client

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/confluentinc/confluent-kafka-go/kafka"

	"github.com/jaehwan-dev/naverflow/config"
)

// ConsumerFunc handles every message of one topic; it returns when ctx is done.
type ConsumerFunc func(context.Context, *kafka.Consumer)

var consumerRegistry = make(map[string]ConsumerFunc)

// RegisterConsumer binds a handler to a topic. Registration happens at
// startup, before StartConsumers.
func RegisterConsumer(topic string, consumerFunc ConsumerFunc) {
	consumerRegistry[topic] = consumerFunc
}

// StartConsumers runs one consumer goroutine per registered topic. Each
// topic is processed serially so per-article mutations stay ordered; the
// topics themselves run concurrently. Blocks until every handler returns.
func StartConsumers(ctx context.Context, cfg config.KafkaConfig) error {
	if len(consumerRegistry) == 0 {
		return fmt.Errorf("[ConsumerFactory] no consumers registered")
	}

	var wg sync.WaitGroup
	for topic, consumerFunc := range consumerRegistry {
		consumer, err := NewConsumer(cfg, topic)
		if err != nil {
			return fmt.Errorf("[ConsumerFactory] failed to initialize consumer for %s: %w", topic, err)
		}

		wg.Add(1)
		go func(topic string, consumer *kafka.Consumer, consumerFunc ConsumerFunc) {
			defer wg.Done()
			defer consumer.Close()

			slog.Info("[ConsumerFactory] Starting consumer for topic...", slog.String("topic", topic))
			consumerFunc(ctx, consumer)
		}(topic, consumer, consumerFunc)
	}

	wg.Wait()
	return nil
}
