package kafka_client

import "time"

const (
	KAFKA_TOPIC_METADATA    = "news-metadata"   // article metadata batches per keyword
	KAFKA_TOPIC_CONTENT     = "news-content"    // full article bodies
	KAFKA_TOPIC_COMMENTS    = "news-comments"   // comment batches with optional stats
	KAFKA_TOPIC_DEAD_LETTER = "news-deadletter" // messages that exhausted redelivery
)

const (
	MAX_RETRIES      = 5
	RETRY_DELAY      = 2 * time.Second
	MAX_REDELIVERIES = 5
)

// IngestTopics are the destinations the ingestion consumer subscribes to,
// one serial consumer per topic.
func IngestTopics() []string {
	return []string{KAFKA_TOPIC_METADATA, KAFKA_TOPIC_CONTENT, KAFKA_TOPIC_COMMENTS}
}
