package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// DeadLetter is one message that exhausted redelivery. Archived records are
// an operational alarm condition: ops tooling reads them back for triage,
// the pipeline itself never does.
type DeadLetter struct {
	MessageID    string `dynamodbav:"message_id"`
	Topic        string `dynamodbav:"topic"`
	Kind         string `dynamodbav:"kind"`
	Reason       string `dynamodbav:"reason"`
	Redeliveries int    `dynamodbav:"redeliveries"`
	Payload      string `dynamodbav:"payload"`
	FailedAt     string `dynamodbav:"failed_at"`
	ExpiresAt    int64  `dynamodbav:"expires_at"`
}

// DeadLetterArchive persists exhausted messages to DynamoDB with a 30 day TTL.
type DeadLetterArchive struct {
	client *dynamodb.Client
	table  string
}

func NewDeadLetterArchive(client *dynamodb.Client, table string) *DeadLetterArchive {
	return &DeadLetterArchive{client: client, table: table}
}

func (a *DeadLetterArchive) Archive(ctx context.Context, letter DeadLetter) error {
	letter.ExpiresAt = time.Now().Add(30 * 24 * time.Hour).Unix()

	item, err := attributevalue.MarshalMap(letter)
	if err != nil {
		return fmt.Errorf("[DeadLetterArchive] failed to marshal record: %w", err)
	}

	_, err = a.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(a.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("[DeadLetterArchive] failed to write record: %w", err)
	}

	slog.Warn("[DeadLetterArchive] Message archived",
		slog.String("message_id", letter.MessageID),
		slog.String("kind", letter.Kind),
		slog.String("reason", letter.Reason))
	return nil
}
