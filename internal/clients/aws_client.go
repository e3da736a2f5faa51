package clients

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/jaehwan-dev/naverflow/config"
)

// NewDynamoDBClient builds the client backing the dead-letter archive.
// Endpoint overrides support a local DynamoDB during development.
func NewDynamoDBClient(ctx context.Context, cfg config.DeadLetterConfig) (*dynamodb.Client, error) {
	slog.Info("[AWSClient] Initializing AWS config...", slog.String("region", cfg.Region))

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, err
	}

	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}
