package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jaehwan-dev/naverflow/config"
	"github.com/jaehwan-dev/naverflow/internal/clients"
	"github.com/jaehwan-dev/naverflow/internal/clients/kafka_client"
	"github.com/jaehwan-dev/naverflow/internal/consumers"
	"github.com/jaehwan-dev/naverflow/internal/db"
	"github.com/jaehwan-dev/naverflow/internal/logging"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	logging.InitLogger()

	cfg := config.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := db.NewStore(ctx, cfg.Postgres)
	if err != nil {
		slog.Error("[Main] Failed to connect to Postgres",
			slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		slog.Error("[Main] Failed to ensure schema",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	var producer *kafka_client.Producer
	for {
		producer, err = kafka_client.NewProducer(cfg.Kafka)
		if err == nil {
			break
		}
		slog.Warn("Kafka init failed, retrying...", slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
	defer producer.Close()

	ingest := consumers.NewIngestConsumer(store, producer, nil)
	if dynamoClient, err := clients.NewDynamoDBClient(ctx, cfg.DeadLetter); err != nil {
		slog.Warn("[Main] Dead-letter archive unavailable, continuing without it",
			slog.String("error", err.Error()))
	} else {
		ingest = consumers.NewIngestConsumer(store, producer, db.NewDeadLetterArchive(dynamoClient, cfg.DeadLetter.Table))
	}
	ingest.Register()

	if err := kafka_client.StartConsumers(ctx, cfg.Kafka); err != nil {
		slog.Error("[Main] Failed to start consumers",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("[Main] Shutdown complete")
}
