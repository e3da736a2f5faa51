package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jaehwan-dev/naverflow/config"
	"github.com/jaehwan-dev/naverflow/internal/clients"
	"github.com/jaehwan-dev/naverflow/internal/clients/kafka_client"
	"github.com/jaehwan-dev/naverflow/internal/collectors"
	"github.com/jaehwan-dev/naverflow/internal/logging"
	"github.com/jaehwan-dev/naverflow/internal/models"
	"github.com/jaehwan-dev/naverflow/internal/monitoring"
	"github.com/jaehwan-dev/naverflow/internal/publisher"
)

const (
	dateFlagLayout   = "2006-01-02"
	gridWaitAttempts = 5
)

// pipeline bundles the clients every collect subcommand needs.
type pipeline struct {
	cfg       config.Config
	browser   *clients.BrowserClient
	publisher *publisher.Publisher
	producer  *kafka_client.Producer
	cache     *clients.ValkeyClient
}

func (p *pipeline) close() {
	if p.producer != nil {
		p.producer.Close()
	}
	if p.cache != nil {
		p.cache.Close()
	}
}

// newPipeline connects the channel and cache. A cache outage is survivable;
// a channel outage is not.
func newPipeline(cfg config.Config) (*pipeline, error) {
	producer, err := kafka_client.NewProducer(cfg.Kafka)
	if err != nil {
		return nil, err
	}

	cache, err := clients.NewValkeyClient(cfg.Valkey)
	if err != nil {
		slog.Warn("[Collect] Publish cache unavailable, continuing without it",
			slog.String("error", err.Error()))
		cache = nil
	}

	return &pipeline{
		cfg:       cfg,
		browser:   clients.NewBrowserClient(cfg.Browser),
		publisher: publisher.New(producer, cache),
		producer:  producer,
		cache:     cache,
	}, nil
}

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	logging.InitLogger()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root := &cobra.Command{
		Use:           "collect",
		Short:         "Collect news records and publish them to the ingestion channel",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(metadataCommand(), contentCommand(), commentsCommand())

	if err := root.ExecuteContext(ctx); err != nil {
		slog.Error("[Collect] Command failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func metadataCommand() *cobra.Command {
	var (
		method      string
		keyword     string
		startDate   string
		endDate     string
		maxArticles int
		isTest      bool
	)

	cmd := &cobra.Command{
		Use:   "metadata",
		Short: "Collect article metadata for a keyword and publish the batch",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := collectors.MetadataRequest{
				Method:      method,
				Keyword:     keyword,
				MaxArticles: maxArticles,
				IsTest:      isTest,
			}

			var err error
			if req.StartDate, err = parseDateFlag(startDate); err != nil {
				return fmt.Errorf("invalid --start-date: %w", err)
			}
			if req.EndDate, err = parseDateFlag(endDate); err != nil {
				return fmt.Errorf("invalid --end-date: %w", err)
			}

			cfg := config.Load()
			pipe, err := newPipeline(cfg)
			if err != nil {
				return err
			}
			defer pipe.close()

			ctx := cmd.Context()
			if method == collectors.MethodSearch {
				if err := monitoring.WaitForGrid(ctx, pipe.browser, gridWaitAttempts); err != nil {
					return err
				}
				jobCtx, cancelJob := context.WithCancel(ctx)
				defer cancelJob()
				go monitoring.MonitorGridHealth(jobCtx, pipe.browser, cancelJob)
				ctx = jobCtx
			}
			collector := collectors.NewMetadataCollector(clients.NewNaverAPIClient(cfg.Naver), pipe.browser, cfg)

			started := time.Now()
			batch, err := collector.Collect(ctx, req)
			if err != nil {
				return err
			}

			if err := pipe.publisher.PublishMetadata(ctx, batch); err != nil {
				return err
			}

			slog.Info("[Collect] Metadata collection finished",
				slog.String("keyword", keyword),
				slog.String("method", batch.Method),
				slog.Int("articles", len(batch.Articles)),
				slog.Duration("elapsed", time.Since(started).Round(time.Millisecond)))
			return nil
		},
	}

	cmd.Flags().StringVar(&method, "method", collectors.MethodAPI, "collection method: api or search")
	cmd.Flags().StringVar(&keyword, "keyword", "", "search keyword (required)")
	cmd.Flags().StringVar(&startDate, "start-date", "", "earliest publish date, YYYY-MM-DD (search method)")
	cmd.Flags().StringVar(&endDate, "end-date", "", "latest publish date, YYYY-MM-DD (search method)")
	cmd.Flags().IntVar(&maxArticles, "max-articles", 100, "stop after this many articles")
	cmd.Flags().BoolVar(&isTest, "test", false, "tag collected articles as test data")
	_ = cmd.MarkFlagRequired("keyword")

	return cmd
}

func contentCommand() *cobra.Command {
	var articleURL string

	cmd := &cobra.Command{
		Use:   "content",
		Short: "Collect one article's full content and publish it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			pipe, err := newPipeline(cfg)
			if err != nil {
				return err
			}
			defer pipe.close()

			ctx := cmd.Context()
			if err := monitoring.WaitForGrid(ctx, pipe.browser, gridWaitAttempts); err != nil {
				return err
			}
			ctx, cancelJob := context.WithCancel(ctx)
			defer cancelJob()
			go monitoring.MonitorGridHealth(ctx, pipe.browser, cancelJob)

			content, err := collectors.NewContentCollector(pipe.browser, cfg).Collect(ctx, articleURL)
			if err != nil {
				return err
			}

			if err := pipe.publisher.PublishContent(ctx, content); err != nil {
				return err
			}

			slog.Info("[Collect] Content collection finished",
				slog.String("article_url", articleURL),
				slog.String("title", content.Title),
				slog.Int("images", len(content.Images)))
			return nil
		},
	}

	cmd.Flags().StringVar(&articleURL, "article-url", "", "hosted article URL (required)")
	_ = cmd.MarkFlagRequired("article-url")

	return cmd
}

func commentsCommand() *cobra.Command {
	var (
		articleURL string
		noStats    bool
	)

	cmd := &cobra.Command{
		Use:   "comments",
		Short: "Collect one article's comments and publish the batch",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			pipe, err := newPipeline(cfg)
			if err != nil {
				return err
			}
			defer pipe.close()

			ctx := cmd.Context()
			if err := monitoring.WaitForGrid(ctx, pipe.browser, gridWaitAttempts); err != nil {
				return err
			}
			ctx, cancelJob := context.WithCancel(ctx)
			defer cancelJob()
			go monitoring.MonitorGridHealth(ctx, pipe.browser, cancelJob)

			batch, err := collectors.NewCommentCollector(pipe.browser, cfg).Collect(ctx, articleURL, !noStats)
			if err != nil {
				return err
			}

			if err := pipe.publisher.PublishComments(ctx, batch); err != nil {
				return err
			}

			slog.Info("[Collect] Comment collection finished",
				slog.String("article_url", articleURL),
				slog.Int("total_count", batch.TotalCount),
				slog.Int("comments", len(batch.Comments)))
			return nil
		},
	}

	cmd.Flags().StringVar(&articleURL, "article-url", "", "hosted article URL (required)")
	cmd.Flags().BoolVar(&noStats, "no-stats", false, "skip the comment statistics charts")

	_ = cmd.MarkFlagRequired("article-url")

	return cmd
}

func parseDateFlag(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(dateFlagLayout, value, models.KST)
}
