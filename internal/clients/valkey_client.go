package clients

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/jaehwan-dev/naverflow/config"
)

// ValkeyClient tracks which records have already been published so repeat
// collection runs do not flood the channel with unchanged items. Marks
// expire after a day; the store's upserts keep correctness either way.
type ValkeyClient struct {
	Client valkey.Client
}

const PROCESSED_KEY_TTL_SECONDS = 86400

func NewValkeyClient(cfg config.ValkeyConfig) (*ValkeyClient, error) {
	opts := valkey.ClientOption{
		InitAddress:      []string{cfg.Address},
		Password:         cfg.Password,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}
	if cfg.UseTLS {
		opts.TLSConfig = &tls.Config{}
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to create client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if res := client.Do(ctx, client.B().Ping().Build()); res.Error() != nil {
		client.Close()
		return nil, fmt.Errorf("[ValkeyClient] failed to ping: %w", res.Error())
	}

	slog.Info("[ValkeyClient] Connected")
	return &ValkeyClient{Client: client}, nil
}

func (vc *ValkeyClient) Close() {
	vc.Client.Close()
}

// MarkPublished records that a (kind, key) pair has been handed to the channel.
func (vc *ValkeyClient) MarkPublished(ctx context.Context, kind, key string) error {
	setKey := publishedKey(kind)
	completed := []valkey.Completed{
		vc.Client.B().Sadd().Key(setKey).Member(key).Build(),
		vc.Client.B().Expire().Key(setKey).Seconds(PROCESSED_KEY_TTL_SECONDS).Build(),
	}

	for _, res := range vc.doMultiWithRetry(ctx, completed, 3) {
		if err := res.Error(); err != nil {
			return err
		}
	}
	return nil
}

// IsPublished reports whether a (kind, key) pair was already published
// within the TTL window. Errors degrade to false so a cache outage never
// blocks collection.
func (vc *ValkeyClient) IsPublished(ctx context.Context, kind, key string) bool {
	res := vc.doWithRetry(ctx, vc.Client.B().Sismember().Key(publishedKey(kind)).Member(key).Build(), 3)
	ok, err := res.AsBool()
	if err != nil {
		return false
	}
	return ok
}

func publishedKey(kind string) string {
	return "naverflow:published:" + strings.ToLower(kind)
}

func (vc *ValkeyClient) doMultiWithRetry(ctx context.Context, completed []valkey.Completed, retries int) []valkey.ValkeyResult {
	var results []valkey.ValkeyResult

	for i := 0; i < retries; i++ {
		results = vc.Client.DoMulti(ctx, completed...)
		hasErr := false
		for _, r := range results {
			if r.Error() != nil {
				hasErr = true
				slog.Warn("[ValkeyClient] DoMulti failed",
					slog.Int("attempt", i+1),
					slog.String("error", r.Error().Error()))
				break
			}
		}
		if !hasErr {
			break
		}
		time.Sleep(250 * time.Millisecond)
	}

	return results
}

func (vc *ValkeyClient) doWithRetry(ctx context.Context, completed valkey.Completed, retries int) valkey.ValkeyResult {
	var result valkey.ValkeyResult
	for i := 0; i < retries; i++ {
		result = vc.Client.Do(ctx, completed)
		if result.Error() == nil {
			break
		}
		slog.Warn("[ValkeyClient] Do failed",
			slog.Int("attempt", i+1),
			slog.String("error", result.Error().Error()))
		time.Sleep(250 * time.Millisecond)
	}
	return result
}
