package db

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jaehwan-dev/naverflow/config"
)

//go:embed schema.sql
var schemaFS embed.FS

// ErrArticleNotFound signals that a content or comments message arrived
// before its article row. The consumer treats it as a transient store
// failure and requeues the message.
var ErrArticleNotFound = errors.New("article not found")

// Store is the relational persistence layer. Only the ingestion consumer
// writes to it; every message maps to exactly one transaction.
type Store struct {
	Pool *pgxpool.Pool
}

func NewStore(ctx context.Context, cfg config.PostgresConfig) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("[Store] unable to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("[Store] failed to ping PostgreSQL: %w", err)
	}

	slog.Info("[Store] Connected to PostgreSQL")
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

// EnsureSchema applies the embedded schema. Every statement is idempotent
// so repeated startups are safe.
func (s *Store) EnsureSchema(ctx context.Context) error {
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return err
	}

	for _, stmt := range strings.Split(string(schema), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("[Store] schema statement failed: %w", err)
		}
	}

	slog.Info("[Store] Schema ensured")
	return nil
}
