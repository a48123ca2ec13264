package dedup

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

const createCrawledURLs = `
	CREATE TABLE IF NOT EXISTS crawled_urls (
		url        TEXT PRIMARY KEY,
		crawled_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`

// PostgresStore keeps the crawled-URL set in Postgres, for deployments where
// several category crawls share state across hosts.
type PostgresStore struct {
	mu   sync.RWMutex
	urls map[string]struct{}
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, createCrawledURLs); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure crawled_urls table: %w", err)
	}

	return &PostgresStore{
		urls: make(map[string]struct{}),
		pool: pool,
	}, nil
}

func (s *PostgresStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.pool.Query(ctx, `SELECT url FROM crawled_urls`)
	if err != nil {
		return fmt.Errorf("failed to load crawled urls: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return fmt.Errorf("failed to scan crawled url: %w", err)
		}
		s.urls[url] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate crawled urls: %w", err)
	}

	return nil
}

func (s *PostgresStore) Contains(url string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.urls[url]
	return exists
}

func (s *PostgresStore) Record(ctx context.Context, url string) error {
	query := `INSERT INTO crawled_urls (url) VALUES ($1) ON CONFLICT (url) DO NOTHING`

	if _, err := s.pool.Exec(ctx, query, url); err != nil {
		return fmt.Errorf("failed to record crawled url: %w", err)
	}

	s.mu.Lock()
	s.urls[url] = struct{}{}
	s.mu.Unlock()

	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
