// Package store reads the persisted flight price history.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrUnavailable = errors.New("price history store unavailable")

// NewPostgresPool creates and verifies a pgxpool connection pool.
func NewPostgresPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	return pool, nil
}

const recentPricesQuery = `
SELECT price
FROM flight_prices
WHERE origin_code = $1
  AND destination_code = $2
  AND recorded_at >= $3`

// PriceHistory is the Postgres-backed price history. A nil pool makes it
// unavailable rather than failing at startup.
type PriceHistory struct {
	pool *pgxpool.Pool
}

func NewPriceHistory(pool *pgxpool.Pool) *PriceHistory {
	return &PriceHistory{pool: pool}
}

func (p *PriceHistory) Available() bool {
	return p != nil && p.pool != nil
}

func (p *PriceHistory) RecentPrices(ctx context.Context, origin, destination string, since time.Time) ([]float64, error) {
	if !p.Available() {
		return nil, ErrUnavailable
	}

	rows, err := p.pool.Query(ctx, recentPricesQuery, origin, destination, since)
	if err != nil {
		return nil, fmt.Errorf("query recent prices: %w", err)
	}

	prices, err := pgx.CollectRows(rows, pgx.RowTo[float64])
	if err != nil {
		return nil, fmt.Errorf("scan recent prices: %w", err)
	}
	return prices, nil
}

func (p *PriceHistory) Close() {
	if p.Available() {
		p.pool.Close()
	}
}
