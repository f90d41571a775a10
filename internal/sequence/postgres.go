package sequence

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jayasurya0007/trades-backend/internal/domain"
)

// PostgresSequence keeps the counter in a single-row table and advances it
// with an atomic UPDATE ... RETURNING, so concurrent processes sharing the
// database never mint the same identifier.
type PostgresSequence struct {
	pool *pgxpool.Pool
}

// NewPostgresSequence connects to the database at dsn, ensures the counter
// table and its single row exist, and returns the sequence.
func NewPostgresSequence(ctx context.Context, dsn string) (*PostgresSequence, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("sequence: connect postgres: %w: %v", domain.ErrStoreUnavailable, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("sequence: ping postgres: %w: %v", domain.ErrStoreUnavailable, err)
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS trade_sequence (
			name  TEXT PRIMARY KEY,
			value BIGINT NOT NULL
		);
		INSERT INTO trade_sequence (name, value)
		VALUES ('trade_id', 0)
		ON CONFLICT (name) DO NOTHING;`
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("sequence: init counter table: %w: %v", domain.ErrStoreUnavailable, err)
	}

	return &PostgresSequence{pool: pool}, nil
}

// Next atomically increments the counter row and returns the new value.
func (s *PostgresSequence) Next(ctx context.Context) (int64, error) {
	const query = `
		UPDATE trade_sequence
		SET value = value + 1
		WHERE name = 'trade_id'
		RETURNING value`

	var value int64
	if err := s.pool.QueryRow(ctx, query).Scan(&value); err != nil {
		return 0, fmt.Errorf("sequence: increment counter: %w: %v", domain.ErrStoreUnavailable, err)
	}
	return value, nil
}

// Close shuts down the connection pool.
func (s *PostgresSequence) Close() error {
	s.pool.Close()
	return nil
}

// Compile-time interface check.
var _ domain.Sequence = (*PostgresSequence)(nil)
