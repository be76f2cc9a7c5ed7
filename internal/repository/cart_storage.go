package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	loadQuery = `SELECT value FROM cart_storage WHERE key = $1`

	upsertQuery = `
INSERT INTO cart_storage (key, value)
VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE
    SET value      = EXCLUDED.value,
        revision   = cart_storage.revision + 1,
        updated_at = NOW()
RETURNING revision`

	appendHistoryQuery = `INSERT INTO cart_storage_history (key, revision, value) VALUES ($1, $2, $3)`

	historyQuery = `
SELECT revision, value, created_at
FROM cart_storage_history
WHERE key = $1
ORDER BY revision DESC
LIMIT $2`
)

// Revision is one saved version of a storage slot.
type Revision struct {
	Number    int64
	Value     []byte
	CreatedAt time.Time
}

type PostgresCartStorage struct {
	pool *pgxpool.Pool
	key  string
}

func NewPostgresCartStorage(pool *pgxpool.Pool, key string) (*PostgresCartStorage, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	if key == "" {
		return nil, fmt.Errorf("key is empty")
	}

	return &PostgresCartStorage{
		pool: pool,
		key:  key,
	}, nil
}

func (s *PostgresCartStorage) Load(ctx context.Context) ([]byte, bool, error) {
	var value []byte

	err := s.pool.QueryRow(ctx, loadQuery, s.key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("pool.QueryRow: %w", err)
	}

	return value, true, nil
}

// Save overwrites the slot and records the new revision in the history table.
func (s *PostgresCartStorage) Save(ctx context.Context, blob []byte) error {
	if blob == nil {
		return fmt.Errorf("blob is nil")
	}

	_, err := withTx(ctx, s.pool, func(tx pgx.Tx) (int64, error) {
		var revision int64
		if err := tx.QueryRow(ctx, upsertQuery, s.key, blob).Scan(&revision); err != nil {
			return 0, fmt.Errorf("tx.QueryRow: %w", err)
		}

		if _, err := tx.Exec(ctx, appendHistoryQuery, s.key, revision, blob); err != nil {
			return 0, fmt.Errorf("tx.Exec: %w", err)
		}

		return revision, nil
	})
	if err != nil {
		return fmt.Errorf("withTx: %w", err)
	}

	return nil
}

// History returns up to limit most recent revisions, newest first.
func (s *PostgresCartStorage) History(ctx context.Context, limit int) ([]Revision, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit[%d] is not positive", limit)
	}

	rows, err := s.pool.Query(ctx, historyQuery, s.key, limit)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}

	revisions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Revision, error) {
		var r Revision
		err := row.Scan(&r.Number, &r.Value, &r.CreatedAt)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("pgx.CollectRows: %w", err)
	}

	return revisions, nil
}
