package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"eventScope/internal/model"
)

// Store provides Postgres persistence for decoded events.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the decoded event tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS decoded_events (
			chain_id      BIGINT NOT NULL,
			block_number  BIGINT NOT NULL,
			block_hash    TEXT NOT NULL DEFAULT '',
			tx_hash       TEXT NOT NULL,
			log_index     BIGINT NOT NULL,
			address       TEXT NOT NULL,
			event_name    TEXT NOT NULL,
			signature     TEXT NOT NULL,
			ts            BIGINT NOT NULL,
			values_json   JSONB NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (chain_id, tx_hash, log_index)
		)`,
		`CREATE TABLE IF NOT EXISTS decode_errors (
			chain_id      BIGINT NOT NULL,
			block_number  BIGINT NOT NULL,
			tx_hash       TEXT NOT NULL,
			log_index     BIGINT NOT NULL,
			address       TEXT NOT NULL,
			topic0        TEXT NOT NULL,
			error         TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// PutEventBatch upserts decoded events keyed by (chain_id, tx_hash, log_index).
func (s *Store) PutEventBatch(events []model.DecodedEvent) error {
	if len(events) == 0 {
		return nil
	}
	ctx := context.Background()

	batch := &pgx.Batch{}
	for _, event := range events {
		valuesJSON, err := json.Marshal(event.Values)
		if err != nil {
			return fmt.Errorf("marshal values: %w", err)
		}
		batch.Queue(`
			INSERT INTO decoded_events (
				chain_id, block_number, block_hash, tx_hash, log_index,
				address, event_name, signature, ts, values_json
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (chain_id, tx_hash, log_index)
			DO UPDATE SET
				block_number = EXCLUDED.block_number,
				block_hash = EXCLUDED.block_hash,
				address = EXCLUDED.address,
				event_name = EXCLUDED.event_name,
				signature = EXCLUDED.signature,
				ts = EXCLUDED.ts,
				values_json = EXCLUDED.values_json
		`,
			int64(event.ChainID),
			int64(event.BlockNumber),
			event.BlockHash,
			event.TxHash,
			int64(event.LogIndex),
			event.Address,
			event.EventName,
			event.Signature,
			int64(event.Timestamp),
			valuesJSON,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range events {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// PutErrorBatch inserts decode failures.
func (s *Store) PutErrorBatch(errs []model.DecodeError) error {
	if len(errs) == 0 {
		return nil
	}
	ctx := context.Background()

	batch := &pgx.Batch{}
	for _, decodeErr := range errs {
		batch.Queue(`
			INSERT INTO decode_errors (
				chain_id, block_number, tx_hash, log_index, address, topic0, error
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
		`,
			int64(decodeErr.ChainID),
			int64(decodeErr.BlockNumber),
			decodeErr.TxHash,
			int64(decodeErr.LogIndex),
			decodeErr.Address,
			decodeErr.Topic0,
			decodeErr.Error,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range errs {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
