package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresFactStore persists long-term facts in PostgreSQL (Supabase included).
type PostgresFactStore struct {
	pool *pgxpool.Pool
}

func NewPostgresFactStore(ctx context.Context, databaseURL string) (*PostgresFactStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresFactStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS long_term_memory (
			session_id TEXT PRIMARY KEY,
			facts JSONB NOT NULL DEFAULT '{}'::jsonb,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresFactStore) Load(ctx context.Context, sessionID string) (FactMap, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT facts FROM long_term_memory WHERE session_id = $1`,
		sessionID,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return FactMap{}, nil
		}
		return nil, fmt.Errorf("load facts: %w", err)
	}
	if len(raw) == 0 {
		return FactMap{}, nil
	}
	facts, err := FactsFromJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("decode stored facts: %w", err)
	}
	return facts, nil
}

// Merge upserts the record, letting jsonb concatenation apply newFacts over the stored
// object in one statement so concurrent merges cannot lose each other's keys.
func (s *PostgresFactStore) Merge(ctx context.Context, sessionID string, newFacts FactMap) (FactMap, error) {
	payload, err := json.Marshal(newFacts.Clone())
	if err != nil {
		return nil, fmt.Errorf("marshal facts: %w", err)
	}

	var raw []byte
	err = s.pool.QueryRow(ctx,
		`INSERT INTO long_term_memory (session_id, facts, updated_at)
		 VALUES ($1, $2::jsonb, now())
		 ON CONFLICT (session_id) DO UPDATE
		 SET facts = long_term_memory.facts || EXCLUDED.facts, updated_at = now()
		 RETURNING facts`,
		sessionID,
		string(payload),
	).Scan(&raw)
	if err != nil {
		return nil, fmt.Errorf("merge facts: %w", err)
	}

	merged, err := FactsFromJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("decode merged facts: %w", err)
	}
	return merged, nil
}

func (s *PostgresFactStore) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM long_term_memory WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("delete facts: %w", err)
	}
	return nil
}

func (s *PostgresFactStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresFactStore) Close() error {
	s.pool.Close()
	return nil
}
