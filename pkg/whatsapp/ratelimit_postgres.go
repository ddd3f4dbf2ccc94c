package whatsapp

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const limitTableDDL = `
CREATE TABLE IF NOT EXISTS rate_limits (
	client_key TEXT PRIMARY KEY,
	data JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresLimitStore persists quota blobs in Postgres, one row per client key.
type PostgresLimitStore struct {
	db *sql.DB
}

func NewPostgresLimitStore(dsn string) (*PostgresLimitStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)

	if err := db.Ping(); err != nil {
		return nil, err
	}
	if _, err := db.Exec(limitTableDDL); err != nil {
		return nil, err
	}
	return &PostgresLimitStore{db: db}, nil
}

func (s *PostgresLimitStore) Load(ctx context.Context, key string) ([]byte, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM rate_limits WHERE client_key = $1`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (s *PostgresLimitStore) Save(ctx context.Context, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rate_limits (client_key, data, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (client_key)
		DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		key, data)
	return err
}

func (s *PostgresLimitStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM rate_limits WHERE client_key = $1`, key)
	return err
}

func (s *PostgresLimitStore) Close() error {
	return s.db.Close()
}
