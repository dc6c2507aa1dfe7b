package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// postgresStore is a PostgreSQL Persister. It stores the same documents as
// the SQLite one, with JSONB bodies.
type postgresStore struct {
	db *sql.DB
}

// NewPostgreSQL opens a PostgreSQL connection and ensures the schema exists.
// dsn should be in format: "host=localhost port=5432 user=postgres password=postgres dbname=sales sslmode=disable"
func NewPostgreSQL(ctx context.Context, dsn string) (Persister, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	// Saves are serialised by the Database lock; a small pool is enough.
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	if err := migratePostgres(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate postgres schema: %w", err)
	}

	return &postgresStore{db: db}, nil
}

func migratePostgres(ctx context.Context, db *sql.DB) error {
	const documentsTable = `
	CREATE TABLE IF NOT EXISTS documents (
		name TEXT PRIMARY KEY,
		body JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`
	if _, err := db.ExecContext(ctx, documentsTable); err != nil {
		return fmt.Errorf("failed to create documents table: %w", err)
	}
	return nil
}

// Load reads all stored documents and decodes them.
func (s *postgresStore) Load(ctx context.Context) (*Snapshot, error) {
	docs, err := loadDocuments(ctx, s.db, `SELECT name, body::text FROM documents`)
	if err != nil {
		return nil, err
	}
	return DecodeSnapshot(docs)
}

// Save replaces every document inside one transaction.
func (s *postgresStore) Save(ctx context.Context, snap *Snapshot) error {
	return saveDocuments(ctx, s.db, snap, `
		INSERT INTO documents (name, body, updated_at)
		VALUES ($1, $2::jsonb, $3)
		ON CONFLICT (name) DO UPDATE SET
			body = EXCLUDED.body,
			updated_at = EXCLUDED.updated_at
	`)
}

// Close closes the underlying *sql.DB.
func (s *postgresStore) Close() error {
	return s.db.Close()
}
