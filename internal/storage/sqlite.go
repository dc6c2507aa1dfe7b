package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// sqliteStore keeps the same JSON documents as the file persister, one row
// per document in `documents(name TEXT PRIMARY KEY, body TEXT)`.
// A save upserts all rows in one transaction, so the stored state is always
// a complete snapshot.
//
// Uses the pure Go modernc.org/sqlite driver, no CGO required.
type sqliteStore struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at the given path and ensures the
// schema exists. Caller is responsible for calling Close() when done.
func NewSQLite(path string) (Persister, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// A single writer keeps SQLite from returning SQLITE_BUSY under load.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &sqliteStore{db: db}, nil
}

func migrate(db *sql.DB) error {
	const stmt = `CREATE TABLE IF NOT EXISTS documents (
        name TEXT PRIMARY KEY,
        body TEXT NOT NULL,
        updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
    );`
	_, err := db.Exec(stmt)
	return err
}

// Load reads all stored documents and decodes them.
func (s *sqliteStore) Load(ctx context.Context) (*Snapshot, error) {
	docs, err := loadDocuments(ctx, s.db, `SELECT name, body FROM documents;`)
	if err != nil {
		return nil, err
	}
	return DecodeSnapshot(docs)
}

// Save replaces every document inside one transaction.
func (s *sqliteStore) Save(ctx context.Context, snap *Snapshot) error {
	return saveDocuments(ctx, s.db, snap,
		`INSERT INTO documents(name, body, updated_at) VALUES(?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at;`)
}

// Close closes the underlying *sql.DB.
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func loadDocuments(ctx context.Context, db *sql.DB, query string) (map[string][]byte, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	docs := map[string][]byte{}
	for rows.Next() {
		var name, body string
		if err := rows.Scan(&name, &body); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs[name] = []byte(body)
	}
	return docs, rows.Err()
}

func saveDocuments(ctx context.Context, db *sql.DB, snap *Snapshot, upsert string) error {
	docs, err := EncodeSnapshot(snap)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, name := range Documents {
		if _, err := tx.ExecContext(ctx, upsert, name, string(docs[name]), now); err != nil {
			return fmt.Errorf("failed to save %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
