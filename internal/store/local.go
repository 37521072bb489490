package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// LocalConfig holds configuration for the embedded SQLite store.
type LocalConfig struct {
	// Path is the SQLite database file.
	// Default: "~/.config/retirewise/retirewise.db"
	Path string
}

// ApplyDefaults sets default values for unset fields.
func (c *LocalConfig) ApplyDefaults() {
	if c.Path == "" {
		c.Path = "~/.config/retirewise/retirewise.db"
	}
}

// LocalStore is the on-device backend: schemaless JSON documents in a single
// SQLite table, one row per document. It ignores owner scoping; everything it
// holds belongs to the local device.
type LocalStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// OpenLocal opens (or creates) the local database and ensures the schema.
func OpenLocal(cfg LocalConfig, logger *zap.Logger) (*LocalStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.ApplyDefaults()

	path, err := expandPath(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("expanding path %s: %w", cfg.Path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating directory %s: %w", filepath.Dir(path), err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma: %w", err)
		}
	}

	const schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	data       TEXT NOT NULL,
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection);
`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("local store opened", zap.String("path", path))
	return &LocalStore{db: db, logger: logger}, nil
}

// expandPath expands ~ to the home directory.
func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// List returns every document in the collection.
func (s *LocalStore) List(ctx context.Context, collection string) (docs []Document, err error) {
	defer func(start time.Time) { observeOp("local", collection, "list", start, err) }(time.Now())
	if !ValidCollection(collection) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, data FROM documents WHERE collection = ? ORDER BY id", collection)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", collection, err)
	}
	defer rows.Close()

	docs = []Document{}
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", collection, err)
		}
		var fields Fields
		if err := json.Unmarshal([]byte(data), &fields); err != nil {
			return nil, fmt.Errorf("decoding %s/%s: %w", collection, id, err)
		}
		docs = append(docs, Document{ID: id, Fields: fields})
	}
	return docs, rows.Err()
}

// Get returns one document.
func (s *LocalStore) Get(ctx context.Context, collection, id string) (doc Document, err error) {
	defer func(start time.Time) { observeOp("local", collection, "get", start, err) }(time.Now())
	if !ValidCollection(collection) {
		return Document{}, fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}

	var data string
	err = s.db.QueryRowContext(ctx,
		"SELECT data FROM documents WHERE collection = ? AND id = ?", collection, id).Scan(&data)
	if err == sql.ErrNoRows {
		return Document{}, fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	if err != nil {
		return Document{}, fmt.Errorf("getting %s/%s: %w", collection, id, err)
	}

	var fields Fields
	if err := json.Unmarshal([]byte(data), &fields); err != nil {
		return Document{}, fmt.Errorf("decoding %s/%s: %w", collection, id, err)
	}
	return Document{ID: id, Fields: fields}, nil
}

// Create persists a new document under a synthesized local id.
func (s *LocalStore) Create(ctx context.Context, collection string, fields Fields) (id string, err error) {
	defer func(start time.Time) { observeOp("local", collection, "create", start, err) }(time.Now())
	if !ValidCollection(collection) {
		return "", fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}

	id = NewLocalID(collection)
	data, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encoding %s document: %w", collection, err)
	}
	if _, err = s.db.ExecContext(ctx,
		"INSERT INTO documents (collection, id, data) VALUES (?, ?, ?)",
		collection, id, string(data)); err != nil {
		return "", fmt.Errorf("inserting %s/%s: %w", collection, id, err)
	}
	return id, nil
}

// Put writes a document under a caller-chosen id, replacing any existing one.
func (s *LocalStore) Put(ctx context.Context, collection, id string, fields Fields) (err error) {
	defer func(start time.Time) { observeOp("local", collection, "put", start, err) }(time.Now())
	if !ValidCollection(collection) {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encoding %s document: %w", collection, err)
	}
	if _, err = s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO documents (collection, id, data) VALUES (?, ?, ?)",
		collection, id, string(data)); err != nil {
		return fmt.Errorf("writing %s/%s: %w", collection, id, err)
	}
	return nil
}

// Update applies a partial patch inside a transaction so concurrent patches
// to the same document cannot interleave.
func (s *LocalStore) Update(ctx context.Context, collection, id string, patch Fields) (err error) {
	defer func(start time.Time) { observeOp("local", collection, "update", start, err) }(time.Now())
	if !ValidCollection(collection) {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var data string
	err = tx.QueryRowContext(ctx,
		"SELECT data FROM documents WHERE collection = ? AND id = ?", collection, id).Scan(&data)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	if err != nil {
		return fmt.Errorf("reading %s/%s: %w", collection, id, err)
	}

	var fields Fields
	if err := json.Unmarshal([]byte(data), &fields); err != nil {
		return fmt.Errorf("decoding %s/%s: %w", collection, id, err)
	}
	for k, v := range patch {
		fields[k] = v
	}
	merged, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encoding %s/%s: %w", collection, id, err)
	}
	if _, err = tx.ExecContext(ctx,
		"UPDATE documents SET data = ? WHERE collection = ? AND id = ?",
		string(merged), collection, id); err != nil {
		return fmt.Errorf("updating %s/%s: %w", collection, id, err)
	}
	return tx.Commit()
}

// Delete removes a document. Absent documents are not an error.
func (s *LocalStore) Delete(ctx context.Context, collection, id string) (err error) {
	defer func(start time.Time) { observeOp("local", collection, "delete", start, err) }(time.Now())
	if !ValidCollection(collection) {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}

	if _, err = s.db.ExecContext(ctx,
		"DELETE FROM documents WHERE collection = ? AND id = ?", collection, id); err != nil {
		return fmt.Errorf("deleting %s/%s: %w", collection, id, err)
	}
	return nil
}

// Clear removes every document in the collection.
func (s *LocalStore) Clear(ctx context.Context, collection string) (err error) {
	defer func(start time.Time) { observeOp("local", collection, "clear", start, err) }(time.Now())
	if !ValidCollection(collection) {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}

	if _, err = s.db.ExecContext(ctx,
		"DELETE FROM documents WHERE collection = ?", collection); err != nil {
		return fmt.Errorf("clearing %s: %w", collection, err)
	}
	return nil
}

// Subscribe has no push mechanism locally: it delivers one snapshot and
// returns a no-op unsubscribe handle.
func (s *LocalStore) Subscribe(ctx context.Context, collection string, fn func([]Document)) (UnsubscribeFunc, error) {
	docs, err := s.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	fn(docs)
	return func() {}, nil
}

// Close closes the underlying database.
func (s *LocalStore) Close() error {
	return s.db.Close()
}
