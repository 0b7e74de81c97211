// Package sqlitekv persists key-value records in a local SQLite file.
package sqlitekv

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// DB provides the kv.Store contract on top of a SQLite connection.
type DB struct {
	db *sql.DB

	getStmt *sql.Stmt
	setStmt *sql.Stmt
	delStmt *sql.Stmt
}

// New opens (or creates) the SQLite database at dbPath, applies schema
// migrations, and prepares common statements.
func New(dbPath string) (*DB, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	store := &DB{db: db}
	if err := store.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases prepared statements and closes the DB.
func (d *DB) Close() error {
	for _, stmt := range []*sql.Stmt{d.getStmt, d.setStmt, d.delStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return d.db.Close()
}

const schemaVersion = 1

func applyMigrations(db *sql.DB) error {
	// WAL improves write concurrency.
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return err
	}

	var current int
	_ = db.QueryRow(`SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`CREATE TABLE IF NOT EXISTS records (
            key TEXT PRIMARY KEY,
            value TEXT NOT NULL
        );`); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES('schema_version',?)
            ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	return tx.Commit()
}

func (d *DB) prepareStatements() error {
	var err error
	if d.getStmt, err = d.db.Prepare(`SELECT value FROM records WHERE key=?`); err != nil {
		return err
	}
	if d.setStmt, err = d.db.Prepare(`INSERT INTO records(key,value) VALUES(?,?)
        ON CONFLICT(key) DO UPDATE SET value=excluded.value`); err != nil {
		return err
	}
	if d.delStmt, err = d.db.Prepare(`DELETE FROM records WHERE key=?`); err != nil {
		return err
	}
	return nil
}

// Get fetches the value stored under key.
func (d *DB) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := d.getStmt.QueryRowContext(ctx, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (d *DB) Set(ctx context.Context, key, value string) error {
	_, err := d.setStmt.ExecContext(ctx, key, value)
	return err
}

// Delete removes key. Deleting an absent key is a no-op.
func (d *DB) Delete(ctx context.Context, key string) error {
	_, err := d.delStmt.ExecContext(ctx, key)
	return err
}
