package persistence

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"                      // SQLite driver
	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
)

// SQLiteKV stores key-value pairs in a single kv_store table, served by
// either a local SQLite file or a remote Turso (libsql) database.
type SQLiteKV struct {
	conn     *sql.DB
	useTurso bool
}

// Config selects the backing database. Turso is tried first when credentials
// are present, falling back to the local SQLite file.
type Config struct {
	SQLitePath    string
	TursoDatabase string
	TursoToken    string
}

// OpenKV opens the durable key-value store for the given configuration.
func OpenKV(cfg Config) (*SQLiteKV, error) {
	var conn *sql.DB
	var err error
	var useTurso bool

	if cfg.TursoDatabase != "" && cfg.TursoToken != "" {
		connStr := cfg.TursoDatabase + "?authToken=" + cfg.TursoToken
		conn, err = sql.Open("libsql", connStr)
		if err == nil {
			if pingErr := conn.Ping(); pingErr == nil {
				useTurso = true
			} else {
				conn.Close()
				conn = nil
			}
		}
	}

	if conn == nil {
		dbDir := filepath.Dir(cfg.SQLitePath)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}

		conn, err = sql.Open("sqlite3", cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database: %w", err)
		}

		if err := conn.Ping(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("SQLite database ping failed: %w", err)
		}
		useTurso = false
	}

	kv := &SQLiteKV{conn: conn, useTurso: useTurso}
	if err := kv.ensureSchema(); err != nil {
		conn.Close()
		return nil, err
	}

	return kv, nil
}

func (kv *SQLiteKV) ensureSchema() error {
	_, err := kv.conn.Exec(`CREATE TABLE IF NOT EXISTS kv_store (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("failed to create kv_store table: %w", err)
	}
	return nil
}

func (kv *SQLiteKV) Get(key string) ([]byte, bool, error) {
	var value string
	err := kv.conn.QueryRow(`SELECT value FROM kv_store WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("kv get %q failed: %w", key, err)
	}
	return []byte(value), true, nil
}

func (kv *SQLiteKV) Set(key string, value []byte) error {
	_, err := kv.conn.Exec(
		`INSERT INTO kv_store (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, string(value),
	)
	if err != nil {
		return fmt.Errorf("kv set %q failed: %w", key, err)
	}
	return nil
}

func (kv *SQLiteKV) Delete(key string) error {
	if _, err := kv.conn.Exec(`DELETE FROM kv_store WHERE key = ?`, key); err != nil {
		return fmt.Errorf("kv delete %q failed: %w", key, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (kv *SQLiteKV) Close() error {
	if kv.conn != nil {
		return kv.conn.Close()
	}
	return nil
}

// ConnectionInfo returns a string describing the active backend.
func (kv *SQLiteKV) ConnectionInfo() string {
	if kv.useTurso {
		return "Turso"
	}
	return "SQLite"
}
