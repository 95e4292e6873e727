// Package sqlite implementa los puertos del libro sobre SQLite (mattn/go-sqlite3).
//
// La base se abre en modo WAL con busy_timeout y transacciones IMMEDIATE: los lectores no
// bloquean y los escritores se serializan en el lock de escritura. La clave de saldo usa un
// índice único por expresión (IFNULL) para que un lote o vencimiento ausente solo coincida con
// otro ausente. Las fechas de vencimiento se guardan como texto YYYY-MM-DD y los instantes como
// texto UTC de ancho fijo, de modo que el orden lexicográfico coincide con el cronológico.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Store conexión SQLite con el esquema del libro ya migrado.
type Store struct {
	db *sql.DB
}

// Open abre (o crea) la base en path y aplica el esquema.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("crear directorio de la base: %w", err)
		}
	}
	params := url.Values{}
	params.Set("_journal_mode", "WAL")
	params.Set("_busy_timeout", "5000")
	params.Set("_txlock", "immediate")
	params.Set("_foreign_keys", "on")

	db, err := sql.Open("sqlite3", "file:"+path+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return s, nil
}

// DB expone la conexión para los repositorios de lectura.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close cierra la conexión.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS products (
		code       TEXT PRIMARY KEY,
		name       TEXT NOT NULL DEFAULT '',
		is_active  INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
	);

	CREATE TABLE IF NOT EXISTS balances (
		id              TEXT PRIMARY KEY,
		product_code    TEXT NOT NULL,
		lot_number      TEXT,
		expiration_date TEXT,
		quantity        INTEGER NOT NULL CHECK (quantity >= 0),
		version         INTEGER NOT NULL CHECK (version >= 1),
		updated_at      TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS ux_balances_key
		ON balances(product_code, IFNULL(lot_number, ''), IFNULL(expiration_date, ''));
	CREATE INDEX IF NOT EXISTS idx_balances_updated_at ON balances(updated_at);
	CREATE INDEX IF NOT EXISTS idx_balances_expiring
		ON balances(expiration_date) WHERE quantity > 0;

	-- Libro de movimientos: solo inserción.
	CREATE TABLE IF NOT EXISTS movements (
		id              TEXT PRIMARY KEY,
		product_code    TEXT NOT NULL,
		lot_number      TEXT,
		expiration_date TEXT,
		direction       TEXT NOT NULL CHECK (direction IN ('IN', 'OUT')),
		quantity        INTEGER NOT NULL CHECK (quantity > 0),
		note            TEXT,
		created_by      TEXT NOT NULL DEFAULT '',
		balance_after   INTEGER NOT NULL CHECK (balance_after >= 0),
		balance_version INTEGER NOT NULL,
		created_at      TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_movements_key
		ON movements(product_code, lot_number, expiration_date, balance_version);
	CREATE INDEX IF NOT EXISTS idx_movements_created_at ON movements(created_at);

	CREATE TABLE IF NOT EXISTS movement_idempotency (
		idempotency_key TEXT PRIMARY KEY,
		movement_id     TEXT NOT NULL REFERENCES movements(id),
		request_hash    TEXT NOT NULL,
		created_at      TEXT NOT NULL
	);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}
