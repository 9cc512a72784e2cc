package storage

import (
	"database/sql"
	"errors"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a referenced product or alert does not
// exist. Permission decisions live in the service layers, which need to
// distinguish "doesn't exist" from "not yours".
var ErrNotFound = errors.New("not found")

type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS products (
  id                  INTEGER PRIMARY KEY,
  user_id             INTEGER NOT NULL,
  title               TEXT NOT NULL,
  url                 TEXT NOT NULL,
  retailer            TEXT NOT NULL,
  retailer_product_id TEXT NOT NULL,
  current_price       REAL NOT NULL,
  currency            TEXT NOT NULL,
  image_url           TEXT,
  description         TEXT,
  available           INTEGER NOT NULL DEFAULT 1,
  created_at          DATETIME NOT NULL,
  updated_at          DATETIME NOT NULL,
  UNIQUE(retailer, retailer_product_id)
);
CREATE INDEX IF NOT EXISTS idx_products_user ON products(user_id);
CREATE TABLE IF NOT EXISTS price_history (
  id          INTEGER PRIMARY KEY,
  product_id  INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  price       REAL NOT NULL,
  currency    TEXT NOT NULL,
  recorded_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_history_product ON price_history(product_id, recorded_at);
CREATE TABLE IF NOT EXISTS alerts (
  id           INTEGER PRIMARY KEY,
  product_id   INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  user_id      INTEGER NOT NULL,
  target_price REAL NOT NULL,
  is_triggered INTEGER NOT NULL DEFAULT 0 CHECK (is_triggered IN (0,1)),
  created_at   DATETIME NOT NULL,
  updated_at   DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_alerts_product ON alerts(product_id, is_triggered);
CREATE INDEX IF NOT EXISTS idx_alerts_user ON alerts(user_id);
	`); err != nil {
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

func notFoundErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
