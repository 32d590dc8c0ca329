// Package store keeps per-minute transaction counts in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/christophergentle/tpsgraph/internal/graph"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS tps_minutes (
	app          TEXT    NOT NULL,
	minute       INTEGER NOT NULL,
	transactions REAL    NOT NULL,
	samples      INTEGER NOT NULL DEFAULT 1,
	PRIMARY KEY (app, minute)
)`

// SQLiteStore is the local transaction history.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens or creates the database at path. ":memory:" gives a private
// in-memory database.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if path == ":memory:" {
		// every connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	log.Printf("Database initialized successfully: %s", path)
	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Record folds one transactions-per-minute sample into the bucket of the
// minute containing at. Several samples in a minute are averaged.
func (s *SQLiteStore) Record(ctx context.Context, app string, at time.Time, transactions float64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tps_minutes (app, minute, transactions, samples) VALUES (?, ?, ?, 1)
		ON CONFLICT (app, minute) DO UPDATE SET
			transactions = (transactions * samples + excluded.transactions) / (samples + 1),
			samples = samples + 1`,
		app, minuteOf(at), transactions)
	if err != nil {
		return fmt.Errorf("failed to record sample: %w", err)
	}
	return nil
}

// Import replaces the buckets covered by points in one transaction.
func (s *SQLiteStore) Import(ctx context.Context, app string, points []graph.DataPoint) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tps_minutes (app, minute, transactions, samples) VALUES (?, ?, ?, 1)
		ON CONFLICT (app, minute) DO UPDATE SET transactions = excluded.transactions, samples = 1`)
	if err != nil {
		return fmt.Errorf("failed to prepare import: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.ExecContext(ctx, app, minuteOf(graph.FromJulian(p.T, time.UTC)), p.C); err != nil {
			return fmt.Errorf("failed to import point: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	return nil
}

// Series returns the buckets of app in [from, to) in time order.
func (s *SQLiteStore) Series(ctx context.Context, app string, from, to time.Time) ([]graph.DataPoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT minute, transactions FROM tps_minutes
		WHERE app = ? AND minute >= ? AND minute < ?
		ORDER BY minute`,
		app, minuteOf(from), to.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to query series: %w", err)
	}
	defer rows.Close()

	var points []graph.DataPoint
	for rows.Next() {
		var minute int64
		var c float64
		if err := rows.Scan(&minute, &c); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		points = append(points, graph.DataPoint{T: graph.ToJulian(time.Unix(minute, 0)), C: c})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read series: %w", err)
	}
	return points, nil
}

// Apps lists the applications with stored data.
func (s *SQLiteStore) Apps(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT app FROM tps_minutes ORDER BY app")
	if err != nil {
		return nil, fmt.Errorf("failed to query apps: %w", err)
	}
	defer rows.Close()

	var apps []string
	for rows.Next() {
		var app string
		if err := rows.Scan(&app); err != nil {
			return nil, fmt.Errorf("failed to scan app: %w", err)
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

// Prune deletes buckets older than before and reports how many went.
func (s *SQLiteStore) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM tps_minutes WHERE minute < ?", minuteOf(before))
	if err != nil {
		return 0, fmt.Errorf("failed to prune: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned rows: %w", err)
	}
	return n, nil
}

// minuteOf is the unix time of the start of t's minute.
func minuteOf(t time.Time) int64 {
	return t.Truncate(time.Minute).Unix()
}
