// Package history archives pipeline runs in SQLite.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"forecast-scraper/models"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	location TEXT NOT NULL,
	source_url TEXT NOT NULL,
	fetched_at INTEGER NOT NULL,
	mean_temp REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS forecast_rows (
	run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	period TEXT NOT NULL,
	short_desc TEXT NOT NULL,
	temp TEXT NOT NULL,
	detail_desc TEXT NOT NULL,
	temp_num INTEGER NOT NULL,
	is_night INTEGER NOT NULL,
	PRIMARY KEY (run_id, position)
);

CREATE INDEX IF NOT EXISTS idx_runs_fetched_at ON runs(fetched_at);
`

// Store holds archived runs
type Store struct {
	db *sql.DB
}

// New opens the database at path and creates the tables if needed
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps the foreign_keys pragma in effect
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores a run with all of its rows and returns the new run id
func (s *Store) SaveRun(ctx context.Context, run models.Run) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (location, source_url, fetched_at, mean_temp) VALUES (?, ?, ?, ?)`,
		run.Location, run.SourceURL, run.FetchedAt.Unix(), run.MeanTemperature)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO forecast_rows (run_id, position, period, short_desc, temp, detail_desc, temp_num, is_night)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare row insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range run.Table.Rows {
		if _, err := stmt.ExecContext(ctx, id, i, row.Period, row.ShortDescription, row.TemperatureText,
			row.DetailedDescription, row.TemperatureNumber, row.IsNight); err != nil {
			return 0, fmt.Errorf("failed to insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return id, nil
}

// LatestRun returns the most recently fetched run
func (s *Store) LatestRun(ctx context.Context) (models.Run, bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM runs ORDER BY fetched_at DESC, id DESC LIMIT 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return models.Run{}, false, nil
	}
	if err != nil {
		return models.Run{}, false, fmt.Errorf("failed to query latest run: %w", err)
	}
	return s.GetRun(ctx, id)
}

// GetRun returns one run with its rows
func (s *Store) GetRun(ctx context.Context, id int64) (models.Run, bool, error) {
	var run models.Run
	var fetchedAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, location, source_url, fetched_at, mean_temp FROM runs WHERE id = ?`, id).
		Scan(&run.ID, &run.Location, &run.SourceURL, &fetchedAt, &run.MeanTemperature)
	if err == sql.ErrNoRows {
		return models.Run{}, false, nil
	}
	if err != nil {
		return models.Run{}, false, fmt.Errorf("failed to query run %d: %w", id, err)
	}
	run.FetchedAt = time.Unix(fetchedAt, 0).UTC()

	rows, err := s.db.QueryContext(ctx,
		`SELECT period, short_desc, temp, detail_desc, temp_num, is_night
		 FROM forecast_rows WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return models.Run{}, false, fmt.Errorf("failed to query rows of run %d: %w", id, err)
	}
	defer rows.Close()

	run.Table.Rows = []models.ForecastRow{}
	for rows.Next() {
		var r models.ForecastRow
		if err := rows.Scan(&r.Period, &r.ShortDescription, &r.TemperatureText,
			&r.DetailedDescription, &r.TemperatureNumber, &r.IsNight); err != nil {
			return models.Run{}, false, fmt.Errorf("failed to scan row: %w", err)
		}
		run.Table.Rows = append(run.Table.Rows, r)
	}
	if err := rows.Err(); err != nil {
		return models.Run{}, false, fmt.Errorf("failed to read rows of run %d: %w", id, err)
	}
	run.Table.Derived = true

	return run, true, nil
}

// ListRuns returns up to limit run summaries, newest first
func (s *Store) ListRuns(ctx context.Context, limit int) ([]models.RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.location, r.source_url, r.fetched_at, r.mean_temp,
		       (SELECT COUNT(*) FROM forecast_rows f WHERE f.run_id = r.id)
		FROM runs r
		ORDER BY r.fetched_at DESC, r.id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	summaries := []models.RunSummary{}
	for rows.Next() {
		var rs models.RunSummary
		var fetchedAt int64
		if err := rows.Scan(&rs.ID, &rs.Location, &rs.SourceURL, &fetchedAt, &rs.MeanTemperature, &rs.RowCount); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		rs.FetchedAt = time.Unix(fetchedAt, 0).UTC()
		summaries = append(summaries, rs)
	}
	return summaries, rows.Err()
}

// PruneOlderThan removes runs fetched more than maxAge ago and returns how many were removed
func (s *Store) PruneOlderThan(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge).Unix()
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	return res.RowsAffected()
}
