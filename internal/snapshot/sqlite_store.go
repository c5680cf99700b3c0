package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/username/salary-ticker/internal/calendar"
	"go.uber.org/zap"
)

// SQLiteStore keeps resolved years in a SQLite database.
// Use ":memory:" for an in-memory database.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
	mu     sync.RWMutex
}

// NewSQLiteStore opens the database and migrates the schema
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db, logger: logger}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS holiday_snapshots (
		year INTEGER PRIMARY KEY,
		saved_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS holiday_records (
		year INTEGER NOT NULL REFERENCES holiday_snapshots(year) ON DELETE CASCADE,
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		is_rest_day INTEGER NOT NULL,
		wage INTEGER NOT NULL DEFAULT 0,
		rest INTEGER NOT NULL DEFAULT 0,
		after_holiday INTEGER NOT NULL DEFAULT 0,
		target TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (year, date)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save replaces the stored year inside one transaction
func (s *SQLiteStore) Save(ctx context.Context, year int, records map[string]calendar.HolidayRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM holiday_records WHERE year = ?`, year); err != nil {
		return fmt.Errorf("failed to clear records: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO holiday_snapshots (year, saved_at) VALUES (?, ?)`,
		year, time.Now().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO holiday_records (year, date, name, is_rest_day, wage, rest, after_holiday, target)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, year, rec.Date, rec.Name, rec.IsRestDay, rec.Wage, rec.Rest, rec.After, rec.Target); err != nil {
			return fmt.Errorf("failed to insert record %s: %w", rec.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}

	s.logger.Info("Holiday snapshot saved",
		zap.Int("year", year),
		zap.Int("records", len(records)))

	return nil
}

// Load returns the stored year or calendar.ErrSnapshotNotFound
func (s *SQLiteStore) Load(ctx context.Context, year int) (map[string]calendar.HolidayRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var savedAt string
	err := s.db.QueryRowContext(ctx, `SELECT saved_at FROM holiday_snapshots WHERE year = ?`, year).Scan(&savedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: year %d", calendar.ErrSnapshotNotFound, year)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT date, name, is_rest_day, wage, rest, after_holiday, target
		FROM holiday_records WHERE year = ?`, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	records := make(map[string]calendar.HolidayRecord)
	for rows.Next() {
		var rec calendar.HolidayRecord
		if err := rows.Scan(&rec.Date, &rec.Name, &rec.IsRestDay, &rec.Wage, &rec.Rest, &rec.After, &rec.Target); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records[rec.Date] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s.logger.Debug("Holiday snapshot loaded",
		zap.Int("year", year),
		zap.String("saved_at", savedAt),
		zap.Int("records", len(records)))

	return records, nil
}
