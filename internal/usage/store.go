package usage

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // pure Go driver, no cgo
)

// Store is the date-keyed map format's durable home: one row per
// recorded event, tagged with its user and date key, instead of the
// original's single JSON file rewritten in full on every call.
type Store struct {
	db *sql.DB
}

// Open opens or creates the usage database at path, matching the
// teacher's single-writer sqlite pragmas (internal/store/sqlite_bm25.go).
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("usage: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("usage: set pragma: %w", err)
		}
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS usage_records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			date TEXT NOT NULL,
			time INTEGER NOT NULL,
			input_tokens INTEGER NOT NULL,
			output_tokens INTEGER NOT NULL,
			input_weight INTEGER NOT NULL,
			output_weight INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_usage_user_date ON usage_records(user_id, date);
		CREATE INDEX IF NOT EXISTS idx_usage_time ON usage_records(time);
	`)
	return err
}

func (s *Store) insert(userID, date string, r Record) error {
	_, err := s.db.Exec(
		`INSERT INTO usage_records (user_id, date, time, input_tokens, output_tokens, input_weight, output_weight)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		userID, date, r.Time, r.InputTokens, r.OutputTokens, r.InputWeight, r.OutputWeight,
	)
	return err
}

// Record persists a new usage event for userID, bucketed under today's
// date key.
func (s *Store) Record(userID string, inputTokens, outputTokens, inputWeight, outputWeight int64) error {
	now := time.Now().UTC()
	return s.insert(userID, dateKey(now), Record{
		Time:         now.Unix(),
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		InputWeight:  inputWeight,
		OutputWeight: outputWeight,
	})
}

// RecordsAfter returns every record for userID with a timestamp after
// the given unix time, mirroring get_user_usage_data_after.
func (s *Store) RecordsAfter(userID string, after time.Time) ([]Record, error) {
	rows, err := s.db.Query(
		`SELECT time, input_tokens, output_tokens, input_weight, output_weight
		 FROM usage_records WHERE user_id = ? AND time > ? ORDER BY time`,
		userID, after.Unix(),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanRecords(rows)
}

// AllRecordsAfter mirrors get_usage_data_after: every user's records
// after the given time, across the whole store.
func (s *Store) AllRecordsAfter(after time.Time) ([]Record, error) {
	rows, err := s.db.Query(
		`SELECT time, input_tokens, output_tokens, input_weight, output_weight
		 FROM usage_records WHERE time > ? ORDER BY time`,
		after.Unix(),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.Time, &r.InputTokens, &r.OutputTokens, &r.InputWeight, &r.OutputWeight); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ByDate aggregates userID's records into the date-keyed map this
// package writes, returning each date's total cost as a dollar string.
func (s *Store) ByDate(userID string) (map[string]string, error) {
	rows, err := s.db.Query(
		`SELECT date, input_tokens, output_tokens, input_weight, output_weight
		 FROM usage_records WHERE user_id = ? ORDER BY date`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	totals := make(map[string]int64)
	for rows.Next() {
		var date string
		var r Record
		if err := rows.Scan(&date, &r.InputTokens, &r.OutputTokens, &r.InputWeight, &r.OutputWeight); err != nil {
			return nil, err
		}
		totals[date] += r.InputTokens*r.InputWeight + r.OutputTokens*r.OutputWeight
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(totals))
	for date, total := range totals {
		out[date] = formatCost(total)
	}
	return out, nil
}

func (s *Store) Close() error { return s.db.Close() }
