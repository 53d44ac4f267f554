// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"paper-trader/internal/errors"
	"paper-trader/internal/scoreboard"
)

// maxRecords caps the leaderboard; lower scores roll off.
const maxRecords = 100

// SQLiteStore implements scoreboard.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a score database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, errors.Wrap(err, "opening score database")
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "initializing schema")
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scores (
		id TEXT PRIMARY KEY,
		nickname TEXT NOT NULL,
		date DATETIME NOT NULL,
		initial_balance REAL NOT NULL,
		final_balance REAL NOT NULL,
		return_rate REAL NOT NULL,
		holding_period_days INTEGER NOT NULL,
		best_stock TEXT,
		best_stock_return REAL,
		total_trades INTEGER NOT NULL,
		result_type TEXT NOT NULL,
		rank_score REAL NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_scores_rank ON scores(rank_score DESC);
	CREATE INDEX IF NOT EXISTS idx_scores_nickname ON scores(nickname);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveRecord inserts a score record and trims the board to its cap.
func (s *SQLiteStore) SaveRecord(ctx context.Context, record *scoreboard.Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scores (
			id, nickname, date, initial_balance, final_balance, return_rate,
			holding_period_days, best_stock, best_stock_return, total_trades,
			result_type, rank_score
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		record.ID, record.Nickname, record.Date.UTC(),
		record.InitialBalance, record.FinalBalance, record.ReturnRate,
		record.HoldingPeriodDays, record.BestStock, record.BestStockReturn,
		record.TotalTrades, string(record.ResultType), record.RankScore(),
	)
	if err != nil {
		return errors.Wrap(errors.ErrDatabaseError, err.Error())
	}

	_, err = s.db.ExecContext(ctx, `
		DELETE FROM scores WHERE id NOT IN (
			SELECT id FROM scores ORDER BY rank_score DESC LIMIT ?
		)
	`, maxRecords)
	if err != nil {
		return errors.Wrap(errors.ErrDatabaseError, err.Error())
	}
	return nil
}

// TopRecords returns up to limit records ordered by rank score.
func (s *SQLiteStore) TopRecords(ctx context.Context, limit int) ([]scoreboard.Record, error) {
	if limit <= 0 || limit > maxRecords {
		limit = maxRecords
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, nickname, date, initial_balance, final_balance, return_rate,
		       holding_period_days, best_stock, best_stock_return, total_trades, result_type
		FROM scores ORDER BY rank_score DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabaseError, err.Error())
	}
	defer rows.Close()

	return scanRecords(rows)
}

// RecordsByNickname returns all records for one nickname, best first.
func (s *SQLiteStore) RecordsByNickname(ctx context.Context, nickname string) ([]scoreboard.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, nickname, date, initial_balance, final_balance, return_rate,
		       holding_period_days, best_stock, best_stock_return, total_trades, result_type
		FROM scores WHERE nickname = ? COLLATE NOCASE ORDER BY rank_score DESC
	`, nickname)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabaseError, err.Error())
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]scoreboard.Record, error) {
	var records []scoreboard.Record
	for rows.Next() {
		var r scoreboard.Record
		var date time.Time
		var resultType string
		if err := rows.Scan(
			&r.ID, &r.Nickname, &date, &r.InitialBalance, &r.FinalBalance,
			&r.ReturnRate, &r.HoldingPeriodDays, &r.BestStock,
			&r.BestStockReturn, &r.TotalTrades, &resultType,
		); err != nil {
			return nil, errors.Wrap(errors.ErrDatabaseError, err.Error())
		}
		r.Date = date
		r.ResultType = scoreboard.Result(resultType)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrDatabaseError, err.Error())
	}
	return records, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ scoreboard.Store = (*SQLiteStore)(nil)
