// Package scoreboard keeps arcade-style score records of finished paper
// trading sessions.
package scoreboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"paper-trader/internal/engine"
)

// Result is the reason a record was captured.
type Result string

const (
	ResultReset      Result = "RESET"
	ResultBankruptcy Result = "BANKRUPTCY"
	ResultManualSave Result = "MANUAL_SAVE"
)

// BankruptcyThreshold is the total value below which a session counts as
// bankrupt.
const BankruptcyThreshold = 1000.0

// Record is one finished session's score.
type Record struct {
	ID                string    `json:"id"`
	Nickname          string    `json:"nickname"`
	Date              time.Time `json:"date"`
	InitialBalance    float64   `json:"initial_balance"`
	FinalBalance      float64   `json:"final_balance"`
	ReturnRate        float64   `json:"return_rate"`
	HoldingPeriodDays int       `json:"holding_period_days"`
	BestStock         string    `json:"best_stock"`
	BestStockReturn   float64   `json:"best_stock_return"`
	TotalTrades       int       `json:"total_trades"`
	ResultType        Result    `json:"result_type"`
}

// IsProfitable reports whether the session ended in profit.
func (r *Record) IsProfitable() bool {
	return r.ReturnRate > 0
}

// ProfitLoss returns the absolute session P&L.
func (r *Record) ProfitLoss() float64 {
	return r.FinalBalance - r.InitialBalance
}

// RankScore is the leaderboard score: the return rate plus a
// holding-period bonus (long holds rewarded) and a trade-count adjustment
// (moderate activity rewarded, churning penalized).
func (r *Record) RankScore() float64 {
	score := r.ReturnRate

	switch {
	case r.HoldingPeriodDays >= 100:
		score += 20
	case r.HoldingPeriodDays >= 30:
		score += 10
	case r.HoldingPeriodDays >= 7:
		score += 5
	}

	switch {
	case r.TotalTrades >= 5 && r.TotalTrades <= 20:
		score += 2
	case r.TotalTrades > 50:
		score -= 5
	}

	return score
}

// Grade maps the return rate to a letter grade.
func (r *Record) Grade() string {
	switch {
	case r.ReturnRate >= 50:
		return "S+"
	case r.ReturnRate >= 30:
		return "S"
	case r.ReturnRate >= 20:
		return "A+"
	case r.ReturnRate >= 10:
		return "A"
	case r.ReturnRate >= 5:
		return "B+"
	case r.ReturnRate >= 0:
		return "B"
	case r.ReturnRate >= -10:
		return "C"
	case r.ReturnRate >= -25:
		return "D"
	default:
		return "F"
	}
}

// Store persists score records.
type Store interface {
	SaveRecord(ctx context.Context, record *Record) error
	TopRecords(ctx context.Context, limit int) ([]Record, error)
	RecordsByNickname(ctx context.Context, nickname string) ([]Record, error)
	Close() error
}

// Manager builds records from engine state and persists them.
type Manager struct {
	store        Store
	logger       zerolog.Logger
	sessionStart time.Time
}

// NewManager creates a scoreboard manager. The session timer starts now.
func NewManager(store Store, logger zerolog.Logger) *Manager {
	return &Manager{
		store:        store,
		logger:       logger,
		sessionStart: time.Now(),
	}
}

// ResetSessionTimer restarts the holding-period clock for a new session.
func (m *Manager) ResetSessionTimer() {
	m.sessionStart = time.Now()
}

// RecordFromSnapshot builds a score record from an engine snapshot.
// Positions are valued at cached prices, falling back to average price.
func (m *Manager) RecordFromSnapshot(nickname string, snap *engine.Snapshot, resultType Result) *Record {
	holdingDays := int(time.Since(m.sessionStart).Hours() / 24)
	if holdingDays < 1 {
		holdingDays = 1
	}

	prices := make(map[string]float64, len(snap.StockPrices))
	for symbol, stock := range snap.StockPrices {
		prices[symbol] = stock.CurrentPrice
	}

	bestStock := "None"
	bestReturn := 0.0
	first := true
	for symbol, pos := range snap.Portfolio.Positions {
		price, ok := prices[symbol]
		if !ok {
			price = pos.AveragePrice
		}
		if pos.TotalInvested <= 0 {
			continue
		}
		ret := pos.PnLPercent(price)
		if first || ret > bestReturn {
			bestStock = symbol
			bestReturn = ret
			first = false
		}
	}

	record := &Record{
		ID:                uuid.New().String(),
		Nickname:          nickname,
		Date:              time.Now(),
		InitialBalance:    snap.Portfolio.InitialBalance,
		FinalBalance:      snap.Portfolio.TotalValue(prices),
		HoldingPeriodDays: holdingDays,
		BestStock:         bestStock,
		BestStockReturn:   bestReturn,
		TotalTrades:       len(snap.Portfolio.Transactions),
		ResultType:        resultType,
	}
	if record.InitialBalance > 0 {
		record.ReturnRate = (record.FinalBalance - record.InitialBalance) / record.InitialBalance * 100
	}
	return record
}

// RegisterScore builds a record from the snapshot and persists it.
func (m *Manager) RegisterScore(ctx context.Context, nickname string, snap *engine.Snapshot, resultType Result) (*Record, error) {
	record := m.RecordFromSnapshot(nickname, snap, resultType)

	if err := m.store.SaveRecord(ctx, record); err != nil {
		return nil, err
	}

	m.logger.Info().
		Str("nickname", record.Nickname).
		Float64("return_rate", record.ReturnRate).
		Str("grade", record.Grade()).
		Str("result", string(record.ResultType)).
		Msg("Score registered")
	return record, nil
}

// IsBankrupt reports whether the snapshot's total value is below the
// bankruptcy threshold.
func IsBankrupt(snap *engine.Snapshot) bool {
	prices := make(map[string]float64, len(snap.StockPrices))
	for symbol, stock := range snap.StockPrices {
		prices[symbol] = stock.CurrentPrice
	}
	return snap.Portfolio.TotalValue(prices) < BankruptcyThreshold
}

// Leaderboard returns the top records by rank score.
func (m *Manager) Leaderboard(ctx context.Context, limit int) ([]Record, error) {
	return m.store.TopRecords(ctx, limit)
}

// PlayerRecords returns all records for one nickname.
func (m *Manager) PlayerRecords(ctx context.Context, nickname string) ([]Record, error) {
	return m.store.RecordsByNickname(ctx, nickname)
}
