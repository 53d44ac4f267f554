package scoreboard

import (
	"context"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"paper-trader/internal/engine"
	"paper-trader/internal/models"
)

// memStore is an in-memory Store for tests.
type memStore struct {
	records []Record
}

func (m *memStore) SaveRecord(ctx context.Context, record *Record) error {
	m.records = append(m.records, *record)
	return nil
}

func (m *memStore) TopRecords(ctx context.Context, limit int) ([]Record, error) {
	if limit > 0 && len(m.records) > limit {
		return m.records[:limit], nil
	}
	return m.records, nil
}

func (m *memStore) RecordsByNickname(ctx context.Context, nickname string) ([]Record, error) {
	var out []Record
	for _, r := range m.records {
		if r.Nickname == nickname {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) Close() error { return nil }

func TestRankScore(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		want   float64
	}{
		{"short session, few trades", Record{ReturnRate: 10, HoldingPeriodDays: 1, TotalTrades: 2}, 10},
		{"week-long hold", Record{ReturnRate: 10, HoldingPeriodDays: 7, TotalTrades: 2}, 15},
		{"month-long hold", Record{ReturnRate: 10, HoldingPeriodDays: 30, TotalTrades: 2}, 20},
		{"long hold", Record{ReturnRate: 10, HoldingPeriodDays: 100, TotalTrades: 2}, 30},
		{"moderate trading bonus", Record{ReturnRate: 10, HoldingPeriodDays: 1, TotalTrades: 10}, 12},
		{"churning penalty", Record{ReturnRate: 10, HoldingPeriodDays: 1, TotalTrades: 60}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.record.RankScore(); got != tt.want {
				t.Errorf("RankScore() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestGrade(t *testing.T) {
	tests := []struct {
		returnRate float64
		want       string
	}{
		{55, "S+"}, {35, "S"}, {25, "A+"}, {15, "A"},
		{7, "B+"}, {0, "B"}, {-5, "C"}, {-20, "D"}, {-50, "F"},
	}
	for _, tt := range tests {
		r := Record{ReturnRate: tt.returnRate}
		if got := r.Grade(); got != tt.want {
			t.Errorf("Grade(%f) = %s, want %s", tt.returnRate, got, tt.want)
		}
	}
}

func TestRecordFromSnapshot(t *testing.T) {
	e := engine.New(100000)
	e.UpdateStockPrice("AAPL", 100, "Apple Inc.")
	e.UpdateStockPrice("MSFT", 200, "Microsoft")

	buy := func(symbol string, qty int) {
		t.Helper()
		if _, err := e.ExecuteOrder(&models.OrderRequest{
			Symbol:          symbol,
			TransactionType: models.TransactionBuy,
			OrderType:       models.OrderTypeMarket,
			Quantity:        qty,
		}); err != nil {
			t.Fatal(err)
		}
	}
	buy("AAPL", 10)
	buy("MSFT", 5)

	// AAPL rallies, MSFT drifts down.
	e.UpdateStockPrice("AAPL", 150, "")
	e.UpdateStockPrice("MSFT", 190, "")

	m := NewManager(&memStore{}, zerolog.Nop())
	record := m.RecordFromSnapshot("alice", e.Snapshot(), ResultManualSave)

	if record.Nickname != "alice" || record.ResultType != ResultManualSave {
		t.Errorf("record header = %+v", record)
	}
	if record.TotalTrades != 2 {
		t.Errorf("total trades = %d, want 2", record.TotalTrades)
	}
	if record.BestStock != "AAPL" {
		t.Errorf("best stock = %s, want AAPL", record.BestStock)
	}
	if record.HoldingPeriodDays < 1 {
		t.Errorf("holding period = %d, want at least 1", record.HoldingPeriodDays)
	}

	wantFinal := e.PortfolioSummary().TotalValue
	if math.Abs(record.FinalBalance-wantFinal) > 1e-6 {
		t.Errorf("final balance = %f, want %f", record.FinalBalance, wantFinal)
	}
	wantReturn := (wantFinal - 100000) / 100000 * 100
	if math.Abs(record.ReturnRate-wantReturn) > 1e-6 {
		t.Errorf("return rate = %f, want %f", record.ReturnRate, wantReturn)
	}
}

func TestRegisterScore(t *testing.T) {
	store := &memStore{}
	m := NewManager(store, zerolog.Nop())

	e := engine.New(100000)
	record, err := m.RegisterScore(context.Background(), "bob", e.Snapshot(), ResultReset)
	if err != nil {
		t.Fatalf("RegisterScore: %v", err)
	}
	if record.ID == "" {
		t.Error("record should get an ID")
	}
	if len(store.records) != 1 {
		t.Errorf("stored records = %d, want 1", len(store.records))
	}
}

func TestIsBankrupt(t *testing.T) {
	e := engine.New(100000)
	if IsBankrupt(e.Snapshot()) {
		t.Error("fresh portfolio is not bankrupt")
	}

	e.Reset(500)
	if !IsBankrupt(e.Snapshot()) {
		t.Error("total value below threshold should be bankrupt")
	}
}
