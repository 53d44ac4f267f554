package engine

import (
	"sort"

	"paper-trader/internal/models"
)

// PortfolioSummary is a read-only view of the whole account.
type PortfolioSummary struct {
	CashBalance     float64 `json:"cash_balance"`
	TotalInvested   float64 `json:"total_invested"`
	TotalValue      float64 `json:"total_value"`
	TotalPnL        float64 `json:"total_pnl"`
	TotalPnLPercent float64 `json:"total_pnl_percentage"`
	InitialBalance  float64 `json:"initial_balance"`
	PositionsCount  int     `json:"positions_count"`
}

// PositionSummary is a read-only per-symbol view.
type PositionSummary struct {
	Symbol        string  `json:"symbol"`
	Quantity      int     `json:"quantity"`
	AveragePrice  float64 `json:"average_price"`
	CurrentPrice  float64 `json:"current_price"`
	TotalInvested float64 `json:"total_invested"`
	CurrentValue  float64 `json:"current_value"`
	PnL           float64 `json:"pnl"`
	PnLPercent    float64 `json:"pnl_percentage"`
}

// PortfolioSummary returns account totals valued at the cached prices.
func (e *Engine) PortfolioSummary() PortfolioSummary {
	e.mu.RLock()
	defer e.mu.RUnlock()

	prices := make(map[string]float64, len(e.stockPrices))
	for symbol, stock := range e.stockPrices {
		prices[symbol] = stock.CurrentPrice
	}

	return PortfolioSummary{
		CashBalance:     e.portfolio.CashBalance,
		TotalInvested:   e.portfolio.TotalInvested(),
		TotalValue:      e.portfolio.TotalValue(prices),
		TotalPnL:        e.portfolio.TotalPnL(prices),
		TotalPnLPercent: e.portfolio.TotalPnLPercent(prices),
		InitialBalance:  e.portfolio.InitialBalance,
		PositionsCount:  len(e.portfolio.Positions),
	}
}

// PositionsSummary returns one row per held symbol, sorted by symbol.
// Symbols with no cached price are valued at their average price.
func (e *Engine) PositionsSummary() []PositionSummary {
	e.mu.RLock()
	defer e.mu.RUnlock()

	summaries := make([]PositionSummary, 0, len(e.portfolio.Positions))
	for symbol, pos := range e.portfolio.Positions {
		currentPrice := pos.AveragePrice
		if stock, ok := e.stockPrices[symbol]; ok {
			currentPrice = stock.CurrentPrice
		}

		summaries = append(summaries, PositionSummary{
			Symbol:        symbol,
			Quantity:      pos.Quantity,
			AveragePrice:  pos.AveragePrice,
			CurrentPrice:  currentPrice,
			TotalInvested: pos.TotalInvested,
			CurrentValue:  pos.CurrentValue(currentPrice),
			PnL:           pos.PnL(currentPrice),
			PnLPercent:    pos.PnLPercent(currentPrice),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Symbol < summaries[j].Symbol
	})
	return summaries
}

// RecentTransactions returns up to limit transactions, newest first.
func (e *Engine) RecentTransactions(limit int) []*models.Transaction {
	e.mu.RLock()
	defer e.mu.RUnlock()

	txs := make([]*models.Transaction, len(e.portfolio.Transactions))
	for i, tx := range e.portfolio.Transactions {
		txCopy := *tx
		txs[i] = &txCopy
	}

	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Timestamp.After(txs[j].Timestamp)
	})

	if limit > 0 && len(txs) > limit {
		txs = txs[:limit]
	}
	return txs
}
