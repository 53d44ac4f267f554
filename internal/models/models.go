// Package models provides domain models for the paper trading ledger.
package models

import (
	"time"
)

// TransactionType represents the side of a transaction.
type TransactionType string

const (
	TransactionBuy  TransactionType = "BUY"
	TransactionSell TransactionType = "SELL"
)

// OrderType represents the pricing mode of an order.
type OrderType string

const (
	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"
)

// Stock represents the last known quote for a symbol. Entries are
// upserted into the engine's price cache and never deleted.
type Stock struct {
	Symbol       string    `json:"symbol"`
	CurrentPrice float64   `json:"current_price"`
	LastUpdated  time.Time `json:"last_updated"`
	CompanyName  string    `json:"company_name"`
}

// UpdatePrice records a fresh quote and bumps the update timestamp.
func (s *Stock) UpdatePrice(price float64) {
	s.CurrentPrice = price
	s.LastUpdated = time.Now()
}

// Clone returns a copy of the stock.
func (s *Stock) Clone() *Stock {
	c := *s
	return &c
}
