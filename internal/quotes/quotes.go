// Package quotes defines the price source collaborator consumed by the
// data manager, plus decorators and test doubles. Real market-data
// integrations implement PriceSource behind this package's contract.
package quotes

import (
	"context"
	"time"
)

// Quote is a single price observation for a symbol.
type Quote struct {
	Symbol      string
	CompanyName string
	Price       float64
	Timestamp   time.Time
}

// PriceSource provides quotes for symbols. Implementations distinguish a
// symbol that does not exist (errors.ErrSymbolNotFound) from a transient
// provider failure (errors.ErrQuoteUnavailable); callers skip the symbol
// either way and keep their last known price.
type PriceSource interface {
	GetQuote(ctx context.Context, symbol string) (*Quote, error)
}

// SourceFunc adapts a function to the PriceSource interface.
type SourceFunc func(ctx context.Context, symbol string) (*Quote, error)

// GetQuote implements PriceSource.
func (f SourceFunc) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	return f(ctx, symbol)
}
