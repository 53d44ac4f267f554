package models

import (
	"paper-trader/internal/errors"
)

// OrderRequest is the ephemeral input to one order execution. Price is
// required only for LIMIT orders; MARKET orders resolve the price from
// the engine's cache at execution time.
type OrderRequest struct {
	Symbol          string
	TransactionType TransactionType
	OrderType       OrderType
	Quantity        int
	Price           float64
}

// Validate checks the request's structural constraints.
func (o *OrderRequest) Validate() error {
	if o.Symbol == "" {
		return errors.NewValidationError("symbol", o.Symbol, "symbol is required")
	}
	if o.TransactionType != TransactionBuy && o.TransactionType != TransactionSell {
		return errors.NewValidationError("transaction_type", o.TransactionType, "must be BUY or SELL")
	}
	if o.OrderType != OrderTypeMarket && o.OrderType != OrderTypeLimit {
		return errors.NewValidationError("order_type", o.OrderType, "must be MARKET or LIMIT")
	}
	if o.Quantity <= 0 {
		return errors.NewValidationError("quantity", o.Quantity, "must be positive")
	}
	if o.OrderType == OrderTypeLimit && o.Price <= 0 {
		return errors.NewValidationError("price", o.Price, "limit orders require a positive price")
	}
	return nil
}
