package models

import "time"

// Transaction is an immutable record of one executed order. TotalAmount is
// the cash paid for a BUY and the cash received for a SELL.
type Transaction struct {
	ID              string          `json:"id"`
	Timestamp       time.Time       `json:"timestamp"`
	Symbol          string          `json:"symbol"`
	TransactionType TransactionType `json:"transaction_type"`
	OrderType       OrderType       `json:"order_type"`
	Quantity        int             `json:"quantity"`
	Price           float64         `json:"price"`
	Commission      float64         `json:"commission"`
	Tax             float64         `json:"tax"`
	TotalAmount     float64         `json:"total_amount"`
}

// NetAmount returns the gross trade value, before commission and tax.
func (t *Transaction) NetAmount() float64 {
	return float64(t.Quantity) * t.Price
}
