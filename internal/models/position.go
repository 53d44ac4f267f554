package models

// Position represents an aggregated holding of one symbol with a single
// blended average cost. TotalInvested always equals Quantity * AveragePrice.
type Position struct {
	Symbol        string  `json:"symbol"`
	Quantity      int     `json:"quantity"`
	AveragePrice  float64 `json:"average_price"`
	TotalInvested float64 `json:"total_invested"`
}

// NewPosition creates a position from a first buy.
func NewPosition(symbol string, quantity int, price float64) *Position {
	return &Position{
		Symbol:        symbol,
		Quantity:      quantity,
		AveragePrice:  price,
		TotalInvested: float64(quantity) * price,
	}
}

// AddShares blends a buy into the position, recomputing the
// quantity-weighted average price.
func (p *Position) AddShares(quantity int, price float64) {
	newInvested := p.TotalInvested + float64(quantity)*price
	newQuantity := p.Quantity + quantity
	p.AveragePrice = newInvested / float64(newQuantity)
	p.Quantity = newQuantity
	p.TotalInvested = newInvested
}

// RemoveShares reduces the position by a sell. The average price is
// unchanged by a sell; realized P&L is derived, not stored. Returns false
// when more shares are requested than held.
func (p *Position) RemoveShares(quantity int) bool {
	if quantity > p.Quantity {
		return false
	}

	p.Quantity -= quantity
	if p.Quantity == 0 {
		p.TotalInvested = 0
		p.AveragePrice = 0
	} else {
		p.TotalInvested = float64(p.Quantity) * p.AveragePrice
	}
	return true
}

// CurrentValue returns the market value of the position at the given price.
func (p *Position) CurrentValue(currentPrice float64) float64 {
	return float64(p.Quantity) * currentPrice
}

// PnL returns the unrealized profit or loss at the given price.
func (p *Position) PnL(currentPrice float64) float64 {
	return p.CurrentValue(currentPrice) - p.TotalInvested
}

// PnLPercent returns the unrealized P&L as a percentage of invested capital.
func (p *Position) PnLPercent(currentPrice float64) float64 {
	if p.TotalInvested == 0 {
		return 0
	}
	return p.PnL(currentPrice) / p.TotalInvested * 100
}

// Clone returns a copy of the position.
func (p *Position) Clone() *Position {
	c := *p
	return &c
}
