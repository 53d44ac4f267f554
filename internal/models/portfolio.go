package models

// DefaultInitialBalance is the starting cash for a fresh portfolio.
const DefaultInitialBalance = 100000.0

// Portfolio holds the full account state: cash, open positions, and the
// append-only transaction log. InitialBalance is the P&L baseline and only
// changes on Reset.
type Portfolio struct {
	CashBalance    float64              `json:"cash_balance"`
	InitialBalance float64              `json:"initial_balance"`
	Positions      map[string]*Position `json:"positions"`
	Transactions   []*Transaction       `json:"transactions"`
}

// NewPortfolio creates a portfolio with the given starting cash.
func NewPortfolio(initialBalance float64) *Portfolio {
	return &Portfolio{
		CashBalance:    initialBalance,
		InitialBalance: initialBalance,
		Positions:      make(map[string]*Position),
		Transactions:   make([]*Transaction, 0),
	}
}

// TotalInvested returns the sum of invested capital across all positions.
func (p *Portfolio) TotalInvested() float64 {
	var total float64
	for _, pos := range p.Positions {
		total += pos.TotalInvested
	}
	return total
}

// TotalValue returns cash plus the market value of every position with a
// known price. Positions with no price in the map are excluded from the
// sum rather than assumed zero.
func (p *Portfolio) TotalValue(prices map[string]float64) float64 {
	total := p.CashBalance
	for symbol, pos := range p.Positions {
		if price, ok := prices[symbol]; ok {
			total += pos.CurrentValue(price)
		}
	}
	return total
}

// TotalPnL returns total value minus the initial balance.
func (p *Portfolio) TotalPnL(prices map[string]float64) float64 {
	return p.TotalValue(prices) - p.InitialBalance
}

// TotalPnLPercent returns the total P&L as a percentage of the initial balance.
func (p *Portfolio) TotalPnLPercent(prices map[string]float64) float64 {
	if p.InitialBalance == 0 {
		return 0
	}
	return p.TotalPnL(prices) / p.InitialBalance * 100
}

// AddPosition creates or blends a position from a buy.
func (p *Portfolio) AddPosition(symbol string, quantity int, price float64) {
	if pos, ok := p.Positions[symbol]; ok {
		pos.AddShares(quantity, price)
		return
	}
	p.Positions[symbol] = NewPosition(symbol, quantity, price)
}

// RemovePosition reduces a position by a sell, deleting it when the
// quantity reaches zero. Returns false if the symbol is not held or too
// few shares are held.
func (p *Portfolio) RemovePosition(symbol string, quantity int) bool {
	pos, ok := p.Positions[symbol]
	if !ok {
		return false
	}

	if !pos.RemoveShares(quantity) {
		return false
	}
	if pos.Quantity == 0 {
		delete(p.Positions, symbol)
	}
	return true
}

// Reset discards all positions and transactions and sets both balances to
// the given starting amount.
func (p *Portfolio) Reset(initialBalance float64) {
	p.CashBalance = initialBalance
	p.InitialBalance = initialBalance
	p.Positions = make(map[string]*Position)
	p.Transactions = make([]*Transaction, 0)
}

// Clone returns a deep copy of the portfolio.
func (p *Portfolio) Clone() *Portfolio {
	c := &Portfolio{
		CashBalance:    p.CashBalance,
		InitialBalance: p.InitialBalance,
		Positions:      make(map[string]*Position, len(p.Positions)),
		Transactions:   make([]*Transaction, len(p.Transactions)),
	}
	for symbol, pos := range p.Positions {
		c.Positions[symbol] = pos.Clone()
	}
	for i, tx := range p.Transactions {
		txCopy := *tx
		c.Transactions[i] = &txCopy
	}
	return c
}
