// Package engine implements the order-execution engine for the paper
// trading ledger. The engine owns the single live portfolio and the price
// cache; all access goes through its methods.
package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"paper-trader/internal/errors"
	"paper-trader/internal/models"
)

// Fee schedule. Commission applies to both sides with a fixed floor; the
// transaction tax applies only to sell proceeds.
const (
	CommissionRate = 0.00015
	MinCommission  = 100.0
	TaxRate        = 0.0025
)

// Engine validates and executes orders against one portfolio. Execution
// is all-or-nothing: a rejected order leaves the portfolio untouched.
type Engine struct {
	portfolio   *models.Portfolio
	stockPrices map[string]*models.Stock

	mu sync.RWMutex
}

// New creates an engine with a fresh portfolio.
func New(initialBalance float64) *Engine {
	if initialBalance <= 0 {
		initialBalance = models.DefaultInitialBalance
	}
	return &Engine{
		portfolio:   models.NewPortfolio(initialBalance),
		stockPrices: make(map[string]*models.Stock),
	}
}

// UpdateStockPrice upserts a price cache entry and bumps its timestamp.
func (e *Engine) UpdateStockPrice(symbol string, price float64, companyName string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if stock, ok := e.stockPrices[symbol]; ok {
		stock.UpdatePrice(price)
		if companyName != "" {
			stock.CompanyName = companyName
		}
		return
	}
	e.stockPrices[symbol] = &models.Stock{
		Symbol:       symbol,
		CurrentPrice: price,
		LastUpdated:  time.Now(),
		CompanyName:  companyName,
	}
}

// StockPrice returns the cached price for a symbol.
func (e *Engine) StockPrice(symbol string) (float64, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	stock, ok := e.stockPrices[symbol]
	if !ok {
		return 0, false
	}
	return stock.CurrentPrice, true
}

// Stock returns a copy of the cached quote for a symbol.
func (e *Engine) Stock(symbol string) (*models.Stock, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	stock, ok := e.stockPrices[symbol]
	if !ok {
		return nil, false
	}
	return stock.Clone(), true
}

// CalculateCommission returns the commission for a trade value.
func (e *Engine) CalculateCommission(amount float64) float64 {
	commission := amount * CommissionRate
	if commission < MinCommission {
		return MinCommission
	}
	return commission
}

// CalculateTax returns the transaction tax for a trade value. Tax applies
// only to sells.
func (e *Engine) CalculateTax(amount float64, isSell bool) float64 {
	if isSell {
		return amount * TaxRate
	}
	return 0
}

// OrderCost is a pre-trade cost estimate.
type OrderCost struct {
	TotalCost  float64
	NetAmount  float64
	Commission float64
	Tax        float64
}

// CalculateOrderCost estimates the cost of an order before placing it.
// Tax is always reported as zero here: the sell tax is charged only at
// execution time, inside ExecuteOrder.
func (e *Engine) CalculateOrderCost(symbol string, quantity int, orderType models.OrderType, limitPrice float64) (*OrderCost, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.orderCostLocked(symbol, quantity, orderType, limitPrice)
}

func (e *Engine) orderCostLocked(symbol string, quantity int, orderType models.OrderType, limitPrice float64) (*OrderCost, error) {
	price, err := e.resolvePriceLocked(symbol, orderType, limitPrice)
	if err != nil {
		return nil, err
	}

	netAmount := float64(quantity) * price
	commission := e.CalculateCommission(netAmount)

	return &OrderCost{
		TotalCost:  netAmount + commission,
		NetAmount:  netAmount,
		Commission: commission,
		Tax:        0,
	}, nil
}

// resolvePriceLocked determines the execution price: the live cache for
// MARKET orders, the caller-supplied price verbatim for LIMIT orders.
func (e *Engine) resolvePriceLocked(symbol string, orderType models.OrderType, limitPrice float64) (float64, error) {
	if orderType == models.OrderTypeMarket {
		stock, ok := e.stockPrices[symbol]
		if !ok {
			return 0, errors.Wrapf(errors.ErrPriceUnavailable, "no price for %s", symbol)
		}
		return stock.CurrentPrice, nil
	}
	if limitPrice <= 0 {
		return 0, errors.Wrap(errors.ErrInvalidOrder, "limit orders require a positive price")
	}
	return limitPrice, nil
}

// CanExecuteOrder reports whether an order would execute, without any
// side effects. A nil return means the order is executable.
func (e *Engine) CanExecuteOrder(order *models.OrderRequest) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.canExecuteLocked(order)
}

func (e *Engine) canExecuteLocked(order *models.OrderRequest) error {
	if err := order.Validate(); err != nil {
		return err
	}

	// Every order needs price information on file for its symbol. A
	// LIMIT order trades at its own price, but an unknown symbol is
	// still rejected.
	if _, ok := e.stockPrices[order.Symbol]; !ok {
		return errors.NewOrderError(order.Symbol, string(order.TransactionType),
			fmt.Sprintf("no price information available for %s", order.Symbol),
			errors.ErrPriceUnavailable)
	}
	if _, err := e.resolvePriceLocked(order.Symbol, order.OrderType, order.Price); err != nil {
		return err
	}

	if order.TransactionType == models.TransactionBuy {
		return e.canBuyLocked(order)
	}
	return e.canSellLocked(order)
}

func (e *Engine) canBuyLocked(order *models.OrderRequest) error {
	cost, err := e.orderCostLocked(order.Symbol, order.Quantity, order.OrderType, order.Price)
	if err != nil {
		return err
	}

	if e.portfolio.CashBalance < cost.TotalCost {
		return errors.NewOrderError(order.Symbol, "BUY",
			fmt.Sprintf("required %.2f, available %.2f", cost.TotalCost, e.portfolio.CashBalance),
			errors.ErrInsufficientFunds)
	}
	return nil
}

func (e *Engine) canSellLocked(order *models.OrderRequest) error {
	pos, ok := e.portfolio.Positions[order.Symbol]
	if !ok {
		return errors.NewOrderError(order.Symbol, "SELL",
			fmt.Sprintf("no position in %s", order.Symbol),
			errors.ErrInsufficientShares)
	}
	if pos.Quantity < order.Quantity {
		return errors.NewOrderError(order.Symbol, "SELL",
			fmt.Sprintf("owned %d, requested %d", pos.Quantity, order.Quantity),
			errors.ErrInsufficientShares)
	}
	return nil
}

// ExecuteOrder validates and executes an order atomically. On success it
// debits or credits cash, mutates the position map, and appends exactly
// one transaction. On failure nothing is mutated.
func (e *Engine) ExecuteOrder(order *models.OrderRequest) (*models.Transaction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.canExecuteLocked(order); err != nil {
		return nil, err
	}

	if order.TransactionType == models.TransactionBuy {
		return e.executeBuyLocked(order)
	}
	return e.executeSellLocked(order)
}

func (e *Engine) executeBuyLocked(order *models.OrderRequest) (*models.Transaction, error) {
	price, err := e.resolvePriceLocked(order.Symbol, order.OrderType, order.Price)
	if err != nil {
		return nil, err
	}

	cost, err := e.orderCostLocked(order.Symbol, order.Quantity, order.OrderType, order.Price)
	if err != nil {
		return nil, err
	}

	e.portfolio.CashBalance -= cost.TotalCost
	e.portfolio.AddPosition(order.Symbol, order.Quantity, price)

	tx := e.recordTransactionLocked(order, price, cost.Commission, 0, cost.TotalCost)
	return tx, nil
}

func (e *Engine) executeSellLocked(order *models.OrderRequest) (*models.Transaction, error) {
	price, err := e.resolvePriceLocked(order.Symbol, order.OrderType, order.Price)
	if err != nil {
		return nil, err
	}

	netAmount := float64(order.Quantity) * price
	commission := e.CalculateCommission(netAmount)
	tax := e.CalculateTax(netAmount, true)
	proceeds := netAmount - commission - tax

	if !e.portfolio.RemovePosition(order.Symbol, order.Quantity) {
		return nil, errors.NewOrderError(order.Symbol, "SELL", "position update failed", errors.ErrInsufficientShares)
	}
	e.portfolio.CashBalance += proceeds

	tx := e.recordTransactionLocked(order, price, commission, tax, proceeds)
	return tx, nil
}

func (e *Engine) recordTransactionLocked(order *models.OrderRequest, price, commission, tax, totalAmount float64) *models.Transaction {
	tx := &models.Transaction{
		ID:              uuid.New().String(),
		Timestamp:       time.Now(),
		Symbol:          order.Symbol,
		TransactionType: order.TransactionType,
		OrderType:       order.OrderType,
		Quantity:        order.Quantity,
		Price:           price,
		Commission:      commission,
		Tax:             tax,
		TotalAmount:     totalAmount,
	}
	e.portfolio.Transactions = append(e.portfolio.Transactions, tx)
	return tx
}

// Reset discards all positions and transactions and restarts the
// portfolio with the given balance. The price cache is kept.
func (e *Engine) Reset(initialBalance float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if initialBalance <= 0 {
		initialBalance = models.DefaultInitialBalance
	}
	e.portfolio.Reset(initialBalance)
}

// Snapshot holds a consistent deep copy of the engine state.
type Snapshot struct {
	Portfolio   *models.Portfolio
	StockPrices map[string]*models.Stock
}

// Snapshot returns a deep copy of the portfolio and price cache taken
// under the engine lock.
func (e *Engine) Snapshot() *Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	prices := make(map[string]*models.Stock, len(e.stockPrices))
	for symbol, stock := range e.stockPrices {
		prices[symbol] = stock.Clone()
	}
	return &Snapshot{
		Portfolio:   e.portfolio.Clone(),
		StockPrices: prices,
	}
}

// Restore replaces the engine state with a previously saved snapshot.
func (e *Engine) Restore(snap *Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if snap.Portfolio != nil {
		portfolio := snap.Portfolio.Clone()
		if portfolio.Positions == nil {
			portfolio.Positions = make(map[string]*models.Position)
		}
		if portfolio.Transactions == nil {
			portfolio.Transactions = make([]*models.Transaction, 0)
		}
		e.portfolio = portfolio
	}
	if snap.StockPrices != nil {
		prices := make(map[string]*models.Stock, len(snap.StockPrices))
		for symbol, stock := range snap.StockPrices {
			prices[symbol] = stock.Clone()
		}
		e.stockPrices = prices
	}
}
