// Package datamanager composes the trading engine, a price source, and a
// watchlist, keeps watched prices fresh on a timer, and persists engine
// state to disk.
package datamanager

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"paper-trader/internal/engine"
	"paper-trader/internal/models"
	"paper-trader/internal/quotes"
)

// DefaultRefreshInterval is how often watched prices are refreshed when
// auto refresh is running.
const DefaultRefreshInterval = 20 * time.Second

// Config holds data manager configuration.
type Config struct {
	DataFile        string
	InitialBalance  float64
	RefreshInterval time.Duration
}

// Manager owns one engine instance, the watchlist, and the persistence
// file. Only the manager starts or stops the background refresh task;
// only the engine mutates portfolio and price-cache state.
type Manager struct {
	engine *engine.Engine
	source quotes.PriceSource
	logger zerolog.Logger

	dataFile string
	interval time.Duration

	mu      sync.Mutex
	watched map[string]struct{}

	refreshCancel context.CancelFunc
	refreshDone   chan struct{}
}

// New creates a manager and loads previously saved state. A missing data
// file is a fresh start, not an error; an unreadable one is logged and
// degraded to a default portfolio.
func New(cfg Config, source quotes.PriceSource, logger zerolog.Logger) *Manager {
	interval := cfg.RefreshInterval
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}

	m := &Manager{
		engine:   engine.New(cfg.InitialBalance),
		source:   source,
		logger:   logger,
		dataFile: cfg.DataFile,
		interval: interval,
		watched:  make(map[string]struct{}),
	}

	if err := m.LoadData(); err != nil {
		m.logger.Warn().Err(err).Str("file", m.dataFile).
			Msg("Failed to load saved state, starting with a default portfolio")
	}
	return m
}

// Engine returns the trading engine owned by this manager.
func (m *Manager) Engine() *engine.Engine {
	return m.engine
}

// AddWatchedStock adds a symbol to the watchlist and refreshes its price
// immediately.
func (m *Manager) AddWatchedStock(ctx context.Context, symbol string) {
	symbol = strings.ToUpper(symbol)

	m.mu.Lock()
	m.watched[symbol] = struct{}{}
	m.mu.Unlock()

	if err := m.RefreshStockPrice(ctx, symbol); err != nil {
		m.logger.Warn().Err(err).Str("symbol", symbol).Msg("Initial refresh failed")
	}
}

// RemoveWatchedStock removes a symbol from the watchlist. Its cached
// price is kept.
func (m *Manager) RemoveWatchedStock(symbol string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.watched, strings.ToUpper(symbol))
}

// WatchedStocks returns the watchlist, sorted.
func (m *Manager) WatchedStocks() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	symbols := make([]string, 0, len(m.watched))
	for symbol := range m.watched {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

// SearchStock looks up a symbol via the price source without touching the
// watchlist.
func (m *Manager) SearchStock(ctx context.Context, symbol string) (*quotes.Quote, error) {
	return m.source.GetQuote(ctx, strings.ToUpper(symbol))
}

// RefreshStockPrice fetches one quote and forwards it to the engine's
// price cache. On failure the stale cached price is left untouched.
func (m *Manager) RefreshStockPrice(ctx context.Context, symbol string) error {
	symbol = strings.ToUpper(symbol)

	quote, err := m.source.GetQuote(ctx, symbol)
	if err != nil {
		m.logger.Warn().Err(err).Str("symbol", symbol).
			Msg("Price refresh failed, keeping last known price")
		return err
	}

	m.engine.UpdateStockPrice(symbol, quote.Price, quote.CompanyName)
	m.logger.Debug().Str("symbol", symbol).Float64("price", quote.Price).Msg("Price refreshed")
	return nil
}

// RefreshAllWatchedStocks refreshes every watched symbol in turn. One
// symbol's failure does not abort the others.
func (m *Manager) RefreshAllWatchedStocks(ctx context.Context) {
	for _, symbol := range m.WatchedStocks() {
		if ctx.Err() != nil {
			return
		}
		// Errors are already logged per symbol.
		_ = m.RefreshStockPrice(ctx, symbol)
	}
}

// StartAutoRefresh starts the background refresh task. Each cycle
// refreshes all watched symbols and persists state. Starting twice is a
// no-op.
func (m *Manager) StartAutoRefresh(interval time.Duration) {
	m.mu.Lock()
	if m.refreshCancel != nil {
		m.mu.Unlock()
		return
	}
	if interval <= 0 {
		interval = m.interval
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	m.refreshCancel = cancel
	m.refreshDone = done
	m.mu.Unlock()

	m.logger.Info().Dur("interval", interval).Msg("Auto refresh started")

	go m.autoRefreshLoop(ctx, interval, done)
}

func (m *Manager) autoRefreshLoop(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// First cycle runs immediately, then on the timer.
	m.runRefreshCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.runRefreshCycle(ctx)
		}
	}
}

func (m *Manager) runRefreshCycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	m.RefreshAllWatchedStocks(ctx)

	if err := m.SaveData(); err != nil {
		m.logger.Error().Err(err).Msg("Periodic save failed")
	}
}

// StopAutoRefresh cancels the background task and waits for any in-flight
// refresh cycle to finish. Stopping when not running is a no-op.
func (m *Manager) StopAutoRefresh() {
	m.mu.Lock()
	cancel := m.refreshCancel
	done := m.refreshDone
	m.refreshCancel = nil
	m.refreshDone = nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	m.logger.Info().Msg("Auto refresh stopped")
}

// PlaceOrder executes an order through the engine and persists state on
// success. A save failure is logged, not surfaced; the executed order
// stands.
func (m *Manager) PlaceOrder(order *models.OrderRequest) (*models.Transaction, error) {
	tx, err := m.engine.ExecuteOrder(order)
	if err != nil {
		return nil, err
	}

	m.logger.Info().
		Str("event", "trade").
		Str("symbol", tx.Symbol).
		Str("side", string(tx.TransactionType)).
		Int("quantity", tx.Quantity).
		Float64("price", tx.Price).
		Msg("Order executed")

	if err := m.SaveData(); err != nil {
		m.logger.Error().Err(err).Msg("Save after order failed")
	}
	return tx, nil
}

// ResetPortfolio resets the engine's portfolio and persists immediately.
func (m *Manager) ResetPortfolio(initialBalance float64) error {
	m.engine.Reset(initialBalance)
	m.logger.Info().Float64("balance", initialBalance).Msg("Portfolio reset")
	return m.SaveData()
}

// Close stops the background task, then saves synchronously.
func (m *Manager) Close() error {
	m.StopAutoRefresh()
	return m.SaveData()
}
