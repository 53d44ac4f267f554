package quotes

import (
	"context"
	"strings"
	"sync"
	"time"

	"paper-trader/internal/errors"
)

// StaticSource serves quotes from a fixed in-memory table. It backs
// offline paper sessions and tests.
type StaticSource struct {
	mu     sync.RWMutex
	quotes map[string]Quote
}

// NewStaticSource creates a source seeded with the given quotes.
func NewStaticSource(seed ...Quote) *StaticSource {
	s := &StaticSource{quotes: make(map[string]Quote, len(seed))}
	for _, q := range seed {
		s.Set(q.Symbol, q.Price, q.CompanyName)
	}
	return s
}

// Set adds or replaces the quote for a symbol.
func (s *StaticSource) Set(symbol string, price float64, companyName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	symbol = strings.ToUpper(symbol)
	s.quotes[symbol] = Quote{
		Symbol:      symbol,
		CompanyName: companyName,
		Price:       price,
		Timestamp:   time.Now(),
	}
}

// GetQuote implements PriceSource.
func (s *StaticSource) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.quotes[strings.ToUpper(symbol)]
	if !ok {
		return nil, errors.Wrapf(errors.ErrSymbolNotFound, "no quote for %s", symbol)
	}
	q.Timestamp = time.Now()
	return &q, nil
}

var _ PriceSource = (*StaticSource)(nil)
