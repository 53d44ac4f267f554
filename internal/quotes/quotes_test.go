package quotes

import (
	"context"
	"testing"
	"time"

	"paper-trader/internal/errors"
	"paper-trader/pkg/utils"
)

func fastRetry(attempts int) utils.RetryConfig {
	return utils.RetryConfig{
		MaxAttempts:   attempts,
		InitialDelay:  time.Millisecond,
		MaxDelay:      time.Millisecond,
		BackoffFactor: 1.0,
	}
}

func TestStaticSource(t *testing.T) {
	src := NewStaticSource(Quote{Symbol: "AAPL", Price: 150, CompanyName: "Apple Inc."})

	q, err := src.GetQuote(context.Background(), "aapl")
	if err != nil {
		t.Fatalf("GetQuote: %v", err)
	}
	if q.Price != 150 || q.Symbol != "AAPL" {
		t.Errorf("quote = %+v", q)
	}

	_, err = src.GetQuote(context.Background(), "GHOST")
	if !errors.Is(err, errors.ErrSymbolNotFound) {
		t.Errorf("expected ErrSymbolNotFound, got %v", err)
	}
}

func TestRetryingSourceRetriesTransientFailures(t *testing.T) {
	calls := 0
	flaky := SourceFunc(func(ctx context.Context, symbol string) (*Quote, error) {
		calls++
		if calls < 3 {
			return nil, errors.ErrQuoteUnavailable
		}
		return &Quote{Symbol: symbol, Price: 42}, nil
	})

	src := NewRetryingSource(flaky, fastRetry(5))

	q, err := src.GetQuote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("GetQuote: %v", err)
	}
	if q.Price != 42 {
		t.Errorf("price = %f, want 42", q.Price)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryingSourceDoesNotRetryUnknownSymbols(t *testing.T) {
	calls := 0
	src := NewRetryingSource(SourceFunc(func(ctx context.Context, symbol string) (*Quote, error) {
		calls++
		return nil, errors.Wrapf(errors.ErrSymbolNotFound, "no quote for %s", symbol)
	}), fastRetry(5))

	_, err := src.GetQuote(context.Background(), "GHOST")
	if !errors.Is(err, errors.ErrSymbolNotFound) {
		t.Fatalf("expected ErrSymbolNotFound, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (unknown symbols are not transient)", calls)
	}
}

func TestRetryingSourceGivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	src := NewRetryingSource(SourceFunc(func(ctx context.Context, symbol string) (*Quote, error) {
		calls++
		return nil, errors.ErrQuoteUnavailable
	}), fastRetry(3))

	_, err := src.GetQuote(context.Background(), "AAPL")
	if !errors.Is(err, errors.ErrQuoteUnavailable) {
		t.Fatalf("expected ErrQuoteUnavailable, got %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}
