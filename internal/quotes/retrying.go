package quotes

import (
	"context"

	"paper-trader/internal/errors"
	"paper-trader/pkg/utils"
)

// RetryingSource decorates a PriceSource with exponential-backoff retries
// for transient failures. Retry policy lives here, on the collaborator
// side; the engine and data manager never retry.
type RetryingSource struct {
	source PriceSource
	cfg    utils.RetryConfig
}

// NewRetryingSource wraps a source with the given retry configuration.
func NewRetryingSource(source PriceSource, cfg utils.RetryConfig) *RetryingSource {
	if cfg.MaxAttempts <= 0 {
		cfg = utils.DefaultRetryConfig()
	}
	return &RetryingSource{source: source, cfg: cfg}
}

// GetQuote implements PriceSource. Unknown symbols fail immediately;
// transient failures are retried with backoff.
func (r *RetryingSource) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	var notFound error

	quote, err := utils.RetryWithResult(ctx, r.cfg, func() (*Quote, error) {
		q, err := r.source.GetQuote(ctx, symbol)
		if err != nil && errors.Is(err, errors.ErrSymbolNotFound) {
			// An unknown symbol is not transient; report success to stop
			// the retry loop and surface the error afterwards.
			notFound = err
			return nil, nil
		}
		return q, err
	})
	if notFound != nil {
		return nil, notFound
	}
	return quote, err
}

var _ PriceSource = (*RetryingSource)(nil)
