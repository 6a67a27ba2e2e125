package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/memory-map/internal/observability"
)

// Chain tries sources strictly in order and returns the first success.
type Chain struct {
	sources []Source
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewChain creates a chain over sources in priority order.
func NewChain(logger *slog.Logger, metrics *observability.Metrics, sources ...Source) *Chain {
	return &Chain{sources: sources, logger: logger, metrics: metrics}
}

// Fetch runs each source in turn. A later source is started only after the
// previous one has failed. When every source fails the returned error wraps
// ErrExhausted and each attempt's error.
func (c *Chain) Fetch(ctx context.Context) (Result, error) {
	var errs []error
	for _, src := range c.sources {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		c.logger.Info("fetching data", "source", src.Name())
		rows, err := src.Fetch(ctx)
		if err != nil {
			c.metrics.SourceAttempts.WithLabelValues(src.Name(), outcome(err)).Inc()
			c.logger.Warn("data source failed, falling through",
				"source", src.Name(),
				"error", err,
			)
			errs = append(errs, err)
			continue
		}

		c.metrics.SourceAttempts.WithLabelValues(src.Name(), "success").Inc()
		c.logger.Info("data source loaded", "source", src.Name(), "rows", len(rows))
		return Result{Source: src.Name(), Rows: rows}, nil
	}

	if len(errs) == 0 {
		return Result{}, fmt.Errorf("%w: no sources configured", ErrExhausted)
	}
	return Result{}, fmt.Errorf("%w: %w", ErrExhausted, errors.Join(errs...))
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrFormat):
		return "format_error"
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	default:
		return "transport_error"
	}
}
