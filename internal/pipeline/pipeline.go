package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/memory-map/internal/domain"
	"github.com/couchcryptid/memory-map/internal/observability"
	"github.com/couchcryptid/memory-map/internal/source"
)

// Extractor produces raw rows from the first source that succeeds.
type Extractor interface {
	Fetch(ctx context.Context) (source.Result, error)
}

// Transformer turns raw rows into the canonical record set.
type Transformer interface {
	Transform(ctx context.Context, rows []domain.RawRow) ([]domain.Record, domain.Report)
}

// Loader receives the canonical record set.
type Loader interface {
	Load(records []domain.Record)
}

// Summary describes a completed load.
type Summary struct {
	Source   string        `json:"source"`
	Report   domain.Report `json:"report"`
	Duration time.Duration `json:"duration"`
}

// Pipeline runs one extract-transform-load pass per data load.
type Pipeline struct {
	extractor   Extractor
	transformer Transformer
	loader      Loader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
}

// New creates a Pipeline with the given stages and observability.
func New(e Extractor, t Transformer, l Loader, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
	}
}

// CheckReadiness returns nil once a record set has been loaded.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no record set loaded yet")
	}
	return nil
}

// Run fetches, normalizes and loads the record set. On exhaustion nothing is
// loaded and the error wraps source.ErrExhausted.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	start := time.Now()

	res, err := p.extractor.Fetch(ctx)
	if err != nil {
		p.metrics.DataLoaded.Set(0)
		p.logger.Error("all data sources failed", "error", err)
		return Summary{}, fmt.Errorf("extract: %w", err)
	}

	records, report := p.transformer.Transform(ctx, res.Rows)
	p.loader.Load(records)

	p.metrics.DataLoaded.Set(1)
	p.ready.Store(true)

	summary := Summary{Source: res.Source, Report: report, Duration: time.Since(start)}
	p.logger.Info("record set loaded",
		"source", res.Source,
		"data_rows", report.DataRows,
		"admitted", report.Admitted,
		"dropped", len(report.Rejections),
		"duration", summary.Duration,
	)
	return summary, nil
}
