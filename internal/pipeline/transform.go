package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/memory-map/internal/domain"
	"github.com/couchcryptid/memory-map/internal/observability"
)

// RecordTransformer implements Transformer using the domain normalization
// rules with optional place-name enrichment.
type RecordTransformer struct {
	avatars  domain.AvatarPath
	geocoder domain.Geocoder
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewTransformer creates a RecordTransformer. Pass a nil geocoder to disable
// place-name enrichment.
func NewTransformer(avatars domain.AvatarPath, geocoder domain.Geocoder, logger *slog.Logger, metrics *observability.Metrics) *RecordTransformer {
	return &RecordTransformer{
		avatars:  avatars,
		geocoder: geocoder,
		logger:   logger,
		metrics:  metrics,
	}
}

func (t *RecordTransformer) Transform(ctx context.Context, rows []domain.RawRow) ([]domain.Record, domain.Report) {
	records, report := domain.BuildRecords(rows, t.avatars)

	for _, rej := range report.Rejections {
		t.logger.Warn("row dropped",
			"id", rej.ID,
			"reason", rej.Reason,
			"detail", rej.Detail,
		)
		t.metrics.RecordsDropped.WithLabelValues(rej.Reason).Inc()
	}
	t.metrics.RecordsAdmitted.Add(float64(report.Admitted))

	if t.geocoder == nil {
		return records, report
	}
	for i := range records {
		if ctx.Err() != nil {
			break
		}
		records[i] = domain.EnrichWithPlace(ctx, records[i], t.geocoder, t.logger)
	}
	return records, report
}
