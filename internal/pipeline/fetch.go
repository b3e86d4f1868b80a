package pipeline

import (
	"context"
	"log/slog"

	"github.com/wireman27/bengaluru-ofc-data/internal/domain"
	"github.com/wireman27/bengaluru-ofc-data/internal/observability"
)

// OFCSource fetches the raw permit payload of one ward.
type OFCSource interface {
	OFCData(ctx context.Context, zoneID, wardID string) ([]byte, error)
}

// RawSink persists per-ward payloads and the operational fetch log.
type RawSink interface {
	SaveWard(wardID string, body []byte) (string, error)
	LogAttempt(wardID string) error
	LogSaved(wardID, path string) error
}

// Fetcher is the raw-data stage: one GetOFCData call per ward, each response
// body persisted verbatim, error pages included. Transport failures skip the
// ward and keep going; this stage runs unattended for a long time and a
// single dead ward should not cost the rest.
type Fetcher struct {
	source  OFCSource
	sink    RawSink
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewFetcher creates a Fetcher over the given source and sink.
func NewFetcher(source OFCSource, sink RawSink, logger *slog.Logger, metrics *observability.Metrics) *Fetcher {
	return &Fetcher{source: source, sink: sink, logger: logger, metrics: metrics}
}

// FetchAll fetches and persists every ward in order.
func (f *Fetcher) FetchAll(ctx context.Context, wards []domain.Ward) error {
	for _, w := range wards {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := f.sink.LogAttempt(w.WardID); err != nil {
			f.logger.Warn("fetch log write failed", "ward_id", w.WardID, "error", err)
		}
		f.metrics.FetchAttempts.Inc()

		body, err := f.source.OFCData(ctx, w.ZoneID, w.WardID)
		if err != nil {
			f.metrics.FetchFailures.Inc()
			f.logger.Warn("ward fetch failed", "ward_id", w.WardID, "error", err)
			continue
		}

		path, err := f.sink.SaveWard(w.WardID, body)
		if err != nil {
			// Disk trouble is not per-ward noise; stop here.
			return err
		}
		if err := f.sink.LogSaved(w.WardID, path); err != nil {
			f.logger.Warn("fetch log write failed", "ward_id", w.WardID, "error", err)
		}
	}
	return nil
}
