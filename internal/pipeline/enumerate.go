package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/wireman27/bengaluru-ofc-data/internal/domain"
	"github.com/wireman27/bengaluru-ofc-data/internal/observability"
)

// WardSource fetches the ward list of one zone.
type WardSource interface {
	WardsByZone(ctx context.Context, zoneID string) ([]domain.Ward, error)
}

// Enumerator is the ward-list stage. Any zone failing aborts the whole
// enumeration; a partial ward list is useless downstream, and the stage is
// cheap to rerun.
type Enumerator struct {
	source  WardSource
	first   int
	last    int
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewEnumerator creates an Enumerator over the inclusive zone id range.
func NewEnumerator(source WardSource, first, last int, logger *slog.Logger, metrics *observability.Metrics) *Enumerator {
	return &Enumerator{source: source, first: first, last: last, logger: logger, metrics: metrics}
}

// EnumerateWards queries every configured zone and concatenates the ward rows.
func (e *Enumerator) EnumerateWards(ctx context.Context) ([]domain.Ward, error) {
	var wards []domain.Ward
	for z := e.first; z <= e.last; z++ {
		zoneID := strconv.Itoa(z)
		e.logger.Info("enumerating zone", "zone_id", zoneID)

		zoneWards, err := e.source.WardsByZone(ctx, zoneID)
		if err != nil {
			return nil, fmt.Errorf("enumerate zone %s: %w", zoneID, err)
		}

		e.metrics.ZonesEnumerated.Inc()
		e.metrics.WardsEnumerated.Add(float64(len(zoneWards)))
		wards = append(wards, zoneWards...)
	}
	return wards, nil
}
