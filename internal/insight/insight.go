// Package insight builds the deduplicated views, derived outputs, and the
// spread animation from the consolidated feature collection.
package insight

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jszwec/csvutil"
	"github.com/paulmach/orb/geojson"

	"github.com/wireman27/bengaluru-ofc-data/internal/collector"
	"github.com/wireman27/bengaluru-ofc-data/internal/config"
	"github.com/wireman27/bengaluru-ofc-data/internal/domain"
	"github.com/wireman27/bengaluru-ofc-data/internal/observability"
)

// Cleaner is the cleaning and aggregation stage.
type Cleaner struct {
	domains map[string]string
	logger  *slog.Logger
	metrics *observability.Metrics

	segmentsCSVPath string
	spreadPath      string
	animationPath   string
	frameBounds     config.Bounds
	frameDelay      int // GIF delay in hundredths of a second
}

// NewCleaner creates the stage from configuration.
func NewCleaner(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Cleaner {
	return &Cleaner{
		domains:         cfg.OperatorDomains,
		logger:          logger,
		metrics:         metrics,
		segmentsCSVPath: cfg.SegmentsCSVPath,
		spreadPath:      cfg.SpreadPath,
		animationPath:   cfg.AnimationPath,
		frameBounds:     cfg.FrameBounds,
		frameDelay:      int(cfg.FrameDelay.Seconds() * 100),
	}
}

// Run loads the consolidated collection, builds both views, writes the
// derived outputs, renders the spread animation, and returns the per-operator
// cable totals. A submission timestamp outside the strict format aborts the
// stage.
func (c *Cleaner) Run(ctx context.Context, collectionPath string) ([]domain.OperatorTotal, error) {
	records, err := collector.ReadCollection(collectionPath)
	if err != nil {
		return nil, err
	}

	rows, err := c.buildSegmentView(records)
	if err != nil {
		return nil, fmt.Errorf("segment view: %w", err)
	}
	totals := domain.TotalCableByOperator(rows)
	for _, t := range totals {
		c.logger.Info("total cable length", "company", t.Company, "ofc_cable_length", t.CableLength)
	}

	spread, err := c.buildSpreadView(records)
	if err != nil {
		return nil, fmt.Errorf("spread view: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := RenderSpreadGIF(spread, c.frameBounds, c.frameDelay, c.animationPath, c.logger); err != nil {
		return nil, fmt.Errorf("render animation: %w", err)
	}

	return totals, nil
}

func (c *Cleaner) buildSegmentView(records []domain.PermitRecord) ([]domain.SegmentRow, error) {
	deduped, dropped := domain.DedupeSegments(records)
	c.metrics.DuplicatesDropped.WithLabelValues("segments").Add(float64(dropped))

	rows := make([]domain.SegmentRow, 0, len(deduped))
	for _, rec := range deduped {
		row, lookup, err := domain.BuildSegmentRow(rec, c.domains)
		if err != nil {
			return nil, err
		}
		c.metrics.OperatorLookups.WithLabelValues(lookup.Outcome.String()).Inc()
		rows = append(rows, row)
	}

	anomalies := domain.CableExceedsSegment(rows)
	c.metrics.CableExceedsSegment.Add(float64(len(anomalies)))
	if len(anomalies) > 0 {
		ids := make([]string, 0, len(anomalies))
		for _, a := range anomalies {
			ids = append(ids, a.SegmentID)
		}
		c.logger.Warn("cable length exceeds segment length", "rows", len(anomalies), "segment_ids", ids)
	}

	if err := writeSegmentsCSV(rows, c.segmentsCSVPath); err != nil {
		return nil, err
	}
	c.logger.Info("segment view written", "path", c.segmentsCSVPath, "rows", len(rows), "duplicates_dropped", dropped)
	return rows, nil
}

func (c *Cleaner) buildSpreadView(records []domain.PermitRecord) ([]domain.SpreadRow, error) {
	deduped, dropped := domain.DedupeSpread(records)
	c.metrics.DuplicatesDropped.WithLabelValues("spread").Add(float64(dropped))

	rows := make([]domain.SpreadRow, 0, len(deduped))
	for _, rec := range deduped {
		row, _, err := domain.BuildSpreadRow(rec, c.domains)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	if err := writeSpreadLayer(rows, c.spreadPath); err != nil {
		return nil, err
	}
	c.logger.Info("spread view written", "path", c.spreadPath, "rows", len(rows), "duplicates_dropped", dropped)
	return rows, nil
}

func writeSegmentsCSV(rows []domain.SegmentRow, path string) error {
	data, err := csvutil.Marshal(rows)
	if err != nil {
		return fmt.Errorf("marshal segment rows: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write segment csv: %w", err)
	}
	return nil
}

// writeSpreadLayer persists the spread view as a GeoJSON layer. An absent
// company serializes as null, matching the segment CSV's empty column.
func writeSpreadLayer(rows []domain.SpreadRow, path string) error {
	fc := geojson.NewFeatureCollection()
	for _, r := range rows {
		f := geojson.NewFeature(r.Geometry)
		var company any
		if r.Company != "" {
			company = r.Company
		}
		f.Properties = geojson.Properties{
			"company":                    company,
			"street_name":                r.StreetName,
			"application_submitted_time": r.SubmittedTime,
			"segment_id":                 r.SegmentID,
		}
		fc.Append(f)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal spread layer: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write spread layer: %w", err)
	}
	return nil
}
