// Package collector consolidates raw per-ward files into one GeoJSON
// feature collection.
package collector

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/paulmach/orb/geojson"

	"github.com/wireman27/bengaluru-ofc-data/internal/domain"
	"github.com/wireman27/bengaluru-ofc-data/internal/observability"
)

// RawSource lists and reads per-ward raw files.
type RawSource interface {
	WardFiles() ([]string, error)
	ReadWard(name string) ([]byte, error)
}

// Result describes the outcome of parsing one raw ward file. A skipped file
// is a normal outcome; failed fetches persist error pages that will never
// parse.
type Result struct {
	File     string
	Features int
	Skipped  bool
	Reason   string
}

// Collector is the feature-collection stage.
type Collector struct {
	source  RawSource
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Collector over the given raw source.
func New(source RawSource, logger *slog.Logger, metrics *observability.Metrics) *Collector {
	return &Collector{source: source, logger: logger, metrics: metrics}
}

// Collect parses every raw ward file, in sorted name order, into one feature
// collection. Malformed files are skipped and reported in the results, never
// fatal. A ward with zero permits contributes zero features.
func (c *Collector) Collect(ctx context.Context) (*geojson.FeatureCollection, []Result, error) {
	names, err := c.source.WardFiles()
	if err != nil {
		return nil, nil, err
	}

	fc := geojson.NewFeatureCollection()
	results := make([]Result, 0, len(names))

	for _, name := range names {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		default:
		}

		res := c.collectFile(name, fc)
		if res.Skipped {
			c.metrics.RawFilesSkipped.Inc()
			c.logger.Warn("skipping raw file", "file", res.File, "reason", res.Reason)
		} else {
			c.metrics.RawFilesParsed.Inc()
			c.metrics.FeaturesCollected.Add(float64(res.Features))
			c.logger.Debug("collected raw file", "file", res.File, "features", res.Features)
		}
		results = append(results, res)
	}

	c.logger.Info("feature collection complete", "files", len(names), "features", len(fc.Features))
	return fc, results, nil
}

func (c *Collector) collectFile(name string, fc *geojson.FeatureCollection) Result {
	body, err := c.source.ReadWard(name)
	if err != nil {
		return Result{File: name, Skipped: true, Reason: fmt.Sprintf("read: %v", err)}
	}

	inner, err := domain.DecodeEnvelope(body)
	if err != nil {
		return Result{File: name, Skipped: true, Reason: err.Error()}
	}

	records, err := domain.ParsePermitRows(inner)
	if err != nil {
		return Result{File: name, Skipped: true, Reason: err.Error()}
	}

	for _, r := range records {
		fc.Append(r.Feature())
	}
	return Result{File: name, Features: len(records)}
}

// WriteCollection serializes a feature collection to path in one shot.
func WriteCollection(fc *geojson.FeatureCollection, path string) error {
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal feature collection: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write feature collection: %w", err)
	}
	return nil
}

// ReadCollection loads a feature collection and converts it back into permit
// records, preserving feature order.
func ReadCollection(path string) ([]domain.PermitRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feature collection: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse feature collection: %w", err)
	}

	records := make([]domain.PermitRecord, 0, len(fc.Features))
	for i, f := range fc.Features {
		rec, err := domain.PermitFromFeature(f)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
