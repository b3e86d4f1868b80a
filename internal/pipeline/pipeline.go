// Package pipeline sequences the four scrape stages: ward enumeration, raw
// fetch, feature collection, and cleaning. Each stage hands the next one a
// file, so stages can also be rerun individually.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/paulmach/orb/geojson"

	"github.com/wireman27/bengaluru-ofc-data/internal/collector"
	"github.com/wireman27/bengaluru-ofc-data/internal/domain"
	"github.com/wireman27/bengaluru-ofc-data/internal/observability"
)

// Stage names accepted by ParseStages.
const (
	StageWards   = "wards"
	StageFetch   = "fetch"
	StageCollect = "collect"
	StageClean   = "clean"
)

var allStages = []string{StageWards, StageFetch, StageCollect, StageClean}

// WardEnumerator produces the full ward list across the configured zones.
type WardEnumerator interface {
	EnumerateWards(ctx context.Context) ([]domain.Ward, error)
}

// RawFetcher persists one raw payload per ward.
type RawFetcher interface {
	FetchAll(ctx context.Context, wards []domain.Ward) error
}

// FeatureCollector consolidates raw files into one feature collection.
type FeatureCollector interface {
	Collect(ctx context.Context) (*geojson.FeatureCollection, []collector.Result, error)
}

// Cleaner derives the views, reports, and animation from the collection file.
type Cleaner interface {
	Run(ctx context.Context, collectionPath string) ([]domain.OperatorTotal, error)
}

// Pipeline runs the stages in order over their intermediate files.
type Pipeline struct {
	enumerator WardEnumerator
	fetcher    RawFetcher
	collector  FeatureCollector
	cleaner    Cleaner

	wardsCSVPath   string
	collectionPath string

	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Pipeline from its four stages and the intermediate file paths.
func New(
	enumerator WardEnumerator,
	fetcher RawFetcher,
	coll FeatureCollector,
	cleaner Cleaner,
	wardsCSVPath, collectionPath string,
	logger *slog.Logger,
	metrics *observability.Metrics,
) *Pipeline {
	return &Pipeline{
		enumerator:     enumerator,
		fetcher:        fetcher,
		collector:      coll,
		cleaner:        cleaner,
		wardsCSVPath:   wardsCSVPath,
		collectionPath: collectionPath,
		logger:         logger,
		metrics:        metrics,
	}
}

// ParseStages turns the -stages flag value into an ordered stage list.
// "all" expands to every stage in pipeline order.
func ParseStages(s string) ([]string, error) {
	if s == "" || s == "all" {
		return allStages, nil
	}

	known := make(map[string]bool, len(allStages))
	for _, st := range allStages {
		known[st] = true
	}

	var stages []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if !known[part] {
			return nil, fmt.Errorf("unknown stage %q (want %s or all)", part, strings.Join(allStages, ", "))
		}
		stages = append(stages, part)
	}
	return stages, nil
}

// Run executes the requested stages in the order given. The first failing
// stage aborts the run.
func (p *Pipeline) Run(ctx context.Context, stages []string) error {
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	for _, stage := range stages {
		p.logger.Info("stage starting", "stage", stage)

		var err error
		switch stage {
		case StageWards:
			err = p.runWards(ctx)
		case StageFetch:
			err = p.runFetch(ctx)
		case StageCollect:
			err = p.runCollect(ctx)
		case StageClean:
			err = p.runClean(ctx)
		default:
			err = fmt.Errorf("unknown stage %q", stage)
		}
		if err != nil {
			return fmt.Errorf("stage %s: %w", stage, err)
		}
		p.logger.Info("stage complete", "stage", stage)
	}
	return nil
}

func (p *Pipeline) runWards(ctx context.Context) error {
	wards, err := p.enumerator.EnumerateWards(ctx)
	if err != nil {
		return err
	}
	if err := WriteWardCSV(p.wardsCSVPath, wards); err != nil {
		return err
	}
	p.logger.Info("ward list written", "path", p.wardsCSVPath, "wards", len(wards))
	return nil
}

func (p *Pipeline) runFetch(ctx context.Context) error {
	wards, err := ReadWardCSV(p.wardsCSVPath)
	if err != nil {
		return err
	}
	return p.fetcher.FetchAll(ctx, wards)
}

func (p *Pipeline) runCollect(ctx context.Context) error {
	fc, results, err := p.collector.Collect(ctx)
	if err != nil {
		return err
	}
	skipped := 0
	for _, r := range results {
		if r.Skipped {
			skipped++
		}
	}
	if err := collector.WriteCollection(fc, p.collectionPath); err != nil {
		return err
	}
	p.logger.Info("collection written", "path", p.collectionPath,
		"features", len(fc.Features), "files_skipped", skipped)
	return nil
}

func (p *Pipeline) runClean(ctx context.Context) error {
	totals, err := p.cleaner.Run(ctx, p.collectionPath)
	if err != nil {
		return err
	}
	p.logger.Info("cleaning complete", "operators", len(totals))
	return nil
}
