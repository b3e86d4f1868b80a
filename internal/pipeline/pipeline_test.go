package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wireman27/bengaluru-ofc-data/internal/collector"
	"github.com/wireman27/bengaluru-ofc-data/internal/domain"
	"github.com/wireman27/bengaluru-ofc-data/internal/observability"
	"github.com/wireman27/bengaluru-ofc-data/internal/pipeline"
)

// --- mocks ---

type mockEnumerator struct {
	wards []domain.Ward
	err   error
	calls int
}

func (m *mockEnumerator) EnumerateWards(context.Context) ([]domain.Ward, error) {
	m.calls++
	return m.wards, m.err
}

type mockFetcher struct {
	fetched []domain.Ward
}

func (m *mockFetcher) FetchAll(_ context.Context, wards []domain.Ward) error {
	m.fetched = append(m.fetched, wards...)
	return nil
}

type mockCollector struct {
	fc *geojson.FeatureCollection
}

func (m *mockCollector) Collect(context.Context) (*geojson.FeatureCollection, []collector.Result, error) {
	return m.fc, []collector.Result{{File: "1.txt", Features: len(m.fc.Features)}}, nil
}

type mockCleaner struct {
	path   string
	totals []domain.OperatorTotal
	err    error
}

func (m *mockCleaner) Run(_ context.Context, collectionPath string) ([]domain.OperatorTotal, error) {
	m.path = collectionPath
	return m.totals, m.err
}

func testWards() []domain.Ward {
	return []domain.Ward{
		{ZoneID: "1", ZoneName: "East", WardID: "27", WardName: "HBR Layout"},
		{ZoneID: "2", ZoneName: "West", WardID: "104", WardName: "Vijayanagar"},
	}
}

func newTestPipeline(t *testing.T, enum *mockEnumerator, fetch *mockFetcher, clean *mockCleaner) *pipeline.Pipeline {
	t.Helper()
	dir := t.TempDir()

	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.LineString{{77.6, 12.9}, {77.7, 13.0}}))

	return pipeline.New(
		enum,
		fetch,
		&mockCollector{fc: fc},
		clean,
		filepath.Join(dir, "wards.csv"),
		filepath.Join(dir, "all.geojson"),
		slog.Default(),
		observability.NewMetricsForTesting(),
	)
}

// --- tests ---

func TestParseStages(t *testing.T) {
	t.Run("all", func(t *testing.T) {
		stages, err := pipeline.ParseStages("all")
		require.NoError(t, err)
		assert.Equal(t, []string{"wards", "fetch", "collect", "clean"}, stages)
	})

	t.Run("subset", func(t *testing.T) {
		stages, err := pipeline.ParseStages("collect, clean")
		require.NoError(t, err)
		assert.Equal(t, []string{"collect", "clean"}, stages)
	})

	t.Run("unknown stage", func(t *testing.T) {
		_, err := pipeline.ParseStages("wards,render")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown stage "render"`)
	})
}

func TestPipelineRun_AllStages(t *testing.T) {
	enum := &mockEnumerator{wards: testWards()}
	fetch := &mockFetcher{}
	clean := &mockCleaner{totals: []domain.OperatorTotal{{Company: "ACT Fibernet", CableLength: 1}}}
	p := newTestPipeline(t, enum, fetch, clean)

	err := p.Run(context.Background(), []string{"wards", "fetch", "collect", "clean"})
	require.NoError(t, err)

	assert.Equal(t, 1, enum.calls)
	// The fetch stage reads the ward CSV written by the wards stage.
	assert.Equal(t, testWards(), fetch.fetched)
	// The clean stage gets the collection file written by the collect stage.
	records, err := collector.ReadCollection(clean.path)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestPipelineRun_EnumerationFailureAborts(t *testing.T) {
	enum := &mockEnumerator{err: errors.New("zone 3 unreachable")}
	fetch := &mockFetcher{}
	p := newTestPipeline(t, enum, fetch, &mockCleaner{})

	err := p.Run(context.Background(), []string{"wards", "fetch"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stage wards")
	assert.Empty(t, fetch.fetched)
}

func TestPipelineRun_FetchWithoutWardList(t *testing.T) {
	p := newTestPipeline(t, &mockEnumerator{}, &mockFetcher{}, &mockCleaner{})

	err := p.Run(context.Background(), []string{"fetch"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read ward list")
}

func TestWardCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wards.csv")
	require.NoError(t, pipeline.WriteWardCSV(path, testWards()))

	wards, err := pipeline.ReadWardCSV(path)
	require.NoError(t, err)
	assert.Equal(t, testWards(), wards)
}
