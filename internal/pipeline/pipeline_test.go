package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/squirrel-census-etl/internal/domain"
	"github.com/couchcryptid/squirrel-census-etl/internal/observability"
	"github.com/couchcryptid/squirrel-census-etl/internal/pipeline"
)

// --- mocks ---

type mockSource struct {
	table domain.Table
	err   error
}

func (m *mockSource) Load(_ context.Context) (domain.Table, error) {
	return m.table, m.err
}

type recorded struct {
	text  string
	chart *domain.Chart
	runID string
}

type recordingSink struct {
	blocks   []recorded
	failAt   int
	failWith error
}

func (r *recordingSink) Text(ctx context.Context, markdown string) error {
	return r.record(recorded{text: markdown, runID: pipeline.RunID(ctx)})
}

func (r *recordingSink) Chart(ctx context.Context, chart domain.Chart) error {
	return r.record(recorded{chart: &chart, runID: pipeline.RunID(ctx)})
}

func (r *recordingSink) record(b recorded) error {
	if r.failWith != nil && len(r.blocks) == r.failAt {
		return r.failWith
	}
	r.blocks = append(r.blocks, b)
	return nil
}

func census() domain.Table {
	return domain.Table{
		Columns: []string{
			"Unique Squirrel ID", "Shift", "Age", "Primary Fur Color",
			"Running", "Chasing", "Climbing", "Eating", "Foraging",
			"Approaches", "Indifferent", "Runs from", "Lat/Long",
		},
		Rows: []domain.Record{
			{
				"Unique Squirrel ID": "37F-PM-1014-03", "Shift": "PM", "Age": "Adult", "Primary Fur Color": "Gray",
				"Running": "false", "Chasing": "false", "Climbing": "true", "Eating": "false", "Foraging": "false",
				"Approaches": "false", "Indifferent": "true", "Runs from": "false",
				"Lat/Long": "POINT (-73.9561344937861 40.7940823884086)",
			},
			{
				"Unique Squirrel ID": "21B-AM-1019-04", "Shift": "AM", "Primary Fur Color": "Cinnamon",
				"Running": "true", "Chasing": "false", "Climbing": "false", "Eating": "false", "Foraging": "true",
				"Approaches": "false", "Indifferent": "false", "Runs from": "true",
				"Lat/Long": "POINT (-73.9688574691102 40.7837825208444)",
			},
			{
				"Unique Squirrel ID": "11B-PM-1014-08", "Shift": "PM", "Age": "Juvenile", "Primary Fur Color": "Gray",
				"Running": "TRUE", "Chasing": "false", "Climbing": "false", "Eating": "true", "Foraging": "true",
				"Approaches": "true", "Indifferent": "false", "Runs from": "false",
				"Lat/Long": "not a point",
			},
		},
	}
}

func newTestPipeline(source pipeline.Source, sink pipeline.Sink) (*pipeline.Pipeline, *observability.Metrics) {
	// Use a fresh set of metrics to avoid "already registered" panics in tests.
	metrics := observability.NewMetricsForTesting()
	return pipeline.New(source, sink, slog.Default(), metrics), metrics
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	sink := &recordingSink{}
	p, metrics := newTestPipeline(&mockSource{table: census()}, sink)

	require.Error(t, p.CheckReadiness(context.Background()))
	require.NoError(t, p.Run(context.Background()))

	assert.True(t, p.Ready())
	require.NoError(t, p.CheckReadiness(context.Background()))
	require.Len(t, sink.blocks, 12)

	assert.InDelta(t, 3, testutil.ToFloat64(metrics.RecordsLoaded), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.RecordsWithoutCoordinates), 0)
	assert.InDelta(t, 8, testutil.ToFloat64(metrics.BlocksEmitted.WithLabelValues("text")), 0)
	assert.InDelta(t, 4, testutil.ToFloat64(metrics.BlocksEmitted.WithLabelValues("chart")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.DashboardReady), 0)
}

func TestPipeline_Run_EmissionOrder(t *testing.T) {
	sink := &recordingSink{}
	p, _ := newTestPipeline(&mockSource{table: census()}, sink)
	require.NoError(t, p.Run(context.Background()))

	var got []string
	for _, b := range sink.blocks {
		if b.chart != nil {
			got = append(got, string(b.chart.Kind))
			continue
		}
		got = append(got, b.text)
	}

	want := []string{
		"# Squirrels in Central Park",
		"Map of squirrel sightings in Central Park (hover for squirrel details)",
		"scatter_map",
		"## Squirrel Activities",
		"Comparison of what squirrels are doing morning vs afternoon",
		"grouped_bar",
		"## Squirrel Human Interactions",
		"Comparison of how squirrels interact with humans in morning vs afternoon",
		"grouped_bar",
		"## Squirrel Colors",
		"Comparison of the frequency of squirrel fur colors",
		"pie",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("emission order mismatch (-want +got):\n%s", diff)
	}
}

func TestPipeline_Run_SharesRunID(t *testing.T) {
	sink := &recordingSink{}
	p, _ := newTestPipeline(&mockSource{table: census()}, sink)
	require.NoError(t, p.Run(context.Background()))

	id := sink.blocks[0].runID
	assert.Len(t, id, 36)
	for _, b := range sink.blocks {
		assert.Equal(t, id, b.runID)
	}
}

func TestPipeline_Run_ActivityAggregates(t *testing.T) {
	sink := &recordingSink{}
	p, _ := newTestPipeline(&mockSource{table: census()}, sink)
	require.NoError(t, p.Run(context.Background()))

	bar := sink.blocks[5].chart
	require.NotNil(t, bar)
	assert.Equal(t, "Squirrel Activities by Time of Day", bar.Title)
	assert.Equal(t, []string{"Activity", "Shift", "Count"}, bar.Frame.Columns)
	require.Equal(t, 10, bar.Frame.Len())

	assert.Equal(t, []any{"Running", "AM", 1}, bar.Frame.Rows[0])
	assert.Equal(t, []any{"Running", "PM", 1}, bar.Frame.Rows[1])
	assert.Equal(t, []any{"Foraging", "AM", 1}, bar.Frame.Rows[8])
	assert.Equal(t, []any{"Foraging", "PM", 1}, bar.Frame.Rows[9])
}

func TestPipeline_Run_MissingColumn(t *testing.T) {
	table := census()
	table.Columns = table.Columns[:len(table.Columns)-2] // drop "Runs from" and "Lat/Long"

	sink := &recordingSink{}
	p, _ := newTestPipeline(&mockSource{table: table}, sink)

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingColumn)
	assert.Contains(t, err.Error(), "missing required column runs_from")
	assert.Empty(t, sink.blocks)
	assert.False(t, p.Ready())
}

func TestPipeline_Run_DuplicateColumn(t *testing.T) {
	table := domain.Table{Columns: []string{"Shift", "shift"}}

	sink := &recordingSink{}
	p, _ := newTestPipeline(&mockSource{table: table}, sink)

	err := p.Run(context.Background())
	require.ErrorIs(t, err, domain.ErrDuplicateColumn)
	assert.Empty(t, sink.blocks)
}

func TestPipeline_Run_SourceError(t *testing.T) {
	sink := &recordingSink{}
	p, _ := newTestPipeline(&mockSource{err: errors.New("disk gone")}, sink)

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load sightings: disk gone")
	assert.False(t, p.Ready())
}

func TestPipeline_Run_SinkErrorIsFatal(t *testing.T) {
	sink := &recordingSink{failAt: 2, failWith: errors.New("render failed")}
	p, metrics := newTestPipeline(&mockSource{table: census()}, sink)

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "emit block 2")
	assert.Len(t, sink.blocks, 2)
	assert.False(t, p.Ready())
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.SinkErrors), 0)
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	sink := &recordingSink{}
	p, _ := newTestPipeline(&mockSource{table: census()}, sink)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sink.blocks)
	assert.False(t, p.Ready())
}

func TestTee(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	sink := pipeline.Tee(a, b)

	require.NoError(t, sink.Text(context.Background(), "# Title"))
	require.NoError(t, sink.Chart(context.Background(), domain.Chart{Kind: domain.ChartPie}))

	assert.Len(t, a.blocks, 2)
	assert.Len(t, b.blocks, 2)
}

func TestTee_StopsAtFirstError(t *testing.T) {
	a := &recordingSink{failWith: errors.New("closed")}
	b := &recordingSink{}
	sink := pipeline.Tee(a, b)

	err := sink.Text(context.Background(), "# Title")
	require.EqualError(t, err, "closed")
	assert.Empty(t, b.blocks)
}
