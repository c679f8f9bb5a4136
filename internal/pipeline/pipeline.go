package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/squirrel-census-etl/internal/domain"
	"github.com/couchcryptid/squirrel-census-etl/internal/observability"
)

// Source yields the raw sighting table.
type Source interface {
	Load(ctx context.Context) (domain.Table, error)
}

// Sink receives the report blocks in presentation order.
type Sink interface {
	Text(ctx context.Context, markdown string) error
	Chart(ctx context.Context, chart domain.Chart) error
}

type runIDKey struct{}

// WithRunID attaches a build identifier to ctx.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunID returns the build identifier carried by ctx, or "".
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

// Pipeline builds the dashboard once: load, normalize, check the column
// contract, aggregate, and emit.
type Pipeline struct {
	source  Source
	sink    Sink
	logger  *slog.Logger
	metrics *observability.Metrics
	ready   atomic.Bool
}

// New creates a Pipeline with the given stages and observability.
func New(source Source, sink Sink, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		source:  source,
		sink:    sink,
		logger:  logger,
		metrics: metrics,
	}
}

// CheckReadiness returns nil once a dashboard has been emitted.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("dashboard has not been built yet")
	}
	return nil
}

// Ready reports whether a build has completed.
func (p *Pipeline) Ready() bool {
	return p.ready.Load()
}

// Run performs one build. Contract violations in the input are returned
// before anything reaches the sink.
func (p *Pipeline) Run(ctx context.Context) error {
	start := time.Now()
	runID := uuid.NewString()
	ctx = WithRunID(ctx, runID)
	logger := p.logger.With("run_id", runID)

	logger.Info("dashboard build started")

	raw, err := p.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load sightings: %w", err)
	}
	p.metrics.RecordsLoaded.Add(float64(len(raw.Rows)))

	table, err := Prepare(raw)
	if err != nil {
		return err
	}

	missing := 0
	for _, s := range table.Sightings {
		if !s.HasCoordinates() {
			missing++
		}
	}
	p.metrics.RecordsWithoutCoordinates.Add(float64(missing))
	if missing > 0 {
		logger.Warn("sightings without coordinates left off the map", "count", missing, "records", table.Len())
	}

	for i, block := range BuildReport(table) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.emit(ctx, block); err != nil {
			p.metrics.SinkErrors.Inc()
			return fmt.Errorf("emit block %d: %w", i, err)
		}
		p.metrics.BlocksEmitted.WithLabelValues(block.Kind()).Inc()
	}

	p.metrics.BuildDuration.Observe(time.Since(start).Seconds())
	p.metrics.DashboardReady.Set(1)
	p.ready.Store(true)

	logger.Info("dashboard build complete", "records", table.Len(), "duration", time.Since(start))
	return nil
}

func (p *Pipeline) emit(ctx context.Context, block Block) error {
	if block.Chart != nil {
		return p.sink.Chart(ctx, *block.Chart)
	}
	return p.sink.Text(ctx, block.Markdown)
}

// Prepare normalizes the raw table and checks that every column the
// aggregations read is present.
func Prepare(raw domain.Table) (domain.NormalizedTable, error) {
	table, err := domain.Normalize(raw)
	if err != nil {
		return domain.NormalizedTable{}, fmt.Errorf("normalize sightings: %w", err)
	}
	if err := domain.RequireColumns(table, domain.RequiredColumns()...); err != nil {
		return domain.NormalizedTable{}, err
	}
	return table, nil
}
