package pipeline

import (
	"context"

	"github.com/couchcryptid/squirrel-census-etl/internal/domain"
)

// Tee fans every block out to each sink in order, stopping at the first
// error.
func Tee(sinks ...Sink) Sink {
	return tee(sinks)
}

type tee []Sink

func (t tee) Text(ctx context.Context, markdown string) error {
	for _, s := range t {
		if err := s.Text(ctx, markdown); err != nil {
			return err
		}
	}
	return nil
}

func (t tee) Chart(ctx context.Context, chart domain.Chart) error {
	for _, s := range t {
		if err := s.Chart(ctx, chart); err != nil {
			return err
		}
	}
	return nil
}
