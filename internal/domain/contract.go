package domain

import (
	"errors"
	"fmt"
)

// Column lists the report depends on.
var (
	ActivityColumns    = []string{"running", "chasing", "climbing", "eating", "foraging"}
	InteractionColumns = []string{"approaches", "indifferent", "runs_from"}
)

// Columns read by the map and pie charts.
const (
	ColumnFurColor = "primary_fur_color"
	ColumnID       = "unique_squirrel_id"
	ColumnAge      = "age"
)

// ErrMissingColumn is returned when the input lacks a column the report
// cannot be built without.
var ErrMissingColumn = errors.New("missing required column")

// RequiredColumns returns every column the aggregation stages read: the
// shift field, the activity and interaction flags, and the fur color.
// Location and hover columns are optional.
func RequiredColumns() []string {
	cols := make([]string, 0, 2+len(ActivityColumns)+len(InteractionColumns))
	cols = append(cols, ColumnShift)
	cols = append(cols, ActivityColumns...)
	cols = append(cols, InteractionColumns...)
	cols = append(cols, ColumnFurColor)
	return cols
}

// RequireColumns checks that every named column is present, reporting all
// missing columns in one error that wraps [ErrMissingColumn].
func RequireColumns(t NormalizedTable, columns ...string) error {
	var errs []error
	for _, c := range columns {
		if !t.HasColumn(c) {
			errs = append(errs, fmt.Errorf("%w %s", ErrMissingColumn, c))
		}
	}
	return errors.Join(errs...)
}
