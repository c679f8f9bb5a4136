package domain

import (
	"fmt"
	"strconv"
)

// Frame is a chart-ready table in long form. Cells hold string, int,
// float64 or nil.
type Frame struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Col returns the index of the named column, or -1.
func (f Frame) Col(name string) int {
	return indexOf(f.Columns, name)
}

// Len returns the number of rows.
func (f Frame) Len() int {
	return len(f.Rows)
}

// Float returns the numeric value of a cell. ok is false for nil cells,
// unknown columns, and strings that do not parse.
func (f Frame) Float(row int, column string) (v float64, ok bool) {
	i := f.Col(column)
	if i < 0 || row < 0 || row >= len(f.Rows) || i >= len(f.Rows[row]) {
		return 0, false
	}
	switch c := f.Rows[row][i].(type) {
	case float64:
		return c, true
	case int:
		return float64(c), true
	case string:
		parsed, err := strconv.ParseFloat(c, 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}

// Text returns a cell formatted as a string; nil cells are empty.
func (f Frame) Text(row int, column string) string {
	i := f.Col(column)
	if i < 0 || row < 0 || row >= len(f.Rows) || i >= len(f.Rows[row]) {
		return ""
	}
	switch c := f.Rows[row][i].(type) {
	case nil:
		return ""
	case string:
		return c
	default:
		return fmt.Sprint(c)
	}
}

// Frame column headers shared by the shift and frequency frames.
const (
	HeaderShift = "Shift"
	HeaderCount = "Count"
)

// TidyFrame lays out shift aggregates as (category, Shift, Count) with the
// category column named by header, e.g. "Activity".
func TidyFrame(header string, rows []TidyRow) Frame {
	f := Frame{
		Columns: []string{header, HeaderShift, HeaderCount},
		Rows:    make([][]any, len(rows)),
	}
	for i, r := range rows {
		f.Rows[i] = []any{r.Category, r.Shift, r.Count}
	}
	return f
}

// FrequencyFrame lays out value counts as (label, Count) with the label
// column named by header, e.g. "Fur Color".
func FrequencyFrame(header string, rows []FrequencyRow) Frame {
	f := Frame{
		Columns: []string{header, HeaderCount},
		Rows:    make([][]any, len(rows)),
	}
	for i, r := range rows {
		f.Rows[i] = []any{r.Label, r.Count}
	}
	return f
}

// SightingsFrame lays out one row per sighting with "lat" and "long"
// first, followed by the requested columns. Missing coordinates and
// null cells are nil; columns the table lacks are skipped.
func SightingsFrame(t NormalizedTable, columns ...string) Frame {
	header := []string{ColumnLat, ColumnLong}
	for _, c := range columns {
		if c == ColumnLat || c == ColumnLong || !t.HasColumn(c) || indexOf(header, c) >= 0 {
			continue
		}
		header = append(header, c)
	}

	f := Frame{Columns: header, Rows: make([][]any, len(t.Sightings))}
	for i, s := range t.Sightings {
		row := make([]any, len(header))
		if s.Lat != nil {
			row[0] = *s.Lat
		}
		if s.Long != nil {
			row[1] = *s.Long
		}
		for j, c := range header[2:] {
			if v, ok := s.Fields.Value(c); ok {
				row[j+2] = v
			}
		}
		f.Rows[i] = row
	}
	return f
}
