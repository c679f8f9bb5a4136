package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ColumnShift is the two-valued time-of-day field.
const ColumnShift = "shift"

// Shift values. Sightings with any other shift are left out of counts.
const (
	ShiftAM = "AM"
	ShiftPM = "PM"
)

// Shifts lists the shifts in output order.
var Shifts = []string{ShiftAM, ShiftPM}

// TidyRow is one (category, shift, count) measurement in long form.
type TidyRow struct {
	Category string `json:"category"`
	Shift    string `json:"shift"`
	Count    int    `json:"count"`
}

// AggregateByShift counts, for each column and each shift, the sightings
// in that shift whose value for the column is "true" in any letter case.
// Null cells never count.
//
// The result has exactly 2*len(columns) rows, grouped by column in input
// order with AM before PM. Categories are the column names with the first
// letter upper-cased.
func AggregateByShift(t NormalizedTable, columns []string) []TidyRow {
	rows := make([]TidyRow, 0, len(Shifts)*len(columns))
	for _, column := range columns {
		counts := make(map[string]int, len(Shifts))
		for _, s := range t.Sightings {
			if isTrue(s.Fields, column) {
				counts[s.Fields[ColumnShift]]++
			}
		}

		category := CategoryLabel(column)
		for _, shift := range Shifts {
			rows = append(rows, TidyRow{Category: category, Shift: shift, Count: counts[shift]})
		}
	}
	return rows
}

// CategoryLabel upper-cases the first character of a column name and
// leaves the rest unchanged: "runs_from" → "Runs_from".
func CategoryLabel(column string) string {
	r, size := utf8.DecodeRuneInString(column)
	if size == 0 {
		return column
	}
	return string(unicode.ToUpper(r)) + column[size:]
}

func isTrue(r Record, column string) bool {
	v, ok := r.Value(column)
	return ok && strings.ToLower(v) == "true"
}
