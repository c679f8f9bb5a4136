// Command validate checks a squirrel census CSV export before it is turned
// into a dashboard: the column contract, coordinate extraction, shift values,
// and the invariants of the aggregate tables.
//
// Usage:
//
//	go run ./cmd/validate -csv data/Central_Park_Squirrel_Data.csv
//	go run ./cmd/validate -csv data/mock/squirrel_census_sample.csv -min-coordinate-rate 0.9
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/couchcryptid/squirrel-census-etl/internal/adapter/csvsource"
	"github.com/couchcryptid/squirrel-census-etl/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name     string
	errors   []string
	warnings []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) warnf(format string, args ...any) {
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	path := flag.String("csv", "data/Central_Park_Squirrel_Data.csv", "path to the census CSV export")
	minRate := flag.Float64("min-coordinate-rate", 0, "fail when fewer than this fraction of sightings have coordinates")
	flag.Parse()

	if *minRate < 0 || *minRate > 1 {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*path, *minRate, os.Stdout))
}

func run(path string, minRate float64, out io.Writer) int {
	fmt.Fprintln(out, "=== Squirrel Census Validation ===")
	fmt.Fprintln(out)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	raw, err := csvsource.NewFile(path, logger).Load(context.Background())
	if err != nil {
		fmt.Fprintf(out, "FATAL: load census CSV: %v\n", err)
		return 1
	}

	table, err := domain.Normalize(raw)
	if err != nil {
		fmt.Fprintf(out, "FATAL: normalize columns: %v\n", err)
		return 1
	}

	contract := validateColumns(table)
	phases := []*phase{contract, validateCoordinates(table, minRate), validateShifts(table)}
	if contract.passed() {
		phases = append(phases, validateAggregates(table, out))
	}

	fmt.Fprintln(out)
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Records: %d sightings, %d columns\n", table.Len(), len(table.Columns))

	for _, p := range phases {
		if p.passed() && len(p.warnings) == 0 {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
		for _, w := range p.warnings {
			fmt.Fprintf(out, "  warning: %s\n", w)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// ── Phases ──

func validateColumns(t domain.NormalizedTable) *phase {
	p := &phase{name: "Column contract"}
	err := domain.RequireColumns(t, domain.RequiredColumns()...)
	if err == nil {
		return p
	}
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, e := range joined.Unwrap() {
			p.errorf("%v", e)
		}
		return p
	}
	p.errorf("%v", err)
	return p
}

func validateCoordinates(t domain.NormalizedTable, minRate float64) *phase {
	p := &phase{name: "Coordinate extraction"}
	if !t.HasColumn(domain.ColumnLat) {
		p.warnf("no %q or %q column; the map will have no coordinates", domain.ColumnLat, domain.ColumnGeometry)
		if minRate > 0 {
			p.errorf("coordinate rate 0.000 below minimum %.3f", minRate)
		}
		return p
	}

	var located int
	for _, s := range t.Sightings {
		if s.HasCoordinates() {
			located++
		}
	}
	rate := 0.0
	if t.Len() > 0 {
		rate = float64(located) / float64(t.Len())
	}
	if missing := t.Len() - located; missing > 0 {
		p.warnf("%d of %d sightings have no coordinates (rate %.3f)", missing, t.Len(), rate)
	}
	if rate < minRate {
		p.errorf("coordinate rate %.3f below minimum %.3f", rate, minRate)
	}
	return p
}

func validateShifts(t domain.NormalizedTable) *phase {
	p := &phase{name: "Shift values"}
	if !t.HasColumn(domain.ColumnShift) {
		return p
	}

	unknown := map[string]int{}
	for _, s := range t.Sightings {
		v, ok := s.Fields.Value(domain.ColumnShift)
		if !ok {
			unknown["<null>"]++
			continue
		}
		if v != domain.ShiftAM && v != domain.ShiftPM {
			unknown[v]++
		}
	}

	values := make([]string, 0, len(unknown))
	for v := range unknown {
		values = append(values, v)
	}
	sort.Strings(values)
	for _, v := range values {
		p.warnf("%d sightings with shift %q are excluded from the shift charts", unknown[v], v)
	}
	return p
}

func validateAggregates(t domain.NormalizedTable, out io.Writer) *phase {
	p := &phase{name: "Aggregate invariants"}

	groups := []struct {
		header  string
		columns []string
	}{
		{"Activity", domain.ActivityColumns},
		{"Interaction", domain.InteractionColumns},
	}
	for _, g := range groups {
		rows := domain.AggregateByShift(t, g.columns)
		checkTidyRows(p, t, g.columns, rows)
		printTidy(out, g.header, rows)
	}

	colors := domain.ValueCounts(t, domain.ColumnFurColor)
	checkFrequencies(p, t, colors)
	printFrequencies(out, "Fur Color", colors)
	return p
}

func checkTidyRows(p *phase, t domain.NormalizedTable, columns []string, rows []domain.TidyRow) {
	if len(rows) != 2*len(columns) {
		p.errorf("got %d aggregate rows, want %d", len(rows), 2*len(columns))
	}

	seen := map[[2]string]bool{}
	perCategory := map[string]int{}
	for _, r := range rows {
		key := [2]string{r.Category, r.Shift}
		if seen[key] {
			p.errorf("duplicate aggregate row %s/%s", r.Category, r.Shift)
		}
		seen[key] = true
		if r.Count < 0 {
			p.errorf("negative count for %s/%s", r.Category, r.Shift)
		}
		perCategory[r.Category] += r.Count
	}

	for _, c := range columns {
		total := 0
		for _, s := range t.Sightings {
			if v, ok := s.Fields.Value(c); ok && strings.EqualFold(v, "true") {
				total++
			}
		}
		if got := perCategory[domain.CategoryLabel(c)]; got > total {
			p.errorf("%s: AM+PM count %d exceeds %d true values", c, got, total)
		}
	}
}

func checkFrequencies(p *phase, t domain.NormalizedTable, rows []domain.FrequencyRow) {
	nonNull := 0
	for _, s := range t.Sightings {
		if _, ok := s.Fields.Value(domain.ColumnFurColor); ok {
			nonNull++
		}
	}

	sum := 0
	labels := map[string]bool{}
	for i, r := range rows {
		if labels[r.Label] {
			p.errorf("duplicate fur color %q", r.Label)
		}
		labels[r.Label] = true
		if i > 0 && r.Count > rows[i-1].Count {
			p.errorf("fur colors not in descending order at %q", r.Label)
		}
		sum += r.Count
	}
	if sum != nonNull {
		p.errorf("fur color counts sum to %d, want %d non-null values", sum, nonNull)
	}
}

// ── Output ──

func printTidy(out io.Writer, header string, rows []domain.TidyRow) {
	fmt.Fprintf(out, "%-14s %-5s %s\n", header, domain.HeaderShift, domain.HeaderCount)
	for _, r := range rows {
		fmt.Fprintf(out, "%-14s %-5s %d\n", r.Category, r.Shift, r.Count)
	}
	fmt.Fprintln(out)
}

func printFrequencies(out io.Writer, header string, rows []domain.FrequencyRow) {
	fmt.Fprintf(out, "%-14s %s\n", header, domain.HeaderCount)
	for _, r := range rows {
		fmt.Fprintf(out, "%-14s %d\n", r.Label, r.Count)
	}
}
