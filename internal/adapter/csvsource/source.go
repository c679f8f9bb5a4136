// Package csvsource loads sighting CSV files into a domain.Table using a
// gota DataFrame, with every column read as text.
package csvsource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/couchcryptid/squirrel-census-etl/internal/domain"
)

// naValues are the cell values read as null: pandas' default na_values.
var naValues = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null",
}

// File reads a CSV file from disk.
// It implements pipeline.Source.
type File struct {
	path   string
	logger *slog.Logger
}

// NewFile creates a source for the CSV at path.
func NewFile(path string, logger *slog.Logger) *File {
	return &File{path: path, logger: logger}
}

// Load reads the whole file. The first row is the header.
func (f *File) Load(ctx context.Context) (domain.Table, error) {
	if err := ctx.Err(); err != nil {
		return domain.Table{}, err
	}

	file, err := os.Open(f.path)
	if err != nil {
		return domain.Table{}, fmt.Errorf("open sightings csv: %w", err)
	}
	defer file.Close()

	table, err := Read(file)
	if err != nil {
		return domain.Table{}, fmt.Errorf("%s: %w", f.path, err)
	}

	f.logger.Debug("sightings csv loaded", "path", f.path, "rows", len(table.Rows), "columns", len(table.Columns))
	return table, nil
}

// Read parses CSV from r. The first row is the header; null cells are
// dropped from the records. A header with no data rows yields a table with
// columns and no rows.
func Read(r io.Reader) (domain.Table, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return domain.Table{}, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return domain.Table{}, errors.New("parse csv: missing header")
	}

	headerOnly := len(records) == 1
	if headerOnly {
		// gota refuses a frame without rows; a blank row keeps its column naming.
		records = append(records, make([]string, len(records[0])))
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(naValues),
	)
	if df.Err != nil {
		return domain.Table{}, fmt.Errorf("parse csv: %w", df.Err)
	}

	columns := df.Names()
	if headerOnly {
		return domain.Table{Columns: columns, Rows: []domain.Record{}}, nil
	}

	rows := make([]domain.Record, df.Nrow())
	for i := range rows {
		rows[i] = make(domain.Record, len(columns))
	}
	for _, name := range columns {
		col := df.Col(name)
		values := col.Records()
		for i, null := range col.IsNaN() {
			if null {
				continue
			}
			rows[i][name] = values[i]
		}
	}

	return domain.Table{Columns: columns, Rows: rows}, nil
}
