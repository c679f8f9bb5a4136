package domain

// Record is one sighting keyed by column name. Null cells are absent.
type Record map[string]string

// Value returns the cell for column and whether it is non-null.
func (r Record) Value(column string) (string, bool) {
	v, ok := r[column]
	return v, ok
}

// Table is a raw tabular dataset in source column order.
type Table struct {
	Columns []string
	Rows    []Record
}

// HasColumn reports whether the table declares the column.
func (t Table) HasColumn(name string) bool {
	return indexOf(t.Columns, name) >= 0
}

// Sighting is a normalized record with optional derived coordinates.
// Lat and Long are nil when the source had no usable location.
type Sighting struct {
	Fields Record
	Lat    *float64
	Long   *float64
}

// HasCoordinates reports whether both coordinates are set.
func (s Sighting) HasCoordinates() bool {
	return s.Lat != nil && s.Long != nil
}

// NormalizedTable is the output of [Normalize]. Column names are unique
// and snake cased; derived "lat"/"long" columns are appended when the
// coordinates came from point geometry.
type NormalizedTable struct {
	Columns   []string
	Sightings []Sighting
}

// HasColumn reports whether the normalized table declares the column.
func (t NormalizedTable) HasColumn(name string) bool {
	return indexOf(t.Columns, name) >= 0
}

// Table returns the normalized data as a plain [Table].
func (t NormalizedTable) Table() Table {
	rows := make([]Record, len(t.Sightings))
	for i, s := range t.Sightings {
		rows[i] = s.Fields
	}
	return Table{Columns: t.Columns, Rows: rows}
}

// Len returns the number of sightings.
func (t NormalizedTable) Len() int {
	return len(t.Sightings)
}

func indexOf(values []string, target string) int {
	for i, v := range values {
		if v == target {
			return i
		}
	}
	return -1
}
