package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Column names the normalizer and the map care about.
const (
	ColumnLat      = "lat"
	ColumnLong     = "long"
	ColumnGeometry = "lat/long"
)

// ErrDuplicateColumn is returned when two source columns normalize to the
// same name.
var ErrDuplicateColumn = errors.New("duplicate column after normalization")

// NormalizeColumnName lowercases a header and replaces each space with an
// underscore. Applying it twice is the same as applying it once.
func NormalizeColumnName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

// Normalize canonicalizes column names and attaches coordinates to every
// sighting.
//
// When the table has no "lat" column but does have "lat/long", coordinates
// are extracted from the point geometry with [ParsePoint] and "lat"/"long"
// are appended to the column list. When "lat" already exists the "lat" and
// "long" cells are parsed directly. Unparseable values become nil in both
// cases; the only error is a column name collision.
func Normalize(t Table) (NormalizedTable, error) {
	columns := make([]string, 0, len(t.Columns)+2)
	renames := make(map[string]string, len(t.Columns))
	for _, c := range t.Columns {
		name := NormalizeColumnName(c)
		if indexOf(columns, name) >= 0 {
			return NormalizedTable{}, fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
		}
		columns = append(columns, name)
		renames[c] = name
	}

	deriveFromGeometry := indexOf(columns, ColumnLat) < 0 && indexOf(columns, ColumnGeometry) >= 0
	if deriveFromGeometry {
		columns = append(columns, ColumnLat, ColumnLong)
	}

	sightings := make([]Sighting, len(t.Rows))
	for i, row := range t.Rows {
		fields := make(Record, len(row))
		for k, v := range row {
			name, ok := renames[k]
			if !ok {
				name = NormalizeColumnName(k)
			}
			fields[name] = v
		}

		s := Sighting{Fields: fields}
		if deriveFromGeometry {
			if geometry, ok := fields[ColumnGeometry]; ok {
				s.Lat, s.Long = ParsePoint(geometry)
			}
			setCoordinate(fields, ColumnLat, s.Lat)
			setCoordinate(fields, ColumnLong, s.Long)
		} else {
			if v, ok := fields[ColumnLat]; ok {
				s.Lat = parseCoordinate(strings.TrimSpace(v))
			}
			if v, ok := fields[ColumnLong]; ok {
				s.Long = parseCoordinate(strings.TrimSpace(v))
			}
		}
		sightings[i] = s
	}

	return NormalizedTable{Columns: columns, Sightings: sightings}, nil
}

// setCoordinate mirrors a derived coordinate into the record so the
// normalized table round-trips through [NormalizedTable.Table].
func setCoordinate(fields Record, column string, v *float64) {
	if v == nil {
		return
	}
	fields[column] = strconv.FormatFloat(*v, 'f', -1, 64)
}
