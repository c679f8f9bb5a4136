package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testGeometry = "POINT (-73.9656 40.7826)"

func TestNormalizeColumnName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"mixed case with spaces", "Unique Squirrel ID", "unique_squirrel_id"},
		{"slash kept", "Lat/Long", "lat/long"},
		{"already normalized", "primary_fur_color", "primary_fur_color"},
		{"double space", "Runs  from", "runs__from"},
		{"upper case", "SHIFT", "shift"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeColumnName(tt.input)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, got, NormalizeColumnName(got), "normalization must be idempotent")
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Run("derives coordinates from geometry", func(t *testing.T) {
		table := Table{
			Columns: []string{"Unique Squirrel ID", "Shift", "Lat/Long"},
			Rows: []Record{
				{"Unique Squirrel ID": "37F-PM-1014-03", "Shift": "PM", "Lat/Long": testGeometry},
			},
		}

		got, err := Normalize(table)
		require.NoError(t, err)

		assert.Equal(t, []string{"unique_squirrel_id", "shift", "lat/long", "lat", "long"}, got.Columns)
		require.Equal(t, 1, got.Len())
		s := got.Sightings[0]
		require.True(t, s.HasCoordinates())
		assert.Equal(t, 40.7826, *s.Lat)
		assert.Equal(t, -73.9656, *s.Long)
		assert.Equal(t, "37F-PM-1014-03", s.Fields["unique_squirrel_id"])
		assert.Equal(t, "PM", s.Fields["shift"])
		assert.Equal(t, "40.7826", s.Fields["lat"])
		assert.Equal(t, "-73.9656", s.Fields["long"])
	})

	t.Run("unmatched geometry leaves coordinates nil", func(t *testing.T) {
		table := Table{
			Columns: []string{"Lat/Long"},
			Rows: []Record{
				{"Lat/Long": "not a point"},
				{},
				{"Lat/Long": "POINT (abc 40.1)"},
			},
		}

		got, err := Normalize(table)
		require.NoError(t, err)

		assert.False(t, got.Sightings[0].HasCoordinates())
		assert.Nil(t, got.Sightings[0].Lat)
		assert.Nil(t, got.Sightings[1].Lat)

		partial := got.Sightings[2]
		assert.Nil(t, partial.Long)
		require.NotNil(t, partial.Lat)
		assert.Equal(t, 40.1, *partial.Lat)
		assert.False(t, partial.HasCoordinates())
		_, hasLong := partial.Fields["long"]
		assert.False(t, hasLong)
	})

	t.Run("existing lat column is parsed not derived", func(t *testing.T) {
		table := Table{
			Columns: []string{"Lat", "Long", "Lat/Long"},
			Rows: []Record{
				{"Lat": "40.1", "Long": "-73.2", "Lat/Long": testGeometry},
				{"Lat": "n/a", "Long": "-73.2"},
			},
		}

		got, err := Normalize(table)
		require.NoError(t, err)

		assert.Equal(t, []string{"lat", "long", "lat/long"}, got.Columns)
		assert.Equal(t, 40.1, *got.Sightings[0].Lat)
		assert.Equal(t, -73.2, *got.Sightings[0].Long)
		assert.Nil(t, got.Sightings[1].Lat)
		assert.Equal(t, -73.2, *got.Sightings[1].Long)
	})

	t.Run("no location columns", func(t *testing.T) {
		table := Table{
			Columns: []string{"Shift"},
			Rows:    []Record{{"Shift": "AM"}},
		}

		got, err := Normalize(table)
		require.NoError(t, err)

		assert.Equal(t, []string{"shift"}, got.Columns)
		assert.False(t, got.Sightings[0].HasCoordinates())
	})

	t.Run("colliding names rejected", func(t *testing.T) {
		table := Table{Columns: []string{"Primary Fur Color", "primary_fur_color"}}

		_, err := Normalize(table)
		require.ErrorIs(t, err, ErrDuplicateColumn)
		assert.Contains(t, err.Error(), "primary_fur_color")
	})

	t.Run("idempotent", func(t *testing.T) {
		table := Table{
			Columns: []string{"Unique Squirrel ID", "Shift", "Running", "Lat/Long"},
			Rows: []Record{
				{"Unique Squirrel ID": "1A", "Shift": "AM", "Running": "true", "Lat/Long": testGeometry},
				{"Unique Squirrel ID": "1B", "Shift": "PM", "Lat/Long": "garbage"},
			},
		}

		once, err := Normalize(table)
		require.NoError(t, err)
		twice, err := Normalize(once.Table())
		require.NoError(t, err)

		if diff := cmp.Diff(once, twice); diff != "" {
			t.Fatalf("second normalization changed the table (-once +twice):\n%s", diff)
		}
	})
}
