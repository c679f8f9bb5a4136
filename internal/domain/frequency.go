package domain

import "sort"

// FrequencyRow is the number of sightings holding one distinct value.
type FrequencyRow struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// ValueCounts counts each distinct non-null value of column. Rows are
// ordered by descending count; equal counts keep first-seen order.
// Null cells are skipped, so the counts sum to the number of non-null
// cells in the column.
func ValueCounts(t NormalizedTable, column string) []FrequencyRow {
	var rows []FrequencyRow
	index := make(map[string]int)
	for _, s := range t.Sightings {
		v, ok := s.Fields.Value(column)
		if !ok {
			continue
		}
		i, seen := index[v]
		if !seen {
			i = len(rows)
			index[v] = i
			rows = append(rows, FrequencyRow{Label: v})
		}
		rows[i].Count++
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Count > rows[j].Count })
	return rows
}
