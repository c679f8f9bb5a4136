package domain

// ChartKind selects how a presentation sink draws a [Chart].
type ChartKind string

const (
	ChartScatterMap ChartKind = "scatter_map"
	ChartGroupedBar ChartKind = "grouped_bar"
	ChartPie        ChartKind = "pie"
)

// Bindings assign frame columns to visual roles. Unused roles are empty.
type Bindings struct {
	X     string `json:"x,omitempty"`
	Y     string `json:"y,omitempty"`
	Color string `json:"color,omitempty"`

	Lat string `json:"lat,omitempty"`
	Lon string `json:"lon,omitempty"`

	Names  string `json:"names,omitempty"`
	Values string `json:"values,omitempty"`

	HoverName string   `json:"hover_name,omitempty"`
	Hover     []string `json:"hover,omitempty"`
}

// MapView positions a scatter map.
type MapView struct {
	CenterLat float64 `json:"center_lat"`
	CenterLon float64 `json:"center_lon"`
	Zoom      int     `json:"zoom"`
	Style     string  `json:"style,omitempty"`
}

// Chart is a frame plus everything a sink needs to draw it.
type Chart struct {
	Kind     ChartKind         `json:"kind"`
	Title    string            `json:"title"`
	Frame    Frame             `json:"frame"`
	Bindings Bindings          `json:"bindings"`
	Labels   map[string]string `json:"labels,omitempty"`
	Height   int               `json:"height,omitempty"`
	Map      *MapView          `json:"map,omitempty"`
}

// Label returns the display label for a frame column, falling back to the
// column name.
func (c Chart) Label(column string) string {
	if l, ok := c.Labels[column]; ok {
		return l
	}
	return column
}
