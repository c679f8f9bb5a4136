package pipeline

import "github.com/couchcryptid/squirrel-census-etl/internal/domain"

// Map placement for Central Park.
const (
	parkCenterLat = 40.7826
	parkCenterLon = -73.9656
	mapZoom       = 14
	mapHeight     = 600
)

// Labels shared by both shift bar charts.
var shiftChartLabels = map[string]string{
	"Activity":         "Behavior",
	"Interaction":      "Behavior",
	domain.HeaderCount: "Number of Squirrels",
}

// Block is one unit of dashboard output: markdown text or a chart.
type Block struct {
	Markdown string
	Chart    *domain.Chart
}

// Kind names the block type for metrics.
func (b Block) Kind() string {
	if b.Chart != nil {
		return "chart"
	}
	return "text"
}

// BuildReport lays out the dashboard for a prepared table: title and map,
// then activities, interactions, and fur colors, each introduced by text.
func BuildReport(t domain.NormalizedTable) []Block {
	activity := domain.AggregateByShift(t, domain.ActivityColumns)
	interaction := domain.AggregateByShift(t, domain.InteractionColumns)
	colors := domain.ValueCounts(t, domain.ColumnFurColor)

	return []Block{
		text("# Squirrels in Central Park"),
		text("Map of squirrel sightings in Central Park (hover for squirrel details)"),
		chart(SightingsMap(t)),

		text("## Squirrel Activities"),
		text("Comparison of what squirrels are doing morning vs afternoon"),
		chart(ShiftBarChart("Squirrel Activities by Time of Day", "Activity", activity)),

		text("## Squirrel Human Interactions"),
		text("Comparison of how squirrels interact with humans in morning vs afternoon"),
		chart(ShiftBarChart("Squirrel Human Interactions by Time of Day", "Interaction", interaction)),

		text("## Squirrel Colors"),
		text("Comparison of the frequency of squirrel fur colors"),
		chart(FurColorPie(colors)),
	}
}

// SightingsMap plots every sighting colored by fur color. Sightings
// without coordinates stay in the frame with nil lat/long.
func SightingsMap(t domain.NormalizedTable) domain.Chart {
	hover := append([]string{domain.ColumnAge}, domain.ActivityColumns...)
	columns := append([]string{domain.ColumnFurColor, domain.ColumnID}, hover...)

	return domain.Chart{
		Kind:  domain.ChartScatterMap,
		Title: "Squirrel Sightings in Central Park",
		Frame: domain.SightingsFrame(t, columns...),
		Bindings: domain.Bindings{
			Lat:       domain.ColumnLat,
			Lon:       domain.ColumnLong,
			Color:     domain.ColumnFurColor,
			HoverName: domain.ColumnID,
			Hover:     hover,
		},
		Height: mapHeight,
		Map: &domain.MapView{
			CenterLat: parkCenterLat,
			CenterLon: parkCenterLon,
			Zoom:      mapZoom,
			Style:     "open-street-map",
		},
	}
}

// ShiftBarChart draws shift aggregates as bars grouped by shift.
func ShiftBarChart(title, header string, rows []domain.TidyRow) domain.Chart {
	return domain.Chart{
		Kind:  domain.ChartGroupedBar,
		Title: title,
		Frame: domain.TidyFrame(header, rows),
		Bindings: domain.Bindings{
			X:     header,
			Y:     domain.HeaderCount,
			Color: domain.HeaderShift,
		},
		Labels: shiftChartLabels,
	}
}

// FurColorPie draws fur color counts as a pie.
func FurColorPie(rows []domain.FrequencyRow) domain.Chart {
	const header = "Fur Color"
	return domain.Chart{
		Kind:  domain.ChartPie,
		Title: "Squirrels by Fur Color",
		Frame: domain.FrequencyFrame(header, rows),
		Bindings: domain.Bindings{
			Names:  header,
			Values: domain.HeaderCount,
		},
	}
}

func text(markdown string) Block {
	return Block{Markdown: markdown}
}

func chart(c domain.Chart) Block {
	return Block{Chart: &c}
}
