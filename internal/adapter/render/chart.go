package render

import (
	"bytes"
	"fmt"
	"html/template"
	"math"

	"github.com/golang/geo/s2"
	"github.com/montanaflynn/stats"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/couchcryptid/squirrel-census-etl/internal/domain"
)

const unknownGroup = "Unknown"

// furColors gives census fur colors their natural shade; other groups fall
// back to the go-chart palette.
var furColors = map[string]drawing.Color{
	"Gray":     drawing.ColorFromHex("8c8c8c"),
	"Cinnamon": drawing.ColorFromHex("b5651d"),
	"Black":    drawing.ColorFromHex("1a1a1a"),
}

func renderChart(c domain.Chart, opts Options) (template.HTML, error) {
	height := opts.Height
	if c.Height > 0 {
		height = c.Height
	}

	var (
		buf bytes.Buffer
		err error
	)
	switch c.Kind {
	case domain.ChartScatterMap:
		err = renderScatterMap(&buf, c, opts.Width, height)
	case domain.ChartGroupedBar:
		err = renderGroupedBar(&buf, c, opts.Width, height)
	case domain.ChartPie:
		err = renderPie(&buf, c, opts.Width, height)
	default:
		return "", fmt.Errorf("unsupported chart kind %q", c.Kind)
	}
	if err != nil {
		return "", err
	}
	return template.HTML(`<div class="chart">` + buf.String() + `</div>`), nil //nolint:gosec // go-chart SVG
}

func emptyChart(buf *bytes.Buffer, title, msg string) {
	fmt.Fprintf(buf, `<h3>%s</h3><p class="empty">%s</p>`,
		template.HTMLEscapeString(title), template.HTMLEscapeString(msg))
}

// colorFor picks a fixed shade for known fur colors and a palette color by
// first-seen index otherwise.
func colorFor(group string, index int) drawing.Color {
	if c, ok := furColors[group]; ok {
		return c
	}
	return chart.GetDefaultColor(index)
}

// renderScatterMap plots sightings with longitude on X and latitude on Y,
// one series per color group. The viewport covers every point and the map
// center, padded by a quarter tile at the requested zoom.
func renderScatterMap(buf *bytes.Buffer, c domain.Chart, width, height int) error {
	b := c.Bindings
	type group struct {
		name     string
		lat, lon []float64
	}
	var groups []*group
	index := map[string]*group{}

	var points []s2.LatLng
	for i := range c.Frame.Len() {
		lat, okLat := c.Frame.Float(i, b.Lat)
		lon, okLon := c.Frame.Float(i, b.Lon)
		if !okLat || !okLon {
			continue
		}
		name := c.Frame.Text(i, b.Color)
		if name == "" {
			name = unknownGroup
		}
		g, ok := index[name]
		if !ok {
			g = &group{name: name}
			index[name] = g
			groups = append(groups, g)
		}
		g.lat = append(g.lat, lat)
		g.lon = append(g.lon, lon)
		points = append(points, s2.LatLngFromDegrees(lat, lon))
	}
	if len(points) == 0 {
		emptyChart(buf, c.Title, "No coordinates")
		return nil
	}

	rect := mapViewport(points, c.Map)

	series := make([]chart.Series, 0, len(groups))
	for i, g := range groups {
		series = append(series, chart.ContinuousSeries{
			Name:    g.name,
			XValues: g.lon,
			YValues: g.lat,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    3,
				DotColor:    colorFor(g.name, i),
			},
		})
	}

	ch := chart.Chart{
		Title:      c.Title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  "Longitude",
			Range: &chart.ContinuousRange{Min: rect.Lo().Lng.Degrees(), Max: rect.Hi().Lng.Degrees()},
		},
		YAxis: chart.YAxis{
			Name:  "Latitude",
			Range: &chart.ContinuousRange{Min: rect.Lo().Lat.Degrees(), Max: rect.Hi().Lat.Degrees()},
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(chart.SVG, buf)
}

// mapViewport bounds the points and the map center, padded on every side
// by a quarter tile at the view's zoom.
func mapViewport(points []s2.LatLng, view *domain.MapView) s2.Rect {
	rect := s2.EmptyRect()
	margin := 0.005
	if view != nil {
		rect = rect.AddPoint(s2.LatLngFromDegrees(view.CenterLat, view.CenterLon))
		if view.Zoom > 0 {
			margin = 360 / math.Pow(2, float64(view.Zoom)) / 4
		}
	}
	for _, p := range points {
		rect = rect.AddPoint(p)
	}

	lo, hi := rect.Lo(), rect.Hi()
	return s2.RectFromLatLng(s2.LatLngFromDegrees(lo.Lat.Degrees()-margin, lo.Lng.Degrees()-margin)).
		AddPoint(s2.LatLngFromDegrees(hi.Lat.Degrees()+margin, hi.Lng.Degrees()+margin))
}

// renderGroupedBar draws one bar per frame row, labelled "<x> <group>" and
// colored by group.
func renderGroupedBar(buf *bytes.Buffer, c domain.Chart, width, height int) error {
	b := c.Bindings
	if c.Frame.Len() == 0 {
		emptyChart(buf, c.Title, "No data")
		return nil
	}

	groupIndex := map[string]int{}
	bars := make([]chart.Value, 0, c.Frame.Len())
	maxValue := 0.0
	for i := range c.Frame.Len() {
		v, _ := c.Frame.Float(i, b.Y)
		group := c.Frame.Text(i, b.Color)
		gi, ok := groupIndex[group]
		if !ok {
			gi = len(groupIndex)
			groupIndex[group] = gi
		}
		col := chart.GetDefaultColor(gi)
		bars = append(bars, chart.Value{
			Label: c.Frame.Text(i, b.X) + " " + group,
			Value: v,
			Style: chart.Style{FillColor: col, StrokeColor: col},
		})
		maxValue = math.Max(maxValue, v)
	}

	bc := chart.BarChart{
		Title:      c.Title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		BarWidth:   max(8, width/(2*len(bars))),
		YAxis: chart.YAxis{
			Name:  c.Label(b.Y),
			Range: &chart.ContinuousRange{Min: 0, Max: math.Max(1, maxValue*1.1)},
		},
		Bars: bars,
	}
	return bc.Render(chart.SVG, buf)
}

// renderPie draws one slice per frame row labelled with its share.
func renderPie(buf *bytes.Buffer, c domain.Chart, width, height int) error {
	b := c.Bindings
	counts := make([]float64, 0, c.Frame.Len())
	for i := range c.Frame.Len() {
		v, _ := c.Frame.Float(i, b.Values)
		counts = append(counts, v)
	}
	total, err := stats.Sum(stats.Float64Data(counts))
	if err != nil || total <= 0 {
		emptyChart(buf, c.Title, "No data")
		return nil
	}

	values := make([]chart.Value, 0, len(counts))
	for i, v := range counts {
		name := c.Frame.Text(i, b.Names)
		col := colorFor(name, i)
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s (%.1f%%)", name, 100*v/total),
			Value: v,
			Style: chart.Style{FillColor: col, FontColor: drawing.ColorWhite},
		})
	}

	side := min(width, height)
	pc := chart.PieChart{
		Title:  c.Title,
		Width:  side,
		Height: side,
		Values: values,
	}
	return pc.Render(chart.SVG, buf)
}
