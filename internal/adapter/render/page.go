// Package render turns report blocks into a self-contained HTML dashboard:
// markdown text through gomarkdown and charts as inline SVG through go-chart.
package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/gomarkdown/markdown"

	"github.com/couchcryptid/squirrel-census-etl/internal/domain"
)

// Options control page layout.
type Options struct {
	Title  string
	Width  int // chart width in pixels
	Height int // chart height when the chart does not set one
}

// Page collects report blocks and renders them as one HTML document. It
// implements pipeline.Sink and is safe to read while blocks are appended.
type Page struct {
	opts   Options
	logger *slog.Logger

	mu          sync.RWMutex
	sections    []template.HTML
	generatedAt time.Time
}

// NewPage creates an empty page.
func NewPage(opts Options, logger *slog.Logger) *Page {
	if opts.Title == "" {
		opts.Title = "Squirrel Census"
	}
	if opts.Width <= 0 {
		opts.Width = 1024
	}
	if opts.Height <= 0 {
		opts.Height = 480
	}
	return &Page{opts: opts, logger: logger}
}

// Text appends a markdown block.
func (p *Page) Text(_ context.Context, md string) error {
	html := markdown.ToHTML([]byte(md), nil, nil)
	p.append(template.HTML(html)) //nolint:gosec // markdown renderer output
	return nil
}

// Chart renders c to SVG and appends it.
func (p *Page) Chart(_ context.Context, c domain.Chart) error {
	svg, err := renderChart(c, p.opts)
	if err != nil {
		return fmt.Errorf("render %s chart %q: %w", c.Kind, c.Title, err)
	}
	p.logger.Debug("chart rendered", "kind", c.Kind, "title", c.Title, "bytes", len(svg))
	p.append(svg)
	return nil
}

func (p *Page) append(section template.HTML) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sections = append(p.sections, section)
	p.generatedAt = domain.Now()
}

// Len returns the number of blocks received.
func (p *Page) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.sections)
}

// Render writes the full HTML document.
func (p *Page) Render(w io.Writer) error {
	p.mu.RLock()
	data := pageData{
		Title:       p.opts.Title,
		Sections:    append([]template.HTML(nil), p.sections...),
		GeneratedAt: p.generatedAt,
	}
	p.mu.RUnlock()
	return pageTemplate.Execute(w, data)
}

// Bytes returns the rendered document.
func (p *Page) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := p.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile renders the document to path.
func (p *Page) WriteFile(path string) error {
	b, err := p.Bytes()
	if err != nil {
		return fmt.Errorf("render dashboard: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil { //nolint:gosec // published artifact
		return fmt.Errorf("write dashboard: %w", err)
	}
	p.logger.Info("dashboard written", "path", path, "bytes", len(b))
	return nil
}

type pageData struct {
	Title       string
	Sections    []template.HTML
	GeneratedAt time.Time
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; max-width: 1100px; margin: 2rem auto; color: #222; }
.chart svg { max-width: 100%; height: auto; }
.empty { color: #888; font-style: italic; }
footer { margin-top: 3rem; color: #888; font-size: 0.8rem; }
</style>
</head>
<body>
{{range .Sections}}{{.}}
{{end}}{{if not .GeneratedAt.IsZero}}<footer>Generated {{.GeneratedAt.Format "2006-01-02 15:04:05 MST"}}</footer>
{{end}}</body>
</html>
`))
