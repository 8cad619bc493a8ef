package viz

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/PI-33/text2sql/internal/observe"
	"github.com/PI-33/text2sql/internal/table"
)

// Renderer decides chart feasibility and draws PNG charts into the output
// directory. A returned empty path always means "no chart", never an error;
// callers fall back to a text answer.
type Renderer struct {
	outputDir string
	observer  *observe.Observer

	// The drawing surface is not reentrant; one render finishes fully
	// before the next starts.
	mu sync.Mutex
}

func NewRenderer(outputDir string, obs *observe.Observer) *Renderer {
	return &Renderer{
		outputDir: outputDir,
		observer:  obs,
	}
}

// Render draws a chart for the table if one is feasible and returns the
// image path, or "" when no chart can be produced. Column 0 is the x axis,
// column 1 the y axis. A datetime x axis yields a line+marker series in
// ascending time order; anything else a bar chart in row order.
func (r *Renderer) Render(t *table.Table) string {
	if len(t.Columns) < 2 || t.Empty() {
		return ""
	}

	if t.Columns[1].Type != table.TypeNumeric {
		if !t.CoerceNumeric(1) {
			r.observer.Log().Info().Str("column", t.Columns[1].Name).Msg("y-axis column is not numeric, skipping chart")
			return ""
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	path, err := r.renderFile(t)
	if err != nil {
		r.observer.Log().Warn().Err(err).Msg("chart rendering failed")
		return ""
	}
	return path
}

func (r *Renderer) renderFile(t *table.Table) (path string, err error) {
	// go-chart panics on some degenerate inputs (e.g. zero value ranges).
	defer func() {
		if p := recover(); p != nil {
			path = ""
			err = fmt.Errorf("render panic: %v", p)
		}
	}()

	if err := os.MkdirAll(r.outputDir, 0750); err != nil {
		return "", fmt.Errorf("failed to create chart directory: %w", err)
	}
	path = filepath.Join(r.outputDir, fmt.Sprintf("chart_%d.png", time.Now().UnixNano()))

	f, err := os.Create(path) // #nosec G304
	if err != nil {
		return "", fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	if t.Columns[0].Type == table.TypeDatetime {
		err = r.renderTimeSeries(t, f)
	} else {
		err = r.renderBars(t, f)
	}
	if err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

func (r *Renderer) renderTimeSeries(t *table.Table, f *os.File) error {
	type point struct {
		x time.Time
		y float64
	}
	var points []point
	for _, row := range t.Rows {
		if row[0].Valid && row[1].Valid {
			points = append(points, point{x: row[0].Time, y: row[1].Num})
		}
	}
	sort.Slice(points, func(i, j int) bool { return points[i].x.Before(points[j].x) })

	xs := make([]time.Time, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.x
		ys[i] = p.y
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s by %s", t.Columns[1].Name, t.Columns[0].Name),
		Width:  1024,
		Height: 512,
		XAxis:  chart.XAxis{Name: t.Columns[0].Name},
		YAxis:  chart.YAxis{Name: t.Columns[1].Name},
		Series: []chart.Series{
			chart.TimeSeries{
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeWidth: 2.0,
					DotWidth:    4.0,
				},
			},
		},
	}
	return graph.Render(chart.PNG, f)
}

func (r *Renderer) renderBars(t *table.Table, f *os.File) error {
	var bars []chart.Value
	for _, row := range t.Rows {
		if !row[1].Valid {
			continue
		}
		bars = append(bars, chart.Value{
			Label: row[0].Raw,
			Value: row[1].Num,
		})
	}

	graph := chart.BarChart{
		Title:    fmt.Sprintf("%s by %s", t.Columns[1].Name, t.Columns[0].Name),
		Width:    1024,
		Height:   512,
		BarWidth: 60,
		YAxis:    chart.YAxis{Name: t.Columns[1].Name},
		Bars:     bars,
	}
	return graph.Render(chart.PNG, f)
}
