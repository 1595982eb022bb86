// Package chart renders decoded signal time series to image files.
package chart

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"sort"
	"time"

	"github.com/hashicorp/go-multierror"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/canviz/candbc/internal/decode"
	"github.com/canviz/candbc/internal/metrics"
)

// palette cycles across signal lines.
var palette = []color.RGBA{
	{R: 64, G: 192, B: 64, A: 255},
	{R: 128, G: 128, B: 255, A: 255},
	{R: 192, G: 64, B: 64, A: 255},
	{R: 192, G: 192, B: 64, A: 255},
	{R: 64, G: 192, B: 192, A: 255},
	{R: 192, G: 64, B: 192, A: 255},
}

// Series accumulates decoded signal values grouped by signal name. The X
// coordinate is seconds from the first recorded point.
type Series struct {
	points map[string]plotter.XYs
	start  time.Time
	hasAny bool
}

// NewSeries returns an empty accumulator.
func NewSeries() *Series {
	return &Series{points: map[string]plotter.XYs{}}
}

// Add appends one decoded signal value.
func (s *Series) Add(d decode.DecodedSignal) {
	if !s.hasAny {
		s.start = d.Timestamp
		s.hasAny = true
	}
	x := d.Timestamp.Sub(s.start).Seconds()
	s.points[d.Name] = append(s.points[d.Name], plotter.XY{X: x, Y: d.PhysicalValue})
}

// Names returns the signal names present, sorted.
func (s *Series) Names() []string {
	names := make([]string, 0, len(s.points))
	for name := range s.points {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the total number of points across all signals.
func (s *Series) Len() int {
	n := 0
	for _, xys := range s.points {
		n += len(xys)
	}
	return n
}

// Plot builds a line chart with one line per signal and a legend entry
// for each.
func (s *Series) Plot(title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Time [s]"
	p.Y.Label.Text = "Value"
	p.Legend.Top = true

	for i, name := range s.Names() {
		line, err := plotter.NewLine(s.points[name])
		if err != nil {
			return nil, fmt.Errorf("line for %s: %w", name, err)
		}
		line.Color = palette[i%len(palette)]
		p.Add(line)
		p.Legend.Add(name, line)
	}
	return p, nil
}

// WritePlot renders p to output in the given format (png, svg, pdf).
func WritePlot(p *plot.Plot, width, height vg.Length, output io.Writer, format string) error {
	w, err := p.WriterTo(width, height, format)
	if err != nil {
		return err
	}
	_, err = w.WriteTo(output)
	return err
}

func combineErrors(errs ...error) (err error) {
	for _, e := range errs {
		switch {
		case e == nil:
			// ignore
		case err == nil:
			err = e
		default:
			err = multierror.Append(err, e)
		}
	}
	return err
}

// WriteClosePlot renders p to output and closes it, keeping both errors.
func WriteClosePlot(p *plot.Plot, width, height vg.Length, output io.WriteCloser, format string) (err error) {
	defer func() {
		e := output.Close()
		err = combineErrors(err, e)
	}()
	return WritePlot(p, width, height, output, format)
}

// SavePlot renders p to a file, inferring nothing from the path; format
// must be given explicitly.
func SavePlot(p *plot.Plot, width, height vg.Length, path string, format string) error {
	output, err := os.Create(path)
	if err != nil {
		metrics.IncError(metrics.ErrChartRender)
		return err
	}
	if err := WriteClosePlot(p, width, height, output, format); err != nil {
		metrics.IncError(metrics.ErrChartRender)
		return err
	}
	return nil
}
