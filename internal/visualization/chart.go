// Package visualization renders the actual-vs-predicted visitor chart.
package visualization

import (
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/templecast/templecast/internal/config"
	"github.com/templecast/templecast/internal/dataset"
	"github.com/templecast/templecast/internal/logging"
)

var (
	actualColor    = color.RGBA{R: 0x1F, G: 0x77, B: 0xB4, A: 0xFF}
	predictedColor = color.RGBA{R: 0xFF, G: 0x7F, B: 0x0E, A: 0xFF}
	bandColor      = color.RGBA{R: 0xFF, G: 0x7F, B: 0x0E, A: 0x40}
)

// Renderer draws prediction charts at a configured size and resolution.
type Renderer struct {
	logger *logging.Logger
	cfg    config.ChartConfig
}

// New creates a Renderer.
func New(logger *logging.Logger, cfg config.ChartConfig) *Renderer {
	return &Renderer{
		logger: logger,
		cfg:    cfg,
	}
}

// RenderPredictionChart draws the historical series, the predicted series
// (dashed), and the shaded confidence band, then writes a PNG to path.
func (r *Renderer) RenderPredictionChart(historical dataset.Dataset, forecasts []dataset.Forecast, path string) error {
	p := plot.New()
	p.Title.Text = "Temple Visitor Predictions"
	p.X.Label.Text = "Time"
	p.Y.Label.Text = "Visitors"
	p.X.Tick.Marker = plot.TimeTicks{Format: "01-02 15:04"}
	p.Add(plotter.NewGrid())

	if band := confidenceBand(forecasts); band != nil {
		p.Add(band)
	}

	if len(historical) > 0 {
		line, err := plotter.NewLine(observationXYs(historical))
		if err != nil {
			return &SaveError{Path: path, Err: err}
		}
		line.Color = actualColor
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add("Actual", line)
	}

	if len(forecasts) > 0 {
		line, err := plotter.NewLine(forecastXYs(forecasts))
		if err != nil {
			return &SaveError{Path: path, Err: err}
		}
		line.Color = predictedColor
		line.Width = vg.Points(1.5)
		line.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		p.Add(line)
		p.Legend.Add("Predicted", line)
	}

	p.Legend.Top = true
	p.Legend.Left = true

	if err := r.writePNG(p, path); err != nil {
		return err
	}

	r.logger.Info("Rendered prediction chart",
		"path", path,
		"historical", len(historical),
		"forecasts", len(forecasts))
	return nil
}

// writePNG rasterizes the plot at the configured inches and DPI.
func (r *Renderer) writePNG(p *plot.Plot, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &SaveError{Path: path, Err: err}
		}
	}

	width := vg.Length(r.cfg.WidthInches) * vg.Inch
	height := vg.Length(r.cfg.HeightInches) * vg.Inch
	img := vgimg.NewWith(
		vgimg.UseWH(width, height),
		vgimg.UseDPI(r.cfg.DPI),
	)
	p.Draw(draw.New(img))

	f, err := os.Create(path)
	if err != nil {
		return &SaveError{Path: path, Err: err}
	}
	defer f.Close()

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		return &SaveError{Path: path, Err: err}
	}
	return nil
}

func observationXYs(obs dataset.Dataset) plotter.XYs {
	xys := make(plotter.XYs, len(obs))
	for i, o := range obs {
		xys[i].X = float64(o.Timestamp.Unix())
		xys[i].Y = o.VisitorCount
	}
	return xys
}

func forecastXYs(forecasts []dataset.Forecast) plotter.XYs {
	xys := make(plotter.XYs, len(forecasts))
	for i, fc := range forecasts {
		xys[i].X = float64(fc.Timestamp.Unix())
		xys[i].Y = fc.PredictedValue
	}
	return xys
}

// confidenceBand builds the shaded polygon: the upper bound left to right,
// then the lower bound back right to left.
func confidenceBand(forecasts []dataset.Forecast) *plotter.Polygon {
	if len(forecasts) < 2 {
		return nil
	}

	ring := make(plotter.XYs, 0, 2*len(forecasts))
	for _, fc := range forecasts {
		ring = append(ring, plotter.XY{X: float64(fc.Timestamp.Unix()), Y: fc.UpperBound})
	}
	for i := len(forecasts) - 1; i >= 0; i-- {
		fc := forecasts[i]
		ring = append(ring, plotter.XY{X: float64(fc.Timestamp.Unix()), Y: fc.LowerBound})
	}

	poly, err := plotter.NewPolygon(ring)
	if err != nil {
		return nil
	}
	poly.Color = bandColor
	poly.LineStyle.Color = color.Transparent
	return poly
}
