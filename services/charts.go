package services

import (
	"bytes"
	"encoding/base64"
	"fmt"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

// MinimalPixelPNG ist das fest kodierte 1x1-Pixel-PNG als Data-URI. Es ist
// der letzte Fallback jedes Render-Pfads: ein Chart-Ergebnis ist immer ein
// gültiges Bild.
const MinimalPixelPNG = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNk+M9QDwADhgGAWjR9awAAAABJRU5ErkJggg=="

const pngDataURIPrefix = "data:image/png;base64,"

// ChartRenderer rendert Scatterplots als eingebettete PNG-Bilder. Jeder
// Aufruf arbeitet mit eigenen Puffern; es gibt keinen geteilten
// Render-Kontext.
type ChartRenderer struct {
	Logger *zap.Logger
}

// NewChartRenderer erstellt einen neuen Chart-Renderer.
func NewChartRenderer(logger *zap.Logger) *ChartRenderer {
	return &ChartRenderer{Logger: logger}
}

// ScatterplotWithRegression rendert die Punkte als Scatterplot mit
// Regressionsgerade (Legende mit R²) und liefert das PNG als Data-URI.
// Jeder interne Fehler degradiert zum 1x1-Pixel-PNG, niemals zu einem error.
func (c *ChartRenderer) ScatterplotWithRegression(points []ChartPoint, xLabel, yLabel string) string {
	png, err := c.renderScatter(points, xLabel, yLabel)
	if err != nil {
		c.Logger.Warn("Chart rendering failed, serving pixel fallback", zap.Error(err))
		return MinimalPixelPNG
	}
	return PNGDataURI(png)
}

// PNGDataURI kodiert PNG-Bytes als data:image/png-URI.
func PNGDataURI(png []byte) string {
	return pngDataURIPrefix + base64.StdEncoding.EncodeToString(png)
}

// renderScatter baut das eigentliche Chart. Unter zwei Punkten lässt sich
// keine Gerade fitten, das gilt als Render-Fehler.
func (c *ChartRenderer) renderScatter(points []ChartPoint, xLabel, yLabel string) ([]byte, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("insufficient valid data points: %d", len(points))
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	minX, maxX := points[0].X, points[0].X
	for i, p := range points {
		xs[i] = p.X
		ys[i] = p.Y
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	r := stat.Correlation(xs, ys, nil)

	scatter := chart.ContinuousSeries{
		Name: fmt.Sprintf("%s vs %s", yLabel, xLabel),
		Style: chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidth:    4,
			DotColor:    drawing.ColorBlue,
		},
		XValues: xs,
		YValues: ys,
	}
	regression := chart.ContinuousSeries{
		Name: fmt.Sprintf("Regression line (R² = %.3f)", r*r),
		Style: chart.Style{
			StrokeColor:     drawing.ColorRed,
			StrokeWidth:     2,
			StrokeDashArray: []float64{5.0, 5.0},
		},
		XValues: []float64{minX, maxX},
		YValues: []float64{alpha + beta*minX, alpha + beta*maxX},
	}

	graph := chart.Chart{
		Width:  640,
		Height: 480,
		XAxis:  chart.XAxis{Name: xLabel},
		YAxis:  chart.YAxis{Name: yLabel},
		Series: []chart.Series{scatter, regression},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
