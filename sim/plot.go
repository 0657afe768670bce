package sim

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// NewTrackPlot creates new plot of the tracking run from the three recorded data series:
// truth:     true pointer positions
// measured:  measured positions
// estimated: filter position estimates
// It returns error if the plot fails to be created. This can be due to either of the following conditions:
// * the record is nil
// * the record has fewer than 2 frames
// * gonum plot fails to be created
func NewTrackPlot(rec *Record) (*plot.Plot, error) {
	if rec == nil {
		return nil, fmt.Errorf("invalid record supplied")
	}

	if rec.Len() < 2 || len(rec.Measured) != rec.Len() || len(rec.Estimated) != rec.Len() {
		return nil, fmt.Errorf("invalid record length: %d", rec.Len())
	}

	p := plot.New()

	p.Title.Text = "Tracking"
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"

	legend := plot.NewLegend()
	legend.Top = true
	p.Legend = legend

	// Make a scatter plotter for measurements
	measScatter, err := plotter.NewScatter(rec.Measured)
	if err != nil {
		return nil, fmt.Errorf("failed to create scatter: %v", err)
	}
	measScatter.GlyphStyle.Color = color.RGBA{R: 169, G: 169, B: 169, A: 255}
	measScatter.GlyphStyle.Radius = vg.Points(2)

	p.Add(measScatter)
	p.Legend.Add("measurement", measScatter)

	// Make a line plotter for the true path
	truthLine, err := plotter.NewLine(rec.Truth)
	if err != nil {
		return nil, fmt.Errorf("failed to create line: %v", err)
	}
	truthLine.LineStyle.Color = color.RGBA{B: 255, A: 255}
	truthLine.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	p.Add(truthLine)
	p.Legend.Add("truth", truthLine)

	// Make a line plotter for filter estimates
	estLine, estPoints, err := plotter.NewLinePoints(rec.Estimated)
	if err != nil {
		return nil, fmt.Errorf("failed to create line points: %v", err)
	}
	estLine.LineStyle.Color = color.RGBA{G: 200, A: 255}
	estLine.LineStyle.Width = vg.Points(2)
	estPoints.Shape = draw.CrossGlyph{}
	estPoints.Color = color.RGBA{G: 128, A: 255}
	estPoints.Radius = vg.Points(2)

	p.Add(estLine, estPoints)
	p.Legend.Add("filtered", estLine, estPoints)

	return p, nil
}

// AddTrail adds trail marks to plot p drawn in color c.
// Marks fade out with their age: their alpha is scaled by the lifetime left.
// It returns error if either p or trail is nil or if the plotters fail to be created.
func AddTrail(p *plot.Plot, trail *Trail, c color.RGBA) error {
	if p == nil || trail == nil {
		return fmt.Errorf("invalid plot or trail supplied")
	}

	for _, m := range trail.Marks() {
		faded := c
		faded.A = uint8(float64(c.A) * m.Fade())

		switch m.Kind {
		case Point:
			s, err := plotter.NewScatter(plotter.XYs{{X: m.X, Y: m.Y}})
			if err != nil {
				return fmt.Errorf("failed to create scatter: %v", err)
			}
			s.GlyphStyle.Color = faded
			s.GlyphStyle.Shape = draw.CircleGlyph{}
			s.GlyphStyle.Radius = vg.Points(2)
			p.Add(s)
		case Segment:
			l, err := plotter.NewLine(plotter.XYs{{X: m.FromX, Y: m.FromY}, {X: m.X, Y: m.Y}})
			if err != nil {
				return fmt.Errorf("failed to create line: %v", err)
			}
			l.LineStyle.Color = faded
			l.LineStyle.Width = vg.Points(4)
			p.Add(l)
		default:
			return fmt.Errorf("unknown mark kind: %v", m.Kind)
		}
	}

	return nil
}
