package sim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot/plotter"
)

// Record is the position history of a tracking run.
type Record struct {
	// Truth are true pointer positions
	Truth plotter.XYs
	// Measured are measured pointer positions
	Measured plotter.XYs
	// Estimated are filter position estimates
	Estimated plotter.XYs
}

// Len returns the number of recorded frames.
func (r *Record) Len() int {
	return len(r.Truth)
}

func (r *Record) add(truth, measured, estimated plotter.XY) {
	r.Truth = append(r.Truth, truth)
	r.Measured = append(r.Measured, measured)
	r.Estimated = append(r.Estimated, estimated)
}

func (r *Record) reset() {
	r.Truth = nil
	r.Measured = nil
	r.Estimated = nil
}

// RMSE returns root mean squared position error of measurements and estimates.
// It returns error if the record is empty.
func (r *Record) RMSE() (measured, estimated float64, err error) {
	if r.Len() == 0 {
		return 0, 0, fmt.Errorf("empty record")
	}

	return rmse(r.Truth, r.Measured), rmse(r.Truth, r.Estimated), nil
}

func rmse(truth, xys plotter.XYs) float64 {
	dist := make([]float64, len(truth))
	for i := range truth {
		dist[i] = floats.Distance(
			[]float64{truth[i].X, truth[i].Y},
			[]float64{xys[i].X, xys[i].Y},
			2,
		)
	}

	return math.Sqrt(floats.Dot(dist, dist) / float64(len(dist)))
}
