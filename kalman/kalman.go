package kalman

import (
	filter "github.com/tracksim/go-kalman"
	"gonum.org/v1/gonum/mat"
)

// Kalman is a recursive Kalman estimator which owns its estimate.
// Predict and Update are pure; Advance composes them and replaces the estimate.
type Kalman interface {
	filter.Filter
	// Advance predicts with control input u, corrects with measurement z
	// and stores the result as the current estimate
	Advance(z, u mat.Vector) (filter.Estimate, error)
	// Reset restarts estimation from state x0 with covariance p0
	Reset(x0 mat.Vector, p0 mat.Symmetric) error
	// Current returns the estimate stored by the last Advance
	Current() filter.Estimate
	// Previous returns the estimate Current replaced
	Previous() filter.Estimate
	// Gain returns the gain applied by the last Advance
	Gain() mat.Matrix
	// Innovation returns the measurement residual of the last Advance
	Innovation() mat.Vector
}
