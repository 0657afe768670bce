package filter

import "gonum.org/v1/gonum/mat"

// Filter estimates the hidden state of a linear dynamical system
// from a sequence of noisy measurements.
type Filter interface {
	// Predict propagates estimate est one tick forward with control input u
	Predict(est Estimate, u mat.Vector) (Estimate, error)
	// Update corrects the prior estimate with measurement z
	Update(prior Estimate, z mat.Vector) (Estimate, error)
}

// InitCond is the state and covariance a filter starts from.
type InitCond interface {
	// State returns initial state vector
	State() mat.Vector
	// Cov returns initial state covariance
	Cov() mat.Symmetric
}

// Estimate is a state vector paired with its covariance.
type Estimate interface {
	// Val returns estimated state vector
	Val() mat.Vector
	// Cov returns covariance of the estimated state
	Cov() mat.Symmetric
}

// Noise is a source of additive noise samples.
type Noise interface {
	// Mean returns noise mean
	Mean() []float64
	// Cov returns noise covariance
	Cov() mat.Symmetric
	// Sample draws a noise sample
	Sample() mat.Vector
	// Reset restores the noise to its initial state
	Reset()
}
