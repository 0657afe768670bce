package model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Discretize returns the discrete-time state transition matrix exp(Ac*dt)
// of a linear continuous-time system dx/dt = Ac*x sampled every dt.
// It returns error if Ac is not square or dt is not positive.
func Discretize(ac mat.Matrix, dt float64) (*mat.Dense, error) {
	if ac == nil {
		return nil, fmt.Errorf("system matrix must be defined")
	}

	rows, cols := ac.Dims()
	if rows != cols {
		return nil, fmt.Errorf("invalid system matrix dimensions: [%d x %d]", rows, cols)
	}

	if dt <= 0 {
		return nil, fmt.Errorf("invalid sampling time: %v", dt)
	}

	// See Discrete-Time Control Systems by Katsuhiko Ogata, Eq. (5-73)
	ad := mat.NewDense(rows, cols, nil)
	ad.Scale(dt, ac)
	ad.Exp(ad)

	return ad, nil
}

// ConstantVelocity returns the continuous-time system matrix of a body
// moving with constant velocity in dims dimensions.
// The state vector is ordered as positions followed by velocities.
func ConstantVelocity(dims int) *mat.Dense {
	n := 2 * dims
	ac := mat.NewDense(n, n, nil)
	for i := 0; i < dims; i++ {
		ac.Set(i, dims+i, 1.0)
	}

	return ac
}
