package model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// System is a consistent view of the linear system matrices
// used for a single filter step.
//
// It contains the state transition (A), control (B) and observation (H)
// matrices together with process (Q) and observation (R) noise covariances.
// System matrices must not be modified: Linear replaces them wholesale.
type System struct {
	// A is state transition matrix
	A *mat.Dense
	// B is control matrix
	B *mat.Dense
	// H is observation matrix
	H *mat.Dense
	// Q is process noise covariance
	Q *mat.SymDense
	// R is observation noise covariance
	R *mat.SymDense
}

// SystemDims returns internal state length (nx), input vector length (nu)
// and measurement vector length (ny).
func (s System) SystemDims() (nx, nu, ny int) {
	nx, _ = s.A.Dims()
	_, nu = s.B.Dims()
	ny, _ = s.H.Dims()

	return nx, nu, ny
}

// Propagate returns the next internal state A*x + B*u.
// Nil u is treated as zero control input.
func (s System) Propagate(x, u mat.Vector) (*mat.VecDense, error) {
	nx, nu, _ := s.SystemDims()
	if x.Len() != nx {
		return nil, fmt.Errorf("invalid state vector length: %d != %d", x.Len(), nx)
	}

	if u != nil && u.Len() != nu {
		return nil, fmt.Errorf("invalid input vector length: %d != %d", u.Len(), nu)
	}

	out := mat.NewVecDense(nx, nil)
	out.MulVec(s.A, x)

	if u != nil {
		outU := mat.NewVecDense(nx, nil)
		outU.MulVec(s.B, u)
		out.AddVec(out, outU)
	}

	return out, nil
}

// Observe returns external state H*x given internal state x.
func (s System) Observe(x mat.Vector) (*mat.VecDense, error) {
	nx, _, ny := s.SystemDims()
	if x.Len() != nx {
		return nil, fmt.Errorf("invalid state vector length: %d != %d", x.Len(), nx)
	}

	out := mat.NewVecDense(ny, nil)
	out.MulVec(s.H, x)

	return out, nil
}
