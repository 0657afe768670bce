package model

import (
	"github.com/tracksim/go-kalman/matrix"
	"gonum.org/v1/gonum/mat"
)

// InitCond is the state and covariance an estimator starts from.
// It implements filter.InitCond.
type InitCond struct {
	x0 *mat.VecDense
	p0 *mat.SymDense
}

// NewInitCond returns initial condition with state x0 and covariance p0.
// Both are copied. Dimensions are checked by the estimator which consumes the condition.
func NewInitCond(x0 mat.Vector, p0 mat.Symmetric) *InitCond {
	c := &InitCond{}
	if x0 != nil {
		c.x0 = mat.VecDenseCopyOf(x0)
	}
	if p0 != nil {
		c.p0 = matrix.Sym(p0)
	}

	return c
}

// State returns a copy of the initial state or nil if it was not given.
func (c *InitCond) State() mat.Vector {
	if c.x0 == nil {
		return nil
	}

	return mat.VecDenseCopyOf(c.x0)
}

// Cov returns a copy of the initial covariance or nil if it was not given.
func (c *InitCond) Cov() mat.Symmetric {
	if c.p0 == nil {
		return nil
	}

	return matrix.Sym(c.p0)
}
