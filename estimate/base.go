package estimate

import (
	"fmt"

	"github.com/tracksim/go-kalman/matrix"
	"gonum.org/v1/gonum/mat"
)

// Base is an immutable pair of estimated state and its covariance.
// Readers holding a Base always see a state with the covariance computed for it.
type Base struct {
	val *mat.VecDense
	cov *mat.SymDense
}

// NewBase returns estimate of val known exactly, i.e. with zero covariance.
func NewBase(val mat.Vector) (*Base, error) {
	if val == nil || val.Len() == 0 {
		return nil, fmt.Errorf("invalid estimate value: %v", val)
	}

	return NewBaseWithCov(val, mat.NewSymDense(val.Len(), nil))
}

// NewBaseWithCov returns estimate of val with covariance cov.
// Both are copied. It returns error if cov is not [len(val) x len(val)].
func NewBaseWithCov(val mat.Vector, cov mat.Symmetric) (*Base, error) {
	if val == nil || cov == nil {
		return nil, fmt.Errorf("invalid estimate: value %v, covariance %v", val, cov)
	}

	if n, c := val.Len(), cov.SymmetricDim(); n != c {
		return nil, fmt.Errorf("estimate dimension mismatch: state %d, covariance [%d x %d]", n, c, c)
	}

	return &Base{
		val: mat.VecDenseCopyOf(val),
		cov: matrix.Sym(cov),
	}, nil
}

// Val returns a copy of the estimated state.
func (b *Base) Val() mat.Vector {
	return mat.VecDenseCopyOf(b.val)
}

// Cov returns a copy of the estimated covariance.
func (b *Base) Cov() mat.Symmetric {
	return matrix.Sym(b.cov)
}

// Len returns the length of the estimated state vector.
func (b *Base) Len() int {
	return b.val.Len()
}
