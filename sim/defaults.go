package sim

import (
	"fmt"
	"math"

	filter "github.com/tracksim/go-kalman"
	"github.com/tracksim/go-kalman/matrix"
	"github.com/tracksim/go-kalman/model"
	"gonum.org/v1/gonum/mat"
)

const (
	// DefaultFrameRate is the default number of frames per second
	DefaultFrameRate = 30.0
	// DefaultLifetime is the default fade-out time of trail marks in seconds
	DefaultLifetime = 4.0
)

// Disturbance identifies the covariance of the noise which disturbs
// the true pointer state before it is measured.
const Disturbance model.MatrixID = "N"

// Matrices are the tracking system matrices.
type Matrices struct {
	// A is state transition matrix
	A *mat.Dense
	// B is control matrix
	B *mat.Dense
	// H is measurement matrix
	H *mat.Dense
	// Q is state noise covariance
	Q *mat.SymDense
	// R is measurement noise covariance
	R *mat.SymDense
	// N is disturbance covariance
	N *mat.SymDense
}

// Defaults returns the default matrices of a pointer tracked with
// a constant velocity model at the given frame rate:
//
//	A = exp(Ac/frameRate)
//	B = H = I
//	Q = 0.01*I
//	R = 0.1*I
//	N = diag(100, 100, 0, 0)
//
// It returns *filter.ConfigError if frameRate is not a positive finite number.
func Defaults(frameRate float64) (*Matrices, error) {
	if math.IsNaN(frameRate) || math.IsInf(frameRate, 0) || frameRate <= 0 {
		return nil, filter.NewConfigError("defaults", "invalid frame rate: %v", frameRate)
	}

	A, err := model.Discretize(model.ConstantVelocity(2), 1/frameRate)
	if err != nil {
		return nil, &filter.ConfigError{Op: "defaults", Err: err}
	}

	Q := mat.NewSymDense(4, nil)
	R := mat.NewSymDense(4, nil)
	for i := 0; i < 4; i++ {
		Q.SetSym(i, i, 0.01)
		R.SetSym(i, i, 0.1)
	}

	N := mat.NewSymDense(4, nil)
	N.SetSym(0, 0, 100)
	N.SetSym(1, 1, 100)

	return &Matrices{
		A: A,
		B: matrix.Eye(4),
		H: matrix.Eye(4),
		Q: Q,
		R: R,
		N: N,
	}, nil
}

// Matrix returns a copy of the matrix identified by id.
func (m *Matrices) Matrix(id model.MatrixID) (mat.Matrix, error) {
	switch id {
	case model.StateMatrix:
		return mat.DenseCopyOf(m.A), nil
	case model.ControlMatrix:
		return mat.DenseCopyOf(m.B), nil
	case model.OutputMatrix:
		return mat.DenseCopyOf(m.H), nil
	case model.StateNoise:
		return matrix.Sym(m.Q), nil
	case model.OutputNoise:
		return matrix.Sym(m.R), nil
	case Disturbance:
		return matrix.Sym(m.N), nil
	}

	return nil, fmt.Errorf("unknown matrix: %q", id)
}

// InitCond returns the initial condition of a pointer resting at x, y
// whose state is known exactly.
func InitCond(x, y float64) *model.InitCond {
	return model.NewInitCond(mat.NewVecDense(4, []float64{x, y, 0, 0}), mat.NewSymDense(4, nil))
}
