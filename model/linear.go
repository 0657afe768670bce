package model

import (
	"fmt"
	"sync"

	filter "github.com/tracksim/go-kalman"
	"github.com/tracksim/go-kalman/matrix"
	"gonum.org/v1/gonum/mat"
)

// MatrixID identifies one of the linear model matrices.
type MatrixID string

const (
	// StateMatrix is the state transition matrix A [n x n]
	StateMatrix MatrixID = "A"
	// ControlMatrix is the control matrix B [n x m]
	ControlMatrix MatrixID = "B"
	// OutputMatrix is the observation matrix H [k x n]
	OutputMatrix MatrixID = "H"
	// StateNoise is the process noise covariance Q [n x n]
	StateNoise MatrixID = "Q"
	// OutputNoise is the observation noise covariance R [k x k]
	OutputNoise MatrixID = "R"
)

// MatrixIDs lists all model matrix identifiers in the canonical order.
var MatrixIDs = []MatrixID{StateMatrix, ControlMatrix, OutputMatrix, StateNoise, OutputNoise}

// Linear is a linear discrete-time model of a dynamical system:
//
//	x[k+1] = A*x[k] + B*u[k] + w[k],  w ~ N(0, Q)
//	z[k]   = H*x[k] + v[k],           v ~ N(0, R)
//
// Model dimensions are fixed when the model is created. Individual matrices
// can be replaced with SetMatrix as long as their dimensions do not change.
type Linear struct {
	mu  sync.RWMutex
	sys System
	// nx is state vector length
	nx int
	// nu is control vector length
	nu int
	// ny is measurement vector length
	ny int
}

// NewLinear creates new linear model and returns it.
// It returns *filter.ConfigError if either of the following conditions is met:
//   - A is not square
//   - B does not have the same number of rows as A
//   - H does not have the same number of columns as A
//   - Q is not symmetric with the same dimensions as A
//   - R is not symmetric with dimensions matching the rows of H
//   - any matrix contains non-finite values
func NewLinear(A, B, H, Q, R mat.Matrix) (*Linear, error) {
	for _, m := range []struct {
		id  MatrixID
		val mat.Matrix
	}{
		{StateMatrix, A}, {ControlMatrix, B}, {OutputMatrix, H}, {StateNoise, Q}, {OutputNoise, R},
	} {
		if isNil(m.val) {
			return nil, filter.NewConfigError("new model", "missing %s matrix", m.id)
		}
	}

	nx, cols := A.Dims()
	if nx != cols {
		return nil, filter.NewConfigError("new model", "invalid A matrix dimensions: [%d x %d]", nx, cols)
	}
	_, nu := B.Dims()
	ny, _ := H.Dims()

	l := &Linear{nx: nx, nu: nu, ny: ny}

	var sys System
	for _, id := range MatrixIDs {
		var m mat.Matrix
		switch id {
		case StateMatrix:
			m = A
		case ControlMatrix:
			m = B
		case OutputMatrix:
			m = H
		case StateNoise:
			m = Q
		case OutputNoise:
			m = R
		}
		if err := l.install(&sys, id, m); err != nil {
			return nil, &filter.ConfigError{Op: "new model", Err: err}
		}
	}
	l.sys = sys

	return l, nil
}

// SystemDims returns state vector length (nx), control vector length (nu)
// and measurement vector length (ny).
func (l *Linear) SystemDims() (nx, nu, ny int) {
	return l.nx, l.nu, l.ny
}

// Snapshot returns the current model matrices.
// The returned matrices are never modified by Linear.
func (l *Linear) Snapshot() System {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.sys
}

// SystemMatrix returns state transition matrix A
func (l *Linear) SystemMatrix() mat.Matrix {
	return mat.DenseCopyOf(l.Snapshot().A)
}

// ControlMatrix returns control matrix B
func (l *Linear) ControlMatrix() mat.Matrix {
	return mat.DenseCopyOf(l.Snapshot().B)
}

// OutputMatrix returns observation matrix H
func (l *Linear) OutputMatrix() mat.Matrix {
	return mat.DenseCopyOf(l.Snapshot().H)
}

// StateNoiseCov returns process noise covariance Q
func (l *Linear) StateNoiseCov() mat.Symmetric {
	q := l.Snapshot().Q
	cov := mat.NewSymDense(q.SymmetricDim(), nil)
	cov.CopySym(q)

	return cov
}

// OutputNoiseCov returns observation noise covariance R
func (l *Linear) OutputNoiseCov() mat.Symmetric {
	r := l.Snapshot().R
	cov := mat.NewSymDense(r.SymmetricDim(), nil)
	cov.CopySym(r)

	return cov
}

// Matrix returns a copy of the model matrix identified by id.
func (l *Linear) Matrix(id MatrixID) (mat.Matrix, error) {
	switch id {
	case StateMatrix:
		return l.SystemMatrix(), nil
	case ControlMatrix:
		return l.ControlMatrix(), nil
	case OutputMatrix:
		return l.OutputMatrix(), nil
	case StateNoise:
		return l.StateNoiseCov(), nil
	case OutputNoise:
		return l.OutputNoiseCov(), nil
	}

	return nil, filter.NewConfigError("get matrix", "unknown matrix: %q", id)
}

// SetMatrix replaces the model matrix identified by id with a copy of m.
// It returns *filter.ConfigError and leaves the model unchanged
// if m does not match the model dimensions.
func (l *Linear) SetMatrix(id MatrixID, m mat.Matrix) error {
	if isNil(m) {
		return filter.NewConfigError("set matrix", "missing %s matrix", id)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	sys := l.sys
	if err := l.install(&sys, id, m); err != nil {
		return &filter.ConfigError{Op: "set matrix", Err: err}
	}
	l.sys = sys

	return nil
}

// install validates m against the model dimensions and stores its copy in sys.
func (l *Linear) install(sys *System, id MatrixID, m mat.Matrix) error {
	rows, cols := m.Dims()

	var wantRows, wantCols int
	switch id {
	case StateMatrix:
		wantRows, wantCols = l.nx, l.nx
	case ControlMatrix:
		wantRows, wantCols = l.nx, l.nu
	case OutputMatrix:
		wantRows, wantCols = l.ny, l.nx
	case StateNoise:
		wantRows, wantCols = l.nx, l.nx
	case OutputNoise:
		wantRows, wantCols = l.ny, l.ny
	default:
		return fmt.Errorf("unknown matrix: %q", id)
	}

	if rows != wantRows || cols != wantCols {
		return fmt.Errorf("invalid %s matrix dimensions: [%d x %d], expected [%d x %d]", id, rows, cols, wantRows, wantCols)
	}

	if !matrix.IsFinite(m) {
		return fmt.Errorf("%s matrix contains non-finite values", id)
	}

	switch id {
	case StateMatrix:
		sys.A = mat.DenseCopyOf(m)
	case ControlMatrix:
		sys.B = mat.DenseCopyOf(m)
	case OutputMatrix:
		sys.H = mat.DenseCopyOf(m)
	case StateNoise, OutputNoise:
		if !matrix.IsSymmetric(m, matrix.SymTolerance) {
			return fmt.Errorf("%s matrix is not symmetric", id)
		}
		if id == StateNoise {
			sys.Q = matrix.Sym(m)
		} else {
			sys.R = matrix.Sym(m)
		}
	}

	return nil
}

func isNil(m mat.Matrix) bool {
	if m == nil {
		return true
	}

	switch v := m.(type) {
	case *mat.Dense:
		return v == nil || v.IsEmpty()
	case *mat.SymDense:
		return v == nil || v.IsEmpty()
	}

	return false
}
