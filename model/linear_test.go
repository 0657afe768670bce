package model

import (
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	filter "github.com/tracksim/go-kalman"
	"gonum.org/v1/gonum/mat"
)

var (
	x, u    *mat.VecDense
	A, B, H *mat.Dense
	Q, R    *mat.SymDense
)

func setup() {
	x = mat.NewVecDense(2, []float64{0.5, 0.6})
	u = mat.NewVecDense(1, []float64{-1.0})

	A = mat.NewDense(2, 2, []float64{1.0, 1.0, 0.0, 1.0})
	B = mat.NewDense(2, 1, []float64{0.5, 1.0})
	H = mat.NewDense(1, 2, []float64{1.0, 0.0})
	Q = mat.NewSymDense(2, []float64{0.01, 0, 0, 0.01})
	R = mat.NewSymDense(1, []float64{0.1})
}

func TestMain(m *testing.M) {
	// set up tests
	setup()
	// run the tests
	retCode := m.Run()
	// call with result of m.Run()
	os.Exit(retCode)
}

func TestNewLinear(t *testing.T) {
	assert := assert.New(t)

	l, err := NewLinear(A, B, H, Q, R)
	assert.NotNil(l)
	assert.NoError(err)

	nx, nu, ny := l.SystemDims()
	assert.Equal(2, nx)
	assert.Equal(1, nu)
	assert.Equal(1, ny)
}

func TestNewLinearShapes(t *testing.T) {
	assert := assert.New(t)

	testCases := []struct {
		name          string
		a, b, h, q, r mat.Matrix
	}{
		{"non-square A", mat.NewDense(2, 3, nil), B, H, Q, R},
		{"B rows", A, mat.NewDense(3, 1, nil), H, Q, R},
		{"H cols", A, B, mat.NewDense(1, 3, nil), Q, R},
		{"Q dims", A, B, H, mat.NewSymDense(3, nil), R},
		{"non-square Q", A, B, H, mat.NewDense(2, 1, nil), R},
		{"R dims", A, B, H, Q, mat.NewSymDense(2, nil)},
		{"non-square R", A, B, H, Q, mat.NewDense(1, 2, nil)},
		{"asymmetric Q", A, B, H, mat.NewDense(2, 2, []float64{1, 2, 3, 4}), R},
		{"non-finite A", mat.NewDense(2, 2, []float64{1, math.NaN(), 0, 1}), B, H, Q, R},
		{"missing B", A, nil, H, Q, R},
		{"empty R", A, B, H, Q, &mat.SymDense{}},
	}

	for _, tc := range testCases {
		l, err := NewLinear(tc.a, tc.b, tc.h, tc.q, tc.r)
		assert.Nil(l, tc.name)
		assert.Error(err, tc.name)
		assert.True(filter.IsConfig(err), tc.name)
	}
}

func TestLinearMatrices(t *testing.T) {
	assert := assert.New(t)

	l, err := NewLinear(A, B, H, Q, R)
	assert.NotNil(l)
	assert.NoError(err)

	assert.True(mat.EqualApprox(l.SystemMatrix(), A, 0.001))
	assert.True(mat.EqualApprox(l.ControlMatrix(), B, 0.001))
	assert.True(mat.EqualApprox(l.OutputMatrix(), H, 0.001))
	assert.True(mat.EqualApprox(l.StateNoiseCov(), Q, 0.001))
	assert.True(mat.EqualApprox(l.OutputNoiseCov(), R, 0.001))

	for _, id := range MatrixIDs {
		m, err := l.Matrix(id)
		assert.NotNil(m)
		assert.NoError(err)
	}

	m, err := l.Matrix("N")
	assert.Nil(m)
	assert.True(filter.IsConfig(err))

	// accessors return copies
	a := l.SystemMatrix().(*mat.Dense)
	a.Set(0, 0, 100.0)
	assert.Equal(1.0, l.SystemMatrix().At(0, 0))

	// model copies its inputs
	_A := mat.DenseCopyOf(A)
	l, err = NewLinear(_A, B, H, Q, R)
	assert.NoError(err)
	_A.Set(0, 0, 100.0)
	assert.Equal(1.0, l.SystemMatrix().At(0, 0))
}

func TestLinearSetMatrix(t *testing.T) {
	assert := assert.New(t)

	l, err := NewLinear(A, B, H, Q, R)
	assert.NotNil(l)
	assert.NoError(err)

	before := l.Snapshot()

	_A := mat.NewDense(2, 2, []float64{1.0, 0.2, 0.0, 1.0})
	err = l.SetMatrix(StateMatrix, _A)
	assert.NoError(err)
	assert.True(mat.Equal(_A, l.SystemMatrix()))
	// snapshots taken earlier are not modified
	assert.True(mat.Equal(A, before.A))

	_R := mat.NewSymDense(1, []float64{0.5})
	err = l.SetMatrix(OutputNoise, _R)
	assert.NoError(err)
	assert.Equal(0.5, l.OutputNoiseCov().At(0, 0))

	// invalid dimensions leave the previous matrix intact
	err = l.SetMatrix(ControlMatrix, mat.NewDense(2, 2, nil))
	assert.True(filter.IsConfig(err))
	assert.True(mat.Equal(B, l.ControlMatrix()))

	err = l.SetMatrix(StateNoise, mat.NewDense(2, 2, []float64{1, 2, 3, 4}))
	assert.True(filter.IsConfig(err))
	assert.True(mat.Equal(Q, l.StateNoiseCov()))

	err = l.SetMatrix(OutputMatrix, mat.NewDense(1, 2, []float64{math.Inf(1), 0}))
	assert.True(filter.IsConfig(err))
	assert.True(mat.Equal(H, l.OutputMatrix()))

	err = l.SetMatrix("N", mat.NewDense(2, 2, nil))
	assert.True(filter.IsConfig(err))

	err = l.SetMatrix(StateMatrix, nil)
	assert.True(filter.IsConfig(err))
}

func TestSystemPropagateObserve(t *testing.T) {
	assert := assert.New(t)

	l, err := NewLinear(A, B, H, Q, R)
	assert.NoError(err)
	sys := l.Snapshot()

	v, err := sys.Propagate(x, u)
	assert.NoError(err)
	assert.InDeltaSlice([]float64{0.6, -0.4}, v.RawVector().Data, 1e-12)

	v, err = sys.Propagate(x, nil)
	assert.NoError(err)
	assert.InDeltaSlice([]float64{1.1, 0.6}, v.RawVector().Data, 1e-12)

	v, err = sys.Propagate(x, mat.NewVecDense(10, nil))
	assert.Nil(v)
	assert.Error(err)

	v, err = sys.Propagate(mat.NewVecDense(10, nil), u)
	assert.Nil(v)
	assert.Error(err)

	v, err = sys.Observe(x)
	assert.NoError(err)
	assert.Equal(0.5, v.AtVec(0))

	v, err = sys.Observe(mat.NewVecDense(10, nil))
	assert.Nil(v)
	assert.Error(err)
}

func TestInitCond(t *testing.T) {
	assert := assert.New(t)

	state := mat.NewVecDense(2, []float64{1.0, 3.0})
	cov := mat.NewSymDense(2, []float64{0.25, 0, 0, 0.25})

	ic := NewInitCond(state, cov)

	s := ic.State()
	for i := 0; i < state.Len(); i++ {
		assert.Equal(state.AtVec(i), s.AtVec(i))
	}

	c := ic.Cov()
	for i := 0; i < cov.SymmetricDim(); i++ {
		for j := 0; j < cov.SymmetricDim(); j++ {
			assert.Equal(cov.At(i, j), c.At(i, j))
		}
	}

	// arguments are copied
	state.SetVec(0, 100.0)
	assert.Equal(1.0, ic.State().AtVec(0))

	empty := NewInitCond(nil, nil)
	assert.Nil(empty.State())
	assert.Nil(empty.Cov())
}

func TestDiscretize(t *testing.T) {
	assert := assert.New(t)

	dt := 0.2
	ad, err := Discretize(ConstantVelocity(2), dt)
	assert.NoError(err)

	want := mat.NewDense(4, 4, []float64{
		1, 0, dt, 0,
		0, 1, 0, dt,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})
	assert.True(mat.EqualApprox(want, ad, 1e-12))

	ad, err = Discretize(mat.NewDense(2, 3, nil), dt)
	assert.Nil(ad)
	assert.Error(err)

	ad, err = Discretize(ConstantVelocity(2), 0)
	assert.Nil(ad)
	assert.Error(err)
}
