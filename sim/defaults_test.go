package sim

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	filter "github.com/tracksim/go-kalman"
	"github.com/tracksim/go-kalman/model"
	"gonum.org/v1/gonum/mat"
)

func TestDefaults(t *testing.T) {
	assert := assert.New(t)

	m, err := Defaults(DefaultFrameRate)
	assert.NoError(err)
	assert.NotNil(m)

	dt := 1 / DefaultFrameRate
	A := []float64{
		1, 0, dt, 0,
		0, 1, 0, dt,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
	assert.True(cmp.Equal(A, m.A.RawMatrix().Data, cmpopts.EquateApprox(0, 1e-12)))

	for i := 0; i < 4; i++ {
		assert.Equal(1.0, m.B.At(i, i))
		assert.Equal(1.0, m.H.At(i, i))
		assert.Equal(0.01, m.Q.At(i, i))
		assert.Equal(0.1, m.R.At(i, i))
	}

	assert.Equal([]float64{100, 100, 0, 0}, []float64{m.N.At(0, 0), m.N.At(1, 1), m.N.At(2, 2), m.N.At(3, 3)})

	for _, rate := range []float64{0, -30, math.NaN(), math.Inf(1)} {
		m, err := Defaults(rate)
		assert.Nil(m)
		assert.True(filter.IsConfig(err))
	}
}

func TestMatricesMatrix(t *testing.T) {
	assert := assert.New(t)

	m, err := Defaults(DefaultFrameRate)
	assert.NoError(err)

	for _, id := range append([]model.MatrixID{Disturbance}, model.MatrixIDs...) {
		mx, err := m.Matrix(id)
		assert.NoError(err)
		assert.NotNil(mx)
	}

	// returned matrices are copies
	A, err := m.Matrix(model.StateMatrix)
	assert.NoError(err)
	A.(*mat.Dense).Set(0, 0, 100)
	assert.Equal(1.0, m.A.At(0, 0))

	mx, err := m.Matrix("X")
	assert.Error(err)
	assert.Nil(mx)
}

func TestInitCond(t *testing.T) {
	assert := assert.New(t)

	init := InitCond(10, 20)
	assert.Equal([]float64{10, 20, 0, 0}, mat.Col(nil, 0, init.State()))
	assert.True(mat.Equal(mat.NewSymDense(4, nil), init.Cov()))
}

func TestLissajous(t *testing.T) {
	assert := assert.New(t)

	l := DefaultLissajous()

	x, y := l.Position(0)
	assert.InDelta(l.CenterX+l.AmpX, x, 1e-9)
	assert.InDelta(l.CenterY, y, 1e-9)

	// the curve repeats after the common period of both frequencies
	x1, y1 := l.Position(3.3)
	x2, y2 := l.Position(3.3 + 10)
	assert.InDelta(x1, x2, 1e-6)
	assert.InDelta(y1, y2, 1e-6)

	var p Path = PathFunc(func(t float64) (float64, float64) { return t, 2 * t })
	x, y = p.Position(1.5)
	assert.Equal(1.5, x)
	assert.Equal(3.0, y)
}
