package matrix

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestEye(t *testing.T) {
	assert := assert.New(t)

	eye := Eye(3)
	r, c := eye.Dims()
	assert.Equal(3, r)
	assert.Equal(3, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if i == j {
				assert.Equal(1.0, eye.At(i, j))
				continue
			}
			assert.Equal(0.0, eye.At(i, j))
		}
	}

	assert.Panics(func() { Eye(0) })
}

func TestSym(t *testing.T) {
	assert := assert.New(t)

	m := mat.NewDense(2, 2, []float64{1.0, 2.0, 2.0000001, 4.0})
	sym := Sym(m)
	assert.Equal(2, sym.SymmetricDim())
	assert.Equal(2.0, sym.At(1, 0))
	assert.Equal(2.0, sym.At(0, 1))

	assert.Panics(func() { Sym(mat.NewDense(2, 3, nil)) })
}

func TestIsSymmetric(t *testing.T) {
	assert := assert.New(t)

	assert.True(IsSymmetric(mat.NewDense(2, 2, []float64{1, 0.5, 0.5, 1}), SymTolerance))
	assert.False(IsSymmetric(mat.NewDense(2, 2, []float64{1, 0.5, 0.4, 1}), SymTolerance))
	assert.False(IsSymmetric(mat.NewDense(2, 3, nil), SymTolerance))
}

func TestIsFinite(t *testing.T) {
	assert := assert.New(t)

	assert.True(IsFinite(mat.NewDense(2, 1, []float64{1.2, 3.4})))
	assert.False(IsFinite(mat.NewDense(2, 1, []float64{math.NaN(), 3.4})))
	assert.False(IsFinite(mat.NewVecDense(2, []float64{1.0, math.Inf(-1)})))
}

func TestFormat(t *testing.T) {
	assert := assert.New(t)

	s := Format(mat.NewDense(1, 2, []float64{1, 2}))
	assert.Contains(s, "1")
	assert.Contains(s, "2")
}
