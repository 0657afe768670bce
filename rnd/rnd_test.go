package rnd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

func TestCovFactor(t *testing.T) {
	assert := assert.New(t)

	// singular covariance is fine
	cov := mat.NewSymDense(3, []float64{
		4.0, 0.0, 0.0,
		0.0, 9.0, 0.0,
		0.0, 0.0, 0.0,
	})
	factor, err := CovFactor(cov)
	assert.NoError(err)

	llt := &mat.Dense{}
	llt.Mul(factor, factor.T())
	assert.True(mat.EqualApprox(llt, cov, 1e-9))

	// negative eigenvalue
	cov = mat.NewSymDense(2, []float64{1.0, 0.0, 0.0, -1.0})
	factor, err = CovFactor(cov)
	assert.Error(err)
	assert.Nil(factor)

	factor, err = CovFactor(nil)
	assert.Error(err)
	assert.Nil(factor)
}

func TestWithCovN(t *testing.T) {
	assert := assert.New(t)

	data := []float64{1.0, 0.0, 0.0, 1.0}
	covTest := mat.NewSymDense(2, data)
	covR, _ := covTest.Dims()

	// n must be bigger than 1
	nTest := -3
	res, err := WithCovN(covTest, nTest, nil)
	assert.Error(err)
	assert.Nil(res)

	nTest = 1
	res, err = WithCovN(covTest, nTest, nil)
	assert.NoError(err)
	assert.NotNil(res)

	// 2 samples
	nTest = 2
	res, err = WithCovN(covTest, nTest, nil)
	assert.NoError(err)
	assert.NotNil(res)
	r, c := res.Dims()
	assert.Equal(r, covR)
	assert.Equal(c, nTest)
}

func TestWithCovNZeroVariance(t *testing.T) {
	assert := assert.New(t)

	cov := mat.NewSymDense(2, []float64{
		100.0, 0.0,
		0.0, 0.0,
	})

	res, err := WithCovN(cov, 50, rand.NewSource(7))
	assert.NoError(err)

	// component with zero variance is never perturbed
	for j := 0; j < 50; j++ {
		assert.InDelta(0.0, res.At(1, j), 1e-9)
	}
}

func TestWithFactorN(t *testing.T) {
	assert := assert.New(t)

	res, err := WithFactorN(mat.NewDense(2, 2, nil), 0, nil)
	assert.Error(err)
	assert.Nil(res)

	res, err = WithFactorN(mat.NewDense(3, 2, nil), 4, nil)
	assert.NoError(err)
	r, c := res.Dims()
	assert.Equal(3, r)
	assert.Equal(4, c)
}

func TestWithFactorSeed(t *testing.T) {
	assert := assert.New(t)

	factor := mat.NewDense(2, 2, []float64{
		2.0, 0.0,
		0.5, 1.0,
	})

	// the same seed draws the same samples
	s1 := WithFactor(factor, rand.NewSource(42))
	s2 := WithFactor(factor, rand.NewSource(42))
	assert.Equal(2, s1.Len())
	assert.True(mat.Equal(s1, s2))

	n1, err := WithFactorN(factor, 5, rand.NewSource(42))
	assert.NoError(err)
	n2, err := WithFactorN(factor, 5, rand.NewSource(42))
	assert.NoError(err)
	assert.True(mat.Equal(n1, n2))

	n3, err := WithFactorN(factor, 5, rand.NewSource(43))
	assert.NoError(err)
	assert.False(mat.Equal(n1, n3))
}
