package rnd

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// psdTolerance is the most negative eigenvalue still treated as zero
const psdTolerance = 1e-9

// CovFactor returns matrix L such that L*L' = cov.
// It uses SVD instead of Cholesky as Cholesky fails if cov is (almost) singular.
// It fails with error if cov is not positive semi-definite or SVD factorization fails.
func CovFactor(cov mat.Symmetric) (*mat.Dense, error) {
	if cov == nil || cov.SymmetricDim() == 0 {
		return nil, fmt.Errorf("invalid covariance matrix: %v", cov)
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(cov, false); !ok {
		return nil, fmt.Errorf("eigen decomposition failed")
	}

	for _, v := range eig.Values(nil) {
		if v < -psdTolerance {
			return nil, fmt.Errorf("covariance matrix is not positive semi-definite: eigenvalue %g", v)
		}
	}

	var svd mat.SVD
	ok := svd.Factorize(cov, mat.SVDFull)
	if !ok {
		return nil, fmt.Errorf("SVD factorization failed")
	}

	U := new(mat.Dense)
	svd.UTo(U)
	vals := svd.Values(nil)
	for i := range vals {
		vals[i] = math.Sqrt(vals[i])
	}

	diag := mat.NewDiagDense(len(vals), vals)
	U.Mul(U, diag)

	return U, nil
}

// WithFactor draws a single random sample from a zero-mean Normal distribution whose covariance is factor*factor'.
// Random numbers are drawn from src; nil src uses the global source.
func WithFactor(factor mat.Matrix, src rand.Source) *mat.VecDense {
	rows, cols := factor.Dims()

	normal := mat.NewVecDense(cols, unitNormal(cols, src))
	sample := mat.NewVecDense(rows, nil)
	sample.MulVec(factor, normal)

	return sample
}

// WithFactorN draws n random samples from a zero-mean Normal distribution whose covariance is factor*factor'.
// Random numbers are drawn from src; nil src uses the global source.
// It returns matrix which contains the randomly generated samples stored in its columns.
// It fails with error if n is non-positive.
func WithFactorN(factor mat.Matrix, n int, src rand.Source) (*mat.Dense, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid number of samples requested: %d", n)
	}

	rows, cols := factor.Dims()
	normal := mat.NewDense(cols, n, unitNormal(cols*n, src))

	samples := mat.NewDense(rows, n, nil)
	samples.Mul(factor, normal)

	return samples, nil
}

// WithCovN draws n random samples from a zero-mean Normal (aka Gaussian) distribution with covariance cov.
// Random numbers are drawn from src; nil src uses the global source.
// It returns matrix which contains the randomly generated samples stored in its columns.
// It fails with error if n is non-positive or if SVD factorization of cov fails.
func WithCovN(cov mat.Symmetric, n int, src rand.Source) (*mat.Dense, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid number of samples requested: %d", n)
	}

	factor, err := CovFactor(cov)
	if err != nil {
		return nil, err
	}

	return WithFactorN(factor, n, src)
}

// unitNormal returns n draws from the standard normal distribution
func unitNormal(n int, src rand.Source) []float64 {
	dist := distuv.Normal{Mu: 0, Sigma: 1, Src: src}

	data := make([]float64, n)
	for i := range data {
		data[i] = dist.Rand()
	}

	return data
}
