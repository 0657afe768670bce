package noise

import (
	"fmt"
	"time"

	"github.com/tracksim/go-kalman/matrix"
	"github.com/tracksim/go-kalman/rnd"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// Gaussian is gaussian noise
type Gaussian struct {
	// mean is Gaussian mean
	mean []float64
	// cov is Gaussian covariance
	cov *mat.SymDense
	// factor is covariance factor L such that L*L' = cov
	factor *mat.Dense
	// seed seeds src on creation and reset
	seed uint64
	// src is the source of random samples
	src rand.Source
}

// NewGaussian creates new Gaussian noise with given mean and covariance
// seeded with the current time.
// Covariance must be positive semi-definite; zero variances are allowed.
// It returns error if it fails to create Gaussian.
func NewGaussian(mean []float64, cov mat.Symmetric) (*Gaussian, error) {
	return NewGaussianWithSeed(mean, cov, uint64(time.Now().UnixNano()))
}

// NewGaussianWithSeed creates new Gaussian noise with given mean and covariance.
// Noise created with the same seed draws the same sequence of samples.
// It returns error if it fails to create Gaussian.
func NewGaussianWithSeed(mean []float64, cov mat.Symmetric, seed uint64) (*Gaussian, error) {
	if cov == nil {
		return nil, fmt.Errorf("invalid covariance matrix: %v", cov)
	}

	if len(mean) != cov.SymmetricDim() {
		return nil, fmt.Errorf("invalid mean length: %d != %d", len(mean), cov.SymmetricDim())
	}

	if !matrix.IsFinite(cov) {
		return nil, fmt.Errorf("covariance contains non-finite values")
	}

	factor, err := rnd.CovFactor(cov)
	if err != nil {
		return nil, fmt.Errorf("failed to create new Gaussian noise: %v", err)
	}

	m := make([]float64, len(mean))
	copy(m, mean)

	c := mat.NewSymDense(cov.SymmetricDim(), nil)
	c.CopySym(cov)

	return &Gaussian{
		mean:   m,
		cov:    c,
		factor: factor,
		seed:   seed,
		src:    rand.NewSource(seed),
	}, nil
}

// Sample generates a sample from Gaussian noise and returns it.
func (g *Gaussian) Sample() mat.Vector {
	sample := rnd.WithFactor(g.factor, g.src)
	sample.AddVec(sample, mat.NewVecDense(len(g.mean), g.Mean()))

	return sample
}

// Cov returns covariance matrix of Gaussian noise.
func (g *Gaussian) Cov() mat.Symmetric {
	cov := mat.NewSymDense(g.cov.SymmetricDim(), nil)
	cov.CopySym(g.cov)

	return cov
}

// Mean returns Gaussian mean.
func (g *Gaussian) Mean() []float64 {
	mean := make([]float64, len(g.mean))
	copy(mean, g.mean)

	return mean
}

// Seed returns the seed of the noise.
func (g *Gaussian) Seed() uint64 {
	return g.seed
}

// Reset reseeds the noise so it draws its sample sequence from the start again.
func (g *Gaussian) Reset() {
	g.src.Seed(g.seed)
}

// String implements the Stringer interface.
func (g *Gaussian) String() string {
	return fmt.Sprintf("Gaussian{\nMean=%v\nCov=%v\n}", g.mean, mat.Formatted(g.cov, mat.Prefix("    "), mat.Squeeze()))
}
