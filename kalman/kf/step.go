package kf

import (
	"fmt"
	"math"

	filter "github.com/tracksim/go-kalman"
	"github.com/tracksim/go-kalman/estimate"
	"github.com/tracksim/go-kalman/matrix"
	"github.com/tracksim/go-kalman/model"
	"gonum.org/v1/gonum/mat"
)

// correction is the result of a successful correction step
type correction struct {
	// est is posterior estimate
	est *estimate.Base
	// gain is Kalman gain
	gain *mat.Dense
	// inn is innovation vector
	inn *mat.VecDense
}

// predict returns the prior estimate:
//
//	x = A*x + B*u
//	P = A*P*A' + Q
func predict(sys model.System, est filter.Estimate, u mat.Vector) (*estimate.Base, error) {
	x := est.Val()
	p := est.Cov()

	nx, _, _ := sys.SystemDims()
	if x.Len() != nx || p.SymmetricDim() != nx {
		return nil, filter.NewInputError("estimate", "invalid estimate dimensions: %d, [%d x %d]", x.Len(), p.SymmetricDim(), p.SymmetricDim())
	}

	xNext, err := sys.Propagate(x, u)
	if err != nil {
		return nil, &filter.InputError{Name: "u", Err: fmt.Errorf("system state propagation failed: %v", err)}
	}

	cov := &mat.Dense{}
	cov.Product(sys.A, p, sys.A.T())
	cov.Add(cov, sys.Q)

	return estimate.NewBaseWithCov(xNext, matrix.Sym(cov))
}

// correct corrects the prior estimate using measurement z:
//
//	S = H*P*H' + R
//	K = P*H'*inv(S)
//	y = z - H*x
//	x = x + K*y
//	P = (I - K*H)*P
//
// It returns *filter.NumericalError if S is singular or its condition number exceeds condTol.
func correct(sys model.System, prior filter.Estimate, z mat.Vector, condTol float64, joseph bool) (*correction, error) {
	nx, _, ny := sys.SystemDims()

	x := prior.Val()
	p := prior.Cov()
	if x.Len() != nx || p.SymmetricDim() != nx {
		return nil, filter.NewInputError("prior", "invalid estimate dimensions: %d, [%d x %d]", x.Len(), p.SymmetricDim(), p.SymmetricDim())
	}

	pxy := mat.NewDense(nx, ny, nil)
	pyy := mat.NewDense(ny, ny, nil)

	// P*H'
	pxy.Mul(p, sys.H.T())

	// Note: pxy = P * H' so we reuse the result here
	// H*P*H' + R
	pyy.Mul(sys.H, pxy)
	pyy.Add(pyy, sys.R)

	var lu mat.LU
	lu.Factorize(pyy)

	// Det underflows for small S; LogDet is -Inf only for a zero pivot
	logDet, _ := lu.LogDet()
	cond := lu.Cond()
	if math.IsInf(logDet, -1) || math.IsNaN(cond) || math.IsInf(cond, 1) {
		return nil, &filter.NumericalError{Cond: math.Inf(1), Err: fmt.Errorf("singular innovation covariance")}
	}

	if cond > condTol {
		return nil, &filter.NumericalError{Cond: cond, Err: fmt.Errorf("ill-conditioned innovation covariance: tolerance %g", condTol)}
	}

	// K*S = P*H' is solved as S'*K' = H*P
	gainT := &mat.Dense{}
	if err := lu.SolveTo(gainT, true, pxy.T()); err != nil {
		return nil, &filter.NumericalError{Cond: cond, Err: fmt.Errorf("failed to calculate Kalman gain: %v", err)}
	}
	gain := mat.DenseCopyOf(gainT.T())

	// innovation vector
	inn := mat.NewVecDense(ny, nil)
	inn.MulVec(sys.H, x)
	inn.SubVec(z, inn)

	// update state x
	corr := mat.NewVecDense(nx, nil)
	corr.MulVec(gain, inn)
	xNext := mat.NewVecDense(nx, nil)
	xNext.AddVec(x, corr)

	// I - K*H
	a := &mat.Dense{}
	a.Mul(gain, sys.H)
	a.Sub(matrix.Eye(nx), a)

	pNext := &mat.Dense{}
	if joseph {
		pNext.Product(a, p, a.T())

		// K*R*K'
		krk := &mat.Dense{}
		krk.Product(gain, sys.R, gain.T())
		pNext.Add(pNext, krk)
	} else {
		pNext.Mul(a, p)
	}

	est, err := estimate.NewBaseWithCov(xNext, matrix.Sym(pNext))
	if err != nil {
		return nil, err
	}

	return &correction{
		est:  est,
		gain: gain,
		inn:  inn,
	}, nil
}
