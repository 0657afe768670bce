package kf

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// DefaultCondTolerance is the default maximum condition number
// of the innovation covariance accepted by the filter.
const DefaultCondTolerance = 1e12

// Option configures KF.
type Option func(*KF) error

// WithCondTolerance sets the maximum condition number of the innovation covariance.
// Correction steps whose innovation covariance exceeds tol fail with *filter.NumericalError.
func WithCondTolerance(tol float64) Option {
	return func(k *KF) error {
		if math.IsNaN(tol) || math.IsInf(tol, 0) || tol <= 1 {
			return fmt.Errorf("invalid condition number tolerance: %v", tol)
		}
		k.condTol = tol
		return nil
	}
}

// WithJoseph makes the filter update its covariance using the Joseph form
//
//	P' = (I-K*H)*P*(I-K*H)' + K*R*K'
func WithJoseph() Option {
	return func(k *KF) error {
		k.joseph = true
		return nil
	}
}

// WithLogger sets the logger used to report degraded filter steps.
func WithLogger(l logrus.FieldLogger) Option {
	return func(k *KF) error {
		if l == nil {
			return fmt.Errorf("invalid logger: %v", l)
		}
		k.log = l
		return nil
	}
}
