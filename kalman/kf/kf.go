package kf

import (
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/sirupsen/logrus"
	filter "github.com/tracksim/go-kalman"
	"github.com/tracksim/go-kalman/estimate"
	"github.com/tracksim/go-kalman/matrix"
	"github.com/tracksim/go-kalman/model"
	"gonum.org/v1/gonum/mat"
)

// Phase is the lifecycle phase of the filter.
type Phase int

const (
	// Initialized means the filter has not advanced since it was created or reset
	Initialized Phase = iota
	// Advanced means the filter has advanced at least once
	Advanced
)

// String implements the Stringer interface.
func (p Phase) String() string {
	switch p {
	case Initialized:
		return "initialized"
	case Advanced:
		return "advanced"
	}

	return fmt.Sprintf("Phase(%d)", int(p))
}

// KF is Kalman Filter.
//
// KF keeps the current estimate and the estimate it replaced on the most
// recent call to Advance. Both are swapped atomically, so concurrent readers
// always observe a state vector together with its own covariance.
type KF struct {
	mu sync.RWMutex
	// m is KF system model
	m *model.Linear
	// condTol is the maximum accepted condition number of innovation covariance
	condTol float64
	// joseph enables Joseph form covariance update
	joseph bool
	// log reports degraded steps
	log logrus.FieldLogger
	// cur is the current estimate
	cur *estimate.Base
	// prev is the estimate cur replaced
	prev *estimate.Base
	// inn is innovation vector
	inn *mat.VecDense
	// k is Kalman gain
	k *mat.Dense
	// ticks counts completed Advance calls since creation or reset
	ticks uint64
}

// New creates new KF and returns it.
// It accepts the following parameters:
//   - m:    linear system model
//   - init: initial condition of the filter
//   - opts: filter options
//
// It returns *filter.ConfigError if either of the following conditions is met:
//   - model or initial condition is nil
//   - initial state or covariance dimensions do not match the model
//   - initial state or covariance contain non-finite values
//   - invalid option is given
func New(m *model.Linear, init filter.InitCond, opts ...Option) (*KF, error) {
	if m == nil {
		return nil, filter.NewConfigError("new filter", "invalid model: %v", m)
	}

	if init == nil {
		return nil, filter.NewConfigError("new filter", "invalid initial condition: %v", init)
	}

	nx, _, ny := m.SystemDims()

	est, err := initEstimate(nx, init.State(), init.Cov())
	if err != nil {
		return nil, &filter.ConfigError{Op: "new filter", Err: err}
	}

	discard := logrus.New()
	discard.SetOutput(io.Discard)

	k := &KF{
		m:       m,
		condTol: DefaultCondTolerance,
		log:     discard,
		cur:     est,
		prev:    est,
		inn:     mat.NewVecDense(ny, nil),
		k:       mat.NewDense(nx, ny, nil),
	}

	for _, opt := range opts {
		if err := opt(k); err != nil {
			return nil, &filter.ConfigError{Op: "new filter", Err: err}
		}
	}

	return k, nil
}

// NewWithMatrices creates linear model from A, B, H, Q and R
// and returns new KF initialized with state x0 and covariance p0.
func NewWithMatrices(A, B, H, Q, R mat.Matrix, x0 mat.Vector, p0 mat.Symmetric, opts ...Option) (*KF, error) {
	m, err := model.NewLinear(A, B, H, Q, R)
	if err != nil {
		return nil, err
	}

	if x0 == nil || p0 == nil {
		return nil, filter.NewConfigError("new filter", "invalid initial condition: %v, %v", x0, p0)
	}

	return New(m, model.NewInitCond(x0, p0), opts...)
}

// Predict propagates estimate est to the next step given control input u and returns the prior estimate.
// Nil u is treated as zero control input. Predict does not modify the filter.
// It returns *filter.InputError if est or u do not match the model dimensions.
func (k *KF) Predict(est filter.Estimate, u mat.Vector) (filter.Estimate, error) {
	if est == nil {
		return nil, filter.NewInputError("estimate", "invalid estimate: %v", est)
	}

	sys := k.m.Snapshot()
	if err := checkControl(sys, u); err != nil {
		return nil, err
	}

	prior, err := predict(sys, est, u)
	if err != nil {
		return nil, err
	}

	return prior, nil
}

// Update corrects the prior estimate using the measurement z and returns the posterior estimate.
// Update does not modify the filter.
// It returns *filter.InputError if z does not match the model dimensions
// and *filter.NumericalError if the innovation covariance can not be inverted.
func (k *KF) Update(prior filter.Estimate, z mat.Vector) (filter.Estimate, error) {
	if prior == nil {
		return nil, filter.NewInputError("prior", "invalid estimate: %v", prior)
	}

	sys := k.m.Snapshot()
	if err := checkMeasurement(sys, z); err != nil {
		return nil, err
	}

	c, err := correct(sys, prior, z, k.condTol, k.joseph)
	if err != nil {
		return nil, err
	}

	return c.est, nil
}

// Advance runs one step of KF for measurement z and control input u and returns the new current estimate.
// The current estimate becomes the previous estimate.
//
// If z or u are invalid Advance returns *filter.InputError and the filter is not modified.
// If the innovation covariance can not be inverted the predicted estimate becomes
// the current estimate and Advance returns it together with *filter.NumericalError.
func (k *KF) Advance(z, u mat.Vector) (filter.Estimate, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	sys := k.m.Snapshot()
	if err := checkMeasurement(sys, z); err != nil {
		return nil, err
	}

	if err := checkControl(sys, u); err != nil {
		return nil, err
	}

	pred, err := predict(sys, k.cur, u)
	if err != nil {
		return nil, err
	}

	c, err := correct(sys, pred, z, k.condTol, k.joseph)
	if err != nil && !filter.IsNumerical(err) {
		return nil, err
	}

	k.prev = k.cur
	k.ticks++

	if err != nil {
		nx, _, ny := sys.SystemDims()
		k.cur = pred
		k.k = mat.NewDense(nx, ny, nil)
		k.inn = mat.NewVecDense(ny, nil)

		k.log.WithFields(logrus.Fields{
			"tick":  k.ticks,
			"state": matrix.Format(pred.Val()),
		}).WithError(err).Warn("correction failed: using predicted estimate")

		return pred, err
	}

	k.cur = c.est
	k.k = c.gain
	k.inn = c.inn

	return c.est, nil
}

// Reset discards the estimation history and reinitializes
// both current and previous estimate to state x0 and covariance p0.
// It returns *filter.ConfigError if x0 or p0 do not match the model dimensions.
func (k *KF) Reset(x0 mat.Vector, p0 mat.Symmetric) error {
	nx, _, ny := k.m.SystemDims()

	est, err := initEstimate(nx, x0, p0)
	if err != nil {
		return &filter.ConfigError{Op: "reset", Err: err}
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	k.cur = est
	k.prev = est
	k.k = mat.NewDense(nx, ny, nil)
	k.inn = mat.NewVecDense(ny, nil)
	k.ticks = 0

	return nil
}

// SetMatrix replaces the model matrix identified by id.
// It never runs concurrently with Advance.
// It returns *filter.ConfigError and leaves the model unchanged if m does not match the model dimensions.
func (k *KF) SetMatrix(id model.MatrixID, m mat.Matrix) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	return k.m.SetMatrix(id, m)
}

// Current returns the current estimate
func (k *KF) Current() filter.Estimate {
	k.mu.RLock()
	defer k.mu.RUnlock()

	return k.cur
}

// Previous returns the estimate which preceded the current estimate
func (k *KF) Previous() filter.Estimate {
	k.mu.RLock()
	defer k.mu.RUnlock()

	return k.prev
}

// State returns KF current state
func (k *KF) State() mat.Vector {
	return k.Current().Val()
}

// Cov returns KF current covariance
func (k *KF) Cov() mat.Symmetric {
	return k.Current().Cov()
}

// PrevState returns KF previous state
func (k *KF) PrevState() mat.Vector {
	return k.Previous().Val()
}

// PrevCov returns KF previous covariance
func (k *KF) PrevCov() mat.Symmetric {
	return k.Previous().Cov()
}

// Gain returns Kalman gain applied in the last step
func (k *KF) Gain() mat.Matrix {
	k.mu.RLock()
	defer k.mu.RUnlock()

	gain := &mat.Dense{}
	gain.CloneFrom(k.k)

	return gain
}

// Innovation returns innovation vector computed in the last step
func (k *KF) Innovation() mat.Vector {
	k.mu.RLock()
	defer k.mu.RUnlock()

	inn := &mat.VecDense{}
	inn.CloneFromVec(k.inn)

	return inn
}

// Ticks returns the number of steps since the filter was created or reset
func (k *KF) Ticks() uint64 {
	k.mu.RLock()
	defer k.mu.RUnlock()

	return k.ticks
}

// Phase returns the filter lifecycle phase
func (k *KF) Phase() Phase {
	if k.Ticks() == 0 {
		return Initialized
	}

	return Advanced
}

// Model returns KF model
func (k *KF) Model() *model.Linear {
	return k.m
}

// CondTolerance returns the maximum accepted condition number of innovation covariance
func (k *KF) CondTolerance() float64 {
	return k.condTol
}

func initEstimate(nx int, x0 mat.Vector, p0 mat.Symmetric) (*estimate.Base, error) {
	if x0 == nil || p0 == nil {
		return nil, fmt.Errorf("invalid initial condition: %v, %v", x0, p0)
	}

	if x0.Len() != nx {
		return nil, fmt.Errorf("invalid initial state length: %d != %d", x0.Len(), nx)
	}

	if p0.SymmetricDim() != nx {
		return nil, fmt.Errorf("invalid initial covariance dimensions: [%d x %d]", p0.SymmetricDim(), p0.SymmetricDim())
	}

	if !matrix.IsFinite(x0) || !matrix.IsFinite(p0) {
		return nil, fmt.Errorf("initial condition contains non-finite values")
	}

	return estimate.NewBaseWithCov(x0, p0)
}

func checkMeasurement(sys model.System, z mat.Vector) error {
	_, _, ny := sys.SystemDims()
	return checkVec("z", z, ny)
}

func checkControl(sys model.System, u mat.Vector) error {
	if u == nil {
		return nil
	}

	_, nu, _ := sys.SystemDims()
	return checkVec("u", u, nu)
}

func checkVec(name string, v mat.Vector, n int) error {
	if v == nil {
		return filter.NewInputError(name, "missing vector")
	}

	if v.Len() != n {
		return filter.NewInputError(name, "invalid vector length: %d != %d", v.Len(), n)
	}

	for i := 0; i < n; i++ {
		if val := v.AtVec(i); math.IsNaN(val) || math.IsInf(val, 0) {
			return filter.NewInputError(name, "non-finite value at %d: %v", i, val)
		}
	}

	return nil
}
