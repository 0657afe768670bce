package sim

import (
	"fmt"
	"io"
	"time"

	metrics "github.com/rcrowley/go-metrics"
	"github.com/sirupsen/logrus"
	filter "github.com/tracksim/go-kalman"
	"github.com/tracksim/go-kalman/kalman/kf"
	"github.com/tracksim/go-kalman/matrix"
	"github.com/tracksim/go-kalman/model"
	"github.com/tracksim/go-kalman/noise"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot/plotter"
)

const (
	// TicksMetric counts tracker steps
	TicksMetric = "ticks"
	// NumericalErrorsMetric counts steps which fell back to the predicted estimate
	NumericalErrorsMetric = "numerical_errors"
	// AdvanceMetric times filter advance calls
	AdvanceMetric = "advance"
)

// Tracker drives Kalman filter tracking of a pointer which follows a scripted path.
// Every Step samples the pointer position, synthesizes a noisy measurement
// of the true pointer state and advances the filter with it.
//
// Tracker is not safe for concurrent use; the filter returned by Filter is.
type Tracker struct {
	path      Path
	frameRate float64
	defaults  *Matrices
	kf        *kf.KF
	noise     filter.Noise
	// custom is true while noise is the one set by WithNoise
	custom bool
	// seed seeds the disturbance noise if seeded is true
	seed     uint64
	seeded   bool
	lifetime Lifetime
	trace    bool
	paused   bool
	// frame is the number of frames since the last restart
	frame int
	// px and py is the pointer position in the previous frame
	px, py float64
	// measured, estimated and truth trails
	measured  *Trail
	estimated *Trail
	truth     *Trail
	rec       *Record
	kfOpts    []kf.Option
	reg       metrics.Registry
	ticks     metrics.Counter
	numErrs   metrics.Counter
	advance   metrics.Timer
	log       logrus.FieldLogger
}

// Option configures Tracker.
type Option func(*Tracker) error

// WithMatrices sets the tracking system matrices.
// RestoreDefaults restores them, too.
func WithMatrices(m *Matrices) Option {
	return func(t *Tracker) error {
		if m == nil || m.A == nil || m.B == nil || m.H == nil || m.Q == nil || m.R == nil || m.N == nil {
			return fmt.Errorf("invalid matrices: %v", m)
		}
		t.defaults = m
		return nil
	}
}

// WithNoise sets the measurement disturbance noise.
// It overrides the noise derived from the disturbance covariance.
func WithNoise(n filter.Noise) Option {
	return func(t *Tracker) error {
		if n == nil {
			return fmt.Errorf("invalid noise: %v", n)
		}
		t.noise = n
		t.custom = true
		return nil
	}
}

// WithSeed seeds the disturbance noise so tracking runs are reproducible.
// Without it the noise is seeded with the current time.
func WithSeed(seed uint64) Option {
	return func(t *Tracker) error {
		t.seed = seed
		t.seeded = true
		return nil
	}
}

// WithLifetime sets the fade-out time of trail marks in seconds.
func WithLifetime(secs float64) Option {
	return func(t *Tracker) error {
		return t.lifetime.Set(secs)
	}
}

// WithTrace enables the true pointer trail.
func WithTrace() Option {
	return func(t *Tracker) error {
		t.trace = true
		return nil
	}
}

// WithFilterOptions passes opts to the Kalman filter.
func WithFilterOptions(opts ...kf.Option) Option {
	return func(t *Tracker) error {
		t.kfOpts = append(t.kfOpts, opts...)
		return nil
	}
}

// WithRegistry sets metrics registry the tracker registers its metrics with.
func WithRegistry(r metrics.Registry) Option {
	return func(t *Tracker) error {
		if r == nil {
			return fmt.Errorf("invalid metrics registry: %v", r)
		}
		t.reg = r
		return nil
	}
}

// WithLogger sets tracker logger. The logger is passed to the filter, too.
func WithLogger(l logrus.FieldLogger) Option {
	return func(t *Tracker) error {
		if l == nil {
			return fmt.Errorf("invalid logger: %v", l)
		}
		t.log = l
		return nil
	}
}

// NewTracker creates new Tracker of pointer which follows path p
// sampled at frameRate frames per second and returns it.
// The filter starts at the pointer position at time zero with zero velocity and zero covariance.
// It returns *filter.ConfigError if the tracker fails to be created.
func NewTracker(p Path, frameRate float64, opts ...Option) (*Tracker, error) {
	if p == nil {
		return nil, filter.NewConfigError("new tracker", "invalid path: %v", p)
	}

	defaults, err := Defaults(frameRate)
	if err != nil {
		return nil, err
	}

	discard := logrus.New()
	discard.SetOutput(io.Discard)

	t := &Tracker{
		path:      p,
		frameRate: frameRate,
		defaults:  defaults,
		lifetime:  Lifetime{secs: DefaultLifetime},
		measured:  &Trail{},
		estimated: &Trail{},
		truth:     &Trail{},
		rec:       &Record{},
		reg:       metrics.NewRegistry(),
		log:       discard,
	}

	for _, opt := range opts {
		if err := opt(t); err != nil {
			if filter.IsConfig(err) {
				return nil, err
			}
			return nil, &filter.ConfigError{Op: "new tracker", Err: err}
		}
	}

	m, err := model.NewLinear(t.defaults.A, t.defaults.B, t.defaults.H, t.defaults.Q, t.defaults.R)
	if err != nil {
		return nil, err
	}

	nx, _, ny := m.SystemDims()
	if nx != 4 || ny < 2 {
		return nil, filter.NewConfigError("new tracker", "invalid model dimensions: nx=%d, ny=%d", nx, ny)
	}

	if t.noise == nil {
		if t.noise, err = t.newDisturbance(t.defaults.N, ny); err != nil {
			return nil, err
		}
	}

	if n := len(t.noise.Mean()); n != ny {
		return nil, filter.NewConfigError("new tracker", "invalid noise dimension: %d != %d", n, ny)
	}

	t.px, t.py = p.Position(0)

	kfOpts := append([]kf.Option{kf.WithLogger(t.log)}, t.kfOpts...)
	if t.kf, err = kf.New(m, InitCond(t.px, t.py), kfOpts...); err != nil {
		return nil, err
	}

	t.ticks = metrics.NewRegisteredCounter(TicksMetric, t.reg)
	t.numErrs = metrics.NewRegisteredCounter(NumericalErrorsMetric, t.reg)
	t.advance = metrics.NewRegisteredTimer(AdvanceMetric, t.reg)

	return t, nil
}

// Step advances the tracker by one frame and returns the new filter estimate.
// If the filter fails to correct the prediction Step records the predicted
// estimate and returns it together with *filter.NumericalError.
// Step does nothing and returns the current estimate if the tracker is paused.
func (t *Tracker) Step() (filter.Estimate, error) {
	if t.paused {
		return t.kf.Current(), nil
	}

	ts := float64(t.frame+1) / t.frameRate
	x, y := t.path.Position(ts)

	truth := mat.NewVecDense(4, []float64{
		x,
		y,
		(x - t.px) * t.frameRate,
		(y - t.py) * t.frameRate,
	})

	// z = H*x + v
	z, err := t.kf.Model().Snapshot().Observe(truth)
	if err != nil {
		return nil, err
	}
	z.AddVec(z, t.noise.Sample())

	start := time.Now()
	est, err := t.kf.Advance(z, nil)
	t.advance.UpdateSince(start)

	if err != nil && !filter.IsNumerical(err) {
		return nil, err
	}

	t.frame++
	t.ticks.Inc(1)
	if err != nil {
		t.numErrs.Inc(1)
	}

	cur := est.Val()
	prev := t.kf.PrevState()

	frames := t.lifetime.Frames(t.frameRate)
	t.measured.Add(NewPoint(z.AtVec(0), z.AtVec(1), frames))
	t.estimated.Add(NewSegment(prev.AtVec(0), prev.AtVec(1), cur.AtVec(0), cur.AtVec(1), frames))
	if t.trace {
		t.truth.Add(NewSegment(t.px, t.py, x, y, frames))
	}

	t.measured.Age()
	t.estimated.Age()
	t.truth.Age()

	t.rec.add(
		plotter.XY{X: x, Y: y},
		plotter.XY{X: z.AtVec(0), Y: z.AtVec(1)},
		plotter.XY{X: cur.AtVec(0), Y: cur.AtVec(1)},
	)

	t.px, t.py = x, y

	return est, err
}

// Run runs steps tracker steps.
// Numerical errors are logged and counted but do not stop the run.
// It returns error if any step fails with any other error.
func (t *Tracker) Run(steps int) error {
	if steps < 0 {
		return filter.NewConfigError("run", "invalid number of steps: %d", steps)
	}

	for i := 0; i < steps; i++ {
		if _, err := t.Step(); err != nil && !filter.IsNumerical(err) {
			return err
		}
	}

	t.log.WithFields(logrus.Fields{
		"steps":            steps,
		"frame":            t.frame,
		"numerical_errors": t.numErrs.Snapshot().Count(),
		"state":            matrix.Format(t.kf.State()),
	}).Debug("tracking run finished")

	return nil
}

// Restart resets the filter to the current pointer position with zero velocity and zero covariance.
// It restores the default system matrices and disturbance, clears all trails
// and the run record and restarts the path clock. Mark lifetime is kept.
// Noise set by WithNoise is kept and reset.
func (t *Tracker) Restart() error {
	if err := t.restoreMatrices(); err != nil {
		return err
	}

	x, y := t.path.Position(0)

	init := InitCond(x, y)
	if err := t.kf.Reset(init.State(), init.Cov()); err != nil {
		return err
	}

	t.frame = 0
	t.px, t.py = x, y
	t.measured.Clear()
	t.estimated.Clear()
	t.truth.Clear()
	t.rec.reset()
	t.noise.Reset()

	t.log.WithField("position", fmt.Sprintf("(%g, %g)", x, y)).Debug("tracker restarted")

	return nil
}

// RestoreDefaults restores the system matrices, disturbance noise and mark lifetime to their defaults.
// Noise set by WithNoise is kept.
func (t *Tracker) RestoreDefaults() error {
	if err := t.restoreMatrices(); err != nil {
		return err
	}

	t.lifetime = Lifetime{secs: DefaultLifetime}

	return nil
}

func (t *Tracker) restoreMatrices() error {
	ids := make([]model.MatrixID, 0, len(model.MatrixIDs)+1)
	ids = append(ids, model.MatrixIDs...)
	if !t.custom {
		ids = append(ids, Disturbance)
	}

	for _, id := range ids {
		m, err := t.defaults.Matrix(id)
		if err != nil {
			return err
		}

		if err := t.SetMatrix(id, m); err != nil {
			return err
		}
	}

	return nil
}

// SetMatrix replaces the system matrix identified by id.
// Disturbance replaces the covariance of zero-mean Gaussian measurement disturbance.
// It returns *filter.ConfigError and keeps the previous matrix if m is invalid.
func (t *Tracker) SetMatrix(id model.MatrixID, m mat.Matrix) error {
	if id != Disturbance {
		return t.kf.SetMatrix(id, m)
	}

	if m == nil {
		return filter.NewConfigError("set matrix", "invalid matrix %s: %v", id, m)
	}

	if !matrix.IsSymmetric(m, matrix.SymTolerance) {
		return filter.NewConfigError("set matrix", "matrix %s is not symmetric", id)
	}

	_, _, ny := t.kf.Model().SystemDims()
	n, err := t.newDisturbance(matrix.Sym(m), ny)
	if err != nil {
		return err
	}
	t.noise = n
	t.custom = false

	return nil
}

// SetLifetime sets the fade-out time of new trail marks in seconds.
func (t *Tracker) SetLifetime(secs float64) error {
	return t.lifetime.Set(secs)
}

// Lifetime returns the fade-out time of trail marks.
func (t *Tracker) Lifetime() Lifetime {
	return t.lifetime
}

// SetTrace toggles the true pointer trail.
func (t *Tracker) SetTrace(on bool) {
	t.trace = on
	if !on {
		t.truth.Clear()
	}
}

// Pause pauses or resumes the tracker.
func (t *Tracker) Pause(paused bool) {
	t.paused = paused
}

// Paused returns true if the tracker is paused.
func (t *Tracker) Paused() bool {
	return t.paused
}

// Filter returns the tracking filter.
func (t *Tracker) Filter() *kf.KF {
	return t.kf
}

// Noise returns the measurement disturbance noise.
func (t *Tracker) Noise() filter.Noise {
	return t.noise
}

// Frame returns the number of frames since the last restart.
func (t *Tracker) Frame() int {
	return t.frame
}

// Measured returns the trail of measurements.
func (t *Tracker) Measured() *Trail {
	return t.measured
}

// Estimated returns the trail of filter estimates.
func (t *Tracker) Estimated() *Trail {
	return t.estimated
}

// Truth returns the trail of true pointer positions.
// The trail is empty unless tracing is enabled.
func (t *Tracker) Truth() *Trail {
	return t.truth
}

// Record returns the run record since the last restart.
func (t *Tracker) Record() *Record {
	return t.rec
}

// Metrics returns tracker metrics registry.
func (t *Tracker) Metrics() metrics.Registry {
	return t.reg
}

func (t *Tracker) newDisturbance(cov mat.Symmetric, ny int) (*noise.Gaussian, error) {
	if cov.SymmetricDim() != ny {
		return nil, filter.NewConfigError("disturbance", "invalid covariance dimensions: [%d x %d] != [%d x %d]",
			cov.SymmetricDim(), cov.SymmetricDim(), ny, ny)
	}

	var (
		n   *noise.Gaussian
		err error
	)
	if t.seeded {
		n, err = noise.NewGaussianWithSeed(make([]float64, ny), cov, t.seed)
	} else {
		n, err = noise.NewGaussian(make([]float64, ny), cov)
	}
	if err != nil {
		return nil, &filter.ConfigError{Op: "disturbance", Err: err}
	}

	return n, nil
}
