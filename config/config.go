package config

import (
	"fmt"
	"math"
	"os"

	"github.com/pkg/errors"
	filter "github.com/tracksim/go-kalman"
	"github.com/tracksim/go-kalman/kalman/kf"
	"github.com/tracksim/go-kalman/matrix"
	"github.com/tracksim/go-kalman/model"
	"github.com/tracksim/go-kalman/sim"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

// Config is tracking run configuration.
// Zero Seed seeds the measurement disturbance with the current time.
type Config struct {
	FrameRate float64  `yaml:"frame_rate"`
	Lifetime  float64  `yaml:"lifetime"`
	Steps     int      `yaml:"steps"`
	Trace     bool     `yaml:"trace"`
	Seed      uint64   `yaml:"seed,omitempty"`
	Filter    Filter   `yaml:"filter"`
	Path      Path     `yaml:"path"`
	Matrices  Matrices `yaml:"matrices,omitempty"`
}

// Filter configures the Kalman filter.
type Filter struct {
	// CondTolerance is the maximum condition number of innovation covariance; zero means default
	CondTolerance float64 `yaml:"cond_tolerance,omitempty"`
	Joseph        bool    `yaml:"joseph"`
}

// Path configures the Lissajous curve followed by the pointer.
type Path struct {
	CenterX float64 `yaml:"center_x"`
	CenterY float64 `yaml:"center_y"`
	AmpX    float64 `yaml:"amp_x"`
	AmpY    float64 `yaml:"amp_y"`
	FreqX   float64 `yaml:"freq_x"`
	FreqY   float64 `yaml:"freq_y"`
	Phase   float64 `yaml:"phase"`
}

// Matrices overrides the default tracking matrices.
// Matrices are given row by row; an omitted matrix keeps its default.
type Matrices struct {
	A [][]float64 `yaml:"A,omitempty"`
	B [][]float64 `yaml:"B,omitempty"`
	H [][]float64 `yaml:"H,omitempty"`
	Q [][]float64 `yaml:"Q,omitempty"`
	R [][]float64 `yaml:"R,omitempty"`
	N [][]float64 `yaml:"N,omitempty"`
}

// Default returns default configuration.
func Default() *Config {
	l := sim.DefaultLissajous()

	return &Config{
		FrameRate: sim.DefaultFrameRate,
		Lifetime:  sim.DefaultLifetime,
		Steps:     300,
		Path: Path{
			CenterX: l.CenterX,
			CenterY: l.CenterY,
			AmpX:    l.AmpX,
			AmpY:    l.AmpY,
			FreqX:   l.FreqX,
			FreqY:   l.FreqY,
			Phase:   l.Phase,
		},
	}
}

// Load reads configuration from YAML file at path.
// Values missing from the file keep their defaults.
// It returns error if the file can not be read or decoded or if the configuration is invalid.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}

	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrapf(err, "decode config %s", path)
	}

	if err := c.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}

	return c, nil
}

// Save writes configuration to YAML file at path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "encode config")
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write config %s", path)
	}

	return nil
}

// Validate checks the configuration.
// It returns *filter.ConfigError describing the first invalid value.
func (c *Config) Validate() error {
	if math.IsNaN(c.FrameRate) || math.IsInf(c.FrameRate, 0) || c.FrameRate <= 0 {
		return filter.NewConfigError("validate", "invalid frame_rate: %v", c.FrameRate)
	}

	if _, err := sim.NewLifetime(c.Lifetime); err != nil {
		return err
	}

	if c.Steps < 0 {
		return filter.NewConfigError("validate", "invalid steps: %d", c.Steps)
	}

	if tol := c.Filter.CondTolerance; tol != 0 && (math.IsNaN(tol) || math.IsInf(tol, 0) || tol <= 1) {
		return filter.NewConfigError("validate", "invalid cond_tolerance: %v", tol)
	}

	for _, m := range c.Matrices.list() {
		if len(m.rows) == 0 {
			continue
		}

		if _, err := Dense(m.rows); err != nil {
			return &filter.ConfigError{Op: "validate", Err: fmt.Errorf("matrix %s: %v", m.id, err)}
		}
	}

	return nil
}

// SimMatrices returns the tracking matrices: the defaults at the configured
// frame rate overridden by the configured matrices.
// It returns *filter.ConfigError if any configured matrix is invalid.
func (c *Config) SimMatrices() (*sim.Matrices, error) {
	m, err := sim.Defaults(c.FrameRate)
	if err != nil {
		return nil, err
	}

	for _, cm := range c.Matrices.list() {
		if len(cm.rows) == 0 {
			continue
		}

		d, err := Dense(cm.rows)
		if err != nil {
			return nil, &filter.ConfigError{Op: "matrices", Err: fmt.Errorf("matrix %s: %v", cm.id, err)}
		}

		switch cm.id {
		case model.StateMatrix:
			m.A = d
		case model.ControlMatrix:
			m.B = d
		case model.OutputMatrix:
			m.H = d
		default:
			if !matrix.IsSymmetric(d, matrix.SymTolerance) {
				return nil, filter.NewConfigError("matrices", "matrix %s is not symmetric", cm.id)
			}
			sym := matrix.Sym(d)
			switch cm.id {
			case model.StateNoise:
				m.Q = sym
			case model.OutputNoise:
				m.R = sym
			case sim.Disturbance:
				m.N = sym
			}
		}
	}

	return m, nil
}

// Lissajous returns the configured pointer path.
func (c *Config) Lissajous() sim.Lissajous {
	return sim.Lissajous{
		CenterX: c.Path.CenterX,
		CenterY: c.Path.CenterY,
		AmpX:    c.Path.AmpX,
		AmpY:    c.Path.AmpY,
		FreqX:   c.Path.FreqX,
		FreqY:   c.Path.FreqY,
		Phase:   c.Path.Phase,
	}
}

// TrackerOptions returns tracker options which apply the configuration.
func (c *Config) TrackerOptions() ([]sim.Option, error) {
	m, err := c.SimMatrices()
	if err != nil {
		return nil, err
	}

	var kfOpts []kf.Option
	if c.Filter.CondTolerance != 0 {
		kfOpts = append(kfOpts, kf.WithCondTolerance(c.Filter.CondTolerance))
	}
	if c.Filter.Joseph {
		kfOpts = append(kfOpts, kf.WithJoseph())
	}

	opts := []sim.Option{
		sim.WithMatrices(m),
		sim.WithLifetime(c.Lifetime),
		sim.WithFilterOptions(kfOpts...),
	}
	if c.Trace {
		opts = append(opts, sim.WithTrace())
	}
	if c.Seed != 0 {
		opts = append(opts, sim.WithSeed(c.Seed))
	}

	return opts, nil
}

// Dense returns matrix built from rows.
// It returns error if rows is empty, ragged or contains non-finite values.
func Dense(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("empty matrix")
	}

	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("row %d has %d columns, expected %d", i, len(row), cols)
		}
		data = append(data, row...)
	}

	d := mat.NewDense(len(rows), cols, data)
	if !matrix.IsFinite(d) {
		return nil, fmt.Errorf("matrix contains non-finite values")
	}

	return d, nil
}

type namedRows struct {
	id   model.MatrixID
	rows [][]float64
}

func (m Matrices) list() []namedRows {
	return []namedRows{
		{model.StateMatrix, m.A},
		{model.ControlMatrix, m.B},
		{model.OutputMatrix, m.H},
		{model.StateNoise, m.Q},
		{model.OutputNoise, m.R},
		{sim.Disturbance, m.N},
	}
}
