package motion

import (
	"math"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrDimensionMismatch is returned when a state or belief does not match the model's state dimension
	ErrDimensionMismatch = errors.New("state dimension does not match model dimension")
	// ErrInvalidTimeStep is returned when a sampling interval is non-positive or non-finite
	ErrInvalidTimeStep = errors.New("time step must be finite and positive")
	// ErrInvalidNoise is returned when a noise standard deviation is negative or non-finite
	ErrInvalidNoise = errors.New("noise standard deviation must be finite and non-negative")
	// ErrDegenerateCovariance is returned when a covariance turns out not to be positive semi-definite
	ErrDegenerateCovariance = errors.New("covariance is not positive semi-definite")
)

// Model is the capability set shared by the kinematic motion models used in
// the prediction step of a Bayesian tracking filter. A model supplies the
// deterministic transition f, its Jacobian F for linearization, the process
// noise covariance Q and a Predict operation advancing a Gaussian belief by
// one time step. All operations validate their arguments at the boundary and
// return no partial results on failure.
type Model interface {
	// Dim returns the state dimension d
	Dim() int
	// Transition evaluates the deterministic state transition f(state, dt)
	Transition(state mat.Vector, dt float64) (*mat.VecDense, error)
	// Jacobian evaluates the d x d matrix of partial derivatives of the
	// transition with respect to the state
	Jacobian(state mat.Vector, dt float64) (*mat.Dense, error)
	// NoiseCovariance returns the process noise covariance Q for interval dt
	NoiseCovariance(dt float64) (*mat.SymDense, error)
	// Predict advances a Gaussian belief by one time step
	Predict(belief *Gaussian, opts ...PredictOption) (*Gaussian, error)
}

type predictConfig struct {
	dt    float64
	noisy bool
}

// PredictOption customizes a single Predict call.
type PredictOption func(*predictConfig)

// WithTimeStep overrides the model's default sampling interval for one call.
func WithTimeStep(dt float64) PredictOption {
	return func(cfg *predictConfig) {
		cfg.dt = dt
	}
}

// WithNoise makes Predict draw the next mean from a multivariate normal
// distribution centered on the deterministic transition instead of returning
// the transition itself.
func WithNoise() PredictOption {
	return func(cfg *predictConfig) {
		cfg.noisy = true
	}
}

type modelConfig struct {
	src rand.Source
}

// ModelOption customizes model construction.
type ModelOption func(*modelConfig)

// WithRandomSource injects the random source consumed by noisy predictions.
// Pass a seeded source for reproducible sampling. The source advances on
// every noisy Predict, so a model shared across goroutines needs external
// synchronization or per-goroutine sources.
func WithRandomSource(src rand.Source) ModelOption {
	return func(cfg *modelConfig) {
		cfg.src = src
	}
}

func newModelConfig(opts ...ModelOption) modelConfig {
	cfg := modelConfig{
		src: rand.NewSource(uint64(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func validateTimeStep(dt float64) error {
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt <= 0 {
		return errors.Wrapf(ErrInvalidTimeStep, "dt = %v", dt)
	}
	return nil
}

func validateStdDev(name string, sigma float64) error {
	if math.IsNaN(sigma) || math.IsInf(sigma, 0) || sigma < 0 {
		return errors.Wrapf(ErrInvalidNoise, "%s = %v", name, sigma)
	}
	return nil
}

func validateState(state mat.Vector, d int) error {
	if state.Len() != d {
		return errors.Wrapf(ErrDimensionMismatch, "state has length %d, model dimension is %d", state.Len(), d)
	}
	return nil
}

// advanceBelief implements Predict on top of a model's Transition and
// NoiseCovariance. The next covariance is Q(dt): the caller owns full
// covariance propagation (adding F·P·Fᵗ) if it wants it.
func advanceBelief(model Model, src rand.Source, defaultDt float64, belief *Gaussian, opts ...PredictOption) (*Gaussian, error) {
	cfg := predictConfig{dt: defaultDt}
	for _, opt := range opts {
		opt(&cfg)
	}
	if belief == nil {
		return nil, errors.Wrap(ErrDimensionMismatch, "belief is nil")
	}
	if err := validateState(belief.x, model.Dim()); err != nil {
		return nil, err
	}
	if err := validateTimeStep(cfg.dt); err != nil {
		return nil, err
	}
	mean, err := model.Transition(belief.x, cfg.dt)
	if err != nil {
		return nil, err
	}
	cov, err := model.NoiseCovariance(cfg.dt)
	if err != nil {
		return nil, err
	}
	if cfg.noisy {
		mean, err = sampleNormal(mean, cov, src)
		if err != nil {
			return nil, errors.Wrap(err, "can't sample noisy transition")
		}
	}
	return &Gaussian{x: mean, p: cov}, nil
}
