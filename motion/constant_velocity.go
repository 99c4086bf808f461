package motion

import (
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

const cvDim = 4

// ConstantVelocity is a 2D nearly constant velocity motion model.
// State vector layout: [px, py, vx, vy] - position and velocity.
// The dynamics are linear, so the transition is F(dt)·state and the Jacobian
// does not depend on the current state.
// It implements Model interface.
type ConstantVelocity struct {
	dt    float64
	sigma float64
	src   rand.Source
}

// NewConstantVelocity creates a constant velocity model with default sampling
// interval dt (seconds) and process noise standard deviation sigma
// (white-noise acceleration intensity).
func NewConstantVelocity(dt, sigma float64, opts ...ModelOption) (*ConstantVelocity, error) {
	if err := validateTimeStep(dt); err != nil {
		return nil, errors.Wrap(err, "can't create constant velocity model")
	}
	if err := validateStdDev("sigma", sigma); err != nil {
		return nil, errors.Wrap(err, "can't create constant velocity model")
	}
	cfg := newModelConfig(opts...)
	return &ConstantVelocity{
		dt:    dt,
		sigma: sigma,
		src:   cfg.src,
	}, nil
}

// Dim returns the state dimension
func (model *ConstantVelocity) Dim() int {
	return cvDim
}

// Transition advances the state by dt seconds of straight-line motion
func (model *ConstantVelocity) Transition(state mat.Vector, dt float64) (*mat.VecDense, error) {
	if err := validateState(state, cvDim); err != nil {
		return nil, err
	}
	if err := validateTimeStep(dt); err != nil {
		return nil, err
	}
	next := mat.NewVecDense(cvDim, nil)
	next.MulVec(model.transitionMatrix(dt), state)
	return next, nil
}

// Jacobian returns the transition matrix F(dt). The dynamics are linear, so
// the Jacobian is constant in the state.
func (model *ConstantVelocity) Jacobian(state mat.Vector, dt float64) (*mat.Dense, error) {
	if err := validateState(state, cvDim); err != nil {
		return nil, err
	}
	if err := validateTimeStep(dt); err != nil {
		return nil, err
	}
	return model.transitionMatrix(dt), nil
}

func (model *ConstantVelocity) transitionMatrix(dt float64) *mat.Dense {
	return mat.NewDense(cvDim, cvDim, []float64{
		1, 0, dt, 0,
		0, 1, 0, dt,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})
}

// NoiseCovariance returns the process noise covariance for interval dt:
// a continuous white-noise acceleration model with intensity sigma²
// integrated over dt. Symmetric PSD for all dt >= 0, sigma >= 0.
func (model *ConstantVelocity) NoiseCovariance(dt float64) (*mat.SymDense, error) {
	if err := validateTimeStep(dt); err != nil {
		return nil, err
	}
	s2 := model.sigma * model.sigma
	dt2 := dt * dt
	dt3 := dt2 * dt
	dt4 := dt3 * dt
	return mat.NewSymDense(cvDim, []float64{
		s2 * dt4 / 4, 0, s2 * dt3 / 2, 0,
		0, s2 * dt4 / 4, 0, s2 * dt3 / 2,
		s2 * dt3 / 2, 0, s2 * dt2, 0,
		0, s2 * dt3 / 2, 0, s2 * dt2,
	}), nil
}

// Predict advances a Gaussian belief by one time step. Without options the
// model's default dt is used and the next mean is the deterministic
// transition; WithNoise samples the next mean from N(f(x, dt), Q(dt)).
// The next covariance is Q(dt) in both cases.
func (model *ConstantVelocity) Predict(belief *Gaussian, opts ...PredictOption) (*Gaussian, error) {
	next, err := advanceBelief(model, model.src, model.dt, belief, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "can't predict with constant velocity model")
	}
	return next, nil
}

// String implements fmt.Stringer
func (model *ConstantVelocity) String() string {
	return fmt.Sprintf("ConstantVelocity(d=%d, dt=%v, sigma=%v)", cvDim, model.dt, model.sigma)
}
