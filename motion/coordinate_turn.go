package motion

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

const ctDim = 5

// omegaEps is the turn rate magnitude below which the exact arc transition
// degenerates to straight-line motion. The arc formula divides by omega and
// hits a removable 0/0 singularity at zero turn rate.
const omegaEps = 1e-9

// CoordinateTurn is a 2D coordinate turn motion model with nearly constant
// polar velocity and turn rate.
// State vector layout: [px, py, v, phi, omega] - position, speed, heading
// and turn rate.
// It implements Model interface.
type CoordinateTurn struct {
	dt         float64
	sigmaV     float64
	sigmaOmega float64
	src        rand.Source
}

// NewCoordinateTurn creates a coordinate turn model with default sampling
// interval dt (seconds), speed noise standard deviation sigmaV and turn rate
// noise standard deviation sigmaOmega.
func NewCoordinateTurn(dt, sigmaV, sigmaOmega float64, opts ...ModelOption) (*CoordinateTurn, error) {
	if err := validateTimeStep(dt); err != nil {
		return nil, errors.Wrap(err, "can't create coordinate turn model")
	}
	if err := validateStdDev("sigmaV", sigmaV); err != nil {
		return nil, errors.Wrap(err, "can't create coordinate turn model")
	}
	if err := validateStdDev("sigmaOmega", sigmaOmega); err != nil {
		return nil, errors.Wrap(err, "can't create coordinate turn model")
	}
	cfg := newModelConfig(opts...)
	return &CoordinateTurn{
		dt:         dt,
		sigmaV:     sigmaV,
		sigmaOmega: sigmaOmega,
		src:        cfg.src,
	}, nil
}

// Dim returns the state dimension
func (model *CoordinateTurn) Dim() int {
	return ctDim
}

// Transition analytically integrates constant-turn-rate motion along a
// circular arc for dt seconds. Turn rates within omegaEps of zero take the
// straight-line limit of the arc instead, so omega == 0 never produces
// NaN or Inf.
func (model *CoordinateTurn) Transition(state mat.Vector, dt float64) (*mat.VecDense, error) {
	if err := validateState(state, ctDim); err != nil {
		return nil, err
	}
	if err := validateTimeStep(dt); err != nil {
		return nil, err
	}
	px, py := state.AtVec(0), state.AtVec(1)
	v, phi, omega := state.AtVec(2), state.AtVec(3), state.AtVec(4)

	var nextX, nextY float64
	if math.Abs(omega) < omegaEps {
		// Removable singularity: zero turn rate is straight-line motion
		nextX = px + dt*v*math.Cos(phi)
		nextY = py + dt*v*math.Sin(phi)
	} else {
		chord := (2 * v / omega) * math.Sin(omega*dt/2)
		nextX = px + chord*math.Cos(phi+omega*dt/2)
		nextY = py + chord*math.Sin(phi+omega*dt/2)
	}
	return mat.NewVecDense(ctDim, []float64{nextX, nextY, v, phi + omega*dt, omega}), nil
}

// linearTransition is the first-order approximation of the turn dynamics.
// The published Jacobian is derived from this approximation, not from the
// exact arc transition that Predict integrates. Keep the two distinct.
func (model *CoordinateTurn) linearTransition(state mat.Vector, dt float64) *mat.VecDense {
	px, py := state.AtVec(0), state.AtVec(1)
	v, phi, omega := state.AtVec(2), state.AtVec(3), state.AtVec(4)
	return mat.NewVecDense(ctDim, []float64{
		px + dt*v*math.Cos(phi),
		py + dt*v*math.Sin(phi),
		v,
		phi + dt*omega,
		omega,
	})
}

// Jacobian linearizes the first-order transition at the given state.
func (model *CoordinateTurn) Jacobian(state mat.Vector, dt float64) (*mat.Dense, error) {
	if err := validateState(state, ctDim); err != nil {
		return nil, err
	}
	if err := validateTimeStep(dt); err != nil {
		return nil, err
	}
	v, phi := state.AtVec(2), state.AtVec(3)
	return mat.NewDense(ctDim, ctDim, []float64{
		1, 0, dt * math.Cos(phi), -dt * v * math.Sin(phi), 0,
		0, 1, dt * math.Sin(phi), dt * v * math.Cos(phi), 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, dt,
		0, 0, 0, 0, 1,
	}), nil
}

// NoiseCovariance returns the process noise covariance
// diag(0, 0, sigmaV², 0, sigmaOmega²). Only the speed and turn rate channels
// receive injected noise; position and heading noise arise indirectly through
// propagation. The matrix does not depend on dt.
func (model *CoordinateTurn) NoiseCovariance(dt float64) (*mat.SymDense, error) {
	if err := validateTimeStep(dt); err != nil {
		return nil, err
	}
	q := mat.NewSymDense(ctDim, nil)
	q.SetSym(2, 2, model.sigmaV*model.sigmaV)
	q.SetSym(4, 4, model.sigmaOmega*model.sigmaOmega)
	return q, nil
}

// Predict advances a Gaussian belief by one time step along the exact arc.
// Without options the model's default dt is used and the next mean is the
// deterministic transition; WithNoise samples the next mean from
// N(f(x, dt), Q). The next covariance is Q in both cases.
func (model *CoordinateTurn) Predict(belief *Gaussian, opts ...PredictOption) (*Gaussian, error) {
	next, err := advanceBelief(model, model.src, model.dt, belief, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "can't predict with coordinate turn model")
	}
	return next, nil
}

// String implements fmt.Stringer
func (model *CoordinateTurn) String() string {
	return fmt.Sprintf("CoordinateTurn(d=%d, dt=%v, sigmaV=%v, sigmaOmega=%v)", ctDim, model.dt, model.sigmaV, model.sigmaOmega)
}
