package motion

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Target is a simulated object advanced by a motion model. It keeps the
// current Gaussian belief and a track history of positions, producing ground
// truth trajectories for exercising trackers downstream. Both state layouts
// share the [px, py] prefix, so the track works with either model.
type Target struct {
	id          uuid.UUID
	model       Model
	belief      *Gaussian
	track       []Point
	maxTrackLen int
}

// NewTarget creates a new Target with the given motion model and initial belief.
func NewTarget(model Model, initial *Gaussian) (*Target, error) {
	if initial == nil {
		return nil, errors.Wrap(ErrDimensionMismatch, "initial belief is nil")
	}
	if initial.Dim() != model.Dim() {
		return nil, errors.Wrapf(ErrDimensionMismatch, "initial belief has dimension %d, model dimension is %d", initial.Dim(), model.Dim())
	}
	target := Target{
		id:          uuid.New(),
		model:       model,
		belief:      initial,
		track:       make([]Point, 0, 150),
		maxTrackLen: 150,
	}
	target.track = append(target.track, target.Position())
	return &target, nil
}

// GetID returns target's identifier
func (target *Target) GetID() uuid.UUID {
	return target.id
}

// SetID sets target's identifier
func (target *Target) SetID(newID uuid.UUID) {
	target.id = newID
}

// Belief returns target's current belief
func (target *Target) Belief() *Gaussian {
	return target.belief
}

// Position returns target's current position
func (target *Target) Position() Point {
	return Point{
		X: target.belief.x.AtVec(0),
		Y: target.belief.x.AtVec(1),
	}
}

// GetTrack returns target's track. Be careful: this is not copy of track, but reference to it
func (target *Target) GetTrack() []Point {
	return target.track
}

// GetMaxTrackLen returns target's max track length
func (target *Target) GetMaxTrackLen() int {
	return target.maxTrackLen
}

// SetMaxTrackLen sets target's max track length
func (target *Target) SetMaxTrackLen(newMaxTrackLen int) {
	target.maxTrackLen = newMaxTrackLen
}

// DistanceTo returns distance to other target (position to position)
func (target *Target) DistanceTo(otherTarget *Target) float64 {
	return euclideanDistance(target.Position(), otherTarget.Position())
}

// Step advances the target's belief by one time step and appends the new
// position to the track. Options are forwarded to the model's Predict, so
// WithNoise produces a stochastic trajectory and WithTimeStep overrides the
// model's default interval.
func (target *Target) Step(opts ...PredictOption) error {
	next, err := target.model.Predict(target.belief, opts...)
	if err != nil {
		return errors.Wrap(err, "can't advance target")
	}
	target.belief = next
	target.track = append(target.track, target.Position())
	if len(target.track) > target.maxTrackLen {
		target.track = target.track[1:]
	}
	return nil
}
