package motion

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Simulator advances a set of targets with their motion models. It only
// exercises the predict side: no measurements, no data association.
type Simulator struct {
	// Main storage
	Targets map[uuid.UUID]*Target
}

// NewSimulator creates new instance of Simulator
func NewSimulator() *Simulator {
	return &Simulator{
		Targets: make(map[uuid.UUID]*Target),
	}
}

// Spawn registers a new target with the given motion model and initial belief
func (sim *Simulator) Spawn(model Model, initial *Gaussian) (*Target, error) {
	target, err := NewTarget(model, initial)
	if err != nil {
		return nil, errors.Wrap(err, "can't spawn target")
	}
	sim.Targets[target.GetID()] = target
	return target, nil
}

// Despawn removes a target from the simulation
func (sim *Simulator) Despawn(id uuid.UUID) {
	delete(sim.Targets, id)
}

// Step advances every target by one time step
func (sim *Simulator) Step(opts ...PredictOption) error {
	for targetID := range sim.Targets {
		if err := sim.Targets[targetID].Step(opts...); err != nil {
			return errors.Wrapf(err, "can't step target with id %s", targetID.String())
		}
	}
	return nil
}
