package motion

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

func TestPredictNoiselessDeterministic(t *testing.T) {
	cv, err := NewConstantVelocity(0.5, 2.0)
	require.NoError(t, err)
	ct, err := NewCoordinateTurn(0.5, 0.3, 0.1)
	require.NoError(t, err)

	cvBelief, err := NewGaussian(mat.NewVecDense(cvDim, []float64{1, 2, -0.5, 0.25}), mat.NewSymDense(cvDim, nil))
	require.NoError(t, err)
	ctBelief, err := NewGaussian(mat.NewVecDense(ctDim, []float64{1, 2, 3, 0.5, 0.2}), mat.NewSymDense(ctDim, nil))
	require.NoError(t, err)

	models := []Model{cv, ct}
	beliefs := []*Gaussian{cvBelief, ctBelief}
	for k, model := range models {
		first, err := model.Predict(beliefs[k])
		require.NoError(t, err)
		second, err := model.Predict(beliefs[k])
		require.NoError(t, err)
		assert.True(t, mat.Equal(first.Mean(), second.Mean()), "%v mean differs between identical calls", model)
		assert.True(t, mat.Equal(first.Cov(), second.Cov()), "%v covariance differs between identical calls", model)

		// Next covariance is Q(dt)
		q, err := model.NoiseCovariance(0.5)
		require.NoError(t, err)
		assert.True(t, mat.Equal(q, first.Cov()))
	}
}

func TestPredictNoisyReproducible(t *testing.T) {
	build := func(seed uint64) (Model, Model) {
		cv, err := NewConstantVelocity(1.0, 0.5, WithRandomSource(rand.NewSource(seed)))
		require.NoError(t, err)
		ct, err := NewCoordinateTurn(1.0, 0.3, 0.1, WithRandomSource(rand.NewSource(seed)))
		require.NoError(t, err)
		return cv, ct
	}
	cvOne, ctOne := build(42)
	cvTwo, ctTwo := build(42)

	cvBelief, err := NewGaussian(mat.NewVecDense(cvDim, []float64{0, 0, 1, -1}), mat.NewSymDense(cvDim, nil))
	require.NoError(t, err)
	ctBelief, err := NewGaussian(mat.NewVecDense(ctDim, []float64{0, 0, 1, 0.1, 0.5}), mat.NewSymDense(ctDim, nil))
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		one, err := cvOne.Predict(cvBelief, WithNoise())
		require.NoError(t, err)
		two, err := cvTwo.Predict(cvBelief, WithNoise())
		require.NoError(t, err)
		assert.True(t, mat.Equal(one.Mean(), two.Mean()), "constant velocity draw %d differs between same-seed models", i)

		one, err = ctOne.Predict(ctBelief, WithNoise())
		require.NoError(t, err)
		two, err = ctTwo.Predict(ctBelief, WithNoise())
		require.NoError(t, err)
		assert.True(t, mat.Equal(one.Mean(), two.Mean()), "coordinate turn draw %d differs between same-seed models", i)
	}
}

func TestPredictNoisySampleMeanConverges(t *testing.T) {
	model, err := NewConstantVelocity(1.0, 0.5, WithRandomSource(rand.NewSource(7)))
	require.NoError(t, err)
	belief, err := NewGaussian(mat.NewVecDense(cvDim, []float64{0, 0, 1, 0}), mat.NewSymDense(cvDim, nil))
	require.NoError(t, err)
	want, err := model.Transition(belief.Mean(), 1.0)
	require.NoError(t, err)

	const draws = 4000
	samples := make([][]float64, cvDim)
	for i := range samples {
		samples[i] = make([]float64, 0, draws)
	}
	for n := 0; n < draws; n++ {
		next, err := model.Predict(belief, WithNoise())
		require.NoError(t, err)
		for i := 0; i < cvDim; i++ {
			samples[i] = append(samples[i], next.Mean().AtVec(i))
		}
	}
	for i := 0; i < cvDim; i++ {
		assert.InDelta(t, want.AtVec(i), stat.Mean(samples[i], nil), 0.05, "component %d", i)
	}
}

// The coordinate turn Q is singular: position and heading channels carry no
// injected noise, so noisy draws must keep them exactly on the deterministic
// transition while speed and turn rate scatter.
func TestPredictNoisySingularCovariance(t *testing.T) {
	model, err := NewCoordinateTurn(1.0, 0.5, 0.1, WithRandomSource(rand.NewSource(11)))
	require.NoError(t, err)
	state := mat.NewVecDense(ctDim, []float64{1, 2, 3, 0.5, 0.2})
	belief, err := NewGaussian(state, mat.NewSymDense(ctDim, nil))
	require.NoError(t, err)
	exact, err := model.Transition(state, 1.0)
	require.NoError(t, err)

	next, err := model.Predict(belief, WithNoise())
	require.NoError(t, err)
	sampled := next.Mean()
	for _, i := range []int{0, 1, 3} {
		assert.InDelta(t, exact.AtVec(i), sampled.AtVec(i), 1e-9, "noise leaked into channel %d", i)
	}
	for _, i := range []int{2, 4} {
		value := sampled.AtVec(i)
		assert.False(t, math.IsNaN(value) || math.IsInf(value, 0), "channel %d is not finite", i)
		assert.NotEqual(t, exact.AtVec(i), value, "channel %d received no noise", i)
	}
}

func TestPredictTimeStepValidation(t *testing.T) {
	model, err := NewConstantVelocity(1.0, 1.0)
	require.NoError(t, err)
	belief, err := NewGaussian(mat.NewVecDense(cvDim, nil), mat.NewSymDense(cvDim, nil))
	require.NoError(t, err)
	for _, dt := range []float64{0, -0.5, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := model.Predict(belief, WithTimeStep(dt))
		assert.True(t, errors.Is(err, ErrInvalidTimeStep), "dt = %v", dt)
	}
	// Default dt applies when no override is given
	next, err := model.Predict(belief)
	require.NoError(t, err)
	assert.Equal(t, cvDim, next.Dim())
}
