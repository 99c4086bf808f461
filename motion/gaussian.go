package motion

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Gaussian is a Gaussian belief over an object's kinematic state:
// a mean vector paired with a covariance matrix of the same dimension.
// Once constructed a belief is never mutated; Predict produces a fresh one.
type Gaussian struct {
	x *mat.VecDense
	p *mat.SymDense
}

// NewGaussian creates a Gaussian belief from a mean vector and a covariance matrix.
// Both inputs are copied, so the caller keeps ownership of its data.
func NewGaussian(x mat.Vector, p mat.Symmetric) (*Gaussian, error) {
	if p.SymmetricDim() != x.Len() {
		return nil, errors.Wrapf(ErrDimensionMismatch, "covariance is %[1]dx%[1]d but mean has length %[2]d", p.SymmetricDim(), x.Len())
	}
	mean := mat.NewVecDense(x.Len(), nil)
	mean.CopyVec(x)
	cov := mat.NewSymDense(p.SymmetricDim(), nil)
	cov.CopySym(p)
	return &Gaussian{x: mean, p: cov}, nil
}

// Dim returns the state dimension of the belief
func (belief *Gaussian) Dim() int {
	return belief.x.Len()
}

// Mean returns a copy of the belief's mean vector
func (belief *Gaussian) Mean() *mat.VecDense {
	mean := mat.NewVecDense(belief.x.Len(), nil)
	mean.CopyVec(belief.x)
	return mean
}

// Cov returns a copy of the belief's covariance matrix
func (belief *Gaussian) Cov() *mat.SymDense {
	cov := mat.NewSymDense(belief.p.SymmetricDim(), nil)
	cov.CopySym(belief.p)
	return cov
}
