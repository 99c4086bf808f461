package motion

import (
	"math"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"
)

// psdEps bounds how negative an eigenvalue of a covariance may be before the
// matrix is rejected as not positive semi-definite.
const psdEps = 1e-10

// sampleNormal draws one vector from N(mean, cov). Positive definite
// covariances go through Cholesky sampling. Rank-deficient PSD covariances
// can't be Cholesky-factored (the white-noise acceleration Q has rank 2 and
// the coordinate turn Q has zero diagonal entries), so they fall back to a
// spectral factorization: x = mean + V·sqrt(Λ)·z with z iid standard normal.
func sampleNormal(mean *mat.VecDense, cov *mat.SymDense, src rand.Source) (*mat.VecDense, error) {
	d := mean.Len()
	if normal, ok := distmv.NewNormal(mean.RawVector().Data, cov, src); ok {
		return mat.NewVecDense(d, normal.Rand(nil)), nil
	}

	var eig mat.EigenSym
	if !eig.Factorize(cov, true) {
		return nil, errors.Wrap(ErrDegenerateCovariance, "eigendecomposition failed")
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	stdNormal := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	scaled := mat.NewVecDense(d, nil)
	for i, lambda := range values {
		if lambda < -psdEps {
			return nil, errors.Wrapf(ErrDegenerateCovariance, "eigenvalue %d is %v", i, lambda)
		}
		if lambda < 0 {
			lambda = 0
		}
		scaled.SetVec(i, math.Sqrt(lambda)*stdNormal.Rand())
	}
	sample := mat.NewVecDense(d, nil)
	sample.MulVec(&vectors, scaled)
	sample.AddVec(sample, mean)
	return sample, nil
}
