package dynamics

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Forward computes the joint accelerations caused by the given torques at
// the given state:
//
//	θdd = M(θ)^-1 * (τ - h(θ, θd) - g(θ) - Jᵀ(θ) F_tip)
//
// The bias torques h + g + JᵀF come from a single inverse dynamics call
// with zero acceleration, and the mass matrix is solved against rather
// than explicitly inverted.
func Forward(angles, velocities, torques []float64, gravity r3.Vector, tipWrench []float64, linkFrames, inertias []*mat.Dense, screws *mat.Dense) ([]float64, error) {
	n, err := validate(angles, velocities, nil, tipWrench, linkFrames, inertias, screws)
	if err != nil {
		return nil, err
	}
	if len(torques) != n {
		return nil, NewInputLengthError("torques", len(torques), n)
	}
	massMat, err := MassMatrix(angles, linkFrames, inertias, screws)
	if err != nil {
		return nil, err
	}
	bias, err := Inverse(angles, velocities, nil, gravity, tipWrench, linkFrames, inertias, screws)
	if err != nil {
		return nil, err
	}
	rhs := make([]float64, n)
	floats.SubTo(rhs, torques, bias)

	var accelerations mat.VecDense
	if err := accelerations.SolveVec(massMat, mat.NewVecDense(n, rhs)); err != nil {
		return nil, errors.Wrap(err, "mass matrix is not invertible")
	}
	return accelerations.RawVector().Data, nil
}

// EulerStep advances a configuration and its velocity by one first-order
// Euler integration step of length dt.
func EulerStep(angles, velocities, accelerations []float64, dt float64) ([]float64, []float64, error) {
	if len(velocities) != len(angles) {
		return nil, nil, NewInputLengthError("velocities", len(velocities), len(angles))
	}
	if len(accelerations) != len(angles) {
		return nil, nil, NewInputLengthError("accelerations", len(accelerations), len(angles))
	}
	nextAngles := make([]float64, len(angles))
	floats.AddScaledTo(nextAngles, angles, dt, velocities)
	nextVelocities := make([]float64, len(velocities))
	floats.AddScaledTo(nextVelocities, velocities, dt, accelerations)
	return nextAngles, nextVelocities, nil
}
