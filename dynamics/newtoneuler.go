// Package dynamics implements rigid body dynamics of serial chains in the
// product of exponentials formulation: recursive Newton-Euler inverse
// dynamics, the configuration-dependent mass matrix, and forward dynamics
// built on top of them.
//
// All functions take the same description of the chain: linkFrames holds
// the n+1 home transforms between successive link center-of-mass frames
// (the last entry carrying the final center of mass to the end effector),
// inertias holds the 6x6 spatial inertia of each link about its center of
// mass, and screws holds the joint screw axes in the space frame, one
// column per joint. A chain.Chain hands these out directly.
package dynamics

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/screwtheory/screwkit/spatialmath"
)

// Inverse computes the joint forces and torques required for the chain to
// track the given accelerations at the given state, using the recursive
// Newton-Euler algorithm: a forward pass propagates twists and
// accelerations from the base out, a backward pass propagates wrenches
// from the end effector in, and each joint's torque is the projection of
// its link's wrench onto its screw axis.
//
// gravity is the acceleration of the base frame expressed as the gravity
// vector, typically (0, 0, -9.81). tipWrench is the wrench the end
// effector applies to the environment, in the end effector frame. nil
// velocities, accelerations or tipWrench are treated as zero.
func Inverse(angles, velocities, accelerations []float64, gravity r3.Vector, tipWrench []float64, linkFrames, inertias []*mat.Dense, screws *mat.Dense) ([]float64, error) {
	n, err := validate(angles, velocities, accelerations, tipWrench, linkFrames, inertias, screws)
	if err != nil {
		return nil, err
	}
	if velocities == nil {
		velocities = make([]float64, n)
	}
	if accelerations == nil {
		accelerations = make([]float64, n)
	}

	// Forward pass: carry each link's screw into its own frame and
	// accumulate twist and acceleration link by link. Index 0 is the base,
	// which is motionless but accelerates opposite gravity.
	home := eye4()
	axes := make([][]float64, n)
	jointTrans := make([]*mat.Dense, n+1)
	jointTrans[n] = spatialmath.Adjoint(spatialmath.TransInv(linkFrames[n]))
	twists := make([][]float64, n+1)
	accels := make([][]float64, n+1)
	twists[0] = make([]float64, 6)
	accels[0] = []float64{0, 0, 0, -gravity.X, -gravity.Y, -gravity.Z}
	for i := 0; i < n; i++ {
		home = mul(home, linkFrames[i])
		axes[i] = mulVec6(spatialmath.Adjoint(spatialmath.TransInv(home)), screwColumn(screws, i))
		step := spatialmath.TransExp(axes[i], -angles[i])
		jointTrans[i] = spatialmath.Adjoint(mul(step, spatialmath.TransInv(linkFrames[i])))

		twists[i+1] = mulVec6(jointTrans[i], twists[i])
		floats.AddScaled(twists[i+1], velocities[i], axes[i])

		accels[i+1] = mulVec6(jointTrans[i], accels[i])
		floats.AddScaled(accels[i+1], accelerations[i], axes[i])
		floats.AddScaled(accels[i+1], velocities[i], mulVec6(spatialmath.TwistAdjoint(twists[i+1]), axes[i]))
	}

	// Backward pass: each link's wrench is the child's wrench carried back
	// plus its own inertial terms.
	wrench := make([]float64, 6)
	if tipWrench != nil {
		copy(wrench, tipWrench)
	}
	torques := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		wrench = mulVec6(jointTrans[i+1].T(), wrench)
		floats.Add(wrench, mulVec6(inertias[i], accels[i+1]))
		floats.Sub(wrench, mulVec6(spatialmath.TwistAdjoint(twists[i+1]).T(), mulVec6(inertias[i], twists[i+1])))
		torques[i] = floats.Dot(wrench, axes[i])
	}
	return torques, nil
}

// MassMatrix computes the n x n joint-space mass matrix at the given
// configuration, one column at a time: column i is the torque needed for
// unit acceleration of joint i from rest with gravity off, which the
// Newton-Euler recursion delivers in O(n) per column.
func MassMatrix(angles []float64, linkFrames, inertias []*mat.Dense, screws *mat.Dense) (*mat.Dense, error) {
	n, err := validate(angles, nil, nil, nil, linkFrames, inertias, screws)
	if err != nil {
		return nil, err
	}
	massMat := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		unit := make([]float64, n)
		unit[i] = 1
		column, err := Inverse(angles, nil, unit, r3.Vector{}, nil, linkFrames, inertias, screws)
		if err != nil {
			return nil, err
		}
		massMat.SetCol(i, column)
	}
	return massMat, nil
}

// VelQuadraticForces computes the Coriolis and centripetal joint torques
// h(θ, θdot) at the given state: inverse dynamics with zero acceleration,
// zero gravity and no tip wrench.
func VelQuadraticForces(angles, velocities []float64, linkFrames, inertias []*mat.Dense, screws *mat.Dense) ([]float64, error) {
	return Inverse(angles, velocities, nil, r3.Vector{}, nil, linkFrames, inertias, screws)
}

// GravityForces computes the joint torques that hold the chain motionless
// against gravity at the given configuration.
func GravityForces(angles []float64, gravity r3.Vector, linkFrames, inertias []*mat.Dense, screws *mat.Dense) ([]float64, error) {
	return Inverse(angles, nil, nil, gravity, nil, linkFrames, inertias, screws)
}

// EndEffectorForces computes the joint torques that balance a wrench
// applied by the end effector at the given configuration, equal to the
// transpose of the body Jacobian times the wrench.
func EndEffectorForces(angles, tipWrench []float64, linkFrames, inertias []*mat.Dense, screws *mat.Dense) ([]float64, error) {
	return Inverse(angles, nil, nil, r3.Vector{}, tipWrench, linkFrames, inertias, screws)
}

// validate checks every shape the recursions assume. The joint velocity
// and acceleration vectors and the wrench may be nil, meaning zero.
func validate(angles, velocities, accelerations, tipWrench []float64, linkFrames, inertias []*mat.Dense, screws *mat.Dense) (int, error) {
	r, n := screws.Dims()
	if r != 6 {
		return 0, NewScrewListShapeError(r, n)
	}
	if len(angles) != n {
		return 0, NewInputLengthError("angles", len(angles), n)
	}
	if velocities != nil && len(velocities) != n {
		return 0, NewInputLengthError("velocities", len(velocities), n)
	}
	if accelerations != nil && len(accelerations) != n {
		return 0, NewInputLengthError("accelerations", len(accelerations), n)
	}
	if tipWrench != nil && len(tipWrench) != 6 {
		return 0, NewWrenchLengthError(len(tipWrench))
	}
	if len(linkFrames) != n+1 {
		return 0, NewFrameCountError(len(linkFrames), n)
	}
	for i, f := range linkFrames {
		if fr, fc := f.Dims(); fr != 4 || fc != 4 {
			return 0, NewFrameShapeError(i, fr, fc)
		}
	}
	if len(inertias) != n {
		return 0, NewInertiaCountError(len(inertias), n)
	}
	for i, g := range inertias {
		if gr, gc := g.Dims(); gr != 6 || gc != 6 {
			return 0, NewInertiaShapeError(i, gr, gc)
		}
	}
	return n, nil
}

func mulVec6(m mat.Matrix, v []float64) []float64 {
	var out mat.VecDense
	out.MulVec(m, mat.NewVecDense(6, v))
	return out.RawVector().Data
}

func screwColumn(screws *mat.Dense, i int) []float64 {
	col := make([]float64, 6)
	mat.Col(col, i, screws)
	return col
}

func mul(a, b mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Mul(a, b)
	return &out
}

func eye4() *mat.Dense {
	out := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		out.Set(i, i, 1)
	}
	return out
}
