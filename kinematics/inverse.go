package kinematics

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/screwtheory/screwkit/spatialmath"
	"github.com/screwtheory/screwkit/utils"
)

// dlsLambda is the fixed damping applied to the Jacobian pseudo-inverse.
// Small enough to leave Newton steps untouched away from singular
// configurations, large enough to bound the step at them.
const dlsLambda = 1e-6

// InverseBody runs Newton-Raphson inverse kinematics in the body frame.
// Starting from seed, it iterates
//
//	Vb = log(T(θ)^-1 * goal),  θ <- θ + pinv(Jb(θ)) * Vb
//
// until the angular part of Vb is within tolOmega and the linear part is
// within tolV (Euclidean norms, both must hold), or maxIterations updates
// have been spent.
//
// The boolean reports convergence: (θ*, true) on success, (θ_last, false)
// when the budget runs out. Failure to converge is an ordinary outcome, not
// an error; the error return is reserved for malformed inputs. The returned
// angles are not wrapped or limited.
//
// The pseudo-inverse is damped least squares, Jᵀ(JJᵀ + λ²I)^-1 with fixed
// λ = 1e-6, so steps stay bounded near singular configurations.
func InverseBody(home, screws, goal *mat.Dense, seed []float64, tolOmega, tolV float64, maxIterations int) ([]float64, bool, error) {
	return inverseNewton(home, screws, goal, seed, tolOmega, tolV, maxIterations, false)
}

// InverseSpace is InverseBody's space-frame counterpart: the error twist is
// expressed in the space frame, Vs = Adjoint(T(θ)) * Vb, and steps go
// through the space Jacobian. Same convergence and return semantics.
func InverseSpace(home, screws, goal *mat.Dense, seed []float64, tolOmega, tolV float64, maxIterations int) ([]float64, bool, error) {
	return inverseNewton(home, screws, goal, seed, tolOmega, tolV, maxIterations, true)
}

func inverseNewton(home, screws, goal *mat.Dense, seed []float64, tolOmega, tolV float64, maxIterations int, spaceFrame bool) ([]float64, bool, error) {
	if err := checkTransform(goal, "goal"); err != nil {
		return nil, false, err
	}
	if tolOmega <= 0 || tolV <= 0 {
		return nil, false, NewToleranceError(tolOmega, tolV)
	}
	if maxIterations < 1 {
		return nil, false, NewIterationCountError(maxIterations)
	}

	forward := ForwardBody
	jacobian := BodyJacobian
	if spaceFrame {
		forward = ForwardSpace
		jacobian = SpaceJacobian
	}

	angles := append([]float64(nil), seed...)
	for iter := 0; ; iter++ {
		current, err := forward(home, screws, angles)
		if err != nil {
			return nil, false, err
		}
		var rel mat.Dense
		rel.Mul(spatialmath.TransInv(current), goal)
		twist := spatialmath.TwistVee(spatialmath.TransLog(&rel))
		if spaceFrame {
			twist = adjointMulVec(current, twist)
		}
		if floats.Norm(twist[:3], 2) <= tolOmega && floats.Norm(twist[3:], 2) <= tolV {
			return angles, true, nil
		}
		if iter == maxIterations {
			return angles, false, nil
		}

		jac, err := jacobian(screws, angles)
		if err != nil {
			return nil, false, err
		}
		step, ok := dampedStep(jac, twist)
		if !ok {
			// A defective system (NaN or Inf in the Jacobian); further
			// iterations would go nowhere.
			return angles, false, nil
		}
		floats.Add(angles, step)
	}
}

// dampedStep solves (J Jᵀ + λ²I) y = v and returns Jᵀy, the damped
// least-squares step toward the error twist v.
func dampedStep(jac *mat.Dense, v []float64) ([]float64, bool) {
	var normal mat.Dense
	normal.Mul(jac, jac.T())
	for i := 0; i < 6; i++ {
		normal.Set(i, i, normal.At(i, i)+utils.Square(dlsLambda))
	}
	var y mat.VecDense
	if err := y.SolveVec(&normal, mat.NewVecDense(6, v)); err != nil {
		return nil, false
	}
	var step mat.VecDense
	step.MulVec(jac.T(), &y)
	return step.RawVector().Data, true
}
