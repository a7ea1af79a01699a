package kinematics

import (
	"gonum.org/v1/gonum/mat"

	"github.com/screwtheory/screwkit/spatialmath"
)

// SpaceJacobian computes the 6xn space-frame Jacobian relating joint rates
// to the end effector twist, V_s = Js(θ)*θdot. Column i is the i-th screw
// axis carried through the joints before it:
//
//	Js_i = Adjoint(e^[S1]θ1 * ... * e^[S_{i-1}]θ_{i-1}) * S_i
//
// so the first column is always S_1 unchanged.
func SpaceJacobian(screws *mat.Dense, angles []float64) (*mat.Dense, error) {
	n, err := screwCount(screws, angles)
	if err != nil {
		return nil, err
	}
	jac := mat.NewDense(6, n, nil)
	t := identity4()
	for i := 0; i < n; i++ {
		if i > 0 {
			step := spatialmath.TransExp(screwColumn(screws, i-1), angles[i-1])
			next := mat.NewDense(4, 4, nil)
			next.Mul(t, step)
			t = next
		}
		jac.SetCol(i, adjointMulVec(t, screwColumn(screws, i)))
	}
	return jac, nil
}

// BodyJacobian computes the 6xn body-frame Jacobian, V_b = Jb(θ)*θdot.
// Column i is the i-th screw axis carried back through the joints after it:
//
//	Jb_i = Adjoint(e^-[Bn]θn * ... * e^-[B_{i+1}]θ_{i+1}) * B_i
//
// so the last column is always B_n unchanged.
func BodyJacobian(screws *mat.Dense, angles []float64) (*mat.Dense, error) {
	n, err := screwCount(screws, angles)
	if err != nil {
		return nil, err
	}
	jac := mat.NewDense(6, n, nil)
	t := identity4()
	for i := n - 1; i >= 0; i-- {
		if i < n-1 {
			step := spatialmath.TransExp(screwColumn(screws, i+1), -angles[i+1])
			next := mat.NewDense(4, 4, nil)
			next.Mul(t, step)
			t = next
		}
		jac.SetCol(i, adjointMulVec(t, screwColumn(screws, i)))
	}
	return jac, nil
}

// adjointMulVec applies the adjoint of a transform to a twist.
func adjointMulVec(t *mat.Dense, v []float64) []float64 {
	var out mat.VecDense
	out.MulVec(spatialmath.Adjoint(t), mat.NewVecDense(6, v))
	return out.RawVector().Data
}
