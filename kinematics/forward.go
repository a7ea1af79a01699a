// Package kinematics computes serial-chain kinematics in the product of
// exponentials formulation: forward kinematics in the space and body
// frames, geometric Jacobians, and Newton-Raphson inverse kinematics.
package kinematics

import (
	"gonum.org/v1/gonum/mat"

	"github.com/screwtheory/screwkit/spatialmath"
)

// ForwardSpace computes the end effector pose of a serial chain from
// space-frame screw axes:
//
//	T = e^[S1]θ1 * ... * e^[Sn]θn * M
//
// home is the end effector pose at the zero configuration; screws holds one
// screw axis per column, base to tip; angles holds one joint value per
// screw. The zero configuration returns home exactly.
func ForwardSpace(home, screws *mat.Dense, angles []float64) (*mat.Dense, error) {
	if err := checkTransform(home, "home"); err != nil {
		return nil, err
	}
	n, err := screwCount(screws, angles)
	if err != nil {
		return nil, err
	}
	out := mat.DenseCopyOf(home)
	for i := n - 1; i >= 0; i-- {
		step := spatialmath.TransExp(screwColumn(screws, i), angles[i])
		next := mat.NewDense(4, 4, nil)
		next.Mul(step, out)
		out = next
	}
	return out, nil
}

// ForwardBody computes the end effector pose of a serial chain from
// body-frame screw axes:
//
//	T = M * e^[B1]θ1 * ... * e^[Bn]θn
//
// For consistent inputs (B_i = Adjoint(M^-1) S_i) this agrees with
// ForwardSpace at every configuration.
func ForwardBody(home, screws *mat.Dense, angles []float64) (*mat.Dense, error) {
	if err := checkTransform(home, "home"); err != nil {
		return nil, err
	}
	n, err := screwCount(screws, angles)
	if err != nil {
		return nil, err
	}
	out := mat.DenseCopyOf(home)
	for i := 0; i < n; i++ {
		step := spatialmath.TransExp(screwColumn(screws, i), angles[i])
		next := mat.NewDense(4, 4, nil)
		next.Mul(out, step)
		out = next
	}
	return out, nil
}

func checkTransform(t *mat.Dense, name string) error {
	if r, c := t.Dims(); r != 4 || c != 4 {
		return NewTransformShapeError(name, r, c)
	}
	return nil
}

// screwCount validates a screw list against a joint vector and returns the
// number of joints.
func screwCount(screws *mat.Dense, angles []float64) (int, error) {
	r, n := screws.Dims()
	if r != 6 {
		return 0, NewScrewListShapeError(r, n)
	}
	if len(angles) != n {
		return 0, NewInputLengthError("joint vector", len(angles), n)
	}
	return n, nil
}

func screwColumn(screws *mat.Dense, i int) []float64 {
	col := make([]float64, 6)
	mat.Col(col, i, screws)
	return col
}

func identity4() *mat.Dense {
	out := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		out.Set(i, i, 1)
	}
	return out
}
