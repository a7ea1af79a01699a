// Package spatialmath implements the matrix algebra of rigid body motion:
// rotations on SO(3), homogeneous transforms on SE(3), twists and screws,
// and the exponential and logarithm maps connecting them.
package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/screwtheory/screwkit/utils"
)

const (
	// detTolerance bounds how far the determinant of a valid rotation
	// matrix may stray from 1 regardless of the caller's tolerance.
	detTolerance = 1e-6

	// piBranchTolerance switches the SO(3) log to its angle-pi branch just
	// before the sin(theta) denominator of the generic formula vanishes.
	piBranchTolerance = 1e-9

	// nearZero guards the divisions that recover the rotation axis at pi.
	nearZero = 1e-6
)

// Hat builds the 3x3 skew-symmetric matrix of w, the matrix form of the
// cross product: Hat(w)*v == w x v.
func Hat(w r3.Vector) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		0, -w.Z, w.Y,
		w.Z, 0, -w.X,
		-w.Y, w.X, 0,
	})
}

// Vee extracts the 3-vector from a skew-symmetric matrix, inverting Hat.
// Only the sub-diagonal entries are read; skew-symmetry is not verified.
func Vee(m *mat.Dense) r3.Vector {
	mustDims(m, 3, 3, "Vee")
	return r3.Vector{X: m.At(2, 1), Y: m.At(0, 2), Z: m.At(1, 0)}
}

// RotExp computes the rotation matrix that rotates by theta radians about
// the given axis, via the Rodrigues formula. The axis need not be unit
// length; a zero axis yields the identity no matter the angle.
func RotExp(axis r3.Vector, theta float64) *mat.Dense {
	norm := axis.Norm()
	if norm == 0 {
		return eye(3)
	}
	k := Hat(axis.Mul(1 / norm))
	var kk mat.Dense
	kk.Mul(k, k)

	sin, cos := math.Sincos(theta)
	out := eye(3)
	var term mat.Dense
	term.Scale(sin, k)
	out.Add(out, &term)
	term.Scale(1-cos, &kk)
	out.Add(out, &term)
	return out
}

// RotInv inverts a rotation matrix. Rotations are orthonormal so the
// inverse is the transpose; no general inverse is computed.
func RotInv(r *mat.Dense) *mat.Dense {
	mustDims(r, 3, 3, "RotInv")
	var out mat.Dense
	out.CloneFrom(r.T())
	return &out
}

// RotLog computes the matrix logarithm of a rotation, returned as the 3x3
// skew-symmetric matrix [w]*theta. The angle-pi branch recovers the axis
// from the largest diagonal element to keep the square roots well
// conditioned.
func RotLog(r *mat.Dense) *mat.Dense {
	mustDims(r, 3, 3, "RotLog")
	cosTheta := (mat.Trace(r) - 1) / 2
	switch {
	case cosTheta >= 1:
		// The zero rotation; R-R^T below would be exactly zero anyway.
		return mat.NewDense(3, 3, nil)
	case cosTheta <= -1+piBranchTolerance:
		var axis r3.Vector
		switch {
		case !utils.Float64AlmostEqual(1+r.At(2, 2), 0, nearZero):
			s := 1 / math.Sqrt(2*(1+r.At(2, 2)))
			axis = r3.Vector{X: s * r.At(0, 2), Y: s * r.At(1, 2), Z: s * (1 + r.At(2, 2))}
		case !utils.Float64AlmostEqual(1+r.At(1, 1), 0, nearZero):
			s := 1 / math.Sqrt(2*(1+r.At(1, 1)))
			axis = r3.Vector{X: s * r.At(0, 1), Y: s * (1 + r.At(1, 1)), Z: s * r.At(2, 1)}
		default:
			s := 1 / math.Sqrt(2*(1+r.At(0, 0)))
			axis = r3.Vector{X: s * (1 + r.At(0, 0)), Y: s * r.At(1, 0), Z: s * r.At(2, 0)}
		}
		return Hat(axis.Mul(math.Pi))
	default:
		theta := math.Acos(cosTheta)
		var out mat.Dense
		out.Sub(r, r.T())
		out.Scale(theta/(2*math.Sin(theta)), &out)
		return &out
	}
}

// IsRotation reports whether m is a valid rotation matrix: 3x3, orthonormal
// within atol elementwise, and of determinant 1 within a fixed 1e-6. Inputs
// of any other shape are simply not rotations, so the answer is false
// rather than an error.
func IsRotation(m *mat.Dense, atol float64) bool {
	r, c := m.Dims()
	if r != 3 || c != 3 {
		return false
	}
	var mtm mat.Dense
	mtm.Mul(m.T(), m)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			if !utils.Float64AlmostEqual(mtm.At(i, j), want, atol) {
				return false
			}
		}
	}
	return utils.Float64AlmostEqual(mat.Det(m), 1, detTolerance)
}

func eye(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

func mustDims(m mat.Matrix, rows, cols int, op string) {
	r, c := m.Dims()
	if r != rows || c != cols {
		panic(fmt.Sprintf("spatialmath: %s requires a %dx%d matrix, got %dx%d", op, rows, cols, r, c))
	}
}
