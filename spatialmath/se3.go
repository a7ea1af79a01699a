package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// NewTransform assembles the 4x4 homogeneous transform [[R,p],[0,0,0,1]].
// The rotation block is copied as given; orthonormality is the caller's
// responsibility (gate with IsRotation when the source is untrusted).
func NewTransform(r *mat.Dense, p r3.Vector) *mat.Dense {
	mustDims(r, 3, 3, "NewTransform")
	out := mat.NewDense(4, 4, nil)
	setBlock(out, 0, 0, r)
	out.Set(0, 3, p.X)
	out.Set(1, 3, p.Y)
	out.Set(2, 3, p.Z)
	out.Set(3, 3, 1)
	return out
}

// TransToRotTrans splits a homogeneous transform into its rotation block
// and translation. The bottom row is assumed to be (0,0,0,1) and ignored.
func TransToRotTrans(t *mat.Dense) (*mat.Dense, r3.Vector) {
	mustDims(t, 4, 4, "TransToRotTrans")
	r := mat.NewDense(3, 3, nil)
	r.Copy(t.Slice(0, 3, 0, 3))
	return r, r3.Vector{X: t.At(0, 3), Y: t.At(1, 3), Z: t.At(2, 3)}
}

// TransInv inverts a homogeneous transform using the closed form
// [[R^T,-R^T p],[0,0,0,1]], never a general 4x4 inverse.
func TransInv(t *mat.Dense) *mat.Dense {
	mustDims(t, 4, 4, "TransInv")
	r, p := TransToRotTrans(t)
	rt := RotInv(r)
	return NewTransform(rt, matVec3(rt, p).Mul(-1))
}

// Adjoint builds the 6x6 adjoint representation [[R,0],[[p]R,R]] of a
// transform, which carries twists between frames: V_a = Adjoint(T_ab)*V_b.
func Adjoint(t *mat.Dense) *mat.Dense {
	mustDims(t, 4, 4, "Adjoint")
	r, p := TransToRotTrans(t)
	var pr mat.Dense
	pr.Mul(Hat(p), r)
	out := mat.NewDense(6, 6, nil)
	setBlock(out, 0, 0, r)
	setBlock(out, 3, 0, &pr)
	setBlock(out, 3, 3, r)
	return out
}

// TwistHat builds the 4x4 se(3) matrix [[Hat(w),v],[0,0]] of a twist
// (wx, wy, wz, vx, vy, vz).
func TwistHat(v []float64) *mat.Dense {
	mustLen(v, 6, "TwistHat")
	out := mat.NewDense(4, 4, nil)
	setBlock(out, 0, 0, Hat(r3.Vector{X: v[0], Y: v[1], Z: v[2]}))
	out.Set(0, 3, v[3])
	out.Set(1, 3, v[4])
	out.Set(2, 3, v[5])
	return out
}

// TwistVee extracts the twist 6-vector from an se(3) matrix, inverting
// TwistHat. Like Vee it does not verify the matrix's structure.
func TwistVee(m *mat.Dense) []float64 {
	mustDims(m, 4, 4, "TwistVee")
	return []float64{m.At(2, 1), m.At(0, 2), m.At(1, 0), m.At(0, 3), m.At(1, 3), m.At(2, 3)}
}

// TwistAdjoint builds the 6x6 matrix [ad_V] = [[Hat(w),0],[Hat(v),Hat(w)]]
// of a twist, the Lie bracket operator used by the dynamics recursions.
func TwistAdjoint(v []float64) *mat.Dense {
	mustLen(v, 6, "TwistAdjoint")
	w := Hat(r3.Vector{X: v[0], Y: v[1], Z: v[2]})
	out := mat.NewDense(6, 6, nil)
	setBlock(out, 0, 0, w)
	setBlock(out, 3, 0, Hat(r3.Vector{X: v[3], Y: v[4], Z: v[5]}))
	setBlock(out, 3, 3, w)
	return out
}

// TransExp computes the transform e^{[S]theta} of a screw axis S = (w,v).
// Screws with a zero angular part translate by v*theta; a non-unit angular
// part is normalized with its magnitude folded into theta, so the combined
// twists produced by TransLog exponentiate back with theta = 1.
func TransExp(screw []float64, theta float64) *mat.Dense {
	mustLen(screw, 6, "TransExp")
	w := r3.Vector{X: screw[0], Y: screw[1], Z: screw[2]}
	v := r3.Vector{X: screw[3], Y: screw[4], Z: screw[5]}
	norm := w.Norm()
	if norm == 0 {
		out := eye(4)
		out.Set(0, 3, v.X*theta)
		out.Set(1, 3, v.Y*theta)
		out.Set(2, 3, v.Z*theta)
		return out
	}
	theta *= norm
	w = w.Mul(1 / norm)
	v = v.Mul(1 / norm)

	k := Hat(w)
	var kk mat.Dense
	kk.Mul(k, k)
	sin, cos := math.Sincos(theta)

	// G(theta) = I*theta + (1-cos theta)*K + (theta-sin theta)*K^2
	g := eye(3)
	g.Scale(theta, g)
	var term mat.Dense
	term.Scale(1-cos, k)
	g.Add(g, &term)
	term.Scale(theta-sin, &kk)
	g.Add(g, &term)

	return NewTransform(RotExp(w, theta), matVec3(g, v))
}

// TransLog computes the matrix logarithm of a transform, returned as the
// 4x4 se(3) matrix of the twist that reaches t from the identity in unit
// time. Inverse of TransExp up to the usual angle wrapping.
func TransLog(t *mat.Dense) *mat.Dense {
	mustDims(t, 4, 4, "TransLog")
	r, p := TransToRotTrans(t)
	w := RotLog(r)

	out := mat.NewDense(4, 4, nil)
	if mat.Norm(w, 1) == 0 {
		// No rotation: the twist is a pure translation to p.
		out.Set(0, 3, p.X)
		out.Set(1, 3, p.Y)
		out.Set(2, 3, p.Z)
		return out
	}

	cosTheta := (mat.Trace(r) - 1) / 2
	if cosTheta < -1 {
		cosTheta = -1
	}
	theta := math.Acos(cosTheta)

	// v = G^-1(theta)*p with W = [w]*theta already folded into the log:
	// G^-1 = I - W/2 + (1/theta - cot(theta/2)/2)*W^2/theta
	var ww mat.Dense
	ww.Mul(w, w)
	invG := eye(3)
	var term mat.Dense
	term.Scale(0.5, w)
	invG.Sub(invG, &term)
	term.Scale((1/theta-1/(2*math.Tan(theta/2)))/theta, &ww)
	invG.Add(invG, &term)

	v := matVec3(invG, p)
	setBlock(out, 0, 0, w)
	out.Set(0, 3, v.X)
	out.Set(1, 3, v.Y)
	out.Set(2, 3, v.Z)
	return out
}

func matVec3(m mat.Matrix, v r3.Vector) r3.Vector {
	return r3.Vector{
		X: m.At(0, 0)*v.X + m.At(0, 1)*v.Y + m.At(0, 2)*v.Z,
		Y: m.At(1, 0)*v.X + m.At(1, 1)*v.Y + m.At(1, 2)*v.Z,
		Z: m.At(2, 0)*v.X + m.At(2, 1)*v.Y + m.At(2, 2)*v.Z,
	}
}

func setBlock(dst *mat.Dense, row, col int, src mat.Matrix) {
	r, c := src.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			dst.Set(row+i, col+j, src.At(i, j))
		}
	}
}

func mustLen(v []float64, n int, op string) {
	if len(v) != n {
		panic(fmt.Sprintf("spatialmath: %s requires a %d-vector, got length %d", op, n, len(v)))
	}
}
