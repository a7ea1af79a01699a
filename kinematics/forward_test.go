package kinematics

import (
	"math"
	"testing"

	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"
)

// threeJointModel returns the home pose and screw lists of a planar-ish
// 3R arm whose poses are easy to verify by hand.
func threeJointModel() (*mat.Dense, *mat.Dense, *mat.Dense) {
	home := mat.NewDense(4, 4, []float64{
		-1, 0, 0, 0,
		0, 1, 0, 6,
		0, 0, -1, 2,
		0, 0, 0, 1,
	})
	space := mat.NewDense(6, 3, nil)
	space.SetCol(0, []float64{0, 0, 1, 4, 0, 0})
	space.SetCol(1, []float64{0, 0, 0, 0, 1, 0})
	space.SetCol(2, []float64{0, 0, -1, -6, 0, -0.1})
	body := mat.NewDense(6, 3, nil)
	body.SetCol(0, []float64{0, 0, -1, 2, 0, 0})
	body.SetCol(1, []float64{0, 0, 0, 0, 1, 0})
	body.SetCol(2, []float64{0, 0, 1, 0, 0, 0.1})
	return home, space, body
}

func checkTransformsAlmostEqual(t *testing.T, got, want *mat.Dense, tol float64) {
	t.Helper()
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			test.That(t, got.At(i, j), test.ShouldAlmostEqual, want.At(i, j), tol)
		}
	}
}

func TestForwardSpace(t *testing.T) {
	home, space, _ := threeJointModel()

	pose, err := ForwardSpace(home, space, []float64{math.Pi / 2, 3, math.Pi})
	test.That(t, err, test.ShouldBeNil)
	want := mat.NewDense(4, 4, []float64{
		0, 1, 0, -5,
		1, 0, 0, 4,
		0, 0, -1, 2 - 0.1*math.Pi,
		0, 0, 0, 1,
	})
	checkTransformsAlmostEqual(t, pose, want, 1e-9)

	// The zero configuration is the home pose.
	pose, err = ForwardSpace(home, space, []float64{0, 0, 0})
	test.That(t, err, test.ShouldBeNil)
	checkTransformsAlmostEqual(t, pose, home, 1e-12)
}

func TestForwardBody(t *testing.T) {
	home, _, body := threeJointModel()

	pose, err := ForwardBody(home, body, []float64{math.Pi / 2, 3, math.Pi})
	test.That(t, err, test.ShouldBeNil)
	want := mat.NewDense(4, 4, []float64{
		0, 1, 0, -5,
		1, 0, 0, 4,
		0, 0, -1, 2 - 0.1*math.Pi,
		0, 0, 0, 1,
	})
	checkTransformsAlmostEqual(t, pose, want, 1e-9)
}

func TestForwardConventionsAgree(t *testing.T) {
	home, space, body := threeJointModel()

	for _, angles := range [][]float64{
		{0, 0, 0},
		{0.1, -0.4, 0.7},
		{math.Pi / 2, 3, math.Pi},
		{-2.1, 0.6, 1.9},
	} {
		fromSpace, err := ForwardSpace(home, space, angles)
		test.That(t, err, test.ShouldBeNil)
		fromBody, err := ForwardBody(home, body, angles)
		test.That(t, err, test.ShouldBeNil)
		checkTransformsAlmostEqual(t, fromSpace, fromBody, 1e-9)
	}
}

func TestForwardShapeErrors(t *testing.T) {
	home, space, _ := threeJointModel()

	_, err := ForwardSpace(mat.NewDense(3, 4, nil), space, []float64{0, 0, 0})
	test.That(t, err, test.ShouldBeError, NewTransformShapeError("home", 3, 4))

	_, err = ForwardSpace(home, mat.NewDense(5, 3, nil), []float64{0, 0, 0})
	test.That(t, err, test.ShouldBeError, NewScrewListShapeError(5, 3))

	_, err = ForwardSpace(home, space, []float64{0, 0})
	test.That(t, err, test.ShouldBeError, NewInputLengthError("joint vector", 2, 3))

	_, err = ForwardBody(home, space, []float64{0, 0, 0, 0})
	test.That(t, err, test.ShouldBeError, NewInputLengthError("joint vector", 4, 3))
}
