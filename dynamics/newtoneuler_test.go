package dynamics

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"

	"github.com/screwtheory/screwkit/chain"
	"github.com/screwtheory/screwkit/kinematics"
)

// pendulum builds a single revolute joint about the base y axis swinging a
// unit point mass on a unit-length massless rod, with a little rotational
// inertia about the swing axis. Gravity along -z gives it the closed form
//
//	τ = (Iyy + m L²) θdd - m g L cos θ
//
// which the tests below check term by term.
func pendulum() (linkFrames, inertias []*mat.Dense, screws *mat.Dense) {
	com := mat.NewDense(4, 4, []float64{
		1, 0, 0, 1,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})
	linkFrames = []*mat.Dense{com, eye4()}
	inertia := mat.NewDense(6, 6, nil)
	inertia.Set(1, 1, 0.1)
	for i := 3; i < 6; i++ {
		inertia.Set(i, i, 1)
	}
	inertias = []*mat.Dense{inertia}
	screws = mat.NewDense(6, 1, []float64{0, 1, 0, 0, 0, 0})
	return linkFrames, inertias, screws
}

func ur5eDynamics(t *testing.T) (*chain.Chain, []*mat.Dense, []*mat.Dense, *mat.Dense) {
	t.Helper()
	model, err := chain.UR5e()
	test.That(t, err, test.ShouldBeNil)
	linkFrames, err := model.LinkFrames()
	test.That(t, err, test.ShouldBeNil)
	inertias, err := model.SpatialInertias()
	test.That(t, err, test.ShouldBeNil)
	return model, linkFrames, inertias, model.SpaceScrews()
}

func TestGravityForcesPendulum(t *testing.T) {
	linkFrames, inertias, screws := pendulum()
	gravity := r3.Vector{Z: -9.8}
	for _, theta := range []float64{0, math.Pi / 3, math.Pi / 2, 2} {
		torques, err := GravityForces([]float64{theta}, gravity, linkFrames, inertias, screws)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, torques, test.ShouldHaveLength, 1)
		test.That(t, torques[0], test.ShouldAlmostEqual, -9.8*math.Cos(theta), 1e-9)
	}
}

func TestMassMatrixPendulum(t *testing.T) {
	linkFrames, inertias, screws := pendulum()
	for _, theta := range []float64{0, 1.2} {
		massMat, err := MassMatrix([]float64{theta}, linkFrames, inertias, screws)
		test.That(t, err, test.ShouldBeNil)
		r, c := massMat.Dims()
		test.That(t, r, test.ShouldEqual, 1)
		test.That(t, c, test.ShouldEqual, 1)
		test.That(t, massMat.At(0, 0), test.ShouldAlmostEqual, 1.1, 1e-9)
	}
}

func TestVelQuadraticForcesPendulum(t *testing.T) {
	linkFrames, inertias, screws := pendulum()
	// Centripetal force points along the rod, so none of it reaches the
	// joint axis.
	torques, err := VelQuadraticForces([]float64{0.7}, []float64{2}, linkFrames, inertias, screws)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, torques[0], test.ShouldAlmostEqual, 0, 1e-12)
}

func TestInverseTracksPendulum(t *testing.T) {
	linkFrames, inertias, screws := pendulum()
	theta, thetaDot, thetaDDot := 0.4, 1.3, 2.2
	torques, err := Inverse(
		[]float64{theta}, []float64{thetaDot}, []float64{thetaDDot},
		r3.Vector{Z: -9.8}, nil, linkFrames, inertias, screws,
	)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, torques[0], test.ShouldAlmostEqual, 1.1*thetaDDot-9.8*math.Cos(theta), 1e-9)
}

func TestInverseZeroMotionZeroGravity(t *testing.T) {
	_, linkFrames, inertias, screws := ur5eDynamics(t)
	angles := []float64{0.3, -0.5, 0.7, -0.9, 1.1, -1.3}
	torques, err := Inverse(angles, nil, nil, r3.Vector{}, nil, linkFrames, inertias, screws)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, torques, test.ShouldHaveLength, 6)
	for _, torque := range torques {
		test.That(t, torque, test.ShouldAlmostEqual, 0, 1e-9)
	}
}

func TestGravityForcesVerticalAxes(t *testing.T) {
	_, linkFrames, inertias, screws := ur5eDynamics(t)
	gravity := r3.Vector{Z: -9.81}

	// Rotating about a vertical axis never changes any link's height, so
	// gravity exerts nothing on the base joint in any configuration.
	for _, angles := range [][]float64{
		make([]float64, 6),
		{0.4, -0.8, 1.2, -0.6, 0.9, -1.5},
	} {
		torques, err := GravityForces(angles, gravity, linkFrames, inertias, screws)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, torques[0], test.ShouldAlmostEqual, 0, 1e-9)
	}

	// At home the fifth joint's axis is vertical too.
	torques, err := GravityForces(make([]float64, 6), gravity, linkFrames, inertias, screws)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, torques[4], test.ShouldAlmostEqual, 0, 1e-9)
}

func TestMassMatrixSymmetricPositive(t *testing.T) {
	_, linkFrames, inertias, screws := ur5eDynamics(t)
	angles := []float64{0.2, -0.4, 0.6, -0.8, 1.0, -1.2}
	massMat, err := MassMatrix(angles, linkFrames, inertias, screws)
	test.That(t, err, test.ShouldBeNil)
	r, c := massMat.Dims()
	test.That(t, r, test.ShouldEqual, 6)
	test.That(t, c, test.ShouldEqual, 6)
	for i := 0; i < 6; i++ {
		test.That(t, massMat.At(i, i), test.ShouldBeGreaterThan, 0)
		for j := i + 1; j < 6; j++ {
			test.That(t, massMat.At(i, j), test.ShouldAlmostEqual, massMat.At(j, i), 1e-9)
		}
	}
}

func TestEndEffectorForcesMatchJacobian(t *testing.T) {
	model, linkFrames, inertias, screws := ur5eDynamics(t)
	angles := []float64{0.2, -0.4, 0.6, -0.8, 1.0, -1.2}
	tipWrench := []float64{0.5, -0.3, 0.2, 1, 2, -1.5}

	torques, err := EndEffectorForces(angles, tipWrench, linkFrames, inertias, screws)
	test.That(t, err, test.ShouldBeNil)

	jacobian, err := kinematics.BodyJacobian(model.BodyScrews(), angles)
	test.That(t, err, test.ShouldBeNil)
	var want mat.VecDense
	want.MulVec(jacobian.T(), mat.NewVecDense(6, tipWrench))
	for i := 0; i < 6; i++ {
		test.That(t, torques[i], test.ShouldAlmostEqual, want.AtVec(i), 1e-9)
	}
}

func TestInverseArgumentErrors(t *testing.T) {
	linkFrames, inertias, screws := pendulum()
	gravity := r3.Vector{Z: -9.8}

	_, err := Inverse([]float64{0}, nil, nil, gravity, nil, linkFrames, inertias, mat.NewDense(5, 1, nil))
	test.That(t, err, test.ShouldBeError, NewScrewListShapeError(5, 1))

	_, err = Inverse([]float64{0, 0}, nil, nil, gravity, nil, linkFrames, inertias, screws)
	test.That(t, err, test.ShouldBeError, NewInputLengthError("angles", 2, 1))

	_, err = Inverse([]float64{0}, []float64{0, 0, 0}, nil, gravity, nil, linkFrames, inertias, screws)
	test.That(t, err, test.ShouldBeError, NewInputLengthError("velocities", 3, 1))

	_, err = Inverse([]float64{0}, nil, []float64{1, 2}, gravity, nil, linkFrames, inertias, screws)
	test.That(t, err, test.ShouldBeError, NewInputLengthError("accelerations", 2, 1))

	_, err = Inverse([]float64{0}, nil, nil, gravity, []float64{1, 2, 3}, linkFrames, inertias, screws)
	test.That(t, err, test.ShouldBeError, NewWrenchLengthError(3))

	_, err = Inverse([]float64{0}, nil, nil, gravity, nil, linkFrames[:1], inertias, screws)
	test.That(t, err, test.ShouldBeError, NewFrameCountError(1, 1))

	badFrames := []*mat.Dense{mat.NewDense(3, 4, nil), linkFrames[1]}
	_, err = Inverse([]float64{0}, nil, nil, gravity, nil, badFrames, inertias, screws)
	test.That(t, err, test.ShouldBeError, NewFrameShapeError(0, 3, 4))

	_, err = Inverse([]float64{0}, nil, nil, gravity, nil, linkFrames, nil, screws)
	test.That(t, err, test.ShouldBeError, NewInertiaCountError(0, 1))

	badInertias := []*mat.Dense{mat.NewDense(6, 5, nil)}
	_, err = Inverse([]float64{0}, nil, nil, gravity, nil, linkFrames, badInertias, screws)
	test.That(t, err, test.ShouldBeError, NewInertiaShapeError(0, 6, 5))
}
