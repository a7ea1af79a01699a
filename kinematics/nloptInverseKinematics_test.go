//go:build !windows && !no_cgo

package kinematics

import (
	"context"
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"

	"github.com/screwtheory/screwkit/chain"
)

func TestCreateNloptIKSolver(t *testing.T) {
	logger := golog.NewTestLogger(t)
	model, err := chain.UR5e()
	test.That(t, err, test.ShouldBeNil)
	ik, err := CreateNloptIKSolver(model, logger, 0)
	test.That(t, err, test.ShouldBeNil)
	ik.id = 1

	target := []float64{0.2, -0.6, 0.8, -0.4, 0.5, 0.3}
	goal, err := ForwardBody(model.Home(), model.BodyScrews(), target)
	test.That(t, err, test.ShouldBeNil)

	solution, err := ik.Solve(context.Background(), goal, []float64{0.1, -0.5, 0.7, -0.3, 0.4, 0.2})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, model.WithinLimits(solution), test.ShouldBeTrue)
	reached, err := ForwardBody(model.Home(), model.BodyScrews(), solution)
	test.That(t, err, test.ShouldBeNil)
	checkTransformsAlmostEqual(t, reached, goal, 5e-3)

	// A second goal with the wrist flipped over.
	target = []float64{-0.4, -1.1, 1.6, -0.5, -0.9, 1.2}
	goal, err = ForwardBody(model.Home(), model.BodyScrews(), target)
	test.That(t, err, test.ShouldBeNil)

	solution, err = ik.Solve(context.Background(), goal, []float64{-0.3, -1.0, 1.5, -0.4, -0.8, 1.1})
	test.That(t, err, test.ShouldBeNil)
	reached, err = ForwardBody(model.Home(), model.BodyScrews(), solution)
	test.That(t, err, test.ShouldBeNil)
	checkTransformsAlmostEqual(t, reached, goal, 5e-3)
}

func TestNloptIKRejectsBadSeed(t *testing.T) {
	logger := golog.NewTestLogger(t)
	model, err := chain.UR5e()
	test.That(t, err, test.ShouldBeNil)
	ik, err := CreateNloptIKSolver(model, logger, 0)
	test.That(t, err, test.ShouldBeNil)

	_, err = ik.Solve(context.Background(), model.Home(), []float64{0, 0, 0})
	test.That(t, err, test.ShouldBeError, NewInputLengthError("seed", 3, 6))
}

func TestCombinedIKParallelSolvers(t *testing.T) {
	logger := golog.NewTestLogger(t)
	model, err := chain.UR5e()
	test.That(t, err, test.ShouldBeNil)
	ik, err := CreateCombinedIKSolver(model, logger, 2)
	test.That(t, err, test.ShouldBeNil)

	target := []float64{0.5, -0.7, 0.9, -0.6, 0.4, -0.3}
	goal, err := ForwardBody(model.Home(), model.BodyScrews(), target)
	test.That(t, err, test.ShouldBeNil)

	solution, err := ik.Solve(context.Background(), goal, []float64{0.4, -0.6, 0.8, -0.5, 0.3, -0.2})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, model.WithinLimits(solution), test.ShouldBeTrue)
	reached, err := ForwardBody(model.Home(), model.BodyScrews(), solution)
	test.That(t, err, test.ShouldBeNil)
	checkTransformsAlmostEqual(t, reached, goal, 5e-3)
}
