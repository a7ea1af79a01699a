//go:build windows || no_cgo

package kinematics

import (
	"context"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/screwtheory/screwkit/chain"
)

var errNoNlopt = errors.New("nlopt is not available on this platform, use the Newton solver instead")

// NloptIK is a stub on platforms without cgo support.
type NloptIK struct {
	id int
}

// CreateNloptIKSolver always fails on platforms without cgo support.
func CreateNloptIKSolver(model *chain.Chain, logger golog.Logger, iter int) (*NloptIK, error) {
	return nil, errNoNlopt
}

// SetSeed does nothing on platforms without cgo support.
func (ik *NloptIK) SetSeed(seed int64) {}

// Solve always fails on platforms without cgo support.
func (ik *NloptIK) Solve(ctx context.Context, goal *mat.Dense, seed []float64) ([]float64, error) {
	return nil, errNoNlopt
}
