// Package chain turns declarative descriptions of serial robot arms into
// the quantities the solvers consume: home configuration, screw axes in
// the space and body frames, joint limits, and per-link spatial inertias.
package chain

import (
	"fmt"
	"math"
	"sort"

	"github.com/golang/geo/r3"
	"go.uber.org/multierr"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/screwtheory/screwkit/spatialmath"
)

// World is the reserved parent name of the one link every chain is rooted
// at.
const World = "world"

// Supported joint types.
const (
	JointTypeRevolute  = "revolute"
	JointTypePrismatic = "prismatic"
)

// Limit holds the allowed range of one joint, radians for revolute joints
// and meters for prismatic ones.
type Limit struct {
	Min float64
	Max float64
}

// Chain is an immutable serial kinematic chain. All accessors return
// copies, so a Chain may be shared between goroutines.
type Chain struct {
	name        string
	jointIDs    []string
	limits      []Limit
	home        *mat.Dense
	spaceScrews *mat.Dense
	bodyScrews  *mat.Dense

	// nil unless the config carried inertial data for every moving link
	linkFrames []*mat.Dense
	inertias   []*mat.Dense
}

// New builds a Chain from a parsed config. The config must describe a
// single unbranched chain: exactly one link parented to World, links and
// joints strictly alternating, and exactly one childless link, which
// becomes the end effector. Inertial data must be present on every link
// moved by a joint or on none of them; inertial data on the base link is
// ignored because the base never moves.
func New(cfg *Config) (*Chain, error) {
	if len(cfg.Joints) == 0 {
		return nil, NewNoJointsError()
	}

	links := map[string]LinkConfig{}
	joints := map[string]JointConfig{}
	var errs error
	for _, l := range cfg.Links {
		if _, ok := links[l.ID]; ok {
			errs = multierr.Append(errs, NewDuplicateIDError(l.ID))
			continue
		}
		links[l.ID] = l
	}
	for _, j := range cfg.Joints {
		_, linkDup := links[j.ID]
		_, jointDup := joints[j.ID]
		if linkDup || jointDup {
			errs = multierr.Append(errs, NewDuplicateIDError(j.ID))
			continue
		}
		joints[j.ID] = j
	}
	for _, j := range cfg.Joints {
		if j.Type != JointTypeRevolute && j.Type != JointTypePrismatic {
			errs = multierr.Append(errs, NewJointTypeError(j.ID, j.Type))
		}
		if (r3.Vector{X: j.Axis.X, Y: j.Axis.Y, Z: j.Axis.Z}).Norm() == 0 {
			errs = multierr.Append(errs, NewZeroAxisError(j.ID))
		}
		if j.Min > j.Max {
			errs = multierr.Append(errs, NewLimitOrderError(j.ID, j.Min, j.Max))
		}
		if _, ok := links[j.Parent]; !ok {
			errs = multierr.Append(errs, NewUnknownParentError(j.ID, j.Parent))
		}
	}
	for _, l := range cfg.Links {
		if l.Parent != World {
			if _, ok := joints[l.Parent]; !ok {
				errs = multierr.Append(errs, NewUnknownParentError(l.ID, l.Parent))
			}
		}
		if l.Inertial != nil {
			errs = multierr.Append(errs, validateInertial(l.ID, l.Inertial))
		}
	}
	if errs != nil {
		return nil, errs
	}

	base, orderedJoints, err := resolveTopology(cfg, links, joints)
	if err != nil {
		return nil, err
	}
	return derive(cfg.Name, base, orderedJoints, links)
}

// resolveTopology orders the joints base to tip and rejects configs that
// are not a single serial chain.
func resolveTopology(cfg *Config, links map[string]LinkConfig, joints map[string]JointConfig) (LinkConfig, []JointConfig, error) {
	childJoint := map[string]string{}
	for _, j := range cfg.Joints {
		if _, ok := childJoint[j.Parent]; ok {
			return LinkConfig{}, nil, NewBranchError(j.Parent)
		}
		childJoint[j.Parent] = j.ID
	}
	var base LinkConfig
	var baseCount int
	childLink := map[string]string{}
	for _, l := range cfg.Links {
		if l.Parent == World {
			base = l
			baseCount++
			continue
		}
		if _, ok := childLink[l.Parent]; ok {
			return LinkConfig{}, nil, NewBranchError(l.Parent)
		}
		childLink[l.Parent] = l.ID
	}
	if baseCount != 1 {
		return LinkConfig{}, nil, NewBaseCountError(baseCount)
	}

	leaves := map[string]bool{}
	for _, l := range cfg.Links {
		if _, ok := childJoint[l.ID]; !ok {
			leaves[l.ID] = true
		}
	}
	if len(leaves) != 1 {
		ids := maps.Keys(leaves)
		sort.Strings(ids)
		return LinkConfig{}, nil, NewEndEffectorCountError(ids)
	}

	// Walk tip to base along parent pointers, then flip the order.
	visited := map[string]bool{}
	var ordered []JointConfig
	curr := links[maps.Keys(leaves)[0]]
	for curr.Parent != World {
		if visited[curr.ID] {
			return LinkConfig{}, nil, NewDisconnectedError(curr.ID)
		}
		visited[curr.ID] = true
		j := joints[curr.Parent]
		visited[j.ID] = true
		ordered = append(ordered, j)
		curr = links[j.Parent]
	}
	visited[curr.ID] = true
	for i, j := 0, len(ordered)-1; i < j; i, j = i+1, j-1 {
		ordered[i], ordered[j] = ordered[j], ordered[i]
	}

	for _, l := range cfg.Links {
		if !visited[l.ID] {
			return LinkConfig{}, nil, NewDisconnectedError(l.ID)
		}
	}
	for _, j := range cfg.Joints {
		if !visited[j.ID] {
			return LinkConfig{}, nil, NewDisconnectedError(j.ID)
		}
	}
	return base, ordered, nil
}

// derive walks the ordered chain once, accumulating the world transform,
// and reads off every quantity the solvers need.
func derive(name string, base LinkConfig, orderedJoints []JointConfig, links map[string]LinkConfig) (*Chain, error) {
	n := len(orderedJoints)
	c := &Chain{
		name:        name,
		jointIDs:    make([]string, 0, n),
		limits:      make([]Limit, 0, n),
		spaceScrews: mat.NewDense(6, n, nil),
	}

	childLink := map[string]string{}
	for _, l := range links {
		if l.Parent != World {
			childLink[l.Parent] = l.ID
		}
	}

	t := transformOf(base)
	comFrames := make([]*mat.Dense, 0, n)
	inertialCount := 0
	missingInertial := ""
	for i, j := range orderedJoints {
		c.jointIDs = append(c.jointIDs, j.ID)
		c.limits = append(c.limits, limitOf(j))

		// The joint sits at the frame reached so far; its screw is the
		// world-frame axis through that point.
		r, p := spatialmath.TransToRotTrans(t)
		w := rotate(r, r3.Vector{X: j.Axis.X, Y: j.Axis.Y, Z: j.Axis.Z}.Normalize())
		if j.Type == JointTypeRevolute {
			v := p.Cross(w)
			c.spaceScrews.SetCol(i, []float64{w.X, w.Y, w.Z, v.X, v.Y, v.Z})
		} else {
			c.spaceScrews.SetCol(i, []float64{0, 0, 0, w.X, w.Y, w.Z})
		}

		moved := links[childLink[j.ID]]
		t = mul(t, transformOf(moved))
		if moved.Inertial == nil {
			if missingInertial == "" {
				missingInertial = moved.ID
			}
			continue
		}
		inertialCount++
		center := moved.Inertial.Center
		com := mul(t, spatialmath.NewTransform(eye3(), r3.Vector{X: center.X, Y: center.Y, Z: center.Z}))
		comFrames = append(comFrames, com)
	}
	c.home = t

	adj := spatialmath.Adjoint(spatialmath.TransInv(c.home))
	c.bodyScrews = mat.NewDense(6, n, nil)
	var col mat.VecDense
	for i := 0; i < n; i++ {
		col.MulVec(adj, c.spaceScrews.ColView(i))
		c.bodyScrews.SetCol(i, col.RawVector().Data)
	}

	switch {
	case inertialCount == 0:
		// Kinematic-only chain; dynamics accessors will refuse.
	case inertialCount < n:
		return nil, NewPartialInertialError(missingInertial)
	default:
		c.linkFrames = make([]*mat.Dense, 0, n+1)
		c.inertias = make([]*mat.Dense, 0, n)
		prev := eye4()
		for i, com := range comFrames {
			c.linkFrames = append(c.linkFrames, mul(spatialmath.TransInv(prev), com))
			prev = com
			c.inertias = append(c.inertias, spatialInertia(links[childLink[orderedJoints[i].ID]].Inertial))
		}
		c.linkFrames = append(c.linkFrames, mul(spatialmath.TransInv(prev), c.home))
	}
	return c, nil
}

// Name returns the chain's configured name.
func (c *Chain) Name() string {
	return c.name
}

// DOF returns the number of joints.
func (c *Chain) DOF() int {
	return len(c.jointIDs)
}

// JointNames returns the joint ids ordered base to tip.
func (c *Chain) JointNames() []string {
	out := make([]string, len(c.jointIDs))
	copy(out, c.jointIDs)
	return out
}

// Home returns the end effector pose at the zero configuration.
func (c *Chain) Home() *mat.Dense {
	return mat.DenseCopyOf(c.home)
}

// SpaceScrews returns the 6xDOF matrix whose columns are the joint screw
// axes expressed in the space frame at the zero configuration.
func (c *Chain) SpaceScrews() *mat.Dense {
	return mat.DenseCopyOf(c.spaceScrews)
}

// BodyScrews returns the 6xDOF matrix whose columns are the joint screw
// axes expressed in the end effector frame at the zero configuration.
func (c *Chain) BodyScrews() *mat.Dense {
	return mat.DenseCopyOf(c.bodyScrews)
}

// Limits returns the joint limits ordered base to tip. Unlimited joints
// report (-Inf, +Inf).
func (c *Chain) Limits() []Limit {
	out := make([]Limit, len(c.limits))
	copy(out, c.limits)
	return out
}

// WithinLimits reports whether every position in angles is inside the
// chain's joint limits. Lengths other than DOF are never within limits.
func (c *Chain) WithinLimits(angles []float64) bool {
	if len(angles) != len(c.limits) {
		return false
	}
	for i, a := range angles {
		if a < c.limits[i].Min || a > c.limits[i].Max {
			return false
		}
	}
	return true
}

// Dynamic reports whether the chain carries the inertial data the
// dynamics queries need.
func (c *Chain) Dynamic() bool {
	return c.linkFrames != nil
}

// LinkFrames returns the DOF+1 transforms between successive link
// center-of-mass frames at the zero configuration: entry i carries frame
// i to frame i+1, and the last entry carries the final center of mass to
// the end effector.
func (c *Chain) LinkFrames() ([]*mat.Dense, error) {
	if !c.Dynamic() {
		return nil, NewKinematicOnlyError(c.name)
	}
	return copyMatrices(c.linkFrames), nil
}

// SpatialInertias returns the 6x6 spatial inertia of each moving link
// about its center of mass, ordered base to tip.
func (c *Chain) SpatialInertias() ([]*mat.Dense, error) {
	if !c.Dynamic() {
		return nil, NewKinematicOnlyError(c.name)
	}
	return copyMatrices(c.inertias), nil
}

// RandomSeed returns joint positions drawn uniformly within the chain's
// limits, for seeding iterative solvers. Unlimited joints sample within
// [-pi, pi]. A nil src draws from the shared global source.
func (c *Chain) RandomSeed(src rand.Source) []float64 {
	out := make([]float64, len(c.limits))
	for i, l := range c.limits {
		min, max := l.Min, l.Max
		if math.IsInf(min, -1) {
			min = -math.Pi
		}
		if math.IsInf(max, 1) {
			max = math.Pi
		}
		dist := distuv.Uniform{Min: min, Max: max, Src: src}
		out[i] = dist.Rand()
	}
	return out
}

func validateInertial(linkID string, in *InertialConfig) error {
	var errs error
	if in.Mass < 0 {
		errs = multierr.Append(errs, NewInertialValueError(linkID, fmt.Sprintf("mass %v is negative", in.Mass)))
	}
	if len(in.Moments) != 3 {
		errs = multierr.Append(errs, NewInertialValueError(linkID, fmt.Sprintf("moments must hold exactly (ixx, iyy, izz), got %d values", len(in.Moments))))
	} else {
		for _, m := range in.Moments {
			if m < 0 {
				errs = multierr.Append(errs, NewInertialValueError(linkID, fmt.Sprintf("moment %v is negative", m)))
				break
			}
		}
	}
	if in.Products != nil && len(in.Products) != 3 {
		errs = multierr.Append(errs, NewInertialValueError(linkID, fmt.Sprintf("products must hold exactly (ixy, ixz, iyz), got %d values", len(in.Products))))
	}
	return errs
}

func limitOf(j JointConfig) Limit {
	if j.Min == 0 && j.Max == 0 {
		return Limit{Min: math.Inf(-1), Max: math.Inf(1)}
	}
	return Limit{Min: j.Min, Max: j.Max}
}

// transformOf builds the fixed transform a link's config describes.
func transformOf(l LinkConfig) *mat.Dense {
	r := eye3()
	if o := l.Orientation; o != nil {
		var ryx, rzyx mat.Dense
		ryx.Mul(spatialmath.RotExp(r3.Vector{Y: 1}, o.Pitch), spatialmath.RotExp(r3.Vector{X: 1}, o.Roll))
		rzyx.Mul(spatialmath.RotExp(r3.Vector{Z: 1}, o.Yaw), &ryx)
		r = &rzyx
	}
	return spatialmath.NewTransform(r, r3.Vector{X: l.Translation.X, Y: l.Translation.Y, Z: l.Translation.Z})
}

// spatialInertia assembles the 6x6 matrix [[I,0],[0,m*1]] from validated
// inertial data.
func spatialInertia(in *InertialConfig) *mat.Dense {
	g := mat.NewDense(6, 6, nil)
	for i, m := range in.Moments {
		g.Set(i, i, m)
	}
	if p := in.Products; len(p) == 3 {
		g.Set(0, 1, p[0])
		g.Set(1, 0, p[0])
		g.Set(0, 2, p[1])
		g.Set(2, 0, p[1])
		g.Set(1, 2, p[2])
		g.Set(2, 1, p[2])
	}
	for i := 3; i < 6; i++ {
		g.Set(i, i, in.Mass)
	}
	return g
}

func rotate(r mat.Matrix, v r3.Vector) r3.Vector {
	return r3.Vector{
		X: r.At(0, 0)*v.X + r.At(0, 1)*v.Y + r.At(0, 2)*v.Z,
		Y: r.At(1, 0)*v.X + r.At(1, 1)*v.Y + r.At(1, 2)*v.Z,
		Z: r.At(2, 0)*v.X + r.At(2, 1)*v.Y + r.At(2, 2)*v.Z,
	}
}

func mul(a, b mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Mul(a, b)
	return &out
}

func eye3() *mat.Dense {
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
}

func eye4() *mat.Dense {
	m := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		m.Set(i, i, 1)
	}
	return m
}

func copyMatrices(ms []*mat.Dense) []*mat.Dense {
	out := make([]*mat.Dense, len(ms))
	for i, m := range ms {
		out[i] = mat.DenseCopyOf(m)
	}
	return out
}
