// Package actuator converts staged joint targets into applied efforts.
//
// A [Model] is the per-group policy mapping (state, target, gains,
// limits) to actuator output over a batch of instances:
//
//   - [IdealPD]: explicit PD with effort clamping, for backends without
//     native drive support
//   - [ImplicitPD]: forwards gains and targets to the backend's native
//     joint drives; parameter translation only
//   - [EffortOnly]: clamped feed-forward passthrough
//
// A [Registry] partitions an articulation's joints into named [Group]s,
// resolving joint-name patterns to index sets at construction time and
// failing loud on any overlap, zero match, or unclaimed joint.
package actuator

import "github.com/san-kum/artsim/internal/artic"

// Gains are per-joint drive parameters for one group, hot-swappable
// between steps.
type Gains struct {
	Stiffness artic.Vec
	Damping   artic.Vec
}

// Limits are per-joint output bounds. An entry <= 0 means unlimited.
type Limits struct {
	Effort   artic.Vec
	Velocity artic.Vec
}

// Input is the batched view a model computes over: flat N×Jg arrays
// gathered for the group's joints, plus its current gains and limits.
type Input struct {
	Instances int
	Joints    int

	Position artic.Vec
	Velocity artic.Vec

	Kind   []artic.TargetKind
	Target artic.Vec

	Gains  Gains
	Limits Limits
}

// Output is what a model produced for its group. Effort is always
// populated. Drive marks the stiffness/damping/target arrays as
// meaningful; only ImplicitPD sets it.
type Output struct {
	Effort artic.Vec

	Drive       bool
	Stiffness   artic.Vec
	Damping     artic.Vec
	DriveTarget artic.Vec
}

func (o *Output) ensure(n int) {
	if len(o.Effort) != n {
		o.Effort = make(artic.Vec, n)
		o.Stiffness = make(artic.Vec, n)
		o.Damping = make(artic.Vec, n)
		o.DriveTarget = make(artic.Vec, n)
	}
	o.Effort.Zero()
	o.Stiffness.Zero()
	o.Damping.Zero()
	o.DriveTarget.Zero()
	o.Drive = false
}

// Model computes actuator output for one group. Compute must be pure
// with respect to model state so repeated flushes without an intervening
// step produce identical output; time-dependent state advances only in
// Advance, and Reset clears it for the given instances.
type Model interface {
	Name() string
	Compute(in Input, out *Output)
	Reset(instanceIDs []int)
	Advance(dt float64)
}

// expand broadcasts a scalar or per-joint parameter list to length n.
// nil yields zeros.
func expand(vals []float64, n int, what string) (artic.Vec, error) {
	out := make(artic.Vec, n)
	switch len(vals) {
	case 0:
	case 1:
		out.Fill(vals[0])
	case n:
		copy(out, vals)
	default:
		return nil, artic.Configf("expand "+what, "expected 1 or %d values, got %d", n, len(vals))
	}
	return out, nil
}
