// Package view orchestrates one articulation type across a batch of
// environment instances: a state buffer refreshed from the backend, a
// command staging buffer, and the actuator groups that turn staged
// targets into applied efforts.
//
// The steady-state cycle is stage → WriteDataToSim → backend step →
// Update, driven by a single control thread. Views borrow their bridge
// handle; once the scene invalidates it, every operation fails with a
// lifecycle error.
package view

import (
	"github.com/san-kum/artsim/internal/actuator"
	"github.com/san-kum/artsim/internal/artic"
	"github.com/san-kum/artsim/internal/bridge"
)

// View owns the batched state and command buffers for one articulation
// bound to a backend handle. Not thread-safe: one writer drives it.
type View struct {
	handle     *bridge.Handle
	jointNames []string
	n, j       int

	reg *actuator.Registry

	// state buffer, refreshed by Update
	root  artic.RootState
	joint artic.JointState
	fresh bool
	time  float64

	// command staging buffer, one record per (instance, joint);
	// last write wins across target kinds
	kind   []artic.TargetKind
	target artic.Vec

	// flush scratch, reused every step
	flushers  []*flusher
	effortOut artic.Vec
	stiffOut  artic.Vec
	dampOut   artic.Vec
	driveOut  artic.Vec
}

// flusher carries the preallocated gather/compute buffers for one group.
type flusher struct {
	group *actuator.Group
	in    actuator.Input
	out   actuator.Output
}

// New binds a view to the backend behind h. jointNames must match the
// backend's joint dimension, and specs must partition those joints into
// actuator groups; any violation is a configuration error raised here.
func New(h *bridge.Handle, jointNames []string, specs []actuator.GroupSpec) (*View, error) {
	b, err := h.Bridge()
	if err != nil {
		return nil, err
	}
	n, j := b.Counts()
	if j != len(jointNames) {
		return nil, artic.Configf("bind view", "backend has %d joints, got %d joint names", j, len(jointNames))
	}

	reg, err := actuator.Build(jointNames, n, specs)
	if err != nil {
		return nil, err
	}

	v := &View{
		handle:     h,
		jointNames: append([]string(nil), jointNames...),
		n:          n,
		j:          j,
		reg:        reg,
		root:       artic.NewRootState(n),
		joint:      artic.NewJointState(n, j),
		kind:       make([]artic.TargetKind, n*j),
		target:     make(artic.Vec, n*j),
		effortOut:  make(artic.Vec, n*j),
		stiffOut:   make(artic.Vec, n*j),
		dampOut:    make(artic.Vec, n*j),
		driveOut:   make(artic.Vec, n*j),
	}

	for _, g := range reg.Groups() {
		jg := len(g.Joints())
		v.flushers = append(v.flushers, &flusher{
			group: g,
			in: actuator.Input{
				Instances: n,
				Joints:    jg,
				Position:  make(artic.Vec, n*jg),
				Velocity:  make(artic.Vec, n*jg),
				Kind:      make([]artic.TargetKind, n*jg),
				Target:    make(artic.Vec, n*jg),
			},
		})
	}

	return v, nil
}

// Counts reports the batch dimensions (instances, joints).
func (v *View) Counts() (int, int) { return v.n, v.j }

func (v *View) JointNames() []string { return v.jointNames }

// Fresh reports whether Update has run since construction. Snapshots
// taken before then hold the zeroed defaults.
func (v *View) Fresh() bool { return v.fresh }

func (v *View) Time() float64 { return v.time }

// Group exposes a resolved actuator group, e.g. for gain hot-swapping
// between steps.
func (v *View) Group(name string) (*actuator.Group, bool) { return v.reg.Group(name) }

func (v *View) Groups() []*actuator.Group { return v.reg.Groups() }

// GetState returns a copied snapshot of the last refreshed state. The
// copy never aliases the view's buffers, so it stays valid across step
// boundaries.
func (v *View) GetState() artic.Snapshot {
	return artic.Snapshot{
		Instances: v.n,
		Joints:    v.j,
		Root: artic.RootState{
			Pose:  v.root.Pose.Clone(),
			Twist: v.root.Twist.Clone(),
		},
		Joint: artic.JointState{
			Position: v.joint.Position.Clone(),
			Velocity: v.joint.Velocity.Clone(),
			Effort:   v.joint.Effort.Clone(),
		},
		Time: v.time,
	}
}

// Staged returns copies of the pending target records, one per
// (instance, joint).
func (v *View) Staged() ([]artic.TargetKind, artic.Vec) {
	kinds := make([]artic.TargetKind, len(v.kind))
	copy(kinds, v.kind)
	return kinds, v.target.Clone()
}

// SetJointPositionTarget stages position targets for the addressed
// joints. Nil jointIDs addresses all joints, nil instanceIDs all
// instances; values has one entry per addressed joint.
func (v *View) SetJointPositionTarget(values []float64, jointIDs, instanceIDs []int) error {
	return v.stage(artic.TargetPosition, values, jointIDs, instanceIDs)
}

func (v *View) SetJointVelocityTarget(values []float64, jointIDs, instanceIDs []int) error {
	return v.stage(artic.TargetVelocity, values, jointIDs, instanceIDs)
}

func (v *View) SetJointEffortTarget(values []float64, jointIDs, instanceIDs []int) error {
	return v.stage(artic.TargetEffort, values, jointIDs, instanceIDs)
}

func (v *View) stage(kind artic.TargetKind, values []float64, jointIDs, instanceIDs []int) error {
	if _, err := v.handle.Bridge(); err != nil {
		return err
	}
	joints, err := v.resolveJoints(jointIDs)
	if err != nil {
		return err
	}
	if len(values) != len(joints) {
		return artic.Configf("stage target", "%d values for %d joints", len(values), len(joints))
	}
	instances, err := v.resolveInstances(instanceIDs)
	if err != nil {
		return err
	}

	for _, i := range instances {
		base := i * v.j
		for idx, jid := range joints {
			v.kind[base+jid] = kind
			v.target[base+jid] = values[idx]
		}
	}
	return nil
}

// WriteRootState teleports the root pose and twist of the addressed
/// instances. Immediate semantics: the backend state changes now, not at
// the next flush.
func (v *View) WriteRootState(pose, twist []float64, instanceIDs []int) error {
	b, err := v.handle.Bridge()
	if err != nil {
		return err
	}
	instances, err := v.resolveInstances(instanceIDs)
	if err != nil {
		return err
	}
	rows := len(instances)
	if len(pose) != rows*artic.PoseDim || len(twist) != rows*artic.TwistDim {
		return artic.Configf("write root state", "expected %d pose and %d twist values, got %d and %d",
			rows*artic.PoseDim, rows*artic.TwistDim, len(pose), len(twist))
	}
	return b.WriteRootState(pick(instanceIDs, instances), pose, twist)
}

// WriteJointState teleports joint positions and velocities of the
// addressed instances, one full row of J values each. A direct write
// invalidates those instances' staged targets and actuator internal
// state; reset-style writes must never mix with actuator control in the
// same step.
func (v *View) WriteJointState(pos, vel []float64, instanceIDs []int) error {
	b, err := v.handle.Bridge()
	if err != nil {
		return err
	}
	instances, err := v.resolveInstances(instanceIDs)
	if err != nil {
		return err
	}
	rows := len(instances)
	if len(pos) != rows*v.j || len(vel) != rows*v.j {
		return artic.Configf("write joint state", "expected %d values per array, got %d and %d",
			rows*v.j, len(pos), len(vel))
	}
	if err := b.WriteJointState(pick(instanceIDs, instances), pos, vel); err != nil {
		return err
	}
	v.clearStaged(instances)
	v.reg.Reset(pick(instanceIDs, instances))
	return nil
}

// WriteDataToSim runs every actuator group over the staged targets and
// the last-read state, then flushes efforts (and drive parameters, when
// any group uses native drives) to the backend in one batched call per
// array. Idempotent given unchanged staged targets and state: actuator
// internal state advances only in Update.
func (v *View) WriteDataToSim() error {
	b, err := v.handle.Bridge()
	if err != nil {
		return err
	}

	v.effortOut.Zero()
	v.stiffOut.Zero()
	v.dampOut.Zero()
	v.driveOut.Zero()
	hasDrive := false

	for _, f := range v.flushers {
		v.gather(f)
		f.in.Gains = f.group.Gains()
		f.in.Limits = f.group.Limits()
		f.group.Model().Compute(f.in, &f.out)
		v.scatter(f)
		if f.out.Drive {
			hasDrive = true
		}
	}

	if err := b.WriteJointEfforts(nil, v.effortOut); err != nil {
		return err
	}
	if hasDrive {
		if err := b.WriteJointDriveTargets(nil, v.stiffOut, v.dampOut, v.driveOut); err != nil {
			return err
		}
	}
	return nil
}

// Update refreshes the state buffer from the backend and advances
// time-dependent actuator state by dt. Call once per step, after the
// backend has advanced.
func (v *View) Update(dt float64) error {
	b, err := v.handle.Bridge()
	if err != nil {
		return err
	}
	if err := b.ReadRootState(nil, v.root.Pose, v.root.Twist); err != nil {
		return err
	}
	if err := b.ReadJointState(nil, v.joint.Position, v.joint.Velocity, v.joint.Effort); err != nil {
		return err
	}
	v.reg.Advance(dt)
	v.time += dt
	v.fresh = true
	return nil
}

// Reset clears staged targets and actuator internal state for the given
// instances only; nil resets the whole batch. Other instances' staged
// targets and cached state are untouched.
func (v *View) Reset(instanceIDs []int) error {
	if _, err := v.handle.Bridge(); err != nil {
		return err
	}
	instances, err := v.resolveInstances(instanceIDs)
	if err != nil {
		return err
	}
	v.clearStaged(instances)
	v.reg.Reset(pick(instanceIDs, instances))
	return nil
}

func (v *View) clearStaged(instances []int) {
	for _, i := range instances {
		base := i * v.j
		for j := 0; j < v.j; j++ {
			v.kind[base+j] = artic.TargetNone
			v.target[base+j] = 0
		}
	}
}

func (v *View) gather(f *flusher) {
	joints := f.group.Joints()
	jg := len(joints)
	for i := 0; i < v.n; i++ {
		src := i * v.j
		dst := i * jg
		for g, jid := range joints {
			f.in.Position[dst+g] = v.joint.Position[src+jid]
			f.in.Velocity[dst+g] = v.joint.Velocity[src+jid]
			f.in.Kind[dst+g] = v.kind[src+jid]
			f.in.Target[dst+g] = v.target[src+jid]
		}
	}
}

func (v *View) scatter(f *flusher) {
	joints := f.group.Joints()
	jg := len(joints)
	for i := 0; i < v.n; i++ {
		src := i * jg
		dst := i * v.j
		for g, jid := range joints {
			v.effortOut[dst+jid] = f.out.Effort[src+g]
			if f.out.Drive {
				v.stiffOut[dst+jid] = f.out.Stiffness[src+g]
				v.dampOut[dst+jid] = f.out.Damping[src+g]
				v.driveOut[dst+jid] = f.out.DriveTarget[src+g]
			}
		}
	}
}

func (v *View) resolveJoints(ids []int) ([]int, error) {
	if ids == nil {
		all := make([]int, v.j)
		for i := range all {
			all[i] = i
		}
		return all, nil
	}
	for _, id := range ids {
		if id < 0 || id >= v.j {
			return nil, artic.Configf("resolve joints", "joint id %d out of range [0,%d)", id, v.j)
		}
	}
	return ids, nil
}

func (v *View) resolveInstances(ids []int) ([]int, error) {
	if ids == nil {
		all := make([]int, v.n)
		for i := range all {
			all[i] = i
		}
		return all, nil
	}
	for _, id := range ids {
		if id < 0 || id >= v.n {
			return nil, artic.Configf("resolve instances", "instance id %d out of range [0,%d)", id, v.n)
		}
	}
	return ids, nil
}

// pick forwards nil to the bridge (meaning all instances) rather than
// the expanded id list, keeping bridge calls single-pass over full rows.
func pick(orig, resolved []int) []int {
	if orig == nil {
		return nil
	}
	return resolved
}
