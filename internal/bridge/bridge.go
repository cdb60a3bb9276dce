// Package bridge defines the boundary to the physics backend.
//
// A [Bridge] exposes the batched read/write entry points the articulation
// core drives; every operation covers all requested instances in a single
// call. [Native] is a self-contained reference backend used by tests and
// the CLI. Real engines plug in behind the same interface.
package bridge

import "github.com/san-kum/artsim/internal/artic"

// Bridge is the backend's batched state interface. Passing nil instance
// ids addresses all instances; otherwise arrays are sized len(ids) rows.
// Writes of root or joint state have teleport semantics: the values take
// effect immediately, bypassing dynamics.
type Bridge interface {
	// Counts reports the instance and joint dimensions of the binding.
	Counts() (instances, joints int)

	ReadRootState(ids []int, pose, twist artic.Vec) error
	ReadJointState(ids []int, pos, vel, eff artic.Vec) error

	WriteRootState(ids []int, pose, twist artic.Vec) error
	WriteJointState(ids []int, pos, vel artic.Vec) error

	// WriteJointDriveTargets configures the backend's native joint
	// drives. With stiffness > 0 the drive tracks a position target;
	// with stiffness == 0 and damping > 0 it tracks a velocity target.
	// Zero gains disable the drive for that joint.
	WriteJointDriveTargets(ids []int, stiffness, damping, target artic.Vec) error

	// WriteJointEfforts sets the feed-forward effort applied on the
	// next step, in addition to any active drive.
	WriteJointEfforts(ids []int, effort artic.Vec) error
}

// Handle is a borrowed, invalidatable reference to a bridge. Views hold
// a Handle rather than the Bridge itself; scene teardown invalidates it,
// and any later use fails with a lifecycle error instead of touching a
// dead backend.
type Handle struct {
	b     Bridge
	valid bool
}

func NewHandle(b Bridge) *Handle {
	return &Handle{b: b, valid: true}
}

func (h *Handle) Bridge() (Bridge, error) {
	if !h.valid {
		return nil, artic.ErrInvalidHandle
	}
	return h.b, nil
}

func (h *Handle) Valid() bool { return h.valid }

// Invalidate severs the handle. Called by the scene owner at teardown.
func (h *Handle) Invalidate() {
	h.valid = false
	h.b = nil
}
