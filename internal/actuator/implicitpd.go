package actuator

import "github.com/san-kum/artsim/internal/artic"

// ImplicitPD does not compute efforts itself: it translates targets into
// (stiffness, damping, target) drive parameters for the backend's native
// joint drives, which integrate the control law inside the solver. Only
// effort targets produce a direct effort, with the drive gains zeroed
// for those joints so the native drive does not fight the feed-forward.
type ImplicitPD struct{}

func NewImplicitPD() *ImplicitPD { return &ImplicitPD{} }

func (m *ImplicitPD) Name() string { return "implicit_pd" }

func (m *ImplicitPD) Compute(in Input, out *Output) {
	out.ensure(in.Instances * in.Joints)
	out.Drive = true

	for i := 0; i < in.Instances; i++ {
		base := i * in.Joints
		for j := 0; j < in.Joints; j++ {
			k := base + j
			switch in.Kind[k] {
			case artic.TargetPosition:
				out.Stiffness[k] = in.Gains.Stiffness[j]
				out.Damping[k] = in.Gains.Damping[j]
				out.DriveTarget[k] = in.Target[k]
			case artic.TargetVelocity:
				out.Damping[k] = in.Gains.Damping[j]
				out.DriveTarget[k] = artic.Clamp(in.Target[k], in.Limits.Velocity[j])
			case artic.TargetEffort:
				out.Effort[k] = artic.Clamp(in.Target[k], in.Limits.Effort[j])
			}
		}
	}
}

func (m *ImplicitPD) Advance(dt float64) {}

func (m *ImplicitPD) Reset(instanceIDs []int) {}
