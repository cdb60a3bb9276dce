package actuator

import "github.com/san-kum/artsim/internal/artic"

// EffortOnly is a zero-gain passthrough: effort targets are clamped to
// the effort limit and applied directly. Position and velocity targets
// have no effect beyond record-keeping, since the group has no
// closed-loop drive.
type EffortOnly struct{}

func NewEffortOnly() *EffortOnly { return &EffortOnly{} }

func (m *EffortOnly) Name() string { return "effort" }

func (m *EffortOnly) Compute(in Input, out *Output) {
	out.ensure(in.Instances * in.Joints)

	for i := 0; i < in.Instances; i++ {
		base := i * in.Joints
		for j := 0; j < in.Joints; j++ {
			k := base + j
			if in.Kind[k] == artic.TargetEffort {
				out.Effort[k] = artic.Clamp(in.Target[k], in.Limits.Effort[j])
			}
		}
	}
}

func (m *EffortOnly) Advance(dt float64) {}

func (m *EffortOnly) Reset(instanceIDs []int) {}
