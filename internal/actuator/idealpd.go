package actuator

import "github.com/san-kum/artsim/internal/artic"

// IdealPD computes explicit PD efforts,
//
//	τ = clamp(kp·(q* − q) + kd·(q̇* − q̇), ±effort limit)
//
// with the velocity target pre-clamped to the (possibly ramped) velocity
// limit before the error is formed. Position targets imply a zero
// desired velocity, so damping opposes motion. Effort targets bypass the
// gains entirely.
type IdealPD struct {
	// RampTime stretches the velocity limit from zero to its full value
	// over this many seconds after a reset. Zero disables ramping.
	RampTime float64

	elapsed artic.Vec // per instance, advanced in Advance only
}

func NewIdealPD(instances int) *IdealPD {
	return &IdealPD{elapsed: make(artic.Vec, instances)}
}

func (m *IdealPD) Name() string { return "ideal_pd" }

func (m *IdealPD) Compute(in Input, out *Output) {
	out.ensure(in.Instances * in.Joints)

	for i := 0; i < in.Instances; i++ {
		velScale := m.velScale(i)
		base := i * in.Joints
		for j := 0; j < in.Joints; j++ {
			k := base + j
			effLim := in.Limits.Effort[j]

			switch in.Kind[k] {
			case artic.TargetPosition:
				e := in.Gains.Stiffness[j]*(in.Target[k]-in.Position[k]) - in.Gains.Damping[j]*in.Velocity[k]
				out.Effort[k] = artic.Clamp(e, effLim)
			case artic.TargetVelocity:
				tv := in.Target[k]
				if vl := in.Limits.Velocity[j]; vl > 0 {
					evl := velScale * vl
					if tv > evl {
						tv = evl
					} else if tv < -evl {
						tv = -evl
					}
				}
				out.Effort[k] = artic.Clamp(in.Gains.Damping[j]*(tv-in.Velocity[k]), effLim)
			case artic.TargetEffort:
				out.Effort[k] = artic.Clamp(in.Target[k], effLim)
			}
		}
	}
}

func (m *IdealPD) velScale(instance int) float64 {
	if m.RampTime <= 0 {
		return 1
	}
	s := m.elapsed[instance] / m.RampTime
	if s > 1 {
		return 1
	}
	return s
}

func (m *IdealPD) Advance(dt float64) {
	if m.RampTime <= 0 {
		return
	}
	for i := range m.elapsed {
		if m.elapsed[i] < m.RampTime {
			m.elapsed[i] += dt
		}
	}
}

func (m *IdealPD) Reset(instanceIDs []int) {
	if instanceIDs == nil {
		m.elapsed.Zero()
		return
	}
	for _, i := range instanceIDs {
		m.elapsed[i] = 0
	}
}
