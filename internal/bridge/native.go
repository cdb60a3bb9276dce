package bridge

import (
	"fmt"
	"math"

	"github.com/san-kum/artsim/internal/artic"
)

// Native is a batched reference backend: N instances of a J-joint serial
// chain whose joints are independent damped 1-DOF bodies,
//
//	inertia·q̈ = τ_applied + τ_drive − damping·q̇ − gravity·sin(q)
//
// stepped with semi-implicit Euler. Drives follow the convention from
// [Bridge.WriteJointDriveTargets] and are integrated inside the step, so
// implicit position/velocity tracking stays stable at large timesteps.
// The free root integrates its pose from its twist.
type Native struct {
	n, j int

	inertia      artic.Vec // J, per joint
	jointDamping artic.Vec // J
	gravity      artic.Vec // J, torque amplitude of the gravity term

	pos, vel, eff artic.Vec // N*J
	applied       artic.Vec // N*J, feed-forward efforts for the next step

	driveKp, driveKd, driveTarget artic.Vec // N*J

	rootPose  artic.Vec // N*PoseDim
	rootTwist artic.Vec // N*TwistDim

	time float64
	step int
}

// NewNative builds a backend for instances copies of a chain with one
// entry per joint in inertia/damping/gravity (all length J).
func NewNative(instances int, inertia, damping, gravity []float64) *Native {
	j := len(inertia)
	nb := &Native{
		n:            instances,
		j:            j,
		inertia:      artic.Vec(inertia).Clone(),
		jointDamping: artic.Vec(damping).Clone(),
		gravity:      artic.Vec(gravity).Clone(),
		pos:          make(artic.Vec, instances*j),
		vel:          make(artic.Vec, instances*j),
		eff:          make(artic.Vec, instances*j),
		applied:      make(artic.Vec, instances*j),
		driveKp:      make(artic.Vec, instances*j),
		driveKd:      make(artic.Vec, instances*j),
		driveTarget:  make(artic.Vec, instances*j),
		rootPose:     make(artic.Vec, instances*artic.PoseDim),
		rootTwist:    make(artic.Vec, instances*artic.TwistDim),
	}
	for i := 0; i < instances; i++ {
		nb.rootPose[i*artic.PoseDim+3] = 1
	}
	return nb
}

func (nb *Native) Counts() (int, int) { return nb.n, nb.j }

func (nb *Native) Time() float64 { return nb.time }

func (nb *Native) resolve(ids []int) ([]int, error) {
	if ids == nil {
		all := make([]int, nb.n)
		for i := range all {
			all[i] = i
		}
		return all, nil
	}
	for _, id := range ids {
		if id < 0 || id >= nb.n {
			return nil, &artic.BackendError{Op: "resolve instance", Wrapped: errInstance(id, nb.n)}
		}
	}
	return ids, nil
}

func (nb *Native) ReadRootState(ids []int, pose, twist artic.Vec) error {
	rows, err := nb.resolve(ids)
	if err != nil {
		return err
	}
	for r, id := range rows {
		copy(pose[r*artic.PoseDim:(r+1)*artic.PoseDim], nb.rootPose[id*artic.PoseDim:(id+1)*artic.PoseDim])
		copy(twist[r*artic.TwistDim:(r+1)*artic.TwistDim], nb.rootTwist[id*artic.TwistDim:(id+1)*artic.TwistDim])
	}
	return nil
}

func (nb *Native) ReadJointState(ids []int, pos, vel, eff artic.Vec) error {
	rows, err := nb.resolve(ids)
	if err != nil {
		return err
	}
	for r, id := range rows {
		copy(pos[r*nb.j:(r+1)*nb.j], nb.pos[id*nb.j:(id+1)*nb.j])
		copy(vel[r*nb.j:(r+1)*nb.j], nb.vel[id*nb.j:(id+1)*nb.j])
		copy(eff[r*nb.j:(r+1)*nb.j], nb.eff[id*nb.j:(id+1)*nb.j])
	}
	return nil
}

func (nb *Native) WriteRootState(ids []int, pose, twist artic.Vec) error {
	rows, err := nb.resolve(ids)
	if err != nil {
		return err
	}
	for r, id := range rows {
		copy(nb.rootPose[id*artic.PoseDim:(id+1)*artic.PoseDim], pose[r*artic.PoseDim:(r+1)*artic.PoseDim])
		copy(nb.rootTwist[id*artic.TwistDim:(id+1)*artic.TwistDim], twist[r*artic.TwistDim:(r+1)*artic.TwistDim])
	}
	return nil
}

func (nb *Native) WriteJointState(ids []int, pos, vel artic.Vec) error {
	rows, err := nb.resolve(ids)
	if err != nil {
		return err
	}
	for r, id := range rows {
		copy(nb.pos[id*nb.j:(id+1)*nb.j], pos[r*nb.j:(r+1)*nb.j])
		copy(nb.vel[id*nb.j:(id+1)*nb.j], vel[r*nb.j:(r+1)*nb.j])
	}
	return nil
}

func (nb *Native) WriteJointDriveTargets(ids []int, stiffness, damping, target artic.Vec) error {
	rows, err := nb.resolve(ids)
	if err != nil {
		return err
	}
	for r, id := range rows {
		copy(nb.driveKp[id*nb.j:(id+1)*nb.j], stiffness[r*nb.j:(r+1)*nb.j])
		copy(nb.driveKd[id*nb.j:(id+1)*nb.j], damping[r*nb.j:(r+1)*nb.j])
		copy(nb.driveTarget[id*nb.j:(id+1)*nb.j], target[r*nb.j:(r+1)*nb.j])
	}
	return nil
}

func (nb *Native) WriteJointEfforts(ids []int, effort artic.Vec) error {
	rows, err := nb.resolve(ids)
	if err != nil {
		return err
	}
	for r, id := range rows {
		copy(nb.applied[id*nb.j:(id+1)*nb.j], effort[r*nb.j:(r+1)*nb.j])
	}
	return nil
}

// Step advances all instances by dt. The orchestrator calls this between
// a flush and the following state refresh.
func (nb *Native) Step(dt float64) {
	for i := 0; i < nb.n; i++ {
		base := i * nb.j
		for j := 0; j < nb.j; j++ {
			k := base + j
			tau := nb.applied[k]

			kp, kd := nb.driveKp[k], nb.driveKd[k]
			switch {
			case kp > 0:
				tau += kp*(nb.driveTarget[k]-nb.pos[k]) - kd*nb.vel[k]
			case kd > 0:
				tau += kd * (nb.driveTarget[k] - nb.vel[k])
			}

			tau -= nb.jointDamping[j] * nb.vel[k]
			tau -= nb.gravity[j] * math.Sin(nb.pos[k])

			acc := tau / nb.inertia[j]
			nb.vel[k] += dt * acc
			nb.pos[k] += dt * nb.vel[k]
			nb.eff[k] = tau
		}
		nb.stepRoot(i, dt)
	}
	nb.time += dt
	nb.step++
}

func (nb *Native) stepRoot(i int, dt float64) {
	p := nb.rootPose[i*artic.PoseDim : (i+1)*artic.PoseDim]
	t := nb.rootTwist[i*artic.TwistDim : (i+1)*artic.TwistDim]

	p[0] += dt * t[0]
	p[1] += dt * t[1]
	p[2] += dt * t[2]

	// q̇ = ½·(0, ω) ⊗ q with ω in the world frame.
	qw, qx, qy, qz := p[3], p[4], p[5], p[6]
	wx, wy, wz := t[3], t[4], t[5]
	p[3] += dt * 0.5 * (-wx*qx - wy*qy - wz*qz)
	p[4] += dt * 0.5 * (wx*qw + wy*qz - wz*qy)
	p[5] += dt * 0.5 * (wy*qw + wz*qx - wx*qz)
	p[6] += dt * 0.5 * (wz*qw + wx*qy - wy*qx)

	norm := math.Sqrt(p[3]*p[3] + p[4]*p[4] + p[5]*p[5] + p[6]*p[6])
	if norm > 0 {
		p[3] /= norm
		p[4] /= norm
		p[5] /= norm
		p[6] /= norm
	}
}

func errInstance(id, n int) error {
	return fmt.Errorf("instance id %d out of range [0,%d)", id, n)
}
