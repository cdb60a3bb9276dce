package artic

import "math"

// Widths of the flattened root arrays: position xyz + quaternion wxyz,
// and linear + angular velocity.
const (
	PoseDim  = 7
	TwistDim = 6
)

type Vec []float64

func (v Vec) Clone() Vec {
	c := make(Vec, len(v))
	copy(c, v)
	return c
}

func (v Vec) Fill(x float64) {
	for i := range v {
		v[i] = x
	}
}

func (v Vec) Zero() { v.Fill(0) }

func (v Vec) IsValid() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func (v Vec) Norm() float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// TargetKind identifies what a staged joint command asks the actuator
// to track. None marks a joint with no pending command.
type TargetKind uint8

const (
	TargetNone TargetKind = iota
	TargetPosition
	TargetVelocity
	TargetEffort
)

func (k TargetKind) String() string {
	switch k {
	case TargetNone:
		return "none"
	case TargetPosition:
		return "position"
	case TargetVelocity:
		return "velocity"
	case TargetEffort:
		return "effort"
	default:
		return "unknown"
	}
}

// RootState holds the batched root pose and twist for N instances.
// Pose rows are [x y z qw qx qy qz], twist rows [vx vy vz wx wy wz].
type RootState struct {
	Pose  Vec // N*PoseDim
	Twist Vec // N*TwistDim
}

func NewRootState(instances int) RootState {
	rs := RootState{
		Pose:  make(Vec, instances*PoseDim),
		Twist: make(Vec, instances*TwistDim),
	}
	// Identity orientation so an unread buffer is still a unit quaternion.
	for i := 0; i < instances; i++ {
		rs.Pose[i*PoseDim+3] = 1
	}
	return rs
}

// JointState holds batched joint scalars for N instances of a J-joint
// articulation, laid out row-major by instance.
type JointState struct {
	Position Vec // N*J
	Velocity Vec // N*J
	Effort   Vec // N*J
}

func NewJointState(instances, joints int) JointState {
	return JointState{
		Position: make(Vec, instances*joints),
		Velocity: make(Vec, instances*joints),
		Effort:   make(Vec, instances*joints),
	}
}

// Snapshot is a copied view of one articulation's full state. It never
// aliases the owning buffer, so it stays valid across step boundaries.
type Snapshot struct {
	Instances int
	Joints    int
	Root      RootState
	Joint     JointState
	Time      float64
}

// At returns joint j of instance i from a flat N*J array.
func At(a Vec, joints, i, j int) float64 { return a[i*joints+j] }

// Clamp limits x to [-limit, limit]. A non-positive limit means unlimited.
func Clamp(x, limit float64) float64 {
	if limit <= 0 {
		return x
	}
	if x > limit {
		return limit
	}
	if x < -limit {
		return -limit
	}
	return x
}
