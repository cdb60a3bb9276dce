package actuator

import (
	"math"
	"testing"

	"github.com/san-kum/artsim/internal/artic"
)

func pdInput(instances, joints int) Input {
	n := instances * joints
	return Input{
		Instances: instances,
		Joints:    joints,
		Position:  make(artic.Vec, n),
		Velocity:  make(artic.Vec, n),
		Kind:      make([]artic.TargetKind, n),
		Target:    make(artic.Vec, n),
		Gains: Gains{
			Stiffness: make(artic.Vec, joints),
			Damping:   make(artic.Vec, joints),
		},
		Limits: Limits{
			Effort:   make(artic.Vec, joints),
			Velocity: make(artic.Vec, joints),
		},
	}
}

func TestIdealPDClampsToEffortLimit(t *testing.T) {
	// kp=10, kd=0, limit=5, q=0, target=1: raw effort 10, clamped to 5.
	m := NewIdealPD(1)
	in := pdInput(1, 1)
	in.Gains.Stiffness[0] = 10
	in.Limits.Effort[0] = 5
	in.Kind[0] = artic.TargetPosition
	in.Target[0] = 1

	var out Output
	m.Compute(in, &out)

	if out.Effort[0] != 5 {
		t.Errorf("applied effort = %f, want exactly 5", out.Effort[0])
	}

	in.Target[0] = -1
	m.Compute(in, &out)
	if out.Effort[0] != -5 {
		t.Errorf("applied effort = %f, want exactly -5", out.Effort[0])
	}
}

func TestIdealPDWithinLimit(t *testing.T) {
	m := NewIdealPD(1)
	in := pdInput(1, 1)
	in.Gains.Stiffness[0] = 10
	in.Gains.Damping[0] = 2
	in.Limits.Effort[0] = 100
	in.Position[0] = 0.5
	in.Velocity[0] = 1.0
	in.Kind[0] = artic.TargetPosition
	in.Target[0] = 1.0

	var out Output
	m.Compute(in, &out)

	// kp*(1-0.5) + kd*(0-1) = 5 - 2 = 3
	want := 3.0
	if math.Abs(out.Effort[0]-want) > 1e-12 {
		t.Errorf("effort = %f, want %f", out.Effort[0], want)
	}
	if out.Drive {
		t.Error("ideal PD should not emit drive parameters")
	}
}

func TestIdealPDVelocityTargetClamped(t *testing.T) {
	m := NewIdealPD(1)
	in := pdInput(1, 1)
	in.Gains.Damping[0] = 2
	in.Limits.Velocity[0] = 1 // target 3 clamps to 1 before the error
	in.Kind[0] = artic.TargetVelocity
	in.Target[0] = 3

	var out Output
	m.Compute(in, &out)

	want := 2.0 * (1 - 0)
	if math.Abs(out.Effort[0]-want) > 1e-12 {
		t.Errorf("effort = %f, want %f", out.Effort[0], want)
	}
}

func TestIdealPDEffortPassthrough(t *testing.T) {
	m := NewIdealPD(1)
	in := pdInput(1, 1)
	in.Gains.Stiffness[0] = 1000 // must not matter
	in.Limits.Effort[0] = 5
	in.Kind[0] = artic.TargetEffort
	in.Target[0] = 7

	var out Output
	m.Compute(in, &out)

	if out.Effort[0] != 5 {
		t.Errorf("effort passthrough = %f, want clamped 5", out.Effort[0])
	}
}

func TestIdealPDNoTargetNoEffort(t *testing.T) {
	m := NewIdealPD(2)
	in := pdInput(2, 3)
	in.Gains.Stiffness.Fill(50)
	in.Position.Fill(1) // error exists, but nothing staged

	var out Output
	m.Compute(in, &out)

	for i, e := range out.Effort {
		if e != 0 {
			t.Errorf("effort[%d] = %f without a staged target", i, e)
		}
	}
}

func TestIdealPDVelocityRamp(t *testing.T) {
	m := NewIdealPD(2)
	m.RampTime = 1.0
	in := pdInput(2, 1)
	in.Gains.Damping.Fill(1)
	in.Limits.Velocity.Fill(2)
	for i := range in.Kind {
		in.Kind[i] = artic.TargetVelocity
	}
	in.Target.Fill(5)

	var out Output
	m.Compute(in, &out)
	if out.Effort[0] != 0 {
		t.Errorf("effort before ramp = %f, want 0 (limit starts at zero)", out.Effort[0])
	}

	m.Advance(0.5) // half ramp: limit = 1
	m.Compute(in, &out)
	if math.Abs(out.Effort[0]-1) > 1e-12 {
		t.Errorf("effort at half ramp = %f, want 1", out.Effort[0])
	}

	m.Advance(0.5)
	m.Compute(in, &out)
	if math.Abs(out.Effort[0]-2) > 1e-12 {
		t.Errorf("effort at full ramp = %f, want 2", out.Effort[0])
	}

	// Partial reset: instance 0 ramps from zero, instance 1 is untouched.
	m.Reset([]int{0})
	m.Compute(in, &out)
	if out.Effort[0] != 0 {
		t.Errorf("reset instance effort = %f, want 0", out.Effort[0])
	}
	if math.Abs(out.Effort[1]-2) > 1e-12 {
		t.Errorf("untouched instance effort = %f, want 2", out.Effort[1])
	}
}

func TestIdealPDComputeIsRepeatable(t *testing.T) {
	m := NewIdealPD(1)
	m.RampTime = 1.0
	m.Advance(0.3)

	in := pdInput(1, 1)
	in.Gains.Stiffness[0] = 10
	in.Gains.Damping[0] = 1
	in.Limits.Effort[0] = 4
	in.Limits.Velocity[0] = 2
	in.Kind[0] = artic.TargetVelocity
	in.Target[0] = 10

	var a, b Output
	m.Compute(in, &a)
	m.Compute(in, &b)

	if a.Effort[0] != b.Effort[0] {
		t.Errorf("repeated compute differs: %f vs %f", a.Effort[0], b.Effort[0])
	}
}
