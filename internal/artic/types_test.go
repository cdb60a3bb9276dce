package artic

import (
	"errors"
	"math"
	"testing"
)

func TestVecClone(t *testing.T) {
	v := Vec{1, 2, 3}
	c := v.Clone()
	c[0] = 9

	if v[0] != 1 {
		t.Errorf("clone aliases source: v[0] = %f", v[0])
	}
}

func TestVecIsValid(t *testing.T) {
	if !(Vec{0, -1, 2.5}).IsValid() {
		t.Error("finite vector reported invalid")
	}
	if (Vec{0, math.NaN()}).IsValid() {
		t.Error("NaN vector reported valid")
	}
	if (Vec{math.Inf(1)}).IsValid() {
		t.Error("Inf vector reported valid")
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		x, limit, want float64
	}{
		{3, 5, 3},
		{7, 5, 5},
		{-7, 5, -5},
		{100, 0, 100},  // zero limit means unlimited
		{100, -1, 100}, // negative too
	}
	for _, tt := range tests {
		if got := Clamp(tt.x, tt.limit); got != tt.want {
			t.Errorf("Clamp(%f, %f) = %f, want %f", tt.x, tt.limit, got, tt.want)
		}
	}
}

func TestNewRootStateIdentityQuaternion(t *testing.T) {
	rs := NewRootState(3)
	for i := 0; i < 3; i++ {
		if rs.Pose[i*PoseDim+3] != 1 {
			t.Errorf("instance %d: qw = %f, want 1", i, rs.Pose[i*PoseDim+3])
		}
	}
}

func TestConfigErrorIs(t *testing.T) {
	err := Configf("test op", "bad value %d", 7)
	if !errors.Is(err, ErrConfiguration) {
		t.Error("ConfigError does not match ErrConfiguration")
	}
	if errors.Is(err, ErrBackend) {
		t.Error("ConfigError matches ErrBackend")
	}
}

func TestBackendErrorUnwrap(t *testing.T) {
	inner := errors.New("solver exploded")
	err := &BackendError{Op: "step", Wrapped: inner}

	if !errors.Is(err, ErrBackend) {
		t.Error("BackendError does not match ErrBackend")
	}
	if !errors.Is(err, inner) {
		t.Error("BackendError does not unwrap to inner error")
	}
}
