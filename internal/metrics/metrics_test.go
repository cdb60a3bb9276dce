package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/artsim/internal/artic"
)

func snapshot(pos, vel, eff []float64) artic.Snapshot {
	return artic.Snapshot{
		Instances: 1,
		Joints:    len(pos),
		Joint: artic.JointState{
			Position: pos,
			Velocity: vel,
			Effort:   eff,
		},
	}
}

func TestTrackingError(t *testing.T) {
	m := NewTrackingError()
	s := snapshot([]float64{0.2, 0.6}, []float64{0, 0}, []float64{0, 0})
	m.Observe(s, artic.Vec{0.5, 0.5}, 0.01)

	// |0.5-0.2| + |0.5-0.6| over 2 samples
	want := (0.3 + 0.1) / 2
	if math.Abs(m.Value()-want) > 1e-12 {
		t.Errorf("tracking error = %f, want %f", m.Value(), want)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Errorf("value after reset = %f", m.Value())
	}
}

func TestControlEffort(t *testing.T) {
	m := NewControlEffort()
	s := snapshot([]float64{0, 0}, []float64{0, 0}, []float64{2, -4})
	m.Observe(s, nil, 0.01)

	want := 3.0 // (|2| + |-4|) / 2
	if math.Abs(m.Value()-want) > 1e-12 {
		t.Errorf("control effort = %f, want %f", m.Value(), want)
	}
}

func TestSaturation(t *testing.T) {
	m := NewSaturation(5)

	m.Observe(snapshot([]float64{0}, []float64{0}, []float64{3}), nil, 0.01)
	m.Observe(snapshot([]float64{0}, []float64{0}, []float64{5}), nil, 0.02)
	m.Observe(snapshot([]float64{0}, []float64{0}, []float64{-5}), nil, 0.03)

	want := 2.0 / 3.0
	if math.Abs(m.Value()-want) > 1e-12 {
		t.Errorf("saturation = %f, want %f", m.Value(), want)
	}
}

func TestDivergence(t *testing.T) {
	m := NewDivergence()
	m.Observe(snapshot([]float64{0}, []float64{3, 4}, []float64{0}), nil, 0.01)
	m.Observe(snapshot([]float64{0}, []float64{1, 0}, []float64{0}), nil, 0.02)

	if math.Abs(m.Value()-5) > 1e-12 {
		t.Errorf("divergence = %f, want 5 (peak velocity norm)", m.Value())
	}
}
