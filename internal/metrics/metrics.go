// Package metrics provides run observers over batched articulation
// snapshots: tracking quality, actuation cost, and limit saturation.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/artsim/internal/artic"
)

// TrackingError accumulates the mean absolute position error between
// the refreshed joint positions and the staged position targets, over
// all instances and joints.
type TrackingError struct {
	name    string
	sum     float64
	samples int
}

func NewTrackingError() *TrackingError {
	return &TrackingError{name: "tracking_error"}
}

func (m *TrackingError) Name() string { return m.name }

func (m *TrackingError) Observe(s artic.Snapshot, targets artic.Vec, t float64) {
	if len(targets) != len(s.Joint.Position) {
		return
	}
	for i, p := range s.Joint.Position {
		m.sum += math.Abs(targets[i] - p)
		m.samples++
	}
}

func (m *TrackingError) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *TrackingError) Reset() {
	m.sum = 0
	m.samples = 0
}

// ControlEffort accumulates the mean absolute applied effort.
type ControlEffort struct {
	name    string
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{name: "control_effort"}
}

func (m *ControlEffort) Name() string { return m.name }

func (m *ControlEffort) Observe(s artic.Snapshot, targets artic.Vec, t float64) {
	for _, e := range s.Joint.Effort {
		m.sum += math.Abs(e)
	}
	m.samples += len(s.Joint.Effort)
}

func (m *ControlEffort) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *ControlEffort) Reset() {
	m.sum = 0
	m.samples = 0
}

// Saturation reports the fraction of observations where some joint's
// applied effort reached the given limit.
type Saturation struct {
	name      string
	limit     float64
	saturated int
	samples   int
}

func NewSaturation(effortLimit float64) *Saturation {
	return &Saturation{name: "saturation", limit: effortLimit}
}

func (m *Saturation) Name() string { return m.name }

func (m *Saturation) Observe(s artic.Snapshot, targets artic.Vec, t float64) {
	m.samples++
	if m.limit <= 0 || len(s.Joint.Effort) == 0 {
		return
	}
	peak := math.Max(floats.Max(s.Joint.Effort), -floats.Min(s.Joint.Effort))
	if peak >= m.limit-1e-9 {
		m.saturated++
	}
}

func (m *Saturation) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return float64(m.saturated) / float64(m.samples)
}

func (m *Saturation) Reset() {
	m.saturated = 0
	m.samples = 0
}

// Divergence reports the max joint-state norm seen, a cheap instability
// indicator for batched runs.
type Divergence struct {
	name string
	max  float64
}

func NewDivergence() *Divergence {
	return &Divergence{name: "divergence"}
}

func (m *Divergence) Name() string { return m.name }

func (m *Divergence) Observe(s artic.Snapshot, targets artic.Vec, t float64) {
	n := floats.Norm(s.Joint.Velocity, 2)
	if n > m.max {
		m.max = n
	}
}

func (m *Divergence) Value() float64 { return m.max }

func (m *Divergence) Reset() { m.max = 0 }
