package view

import (
	"context"

	"github.com/san-kum/artsim/internal/artic"
)

// Stepper advances the physics backend. The backend step is the only
// blocking operation in the cycle and is owned by the orchestrator, not
// the view.
type Stepper interface {
	Step(dt float64)
}

// StageFunc stages the targets for one step; t is the simulation time
// at the start of the step.
type StageFunc func(v *View, t float64) error

// Metric observes each refreshed snapshot together with the targets
// staged for the step that produced it.
type Metric interface {
	Name() string
	Observe(s artic.Snapshot, targets artic.Vec, t float64)
	Value() float64
	Reset()
}

type RunConfig struct {
	Dt       float64
	Duration float64
}

// Result records the trajectory of instance 0 plus final metric values.
type Result struct {
	Times     []float64
	Positions [][]float64
	Targets   [][]float64
	Efforts   [][]float64
	Metrics   map[string]float64
	Steps     int
}

// Runner drives the canonical stage → flush → step → refresh cycle.
type Runner struct {
	view    *View
	stepper Stepper
	metrics []Metric
}

func NewRunner(v *View, s Stepper) *Runner {
	return &Runner{view: v, stepper: s}
}

func (r *Runner) AddMetric(m Metric) { r.metrics = append(r.metrics, m) }

func (r *Runner) Run(ctx context.Context, cfg RunConfig, stage StageFunc) (*Result, error) {
	if cfg.Dt <= 0 {
		return nil, artic.Configf("run", "dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return nil, artic.Configf("run", "duration must be positive, got %f", cfg.Duration)
	}

	steps := int(cfg.Duration / cfg.Dt)
	_, j := r.view.Counts()
	result := &Result{
		Times:     make([]float64, 0, steps),
		Positions: make([][]float64, 0, steps),
		Targets:   make([][]float64, 0, steps),
		Efforts:   make([][]float64, 0, steps),
		Metrics:   make(map[string]float64),
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	t := 0.0
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if stage != nil {
			if err := stage(r.view, t); err != nil {
				return result, err
			}
		}
		if err := r.view.WriteDataToSim(); err != nil {
			return result, err
		}
		r.stepper.Step(cfg.Dt)
		if err := r.view.Update(cfg.Dt); err != nil {
			return result, err
		}
		t += cfg.Dt
		result.Steps++

		s := r.view.GetState()
		_, targets := r.view.Staged()
		for _, m := range r.metrics {
			m.Observe(s, targets, t)
		}

		result.Times = append(result.Times, t)
		result.Positions = append(result.Positions, append([]float64(nil), s.Joint.Position[:j]...))
		result.Targets = append(result.Targets, append([]float64(nil), targets[:j]...))
		result.Efforts = append(result.Efforts, append([]float64(nil), s.Joint.Effort[:j]...))
	}

	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}
