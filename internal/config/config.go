package config

import (
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/artsim/internal/actuator"
	"github.com/san-kum/artsim/internal/artic"
)

const (
	DefaultDt        = 0.01
	DefaultDuration  = 5.0
	DefaultInstances = 4
	DefaultInertia   = 1.0
	DefaultStiffness = 40.0
	DefaultDamping   = 4.0
)

type Config struct {
	Articulation ArticulationConfig `yaml:"articulation"`
	Run          RunConfig          `yaml:"run"`
}

type ArticulationConfig struct {
	Joints []JointConfig `yaml:"joints"`
	Groups []GroupConfig `yaml:"groups"`
}

type JointConfig struct {
	Name    string  `yaml:"name"`
	Inertia float64 `yaml:"inertia"`
	Damping float64 `yaml:"damping"`
	Gravity float64 `yaml:"gravity"`
}

type GroupConfig struct {
	Name          string  `yaml:"name"`
	Pattern       string  `yaml:"pattern"`
	Model         string  `yaml:"model"`
	Stiffness     float64 `yaml:"stiffness"`
	Damping       float64 `yaml:"damping"`
	EffortLimit   float64 `yaml:"effort_limit"`
	VelocityLimit float64 `yaml:"velocity_limit"`
	VelocityRamp  float64 `yaml:"velocity_ramp"`
}

type RunConfig struct {
	Instances  int              `yaml:"instances"`
	Dt         float64          `yaml:"dt"`
	Duration   float64          `yaml:"duration"`
	Trajectory TrajectoryConfig `yaml:"trajectory"`
}

// TrajectoryConfig describes the position-target signal the run command
// stages each step: "hold" keeps a constant target, "sine" tracks a
// sinusoid.
type TrajectoryConfig struct {
	Kind      string  `yaml:"kind"`
	Amplitude float64 `yaml:"amplitude"`
	Frequency float64 `yaml:"frequency"`
}

// Value evaluates the trajectory at time t. Unknown kinds hold the
// amplitude.
func (tc TrajectoryConfig) Value(t float64) float64 {
	switch tc.Kind {
	case "sine":
		return tc.Amplitude * math.Sin(2*math.Pi*tc.Frequency*t)
	default:
		return tc.Amplitude
	}
}

func DefaultConfig() *Config {
	return &Config{
		Articulation: ArticulationConfig{
			Joints: []JointConfig{
				{Name: "joint_0", Inertia: DefaultInertia, Damping: 0.1},
				{Name: "joint_1", Inertia: DefaultInertia, Damping: 0.1},
			},
			Groups: []GroupConfig{
				{
					Name:        "all",
					Pattern:     "joint_.*",
					Model:       "ideal_pd",
					Stiffness:   DefaultStiffness,
					Damping:     DefaultDamping,
					EffortLimit: 50,
				},
			},
		},
		Run: RunConfig{
			Instances: DefaultInstances,
			Dt:        DefaultDt,
			Duration:  DefaultDuration,
			Trajectory: TrajectoryConfig{
				Kind:      "sine",
				Amplitude: 0.5,
				Frequency: 0.5,
			},
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if len(c.Articulation.Joints) == 0 {
		return artic.Configf("validate config", "articulation has no joints")
	}
	seen := make(map[string]bool, len(c.Articulation.Joints))
	for _, j := range c.Articulation.Joints {
		if j.Name == "" {
			return artic.Configf("validate config", "joint with empty name")
		}
		if seen[j.Name] {
			return artic.Configf("validate config", "duplicate joint name %q", j.Name)
		}
		seen[j.Name] = true
		if j.Inertia <= 0 {
			return artic.Configf("validate config", "joint %q: inertia must be positive, got %f", j.Name, j.Inertia)
		}
	}
	if len(c.Articulation.Groups) == 0 {
		return artic.Configf("validate config", "articulation has no actuator groups")
	}
	if c.Run.Instances <= 0 {
		return artic.Configf("validate config", "instances must be positive, got %d", c.Run.Instances)
	}
	if c.Run.Dt <= 0 {
		return artic.Configf("validate config", "dt must be positive, got %f", c.Run.Dt)
	}
	if c.Run.Duration <= 0 {
		return artic.Configf("validate config", "duration must be positive, got %f", c.Run.Duration)
	}
	return nil
}

func (c *Config) JointNames() []string {
	names := make([]string, len(c.Articulation.Joints))
	for i, j := range c.Articulation.Joints {
		names[i] = j.Name
	}
	return names
}

// JointParams returns per-joint inertia, damping and gravity arrays for
// the native backend.
func (c *Config) JointParams() (inertia, damping, gravity []float64) {
	n := len(c.Articulation.Joints)
	inertia = make([]float64, n)
	damping = make([]float64, n)
	gravity = make([]float64, n)
	for i, j := range c.Articulation.Joints {
		inertia[i] = j.Inertia
		damping[i] = j.Damping
		gravity[i] = j.Gravity
	}
	return inertia, damping, gravity
}

// GroupSpecs translates the configured groups into resolvable actuator
// specs. Scalar gains and limits broadcast over matched joints.
func (c *Config) GroupSpecs() []actuator.GroupSpec {
	specs := make([]actuator.GroupSpec, len(c.Articulation.Groups))
	for i, g := range c.Articulation.Groups {
		specs[i] = actuator.GroupSpec{
			Name:          g.Name,
			Pattern:       g.Pattern,
			Model:         g.Model,
			Stiffness:     []float64{g.Stiffness},
			Damping:       []float64{g.Damping},
			EffortLimit:   []float64{g.EffortLimit},
			VelocityLimit: []float64{g.VelocityLimit},
			VelocityRamp:  g.VelocityRamp,
		}
	}
	return specs
}
