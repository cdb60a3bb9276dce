package config

// Presets are ready-made articulation scenarios. Each is a complete
// Config; CLI flags may still override run settings.
var Presets = map[string]*Config{
	"arm": {
		Articulation: ArticulationConfig{
			Joints: []JointConfig{
				{Name: "shoulder_pan", Inertia: 2.0, Damping: 0.5, Gravity: 3.0},
				{Name: "shoulder_lift", Inertia: 2.0, Damping: 0.5, Gravity: 6.0},
				{Name: "elbow", Inertia: 1.0, Damping: 0.2, Gravity: 2.0},
				{Name: "wrist_roll", Inertia: 0.3, Damping: 0.05, Gravity: 0.0},
			},
			Groups: []GroupConfig{
				{
					Name: "shoulder", Pattern: "shoulder_.*", Model: "ideal_pd",
					Stiffness: 80, Damping: 8, EffortLimit: 60, VelocityLimit: 4,
				},
				{
					Name: "forearm", Pattern: "elbow|wrist_roll", Model: "ideal_pd",
					Stiffness: 40, Damping: 4, EffortLimit: 30, VelocityLimit: 8,
				},
			},
		},
		Run: RunConfig{
			Instances: 8, Dt: 0.005, Duration: 5.0,
			Trajectory: TrajectoryConfig{Kind: "sine", Amplitude: 0.6, Frequency: 0.5},
		},
	},
	"gripper": {
		Articulation: ArticulationConfig{
			Joints: []JointConfig{
				{Name: "finger_left", Inertia: 0.1, Damping: 0.02},
				{Name: "finger_right", Inertia: 0.1, Damping: 0.02},
			},
			Groups: []GroupConfig{
				{
					Name: "fingers", Pattern: "finger_.*", Model: "implicit_pd",
					Stiffness: 200, Damping: 10, EffortLimit: 20, VelocityLimit: 1,
				},
			},
		},
		Run: RunConfig{
			Instances: 16, Dt: 0.005, Duration: 3.0,
			Trajectory: TrajectoryConfig{Kind: "hold", Amplitude: 0.04},
		},
	},
	"wheel": {
		Articulation: ArticulationConfig{
			Joints: []JointConfig{
				{Name: "wheel_fl", Inertia: 0.5, Damping: 0.1},
				{Name: "wheel_fr", Inertia: 0.5, Damping: 0.1},
				{Name: "wheel_rl", Inertia: 0.5, Damping: 0.1},
				{Name: "wheel_rr", Inertia: 0.5, Damping: 0.1},
			},
			Groups: []GroupConfig{
				{
					Name: "drivetrain", Pattern: "wheel_.*", Model: "effort",
					EffortLimit: 10,
				},
			},
		},
		Run: RunConfig{
			Instances: 4, Dt: 0.01, Duration: 4.0,
			Trajectory: TrajectoryConfig{Kind: "hold", Amplitude: 2.0},
		},
	},
}
