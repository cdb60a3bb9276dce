package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/artsim/internal/bridge"
	"github.com/san-kum/artsim/internal/config"
	"github.com/san-kum/artsim/internal/metrics"
	"github.com/san-kum/artsim/internal/storage"
	"github.com/san-kum/artsim/internal/view"
	"github.com/san-kum/artsim/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	instances  int
	dt         float64
	duration   float64
	plotJoint  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "artsim",
		Short: "batched articulation actuation lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".artsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a configured scenario",
		RunE:  runScenario,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset scenario")
	runCmd.Flags().IntVar(&instances, "instances", config.DefaultInstances, "environment instances")
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved joint trajectory",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotJoint, "joint", 0, "joint index to plot")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "live view of a running scenario",
		RunE:  liveScenario,
	}
	liveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	liveCmd.Flags().StringVar(&preset, "preset", "", "use preset scenario")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the actuation pipeline",
		RunE:  benchScenario,
	}
	benchCmd.Flags().StringVar(&preset, "preset", "arm", "preset scenario")
	benchCmd.Flags().IntVar(&instances, "instances", 1024, "environment instances")

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a default config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.Save(args[0], config.DefaultConfig())
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, liveCmd, benchCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func resolveConfig(cmd *cobra.Command) (*config.Config, string, error) {
	cfg := config.DefaultConfig()
	scenario := "default"

	if preset != "" {
		p, ok := config.Presets[preset]
		if !ok {
			return nil, "", fmt.Errorf("unknown preset: %s", preset)
		}
		cfg = p
		scenario = preset
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		scenario = "custom"
	}

	// CLI flags override preset/file values
	if cmd.Flags().Changed("instances") {
		cfg.Run.Instances = instances
	}
	if cmd.Flags().Changed("dt") {
		cfg.Run.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Run.Duration = duration
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, scenario, nil
}

// buildScene wires backend, handle and view from a validated config.
func buildScene(cfg *config.Config) (*bridge.Native, *view.View, error) {
	inertia, damping, gravity := cfg.JointParams()
	nb := bridge.NewNative(cfg.Run.Instances, inertia, damping, gravity)
	v, err := view.New(bridge.NewHandle(nb), cfg.JointNames(), cfg.GroupSpecs())
	if err != nil {
		return nil, nil, err
	}
	return nb, v, nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, scenario, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	nb, v, err := buildScene(cfg)
	if err != nil {
		return err
	}

	runner := view.NewRunner(v, nb)
	runner.AddMetric(metrics.NewTrackingError())
	runner.AddMetric(metrics.NewControlEffort())
	runner.AddMetric(metrics.NewDivergence())
	if limit := maxEffortLimit(cfg); limit > 0 {
		runner.AddMetric(metrics.NewSaturation(limit))
	}

	stage := func(v *view.View, t float64) error {
		return viz.StageAll(v, cfg, cfg.Run.Trajectory.Value(t))
	}

	fmt.Printf("running %s: %d instances x %d joints\n", scenario, cfg.Run.Instances, len(cfg.Articulation.Joints))
	start := time.Now()

	result, err := runner.Run(context.Background(), view.RunConfig{Dt: cfg.Run.Dt, Duration: cfg.Run.Duration}, stage)
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	n, j := v.Counts()
	runID, err := st.Save(scenario, n, j, cfg.Run.Dt, cfg.Run.Duration, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed %d steps in %v\n", result.Steps, elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}

	return nil
}

func maxEffortLimit(cfg *config.Config) float64 {
	limit := 0.0
	for _, g := range cfg.Articulation.Groups {
		if g.EffortLimit > limit {
			limit = g.EffortLimit
		}
	}
	return limit
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tINSTANCES\tJOINTS\tDT\tDURATION\tDATE")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.4f\t%.1f\t%s\n",
			r.ID, r.Scenario, r.Instances, r.Joints, r.Dt, r.Duration,
			r.Timestamp.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	traj, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	if len(traj.Positions) == 0 {
		return fmt.Errorf("run %s has no trajectory data", args[0])
	}
	if plotJoint < 0 || plotJoint >= len(traj.Positions[0]) {
		return fmt.Errorf("joint %d out of range [0,%d)", plotJoint, len(traj.Positions[0]))
	}

	pos := make([]float64, len(traj.Positions))
	tgt := make([]float64, len(traj.Positions))
	for i := range traj.Positions {
		pos[i] = traj.Positions[i][plotJoint]
		tgt[i] = traj.Targets[i][plotJoint]
	}

	graph := asciigraph.PlotMany([][]float64{tgt, pos},
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("joint %d: target vs position", plotJoint)),
	)
	fmt.Println(graph)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func liveScenario(cmd *cobra.Command, args []string) error {
	cfg, _, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	nb, v, err := buildScene(cfg)
	if err != nil {
		return err
	}
	p := tea.NewProgram(viz.NewModel(cfg, v, nb))
	_, err = p.Run()
	return err
}

func benchScenario(cmd *cobra.Command, args []string) error {
	cfg, scenario, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Run.Instances = instances
	nb, v, err := buildScene(cfg)
	if err != nil {
		return err
	}

	const steps = 2000
	n, j := v.Counts()
	targets := make([]float64, j)
	for i := range targets {
		targets[i] = 0.3
	}

	start := time.Now()
	for i := 0; i < steps; i++ {
		if err := v.SetJointPositionTarget(targets, nil, nil); err != nil {
			return err
		}
		if err := v.WriteDataToSim(); err != nil {
			return err
		}
		nb.Step(cfg.Run.Dt)
		if err := v.Update(cfg.Run.Dt); err != nil {
			return err
		}
	}
	elapsed := time.Since(start)

	rate := float64(steps) / elapsed.Seconds()
	fmt.Printf("%s: %d instances x %d joints\n", scenario, n, j)
	fmt.Printf("%d steps in %v (%.0f steps/s, %.2fM joint-steps/s)\n",
		steps, elapsed, rate, rate*float64(n*j)/1e6)
	return nil
}
