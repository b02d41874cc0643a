package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/hardgas/internal/config"
)

var (
	dataDir string
	verbose bool

	// Gas parameters; applied over preset and config file only when set.
	width       float64
	height      float64
	particles   int
	radius      float64
	mass        float64
	vmax        float64
	dt          float64
	duration    float64
	seed        int64
	sampleEvery int
	snapEvery   int
	maxAttempts int
	configFile  string
	preset      string

	metricNames []string
	noSave      bool

	// Ensemble
	numRuns int

	// Live view
	stepsPerFrame int

	// Sweep
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int

	// Output
	outPath   string
	numTracks int
	svgSize   int
	snapshot  bool
	bins      int
	particle  int
	xAxis     int
	yAxis     int
)

// main registers the hardgas commands and executes the root command,
// exiting with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:           "hardgas",
		Short:         "2D hard-disc gas simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
			slog.SetDefault(slog.New(handler))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".hardgas", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and save it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addGasFlags(runCmd)
	runCmd.Flags().StringSliceVar(&metricNames, "metrics", nil, "metrics to record (default: all standard metrics)")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "print the report without saving the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot pressure, energy and particle positions",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	histCmd := &cobra.Command{
		Use:   "histogram [run_id]",
		Short: "final speed distribution against Maxwell-Boltzmann",
		Args:  cobra.ExactArgs(1),
		RunE:  speedHistogram,
	}
	histCmd.Flags().IntVar(&bins, "bins", 30, "number of histogram bins")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase space plot of one particle",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&particle, "particle", 0, "particle index")
	phaseCmd.Flags().IntVar(&xAxis, "x-axis", 0, "axis for x (0=x 1=y 2=vx 3=vy)")
	phaseCmd.Flags().IntVar(&yAxis, "y-axis", 2, "axis for y (0=x 1=y 2=vx 3=vy)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render particle trajectories to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default <run_id>.svg)")
	exportSVGCmd.Flags().IntVar(&numTracks, "tracks", 10, "number of particles to trace")
	exportSVGCmd.Flags().IntVar(&svgSize, "size", 600, "image size in pixels")
	exportSVGCmd.Flags().BoolVar(&snapshot, "snapshot", false, "draw the final positions instead of trajectories")

	deleteCmd := &cobra.Command{
		Use:   "delete [run_id]",
		Short: "delete a run",
		Args:  cobra.ExactArgs(1),
		RunE:  deleteRun,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark step throughput",
		Args:  cobra.NoArgs,
		RunE:  bench,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run simulation with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addGasFlags(liveCmd)
	liveCmd.Flags().IntVar(&stepsPerFrame, "steps-per-frame", 10, "simulation steps per frame")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run the same gas over consecutive seeds",
		Args:  cobra.NoArgs,
		RunE:  runEnsemble,
	}
	addGasFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 4, "number of seeds")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of gases from YAML",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "measure pressure across values of one parameter",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addGasFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "vmax", "parameter to vary")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.1, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 0.8, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 8, "number of values")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, histCmd, phaseCmd, exportCmd, exportJSONCmd,
		exportSVGCmd, deleteCmd, benchCmd, liveCmd, ensembleCmd, scenarioCmd, sweepCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addGasFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().Float64Var(&width, "width", def.Width, "box width")
	cmd.Flags().Float64Var(&height, "height", def.Height, "box height")
	cmd.Flags().IntVarP(&particles, "particles", "n", def.Particles, "number of particles")
	cmd.Flags().Float64Var(&radius, "radius", def.Radius, "particle radius")
	cmd.Flags().Float64Var(&mass, "mass", def.Mass, "particle mass")
	cmd.Flags().Float64Var(&vmax, "vmax", def.VMax, "maximum initial velocity component")
	cmd.Flags().Float64Var(&dt, "dt", def.Dt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", def.Duration, "duration")
	cmd.Flags().Int64Var(&seed, "seed", def.Seed, "random seed")
	cmd.Flags().IntVar(&sampleEvery, "sample-every", def.SampleEvery, "pressure window in steps")
	cmd.Flags().IntVar(&snapEvery, "snapshot-every", def.SnapshotEvery, "record the state every n steps (0: every pressure window)")
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", def.MaxAttempts, "placement budget per particle")
}

// resolveConfig layers defaults, preset, config file and explicitly set
// flags, in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		if err := config.Overlay(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("width") {
		cfg.Width = width
	}
	if flags.Changed("height") {
		cfg.Height = height
	}
	if flags.Changed("particles") {
		cfg.Particles = particles
	}
	if flags.Changed("radius") {
		cfg.Radius = radius
	}
	if flags.Changed("mass") {
		cfg.Mass = mass
	}
	if flags.Changed("vmax") {
		cfg.VMax = vmax
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("sample-every") {
		cfg.SampleEvery = sampleEvery
	}
	if flags.Changed("snapshot-every") {
		cfg.SnapshotEvery = snapEvery
	}
	if flags.Changed("max-attempts") {
		cfg.MaxAttempts = maxAttempts
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
