package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/hardgas/internal/analysis"
	"github.com/san-kum/hardgas/internal/automation"
	"github.com/san-kum/hardgas/internal/config"
	"github.com/san-kum/hardgas/internal/experiment"
	"github.com/san-kum/hardgas/internal/export"
	"github.com/san-kum/hardgas/internal/physics"
	"github.com/san-kum/hardgas/internal/sim"
	"github.com/san-kum/hardgas/internal/storage"
	"github.com/san-kum/hardgas/internal/viz"
)

func openStore() (*storage.Store, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	metrics := registry.DefaultMetrics()
	if len(metricNames) > 0 {
		if metrics, err = registry.Metrics(metricNames); err != nil {
			return err
		}
	}

	// States are streamed to disk rather than kept in memory.
	stateEvery := cfg.SnapshotEvery
	if stateEvery == 0 {
		stateEvery = cfg.SampleEvery
	}
	runCfg := cfg.Clone()
	runCfg.SnapshotEvery = 0

	exp := experiment.New(runCfg)
	if err := exp.Setup(metrics); err != nil {
		return err
	}

	var run *storage.Run
	if !noSave {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		run, err = st.Create(metadataFor(cfg, stateEvery), stateEvery)
		if err != nil {
			return err
		}
		run.WriteState(exp.Box().Snapshot(0))
		exp.GetSimulator().AddObserver(run)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %d particles for %d steps...\n", cfg.Particles, cfg.Steps())
	start := time.Now()

	result, runErr := exp.Run(ctx)
	elapsed := time.Since(start)

	if run != nil {
		runID, err := settleRun(run, result)
		if err != nil {
			return errors.Join(runErr, err)
		}
		if runID != "" {
			fmt.Printf("run id: %s\n", runID)
		}
	}
	if result == nil {
		return runErr
	}

	fmt.Printf("completed in %v\n", elapsed.Round(time.Millisecond))
	if runErr != nil {
		fmt.Printf("stopped after %d of %d steps: %v\n", result.StepsTaken, cfg.Steps(), runErr)
	}
	printReport(result)

	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

// settleRun persists whatever the simulator produced, including a partial
// result. A run that never started is removed.
func settleRun(run *storage.Run, result *sim.Result) (string, error) {
	if result == nil {
		return "", run.Abort()
	}
	return run.Finish(result)
}

func metadataFor(cfg *config.Config, stateEvery int) storage.RunMetadata {
	return storage.RunMetadata{
		Preset:        preset,
		Seed:          cfg.Seed,
		Width:         cfg.Width,
		Height:        cfg.Height,
		Particles:     cfg.Particles,
		Radius:        cfg.Radius,
		Mass:          cfg.Mass,
		VMax:          cfg.VMax,
		Dt:            cfg.Dt,
		Duration:      cfg.Duration,
		SampleEvery:   cfg.SampleEvery,
		SnapshotEvery: stateEvery,
	}
}

func printReport(result *sim.Result) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "steps\t%d\n", result.StepsTaken)
	fmt.Fprintf(w, "initial energy\t%.6f\n", result.InitialEnergy)
	fmt.Fprintf(w, "final energy\t%.6f\n", result.FinalEnergy)
	fmt.Fprintf(w, "energy drift\t%.3e\n", result.EnergyDrift)
	fmt.Fprintf(w, "wall bounces\t%d\n", result.TotalBounces)
	fmt.Fprintf(w, "pair contacts\t%d\n", result.TotalCollisions)
	fmt.Fprintf(w, "pressure samples\t%d\n", len(result.Pressure))
	fmt.Fprintf(w, "mean P_exp\t%.6f\n", result.MeanPressureExp)
	fmt.Fprintf(w, "mean P_teo\t%.6f\n", result.MeanPressureTeo)
	fmt.Fprintf(w, "relative error\t%.2f%%\n", result.PressureError)
	w.Flush()

	if len(result.Metrics) > 0 {
		fmt.Println("\nmetrics:")
		for _, name := range experiment.NewRegistry().ListMetrics() {
			if val, ok := result.Metrics[name]; ok {
				fmt.Printf("  %s: %.6f\n", name, val)
			}
		}
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tN\tSTEPS\tDT\tP_EXP\tP_TEO\tERR")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.4f\t%.6f\t%.6f\t%.2f%%\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Particles,
			run.Steps,
			run.Dt,
			run.MeanPressureExp,
			run.MeanPressureTeo,
			run.PressureError,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	pressure, err := st.LoadPressure(runID)
	if err != nil {
		return err
	}
	states, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("particles: %d\n", meta.Particles)
	fmt.Printf("pressure samples: %d, states: %d\n\n", len(pressure), len(states))

	if len(pressure) > 1 {
		exp := make([]float64, len(pressure))
		teo := make([]float64, len(pressure))
		energy := make([]float64, len(pressure))
		for i, p := range pressure {
			exp[i], teo[i], energy[i] = p.Exp, p.Teo, p.Energy
		}

		fmt.Println(asciigraph.PlotMany([][]float64{exp, teo},
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("P_exp and P_teo per window"),
		))
		fmt.Println()
		fmt.Println(asciigraph.Plot(energy,
			asciigraph.Height(6),
			asciigraph.Width(80),
			asciigraph.Caption("kinetic energy"),
		))
		fmt.Println()
	}

	if len(states) > 1 {
		series := make([][]float64, 0, 5)
		for _, tr := range analysis.Tracks(states, 5) {
			_, xs := analysis.XSeries(states, tr.Particle)
			series = append(series, xs)
		}
		fmt.Println(asciigraph.PlotMany(series,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("x position of the first %d particles", len(series))),
		))
	}

	return nil
}

func speedHistogram(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	states, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no states recorded for %s", runID)
	}

	final := states[len(states)-1]
	speeds := analysis.Speeds(final.State)
	mean := analysis.Mean(speeds)
	hist := analysis.Histogram(speeds, bins)

	fmt.Printf("speed distribution at t=%.3f (%d particles, <v>=%.4f)\n\n", final.Time, len(speeds), mean)

	theory := make([]float64, len(hist.Counts))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "V\tCOUNT\tDENSITY\tMAXWELL\t")
	for i, c := range hist.Centers() {
		theory[i] = analysis.MaxwellBoltzmann2D(c, mean)
		fmt.Fprintf(w, "%.4f\t%d\t%.3f\t%.3f\t%s\n", c, hist.Counts[i], hist.Density[i], theory[i],
			strings.Repeat("█", hist.Counts[i]))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(hist.Density) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.PlotMany([][]float64{hist.Density, theory},
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption("measured density and 2D Maxwell-Boltzmann"),
		))
	}
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	states, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	portrait := analysis.PhasePortrait(states, particle, xAxis, yAxis)
	if portrait == nil {
		return fmt.Errorf("no phase data for particle %d axes %d/%d", particle, xAxis, yAxis)
	}

	names := []string{"x", "y", "vx", "vy"}
	fmt.Printf("particle %d: %s vs %s (%d points)\n\n", particle, names[yAxis], names[xAxis], len(portrait.Points))
	fmt.Print(analysis.PhasePortraitToASCII(portrait, 80, 24))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	states, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	pressure, err := st.LoadPressure(runID)
	if err != nil {
		return err
	}

	data := export.NewExportData(meta, states, pressure)
	if outPath == "" {
		return export.ExportJSONStdout(data)
	}
	if err := export.ExportJSON(outPath, data); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", outPath)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	states, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no states recorded for %s", runID)
	}

	var svg string
	if snapshot {
		svg = export.SnapshotToSVG(states[len(states)-1].State, meta.Width, meta.Height, meta.Radius, svgSize)
	} else {
		svg = export.TrajectoriesToSVG(analysis.Tracks(states, numTracks), meta.Width, meta.Height, svgSize)
	}

	path := outPath
	if path == "" {
		path = runID + ".svg"
	}
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", path)
	return nil
}

func deleteRun(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Delete(args[0]); err != nil {
		return err
	}
	fmt.Printf("deleted %s\n", args[0])
	return nil
}

func bench(cmd *cobra.Command, args []string) error {
	const steps = 1000
	sizes := []int{100, 500, 1000, 2000}

	fmt.Printf("benchmarking %d steps per population\n\n", steps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "N\tSTEPS\tTIME\tSTEPS/SEC\tCONTACTS")

	for _, n := range sizes {
		box, err := physics.NewBox(1, 1)
		if err != nil {
			return err
		}
		if err := box.InitializeRandom(n, 0.002, 0.4, 42); err != nil {
			return err
		}

		contacts := 0
		start := time.Now()
		for i := 0; i < steps; i++ {
			contacts += box.Step(0.002).Collisions
		}
		elapsed := time.Since(start)

		fmt.Fprintf(w, "%d\t%d\t%v\t%.0f\t%d\n",
			n, steps, elapsed.Round(time.Microsecond), float64(steps)/elapsed.Seconds(), contacts)
	}

	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	build := func() (*physics.Box, error) { return cfg.Populate(cfg.Seed) }
	box, err := build()
	if err != nil {
		return err
	}

	model := viz.NewModel(box, cfg.Dt, stepsPerFrame, cfg.SampleEvery).WithReset(build)
	return viz.Run(model)
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if numRuns <= 0 {
		return fmt.Errorf("runs must be positive, got %d", numRuns)
	}

	ens := sim.NewEnsemble(cfg.Populate, numRuns, cfg.Seed)
	simCfg := cfg.SimConfig()
	simCfg.SnapshotEvery = 0

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %d seeds of %d particles for %d steps...\n\n", numRuns, cfg.Particles, simCfg.Steps)
	start := time.Now()
	results, err := ens.Run(ctx, simCfg)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tBOUNCES\tP_EXP\tP_TEO\tERR")
	exps := make([]float64, len(results))
	for i, r := range results {
		exps[i] = r.MeanPressureExp
		fmt.Fprintf(w, "%d\t%d\t%.6f\t%.6f\t%.2f%%\n",
			ens.Seed(i), r.TotalBounces, r.MeanPressureExp, r.MeanPressureTeo, r.PressureError)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	mean := analysis.Mean(exps)
	variance := 0.0
	for _, v := range exps {
		variance += (v - mean) * (v - mean)
	}
	if len(exps) > 1 {
		variance /= float64(len(exps) - 1)
	}
	fmt.Printf("\nP_exp across seeds: %.6f ± %.6f (%v)\n", mean, math.Sqrt(variance), time.Since(start).Round(time.Millisecond))
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tN\tRADIUS\tVMAX\tDT\tTIME\tWINDOW")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%g\t%g\t%g\t%g\t%d\n",
			name, p.Particles, p.Radius, p.VMax, p.Dt, p.Duration, p.SampleEvery)
	}
	return w.Flush()
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("scenario %s: %s\n\n", sc.Name, sc.Description)
	results, err := automation.RunScenario(ctx, sc, experiment.NewRegistry())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tN\tVMAX\tENERGY\tP_EXP\tP_TEO\tERR")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%d\t%g\t%.6f\t%.6f\t%.6f\t%.2f%%\n",
			r.Name, r.Config.Particles, r.Config.VMax, r.Result.FinalEnergy,
			r.Result.MeanPressureExp, r.Result.MeanPressureTeo, r.Result.PressureError)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sweep := &automation.ParameterSweep{
		Base:     cfg,
		Param:    sweepParam,
		Min:      sweepMin,
		Max:      sweepMax,
		NumSteps: sweepSteps,
	}
	results, err := automation.RunSweep(ctx, sweep)
	if err != nil && len(results) == 0 {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tBOUNCES\tP_EXP\tP_TEO\tERR\n", strings.ToUpper(sweepParam))
	exps := make([]float64, len(results))
	for i, r := range results {
		exps[i] = r.MeanExp
		fmt.Fprintf(w, "%g\t%d\t%.6f\t%.6f\t%.2f%%\n", r.ParamValue, r.Bounces, r.MeanExp, r.MeanTeo, r.PressureError)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}

	if len(exps) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(exps,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Caption("mean P_exp by "+sweepParam),
		))
	}
	return err
}
