package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/cpgsim/internal/analysis"
	"github.com/san-kum/cpgsim/internal/config"
	"github.com/san-kum/cpgsim/internal/experiment"
	"github.com/san-kum/cpgsim/internal/gait"
	"github.com/san-kum/cpgsim/internal/storage"
	"github.com/san-kum/cpgsim/internal/viz"
)

var (
	dataDir    string
	dt         float64
	duration   float64
	seed       int64
	integrator string
	policy     string
	left       float64
	right      float64
	freq       float64
	amp        float64
	rate       float64
	weight     float64
	randomInit bool
	// Wander policy parameters
	wanderBase float64
	wanderSpan float64
	wanderRate float64
	// Plot/phase selection
	leg int
	// Config file
	configFile string
	// Frame rate for live view
	frameRate int
	// Preset name
	preset string
	// Optional JSON dump of a fresh run
	exportPath string
	// Gait filter for list
	listGait string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cpgsim",
		Short: "coupled-oscillator locomotor controller lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".cpgsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [gait]",
		Short: "run simulation",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().StringVar(&exportPath, "export", "", "also write full run data to a JSON file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}
	listCmd.Flags().StringVar(&listGait, "gait", "", "only show runs of this gait")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&leg, "leg", 0, "leg index to plot")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "polar phase portrait of one leg",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&leg, "leg", 0, "leg index to plot")

	liveCmd := &cobra.Command{
		Use:   "live [gait]",
		Short: "run simulation with live visualization",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

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

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write the raw state trace as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).StatesCSV(args[0], os.Stdout)
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [gait]",
		Short: "list available presets for a gait",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for gait: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	gaitsCmd := &cobra.Command{
		Use:   "gaits",
		Short: "list built-in gaits",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range gait.Names() {
				fmt.Println(name)
			}
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, phaseCmd, liveCmd, exportCmd, exportJSONCmd, exportCSVCmd, presetsCmd, gaitsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep (s)")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration (s)")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	cmd.Flags().StringVar(&integrator, "integrator", "euler", "integrator")
	cmd.Flags().StringVar(&policy, "policy", "constant", "steering policy")
	cmd.Flags().Float64Var(&left, "left", 1.0, "left steering drive")
	cmd.Flags().Float64Var(&right, "right", 1.0, "right steering drive")
	cmd.Flags().Float64Var(&freq, "freq", config.DefaultFreq, "intrinsic frequency (Hz)")
	cmd.Flags().Float64Var(&amp, "amp", config.DefaultAmp, "intrinsic amplitude")
	cmd.Flags().Float64Var(&rate, "rate", config.DefaultRate, "amplitude convergence rate (1/s)")
	cmd.Flags().Float64Var(&weight, "weight", config.DefaultWeight, "coupling weight")
	cmd.Flags().BoolVar(&randomInit, "random-init", false, "random initial phases")
	cmd.Flags().Float64Var(&wanderBase, "wander-base", 1.0, "wander policy base drive")
	cmd.Flags().Float64Var(&wanderSpan, "wander-span", 0.4, "wander policy fluctuation")
	cmd.Flags().Float64Var(&wanderRate, "wander-rate", 0.5, "wander policy noise speed")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// buildConfig merges preset, config file, and CLI flags (flags win).
func buildConfig(cmd *cobra.Command, gaitName string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Gait = gaitName

	if preset != "" {
		p := config.GetPreset(gaitName, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)",
				preset, config.ListPresets(gaitName))
		}
		*cfg = *p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		*cfg = *loaded
		cfg.Gait = gaitName
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("integrator") || cfg.Integrator == "" {
		cfg.Integrator = integrator
	}
	if cmd.Flags().Changed("policy") || cfg.Policy == "" {
		cfg.Policy = policy
	}
	if cmd.Flags().Changed("left") {
		cfg.Steering.Left = left
	}
	if cmd.Flags().Changed("right") {
		cfg.Steering.Right = right
	}
	if cmd.Flags().Changed("freq") {
		cfg.Oscillator.Freq = freq
	}
	if cmd.Flags().Changed("amp") {
		cfg.Oscillator.Amp = amp
	}
	if cmd.Flags().Changed("rate") {
		cfg.Oscillator.Rate = rate
	}
	if cmd.Flags().Changed("weight") {
		cfg.Oscillator.Weight = weight
	}
	if cmd.Flags().Changed("wander-base") {
		cfg.Steering.Base = wanderBase
	}
	if cmd.Flags().Changed("wander-span") {
		cfg.Steering.Span = wanderSpan
	}
	if cmd.Flags().Changed("wander-rate") {
		cfg.Steering.Rate = wanderRate
	}
	if cmd.Flags().Changed("random-init") {
		cfg.Init.Random = randomInit
	}
	if cfg.Seed == 0 || cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}

	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	defer st.Close()

	registry := experiment.NewRegistry()

	net, err := registry.BuildNetwork(cfg)
	if err != nil {
		return err
	}
	mod, err := registry.BuildModulator(cfg)
	if err != nil {
		return err
	}
	pol, err := registry.GetPolicy(cfg.Policy, cfg)
	if err != nil {
		return err
	}

	exp := experiment.New(cfg)
	if err := exp.Setup(net, mod, pol, registry.DefaultMetrics()); err != nil {
		return err
	}

	fmt.Printf("running %s gait...\n", cfg.Gait)
	start := time.Now()

	result, err := exp.Run(context.Background())
	if err != nil {
		return err
	}
	for _, stepErr := range result.Errors {
		fmt.Fprintf(os.Stderr, "warning: %v\n", stepErr)
	}

	elapsed := time.Since(start)

	runID, err := st.Save(cfg.Gait, cfg.Dt, cfg.Duration, cfg.Seed, cfg.Integrator, cfg.Policy, result)
	if err != nil {
		return err
	}

	if exportPath != "" {
		f, err := os.Create(exportPath)
		if err != nil {
			return err
		}
		defer f.Close()
		data := storage.FromResult(cfg.Gait, cfg.Integrator, cfg.Policy, cfg.Dt, cfg.Duration, result)
		if err := storage.WriteJSON(f, data); err != nil {
			return err
		}
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()

	net, err := registry.BuildNetwork(cfg)
	if err != nil {
		return err
	}
	mod, err := registry.BuildModulator(cfg)
	if err != nil {
		return err
	}
	pol, err := registry.GetPolicy(cfg.Policy, cfg)
	if err != nil {
		return err
	}

	return viz.Run(net, mod, pol, cfg.Gait, frameRate)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	defer st.Close()

	var (
		runs []storage.RunMetadata
		err  error
	)
	if listGait != "" {
		runs, err = st.ListGait(listGait)
	} else {
		runs, err = st.List()
	}
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tGAIT\tWHEN\tDURATION\tDT\tINTEG\tPOLICY")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.5fs\t%s\t%s\n",
			run.ID,
			run.Gait,
			humanize.Time(run.Timestamp),
			run.Duration,
			run.Dt,
			run.Integrator,
			run.Policy,
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

	states, _, _, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}
	if leg < 0 || leg >= gait.Legs {
		return fmt.Errorf("leg index %d out of range [0, %d)", leg, gait.Legs)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("gait: %s\n", meta.Gait)
	fmt.Printf("samples: %d\n\n", len(states))

	amps := make([]float64, len(states))
	for i := range states {
		if gait.Legs+leg < len(states[i]) {
			amps[i] = states[i][gait.Legs+leg]
		}
	}
	fmt.Println(asciigraph.Plot(amps,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("%s amplitude", gait.LegName(leg)))))
	fmt.Println()

	order := analysis.OrderParameter(states, gait.Legs)
	fmt.Println(asciigraph.Plot(order,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("phase coherence (order parameter)")))

	osc := make([]float64, len(states))
	for i := range states {
		osc[i] = math.Cos(states[i][leg])
	}
	fmt.Printf("\n%s stepping frequency: %.2f Hz\n",
		gait.LegName(leg), analysis.DominantFrequency(osc, meta.Dt))

	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	states, _, _, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if leg < 0 || leg >= gait.Legs {
		return fmt.Errorf("leg index %d out of range [0, %d)", leg, gait.Legs)
	}

	portrait := analysis.GeneratePolarPortrait(states, gait.Legs, leg)
	if portrait == nil || len(portrait.Points) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("polar portrait, %s\n\n", gait.LegName(leg))
	fmt.Println(analysis.PortraitToASCII(portrait, 60, 24))
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

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	states, controls, times, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	return storage.WriteJSON(os.Stdout, storage.ExportData{
		Gait:       meta.Gait,
		Integrator: meta.Integrator,
		Policy:     meta.Policy,
		Dt:         meta.Dt,
		Duration:   meta.Duration,
		Steps:      len(times),
		Times:      times,
		States:     states,
		Controls:   controls,
		Metrics:    meta.Metrics,
	})
}
