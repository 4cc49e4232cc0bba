package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/san-kum/drudesim/internal/bmim"
	"github.com/san-kum/drudesim/internal/config"
	"github.com/san-kum/drudesim/internal/logging"
	"github.com/san-kum/drudesim/internal/storage"
	"github.com/spf13/cobra"
)

var (
	dataDir string

	epsilonR  float64
	massDrude float64
	walltime  float64
	cycles    int
	drude     bool
	thole     bool
	intraEx   bool
	visual    bool
	gpu       bool
	outPath   string
	compress  bool
	seed      int64
	logLevel  string

	configFile string
	preset     string

	pngPath string
)

// main runs the root command, which starts a simulation. It exits with
// status 1 when the command fails.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "drudesim",
		Short:        "coarse-grained BMIM PF6 with Drude oscillators",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         runSimulation,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".drudesim", "run store directory")

	f := rootCmd.Flags()
	f.Float64Var(&epsilonR, "epsilon_r", config.DefaultEpsilonR, "dielectric constant")
	f.Float64Var(&massDrude, "mass_drude", config.DefaultMassDrude, "mass of the Drude particles")
	f.Float64Var(&walltime, "walltime", config.DefaultWalltime, "integration time in hours")
	f.IntVar(&cycles, "cycles", 0, "production cycles, overrides --walltime when positive")
	toggles := func(name string, target *bool, what string) {
		*target = true
		f.Var(&toggle{target: target, on: true}, name, "use "+what)
		f.Var(&toggle{target: target}, "no-"+name, "disable "+what)
		f.Lookup(name).NoOptDefVal = "true"
		f.Lookup("no-" + name).NoOptDefVal = "true"
	}
	toggles("drude", &drude, "Drude oscillators")
	toggles("thole", &thole, "Thole damping")
	toggles("intra_ex", &intraEx, "intramolecular exclusions")
	f.BoolVar(&visual, "visual", false, "run the terminal visualizer instead of production")
	f.BoolVar(&gpu, "gpu", false, "use the accelerated pair-force backend when available")
	f.StringVar(&outPath, "path", config.DefaultPath, "output directory")
	f.BoolVar(&compress, "compress", false, "zstd-compress the trajectory")
	f.Int64Var(&seed, "seed", config.DefaultSeed, "random seed")
	f.StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "start from a named preset")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().Bool("json", false, "export the run and its energies as JSON")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the radial distribution functions of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&pngPath, "png", "", "also render the plot to this PNG file")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %-10s %d ion pairs, density %.2f, drude %v, thole %v\n",
					name, p.System.IonPairs, p.System.Density, p.Drude, p.Thole)
			}
			return nil
		},
	}

	rootCmd.AddCommand(listCmd, showCmd, plotCmd, presetsCmd)
	return rootCmd
}

// resolveConfig layers defaults, preset, config file and the flags that
// were set on the command line, in that order. Of a --name/--no-name pair
// the one given last wins.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.LoadOnto(cfg, configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("epsilon_r") {
		cfg.EpsilonR = epsilonR
	}
	if flags.Changed("mass_drude") {
		cfg.MassDrude = massDrude
	}
	if flags.Changed("walltime") {
		cfg.Walltime = walltime
	}
	if flags.Changed("cycles") {
		cfg.Cycles = cycles
	}
	if flags.Changed("visual") {
		cfg.Visual = visual
	}
	if flags.Changed("gpu") {
		cfg.GPU = gpu
	}
	if flags.Changed("path") {
		cfg.Path = outPath
	}
	if flags.Changed("compress") {
		cfg.Compress = compress
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	cfg.Drude = pairedFlag(cmd, "drude", drude, cfg.Drude)
	cfg.Thole = pairedFlag(cmd, "thole", thole, cfg.Thole)
	cfg.IntraEx = pairedFlag(cmd, "intra_ex", intraEx, cfg.IntraEx)

	return cfg, cfg.Validate()
}

// pairedFlag returns value when either side of --name/--no-name was given.
func pairedFlag(cmd *cobra.Command, name string, value, current bool) bool {
	flags := cmd.Flags()
	if flags.Changed(name) || flags.Changed("no-"+name) {
		return value
	}
	return current
}

// toggle is one side of a --name/--no-name pair. Both sides write the same
// bool in command-line order.
type toggle struct {
	target *bool
	on     bool
}

func (t *toggle) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*t.target = v == t.on
	return nil
}

func (t *toggle) String() string {
	if t.target == nil {
		return "false"
	}
	return strconv.FormatBool(*t.target == t.on)
}

func (t *toggle) Type() string     { return "bool" }
func (t *toggle) IsBoolFlag() bool { return true }

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	log := logging.New(os.Stderr, cfg.LogLevel)

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []bmim.Option{bmim.WithLogger(log)}
	if !cfg.Visual {
		opts = append(opts, bmim.WithProgress(os.Stderr))
	}
	exp, err := bmim.New(cfg, opts...)
	if err != nil {
		return err
	}

	log.Infof("running %d ion pairs, drude %v, thole %v, intra_ex %v", cfg.System.IonPairs, cfg.Drude, cfg.Thole, cfg.IntraEx)
	start := time.Now()
	result, runErr := exp.Run(ctx)
	if result == nil {
		return runErr
	}
	elapsed := time.Since(start)

	meta := result.Metadata(cfg, runErr)
	meta.Timestamp = start
	runID, err := st.Save(meta, result.Energies)
	if err != nil {
		return errors.Join(runErr, err)
	}

	fmt.Printf("completed in %v\n", elapsed.Round(time.Millisecond))
	fmt.Printf("run id: %s (%s)\n", runID, meta.Status)
	fmt.Printf("yield: %.4g ns/day\n", result.NsPerDay)
	fmt.Printf("cycles: %d/%d, steps: %d, %.4g ns\n", result.CyclesDone, result.Cycles, result.Steps, result.SimTimeNs)
	if result.Trajectory != "" {
		fmt.Printf("trajectory: %s\n", result.Trajectory)
	}
	if result.RDF != "" {
		fmt.Printf("rdf: %s\n", result.RDF)
	}
	if len(result.Metrics) > 0 {
		fmt.Println("\nmetrics:")
		printMetrics(os.Stdout, result.Metrics)
	}

	if errors.Is(runErr, context.Canceled) {
		fmt.Println("interrupted, partial output kept")
		return nil
	}
	return runErr
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

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tSTATUS\tPARTICLES\tDRUDE\tCYCLES\tNS/DAY")

	for _, run := range runs {
		drudeOn := false
		if run.Config != nil {
			drudeOn = run.Config.Drude
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%v\t%d\t%.3g\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Status,
			run.NumParticles,
			drudeOn,
			run.Cycles,
			run.NsPerDay,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return st.ExportJSON(os.Stdout, args[0])
	}

	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("run:        %s\n", meta.ID)
	fmt.Printf("status:     %s\n", meta.Status)
	if meta.Error != "" {
		fmt.Printf("error:      %s\n", meta.Error)
	}
	fmt.Printf("started:    %s\n", meta.Timestamp.Format(time.RFC3339))
	fmt.Printf("particles:  %d in a box of %.3f A\n", meta.NumParticles, meta.BoxLength)
	fmt.Printf("minimize:   %.3e -> %.3e\n", meta.MinimizeFrom, meta.MinimizeTo)
	fmt.Printf("yield:      %.4g ns/day\n", meta.NsPerDay)
	fmt.Printf("cycles:     %d (%d steps, %.4g ns)\n", meta.Cycles, meta.Steps, meta.SimTimeNs)
	if meta.Trajectory != "" {
		fmt.Printf("trajectory: %s\n", meta.Trajectory)
	}
	if meta.RDF != "" {
		fmt.Printf("rdf:        %s\n", meta.RDF)
	}
	if c := meta.Config; c != nil {
		fmt.Printf("config:     epsilon_r %g, mass_drude %g, drude %v, thole %v, intra_ex %v, seed %d\n",
			c.EpsilonR, c.MassDrude, c.Drude, c.Thole, c.IntraEx, c.Seed)
	}
	printMetrics(os.Stdout, meta.Metrics)
	return nil
}

func printMetrics(w io.Writer, m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %.6f\n", name, m[name])
	}
}
