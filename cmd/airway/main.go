package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/airway/internal/airway"
	"github.com/san-kum/airway/internal/config"
	"github.com/san-kum/airway/internal/logging"
	"github.com/san-kum/airway/internal/metrics"
	"github.com/san-kum/airway/internal/surface"
	"github.com/san-kum/airway/internal/viz"
	"github.com/spf13/cobra"
)

const hostKey = "#airway"

var (
	configFile string
	preset     string
	height     int
	background string
	resizable  bool
	colorLeft  string
	colorRight string
	lazy       bool
	logEnabled bool
	logFile    string
	surfaceKey string
	seed       int64
	theme      string
	verbose    bool
	logLevel   string
	// simulate
	duration time.Duration
	resizes  []string
	runs     int
	save     bool
	runsDir  string
	// sweep
	minHeight int
	maxHeight int
	steps     int
	// config init
	force bool
)

// main registers the airway commands and runs the terminal host when no
// subcommand is given.
func main() {
	rootCmd := &cobra.Command{
		Use:          "airway",
		Short:        "self-pacing airplanes for your terminal",
		SilenceUsage: true,
		RunE:         runHost,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().IntVar(&height, "height", config.DefaultHeight, "surface height in pixels")
	rootCmd.PersistentFlags().StringVar(&background, "background", config.DefaultBackground, "surface background color")
	rootCmd.PersistentFlags().BoolVar(&resizable, "resizable", config.DefaultResizable, "let the surface follow the terminal")
	rootCmd.PersistentFlags().StringVar(&colorLeft, "left", config.DefaultColorFromLeft, "color of airplanes entering from the left")
	rootCmd.PersistentFlags().StringVar(&colorRight, "right", config.DefaultColorFromRight, "color of airplanes entering from the right")
	rootCmd.PersistentFlags().BoolVar(&lazy, "lazy", config.DefaultLazy, "wait 3-6s between airplanes")
	rootCmd.PersistentFlags().BoolVar(&logEnabled, "log", config.DefaultLog, "enable logging")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "include debug messages (same as --log-level debug)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", logging.LevelInfo.String(), "lowest level written: error, warn, info, debug")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the airway in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runHost,
	}

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "run the airway headless on a simulated clock",
		Args:  cobra.NoArgs,
		RunE:  runSimulate,
	}
	simulateCmd.Flags().StringArrayVar(&resizes, "resize", nil, "resize event as <after>=<height>, e.g. 30s=200 (repeatable)")
	simulateCmd.Flags().IntVar(&runs, "runs", 1, "number of seeds to run in parallel, starting at --seed")
	simulateCmd.Flags().BoolVar(&save, "save", false, "save the run to the runs directory (single runs only)")

	runsCmd := &cobra.Command{
		Use:   "runs [id]",
		Short: "list saved simulation runs or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listRuns,
	}

	scenarioCmd := &cobra.Command{
		Use:   "scenario <file>",
		Short: "run a scripted sequence of simulations from yaml",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "simulate a range of surface heights",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	sweepCmd.Flags().IntVar(&minHeight, "min", airway.UnitFootprint, "smallest height in pixels")
	sweepCmd.Flags().IntVar(&maxHeight, "max", 10*airway.UnitFootprint, "largest height in pixels")
	sweepCmd.Flags().IntVar(&steps, "steps", 10, "number of heights")

	for _, c := range []*cobra.Command{simulateCmd, sweepCmd} {
		c.Flags().DurationVar(&duration, "duration", 2*time.Minute, "simulated time")
	}
	for _, c := range []*cobra.Command{simulateCmd, runsCmd, scenarioCmd} {
		c.Flags().StringVar(&runsDir, "runs-dir", ".airway/runs", "directory for saved runs")
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "manage config files",
	}
	configInitCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a default config file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	}
	configInitCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd)

	for _, c := range []*cobra.Command{rootCmd, runCmd} {
		c.Flags().StringVar(&logFile, "log-file", "airway.log", "log destination while the terminal is in use")
		c.Flags().StringVar(&surfaceKey, "surface", hostKey, "lookup key of the surface to bind")
		c.Flags().StringVar(&theme, "theme", viz.ThemeCyberpunk.Name, "color theme")
	}

	rootCmd.AddCommand(runCmd, simulateCmd, scenarioCmd, sweepCmd, runsCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveOptions layers the preset, the config file and explicitly set
// flags, in that order.
func resolveOptions(cmd *cobra.Command) (config.Options, error) {
	var opts config.Options

	if preset != "" {
		p, ok := config.GetPreset(preset)
		if !ok {
			return opts, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		opts = p
	}

	if configFile != "" {
		fileOpts, err := config.Load(configFile)
		if err != nil {
			return opts, fmt.Errorf("failed to load config: %w", err)
		}
		opts = opts.Override(fileOpts)
	}

	var flagOpts config.Options
	flags := cmd.Flags()
	if flags.Changed("height") {
		flagOpts.Height = config.Ptr(config.Height(height))
	}
	if flags.Changed("background") {
		flagOpts.BackgroundColor = config.Ptr(background)
	}
	if flags.Changed("resizable") {
		flagOpts.Resizable = config.Ptr(resizable)
	}
	if flags.Changed("left") {
		flagOpts.ColorFromLeft = config.Ptr(colorLeft)
	}
	if flags.Changed("right") {
		flagOpts.ColorFromRight = config.Ptr(colorRight)
	}
	if flags.Changed("lazy") {
		flagOpts.Lazy = config.Ptr(lazy)
	}
	if flags.Changed("log") {
		flagOpts.Log = config.Ptr(logEnabled)
	}
	return opts.Override(flagOpts), nil
}

func runHost(cmd *cobra.Command, args []string) error {
	opts, err := resolveOptions(cmd)
	if err != nil {
		return err
	}

	logger := logging.Discard()
	if config.Merge(opts).Log {
		// The terminal belongs to the UI, so log lines go to a file.
		f, err := tea.LogToFile(logFile, "airway")
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logger = logging.NewLevel(f, minLevel())
	}

	pane := surface.NewPane(0)
	doc := surface.NewDocument()
	doc.Register(hostKey, pane)

	stats := metrics.NewPopulation(600)
	a, err := airway.NewFromKey(doc, surfaceKey, opts,
		airway.WithLogger(logger),
		airway.WithRand(rand.New(rand.NewSource(seed))),
		airway.WithObserver(stats),
	)
	if err != nil {
		return describe(err)
	}

	return viz.Run(a, pane, stats, theme)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tHEIGHT\tCAPACITY\tLAZY\tRESIZABLE\tLEFT\tRIGHT")
	for _, name := range config.ListPresets() {
		p, _ := config.GetPreset(name)
		cfg := config.Merge(p)
		fmt.Fprintf(w, "%s\t%dpx\t%d\t%v\t%v\t%s\t%s\n",
			name,
			cfg.Height,
			airway.Capacity(cfg.Height),
			cfg.Lazy,
			cfg.Resizable,
			cfg.ColorFromLeft,
			cfg.ColorFromRight,
		)
	}
	return w.Flush()
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := "airway.yaml"
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.Save(path, config.DefaultConfig()); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

// describe expands configuration errors into one line per field.
func describe(err error) error {
	if fields := config.InvalidFields(err); len(fields) > 0 {
		return fmt.Errorf("invalid configuration (%v): %w", fields, err)
	}
	var nf *airway.SurfaceNotFoundError
	if errors.As(err, &nf) {
		return fmt.Errorf("%w (known surfaces: %s)", err, hostKey)
	}
	return err
}

func newLogger(w io.Writer, enabled bool) *slog.Logger {
	if !enabled {
		return logging.Discard()
	}
	return logging.NewLevel(w, minLevel())
}

// minLevel is the lowest level written to the log destination.
func minLevel() logging.Level {
	if verbose {
		return logging.LevelDebug
	}
	return logging.ParseLevel(logLevel)
}
