package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/san-kum/airway/internal/airway"
	"github.com/san-kum/airway/internal/config"
	"github.com/san-kum/airway/internal/sim"
	"github.com/san-kum/airway/internal/storage"
	"github.com/spf13/cobra"
)

// parseResizes reads "<after>=<height>" pairs and sorts them by time.
func parseResizes(specs []string) ([]sim.ResizeEvent, error) {
	events := make([]sim.ResizeEvent, 0, len(specs))
	for _, spec := range specs {
		at, h, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, fmt.Errorf("invalid resize %q: expected <after>=<height>", spec)
		}
		after, err := time.ParseDuration(strings.TrimSpace(at))
		if err != nil || after < 0 {
			return nil, fmt.Errorf("invalid resize %q: bad time", spec)
		}
		px, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(h), "px"))
		if err != nil || px < 0 {
			return nil, fmt.Errorf("invalid resize %q: bad height", spec)
		}
		events = append(events, sim.ResizeEvent{After: after, Height: px})
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].After < events[j].After })
	return events, nil
}

func runSimulate(cmd *cobra.Command, args []string) error {
	opts, err := resolveOptions(cmd)
	if err != nil {
		return err
	}
	events, err := parseResizes(resizes)
	if err != nil {
		return err
	}
	if runs < 1 {
		return fmt.Errorf("runs must be at least 1, got %d", runs)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := sim.Config{Options: opts, Duration: duration, Seed: seed, Resizes: events}
	logger := newLogger(os.Stderr, config.Merge(opts).Log)

	if runs > 1 {
		results, err := sim.NewEnsemble(logger, runs, seed).Run(ctx, cfg)
		if err != nil {
			return describe(err)
		}
		return printEnsemble(results)
	}

	result, err := sim.New(logger).Run(ctx, cfg)
	if err != nil {
		return describe(err)
	}
	if err := printRun(result); err != nil {
		return err
	}

	if !save {
		return nil
	}
	st := storage.New(runsDir)
	if err := st.Init(); err != nil {
		return fmt.Errorf("failed to create runs directory: %w", err)
	}
	id, err := st.Save(storage.RunMetadata{
		Seed:     result.Seed,
		Duration: duration.Seconds(),
		Resizes:  resizes,
		Config:   result.Config,
		Metrics:  result.Metrics,
	}, result.Ticks)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	fmt.Printf("\nsaved run %s\n", id)
	return nil
}

func printRun(r *sim.Result) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tSTATE\tAIRPLANES\tHEIGHT\tADDED\tREMOVED\tNEXT")
	for _, t := range r.Ticks {
		next := "-"
		if t.State == airway.Armed.String() {
			next = t.Delay.String()
		}
		fmt.Fprintf(w, "%s\t%s\t%d/%d\t%dpx\t%v\t%d\t%s\n",
			t.Elapsed, t.State, t.Count, t.Capacity, t.Height, t.Added, t.Removed, next)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	s := r.Stats.Summary()
	fmt.Printf("\nticks: %d  added: %d  removed: %d  saturations: %d  occupancy: %.0f%%  final: %s\n",
		s.Ticks, s.Added, s.Removed, s.Saturations, r.Occupancy*100, r.Final)
	caption := fmt.Sprintf("airplanes per tick (%s, seed %d)", describeConfig(r.Config), r.Seed)
	if plot := r.Stats.Plot(80, 10, caption); plot != "" {
		fmt.Println()
		fmt.Println(plot)
	}
	return nil
}

func printEnsemble(results []*sim.Result) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tTICKS\tADDED\tREMOVED\tSATURATIONS\tOCCUPANCY\tFINAL")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%.0f\t%.0f\t%.0f\t%.0f\t%.0f%%\t%s\n",
			r.Seed,
			r.Metrics["ticks"],
			r.Metrics["added"],
			r.Metrics["removed"],
			r.Metrics["saturations"],
			r.Occupancy*100,
			r.Final,
		)
	}
	fmt.Fprintf(w, "mean\t%.1f\t%.1f\t%.1f\t%.1f\t%.0f%%\t\n",
		sim.Mean(results, "ticks"),
		sim.Mean(results, "added"),
		sim.Mean(results, "removed"),
		sim.Mean(results, "saturations"),
		sim.Mean(results, "occupancy")*100,
	)
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(runsDir)
	if len(args) == 1 {
		return showRun(st, args[0])
	}

	list, err := st.List()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("no saved runs")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tWHEN\tSEED\tDURATION\tHEIGHT\tTICKS\tOCCUPANCY")
	for _, r := range list {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%dpx\t%d\t%.0f%%\n",
			r.ID,
			r.Timestamp.Format(time.DateTime),
			r.Seed,
			time.Duration(r.Duration*float64(time.Second)),
			r.Config.Height,
			r.Ticks,
			r.Metrics["occupancy"]*100,
		)
	}
	return w.Flush()
}

func showRun(st *storage.Store, id string) error {
	meta, err := st.Load(id)
	if err != nil {
		return fmt.Errorf("failed to load run %s: %w", id, err)
	}
	ticks, err := st.LoadTicks(id)
	if err != nil {
		return fmt.Errorf("failed to load ticks of %s: %w", id, err)
	}

	fmt.Printf("run %s  seed %d  %s\n\n", meta.ID, meta.Seed, describeConfig(meta.Config))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tSTATE\tAIRPLANES\tHEIGHT\tADDED\tREMOVED")
	for _, t := range ticks {
		fmt.Fprintf(w, "%s\t%s\t%d/%d\t%dpx\t%v\t%d\n",
			t.Elapsed, t.State, t.Count, t.Capacity, t.Height, t.Added, t.Removed)
	}
	return w.Flush()
}

func describeConfig(cfg config.Config) string {
	mode := "eager"
	if cfg.Lazy {
		mode = "lazy"
	}
	return fmt.Sprintf("%dpx, %s", cfg.Height, mode)
}
